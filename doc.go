// Package messagely is the authorization core of a small messaging service.
//
// Users register and log in to obtain a signed token, then read and send short
// messages to one another. The package owns the rules deciding who can see or
// change what:
//
// Token codec:
//   - TokenService issues HS256 JWTs carrying a username claim and verifies them
//     against a secret injected at construction. Tokens are stateless; an
//     expiration is only enforced when one is configured.
//
// Identity extraction:
//   - middleware/jwtware locates a candidate token (header, then `_token` body
//     field, then `_token` query parameter) and stores the verified claims in the
//     request locals. Extraction never rejects a request by itself.
//
// Guards:
//   - EnsureAuthenticated and EnsureIsResourceOwner gate routes on the request
//     identity. Object level checks (AuthorizeParticipant, AuthorizeRecipient,
//     AuthorizeSender) run against stored message state, never request bodies.
//
// Authentication flow:
//   - Auther logs users in and registers them through a Directory collaborator,
//     mapping its typed duplicate signal to ErrDuplicateUsername and recording the
//     last login time.
//
// Persistence lives in the repository package; the Directory and MessageStore
// interfaces declared here are all the core depends on.
package messagely
