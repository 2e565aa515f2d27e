package messagely

import (
	"github.com/goliatone/go-messagely/middleware/jwtware"
	"github.com/goliatone/go-router"
)

// RequireIdentity fails with ErrUnauthorized unless claims carry a username.
func RequireIdentity(claims jwtware.AuthClaims) (string, error) {
	if claims == nil || claims.Username() == "" {
		return "", ErrUnauthorized
	}
	return claims.Username(), nil
}

// RequireOwner fails with ErrUnauthorized unless claims belong to target.
func RequireOwner(claims jwtware.AuthClaims, target string) (string, error) {
	username, err := RequireIdentity(claims)
	if err != nil {
		return "", err
	}
	if target == "" || username != target {
		return "", ErrUnauthorized
	}
	return username, nil
}

// AuthorizeParticipant allows the sender or the recipient of message.
func AuthorizeParticipant(username string, message *Message) error {
	if username == "" || message == nil {
		return ErrUnauthorized
	}
	if username != message.FromUsername && username != message.ToUsername {
		return ErrUnauthorized
	}
	return nil
}

// AuthorizeRecipient allows only the recipient of message.
func AuthorizeRecipient(username string, message *Message) error {
	if username == "" || message == nil || username != message.ToUsername {
		return ErrUnauthorized
	}
	return nil
}

// AuthorizeSender checks a client supplied sender against the identity. An
// empty fromUsername means the sender defaults to the identity.
func AuthorizeSender(username, fromUsername string) error {
	if username == "" {
		return ErrUnauthorized
	}
	if fromUsername != "" && fromUsername != username {
		return ErrUnauthorized
	}
	return nil
}

// EnsureAuthenticated rejects requests without a verified identity.
func EnsureAuthenticated(contextKey ...string) router.MiddlewareFunc {
	key := resolveContextKey(contextKey...)
	return router.ToMiddleware(func(c router.Context) error {
		claims, _ := CurrentClaims(c, key)
		_, err := RequireIdentity(claims)
		return err
	})
}

// EnsureIsResourceOwner rejects requests whose identity is not the username
// found in the route parameter param.
func EnsureIsResourceOwner(param string, contextKey ...string) router.MiddlewareFunc {
	key := resolveContextKey(contextKey...)
	return router.ToMiddleware(func(c router.Context) error {
		claims, _ := CurrentClaims(c, key)
		_, err := RequireOwner(claims, c.Param(param, ""))
		return err
	})
}

func resolveContextKey(keys ...string) string {
	if len(keys) > 0 && keys[0] != "" {
		return keys[0]
	}
	return DefaultContextKey
}
