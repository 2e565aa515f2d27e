package messagely

import (
	"context"

	"github.com/goliatone/go-messagely/middleware/jwtware"
	"github.com/goliatone/go-router"
)

// DefaultContextKey is the request store key the identity extractor stores claims under
const DefaultContextKey = "user"

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaimsContext sets the Claims in the given context
func WithClaimsContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// ClaimsFromContext extracts the Claims from the standard context
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*Claims)
	return raw, ok && raw != nil
}

// EnrichContext is a jwtware.Config.ContextEnricher propagating claims to
// the request context.
func EnrichContext(ctx context.Context, claims jwtware.AuthClaims) context.Context {
	c, ok := claims.(*Claims)
	if !ok {
		return ctx
	}
	return WithClaimsContext(ctx, c)
}

// CurrentClaims returns the verified claims of the request, if any.
func CurrentClaims(c router.Context, key string) (jwtware.AuthClaims, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	raw := c.Get(key, nil)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(jwtware.AuthClaims)
	if !ok || claims == nil || claims.Username() == "" {
		return nil, false
	}
	return claims, true
}

// CurrentUsername returns the authenticated username or "".
func CurrentUsername(c router.Context, key string) string {
	claims, ok := CurrentClaims(c, key)
	if !ok {
		return ""
	}
	return claims.Username()
}
