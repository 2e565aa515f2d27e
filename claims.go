package messagely

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: the username plus registered claims
type Claims struct {
	jwt.RegisteredClaims
	User string `json:"username"`
}

// Username returns the username claim
func (c *Claims) Username() string {
	if c == nil {
		return ""
	}
	return c.User
}

// IssuedAt returns the issued at time
func (c *Claims) IssuedAt() time.Time {
	if c == nil || c.RegisteredClaims.IssuedAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.IssuedAt.Time
}

// Expires returns the expiration time, zero for non expiring tokens
func (c *Claims) Expires() time.Time {
	if c == nil || c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}
