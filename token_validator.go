package messagely

import "github.com/goliatone/go-messagely/middleware/jwtware"

// TokenValidatorFunc adapts a function into a jwtware.TokenValidator.
type TokenValidatorFunc func(tokenString string) (jwtware.AuthClaims, error)

// Validate satisfies the jwtware.TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (jwtware.AuthClaims, error) {
	if f == nil {
		return nil, ErrInvalidToken
	}
	return f(tokenString)
}

// NewTokenValidator exposes tokens.Verify to the identity extractor.
func NewTokenValidator(tokens TokenService) jwtware.TokenValidator {
	return TokenValidatorFunc(func(tokenString string) (jwtware.AuthClaims, error) {
		claims, err := tokens.Verify(tokenString)
		if err != nil {
			return nil, err
		}
		return claims, nil
	})
}
