package messagely_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-messagely"
	"github.com/goliatone/go-messagely/middleware/jwtware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenValidator(t *testing.T) {
	tokens := newTestTokens()
	validator := messagely.NewTokenValidator(tokens)

	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	claims, err := validator.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username())

	claims, err = validator.Validate("bad")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, messagely.ErrInvalidToken)
}

func TestTokenValidatorFunc(t *testing.T) {
	var nilFunc messagely.TokenValidatorFunc
	claims, err := nilFunc.Validate("token")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, messagely.ErrInvalidToken)

	boom := errors.New("boom")
	calls := 0
	fn := messagely.TokenValidatorFunc(func(token string) (jwtware.AuthClaims, error) {
		calls++
		assert.Equal(t, "token", token)
		return nil, boom
	})

	_, err = fn.Validate("token")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
