package config_test

import (
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messagely/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(lookupFrom(map[string]string{
		"SECRET_KEY": "a-very-secret-signing-key",
	}))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultAddr, cfg.Addr)
	assert.Equal(t, "a-very-secret-signing-key", cfg.GetSigningKey())
	assert.Equal(t, config.DefaultTokenExpiration, cfg.GetTokenExpiration())
	assert.Equal(t, config.DefaultIssuer, cfg.GetIssuer())
	assert.Equal(t, config.DefaultContextKey, cfg.GetContextKey())
	assert.Equal(t, config.DefaultTokenLookup, cfg.GetTokenLookup())
	assert.Equal(t, config.DefaultAuthScheme, cfg.GetAuthScheme())
	assert.Equal(t, config.DefaultDBDriver, cfg.DBDriver)
	assert.Equal(t, config.DefaultDBDSN, cfg.DBDSN)
	assert.Equal(t, config.DefaultBcryptCost, cfg.BcryptCost)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, config.DefaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.Equal(t, config.DefaultLoginTouch, cfg.LoginTouch)
	assert.Equal(t, config.DefaultDBName, cfg.GetDatabase())
	assert.Equal(t, config.DefaultDBPingTimeout, cfg.GetPingTimeout())
	assert.False(t, cfg.GetDebug())
	assert.Empty(t, cfg.GetOtelIdentifier())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := config.LoadFrom(lookupFrom(map[string]string{
		"SECRET_KEY":                 "a-very-secret-signing-key",
		"MESSAGELY_ADDR":             "127.0.0.1:8080",
		"MESSAGELY_TOKEN_EXPIRATION": "3600",
		"MESSAGELY_SHUTDOWN_TIMEOUT": "1m30s",
		"DB_DRIVER":                  "postgres",
		"DB_DSN":                     "postgres://localhost/messagely",
		"BCRYPT_WORK_FACTOR":         "4",
		"MESSAGELY_LOG_LEVEL":        "debug",
		"MESSAGELY_LOGIN_TOUCH":      "async",
		"DB_DEBUG":                   "true",
		"DB_PING_TIMEOUT":            "250ms",
		"DB_OTEL_IDENTIFIER":         "messagely-db",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, time.Hour, cfg.TokenExpiration)
	assert.Equal(t, 90*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "async", cfg.LoginTouch)
	assert.Equal(t, "postgres", cfg.GetDriver())
	assert.Equal(t, "postgres://localhost/messagely", cfg.GetServer())
	assert.True(t, cfg.GetDebug())
	assert.Equal(t, 250*time.Millisecond, cfg.GetPingTimeout())
	assert.Equal(t, "messagely-db", cfg.GetOtelIdentifier())
}

func TestLoadFrom_ZeroExpirationDisablesExpiry(t *testing.T) {
	cfg, err := config.LoadFrom(lookupFrom(map[string]string{
		"SECRET_KEY":                 "a-very-secret-signing-key",
		"MESSAGELY_TOKEN_EXPIRATION": "0",
	}))
	require.NoError(t, err)
	assert.Zero(t, cfg.TokenExpiration)
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		validation bool
	}{
		{
			name:       "missing secret",
			env:        map[string]string{},
			validation: true,
		},
		{
			name:       "short secret",
			env:        map[string]string{"SECRET_KEY": "short"},
			validation: true,
		},
		{
			name:       "unknown driver",
			env:        map[string]string{"SECRET_KEY": "a-very-secret-signing-key", "DB_DRIVER": "mysql"},
			validation: true,
		},
		{
			name:       "bcrypt cost out of range",
			env:        map[string]string{"SECRET_KEY": "a-very-secret-signing-key", "BCRYPT_WORK_FACTOR": "40"},
			validation: true,
		},
		{
			name:       "unknown login touch mode",
			env:        map[string]string{"SECRET_KEY": "a-very-secret-signing-key", "MESSAGELY_LOGIN_TOUCH": "later"},
			validation: true,
		},
		{
			name: "bad duration",
			env:  map[string]string{"SECRET_KEY": "a-very-secret-signing-key", "MESSAGELY_TOKEN_EXPIRATION": "soon"},
		},
		{
			name: "bad boolean",
			env:  map[string]string{"SECRET_KEY": "a-very-secret-signing-key", "DB_DEBUG": "sometimes"},
		},
		{
			name: "bad integer",
			env:  map[string]string{"SECRET_KEY": "a-very-secret-signing-key", "BCRYPT_WORK_FACTOR": "twelve"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.LoadFrom(lookupFrom(tt.env))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Equal(t, tt.validation, goerrors.IsValidation(err))
		})
	}
}
