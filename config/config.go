// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

const (
	DefaultAddr            = ":3000"
	DefaultTokenExpiration = 24 * time.Hour
	DefaultIssuer          = "messagely"
	DefaultContextKey      = "user"
	DefaultTokenLookup     = "header:Authorization,body:_token,query:_token"
	DefaultAuthScheme      = "Bearer"
	DefaultDBDriver        = "sqlite"
	DefaultDBDSN           = "file:messagely.db?cache=shared"
	DefaultBcryptCost      = 12
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLoginTouch      = "sync"
	DefaultDBName          = "messagely"
	DefaultDBPingTimeout   = 5 * time.Second
)

type Config struct {
	Addr             string
	SigningKey       string
	TokenExpiration  time.Duration
	Issuer           string
	ContextKey       string
	TokenLookup      string
	AuthScheme       string
	DBDriver         string
	DBDSN            string
	DBName           string
	DBDebug          bool
	DBPingTimeout    time.Duration
	DBOtelIdentifier string
	BcryptCost       int
	LogLevel         string
	ShutdownTimeout  time.Duration
	// LoginTouch is sync or async
	LoginTouch string
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads the configuration using lookup.
func LoadFrom(lookup func(string) (string, bool)) (*Config, error) {
	env := envReader{lookup: lookup}

	cfg := &Config{
		Addr:             env.str("MESSAGELY_ADDR", DefaultAddr),
		SigningKey:       env.str("SECRET_KEY", ""),
		TokenExpiration:  env.duration("MESSAGELY_TOKEN_EXPIRATION", DefaultTokenExpiration),
		Issuer:           env.str("MESSAGELY_TOKEN_ISSUER", DefaultIssuer),
		ContextKey:       env.str("MESSAGELY_CONTEXT_KEY", DefaultContextKey),
		TokenLookup:      env.str("MESSAGELY_TOKEN_LOOKUP", DefaultTokenLookup),
		AuthScheme:       env.str("MESSAGELY_AUTH_SCHEME", DefaultAuthScheme),
		DBDriver:         env.str("DB_DRIVER", DefaultDBDriver),
		DBDSN:            env.str("DB_DSN", DefaultDBDSN),
		DBName:           env.str("DB_NAME", DefaultDBName),
		DBDebug:          env.boolean("DB_DEBUG", false),
		DBPingTimeout:    env.duration("DB_PING_TIMEOUT", DefaultDBPingTimeout),
		DBOtelIdentifier: env.str("DB_OTEL_IDENTIFIER", ""),
		BcryptCost:       env.integer("BCRYPT_WORK_FACTOR", DefaultBcryptCost),
		LogLevel:         env.str("MESSAGELY_LOG_LEVEL", "info"),
		ShutdownTimeout:  env.duration("MESSAGELY_SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),
		LoginTouch:       env.str("MESSAGELY_LOGIN_TOUCH", DefaultLoginTouch),
	}

	if env.err != nil {
		return nil, env.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate will validate the configuration
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.SigningKey, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.TokenExpiration, validation.Min(time.Duration(0))),
		validation.Field(&c.ContextKey, validation.Required),
		validation.Field(&c.TokenLookup, validation.Required),
		validation.Field(&c.DBDriver, validation.Required, validation.In("sqlite", "sqlite3", "postgres", "pgx")),
		validation.Field(&c.DBDSN, validation.Required),
		validation.Field(&c.DBPingTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.BcryptCost, validation.Min(4), validation.Max(31)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LoginTouch, validation.In("sync", "async")),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid configuration")
	}
	return nil
}

func (c *Config) GetSigningKey() string {
	return c.SigningKey
}

func (c *Config) GetTokenExpiration() time.Duration {
	return c.TokenExpiration
}

func (c *Config) GetIssuer() string {
	return c.Issuer
}

func (c *Config) GetContextKey() string {
	return c.ContextKey
}

func (c *Config) GetTokenLookup() string {
	return c.TokenLookup
}

func (c *Config) GetAuthScheme() string {
	return c.AuthScheme
}

func (c *Config) GetDebug() bool {
	return c.DBDebug
}

func (c *Config) GetDriver() string {
	return c.DBDriver
}

func (c *Config) GetServer() string {
	return c.DBDSN
}

func (c *Config) GetDatabase() string {
	return c.DBName
}

func (c *Config) GetPingTimeout() time.Duration {
	return c.DBPingTimeout
}

func (c *Config) GetOtelIdentifier() string {
	return c.DBOtelIdentifier
}

type envReader struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *envReader) str(key, def string) string {
	if v, ok := e.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (e *envReader) integer(key string, def int) int {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("config: %s: %w", key, err)
	}
	return n
}

func (e *envReader) boolean(key string, def bool) bool {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("config: %s: %w", key, err)
	}
	return b
}

// duration accepts Go durations ("90m") or plain seconds ("3600").
func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return def
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("config: %s: %w", key, err)
	}
	return d
}
