package jwtware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup = "header:" + router.HeaderAuthorization + ",body:_token,query:_token"
	ErrJWTMissing      = errors.New("missing JWT")
)

// maxFormMemory bounds multipart parsing of the body token field
const maxFormMemory = 1 << 20

// TokenValidator interface for validating tokens without import cycles
// This mirrors the TokenService.Verify method from the messagely package
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims is the minimum a verified token has to expose
type AuthClaims interface {
	Username() string
}

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	// ErrorHandler runs when a candidate token fails verification. The
	// default records the error under ErrorKey and lets the request through.
	ErrorHandler func(router.Context, error) error
	ContextKey   string
	ErrorKey     string
	// TokenLookup is a comma separated list of source:name pairs, tried in
	// order: header:Authorization,body:_token,query:_token
	TokenLookup string
	AuthScheme  string
	// TokenValidator is required for token validation
	TokenValidator TokenValidator

	// ContextEnricher is an optional function to propagate claims to the standard
	// Go context. If provided, it will be called after successful token validation.
	ContextEnricher func(c context.Context, claims AuthClaims) context.Context
}

// New returns the identity extraction middleware. It never rejects a request
// unless a custom ErrorHandler does.
func New(config ...Config) router.MiddlewareFunc {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawTokenFromContext(ctx, extractors)
			if err != nil {
				// anonymous request
				return ctx.Next()
			}

			claims, err := cfg.TokenValidator.Validate(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if claims == nil || claims.Username() == "" {
				return cfg.ErrorHandler(ctx, ErrJWTMissing)
			}

			ctx.Set(cfg.ContextKey, claims)

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), claims))
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

// ExtractRawTokenFromContext returns the first candidate token found by
// extractors, in order.
func ExtractRawTokenFromContext(ctx router.Context, extractors []JWTExtractor) (string, error) {
	for _, extractor := range extractors {
		raw, err := extractor(ctx)
		if raw != "" && err == nil {
			return raw, nil
		}
	}
	return "", ErrJWTMissing
}

// VerificationError returns the error recorded by the default ErrorHandler.
func VerificationError(ctx router.Context, key string) error {
	if key == "" {
		key = DefaultErrorKey
	}
	err, _ := ctx.Get(key, nil).(error)
	return err
}

// DefaultErrorKey is the context key for token verification failures
const DefaultErrorKey = "auth_error"

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.TokenValidator == nil {
		panic("MESSAGELY: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.ErrorKey == "" {
		cfg.ErrorKey = DefaultErrorKey
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		errorKey := cfg.ErrorKey
		cfg.ErrorHandler = func(ctx router.Context, err error) error {
			ctx.Set(errorKey, err)
			return ctx.Next()
		}
	}

	return cfg
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func GetExtractors(tokenLookup string, authSchemes ...string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 && strings.TrimSpace(authSchemes[0]) != "" {
		authScheme = strings.TrimSpace(authSchemes[0])
	}

	// header:Authorization,body:_token,query:_token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, jwtFromHeader(parts[1], authScheme))
		case "body":
			extractors = append(extractors, jwtFromBody(parts[1]))
		case "query":
			extractors = append(extractors, jwtFromQuery(parts[1]))
		case "param":
			extractors = append(extractors, jwtFromParam(parts[1]))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(parts[1]))
		}
	}

	return extractors
}

type JWTExtractor func(ctx router.Context) (string, error)

// jwtFromHeader extracts the token from a request header. The auth scheme
// prefix is stripped when present, otherwise the value is used verbatim.
func jwtFromHeader(header string, authScheme string) JWTExtractor {
	return func(ctx router.Context) (string, error) {
		a := strings.TrimSpace(ctx.Header(header))
		if a == "" {
			return "", ErrJWTMissing
		}
		l := len(authScheme)
		if len(a) > l && strings.EqualFold(a[:l], authScheme) && a[l] == ' ' {
			a = strings.TrimSpace(a[l:])
		}
		if a == "" {
			return "", ErrJWTMissing
		}
		return a, nil
	}
}

// jwtFromBody extracts the token from a JSON, urlencoded or multipart body
// field. The query string is never consulted.
func jwtFromBody(field string) JWTExtractor {
	return func(ctx router.Context) (string, error) {
		body := ctx.Body()
		if len(body) == 0 {
			return "", ErrJWTMissing
		}

		mediaType, params, err := mime.ParseMediaType(ctx.Header(router.HeaderContentType))
		if err != nil {
			return "", ErrJWTMissing
		}

		var token string
		switch mediaType {
		case "application/json":
			payload := map[string]any{}
			if err := json.Unmarshal(body, &payload); err != nil {
				return "", ErrJWTMissing
			}
			token, _ = payload[field].(string)
		case "application/x-www-form-urlencoded":
			values, err := url.ParseQuery(string(body))
			if err != nil {
				return "", ErrJWTMissing
			}
			token = values.Get(field)
		case "multipart/form-data":
			form, err := multipart.NewReader(bytes.NewReader(body), params["boundary"]).ReadForm(maxFormMemory)
			if err != nil {
				return "", ErrJWTMissing
			}
			defer form.RemoveAll()
			if values := form.Value[field]; len(values) > 0 {
				token = values[0]
			}
		}

		if token == "" {
			return "", ErrJWTMissing
		}
		return token, nil
	}
}

// jwtFromQuery returns a function that extracts token from the query string.
func jwtFromQuery(param string) JWTExtractor {
	return func(ctx router.Context) (string, error) {
		token := ctx.Query(param, "")
		if token == "" {
			return "", ErrJWTMissing
		}
		return token, nil
	}
}

// jwtFromParam returns a function that extracts token from the url param string.
func jwtFromParam(param string) JWTExtractor {
	return func(ctx router.Context) (string, error) {
		token := ctx.Param(param, "")
		if token == "" {
			return "", ErrJWTMissing
		}
		return token, nil
	}
}

// jwtFromCookie returns a function that extracts token from the named cookie.
func jwtFromCookie(name string) JWTExtractor {
	return func(ctx router.Context) (string, error) {
		cookies, err := http.ParseCookie(ctx.Header("Cookie"))
		if err != nil {
			return "", ErrJWTMissing
		}
		for _, cookie := range cookies {
			if cookie.Name == name && cookie.Value != "" {
				return cookie.Value, nil
			}
		}
		return "", ErrJWTMissing
	}
}
