package messagely

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeUnauthorized      = "UNAUTHORIZED"
	TextCodeDuplicateUsername = "DUPLICATE_USERNAME"
	TextCodeUserNotFound      = "USER_NOT_FOUND"
	TextCodeMessageNotFound   = "MESSAGE_NOT_FOUND"
)

// ErrUnauthorized is returned by guards when the request has no identity or
// the identity does not own the resource.
var ErrUnauthorized = goerrors.New("unauthorized", goerrors.CategoryAuthz).
	WithCode(http.StatusUnauthorized).
	WithTextCode(TextCodeUnauthorized)

// ErrInvalidToken bad signature, unexpected algorithm or undecodable payload
var ErrInvalidToken = goerrors.New("invalid token", goerrors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode(goerrors.TextCodeTokenMalformed)

// ErrTokenExpired only happens when token expiration is configured
var ErrTokenExpired = goerrors.New("token expired", goerrors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode(goerrors.TextCodeTokenExpired)

// ErrInvalidCredentials unknown username or password mismatch
var ErrInvalidCredentials = goerrors.New("invalid username or password", goerrors.CategoryAuth).
	WithCode(http.StatusBadRequest).
	WithTextCode(goerrors.TextCodeInvalidCredentials)

// ErrDuplicateUsername is the typed signal a Directory returns when the
// username is already taken.
var ErrDuplicateUsername = goerrors.New("username already taken", goerrors.CategoryConflict).
	WithCode(http.StatusBadRequest).
	WithTextCode(TextCodeDuplicateUsername)

// ErrUserNotFound no user with the given username
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithCode(http.StatusNotFound).
	WithTextCode(TextCodeUserNotFound)

// ErrMessageNotFound no message with the given id
var ErrMessageNotFound = goerrors.New("message not found", goerrors.CategoryNotFound).
	WithCode(http.StatusNotFound).
	WithTextCode(TextCodeMessageNotFound)

// ErrNoEmptyString empty passwords are not hashed
var ErrNoEmptyString = goerrors.New("empty string not allowed", goerrors.CategoryBadInput).
	WithCode(http.StatusBadRequest).
	WithTextCode(goerrors.TextCodeEmptyPassword)

// IsInvalidTokenError reports whether err is a token verification failure.
func IsInvalidTokenError(err error) bool {
	return goerrors.Is(err, ErrInvalidToken) || goerrors.Is(err, ErrTokenExpired)
}

// StatusCode resolves the HTTP status for err.
func StatusCode(err error) int {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return http.StatusInternalServerError
	}

	if richErr.Code != 0 {
		return richErr.Code
	}

	switch richErr.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return http.StatusUnauthorized
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

func errorAttrs(err error) []any {
	attrs := []any{"error", err}
	for _, attr := range goerrors.ToSlogAttributes(err) {
		attrs = append(attrs, attr)
	}
	return attrs
}
