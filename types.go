package messagely

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() time.Duration
	GetIssuer() string
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
}

// TokenService issues and verifies identity tokens
type TokenService interface {
	Issue(username string) (string, error)
	Verify(token string) (*Claims, error)
}

// Authenticator runs the credential flows, see Auther
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, msg RegisterUserMessage) (string, error)
}

// Profile holds the fields a new identity is created with
type Profile struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Directory is the user store the core calls into. It owns password
// hashing and must signal a taken username with ErrDuplicateUsername.
type Directory interface {
	Create(ctx context.Context, profile Profile) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	TouchLastLogin(ctx context.Context, username string) error
	VerifyPassword(ctx context.Context, username, password string) (bool, error)
}

// MessageStore persists messages. Unknown ids return ErrMessageNotFound.
type MessageStore interface {
	Create(ctx context.Context, message *Message) (*Message, error)
	Get(ctx context.Context, id uuid.UUID) (*Message, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*Message, error)
	ListTo(ctx context.Context, username string) ([]*Message, error)
	ListFrom(ctx context.Context, username string) ([]*Message, error)
}

// SlogLogger adapts a slog.Logger to Logger
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps l, falling back to a text handler on stdout.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	return &SlogLogger{l: l}
}

func (s *SlogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *SlogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *SlogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *SlogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

// With returns a logger that always includes args.
func (s *SlogLogger) With(args ...any) *SlogLogger {
	return &SlogLogger{l: s.l.With(args...)}
}

func defLogger() Logger {
	return NewSlogLogger(slog.Default()).With("component", "messagely")
}
