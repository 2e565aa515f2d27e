package messagely

import (
	"context"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultLoginTouchTimeout bounds detached last login updates
const DefaultLoginTouchTimeout = 5 * time.Second

// Auther runs the login and registration flows
type Auther struct {
	directory         Directory
	tokens            TokenService
	logger            Logger
	activitySink      ActivitySink
	asyncLoginTouch   bool
	loginTouchTimeout time.Duration
	wg                sync.WaitGroup
}

// AutherOption configures an Auther
type AutherOption func(*Auther)

// WithLogger sets the logger
func WithLogger(logger Logger) AutherOption {
	return func(a *Auther) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func WithActivitySink(sink ActivitySink) AutherOption {
	return func(a *Auther) {
		a.activitySink = normalizeActivitySink(sink)
	}
}

// WithAsyncLoginTracking detaches the last login update from the response.
// Failures are logged and emitted as auth.login.touch_failed events.
func WithAsyncLoginTracking(timeout time.Duration) AutherOption {
	return func(a *Auther) {
		a.asyncLoginTouch = true
		if timeout > 0 {
			a.loginTouchTimeout = timeout
		}
	}
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(directory Directory, tokens TokenService, opts ...AutherOption) *Auther {
	a := &Auther{
		directory:         directory,
		tokens:            tokens,
		logger:            defLogger(),
		activitySink:      noopActivitySink{},
		loginTouchTimeout: DefaultLoginTouchTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Login verifies the credentials and returns a token for username.
func (a *Auther) Login(ctx context.Context, username, password string) (string, error) {
	ok, err := a.directory.VerifyPassword(ctx, username, password)
	if err != nil {
		if goerrors.Is(err, ErrUserNotFound) {
			ok = false
		} else {
			a.logger.Error("Login verify password error", errorAttrs(err)...)
			a.emit(ctx, ActivityEventLoginFailure, username, map[string]any{"error": err.Error()})
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to verify credentials")
		}
	}

	if !ok {
		a.emit(ctx, ActivityEventLoginFailure, username, map[string]any{"error": ErrInvalidCredentials.Message})
		return "", ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(username)
	if err != nil {
		a.logger.Error("Login failed to issue token", errorAttrs(err)...)
		a.emit(ctx, ActivityEventLoginFailure, username, map[string]any{"error": err.Error()})
		return "", err
	}

	if err := a.touchLastLogin(ctx, username); err != nil {
		return "", err
	}

	a.emit(ctx, ActivityEventLoginSuccess, username, nil)

	return token, nil
}

// Register creates the identity described by msg and returns a token for it.
func (a *Auther) Register(ctx context.Context, msg RegisterUserMessage) (string, error) {
	select {
	case <-ctx.Done():
		return "", goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during user registration")
	default:
	}

	if err := msg.Validate(); err != nil {
		return "", err
	}

	profile := msg.Profile()

	user, err := a.directory.Create(ctx, profile)
	if err != nil {
		if goerrors.Is(err, ErrDuplicateUsername) {
			a.emit(ctx, ActivityEventRegisterFailure, profile.Username, map[string]any{"error": ErrDuplicateUsername.Message})
			return "", ErrDuplicateUsername
		}
		a.logger.Error("Register create user error", errorAttrs(err)...)
		a.emit(ctx, ActivityEventRegisterFailure, profile.Username, map[string]any{"error": err.Error()})
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "user registration failed")
	}

	token, err := a.tokens.Issue(user.Username)
	if err != nil {
		a.logger.Error("Register failed to issue token", errorAttrs(err)...)
		return "", err
	}

	if err := a.touchLastLogin(ctx, user.Username); err != nil {
		return "", err
	}

	a.emit(ctx, ActivityEventRegisterSuccess, user.Username, nil)

	return token, nil
}

// Wait blocks until detached last login updates have finished.
func (a *Auther) Wait() {
	a.wg.Wait()
}

func (a *Auther) touchLastLogin(ctx context.Context, username string) error {
	if !a.asyncLoginTouch {
		if err := a.directory.TouchLastLogin(ctx, username); err != nil {
			a.logger.Error("failed to track successful login", errorAttrs(err)...)
			a.emit(ctx, ActivityEventLoginTouchFailed, username, map[string]any{"error": err.Error()})
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record last login")
		}
		return nil
	}

	// request strings may alias buffers the server reuses
	username = strings.Clone(username)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		touchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.loginTouchTimeout)
		defer cancel()
		if err := a.directory.TouchLastLogin(touchCtx, username); err != nil {
			a.logger.Error("failed to track successful login", append(errorAttrs(err), "username", username)...)
			a.emit(touchCtx, ActivityEventLoginTouchFailed, username, map[string]any{"error": err.Error()})
		}
	}()

	return nil
}

func (a *Auther) emit(ctx context.Context, eventType ActivityEventType, username string, metadata map[string]any) {
	emitActivity(ctx, a.activitySink, a.logger, eventType, username, metadata)
}
