package messagely_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-messagely"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDirectory implements messagely.Directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) Create(ctx context.Context, profile messagely.Profile) (*messagely.User, error) {
	args := m.Called(ctx, profile)
	if u := args.Get(0); u != nil {
		return u.(*messagely.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDirectory) GetByUsername(ctx context.Context, username string) (*messagely.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*messagely.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDirectory) List(ctx context.Context) ([]*messagely.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.([]*messagely.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDirectory) TouchLastLogin(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockDirectory) VerifyPassword(ctx context.Context, username, password string) (bool, error) {
	args := m.Called(ctx, username, password)
	return args.Bool(0), args.Error(1)
}

// MockMessageStore implements messagely.MessageStore
type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) Create(ctx context.Context, message *messagely.Message) (*messagely.Message, error) {
	args := m.Called(ctx, message)
	if msg := args.Get(0); msg != nil {
		return msg.(*messagely.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageStore) Get(ctx context.Context, id uuid.UUID) (*messagely.Message, error) {
	args := m.Called(ctx, id)
	if msg := args.Get(0); msg != nil {
		return msg.(*messagely.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageStore) MarkRead(ctx context.Context, id uuid.UUID) (*messagely.Message, error) {
	args := m.Called(ctx, id)
	if msg := args.Get(0); msg != nil {
		return msg.(*messagely.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageStore) ListTo(ctx context.Context, username string) ([]*messagely.Message, error) {
	args := m.Called(ctx, username)
	if msgs := args.Get(0); msgs != nil {
		return msgs.([]*messagely.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockMessageStore) ListFrom(ctx context.Context, username string) ([]*messagely.Message, error) {
	args := m.Called(ctx, username)
	if msgs := args.Get(0); msgs != nil {
		return msgs.([]*messagely.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAuthenticator implements messagely.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) Register(ctx context.Context, msg messagely.RegisterUserMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// recordingSink collects activity events
type recordingSink struct {
	mu     sync.Mutex
	events []messagely.ActivityEvent
}

func (s *recordingSink) Record(_ context.Context, event messagely.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Types() []messagely.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]messagely.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

const testSigningKey = "test-signing-key-0123456789"

func newTestTokens() *messagely.TokenServiceImpl {
	return messagely.NewTokenService([]byte(testSigningKey), 0, "", nopLogger{})
}

// testConfig implements messagely.Config with the service defaults
type testConfig struct{}

func (testConfig) GetSigningKey() string             { return testSigningKey }
func (testConfig) GetTokenExpiration() time.Duration { return 0 }
func (testConfig) GetIssuer() string                 { return "" }
func (testConfig) GetContextKey() string             { return messagely.DefaultContextKey }
func (testConfig) GetTokenLookup() string            { return "header:Authorization,body:_token,query:_token" }
func (testConfig) GetAuthScheme() string             { return "Bearer" }

func doJSON(t *testing.T, app *fiber.App, req *http.Request, out any) int {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// newTestServer wires the identity extractor ahead of the routes added by
// mount, the same way the service does.
func newTestServer(tokens messagely.TokenService, mount func(r router.Router[*fiber.App])) *fiber.App {
	srv := messagely.NewServer(nopLogger{})
	r := srv.Router()
	r.Use(messagely.IdentityMiddleware(testConfig{}, tokens))
	mount(r)
	return srv.WrappedRouter()
}
