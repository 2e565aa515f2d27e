package messagely_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-messagely"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimsFor(username string) *messagely.Claims {
	return &messagely.Claims{User: username}
}

func TestRequireIdentity(t *testing.T) {
	username, err := messagely.RequireIdentity(claimsFor("alice"))
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	_, err = messagely.RequireIdentity(nil)
	assert.ErrorIs(t, err, messagely.ErrUnauthorized)

	_, err = messagely.RequireIdentity(claimsFor(""))
	assert.ErrorIs(t, err, messagely.ErrUnauthorized)
}

func TestRequireOwner(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		username, err := messagely.RequireOwner(claimsFor("alice"), "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", username)
	})

	t.Run("someone else", func(t *testing.T) {
		_, err := messagely.RequireOwner(claimsFor("bob"), "alice")
		assert.ErrorIs(t, err, messagely.ErrUnauthorized)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := messagely.RequireOwner(nil, "alice")
		assert.ErrorIs(t, err, messagely.ErrUnauthorized)
	})

	t.Run("empty target", func(t *testing.T) {
		_, err := messagely.RequireOwner(claimsFor("alice"), "")
		assert.ErrorIs(t, err, messagely.ErrUnauthorized)
	})
}

func TestAuthorizeParticipant(t *testing.T) {
	message := &messagely.Message{FromUsername: "test1", ToUsername: "test2"}

	assert.NoError(t, messagely.AuthorizeParticipant("test1", message))
	assert.NoError(t, messagely.AuthorizeParticipant("test2", message))
	assert.ErrorIs(t, messagely.AuthorizeParticipant("test3", message), messagely.ErrUnauthorized)
	assert.ErrorIs(t, messagely.AuthorizeParticipant("", message), messagely.ErrUnauthorized)
	assert.ErrorIs(t, messagely.AuthorizeParticipant("test1", nil), messagely.ErrUnauthorized)
}

func TestAuthorizeRecipient(t *testing.T) {
	message := &messagely.Message{FromUsername: "test1", ToUsername: "test2"}

	assert.NoError(t, messagely.AuthorizeRecipient("test2", message))
	assert.ErrorIs(t, messagely.AuthorizeRecipient("test1", message), messagely.ErrUnauthorized)
	assert.ErrorIs(t, messagely.AuthorizeRecipient("test3", message), messagely.ErrUnauthorized)
}

func TestAuthorizeSender(t *testing.T) {
	assert.NoError(t, messagely.AuthorizeSender("test1", ""))
	assert.NoError(t, messagely.AuthorizeSender("test1", "test1"))
	assert.ErrorIs(t, messagely.AuthorizeSender("test1", "test2"), messagely.ErrUnauthorized)
	assert.ErrorIs(t, messagely.AuthorizeSender("", ""), messagely.ErrUnauthorized)
}

// guardedApp stores claims for the username in the X-Test-User header,
// standing in for the identity extractor.
func guardedApp(guard router.MiddlewareFunc, path string) *fiber.App {
	srv := messagely.NewServer(nopLogger{})
	r := srv.Router()
	r.Use(router.ToMiddleware(func(c router.Context) error {
		if u := c.Header("X-Test-User"); u != "" {
			c.Set(messagely.DefaultContextKey, claimsFor(u))
		}
		return nil
	}))
	r.Get(path, func(c router.Context) error {
		return c.Send([]byte(messagely.CurrentUsername(c, "")))
	}, guard)
	return srv.WrappedRouter()
}

func TestEnsureAuthenticated(t *testing.T) {
	app := guardedApp(messagely.EnsureAuthenticated(), "/users")

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("X-Test-User", "alice")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEnsureIsResourceOwner(t *testing.T) {
	app := guardedApp(messagely.EnsureIsResourceOwner("username"), "/users/:username")

	tests := []struct {
		name     string
		user     string
		path     string
		expected int
	}{
		{name: "owner", user: "alice", path: "/users/alice", expected: http.StatusOK},
		{name: "other user", user: "bob", path: "/users/alice", expected: http.StatusUnauthorized},
		{name: "anonymous", user: "", path: "/users/alice", expected: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.user != "" {
				req.Header.Set("X-Test-User", tt.user)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp.StatusCode)
		})
	}
}
