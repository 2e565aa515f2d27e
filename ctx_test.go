package messagely_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-messagely"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimsContext(t *testing.T) {
	ctx := context.Background()

	_, ok := messagely.ClaimsFromContext(ctx)
	assert.False(t, ok)

	claims := claimsFor("alice")
	ctx = messagely.WithClaimsContext(ctx, claims)

	got, ok := messagely.ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, claims, got)

	enriched := messagely.EnrichContext(context.Background(), claims)
	got, ok = messagely.ClaimsFromContext(enriched)
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username())
}

func TestIdentityMiddleware_PopulatesSlots(t *testing.T) {
	tokens := newTestTokens()
	cfg := testConfig{}

	app := newTestServer(tokens, func(r router.Router[*fiber.App]) {
		r.Get("/", func(c router.Context) error {
			fromCtx, _ := messagely.ClaimsFromContext(c.Context())
			username := ""
			if fromCtx != nil {
				username = fromCtx.Username()
			}
			return c.JSON(http.StatusOK, map[string]string{
				"locals":  messagely.CurrentUsername(c, cfg.GetContextKey()),
				"context": username,
			})
		})
	})

	token, err := tokens.Issue("alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	var out map[string]string
	status := doJSON(t, app, req, &out)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", out["locals"])
	assert.Equal(t, "alice", out["context"])

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	out = nil
	status = doJSON(t, app, req, &out)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, out["locals"])
	assert.Empty(t, out["context"])
}
