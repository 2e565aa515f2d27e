package messagely

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-messagely/middleware/jwtware"
	"github.com/goliatone/go-router"
)

// IdentityMiddleware builds the identity extractor from cfg. Requests
// without a valid token continue anonymously. It has to be registered with
// Use before any route that reads the identity.
func IdentityMiddleware(cfg Config, tokens TokenService) router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		TokenValidator:  NewTokenValidator(tokens),
		AuthScheme:      cfg.GetAuthScheme(),
		ContextKey:      cfg.GetContextKey(),
		TokenLookup:     cfg.GetTokenLookup(),
		ContextEnricher: EnrichContext,
	})
}

// NewServer returns a fiber backed router server. Handler errors are
// rendered by ErrorHandler and panics are recovered. Extra fiber middleware
// runs ahead of every route.
func NewServer(logger Logger, middleware ...fiber.Handler) router.Server[*fiber.App] {
	return router.NewFiberAdapter(func(_ *fiber.App) *fiber.App {
		app := fiber.New(fiber.Config{
			AppName:      "messagely",
			ErrorHandler: ErrorHandler(logger),
		})
		app.Use(recover.New())
		for _, mw := range middleware {
			app.Use(mw)
		}
		return app
	})
}

// ErrorHandler renders err as a JSON error response. Route handlers return
// their errors through the router to the fiber app, so it is installed as
// fiber.Config.ErrorHandler.
func ErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger()
	}

	return func(c *fiber.Ctx, err error) error {
		richErr := toRichError(err)
		status := StatusCode(richErr)

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", append(errorAttrs(err), "path", c.Path(), "method", c.Method())...)
			richErr = goerrors.New("An unexpected server error occurred", goerrors.CategoryInternal).
				WithCode(status)
		} else {
			logger.Debug("request rejected", append(errorAttrs(err), "path", c.Path(), "method", c.Method())...)
		}

		body := richErr.Clone()
		body.Source = nil
		body.StackTrace = nil
		body.Location = nil

		return c.Status(status).JSON(goerrors.ErrorResponse{Error: body})
	}
}

func toRichError(err error) *goerrors.Error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}

	var fiberErr *fiber.Error
	if goerrors.As(err, &fiberErr) {
		return goerrors.Wrap(err, goerrors.HTTPStatusToCategory(fiberErr.Code), fiberErr.Message).
			WithCode(fiberErr.Code)
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
		WithCode(http.StatusInternalServerError)
}

// bindBody decodes the request body into out. An empty body leaves out
// untouched so payload validation reports the missing fields.
func bindBody(c router.Context, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.Bind(out); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid request body").
			WithCode(http.StatusBadRequest)
	}
	return nil
}
