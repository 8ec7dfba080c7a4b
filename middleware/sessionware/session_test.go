package sessionware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-tasks/middleware/sessionware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct {
	userID string
}

func (s stubSession) GetUserID() string            { return s.userID }
func (s stubSession) GetUserIDInt() (int64, error) { return 0, nil }
func (s stubSession) GetIssuedAt() *time.Time      { return nil }
func (s stubSession) GetExpiration() *time.Time    { return nil }

type stubValidator struct {
	session sessionware.Session
	err     error
	calls   int
}

func (v *stubValidator) Validate(raw string) (sessionware.Session, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	return v.session, nil
}

func newApp(validator *stubValidator) *fiber.App {
	app := fiber.New()

	app.Get("/protected", sessionware.New(sessionware.Config{
		TokenValidator: validator,
	}), func(c *fiber.Ctx) error {
		session, ok := sessionware.SessionFromContext(c, sessionware.DefaultContextKey)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{"user_id": session.GetUserID()})
	})

	return app
}

func TestNew(t *testing.T) {
	t.Run("missing cookie is rejected before validation", func(t *testing.T) {
		validator := &stubValidator{}
		app := newApp(validator)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		res, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Zero(t, validator.calls)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		validator := &stubValidator{err: errors.New("bad token")}
		app := newApp(validator)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: sessionware.DefaultCookieName, Value: "whatever"})

		res, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, 1, validator.calls)
	})

	t.Run("valid token stores the session in locals", func(t *testing.T) {
		validator := &stubValidator{session: stubSession{userID: "42"}}
		app := newApp(validator)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: sessionware.DefaultCookieName, Value: "good"})

		res, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("filter skips the middleware", func(t *testing.T) {
		validator := &stubValidator{err: errors.New("should not run")}

		app := fiber.New()
		app.Get("/open", sessionware.New(sessionware.Config{
			Filter:         func(c *fiber.Ctx) bool { return true },
			TokenValidator: validator,
		}), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		res, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Zero(t, validator.calls)
	})

	t.Run("custom error handler is invoked", func(t *testing.T) {
		validator := &stubValidator{err: errors.New("bad token")}

		app := fiber.New()
		app.Get("/custom", sessionware.New(sessionware.Config{
			TokenValidator: validator,
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return c.Status(fiber.StatusTeapot).SendString(err.Error())
			},
		}), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/custom", nil)
		req.AddCookie(&http.Cookie{Name: sessionware.DefaultCookieName, Value: "whatever"})

		res, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusTeapot, res.StatusCode)
	})
}
