package tasks

import (
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-tasks/middleware/sessionware"
)

type RouteAuthenticator struct {
	auth           Authenticator
	cfg            Config
	cookieDuration time.Duration
	Logger         Logger
	ErrorHandler   fiber.ErrorHandler
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	cookieDuration := 24 * time.Hour
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = time.Duration(cfg.GetTokenExpiration()) * time.Hour
	}

	a := &RouteAuthenticator{
		cfg:            cfg,
		auth:           auther,
		Logger:         defLogger{},
		cookieDuration: cookieDuration,
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

func (a RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

// sessionValidator adapts the Authenticator to the sessionware contract
type sessionValidator struct {
	auth Authenticator
}

func (v sessionValidator) Validate(raw string) (sessionware.Session, error) {
	session, err := v.auth.SessionFromToken(raw)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Protected returns the middleware guarding session routes. Anonymous
// requests are rejected with 401 before any handler or store call runs.
func (a *RouteAuthenticator) Protected() fiber.Handler {
	return sessionware.New(sessionware.Config{
		CookieName:     a.cfg.GetCookieName(),
		ContextKey:     a.cfg.GetCookieName(),
		TokenValidator: sessionValidator{auth: a.auth},
		ErrorHandler:   a.MakeAuthErrorHandler(),
	})
}

// AdminOnly guards the admin surface. The shared secret travels in the
// X-Admin-Key header and is compared in constant time. An empty configured
// secret fails closed, disabling the surface entirely.
func (a *RouteAuthenticator) AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := a.cfg.GetAdminSecret()
		if secret == "" {
			return a.ErrorHandler(c, ErrAuthenticationRequired)
		}

		provided := c.Get("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return a.ErrorHandler(c, ErrAuthenticationRequired)
		}

		return c.Next()
	}
}

// Login verifies the payload credentials and, on success, issues the session
// cookie on the response
func (a *RouteAuthenticator) Login(c *fiber.Ctx, email, password string) error {
	token, err := a.auth.Login(c.UserContext(), email, password)
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return err
	}

	a.setCookieToken(c, token, a.cookieDuration)
	return nil
}

// Logout clears the session cookie. The token itself stays valid until exp;
// there is no server-side revocation.
func (a *RouteAuthenticator) Logout(c *fiber.Ctx) {
	a.cookieDel(c, a.cfg.GetCookieName())
}

// GetSession retrieves the resolved session for the current request
func (a *RouteAuthenticator) GetSession(c *fiber.Ctx) (Session, error) {
	stored, ok := sessionware.SessionFromContext(c, a.cfg.GetCookieName())
	if !ok {
		return nil, ErrUnableToFindSession
	}

	session, ok := stored.(Session)
	if !ok {
		return nil, ErrUnableToDecodeSession
	}

	return session, nil
}

// MakeAuthErrorHandler maps middleware failures to 401 JSON responses
func (a *RouteAuthenticator) MakeAuthErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else {
			richErr = ErrAuthenticationRequired
		}

		return a.ErrorHandler(c, richErr)
	}
}

// newCookie builds the one cookie shape the service uses. The secure toggle
// decides the SameSite mode: cross-site deployments need None plus Secure,
// local development gets Lax without Secure.
func (a *RouteAuthenticator) newCookie(name, value string, expires time.Time) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}

	if a.cfg.GetSecureCookies() {
		cookie.Secure = true
		cookie.SameSite = fiber.CookieSameSiteNoneMode
	}

	return cookie
}

func (a *RouteAuthenticator) setCookieToken(c *fiber.Ctx, val string, duration time.Duration) {
	c.Cookie(a.newCookie(a.cfg.GetCookieName(), val, time.Now().Add(duration)))
}

// cookieDel clears the cookie under the exact attribute set it was issued
// with, otherwise browsers keep the stale copy around.
func (a *RouteAuthenticator) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(a.newCookie(name, "", time.Now().Add(-time.Hour*(24*365))))
}

func (a *RouteAuthenticator) defaultErrHandler(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Request error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"path", c.OriginalURL(),
	)

	status := richErr.Code
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	body := fiber.Map{"error": richErr.Message}
	if richErr.Category == errors.CategoryValidation && richErr.ValidationMap() != nil {
		body["validation"] = richErr.ValidationMap()
	}

	return c.Status(status).JSON(body)
}
