package sessionware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrSessionMissing is returned when the request carries no session cookie
var ErrSessionMissing = errors.New("missing or malformed session cookie")

// Session interface for resolved sessions without import cycles.
// This mirrors the Session interface from the tasks package.
type Session interface {
	GetUserID() string
	GetUserIDInt() (int64, error)
	GetIssuedAt() *time.Time
	GetExpiration() *time.Time
}

// TokenValidator validates a raw cookie value into a Session
type TokenValidator interface {
	Validate(raw string) (Session, error)
}

// Config holds the middleware options
type Config struct {
	// Filter defines a function to skip the middleware
	Filter func(*fiber.Ctx) bool

	// SuccessHandler is invoked after the session is stored in Locals.
	// Defaults to ctx.Next().
	SuccessHandler fiber.Handler

	// ErrorHandler is invoked on any extraction or validation failure
	ErrorHandler fiber.ErrorHandler

	// CookieName is the cookie the raw token is read from
	CookieName string

	// ContextKey is the Locals key the resolved Session is stored under
	ContextKey string

	// TokenValidator is required for token validation
	TokenValidator TokenValidator
}

// DefaultCookieName is used when Config.CookieName is empty
const DefaultCookieName = "access_token"

// DefaultContextKey is used when Config.ContextKey is empty
const DefaultContextKey = "session"

func defaultConfig(config ...Config) Config {
	cfg := Config{}
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			if errors.Is(err, ErrSessionMissing) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": ErrSessionMissing.Error(),
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired session",
			})
		}
	}

	if cfg.TokenValidator == nil {
		panic("sessionware: TokenValidator is required")
	}

	return cfg
}

// New returns a middleware that resolves the session cookie into a Session
// stored under Config.ContextKey. Anonymous and invalid requests go through
// the ErrorHandler, no panic paths.
func New(config ...Config) fiber.Handler {
	cfg := defaultConfig(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw := c.Cookies(cfg.CookieName)
		if raw == "" {
			return cfg.ErrorHandler(c, ErrSessionMissing)
		}

		session, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, session)

		return cfg.SuccessHandler(c)
	}
}

// SessionFromContext retrieves the Session stored by New. Pure read, safe to
// call any number of times.
func SessionFromContext(c *fiber.Ctx, key string) (Session, bool) {
	session, ok := c.Locals(key).(Session)
	return session, ok
}
