package middleware

import (
	"strings"
	"time"

	"github.com/fadilmartias/ats-portal/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sessionLocal = "session"

type SessionConfig struct {
	Registry   *session.Registry
	CookieName string
	// Secure marks the cookie HTTPS only.
	Secure bool
	Logger *zap.Logger
}

// BrowserSession gives every browser a random id cookie and attaches the
// Session stored under that id to the request.
func BrowserSession(cfg SessionConfig) fiber.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "ats_sid"
	}
	return func(c *fiber.Ctx) error {
		// fiber reuses the request buffer; the key outlives the request.
		key := strings.Clone(c.Cookies(cfg.CookieName))
		if _, err := uuid.Parse(key); err != nil {
			key = uuid.NewString()
			c.Cookie(sessionCookie(cfg, key))
			c.Locals(sessionLocal, cfg.Registry.Anonymous(key))
			return c.Next()
		}
		sess, err := cfg.Registry.Get(c.UserContext(), key)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("load browser session failed", zap.Error(err))
			}
			return fiber.NewError(fiber.StatusServiceUnavailable, "session store unavailable")
		}
		c.Locals(sessionLocal, sess)
		return c.Next()
	}
}

func sessionCookie(cfg SessionConfig, key string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     cfg.CookieName,
		Value:    key,
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// SessionFrom returns the Session attached by BrowserSession.
func SessionFrom(c *fiber.Ctx) *session.Session {
	sess, _ := c.Locals(sessionLocal).(*session.Session)
	return sess
}

// RequireAuth redirects visitors without a token to loginPath.
func RequireAuth(loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := SessionFrom(c)
		if sess == nil || !sess.IsAuthenticated() {
			return c.Redirect(loginPath, fiber.StatusSeeOther)
		}
		return c.Next()
	}
}
