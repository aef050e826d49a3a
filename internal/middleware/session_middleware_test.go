package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fadilmartias/ats-portal/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionApp(reg *session.Registry) *fiber.App {
	app := fiber.New()
	app.Use(BrowserSession(SessionConfig{Registry: reg}))
	app.Get("/", func(c *fiber.Ctx) error {
		if SessionFrom(c).IsAuthenticated() {
			return c.SendString("member")
		}
		return c.SendString("guest")
	})
	app.Post("/login", func(c *fiber.Ctx) error {
		return SessionFrom(c).Login(c.UserContext(), "tok")
	})
	app.Post("/logout", func(c *fiber.Ctx) error {
		return SessionFrom(c).Logout(c.UserContext())
	})
	app.Get("/private", RequireAuth("/login"), func(c *fiber.Ctx) error {
		return c.SendString("private")
	})
	return app
}

func sessionCookieFrom(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, ck := range resp.Cookies() {
		if ck.Name == "ats_sid" {
			return ck
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestCookielessRequestsAreNotCached(t *testing.T) {
	reg := session.NewRegistry(session.NewMemoryStore(), nil)
	app := sessionApp(reg)

	for i := 0; i < 500; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		sessionCookieFrom(t, resp)
	}
	assert.Zero(t, reg.Len())
}

func TestSessionCachedFromLoginUntilLogout(t *testing.T) {
	reg := session.NewRegistry(session.NewMemoryStore(), nil)
	app := sessionApp(reg)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	cookie := sessionCookieFrom(t, resp)

	send := func(method, target string) (*http.Response, string) {
		req := httptest.NewRequest(method, target, nil)
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(body)
	}

	resp, _ = send(http.MethodGet, "/private")
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Zero(t, reg.Len())

	resp, _ = send(http.MethodPost, "/login")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, reg.Len())

	_, body := send(http.MethodGet, "/")
	assert.Equal(t, "member", body)
	_, body = send(http.MethodGet, "/private")
	assert.Equal(t, "private", body)

	send(http.MethodPost, "/logout")
	assert.Zero(t, reg.Len())
	_, body = send(http.MethodGet, "/")
	assert.Equal(t, "guest", body)
}

func TestBoundedCacheKeepsTokensInStore(t *testing.T) {
	reg := session.NewRegistrySize(session.NewMemoryStore(), 3, nil)
	app := sessionApp(reg)

	var cookies []*http.Cookie
	for i := 0; i < 10; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
		require.NoError(t, err)
		cookies = append(cookies, sessionCookieFrom(t, resp))
	}
	assert.Equal(t, 3, reg.Len())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookies[0].Name, Value: cookies[0].Value})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "member", string(body))
	assert.Equal(t, 3, reg.Len())
}
