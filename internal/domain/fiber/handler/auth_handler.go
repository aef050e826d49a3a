package handler

import (
	"github.com/fadilmartias/ats-portal/internal/middleware"
	"github.com/fadilmartias/ats-portal/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (h *PortalHandler) LoginForm(c *fiber.Ctx) error {
	page := usecase.NewLoginPage(h.services(c).Auth, middleware.SessionFrom(c), h.log)
	if to := page.Redirect(); to != "" {
		return c.Redirect(to, fiber.StatusSeeOther)
	}
	return h.render(c, fiber.StatusOK, "login", fiber.Map{"Title": "Employer Login"})
}

func (h *PortalHandler) Login(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	page := usecase.NewLoginPage(h.services(c).Auth, sess, h.log)
	username := c.FormValue("username")
	if err := page.Submit(c.UserContext(), username, c.FormValue("password")); err != nil {
		return h.render(c, fiber.StatusUnauthorized, "login", fiber.Map{
			"Title":    "Employer Login",
			"Error":    page.ErrorMessage(),
			"Username": username,
		})
	}
	return c.Redirect(usecase.AfterLoginPath, fiber.StatusSeeOther)
}

// Logout clears the token of this browser only.
func (h *PortalHandler) Logout(c *fiber.Ctx) error {
	if sess := middleware.SessionFrom(c); sess != nil {
		if err := sess.Logout(c.UserContext()); err != nil {
			h.log.Error("logout failed", zap.Error(err))
			return fiber.NewError(fiber.StatusServiceUnavailable, "could not sign out")
		}
	}
	return c.Redirect(loginPath, fiber.StatusSeeOther)
}
