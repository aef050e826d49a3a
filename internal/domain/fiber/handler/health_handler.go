package handler

import (
	"errors"

	"github.com/fadilmartias/ats-portal/internal/util"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func (h *PortalHandler) Health(c *fiber.Ctx) error {
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "ok",
		Data:    fiber.Map{"app": h.appName},
	})
}

// ErrorHandler renders errors that reach fiber as an HTML page, or as the
// JSON error envelope for clients asking for JSON.
func (h *PortalHandler) ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var details any
	var e *fiber.Error
	var formErr *util.FormError
	switch {
	case errors.As(err, &e):
		code = e.Code
	case errors.As(err, &formErr):
		code = fiber.StatusUnprocessableEntity
		details = formErr.Errors
	}
	if code >= fiber.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	msg := err.Error()
	if msg == "" || code >= fiber.StatusInternalServerError && e == nil {
		msg = "Internal Server Error"
	}
	jsonError := func() error {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    code,
			Message: msg,
			Details: details,
		}, err)
	}
	if c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
		return jsonError()
	}
	if code == fiber.StatusNotFound {
		return h.notFound(c)
	}
	if rerr := h.render(c, code, "error", fiber.Map{"Title": "Something went wrong", "Message": msg}); rerr != nil {
		return jsonError()
	}
	return nil
}
