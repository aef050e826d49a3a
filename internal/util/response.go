package util

import (
	"fmt"

	"github.com/fadilmartias/ats-portal/internal/config"
	"github.com/gofiber/fiber/v2"
)

type SuccessResponseFormat struct {
	Code    int
	Message string
	Data    any
}

type OrderedSuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type ErrorResponseFormat struct {
	Code    int
	Message string
	// Details carries field errors of a FormError.
	Details any
}

type OrderedErrorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DevMessage string `json:"dev_message,omitempty"`
	Details    any    `json:"details,omitempty"`
}

// FormError is a client-side validation failure: a missing file, a wrong
// file type or an empty required field.
type FormError struct {
	Errors  map[string]string
	Message string
}

func (e *FormError) Error() string {
	return e.Message
}

func NewFormError(message string, errors map[string]string) *FormError {
	return &FormError{
		Message: message,
		Errors:  errors,
	}
}

// Required returns a FormError naming every empty field, or nil.
func Required(fields map[string]string) *FormError {
	missing := map[string]string{}
	for name, value := range fields {
		if value == "" {
			missing[name] = fmt.Sprintf("%s is required", name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return NewFormError("Please fill in all required fields.", missing)
}

func SuccessResponse(c *fiber.Ctx, params SuccessResponseFormat) error {
	code := params.Code
	if code == 0 {
		code = fiber.StatusOK
	}
	return c.Status(code).JSON(OrderedSuccessResponse{
		Success: true,
		Message: params.Message,
		Data:    params.Data,
	})
}

// ErrorResponse writes the error envelope. Outside production the text of
// cause is included as dev_message.
func ErrorResponse(c *fiber.Ctx, params ErrorResponseFormat, cause error) error {
	body := OrderedErrorResponse{
		Success: false,
		Message: params.Message,
		Details: params.Details,
	}
	if cause != nil && cause.Error() != params.Message && !config.LoadAppConfig().IsProduction() {
		body.DevMessage = cause.Error()
	}
	code := params.Code
	if code == 0 {
		code = fiber.StatusInternalServerError
	}
	return c.Status(code).JSON(body)
}
