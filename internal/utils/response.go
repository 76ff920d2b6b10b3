package utils

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vidyadoc/slc-api/internal/apperrors"
)

// APIResponse describes the common structure for API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries the machine-readable error detail: the stable kind tag
// plus whatever structured context the error holds.
type ErrorBody struct {
	Kind         string            `json:"kind"`
	Fields       map[string]string `json:"fields,omitempty"`
	Allowed      []string          `json:"allowed_transitions,omitempty"`
	RequiredRole string            `json:"required_role,omitempty"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}

	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
	})
}

// SendAppError renders a tagged application error: the HTTP status comes from
// the error kind, the body carries the structured detail.
func SendAppError(c *fiber.Ctx, err error) error {
	status := apperrors.HTTPStatus(err)

	tagged, ok := apperrors.As(err)
	if !ok {
		return SendError(c, status, "internal server error")
	}

	// Storage faults keep their detail out of the response body.
	message := tagged.Message
	if tagged.Kind == apperrors.KindStorageUnavailable {
		message = "service temporarily unavailable"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Message: message,
		Error: &ErrorBody{
			Kind:         string(tagged.Kind),
			Fields:       tagged.Fields,
			Allowed:      tagged.Allowed,
			RequiredRole: tagged.RequiredRole,
		},
	})
}
