package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog/log"
)

// Response is the error body returned by every endpoint.
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

func statusFor(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	case KindInsufficientStock:
		return fiber.StatusConflict
	case KindUnauthorized:
		return fiber.StatusUnauthorized
	}
	if IsTimeout(err) {
		return fiber.StatusGatewayTimeout
	}
	return fiber.StatusInternalServerError
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return string(KindValidation)
	case fiber.StatusUnauthorized:
		return string(KindUnauthorized)
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return string(KindNotFound)
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	}
	return string(KindInfrastructure)
}

// FiberErrorHandler is installed as fiber.Config.ErrorHandler. Handlers return
// *Error or *fiber.Error and never write error bodies themselves.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	rid, _ := c.Locals(requestid.ConfigDefault.ContextKey).(string)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(Response{
			Code:      codeForStatus(fe.Code),
			Message:   fe.Message,
			RequestID: rid,
		})
	}

	status := statusFor(err)
	resp := Response{Code: string(KindOf(err)), RequestID: rid}

	var appErr *Error
	if errors.As(err, &appErr) && status < fiber.StatusInternalServerError {
		resp.Message = appErr.Message
	} else {
		// internal details stay in the log
		log.Error().
			Err(err).
			Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
		resp.Message = "internal server error"
		if status == fiber.StatusGatewayTimeout {
			resp.Message = "storage timeout"
		}
	}

	return c.Status(status).JSON(resp)
}
