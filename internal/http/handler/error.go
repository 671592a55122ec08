package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"docqa/internal/auth"
	"docqa/internal/extractor"
	"docqa/internal/gemini"
	"docqa/internal/http/middleware"
	"docqa/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Error     string `json:"error"`
	Details   any    `json:"details,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeErrorDetails(c, status, code, message, nil)
}

func writeErrorDetails(c *fiber.Ctx, status int, code, message string, details any) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Code:      code,
		Error:     message,
		Details:   details,
	})
}

// domainErrors maps service-level sentinels to their HTTP representation.
// The sentinel's own message is safe to show.
var domainErrors = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrQuestionRequired, fiber.StatusBadRequest, "VALIDATION_ERROR"},
	{service.ErrCredentialsRequired, fiber.StatusBadRequest, "VALIDATION_ERROR"},
	{service.ErrPasswordTooLong, fiber.StatusBadRequest, "VALIDATION_ERROR"},
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID"},
	{service.ErrReaderNil, fiber.StatusBadRequest, "FILE_REQUIRED"},
	{service.ErrUserExists, fiber.StatusBadRequest, "USER_EXISTS"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{auth.ErrInvalidToken, fiber.StatusUnauthorized, "TOKEN_NOT_VALID"},
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// Handlers return service errors as-is and this is the single place they become HTTP.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		for _, d := range domainErrors {
			if errors.Is(err, d.err) {
				return writeError(c, d.status, d.code, d.err.Error())
			}
		}

		var (
			upstream  *gemini.UpstreamError
			transport *gemini.TransportError
			parse     *gemini.ParseError
			fiberErr  *fiber.Error
		)
		switch {
		case errors.As(err, &upstream):
			log.WithField("upstream_status", upstream.StatusCode).Warn("answer provider rejected request")
			return writeErrorDetails(c, fiber.StatusInternalServerError, "UPSTREAM_ERROR", "Gemini API failed", upstream.Details)
		case errors.As(err, &transport):
			log.WithError(err).Error("answer provider unreachable")
			return writeError(c, fiber.StatusInternalServerError, "TRANSPORT_ERROR", err.Error())
		case errors.As(err, &parse):
			log.WithError(err).Error("answer provider response unusable")
			return writeError(c, fiber.StatusInternalServerError, "PARSE_ERROR", err.Error())
		case errors.Is(err, extractor.ErrExtraction):
			log.WithError(err).Warn("text extraction failed")
			return writeError(c, fiber.StatusInternalServerError, "EXTRACTION_ERROR", err.Error())
		case errors.As(err, &fiberErr):
			return writeFiberError(c, fiberErr)
		}

		log.WithError(err).WithFields(logrus.Fields{
			"request_id": middleware.RequestIDFrom(c),
			"method":     c.Method(),
			"path":       c.Path(),
		}).Error("unhandled error")
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func writeFiberError(c *fiber.Ctx, e *fiber.Error) error {
	switch e.Code {
	case fiber.StatusBadRequest:
		return writeError(c, e.Code, "BAD_REQUEST", "bad request")
	case fiber.StatusUnauthorized:
		return writeError(c, e.Code, "NOT_AUTHENTICATED", e.Message)
	case fiber.StatusNotFound:
		return writeError(c, e.Code, "NOT_FOUND", "resource not found")
	case fiber.StatusMethodNotAllowed:
		return writeError(c, e.Code, "METHOD_NOT_ALLOWED", "method not allowed")
	case fiber.StatusRequestEntityTooLarge:
		return writeError(c, e.Code, "REQUEST_TOO_LARGE", "request body too large")
	}
	if e.Code >= fiber.StatusBadRequest && e.Code < fiber.StatusInternalServerError {
		code := strings.ToUpper(strings.ReplaceAll(http.StatusText(e.Code), " ", "_"))
		return writeError(c, e.Code, code, e.Message)
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
