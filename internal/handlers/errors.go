package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"todoapi/internal/apperr"
	"todoapi/internal/logging"
	"todoapi/internal/middleware"
	"todoapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ProblemDetail is the body of every error response.
type ProblemDetail struct {
	Detail  string         `json:"detail"`
	Code    string         `json:"code"`
	Path    string         `json:"path"`
	Context map[string]any `json:"context,omitempty"`
}

// ErrorHandler renders every error returned by a handler or middleware as a
// ProblemDetail. Domain errors keep their kind's status and code; anything
// unrecognized becomes a 500 whose cause is only logged.
func ErrorHandler(logger logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		ctx := c.UserContext()
		problem := ProblemDetail{Path: c.Path()}
		var status int

		var fe *fiber.Error
		var ae *apperr.Error
		switch {
		case errors.As(err, &ae) && ae.Kind != apperr.KindInternal:
			status = ae.Kind.Status()
			problem.Detail = ae.Error()
			problem.Code = ae.Kind.Code()
			problem.Context = ae.Context
		case errors.As(err, &fe):
			status = fe.Code
			problem.Detail = fe.Message
			problem.Code = statusCode(fe.Code)
		default:
			status = fiber.StatusInternalServerError
			problem.Detail = "Internal server error"
			problem.Code = apperr.KindInternal.Code()
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error(ctx, "request failed",
				"method", c.Method(), "path", c.Path(), "status", status, "error", err)
		} else {
			logger.Info(ctx, "request rejected",
				"method", c.Method(), "path", c.Path(), "status", status, "code", problem.Code)
		}

		return c.Status(status).JSON(problem)
	}
}

// statusCode turns an HTTP status into a code such as METHOD_NOT_ALLOWED.
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_" + strconv.Itoa(status)
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}

// parseBody decodes the JSON body into in and validates it.
func parseBody(c *fiber.Ctx, v *validation.Validator, in any) error {
	if err := c.BodyParser(in); err != nil {
		return apperr.Validation("Invalid request body", map[string]string{"body": err.Error()})
	}
	return v.Struct(in)
}

func currentUser(c *fiber.Ctx) (uint, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, apperr.Unauthorized("Authentication required")
	}
	return id, nil
}

func weakETag(kind string, id uint) string {
	return `W/"` + kind + "-" + strconv.FormatUint(uint64(id), 10) + `-0"`
}
