package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/models"
)

// ErrorHandler renders every error as {"detail", "code"}.
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := apperr.HTTPStatus(err)
		body := models.ErrorResponse{
			Detail: apperr.Message(err),
			Code:   string(apperr.KindOf(err)),
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			body.Detail = fe.Message
			body.Code = codeForStatus(fe.Code)
		}

		if status >= fiber.StatusInternalServerError {
			log.WithError(err).WithField("path", c.Path()).Error("❌ Request failed")
		}

		return c.Status(status).JSON(body)
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnsupportedMediaType:
		return string(apperr.KindInvalidArgument)
	case fiber.StatusUnauthorized:
		return string(apperr.KindUnauthorized)
	case fiber.StatusForbidden:
		return string(apperr.KindForbidden)
	case fiber.StatusNotFound:
		return string(apperr.KindNotFound)
	case fiber.StatusConflict:
		return string(apperr.KindConflict)
	case fiber.StatusServiceUnavailable:
		return string(apperr.KindUnavailable)
	}
	if status >= 500 {
		return string(apperr.KindInternal)
	}
	return strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
}
