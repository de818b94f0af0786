package handlers

import (
	"errors"

	"lapak/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

var validate = validator.New()

// NewErrorHandler renders every error returned by a handler or middleware as
// {"error_code", "error_msg"}. Errors that are not apperrors become ERR_001.
func NewErrorHandler(logger *log.Entry) fiber.ErrorHandler {
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error_msg": fiberErr.Message,
			})
		}

		appErr := apperrors.From(err)
		if appErr == apperrors.ErrInternal {
			logger.WithError(err).WithFields(log.Fields{
				"method": c.Method(),
				"path":   c.Path(),
			}).Error("request failed")
		}
		return c.Status(appErr.Status).JSON(fiber.Map{
			"error_code": appErr.Code,
			"error_msg":  appErr.Msg,
		})
	}
}

// parseBody decodes the JSON body into out and validates it.
// Missing required fields map to ERR_002, anything else malformed to ERR_003.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.ErrInvalidField
	}
	return validateStruct(out)
}

func validateStruct(out interface{}) error {
	err := validate.Struct(out)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				return apperrors.ErrMissingField
			}
		}
	}
	return apperrors.ErrInvalidField
}
