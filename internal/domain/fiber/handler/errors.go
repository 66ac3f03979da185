package handler

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/fadilmartias/klarus-hr/internal/usecase"
	"github.com/fadilmartias/klarus-hr/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError writes err as the error envelope. Usecase errors carry their
// own status; anything else is a 500.
func respondError(c *fiber.Ctx, err error) error {
	var uerr *usecase.Error
	if !errors.As(err, &uerr) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusInternalServerError,
			Message: "Internal server error",
		}, err)
	}

	details := fiber.Map{}
	if uerr.Fields != nil {
		details["fields"] = uerr.Fields
	}
	if uerr.Retryable {
		details["shouldRetry"] = true
		details["retryAfter"] = uerr.RetryAfter
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(uerr.RetryAfter))
	}
	if uerr.Reconnect {
		details["reconnect"] = true
	}

	format := util.ErrorResponseFormat{Code: uerr.Code, Message: uerr.Message}
	if len(details) > 0 {
		format.Details = details
	}
	return util.ErrorResponse(c, format, uerr.Err)
}

func badRequest(c *fiber.Ctx, message string, err error) error {
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    fiber.StatusBadRequest,
		Message: message,
	}, err)
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}
