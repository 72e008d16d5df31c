package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"splitbook/helpers"
	"splitbook/services"
)

var validate = validator.New()

// Handler bundles every route handler around the injected ledger
// service.
type Handler struct {
	Ledger *services.Ledger
}

func New(ledger *services.Ledger) *Handler {
	return &Handler{Ledger: ledger}
}

// respondErr maps service error kinds onto HTTP statuses.
func respondErr(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return helpers.JSONNotFound(c, err.Error())
	case errors.Is(err, services.ErrPrecondition):
		return helpers.JSONConflict(c, err.Error())
	default:
		return helpers.JSONError(c, err.Error())
	}
}
