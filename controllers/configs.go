package controllers

import (
	"github.com/gofiber/fiber/v2"

	"splitbook/helpers"
	"splitbook/models"
)

type replaceStakeholdersRequest struct {
	Stakeholders []models.Stakeholder `json:"stakeholders" validate:"required,dive"`
}

func (h *Handler) GetStakeholders(c *fiber.Ctx) error {
	return helpers.JSONSuccess(c, "ok", h.Ledger.Stakeholders())
}

// ReplaceStakeholders swaps the full stakeholder set and forces a ledger
// recompute.
func (h *Handler) ReplaceStakeholders(c *fiber.Ctx) error {
	var req replaceStakeholdersRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if err := validate.Struct(req); err != nil {
		return helpers.JSONError(c, err.Error())
	}
	if err := h.Ledger.ReplaceStakeholders(req.Stakeholders); err != nil {
		return respondErr(c, err)
	}
	return helpers.JSONSuccess(c, "Stakeholders replaced", h.Ledger.Stakeholders())
}

type replaceGatewaysRequest struct {
	Gateways []models.GatewayConfig `json:"gateways" validate:"required,dive"`
}

func (h *Handler) GetGateways(c *fiber.Ctx) error {
	return helpers.JSONSuccess(c, "ok", h.Ledger.Gateways())
}

func (h *Handler) ReplaceGateways(c *fiber.Ctx) error {
	var req replaceGatewaysRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if err := validate.Struct(req); err != nil {
		return helpers.JSONError(c, err.Error())
	}
	if err := h.Ledger.ReplaceGateways(req.Gateways); err != nil {
		return respondErr(c, err)
	}
	return helpers.JSONSuccess(c, "Gateway configs replaced", h.Ledger.Gateways())
}

type replaceWalletsRequest struct {
	Wallets []models.WalletConfig `json:"wallets" validate:"required,dive"`
}

func (h *Handler) GetWallets(c *fiber.Ctx) error {
	return helpers.JSONSuccess(c, "ok", h.Ledger.Wallets())
}

func (h *Handler) ReplaceWallets(c *fiber.Ctx) error {
	var req replaceWalletsRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if err := validate.Struct(req); err != nil {
		return helpers.JSONError(c, err.Error())
	}
	if err := h.Ledger.ReplaceWallets(req.Wallets); err != nil {
		return respondErr(c, err)
	}
	return helpers.JSONSuccess(c, "Wallet configs replaced", h.Ledger.Wallets())
}

type exchangeRateRequest struct {
	Rate float64 `json:"rate" validate:"required,gt=0"`
}

func (h *Handler) GetExchangeRate(c *fiber.Ctx) error {
	return helpers.JSONSuccess(c, "ok", fiber.Map{"rate": h.Ledger.ExchangeRate()})
}

// SetExchangeRate updates the process-wide USDT to CNY rate. The new
// rate applies to every USDT amount on the next read.
func (h *Handler) SetExchangeRate(c *fiber.Ctx) error {
	var req exchangeRateRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if err := validate.Struct(req); err != nil {
		return helpers.JSONError(c, err.Error())
	}
	if err := h.Ledger.SetExchangeRate(req.Rate); err != nil {
		return respondErr(c, err)
	}
	return helpers.JSONSuccess(c, "Exchange rate updated", fiber.Map{"rate": h.Ledger.ExchangeRate()})
}
