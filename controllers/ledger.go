package controllers

import (
	"github.com/gofiber/fiber/v2"

	"splitbook/helpers"
	"splitbook/models"
	"splitbook/services"
)

// ListTransactions recomputes the ledger against current config and
// returns it filtered.
func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	txs := h.Ledger.List(services.ListFilters{
		Source:   c.Query("source"),
		Currency: c.Query("currency"),
		Status:   c.Query("status"),
	})
	return helpers.JSONSuccess(c, "ok", txs)
}

func (h *Handler) GetTransaction(c *fiber.Ctx) error {
	tx, err := h.Ledger.GetTransaction(c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return helpers.JSONSuccess(c, "ok", tx)
}

type manualEntryRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"required,oneof=CNY USDT"`
	Status   string  `json:"status" validate:"omitempty,oneof=Pending Completed"`
}

func (h *Handler) AddManualTransaction(c *fiber.Ctx) error {
	var req manualEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if err := validate.Struct(req); err != nil {
		return helpers.JSONError(c, err.Error())
	}

	tx, err := h.Ledger.AddManual(req.Amount, req.Currency, req.Status)
	if err != nil {
		return respondErr(c, err)
	}
	return helpers.JSONSuccess(c, "Transaction recorded", tx)
}

type manualSplitRequest struct {
	Splits []models.SplitDetail `json:"splits" validate:"required,min=1,dive"`
	Remark string               `json:"remark"`
}

// AdjustSplits applies a manual split edit and appends an audit entry.
func (h *Handler) AdjustSplits(c *fiber.Ctx) error {
	var req manualSplitRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JSONError(c, "INVALID_JSON")
	}
	if err := validate.Struct(req); err != nil {
		return helpers.JSONError(c, err.Error())
	}

	operator, _ := c.Locals("operator").(string)
	if operator == "" {
		operator = "admin"
	}

	tx, err := h.Ledger.ApplyManualSplit(c.Params("id"), req.Splits, operator, req.Remark)
	if err != nil {
		return respondErr(c, err)
	}
	return helpers.JSONSuccess(c, "Splits updated", tx)
}

// SyncSource triggers ingestion for one wallet or gateway.
func (h *Handler) SyncSource(c *fiber.Ctx) error {
	res, err := h.Ledger.SyncSource(c.Params("sourceId"))
	if err != nil {
		return respondErr(c, err)
	}
	return helpers.JSONSuccess(c, "Sync complete", fiber.Map{
		"added":        res.Added,
		"transactions": res.Transactions,
	})
}

// SyncAll triggers ingestion for every active source; per-source
// failures are reported inline, never propagated.
func (h *Handler) SyncAll(c *fiber.Ctx) error {
	results := h.Ledger.SyncAll()
	return helpers.JSONSuccess(c, "Sync complete", results)
}
