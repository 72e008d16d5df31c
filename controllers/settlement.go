package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"splitbook/helpers"
	"splitbook/services"
)

// Settle clears the ledger. Irreversible; the UI is expected to confirm
// with the operator before calling this.
func (h *Handler) Settle(c *fiber.Ctx) error {
	res, err := h.Ledger.Settle()
	if err != nil {
		return respondErr(c, err)
	}
	return helpers.JSONSuccess(c, "Settlement complete", res)
}

func (h *Handler) ListSettlements(c *fiber.Ctx) error {
	return helpers.JSONSuccess(c, "ok", h.Ledger.Settlements())
}

// SettledTransactions returns the archived rows one settlement cleared.
func (h *Handler) SettledTransactions(c *fiber.Ctx) error {
	txs, err := h.Ledger.SettledTransactions(c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return helpers.JSONSuccess(c, "ok", txs)
}

func (h *Handler) ListAuditLogs(c *fiber.Ctx) error {
	filters := services.AuditFilters{
		TransactionID: c.Query("transaction_id"),
		Operator:      c.Query("operator"),
	}
	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return helpers.JSONError(c, "INVALID_SINCE")
		}
		filters.Since = t
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return helpers.JSONError(c, "INVALID_LIMIT")
		}
		filters.Limit = n
	}
	return helpers.JSONSuccess(c, "ok", h.Ledger.AuditLogs(filters))
}
