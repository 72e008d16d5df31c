package routes

import (
	"github.com/gofiber/fiber/v2"

	"splitbook/controllers"
	"splitbook/middlewares"
)

func Setup(app *fiber.App, h *controllers.Handler) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Post("/auth/login", h.Login)

	api := app.Group("/api", middlewares.AdminAuth())

	api.Post("/sync", h.SyncAll)
	api.Post("/sync/:sourceId", h.SyncSource)

	api.Get("/transactions", h.ListTransactions)
	api.Post("/transactions", h.AddManualTransaction)
	api.Get("/transactions/:id", h.GetTransaction)
	api.Patch("/transactions/:id/splits", h.AdjustSplits)

	api.Get("/stakeholders", h.GetStakeholders)
	api.Post("/stakeholders", h.ReplaceStakeholders)

	api.Get("/gateway-configs", h.GetGateways)
	api.Post("/gateway-configs", h.ReplaceGateways)

	api.Get("/wallet-configs", h.GetWallets)
	api.Post("/wallet-configs", h.ReplaceWallets)

	api.Post("/settlements", h.Settle)
	api.Get("/settlements", h.ListSettlements)
	api.Get("/settlements/:id/transactions", h.SettledTransactions)

	api.Get("/audit-logs", h.ListAuditLogs)

	api.Get("/exchange-rate", h.GetExchangeRate)
	api.Put("/exchange-rate", h.SetExchangeRate)
}
