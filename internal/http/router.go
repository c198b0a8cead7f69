// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"colis/internal/http/handlers"
	"colis/internal/http/middleware"
	"colis/internal/modules/cashbook"
	"colis/internal/modules/cashclosing"
	"colis/internal/modules/debt"
	"colis/internal/modules/ledger"
	"colis/internal/modules/order"
	"colis/internal/modules/remittance"
	"colis/internal/modules/shortfall"
	"colis/internal/notify"
)

type RouterDeps struct {
	Order       *order.Service
	Ledger      *ledger.Service
	Debts       *debt.Service
	Remittances *remittance.Service
	Shortfalls  *shortfall.Service
	Cashbook    *cashbook.Service
	Closings    *cashclosing.Service
	Dedupe      *notify.Dedupe
	Log         zerolog.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.Logging(deps.Log))

	orderHandler := handlers.NewOrderHandler(deps.Order)
	r.POST("/api/orders", orderHandler.Create)
	r.GET("/api/orders/:id", orderHandler.Get)
	r.GET("/api/orders/:id/history", orderHandler.History)
	r.PUT("/api/orders/:id", orderHandler.Edit)
	r.DELETE("/api/orders/:id", orderHandler.Delete)
	r.POST("/api/orders/:id/assign", orderHandler.Assign)
	r.POST("/api/orders/:id/ready", orderHandler.MarkReady)
	r.POST("/api/orders/:id/pickup", orderHandler.ConfirmPickup)
	r.POST("/api/orders/:id/start", orderHandler.StartDelivery)
	r.POST("/api/orders/:id/status", orderHandler.UpdateStatus)
	r.POST("/api/orders/:id/return", orderHandler.DeclareReturn)
	r.POST("/api/orders/:id/receive", orderHandler.ReceiveReturn)
	r.POST("/api/orders/:id/reset", orderHandler.ResetStatus)

	financeHandler := handlers.NewFinanceHandler(deps.Ledger, deps.Debts, deps.Remittances, deps.Shortfalls, deps.Cashbook, deps.Closings)
	r.GET("/api/merchants/:id/balance", financeHandler.GetDailyBalance)
	r.GET("/api/merchants/:id/debts", financeHandler.ListMerchantDebts)
	r.POST("/api/debts", financeHandler.CreateDebt)
	r.PUT("/api/debts/:id", financeHandler.EditDebt)
	r.DELETE("/api/debts/:id", financeHandler.DeleteDebt)
	r.POST("/api/remittances/sync", financeHandler.SyncRemittances)
	r.GET("/api/remittances", financeHandler.ListRemittances)
	r.POST("/api/remittances/:id/pay", financeHandler.PayRemittance)
	r.POST("/api/cash-transactions", financeHandler.CreateCashTransaction)
	r.POST("/api/shortfalls", financeHandler.CreateShortfall)
	r.POST("/api/shortfalls/:id/settle", financeHandler.SettleShortfall)
	r.POST("/api/cash-closings", financeHandler.PerformCashClosing)
	r.GET("/api/cash-closings/:date", financeHandler.GetCashClosing)

	webhookHandler := handlers.NewWebhookHandler(deps.Dedupe)
	r.POST("/api/webhooks/whatsapp", webhookHandler.Receive)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
