package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/solarinvoice/invoicer/internal/api/v1"
	"github.com/solarinvoice/invoicer/internal/config"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/rest/middleware"
	"github.com/solarinvoice/invoicer/internal/sentry"
	"github.com/solarinvoice/invoicer/internal/types"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Invoice *v1.InvoiceHandler
	Voucher *v1.VoucherHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, sentryService *sentry.Service) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(logger, sentryService),
	)

	router.GET("/health", handlers.Health.Health)

	v1Router := router.Group("/v1")

	// Public routes, signing in only unlocks the agent markup figures
	public := v1Router.Group("/", middleware.OptionalAuthMiddleware(cfg, logger))
	{
		public.POST("/invoices/on-the-fly", handlers.Invoice.CreateOnTheFlyInvoice)
		public.GET("/vouchers/validate/:code", handlers.Voucher.ValidateVoucher)
	}

	// Share links are opened by customers, throttled per client
	view := v1Router.Group("/view", middleware.GuestAuthenticateMiddleware, middleware.RateLimitMiddleware(cfg.RateLimit))
	{
		view.GET("/:token", handlers.Invoice.ViewSharedInvoice)
	}

	private := v1Router.Group("/", middleware.AuthenticateMiddleware(cfg, logger))
	invoices := private.Group("/invoices")
	{
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.GET("/number/:number", handlers.Invoice.GetInvoiceByNumber)
		invoices.POST("/:id/share", handlers.Invoice.GenerateShareLink)
		invoices.POST("/:id/mark-sent", handlers.Invoice.MarkSent)
		invoices.POST("/:id/mark-paid", handlers.Invoice.MarkPaid)
		invoices.POST("/:id/cancel", handlers.Invoice.CancelInvoice)
	}

	return router
}
