package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/solarinvoice/invoicer/internal/api"
	v1 "github.com/solarinvoice/invoicer/internal/api/v1"
	"github.com/solarinvoice/invoicer/internal/cache"
	"github.com/solarinvoice/invoicer/internal/config"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/postgres"
	"github.com/solarinvoice/invoicer/internal/repository"
	"github.com/solarinvoice/invoicer/internal/sentry"
	"github.com/solarinvoice/invoicer/internal/service"
	"github.com/solarinvoice/invoicer/migrations"
	"go.uber.org/fx"
)

// @title Invoicer API
// @version 1.0
// @description Quotation and invoice service
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Initialize Fx application
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		sentry.Module(),
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,
			postgres.NewSentryClient,

			// Repositories
			repository.NewInvoiceRepository,
			repository.NewSequenceRepository,
			repository.NewCustomerRepository,
			repository.NewPackageRepository,
			repository.NewVoucherRepository,
			repository.NewAgentRepository,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewInvoiceService,
			service.NewVoucherService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			runMigrations,
			startAPIServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	invoiceService service.InvoiceService,
	voucherService service.VoucherService,
) api.Handlers {
	return api.Handlers{
		Health:  v1.NewHealthHandler(logger),
		Invoice: v1.NewInvoiceHandler(invoiceService, logger),
		Voucher: v1.NewVoucherHandler(voucherService, logger),
	}
}

// runMigrations applies the embedded schema on start when auto migrate is on
func runMigrations(lc fx.Lifecycle, cfg *config.Configuration, db *postgres.DB, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.Postgres.AutoMigrate {
				return nil
			}
			applied, err := db.Migrate(ctx, migrations.Postgres, "postgres", false)
			if err != nil {
				log.Errorw("failed to apply migrations", "error", err, "applied", applied)
				return err
			}
			log.Infow("database migrations applied", "count", len(applied))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			db.Close()
			return nil
		},
	})
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}
