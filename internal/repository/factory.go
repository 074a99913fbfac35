package repository

import (
	"github.com/solarinvoice/invoicer/internal/cache"
	"github.com/solarinvoice/invoicer/internal/domain/agent"
	"github.com/solarinvoice/invoicer/internal/domain/customer"
	"github.com/solarinvoice/invoicer/internal/domain/invoice"
	"github.com/solarinvoice/invoicer/internal/domain/packages"
	"github.com/solarinvoice/invoicer/internal/domain/voucher"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/postgres"
	postgresRepo "github.com/solarinvoice/invoicer/internal/repository/postgres"
)

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewSequenceRepository(db *postgres.DB, logger *logger.Logger) invoice.SequenceRepository {
	return postgresRepo.NewSequenceRepository(db, logger)
}

func NewCustomerRepository(db *postgres.DB, logger *logger.Logger) customer.Repository {
	return postgresRepo.NewCustomerRepository(db, logger)
}

func NewPackageRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) packages.Repository {
	return postgresRepo.NewPackageRepository(db, logger, cache)
}

func NewVoucherRepository(db *postgres.DB, logger *logger.Logger) voucher.Repository {
	return postgresRepo.NewVoucherRepository(db, logger)
}

func NewAgentRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) agent.Repository {
	return postgresRepo.NewAgentRepository(db, logger, cache)
}
