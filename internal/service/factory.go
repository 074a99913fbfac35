package service

import (
	"github.com/solarinvoice/invoicer/internal/config"
	"github.com/solarinvoice/invoicer/internal/domain/agent"
	"github.com/solarinvoice/invoicer/internal/domain/customer"
	"github.com/solarinvoice/invoicer/internal/domain/invoice"
	"github.com/solarinvoice/invoicer/internal/domain/packages"
	"github.com/solarinvoice/invoicer/internal/domain/voucher"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	InvoiceRepo  invoice.Repository
	SequenceRepo invoice.SequenceRepository
	CustomerRepo customer.Repository
	PackageRepo  packages.Repository
	VoucherRepo  voucher.Repository
	AgentRepo    agent.Repository
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	invoiceRepo invoice.Repository,
	sequenceRepo invoice.SequenceRepository,
	customerRepo customer.Repository,
	packageRepo packages.Repository,
	voucherRepo voucher.Repository,
	agentRepo agent.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:       logger,
		Config:       config,
		DB:           db,
		InvoiceRepo:  invoiceRepo,
		SequenceRepo: sequenceRepo,
		CustomerRepo: customerRepo,
		PackageRepo:  packageRepo,
		VoucherRepo:  voucherRepo,
		AgentRepo:    agentRepo,
	}
}
