package testutil

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/solarinvoice/invoicer/internal/config"
	"github.com/solarinvoice/invoicer/internal/domain/agent"
	"github.com/solarinvoice/invoicer/internal/domain/packages"
	"github.com/solarinvoice/invoicer/internal/domain/voucher"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/postgres"
	"github.com/solarinvoice/invoicer/internal/types"
	"github.com/solarinvoice/invoicer/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the in-memory repositories for testing
type Stores struct {
	InvoiceRepo  *InMemoryInvoiceStore
	SequenceRepo *InMemorySequenceStore
	CustomerRepo *InMemoryCustomerStore
	PackageRepo  *InMemoryPackageStore
	VoucherRepo  *InMemoryVoucherStore
	AgentRepo    *InMemoryAgentStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	db     *MockPostgresClient
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Invoice.PublicBaseURL = "https://quote.example.com"
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		InvoiceRepo:  NewInMemoryInvoiceStore(),
		SequenceRepo: NewInMemorySequenceStore(),
		CustomerRepo: NewInMemoryCustomerStore(),
		PackageRepo:  NewInMemoryPackageStore(),
		VoucherRepo:  NewInMemoryVoucherStore(),
		AgentRepo:    NewInMemoryAgentStore(),
	}

	s.db = NewMockPostgresClient(s.logger,
		s.stores.InvoiceRepo,
		s.stores.SequenceRepo,
		s.stores.CustomerRepo,
		s.stores.VoucherRepo,
	)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.InvoiceRepo.Clear()
	s.stores.SequenceRepo.Clear()
	s.stores.CustomerRepo.Clear()
	s.stores.PackageRepo.Clear()
	s.stores.VoucherRepo.Clear()
	s.stores.AgentRepo.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// SetContext replaces the test context, e.g. with an authenticated one
func (s *BaseServiceTestSuite) SetContext(ctx context.Context) {
	s.ctx = ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}

// CreatePackage seeds an active package priced at price
func (s *BaseServiceTestSuite) CreatePackage(name string, price string) *packages.Package {
	p := &packages.Package{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PACKAGE),
		Name:               name,
		Price:              decimal.RequireFromString(price),
		InvoiceDescription: name + " Solar Package",
		PanelQty:           12,
		PanelRating:        550,
		PackageType:        "residential",
		Active:             true,
		BaseModel:          types.GetDefaultBaseModel(s.ctx),
	}
	s.Require().NoError(s.stores.PackageRepo.Add(p))
	return p
}

// CreateAgent seeds an agent
func (s *BaseServiceTestSuite) CreateAgent(name string) *agent.Agent {
	a := &agent.Agent{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AGENT),
		Name:      name,
		Phone:     "60123456789",
		BaseModel: types.GetDefaultBaseModel(s.ctx),
	}
	s.Require().NoError(s.stores.AgentRepo.Add(a))
	return a
}

// CreateVoucher seeds an active, unlimited voucher
func (s *BaseServiceTestSuite) CreateVoucher(code string, kind types.VoucherKind, value string) *voucher.Voucher {
	v := &voucher.Voucher{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_VOUCHER),
		Code:      code,
		Title:     code,
		Kind:      kind,
		Value:     decimal.RequireFromString(value),
		Active:    true,
		BaseModel: types.GetDefaultBaseModel(s.ctx),
	}
	s.Require().NoError(s.stores.VoucherRepo.Add(v))
	return v
}
