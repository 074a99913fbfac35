package testutil

import (
	"context"
	"sync"

	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

type mockTxKey struct{}

// MockPostgresClient is a mock implementation of postgres client for testing.
// A failed transaction or savepoint restores every registered store.
// Top level transactions are serialized, standing in for row locks.
type MockPostgresClient struct {
	mu     sync.Mutex
	stores []Transactional
	logger *logger.Logger
}

// NewMockPostgresClient creates a new mock postgres client over stores
func NewMockPostgresClient(logger *logger.Logger, stores ...Transactional) *MockPostgresClient {
	return &MockPostgresClient{
		stores: stores,
		logger: logger,
	}
}

// WithTx executes the given function within a transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	// nested calls behave like savepoints
	if ctx.Value(mockTxKey{}) == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		ctx = context.WithValue(ctx, mockTxKey{}, true)
	}

	restores := make([]func(), 0, len(c.stores))
	for _, store := range c.stores {
		restores = append(restores, store.Snapshot())
	}

	if err := fn(ctx); err != nil {
		c.logger.Debugw("mock transaction rolled back", "error", err)
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
		return err
	}
	return nil
}
