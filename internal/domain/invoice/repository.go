package invoice

import (
	"context"
	"time"

	"github.com/solarinvoice/invoicer/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create inserts the invoice together with its line items
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice with its line items by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// GetByNumber retrieves an invoice with its line items by invoice number
	GetByNumber(ctx context.Context, number string) (*Invoice, error)

	// GetByShareToken retrieves an invoice with its line items by share token
	GetByShareToken(ctx context.Context, token string) (*Invoice, error)

	// List retrieves invoices based on filter criteria, without line items
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)

	// Update persists status, sharing and note changes. It fails with
	// ErrVersionConflict when the stored version differs from invoice.Version.
	Update(ctx context.Context, invoice *Invoice) error

	// RecordView bumps the access count of a shared invoice
	RecordView(ctx context.Context, id string, at time.Time) error
}
