package invoice

import (
	"context"
	"time"
)

// InvoiceSequence is the counter row behind invoice numbers of one scope
type InvoiceSequence struct {
	Scope     string    `db:"scope"`
	LastValue int64     `db:"last_value"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SequenceRepository hands out invoice sequence values
type SequenceRepository interface {
	// NextInvoiceSequence atomically increments and returns the counter for
	// scope, starting at 1. Concurrent callers never see the same value.
	NextInvoiceSequence(ctx context.Context, scope string) (int64, error)
}
