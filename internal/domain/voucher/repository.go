package voucher

import "context"

// Repository defines the interface for voucher data access
type Repository interface {
	// GetByCode looks a voucher up by its normalized code
	GetByCode(ctx context.Context, code string) (*Voucher, error)
	// Redeem atomically increments the redemption count. It fails with
	// ErrVoucherInvalid when the voucher was used up in the meantime.
	Redeem(ctx context.Context, id string) error
}
