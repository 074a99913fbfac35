package customer

import (
	"context"
)

// Repository defines the interface for customer data access
type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	Get(ctx context.Context, id string) (*Customer, error)
	// GetByPhone looks a customer up by digits-only phone number
	GetByPhone(ctx context.Context, phone string) (*Customer, error)
}
