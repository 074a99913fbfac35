package packages

import "context"

// Repository defines the interface for package data access
type Repository interface {
	Get(ctx context.Context, id string) (*Package, error)
}
