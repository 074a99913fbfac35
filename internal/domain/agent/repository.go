package agent

import "context"

// Repository defines the interface for agent data access
type Repository interface {
	Get(ctx context.Context, id string) (*Agent, error)
}
