package postgres

import (
	"context"

	"github.com/solarinvoice/invoicer/internal/cache"
	"github.com/solarinvoice/invoicer/internal/domain/agent"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/postgres"
	"github.com/solarinvoice/invoicer/internal/types"
)

type agentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

func NewAgentRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) agent.Repository {
	return &agentRepository{db: db, logger: logger, cache: cache}
}

func (r *agentRepository) Get(ctx context.Context, id string) (*agent.Agent, error) {
	key := cache.GenerateKey(cache.PrefixAgent, id)
	if cached, ok := r.cache.Get(ctx, key); ok {
		if a, ok := cached.(*agent.Agent); ok {
			return a, nil
		}
	}

	var a agent.Agent
	query := `SELECT * FROM agents WHERE id = $1 AND status = $2`
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &a, query, id, types.StatusPublished); err != nil {
		if isNoRows(err) {
			return nil, notFound("agent", "agent_id", id)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get agent").
			Mark(ierr.ErrDatabase)
	}
	r.cache.Set(ctx, key, &a, 0)
	return &a, nil
}
