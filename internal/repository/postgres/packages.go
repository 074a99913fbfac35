package postgres

import (
	"context"

	"github.com/solarinvoice/invoicer/internal/cache"
	"github.com/solarinvoice/invoicer/internal/domain/packages"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/postgres"
	"github.com/solarinvoice/invoicer/internal/types"
)

type packageRepository struct {
	db     *postgres.DB
	logger *logger.Logger
	cache  cache.Cache
}

func NewPackageRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) packages.Repository {
	return &packageRepository{db: db, logger: logger, cache: cache}
}

func (r *packageRepository) Get(ctx context.Context, id string) (*packages.Package, error) {
	key := cache.GenerateKey(cache.PrefixPackage, id)
	if cached, ok := r.cache.Get(ctx, key); ok {
		if p, ok := cached.(*packages.Package); ok {
			return p, nil
		}
	}

	span := StartRepositorySpan(ctx, "package", "get", map[string]interface{}{
		"package_id": id,
	})
	defer FinishSpan(span)

	var p packages.Package
	query := `SELECT * FROM packages WHERE id = $1 AND status = $2`
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id, types.StatusPublished); err != nil {
		if isNoRows(err) {
			return nil, notFound("package", "package_id", id)
		}
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to get package").
			Mark(ierr.ErrDatabase)
	}
	r.cache.Set(ctx, key, &p, 0)
	return &p, nil
}
