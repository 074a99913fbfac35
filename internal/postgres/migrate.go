package postgres

import (
	"context"
	"io/fs"
	"path"
	"sort"

	ierr "github.com/solarinvoice/invoicer/internal/errors"
)

// Migrate applies every *.sql file in dir of fsys that has not been applied
// yet, in lexical order, each in its own transaction.
func (db *DB) Migrate(ctx context.Context, fsys fs.FS, dir string, dryRun bool) ([]string, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return nil, dbError(err, "failed to create schema_migrations")
	}

	names, err := fs.Glob(fsys, path.Join(dir, "*.sql"))
	if err != nil {
		return nil, ierr.WithError(err).WithHint("Failed to list migrations").Mark(ierr.ErrSystem)
	}
	sort.Strings(names)

	var applied []string
	for _, name := range names {
		version := path.Base(name)

		var exists bool
		if err := db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, version); err != nil {
			return applied, dbError(err, "failed to read schema_migrations")
		}
		if exists {
			continue
		}

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, ierr.WithError(err).WithHintf("Failed to read migration %s", version).Mark(ierr.ErrSystem)
		}

		if dryRun {
			db.logger.Infow("pending migration", "version", version, "sql", string(body))
			applied = append(applied, version)
			continue
		}

		err = db.WithTx(ctx, func(ctx context.Context) error {
			q := db.GetQuerier(ctx)
			if _, err := q.ExecContext(ctx, string(body)); err != nil {
				return dbError(err, "failed to apply migration "+version)
			}
			if _, err := q.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
				return dbError(err, "failed to record migration "+version)
			}
			return nil
		})
		if err != nil {
			return applied, err
		}
		db.logger.Infow("applied migration", "version", version)
		applied = append(applied, version)
	}
	return applied, nil
}
