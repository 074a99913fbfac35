package postgres

import (
	"context"

	"github.com/solarinvoice/invoicer/internal/domain/invoice"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/postgres"
)

type sequenceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSequenceRepository(db *postgres.DB, logger *logger.Logger) invoice.SequenceRepository {
	return &sequenceRepository{db: db, logger: logger}
}

// NextInvoiceSequence increments the counter row for scope in a single
// statement. The row lock taken by the upsert serialises concurrent callers
// across every server instance.
func (r *sequenceRepository) NextInvoiceSequence(ctx context.Context, scope string) (int64, error) {
	span := StartRepositorySpan(ctx, "invoice_sequence", "next", map[string]interface{}{
		"scope": scope,
	})
	defer FinishSpan(span)

	query := `
		INSERT INTO invoice_sequences (scope, last_value, created_at, updated_at)
		VALUES ($1, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (scope) DO UPDATE
		SET last_value = invoice_sequences.last_value + 1,
			updated_at = CURRENT_TIMESTAMP
		RETURNING last_value`

	var lastValue int64
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &lastValue, query, scope); err != nil {
		SetSpanError(span, err)
		return 0, ierr.WithError(err).
			WithHint("Invoice number generation failed").
			WithReportableDetails(map[string]any{
				"scope": scope,
			}).
			Mark(ierr.ErrSequenceUnavailable)
	}

	r.logger.Debugw("allocated invoice sequence", "scope", scope, "sequence", lastValue)
	return lastValue, nil
}
