package postgres

import (
	"context"

	"github.com/solarinvoice/invoicer/internal/domain/voucher"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/postgres"
	"github.com/solarinvoice/invoicer/internal/types"
)

type voucherRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewVoucherRepository(db *postgres.DB, logger *logger.Logger) voucher.Repository {
	return &voucherRepository{db: db, logger: logger}
}

func (r *voucherRepository) GetByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	span := StartRepositorySpan(ctx, "voucher", "get_by_code", map[string]interface{}{
		"code": code,
	})
	defer FinishSpan(span)

	var v voucher.Voucher
	query := `SELECT * FROM vouchers WHERE code = $1 AND status = $2`
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &v, query, voucher.NormalizeCode(code), types.StatusPublished); err != nil {
		if isNoRows(err) {
			return nil, notFound("voucher", "code", code)
		}
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to get voucher").
			Mark(ierr.ErrDatabase)
	}
	return &v, nil
}

// Redeem only counts the redemption while the voucher is still active and
// under its cap, so two invoices racing for a single-use voucher cannot both win.
func (r *voucherRepository) Redeem(ctx context.Context, id string) error {
	span := StartRepositorySpan(ctx, "voucher", "redeem", map[string]interface{}{
		"voucher_id": id,
	})
	defer FinishSpan(span)

	query := `
		UPDATE vouchers
		SET times_redeemed = times_redeemed + 1,
			updated_at = CURRENT_TIMESTAMP,
			updated_by = $2
		WHERE id = $1
			AND active
			AND status = $3
			AND (max_redemptions IS NULL OR times_redeemed < max_redemptions)`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, id, types.GetUserID(ctx), types.StatusPublished)
	if err != nil {
		SetSpanError(span, err)
		return ierr.WithError(err).
			WithHint("Failed to redeem voucher").
			Mark(ierr.ErrDatabase)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to redeem voucher").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("voucher could not be redeemed").
			WithHint("Voucher has already been used").
			WithReportableDetails(map[string]any{
				"voucher_id": id,
			}).
			Mark(ierr.ErrVoucherInvalid)
	}
	return nil
}
