package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/solarinvoice/invoicer/internal/domain/invoice"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/postgres"
	"github.com/solarinvoice/invoicer/internal/types"
)

const (
	constraintInvoiceNumber = "invoices_invoice_number_key"
	constraintShareToken    = "invoices_share_token_key"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	span := StartRepositorySpan(ctx, "invoice", "create", map[string]interface{}{
		"invoice_id":     inv.ID,
		"invoice_number": inv.InvoiceNumber,
	})
	defer FinishSpan(span)

	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"line_items", len(inv.LineItems),
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO invoices (
				id, invoice_number, sequence,
				customer_id, is_sample, customer_name, customer_phone, customer_email, customer_address,
				agent_id, agent_name,
				package_id, package_name, package_description, package_price, panel_qty, panel_rating, package_type,
				currency, gross_amount, agent_markup, discount_fixed, discount_percent, discount_amount,
				voucher_code, voucher_amount, subtotal, apply_tax, tax_rate, tax_amount, total_amount,
				invoice_status, customer_notes, internal_notes,
				share_token, share_enabled, share_expires_at, access_count, viewed_at, sent_at, paid_at, cancelled_at,
				version, status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :invoice_number, :sequence,
				:customer_id, :is_sample, :customer_name, :customer_phone, :customer_email, :customer_address,
				:agent_id, :agent_name,
				:package_id, :package_name, :package_description, :package_price, :panel_qty, :panel_rating, :package_type,
				:currency, :gross_amount, :agent_markup, :discount_fixed, :discount_percent, :discount_amount,
				:voucher_code, :voucher_amount, :subtotal, :apply_tax, :tax_rate, :tax_amount, :total_amount,
				:invoice_status, :customer_notes, :internal_notes,
				:share_token, :share_enabled, :share_expires_at, :access_count, :viewed_at, :sent_at, :paid_at, :cancelled_at,
				:version, :status, :created_at, :updated_at, :created_by, :updated_by
			)`

		q := r.db.GetQuerier(ctx)
		if _, err := q.NamedExecContext(ctx, query, inv); err != nil {
			SetSpanError(span, err)
			return r.createError(err, inv)
		}

		itemQuery := `
			INSERT INTO invoice_line_items (
				id, invoice_id, item_type, description, quantity, unit_price, amount, sort_order,
				status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :invoice_id, :item_type, :description, :quantity, :unit_price, :amount, :sort_order,
				:status, :created_at, :updated_at, :created_by, :updated_by
			)`
		for _, item := range inv.LineItems {
			if _, err := q.NamedExecContext(ctx, itemQuery, item); err != nil {
				SetSpanError(span, err)
				return ierr.WithError(err).
					WithHint("Failed to create invoice line item").
					WithReportableDetails(map[string]any{
						"invoice_id": inv.ID,
						"item_type":  item.Type,
					}).
					Mark(ierr.ErrDatabase)
			}
		}
		return nil
	})
}

func (r *invoiceRepository) createError(err error, inv *invoice.Invoice) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	marked := ierr.WithError(err).
		WithHint("An invoice with this number already exists").
		WithReportableDetails(map[string]any{
			"constraint":     constraint,
			"invoice_number": inv.InvoiceNumber,
		}).
		Mark(ierr.ErrAlreadyExists)
	if constraint == constraintInvoiceNumber {
		return ierr.WithError(marked).Mark(invoice.ErrInvoiceNumberTaken)
	}
	return marked
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	return r.getBy(ctx, "id", id)
}

func (r *invoiceRepository) GetByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	return r.getBy(ctx, "invoice_number", number)
}

func (r *invoiceRepository) GetByShareToken(ctx context.Context, token string) (*invoice.Invoice, error) {
	return r.getBy(ctx, "share_token", token)
}

// getBy loads one invoice and its line items; column is never user input
func (r *invoiceRepository) getBy(ctx context.Context, column, value string) (*invoice.Invoice, error) {
	span := StartRepositorySpan(ctx, "invoice", "get_by_"+column, map[string]interface{}{
		column: value,
	})
	defer FinishSpan(span)

	q := r.db.GetQuerier(ctx)

	var inv invoice.Invoice
	query := fmt.Sprintf(`SELECT * FROM invoices WHERE %s = $1 AND status = $2`, column)
	if err := q.GetContext(ctx, &inv, query, value, types.StatusPublished); err != nil {
		if isNoRows(err) {
			return nil, notFound("invoice", column, value)
		}
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}

	var items []*invoice.InvoiceLineItem
	itemQuery := `
		SELECT * FROM invoice_line_items
		WHERE invoice_id = $1 AND status = $2
		ORDER BY sort_order, created_at, id`
	if err := q.SelectContext(ctx, &items, itemQuery, inv.ID, types.StatusPublished); err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice line items").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	inv.LineItems = items

	return &inv, nil
}

func buildInvoiceWhere(filter *types.InvoiceFilter) (string, []interface{}) {
	conditions := []string{"status = $1"}
	args := []interface{}{types.StatusPublished}

	if filter == nil {
		return strings.Join(conditions, " AND "), args
	}
	if len(filter.InvoiceStatus) > 0 {
		placeholders := make([]string, len(filter.InvoiceStatus))
		for i, s := range filter.InvoiceStatus {
			args = append(args, s)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("invoice_status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.IsSample != nil {
		args = append(args, *filter.IsSample)
		conditions = append(conditions, fmt.Sprintf("is_sample = $%d", len(args)))
	}
	return strings.Join(conditions, " AND "), args
}

var invoiceSortColumns = map[string]string{
	"created_at":     "created_at",
	"invoice_number": "sequence",
	"total_amount":   "total_amount",
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	span := StartRepositorySpan(ctx, "invoice", "list", nil)
	defer FinishSpan(span)

	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	where, args := buildInvoiceWhere(filter)

	sortColumn, ok := invoiceSortColumns[filter.GetSort()]
	if !ok {
		sortColumn = "created_at"
	}
	order := "DESC"
	if filter.GetOrder() == types.OrderAsc {
		order = "ASC"
	}

	args = append(args, filter.GetLimit(), filter.GetOffset())
	query := fmt.Sprintf(`SELECT * FROM invoices WHERE %s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		where, sortColumn, order, len(args)-1, len(args))

	var invoices []*invoice.Invoice
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, args...); err != nil {
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	where, args := buildInvoiceWhere(filter)

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM invoices WHERE %s`, where)
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	span := StartRepositorySpan(ctx, "invoice", "update", map[string]interface{}{
		"invoice_id": inv.ID,
		"version":    inv.Version,
	})
	defer FinishSpan(span)

	query := `
		UPDATE invoices SET
			invoice_status = :invoice_status,
			customer_notes = :customer_notes,
			internal_notes = :internal_notes,
			share_token = :share_token,
			share_enabled = :share_enabled,
			share_expires_at = :share_expires_at,
			sent_at = :sent_at,
			paid_at = :paid_at,
			cancelled_at = :cancelled_at,
			updated_at = :updated_at,
			updated_by = :updated_by,
			version = version + 1
		WHERE id = :id AND version = :version AND status = :status`

	result, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, inv)
	if err != nil {
		SetSpanError(span, err)
		if constraint, ok := uniqueViolation(err); ok && constraint == constraintShareToken {
			return ierr.WithError(err).
				WithHint("Share token collision, please try again").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("invoice version conflict").
			WithHint("The invoice was modified by someone else, please reload and try again").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"version":    inv.Version,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	inv.Version++
	return nil
}

func (r *invoiceRepository) RecordView(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE invoices
		SET access_count = access_count + 1,
			viewed_at = $2
		WHERE id = $1 AND status = $3`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, id, at, types.StatusPublished)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to record invoice view").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return notFound("invoice", "invoice_id", id)
	}
	return nil
}
