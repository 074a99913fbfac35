package postgres

import (
	"context"

	"github.com/solarinvoice/invoicer/internal/domain/customer"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/logger"
	"github.com/solarinvoice/invoicer/internal/postgres"
	"github.com/solarinvoice/invoicer/internal/types"
)

type customerRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCustomerRepository(db *postgres.DB, logger *logger.Logger) customer.Repository {
	return &customerRepository{db: db, logger: logger}
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	span := StartRepositorySpan(ctx, "customer", "create", map[string]interface{}{
		"customer_id": c.ID,
	})
	defer FinishSpan(span)

	query := `
		INSERT INTO customers (
			id, code, name, phone, email, address, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :code, :name, :phone, :email, :address, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating customer", "customer_id", c.ID, "code", c.Code)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, c); err != nil {
		SetSpanError(span, err)
		if constraint, ok := uniqueViolation(err); ok {
			return ierr.WithError(err).
				WithHint("A customer with this phone number already exists").
				WithReportableDetails(map[string]any{
					"constraint": constraint,
					"phone":      c.Phone,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create customer").
			WithReportableDetails(map[string]any{
				"customer_id": c.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (*customer.Customer, error) {
	span := StartRepositorySpan(ctx, "customer", "get", map[string]interface{}{
		"customer_id": id,
	})
	defer FinishSpan(span)

	var c customer.Customer
	query := `SELECT * FROM customers WHERE id = $1 AND status = $2`
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &c, query, id, types.StatusPublished); err != nil {
		if isNoRows(err) {
			return nil, notFound("customer", "customer_id", id)
		}
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to get customer").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *customerRepository) GetByPhone(ctx context.Context, phone string) (*customer.Customer, error) {
	span := StartRepositorySpan(ctx, "customer", "get_by_phone", nil)
	defer FinishSpan(span)

	var c customer.Customer
	query := `SELECT * FROM customers WHERE phone = $1 AND status = $2 ORDER BY created_at LIMIT 1`
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &c, query, phone, types.StatusPublished); err != nil {
		if isNoRows(err) {
			return nil, notFound("customer", "phone", phone)
		}
		SetSpanError(span, err)
		return nil, ierr.WithError(err).
			WithHint("Failed to look up customer").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}
