package service

import (
	"context"
	"fmt"

	"github.com/solarinvoice/invoicer/internal/domain/invoice"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/logger"
)

// FormatInvoiceNumber renders n zero padded to length digits, e.g. INV-000123.
// Values wider than length are printed in full rather than truncated.
func FormatInvoiceNumber(prefix string, length int, n int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, length, n)
}

// InvoiceNumberAllocator hands out invoice numbers from the database counter.
// The counter is scoped by prefix so a prefix change starts a fresh series.
type InvoiceNumberAllocator struct {
	repo   invoice.SequenceRepository
	prefix string
	length int
	logger *logger.Logger
}

func NewInvoiceNumberAllocator(params ServiceParams) *InvoiceNumberAllocator {
	return &InvoiceNumberAllocator{
		repo:   params.SequenceRepo,
		prefix: params.Config.Invoice.NumberPrefix,
		length: params.Config.Invoice.NumberLength,
		logger: params.Logger,
	}
}

// Next allocates the next number. Called inside a transaction, a rollback of
// that transaction also returns the value to the counter.
func (a *InvoiceNumberAllocator) Next(ctx context.Context) (string, int64, error) {
	seq, err := a.repo.NextInvoiceSequence(ctx, a.prefix)
	if err != nil {
		a.logger.Errorw("failed to allocate invoice sequence", "scope", a.prefix, "error", err)
		if ierr.IsSequenceUnavailable(err) {
			return "", 0, err
		}
		return "", 0, ierr.WithError(err).
			WithHint("Invoice numbering is temporarily unavailable, please try again").
			Mark(ierr.ErrSequenceUnavailable)
	}
	if seq <= 0 {
		return "", 0, ierr.NewErrorf("invoice sequence returned %d", seq).
			WithHint("Invoice numbering is temporarily unavailable, please try again").
			Mark(ierr.ErrSequenceUnavailable)
	}
	return FormatInvoiceNumber(a.prefix, a.length, seq), seq, nil
}
