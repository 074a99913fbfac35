package testutil

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/solarinvoice/invoicer/internal/domain/invoice"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/types"
)

var _ invoice.Repository = (*InMemoryInvoiceStore)(nil)

// InMemoryInvoiceStore implements invoice.Repository with the same unique
// constraints as the invoices table
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]

	// createErr, when set, fails the next Create
	createErr error
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

// copyInvoice deep copies an invoice so callers cannot change stored state
func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	if inv == nil {
		return nil
	}
	c := *inv
	c.LineItems = lo.Map(inv.LineItems, func(item *invoice.InvoiceLineItem, _ int) *invoice.InvoiceLineItem {
		line := *item
		return &line
	})
	return &c
}

// FailNextCreate makes the next Create return err
func (s *InMemoryInvoiceStore) FailNextCreate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createErr = err
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	if err := s.createErr; err != nil {
		s.createErr = nil
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	if _, taken := s.Find(func(existing *invoice.Invoice) bool {
		return existing.InvoiceNumber == inv.InvoiceNumber
	}); taken {
		marked := ierr.NewErrorf("duplicate invoice number %s", inv.InvoiceNumber).
			WithHint("An invoice with this number already exists").
			Mark(ierr.ErrAlreadyExists)
		return errors.Mark(marked, invoice.ErrInvoiceNumberTaken)
	}
	if inv.ShareToken != nil {
		if _, taken := s.Find(func(existing *invoice.Invoice) bool {
			return existing.ShareToken != nil && *existing.ShareToken == *inv.ShareToken
		}); taken {
			return ierr.NewError("duplicate share token").
				WithHint("Share token already exists").
				Mark(ierr.ErrAlreadyExists)
		}
	}

	return s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv))
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Invoice %s not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) GetByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	inv, ok := s.Find(func(i *invoice.Invoice) bool { return i.InvoiceNumber == number })
	if !ok {
		return nil, ierr.NewErrorf("invoice %s not found", number).
			WithHintf("Invoice %s not found", number).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) GetByShareToken(ctx context.Context, token string) (*invoice.Invoice, error) {
	inv, ok := s.Find(func(i *invoice.Invoice) bool { return i.ShareToken != nil && *i.ShareToken == token })
	if !ok {
		return nil, ierr.NewError("invoice not found for share token").
			WithHint("Invoice not found").
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}
	if inv.Status != types.StatusPublished {
		return false
	}
	if len(f.InvoiceStatus) > 0 && !lo.Contains(f.InvoiceStatus, inv.InvoiceStatus) {
		return false
	}
	if f.CustomerID != "" && lo.FromPtr(inv.CustomerID) != f.CustomerID {
		return false
	}
	if f.IsSample != nil && inv.IsSample != *f.IsSample {
		return false
	}
	return true
}

func invoiceSortFn(i, j *invoice.Invoice) bool {
	if i.CreatedAt.Equal(j.CreatedAt) {
		return i.Sequence > j.Sequence
	}
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	items, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
	if err != nil {
		return nil, err
	}
	return lo.Map(items, func(inv *invoice.Invoice, _ int) *invoice.Invoice {
		c := copyInvoice(inv)
		c.LineItems = nil
		return c
	}), nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.items[inv.ID]
	if !ok {
		return ierr.NewErrorf("invoice %s not found", inv.ID).
			WithHintf("Invoice %s not found", inv.ID).
			Mark(ierr.ErrNotFound)
	}
	if stored.Version != inv.Version {
		return ierr.NewError("invoice was modified concurrently").
			WithHint("The invoice was changed by someone else, please reload and try again").
			WithReportableDetails(map[string]any{
				"invoice_id":       inv.ID,
				"expected_version": inv.Version,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	// only status, sharing and notes are updatable, like the UPDATE statement
	updated := copyInvoice(stored)
	updated.InvoiceStatus = inv.InvoiceStatus
	updated.CustomerNotes = inv.CustomerNotes
	updated.InternalNotes = inv.InternalNotes
	updated.ShareToken = inv.ShareToken
	updated.ShareEnabled = inv.ShareEnabled
	updated.ShareExpiresAt = inv.ShareExpiresAt
	updated.SentAt = inv.SentAt
	updated.PaidAt = inv.PaidAt
	updated.CancelledAt = inv.CancelledAt
	updated.UpdatedAt = inv.UpdatedAt
	updated.UpdatedBy = inv.UpdatedBy
	updated.Version = stored.Version + 1

	s.items[inv.ID] = updated
	inv.Version = updated.Version
	return nil
}

func (s *InMemoryInvoiceStore) RecordView(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.items[id]
	if !ok {
		return ierr.NewErrorf("invoice %s not found", id).
			WithHint("Invoice not found").
			Mark(ierr.ErrNotFound)
	}
	updated := copyInvoice(stored)
	updated.AccessCount++
	updated.ViewedAt = lo.ToPtr(at)
	s.items[id] = updated
	return nil
}

// All returns every stored invoice, newest first
func (s *InMemoryInvoiceStore) All() []*invoice.Invoice {
	items, _ := s.InMemoryStore.List(context.Background(), nil, nil, invoiceSortFn)
	return lo.Map(items, func(inv *invoice.Invoice, _ int) *invoice.Invoice { return copyInvoice(inv) })
}
