package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/solarinvoice/invoicer/internal/api/dto"
	"github.com/solarinvoice/invoicer/internal/domain/invoice"
	"github.com/solarinvoice/invoicer/internal/domain/voucher"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/types"
)

const (
	// DefaultCurrency is the currency all package prices are quoted in
	DefaultCurrency = "MYR"

	// numberConflictRetries is how many fresh numbers are tried after the
	// first one collides with an existing invoice
	numberConflictRetries = 1
	numberConflictBackoff = 10 * time.Millisecond
)

type InvoiceService interface {
	// CreateInvoice prices a package for a customer, numbers the invoice and
	// persists it with its line items in one transaction
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.CreateInvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)

	MarkSent(ctx context.Context, id string) error
	MarkPaid(ctx context.Context, id string) error
	CancelInvoice(ctx context.Context, id string) error

	// GenerateShareLink replaces the public token of an invoice
	GenerateShareLink(ctx context.Context, id string, req dto.GenerateShareLinkRequest) (*dto.GenerateShareLinkResponse, error)
	// GetSharedInvoice serves the public view and records the visit
	GetSharedInvoice(ctx context.Context, token string) (*dto.PublicInvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
	snapshots *SnapshotBuilder
	numbers   *InvoiceNumberAllocator
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		snapshots:     NewSnapshotBuilder(params),
		numbers:       NewInvoiceNumberAllocator(params),
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.CreateInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fixed, percent, err := req.Discounts()
	if err != nil {
		return nil, err
	}

	taxRate := decimal.NewFromFloat(s.Config.Invoice.DefaultSSTRate)
	if req.SSTRate != nil {
		taxRate = *req.SSTRate
	}

	var inv *invoice.Invoice
	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		s.Logger.Infow("creating invoice",
			"package_id", req.PackageID,
			"agent_id", req.AgentID,
			"is_sample", req.IsSample(),
		)

		snap, err := s.snapshots.Build(txCtx, SnapshotRequest{
			PackageID:       req.PackageID,
			AgentID:         req.AgentID,
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			CustomerEmail:   req.CustomerEmail,
			CustomerAddress: req.CustomerAddress,
		})
		if err != nil {
			return err
		}

		var v *voucher.Voucher
		if code := voucher.NormalizeCode(req.VoucherCode); code != "" {
			v, err = getRedeemableVoucher(txCtx, s.VoucherRepo, code, time.Now().UTC())
			if err != nil {
				return err
			}
		}

		calc, err := CalculateInvoice(CalculationInput{
			PackageDescription: snap.Package.Description,
			PackagePrice:       snap.Package.Price,
			AgentMarkup:        lo.FromPtr(req.AgentMarkup),
			Addons: lo.Map(req.Addons, func(a dto.CreateInvoiceAddonRequest, _ int) AddonInput {
				return AddonInput{Description: a.Description, Quantity: a.Quantity, UnitPrice: a.UnitPrice}
			}),
			DiscountFixed:   fixed,
			DiscountPercent: percent,
			Voucher:         v,
			Adjustments: lo.Map(req.Adjustments, func(a dto.CreateInvoiceAdjustmentRequest, _ int) AdjustmentInput {
				return AdjustmentInput{Description: a.Description, Amount: a.Amount}
			}),
			FeeAmount:      lo.FromPtr(req.EPPFeeAmount),
			FeeDescription: req.EPPFeeDescription,
			ApplyTax:       req.ApplySST,
			TaxRate:        taxRate,
		})
		if err != nil {
			return err
		}

		if v != nil {
			if err := s.VoucherRepo.Redeem(txCtx, v.ID); err != nil {
				return err
			}
		}

		draft, err := s.newInvoice(txCtx, &req, snap, calc, fixed, percent, v)
		if err != nil {
			return err
		}

		if err := s.persistWithNumber(txCtx, draft); err != nil {
			return err
		}
		inv = draft
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"total_amount", inv.TotalAmount.String(),
		"line_items", len(inv.LineItems),
	)

	shareURL := ShareURL(s.Config.Invoice.PublicBaseURL, lo.FromPtr(inv.ShareToken))
	return dto.NewCreateInvoiceResponse(inv, shareURL, types.IsAuthenticated(ctx)), nil
}

// newInvoice assembles the unnumbered invoice from the snapshot and the computed lines
func (s *invoiceService) newInvoice(
	ctx context.Context,
	req *dto.CreateInvoiceRequest,
	snap invoice.Snapshot,
	calc *CalculationResult,
	fixed, percent decimal.Decimal,
	v *voucher.Voucher,
) (*invoice.Invoice, error) {
	token, err := newShareToken()
	if err != nil {
		return nil, err
	}

	base := types.GetDefaultBaseModel(ctx)
	expiresAt := base.CreatedAt.AddDate(0, 0, s.Config.Invoice.ShareLinkExpiryDays)

	inv := &invoice.Invoice{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		Currency:        DefaultCurrency,
		AgentMarkup:     types.RoundMoney(lo.FromPtr(req.AgentMarkup)),
		DiscountFixed:   fixed,
		DiscountPercent: percent,
		InvoiceStatus:   types.InvoiceStatusDraft,
		CustomerNotes:   req.CustomerNotes,
		InternalNotes:   req.InternalNotes,
		ShareToken:      lo.ToPtr(token),
		ShareEnabled:    true,
		ShareExpiresAt:  lo.ToPtr(expiresAt),
		Version:         1,
		BaseModel:       base,
	}
	if v != nil {
		inv.VoucherCode = lo.ToPtr(v.Code)
	}
	snap.Apply(inv)
	calc.Apply(inv)

	for _, line := range inv.LineItems {
		line.InvoiceID = inv.ID
		line.BaseModel = base
	}
	return inv, nil
}

// persistWithNumber numbers and saves inv. The insert runs in a nested
// transaction so a number collision only rolls back the insert; the counter
// has already moved on and the retry gets a fresh value.
func (s *invoiceService) persistWithNumber(ctx context.Context, inv *invoice.Invoice) error {
	attempt := 0
	op := func() error {
		attempt++
		number, seq, err := s.numbers.Next(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		inv.InvoiceNumber = number
		inv.Sequence = seq

		if err := inv.Validate(); err != nil {
			return backoff.Permanent(err)
		}

		err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
			return s.InvoiceRepo.Create(txCtx, inv)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, invoice.ErrInvoiceNumberTaken) {
			s.Logger.Warnw("invoice number already taken, retrying with next number",
				"invoice_number", number,
				"attempt", attempt,
			)
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(numberConflictBackoff), numberConflictRetries),
		ctx,
	)
	err := backoff.Retry(op, policy)
	if err != nil && errors.Is(err, invoice.ErrInvoiceNumberTaken) {
		return ierr.WithError(err).
			WithHint("Could not allocate an invoice number, please try again").
			WithReportableDetails(map[string]any{
				"attempts": attempt,
			}).
			Mark(ierr.ErrSequenceUnavailable)
	}
	return err
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	if id == "" {
		return nil, ierr.NewError("invoice id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(inv), nil
}

func (s *invoiceService) GetInvoiceByNumber(ctx context.Context, number string) (*dto.InvoiceResponse, error) {
	if number == "" {
		return nil, ierr.NewError("invoice number is required").
			WithHint("Invoice number is required").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.toResponse(inv), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return s.toResponse(inv)
	})
	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

func (s *invoiceService) MarkSent(ctx context.Context, id string) error {
	return s.transition(ctx, id, types.InvoiceStatusSent)
}

func (s *invoiceService) MarkPaid(ctx context.Context, id string) error {
	return s.transition(ctx, id, types.InvoiceStatusPaid)
}

func (s *invoiceService) CancelInvoice(ctx context.Context, id string) error {
	return s.transition(ctx, id, types.InvoiceStatusCancelled)
}

// transition moves an invoice along its lifecycle. Money fields are never
// touched; a concurrent change surfaces as ErrVersionConflict.
func (s *invoiceService) transition(ctx context.Context, id string, next types.InvoiceStatus) error {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return err
	}

	if !inv.InvoiceStatus.CanTransitionTo(next) {
		return ierr.NewErrorf("invoice cannot move from %s to %s", inv.InvoiceStatus, next).
			WithHintf("A %s invoice cannot be marked %s", inv.InvoiceStatus, next).
			WithReportableDetails(map[string]any{
				"invoice_id":     id,
				"current_status": inv.InvoiceStatus,
				"target_status":  next,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	switch next {
	case types.InvoiceStatusSent:
		inv.SentAt = lo.ToPtr(now)
	case types.InvoiceStatusPaid:
		inv.PaidAt = lo.ToPtr(now)
	case types.InvoiceStatusCancelled:
		inv.CancelledAt = lo.ToPtr(now)
		inv.ShareEnabled = false
	}
	previous := inv.InvoiceStatus
	inv.InvoiceStatus = next
	inv.UpdatedAt = now
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return err
	}

	s.Logger.Infow("invoice status changed",
		"invoice_id", id,
		"from", previous,
		"to", next,
	)
	return nil
}

func (s *invoiceService) GenerateShareLink(ctx context.Context, id string, req dto.GenerateShareLinkRequest) (*dto.GenerateShareLinkResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.InvoiceStatus == types.InvoiceStatusCancelled {
		return nil, ierr.NewError("cannot share a cancelled invoice").
			WithHint("Cancelled invoices cannot be shared").
			Mark(ierr.ErrInvalidOperation)
	}

	token, err := newShareToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	days := lo.FromPtrOr(req.ExpiresInDays, s.Config.Invoice.ShareLinkExpiryDays)
	expiresAt := now.AddDate(0, 0, days)

	inv.ShareToken = lo.ToPtr(token)
	inv.ShareEnabled = true
	inv.ShareExpiresAt = lo.ToPtr(expiresAt)
	inv.UpdatedAt = now
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	return &dto.GenerateShareLinkResponse{
		Success:    true,
		ShareToken: token,
		ShareURL:   ShareURL(s.Config.Invoice.PublicBaseURL, token),
		ExpiresAt:  expiresAt,
	}, nil
}

func (s *invoiceService) GetSharedInvoice(ctx context.Context, token string) (*dto.PublicInvoiceResponse, error) {
	if token == "" {
		return nil, ierr.NewError("share token is required").
			WithHint("Invoice not found").
			Mark(ierr.ErrNotFound)
	}

	inv, err := s.InvoiceRepo.GetByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if !inv.IsShareActive(now) {
		// disabled and expired links look the same as unknown ones
		return nil, ierr.NewError("share link is not active").
			WithHint("Invoice not found").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrNotFound)
	}

	if err := s.InvoiceRepo.RecordView(ctx, inv.ID, now); err != nil {
		return nil, err
	}

	return dto.NewPublicInvoiceResponse(inv), nil
}

func (s *invoiceService) toResponse(inv *invoice.Invoice) *dto.InvoiceResponse {
	return dto.NewInvoiceResponse(inv, ShareURL(s.Config.Invoice.PublicBaseURL, lo.FromPtr(inv.ShareToken)))
}
