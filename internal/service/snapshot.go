package service

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"github.com/solarinvoice/invoicer/internal/domain/customer"
	"github.com/solarinvoice/invoicer/internal/domain/invoice"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/types"
)

// SnapshotRequest names the live records an invoice is built from
type SnapshotRequest struct {
	PackageID       string
	AgentID         string
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	CustomerAddress string
}

// SnapshotBuilder reads packages, agents and customers once and freezes the
// attributes an invoice prints into an invoice.Snapshot.
type SnapshotBuilder struct {
	ServiceParams
}

func NewSnapshotBuilder(params ServiceParams) *SnapshotBuilder {
	return &SnapshotBuilder{ServiceParams: params}
}

// Build must run inside the invoice transaction: it may create a customer.
func (b *SnapshotBuilder) Build(ctx context.Context, req SnapshotRequest) (invoice.Snapshot, error) {
	var snap invoice.Snapshot

	pkg, err := b.PackageRepo.Get(ctx, req.PackageID)
	if err != nil {
		return snap, err
	}
	if !pkg.Active || pkg.Status != types.StatusPublished {
		return snap, ierr.NewError("package is not active").
			WithHintf("Package %s was not found", req.PackageID).
			WithReportableDetails(map[string]any{
				"package_id": req.PackageID,
			}).
			Mark(ierr.ErrNotFound)
	}
	snap.Package = invoice.PackageSnapshot{
		PackageID:   pkg.ID,
		Name:        lo.Ternary(strings.TrimSpace(pkg.Name) != "", pkg.Name, pkg.DisplayDescription()),
		Description: pkg.DisplayDescription(),
		Price:       types.RoundMoney(pkg.Price),
		PanelQty:    pkg.PanelQty,
		PanelRating: pkg.PanelRating,
		PackageType: pkg.PackageType,
	}

	if req.AgentID != "" {
		a, err := b.AgentRepo.Get(ctx, req.AgentID)
		if err != nil {
			return snap, err
		}
		snap.Agent = invoice.AgentSnapshot{
			AgentID: lo.ToPtr(a.ID),
			Name:    a.Name,
		}
	}

	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		// sample quotations keep whatever contact details were typed in
		// but never create a customer row
		snap.Customer = invoice.CustomerSnapshot{
			IsSample: true,
			Name:     types.SampleQuotationCustomerName,
			Phone:    types.NormalizePhone(req.CustomerPhone),
			Email:    strings.TrimSpace(req.CustomerEmail),
			Address:  strings.TrimSpace(req.CustomerAddress),
		}
		return snap, nil
	}

	cust, err := b.FindOrCreateCustomer(ctx, name, req.CustomerPhone, req.CustomerEmail, req.CustomerAddress)
	if err != nil {
		return snap, err
	}
	snap.Customer = invoice.CustomerSnapshot{
		CustomerID: lo.ToPtr(cust.ID),
		Name:       cust.Name,
		Phone:      cust.Phone,
		Email:      cust.Email,
		Address:    lo.Ternary(strings.TrimSpace(req.CustomerAddress) != "", strings.TrimSpace(req.CustomerAddress), cust.Address),
	}
	return snap, nil
}

// FindOrCreateCustomer reuses the customer with the same normalized phone
// number, or creates one. Without a phone a new customer is always created.
func (b *SnapshotBuilder) FindOrCreateCustomer(ctx context.Context, name, phone, email, address string) (*customer.Customer, error) {
	phone = types.NormalizePhone(phone)
	if phone != "" {
		existing, err := b.CustomerRepo.GetByPhone(ctx, phone)
		if err == nil {
			b.Logger.Debugw("reusing customer by phone", "customer_id", existing.ID)
			return existing, nil
		}
		if !ierr.IsNotFound(err) {
			return nil, err
		}
	}

	c := &customer.Customer{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Code:      types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_CUSTOMER),
		Name:      name,
		Phone:     phone,
		Email:     strings.TrimSpace(email),
		Address:   strings.TrimSpace(address),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := b.CustomerRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	b.Logger.Infow("created customer for invoice", "customer_id", c.ID, "customer_code", c.Code)
	return c, nil
}
