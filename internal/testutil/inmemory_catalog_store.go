package testutil

import (
	"context"

	"github.com/solarinvoice/invoicer/internal/domain/agent"
	"github.com/solarinvoice/invoicer/internal/domain/packages"
	"github.com/solarinvoice/invoicer/internal/domain/voucher"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
)

var (
	_ packages.Repository = (*InMemoryPackageStore)(nil)
	_ agent.Repository    = (*InMemoryAgentStore)(nil)
	_ voucher.Repository  = (*InMemoryVoucherStore)(nil)
)

// InMemoryPackageStore implements packages.Repository
type InMemoryPackageStore struct {
	*InMemoryStore[*packages.Package]
}

func NewInMemoryPackageStore() *InMemoryPackageStore {
	return &InMemoryPackageStore{InMemoryStore: NewInMemoryStore[*packages.Package]()}
}

// Add seeds a package
func (s *InMemoryPackageStore) Add(p *packages.Package) error {
	cp := *p
	return s.InMemoryStore.Create(context.Background(), p.ID, &cp)
}

func (s *InMemoryPackageStore) Get(ctx context.Context, id string) (*packages.Package, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Package %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

// InMemoryAgentStore implements agent.Repository
type InMemoryAgentStore struct {
	*InMemoryStore[*agent.Agent]
}

func NewInMemoryAgentStore() *InMemoryAgentStore {
	return &InMemoryAgentStore{InMemoryStore: NewInMemoryStore[*agent.Agent]()}
}

// Add seeds an agent
func (s *InMemoryAgentStore) Add(a *agent.Agent) error {
	cp := *a
	return s.InMemoryStore.Create(context.Background(), a.ID, &cp)
}

func (s *InMemoryAgentStore) Get(ctx context.Context, id string) (*agent.Agent, error) {
	a, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Agent %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

// InMemoryVoucherStore implements voucher.Repository
type InMemoryVoucherStore struct {
	*InMemoryStore[*voucher.Voucher]
}

func NewInMemoryVoucherStore() *InMemoryVoucherStore {
	return &InMemoryVoucherStore{InMemoryStore: NewInMemoryStore[*voucher.Voucher]()}
}

// Add seeds a voucher
func (s *InMemoryVoucherStore) Add(v *voucher.Voucher) error {
	cp := *v
	cp.Code = voucher.NormalizeCode(v.Code)
	return s.InMemoryStore.Create(context.Background(), v.ID, &cp)
}

func (s *InMemoryVoucherStore) GetByCode(ctx context.Context, code string) (*voucher.Voucher, error) {
	code = voucher.NormalizeCode(code)
	v, ok := s.Find(func(v *voucher.Voucher) bool { return v.Code == code })
	if !ok {
		return nil, ierr.NewErrorf("voucher %s not found", code).
			WithHintf("Voucher %s was not found", code).
			Mark(ierr.ErrNotFound)
	}
	cp := *v
	return &cp, nil
}

// Redeem mirrors the conditional UPDATE: it only succeeds while the voucher
// is active and below its redemption cap
func (s *InMemoryVoucherStore) Redeem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[id]
	if !ok || !v.Active || v.IsConsumed() {
		return ierr.NewError("voucher could not be redeemed").
			WithHint("Voucher is no longer valid").
			WithReportableDetails(map[string]any{
				"voucher_id": id,
			}).
			Mark(ierr.ErrVoucherInvalid)
	}
	cp := *v
	cp.TimesRedeemed++
	s.items[id] = &cp
	return nil
}
