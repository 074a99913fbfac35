package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/testutil"
	"github.com/solarinvoice/invoicer/internal/types"
	"github.com/stretchr/testify/suite"
)

type VoucherServiceSuite struct {
	testutil.BaseServiceTestSuite
	service VoucherService
}

func TestVoucherService(t *testing.T) {
	suite.Run(t, new(VoucherServiceSuite))
}

func (s *VoucherServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	s.service = NewVoucherService(NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetDB(),
		stores.InvoiceRepo,
		stores.SequenceRepo,
		stores.CustomerRepo,
		stores.PackageRepo,
		stores.VoucherRepo,
		stores.AgentRepo,
	))
}

func (s *VoucherServiceSuite) TestPreviewAgainstPackage() {
	pkg := s.CreatePackage("Residential", "18276.00")
	s.CreateVoucher("SUN5", types.VoucherKindPercent, "5")

	resp, err := s.service.PreviewVoucher(s.GetContext(), "sun5", pkg.ID)
	s.Require().NoError(err)
	s.Equal("SUN5", resp.Code)
	s.Equal("913.80", resp.DiscountAmount.StringFixed(2))
	s.Equal("18276.00", resp.PackagePrice.StringFixed(2))

	// previewing never redeems
	v, err := s.GetStores().VoucherRepo.GetByCode(s.GetContext(), "SUN5")
	s.Require().NoError(err)
	s.Equal(0, v.TimesRedeemed)
}

func (s *VoucherServiceSuite) TestPreviewWithoutPackage() {
	s.CreateVoucher("RAYA1000", types.VoucherKindFixed, "1000")
	s.CreateVoucher("SUN5", types.VoucherKindPercent, "5")

	fixed, err := s.service.PreviewVoucher(s.GetContext(), "RAYA1000", "")
	s.Require().NoError(err)
	s.Equal("1000.00", fixed.DiscountAmount.StringFixed(2))

	percent, err := s.service.PreviewVoucher(s.GetContext(), "SUN5", "")
	s.Require().NoError(err)
	s.True(percent.DiscountAmount.IsZero())
}

func (s *VoucherServiceSuite) TestPreviewFixedVoucherIsCappedAtPrice() {
	pkg := s.CreatePackage("Tiny", "300")
	s.CreateVoucher("RAYA1000", types.VoucherKindFixed, "1000")

	resp, err := s.service.PreviewVoucher(s.GetContext(), "RAYA1000", pkg.ID)
	s.Require().NoError(err)
	s.Equal("300.00", resp.DiscountAmount.StringFixed(2))
}

func (s *VoucherServiceSuite) TestPreviewErrors() {
	inactive := s.CreateVoucher("OFF", types.VoucherKindFixed, "100")
	inactive.Active = false
	s.Require().NoError(s.GetStores().VoucherRepo.Update(s.GetContext(), inactive.ID, inactive))

	future := s.CreateVoucher("SOON", types.VoucherKindFixed, "100")
	future.ValidFrom = lo.ToPtr(time.Now().Add(48 * time.Hour))
	s.Require().NoError(s.GetStores().VoucherRepo.Update(s.GetContext(), future.ID, future))

	tests := []struct {
		code string
		want error
	}{
		{"", ierr.ErrVoucherInvalid},
		{"MISSING", ierr.ErrVoucherInvalid},
		{"OFF", ierr.ErrVoucherInvalid},
		{"SOON", ierr.ErrVoucherExpired},
	}
	for _, tt := range tests {
		_, err := s.service.PreviewVoucher(s.GetContext(), tt.code, "")
		s.Require().Error(err, tt.code)
		s.True(ierr.Is(err, tt.want), "code %q: %v", tt.code, err)
	}
}
