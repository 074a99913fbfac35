package service

import (
	"context"
	"time"

	"github.com/solarinvoice/invoicer/internal/api/dto"
	"github.com/solarinvoice/invoicer/internal/domain/voucher"
	ierr "github.com/solarinvoice/invoicer/internal/errors"
	"github.com/solarinvoice/invoicer/internal/types"
)

type VoucherService interface {
	// PreviewVoucher reports what code would take off the package price
	// without redeeming it. packageID may be empty.
	PreviewVoucher(ctx context.Context, code string, packageID string) (*dto.VoucherPreviewResponse, error)
}

type voucherService struct {
	ServiceParams
}

func NewVoucherService(params ServiceParams) VoucherService {
	return &voucherService{ServiceParams: params}
}

func (s *voucherService) PreviewVoucher(ctx context.Context, code string, packageID string) (*dto.VoucherPreviewResponse, error) {
	v, err := getRedeemableVoucher(ctx, s.VoucherRepo, voucher.NormalizeCode(code), time.Now().UTC())
	if err != nil {
		return nil, err
	}

	resp := &dto.VoucherPreviewResponse{
		Code:  v.Code,
		Title: v.Title,
		Kind:  v.Kind,
		Value: v.Value,
	}

	if packageID == "" {
		if v.Kind == types.VoucherKindFixed {
			resp.DiscountAmount = types.RoundMoney(v.Value)
		}
		return resp, nil
	}

	pkg, err := s.PackageRepo.Get(ctx, packageID)
	if err != nil {
		return nil, err
	}
	resp.PackagePrice = types.RoundMoney(pkg.Price)
	resp.DiscountAmount = v.Deduction(resp.PackagePrice)
	return resp, nil
}

// getRedeemableVoucher resolves code and checks it can be used at now.
// Unknown codes are reported as invalid vouchers rather than not found.
func getRedeemableVoucher(ctx context.Context, repo voucher.Repository, code string, now time.Time) (*voucher.Voucher, error) {
	if code == "" {
		return nil, ierr.NewError("voucher code is required").
			WithHint("Please provide a voucher code").
			Mark(ierr.ErrVoucherInvalid)
	}

	v, err := repo.GetByCode(ctx, code)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHintf("Voucher %s is not valid", code).
				Mark(ierr.ErrVoucherInvalid)
		}
		return nil, err
	}

	if err := v.CheckRedeemable(now); err != nil {
		return nil, err
	}
	return v, nil
}
