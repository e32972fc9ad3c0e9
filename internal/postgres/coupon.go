package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/pricing"
	"github.com/techtrend/emporium/internal/repository"
)

// CouponService implements domain.CouponService using PostgreSQL.
type CouponService struct {
	repo repository.Querier
	now  func() time.Time
}

// Compile-time check that CouponService implements domain.CouponService.
var _ domain.CouponService = (*CouponService)(nil)

// NewCouponService creates a new PostgreSQL-backed coupon service.
func NewCouponService(repo repository.Querier) *CouponService {
	return &CouponService{
		repo: repo,
		now:  time.Now,
	}
}

// List returns every coupon, newest first.
func (s *CouponService) List(ctx context.Context) ([]domain.Coupon, error) {
	rows, err := s.repo.ListCoupons(ctx)
	if err != nil {
		return nil, domain.Internal(err, "coupon.list", "failed to list coupons")
	}

	coupons := make([]domain.Coupon, len(rows))
	for i, row := range rows {
		coupons[i] = *couponFromRow(row)
	}
	return coupons, nil
}

// Get returns a coupon by id.
func (s *CouponService) Get(ctx context.Context, id uuid.UUID) (*domain.Coupon, error) {
	row, err := s.repo.GetCouponByID(ctx, pgUUID(id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, domain.Internal(err, "coupon.get", "failed to get coupon")
	}
	return couponFromRow(row), nil
}

// GetByCode returns a coupon by its case-insensitive code.
func (s *CouponService) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	row, err := s.repo.GetCouponByCode(ctx, domain.NormalizeCouponCode(code))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCouponNotFound
		}
		return nil, domain.Internal(err, "coupon.get_by_code", "failed to get coupon")
	}
	return couponFromRow(row), nil
}

// Create validates and stores a new coupon. Codes are stored upper-case.
func (s *CouponService) Create(ctx context.Context, in domain.CouponInput) (*domain.Coupon, error) {
	const op = "coupon.create"

	in.Code = domain.NormalizeCouponCode(in.Code)
	if err := pricing.ValidateCouponInput(op, in); err != nil {
		return nil, err
	}

	row, err := s.repo.CreateCoupon(ctx, repository.CreateCouponParams{
		Code:               in.Code,
		Description:        in.Description,
		DiscountPercentage: pgNumeric(in.DiscountPercentage),
		MaxDiscountAmount:  pgNumericFromPtr(in.MaxDiscountAmount),
		MinimumOrderAmount: pgNumericFromPtr(in.MinimumOrderAmount),
		ValidFrom:          pgTimestamptz(in.ValidFrom),
		ValidTo:            pgTimestamptz(in.ValidTo),
		UsageLimit:         int32(in.UsageLimit),
		IsActive:           in.IsActive,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrCouponExists
		}
		return nil, domain.Internal(err, op, "failed to create coupon")
	}
	return couponFromRow(row), nil
}

// Update replaces a coupon's terms. The used count is preserved.
func (s *CouponService) Update(ctx context.Context, id uuid.UUID, in domain.CouponInput) (*domain.Coupon, error) {
	const op = "coupon.update"

	in.Code = domain.NormalizeCouponCode(in.Code)
	if err := pricing.ValidateCouponInput(op, in); err != nil {
		return nil, err
	}

	row, err := s.repo.UpdateCoupon(ctx, repository.UpdateCouponParams{
		ID:                 pgUUID(id),
		Code:               in.Code,
		Description:        in.Description,
		DiscountPercentage: pgNumeric(in.DiscountPercentage),
		MaxDiscountAmount:  pgNumericFromPtr(in.MaxDiscountAmount),
		MinimumOrderAmount: pgNumericFromPtr(in.MinimumOrderAmount),
		ValidFrom:          pgTimestamptz(in.ValidFrom),
		ValidTo:            pgTimestamptz(in.ValidTo),
		UsageLimit:         int32(in.UsageLimit),
		IsActive:           in.IsActive,
	})
	if err != nil {
		switch {
		case isNoRows(err):
			return nil, domain.ErrCouponNotFound
		case isUniqueViolation(err):
			return nil, domain.ErrCouponExists
		}
		return nil, domain.Internal(err, op, "failed to update coupon")
	}
	return couponFromRow(row), nil
}

// Delete removes a coupon. Orders keep the code they were placed with.
func (s *CouponService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.DeleteCoupon(ctx, pgUUID(id))
	if err != nil {
		return domain.Internal(err, "coupon.delete", "failed to delete coupon")
	}
	if n == 0 {
		return domain.ErrCouponNotFound
	}
	return nil
}

// Preview evaluates a code against an order amount without redeeming it.
func (s *CouponService) Preview(ctx context.Context, code string, amount decimal.Decimal) (*domain.CouponPreview, error) {
	const op = "coupon.preview"

	if amount.IsNegative() {
		return nil, domain.NewValidationError(op, "amount", "must not be negative")
	}

	code = domain.NormalizeCouponCode(code)
	coupon, err := lookupCoupon(ctx, s.repo, code, op)
	if err != nil {
		return nil, err
	}

	res := pricing.Calculate([]pricing.Line{{Quantity: 1, UnitPrice: amount}}, coupon, s.now())
	return &domain.CouponPreview{
		Code:           code,
		Valid:          res.Applied,
		Reason:         string(res.Rejection),
		DiscountAmount: res.Discount,
		Total:          res.Total,
	}, nil
}

func couponFromRow(row repository.Coupon) *domain.Coupon {
	return &domain.Coupon{
		ID:                 fromPgUUID(row.ID),
		Code:               row.Code,
		Description:        row.Description,
		DiscountPercentage: fromPgNumeric(row.DiscountPercentage),
		MaxDiscountAmount:  fromPgNumericPtr(row.MaxDiscountAmount),
		MinimumOrderAmount: fromPgNumericPtr(row.MinimumOrderAmount),
		ValidFrom:          row.ValidFrom.Time,
		ValidTo:            row.ValidTo.Time,
		UsageLimit:         int(row.UsageLimit),
		UsedCount:          int(row.UsedCount),
		IsActive:           row.IsActive,
		CreatedAt:          row.CreatedAt.Time,
		UpdatedAt:          row.UpdatedAt.Time,
	}
}
