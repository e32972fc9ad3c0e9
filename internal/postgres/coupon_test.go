package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/repository"
)

func newTestCouponService(store *fakeStore) *CouponService {
	svc := NewCouponService(store)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func validCouponInput() domain.CouponInput {
	return domain.CouponInput{
		Code:               "welcome10",
		Description:        "10% off your first order",
		DiscountPercentage: decimal.NewFromInt(10),
		MaxDiscountAmount:  dptr("50"),
		MinimumOrderAmount: dptr("100"),
		ValidFrom:          fixedNow.Add(-time.Hour),
		ValidTo:            fixedNow.Add(30 * 24 * time.Hour),
		UsageLimit:         100,
		IsActive:           true,
	}
}

func TestCouponService_Create(t *testing.T) {
	store := newFakeStore()
	svc := newTestCouponService(store)

	created, err := svc.Create(context.Background(), validCouponInput())
	require.NoError(t, err)

	assert.Equal(t, "WELCOME10", created.Code)
	assert.Equal(t, "10", created.DiscountPercentage.String())
	require.NotNil(t, created.MaxDiscountAmount)
	assert.Equal(t, "50", created.MaxDiscountAmount.String())
	assert.Equal(t, 0, created.UsedCount)
}

func TestCouponService_Create_RejectsPercentageOver100(t *testing.T) {
	store := newFakeStore()
	called := false
	store.CreateCouponFunc = func(ctx context.Context, arg repository.CreateCouponParams) (repository.Coupon, error) {
		called = true
		return repository.Coupon{}, nil
	}

	in := validCouponInput()
	in.DiscountPercentage = decimal.NewFromInt(150)

	_, err := newTestCouponService(store).Create(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Contains(t, domain.GetValidationFields(err), "discountPercentage")
	assert.False(t, called)
}

func TestCouponService_Create_RejectsUsageLimitPastInt32(t *testing.T) {
	store := newFakeStore()
	var stored []repository.CreateCouponParams
	store.CreateCouponFunc = func(ctx context.Context, arg repository.CreateCouponParams) (repository.Coupon, error) {
		stored = append(stored, arg)
		return repository.Coupon{}, nil
	}

	in := validCouponInput()
	in.UsageLimit = 4294967297

	_, err := newTestCouponService(store).Create(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Contains(t, domain.GetValidationFields(err), "usageLimit")
	assert.Empty(t, stored)
}

func TestCouponService_Create_DuplicateCode(t *testing.T) {
	store := newFakeStore()
	store.CreateCouponFunc = func(ctx context.Context, arg repository.CreateCouponParams) (repository.Coupon, error) {
		return repository.Coupon{}, &pgconn.PgError{Code: pgUniqueViolation}
	}

	_, err := newTestCouponService(store).Create(context.Background(), validCouponInput())
	assert.ErrorIs(t, err, domain.ErrCouponExists)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
}

func TestCouponService_Preview(t *testing.T) {
	store := newFakeStore()
	c := store.addCoupon("WELCOME10", "10", dptr("50"), dptr("100"), fixedNow.Add(-time.Hour), fixedNow.Add(time.Hour), 100, 0)
	svc := newTestCouponService(store)
	ctx := context.Background()

	preview, err := svc.Preview(ctx, "Welcome10", decimal.RequireFromString("1000"))
	require.NoError(t, err)
	assert.True(t, preview.Valid)
	assert.Equal(t, "WELCOME10", preview.Code)
	assert.Equal(t, "50.00", preview.DiscountAmount.StringFixed(2))
	assert.Equal(t, "950.00", preview.Total.StringFixed(2))

	preview, err = svc.Preview(ctx, "WELCOME10", decimal.RequireFromString("99.99"))
	require.NoError(t, err)
	assert.False(t, preview.Valid)
	assert.Equal(t, "below_minimum_order", preview.Reason)
	assert.True(t, preview.DiscountAmount.IsZero())

	preview, err = svc.Preview(ctx, "MISSING", decimal.RequireFromString("10"))
	require.NoError(t, err)
	assert.False(t, preview.Valid)
	assert.Equal(t, "not_found", preview.Reason)

	_, err = svc.Preview(ctx, "WELCOME10", decimal.RequireFromString("-1"))
	assert.True(t, domain.IsValidationError(err))

	assert.Equal(t, int32(0), c.UsedCount)
}
