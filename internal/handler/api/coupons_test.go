package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techtrend/emporium/internal/domain"
)

// =============================================================================
// MOCK COUPON SERVICE
// =============================================================================

type mockCouponService struct {
	domain.CouponService
	PreviewFunc func(ctx context.Context, code string, amount decimal.Decimal) (*domain.CouponPreview, error)
	CreateFunc  func(ctx context.Context, in domain.CouponInput) (*domain.Coupon, error)
}

func (m *mockCouponService) Preview(ctx context.Context, code string, amount decimal.Decimal) (*domain.CouponPreview, error) {
	if m.PreviewFunc != nil {
		return m.PreviewFunc(ctx, code, amount)
	}
	return nil, errNotMocked
}

func (m *mockCouponService) Create(ctx context.Context, in domain.CouponInput) (*domain.Coupon, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, in)
	}
	return nil, errNotMocked
}

func validateRequest(code, query string) *http.Request {
	req := newRequest(http.MethodGet, "/api/coupons/"+code+"/validate"+query, "", principal(domain.RoleShopper))
	req.SetPathValue("code", code)
	return req
}

func TestCouponHandler_Validate(t *testing.T) {
	t.Run("applies", func(t *testing.T) {
		var gotAmount decimal.Decimal
		coupons := &mockCouponService{
			PreviewFunc: func(ctx context.Context, code string, amount decimal.Decimal) (*domain.CouponPreview, error) {
				gotAmount = amount
				return &domain.CouponPreview{Code: "SAVE15", Valid: true, DiscountAmount: dec("45"), Total: dec("255")}, nil
			},
		}
		h := NewCouponHandler(coupons, nil)

		rec := httptest.NewRecorder()
		h.Validate(rec, validateRequest("save15", "?amount=300"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, dec("300").Equal(gotAmount))
		assert.JSONEq(t, `{"code":"SAVE15","valid":true,"discountAmount":45.00,"total":255.00}`, rec.Body.String())
	})

	t.Run("rejected with reason", func(t *testing.T) {
		coupons := &mockCouponService{
			PreviewFunc: func(ctx context.Context, code string, amount decimal.Decimal) (*domain.CouponPreview, error) {
				return &domain.CouponPreview{Code: "SAVE15", Reason: "Order total is below the coupon minimum", Total: amount}, nil
			},
		}
		h := NewCouponHandler(coupons, nil)

		rec := httptest.NewRecorder()
		h.Validate(rec, validateRequest("SAVE15", "?amount=50"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"valid":false`)
		assert.Contains(t, rec.Body.String(), `"reason":"Order total is below the coupon minimum"`)
	})

	t.Run("missing amount previews against zero", func(t *testing.T) {
		var gotAmount decimal.Decimal
		coupons := &mockCouponService{
			PreviewFunc: func(ctx context.Context, code string, amount decimal.Decimal) (*domain.CouponPreview, error) {
				gotAmount = amount
				return &domain.CouponPreview{Code: code}, nil
			},
		}
		h := NewCouponHandler(coupons, nil)

		rec := httptest.NewRecorder()
		h.Validate(rec, validateRequest("WELCOME10", ""))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, gotAmount.IsZero())
	})

	t.Run("bad amount", func(t *testing.T) {
		h := NewCouponHandler(&mockCouponService{}, nil)

		rec := httptest.NewRecorder()
		h.Validate(rec, validateRequest("SAVE15", "?amount=lots"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, errorFields(t, rec), "amount")
	})

	t.Run("unknown code", func(t *testing.T) {
		coupons := &mockCouponService{
			PreviewFunc: func(ctx context.Context, code string, amount decimal.Decimal) (*domain.CouponPreview, error) {
				return nil, domain.ErrCouponNotFound
			},
		}
		h := NewCouponHandler(coupons, nil)

		rec := httptest.NewRecorder()
		h.Validate(rec, validateRequest("NOPE", "?amount=10"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCouponHandler_Create_DefaultsActive(t *testing.T) {
	var got domain.CouponInput
	coupons := &mockCouponService{
		CreateFunc: func(ctx context.Context, in domain.CouponInput) (*domain.Coupon, error) {
			got = in
			return &domain.Coupon{ID: uuid.New(), Code: "SPRING20", DiscountPercentage: in.DiscountPercentage, IsActive: in.IsActive}, nil
		},
	}
	h := NewCouponHandler(coupons, nil)

	body := `{"code":"spring20","discountPercentage":20,"validFrom":"2026-03-01T00:00:00Z","validTo":"2026-06-01T00:00:00Z"}`
	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(http.MethodPost, "/api/coupons", body, principal(domain.RoleEmployee)))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, got.IsActive)
	assert.True(t, dec("20").Equal(got.DiscountPercentage))
	assert.Equal(t, "spring20", got.Code)
}

func TestCouponHandler_Create_RejectsUsageLimitPastInt32(t *testing.T) {
	coupons := &mockCouponService{
		CreateFunc: func(ctx context.Context, in domain.CouponInput) (*domain.Coupon, error) {
			t.Fatal("service must not be reached")
			return nil, nil
		},
	}
	h := NewCouponHandler(coupons, nil)

	body := `{"code":"spring20","discountPercentage":20,"usageLimit":4294967297,"validFrom":"2026-03-01T00:00:00Z","validTo":"2026-06-01T00:00:00Z"}`
	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(http.MethodPost, "/api/coupons", body, principal(domain.RoleEmployee)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorFields(t, rec), "usageLimit")
}
