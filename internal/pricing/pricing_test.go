package pricing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/pricing"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func coupon(code, pct string, max, min *decimal.Decimal) *domain.Coupon {
	return &domain.Coupon{
		Code:               code,
		DiscountPercentage: dec(pct),
		MaxDiscountAmount:  max,
		MinimumOrderAmount: min,
		ValidFrom:          now.Add(-24 * time.Hour),
		ValidTo:            now.Add(24 * time.Hour),
		UsageLimit:         100,
		IsActive:           true,
	}
}

func TestSubtotal_ExactDecimal(t *testing.T) {
	lines := []pricing.Line{
		{Quantity: 2, UnitPrice: dec("100.00")},
		{Quantity: 1, UnitPrice: dec("200.00")},
	}
	assert.Equal(t, "400.00", pricing.Subtotal(lines).StringFixed(2))

	// 3 x 0.10 must not drift the way float64 does
	drift := []pricing.Line{{Quantity: 3, UnitPrice: dec("0.10")}}
	assert.True(t, pricing.Subtotal(drift).Equal(dec("0.30")))
}

func TestCalculate_CouponScenarios(t *testing.T) {
	tests := []struct {
		name          string
		lines         []pricing.Line
		coupon        *domain.Coupon
		wantSub       string
		wantDiscount  string
		wantTotal     string
		wantApplied   bool
		wantRejection pricing.Rejection
	}{
		{
			name:         "WELCOME10 below its cap",
			lines:        []pricing.Line{{Quantity: 2, UnitPrice: dec("100.00")}, {Quantity: 1, UnitPrice: dec("200.00")}},
			coupon:       coupon("WELCOME10", "10", decPtr("50"), decPtr("100")),
			wantSub:      "400.00",
			wantDiscount: "40.00",
			wantTotal:    "360.00",
			wantApplied:  true,
		},
		{
			name:          "SAVE15 under minimum order",
			lines:         []pricing.Line{{Quantity: 1, UnitPrice: dec("150.00")}},
			coupon:        coupon("SAVE15", "15", decPtr("100"), decPtr("200")),
			wantSub:       "150.00",
			wantDiscount:  "0.00",
			wantTotal:     "150.00",
			wantRejection: pricing.RejectBelowMinimum,
		},
		{
			name:         "cap applies",
			lines:        []pricing.Line{{Quantity: 1, UnitPrice: dec("1000.00")}},
			coupon:       coupon("BIG20", "20", decPtr("10"), nil),
			wantSub:      "1000.00",
			wantDiscount: "10.00",
			wantTotal:    "990.00",
			wantApplied:  true,
		},
		{
			name:         "minimum order met exactly",
			lines:        []pricing.Line{{Quantity: 2, UnitPrice: dec("100.00")}},
			coupon:       coupon("SAVE15", "15", decPtr("100"), decPtr("200")),
			wantSub:      "200.00",
			wantDiscount: "30.00",
			wantTotal:    "170.00",
			wantApplied:  true,
		},
		{
			name:         "hundred percent without cap",
			lines:        []pricing.Line{{Quantity: 1, UnitPrice: dec("12.34")}},
			coupon:       coupon("FREE", "100", nil, nil),
			wantSub:      "12.34",
			wantDiscount: "12.34",
			wantTotal:    "0.00",
			wantApplied:  true,
		},
		{
			name:         "discount rounds to cents",
			lines:        []pricing.Line{{Quantity: 1, UnitPrice: dec("33.33")}},
			coupon:       coupon("SAVE15", "15", nil, nil),
			wantSub:      "33.33",
			wantDiscount: "5.00",
			wantTotal:    "28.33",
			wantApplied:  true,
		},
		{
			name:          "no coupon",
			lines:         []pricing.Line{{Quantity: 1, UnitPrice: dec("10.00")}},
			wantSub:       "10.00",
			wantDiscount:  "0.00",
			wantTotal:     "10.00",
			wantRejection: pricing.RejectNotFound,
		},
		{
			name:          "empty cart",
			coupon:        coupon("WELCOME10", "10", decPtr("50"), nil),
			wantSub:       "0.00",
			wantDiscount:  "0.00",
			wantTotal:     "0.00",
			wantApplied:   true,
			wantRejection: pricing.RejectNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := pricing.Calculate(tt.lines, tt.coupon, now)

			assert.Equal(t, tt.wantSub, res.SubTotal.StringFixed(2))
			assert.Equal(t, tt.wantDiscount, res.Discount.StringFixed(2))
			assert.Equal(t, tt.wantTotal, res.Total.StringFixed(2))
			assert.Equal(t, tt.wantApplied, res.Applied)
			assert.Equal(t, tt.wantRejection, res.Rejection)
			assert.False(t, res.Total.IsNegative())
		})
	}
}

func TestCheckCoupon_Rejections(t *testing.T) {
	sub := dec("500.00")

	tests := []struct {
		name   string
		mutate func(c *domain.Coupon)
		at     time.Time
		want   pricing.Rejection
	}{
		{"valid", func(c *domain.Coupon) {}, now, pricing.RejectNone},
		{"inactive", func(c *domain.Coupon) { c.IsActive = false }, now, pricing.RejectInactive},
		{"expired", func(c *domain.Coupon) { c.ValidTo = now.Add(-time.Second) }, now, pricing.RejectExpired},
		{"not started", func(c *domain.Coupon) { c.ValidFrom = now.Add(time.Hour) }, now, pricing.RejectNotStarted},
		{"exhausted", func(c *domain.Coupon) { c.UsedCount = c.UsageLimit }, now, pricing.RejectExhausted},
		{"over used", func(c *domain.Coupon) { c.UsedCount = c.UsageLimit + 1 }, now, pricing.RejectExhausted},
		{"window start inclusive", func(c *domain.Coupon) { c.ValidFrom = now }, now, pricing.RejectNone},
		{"window end inclusive", func(c *domain.Coupon) { c.ValidTo = now }, now, pricing.RejectNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := coupon("TEST", "50", nil, nil)
			tt.mutate(c)
			assert.Equal(t, tt.want, pricing.CheckCoupon(c, sub, tt.at))
		})
	}
}

func TestCalculate_InvalidCouponNeverDiscounts(t *testing.T) {
	lines := []pricing.Line{{Quantity: 4, UnitPrice: dec("250.00")}}

	expired := coupon("OLD", "90", nil, nil)
	expired.ValidTo = now.Add(-time.Hour)

	exhausted := coupon("GONE", "90", nil, nil)
	exhausted.UsedCount = exhausted.UsageLimit

	for _, c := range []*domain.Coupon{expired, exhausted} {
		res := pricing.Calculate(lines, c, now)
		assert.True(t, res.Discount.IsZero(), c.Code)
		assert.True(t, res.Total.Equal(dec("1000.00")), c.Code)
		assert.False(t, res.Applied, c.Code)
	}
}

func TestCalculate_DoesNotMutateCoupon(t *testing.T) {
	c := coupon("WELCOME10", "10", decPtr("50"), decPtr("100"))
	lines := []pricing.Line{{Quantity: 1, UnitPrice: dec("400.00")}}

	for i := 0; i < 3; i++ {
		res := pricing.Calculate(lines, c, now)
		require.True(t, res.Applied)
	}
	assert.Equal(t, 0, c.UsedCount)
}

func TestValidateCouponInput(t *testing.T) {
	valid := domain.CouponInput{
		Code:               "WELCOME10",
		DiscountPercentage: dec("10"),
		MaxDiscountAmount:  decPtr("50"),
		MinimumOrderAmount: decPtr("100"),
		ValidFrom:          now,
		ValidTo:            now.Add(30 * 24 * time.Hour),
		UsageLimit:         100,
		IsActive:           true,
	}
	require.NoError(t, pricing.ValidateCouponInput("coupon.create", valid))

	tests := []struct {
		name   string
		mutate func(in *domain.CouponInput)
		field  string
	}{
		{"percentage above 100", func(in *domain.CouponInput) { in.DiscountPercentage = dec("100.01") }, "discountPercentage"},
		{"zero percentage", func(in *domain.CouponInput) { in.DiscountPercentage = decimal.Zero }, "discountPercentage"},
		{"negative cap", func(in *domain.CouponInput) { in.MaxDiscountAmount = decPtr("-1") }, "maxDiscountAmount"},
		{"negative minimum", func(in *domain.CouponInput) { in.MinimumOrderAmount = decPtr("-5") }, "minimumOrderAmount"},
		{"window reversed", func(in *domain.CouponInput) { in.ValidTo = in.ValidFrom.Add(-time.Hour) }, "validTo"},
		{"zero usage limit", func(in *domain.CouponInput) { in.UsageLimit = 0 }, "usageLimit"},
		{"usage limit past int32", func(in *domain.CouponInput) { in.UsageLimit = 4294967297 }, "usageLimit"},
		{"cap with 17 integer digits", func(in *domain.CouponInput) { in.MaxDiscountAmount = decPtr("10000000000000000") }, "maxDiscountAmount"},
		{"minimum with 17 integer digits", func(in *domain.CouponInput) { in.MinimumOrderAmount = decPtr("10000000000000000") }, "minimumOrderAmount"},
		{"blank code", func(in *domain.CouponInput) { in.Code = "  " }, "code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)

			err := pricing.ValidateCouponInput("coupon.create", in)
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err))
			assert.Contains(t, domain.GetValidationFields(err), tt.field)
			assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
		})
	}
}
