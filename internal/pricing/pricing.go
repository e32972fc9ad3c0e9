// Package pricing computes cart totals and decides whether a coupon applies.
// Everything here is pure: callers supply the lines, the coupon and the clock.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/techtrend/emporium/internal/domain"
)

// MoneyPlaces is the number of fractional digits stored for money.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Line is one priced cart or order line.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Rejection explains why a coupon gave no discount.
type Rejection string

const (
	RejectNone         Rejection = ""
	RejectNotFound     Rejection = "not_found"
	RejectInactive     Rejection = "inactive"
	RejectNotStarted   Rejection = "not_yet_valid"
	RejectExpired      Rejection = "expired"
	RejectExhausted    Rejection = "usage_limit_reached"
	RejectBelowMinimum Rejection = "below_minimum_order"
)

// Result is a priced cart.
type Result struct {
	SubTotal  decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	Applied   bool
	Rejection Rejection
}

// Subtotal sums quantity times unit price over all lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum.Round(MoneyPlaces)
}

// CheckCoupon returns RejectNone when c may discount an order of subTotal at now.
// The validity window is inclusive at both ends.
func CheckCoupon(c *domain.Coupon, subTotal decimal.Decimal, now time.Time) Rejection {
	switch {
	case c == nil:
		return RejectNotFound
	case !c.IsActive:
		return RejectInactive
	case now.Before(c.ValidFrom):
		return RejectNotStarted
	case now.After(c.ValidTo):
		return RejectExpired
	case c.UsedCount >= c.UsageLimit:
		return RejectExhausted
	case c.MinimumOrderAmount != nil && subTotal.LessThan(*c.MinimumOrderAmount):
		return RejectBelowMinimum
	}
	return RejectNone
}

// Discount is subTotal times the coupon percentage, rounded to cents and
// capped by the coupon maximum and by subTotal itself.
func Discount(c *domain.Coupon, subTotal decimal.Decimal) decimal.Decimal {
	d := subTotal.Mul(c.DiscountPercentage).Div(hundred).Round(MoneyPlaces)
	if c.MaxDiscountAmount != nil && d.GreaterThan(*c.MaxDiscountAmount) {
		d = *c.MaxDiscountAmount
	}
	if d.GreaterThan(subTotal) {
		d = subTotal
	}
	if d.IsNegative() {
		d = decimal.Zero
	}
	return d
}

// Calculate prices lines with an optional coupon. An absent or invalid coupon
// yields a zero discount and the rejection reason, never an error.
func Calculate(lines []Line, coupon *domain.Coupon, now time.Time) Result {
	sub := Subtotal(lines)
	res := Result{
		SubTotal: sub,
		Discount: decimal.Zero,
		Total:    sub,
	}

	if reason := CheckCoupon(coupon, sub, now); reason != RejectNone {
		res.Rejection = reason
		return res
	}

	res.Discount = Discount(coupon, sub)
	res.Total = sub.Sub(res.Discount)
	res.Applied = true
	return res
}
