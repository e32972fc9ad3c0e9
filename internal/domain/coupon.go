package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coupon is a percentage discount with an optional cap and minimum order.
type Coupon struct {
	ID                 uuid.UUID
	Code               string
	Description        string
	DiscountPercentage decimal.Decimal
	MaxDiscountAmount  *decimal.Decimal
	MinimumOrderAmount *decimal.Decimal
	ValidFrom          time.Time
	ValidTo            time.Time
	UsageLimit         int
	UsedCount          int
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NormalizeCouponCode trims and upper-cases a code. Codes are case-insensitive.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponInput carries staff edits to a coupon.
type CouponInput struct {
	Code               string
	Description        string
	DiscountPercentage decimal.Decimal
	MaxDiscountAmount  *decimal.Decimal
	MinimumOrderAmount *decimal.Decimal
	ValidFrom          time.Time
	ValidTo            time.Time
	UsageLimit         int
	IsActive           bool
}

// CouponPreview reports whether a coupon would apply to an order amount.
type CouponPreview struct {
	Code           string
	Valid          bool
	Reason         string
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

var (
	ErrCouponNotFound = &Error{Code: ENOTFOUND, Message: "Coupon not found"}
	ErrCouponExists   = &Error{Code: ECONFLICT, Message: "A coupon with this code already exists"}
)

// CouponService manages coupons. Redemption happens only inside order placement.
type CouponService interface {
	List(ctx context.Context) ([]Coupon, error)
	Get(ctx context.Context, id uuid.UUID) (*Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	Create(ctx context.Context, in CouponInput) (*Coupon, error)
	Update(ctx context.Context, id uuid.UUID, in CouponInput) (*Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Preview evaluates a code against an order amount without redeeming it.
	Preview(ctx context.Context, code string, amount decimal.Decimal) (*CouponPreview, error)
}
