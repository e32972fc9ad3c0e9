package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/techtrend/emporium/internal/domain"
)

var tooManyDigits = fmt.Sprintf("must have at most %d digits before the decimal point", domain.MaxMoneyIntegerDigits)

// ValidateCouponInput checks coupon terms before they are stored. Terms that
// would let a discount exceed the order are rejected here, not at apply time.
func ValidateCouponInput(op string, in domain.CouponInput) error {
	var err error

	if strings.TrimSpace(in.Code) == "" {
		err = domain.AddFieldError(err, "code", "code is required")
	}
	if in.DiscountPercentage.LessThanOrEqual(decimal.Zero) || in.DiscountPercentage.GreaterThan(hundred) {
		err = domain.AddFieldError(err, "discountPercentage", "must be greater than 0 and at most 100")
	}
	for _, money := range []struct {
		field string
		value *decimal.Decimal
	}{
		{"maxDiscountAmount", in.MaxDiscountAmount},
		{"minimumOrderAmount", in.MinimumOrderAmount},
	} {
		switch {
		case money.value == nil:
		case money.value.IsNegative():
			err = domain.AddFieldError(err, money.field, "must not be negative")
		case !domain.MoneyInRange(*money.value):
			err = domain.AddFieldError(err, money.field, tooManyDigits)
		}
	}
	if in.ValidFrom.IsZero() || in.ValidTo.IsZero() {
		err = domain.AddFieldError(err, "validTo", "validity window is required")
	} else if in.ValidTo.Before(in.ValidFrom) {
		err = domain.AddFieldError(err, "validTo", "must not be before validFrom")
	}
	if in.UsageLimit < 1 || in.UsageLimit > domain.MaxQuantity {
		err = domain.AddFieldError(err, "usageLimit", fmt.Sprintf("must be between 1 and %d", domain.MaxQuantity))
	}

	if ve, ok := err.(*domain.ValidationError); ok {
		ve.Op = op
		return ve
	}
	return nil
}
