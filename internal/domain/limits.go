package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Quantities (stock, usage limits, page offsets) are stored as INTEGER
// and money as NUMERIC(18,2).
const (
	MaxQuantity           = math.MaxInt32
	MaxMoneyIntegerDigits = 16
)

var moneyCeiling = decimal.New(1, MaxMoneyIntegerDigits)

// MoneyInRange reports whether d, rounded to cents, fits NUMERIC(18,2).
func MoneyInRange(d decimal.Decimal) bool {
	return d.Round(2).Abs().LessThan(moneyCeiling)
}

// MaxPage is the last page whose row offset still fits in an INTEGER.
func MaxPage(pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	return MaxQuantity/pageSize + 1
}
