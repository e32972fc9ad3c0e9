package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CART DOMAIN ERRORS
// =============================================================================

var (
	ErrCartItemNotFound  = &Error{Code: ENOTFOUND, Message: "Item is not in the cart"}
	ErrInvalidQuantity   = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
	ErrProductInactive   = &Error{Code: EINVALID, Message: "Product is not available"}
	ErrInsufficientStock = &Error{Code: EINVALID, Message: "Insufficient stock for requested quantity"}
)

// CartService mutates and prices the caller's active cart.
// Every method takes the owning user explicitly; the active cart is created
// lazily on first access.
type CartService interface {
	// GetCart returns the active cart with its items, creating an empty one if needed.
	GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// AddItem adds quantity units of a product. Re-adding an existing product
	// increments its quantity and refreshes the unit price snapshot.
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Cart, error)

	// UpdateItem sets the quantity of a line. Zero or less removes it.
	// The unit price snapshot is left unchanged.
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Cart, error)

	// RemoveItem deletes a line. Returns ErrCartItemNotFound if absent.
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*Cart, error)

	// ClearCart removes every line in one operation.
	ClearCart(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// CalculateTotal prices the cart with an optional coupon code.
	// It never changes coupon usage and never fails because of the coupon.
	CalculateTotal(ctx context.Context, userID uuid.UUID, couponCode string) (*CartTotal, error)
}

// Cart is a user's active cart and its lines.
type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	IsActive  bool
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem is a cart line with the unit price captured when it was added.
type CartItem struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	ProductTitle  string
	ImageURL      string
	Quantity      int
	UnitPrice     decimal.Decimal
	StockQuantity int
	AddedAt       time.Time
}

// LineTotal is quantity times the unit price snapshot.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemCount is the number of units across all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// CartTotal is the priced result of a cart total preview.
type CartTotal struct {
	SubTotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	CouponCode     string
	CouponApplied  bool
	// CouponRejection explains why a supplied coupon gave no discount.
	CouponRejection string
}
