package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus tracks fulfilment of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// orderTransitions lists the statuses reachable from each status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// ParseOrderStatus matches a status name case-insensitively.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled} {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a placed order with its priced lines.
type Order struct {
	ID              uuid.UUID
	OrderNumber     string
	UserID          uuid.UUID
	Status          OrderStatus
	SubTotal        decimal.Decimal
	DiscountAmount  decimal.Decimal
	Total           decimal.Decimal
	CouponCode      *string
	ShippingAddress string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is an order line with its price frozen at placement.
type OrderItem struct {
	ID           uuid.UUID
	ProductID    uuid.UUID
	ProductTitle string
	Quantity     int
	UnitPrice    decimal.Decimal
	LineTotal    decimal.Decimal
}

// PlaceOrderInput is the checkout request for the caller's active cart.
type PlaceOrderInput struct {
	ShippingAddress string
	CouponCode      string
}

var (
	ErrOrderNotFound          = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrEmptyCart              = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrInvalidOrderTransition = &Error{Code: EINVALID, Message: "Order cannot move to the requested status"}
)

// OrderService places and tracks orders.
type OrderService interface {
	// Place converts the active cart into an order. A valid coupon is redeemed
	// atomically; the cart is retired and the next access starts a new one.
	Place(ctx context.Context, userID uuid.UUID, in PlaceOrderInput) (*Order, error)

	ListForUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) (*Order, error)
}
