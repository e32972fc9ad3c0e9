package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/pricing"
	"github.com/techtrend/emporium/internal/repository"
)

// OrderService implements domain.OrderService using PostgreSQL.
type OrderService struct {
	store repository.Store
	now   func() time.Time
}

// Compile-time check that OrderService implements domain.OrderService.
var _ domain.OrderService = (*OrderService)(nil)

// NewOrderService creates a new PostgreSQL-backed order service.
func NewOrderService(store repository.Store) *OrderService {
	return &OrderService{
		store: store,
		now:   time.Now,
	}
}

// Place converts the caller's active cart into a Pending order in one
// transaction. Stock is decremented conditionally and a valid coupon is
// redeemed with a guarded increment; if the coupon was used up concurrently
// the order is placed at full price.
func (s *OrderService) Place(ctx context.Context, userID uuid.UUID, in domain.PlaceOrderInput) (*domain.Order, error) {
	const op = "order.place"

	address := strings.TrimSpace(in.ShippingAddress)
	if address == "" {
		return nil, domain.NewValidationError(op, "shippingAddress", "shipping address is required")
	}

	var placed *domain.Order
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, err := lockedCart(ctx, q, userID, op)
		if err != nil {
			return err
		}

		rows, err := q.GetCartItems(ctx, cart.ID)
		if err != nil {
			return domain.Internal(err, op, "failed to load cart items")
		}
		if len(rows) == 0 {
			return domain.ErrEmptyCart
		}

		lines := make([]pricing.Line, len(rows))
		for i, row := range rows {
			if !row.ProductActive {
				return domain.ErrProductInactive
			}
			lines[i] = pricing.Line{Quantity: int(row.Quantity), UnitPrice: fromPgNumeric(row.UnitPrice)}
		}

		now := s.now()
		coupon, err := lookupCoupon(ctx, q, domain.NormalizeCouponCode(in.CouponCode), op)
		if err != nil {
			return err
		}

		res := pricing.Calculate(lines, coupon, now)
		if res.Applied {
			n, err := q.RedeemCoupon(ctx, pgUUID(coupon.ID))
			if err != nil {
				return domain.Internal(err, op, "failed to redeem coupon")
			}
			if n == 0 {
				res = pricing.Calculate(lines, nil, now)
			}
		}

		for _, row := range rows {
			n, err := q.DecrementProductStock(ctx, repository.DecrementProductStockParams{
				ID:       row.ProductID,
				Quantity: row.Quantity,
			})
			if err != nil {
				return domain.Internal(err, op, "failed to reserve stock")
			}
			if n == 0 {
				return domain.ErrInsufficientStock
			}
		}

		number, err := generateOrderNumber(now)
		if err != nil {
			return domain.Internal(err, op, "failed to generate order number")
		}

		var couponCode string
		if res.Applied {
			couponCode = coupon.Code
		}

		order, err := q.CreateOrder(ctx, repository.CreateOrderParams{
			OrderNumber:     number,
			UserID:          pgUUID(userID),
			Status:          string(domain.OrderStatusPending),
			Subtotal:        pgNumeric(res.SubTotal),
			DiscountAmount:  pgNumeric(res.Discount),
			Total:           pgNumeric(res.Total),
			CouponCode:      pgText(couponCode),
			ShippingAddress: address,
		})
		if err != nil {
			return domain.Internal(err, op, "failed to create order")
		}

		items := make([]repository.OrderItem, len(rows))
		for i, row := range rows {
			items[i], err = q.CreateOrderItem(ctx, repository.CreateOrderItemParams{
				OrderID:      order.ID,
				ProductID:    row.ProductID,
				ProductTitle: row.ProductTitle,
				Quantity:     row.Quantity,
				UnitPrice:    row.UnitPrice,
				LineTotal:    pgNumeric(lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(row.Quantity))).Round(pricing.MoneyPlaces)),
			})
			if err != nil {
				return domain.Internal(err, op, "failed to create order item")
			}
		}

		if err := q.DeactivateCart(ctx, cart.ID); err != nil {
			return domain.Internal(err, op, "failed to retire cart")
		}

		placed = orderFromRow(order, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// ListForUser returns the user's orders, newest first, without lines.
func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Order, error) {
	rows, err := s.store.ListOrdersByUser(ctx, pgUUID(userID))
	if err != nil {
		return nil, domain.Internal(err, "order.list_for_user", "failed to list orders")
	}
	return ordersFromRows(rows), nil
}

// ListAll returns every order, newest first, without lines.
func (s *OrderService) ListAll(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}
	return ordersFromRows(rows), nil
}

// Get returns an order with its lines.
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	row, err := s.store.GetOrderByID(ctx, pgUUID(id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get", "failed to get order")
	}

	items, err := s.store.GetOrderItems(ctx, row.ID)
	if err != nil {
		return nil, domain.Internal(err, "order.get", "failed to get order items")
	}
	return orderFromRow(row, items), nil
}

// UpdateStatus moves an order along its lifecycle. Transitions that the
// current status does not allow return ErrInvalidOrderTransition.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	const op = "order.update_status"

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, domain.ErrInvalidOrderTransition
	}

	row, err := s.store.UpdateOrderStatus(ctx, repository.UpdateOrderStatusParams{
		ID:     pgUUID(id),
		Status: string(status),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to update order status")
	}

	updated := orderFromRow(row, nil)
	updated.Items = current.Items
	return updated, nil
}

func ordersFromRows(rows []repository.Order) []domain.Order {
	orders := make([]domain.Order, len(rows))
	for i, row := range rows {
		orders[i] = *orderFromRow(row, nil)
	}
	return orders
}

func orderFromRow(row repository.Order, items []repository.OrderItem) *domain.Order {
	order := &domain.Order{
		ID:              fromPgUUID(row.ID),
		OrderNumber:     row.OrderNumber,
		UserID:          fromPgUUID(row.UserID),
		Status:          domain.OrderStatus(row.Status),
		SubTotal:        fromPgNumeric(row.Subtotal),
		DiscountAmount:  fromPgNumeric(row.DiscountAmount),
		Total:           fromPgNumeric(row.Total),
		CouponCode:      textPtr(row.CouponCode),
		ShippingAddress: row.ShippingAddress,
		CreatedAt:       row.CreatedAt.Time,
		UpdatedAt:       row.UpdatedAt.Time,
	}

	if items != nil {
		order.Items = make([]domain.OrderItem, len(items))
		for i, item := range items {
			order.Items[i] = domain.OrderItem{
				ID:           fromPgUUID(item.ID),
				ProductID:    fromPgUUID(item.ProductID),
				ProductTitle: item.ProductTitle,
				Quantity:     int(item.Quantity),
				UnitPrice:    fromPgNumeric(item.UnitPrice),
				LineTotal:    fromPgNumeric(item.LineTotal),
			}
		}
	}
	return order
}
