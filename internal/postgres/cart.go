package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/pricing"
	"github.com/techtrend/emporium/internal/repository"
)

// CartService implements domain.CartService using PostgreSQL.
// Mutations lock the cart row so concurrent requests for the same user
// apply one after another.
type CartService struct {
	store repository.Store
	now   func() time.Time
}

// Compile-time check that CartService implements domain.CartService.
var _ domain.CartService = (*CartService)(nil)

// NewCartService creates a new PostgreSQL-backed cart service.
func NewCartService(store repository.Store) *CartService {
	return &CartService{
		store: store,
		now:   time.Now,
	}
}

// GetCart returns the active cart, creating an empty one on first access.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	cart, err := activeCart(ctx, s.store, userID)
	if err != nil {
		return nil, domain.Internal(err, "cart.get", "failed to load cart")
	}
	return loadCart(ctx, s.store, cart, "cart.get")
}

// AddItem adds quantity units of a product, refreshing the unit price snapshot.
// Stock is checked against the cumulative quantity in the cart.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.Cart, error) {
	const op = "cart.add_item"

	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var result *domain.Cart
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, err := lockedCart(ctx, q, userID, op)
		if err != nil {
			return err
		}

		product, err := q.GetProductByID(ctx, pgUUID(productID))
		if err != nil {
			if isNoRows(err) {
				return domain.ErrProductNotFound
			}
			return domain.Internal(err, op, "failed to get product")
		}
		if !product.IsActive {
			return domain.ErrProductInactive
		}

		existing := 0
		item, err := q.GetCartItem(ctx, repository.GetCartItemParams{
			CartID:    cart.ID,
			ProductID: product.ID,
		})
		switch {
		case err == nil:
			existing = int(item.Quantity)
		case !isNoRows(err):
			return domain.Internal(err, op, "failed to get cart item")
		}

		if existing+quantity > int(product.StockQuantity) {
			return domain.ErrInsufficientStock
		}

		if _, err := q.UpsertCartItem(ctx, repository.UpsertCartItemParams{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  int32(quantity),
			UnitPrice: product.Price,
		}); err != nil {
			return domain.Internal(err, op, "failed to save cart item")
		}

		if err := q.TouchCart(ctx, cart.ID); err != nil {
			return domain.Internal(err, op, "failed to touch cart")
		}

		result, err = loadCart(ctx, q, cart, op)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateItem sets a line's quantity, keeping its unit price snapshot.
// A quantity of zero or less removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.Cart, error) {
	const op = "cart.update_item"

	if quantity <= 0 {
		return s.removeItem(ctx, userID, productID, op)
	}

	var result *domain.Cart
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, err := lockedCart(ctx, q, userID, op)
		if err != nil {
			return err
		}

		product, err := q.GetProductByID(ctx, pgUUID(productID))
		if err != nil {
			if isNoRows(err) {
				return domain.ErrCartItemNotFound
			}
			return domain.Internal(err, op, "failed to get product")
		}
		if quantity > int(product.StockQuantity) {
			return domain.ErrInsufficientStock
		}

		n, err := q.SetCartItemQuantity(ctx, repository.SetCartItemQuantityParams{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  int32(quantity),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to update cart item")
		}
		if n == 0 {
			return domain.ErrCartItemNotFound
		}

		if err := q.TouchCart(ctx, cart.ID); err != nil {
			return domain.Internal(err, op, "failed to touch cart")
		}

		result, err = loadCart(ctx, q, cart, op)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveItem deletes a line. Removing an absent product is ErrCartItemNotFound.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*domain.Cart, error) {
	return s.removeItem(ctx, userID, productID, "cart.remove_item")
}

func (s *CartService) removeItem(ctx context.Context, userID, productID uuid.UUID, op string) (*domain.Cart, error) {
	var result *domain.Cart
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, err := lockedCart(ctx, q, userID, op)
		if err != nil {
			return err
		}

		n, err := q.DeleteCartItem(ctx, repository.DeleteCartItemParams{
			CartID:    cart.ID,
			ProductID: pgUUID(productID),
		})
		if err != nil {
			return domain.Internal(err, op, "failed to remove cart item")
		}
		if n == 0 {
			return domain.ErrCartItemNotFound
		}

		if err := q.TouchCart(ctx, cart.ID); err != nil {
			return domain.Internal(err, op, "failed to touch cart")
		}

		result, err = loadCart(ctx, q, cart, op)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ClearCart removes every line in one statement.
func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	const op = "cart.clear"

	var result *domain.Cart
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		cart, err := lockedCart(ctx, q, userID, op)
		if err != nil {
			return err
		}

		if err := q.ClearCartItems(ctx, cart.ID); err != nil {
			return domain.Internal(err, op, "failed to clear cart")
		}
		if err := q.TouchCart(ctx, cart.ID); err != nil {
			return domain.Internal(err, op, "failed to touch cart")
		}

		result, err = loadCart(ctx, q, cart, op)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CalculateTotal prices the active cart. An unknown or invalid coupon code
// produces no discount and is reported in CouponRejection, not as an error.
// Coupon usage is never changed here.
func (s *CartService) CalculateTotal(ctx context.Context, userID uuid.UUID, couponCode string) (*domain.CartTotal, error) {
	const op = "cart.calculate_total"

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	code := domain.NormalizeCouponCode(couponCode)
	coupon, err := lookupCoupon(ctx, s.store, code, op)
	if err != nil {
		return nil, err
	}

	res := pricing.Calculate(cartLines(cart), coupon, s.now())

	total := &domain.CartTotal{
		SubTotal:       res.SubTotal,
		DiscountAmount: res.Discount,
		Total:          res.Total,
		CouponCode:     code,
		CouponApplied:  res.Applied,
	}
	if code != "" {
		total.CouponRejection = string(res.Rejection)
	}
	return total, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// activeCart returns the user's active cart, creating it if needed.
// A concurrent creator wins the partial unique index; the loser re-reads.
func activeCart(ctx context.Context, q repository.Querier, userID uuid.UUID) (repository.Cart, error) {
	cart, err := q.GetActiveCartByUser(ctx, pgUUID(userID))
	if err == nil || !isNoRows(err) {
		return cart, err
	}

	cart, err = q.CreateActiveCart(ctx, pgUUID(userID))
	if err == nil || !isNoRows(err) {
		return cart, err
	}

	return q.GetActiveCartByUser(ctx, pgUUID(userID))
}

// lockedCart returns the active cart with its row locked for the transaction.
func lockedCart(ctx context.Context, q repository.Querier, userID uuid.UUID, op string) (repository.Cart, error) {
	cart, err := activeCart(ctx, q, userID)
	if err != nil {
		return cart, domain.Internal(err, op, "failed to load cart")
	}
	if err := q.LockCart(ctx, cart.ID); err != nil {
		return cart, domain.Internal(err, op, "failed to lock cart")
	}
	return cart, nil
}

func loadCart(ctx context.Context, q repository.Querier, cart repository.Cart, op string) (*domain.Cart, error) {
	rows, err := q.GetCartItems(ctx, cart.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to load cart items")
	}

	items := make([]domain.CartItem, len(rows))
	for i, row := range rows {
		items[i] = domain.CartItem{
			ID:            fromPgUUID(row.ID),
			ProductID:     fromPgUUID(row.ProductID),
			ProductTitle:  row.ProductTitle,
			ImageURL:      row.ProductImageUrl,
			Quantity:      int(row.Quantity),
			UnitPrice:     fromPgNumeric(row.UnitPrice),
			StockQuantity: int(row.ProductStock),
			AddedAt:       row.AddedAt.Time,
		}
	}

	return &domain.Cart{
		ID:        fromPgUUID(cart.ID),
		UserID:    fromPgUUID(cart.UserID),
		IsActive:  cart.IsActive,
		Items:     items,
		CreatedAt: cart.CreatedAt.Time,
		UpdatedAt: cart.UpdatedAt.Time,
	}, nil
}

func cartLines(cart *domain.Cart) []pricing.Line {
	lines := make([]pricing.Line, len(cart.Items))
	for i, item := range cart.Items {
		lines[i] = pricing.Line{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	return lines
}

// lookupCoupon returns nil without error for a blank or unknown code.
func lookupCoupon(ctx context.Context, q repository.Querier, code, op string) (*domain.Coupon, error) {
	if code == "" {
		return nil, nil
	}
	row, err := q.GetCouponByCode(ctx, code)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, domain.Internal(err, op, "failed to look up coupon")
	}
	return couponFromRow(row), nil
}
