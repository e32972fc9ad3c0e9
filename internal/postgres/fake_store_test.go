package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/techtrend/emporium/internal/repository"
)

// fakeStore is an in-memory repository.Store covering the queries used by
// the cart, coupon and order services. Unlisted queries panic through the
// nil embedded Querier.
type fakeStore struct {
	repository.Querier

	products   map[uuid.UUID]*repository.ProductRow
	categories map[uuid.UUID]repository.Category
	carts      []*repository.Cart
	items      map[uuid.UUID][]*repository.CartItem
	coupons    map[string]*repository.Coupon
	orders     map[uuid.UUID]*repository.Order
	orderItems map[uuid.UUID][]repository.OrderItem

	touches int
	locks   int
	txCount int

	// RedeemCouponFunc overrides the guarded increment when set.
	RedeemCouponFunc func(ctx context.Context, id pgtype.UUID) (int64, error)
	CreateCouponFunc func(ctx context.Context, arg repository.CreateCouponParams) (repository.Coupon, error)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:   make(map[uuid.UUID]*repository.ProductRow),
		categories: make(map[uuid.UUID]repository.Category),
		items:      make(map[uuid.UUID][]*repository.CartItem),
		coupons:    make(map[string]*repository.Coupon),
		orders:     make(map[uuid.UUID]*repository.Order),
		orderItems: make(map[uuid.UUID][]repository.OrderItem),
	}
}

var _ repository.Store = (*fakeStore)(nil)

func (f *fakeStore) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	f.txCount++
	return fn(f)
}

// =============================================================================
// FIXTURES
// =============================================================================

func (f *fakeStore) addProduct(title, price string, stock int32, active bool) uuid.UUID {
	id := uuid.New()
	f.products[id] = &repository.ProductRow{
		Product: repository.Product{
			ID:            pgUUID(id),
			Title:         title,
			Price:         pgNumeric(decimal.RequireFromString(price)),
			IsActive:      active,
			StockQuantity: stock,
		},
		CategoryName: "electronics",
	}
	return id
}

func (f *fakeStore) setPrice(id uuid.UUID, price string) {
	f.products[id].Price = pgNumeric(decimal.RequireFromString(price))
}

func (f *fakeStore) addCoupon(code, pct string, max, min *decimal.Decimal, from, to time.Time, limit, used int32) *repository.Coupon {
	c := &repository.Coupon{
		ID:                 pgUUID(uuid.New()),
		Code:               code,
		DiscountPercentage: pgNumeric(decimal.RequireFromString(pct)),
		MaxDiscountAmount:  pgNumericFromPtr(max),
		MinimumOrderAmount: pgNumericFromPtr(min),
		ValidFrom:          pgTimestamptz(from),
		ValidTo:            pgTimestamptz(to),
		UsageLimit:         limit,
		UsedCount:          used,
		IsActive:           true,
	}
	f.coupons[code] = c
	return c
}

func (f *fakeStore) activeCartFor(userID uuid.UUID) *repository.Cart {
	for _, c := range f.carts {
		if c.IsActive && fromPgUUID(c.UserID) == userID {
			return c
		}
	}
	return nil
}

// =============================================================================
// CARTS
// =============================================================================

func (f *fakeStore) GetActiveCartByUser(ctx context.Context, userID pgtype.UUID) (repository.Cart, error) {
	if c := f.activeCartFor(fromPgUUID(userID)); c != nil {
		return *c, nil
	}
	return repository.Cart{}, pgx.ErrNoRows
}

func (f *fakeStore) CreateActiveCart(ctx context.Context, userID pgtype.UUID) (repository.Cart, error) {
	if f.activeCartFor(fromPgUUID(userID)) != nil {
		return repository.Cart{}, pgx.ErrNoRows
	}
	now := time.Now()
	c := &repository.Cart{
		ID:        pgUUID(uuid.New()),
		UserID:    userID,
		IsActive:  true,
		CreatedAt: pgTimestamptz(now),
		UpdatedAt: pgTimestamptz(now),
	}
	f.carts = append(f.carts, c)
	return *c, nil
}

func (f *fakeStore) LockCart(ctx context.Context, id pgtype.UUID) error {
	f.locks++
	return nil
}

func (f *fakeStore) TouchCart(ctx context.Context, id pgtype.UUID) error {
	f.touches++
	for _, c := range f.carts {
		if c.ID == id {
			c.UpdatedAt = pgTimestamptz(time.Now())
		}
	}
	return nil
}

func (f *fakeStore) DeactivateCart(ctx context.Context, id pgtype.UUID) error {
	for _, c := range f.carts {
		if c.ID == id {
			c.IsActive = false
		}
	}
	return nil
}

func (f *fakeStore) GetCartItems(ctx context.Context, cartID pgtype.UUID) ([]repository.GetCartItemsRow, error) {
	var rows []repository.GetCartItemsRow
	for _, item := range f.items[fromPgUUID(cartID)] {
		p := f.products[fromPgUUID(item.ProductID)]
		rows = append(rows, repository.GetCartItemsRow{
			CartItem:      *item,
			ProductTitle:  p.Title,
			ProductStock:  p.StockQuantity,
			ProductActive: p.IsActive,
		})
	}
	return rows, nil
}

func (f *fakeStore) findItem(cartID, productID pgtype.UUID) (int, *repository.CartItem) {
	for i, item := range f.items[fromPgUUID(cartID)] {
		if item.ProductID == productID {
			return i, item
		}
	}
	return -1, nil
}

func (f *fakeStore) GetCartItem(ctx context.Context, arg repository.GetCartItemParams) (repository.CartItem, error) {
	if _, item := f.findItem(arg.CartID, arg.ProductID); item != nil {
		return *item, nil
	}
	return repository.CartItem{}, pgx.ErrNoRows
}

func (f *fakeStore) UpsertCartItem(ctx context.Context, arg repository.UpsertCartItemParams) (repository.CartItem, error) {
	if _, item := f.findItem(arg.CartID, arg.ProductID); item != nil {
		item.Quantity += arg.Quantity
		item.UnitPrice = arg.UnitPrice
		return *item, nil
	}
	item := &repository.CartItem{
		ID:        pgUUID(uuid.New()),
		CartID:    arg.CartID,
		ProductID: arg.ProductID,
		Quantity:  arg.Quantity,
		UnitPrice: arg.UnitPrice,
		AddedAt:   pgTimestamptz(time.Now()),
	}
	key := fromPgUUID(arg.CartID)
	f.items[key] = append(f.items[key], item)
	return *item, nil
}

func (f *fakeStore) SetCartItemQuantity(ctx context.Context, arg repository.SetCartItemQuantityParams) (int64, error) {
	if _, item := f.findItem(arg.CartID, arg.ProductID); item != nil {
		item.Quantity = arg.Quantity
		return 1, nil
	}
	return 0, nil
}

func (f *fakeStore) DeleteCartItem(ctx context.Context, arg repository.DeleteCartItemParams) (int64, error) {
	i, item := f.findItem(arg.CartID, arg.ProductID)
	if item == nil {
		return 0, nil
	}
	key := fromPgUUID(arg.CartID)
	f.items[key] = append(f.items[key][:i], f.items[key][i+1:]...)
	return 1, nil
}

func (f *fakeStore) ClearCartItems(ctx context.Context, cartID pgtype.UUID) error {
	delete(f.items, fromPgUUID(cartID))
	return nil
}

// =============================================================================
// PRODUCTS AND CATEGORIES
// =============================================================================

func (f *fakeStore) GetProductByID(ctx context.Context, id pgtype.UUID) (repository.ProductRow, error) {
	if p, ok := f.products[fromPgUUID(id)]; ok {
		return *p, nil
	}
	return repository.ProductRow{}, pgx.ErrNoRows
}

func (f *fakeStore) DecrementProductStock(ctx context.Context, arg repository.DecrementProductStockParams) (int64, error) {
	p, ok := f.products[fromPgUUID(arg.ID)]
	if !ok || p.StockQuantity < arg.Quantity {
		return 0, nil
	}
	p.StockQuantity -= arg.Quantity
	return 1, nil
}

func (f *fakeStore) GetCategoryByID(ctx context.Context, id pgtype.UUID) (repository.Category, error) {
	if c, ok := f.categories[fromPgUUID(id)]; ok {
		return c, nil
	}
	return repository.Category{}, pgx.ErrNoRows
}

// =============================================================================
// COUPONS
// =============================================================================

func (f *fakeStore) GetCouponByCode(ctx context.Context, code string) (repository.Coupon, error) {
	if c, ok := f.coupons[code]; ok {
		return *c, nil
	}
	return repository.Coupon{}, pgx.ErrNoRows
}

func (f *fakeStore) CreateCoupon(ctx context.Context, arg repository.CreateCouponParams) (repository.Coupon, error) {
	if f.CreateCouponFunc != nil {
		return f.CreateCouponFunc(ctx, arg)
	}
	c := &repository.Coupon{
		ID:                 pgUUID(uuid.New()),
		Code:               arg.Code,
		Description:        arg.Description,
		DiscountPercentage: arg.DiscountPercentage,
		MaxDiscountAmount:  arg.MaxDiscountAmount,
		MinimumOrderAmount: arg.MinimumOrderAmount,
		ValidFrom:          arg.ValidFrom,
		ValidTo:            arg.ValidTo,
		UsageLimit:         arg.UsageLimit,
		IsActive:           arg.IsActive,
	}
	f.coupons[arg.Code] = c
	return *c, nil
}

func (f *fakeStore) RedeemCoupon(ctx context.Context, id pgtype.UUID) (int64, error) {
	if f.RedeemCouponFunc != nil {
		return f.RedeemCouponFunc(ctx, id)
	}
	for _, c := range f.coupons {
		if c.ID == id && c.IsActive && c.UsedCount < c.UsageLimit {
			c.UsedCount++
			return 1, nil
		}
	}
	return 0, nil
}

// =============================================================================
// ORDERS
// =============================================================================

func (f *fakeStore) CreateOrder(ctx context.Context, arg repository.CreateOrderParams) (repository.Order, error) {
	now := pgTimestamptz(time.Now())
	o := &repository.Order{
		ID:              pgUUID(uuid.New()),
		OrderNumber:     arg.OrderNumber,
		UserID:          arg.UserID,
		Status:          arg.Status,
		Subtotal:        arg.Subtotal,
		DiscountAmount:  arg.DiscountAmount,
		Total:           arg.Total,
		CouponCode:      arg.CouponCode,
		ShippingAddress: arg.ShippingAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.orders[fromPgUUID(o.ID)] = o
	return *o, nil
}

func (f *fakeStore) CreateOrderItem(ctx context.Context, arg repository.CreateOrderItemParams) (repository.OrderItem, error) {
	item := repository.OrderItem{
		ID:           pgUUID(uuid.New()),
		OrderID:      arg.OrderID,
		ProductID:    arg.ProductID,
		ProductTitle: arg.ProductTitle,
		Quantity:     arg.Quantity,
		UnitPrice:    arg.UnitPrice,
		LineTotal:    arg.LineTotal,
	}
	key := fromPgUUID(arg.OrderID)
	f.orderItems[key] = append(f.orderItems[key], item)
	return item, nil
}

func (f *fakeStore) GetOrderByID(ctx context.Context, id pgtype.UUID) (repository.Order, error) {
	if o, ok := f.orders[fromPgUUID(id)]; ok {
		return *o, nil
	}
	return repository.Order{}, pgx.ErrNoRows
}

func (f *fakeStore) GetOrderItems(ctx context.Context, orderID pgtype.UUID) ([]repository.OrderItem, error) {
	return f.orderItems[fromPgUUID(orderID)], nil
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, arg repository.UpdateOrderStatusParams) (repository.Order, error) {
	o, ok := f.orders[fromPgUUID(arg.ID)]
	if !ok {
		return repository.Order{}, pgx.ErrNoRows
	}
	o.Status = arg.Status
	return *o, nil
}
