package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type Querier interface {
	// users
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	GetUserByID(ctx context.Context, id pgtype.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error)
	TouchUserLogin(ctx context.Context, id pgtype.UUID) error
	DeleteUsersByUsername(ctx context.Context, usernames []string) (int64, error)
	CountUsersByRole(ctx context.Context, roles []string) (int64, error)

	// categories
	CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error)
	InsertExternalCategory(ctx context.Context, arg InsertExternalCategoryParams) (Category, error)
	GetCategoryByID(ctx context.Context, id pgtype.UUID) (Category, error)
	GetCategoryByName(ctx context.Context, name string) (Category, error)
	CategoryExistsByExternalID(ctx context.Context, arg CategoryExistsByExternalIDParams) (bool, error)
	ListCategories(ctx context.Context) ([]ListCategoriesRow, error)
	UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error)
	CountProductsInCategory(ctx context.Context, categoryID pgtype.UUID) (int64, error)
	DeleteCategory(ctx context.Context, id pgtype.UUID) (int64, error)

	// products
	CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error)
	InsertExternalProduct(ctx context.Context, arg InsertExternalProductParams) (Product, error)
	ProductExistsByExternalID(ctx context.Context, arg ProductExistsByExternalIDParams) (bool, error)
	GetProductByID(ctx context.Context, id pgtype.UUID) (ProductRow, error)
	ListProducts(ctx context.Context, arg ListProductsParams) ([]ProductRow, error)
	CountProducts(ctx context.Context, arg CountProductsParams) (int64, error)
	CountAllProducts(ctx context.Context) (int64, error)
	ListFeaturedProducts(ctx context.Context, limit int32) ([]ProductRow, error)
	ListProductsByCategory(ctx context.Context, categoryID pgtype.UUID) ([]ProductRow, error)
	UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error)
	DeactivateProduct(ctx context.Context, id pgtype.UUID) (int64, error)
	DecrementProductStock(ctx context.Context, arg DecrementProductStockParams) (int64, error)

	// carts
	GetActiveCartByUser(ctx context.Context, userID pgtype.UUID) (Cart, error)
	CreateActiveCart(ctx context.Context, userID pgtype.UUID) (Cart, error)
	LockCart(ctx context.Context, id pgtype.UUID) error
	TouchCart(ctx context.Context, id pgtype.UUID) error
	DeactivateCart(ctx context.Context, id pgtype.UUID) error
	GetCartItems(ctx context.Context, cartID pgtype.UUID) ([]GetCartItemsRow, error)
	GetCartItem(ctx context.Context, arg GetCartItemParams) (CartItem, error)
	UpsertCartItem(ctx context.Context, arg UpsertCartItemParams) (CartItem, error)
	SetCartItemQuantity(ctx context.Context, arg SetCartItemQuantityParams) (int64, error)
	DeleteCartItem(ctx context.Context, arg DeleteCartItemParams) (int64, error)
	ClearCartItems(ctx context.Context, cartID pgtype.UUID) error

	// coupons
	CreateCoupon(ctx context.Context, arg CreateCouponParams) (Coupon, error)
	GetCouponByID(ctx context.Context, id pgtype.UUID) (Coupon, error)
	GetCouponByCode(ctx context.Context, code string) (Coupon, error)
	ListCoupons(ctx context.Context) ([]Coupon, error)
	UpdateCoupon(ctx context.Context, arg UpdateCouponParams) (Coupon, error)
	DeleteCoupon(ctx context.Context, id pgtype.UUID) (int64, error)
	RedeemCoupon(ctx context.Context, id pgtype.UUID) (int64, error)

	// orders
	CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error)
	CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error)
	GetOrderByID(ctx context.Context, id pgtype.UUID) (Order, error)
	ListOrdersByUser(ctx context.Context, userID pgtype.UUID) ([]Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	GetOrderItems(ctx context.Context, orderID pgtype.UUID) ([]OrderItem, error)
	UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error)

	// reviews
	CreateReview(ctx context.Context, arg CreateReviewParams) (Review, error)
	GetReviewByID(ctx context.Context, id pgtype.UUID) (Review, error)
	ListApprovedReviewsByProduct(ctx context.Context, productID pgtype.UUID) ([]ReviewRow, error)
	ListReviewsByUser(ctx context.Context, userID pgtype.UUID) ([]ReviewRow, error)
	ListPendingReviews(ctx context.Context) ([]ReviewRow, error)
	UpdateReview(ctx context.Context, arg UpdateReviewParams) (Review, error)
	ApproveReview(ctx context.Context, id pgtype.UUID) (Review, error)
	DeleteReview(ctx context.Context, id pgtype.UUID) (int64, error)

	// wishlist
	AddWishlistItem(ctx context.Context, arg WishlistItemParams) (int64, error)
	RemoveWishlistItem(ctx context.Context, arg WishlistItemParams) (int64, error)
	WishlistContains(ctx context.Context, arg WishlistItemParams) (bool, error)
	ListWishlistItems(ctx context.Context, userID pgtype.UUID) ([]ListWishlistItemsRow, error)
}

var _ Querier = (*Queries)(nil)
