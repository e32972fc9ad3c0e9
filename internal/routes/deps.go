package routes

import (
	"github.com/techtrend/emporium/internal/handler/api"
	"github.com/techtrend/emporium/internal/router"
)

// APIDeps contains dependencies for API routes
type APIDeps struct {
	// Accounts
	AuthHandler *api.AuthHandler
	UserHandler *api.UserHandler

	// Catalog
	CategoryHandler  *api.CategoryHandler
	ProductHandler   *api.ProductHandler
	FakeStoreHandler *api.FakeStoreHandler
	ReviewHandler    *api.ReviewHandler

	// Shopping
	CartHandler     *api.CartHandler
	CouponHandler   *api.CouponHandler
	OrderHandler    *api.OrderHandler
	WishlistHandler *api.WishlistHandler

	// CredentialLimit guards login and registration. Nil disables it.
	CredentialLimit router.Middleware
}
