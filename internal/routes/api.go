package routes

import (
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/middleware"
	"github.com/techtrend/emporium/internal/router"
)

// RegisterAPIRoutes registers the JSON API. The router's global chain must
// already run middleware.Authenticate so the policy groups below can see
// the caller. Catalog sync gets LongTimeout; every other route gets
// DefaultTimeout.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	public := r.Group(middleware.Timeout(middleware.DefaultTimeout))
	authed := public.Group(middleware.RequireAuth)
	employee := public.Group(middleware.RequirePolicy(domain.PolicyEmployeeOnly))
	admin := public.Group(middleware.RequirePolicy(domain.PolicyAdminOnly))
	superAdmin := public.Group(middleware.RequirePolicy(domain.PolicySuperAdmin))
	longRunning := r.Group(middleware.RequirePolicy(domain.PolicyAdminOnly), middleware.Timeout(middleware.LongTimeout))

	// Auth
	credentials := []router.Middleware{middleware.MaxBodySize(middleware.SmallMaxBodySize)}
	if deps.CredentialLimit != nil {
		credentials = append(credentials, deps.CredentialLimit)
	}
	public.Post("/api/auth/register", deps.AuthHandler.Register, credentials...)
	public.Post("/api/auth/login", deps.AuthHandler.Login, credentials...)
	authed.Post("/api/auth/logout", deps.AuthHandler.Logout)
	authed.Get("/api/auth/me", deps.AuthHandler.Me)
	authed.Post("/api/auth/refresh", deps.AuthHandler.Refresh)
	admin.Post("/api/admin/auth", deps.AuthHandler.CreateEmployee)

	// Users
	admin.Get("/api/users", deps.UserHandler.List)
	superAdmin.Post("/api/users", deps.UserHandler.Create)
	superAdmin.Put("/api/users/{username}", deps.UserHandler.Update)
	superAdmin.Delete("/api/users", deps.UserHandler.Delete)

	// Categories
	public.Get("/api/categories", deps.CategoryHandler.List)
	public.Get("/api/categories/{id}", deps.CategoryHandler.Get)
	public.Get("/api/categories/{id}/products", deps.CategoryHandler.Products)
	employee.Post("/api/categories", deps.CategoryHandler.Create)
	employee.Put("/api/categories/{id}", deps.CategoryHandler.Update)
	admin.Delete("/api/categories/{id}", deps.CategoryHandler.Delete)
	longRunning.Post("/api/categories/sync-from-fakestore", deps.CategoryHandler.Sync)

	// Products
	public.Get("/api/products", deps.ProductHandler.List)
	public.Get("/api/products/search", deps.ProductHandler.Search)
	public.Get("/api/products/featured", deps.ProductHandler.Featured)
	public.Get("/api/products/{id}", deps.ProductHandler.Get)
	public.Get("/api/products/{id}/reviews", deps.ReviewHandler.ListForProduct)
	employee.Post("/api/products", deps.ProductHandler.Create)
	employee.Put("/api/products/{id}", deps.ProductHandler.Update)
	admin.Delete("/api/products/{id}", deps.ProductHandler.Delete)
	longRunning.Post("/api/products/sync-fakestore", deps.ProductHandler.Sync)

	// FakeStore passthrough
	public.Get("/api/fakestore/products", deps.FakeStoreHandler.Products)
	public.Get("/api/fakestore/products/{id}", deps.FakeStoreHandler.Product)
	public.Get("/api/fakestore/categories", deps.FakeStoreHandler.Categories)
	public.Get("/api/fakestore/products/category/{category}", deps.FakeStoreHandler.ProductsByCategory)

	// Cart
	authed.Get("/api/cart", deps.CartHandler.Get)
	authed.Post("/api/cart/items", deps.CartHandler.AddItem)
	authed.Put("/api/cart/items/{productId}", deps.CartHandler.UpdateItem)
	authed.Delete("/api/cart/items/{productId}", deps.CartHandler.RemoveItem)
	authed.Delete("/api/cart", deps.CartHandler.Clear)
	authed.Post("/api/cart/calculate-total", deps.CartHandler.CalculateTotal)

	// Coupons
	employee.Get("/api/coupons", deps.CouponHandler.List)
	employee.Get("/api/coupons/{id}", deps.CouponHandler.Get)
	employee.Post("/api/coupons", deps.CouponHandler.Create)
	employee.Put("/api/coupons/{id}", deps.CouponHandler.Update)
	admin.Delete("/api/coupons/{id}", deps.CouponHandler.Delete)
	authed.Get("/api/coupons/{code}/validate", deps.CouponHandler.Validate)

	// Orders
	authed.Post("/api/orders", deps.OrderHandler.Place)
	authed.Get("/api/orders", deps.OrderHandler.ListMine)
	authed.Get("/api/orders/{id}", deps.OrderHandler.Get)
	employee.Get("/api/orders/all", deps.OrderHandler.ListAll)
	employee.Put("/api/orders/{id}/status", deps.OrderHandler.UpdateStatus)

	// Reviews
	authed.Get("/api/reviews/mine", deps.ReviewHandler.ListMine)
	authed.Post("/api/reviews", deps.ReviewHandler.Create)
	authed.Put("/api/reviews/{id}", deps.ReviewHandler.Update)
	authed.Delete("/api/reviews/{id}", deps.ReviewHandler.Delete)
	employee.Get("/api/reviews/pending", deps.ReviewHandler.ListPending)
	employee.Post("/api/reviews/{id}/approve", deps.ReviewHandler.Approve)

	// Wishlist
	authed.Get("/api/wishlist", deps.WishlistHandler.List)
	authed.Post("/api/wishlist/{productId}", deps.WishlistHandler.Add)
	authed.Delete("/api/wishlist/{productId}", deps.WishlistHandler.Remove)
	authed.Get("/api/wishlist/{productId}", deps.WishlistHandler.Contains)
}
