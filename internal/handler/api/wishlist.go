package api

import (
	"log/slog"
	"net/http"

	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/handler"
)

// WishlistHandler handles the caller's saved products.
type WishlistHandler struct {
	wishlist domain.WishlistService
	logger   *slog.Logger
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlist domain.WishlistService, logger *slog.Logger) *WishlistHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WishlistHandler{wishlist: wishlist, logger: logger}
}

type wishlistContainsResponse struct {
	ProductID  string `json:"productId"`
	InWishlist bool   `json:"inWishlist"`
}

// List handles GET /api/wishlist
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	p := domain.RequirePrincipal(r.Context())

	items, err := h.wishlist.List(r.Context(), p.UserID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	out := make([]wishlistItemResponse, len(items))
	for i, item := range items {
		out[i] = wishlistItemResponse{
			ProductID:    item.ProductID,
			ProductTitle: item.ProductTitle,
			Price:        money(item.Price),
			ImageURL:     item.ImageURL,
			IsActive:     item.IsActive,
			AddedAt:      item.AddedAt,
		}
	}
	handler.WriteJSON(w, http.StatusOK, out)
}

// Add handles POST /api/wishlist/{productId}
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	p := domain.RequirePrincipal(r.Context())

	productID, err := handler.PathUUID(r, "productId", "wishlist.add")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.wishlist.Add(r.Context(), p.UserID, productID); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteMessage(w, http.StatusOK, "Added to wishlist")
}

// Remove handles DELETE /api/wishlist/{productId}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	p := domain.RequirePrincipal(r.Context())

	productID, err := handler.PathUUID(r, "productId", "wishlist.remove")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.wishlist.Remove(r.Context(), p.UserID, productID); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Contains handles GET /api/wishlist/{productId}
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	p := domain.RequirePrincipal(r.Context())

	productID, err := handler.PathUUID(r, "productId", "wishlist.contains")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	ok, err := h.wishlist.Contains(r.Context(), p.UserID, productID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, wishlistContainsResponse{
		ProductID:  productID.String(),
		InWishlist: ok,
	})
}
