package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/handler"
	"github.com/techtrend/emporium/internal/telemetry"
)

// CartHandler handles the caller's active cart.
type CartHandler struct {
	carts  domain.CartService
	logger *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts domain.CartService, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandler{carts: carts, logger: logger}
}

type addCartItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=1000"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"lte=1000"`
}

type calculateTotalRequest struct {
	CouponCode string `json:"couponCode" validate:"max=50"`
}

// Get handles GET /api/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := domain.RequirePrincipal(r.Context())

	cart, err := h.carts.GetCart(r.Context(), p.UserID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toCartResponse(cart))
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	const op = "cart.add_item"
	p := domain.RequirePrincipal(r.Context())

	var req addCartItemRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	cart, err := h.carts.AddItem(r.Context(), p.UserID, uuid.MustParse(req.ProductID), req.Quantity)
	h.respond(w, r, "add", cart, err)
}

// UpdateItem handles PUT /api/cart/items/{productId}. A quantity of zero
// or less removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	const op = "cart.update_item"
	p := domain.RequirePrincipal(r.Context())

	productID, err := handler.PathUUID(r, "productId", op)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req updateCartItemRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	cart, err := h.carts.UpdateItem(r.Context(), p.UserID, productID, req.Quantity)
	h.respond(w, r, "update", cart, err)
}

// RemoveItem handles DELETE /api/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	p := domain.RequirePrincipal(r.Context())

	productID, err := handler.PathUUID(r, "productId", "cart.remove_item")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	cart, err := h.carts.RemoveItem(r.Context(), p.UserID, productID)
	h.respond(w, r, "remove", cart, err)
}

// Clear handles DELETE /api/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	p := domain.RequirePrincipal(r.Context())

	cart, err := h.carts.ClearCart(r.Context(), p.UserID)
	h.respond(w, r, "clear", cart, err)
}

// CalculateTotal handles POST /api/cart/calculate-total. An unknown or
// inapplicable coupon yields no discount rather than an error.
func (h *CartHandler) CalculateTotal(w http.ResponseWriter, r *http.Request) {
	const op = "cart.calculate_total"
	p := domain.RequirePrincipal(r.Context())

	var req calculateTotalRequest
	if r.ContentLength != 0 {
		if err := handler.DecodeJSON(r, op, &req); err != nil {
			handler.ErrorResponse(w, r, err)
			return
		}
	}

	total, err := h.carts.CalculateTotal(r.Context(), p.UserID, req.CouponCode)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		applied := "false"
		if total.CouponApplied {
			applied = "true"
		}
		f, _ := total.Total.Float64()
		telemetry.Business.CartValue.WithLabelValues(applied).Observe(f)
		if total.CouponCode != "" {
			outcome := "applied"
			if !total.CouponApplied {
				outcome = total.CouponRejection
			}
			telemetry.Business.CouponEvaluations.WithLabelValues(outcome).Inc()
		}
	}

	handler.WriteJSON(w, http.StatusOK, toCartTotalResponse(total))
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, operation string, cart *domain.Cart, err error) {
	if telemetry.Business != nil {
		result := "ok"
		if err != nil {
			result = domain.ErrorCode(err)
		}
		telemetry.Business.CartMutations.WithLabelValues(operation, result).Inc()
	}

	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toCartResponse(cart))
}
