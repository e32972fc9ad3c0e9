package api

import (
	"log/slog"
	"net/http"

	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/handler"
	"github.com/techtrend/emporium/internal/telemetry"
)

// OrderHandler handles checkout and order tracking.
type OrderHandler struct {
	orders domain.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders domain.OrderService, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{orders: orders, logger: logger}
}

type placeOrderRequest struct {
	ShippingAddress string `json:"shippingAddress" validate:"required,max=500"`
	CouponCode      string `json:"couponCode" validate:"max=50"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Place handles POST /api/orders
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	const op = "order.place"
	p := domain.RequirePrincipal(r.Context())

	var req placeOrderRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.Place(r.Context(), p.UserID, domain.PlaceOrderInput{
		ShippingAddress: req.ShippingAddress,
		CouponCode:      req.CouponCode,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		withCoupon := "false"
		if order.CouponCode != nil {
			withCoupon = "true"
			telemetry.Business.CouponRedemptions.WithLabelValues(*order.CouponCode).Inc()
		}
		f, _ := order.Total.Float64()
		telemetry.Business.OrdersCreated.WithLabelValues(withCoupon).Inc()
		telemetry.Business.OrderValue.WithLabelValues(withCoupon).Observe(f)
	}
	h.logger.InfoContext(r.Context(), "order placed",
		"order_number", order.OrderNumber,
		"user_id", p.UserID.String(),
		"total", order.Total.StringFixed(2),
	)

	handler.WriteJSON(w, http.StatusCreated, toOrderResponse(order))
}

// ListMine handles GET /api/orders
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p := domain.RequirePrincipal(r.Context())

	orders, err := h.orders.ListForUser(r.Context(), p.UserID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toOrderResponses(orders))
}

// ListAll handles GET /api/orders/all
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toOrderResponses(orders))
}

// Get handles GET /api/orders/{id}. Shoppers only see their own orders;
// another user's order is reported as not found.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := domain.RequirePrincipal(r.Context())

	id, err := handler.PathUUID(r, "id", "order.get")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.Get(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if order.UserID != p.UserID && !p.IsStaff() {
		handler.ErrorResponse(w, r, domain.ErrOrderNotFound)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toOrderResponse(order))
}

// UpdateStatus handles PUT /api/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	const op = "order.update_status"

	id, err := handler.PathUUID(r, "id", op)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req updateOrderStatusRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		handler.ErrorResponse(w, r, domain.NewValidationError(op, "status", "must be one of Pending, Processing, Shipped, Delivered, Cancelled"))
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, status)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.OrderStatusChanges.WithLabelValues(string(order.Status)).Inc()
	}
	handler.WriteJSON(w, http.StatusOK, toOrderResponse(order))
}
