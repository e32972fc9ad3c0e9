package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/handler"
)

// CouponHandler handles coupon management and previews.
type CouponHandler struct {
	coupons domain.CouponService
	logger  *slog.Logger
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(coupons domain.CouponService, logger *slog.Logger) *CouponHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CouponHandler{coupons: coupons, logger: logger}
}

type couponRequest struct {
	Code               string           `json:"code" validate:"required,max=50"`
	Description        string           `json:"description" validate:"max=500"`
	DiscountPercentage decimal.Decimal  `json:"discountPercentage"`
	MaxDiscountAmount  *decimal.Decimal `json:"maxDiscountAmount"`
	MinimumOrderAmount *decimal.Decimal `json:"minimumOrderAmount"`
	ValidFrom          time.Time        `json:"validFrom"`
	ValidTo            time.Time        `json:"validTo"`
	UsageLimit         int              `json:"usageLimit" validate:"lte=2147483647"`
	IsActive           *bool            `json:"isActive"`
}

func (req couponRequest) input() domain.CouponInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return domain.CouponInput{
		Code:               req.Code,
		Description:        req.Description,
		DiscountPercentage: req.DiscountPercentage,
		MaxDiscountAmount:  req.MaxDiscountAmount,
		MinimumOrderAmount: req.MinimumOrderAmount,
		ValidFrom:          req.ValidFrom,
		ValidTo:            req.ValidTo,
		UsageLimit:         req.UsageLimit,
		IsActive:           active,
	}
}

// List handles GET /api/coupons
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	out := make([]couponResponse, len(coupons))
	for i := range coupons {
		out[i] = toCouponResponse(&coupons[i])
	}
	handler.WriteJSON(w, http.StatusOK, out)
}

// Get handles GET /api/coupons/{id}
func (h *CouponHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathUUID(r, "id", "coupon.get")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	coupon, err := h.coupons.Get(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toCouponResponse(coupon))
}

// Create handles POST /api/coupons
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := handler.DecodeJSON(r, "coupon.create", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	coupon, err := h.coupons.Create(r.Context(), req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "coupon created",
		"code", coupon.Code,
		"created_by", domain.UserIDFromContext(r.Context()).String(),
	)
	handler.WriteJSON(w, http.StatusCreated, toCouponResponse(coupon))
}

// Update handles PUT /api/coupons/{id}
func (h *CouponHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "coupon.update"

	id, err := handler.PathUUID(r, "id", op)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req couponRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	coupon, err := h.coupons.Update(r.Context(), id, req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toCouponResponse(coupon))
}

// Delete handles DELETE /api/coupons/{id}
func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathUUID(r, "id", "coupon.delete")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.coupons.Delete(r.Context(), id); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Validate handles GET /api/coupons/{code}/validate?amount=. It reports
// whether the coupon would apply and never redeems it.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	const op = "coupon.validate"

	code := strings.TrimSpace(r.PathValue("code"))
	if code == "" {
		handler.ErrorResponse(w, r, domain.NewValidationError(op, "code", "is required"))
		return
	}

	amount := decimal.Zero
	if raw := r.URL.Query().Get("amount"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			handler.ErrorResponse(w, r, domain.NewValidationError(op, "amount", "must be a number"))
			return
		}
		amount = d
	}

	preview, err := h.coupons.Preview(r.Context(), code, amount)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, couponPreviewResponse{
		Code:           preview.Code,
		Valid:          preview.Valid,
		Reason:         preview.Reason,
		DiscountAmount: money(preview.DiscountAmount),
		Total:          money(preview.Total),
	})
}
