package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/handler"
	"github.com/techtrend/emporium/internal/telemetry"
)

// ReviewHandler handles product reviews and moderation.
type ReviewHandler struct {
	reviews domain.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews domain.ReviewService, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewHandler{reviews: reviews, logger: logger}
}

type reviewRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"gte=1,lte=5"`
	Comment   string `json:"comment" validate:"max=1000"`
}

func (req reviewRequest) input() domain.ReviewInput {
	return domain.ReviewInput{
		ProductID: uuid.MustParse(req.ProductID),
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
}

// ListForProduct handles GET /api/products/{id}/reviews
func (h *ReviewHandler) ListForProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := handler.PathUUID(r, "id", "review.list")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	reviews, err := h.reviews.ListApproved(r.Context(), productID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toReviewResponses(reviews))
}

// ListMine handles GET /api/reviews/mine
func (h *ReviewHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p := domain.RequirePrincipal(r.Context())

	reviews, err := h.reviews.ListByUser(r.Context(), p.UserID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toReviewResponses(reviews))
}

// ListPending handles GET /api/reviews/pending
func (h *ReviewHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListPending(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toReviewResponses(reviews))
}

// Create handles POST /api/reviews
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := domain.RequirePrincipal(r.Context())

	var req reviewRequest
	if err := handler.DecodeJSON(r, "review.create", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	review, err := h.reviews.Create(r.Context(), p.UserID, req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.ReviewsSubmitted.WithLabelValues("create").Inc()
	}
	handler.WriteJSON(w, http.StatusCreated, toReviewResponse(review))
}

// Update handles PUT /api/reviews/{id}
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "review.update"
	p := domain.RequirePrincipal(r.Context())

	id, err := handler.PathUUID(r, "id", op)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req reviewRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	review, err := h.reviews.Update(r.Context(), p.UserID, id, req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.ReviewsSubmitted.WithLabelValues("update").Inc()
	}
	handler.WriteJSON(w, http.StatusOK, toReviewResponse(review))
}

// Delete handles DELETE /api/reviews/{id}
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p := domain.RequirePrincipal(r.Context())

	id, err := handler.PathUUID(r, "id", "review.delete")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.reviews.Delete(r.Context(), p, id); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Approve handles POST /api/reviews/{id}/approve
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathUUID(r, "id", "review.approve")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	review, err := h.reviews.Approve(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.ReviewsApproved.WithLabelValues(strconv.Itoa(review.Rating)).Inc()
	}
	handler.WriteJSON(w, http.StatusOK, toReviewResponse(review))
}
