package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/handler"
)

// CategoryHandler handles category CRUD and category sync.
type CategoryHandler struct {
	categories domain.CategoryService
	products   domain.ProductService
	syncer     domain.CatalogSyncer
	logger     *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(
	categories domain.CategoryService,
	products domain.ProductService,
	syncer domain.CatalogSyncer,
	logger *slog.Logger,
) *CategoryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryHandler{
		categories: categories,
		products:   products,
		syncer:     syncer,
		logger:     logger,
	}
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url,max=500"`
	IsActive    *bool  `json:"isActive"`
}

func (req categoryRequest) input() domain.CategoryInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return domain.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    active,
	}
}

// List handles GET /api/categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	out := make([]categoryResponse, len(categories))
	for i := range categories {
		out[i] = toCategoryResponse(&categories[i])
	}
	handler.WriteJSON(w, http.StatusOK, out)
}

// Get handles GET /api/categories/{id}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathUUID(r, "id", "category.get")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	category, err := h.categories.Get(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toCategoryResponse(category))
}

// Products handles GET /api/categories/{id}/products
func (h *CategoryHandler) Products(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathUUID(r, "id", "category.products")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if _, err := h.categories.Get(r.Context(), id); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	products, err := h.products.ListByCategory(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toProductResponses(products))
}

// Create handles POST /api/categories
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := handler.DecodeJSON(r, "category.create", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	category, err := h.categories.Create(r.Context(), req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// Update handles PUT /api/categories/{id}
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "category.update"

	id, err := handler.PathUUID(r, "id", op)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req categoryRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	category, err := h.categories.Update(r.Context(), id, req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toCategoryResponse(category))
}

// Delete handles DELETE /api/categories/{id}
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathUUID(r, "id", "category.delete")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sync handles POST /api/categories/sync-from-fakestore
func (h *CategoryHandler) Sync(w http.ResponseWriter, r *http.Request) {
	actor := domain.PrincipalFromContext(r.Context())

	count, err := h.syncer.SyncCategories(r.Context(), actor)
	if err != nil {
		handler.CountErrorResponse(w, r, count, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, countResponse{
		Message: fmt.Sprintf("Synced %d categories from FakeStore", count),
		Count:   count,
	})
}
