package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/handler"
	"github.com/techtrend/emporium/internal/telemetry"
)

// ProductHandler handles catalog reads, staff product edits and product sync.
type ProductHandler struct {
	products domain.ProductService
	syncer   domain.CatalogSyncer
	logger   *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products domain.ProductService, syncer domain.CatalogSyncer, logger *slog.Logger) *ProductHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductHandler{products: products, syncer: syncer, logger: logger}
}

type productRequest struct {
	Title         string          `json:"title" validate:"required,max=200"`
	Description   string          `json:"description" validate:"max=4000"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"imageUrl" validate:"omitempty,url,max=500"`
	CategoryID    string          `json:"categoryId" validate:"required,uuid"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0,lte=2147483647"`
	IsActive      *bool           `json:"isActive"`
}

func (req productRequest) input() domain.ProductInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return domain.ProductInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		ImageURL:      req.ImageURL,
		CategoryID:    uuid.MustParse(req.CategoryID),
		StockQuantity: req.StockQuantity,
		IsActive:      active,
	}
}

// List handles GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProductFilter(r.URL.Query())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	page, err := h.products.List(r.Context(), filter)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.ProductSearches.WithLabelValues(filterType(filter)).Inc()
	}

	handler.WriteJSON(w, http.StatusOK, productPageResponse{
		Items:      toProductResponses(page.Items),
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages(),
	})
}

// Search handles GET /api/products/search?term=
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("term"))
	if term == "" {
		handler.ErrorResponse(w, r, domain.NewValidationError("product.search", "term", "is required"))
		return
	}

	products, err := h.products.Search(r.Context(), term)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.ProductSearches.WithLabelValues("search").Inc()
	}
	handler.WriteJSON(w, http.StatusOK, toProductResponses(products))
}

// Featured handles GET /api/products/featured
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Featured(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.ProductViews.WithLabelValues("featured").Inc()
	}
	handler.WriteJSON(w, http.StatusOK, toProductResponses(products))
}

// Get handles GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathUUID(r, "id", "product.get")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.ProductViews.WithLabelValues("detail").Inc()
	}
	handler.WriteJSON(w, http.StatusOK, toProductResponse(product))
}

// Create handles POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := handler.DecodeJSON(r, "product.create", &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	product, err := h.products.Create(r.Context(), req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, toProductResponse(product))
}

// Update handles PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "product.update"

	id, err := handler.PathUUID(r, "id", op)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	var req productRequest
	if err := handler.DecodeJSON(r, op, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	product, err := h.products.Update(r.Context(), id, req.input())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toProductResponse(product))
}

// Delete handles DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handler.PathUUID(r, "id", "product.delete")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Sync handles POST /api/products/sync-fakestore
func (h *ProductHandler) Sync(w http.ResponseWriter, r *http.Request) {
	actor := domain.PrincipalFromContext(r.Context())

	count, err := h.syncer.SyncProducts(r.Context(), actor)
	if err != nil {
		handler.CountErrorResponse(w, r, count, err)
		return
	}

	handler.WriteJSON(w, http.StatusOK, countResponse{
		Message: fmt.Sprintf("Synced %d products from FakeStore", count),
		Count:   count,
	})
}

// parseProductFilter reads listing filters from the query string.
func parseProductFilter(q url.Values) (domain.ProductFilter, error) {
	const op = "product.list"

	var (
		filter domain.ProductFilter
		verr   error
	)

	if raw := q.Get("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			verr = domain.AddFieldError(verr, "categoryId", "must be a valid id")
		} else {
			filter.CategoryID = &id
		}
	}

	for _, p := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"minPrice", &filter.MinPrice},
		{"maxPrice", &filter.MaxPrice},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() || !domain.MoneyInRange(d) {
			verr = domain.AddFieldError(verr, p.name, "must be a non-negative number")
			continue
		}
		*p.dst = &d
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		verr = domain.AddFieldError(verr, "maxPrice", "must not be less than minPrice")
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"page", &filter.Page},
		{"pageSize", &filter.PageSize},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			verr = domain.AddFieldError(verr, p.name, "must be a positive integer")
			continue
		}
		*p.dst = n
	}

	filter.Search = strings.TrimSpace(q.Get("search"))

	if verr != nil {
		if ve, ok := verr.(*domain.ValidationError); ok {
			ve.Op = op
		}
		return filter, verr
	}

	filter.Normalize()
	return filter, nil
}

func filterType(f domain.ProductFilter) string {
	switch {
	case f.Search != "":
		return "search"
	case f.CategoryID != nil:
		return "category"
	case f.MinPrice != nil || f.MaxPrice != nil:
		return "price"
	}
	return "none"
}
