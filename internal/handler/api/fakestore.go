package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/fakestore"
	"github.com/techtrend/emporium/internal/handler"
)

// FakeStoreHandler exposes the FakeStore catalog read-only. Upstream
// failures degrade to an empty result; the client has already logged them.
type FakeStoreHandler struct {
	catalog fakestore.Catalog
	logger  *slog.Logger
}

// NewFakeStoreHandler creates a new FakeStore handler
func NewFakeStoreHandler(catalog fakestore.Catalog, logger *slog.Logger) *FakeStoreHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FakeStoreHandler{catalog: catalog, logger: logger}
}

// Products handles GET /api/fakestore/products
func (h *FakeStoreHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, _ := h.catalog.GetProducts(r.Context())
	handler.WriteJSON(w, http.StatusOK, toFakeStoreProducts(products))
}

// Product handles GET /api/fakestore/products/{id}
func (h *FakeStoreHandler) Product(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		handler.ErrorResponse(w, r, domain.NewValidationError("fakestore.product", "id", "must be a positive integer"))
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil || product == nil {
		handler.ErrorResponse(w, r, fakestore.ErrProductNotFound)
		return
	}
	handler.WriteJSON(w, http.StatusOK, toFakeStoreProductResponse(product))
}

// Categories handles GET /api/fakestore/categories
func (h *FakeStoreHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, _ := h.catalog.GetCategories(r.Context())
	if categories == nil {
		categories = []string{}
	}
	handler.WriteJSON(w, http.StatusOK, categories)
}

// ProductsByCategory handles GET /api/fakestore/products/category/{category}
func (h *FakeStoreHandler) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.PathValue("category"))
	if category == "" {
		handler.ErrorResponse(w, r, domain.NewValidationError("fakestore.products_by_category", "category", "is required"))
		return
	}

	products, _ := h.catalog.GetProductsByCategory(r.Context(), category)
	handler.WriteJSON(w, http.StatusOK, toFakeStoreProducts(products))
}

func toFakeStoreProducts(products []fakestore.Product) []fakeStoreProductResponse {
	out := make([]fakeStoreProductResponse, len(products))
	for i := range products {
		out[i] = toFakeStoreProductResponse(&products[i])
	}
	return out
}
