package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/repository"
)

// featuredLimit caps the featured product list.
const featuredLimit = 8

// searchLimit caps unpaged search results.
const searchLimit = 50

// ProductService implements domain.ProductService using PostgreSQL.
type ProductService struct {
	repo repository.Querier
}

// Compile-time check that ProductService implements domain.ProductService.
var _ domain.ProductService = (*ProductService)(nil)

// NewProductService creates a new PostgreSQL-backed product service.
func NewProductService(repo repository.Querier) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// =============================================================================
// CATALOG READS
// =============================================================================

// List returns one page of active products matching the filter.
func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	const op = "product.list"

	filter.Normalize()
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, domain.NewValidationError(op, "minPrice", "must not exceed maxPrice")
	}
	for name, bound := range map[string]*decimal.Decimal{"minPrice": filter.MinPrice, "maxPrice": filter.MaxPrice} {
		if bound != nil && !domain.MoneyInRange(*bound) {
			return nil, domain.NewValidationError(op, name, "is out of range")
		}
	}

	search := strings.TrimSpace(filter.Search)
	count, err := s.repo.CountProducts(ctx, repository.CountProductsParams{
		CategoryID: pgUUIDFromPtr(filter.CategoryID),
		MinPrice:   pgNumericFromPtr(filter.MinPrice),
		MaxPrice:   pgNumericFromPtr(filter.MaxPrice),
		Search:     search,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to count products")
	}

	rows, err := s.repo.ListProducts(ctx, repository.ListProductsParams{
		CategoryID: pgUUIDFromPtr(filter.CategoryID),
		MinPrice:   pgNumericFromPtr(filter.MinPrice),
		MaxPrice:   pgNumericFromPtr(filter.MaxPrice),
		Search:     search,
		Limit:      int32(filter.PageSize),
		Offset:     int32((filter.Page - 1) * filter.PageSize),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list products")
	}

	return &domain.ProductPage{
		Items:      productsFromRows(rows),
		TotalCount: int(count),
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}, nil
}

// Get returns a product by id, including inactive products.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row, err := s.repo.GetProductByID(ctx, pgUUID(id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "product.get", "failed to get product")
	}
	p := productFromRow(row)
	return &p, nil
}

// Search matches active products by title, description or category name.
func (s *ProductService) Search(ctx context.Context, term string) ([]domain.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.NewValidationError("product.search", "q", "search term is required")
	}

	rows, err := s.repo.ListProducts(ctx, repository.ListProductsParams{
		Search: term,
		Limit:  searchLimit,
	})
	if err != nil {
		return nil, domain.Internal(err, "product.search", "failed to search products")
	}
	return productsFromRows(rows), nil
}

// Featured returns the highest rated active products.
func (s *ProductService) Featured(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.repo.ListFeaturedProducts(ctx, featuredLimit)
	if err != nil {
		return nil, domain.Internal(err, "product.featured", "failed to list featured products")
	}
	return productsFromRows(rows), nil
}

// ListByCategory returns the active products of one category.
func (s *ProductService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error) {
	if _, err := s.repo.GetCategoryByID(ctx, pgUUID(categoryID)); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, domain.Internal(err, "product.list_by_category", "failed to get category")
	}

	rows, err := s.repo.ListProductsByCategory(ctx, pgUUID(categoryID))
	if err != nil {
		return nil, domain.Internal(err, "product.list_by_category", "failed to list products")
	}
	return productsFromRows(rows), nil
}

// =============================================================================
// STAFF WRITES
// =============================================================================

// Create adds a product to an existing category.
func (s *ProductService) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	const op = "product.create"

	if err := validateProductInput(op, in); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, op, in.CategoryID); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateProduct(ctx, repository.CreateProductParams{
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Price:         pgNumeric(in.Price.Round(2)),
		ImageUrl:      in.ImageURL,
		CategoryID:    pgUUID(in.CategoryID),
		IsActive:      in.IsActive,
		StockQuantity: int32(in.StockQuantity),
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create product")
	}

	return s.Get(ctx, fromPgUUID(created.ID))
}

// Update replaces a product's editable fields.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, in domain.ProductInput) (*domain.Product, error) {
	const op = "product.update"

	if err := validateProductInput(op, in); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, op, in.CategoryID); err != nil {
		return nil, err
	}

	_, err := s.repo.UpdateProduct(ctx, repository.UpdateProductParams{
		ID:            pgUUID(id),
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Price:         pgNumeric(in.Price.Round(2)),
		ImageUrl:      in.ImageURL,
		CategoryID:    pgUUID(in.CategoryID),
		IsActive:      in.IsActive,
		StockQuantity: int32(in.StockQuantity),
	})
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, op, "failed to update product")
	}

	return s.Get(ctx, id)
}

// Delete deactivates a product so existing carts and orders keep their rows.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.DeactivateProduct(ctx, pgUUID(id))
	if err != nil {
		return domain.Internal(err, "product.delete", "failed to deactivate product")
	}
	if n == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (s *ProductService) requireCategory(ctx context.Context, op string, id uuid.UUID) error {
	if _, err := s.repo.GetCategoryByID(ctx, pgUUID(id)); err != nil {
		if isNoRows(err) {
			return domain.NewValidationError(op, "categoryId", "category does not exist")
		}
		return domain.Internal(err, op, "failed to get category")
	}
	return nil
}

func validateProductInput(op string, in domain.ProductInput) error {
	var err error
	if strings.TrimSpace(in.Title) == "" {
		err = domain.AddFieldError(err, "title", "title is required")
	}
	switch {
	case in.Price.IsNegative():
		err = domain.AddFieldError(err, "price", "must not be negative")
	case !domain.MoneyInRange(in.Price):
		err = domain.AddFieldError(err, "price",
			fmt.Sprintf("must have at most %d digits before the decimal point", domain.MaxMoneyIntegerDigits))
	}
	if in.StockQuantity < 0 || in.StockQuantity > domain.MaxQuantity {
		err = domain.AddFieldError(err, "stockQuantity", fmt.Sprintf("must be between 0 and %d", domain.MaxQuantity))
	}
	if in.CategoryID == uuid.Nil {
		err = domain.AddFieldError(err, "categoryId", "category is required")
	}
	if ve, ok := err.(*domain.ValidationError); ok {
		ve.Op = op
		return ve
	}
	return nil
}

// =============================================================================
// MAPPING
// =============================================================================

func productsFromRows(rows []repository.ProductRow) []domain.Product {
	products := make([]domain.Product, len(rows))
	for i, row := range rows {
		products[i] = productFromRow(row)
	}
	return products
}

func productFromRow(row repository.ProductRow) domain.Product {
	p := domain.Product{
		ID:                  fromPgUUID(row.ID),
		Title:               row.Title,
		Description:         row.Description,
		Price:               fromPgNumeric(row.Price),
		ImageURL:            row.ImageUrl,
		CategoryID:          fromPgUUID(row.CategoryID),
		CategoryName:        row.CategoryName,
		IsActive:            row.IsActive,
		StockQuantity:       int(row.StockQuantity),
		ExternalSource:      textPtr(row.ExternalSource),
		ExternalID:          textPtr(row.ExternalID),
		ExternalRating:      fromPgNumericPtr(row.ExternalRating),
		ExternalRatingCount: int(row.ExternalRatingCount),
		ApprovedReviewCount: int(row.ApprovedReviewCount),
		CreatedAt:           row.CreatedAt.Time,
		UpdatedAt:           row.UpdatedAt.Time,
	}
	if row.ApprovedRatingAvg.Valid {
		avg := row.ApprovedRatingAvg.Float64
		p.ApprovedRatingAvg = &avg
	}
	return p
}
