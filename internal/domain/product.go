package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExternalSourceFakeStore tags rows imported from the FakeStore catalog.
const ExternalSourceFakeStore = "fakestore"

// Product is a catalog item.
type Product struct {
	ID            uuid.UUID
	Title         string
	Description   string
	Price         decimal.Decimal
	ImageURL      string
	CategoryID    uuid.UUID
	CategoryName  string
	IsActive      bool
	StockQuantity int

	// External* are only set for rows imported by catalog sync.
	ExternalSource      *string
	ExternalID          *string
	ExternalRating      *decimal.Decimal
	ExternalRatingCount int

	// Aggregates over approved reviews.
	ApprovedReviewCount int
	ApprovedRatingAvg   *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AverageRating is the approved review average when reviews exist,
// otherwise the imported external rating, otherwise zero.
func (p *Product) AverageRating() float64 {
	if p.ApprovedReviewCount > 0 && p.ApprovedRatingAvg != nil {
		return *p.ApprovedRatingAvg
	}
	if p.ExternalRating != nil {
		f, _ := p.ExternalRating.Float64()
		return f
	}
	return 0
}

// ReviewCount is approved local reviews plus the external rating count.
func (p *Product) ReviewCount() int {
	return p.ApprovedReviewCount + p.ExternalRatingCount
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID *uuid.UUID
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Search     string
	Page       int
	PageSize   int
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize applies paging defaults and bounds.
func (f *ProductFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.Page > MaxPage(f.PageSize) {
		f.Page = MaxPage(f.PageSize)
	}
}

// ProductPage is one page of a filtered product listing.
type ProductPage struct {
	Items      []Product
	TotalCount int
	Page       int
	PageSize   int
}

// TotalPages is the number of pages at the current page size.
func (p *ProductPage) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.TotalCount + p.PageSize - 1) / p.PageSize
}

// ProductInput carries staff edits to a product.
type ProductInput struct {
	Title         string
	Description   string
	Price         decimal.Decimal
	ImageURL      string
	CategoryID    uuid.UUID
	StockQuantity int
	IsActive      bool
}

var (
	ErrProductNotFound  = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrCategoryNotFound = &Error{Code: ENOTFOUND, Message: "Category not found"}
	ErrCategoryNotEmpty = &Error{Code: ECONFLICT, Message: "Category still has products"}
	ErrCategoryExists   = &Error{Code: ECONFLICT, Message: "A category with this name already exists"}
)

// ProductService provides catalog reads and staff writes for products.
type ProductService interface {
	List(ctx context.Context, filter ProductFilter) (*ProductPage, error)
	Get(ctx context.Context, id uuid.UUID) (*Product, error)

	// Search matches title, description and category name.
	Search(ctx context.Context, term string) ([]Product, error)

	// Featured returns the top rated active products.
	Featured(ctx context.Context) ([]Product, error)

	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]Product, error)
	Create(ctx context.Context, in ProductInput) (*Product, error)
	Update(ctx context.Context, id uuid.UUID, in ProductInput) (*Product, error)

	// Delete deactivates the product; rows referenced by orders are kept.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Category groups products.
type Category struct {
	ID             uuid.UUID
	Name           string
	Slug           string
	Description    string
	ImageURL       string
	IsActive       bool
	ExternalSource *string
	ExternalID     *string
	ProductCount   int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CategoryInput carries staff edits to a category.
type CategoryInput struct {
	Name        string
	Description string
	ImageURL    string
	IsActive    bool
}

// CategoryService provides category CRUD.
type CategoryService interface {
	List(ctx context.Context) ([]Category, error)
	Get(ctx context.Context, id uuid.UUID) (*Category, error)
	Create(ctx context.Context, in CategoryInput) (*Category, error)
	Update(ctx context.Context, id uuid.UUID, in CategoryInput) (*Category, error)

	// Delete removes an empty category; ErrCategoryNotEmpty otherwise.
	Delete(ctx context.Context, id uuid.UUID) error
}
