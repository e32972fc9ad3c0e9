package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/repository"
)

// CategoryService implements domain.CategoryService using PostgreSQL.
type CategoryService struct {
	repo repository.Querier
}

// Compile-time check that CategoryService implements domain.CategoryService.
var _ domain.CategoryService = (*CategoryService)(nil)

// NewCategoryService creates a new PostgreSQL-backed category service.
func NewCategoryService(repo repository.Querier) *CategoryService {
	return &CategoryService{
		repo: repo,
	}
}

// List returns all categories with their active product counts.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, domain.Internal(err, "category.list", "failed to list categories")
	}

	categories := make([]domain.Category, len(rows))
	for i, row := range rows {
		c := categoryFromRow(row.Category)
		c.ProductCount = int(row.ProductCount)
		categories[i] = *c
	}
	return categories, nil
}

// Get returns a category by id.
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	row, err := s.repo.GetCategoryByID(ctx, pgUUID(id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, domain.Internal(err, "category.get", "failed to get category")
	}

	c := categoryFromRow(row)
	count, err := s.repo.CountProductsInCategory(ctx, row.ID)
	if err != nil {
		return nil, domain.Internal(err, "category.get", "failed to count products")
	}
	c.ProductCount = int(count)
	return c, nil
}

// Create adds a category. Names are unique ignoring case.
func (s *CategoryService) Create(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	const op = "category.create"

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError(op, "name", "name is required")
	}

	row, err := s.repo.CreateCategory(ctx, repository.CreateCategoryParams{
		Name:        name,
		Slug:        slug.Make(name),
		Description: in.Description,
		ImageUrl:    in.ImageURL,
		IsActive:    in.IsActive,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrCategoryExists
		}
		return nil, domain.Internal(err, op, "failed to create category")
	}
	return categoryFromRow(row), nil
}

// Update renames or edits a category.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, in domain.CategoryInput) (*domain.Category, error) {
	const op = "category.update"

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError(op, "name", "name is required")
	}

	row, err := s.repo.UpdateCategory(ctx, repository.UpdateCategoryParams{
		ID:          pgUUID(id),
		Name:        name,
		Slug:        slug.Make(name),
		Description: in.Description,
		ImageUrl:    in.ImageURL,
		IsActive:    in.IsActive,
	})
	if err != nil {
		switch {
		case isNoRows(err):
			return nil, domain.ErrCategoryNotFound
		case isUniqueViolation(err):
			return nil, domain.ErrCategoryExists
		}
		return nil, domain.Internal(err, op, "failed to update category")
	}
	return categoryFromRow(row), nil
}

// Delete removes a category that no product references.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "category.delete"

	count, err := s.repo.CountProductsInCategory(ctx, pgUUID(id))
	if err != nil {
		return domain.Internal(err, op, "failed to count products")
	}
	if count > 0 {
		return domain.ErrCategoryNotEmpty
	}

	n, err := s.repo.DeleteCategory(ctx, pgUUID(id))
	if err != nil {
		// a product inserted after the count still trips the foreign key
		if isForeignKeyViolation(err) {
			return domain.ErrCategoryNotEmpty
		}
		return domain.Internal(err, op, "failed to delete category")
	}
	if n == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

func categoryFromRow(row repository.Category) *domain.Category {
	return &domain.Category{
		ID:             fromPgUUID(row.ID),
		Name:           row.Name,
		Slug:           row.Slug,
		Description:    row.Description,
		ImageURL:       row.ImageUrl,
		IsActive:       row.IsActive,
		ExternalSource: textPtr(row.ExternalSource),
		ExternalID:     textPtr(row.ExternalID),
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
