package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const categoryColumns = `id, name, slug, description, image_url, is_active, external_source, external_id, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (Category, error) {
	var i Category
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Slug,
		&i.Description,
		&i.ImageUrl,
		&i.IsActive,
		&i.ExternalSource,
		&i.ExternalID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (name, slug, description, image_url, is_active)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + categoryColumns

type CreateCategoryParams struct {
	Name        string
	Slug        string
	Description string
	ImageUrl    string
	IsActive    bool
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, createCategory,
		arg.Name,
		arg.Slug,
		arg.Description,
		arg.ImageUrl,
		arg.IsActive,
	)
	return scanCategory(row)
}

const insertExternalCategory = `-- name: InsertExternalCategory :one
INSERT INTO categories (name, slug, description, external_source, external_id)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT DO NOTHING
RETURNING ` + categoryColumns

type InsertExternalCategoryParams struct {
	Name           string
	Slug           string
	Description    string
	ExternalSource pgtype.Text
	ExternalID     pgtype.Text
}

// InsertExternalCategory returns pgx.ErrNoRows when a row with the same
// name or external key already exists.
func (q *Queries) InsertExternalCategory(ctx context.Context, arg InsertExternalCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, insertExternalCategory,
		arg.Name,
		arg.Slug,
		arg.Description,
		arg.ExternalSource,
		arg.ExternalID,
	)
	return scanCategory(row)
}

const getCategoryByID = `-- name: GetCategoryByID :one
SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

func (q *Queries) GetCategoryByID(ctx context.Context, id pgtype.UUID) (Category, error) {
	return scanCategory(q.db.QueryRow(ctx, getCategoryByID, id))
}

const getCategoryByName = `-- name: GetCategoryByName :one
SELECT ` + categoryColumns + ` FROM categories WHERE LOWER(name) = LOWER($1)`

func (q *Queries) GetCategoryByName(ctx context.Context, name string) (Category, error) {
	return scanCategory(q.db.QueryRow(ctx, getCategoryByName, name))
}

const categoryExistsByExternalID = `-- name: CategoryExistsByExternalID :one
SELECT EXISTS (
    SELECT 1 FROM categories WHERE external_source = $1 AND external_id = $2
)`

type CategoryExistsByExternalIDParams struct {
	ExternalSource string
	ExternalID     string
}

func (q *Queries) CategoryExistsByExternalID(ctx context.Context, arg CategoryExistsByExternalIDParams) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, categoryExistsByExternalID, arg.ExternalSource, arg.ExternalID).Scan(&exists)
	return exists, err
}

const listCategories = `-- name: ListCategories :many
SELECT c.id, c.name, c.slug, c.description, c.image_url, c.is_active, c.external_source, c.external_id, c.created_at, c.updated_at,
    COUNT(p.id) FILTER (WHERE p.is_active) AS product_count
FROM categories c
LEFT JOIN products p ON p.category_id = c.id
GROUP BY c.id
ORDER BY c.name`

type ListCategoriesRow struct {
	Category
	ProductCount int64
}

func (q *Queries) ListCategories(ctx context.Context) ([]ListCategoriesRow, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListCategoriesRow
	for rows.Next() {
		var i ListCategoriesRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Slug,
			&i.Description,
			&i.ImageUrl,
			&i.IsActive,
			&i.ExternalSource,
			&i.ExternalID,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.ProductCount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateCategory = `-- name: UpdateCategory :one
UPDATE categories SET
    name = $2,
    slug = $3,
    description = $4,
    image_url = $5,
    is_active = $6,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + categoryColumns

type UpdateCategoryParams struct {
	ID          pgtype.UUID
	Name        string
	Slug        string
	Description string
	ImageUrl    string
	IsActive    bool
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, updateCategory,
		arg.ID,
		arg.Name,
		arg.Slug,
		arg.Description,
		arg.ImageUrl,
		arg.IsActive,
	)
	return scanCategory(row)
}

const countProductsInCategory = `-- name: CountProductsInCategory :one
SELECT COUNT(*) FROM products WHERE category_id = $1`

func (q *Queries) CountProductsInCategory(ctx context.Context, categoryID pgtype.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countProductsInCategory, categoryID).Scan(&count)
	return count, err
}

const deleteCategory = `-- name: DeleteCategory :execrows
DELETE FROM categories WHERE id = $1`

func (q *Queries) DeleteCategory(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
