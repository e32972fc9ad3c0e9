package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, title, description, price, image_url, category_id, is_active, stock_quantity, external_source, external_id, external_rating, external_rating_count, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.Price,
		&i.ImageUrl,
		&i.CategoryID,
		&i.IsActive,
		&i.StockQuantity,
		&i.ExternalSource,
		&i.ExternalID,
		&i.ExternalRating,
		&i.ExternalRatingCount,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

// ProductRow is a product joined with its category name and approved
// review aggregates.
type ProductRow struct {
	Product
	CategoryName        string
	ApprovedReviewCount int64
	ApprovedRatingAvg   pgtype.Float8
}

const productRowSelect = `
SELECT p.id, p.title, p.description, p.price, p.image_url, p.category_id, p.is_active, p.stock_quantity,
    p.external_source, p.external_id, p.external_rating, p.external_rating_count, p.created_at, p.updated_at,
    c.name AS category_name,
    r.review_count AS approved_review_count,
    r.avg_rating AS approved_rating_avg
FROM products p
JOIN categories c ON c.id = p.category_id
LEFT JOIN LATERAL (
    SELECT COUNT(*) AS review_count, AVG(rating)::float8 AS avg_rating
    FROM reviews
    WHERE product_id = p.id AND is_approved
) r ON TRUE`

func scanProductRow(row interface{ Scan(...any) error }) (ProductRow, error) {
	var i ProductRow
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Description,
		&i.Price,
		&i.ImageUrl,
		&i.CategoryID,
		&i.IsActive,
		&i.StockQuantity,
		&i.ExternalSource,
		&i.ExternalID,
		&i.ExternalRating,
		&i.ExternalRatingCount,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.CategoryName,
		&i.ApprovedReviewCount,
		&i.ApprovedRatingAvg,
	)
	return i, err
}

func (q *Queries) queryProductRows(ctx context.Context, sql string, args ...interface{}) ([]ProductRow, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProductRow
	for rows.Next() {
		i, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createProduct = `-- name: CreateProduct :one
INSERT INTO products (title, description, price, image_url, category_id, is_active, stock_quantity)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + productColumns

type CreateProductParams struct {
	Title         string
	Description   string
	Price         pgtype.Numeric
	ImageUrl      string
	CategoryID    pgtype.UUID
	IsActive      bool
	StockQuantity int32
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.Title,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
		arg.CategoryID,
		arg.IsActive,
		arg.StockQuantity,
	)
	return scanProduct(row)
}

const insertExternalProduct = `-- name: InsertExternalProduct :one
INSERT INTO products (
    title, description, price, image_url, category_id, stock_quantity,
    external_source, external_id, external_rating, external_rating_count
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (external_source, external_id) DO NOTHING
RETURNING ` + productColumns

type InsertExternalProductParams struct {
	Title               string
	Description         string
	Price               pgtype.Numeric
	ImageUrl            string
	CategoryID          pgtype.UUID
	StockQuantity       int32
	ExternalSource      pgtype.Text
	ExternalID          pgtype.Text
	ExternalRating      pgtype.Numeric
	ExternalRatingCount int32
}

// InsertExternalProduct returns pgx.ErrNoRows when the external key is
// already present.
func (q *Queries) InsertExternalProduct(ctx context.Context, arg InsertExternalProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, insertExternalProduct,
		arg.Title,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
		arg.CategoryID,
		arg.StockQuantity,
		arg.ExternalSource,
		arg.ExternalID,
		arg.ExternalRating,
		arg.ExternalRatingCount,
	)
	return scanProduct(row)
}

const productExistsByExternalID = `-- name: ProductExistsByExternalID :one
SELECT EXISTS (
    SELECT 1 FROM products WHERE external_source = $1 AND external_id = $2
)`

type ProductExistsByExternalIDParams struct {
	ExternalSource string
	ExternalID     string
}

func (q *Queries) ProductExistsByExternalID(ctx context.Context, arg ProductExistsByExternalIDParams) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, productExistsByExternalID, arg.ExternalSource, arg.ExternalID).Scan(&exists)
	return exists, err
}

const getProductByID = `-- name: GetProductByID :one
` + productRowSelect + `
WHERE p.id = $1`

func (q *Queries) GetProductByID(ctx context.Context, id pgtype.UUID) (ProductRow, error) {
	return scanProductRow(q.db.QueryRow(ctx, getProductByID, id))
}

const productFilterWhere = `
WHERE p.is_active
  AND ($1::uuid IS NULL OR p.category_id = $1::uuid)
  AND ($2::numeric IS NULL OR p.price >= $2::numeric)
  AND ($3::numeric IS NULL OR p.price <= $3::numeric)
  AND ($4::text = ''
       OR p.title ILIKE '%' || $4::text || '%'
       OR p.description ILIKE '%' || $4::text || '%'
       OR c.name ILIKE '%' || $4::text || '%')`

const listProducts = `-- name: ListProducts :many
` + productRowSelect + productFilterWhere + `
ORDER BY p.title, p.id
LIMIT $5 OFFSET $6`

type ListProductsParams struct {
	CategoryID pgtype.UUID
	MinPrice   pgtype.Numeric
	MaxPrice   pgtype.Numeric
	Search     string
	Limit      int32
	Offset     int32
}

func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]ProductRow, error) {
	return q.queryProductRows(ctx, listProducts,
		arg.CategoryID,
		arg.MinPrice,
		arg.MaxPrice,
		arg.Search,
		arg.Limit,
		arg.Offset,
	)
}

const countProducts = `-- name: CountProducts :one
SELECT COUNT(*)
FROM products p
JOIN categories c ON c.id = p.category_id` + productFilterWhere

type CountProductsParams struct {
	CategoryID pgtype.UUID
	MinPrice   pgtype.Numeric
	MaxPrice   pgtype.Numeric
	Search     string
}

func (q *Queries) CountProducts(ctx context.Context, arg CountProductsParams) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countProducts,
		arg.CategoryID,
		arg.MinPrice,
		arg.MaxPrice,
		arg.Search,
	).Scan(&count)
	return count, err
}

const listFeaturedProducts = `-- name: ListFeaturedProducts :many
` + productRowSelect + `
WHERE p.is_active
ORDER BY COALESCE(r.avg_rating, p.external_rating::float8, 0) DESC, p.title
LIMIT $1`

func (q *Queries) ListFeaturedProducts(ctx context.Context, limit int32) ([]ProductRow, error) {
	return q.queryProductRows(ctx, listFeaturedProducts, limit)
}

const listProductsByCategory = `-- name: ListProductsByCategory :many
` + productRowSelect + `
WHERE p.is_active AND p.category_id = $1
ORDER BY p.title`

func (q *Queries) ListProductsByCategory(ctx context.Context, categoryID pgtype.UUID) ([]ProductRow, error) {
	return q.queryProductRows(ctx, listProductsByCategory, categoryID)
}

const updateProduct = `-- name: UpdateProduct :one
UPDATE products SET
    title = $2,
    description = $3,
    price = $4,
    image_url = $5,
    category_id = $6,
    is_active = $7,
    stock_quantity = $8,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + productColumns

type UpdateProductParams struct {
	ID            pgtype.UUID
	Title         string
	Description   string
	Price         pgtype.Numeric
	ImageUrl      string
	CategoryID    pgtype.UUID
	IsActive      bool
	StockQuantity int32
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, updateProduct,
		arg.ID,
		arg.Title,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
		arg.CategoryID,
		arg.IsActive,
		arg.StockQuantity,
	)
	return scanProduct(row)
}

const deactivateProduct = `-- name: DeactivateProduct :execrows
UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`

func (q *Queries) DeactivateProduct(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deactivateProduct, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const decrementProductStock = `-- name: DecrementProductStock :execrows
UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = NOW()
WHERE id = $1 AND stock_quantity >= $2`

type DecrementProductStockParams struct {
	ID       pgtype.UUID
	Quantity int32
}

// DecrementProductStock affects no rows when stock is insufficient.
func (q *Queries) DecrementProductStock(ctx context.Context, arg DecrementProductStockParams) (int64, error) {
	result, err := q.db.Exec(ctx, decrementProductStock, arg.ID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const countProductsTotal = `-- name: CountAllProducts :one
SELECT COUNT(*) FROM products`

func (q *Queries) CountAllProducts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countProductsTotal).Scan(&count)
	return count, err
}
