package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const addWishlistItem = `-- name: AddWishlistItem :execrows
INSERT INTO wishlist_items (user_id, product_id)
VALUES ($1, $2)
ON CONFLICT (user_id, product_id) DO NOTHING`

type WishlistItemParams struct {
	UserID    pgtype.UUID
	ProductID pgtype.UUID
}

func (q *Queries) AddWishlistItem(ctx context.Context, arg WishlistItemParams) (int64, error) {
	result, err := q.db.Exec(ctx, addWishlistItem, arg.UserID, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const removeWishlistItem = `-- name: RemoveWishlistItem :execrows
DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`

func (q *Queries) RemoveWishlistItem(ctx context.Context, arg WishlistItemParams) (int64, error) {
	result, err := q.db.Exec(ctx, removeWishlistItem, arg.UserID, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const wishlistContains = `-- name: WishlistContains :one
SELECT EXISTS (
    SELECT 1 FROM wishlist_items WHERE user_id = $1 AND product_id = $2
)`

func (q *Queries) WishlistContains(ctx context.Context, arg WishlistItemParams) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, wishlistContains, arg.UserID, arg.ProductID).Scan(&exists)
	return exists, err
}

const listWishlistItems = `-- name: ListWishlistItems :many
SELECT w.product_id, w.added_at, p.title, p.price, p.image_url, p.is_active
FROM wishlist_items w
JOIN products p ON p.id = w.product_id
WHERE w.user_id = $1
ORDER BY w.added_at DESC`

type ListWishlistItemsRow struct {
	ProductID     pgtype.UUID
	AddedAt       pgtype.Timestamptz
	ProductTitle  string
	ProductPrice  pgtype.Numeric
	ProductImage  string
	ProductActive bool
}

func (q *Queries) ListWishlistItems(ctx context.Context, userID pgtype.UUID) ([]ListWishlistItemsRow, error) {
	rows, err := q.db.Query(ctx, listWishlistItems, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListWishlistItemsRow
	for rows.Next() {
		var i ListWishlistItemsRow
		if err := rows.Scan(
			&i.ProductID,
			&i.AddedAt,
			&i.ProductTitle,
			&i.ProductPrice,
			&i.ProductImage,
			&i.ProductActive,
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
