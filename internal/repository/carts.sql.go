package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const cartColumns = `id, user_id, is_active, created_at, updated_at`

func scanCart(row interface{ Scan(...any) error }) (Cart, error) {
	var i Cart
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getActiveCartByUser = `-- name: GetActiveCartByUser :one
SELECT ` + cartColumns + ` FROM carts WHERE user_id = $1 AND is_active`

func (q *Queries) GetActiveCartByUser(ctx context.Context, userID pgtype.UUID) (Cart, error) {
	return scanCart(q.db.QueryRow(ctx, getActiveCartByUser, userID))
}

const createActiveCart = `-- name: CreateActiveCart :one
INSERT INTO carts (user_id) VALUES ($1)
ON CONFLICT (user_id) WHERE is_active DO NOTHING
RETURNING ` + cartColumns

// CreateActiveCart returns pgx.ErrNoRows when the user already has an
// active cart, so callers can fall back to GetActiveCartByUser.
func (q *Queries) CreateActiveCart(ctx context.Context, userID pgtype.UUID) (Cart, error) {
	return scanCart(q.db.QueryRow(ctx, createActiveCart, userID))
}

const lockCart = `-- name: LockCart :exec
SELECT id FROM carts WHERE id = $1 FOR UPDATE`

// LockCart serialises mutations of one cart for the rest of the transaction.
func (q *Queries) LockCart(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, lockCart, id)
	return err
}

const touchCart = `-- name: TouchCart :exec
UPDATE carts SET updated_at = NOW() WHERE id = $1`

func (q *Queries) TouchCart(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, touchCart, id)
	return err
}

const deactivateCart = `-- name: DeactivateCart :exec
UPDATE carts SET is_active = FALSE, updated_at = NOW() WHERE id = $1`

func (q *Queries) DeactivateCart(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, deactivateCart, id)
	return err
}

const getCartItems = `-- name: GetCartItems :many
SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.unit_price, ci.added_at, ci.updated_at,
    p.title AS product_title,
    p.image_url AS product_image_url,
    p.stock_quantity AS product_stock,
    p.is_active AS product_active
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.added_at, ci.id`

type GetCartItemsRow struct {
	CartItem
	ProductTitle    string
	ProductImageUrl string
	ProductStock    int32
	ProductActive   bool
}

func (q *Queries) GetCartItems(ctx context.Context, cartID pgtype.UUID) ([]GetCartItemsRow, error) {
	rows, err := q.db.Query(ctx, getCartItems, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GetCartItemsRow
	for rows.Next() {
		var i GetCartItemsRow
		if err := rows.Scan(
			&i.ID,
			&i.CartID,
			&i.ProductID,
			&i.Quantity,
			&i.UnitPrice,
			&i.AddedAt,
			&i.UpdatedAt,
			&i.ProductTitle,
			&i.ProductImageUrl,
			&i.ProductStock,
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

const cartItemColumns = `id, cart_id, product_id, quantity, unit_price, added_at, updated_at`

func scanCartItem(row interface{ Scan(...any) error }) (CartItem, error) {
	var i CartItem
	err := row.Scan(
		&i.ID,
		&i.CartID,
		&i.ProductID,
		&i.Quantity,
		&i.UnitPrice,
		&i.AddedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getCartItem = `-- name: GetCartItem :one
SELECT ` + cartItemColumns + ` FROM cart_items WHERE cart_id = $1 AND product_id = $2`

type GetCartItemParams struct {
	CartID    pgtype.UUID
	ProductID pgtype.UUID
}

func (q *Queries) GetCartItem(ctx context.Context, arg GetCartItemParams) (CartItem, error) {
	return scanCartItem(q.db.QueryRow(ctx, getCartItem, arg.CartID, arg.ProductID))
}

const upsertCartItem = `-- name: UpsertCartItem :one
INSERT INTO cart_items (cart_id, product_id, quantity, unit_price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, product_id) DO UPDATE SET
    quantity = cart_items.quantity + EXCLUDED.quantity,
    unit_price = EXCLUDED.unit_price,
    updated_at = NOW()
RETURNING ` + cartItemColumns

type UpsertCartItemParams struct {
	CartID    pgtype.UUID
	ProductID pgtype.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
}

// UpsertCartItem adds to an existing line's quantity and refreshes its
// unit price, or inserts a new line.
func (q *Queries) UpsertCartItem(ctx context.Context, arg UpsertCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, upsertCartItem,
		arg.CartID,
		arg.ProductID,
		arg.Quantity,
		arg.UnitPrice,
	)
	return scanCartItem(row)
}

const setCartItemQuantity = `-- name: SetCartItemQuantity :execrows
UPDATE cart_items SET quantity = $3, updated_at = NOW()
WHERE cart_id = $1 AND product_id = $2`

type SetCartItemQuantityParams struct {
	CartID    pgtype.UUID
	ProductID pgtype.UUID
	Quantity  int32
}

func (q *Queries) SetCartItemQuantity(ctx context.Context, arg SetCartItemQuantityParams) (int64, error) {
	result, err := q.db.Exec(ctx, setCartItemQuantity, arg.CartID, arg.ProductID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteCartItem = `-- name: DeleteCartItem :execrows
DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`

type DeleteCartItemParams struct {
	CartID    pgtype.UUID
	ProductID pgtype.UUID
}

func (q *Queries) DeleteCartItem(ctx context.Context, arg DeleteCartItemParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartItem, arg.CartID, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const clearCartItems = `-- name: ClearCartItems :exec
DELETE FROM cart_items WHERE cart_id = $1`

func (q *Queries) ClearCartItems(ctx context.Context, cartID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, clearCartItems, cartID)
	return err
}
