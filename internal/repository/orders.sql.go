package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, order_number, user_id, status, subtotal, discount_amount, total, coupon_code, shipping_address, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.UserID,
		&i.Status,
		&i.Subtotal,
		&i.DiscountAmount,
		&i.Total,
		&i.CouponCode,
		&i.ShippingAddress,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) queryOrders(ctx context.Context, sql string, args ...interface{}) ([]Order, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		i, err := scanOrder(rows)
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

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (order_number, user_id, status, subtotal, discount_amount, total, coupon_code, shipping_address)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	OrderNumber     string
	UserID          pgtype.UUID
	Status          string
	Subtotal        pgtype.Numeric
	DiscountAmount  pgtype.Numeric
	Total           pgtype.Numeric
	CouponCode      pgtype.Text
	ShippingAddress string
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber,
		arg.UserID,
		arg.Status,
		arg.Subtotal,
		arg.DiscountAmount,
		arg.Total,
		arg.CouponCode,
		arg.ShippingAddress,
	)
	return scanOrder(row)
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, product_id, product_title, quantity, unit_price, line_total)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, order_id, product_id, product_title, quantity, unit_price, line_total`

type CreateOrderItemParams struct {
	OrderID      pgtype.UUID
	ProductID    pgtype.UUID
	ProductTitle string
	Quantity     int32
	UnitPrice    pgtype.Numeric
	LineTotal    pgtype.Numeric
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.ProductID,
		arg.ProductTitle,
		arg.Quantity,
		arg.UnitPrice,
		arg.LineTotal,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.ProductTitle,
		&i.Quantity,
		&i.UnitPrice,
		&i.LineTotal,
	)
	return i, err
}

const getOrderByID = `-- name: GetOrderByID :one
SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

func (q *Queries) GetOrderByID(ctx context.Context, id pgtype.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderByID, id))
}

const listOrdersByUser = `-- name: ListOrdersByUser :many
SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

func (q *Queries) ListOrdersByUser(ctx context.Context, userID pgtype.UUID) ([]Order, error) {
	return q.queryOrders(ctx, listOrdersByUser, userID)
}

const listOrders = `-- name: ListOrders :many
SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

func (q *Queries) ListOrders(ctx context.Context) ([]Order, error) {
	return q.queryOrders(ctx, listOrders)
}

const getOrderItems = `-- name: GetOrderItems :many
SELECT id, order_id, product_id, product_title, quantity, unit_price, line_total
FROM order_items WHERE order_id = $1 ORDER BY product_title`

func (q *Queries) GetOrderItems(ctx context.Context, orderID pgtype.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, getOrderItems, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var i OrderItem
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.ProductTitle,
			&i.Quantity,
			&i.UnitPrice,
			&i.LineTotal,
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

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders SET status = $2, updated_at = NOW()
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID     pgtype.UUID
	Status string
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status))
}
