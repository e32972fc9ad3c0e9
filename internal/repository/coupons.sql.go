package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const couponColumns = `id, code, description, discount_percentage, max_discount_amount, minimum_order_amount, valid_from, valid_to, usage_limit, used_count, is_active, created_at, updated_at`

func scanCoupon(row interface{ Scan(...any) error }) (Coupon, error) {
	var i Coupon
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Description,
		&i.DiscountPercentage,
		&i.MaxDiscountAmount,
		&i.MinimumOrderAmount,
		&i.ValidFrom,
		&i.ValidTo,
		&i.UsageLimit,
		&i.UsedCount,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createCoupon = `-- name: CreateCoupon :one
INSERT INTO coupons (
    code, description, discount_percentage, max_discount_amount, minimum_order_amount,
    valid_from, valid_to, usage_limit, is_active
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + couponColumns

type CreateCouponParams struct {
	Code               string
	Description        string
	DiscountPercentage pgtype.Numeric
	MaxDiscountAmount  pgtype.Numeric
	MinimumOrderAmount pgtype.Numeric
	ValidFrom          pgtype.Timestamptz
	ValidTo            pgtype.Timestamptz
	UsageLimit         int32
	IsActive           bool
}

func (q *Queries) CreateCoupon(ctx context.Context, arg CreateCouponParams) (Coupon, error) {
	row := q.db.QueryRow(ctx, createCoupon,
		arg.Code,
		arg.Description,
		arg.DiscountPercentage,
		arg.MaxDiscountAmount,
		arg.MinimumOrderAmount,
		arg.ValidFrom,
		arg.ValidTo,
		arg.UsageLimit,
		arg.IsActive,
	)
	return scanCoupon(row)
}

const getCouponByID = `-- name: GetCouponByID :one
SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

func (q *Queries) GetCouponByID(ctx context.Context, id pgtype.UUID) (Coupon, error) {
	return scanCoupon(q.db.QueryRow(ctx, getCouponByID, id))
}

const getCouponByCode = `-- name: GetCouponByCode :one
SELECT ` + couponColumns + ` FROM coupons WHERE UPPER(code) = UPPER($1)`

func (q *Queries) GetCouponByCode(ctx context.Context, code string) (Coupon, error) {
	return scanCoupon(q.db.QueryRow(ctx, getCouponByCode, code))
}

const listCoupons = `-- name: ListCoupons :many
SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC`

func (q *Queries) ListCoupons(ctx context.Context) ([]Coupon, error) {
	rows, err := q.db.Query(ctx, listCoupons)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Coupon
	for rows.Next() {
		i, err := scanCoupon(rows)
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

const updateCoupon = `-- name: UpdateCoupon :one
UPDATE coupons SET
    code = $2,
    description = $3,
    discount_percentage = $4,
    max_discount_amount = $5,
    minimum_order_amount = $6,
    valid_from = $7,
    valid_to = $8,
    usage_limit = $9,
    is_active = $10,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + couponColumns

type UpdateCouponParams struct {
	ID                 pgtype.UUID
	Code               string
	Description        string
	DiscountPercentage pgtype.Numeric
	MaxDiscountAmount  pgtype.Numeric
	MinimumOrderAmount pgtype.Numeric
	ValidFrom          pgtype.Timestamptz
	ValidTo            pgtype.Timestamptz
	UsageLimit         int32
	IsActive           bool
}

func (q *Queries) UpdateCoupon(ctx context.Context, arg UpdateCouponParams) (Coupon, error) {
	row := q.db.QueryRow(ctx, updateCoupon,
		arg.ID,
		arg.Code,
		arg.Description,
		arg.DiscountPercentage,
		arg.MaxDiscountAmount,
		arg.MinimumOrderAmount,
		arg.ValidFrom,
		arg.ValidTo,
		arg.UsageLimit,
		arg.IsActive,
	)
	return scanCoupon(row)
}

const deleteCoupon = `-- name: DeleteCoupon :execrows
DELETE FROM coupons WHERE id = $1`

func (q *Queries) DeleteCoupon(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCoupon, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const redeemCoupon = `-- name: RedeemCoupon :execrows
UPDATE coupons SET used_count = used_count + 1, updated_at = NOW()
WHERE id = $1
  AND is_active
  AND used_count < usage_limit
  AND NOW() BETWEEN valid_from AND valid_to`

// RedeemCoupon consumes one use. Zero rows affected means the coupon was
// exhausted, expired or disabled concurrently.
func (q *Queries) RedeemCoupon(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, redeemCoupon, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
