package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const reviewColumns = `id, product_id, user_id, rating, comment, is_approved, created_at, updated_at`

func scanReview(row interface{ Scan(...any) error }) (Review, error) {
	var i Review
	err := row.Scan(
		&i.ID,
		&i.ProductID,
		&i.UserID,
		&i.Rating,
		&i.Comment,
		&i.IsApproved,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

// ReviewRow is a review with its author's username.
type ReviewRow struct {
	Review
	Username string
}

const reviewRowSelect = `
SELECT r.id, r.product_id, r.user_id, r.rating, r.comment, r.is_approved, r.created_at, r.updated_at,
    u.username
FROM reviews r
JOIN users u ON u.id = r.user_id`

func (q *Queries) queryReviewRows(ctx context.Context, sql string, args ...interface{}) ([]ReviewRow, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ReviewRow
	for rows.Next() {
		var i ReviewRow
		if err := rows.Scan(
			&i.ID,
			&i.ProductID,
			&i.UserID,
			&i.Rating,
			&i.Comment,
			&i.IsApproved,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.Username,
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

const createReview = `-- name: CreateReview :one
INSERT INTO reviews (product_id, user_id, rating, comment)
VALUES ($1, $2, $3, $4)
RETURNING ` + reviewColumns

type CreateReviewParams struct {
	ProductID pgtype.UUID
	UserID    pgtype.UUID
	Rating    int16
	Comment   string
}

func (q *Queries) CreateReview(ctx context.Context, arg CreateReviewParams) (Review, error) {
	row := q.db.QueryRow(ctx, createReview, arg.ProductID, arg.UserID, arg.Rating, arg.Comment)
	return scanReview(row)
}

const getReviewByID = `-- name: GetReviewByID :one
SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

func (q *Queries) GetReviewByID(ctx context.Context, id pgtype.UUID) (Review, error) {
	return scanReview(q.db.QueryRow(ctx, getReviewByID, id))
}

const listApprovedReviewsByProduct = `-- name: ListApprovedReviewsByProduct :many
` + reviewRowSelect + `
WHERE r.product_id = $1 AND r.is_approved
ORDER BY r.created_at DESC`

func (q *Queries) ListApprovedReviewsByProduct(ctx context.Context, productID pgtype.UUID) ([]ReviewRow, error) {
	return q.queryReviewRows(ctx, listApprovedReviewsByProduct, productID)
}

const listReviewsByUser = `-- name: ListReviewsByUser :many
` + reviewRowSelect + `
WHERE r.user_id = $1
ORDER BY r.created_at DESC`

func (q *Queries) ListReviewsByUser(ctx context.Context, userID pgtype.UUID) ([]ReviewRow, error) {
	return q.queryReviewRows(ctx, listReviewsByUser, userID)
}

const listPendingReviews = `-- name: ListPendingReviews :many
` + reviewRowSelect + `
WHERE NOT r.is_approved
ORDER BY r.created_at`

func (q *Queries) ListPendingReviews(ctx context.Context) ([]ReviewRow, error) {
	return q.queryReviewRows(ctx, listPendingReviews)
}

const updateReview = `-- name: UpdateReview :one
UPDATE reviews SET rating = $2, comment = $3, is_approved = FALSE, updated_at = NOW()
WHERE id = $1
RETURNING ` + reviewColumns

type UpdateReviewParams struct {
	ID      pgtype.UUID
	Rating  int16
	Comment string
}

func (q *Queries) UpdateReview(ctx context.Context, arg UpdateReviewParams) (Review, error) {
	return scanReview(q.db.QueryRow(ctx, updateReview, arg.ID, arg.Rating, arg.Comment))
}

const approveReview = `-- name: ApproveReview :one
UPDATE reviews SET is_approved = TRUE, updated_at = NOW()
WHERE id = $1
RETURNING ` + reviewColumns

func (q *Queries) ApproveReview(ctx context.Context, id pgtype.UUID) (Review, error) {
	return scanReview(q.db.QueryRow(ctx, approveReview, id))
}

const deleteReview = `-- name: DeleteReview :execrows
DELETE FROM reviews WHERE id = $1`

func (q *Queries) DeleteReview(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteReview, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
