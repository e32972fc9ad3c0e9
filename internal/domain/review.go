package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)

// Review is a shopper's rating of a product. Only approved reviews count
// toward a product's average rating.
type Review struct {
	ID         uuid.UUID
	ProductID  uuid.UUID
	UserID     uuid.UUID
	Username   string
	Rating     int
	Comment    string
	IsApproved bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ReviewInput is a new or edited review.
type ReviewInput struct {
	ProductID uuid.UUID
	Rating    int
	Comment   string
}

var ErrReviewNotFound = &Error{Code: ENOTFOUND, Message: "Review not found"}

// ReviewService manages product reviews and their moderation.
type ReviewService interface {
	ListApproved(ctx context.Context, productID uuid.UUID) ([]Review, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Review, error)
	ListPending(ctx context.Context) ([]Review, error)
	Create(ctx context.Context, userID uuid.UUID, in ReviewInput) (*Review, error)

	// Update edits the caller's own review and returns it to moderation.
	Update(ctx context.Context, userID, id uuid.UUID, in ReviewInput) (*Review, error)

	// Delete removes a review owned by the caller; admins may delete any review.
	Delete(ctx context.Context, caller *Principal, id uuid.UUID) error

	Approve(ctx context.Context, id uuid.UUID) (*Review, error)
}
