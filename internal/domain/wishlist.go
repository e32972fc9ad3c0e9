package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WishlistItem is a product saved by a user.
type WishlistItem struct {
	ProductID    uuid.UUID
	ProductTitle string
	Price        decimal.Decimal
	ImageURL     string
	IsActive     bool
	AddedAt      time.Time
}

// WishlistService manages a user's saved products. Each product appears once.
type WishlistService interface {
	List(ctx context.Context, userID uuid.UUID) ([]WishlistItem, error)

	// Add is idempotent; adding a saved product again is not an error.
	Add(ctx context.Context, userID, productID uuid.UUID) error

	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}
