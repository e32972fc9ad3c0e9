package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/repository"
)

// WishlistService implements domain.WishlistService using PostgreSQL.
type WishlistService struct {
	repo repository.Querier
}

// Compile-time check that WishlistService implements domain.WishlistService.
var _ domain.WishlistService = (*WishlistService)(nil)

// NewWishlistService creates a new PostgreSQL-backed wishlist service.
func NewWishlistService(repo repository.Querier) *WishlistService {
	return &WishlistService{
		repo: repo,
	}
}

func (s *WishlistService) List(ctx context.Context, userID uuid.UUID) ([]domain.WishlistItem, error) {
	rows, err := s.repo.ListWishlistItems(ctx, pgUUID(userID))
	if err != nil {
		return nil, domain.Internal(err, "wishlist.list", "failed to list wishlist")
	}

	items := make([]domain.WishlistItem, len(rows))
	for i, row := range rows {
		items[i] = domain.WishlistItem{
			ProductID:    fromPgUUID(row.ProductID),
			ProductTitle: row.ProductTitle,
			Price:        fromPgNumeric(row.ProductPrice),
			ImageURL:     row.ProductImage,
			IsActive:     row.ProductActive,
			AddedAt:      row.AddedAt.Time,
		}
	}
	return items, nil
}

// Add saves an active product. Saving it twice is a no-op.
func (s *WishlistService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	const op = "wishlist.add"

	product, err := s.repo.GetProductByID(ctx, pgUUID(productID))
	if err != nil {
		if isNoRows(err) {
			return domain.ErrProductNotFound
		}
		return domain.Internal(err, op, "failed to get product")
	}
	if !product.IsActive {
		return domain.ErrProductInactive
	}

	if _, err := s.repo.AddWishlistItem(ctx, repository.WishlistItemParams{
		UserID:    pgUUID(userID),
		ProductID: product.ID,
	}); err != nil {
		return domain.Internal(err, op, "failed to add wishlist item")
	}
	return nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	n, err := s.repo.RemoveWishlistItem(ctx, repository.WishlistItemParams{
		UserID:    pgUUID(userID),
		ProductID: pgUUID(productID),
	})
	if err != nil {
		return domain.Internal(err, "wishlist.remove", "failed to remove wishlist item")
	}
	if n == 0 {
		return domain.NotFound("wishlist.remove", "wishlist item", productID.String())
	}
	return nil
}

func (s *WishlistService) Contains(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	ok, err := s.repo.WishlistContains(ctx, repository.WishlistItemParams{
		UserID:    pgUUID(userID),
		ProductID: pgUUID(productID),
	})
	if err != nil {
		return false, domain.Internal(err, "wishlist.contains", "failed to check wishlist")
	}
	return ok, nil
}
