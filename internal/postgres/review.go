package postgres

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/repository"
)

// ReviewService implements domain.ReviewService using PostgreSQL.
// New and edited reviews wait for staff approval before they are listed.
type ReviewService struct {
	repo repository.Querier
}

// Compile-time check that ReviewService implements domain.ReviewService.
var _ domain.ReviewService = (*ReviewService)(nil)

// NewReviewService creates a new PostgreSQL-backed review service.
func NewReviewService(repo repository.Querier) *ReviewService {
	return &ReviewService{
		repo: repo,
	}
}

func (s *ReviewService) ListApproved(ctx context.Context, productID uuid.UUID) ([]domain.Review, error) {
	rows, err := s.repo.ListApprovedReviewsByProduct(ctx, pgUUID(productID))
	if err != nil {
		return nil, domain.Internal(err, "review.list_approved", "failed to list reviews")
	}
	return reviewsFromRows(rows), nil
}

func (s *ReviewService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Review, error) {
	rows, err := s.repo.ListReviewsByUser(ctx, pgUUID(userID))
	if err != nil {
		return nil, domain.Internal(err, "review.list_by_user", "failed to list reviews")
	}
	return reviewsFromRows(rows), nil
}

func (s *ReviewService) ListPending(ctx context.Context) ([]domain.Review, error) {
	rows, err := s.repo.ListPendingReviews(ctx)
	if err != nil {
		return nil, domain.Internal(err, "review.list_pending", "failed to list reviews")
	}
	return reviewsFromRows(rows), nil
}

// Create stores an unapproved review for an active product.
func (s *ReviewService) Create(ctx context.Context, userID uuid.UUID, in domain.ReviewInput) (*domain.Review, error) {
	const op = "review.create"

	in.Comment = strings.TrimSpace(in.Comment)
	if err := validateReviewInput(op, in); err != nil {
		return nil, err
	}

	product, err := s.repo.GetProductByID(ctx, pgUUID(in.ProductID))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, op, "failed to get product")
	}
	if !product.IsActive {
		return nil, domain.ErrProductInactive
	}

	row, err := s.repo.CreateReview(ctx, repository.CreateReviewParams{
		ProductID: product.ID,
		UserID:    pgUUID(userID),
		Rating:    int16(in.Rating),
		Comment:   in.Comment,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create review")
	}
	return reviewFromRow(row, ""), nil
}

// Update edits the caller's own review and sends it back to moderation.
func (s *ReviewService) Update(ctx context.Context, userID, id uuid.UUID, in domain.ReviewInput) (*domain.Review, error) {
	const op = "review.update"

	in.Comment = strings.TrimSpace(in.Comment)
	in.ProductID = uuid.Nil
	if err := validateReviewInput(op, in); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetReviewByID(ctx, pgUUID(id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, domain.Internal(err, op, "failed to get review")
	}
	if fromPgUUID(existing.UserID) != userID {
		return nil, domain.Forbidden(op, "you can only edit your own reviews")
	}

	row, err := s.repo.UpdateReview(ctx, repository.UpdateReviewParams{
		ID:      existing.ID,
		Rating:  int16(in.Rating),
		Comment: in.Comment,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to update review")
	}
	return reviewFromRow(row, ""), nil
}

// Delete removes a review. Owners may delete their own; admins may delete any.
func (s *ReviewService) Delete(ctx context.Context, caller *domain.Principal, id uuid.UUID) error {
	const op = "review.delete"

	if caller == nil {
		return domain.Unauthorized(op, "authentication required")
	}

	existing, err := s.repo.GetReviewByID(ctx, pgUUID(id))
	if err != nil {
		if isNoRows(err) {
			return domain.ErrReviewNotFound
		}
		return domain.Internal(err, op, "failed to get review")
	}
	if fromPgUUID(existing.UserID) != caller.UserID && !caller.Satisfies(domain.PolicyAdminOnly) {
		return domain.Forbidden(op, "you can only delete your own reviews")
	}

	n, err := s.repo.DeleteReview(ctx, existing.ID)
	if err != nil {
		return domain.Internal(err, op, "failed to delete review")
	}
	if n == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

// Approve publishes a review so it counts toward the product rating.
func (s *ReviewService) Approve(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	row, err := s.repo.ApproveReview(ctx, pgUUID(id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, domain.Internal(err, "review.approve", "failed to approve review")
	}
	return reviewFromRow(row, ""), nil
}

func validateReviewInput(op string, in domain.ReviewInput) error {
	var err error
	if in.Rating < domain.MinRating || in.Rating > domain.MaxRating {
		err = domain.AddFieldError(err, "rating", "must be between 1 and 5")
	}
	if utf8.RuneCountInString(in.Comment) > domain.MaxCommentLength {
		err = domain.AddFieldError(err, "comment", "must be at most 1000 characters")
	}
	if ve, ok := err.(*domain.ValidationError); ok {
		ve.Op = op
		return ve
	}
	return nil
}

func reviewsFromRows(rows []repository.ReviewRow) []domain.Review {
	reviews := make([]domain.Review, len(rows))
	for i, row := range rows {
		reviews[i] = *reviewFromRow(row.Review, row.Username)
	}
	return reviews
}

func reviewFromRow(row repository.Review, username string) *domain.Review {
	return &domain.Review{
		ID:         fromPgUUID(row.ID),
		ProductID:  fromPgUUID(row.ProductID),
		UserID:     fromPgUUID(row.UserID),
		Username:   username,
		Rating:     int(row.Rating),
		Comment:    row.Comment,
		IsApproved: row.IsApproved,
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}
