package seed

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techtrend/emporium/internal/domain"
)

// =============================================================================
// FAKE SERVICES
// =============================================================================

type fakeCoupons struct {
	domain.CouponService
	codes map[string]bool
}

func (f *fakeCoupons) Create(ctx context.Context, in domain.CouponInput) (*domain.Coupon, error) {
	if f.codes[in.Code] {
		return nil, domain.ErrCouponExists
	}
	f.codes[in.Code] = true
	return &domain.Coupon{ID: uuid.New(), Code: in.Code}, nil
}

type fakeCategories struct {
	domain.CategoryService
	existing []domain.Category
}

func (f *fakeCategories) Create(ctx context.Context, in domain.CategoryInput) (*domain.Category, error) {
	for _, c := range f.existing {
		if c.Name == in.Name {
			return nil, domain.ErrCategoryExists
		}
	}
	c := domain.Category{ID: uuid.New(), Name: in.Name, IsActive: in.IsActive}
	f.existing = append(f.existing, c)
	return &c, nil
}

func (f *fakeCategories) List(ctx context.Context) ([]domain.Category, error) {
	return f.existing, nil
}

type fakeProducts struct {
	domain.ProductService
	created []domain.ProductInput
	failAt  int
}

func (f *fakeProducts) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if f.failAt > 0 && len(f.created)+1 == f.failAt {
		return nil, errors.New("insert failed")
	}
	f.created = append(f.created, in)
	return &domain.Product{ID: uuid.New(), Title: in.Title}, nil
}

func newTestSeeder(categories *fakeCategories, products *fakeProducts, coupons *fakeCoupons) *Seeder {
	s := NewSeeder(categories, products, coupons, slog.New(slog.DiscardHandler))
	s.now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }
	return s
}

// =============================================================================
// TESTS
// =============================================================================

func TestCoupons(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	coupons := Coupons(now)
	require.Len(t, coupons, 2)

	welcome, save := coupons[0], coupons[1]
	assert.Equal(t, "WELCOME10", welcome.Code)
	assert.Equal(t, "10", welcome.DiscountPercentage.String())
	assert.Equal(t, "50", welcome.MaxDiscountAmount.String())
	assert.Equal(t, "100", welcome.MinimumOrderAmount.String())

	assert.Equal(t, "SAVE15", save.Code)
	assert.Equal(t, "15", save.DiscountPercentage.String())
	assert.Equal(t, "100", save.MaxDiscountAmount.String())
	assert.Equal(t, "200", save.MinimumOrderAmount.String())

	for _, c := range coupons {
		assert.Equal(t, now, c.ValidFrom)
		assert.Equal(t, now.AddDate(1, 0, 0), c.ValidTo)
		assert.True(t, c.IsActive)
	}
}

func TestSeeder_Run(t *testing.T) {
	categories := &fakeCategories{}
	products := &fakeProducts{}
	coupons := &fakeCoupons{codes: map[string]bool{}}
	s := newTestSeeder(categories, products, coupons)

	res, err := s.Run(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, Result{Coupons: 2, Products: 5}, res)

	require.Len(t, categories.existing, 1)
	demoID := categories.existing[0].ID
	for _, p := range products.created {
		assert.Equal(t, demoID, p.CategoryID)
		assert.NotEmpty(t, p.Title)
		assert.True(t, p.Price.IsPositive(), p.Price.String())
		assert.Equal(t, int32(2), -p.Price.Exponent())
		assert.Positive(t, p.StockQuantity)
	}

	// A second run reuses the category and skips existing coupons.
	res, err = s.Run(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, Result{Coupons: 0, Products: 3}, res)
	assert.Len(t, categories.existing, 1)
	assert.Len(t, products.created, 8)
	for _, p := range products.created[5:] {
		assert.Equal(t, demoID, p.CategoryID)
	}
}

func TestSeeder_Run_CouponsOnly(t *testing.T) {
	products := &fakeProducts{}
	s := newTestSeeder(&fakeCategories{}, products, &fakeCoupons{codes: map[string]bool{"SAVE15": true}})

	res, err := s.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, Result{Coupons: 1}, res)
	assert.Empty(t, products.created)
}

func TestSeeder_SeedProducts_StopsOnError(t *testing.T) {
	products := &fakeProducts{failAt: 3}
	s := newTestSeeder(&fakeCategories{}, products, &fakeCoupons{codes: map[string]bool{}})

	n, err := s.SeedProducts(context.Background(), 10)
	assert.Error(t, err)
	assert.Equal(t, 2, n)
}
