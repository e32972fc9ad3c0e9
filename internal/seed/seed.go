// Package seed loads demo data: the launch coupons and a batch of fake
// products in a demo category.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/techtrend/emporium/internal/domain"
)

// DemoCategory holds every generated product.
const DemoCategory = "Demo Gadgets"

var productKinds = []string{
	"Headphones", "Keyboard", "Monitor", "Backpack", "Smartwatch",
	"Speaker", "Webcam", "Charger", "Drone", "Tablet",
}

// Coupons returns the launch coupons, valid for one year from now.
func Coupons(now time.Time) []domain.CouponInput {
	d := decimal.RequireFromString
	ptr := func(s string) *decimal.Decimal {
		v := d(s)
		return &v
	}
	return []domain.CouponInput{
		{
			Code:               "WELCOME10",
			Description:        "Welcome discount - 10% off",
			DiscountPercentage: d("10"),
			MaxDiscountAmount:  ptr("50"),
			MinimumOrderAmount: ptr("100"),
			ValidFrom:          now,
			ValidTo:            now.AddDate(1, 0, 0),
			UsageLimit:         1000,
			IsActive:           true,
		},
		{
			Code:               "SAVE15",
			Description:        "Save 15% on orders over $200",
			DiscountPercentage: d("15"),
			MaxDiscountAmount:  ptr("100"),
			MinimumOrderAmount: ptr("200"),
			ValidFrom:          now,
			ValidTo:            now.AddDate(1, 0, 0),
			UsageLimit:         500,
			IsActive:           true,
		},
	}
}

// Seeder writes demo data through the domain services, so everything it
// creates passes the same validation as API writes.
type Seeder struct {
	categories domain.CategoryService
	products   domain.ProductService
	coupons    domain.CouponService
	logger     *slog.Logger
	now        func() time.Time
}

// NewSeeder creates a seeder.
func NewSeeder(
	categories domain.CategoryService,
	products domain.ProductService,
	coupons domain.CouponService,
	logger *slog.Logger,
) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		categories: categories,
		products:   products,
		coupons:    coupons,
		logger:     logger,
		now:        time.Now,
	}
}

// Result counts the rows a seed run created.
type Result struct {
	Coupons  int
	Products int
}

// Run seeds the coupons and then n fake products. Existing coupons are
// left alone; products are always added.
func (s *Seeder) Run(ctx context.Context, n int) (Result, error) {
	var res Result

	created, err := s.SeedCoupons(ctx)
	if err != nil {
		return res, err
	}
	res.Coupons = created

	if n <= 0 {
		return res, nil
	}
	created, err = s.SeedProducts(ctx, n)
	res.Products = created
	return res, err
}

// SeedCoupons creates the launch coupons that do not exist yet.
func (s *Seeder) SeedCoupons(ctx context.Context) (int, error) {
	created := 0
	for _, in := range Coupons(s.now().UTC()) {
		_, err := s.coupons.Create(ctx, in)
		if errors.Is(err, domain.ErrCouponExists) {
			s.logger.Debug("seed: coupon exists", "code", in.Code)
			continue
		}
		if err != nil {
			return created, fmt.Errorf("seed coupon %s: %w", in.Code, err)
		}
		created++
		s.logger.Info("seed: coupon created", "code", in.Code)
	}
	return created, nil
}

// SeedProducts adds n fake products to DemoCategory.
func (s *Seeder) SeedProducts(ctx context.Context, n int) (int, error) {
	category, err := s.demoCategory(ctx)
	if err != nil {
		return 0, err
	}

	for i := 0; i < n; i++ {
		in := fakeProduct(category.ID)
		if _, err := s.products.Create(ctx, in); err != nil {
			return i, fmt.Errorf("seed product %q: %w", in.Title, err)
		}
	}

	s.logger.Info("seed: products created", "count", n, "category", category.Name)
	return n, nil
}

func (s *Seeder) demoCategory(ctx context.Context) (*domain.Category, error) {
	category, err := s.categories.Create(ctx, domain.CategoryInput{
		Name:        DemoCategory,
		Description: "Generated products for local development",
		IsActive:    true,
	})
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, domain.ErrCategoryExists) {
		return nil, fmt.Errorf("seed category: %w", err)
	}

	all, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	for i := range all {
		if strings.EqualFold(all[i].Name, DemoCategory) {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("seed category %q exists but was not listed", DemoCategory)
}

func fakeProduct(categoryID uuid.UUID) domain.ProductInput {
	title := fmt.Sprintf("%s %s", capitalize(faker.Word()), productKinds[rand.IntN(len(productKinds))])
	return domain.ProductInput{
		Title:         title,
		Description:   faker.Paragraph(),
		Price:         decimal.New(int64(rand.IntN(49_900)+100), -2),
		ImageURL:      "https://images.techtrend.example/products/" + slug.Make(title) + ".jpg",
		CategoryID:    categoryID,
		StockQuantity: rand.IntN(50) + 1,
		IsActive:      true,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
