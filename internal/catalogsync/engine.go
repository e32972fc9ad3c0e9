// Package catalogsync imports the FakeStore catalog into the local store.
package catalogsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/fakestore"
	"github.com/techtrend/emporium/internal/repository"
	"github.com/techtrend/emporium/internal/telemetry"
)

// DefaultStock is used for imported products; the remote catalog has no
// notion of inventory.
const DefaultStock = 10

// Catalog is the subset of the FakeStore client the engine reads from.
type Catalog interface {
	GetProducts(ctx context.Context) ([]fakestore.Product, error)
	GetCategories(ctx context.Context) ([]string, error)
}

// Engine copies remote categories and products that are not present
// locally. Existing rows are never updated. Each row is inserted on its
// own, so progress made before a failure is kept.
type Engine struct {
	catalog      Catalog
	repo         repository.Querier
	logger       *slog.Logger
	defaultStock int32
}

var _ domain.CatalogSyncer = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultStock overrides the stock given to imported products.
func WithDefaultStock(n int32) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.defaultStock = n
		}
	}
}

// NewEngine creates a sync engine.
func NewEngine(catalog Catalog, repo repository.Querier, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		catalog:      catalog,
		repo:         repo,
		logger:       logger.With("component", "catalogsync"),
		defaultStock: DefaultStock,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SyncCategories creates a local category for every remote category name
// that is not already known by external id or by name.
func (e *Engine) SyncCategories(ctx context.Context, actor *domain.Principal) (created int, err error) {
	const op = "catalogsync.categories"

	if err := authorize(op, actor); err != nil {
		return 0, err
	}
	defer e.record(ctx, "categories", actor, time.Now(), &created, &err)

	names, err := e.catalog.GetCategories(ctx)
	if err != nil {
		return 0, domain.Unavailable(err, op, "failed to fetch categories from FakeStore")
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		exists, err := e.repo.CategoryExistsByExternalID(ctx, repository.CategoryExistsByExternalIDParams{
			ExternalSource: domain.ExternalSourceFakeStore,
			ExternalID:     name,
		})
		if err != nil {
			return created, domain.Internal(err, op, "failed to check category")
		}
		if exists {
			continue
		}

		_, err = e.repo.GetCategoryByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return created, domain.Internal(err, op, "failed to look up category")
		}

		ok, err := e.insertCategory(ctx, name, "")
		if err != nil {
			return created, domain.Internal(err, op, fmt.Sprintf("failed to import category %q", name))
		}
		if ok {
			created++
		}
	}

	return created, nil
}

// SyncProducts creates a local product for every remote product whose
// external id is not present yet. Missing categories are created on the
// way with a placeholder description.
func (e *Engine) SyncProducts(ctx context.Context, actor *domain.Principal) (created int, err error) {
	const op = "catalogsync.products"

	if err := authorize(op, actor); err != nil {
		return 0, err
	}
	defer e.record(ctx, "products", actor, time.Now(), &created, &err)

	products, err := e.catalog.GetProducts(ctx)
	if err != nil {
		return 0, domain.Unavailable(err, op, "failed to fetch products from FakeStore")
	}

	categoryIDs := make(map[string]pgtype.UUID)

	for _, p := range products {
		externalID := strconv.Itoa(p.ID)

		exists, err := e.repo.ProductExistsByExternalID(ctx, repository.ProductExistsByExternalIDParams{
			ExternalSource: domain.ExternalSourceFakeStore,
			ExternalID:     externalID,
		})
		if err != nil {
			return created, domain.Internal(err, op, "failed to check product")
		}
		if exists {
			continue
		}

		categoryID, err := e.resolveCategory(ctx, categoryIDs, p.Category)
		if err != nil {
			return created, domain.Internal(err, op, fmt.Sprintf("failed to resolve category %q", p.Category))
		}

		_, err = e.repo.InsertExternalProduct(ctx, repository.InsertExternalProductParams{
			Title:               p.Title,
			Description:         p.Description,
			Price:               repository.Numeric(p.Price.Round(2)),
			ImageUrl:            p.Image,
			CategoryID:          categoryID,
			StockQuantity:       e.defaultStock,
			ExternalSource:      pgtype.Text{String: domain.ExternalSourceFakeStore, Valid: true},
			ExternalID:          pgtype.Text{String: externalID, Valid: true},
			ExternalRating:      externalRating(p.Rating.Rate),
			ExternalRatingCount: int32(min(max(p.Rating.Count, 0), domain.MaxQuantity)),
		})
		if err != nil {
			// A concurrent run inserted the same external id first.
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return created, domain.Internal(err, op, fmt.Sprintf("failed to import product %d", p.ID))
		}
		created++
	}

	return created, nil
}

// resolveCategory finds the local category for a remote category name,
// creating it when absent. Results are cached for the duration of a run.
func (e *Engine) resolveCategory(ctx context.Context, cache map[string]pgtype.UUID, name string) (pgtype.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "uncategorized"
	}
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, nil
	}

	row, err := e.repo.GetCategoryByName(ctx, name)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return pgtype.UUID{}, err
	}
	if err != nil {
		if _, err := e.insertCategory(ctx, name, fmt.Sprintf("Products in %s category", name)); err != nil {
			return pgtype.UUID{}, err
		}
		// Re-read so a row created concurrently is picked up too.
		row, err = e.repo.GetCategoryByName(ctx, name)
		if err != nil {
			return pgtype.UUID{}, err
		}
	}

	cache[key] = row.ID
	return row.ID, nil
}

// insertCategory reports false when the row already existed.
func (e *Engine) insertCategory(ctx context.Context, name, description string) (bool, error) {
	_, err := e.repo.InsertExternalCategory(ctx, repository.InsertExternalCategoryParams{
		Name:           name,
		Slug:           slug.Make(name),
		Description:    description,
		ExternalSource: pgtype.Text{String: domain.ExternalSourceFakeStore, Valid: true},
		ExternalID:     pgtype.Text{String: name, Valid: true},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	e.logger.Debug("Imported category", "name", name)
	return true, nil
}

func (e *Engine) record(ctx context.Context, kind string, actor *domain.Principal, start time.Time, created *int, err *error) {
	duration := time.Since(start)
	result := "success"
	if *err != nil {
		result = "error"
	}

	if telemetry.Business != nil {
		telemetry.Business.SyncRuns.WithLabelValues(kind, result).Inc()
		telemetry.Business.SyncImported.WithLabelValues(kind).Add(float64(*created))
		telemetry.Business.SyncDuration.WithLabelValues(kind).Observe(duration.Seconds())
	}

	attrs := []any{
		"kind", kind,
		"created", *created,
		"actor", actor.Username,
		"duration_ms", duration.Milliseconds(),
	}
	if *err != nil {
		e.logger.ErrorContext(ctx, "Catalog sync failed", append(attrs, "error", *err)...)
		return
	}
	e.logger.InfoContext(ctx, "Catalog sync finished", attrs...)
}

func authorize(op string, actor *domain.Principal) error {
	if actor == nil {
		return domain.Unauthorized(op, "Authentication required")
	}
	if !actor.Satisfies(domain.PolicyAdminOnly) {
		return domain.Forbidden(op, "Only administrators can sync the catalog")
	}
	return nil
}

var maxRating = decimal.NewFromInt(5)

// externalRating fits a remote rate into NUMERIC(3,2): two places, 0 to 5.
func externalRating(rate decimal.Decimal) pgtype.Numeric {
	switch {
	case rate.IsNegative():
		rate = decimal.Zero
	case rate.GreaterThan(maxRating):
		rate = maxRating
	}
	return repository.Numeric(rate.Round(2))
}
