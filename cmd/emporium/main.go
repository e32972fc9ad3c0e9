package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/techtrend/emporium/internal"
	"github.com/techtrend/emporium/internal/bootstrap"
	"github.com/techtrend/emporium/internal/catalogsync"
	"github.com/techtrend/emporium/internal/domain"
	"github.com/techtrend/emporium/internal/fakestore"
	"github.com/techtrend/emporium/internal/postgres"
	"github.com/techtrend/emporium/internal/repository"
	"github.com/techtrend/emporium/internal/seed"
	"github.com/urfave/cli/v3"
)

// cliOperator is the principal used for catalog syncs started from the
// command line. Shell access to the host already implies full control.
var cliOperator = &domain.Principal{
	Username: "cli",
	Roles:    []domain.Role{domain.RoleSuperAdmin},
}

// env bundles what every subcommand needs.
type env struct {
	cfg    *internal.Config
	logger *slog.Logger
}

func loadEnv() (*env, error) {
	cfg, err := internal.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("config initialization failed: %w", err)
	}
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(logger)
	return &env{cfg: cfg, logger: logger}, nil
}

func (e *env) openSQL(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("pgx", e.cfg.DatabaseUrl)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return db, nil
}

func (e *env) openPool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, e.cfg.DatabaseUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// withSQL runs fn against a database/sql handle, as goose expects.
func withSQL(fn func(db *sql.DB) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		db, err := e.openSQL(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(db)
	}
}

// withStore runs fn against a pooled repository store.
func withStore(fn func(ctx context.Context, c *cli.Command, e *env, store *repository.PoolStore) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		pool, err := e.openPool(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()
		return fn(ctx, c, e, repository.NewStore(pool))
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage database migrations",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: withSQL(func(db *sql.DB) error {
					if err := internal.RunMigrations(db); err != nil {
						return err
					}
					log.Println("Migrations applied")
					return nil
				}),
			},
			{
				Name:   "down",
				Usage:  "Roll back the most recent migration",
				Action: withSQL(internal.RollbackMigration),
			},
			{
				Name:   "status",
				Usage:  "Print the migration status",
				Action: withSQL(internal.MigrationStatus),
			},
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Create the launch coupons and demo products",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "products",
				Usage: "number of demo products to add",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "coupons-only",
				Usage: "only create the launch coupons",
			},
		},
		Action: withStore(func(ctx context.Context, c *cli.Command, e *env, store *repository.PoolStore) error {
			seeder := seed.NewSeeder(
				postgres.NewCategoryService(store),
				postgres.NewProductService(store),
				postgres.NewCouponService(store),
				e.logger,
			)

			n := int(c.Int("products"))
			if c.Bool("coupons-only") {
				n = 0
			}
			res, err := seeder.Run(ctx, n)
			if err != nil {
				return err
			}
			log.Printf("Seed complete: %d coupons, %d products", res.Coupons, res.Products)
			return nil
		}),
	}
}

func syncCommand() *cli.Command {
	run := func(what string) cli.ActionFunc {
		return withStore(func(ctx context.Context, c *cli.Command, e *env, store *repository.PoolStore) error {
			client, err := fakestore.NewClient(e.cfg.FakeStore.BaseURL, e.cfg.FakeStore.Timeout, e.logger)
			if err != nil {
				return err
			}
			engine := catalogsync.NewEngine(client, store, e.logger,
				catalogsync.WithDefaultStock(e.cfg.FakeStore.DefaultStock),
			)

			var created int
			switch what {
			case "categories":
				created, err = engine.SyncCategories(ctx, cliOperator)
			default:
				created, err = engine.SyncProducts(ctx, cliOperator)
			}
			if err != nil {
				return err
			}
			log.Printf("Synced %d %s from FakeStore", created, what)
			return nil
		})
	}

	return &cli.Command{
		Name:  "sync",
		Usage: "Import the FakeStore catalog",
		Commands: []*cli.Command{
			{Name: "categories", Usage: "Import missing categories", Action: run("categories")},
			{Name: "products", Usage: "Import missing products", Action: run("products")},
		},
	}
}

func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "Create the initial super admin when none exists",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "admin email (defaults to SUPERADMIN_EMAIL)"},
			&cli.StringFlag{Name: "username", Usage: "admin username (defaults to SUPERADMIN_USERNAME)"},
			&cli.StringFlag{Name: "password", Usage: "admin password (defaults to SUPERADMIN_PASSWORD)"},
		},
		Action: withStore(func(ctx context.Context, c *cli.Command, e *env, store *repository.PoolStore) error {
			cfg := &bootstrap.AdminConfig{
				Email:    firstNonEmpty(c.String("email"), e.cfg.Admin.Email),
				Username: firstNonEmpty(c.String("username"), e.cfg.Admin.Username),
				Password: firstNonEmpty(c.String("password"), e.cfg.Admin.Password),
			}
			return bootstrap.EnsureSuperAdmin(ctx, store, postgres.NewUserService(store), cfg, e.logger)
		}),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func main() {
	cmd := &cli.Command{
		Name:  "emporium",
		Usage: "TechTrend Emporium operations",
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			syncCommand(),
			createAdminCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
