// Package outcome keeps a Postgres tally of prediction results. Feature values are never stored.
package outcome

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/Skufu/healthassistant/internal/diagnosis"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Count is the number of predictions with one label for one disease.
type Count struct {
	Disease diagnosis.Disease `json:"disease"`
	Label   int64             `json:"label"`
	Total   int64             `json:"total"`
}

type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

// Migrate brings the schema up to date.
func Migrate(pool *pgxpool.Pool) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("migrations: %w", err)
	}
	// Releases the driver's connection back to the pool.
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations up: %w", err)
	}
	return nil
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Record(ctx context.Context, o diagnosis.Outcome) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO prediction_outcomes (disease, schema_version, label) VALUES ($1, $2, $3)`,
		string(o.Disease), o.SchemaVersion, o.Label,
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// Counts aggregates outcomes per disease and label, ordered by disease then label.
func (s *Store) Counts(ctx context.Context) ([]Count, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT disease, label, COUNT(*)
		FROM prediction_outcomes
		GROUP BY disease, label
		ORDER BY disease, label`)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}

	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Count, error) {
		var c Count
		var disease string
		if err := row.Scan(&disease, &c.Label, &c.Total); err != nil {
			return c, err
		}
		c.Disease = diagnosis.Disease(disease)
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan outcomes: %w", err)
	}
	return counts, nil
}
