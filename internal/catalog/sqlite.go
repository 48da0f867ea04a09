package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/storefront/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLite serves the catalog from a local database file. The schema and the
// stock products come from the embedded migrations.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) RunMigrations() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

const selectProducts = `SELECT id, name, price, image, description, category FROM products`

func (s *SQLite) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.query(ctx, selectProducts+` ORDER BY position`)
}

func (s *SQLite) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.QueryRowContext(ctx, selectProducts+` WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Description, &p.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return &p, nil
}

func (s *SQLite) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if category == "" || category == domain.CategoryAll {
		return s.ListProducts(ctx)
	}
	return s.query(ctx, selectProducts+` WHERE category = ? ORDER BY position`, category)
}

func (s *SQLite) Search(ctx context.Context, query string) ([]domain.Product, error) {
	if strings.TrimSpace(query) == "" {
		return s.ListProducts(ctx)
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return s.query(ctx, selectProducts+`
		WHERE lower(name) LIKE ?1 ESCAPE '\'
		   OR lower(description) LIKE ?1 ESCAPE '\'
		   OR lower(category) LIKE ?1 ESCAPE '\'
		ORDER BY position`, pattern)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) query(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Description, &p.Category); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
