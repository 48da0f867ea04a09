package orders

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres is the remote order backend. Ids are UUIDs assigned here.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (r *Postgres) RunMigrations() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Postgres) CreateOrder(ctx context.Context, draft domain.OrderDraft) (string, error) {
	itemsJSON, err := json.Marshal(draft.Items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal order items: %w", err)
	}
	addressJSON, err := json.Marshal(draft.ShippingAddress)
	if err != nil {
		return "", fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	id := uuid.New()
	query := `INSERT INTO orders (id, user_id, status, items, total, payment_method, shipping_address, email, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`

	_, err = r.db.ExecContext(ctx, query,
		id,
		draft.UserID,
		domain.OrderStatusPending,
		itemsJSON,
		draft.Total,
		draft.PaymentMethod,
		addressJSON,
		draft.Email)
	if err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	return id.String(), nil
}

const selectOrders = `SELECT id, user_id, status, items, total, payment_method, shipping_address, email, created_at, updated_at FROM orders`

func (r *Postgres) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	order, err := scanOrder(r.db.QueryRowContext(ctx, selectOrders+` WHERE id = $1`, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (r *Postgres) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, selectOrders+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	list := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		list = append(list, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order       domain.Order
		status      string
		itemsJSON   []byte
		addressJSON []byte
	)
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&status,
		&itemsJSON,
		&order.Total,
		&order.PaymentMethod,
		&addressJSON,
		&order.Email,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatus(status)
	if parsed, err := domain.ParseOrderStatus(status); err == nil {
		order.Status = parsed
	}
	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("unmarshal shipping address: %w", err)
	}
	return &order, nil
}

func (r *Postgres) Close() error {
	return r.db.Close()
}
