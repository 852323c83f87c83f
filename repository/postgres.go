package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoDatabase is returned when the repository was built without a pool
var ErrNoDatabase = errors.New("database not configured")

// ErrInvalidDatabaseURL is returned when the connection string cannot be parsed
var ErrInvalidDatabaseURL = errors.New("invalid database url")

// DBTX is an interface that both pgxpool.Pool and pgx.Tx satisfy.
// Tests substitute a single connection through it.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides read access to the financial tables
type Repository struct {
	pool *pgxpool.Pool
	db   DBTX
}

// NewRepository creates a new Repository with a PostgreSQL connection pool
func NewRepository(ctx context.Context, connString string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDatabaseURL, err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Repository{pool: pool, db: pool}, nil
}

// NewWithDB wraps an existing executor
func NewWithDB(db DBTX) *Repository {
	return &Repository{db: db}
}

func (r *Repository) checkDB() error {
	if r == nil || r.db == nil {
		return ErrNoDatabase
	}
	return nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Health checks if the database connection is healthy
func (r *Repository) Health(ctx context.Context) error {
	if r.pool == nil {
		return r.checkDB()
	}
	return r.pool.Ping(ctx)
}
