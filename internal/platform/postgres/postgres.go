// Package postgres opens the audit outbox database.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the pgx stdlib driver under the name "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"

	"soko/internal/platform/config"
)

// Open connects to Postgres using the pgx stdlib driver. Returns nil if the
// URL is empty (audit events stay in memory).
func Open(cfg config.PostgresConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return db, nil
}

// Health adapts *sql.DB to the transport health check interface.
type Health struct {
	DB *sql.DB
}

func (h Health) Health(ctx context.Context) error {
	return h.DB.PingContext(ctx)
}
