package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"DesignStats/internal/config"
)

// Open connects to Postgres, applies pool limits, and verifies connectivity.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// CheckSchemaVersion verifies the versions table holds exactly one row with
// the expected value. A mismatch is fatal before any pair is processed.
func CheckSchemaVersion(ctx context.Context, db *sql.DB, expected string) error {
	rows, err := db.QueryContext(ctx, `SELECT value FROM versions`)
	if err != nil {
		return fmt.Errorf("query schema version: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return fmt.Errorf("scan schema version: %w", err)
		}
		versions = append(versions, value)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read schema versions: %w", err)
	}

	switch {
	case len(versions) == 0:
		return fmt.Errorf("no schema version record found")
	case len(versions) > 1:
		return fmt.Errorf("multiple schema version records found")
	case versions[0] != expected:
		return fmt.Errorf("schema version mismatch: found %s, expected %s", versions[0], expected)
	}

	return nil
}
