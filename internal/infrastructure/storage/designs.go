package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"DesignStats/internal/domain"
	"DesignStats/internal/ports"
)

// psql builds Postgres-flavored ($1, $2, ...) statements.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DesignRepository persists designs and their platform sources.
type DesignRepository struct {
	db *sql.DB
}

var _ ports.DesignSourceStore = (*DesignRepository)(nil)

// NewDesignRepository wires a sql.DB implementation.
func NewDesignRepository(db *sql.DB) *DesignRepository {
	return &DesignRepository{db: db}
}

// InsertSource finds or creates the design by title and its platform binding
// in one transaction, returning the design id.
func (r *DesignRepository) InsertSource(ctx context.Context, title string, platform domain.Platform, externalID string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin source transaction: %w", err)
	}

	var designID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM designs WHERE title = $1`, title).Scan(&designID)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, `INSERT INTO designs (title) VALUES ($1) RETURNING id`, title).Scan(&designID)
	}
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("resolve design %q: %w", title, err)
	}

	var existingID int64
	err = tx.QueryRowContext(ctx,
		`SELECT design_id FROM sources WHERE design_id = $1 AND source = $2`,
		designID, string(platform),
	).Scan(&existingID)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sources (design_id, source, source_id, inactive) VALUES ($1, $2, $3, false)`,
			designID, string(platform), externalID,
		)
	}
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("resolve source %s for design %q: %w", platform, title, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit source: %w", err)
	}
	return designID, nil
}

// FindDesignSources lists design/platform pairs, optionally filtered.
func (r *DesignRepository) FindDesignSources(ctx context.Context, filter ports.ListFilter) ([]domain.DesignSource, error) {
	builder := psql.
		Select("d.id", "d.title", "s.source", "s.source_id", "s.inactive").
		From("designs d").
		Join("sources s ON s.design_id = d.id").
		OrderBy("d.id", "s.source")

	if filter.DesignID != 0 {
		builder = builder.Where(sq.Eq{"d.id": filter.DesignID})
	}
	if filter.Platform != "" {
		builder = builder.Where(sq.Eq{"s.source": string(filter.Platform)})
	}
	if filter.Title != "" {
		builder = builder.Where(sq.ILike{"d.title": "%" + filter.Title + "%"})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sources query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var results []domain.DesignSource
	for rows.Next() {
		var ds domain.DesignSource
		if err := rows.Scan(&ds.DesignID, &ds.Title, &ds.Platform, &ds.ExternalID, &ds.Inactive); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		results = append(results, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return results, nil
}

// FindDesigns lists designs, optionally filtered by id or title substring.
func (r *DesignRepository) FindDesigns(ctx context.Context, filter ports.ListFilter) ([]domain.Design, error) {
	builder := psql.
		Select("id", "title").
		From("designs").
		OrderBy("id")

	if filter.DesignID != 0 {
		builder = builder.Where(sq.Eq{"id": filter.DesignID})
	}
	if filter.Title != "" {
		builder = builder.Where(sq.ILike{"title": "%" + filter.Title + "%"})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build designs query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query designs: %w", err)
	}
	defer rows.Close()

	var results []domain.Design
	for rows.Next() {
		var design domain.Design
		if err := rows.Scan(&design.ID, &design.Title); err != nil {
			return nil, fmt.Errorf("scan design: %w", err)
		}
		results = append(results, design)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read designs: %w", err)
	}

	return results, nil
}
