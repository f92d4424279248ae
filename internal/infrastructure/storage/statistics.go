package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"DesignStats/internal/domain"
	"DesignStats/internal/ports"
)

// StatisticsRepository persists snapshots, daily deltas, and period rollups.
// The write path is the transactional commit unit: re-submitting identical
// inputs reproduces identical stored rows.
type StatisticsRepository struct {
	db *sql.DB
}

var (
	_ ports.SnapshotStore       = (*StatisticsRepository)(nil)
	_ ports.StatisticsCommitter = (*StatisticsRepository)(nil)
)

// NewStatisticsRepository wires a sql.DB implementation.
func NewStatisticsRepository(db *sql.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

const upsertSnapshotSQL = `
INSERT INTO imports
  (import_date, design_id, source, import_type, downloads, likes, views, makes, remixes, comments, collections)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (import_date, design_id, source) DO UPDATE
SET import_type = EXCLUDED.import_type,
    downloads   = EXCLUDED.downloads,
    likes       = EXCLUDED.likes,
    views       = EXCLUDED.views,
    makes       = EXCLUDED.makes,
    remixes     = EXCLUDED.remixes,
    comments    = EXCLUDED.comments,
    collections = EXCLUDED.collections`

const upsertDeltaSQL = `
INSERT INTO daily_statistics
  (import_date, design_id, source, import_type, downloads, likes, views, makes, remixes, comments, collections)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (import_date, design_id, source) DO UPDATE
SET import_type = EXCLUDED.import_type,
    downloads   = EXCLUDED.downloads,
    likes       = EXCLUDED.likes,
    views       = EXCLUDED.views,
    makes       = EXCLUDED.makes,
    remixes     = EXCLUDED.remixes,
    comments    = EXCLUDED.comments,
    collections = EXCLUDED.collections`

const upsertRollupSQL = `
INSERT INTO statistics
  (year, month, design_id, source, statistic_type, last_1d, last_7d, last_30d, this_month, last_365d, this_year, total)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (year, month, design_id, source, statistic_type) DO UPDATE
SET last_1d    = EXCLUDED.last_1d,
    last_7d    = EXCLUDED.last_7d,
    last_30d   = EXCLUDED.last_30d,
    this_month = EXCLUDED.this_month,
    last_365d  = EXCLUDED.last_365d,
    this_year  = EXCLUDED.this_year,
    total      = EXCLUDED.total`

// HasSnapshotBefore reports whether any snapshot exists strictly before date.
func (r *StatisticsRepository) HasSnapshotBefore(ctx context.Context, date domain.Date, designID int64, platform domain.Platform) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM imports WHERE design_id = $1 AND source = $2 AND import_date < $3
	)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, designID, string(platform), date.Time()).Scan(&exists); err != nil {
		return false, fmt.Errorf("query imports before %s: %w", date, err)
	}
	return exists, nil
}

// FindPreviousSnapshot returns the most recent snapshot strictly before date.
func (r *StatisticsRepository) FindPreviousSnapshot(ctx context.Context, date domain.Date, designID int64, platform domain.Platform) (domain.Snapshot, error) {
	const query = `
		SELECT import_date, import_type, downloads, likes, views, makes, remixes, comments, collections
		FROM imports
		WHERE import_date < $1 AND design_id = $2 AND source = $3
		ORDER BY import_date DESC
		LIMIT 1`

	row := r.db.QueryRowContext(ctx, query, date.Time(), designID, string(platform))

	snapshot := domain.Snapshot{DesignID: designID, Platform: platform}
	var importDate time.Time
	err := row.Scan(
		&importDate, &snapshot.ImportType,
		&snapshot.Totals.Downloads, &snapshot.Totals.Likes, &snapshot.Totals.Views,
		&snapshot.Totals.Makes, &snapshot.Totals.Remixes, &snapshot.Totals.Comments,
		&snapshot.Totals.Collections,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, ports.ErrNoPreviousSnapshot
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("query previous snapshot: %w", err)
	}

	snapshot.Date = domain.DateOf(importDate)
	return snapshot, nil
}

// FindSnapshots returns the full history of a pair in chronological order.
func (r *StatisticsRepository) FindSnapshots(ctx context.Context, designID int64, platform domain.Platform) ([]domain.Snapshot, error) {
	const query = `
		SELECT import_date, import_type, downloads, likes, views, makes, remixes, comments, collections
		FROM imports
		WHERE design_id = $1 AND source = $2
		ORDER BY import_date`

	rows, err := r.db.QueryContext(ctx, query, designID, string(platform))
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []domain.Snapshot
	for rows.Next() {
		snapshot := domain.Snapshot{DesignID: designID, Platform: platform}
		var importDate time.Time
		err := rows.Scan(
			&importDate, &snapshot.ImportType,
			&snapshot.Totals.Downloads, &snapshot.Totals.Likes, &snapshot.Totals.Views,
			&snapshot.Totals.Makes, &snapshot.Totals.Remixes, &snapshot.Totals.Comments,
			&snapshot.Totals.Collections,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshot.Date = domain.DateOf(importDate)
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read snapshots: %w", err)
	}

	return snapshots, nil
}

// SumDeltasForPeriod sums daily deltas with date in (anchor-period, anchor),
// excluding the anchor day itself. Missing rows contribute zero.
func (r *StatisticsRepository) SumDeltasForPeriod(ctx context.Context, anchor domain.Date, designID int64, platform domain.Platform, periodDays int) (domain.Metrics, error) {
	const query = `
		SELECT COALESCE(SUM(downloads), 0), COALESCE(SUM(likes), 0), COALESCE(SUM(views), 0),
		       COALESCE(SUM(makes), 0), COALESCE(SUM(remixes), 0), COALESCE(SUM(comments), 0),
		       COALESCE(SUM(collections), 0)
		FROM daily_statistics
		WHERE import_date > $1::date - make_interval(days => $4)
		  AND import_date < $1
		  AND design_id = $2
		  AND source = $3`

	var sums domain.Metrics
	err := r.db.QueryRowContext(ctx, query, anchor.Time(), designID, string(platform), periodDays).Scan(
		&sums.Downloads, &sums.Likes, &sums.Views, &sums.Makes,
		&sums.Remixes, &sums.Comments, &sums.Collections,
	)
	if err != nil {
		return domain.Metrics{}, fmt.Errorf("sum deltas for %d days: %w", periodDays, err)
	}
	return sums, nil
}

// UpsertSnapshot writes a single snapshot row, overwriting a same-day capture.
func (r *StatisticsRepository) UpsertSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	if _, err := r.db.ExecContext(ctx, upsertSnapshotSQL, snapshotArgs(snapshot)...); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", snapshot.Date, err)
	}
	return nil
}

// UpsertDeltas rewrites derived delta rows in one transaction.
func (r *StatisticsRepository) UpsertDeltas(ctx context.Context, deltas []domain.DailyDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin deltas transaction: %w", err)
	}

	for _, delta := range deltas {
		if _, err := tx.ExecContext(ctx, upsertDeltaSQL, deltaArgs(delta)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert delta %s: %w", delta.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit deltas: %w", err)
	}
	return nil
}

// CommitStatistics writes the snapshot, its delta, and one rollup row per
// metric type in a single transaction. Any failure rolls back the whole unit.
func (r *StatisticsRepository) CommitStatistics(ctx context.Context, snapshot domain.Snapshot, delta domain.DailyDelta, rollups domain.Rollups) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin statistics transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, upsertSnapshotSQL, snapshotArgs(snapshot)...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert snapshot %s: %w", snapshot.Date, err)
	}

	if _, err := tx.ExecContext(ctx, upsertDeltaSQL, deltaArgs(delta)...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert delta %s: %w", delta.Date, err)
	}

	for _, metric := range domain.MetricTypes {
		values := rollups[metric]
		_, err := tx.ExecContext(ctx, upsertRollupSQL,
			snapshot.Date.Year, int(snapshot.Date.Month), snapshot.DesignID, string(snapshot.Platform), string(metric),
			values.Last1d, values.Last7d, values.Last30d, values.ThisMonth,
			values.Last365d, values.ThisYear, values.Total,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert %s rollup: %w", metric, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit statistics: %w", err)
	}
	return nil
}

func snapshotArgs(s domain.Snapshot) []any {
	return []any{
		s.Date.Time(), s.DesignID, string(s.Platform), string(s.ImportType),
		s.Totals.Downloads, s.Totals.Likes, s.Totals.Views, s.Totals.Makes,
		s.Totals.Remixes, s.Totals.Comments, s.Totals.Collections,
	}
}

func deltaArgs(d domain.DailyDelta) []any {
	return []any{
		d.Date.Time(), d.DesignID, string(d.Platform), string(d.ImportType),
		d.Values.Downloads, d.Values.Likes, d.Values.Views, d.Values.Makes,
		d.Values.Remixes, d.Values.Comments, d.Values.Collections,
	}
}
