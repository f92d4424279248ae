package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"DesignStats/internal/domain"
	"DesignStats/internal/report"
)

// Period selects the grouping granularity of a sums report.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodTotal   Period = "total"
)

// ParsePeriod validates a period name coming from CLI flags.
func ParsePeriod(value string) (Period, error) {
	switch Period(value) {
	case PeriodDaily, PeriodMonthly, PeriodYearly, PeriodTotal:
		return Period(value), nil
	}
	return "", fmt.Errorf("unknown period %q, expected daily, monthly, yearly, or total", value)
}

func (p Period) dateFormat() string {
	switch p {
	case PeriodMonthly:
		return "YYYY-MM"
	case PeriodYearly:
		return "YYYY"
	default:
		return "YYYY-MM-DD"
	}
}

// truncateDate cuts a YYYY-MM-DD filter value down to the period granularity.
func (p Period) truncateDate(date string) string {
	switch {
	case date == "":
		return ""
	case p == PeriodMonthly && len(date) >= 7:
		return date[:7]
	case p == PeriodYearly && len(date) >= 4:
		return date[:4]
	case p == PeriodTotal:
		return ""
	}
	return date
}

// ReportFilter narrows report queries. Zero values mean "no filter".
type ReportFilter struct {
	DesignID     int64
	Title        string
	Platform     domain.Platform
	Date         string
	Metric       domain.MetricType
	ShowZeroRows bool
	Limit        uint64
}

// ReportRepository serves the read-only query surface over the statistics
// tables. All filters are parameterized through squirrel.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository wires a sql.DB implementation.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func metricSumColumns() []string {
	columns := make([]string, 0, len(domain.MetricTypes))
	for _, metric := range domain.MetricTypes {
		columns = append(columns, fmt.Sprintf("SUM(%s) AS %s", metric, metric))
	}
	return columns
}

func metricSumsPositive() string {
	conditions := make([]string, 0, len(domain.MetricTypes))
	for _, metric := range domain.MetricTypes {
		conditions = append(conditions, fmt.Sprintf("SUM(%s) > 0", metric))
	}
	return strings.Join(conditions, " OR ")
}

// SourceSums aggregates daily deltas per platform at the requested period.
func (r *ReportRepository) SourceSums(ctx context.Context, period Period, filter ReportFilter) (report.Table, error) {
	builder := psql.Select().From("daily_statistics")

	if period == PeriodTotal {
		builder = builder.Columns("source").GroupBy("source").OrderBy("source")
	} else {
		dateCol := fmt.Sprintf("to_char(import_date, '%s')", period.dateFormat())
		builder = builder.
			Columns(dateCol + " AS import_date", "source").
			GroupBy(dateCol, "source").
			OrderBy(dateCol, "source")
		if date := period.truncateDate(filter.Date); date != "" {
			builder = builder.Where(sq.Expr(dateCol+" = ?", date))
		}
	}

	builder = builder.Columns(metricSumColumns()...)

	if filter.Platform != "" {
		builder = builder.Where(sq.Eq{"source": string(filter.Platform)})
	}
	if !filter.ShowZeroRows {
		builder = builder.Having(metricSumsPositive())
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	return r.queryTable(ctx, builder)
}

// DesignSums aggregates daily deltas per design and platform at the
// requested period.
func (r *ReportRepository) DesignSums(ctx context.Context, period Period, filter ReportFilter) (report.Table, error) {
	builder := psql.Select().
		From("daily_statistics ds").
		Join("designs d ON d.id = ds.design_id")

	if period == PeriodTotal {
		builder = builder.
			Columns("ds.design_id", "d.title", "ds.source").
			GroupBy("ds.design_id", "d.title", "ds.source").
			OrderBy("ds.design_id", "ds.source")
	} else {
		dateCol := fmt.Sprintf("to_char(ds.import_date, '%s')", period.dateFormat())
		builder = builder.
			Columns(dateCol+" AS import_date", "ds.design_id", "d.title", "ds.source").
			GroupBy(dateCol, "ds.design_id", "d.title", "ds.source").
			OrderBy(dateCol, "ds.design_id", "ds.source")
		if date := period.truncateDate(filter.Date); date != "" {
			builder = builder.Where(sq.Expr(dateCol+" = ?", date))
		}
	}

	builder = builder.Columns(metricSumColumns()...)

	if filter.DesignID != 0 {
		builder = builder.Where(sq.Eq{"ds.design_id": filter.DesignID})
	}
	if filter.Title != "" {
		builder = builder.Where(sq.ILike{"d.title": "%" + filter.Title + "%"})
	}
	if filter.Platform != "" {
		builder = builder.Where(sq.Eq{"ds.source": string(filter.Platform)})
	}
	if !filter.ShowZeroRows {
		builder = builder.Having(metricSumsPositive())
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	return r.queryTable(ctx, builder)
}

// CompareDesignDownloads pivots download deltas per design into one column
// per platform, for side-by-side comparison.
func (r *ReportRepository) CompareDesignDownloads(ctx context.Context, period Period, filter ReportFilter) (report.Table, error) {
	pivot := []string{
		"COALESCE(SUM(downloads) FILTER (WHERE ds.source = 'Thingiverse'), 0) AS thingiverse_downloads",
		"COALESCE(SUM(downloads) FILTER (WHERE ds.source = 'Cults3d'), 0) AS cults3d_downloads",
		"COALESCE(SUM(downloads) FILTER (WHERE ds.source = 'Printable'), 0) AS printables_downloads",
	}

	builder := psql.Select().
		From("daily_statistics ds").
		Join("designs d ON d.id = ds.design_id")

	if period == PeriodTotal {
		builder = builder.
			Columns("ds.design_id", "d.title").
			GroupBy("ds.design_id", "d.title").
			OrderBy("ds.design_id")
	} else {
		dateCol := fmt.Sprintf("to_char(ds.import_date, '%s')", period.dateFormat())
		builder = builder.
			Columns(dateCol+" AS import_date", "ds.design_id", "d.title").
			GroupBy(dateCol, "ds.design_id", "d.title").
			OrderBy(dateCol, "ds.design_id")
		if date := period.truncateDate(filter.Date); date != "" {
			builder = builder.Where(sq.Expr(dateCol+" = ?", date))
		}
	}

	builder = builder.Columns(pivot...)

	if filter.DesignID != 0 {
		builder = builder.Where(sq.Eq{"ds.design_id": filter.DesignID})
	}
	if filter.Title != "" {
		builder = builder.Where(sq.ILike{"d.title": "%" + filter.Title + "%"})
	}
	if !filter.ShowZeroRows {
		builder = builder.Having("SUM(downloads) > 0")
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	return r.queryTable(ctx, builder)
}

// DesignStatistics lists stored period rollups per design.
func (r *ReportRepository) DesignStatistics(ctx context.Context, filter ReportFilter) (report.Table, error) {
	builder := psql.Select(
		"st.year", "st.month", "st.design_id", "d.title", "st.source", "st.statistic_type",
		"st.last_1d", "st.last_7d", "st.last_30d", "st.this_month", "st.last_365d", "st.this_year", "st.total",
	).
		From("statistics st").
		Join("designs d ON d.id = st.design_id").
		OrderBy("st.year", "st.month", "st.design_id", "st.source", "st.statistic_type")

	if filter.DesignID != 0 {
		builder = builder.Where(sq.Eq{"st.design_id": filter.DesignID})
	}
	if filter.Title != "" {
		builder = builder.Where(sq.ILike{"d.title": "%" + filter.Title + "%"})
	}
	if filter.Platform != "" {
		builder = builder.Where(sq.Eq{"st.source": string(filter.Platform)})
	}
	if filter.Metric != "" {
		builder = builder.Where(sq.Eq{"st.statistic_type": string(filter.Metric)})
	}
	if !filter.ShowZeroRows {
		builder = builder.Where(sq.Expr(
			"(st.last_1d > 0 OR st.last_7d > 0 OR st.last_30d > 0 OR st.this_month > 0 OR st.last_365d > 0 OR st.this_year > 0 OR st.total > 0)",
		))
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	return r.queryTable(ctx, builder)
}

// SourceStatistics aggregates stored rollups per platform.
func (r *ReportRepository) SourceStatistics(ctx context.Context, filter ReportFilter) (report.Table, error) {
	builder := psql.Select(
		"year", "month", "source", "statistic_type",
		"SUM(last_1d) AS last_1d", "SUM(last_7d) AS last_7d", "SUM(last_30d) AS last_30d",
		"SUM(this_month) AS this_month", "SUM(last_365d) AS last_365d",
		"SUM(this_year) AS this_year", "SUM(total) AS total",
	).
		From("statistics").
		GroupBy("year", "month", "source", "statistic_type").
		OrderBy("year", "month", "source", "statistic_type")

	if filter.Platform != "" {
		builder = builder.Where(sq.Eq{"source": string(filter.Platform)})
	}
	if filter.Metric != "" {
		builder = builder.Where(sq.Eq{"statistic_type": string(filter.Metric)})
	}
	if !filter.ShowZeroRows {
		builder = builder.Having(
			"SUM(last_1d) > 0 OR SUM(last_7d) > 0 OR SUM(last_30d) > 0 OR SUM(this_month) > 0 OR SUM(last_365d) > 0 OR SUM(this_year) > 0 OR SUM(total) > 0",
		)
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	return r.queryTable(ctx, builder)
}

func (r *ReportRepository) queryTable(ctx context.Context, builder sq.SelectBuilder) (report.Table, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return report.Table{}, fmt.Errorf("build report query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return report.Table{}, fmt.Errorf("query report: %w", err)
	}
	defer rows.Close()

	return scanTable(rows)
}

// scanTable converts any result set into a generic report table.
func scanTable(rows *sql.Rows) (report.Table, error) {
	columns, err := rows.Columns()
	if err != nil {
		return report.Table{}, fmt.Errorf("read report columns: %w", err)
	}

	table := report.Table{Columns: columns}

	values := make([]sql.NullString, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return report.Table{}, fmt.Errorf("scan report row: %w", err)
		}
		row := make([]string, len(columns))
		for i, value := range values {
			if value.Valid {
				row[i] = value.String
			}
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return report.Table{}, fmt.Errorf("read report rows: %w", err)
	}

	return table, nil
}
