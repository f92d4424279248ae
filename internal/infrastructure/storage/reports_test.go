package storage

import (
	"strings"
	"testing"
)

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"daily", "monthly", "yearly", "total"} {
		if _, err := ParsePeriod(value); err != nil {
			t.Fatalf("ParsePeriod(%q) returned error: %v", value, err)
		}
	}

	if _, err := ParsePeriod("weekly"); err == nil {
		t.Fatalf("expected error for unsupported period")
	}
}

func TestPeriodDateFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		period Period
		want   string
	}{
		{PeriodDaily, "YYYY-MM-DD"},
		{PeriodMonthly, "YYYY-MM"},
		{PeriodYearly, "YYYY"},
	}

	for _, c := range cases {
		if got := c.period.dateFormat(); got != c.want {
			t.Fatalf("%s dateFormat = %q, want %q", c.period, got, c.want)
		}
	}
}

func TestPeriodTruncateDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		period Period
		date   string
		want   string
	}{
		{PeriodDaily, "2026-03-07", "2026-03-07"},
		{PeriodMonthly, "2026-03-07", "2026-03"},
		{PeriodYearly, "2026-03-07", "2026"},
		{PeriodTotal, "2026-03-07", ""},
		{PeriodMonthly, "", ""},
	}

	for _, c := range cases {
		if got := c.period.truncateDate(c.date); got != c.want {
			t.Fatalf("%s truncateDate(%q) = %q, want %q", c.period, c.date, got, c.want)
		}
	}
}

func TestMetricSumColumns(t *testing.T) {
	t.Parallel()

	columns := metricSumColumns()
	if len(columns) != 7 {
		t.Fatalf("expected 7 metric columns, got %d", len(columns))
	}
	if columns[0] != "SUM(downloads) AS downloads" {
		t.Fatalf("unexpected first column: %q", columns[0])
	}
}

func TestMetricSumsPositive(t *testing.T) {
	t.Parallel()

	condition := metricSumsPositive()
	if !strings.Contains(condition, "SUM(downloads) > 0") {
		t.Fatalf("condition missing downloads clause: %q", condition)
	}
	if strings.Count(condition, " OR ") != 6 {
		t.Fatalf("expected 6 OR separators, got %q", condition)
	}
}
