package domain

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  Date
	}{
		{"2026-03-07", Date{Year: 2026, Month: time.March, Day: 7}},
		{"2026/03/07", Date{Year: 2026, Month: time.March, Day: 7}},
	}

	for _, c := range cases {
		got, err := ParseDate(c.input)
		if err != nil {
			t.Fatalf("ParseDate(%q) returned error: %v", c.input, err)
		}
		if !got.Equal(c.want) {
			t.Fatalf("ParseDate(%q) = %v, want %v", c.input, got, c.want)
		}
	}

	if _, err := ParseDate("07.03.2026"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestAddDaysAcrossMonthBoundary(t *testing.T) {
	t.Parallel()

	date := Date{Year: 2026, Month: time.January, Day: 31}
	got := date.AddDays(1)
	want := Date{Year: 2026, Month: time.February, Day: 1}
	if !got.Equal(want) {
		t.Fatalf("AddDays(1) = %v, want %v", got, want)
	}

	got = date.AddDays(-31)
	want = Date{Year: 2025, Month: time.December, Day: 31}
	if !got.Equal(want) {
		t.Fatalf("AddDays(-31) = %v, want %v", got, want)
	}
}

func TestDaysSince(t *testing.T) {
	t.Parallel()

	later := Date{Year: 2026, Month: time.March, Day: 10}
	earlier := Date{Year: 2026, Month: time.March, Day: 1}

	if got := later.DaysSince(earlier); got != 9 {
		t.Fatalf("DaysSince = %d, want 9", got)
	}
}

func TestDayOfYear(t *testing.T) {
	t.Parallel()

	if got := (Date{Year: 2026, Month: time.January, Day: 1}).DayOfYear(); got != 1 {
		t.Fatalf("DayOfYear for Jan 1 = %d, want 1", got)
	}
	if got := (Date{Year: 2026, Month: time.February, Day: 10}).DayOfYear(); got != 41 {
		t.Fatalf("DayOfYear for Feb 10 = %d, want 41", got)
	}
}

func TestBeforeAndSameMonth(t *testing.T) {
	t.Parallel()

	a := Date{Year: 2026, Month: time.March, Day: 7}
	b := Date{Year: 2026, Month: time.March, Day: 8}

	if !a.Before(b) || b.Before(a) {
		t.Fatalf("Before ordering broken for %v and %v", a, b)
	}
	if !a.SameMonth(b) {
		t.Fatalf("expected %v and %v in the same month", a, b)
	}
	if a.SameMonth(Date{Year: 2025, Month: time.March, Day: 7}) {
		t.Fatalf("same month across years should be false")
	}
}

func TestStringFormat(t *testing.T) {
	t.Parallel()

	date := Date{Year: 2026, Month: time.March, Day: 7}
	if got := date.String(); got != "2026-03-07" {
		t.Fatalf("String = %q, want 2026-03-07", got)
	}
}
