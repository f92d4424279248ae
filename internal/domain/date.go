package domain

import (
	"fmt"
	"time"
)

// Date is a calendar date without a time-of-day component. All snapshot and
// statistic keys use calendar dates in the operational timezone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates a time.Time to its calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts YYYY-MM-DD or YYYY/MM/DD.
func ParseDate(value string) (Date, error) {
	for _, layout := range []string{"2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
}

// Time returns midnight of the date in the local timezone.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.Local)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// AddDays returns the date shifted by the given number of days.
func (d Date) AddDays(days int) Date {
	return DateOf(d.Time().AddDate(0, 0, days))
}

// DaysSince returns the number of whole days between other and d.
func (d Date) DaysSince(other Date) int {
	return int(d.Time().Sub(other.Time()).Hours() / 24)
}

func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) Equal(other Date) bool {
	return d == other
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// DayOfYear returns the 1-based ordinal day within the year, so the
// year-to-date window covers exactly the elapsed days.
func (d Date) DayOfYear() int {
	return d.Time().YearDay()
}

// SameMonth reports whether both dates fall into the same (year, month) bucket.
func (d Date) SameMonth(other Date) bool {
	return d.Year == other.Year && d.Month == other.Month
}
