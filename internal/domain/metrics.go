package domain

import "fmt"

// MetricType enumerates the engagement counters tracked per design.
type MetricType string

const (
	MetricDownloads   MetricType = "downloads"
	MetricLikes       MetricType = "likes"
	MetricViews       MetricType = "views"
	MetricMakes       MetricType = "makes"
	MetricRemixes     MetricType = "remixes"
	MetricComments    MetricType = "comments"
	MetricCollections MetricType = "collections"
)

// MetricTypes lists all metric types in stable persistence order.
var MetricTypes = []MetricType{
	MetricDownloads,
	MetricLikes,
	MetricViews,
	MetricMakes,
	MetricRemixes,
	MetricComments,
	MetricCollections,
}

// ParseMetricType validates a metric name coming from CLI flags.
func ParseMetricType(value string) (MetricType, error) {
	for _, t := range MetricTypes {
		if string(t) == value {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown metric type %q", value)
}

// Metrics holds one value per tracked metric. Depending on context the values
// are cumulative totals (Snapshot) or day-over-day deltas (DailyDelta).
type Metrics struct {
	Downloads   int64
	Likes       int64
	Views       int64
	Makes       int64
	Remixes     int64
	Comments    int64
	Collections int64
}

// Sub returns m minus other, field by field.
func (m Metrics) Sub(other Metrics) Metrics {
	return Metrics{
		Downloads:   m.Downloads - other.Downloads,
		Likes:       m.Likes - other.Likes,
		Views:       m.Views - other.Views,
		Makes:       m.Makes - other.Makes,
		Remixes:     m.Remixes - other.Remixes,
		Comments:    m.Comments - other.Comments,
		Collections: m.Collections - other.Collections,
	}
}

// Add returns m plus other, field by field.
func (m Metrics) Add(other Metrics) Metrics {
	return Metrics{
		Downloads:   m.Downloads + other.Downloads,
		Likes:       m.Likes + other.Likes,
		Views:       m.Views + other.Views,
		Makes:       m.Makes + other.Makes,
		Remixes:     m.Remixes + other.Remixes,
		Comments:    m.Comments + other.Comments,
		Collections: m.Collections + other.Collections,
	}
}

// IsZero reports whether every metric is zero.
func (m Metrics) IsZero() bool {
	return m == Metrics{}
}

// HasNegative reports whether any metric is below zero. Platforms can correct
// counters downward, so negative deltas are monitored rather than rejected.
func (m Metrics) HasNegative() bool {
	for _, t := range MetricTypes {
		if m.Get(t) < 0 {
			return true
		}
	}
	return false
}

// Get returns the value for a single metric type.
func (m Metrics) Get(t MetricType) int64 {
	switch t {
	case MetricDownloads:
		return m.Downloads
	case MetricLikes:
		return m.Likes
	case MetricViews:
		return m.Views
	case MetricMakes:
		return m.Makes
	case MetricRemixes:
		return m.Remixes
	case MetricComments:
		return m.Comments
	case MetricCollections:
		return m.Collections
	}
	return 0
}
