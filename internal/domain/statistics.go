package domain

// ImportType classifies how a snapshot entered the history.
type ImportType string

const (
	// ImportInitial is the first-ever capture for a (design, platform) pair.
	ImportInitial ImportType = "initial"
	// ImportRegular is a capture for the current collection day.
	ImportRegular ImportType = "regular"
	// ImportAdjusted is a capture for a past, non-current date.
	ImportAdjusted ImportType = "adjusted"
	// ImportCalculated marks gap-filled snapshots synthesized during repair.
	ImportCalculated ImportType = "calculated"
)

// Snapshot is one row of the append-only imports history: the cumulative
// totals a platform reported for a design on one calendar date.
type Snapshot struct {
	Date       Date
	DesignID   int64
	Platform   Platform
	ImportType ImportType
	Totals     Metrics
}

// DailyDelta holds the difference between a snapshot and its predecessor.
// Initial imports have all-zero deltas by definition.
type DailyDelta struct {
	Date       Date
	DesignID   int64
	Platform   Platform
	ImportType ImportType
	Values     Metrics
}

// RollupValues are the precomputed window sums for a single metric type.
// Total carries the latest cumulative snapshot value, not a delta sum.
type RollupValues struct {
	Last1d    int64
	Last7d    int64
	Last30d   int64
	ThisMonth int64
	Last365d  int64
	ThisYear  int64
	Total     int64
}

// Rollups maps each metric type to its window sums for one anchor date.
type Rollups map[MetricType]RollupValues

// ZeroRollups returns all-zero window sums for every metric type, used for
// initial imports where no history exists yet.
func ZeroRollups() Rollups {
	r := make(Rollups, len(MetricTypes))
	for _, t := range MetricTypes {
		r[t] = RollupValues{}
	}
	return r
}
