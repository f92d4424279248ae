package usecase

import (
	"context"
	"fmt"

	"DesignStats/internal/domain"
	"DesignStats/internal/ports"
)

// Classifier decides the import semantics of a snapshot capture. It has no
// side effects and fails only on storage read errors.
type Classifier struct {
	snapshots ports.SnapshotStore
}

// NewClassifier wires the snapshot history.
func NewClassifier(snapshots ports.SnapshotStore) *Classifier {
	return &Classifier{snapshots: snapshots}
}

// Classify returns initial for a first-ever capture, regular for a capture on
// the run's current day, and adjusted for a capture on any other date.
func (c *Classifier) Classify(ctx context.Context, date, today domain.Date, designID int64, platform domain.Platform) (domain.ImportType, error) {
	hasHistory, err := c.snapshots.HasSnapshotBefore(ctx, date, designID, platform)
	if err != nil {
		return "", fmt.Errorf("classify import for %s: %w", date, err)
	}

	switch {
	case !hasHistory:
		return domain.ImportInitial, nil
	case !date.Equal(today):
		return domain.ImportAdjusted, nil
	default:
		return domain.ImportRegular, nil
	}
}
