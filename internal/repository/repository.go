package repository

import (
	"context"
	"errors"
	"time"

	"mibwalk/internal/domain"
)

// ErrNotFound is returned when no snapshot matches
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore persists poll results
type SnapshotStore interface {
	// Write operations
	SaveSnapshot(ctx context.Context, s *domain.Snapshot) error
	PruneSnapshots(ctx context.Context, before time.Time) (int64, error)

	// Read operations
	LatestSnapshot(ctx context.Context, target string) (*domain.Snapshot, error)
	ListSnapshots(ctx context.Context, target string, limit int) ([]*domain.Snapshot, error)
	Targets(ctx context.Context) ([]string, error)

	// Close releases resources
	Close() error
}
