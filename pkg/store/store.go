package store

import (
	"context"

	"github.com/rxtx-hosting/playercount/pkg/series"
)

// Store persists the player-count series and the current snapshot.
//
// Record appends the snapshot's sample, drops samples older than the window
// ending at the snapshot timestamp, and overwrites the current snapshot. Pruning
// only happens here; nothing sweeps the series when writes stop, so readers
// must pass a lower bound to Series.
type Store interface {
	Record(ctx context.Context, snap series.Snapshot) error
	Series(ctx context.Context, since int64) ([]series.Sample, error)
	Current(ctx context.Context) (series.Snapshot, bool, error)
	Ping(ctx context.Context) error
	Close() error
}

// PeakKeeper is implemented by stores that remember a peak beyond the samples
// they still retain. Readers report the larger of it and the windowed peak.
type PeakKeeper interface {
	Peak(ctx context.Context) (int, error)
}
