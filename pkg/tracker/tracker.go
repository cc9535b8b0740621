package tracker

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/rxtx-hosting/playercount/pkg/series"
	"github.com/rxtx-hosting/playercount/pkg/store"
	"golang.org/x/sync/errgroup"
)

type Tracker struct {
	store    store.Store
	apiKey   string
	now      func() time.Time
	recorder Recorder
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(t *Tracker) {
		if r != nil {
			t.recorder = r
		}
	}
}

func NewTracker(st store.Store, apiKey string, opts ...Option) *Tracker {
	t := &Tracker{
		store:    st,
		apiKey:   apiKey,
		now:      time.Now,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Authorize checks the presented key against the configured one.
// With no key configured every caller is accepted.
func (t *Tracker) Authorize(key string) error {
	if t.apiKey == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(t.apiKey)) != 1 {
		t.recorder.ObserveIngest("unauthorized")
		return ErrUnauthorized
	}
	return nil
}

func (t *Tracker) Ingest(ctx context.Context, sub Submission) (series.Snapshot, error) {
	snap := series.Snapshot{
		PlayerCount: sub.PlayerCount,
		RoomName:    sub.RoomName,
		GameVersion: sub.GameVersion,
		GameName:    sub.GameName,
		Timestamp:   t.now().Unix(),
	}

	if err := t.store.Record(ctx, snap); err != nil {
		t.recorder.ObserveIngest("error")
		return series.Snapshot{}, fmt.Errorf("failed to store snapshot: %w", err)
	}

	t.recorder.ObserveIngest("ok")
	t.recorder.ObserveSnapshot(snap)
	slog.Debug("Recorded player count", "count", snap.PlayerCount, "room", snap.RoomName, "timestamp", snap.Timestamp)
	return snap, nil
}

// RejectInvalid counts a submission that failed validation.
func (t *Tracker) RejectInvalid() {
	t.recorder.ObserveIngest("invalid")
}

func (t *Tracker) Stats(ctx context.Context) (Stats, error) {
	since := series.Cutoff(t.now())

	var (
		samples []series.Sample
		current series.Snapshot
		found   bool
		kept    int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		samples, err = t.store.Series(gctx, since)
		return err
	})
	g.Go(func() error {
		var err error
		current, found, err = t.store.Current(gctx)
		return err
	})
	if pk, ok := t.store.(store.PeakKeeper); ok {
		g.Go(func() error {
			var err error
			kept, err = pk.Peak(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("failed to read stats: %w", err)
	}

	stats := Stats{
		Peak:    max(series.Peak(samples), kept),
		Samples: samples,
	}
	if found {
		stats.Current = &current
	}
	if stats.Samples == nil {
		stats.Samples = []series.Sample{}
	}

	t.recorder.ObservePeak(stats.Peak)
	return stats, nil
}

func (t *Tracker) Ping(ctx context.Context) error {
	return t.store.Ping(ctx)
}
