package tracker

import (
	"errors"

	"github.com/rxtx-hosting/playercount/pkg/series"
)

var (
	ErrInvalidBody  = errors.New("invalid body")
	ErrValidation   = errors.New("player_count required (int)")
	ErrUnauthorized = errors.New("unauthorized")
)

// Submission is one validated count report from a game client.
type Submission struct {
	PlayerCount int
	RoomName    string
	GameVersion string
	GameName    string
}

// Stats is the read-side view over the window. Current is nil until the first ingest.
type Stats struct {
	Current *series.Snapshot
	Peak    int
	Samples []series.Sample
}

// Latest returns the most recent count in the window, or 0.
func (s Stats) Latest() int {
	if len(s.Samples) == 0 {
		return 0
	}
	return s.Samples[len(s.Samples)-1].Count
}

// Recorder receives ingest and read outcomes, e.g. for Prometheus.
type Recorder interface {
	ObserveIngest(result string)
	ObserveSnapshot(snap series.Snapshot)
	ObservePeak(peak int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveIngest(string)           {}
func (nopRecorder) ObserveSnapshot(series.Snapshot) {}
func (nopRecorder) ObservePeak(int)                 {}
