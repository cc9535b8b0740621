package store

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
	"github.com/rxtx-hosting/playercount/pkg/series"
)

const DefaultSeriesCap = 24

// State is the process-owned series buffer and snapshot behind the memory store.
// It lives from process start until Reset or restart. peak is the running
// maximum over every recorded sample, including those evicted by the cap.
type State struct {
	mu       sync.Mutex
	capacity int
	samples  deque.Deque[series.Sample]
	current  *series.Snapshot
	peak     int
}

func NewState(capacity int) *State {
	if capacity <= 0 {
		capacity = DefaultSeriesCap
	}
	return &State{capacity: capacity}
}

func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples.Clear()
	s.current = nil
	s.peak = 0
}

func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples.Len()
}

type Memory struct {
	state *State
}

func NewMemory(state *State) *Memory {
	if state == nil {
		state = NewState(DefaultSeriesCap)
	}
	return &Memory{state: state}
}

func (m *Memory) Record(_ context.Context, snap series.Snapshot) error {
	s := m.state
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples.PushBack(snap.Sample())
	s.peak = max(s.peak, snap.PlayerCount)
	for s.samples.Len() > s.capacity {
		s.samples.PopFront()
	}

	cutoff := series.Cutoff(snap.Time())
	for s.samples.Len() > 0 && s.samples.Front().Timestamp < cutoff {
		s.samples.PopFront()
	}

	current := snap
	s.current = &current
	return nil
}

func (m *Memory) Series(_ context.Context, since int64) ([]series.Sample, error) {
	s := m.state
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]series.Sample, 0, s.samples.Len())
	for i := 0; i < s.samples.Len(); i++ {
		sample := s.samples.At(i)
		if sample.Timestamp < since {
			continue
		}
		out = append(out, sample)
	}
	return out, nil
}

func (m *Memory) Current(_ context.Context) (series.Snapshot, bool, error) {
	s := m.state
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return series.Snapshot{}, false, nil
	}
	return *s.current, true, nil
}

func (m *Memory) Peak(_ context.Context) (int, error) {
	s := m.state
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
