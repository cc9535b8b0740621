package series

import "time"

// Window is how far back samples are retained and reported.
const Window = 24 * time.Hour

type Sample struct {
	Timestamp int64 `json:"t"`
	Count     int   `json:"c"`
}

func (s Sample) Time() time.Time {
	return time.Unix(s.Timestamp, 0)
}

type Snapshot struct {
	PlayerCount int    `json:"player_count"`
	RoomName    string `json:"room_name"`
	GameVersion string `json:"game_version"`
	GameName    string `json:"game_name"`
	Timestamp   int64  `json:"timestamp"`
}

func (s Snapshot) Time() time.Time {
	return time.Unix(s.Timestamp, 0)
}

// Sample returns the series point recorded alongside the snapshot.
func (s Snapshot) Sample() Sample {
	return Sample{Timestamp: s.Timestamp, Count: s.PlayerCount}
}

// Peak returns the largest count in samples, or 0 when there are none.
func Peak(samples []Sample) int {
	peak := 0
	for _, s := range samples {
		if s.Count > peak {
			peak = s.Count
		}
	}
	return peak
}

// Cutoff returns the oldest timestamp still inside the window ending at now.
func Cutoff(now time.Time) int64 {
	return now.Add(-Window).Unix()
}
