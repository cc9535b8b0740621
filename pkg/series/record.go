package series

import (
	"encoding/json"
	"errors"
	"fmt"
)

// RecordVersion is stamped on every persisted sample and snapshot.
// Records without a version field were written before tagging and are read as version 1.
const RecordVersion = 1

var ErrUnknownVersion = errors.New("unknown record version")

type sampleRecord struct {
	Version int   `json:"v"`
	T       int64 `json:"t"`
	C       int   `json:"c"`
}

type snapshotRecord struct {
	Version     int    `json:"v"`
	PlayerCount int    `json:"player_count"`
	RoomName    string `json:"room_name"`
	GameVersion string `json:"game_version"`
	GameName    string `json:"game_name"`
	Timestamp   int64  `json:"timestamp"`
}

func EncodeSample(s Sample) ([]byte, error) {
	return json.Marshal(sampleRecord{Version: RecordVersion, T: s.Timestamp, C: s.Count})
}

func DecodeSample(data []byte) (Sample, error) {
	var rec sampleRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Sample{}, fmt.Errorf("failed to decode sample: %w", err)
	}
	if err := checkVersion(rec.Version); err != nil {
		return Sample{}, err
	}
	return Sample{Timestamp: rec.T, Count: rec.C}, nil
}

func EncodeSnapshot(s Snapshot) ([]byte, error) {
	return json.Marshal(snapshotRecord{
		Version:     RecordVersion,
		PlayerCount: s.PlayerCount,
		RoomName:    s.RoomName,
		GameVersion: s.GameVersion,
		GameName:    s.GameName,
		Timestamp:   s.Timestamp,
	})
}

func DecodeSnapshot(data []byte) (Snapshot, error) {
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := checkVersion(rec.Version); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		PlayerCount: rec.PlayerCount,
		RoomName:    rec.RoomName,
		GameVersion: rec.GameVersion,
		GameName:    rec.GameName,
		Timestamp:   rec.Timestamp,
	}, nil
}

func checkVersion(v int) error {
	if v == 0 || v == RecordVersion {
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownVersion, v)
}
