package rating

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// SnapshotVersion is bumped whenever the serialized layout changes.
const SnapshotVersion = 1

// Snapshot is the persisted form of a Tracker: the two rating maps plus the
// base constant, tagged with provenance about the replay that produced it.
type Snapshot struct {
	ID            uuid.UUID          `json:"id" db:"id"`
	Version       int                `json:"version" db:"version"`
	Base          float64            `json:"base" db:"base"`
	DriverRatings map[string]float64 `json:"driver_ratings" db:"driver_ratings"`
	TeamRatings   map[string]float64 `json:"team_ratings" db:"team_ratings"`
	RacesReplayed int                `json:"races_replayed" db:"races_replayed"`
	CreatedAt     time.Time          `json:"created_at" db:"created_at"`
}

// Snapshot copies the tracker state into a serializable snapshot.
func (t *Tracker) Snapshot(racesReplayed int) *Snapshot {
	s := &Snapshot{
		ID:            uuid.New(),
		Version:       SnapshotVersion,
		Base:          t.base,
		DriverRatings: make(map[string]float64, len(t.drivers)),
		TeamRatings:   make(map[string]float64, len(t.teams)),
		RacesReplayed: racesReplayed,
		CreatedAt:     time.Now().UTC(),
	}
	for k, v := range t.drivers {
		s.DriverRatings[k] = v
	}
	for k, v := range t.teams {
		s.TeamRatings[k] = v
	}
	return s
}

// FromSnapshot reconstructs a tracker from a persisted snapshot.
func FromSnapshot(s *Snapshot) (*Tracker, error) {
	if s == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	t := NewTracker(s.Base)
	for k, v := range s.DriverRatings {
		t.drivers[k] = v
	}
	for k, v := range s.TeamRatings {
		t.teams[k] = v
	}
	return t, nil
}

// WriteFile persists the snapshot as JSON.
func (s *Snapshot) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshotFile loads a snapshot previously written with WriteFile.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	s := &Snapshot{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return s, nil
}
