package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/gobble/components"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the session state at one tick.
type Snapshot struct {
	Version int    `json:"version"`
	Session string `json:"session"`
	RNGSeed int64  `json:"rng_seed"`

	Tick    int32   `json:"tick"`
	SimTime float64 `json:"sim_time"`

	Body BodyState `json:"body"`

	Entities []EntityState  `json:"entities"`
	PowerUps []PowerUpState `json:"powerups,omitempty"`

	Milestone *Milestone `json:"milestone,omitempty"`
}

// BodyState holds the consumer body.
type BodyState struct {
	X        float64             `json:"x"`
	Y        float64             `json:"y"`
	Diameter float64             `json:"diameter"`
	Phase    int                 `json:"phase"`
	Target   components.Category `json:"target"`
	Score    int                 `json:"score"`
	Shielded bool                `json:"shielded"`
}

// EntityState holds one spawned entity.
type EntityState struct {
	ID       uint32              `json:"id"`
	Category components.Category `json:"category"`
	Diameter float64             `json:"diameter"`
	X        float64             `json:"x"`
	Y        float64             `json:"y"`
	VelX     float64             `json:"vel_x"`
	VelY     float64             `json:"vel_y"`
	Merges   int                 `json:"merges,omitempty"`
}

// PowerUpState holds one in-flight power-up.
type PowerUpState struct {
	Kind components.PowerUpKind `json:"kind"`
	X    float64                `json:"x"`
	Y    float64                `json:"y"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Milestone != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Milestone.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
