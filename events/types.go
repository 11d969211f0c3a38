// Package events carries typed simulation events from producers to the
// handlers that react to them. Events are queued during a tick and drained
// synchronously by a Router at a single dispatch point.
package events

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gobble/components"
)

// Type identifies an event and selects its payload type.
type Type int

const (
	// Contact reports a body/entity touch from the world layer.
	// Payload: ContactPayload
	Contact Type = iota

	// ConsumptionResolved reports the outcome of a resolved contact.
	// Payload: Consumption
	ConsumptionResolved

	// PowerUpCollected reports the body picking up a power-up.
	// Payload: PowerUp
	PowerUpCollected

	// PowerUpExpired reports a power-up finishing its trajectory.
	// Payload: PowerUp
	PowerUpExpired

	// EntitiesMerged reports two entities combining.
	// Payload: Merged
	EntitiesMerged

	// DangerPulse is one tick of the repeating danger-zone pulse.
	// Payload: nil
	DangerPulse

	// PhaseChanged reports the body crossing a phase threshold.
	// Payload: PhaseChange
	PhaseChanged

	// TargetChanged reports a new target category.
	// Payload: components.Category
	TargetChanged

	// Ready reports every startup prerequisite completed.
	// Payload: nil
	Ready

	NumTypes
)

var typeNames = [NumTypes]string{
	"contact",
	"consumption_resolved",
	"powerup_collected",
	"powerup_expired",
	"entities_merged",
	"danger_pulse",
	"phase_changed",
	"target_changed",
	"ready",
}

func (t Type) String() string {
	if t < 0 || t >= NumTypes {
		return "unknown"
	}
	return typeNames[t]
}

// Event is one queued occurrence.
type Event struct {
	Type    Type
	Time    float64 // Simulation time the event was raised
	Payload any
}

// Outcome is the terminal state of a resolved contact.
type Outcome uint8

const (
	Ineligible Outcome = iota // Entity too large; nothing happens
	Correct                   // Target category consumed
	Incorrect                 // Other category consumed
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "ineligible"
	}
}

// ContactPayload identifies the touched entity.
type ContactPayload struct {
	Entity ecs.Entity
}

// Consumption is the result of a resolved contact.
type Consumption struct {
	Outcome       Outcome
	Category      components.Category
	Diameter      float64 // Consumed entity diameter
	ScoreDelta    int
	GrowthPercent float64 // Applied growth fraction (Correct only)
	BodyDiameter  float64 // Body diameter after the outcome
	InDanger      bool
	Shielded      bool // Shrink skipped by an active shield
}

// PowerUp describes a power-up event.
type PowerUp struct {
	Kind components.PowerUpKind
}

// Merged describes an entity-entity merge.
type Merged struct {
	Category components.Category
	Diameter float64 // Survivor diameter after the merge
	Count    int     // Survivor merge count after the merge
}

// PhaseChange describes a phase transition.
type PhaseChange struct {
	From, To int
	Diameter float64
}
