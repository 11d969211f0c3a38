// Package feedback defines the collaborators that react to simulation
// outcomes (audio, haptics, effects) and the entitlement query.
package feedback

import (
	"log/slog"
	"sync"

	"github.com/pthm-cable/gobble/components"
)

// Sink receives gameplay feedback. Calls come from the simulation tick.
type Sink interface {
	OnCorrectConsumption(size float64)
	OnIncorrectConsumption(inDanger bool)
	OnPowerUpCollected(kind components.PowerUpKind)
	OnDangerPulse()
}

// Entitlements reports purchase state. Only cosmetics depend on it.
type Entitlements interface {
	AdsSuppressed() bool
}

// Static is a fixed entitlement answer.
type Static bool

// AdsSuppressed implements Entitlements.
func (s Static) AdsSuppressed() bool { return bool(s) }

// LogSink logs feedback at debug level.
type LogSink struct {
	Logger *slog.Logger
}

func (l LogSink) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

// OnCorrectConsumption implements Sink.
func (l LogSink) OnCorrectConsumption(size float64) {
	l.logger().Debug("feedback", "kind", "correct", "size", size)
}

// OnIncorrectConsumption implements Sink.
func (l LogSink) OnIncorrectConsumption(inDanger bool) {
	l.logger().Debug("feedback", "kind", "incorrect", "in_danger", inDanger)
}

// OnPowerUpCollected implements Sink.
func (l LogSink) OnPowerUpCollected(kind components.PowerUpKind) {
	l.logger().Debug("feedback", "kind", "powerup", "powerup", kind.String())
}

// OnDangerPulse implements Sink.
func (l LogSink) OnDangerPulse() {
	l.logger().Debug("feedback", "kind", "danger_pulse")
}

// Multi fans feedback out to several sinks in order.
type Multi []Sink

// OnCorrectConsumption implements Sink.
func (m Multi) OnCorrectConsumption(size float64) {
	for _, s := range m {
		s.OnCorrectConsumption(size)
	}
}

// OnIncorrectConsumption implements Sink.
func (m Multi) OnIncorrectConsumption(inDanger bool) {
	for _, s := range m {
		s.OnIncorrectConsumption(inDanger)
	}
}

// OnPowerUpCollected implements Sink.
func (m Multi) OnPowerUpCollected(kind components.PowerUpKind) {
	for _, s := range m {
		s.OnPowerUpCollected(kind)
	}
}

// OnDangerPulse implements Sink.
func (m Multi) OnDangerPulse() {
	for _, s := range m {
		s.OnDangerPulse()
	}
}

// Recorder counts feedback calls. It is safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	Correct   []float64
	Incorrect []bool
	PowerUps  []components.PowerUpKind
	Pulses    int
}

// OnCorrectConsumption implements Sink.
func (r *Recorder) OnCorrectConsumption(size float64) {
	r.mu.Lock()
	r.Correct = append(r.Correct, size)
	r.mu.Unlock()
}

// OnIncorrectConsumption implements Sink.
func (r *Recorder) OnIncorrectConsumption(inDanger bool) {
	r.mu.Lock()
	r.Incorrect = append(r.Incorrect, inDanger)
	r.mu.Unlock()
}

// OnPowerUpCollected implements Sink.
func (r *Recorder) OnPowerUpCollected(kind components.PowerUpKind) {
	r.mu.Lock()
	r.PowerUps = append(r.PowerUps, kind)
	r.mu.Unlock()
}

// OnDangerPulse implements Sink.
func (r *Recorder) OnDangerPulse() {
	r.mu.Lock()
	r.Pulses++
	r.mu.Unlock()
}

// Counts returns the number of calls of each kind.
func (r *Recorder) Counts() (correct, incorrect, powerUps, pulses int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Correct), len(r.Incorrect), len(r.PowerUps), r.Pulses
}
