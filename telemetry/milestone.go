package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/gobble/config"
)

// MilestoneType identifies the type of milestone.
type MilestoneType string

const (
	MilestonePhaseReached  MilestoneType = "phase_reached"
	MilestoneDiameterCrash MilestoneType = "diameter_crash"
	MilestoneHotStreak     MilestoneType = "hot_streak"
)

// Milestone represents an automatically detected moment in a session.
type Milestone struct {
	Session     string        `csv:"session" json:"session"`
	Type        MilestoneType `csv:"type" json:"type"`
	Tick        int32         `csv:"tick" json:"tick"`
	Description string        `csv:"description" json:"description"`
}

// LogMilestone logs the milestone using slog.
func (m Milestone) LogMilestone() {
	slog.Info("milestone",
		"type", string(m.Type),
		"tick", m.Tick,
		"description", m.Description,
	)
}

// MilestoneDetector detects interesting moments from window stats.
type MilestoneDetector struct {
	cfg config.MilestonesConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	bestPhase  int
	inStreak   bool
	crashArmed bool
}

// NewMilestoneDetector creates a detector with the given history size.
func NewMilestoneDetector(cfg config.MilestonesConfig, historySize int) *MilestoneDetector {
	if historySize < 2 {
		historySize = 2
	}
	return &MilestoneDetector{
		cfg:         cfg,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
		bestPhase:   1,
		crashArmed:  true,
	}
}

// Check analyzes the latest stats and returns any triggered milestones.
func (md *MilestoneDetector) Check(stats WindowStats) []Milestone {
	var out []Milestone

	if m := md.checkPhaseReached(stats); m != nil {
		out = append(out, *m)
	}
	if m := md.checkDiameterCrash(stats); m != nil {
		out = append(out, *m)
	}
	if m := md.checkHotStreak(stats); m != nil {
		out = append(out, *m)
	}

	md.addToHistory(stats)

	for i := range out {
		out[i].Session = stats.Session
	}
	return out
}

func (md *MilestoneDetector) addToHistory(stats WindowStats) {
	md.history[md.historyIdx] = stats
	md.historyIdx = (md.historyIdx + 1) % md.historySize
	if md.historyIdx == 0 {
		md.historyFull = true
	}
}

func (md *MilestoneDetector) getHistory() []WindowStats {
	if md.historyFull {
		return md.history
	}
	return md.history[:md.historyIdx]
}

func (md *MilestoneDetector) checkPhaseReached(stats WindowStats) *Milestone {
	if stats.Phase <= md.bestPhase {
		return nil
	}
	md.bestPhase = stats.Phase
	return &Milestone{
		Type:        MilestonePhaseReached,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Reached phase %d at diameter %.0f", stats.Phase, stats.Diameter),
	}
}

func (md *MilestoneDetector) checkDiameterCrash(stats WindowStats) *Milestone {
	var peak float64
	for _, h := range md.getHistory() {
		if h.Diameter > peak {
			peak = h.Diameter
		}
	}
	if peak == 0 {
		return nil
	}

	drop := 1 - stats.Diameter/peak
	if drop < md.cfg.CrashDropPercent {
		// Re-arm once the body is back near its peak
		if drop < md.cfg.CrashDropPercent/2 {
			md.crashArmed = true
		}
		return nil
	}
	if !md.crashArmed {
		return nil
	}
	md.crashArmed = false

	return &Milestone{
		Type:        MilestoneDiameterCrash,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Diameter fell %.0f%% from peak %.0f to %.0f", drop*100, peak, stats.Diameter),
	}
}

func (md *MilestoneDetector) checkHotStreak(stats WindowStats) *Milestone {
	hot := stats.Consumed() >= md.cfg.StreakMinConsumed && stats.Accuracy >= md.cfg.StreakAccuracy
	if !hot {
		md.inStreak = false
		return nil
	}
	if md.inStreak {
		return nil
	}
	md.inStreak = true

	return &Milestone{
		Type:        MilestoneHotStreak,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d of %d consumptions correct", stats.Correct, stats.Consumed()),
	}
}
