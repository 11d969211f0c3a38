package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/gobble/components"
	"github.com/pthm-cable/gobble/config"
)

// MergeCandidate is one side of an entity/entity contact.
type MergeCandidate struct {
	Edible *components.Edible
	Merge  *components.Merge
	Pos    r2.Vec
}

// MergeRule handles contacts between two spawned entities. TryMerge
// reports whether a merged and, if so, whether a survived.
type MergeRule interface {
	TryMerge(now float64, a, b MergeCandidate) (ok, keepA bool)
}

// OrbitMerge combines same-category entities. The larger one survives with
// the area-sum diameter clamped to its category range, then orbits the
// contact centroid for a while.
type OrbitMerge struct {
	cfg        config.MergeConfig
	categories []config.CategoryConfig
}

// NewOrbitMerge creates the default merge rule.
func NewOrbitMerge(cfg *config.Config) *OrbitMerge {
	return &OrbitMerge{cfg: cfg.Merge, categories: cfg.Categories}
}

// CanMerge reports whether an entity's merge state allows another merge.
func (m *OrbitMerge) CanMerge(now float64, s *components.Merge) bool {
	if s.Count >= m.cfg.MaxMerges {
		return false
	}
	return s.Count == 0 || now-s.LastMerge >= m.cfg.Cooldown
}

// TryMerge implements MergeRule.
func (m *OrbitMerge) TryMerge(now float64, a, b MergeCandidate) (ok, keepA bool) {
	if !m.cfg.Enabled || a.Edible.Category != b.Edible.Category {
		return false, false
	}
	if !m.CanMerge(now, a.Merge) || !m.CanMerge(now, b.Merge) {
		return false, false
	}

	keepA = a.Edible.Diameter >= b.Edible.Diameter
	surv, lost := a, b
	if !keepA {
		surv, lost = b, a
	}

	ds, dl := surv.Edible.Diameter, lost.Edible.Diameter
	merged := math.Sqrt(ds*ds + dl*dl)
	if i := surv.Edible.Category.Index(); i >= 0 && i < len(m.categories) {
		merged = clamp(merged, m.categories[i].MinDiameter, m.categories[i].MaxDiameter)
	}
	surv.Edible.Diameter = merged

	// Area-weighted contact centroid
	ws, wl := ds*ds, dl*dl
	centroid := r2.Scale(1/(ws+wl), r2.Add(r2.Scale(ws, surv.Pos), r2.Scale(wl, lost.Pos)))
	rel := r2.Sub(surv.Pos, centroid)

	st := surv.Merge
	st.Count++
	st.LastMerge = now
	st.OrbitX, st.OrbitY = centroid.X, centroid.Y
	st.OrbitRadius = math.Max(r2.Norm(rel), merged/4)
	st.OrbitAngle = math.Atan2(rel.Y, rel.X)
	st.OrbitUntil = now + m.cfg.OrbitalDuration

	return true, keepA
}

// AdvanceOrbit moves an orbiting entity along its circle and returns the
// new position.
func AdvanceOrbit(s *components.Merge, speed, dt float64) r2.Vec {
	s.OrbitAngle = normalizeHeading(s.OrbitAngle + speed*dt)
	centre := r2.Vec{X: s.OrbitX, Y: s.OrbitY}
	return r2.Add(centre, r2.Scale(s.OrbitRadius, unit(s.OrbitAngle)))
}
