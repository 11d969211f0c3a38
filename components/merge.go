package components

// Merge holds per-entity merge and orbital decoration state.
type Merge struct {
	Count     int     // Merges absorbed so far
	LastMerge float64 // Simulation seconds of the last merge

	// Orbit around the merge centroid while OrbitUntil > now
	OrbitX, OrbitY float64
	OrbitRadius    float64
	OrbitAngle     float64
	OrbitUntil     float64
}

// Orbiting reports whether the orbital decoration is active.
func (m *Merge) Orbiting(now float64) bool {
	return now < m.OrbitUntil
}

// Reset clears merge and orbital state.
func (m *Merge) Reset() {
	*m = Merge{}
}
