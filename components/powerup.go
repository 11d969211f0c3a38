package components

// PowerUp holds a power-up's straight-line trajectory.
type PowerUp struct {
	Kind     PowerUpKind
	StartX   float64
	StartY   float64
	EndX     float64
	EndY     float64
	Start    float64 // Simulation seconds at launch
	Duration float64 // Seconds from start to end at constant speed
	Diameter float64
	Cosmetic bool // Premium trail (entitlement-gated, no gameplay effect)
}

// At returns the position along the trajectory at time now and whether
// the trajectory has completed.
func (p *PowerUp) At(now float64) (x, y float64, done bool) {
	if p.Duration <= 0 {
		return p.EndX, p.EndY, true
	}
	t := (now - p.Start) / p.Duration
	if t >= 1 {
		return p.EndX, p.EndY, true
	}
	if t < 0 {
		t = 0
	}
	return p.StartX + (p.EndX-p.StartX)*t, p.StartY + (p.EndY-p.StartY)*t, false
}
