package components

// Edible holds the consumable properties of a spawned entity.
type Edible struct {
	Category Category
	Diameter float64
	Score    int
	Mass     float64
}

// Lifetime tracks when an entity appeared and when it times out.
type Lifetime struct {
	SpawnedAt float64 // Simulation seconds
	ExpiresAt float64 // Simulation seconds (0 = never)
	FadeIn    float64 // Seconds to scale in (0 = appears at full size)
}

// Scale returns the fade-in scale in [0, 1] at time now.
func (l *Lifetime) Scale(now float64) float64 {
	if l.FadeIn <= 0 {
		return 1
	}
	s := (now - l.SpawnedAt) / l.FadeIn
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Expired reports whether the entity has outlived its lifetime.
func (l *Lifetime) Expired(now float64) bool {
	return l.ExpiresAt > 0 && now >= l.ExpiresAt
}
