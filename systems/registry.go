package systems

// SystemInfo describes a simulation system for UI display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping (e.g., "core", "visual", "ai")
}

// SystemRegistry holds metadata about all systems.
// This centralizes system naming so the UI and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
}

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known systems to the registry.
// Update this when adding new systems.
func (r *SystemRegistry) registerDefaults() {
	// Input and prediction
	r.Register(SystemInfo{ID: "predictor", Name: "Predictor", Description: "Records player positions and derives spawn bias", Category: "input"})

	// Spawning
	r.Register(SystemInfo{ID: "spawn", Name: "Spawn Director", Description: "Spawns single entities ahead of the player", Category: "spawning"})
	r.Register(SystemInfo{ID: "formation", Name: "Formations", Description: "Spawns patterned groups of entities", Category: "spawning"})
	r.Register(SystemInfo{ID: "powerups", Name: "Power-ups", Description: "Schedules power-up fly-bys", Category: "spawning"})

	// Movement and contact
	r.Register(SystemInfo{ID: "movement", Name: "Movement", Description: "Moves the player, entity drift and orbits", Category: "physics"})
	r.Register(SystemInfo{ID: "contacts", Name: "Contacts", Description: "Resolves consumptions and merges", Category: "physics"})

	// Dispatch
	r.Register(SystemInfo{ID: "events", Name: "Events", Description: "Dispatches queued events to handlers", Category: "core"})

	// Cleanup
	r.Register(SystemInfo{ID: "cleanup", Name: "Cleanup", Description: "Removes expired and distant entities", Category: "core"})

	// Data collection (internal)
	r.Register(SystemInfo{ID: "telemetry", Name: "Telemetry", Description: "Collects window stats and milestones", Category: "internal"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
