package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gobble/systems"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Score         int
	HighScore     int
	Diameter      float64
	Phase         int
	PhaseProgress float32 // Fraction of the way to the next phase
	Target        string
	TargetColor   rl.Color
	ShieldLeft    float64 // Seconds of shield remaining (0 = none)
	InDanger      bool
	Live          int
	Tick          int32
	Speed         int
	FPS           int32
	Paused        bool
	Ready         bool
	ScreenWidth   int32
	ScreenHeight  int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	perf     *PerfPanel
	showPerf bool
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		perf:     NewPerfPanel(10, 140),
	}
}

// TogglePerf shows or hides the performance panel.
func (h *HUD) TogglePerf() bool {
	h.showPerf = !h.showPerf
	return h.showPerf
}

// ShowPerf reports whether the performance panel is shown.
func (h *HUD) ShowPerf() bool {
	return h.showPerf
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	if !data.Ready {
		msg := "Loading..."
		w := rl.MeasureText(msg, 24)
		rl.DrawText(msg, (data.ScreenWidth-w)/2, data.ScreenHeight/2-12, 24, rl.White)
		return
	}

	rl.DrawText(fmt.Sprintf("Score: %d", data.Score), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Best: %d", data.HighScore), 10, 35, 16, rl.LightGray)

	rl.DrawText(
		fmt.Sprintf("Size: %.0f | Phase: %d | Entities: %d", data.Diameter, data.Phase, data.Live),
		10, 55, 16, rl.LightGray,
	)

	// Target swatch
	rl.DrawText("Eat:", 10, 77, 16, rl.LightGray)
	rl.DrawCircle(52, 85, 8, data.TargetColor)
	rl.DrawText(data.Target, 66, 77, 16, data.TargetColor)

	h.renderer.DrawBar(10, 97, "Growth", data.PhaseProgress, 240)

	status := fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d", data.Tick, data.Speed, data.FPS)
	rl.DrawText(status, 10, 117, 14, rl.Gray)

	// Status line, right aligned
	x := data.ScreenWidth - 10
	if data.Paused {
		x = h.drawRight(x, "PAUSED", rl.Yellow)
	}
	if data.ShieldLeft > 0 {
		x = h.drawRight(x, fmt.Sprintf("SHIELD %.1fs", data.ShieldLeft), rl.SkyBlue)
	}
	if data.InDanger {
		h.drawRight(x, "DANGER", rl.Red)
	}
}

// drawRight draws text ending at x and returns the x for the next item.
func (h *HUD) drawRight(x int32, text string, color rl.Color) int32 {
	w := rl.MeasureText(text, 16)
	rl.DrawText(text, x-w, 10, 16, color)
	return x - w - 12
}

// DrawPerf renders the performance panel if it is shown.
func (h *HUD) DrawPerf(data PerfPanelData) {
	if !h.showPerf {
		return
	}
	h.perf.Draw(data)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds performance metrics for display.
type PerfPanelData struct {
	PhaseAvg map[string]time.Duration
	Total    time.Duration
	TPS      float64
	Registry *systems.SystemRegistry
}

// PerfPanel renders the system performance panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel, grouped by system category.
func (p *PerfPanel) Draw(data PerfPanelData) {
	var cats []string
	rows := 0
	if data.Registry != nil {
		cats = data.Registry.Categories()
		rows = len(cats) + len(data.Registry.IDs())
	}

	r := p.renderer
	height := int32(rows)*14 + 36 + r.Theme.Padding*2
	r.DrawPanel(p.x, p.y, 260, height)

	x := p.x + r.Theme.Padding
	y := p.y + r.Theme.Padding

	rl.DrawText("System Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s | %.0f tps", data.Total.Round(time.Microsecond), data.TPS), x, y, 14, rl.Yellow)
	y += 16

	for _, cat := range cats {
		rl.DrawText(cat, x, y, 12, rl.SkyBlue)
		y += 14

		for _, info := range data.Registry.ByCategory(cat) {
			avg := data.PhaseAvg[info.ID]
			pct := float64(0)
			if data.Total > 0 {
				pct = float64(avg) / float64(data.Total) * 100
			}

			color := rl.LightGray
			if pct > 40 {
				color = rl.Red
			} else if pct > 20 {
				color = rl.Orange
			}

			rl.DrawText(
				fmt.Sprintf("  %-14s %6s %5.1f%%", info.Name, avg.Round(time.Microsecond), pct),
				x, y, 12, color,
			)
			y += 14
		}
	}
}
