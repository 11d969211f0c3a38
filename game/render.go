package game

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gobble/components"
	"github.com/pthm-cable/gobble/store"
	"github.com/pthm-cable/gobble/ui"
)

// categoryColors maps categories to fill colours, smallest first.
var categoryColors = [components.CategoryCount]rl.Color{
	{R: 120, G: 220, B: 140, A: 255},
	{R: 110, G: 190, B: 240, A: 255},
	{R: 240, G: 210, B: 100, A: 255},
	{R: 240, G: 140, B: 80, A: 255},
	{R: 200, G: 100, B: 220, A: 255},
}

var (
	bodyColor     = rl.Color{R: 245, G: 245, B: 245, A: 255}
	shieldColor   = rl.Color{R: 100, G: 200, B: 255, A: 160}
	dangerOutline = rl.Color{R: 230, G: 60, B: 60, A: 255}
	backdropColor = rl.Color{R: 14, G: 18, B: 26, A: 255}
	gridColor     = rl.Color{R: 30, G: 36, B: 48, A: 255}
)

// gridSpacing is the world distance between backdrop grid lines.
const gridSpacing = 200.0

const controlsLegend = "[Mouse/WASD] move  [Space] pause  [</>] speed  [Tab] settings  [F3] perf  [F11] fullscreen"

func categoryColor(c components.Category) rl.Color {
	if !c.Valid() {
		return rl.Gray
	}
	return categoryColors[c.Index()]
}

// Draw renders the game.
func (g *Game) Draw() {
	g.camera.Follow(g.player.X, g.player.Y, g.body.Diameter(), float64(rl.GetFrameTime()))

	rl.BeginDrawing()
	rl.ClearBackground(backdropColor)

	g.drawBackdrop()
	g.drawEntities()
	g.drawPowerUps()
	g.drawBody()

	g.drawUI()

	rl.EndDrawing()
}

// drawBackdrop draws a world-space grid so movement is visible.
func (g *Game) drawBackdrop() {
	c := g.camera
	halfW := c.ViewportW / 2 / c.Zoom
	halfH := c.ViewportH / 2 / c.Zoom

	x0 := math.Floor((c.X-halfW)/gridSpacing) * gridSpacing
	for x := x0; x <= c.X+halfW; x += gridSpacing {
		sx, _ := c.WorldToScreen(x, 0)
		rl.DrawLine(int32(sx), 0, int32(sx), int32(c.ViewportH), gridColor)
	}
	y0 := math.Floor((c.Y-halfH)/gridSpacing) * gridSpacing
	for y := y0; y <= c.Y+halfH; y += gridSpacing {
		_, sy := c.WorldToScreen(0, y)
		rl.DrawLine(0, int32(sy), int32(c.ViewportW), int32(sy), gridColor)
	}
}

// drawEntities renders edible entities, outlining those too large to eat.
func (g *Game) drawEntities() {
	c := g.camera

	query := g.edibleFilter.Query()
	for query.Next() {
		pos, _, edible, life, _ := query.Get()

		r := edible.Diameter / 2 * life.Scale(g.now)
		if r <= 0 || !c.IsVisible(pos.X, pos.Y, r) {
			continue
		}
		sx, sy := c.WorldToScreen(pos.X, pos.Y)
		sr := float32(r * c.Zoom)
		center := rl.Vector2{X: float32(sx), Y: float32(sy)}

		rl.DrawCircleV(center, sr, categoryColor(edible.Category))
		if !g.body.CanConsume(edible.Diameter) {
			rl.DrawRing(center, sr, sr+2, 0, 360, 32, dangerOutline)
		}
	}
}

// drawPowerUps renders in-flight power-ups.
func (g *Game) drawPowerUps() {
	c := g.camera

	query := g.powerUpFilter.Query()
	for query.Next() {
		pos, pu := query.Get()
		r := pu.Diameter / 2
		if !c.IsVisible(pos.X, pos.Y, r) {
			continue
		}
		sx, sy := c.WorldToScreen(pos.X, pos.Y)
		center := rl.Vector2{X: float32(sx), Y: float32(sy)}
		sr := float32(r * c.Zoom)

		color := rl.Gold
		if pu.Kind == components.PowerUpShield {
			color = rl.SkyBlue
		}
		if pu.Cosmetic {
			// Premium trail
			dx, dy := pu.EndX-pu.StartX, pu.EndY-pu.StartY
			n := math.Hypot(dx, dy)
			if n > 0 {
				tx, ty := c.WorldToScreen(pos.X-dx/n*r*4, pos.Y-dy/n*r*4)
				rl.DrawLineEx(center, rl.Vector2{X: float32(tx), Y: float32(ty)}, sr, rl.Fade(color, 0.35))
			}
		}
		rl.DrawCircleV(center, sr, color)
	}
}

// drawBody renders the player body with its target ring.
func (g *Game) drawBody() {
	c := g.camera
	sx, sy := c.WorldToScreen(g.player.X, g.player.Y)
	center := rl.Vector2{X: float32(sx), Y: float32(sy)}
	sr := float32(g.body.Diameter() / 2 * c.Zoom)

	rl.DrawCircleV(center, sr, bodyColor)
	rl.DrawRing(center, sr-3, sr, 0, 360, 48, categoryColor(g.body.Target()))
	if g.shielded() {
		rl.DrawRing(center, sr+4, sr+8, 0, 360, 48, shieldColor)
	}
}

// drawUI renders the HUD, perf panel and settings.
func (g *Game) drawUI() {
	w, h := int32(g.camera.ViewportW), int32(g.camera.ViewportH)

	data := ui.HUDData{
		Score:         g.score,
		Diameter:      g.body.Diameter(),
		Phase:         g.body.Phase(),
		PhaseProgress: float32(g.phaseProgress()),
		Target:        g.body.Target().String(),
		TargetColor:   categoryColor(g.body.Target()),
		InDanger:      g.inDanger,
		Live:          g.liveEdibles,
		Tick:          g.tick,
		Speed:         g.stepsPerUpdate,
		FPS:           rl.GetFPS(),
		Paused:        g.paused,
		Ready:         g.ready,
		ScreenWidth:   w,
		ScreenHeight:  h,
	}
	if g.shielded() {
		data.ShieldLeft = g.shieldUntil - g.now
	}
	if g.stats != nil {
		data.HighScore = g.stats.Int(store.KeyHighScore)
	}
	g.hud.Draw(data)

	if g.hud.ShowPerf() {
		perf := g.perfCollector.Stats()
		g.hud.DrawPerf(ui.PerfPanelData{
			PhaseAvg: perf.PhaseAvg,
			Total:    perf.AvgTickDuration,
			TPS:      perf.TicksPerSecond,
			Registry: g.registry,
		})
	}

	g.settings.Draw()
	g.hud.DrawControls(w, h, controlsLegend)
}

// phaseProgress returns how far the body is between its phase bounds.
func (g *Game) phaseProgress() float64 {
	thresholds := g.cfg.Body.PhaseThresholds
	phase := g.body.Phase()
	if phase > len(thresholds) {
		return 1
	}
	lo := g.cfg.Body.MinDiameter
	if phase >= 2 {
		lo = thresholds[phase-2]
	}
	hi := thresholds[phase-1]
	if hi <= lo {
		return 1
	}
	return (g.body.Diameter() - lo) / (hi - lo)
}
