// Package camera provides a 2D follow camera for the viewer.
package camera

import (
	"math"

	"github.com/pthm-cable/gobble/config"
)

// Camera follows the player over an unbounded plane. World space is y-up;
// screen space is y-down.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float64

	// Zoom level (1.0 = 1:1, 0.5 = world appears half size)
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	cfg             config.CameraConfig
	initialDiameter float64
}

// New creates a camera at the origin with the base zoom.
func New(viewportW, viewportH float64, cfg config.CameraConfig, initialDiameter float64) *Camera {
	return &Camera{
		Zoom:            cfg.BaseZoom,
		ViewportW:       viewportW,
		ViewportH:       viewportH,
		cfg:             cfg,
		initialDiameter: initialDiameter,
	}
}

// TargetZoom returns the zoom the camera eases toward for a body diameter.
func (c *Camera) TargetZoom(diameter float64) float64 {
	z := c.cfg.BaseZoom - (diameter-c.initialDiameter)*c.cfg.ZoomPerUnit
	return clamp(z, c.cfg.MinZoom, c.cfg.BaseZoom)
}

// Follow moves the camera toward the player and eases the zoom.
func (c *Camera) Follow(px, py, diameter, dt float64) {
	// Exponential smoothing, frame-rate independent
	k := 1 - math.Exp(-c.cfg.Smoothing*dt)
	c.X += (px - c.X) * k
	c.Y += (py - c.Y) * k
	c.Zoom += (c.TargetZoom(diameter) - c.Zoom) * k
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 - (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y - (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float64) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return math.Abs(wx-c.X) <= halfW && math.Abs(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float64) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
