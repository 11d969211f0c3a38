package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gobble/store"
)

// DefaultVolume is used until a volume has been saved.
const DefaultVolume = 0.8

// SettingsStore is the persistence behind the settings panel.
type SettingsStore interface {
	Float(key string, def float64) float64
	SetFloat(key string, v float64)
	Bool(key string) bool
	SetBool(key string, v bool)
}

// Settings is the current audio configuration.
type Settings struct {
	MusicVolume float64
	SFXVolume   float64
	MuteMusic   bool
	MuteSFX     bool
}

// LoadSettings reads settings from a store, falling back to defaults.
func LoadSettings(s SettingsStore) Settings {
	return Settings{
		MusicVolume: s.Float(store.KeyVolumeMusic, DefaultVolume),
		SFXVolume:   s.Float(store.KeyVolumeSFX, DefaultVolume),
		MuteMusic:   s.Bool(store.KeyMuteMusic),
		MuteSFX:     s.Bool(store.KeyMuteSFX),
	}
}

// Save writes settings to a store. Unchanged values leave the store clean.
func (st Settings) Save(s SettingsStore) {
	s.SetFloat(store.KeyVolumeMusic, st.MusicVolume)
	s.SetFloat(store.KeyVolumeSFX, st.SFXVolume)
	s.SetBool(store.KeyMuteMusic, st.MuteMusic)
	s.SetBool(store.KeyMuteSFX, st.MuteSFX)
}

// EffectiveMusic returns the music volume after muting.
func (st Settings) EffectiveMusic() float64 {
	if st.MuteMusic {
		return 0
	}
	return st.MusicVolume
}

// EffectiveSFX returns the effects volume after muting.
func (st Settings) EffectiveSFX() float64 {
	if st.MuteSFX {
		return 0
	}
	return st.SFXVolume
}

// SettingsPanel renders the audio settings with raygui controls and writes
// changes straight back to the bound store.
type SettingsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	store    SettingsStore
	settings Settings
}

// NewSettingsPanel creates a hidden settings panel.
func NewSettingsPanel(x, y, width int32) *SettingsPanel {
	return &SettingsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		settings: Settings{MusicVolume: DefaultVolume, SFXVolume: DefaultVolume},
	}
}

// Bind loads settings from a store and persists later changes to it.
func (p *SettingsPanel) Bind(s SettingsStore) {
	p.store = s
	p.settings = LoadSettings(s)
}

// Settings returns the current settings.
func (p *SettingsPanel) Settings() Settings {
	return p.settings
}

// SetVisible shows or hides the panel.
func (p *SettingsPanel) SetVisible(visible bool) {
	p.visible = visible
}

// IsVisible returns whether the panel is shown.
func (p *SettingsPanel) IsVisible() bool {
	return p.visible
}

// Toggle switches panel visibility.
func (p *SettingsPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Apply replaces the settings and persists them if a store is bound.
func (p *SettingsPanel) Apply(st Settings) {
	p.settings = st
	if p.store != nil {
		st.Save(p.store)
	}
}

// Draw renders the panel and applies any change made through it.
func (p *SettingsPanel) Draw() {
	if !p.visible {
		return
	}

	r := p.renderer
	padding := r.Theme.Padding
	r.DrawPanel(p.x, p.y, p.width, 170)

	x := float32(p.x + padding)
	y := float32(p.y + padding)
	sliderW := float32(p.width - padding*2 - 50)

	rl.DrawText("Settings", int32(x), int32(y), 16, rl.White)
	y += 26

	next := p.settings

	rl.DrawText("Music volume", int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 14
	next.MusicVolume = float64(gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 16},
		"", "",
		float32(p.settings.MusicVolume), 0, 1,
	))
	rl.DrawText(fmt.Sprintf("%.0f%%", next.MusicVolume*100), int32(x+sliderW+6), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
	y += 26

	rl.DrawText("Effects volume", int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 14
	next.SFXVolume = float64(gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 16},
		"", "",
		float32(p.settings.SFXVolume), 0, 1,
	))
	rl.DrawText(fmt.Sprintf("%.0f%%", next.SFXVolume*100), int32(x+sliderW+6), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
	y += 28

	halfW := (float32(p.width) - float32(padding)*3) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: halfW, Height: 24}, toggleText(p.settings.MuteMusic, "Unmute music", "Mute music")) {
		next.MuteMusic = !next.MuteMusic
	}
	if gui.Button(rl.Rectangle{X: x + halfW + float32(padding), Y: y, Width: halfW, Height: 24}, toggleText(p.settings.MuteSFX, "Unmute effects", "Mute effects")) {
		next.MuteSFX = !next.MuteSFX
	}

	if next != p.settings {
		p.Apply(next)
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
