package ui

import (
	"path/filepath"
	"testing"

	"github.com/pthm-cable/gobble/store"
)

func TestLoadSettingsDefaults(t *testing.T) {
	st := LoadSettings(store.New(""))
	want := Settings{MusicVolume: DefaultVolume, SFXVolume: DefaultVolume}
	if st != want {
		t.Errorf("LoadSettings = %+v, want %+v", st, want)
	}
}

func TestSettingsPanelApplyPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.yaml")
	s := store.New(path)

	p := NewSettingsPanel(0, 0, 280)
	p.Bind(s)
	p.Apply(Settings{MusicVolume: 0.25, SFXVolume: 0.5, MuteSFX: true})

	if !s.Dirty() {
		t.Fatal("store not dirty after Apply")
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := LoadSettings(loaded)
	want := Settings{MusicVolume: 0.25, SFXVolume: 0.5, MuteSFX: true}
	if got != want {
		t.Errorf("reloaded settings = %+v, want %+v", got, want)
	}
}

func TestEffectiveVolumes(t *testing.T) {
	tests := []struct {
		name      string
		settings  Settings
		wantMusic float64
		wantSFX   float64
	}{
		{"unmuted", Settings{MusicVolume: 0.6, SFXVolume: 0.4}, 0.6, 0.4},
		{"music muted", Settings{MusicVolume: 0.6, SFXVolume: 0.4, MuteMusic: true}, 0, 0.4},
		{"both muted", Settings{MusicVolume: 0.6, SFXVolume: 0.4, MuteMusic: true, MuteSFX: true}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.settings.EffectiveMusic(); got != tt.wantMusic {
				t.Errorf("EffectiveMusic = %v, want %v", got, tt.wantMusic)
			}
			if got := tt.settings.EffectiveSFX(); got != tt.wantSFX {
				t.Errorf("EffectiveSFX = %v, want %v", got, tt.wantSFX)
			}
		})
	}
}

func TestSettingsPanelToggle(t *testing.T) {
	p := NewSettingsPanel(0, 0, 280)
	if p.IsVisible() {
		t.Fatal("panel starts visible")
	}
	if !p.Toggle() || !p.IsVisible() {
		t.Error("Toggle did not show the panel")
	}
	p.SetVisible(false)
	if p.IsVisible() {
		t.Error("SetVisible(false) left the panel visible")
	}
}
