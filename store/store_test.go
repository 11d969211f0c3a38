package store

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pthm-cable/gobble/components"
)

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Keys()) != 0 || s.Dirty() {
		t.Error("missing file should load as a clean empty store")
	}
	if got := s.Float(KeyVolumeMusic, 0.8); got != 0.8 {
		t.Errorf("default float = %v, want 0.8", got)
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stats.yaml")
	s := New(path)

	s.AddInt(AbsorbedKey(components.Category1), 3)
	s.AddInt(AbsorbedKey(components.Category1), 2)
	s.AddInt(AbsorbedKey(components.Category4), 1)
	s.MaxInt(KeyHighScore, 120)
	s.AddFloat(KeyPlayTime, 61.25)
	s.SetFloat(KeyVolumeMusic, 0.35)
	s.SetFloat(KeyVolumeSFX, 1)
	s.SetBool(KeyMuteSFX, true)

	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if s.Dirty() {
		t.Error("store dirty after save")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := loaded.Int("absorbed.c1"); got != 5 {
		t.Errorf("absorbed.c1 = %d, want 5", got)
	}
	if got := loaded.Int(AbsorbedKey(components.Category4)); got != 1 {
		t.Errorf("absorbed.c4 = %d, want 1", got)
	}
	if got := loaded.Int(KeyHighScore); got != 120 {
		t.Errorf("high_score = %d, want 120", got)
	}
	if got := loaded.Float(KeyPlayTime, 0); math.Abs(got-61.25) > 1e-12 {
		t.Errorf("play_time = %v, want 61.25", got)
	}
	if got := loaded.Float(KeyVolumeMusic, 0); got != 0.35 {
		t.Errorf("volume.music = %v, want 0.35", got)
	}
	if got := loaded.Float(KeyVolumeSFX, 0); got != 1 {
		t.Errorf("volume.sfx = %v, want 1", got)
	}
	if !loaded.Bool(KeyMuteSFX) || loaded.Bool(KeyMuteMusic) {
		t.Error("mute flags not preserved")
	}

	// Reloading and saving without changes does not touch the file
	if loaded.Dirty() {
		t.Error("freshly loaded store is dirty")
	}
}

func TestMaxInt(t *testing.T) {
	s := New("")
	if !s.MaxInt(KeyHighScore, 10) {
		t.Error("first MaxInt should change the value")
	}
	if s.MaxInt(KeyHighScore, 5) {
		t.Error("lower value should not replace the high score")
	}
	if !s.MaxInt(KeyHighScore, 11) || s.Int(KeyHighScore) != 11 {
		t.Errorf("high score = %d, want 11", s.Int(KeyHighScore))
	}
}

func TestSetSameValueStaysClean(t *testing.T) {
	s := New("")
	s.SetBool(KeyMuteMusic, true)
	s.dirty = false
	s.SetBool(KeyMuteMusic, true)
	if s.Dirty() {
		t.Error("setting an unchanged value marked the store dirty")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "stats.yaml"))
	for i := 0; i < 3; i++ {
		s.AddInt(KeyHighScore, 1)
		if err := s.Save(); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "stats.yaml" {
		t.Errorf("dir entries = %v, want only stats.yaml", entries)
	}
}

func TestConcurrentCounters(t *testing.T) {
	s := New("")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.AddInt(KeyHighScore, 1)
			}
		}()
	}
	wg.Wait()
	if got := s.Int(KeyHighScore); got != 800 {
		t.Errorf("counter = %d, want 800", got)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("- not\n- a map\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error for a non-map document")
	}
}
