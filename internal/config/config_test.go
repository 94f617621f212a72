package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStoreWritesDefaults(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.json"} {
		path := filepath.Join(t.TempDir(), "nested", name)

		store, err := NewStore(NewDriver(path, DefaultConfig), DefaultConfig)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s: defaults not written: %v", name, err)
		}

		cfg, err := store.Get()
		if err != nil {
			t.Fatal(err)
		}
		if cfg != DefaultConfig {
			t.Errorf("%s: got %+v, want %+v", name, cfg, DefaultConfig)
		}
	}
}

func TestStoreUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cycle.yaml")
	store, err := NewStore(NewDriver(path, CycleState{}), CycleState{})
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		err := store.Update(func(state CycleState) (CycleState, error) {
			state.Stage++
			return state, nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	state, err := store.Get()
	if err != nil {
		t.Fatal(err)
	}
	if state.Stage != 2 {
		t.Errorf("got stage %d, want 2", state.Stage)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "stage: 2" {
		t.Errorf("got %q", data)
	}
}

func TestReadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("resolution: max\nreverse_cycles: true\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewYAML(path, DefaultConfig).Read()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Resolution != "max" || !cfg.ReverseCycles || cfg.Direction != "right" {
		t.Errorf("got %+v", cfg)
	}
}

func TestReadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewYAML(path, DefaultConfig).Read()
	if err != nil || cfg != DefaultConfig {
		t.Errorf("got %+v %v", cfg, err)
	}
}

func TestReadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewDriver(path, DefaultConfig).Read(); err == nil {
		t.Error("expected error")
	}
}

func TestMemory(t *testing.T) {
	driver := NewMemory[CycleState]()
	store, err := NewStore[CycleState](driver, CycleState{Stage: 1})
	if err != nil {
		t.Fatal(err)
	}
	state, _ := store.Get()
	if state.Stage != 1 {
		t.Errorf("got %d, want 1", state.Stage)
	}
}

func TestCyclePath(t *testing.T) {
	if got := CyclePath("/home/user/.config/x-disper/config.yaml"); got != "/home/user/.config/x-disper/cycle.yaml" {
		t.Errorf("got %q", got)
	}
}
