package app

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ItsNotGoodName/x-disper/internal/config"
	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/layout"
	"github.com/ItsNotGoodName/x-disper/internal/resolution"
	"github.com/ItsNotGoodName/x-disper/internal/switcher"
)

type fakeBackend struct {
	calls    []string
	imported string
	err      error
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Displays() ([]string, error) { return []string{"DFP-0", "CRT-0"}, nil }

func (b *fakeBackend) PrimaryDisplay() (string, error) { return "DFP-0", nil }

func (b *fakeBackend) DisplayName(display string) (string, error) { return "monitor " + display, nil }

func (b *fakeBackend) SupportedResolutions(display string) (resolution.List, error) {
	return resolution.List{resolution.New(1024, 768), resolution.New(800, 600)}, nil
}

func (b *fakeBackend) PreferredResolution(display string) (resolution.Resolution, bool, error) {
	return resolution.Resolution{}, false, nil
}

func (b *fakeBackend) SwitchClone(displays []string, r resolution.Resolution, scaling switcher.Scaling) error {
	b.calls = append(b.calls, fmt.Sprintf("clone %s %s", strings.Join(displays, ","), r))
	return b.err
}

func (b *fakeBackend) SwitchExtend(displays []string, direction layout.Direction, sel resolution.Selection, scaling switcher.Scaling) error {
	b.calls = append(b.calls, fmt.Sprintf("extend %s %s", strings.Join(displays, ","), direction))
	return b.err
}

func (b *fakeBackend) ExportConfig() (string, error) {
	return "associated displays: DFP-0\nmetamode: DFP-0: 1024x768 +0+0\n", nil
}

func (b *fakeBackend) ImportConfig(cfg string) error {
	b.imported = cfg
	return b.err
}

func newApp(t *testing.T, b *fakeBackend, in string) (*App, *bytes.Buffer, config.Store[config.CycleState]) {
	t.Helper()
	cycle, err := config.NewStore[config.CycleState](config.NewMemory[config.CycleState](), config.DefaultCycleState)
	if err != nil {
		t.Fatal(err)
	}
	out := &bytes.Buffer{}
	return New(switcher.NewEngine(b), cycle, strings.NewReader(in), out), out, cycle
}

func newRequest(t *testing.T, flags Flags) Request {
	t.Helper()
	req, err := NewRequest(config.DefaultConfig, flags)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestNewRequest(t *testing.T) {
	cfg := config.DefaultConfig
	cfg.Direction = "left"
	cfg.ReverseCycles = true

	req, err := NewRequest(cfg, Flags{Displays: "DFP-0, CRT-0", Scaling: "native"})
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(req.Options.Displays) != "[DFP-0 CRT-0]" || !req.DisplaysSet || req.ResolutionSet {
		t.Errorf("got %+v", req)
	}
	if req.Options.Direction != layout.Left || req.Options.Scaling != switcher.ScalingNative {
		t.Errorf("got %+v", req.Options)
	}
	if req.Options.Resolution != "auto" || req.Hooks != "user" || !req.ReverseCycles {
		t.Errorf("got %+v", req)
	}

	req, _ = NewRequest(cfg, Flags{})
	if req.Options.Displays != nil {
		t.Errorf("auto displays must be nil, got %v", req.Options.Displays)
	}
	if !req.ReverseCycles {
		t.Error("reverse cycles from config lost")
	}

	reverse := false
	if req, _ := NewRequest(cfg, Flags{ReverseCycles: &reverse}); req.ReverseCycles {
		t.Error("flag must turn off reverse cycles from config")
	}

	if _, err := NewRequest(cfg, Flags{Direction: "up"}); !core.IsInputError(err) {
		t.Errorf("got %v", err)
	}
	if _, err := NewRequest(cfg, Flags{Scaling: "zoom"}); !core.IsInputError(err) {
		t.Errorf("got %v", err)
	}
}

func TestParseAction(t *testing.T) {
	if action, err := ParseAction(" Extend "); err != nil || action != ActionExtend {
		t.Errorf("got %v %v", action, err)
	}
	if _, err := ParseAction("mirror"); !core.IsInputError(err) {
		t.Errorf("got %v", err)
	}
}

func TestRunExport(t *testing.T) {
	b := &fakeBackend{}
	a, out, _ := newApp(t, b, "")

	if err := a.Run(ActionExport, newRequest(t, Flags{Resolution: "800x600"})); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "associated displays: DFP-0\n") {
		t.Errorf("got %q", out.String())
	}
}

func TestRunImport(t *testing.T) {
	b := &fakeBackend{}
	cfg := "associated displays: DFP-0\nmetamode: DFP-0: 1024x768 +0+0\n"
	a, _, _ := newApp(t, b, cfg)

	if err := a.Run(ActionImport, newRequest(t, Flags{})); err != nil {
		t.Fatal(err)
	}
	if b.imported != cfg {
		t.Errorf("got %q", b.imported)
	}
}

func TestRunList(t *testing.T) {
	a, out, _ := newApp(t, &fakeBackend{}, "")

	if err := a.Run(ActionList, newRequest(t, Flags{Displays: "CRT-0"})); err != nil {
		t.Fatal(err)
	}
	want := "display CRT-0: monitor CRT-0\n resolutions: 800x600, 1024x768\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestRunActions(t *testing.T) {
	tests := []struct {
		action Action
		want   string
	}{
		{ActionSingle, "[clone DFP-0 1024x768]"},
		{ActionSecondary, "[clone CRT-0 1024x768]"},
		{ActionClone, "[clone DFP-0,CRT-0 1024x768]"},
		{ActionExtend, "[extend DFP-0,CRT-0 right]"},
	}

	for _, tt := range tests {
		b := &fakeBackend{}
		a, _, _ := newApp(t, b, "")
		if err := a.Run(tt.action, newRequest(t, Flags{})); err != nil {
			t.Fatal(err)
		}
		if got := fmt.Sprint(b.calls); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.action, got, tt.want)
		}
	}
}

func TestRunCycle(t *testing.T) {
	b := &fakeBackend{}
	a, _, cycle := newApp(t, b, "")
	req := newRequest(t, Flags{CycleStages: "clone:single:extend --direction=top -r 800x600"})

	for i := 0; i < 4; i++ {
		if err := a.Run(ActionCycle, req); err != nil {
			t.Fatal(err)
		}
	}
	want := "[clone DFP-0,CRT-0 1024x768 clone DFP-0 1024x768 extend DFP-0,CRT-0 top clone DFP-0,CRT-0 1024x768]"
	if got := fmt.Sprint(b.calls); got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	req.ReverseCycles = true
	b.calls = nil
	if err := a.Run(ActionCycle, req); err != nil {
		t.Fatal(err)
	}
	if got := fmt.Sprint(b.calls); got != "[extend DFP-0,CRT-0 top]" {
		t.Errorf("got %s", got)
	}
	if state, _ := cycle.Get(); state.Stage != 2 {
		t.Errorf("got stage %d, want 2", state.Stage)
	}
}

func TestRunCycleSavesOnFailure(t *testing.T) {
	b := &fakeBackend{err: errors.New("failed")}
	a, _, cycle := newApp(t, b, "")

	if err := a.Run(ActionCycle, newRequest(t, Flags{})); !errors.Is(err, b.err) {
		t.Errorf("got %v", err)
	}
	if state, _ := cycle.Get(); state.Stage != 0 {
		t.Errorf("got stage %d, want 0", state.Stage)
	}
}

func TestParseStages(t *testing.T) {
	for _, s := range []string{"", "clone:cycle", "export", "clone --bogus", "extend left"} {
		if _, err := ParseStages(s); !core.IsInputError(err) {
			t.Errorf("ParseStages(%q) = %v, want input error", s, err)
		}
	}

	stages, err := ParseStages("--clone : extend -d DFP-0,CRT-0 --scaling=centered")
	if err != nil {
		t.Fatal(err)
	}
	if len(stages) != 2 || stages[0].Action != ActionClone || stages[1].Action != ActionExtend {
		t.Fatalf("got %+v", stages)
	}

	opts, err := stages[1].Apply(switcher.Options{Resolution: "max", Direction: layout.Right})
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(opts.Displays) != "[DFP-0 CRT-0]" || opts.Scaling != switcher.ScalingCentered || opts.Resolution != "max" {
		t.Errorf("got %+v", opts)
	}
}

func TestNextStage(t *testing.T) {
	tests := []struct {
		last    int
		count   int
		reverse bool
		want    int
	}{
		{-1, 3, false, 0},
		{0, 3, false, 1},
		{2, 3, false, 0},
		{7, 3, false, 0},
		{-1, 3, true, 2},
		{0, 3, true, 2},
		{2, 3, true, 1},
		{7, 3, true, 2},
	}

	for _, tt := range tests {
		if got := NextStage(tt.last, tt.count, tt.reverse); got != tt.want {
			t.Errorf("NextStage(%d, %d, %v) = %d, want %d", tt.last, tt.count, tt.reverse, got, tt.want)
		}
	}
}
