package hook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ItsNotGoodName/x-disper/internal/layout"
	"github.com/ItsNotGoodName/x-disper/internal/resolution"
	"github.com/ItsNotGoodName/x-disper/internal/switcher"
)

func writeFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatal(err)
	}
}

func names(hooks []Hook) string {
	var items []string
	for _, hook := range hooks {
		items = append(items, hook.Name)
	}
	return strings.Join(items, ",")
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "wallpaper.sh"), "#!/bin/sh\n", 0755)
	writeFile(t, filepath.Join(dir, "conky"), "#!/bin/sh\n", 0700)
	writeFile(t, filepath.Join(dir, "README"), "not a hook", 0644)
	writeFile(t, filepath.Join(dir, EnvFile), "OUT=/tmp/out\n", 0755)
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	hooks, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := names(hooks); got != "conky,wallpaper" {
		t.Errorf("got %q", got)
	}
	if hooks[0].Env["OUT"] != "/tmp/out" {
		t.Errorf("got env %v", hooks[0].Env)
	}

	hooks, err = Discover(filepath.Join(dir, "missing"))
	if err != nil || len(hooks) != 0 {
		t.Errorf("got %v %v", hooks, err)
	}
}

func TestSelect(t *testing.T) {
	user := []Hook{{Name: "a", Path: "user/a"}, {Name: "b", Path: "user/b"}}
	system := []Hook{{Name: "b", Path: "system/b"}, {Name: "c", Path: "system/c"}}

	tests := []struct {
		spec string
		want string
	}{
		{"user", "a,b"},
		{"all", "a,b,c"},
		{"none", ""},
		{"c", "c"},
		{"c, a, c", "c,a"},
		{"all,none,a", "a"},
		{"missing,a", "a"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := names(Select(tt.spec, user, system)); got != tt.want {
			t.Errorf("Select(%q) = %q, want %q", tt.spec, got, tt.want)
		}
	}

	if hook := Select("b", user, system)[0]; hook.Path != "user/b" {
		t.Errorf("user hook must shadow system hook, got %s", hook.Path)
	}
}

func TestVars(t *testing.T) {
	r := NewRunner(nil, Env{Version: "1.0.0", LogLevel: "INFO", RunID: "run"})
	displays := []string{"DFP-0", "CRT-0"}
	vars := r.Vars(StageSwitch, switcher.Switched{
		Layout:    switcher.LayoutExtend,
		Displays:  displays,
		Selection: resolution.Selection{"DFP-0": resolution.New(1024, 768), "CRT-0": resolution.Off},
		Direction: layout.Left,
	})

	want := []string{
		"DISPER_STAGE=switch",
		"DISPER_VERSION=1.0.0",
		"DISPER_LOG_LEVEL=INFO",
		"DISPER_RUN_ID=run",
		"DISPER_LAYOUT=extend",
		"DISPER_DISPLAYS=DFP-0,CRT-0",
		"DISPER_RESOLUTIONS=1024x768,off",
		"DISPER_DIRECTION=left",
	}
	if fmt.Sprint(vars) != fmt.Sprint(want) {
		t.Errorf("got %v, want %v", vars, want)
	}
}

func TestStartWait(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(dir, "record.sh"), "#!/bin/sh\necho \"$1 $DISPER_LAYOUT $DISPER_DISPLAYS $GREETING\" > \"$OUT\"\n", 0755)
	writeFile(t, filepath.Join(dir, "fail"), "#!/bin/sh\nexit 3\n", 0755)
	writeFile(t, filepath.Join(dir, EnvFile), "OUT="+out+"\nGREETING=hello\n", 0644)

	hooks, err := Discover(dir)
	if err != nil {
		t.Fatal(err)
	}

	r := NewRunner(hooks, Env{Version: "dev"})
	err = r.Switched(context.Background(), switcher.Switched{Layout: switcher.LayoutClone, Displays: []string{"DFP-0"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Wait(); err == nil || !strings.Contains(err.Error(), "hook fail") {
		t.Errorf("got %v, want failing hook reported", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != "switch clone DFP-0 hello" {
		t.Errorf("got %q", got)
	}
}
