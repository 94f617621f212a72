// Package hook runs external programs after the displays were switched.
package hook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ItsNotGoodName/x-disper/internal/config"
	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/switcher"
	"github.com/joho/godotenv"
)

const (
	StageSwitch = "switch"

	EnvFile = "hooks.env"
)

// SystemDir holds hooks installed with the package.
var SystemDir = filepath.Join("/usr/share", config.Name, "hooks")

// UserDir returns the hooks directory inside the config directory.
func UserDir(configDir string) string {
	return filepath.Join(configDir, "hooks")
}

type Hook struct {
	// Name is the file name without extension.
	Name string
	Path string
	// Env is read from the hooks.env file next to the hook.
	Env map[string]string
}

// Discover returns the executable files of dir sorted by name. A missing dir has no hooks.
func Discover(dir string) ([]Hook, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	env, err := readEnv(dir)
	if err != nil {
		return nil, err
	}

	var hooks []Hook
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == EnvFile {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		if !info.Mode().IsRegular() || info.Mode().Perm()&0111 == 0 {
			continue
		}

		name := entry.Name()
		hooks = append(hooks, Hook{
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(dir, name),
			Env:  env,
		})
	}

	sort.Slice(hooks, func(i, j int) bool { return hooks[i].Name < hooks[j].Name })
	return hooks, nil
}

func readEnv(dir string) (map[string]string, error) {
	path := filepath.Join(dir, EnvFile)
	exists, err := core.FileExists(path)
	if err != nil || !exists {
		return nil, err
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return env, nil
}

// Select resolves a comma separated list of hook names, "user", "all" and "none". A user hook
// shadows a system hook with the same name. "none" drops everything selected before it.
func Select(spec string, user, system []Hook) []Hook {
	all := append([]Hook{}, user...)
	for _, hook := range system {
		if _, ok := find(all, hook.Name); !ok {
			all = append(all, hook)
		}
	}

	var selected []Hook
	add := func(hooks ...Hook) {
		for _, hook := range hooks {
			if _, ok := find(selected, hook.Name); !ok {
				selected = append(selected, hook)
			}
		}
	}

	for _, item := range core.SplitList(spec) {
		switch item {
		case "none":
			selected = nil
		case "user":
			add(user...)
		case "all":
			add(all...)
		default:
			hook, ok := find(all, item)
			if !ok {
				slog.Warn("Ignoring nonexistent hook", "package", "hook", "name", item)
				continue
			}
			add(hook)
		}
	}

	return selected
}

func find(hooks []Hook, name string) (Hook, bool) {
	for _, hook := range hooks {
		if hook.Name == name {
			return hook, true
		}
	}
	return Hook{}, false
}

// Env is passed to every hook.
type Env struct {
	Version  string
	LogLevel string
	RunID    string
}

// Runner starts hooks without waiting for them. Call Wait before exiting.
type Runner struct {
	hooks []Hook
	env   Env
	log   *slog.Logger

	started []started
}

type started struct {
	name string
	cmd  *exec.Cmd
}

func NewRunner(hooks []Hook, env Env) *Runner {
	names := make([]string, 0, len(hooks))
	for _, hook := range hooks {
		names = append(names, hook.Name)
	}
	slog.Info("Enabled hooks", "package", "hook", "hooks", names)

	return &Runner{
		hooks: hooks,
		env:   env,
		log:   slog.With("package", "hook", "run_id", env.RunID),
	}
}

// Vars returns the DISPER_* variables for a stage.
func (r *Runner) Vars(stage string, event switcher.Switched) []string {
	vars := []string{
		"DISPER_STAGE=" + stage,
		"DISPER_VERSION=" + r.env.Version,
		"DISPER_LOG_LEVEL=" + r.env.LogLevel,
		"DISPER_RUN_ID=" + r.env.RunID,
		"DISPER_LAYOUT=" + event.Layout,
		"DISPER_DISPLAYS=" + strings.Join(event.Displays, ","),
	}
	if event.Selection != nil {
		vars = append(vars, "DISPER_RESOLUTIONS="+strings.ReplaceAll(event.Selection.Format(event.Displays), ", ", ","))
	}
	if event.Direction != "" {
		vars = append(vars, "DISPER_DIRECTION="+string(event.Direction))
	}
	return vars
}

// Start spawns every hook with the stage as its only argument.
func (r *Runner) Start(ctx context.Context, stage string, event switcher.Switched) error {
	vars := r.Vars(stage, event)

	var errs []error
	for _, hook := range r.hooks {
		cmd := exec.CommandContext(ctx, hook.Path, stage)
		cmd.Env = append(os.Environ(), vars...)
		for k, v := range hook.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr

		r.log.Info("Starting hook", "name", hook.Name, "stage", stage)
		if err := cmd.Start(); err != nil {
			errs = append(errs, fmt.Errorf("hook %s: %w", hook.Name, err))
			continue
		}
		r.started = append(r.started, started{name: hook.Name, cmd: cmd})
	}

	return errors.Join(errs...)
}

// Switched starts the switch stage, to be subscribed to the bus.
func (r *Runner) Switched(ctx context.Context, event switcher.Switched) error {
	return r.Start(ctx, StageSwitch, event)
}

// Wait waits for every started hook.
func (r *Runner) Wait() error {
	var errs []error
	for _, s := range r.started {
		if err := s.cmd.Wait(); err != nil {
			r.log.Warn("Hook failed", "name", s.name, "error", err)
			errs = append(errs, fmt.Errorf("hook %s: %w", s.name, err))
		}
	}
	r.started = nil
	return errors.Join(errs...)
}
