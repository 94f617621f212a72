package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ItsNotGoodName/x-disper/internal/app"
	"github.com/ItsNotGoodName/x-disper/internal/build"
	"github.com/ItsNotGoodName/x-disper/internal/bus"
	"github.com/ItsNotGoodName/x-disper/internal/config"
	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/hook"
	"github.com/ItsNotGoodName/x-disper/internal/nvidia"
	"github.com/ItsNotGoodName/x-disper/internal/switcher"
	"github.com/ItsNotGoodName/x-disper/internal/xconn"
	"github.com/ItsNotGoodName/x-disper/internal/xrandr"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/google/uuid"
	"github.com/jezek/xgb"
	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
	"github.com/spf13/cobra"
)

type Options struct {
	Debug         bool   `doc:"show debug messages"`
	Verbose       bool   `doc:"show info messages" short:"v"`
	Quiet         bool   `doc:"only show errors" short:"q"`
	Display       string `doc:"X display to connect to, defaults to $DISPLAY"`
	Displays      string `doc:"comma separated list of displays to operate on, or auto" short:"d"`
	Resolution    string `doc:"comma separated list of resolutions, or auto, max or off" short:"r"`
	Direction     string `doc:"where to extend displays: left, right, top or bottom" short:"t"`
	Scaling       string `doc:"flat panel scaling: default, native, scaled, centered or aspect-scaled"`
	Hooks         string `doc:"comma separated list of hooks to run, or user, all or none" short:"p"`
	Config        string `doc:"config file, defaults to $XDG_CONFIG_HOME/x-disper/config.yaml"`
	CycleStages   string `doc:"colon separated list of stages for the cycle action"`
	ReverseCycles bool   `doc:"cycle through the stages in reverse order"`
}

var actionDocs = map[app.Action]string{
	app.ActionList:      "List displays and their resolutions",
	app.ActionSingle:    "Only enable the primary display",
	app.ActionSecondary: "Only enable the secondary display",
	app.ActionClone:     "Clone displays",
	app.ActionExtend:    "Extend displays",
	app.ActionExport:    "Export current settings to standard output",
	app.ActionImport:    "Import settings from standard input",
	app.ActionCycle:     "Switch to the next cycle stage",
}

func main() {
	godotenv.Load()

	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, options *Options) {
		InitLogger(LogLevel(options))

		hooks.OnStart(func() {
			cli.Root().Help()
		})
	})

	exitCode := 0
	for _, action := range app.Actions {
		action := action
		cli.Root().AddCommand(&cobra.Command{
			Use:   string(action),
			Short: actionDocs[action],
			Args:  cobra.NoArgs,
			Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *Options) {
				var reverse *bool
				if cmd.Flags().Changed("reverse-cycles") {
					reverse = &options.ReverseCycles
				}
				exitCode = Run(action, options, reverse)
			}),
		})
	}

	cli.Root().Use = config.Name
	cli.Root().Short = "Switch between display layouts"
	cli.Root().Version = build.Current.String()

	cli.Run()
	os.Exit(exitCode)
}

func LogLevel(options *Options) slog.Level {
	switch {
	case options.Debug:
		return slog.LevelDebug
	case options.Verbose:
		return slog.LevelInfo
	case options.Quiet:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func InitLogger(level slog.Level) {
	handler := console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	xgb.Logger = slog.NewLogLogger(handler, slog.LevelDebug)
}

// Run runs the action and returns the exit code. reverse is nil when --reverse-cycles was not given.
func Run(action app.Action, options *Options, reverse *bool) int {
	runID := uuid.NewString()
	slog.SetDefault(slog.Default().With("run_id", runID))

	err := run(action, options, reverse, runID)
	if err == nil {
		return 0
	}

	slog.Error("Failed to run action", "action", action, "error", err)
	if core.IsInputError(err) {
		return 2
	}
	return 1
}

func run(action app.Action, options *Options, reverse *bool, runID string) (err error) {
	configPath := options.Config
	if configPath == "" {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(dir, "config.yaml")
	}
	configPath, err = filepath.Abs(configPath)
	if err != nil {
		return err
	}

	store, err := config.NewStore(config.NewDriver(configPath, config.DefaultConfig), config.DefaultConfig)
	if err != nil {
		return err
	}
	cfg, err := store.Get()
	if err != nil {
		return err
	}

	req, err := app.NewRequest(cfg, app.Flags{
		Displays:      options.Displays,
		Resolution:    options.Resolution,
		Direction:     options.Direction,
		Scaling:       options.Scaling,
		Hooks:         options.Hooks,
		CycleStages:   options.CycleStages,
		ReverseCycles: reverse,
		Debug:         options.Debug,
	})
	if err != nil {
		return err
	}

	// Hooks
	userHooks, err := hook.Discover(hook.UserDir(filepath.Dir(configPath)))
	if err != nil {
		return err
	}
	systemHooks, err := hook.Discover(hook.SystemDir)
	if err != nil {
		return err
	}
	runner := hook.NewRunner(hook.Select(req.Hooks, userHooks, systemHooks), hook.Env{
		Version:  build.Current.Version,
		LogLevel: LogLevel(options).String(),
		RunID:    runID,
	})
	unsubscribe := bus.Subscribe("hook", runner.Switched)
	defer unsubscribe()
	defer func() {
		if hookErr := runner.Wait(); hookErr != nil && err == nil {
			slog.Warn("Hooks failed", "error", hookErr)
		}
	}()

	// Backend
	session, err := xconn.Open(options.Display)
	if err != nil {
		return err
	}
	defer session.Close()

	backend, err := switcher.Probe(
		switcher.Factory{Name: "nvidia", New: func() (switcher.Backend, error) {
			backend, err := nvidia.New(session)
			if err != nil {
				return nil, err
			}
			return backend, nil
		}},
		switcher.Factory{Name: "xrandr", New: func() (switcher.Backend, error) {
			backend, err := xrandr.New(session)
			if err != nil {
				return nil, err
			}
			return backend, nil
		}},
	)
	if err != nil {
		return fmt.Errorf("%w: is an X server running with RandR or NV-CONTROL?", err)
	}

	cycle, err := config.NewStore(config.NewDriver(config.CyclePath(configPath), config.DefaultCycleState), config.DefaultCycleState)
	if err != nil {
		return err
	}

	return app.New(switcher.NewEngine(backend), cycle, os.Stdin, os.Stdout).Run(action, req)
}
