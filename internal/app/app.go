// Package app runs one action against the display configuration engine.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ItsNotGoodName/x-disper/internal/config"
	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/layout"
	"github.com/ItsNotGoodName/x-disper/internal/switcher"
	"github.com/k0kubun/pp"
)

type Action string

const (
	ActionList      Action = "list"
	ActionSingle    Action = "single"
	ActionSecondary Action = "secondary"
	ActionClone     Action = "clone"
	ActionExtend    Action = "extend"
	ActionExport    Action = "export"
	ActionImport    Action = "import"
	ActionCycle     Action = "cycle"
)

var Actions = []Action{ActionList, ActionSingle, ActionSecondary, ActionClone, ActionExtend, ActionExport, ActionImport, ActionCycle}

func ParseAction(s string) (Action, error) {
	for _, action := range Actions {
		if string(action) == strings.ToLower(strings.TrimSpace(s)) {
			return action, nil
		}
	}
	return "", core.NewInputError("invalid action %q", s)
}

// Flags are the values given on the command line. Empty strings and nil were not given.
type Flags struct {
	Displays      string
	Resolution    string
	Direction     string
	Scaling       string
	Hooks         string
	CycleStages   string
	ReverseCycles *bool
	Debug         bool
}

// Request is the configuration and command line merged together.
type Request struct {
	Options       switcher.Options
	Hooks         string
	CycleStages   string
	ReverseCycles bool
	Debug         bool

	// DisplaysSet and ResolutionSet are true when the value came from the command line.
	DisplaysSet   bool
	ResolutionSet bool
}

// NewRequest overrides cfg with the flags that were given and validates the result.
func NewRequest(cfg config.Config, flags Flags) (Request, error) {
	pick := func(flag, cfg string) string {
		if flag != "" {
			return flag
		}
		return cfg
	}

	direction, err := layout.ParseDirection(pick(flags.Direction, cfg.Direction))
	if err != nil {
		return Request{}, err
	}
	scaling, err := switcher.ParseScaling(pick(flags.Scaling, cfg.Scaling))
	if err != nil {
		return Request{}, err
	}

	return Request{
		Options: switcher.Options{
			Displays:   ParseDisplays(pick(flags.Displays, cfg.Displays)),
			Resolution: pick(flags.Resolution, cfg.Resolution),
			Direction:  direction,
			Scaling:    scaling,
		},
		Hooks:         pick(flags.Hooks, cfg.Hooks),
		CycleStages:   pick(flags.CycleStages, cfg.CycleStages),
		ReverseCycles: core.Optional(flags.ReverseCycles, cfg.ReverseCycles),
		Debug:         flags.Debug,
		DisplaysSet:   flags.Displays != "",
		ResolutionSet: flags.Resolution != "",
	}, nil
}

// ParseDisplays returns nil for "auto", meaning every connected display.
func ParseDisplays(s string) []string {
	if strings.EqualFold(strings.TrimSpace(s), "auto") {
		return nil
	}
	return core.SplitList(s)
}

type App struct {
	engine *switcher.Engine
	cycle  config.Store[config.CycleState]
	in     io.Reader
	out    io.Writer
	log    *slog.Logger
}

func New(engine *switcher.Engine, cycle config.Store[config.CycleState], in io.Reader, out io.Writer) *App {
	return &App{
		engine: engine,
		cycle:  cycle,
		in:     in,
		out:    out,
		log:    slog.With("package", "app"),
	}
}

func (a *App) Run(action Action, req Request) error {
	a.log.Debug("Running action", "action", action)

	switch action {
	case ActionList:
		return a.list(req)
	case ActionSingle:
		return a.engine.Single(req.Options)
	case ActionSecondary:
		return a.engine.Secondary(req.Options)
	case ActionClone:
		return a.engine.Clone(req.Options)
	case ActionExtend:
		return a.engine.Extend(req.Options)
	case ActionExport:
		a.warnIgnored(action, req)
		cfg, err := a.engine.Export()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(a.out, cfg)
		return err
	case ActionImport:
		a.warnIgnored(action, req)
		data, err := io.ReadAll(a.in)
		if err != nil {
			return err
		}
		return a.engine.Import(string(data))
	case ActionCycle:
		return a.runCycle(req)
	default:
		return core.NewInputError("invalid action %q", action)
	}
}

func (a *App) warnIgnored(action Action, req Request) {
	if req.ResolutionSet {
		a.log.Warn("Specified resolution ignored", "action", action)
	}
	if req.DisplaysSet {
		a.log.Warn("Specified displays ignored", "action", action)
	}
}

func (a *App) list(req Request) error {
	rows, err := a.engine.List(req.Options.Displays)
	if err != nil {
		return err
	}

	for _, row := range rows {
		fmt.Fprintf(a.out, "display %s: %s\n", row.ID, row.Name)
		fmt.Fprintf(a.out, " resolutions: %s\n", row.Resolutions)
	}

	if req.Debug {
		var displays []string
		for _, row := range rows {
			displays = append(displays, row.ID)
		}
		collection, err := a.engine.Resolutions(displays)
		if err != nil {
			return err
		}
		pp.Fprintln(os.Stderr, rows, collection)
	}

	return nil
}
