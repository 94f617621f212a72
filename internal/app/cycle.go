package app

import (
	"io"
	"strings"

	"github.com/ItsNotGoodName/x-disper/internal/config"
	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/layout"
	"github.com/ItsNotGoodName/x-disper/internal/switcher"
	"github.com/spf13/pflag"
)

// Stage is one step of the cycle action, such as "extend --direction=left".
type Stage struct {
	Action Action

	displays   *string
	resolution *string
	direction  *string
	scaling    *string
}

// ParseStages parses a colon separated list of stages.
func ParseStages(s string) ([]Stage, error) {
	var stages []Stage
	for _, item := range strings.Split(s, ":") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		stage, err := ParseStage(item)
		if err != nil {
			return nil, err
		}
		stages = append(stages, stage)
	}
	if len(stages) == 0 {
		return nil, core.NewInputError("no cycle stages")
	}
	return stages, nil
}

func ParseStage(s string) (Stage, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Stage{}, core.NewInputError("empty cycle stage")
	}

	action, err := ParseAction(strings.TrimLeft(fields[0], "-"))
	if err != nil {
		return Stage{}, err
	}
	switch action {
	case ActionSingle, ActionSecondary, ActionClone, ActionExtend:
	default:
		return Stage{}, core.NewInputError("cycle stage cannot %s", action)
	}

	fs := pflag.NewFlagSet(string(action), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	displays := fs.StringP("displays", "d", "", "")
	resolution := fs.StringP("resolution", "r", "", "")
	direction := fs.StringP("direction", "t", "", "")
	scaling := fs.String("scaling", "", "")
	if err := fs.Parse(fields[1:]); err != nil {
		return Stage{}, core.NewInputError("cycle stage %q: %s", s, err)
	}
	if fs.NArg() > 0 {
		return Stage{}, core.NewInputError("cycle stage %q: unexpected %q", s, fs.Arg(0))
	}

	stage := Stage{Action: action}
	if fs.Changed("displays") {
		stage.displays = displays
	}
	if fs.Changed("resolution") {
		stage.resolution = resolution
	}
	if fs.Changed("direction") {
		stage.direction = direction
	}
	if fs.Changed("scaling") {
		stage.scaling = scaling
	}
	return stage, nil
}

// Apply overrides opts with the flags of the stage.
func (s Stage) Apply(opts switcher.Options) (switcher.Options, error) {
	if s.displays != nil {
		opts.Displays = ParseDisplays(*s.displays)
	}
	if s.resolution != nil {
		opts.Resolution = *s.resolution
	}
	if s.direction != nil {
		direction, err := layout.ParseDirection(*s.direction)
		if err != nil {
			return opts, err
		}
		opts.Direction = direction
	}
	if s.scaling != nil {
		scaling, err := switcher.ParseScaling(*s.scaling)
		if err != nil {
			return opts, err
		}
		opts.Scaling = scaling
	}
	return opts, nil
}

// NextStage returns the stage after last, wrapping around.
func NextStage(last, count int, reverse bool) int {
	if reverse {
		last--
		if last < 0 || last >= count {
			return count - 1
		}
		return last
	}
	last++
	if last < 0 || last >= count {
		return 0
	}
	return last
}

// runCycle switches to the next stage. The new position is saved even when the switch fails so that
// a broken stage does not block cycling.
func (a *App) runCycle(req Request) (err error) {
	stages, err := ParseStages(req.CycleStages)
	if err != nil {
		return err
	}

	state, err := a.cycle.Get()
	if err != nil {
		return err
	}
	index := NextStage(state.Stage, len(stages), req.ReverseCycles)
	stage := stages[index]

	opts, err := stage.Apply(req.Options)
	if err != nil {
		return err
	}

	defer func() {
		saveErr := a.cycle.Update(func(state config.CycleState) (config.CycleState, error) {
			state.Stage = index
			return state, nil
		})
		if saveErr == nil {
			return
		}
		if err != nil {
			a.log.Warn("Failed to save cycle state", "error", saveErr)
			return
		}
		err = saveErr
	}()

	a.log.Info("Cycling", "stage", index, "action", stage.Action)
	req.Options = opts
	return a.Run(stage.Action, req)
}
