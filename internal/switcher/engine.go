package switcher

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ItsNotGoodName/x-disper/internal/bus"
	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/layout"
	"github.com/ItsNotGoodName/x-disper/internal/metamode"
	"github.com/ItsNotGoodName/x-disper/internal/resolution"
)

const (
	ResolutionAuto = "auto"
	ResolutionMax  = "max"
)

const (
	LayoutClone  = "clone"
	LayoutExtend = "extend"
	LayoutImport = "import"
)

// Options describe the layout the user asked for.
type Options struct {
	// Displays is empty when every connected display should be used.
	Displays []string
	// Resolution is auto, max or a comma separated list with one value or one value per display.
	Resolution string
	Direction  layout.Direction
	Scaling    Scaling
}

// Switched is published after the displays were switched.
type Switched struct {
	Layout    string
	Displays  []string
	Selection resolution.Selection
	Direction layout.Direction
}

// Display is one row of the list action.
type Display struct {
	ID          string
	Name        string
	Primary     bool
	Resolutions resolution.List
}

type Engine struct {
	backend Backend
	log     *slog.Logger
}

func NewEngine(backend Backend) *Engine {
	return &Engine{
		backend: backend,
		log:     slog.With("package", "switcher", "backend", backend.Name()),
	}
}

func (e *Engine) Backend() Backend {
	return e.backend
}

// displays resolves the requested displays, checking that every one is connected.
func (e *Engine) displays(requested []string) ([]string, error) {
	connected, err := e.backend.Displays()
	if err != nil {
		return nil, err
	}

	if len(requested) == 0 {
		if len(connected) == 0 {
			return nil, core.ErrDisplayNotConnected
		}
		e.log.Info("Auto-detected displays", "displays", connected)
		return connected, nil
	}

	for _, display := range requested {
		if !core.Contains(connected, display) {
			return nil, fmt.Errorf("%w: %s", core.ErrDisplayNotConnected, display)
		}
	}
	e.log.Info("Using specified displays", "displays", requested)
	return requested, nil
}

// Resolutions probes every display. A display without resolutions gets the fallback list and its
// preferred resolution, when known, is weighted above the rest.
func (e *Engine) Resolutions(displays []string) (*resolution.Collection, error) {
	collection := resolution.NewCollection()
	for _, display := range displays {
		list, err := e.backend.SupportedResolutions(display)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			e.log.Warn("No resolutions found for display, using fallback", "display", display)
			list = resolution.Fallback()
		}

		preferred, ok, err := e.backend.PreferredResolution(display)
		if err != nil {
			return nil, err
		}
		if ok {
			list = list.Weighted(preferred, 1)
		}

		collection.Set(display, list)
	}
	return collection, nil
}

func (e *Engine) List(requested []string) ([]Display, error) {
	displays, err := e.displays(requested)
	if err != nil {
		return nil, err
	}
	primary, err := e.backend.PrimaryDisplay()
	if err != nil {
		return nil, err
	}

	var rows []Display
	for _, display := range displays {
		name, err := e.backend.DisplayName(display)
		if err != nil {
			return nil, err
		}
		list, err := e.backend.SupportedResolutions(display)
		if err != nil {
			return nil, err
		}
		rows = append(rows, Display{
			ID:          display,
			Name:        name,
			Primary:     display == primary,
			Resolutions: list.Sorted(),
		})
	}
	return rows, nil
}

// Single shows only the first requested display, or the primary display.
func (e *Engine) Single(opts Options) error {
	display, err := e.single(opts.Displays)
	if err != nil {
		return err
	}
	opts.Displays = []string{display}
	return e.Clone(opts)
}

func (e *Engine) single(requested []string) (string, error) {
	if len(requested) > 0 {
		if len(requested) > 1 {
			e.log.Warn("Single display requested but multiple specified, using first one", "display", requested[0])
		}
		return requested[0], nil
	}
	return e.backend.PrimaryDisplay()
}

// Secondary shows only the second requested display, or the first display that is not primary.
func (e *Engine) Secondary(opts Options) error {
	display, err := e.secondary(opts.Displays)
	if err != nil {
		return err
	}
	opts.Displays = []string{display}
	return e.Clone(opts)
}

func (e *Engine) secondary(requested []string) (string, error) {
	if len(requested) > 0 {
		if len(requested) < 2 {
			e.log.Warn("No secondary display found, falling back to primary", "display", requested[0])
			return requested[0], nil
		}
		return requested[1], nil
	}

	primary, err := e.backend.PrimaryDisplay()
	if err != nil {
		return "", err
	}
	displays, err := e.backend.Displays()
	if err != nil {
		return "", err
	}
	for _, display := range displays {
		if display != primary {
			return display, nil
		}
	}
	e.log.Warn("No secondary display found, falling back to primary", "display", primary)
	return primary, nil
}

// Clone shows the same picture on every display.
func (e *Engine) Clone(opts Options) error {
	displays, err := e.displays(opts.Displays)
	if err != nil {
		return err
	}

	r, err := e.cloneResolution(displays, opts.Resolution)
	if err != nil {
		return err
	}

	scaling := scalingOrDefault(opts.Scaling)
	e.log.Info("Cloning displays", "displays", displays, "resolution", r, "scaling", scaling)
	if err := e.backend.SwitchClone(displays, r, scaling); err != nil {
		return err
	}

	bus.Publish(Switched{
		Layout:    LayoutClone,
		Displays:  displays,
		Selection: resolution.Broadcast(r, displays),
	})
	return nil
}

func (e *Engine) cloneResolution(displays []string, spec string) (resolution.Resolution, error) {
	switch policy := strings.ToLower(strings.TrimSpace(spec)); policy {
	case "", ResolutionAuto, ResolutionMax:
		collection, err := e.Resolutions(displays)
		if err != nil {
			return resolution.Resolution{}, err
		}
		if policy == ResolutionMax {
			collection = collection.Unweighted()
		}
		r, ok := collection.Common().Max()
		if !ok {
			return resolution.Resolution{}, fmt.Errorf("%w: %s", core.ErrNoCommonResolution, strings.Join(displays, ", "))
		}
		return r, nil
	default:
		sel, err := resolution.ParseSelection(spec, displays)
		if err != nil {
			return resolution.Resolution{}, err
		}
		r := sel[displays[0]]
		for _, display := range displays {
			if !sel[display].Equal(r) {
				return resolution.Resolution{}, core.NewInputError("clone needs a single resolution, got %q", spec)
			}
		}
		if r.IsOff() {
			return resolution.Resolution{}, core.NewInputError("clone cannot switch displays off")
		}
		return r, nil
	}
}

// Extend places the displays next to each other.
func (e *Engine) Extend(opts Options) error {
	displays, err := e.displays(opts.Displays)
	if err != nil {
		return err
	}

	sel, err := e.extendSelection(displays, opts.Resolution)
	if err != nil {
		return err
	}
	if len(sel.Enabled(displays)) == 0 {
		return core.NewInputError("every display is off")
	}

	direction := opts.Direction
	if direction == "" {
		direction = layout.Right
	}

	scaling := scalingOrDefault(opts.Scaling)
	e.log.Info("Extending displays", "displays", displays, "direction", direction, "resolutions", sel.Format(displays), "scaling", scaling)
	if err := e.backend.SwitchExtend(displays, direction, sel, scaling); err != nil {
		return err
	}

	bus.Publish(Switched{
		Layout:    LayoutExtend,
		Displays:  displays,
		Selection: sel,
		Direction: direction,
	})
	return nil
}

func (e *Engine) extendSelection(displays []string, spec string) (resolution.Selection, error) {
	switch policy := strings.ToLower(strings.TrimSpace(spec)); policy {
	case "", ResolutionAuto, ResolutionMax:
		collection, err := e.Resolutions(displays)
		if err != nil {
			return nil, err
		}
		if policy == ResolutionMax {
			collection = collection.Unweighted()
		}
		sel := collection.Select(resolution.Highest)
		for _, display := range displays {
			if _, ok := sel[display]; !ok {
				return nil, fmt.Errorf("no resolution for display %s", display)
			}
		}
		return sel, nil
	default:
		return resolution.ParseSelection(spec, displays)
	}
}

func scalingOrDefault(scaling Scaling) Scaling {
	if scaling == "" {
		return ScalingDefault
	}
	return scaling
}

func (e *Engine) Export() (string, error) {
	return e.backend.ExportConfig()
}

// Import restores a configuration written by Export.
func (e *Engine) Import(cfg string) error {
	export, err := metamode.ParseExport(cfg)
	if err != nil {
		return err
	}

	if err := e.backend.ImportConfig(cfg); err != nil {
		return err
	}

	sel := make(resolution.Selection, len(export.Displays))
	for _, display := range export.Displays {
		sel[display] = resolution.Off
		if entry, ok := export.ModeGroup.Entry(display); ok && entry.Physical != nil {
			sel[display] = *entry.Physical
		}
	}

	bus.Publish(Switched{
		Layout:    LayoutImport,
		Displays:  export.Displays,
		Selection: sel,
	})
	return nil
}
