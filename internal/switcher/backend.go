// Package switcher switches between display layouts using whichever backend the system supports.
package switcher

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/layout"
	"github.com/ItsNotGoodName/x-disper/internal/resolution"
)

type Scaling string

const (
	ScalingDefault      Scaling = "default"
	ScalingNative       Scaling = "native"
	ScalingScaled       Scaling = "scaled"
	ScalingCentered     Scaling = "centered"
	ScalingAspectScaled Scaling = "aspect-scaled"
)

func ParseScaling(s string) (Scaling, error) {
	switch scaling := Scaling(strings.ToLower(strings.TrimSpace(s))); scaling {
	case "":
		return ScalingDefault, nil
	case ScalingDefault, ScalingNative, ScalingScaled, ScalingCentered, ScalingAspectScaled:
		return scaling, nil
	default:
		return "", core.NewInputError("invalid scaling %q", s)
	}
}

// Backend configures displays through one driver interface.
type Backend interface {
	Name() string
	// Displays returns the connected displays.
	Displays() ([]string, error)
	PrimaryDisplay() (string, error)
	DisplayName(display string) (string, error)
	SupportedResolutions(display string) (resolution.List, error)
	// PreferredResolution returns false when the display does not advertise one.
	PreferredResolution(display string) (resolution.Resolution, bool, error)
	// SwitchClone and SwitchExtend apply scaling to the enabled displays before the layout is committed.
	SwitchClone(displays []string, r resolution.Resolution, scaling Scaling) error
	SwitchExtend(displays []string, direction layout.Direction, sel resolution.Selection, scaling Scaling) error
	ExportConfig() (string, error)
	ImportConfig(cfg string) error
}

type Factory struct {
	Name string
	New  func() (Backend, error)
}

// Probe returns the first backend that can be constructed, trying factories in order.
func Probe(factories ...Factory) (Backend, error) {
	var errs []error
	for _, factory := range factories {
		backend, err := factory.New()
		if err == nil {
			slog.Debug("Using backend", "package", "switcher", "backend", factory.Name)
			return backend, nil
		}
		slog.Debug("Backend unavailable", "package", "switcher", "backend", factory.Name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", factory.Name, err))
	}
	return nil, fmt.Errorf("%w: %w", core.ErrNoBackend, errors.Join(errs...))
}
