package nvidia

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/edid"
	"github.com/ItsNotGoodName/x-disper/internal/layout"
	"github.com/ItsNotGoodName/x-disper/internal/metamode"
	"github.com/ItsNotGoodName/x-disper/internal/nvctrl"
	"github.com/ItsNotGoodName/x-disper/internal/resolution"
	"github.com/ItsNotGoodName/x-disper/internal/switcher"
	"github.com/ItsNotGoodName/x-disper/internal/xconn"
	"github.com/ItsNotGoodName/x-disper/internal/xrandr"
)

var _ switcher.Backend = (*Backend)(nil)

// Backend switches displays by editing the driver's mode groups and selecting one through RandR.
type Backend struct {
	driver    Driver
	presenter Presenter
	assoc     *Associator
	log       *slog.Logger

	displays []string
}

// New connects to NV-CONTROL on the session's default screen and first GPU.
func New(session *xconn.Session) (*Backend, error) {
	transport, err := nvctrl.NewXGBTransport(session.Conn)
	if err != nil {
		return nil, err
	}

	control := nvctrl.NewControl(nvctrl.NewClient(transport), session.Screen, 0)
	major, minor, err := control.CheckVersion()
	if err != nil {
		return nil, err
	}

	gpus, err := control.GPUCount()
	if err != nil {
		return nil, err
	}
	if gpus == 0 {
		return nil, errors.New("no NVIDIA GPU found")
	}

	presenter, err := xrandr.NewScreenConfig(session)
	if err != nil {
		return nil, err
	}

	slog.Debug("Found NV-CONTROL", "package", "nvidia", "version", fmt.Sprintf("%d.%d", major, minor), "gpus", gpus)

	return NewBackend(control, presenter), nil
}

func NewBackend(driver Driver, presenter Presenter) *Backend {
	return &Backend{
		driver:    driver,
		presenter: presenter,
		assoc:     NewAssociator(driver),
		log:       slog.With("package", "nvidia"),
	}
}

func (b *Backend) Name() string {
	return "nvidia"
}

// Displays probes once and caches the result.
func (b *Backend) Displays() ([]string, error) {
	if b.displays != nil {
		return b.displays, nil
	}

	displays, err := b.driver.ProbeDisplays()
	if err != nil {
		return nil, err
	}
	b.displays = displays
	return displays, nil
}

// PrimaryDisplay returns the first flat panel, else the first CRT, else the first TV.
func (b *Backend) PrimaryDisplay() (string, error) {
	displays, err := b.Displays()
	if err != nil {
		return "", err
	}
	if len(displays) == 0 {
		return "", core.ErrDisplayNotConnected
	}

	for _, prefix := range []string{"DFP", "CRT", "TV"} {
		for i := 0; i < 8; i++ {
			if display := fmt.Sprintf("%s-%d", prefix, i); core.Contains(displays, display) {
				return display, nil
			}
		}
	}
	return displays[0], nil
}

func (b *Backend) checkConnected(displays []string) error {
	connected, err := b.Displays()
	if err != nil {
		return err
	}
	for _, display := range displays {
		if !core.Contains(connected, display) {
			return fmt.Errorf("%w: %s", core.ErrDisplayNotConnected, display)
		}
	}
	return nil
}

func (b *Backend) DisplayName(display string) (string, error) {
	if err := b.checkConnected([]string{display}); err != nil {
		return "", err
	}

	name, err := b.driver.DisplayName(display)
	if err != nil {
		return "", err
	}
	if name != "" {
		return name, nil
	}

	data, err := b.driver.EDID(display)
	if err == nil {
		if id, err := edid.Parse(data); err == nil {
			return id.String(), nil
		}
	}
	return display, nil
}

// SupportedResolutions reads the display's mode pool, associating it for the duration if needed.
func (b *Backend) SupportedResolutions(display string) (resolution.List, error) {
	if err := b.checkConnected([]string{display}); err != nil {
		return nil, err
	}

	guard, err := b.assoc.Push([]string{display})
	if err != nil {
		return nil, err
	}
	defer guard.Rollback()

	if err := b.driver.BuildModePool(display); err != nil {
		return nil, err
	}
	modelines, err := b.driver.Modelines(display)
	if err != nil {
		return nil, err
	}
	list := resolution.ParseModelines(modelines)
	b.log.Info("Found resolutions", "display", display, "resolutions", list.String())

	if err := guard.Pop(true); err != nil {
		return nil, err
	}
	return list, nil
}

// PreferredResolution reads the preferred timing from the display's EDID.
func (b *Backend) PreferredResolution(display string) (resolution.Resolution, bool, error) {
	if err := b.checkConnected([]string{display}); err != nil {
		return resolution.Resolution{}, false, err
	}

	data, err := b.driver.EDID(display)
	if err != nil {
		b.log.Debug("Failed to read EDID", "display", display, "error", err)
		return resolution.Resolution{}, false, nil
	}
	width, height, ok := edid.PreferredSize(data)
	if !ok {
		return resolution.Resolution{}, false, nil
	}
	return resolution.New(width, height), true, nil
}

func (b *Backend) SwitchClone(displays []string, r resolution.Resolution, scaling switcher.Scaling) error {
	want := metamode.NewClone(displays, r)
	return b.switchTo(displays, want, scaling, func(list metamode.List) (metamode.ModeGroup, bool) {
		return list.FindClone(r, displays)
	})
}

func (b *Backend) SwitchExtend(displays []string, direction layout.Direction, sel resolution.Selection, scaling switcher.Scaling) error {
	enabled := sel.Enabled(displays)
	if len(enabled) == 0 {
		return core.NewInputError("every display is off")
	}

	want := metamode.FromTiles(layout.Strip{Direction: direction}.Tiles(displays, sel))
	return b.switchTo(enabled, want, scaling, func(list metamode.List) (metamode.ModeGroup, bool) {
		return list.FindSatisfying(want)
	})
}

// switchTo makes a mode group satisfying want current and leaves exactly displays associated.
// Scaling is set while the displays are associated so it survives the final association.
func (b *Backend) switchTo(displays []string, want metamode.ModeGroup, scaling switcher.Scaling, find func(metamode.List) (metamode.ModeGroup, bool)) error {
	if err := b.checkConnected(displays); err != nil {
		return err
	}

	guard, err := b.assoc.Push(displays)
	if err != nil {
		return err
	}
	defer guard.Rollback()

	if err := b.SetScaling(displays, scaling); err != nil {
		return err
	}

	mg, err := b.findOrAdd(want, find)
	if err != nil {
		return err
	}

	width, height := want.Bounds()
	if width == 0 || height == 0 {
		width, height = mg.Bounds()
	}
	// RandR 1.1 carries the mode group id as a 16 bit refresh rate.
	if mg.ID < 0 || mg.ID > math.MaxUint16 {
		return core.PresentationError{
			Width:  width,
			Height: height,
			Msg:    fmt.Sprintf("mode group id %d does not fit a refresh rate", mg.ID),
		}
	}
	b.log.Info("Switching to mode group", "id", mg.ID, "width", width, "height", height, "metamode", mg.EntriesString())
	if err := b.presenter.Switch(width, height, uint16(mg.ID)); err != nil {
		return err
	}

	if err := b.cleanup(displays); err != nil {
		return err
	}

	if err := guard.Pop(false); err != nil {
		return err
	}

	b.log.Info("Associating displays", "displays", displays)
	return b.driver.SetAssociatedDisplays(displays)
}

// findOrAdd returns an existing mode group found by find, adding want when there is none.
// The driver does not return the id of an added mode group, so it is looked up again.
func (b *Backend) findOrAdd(want metamode.ModeGroup, find func(metamode.List) (metamode.ModeGroup, bool)) (metamode.ModeGroup, error) {
	list, err := metaModes(b.driver)
	if err != nil {
		return metamode.ModeGroup{}, err
	}
	if mg, ok := find(list); ok && mg.ID != metamode.NoID {
		return mg, nil
	}

	b.log.Info("Adding mode group", "metamode", want.EntriesString())
	if err := b.driver.AddMetaMode(want.EntriesString()); err != nil {
		return metamode.ModeGroup{}, err
	}

	list, err = metaModes(b.driver)
	if err != nil {
		return metamode.ModeGroup{}, err
	}
	mg, ok := find(list)
	if !ok || mg.ID == metamode.NoID {
		return metamode.ModeGroup{}, fmt.Errorf("driver did not accept mode group %q", want.EntriesString())
	}
	return mg, nil
}

// cleanup deletes mode groups that show something outside displays. The driver forgets display
// names in mode groups of displays that are not associated, so these must go before the
// association shrinks.
func (b *Backend) cleanup(displays []string) error {
	list, err := metaModes(b.driver)
	if err != nil {
		return err
	}
	for _, mg := range list.Dangling(displays) {
		b.log.Info("Deleting dangling mode group", "id", mg.ID, "metamode", mg.EntriesString())
		if err := b.driver.DeleteMetaMode(mg.EntriesString()); err != nil {
			return err
		}
	}
	return nil
}

func scalingValue(scaling switcher.Scaling) (target, method uint16) {
	switch scaling {
	case switcher.ScalingNative:
		return nvctrl.ScalingTargetNative, nvctrl.ScalingMethodCentered
	case switcher.ScalingScaled:
		return nvctrl.ScalingTargetBestFit, nvctrl.ScalingMethodStretched
	case switcher.ScalingCentered:
		return nvctrl.ScalingTargetBestFit, nvctrl.ScalingMethodCentered
	default:
		return nvctrl.ScalingTargetBestFit, nvctrl.ScalingMethodAspectScaled
	}
}

// SetScaling sets scaling on each display that supports it, one at a time. Setting several
// displays in one request fails.
func (b *Backend) SetScaling(displays []string, scaling switcher.Scaling) error {
	target, method := scalingValue(scaling)
	for _, display := range displays {
		writable, err := b.driver.ScalingWritable(display)
		if err != nil || !writable {
			b.log.Debug("Display does not support scaling", "display", display, "error", err)
			continue
		}
		if err := b.driver.SetScaling(display, target, method); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) ExportConfig() (string, error) {
	displays, err := b.driver.AssociatedDisplays()
	if err != nil {
		return "", err
	}
	current, err := b.driver.CurrentMetaMode()
	if err != nil {
		return "", err
	}
	mg, err := metamode.Parse(current)
	if err != nil {
		return "", err
	}
	return metamode.Export{Displays: displays, ModeGroup: mg}.String(), nil
}

func (b *Backend) ImportConfig(cfg string) error {
	e, err := metamode.ParseExport(cfg)
	if err != nil {
		return err
	}
	return b.switchTo(e.Displays, e.ModeGroup, switcher.ScalingDefault, func(list metamode.List) (metamode.ModeGroup, bool) {
		return list.FindSatisfying(e.ModeGroup)
	})
}
