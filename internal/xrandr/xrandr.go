// Package xrandr configures displays through the RandR extension.
package xrandr

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/edid"
	"github.com/ItsNotGoodName/x-disper/internal/layout"
	"github.com/ItsNotGoodName/x-disper/internal/metamode"
	"github.com/ItsNotGoodName/x-disper/internal/resolution"
	"github.com/ItsNotGoodName/x-disper/internal/switcher"
	"github.com/ItsNotGoodName/x-disper/internal/xconn"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

var _ switcher.Backend = (*Backend)(nil)

// Backend is the generic backend for drivers that implement RandR 1.2.
type Backend struct {
	session *xconn.Session
	log     *slog.Logger
}

func New(session *xconn.Session) (*Backend, error) {
	if !session.RandR {
		return nil, errors.New("RandR extension not available")
	}

	version, err := randr.QueryVersion(session.Conn, 1, 2).Reply()
	if err != nil {
		return nil, errors.Wrap(err, "failed to query RandR version")
	}
	if version.MajorVersion < 1 || (version.MajorVersion == 1 && version.MinorVersion < 2) {
		return nil, errors.Errorf("RandR %d.%d is too old, 1.2 is required", version.MajorVersion, version.MinorVersion)
	}

	return &Backend{
		session: session,
		log:     slog.With("package", "xrandr"),
	}, nil
}

func (b *Backend) Name() string {
	return "xrandr"
}

type output struct {
	id   randr.Output
	name string
	info *randr.GetOutputInfoReply
}

func (o output) connected() bool {
	return o.info.Connection == randr.ConnectionConnected
}

type state struct {
	res     *randr.GetScreenResourcesReply
	infos   map[randr.Mode]randr.ModeInfo
	outputs []output
	crtcs   map[randr.Crtc]*randr.GetCrtcInfoReply
}

func (s state) output(name string) (output, bool) {
	for _, o := range s.outputs {
		if o.name == name {
			return o, true
		}
	}
	return output{}, false
}

func (b *Backend) state() (state, error) {
	conn := b.session.Conn

	res, err := randr.GetScreenResources(conn, b.session.Root).Reply()
	if err != nil {
		return state{}, errors.Wrap(err, "failed to get screen resources")
	}

	s := state{
		res:   res,
		infos: modeInfos(res),
		crtcs: make(map[randr.Crtc]*randr.GetCrtcInfoReply, len(res.Crtcs)),
	}

	for _, id := range res.Outputs {
		info, err := randr.GetOutputInfo(conn, id, res.ConfigTimestamp).Reply()
		if err != nil {
			return state{}, errors.Wrapf(err, "failed to get info of output %d", id)
		}
		s.outputs = append(s.outputs, output{id: id, name: string(info.Name), info: info})
	}

	for _, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, res.ConfigTimestamp).Reply()
		if err != nil {
			return state{}, errors.Wrapf(err, "failed to get info of crtc %d", crtc)
		}
		s.crtcs[crtc] = info
	}

	return s, nil
}

func (b *Backend) Displays() ([]string, error) {
	s, err := b.state()
	if err != nil {
		return nil, err
	}

	var displays []string
	for _, o := range s.outputs {
		if o.connected() {
			displays = append(displays, o.name)
		}
	}
	return displays, nil
}

// PrimaryDisplay returns the RandR primary output when it is connected, else the first connected output.
func (b *Backend) PrimaryDisplay() (string, error) {
	s, err := b.state()
	if err != nil {
		return "", err
	}

	// GetOutputPrimary needs RandR 1.3.
	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(b.session.Conn, b.session.Root).Reply(); err == nil {
		primary = reply.Output
	} else {
		b.log.Debug("Failed to get primary output", "error", err)
	}

	first := ""
	for _, o := range s.outputs {
		if !o.connected() {
			continue
		}
		if primary != 0 && o.id == primary {
			return o.name, nil
		}
		if first == "" {
			first = o.name
		}
	}
	if first == "" {
		return "", core.ErrDisplayNotConnected
	}
	return first, nil
}

func (b *Backend) connectedOutput(display string) (state, output, error) {
	s, err := b.state()
	if err != nil {
		return state{}, output{}, err
	}
	o, ok := s.output(display)
	if !ok || !o.connected() {
		return state{}, output{}, fmt.Errorf("%w: %s", core.ErrDisplayNotConnected, display)
	}
	return s, o, nil
}

// DisplayName returns the output name, followed by the monitor identity when the output has an EDID.
func (b *Backend) DisplayName(display string) (string, error) {
	_, o, err := b.connectedOutput(display)
	if err != nil {
		return "", err
	}

	atom, err := b.session.InternAtom("EDID")
	if err != nil {
		return "", errors.Wrap(err, "failed to intern EDID atom")
	}
	prop, err := randr.GetOutputProperty(b.session.Conn, o.id, atom, xproto.GetPropertyTypeAny, 0, 128, false, false).Reply()
	if err != nil {
		b.log.Debug("Failed to read EDID", "display", display, "error", err)
		return o.name, nil
	}

	id, err := edid.Parse(prop.Data)
	if err != nil {
		return o.name, nil
	}
	return o.name + " (" + id.String() + ")", nil
}

func (b *Backend) SupportedResolutions(display string) (resolution.List, error) {
	s, o, err := b.connectedOutput(display)
	if err != nil {
		return nil, err
	}
	return resolutions(s.infos, o.info.Modes), nil
}

func (b *Backend) PreferredResolution(display string) (resolution.Resolution, bool, error) {
	s, o, err := b.connectedOutput(display)
	if err != nil {
		return resolution.Resolution{}, false, err
	}
	r, ok := preferred(s.infos, o.info)
	return r, ok, nil
}

func (b *Backend) SwitchClone(displays []string, r resolution.Resolution, scaling switcher.Scaling) error {
	if err := checkScaling(scaling); err != nil {
		return err
	}
	return b.apply(layout.Clone{}.Tiles(displays, resolution.Broadcast(r, displays)))
}

func (b *Backend) SwitchExtend(displays []string, direction layout.Direction, sel resolution.Selection, scaling switcher.Scaling) error {
	if err := checkScaling(scaling); err != nil {
		return err
	}
	return b.apply(layout.Strip{Direction: direction}.Tiles(displays, sel))
}

// checkScaling rejects everything but the server's default scaling.
func checkScaling(scaling switcher.Scaling) error {
	if scaling == "" || scaling == switcher.ScalingDefault {
		return nil
	}
	return fmt.Errorf("scaling %q: %w", scaling, core.ErrUnsupported)
}

// ExportConfig describes the current CRTC geometry of every active output.
func (b *Backend) ExportConfig() (string, error) {
	s, err := b.state()
	if err != nil {
		return "", err
	}

	var (
		displays []string
		tiles    []layout.Tile
	)
	for _, o := range s.outputs {
		crtc, ok := s.crtcs[o.info.Crtc]
		if !o.connected() || o.info.Crtc == 0 || !ok || crtc.Mode == 0 {
			continue
		}
		displays = append(displays, o.name)
		tiles = append(tiles, layout.Tile{
			Display: o.name,
			X:       int(crtc.X),
			Y:       int(crtc.Y),
			Width:   uint(crtc.Width),
			Height:  uint(crtc.Height),
		})
	}

	return metamode.Export{Displays: displays, ModeGroup: metamode.FromTiles(tiles)}.String(), nil
}

func (b *Backend) ImportConfig(cfg string) error {
	e, err := metamode.ParseExport(cfg)
	if err != nil {
		return err
	}

	var tiles []layout.Tile
	for _, entry := range e.ModeGroup.Entries {
		if !entry.Enabled() || !core.Contains(e.Displays, entry.Display) {
			continue
		}
		if entry.Physical == nil {
			return core.NewInputError("mode %q of %s has no size", entry.Mode, entry.Display)
		}

		tile := layout.Tile{Display: entry.Display, Width: entry.Physical.Width, Height: entry.Physical.Height}
		if entry.Position != nil {
			tile.X, tile.Y = entry.Position.X, entry.Position.Y
		}
		tiles = append(tiles, tile)
	}
	if len(tiles) == 0 {
		return core.NewInputError("no enabled display in %s", strings.Join(e.Displays, ", "))
	}

	return b.apply(tiles)
}
