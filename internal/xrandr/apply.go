package xrandr

import (
	"fmt"

	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/layout"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

type placement struct {
	tile   layout.Tile
	output output
	mode   randr.Mode
	crtc   randr.Crtc
}

// apply shows exactly tiles, turning off every other output.
func (b *Backend) apply(tiles []layout.Tile) error {
	s, err := b.state()
	if err != nil {
		return err
	}

	width, height := layout.Bounds(tiles)
	placements, err := plan(s, tiles)
	if err != nil {
		return err
	}

	sizeRange, err := randr.GetScreenSizeRange(b.session.Conn, b.session.Root).Reply()
	if err != nil {
		return errors.Wrap(err, "failed to get screen size range")
	}
	if width > uint(sizeRange.MaxWidth) || height > uint(sizeRange.MaxHeight) {
		return core.PresentationError{Width: width, Height: height, Msg: fmt.Sprintf("screen is limited to %dx%d", sizeRange.MaxWidth, sizeRange.MaxHeight)}
	}
	width, height = max(width, uint(sizeRange.MinWidth)), max(height, uint(sizeRange.MinHeight))

	keep := make(map[randr.Crtc]bool, len(placements))
	for _, p := range placements {
		keep[p.crtc] = true
	}

	// CRTCs that stay on must fit the new screen while it is resized.
	for crtc, info := range s.crtcs {
		if info.Mode == 0 {
			continue
		}
		fits := int(info.X)+int(info.Width) <= int(width) && int(info.Y)+int(info.Height) <= int(height)
		if keep[crtc] && fits {
			continue
		}
		b.log.Debug("Disabling crtc", "crtc", crtc)
		if err := b.setCrtc(s, crtc, 0, 0, 0, nil); err != nil {
			return err
		}
	}

	mmw, mmh := screenMillimeters(screenSize{
		Width:    b.session.Info.WidthInPixels,
		Height:   b.session.Info.HeightInPixels,
		MmWidth:  b.session.Info.WidthInMillimeters,
		MmHeight: b.session.Info.HeightInMillimeters,
	}, width, height)
	b.log.Debug("Setting screen size", "width", width, "height", height, "mm_width", mmw, "mm_height", mmh)
	if err := randr.SetScreenSizeChecked(b.session.Conn, b.session.Root, uint16(width), uint16(height), mmw, mmh).Check(); err != nil {
		return errors.Wrapf(err, "failed to set screen size %dx%d", width, height)
	}
	b.session.Info.WidthInPixels, b.session.Info.HeightInPixels = uint16(width), uint16(height)
	b.session.Info.WidthInMillimeters, b.session.Info.HeightInMillimeters = uint16(mmw), uint16(mmh)

	for _, p := range placements {
		b.log.Debug("Configuring output", "display", p.output.name, "crtc", p.crtc, "x", p.tile.X, "y", p.tile.Y, "width", p.tile.Width, "height", p.tile.Height)
		if err := b.setCrtc(s, p.crtc, p.tile.X, p.tile.Y, p.mode, []randr.Output{p.output.id}); err != nil {
			return err
		}
	}

	return nil
}

func (b *Backend) setCrtc(s state, crtc randr.Crtc, x, y int, mode randr.Mode, outputs []randr.Output) error {
	reply, err := randr.SetCrtcConfig(b.session.Conn, crtc, xproto.TimeCurrentTime, s.res.ConfigTimestamp,
		int16(x), int16(y), mode, randr.RotationRotate0, outputs).Reply()
	if err != nil {
		return errors.Wrapf(err, "failed to configure crtc %d", crtc)
	}
	if reply.Status != randr.SetConfigSuccess {
		return errors.Errorf("failed to configure crtc %d: status %d", crtc, reply.Status)
	}
	return nil
}

// plan picks a mode and a CRTC for every tile.
func plan(s state, tiles []layout.Tile) ([]placement, error) {
	possible := make(map[randr.Crtc][]randr.Output, len(s.crtcs))
	for crtc, info := range s.crtcs {
		possible[crtc] = info.Possible
	}

	placements := make([]placement, 0, len(tiles))
	used := make(map[randr.Crtc]bool, len(tiles))

	for _, tile := range tiles {
		o, ok := s.output(tile.Display)
		if !ok || !o.connected() {
			return nil, fmt.Errorf("%w: %s", core.ErrDisplayNotConnected, tile.Display)
		}

		mode, ok := findMode(s.infos, o.info.Modes, tile.Width, tile.Height)
		if !ok {
			return nil, core.PresentationError{Width: tile.Width, Height: tile.Height, Msg: "no such mode on " + o.name}
		}

		p := placement{tile: tile, output: o, mode: mode}
		// Outputs sharing a CRTC would turn each other off, so only the first keeps it.
		if crtc := o.info.Crtc; crtc != 0 && !used[crtc] {
			used[crtc] = true
			p.crtc = crtc
		}
		placements = append(placements, p)
	}

	for i := range placements {
		if placements[i].crtc != 0 {
			continue
		}
		crtc, ok := pickCrtc(possible, s.res.Crtcs, placements[i].output.id, used)
		if !ok {
			return nil, errors.Errorf("no CRTC available for %s", placements[i].output.name)
		}
		used[crtc] = true
		placements[i].crtc = crtc
	}

	return placements, nil
}
