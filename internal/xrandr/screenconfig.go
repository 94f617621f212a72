package xrandr

import (
	"fmt"

	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/xconn"
	"github.com/jezek/xgb/randr"
	"github.com/pkg/errors"
)

// ScreenConfig switches the screen through the RandR 1.1 size and rate list. The NVIDIA driver
// advertises each mode group as a size whose refresh rates carry the mode group ids.
type ScreenConfig struct {
	session *xconn.Session
}

func NewScreenConfig(session *xconn.Session) (*ScreenConfig, error) {
	if !session.RandR {
		return nil, errors.New("RandR extension not available")
	}
	return &ScreenConfig{session: session}, nil
}

// Switch selects the screen size width x height at rate.
func (s *ScreenConfig) Switch(width, height uint, rate uint16) error {
	info, err := randr.GetScreenInfo(s.session.Conn, s.session.Root).Reply()
	if err != nil {
		return errors.Wrap(err, "failed to get screen info")
	}

	sizeID, ok := findSize(info.Sizes, info.Rates, width, height, rate)
	if !ok {
		return core.PresentationError{Width: width, Height: height, Msg: fmt.Sprintf("no screen size with rate %d", rate)}
	}

	reply, err := randr.SetScreenConfig(s.session.Conn, s.session.Root, info.Timestamp, info.ConfigTimestamp,
		uint16(sizeID), info.Rotation, rate).Reply()
	if err != nil {
		return errors.Wrap(err, "failed to set screen config")
	}
	if reply.Status != randr.SetConfigSuccess {
		return core.PresentationError{Width: width, Height: height, Msg: fmt.Sprintf("screen config status %d", reply.Status)}
	}
	return nil
}

func findSize(sizes []randr.ScreenSize, rates []randr.RefreshRates, width, height uint, rate uint16) (int, bool) {
	for i, size := range sizes {
		if uint(size.Width) != width || uint(size.Height) != height || i >= len(rates) {
			continue
		}
		for _, r := range rates[i].Rates {
			if r == rate {
				return i, true
			}
		}
	}
	return 0, false
}
