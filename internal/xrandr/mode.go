package xrandr

import (
	"github.com/ItsNotGoodName/x-disper/internal/resolution"
	"github.com/jezek/xgb/randr"
)

func refreshRate(mi randr.ModeInfo) float64 {
	if mi.Htotal == 0 || mi.Vtotal == 0 {
		return 0
	}
	return float64(mi.DotClock) / (float64(mi.Htotal) * float64(mi.Vtotal))
}

func modeInfos(res *randr.GetScreenResourcesReply) map[randr.Mode]randr.ModeInfo {
	infos := make(map[randr.Mode]randr.ModeInfo, len(res.Modes))
	for _, mi := range res.Modes {
		infos[randr.Mode(mi.Id)] = mi
	}
	return infos
}

// findMode returns the output mode of the given size with the highest refresh rate.
func findMode(infos map[randr.Mode]randr.ModeInfo, modes []randr.Mode, width, height uint) (randr.Mode, bool) {
	var (
		best     randr.Mode
		bestRate float64
		found    bool
	)
	for _, mode := range modes {
		mi, ok := infos[mode]
		if !ok || uint(mi.Width) != width || uint(mi.Height) != height {
			continue
		}
		if rate := refreshRate(mi); !found || rate > bestRate {
			best, bestRate, found = mode, rate, true
		}
	}
	return best, found
}

// resolutions lists the distinct sizes of modes, in order.
func resolutions(infos map[randr.Mode]randr.ModeInfo, modes []randr.Mode) resolution.List {
	var list resolution.List
	for _, mode := range modes {
		mi, ok := infos[mode]
		if !ok {
			continue
		}
		r := resolution.New(uint(mi.Width), uint(mi.Height))
		if !list.Contains(r) {
			list = append(list, r)
		}
	}
	return list
}

// preferred returns the first preferred mode's size.
func preferred(infos map[randr.Mode]randr.ModeInfo, info *randr.GetOutputInfoReply) (resolution.Resolution, bool) {
	if info.NumPreferred == 0 || len(info.Modes) == 0 {
		return resolution.Resolution{}, false
	}
	mi, ok := infos[info.Modes[0]]
	if !ok {
		return resolution.Resolution{}, false
	}
	return resolution.New(uint(mi.Width), uint(mi.Height)), true
}

// pickCrtc returns a CRTC that can drive output and is not in used.
func pickCrtc(possible map[randr.Crtc][]randr.Output, order []randr.Crtc, output randr.Output, used map[randr.Crtc]bool) (randr.Crtc, bool) {
	for _, crtc := range order {
		if used[crtc] {
			continue
		}
		for _, o := range possible[crtc] {
			if o == output {
				return crtc, true
			}
		}
	}
	return 0, false
}

// screenMillimeters keeps the current DPI for a new screen size.
func screenMillimeters(screen screenSize, width, height uint) (uint32, uint32) {
	if screen.Width == 0 || screen.Height == 0 || screen.MmWidth == 0 || screen.MmHeight == 0 {
		// 96 DPI
		return uint32(float64(width) * 254 / 960), uint32(float64(height) * 254 / 960)
	}
	mmw := float64(width) * float64(screen.MmWidth) / float64(screen.Width)
	mmh := float64(height) * float64(screen.MmHeight) / float64(screen.Height)
	return uint32(mmw), uint32(mmh)
}

type screenSize struct {
	Width    uint16
	Height   uint16
	MmWidth  uint16
	MmHeight uint16
}
