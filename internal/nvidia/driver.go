// Package nvidia configures displays through the NV-CONTROL extension.
package nvidia

import (
	"github.com/ItsNotGoodName/x-disper/internal/metamode"
)

// Driver is the NV-CONTROL surface the backend needs. *nvctrl.Control implements it.
type Driver interface {
	ProbeDisplays() ([]string, error)
	DisplayName(display string) (string, error)
	EDID(display string) ([]byte, error)
	BuildModePool(display string) error
	Modelines(display string) ([]string, error)
	MetaModes() ([]string, error)
	CurrentMetaMode() (string, error)
	AddMetaMode(metamode string) error
	DeleteMetaMode(metamode string) error
	AssociatedDisplays() ([]string, error)
	SetAssociatedDisplays(displays []string) error
	ScalingWritable(display string) (bool, error)
	SetScaling(display string, target, method uint16) error
}

// Presenter switches the screen to a mode group the driver knows about.
type Presenter interface {
	Switch(width, height uint, rate uint16) error
}

func metaModes(driver Driver) (metamode.List, error) {
	items, err := driver.MetaModes()
	if err != nil {
		return nil, err
	}
	return metamode.ParseList(items)
}
