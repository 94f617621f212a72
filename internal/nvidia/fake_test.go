package nvidia

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ItsNotGoodName/x-disper/internal/metamode"
)

type fakeDriver struct {
	probed     []string
	names      map[string]string
	edids      map[string][]byte
	modelines  map[string][]string
	associated []string
	metamodes  []metamode.ModeGroup
	nextID     int
	scalable   map[string]bool

	scaled      []string
	modePools   []string
	assocCalls  [][]string
	failAssocOn int
	failDelete  error
}

func newFakeDriver(probed []string, associated []string, metamodes ...string) *fakeDriver {
	d := &fakeDriver{
		probed:     probed,
		associated: associated,
		nextID:     50,
		scalable:   map[string]bool{},
		names:      map[string]string{},
		edids:      map[string][]byte{},
		modelines:  map[string][]string{},
	}
	for _, mm := range metamodes {
		if err := d.AddMetaMode(mm); err != nil {
			panic(err)
		}
	}
	return d
}

func (d *fakeDriver) ProbeDisplays() ([]string, error) { return d.probed, nil }

func (d *fakeDriver) DisplayName(display string) (string, error) { return d.names[display], nil }

func (d *fakeDriver) EDID(display string) ([]byte, error) {
	data, ok := d.edids[display]
	if !ok {
		return nil, errors.New("no edid")
	}
	return data, nil
}

func (d *fakeDriver) BuildModePool(display string) error {
	d.modePools = append(d.modePools, display)
	return nil
}

func (d *fakeDriver) Modelines(display string) ([]string, error) {
	for _, a := range d.associated {
		if a == display {
			return d.modelines[display], nil
		}
	}
	return nil, fmt.Errorf("%s is not associated", display)
}

func (d *fakeDriver) MetaModes() ([]string, error) {
	var items []string
	for _, mg := range d.metamodes {
		items = append(items, mg.String())
	}
	return items, nil
}

func (d *fakeDriver) CurrentMetaMode() (string, error) {
	if len(d.metamodes) == 0 {
		return "", errors.New("no metamode")
	}
	return d.metamodes[len(d.metamodes)-1].String(), nil
}

func (d *fakeDriver) AddMetaMode(s string) error {
	mg, err := metamode.Parse(s)
	if err != nil {
		return err
	}
	for _, existing := range d.metamodes {
		if existing.Equal(mg) {
			return nil
		}
	}
	mg.ID = d.nextID
	mg.Options = []metamode.Option{{Key: "id", Value: fmt.Sprint(d.nextID)}}
	d.nextID++
	d.metamodes = append(d.metamodes, mg)
	return nil
}

func (d *fakeDriver) DeleteMetaMode(s string) error {
	if d.failDelete != nil {
		return d.failDelete
	}
	mg, err := metamode.Parse(s)
	if err != nil {
		return err
	}
	for i, existing := range d.metamodes {
		if existing.Equal(mg) {
			d.metamodes = append(d.metamodes[:i], d.metamodes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no metamode %q", s)
}

func (d *fakeDriver) AssociatedDisplays() ([]string, error) {
	return append([]string{}, d.associated...), nil
}

func (d *fakeDriver) SetAssociatedDisplays(displays []string) error {
	d.assocCalls = append(d.assocCalls, displays)
	if d.failAssocOn == len(d.assocCalls) {
		return errors.New("association rejected")
	}
	d.associated = append([]string{}, displays...)
	return nil
}

func (d *fakeDriver) ScalingWritable(display string) (bool, error) {
	return d.scalable[display], nil
}

func (d *fakeDriver) SetScaling(display string, target, method uint16) error {
	if !slices.Contains(d.associated, display) {
		return fmt.Errorf("%s is not associated", display)
	}
	d.scaled = append(d.scaled, fmt.Sprintf("%s:%d:%d", display, target, method))
	return nil
}

func (d *fakeDriver) has(s string) bool {
	mg, err := metamode.Parse(s)
	if err != nil {
		panic(err)
	}
	for _, existing := range d.metamodes {
		if existing.Equal(mg) {
			return true
		}
	}
	return false
}

type switchCall struct {
	width  uint
	height uint
	rate   uint16
}

type fakePresenter struct {
	calls []switchCall
	err   error
}

func (p *fakePresenter) Switch(width, height uint, rate uint16) error {
	p.calls = append(p.calls, switchCall{width, height, rate})
	return p.err
}
