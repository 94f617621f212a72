package nvidia

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/metamode"
)

type frame struct {
	changed  bool
	previous []string
	// scratch is the auto-select mode group created for the association, if any.
	scratch *metamode.ModeGroup
}

// Associator changes which displays are associated with the X screen and undoes it in reverse order.
// The driver may crash the X server when a display is associated that no mode group mentions, so
// every widened association is preceded by an auto-select mode group covering all displays.
type Associator struct {
	driver Driver
	stack  []frame
	log    *slog.Logger
}

func NewAssociator(driver Driver) *Associator {
	return &Associator{
		driver: driver,
		log:    slog.With("package", "nvidia"),
	}
}

// Depth returns the number of frames not yet popped.
func (a *Associator) Depth() int {
	return len(a.stack)
}

// Push associates needed in addition to the current displays.
func (a *Associator) Push(needed []string) (*Guard, error) {
	current, err := a.driver.AssociatedDisplays()
	if err != nil {
		return nil, err
	}

	union := core.Union(current, needed)
	if core.SameSet(union, current) {
		return a.push(frame{}), nil
	}

	scratch, err := a.addAutoSelect(union)
	if err != nil {
		return nil, err
	}

	a.log.Info("Associating displays", "displays", union)
	if err := a.driver.SetAssociatedDisplays(union); err != nil {
		if scratch != nil {
			if err := a.deleteScratch(*scratch); err != nil {
				a.log.Warn("Failed to delete auto-select mode group", "error", err)
			}
		}
		return nil, err
	}

	return a.push(frame{changed: true, previous: current, scratch: scratch}), nil
}

func (a *Associator) push(f frame) *Guard {
	a.stack = append(a.stack, f)
	return &Guard{a: a, depth: len(a.stack)}
}

// addAutoSelect returns the created mode group, or nil when an equal one already existed.
func (a *Associator) addAutoSelect(displays []string) (*metamode.ModeGroup, error) {
	want := metamode.NewAutoSelect(displays)

	list, err := metaModes(a.driver)
	if err != nil {
		return nil, err
	}
	if _, ok := list.FindEqual(want); ok {
		return nil, nil
	}

	a.log.Info("Adding auto-select mode group", "metamode", want.String())
	if err := a.driver.AddMetaMode(want.String()); err != nil {
		return nil, err
	}

	list, err = metaModes(a.driver)
	if err != nil {
		return nil, err
	}
	if mg, ok := list.FindEqual(want); ok {
		return &mg, nil
	}
	return &want, nil
}

func (a *Associator) deleteScratch(scratch metamode.ModeGroup) error {
	list, err := metaModes(a.driver)
	if err != nil {
		return err
	}
	if _, ok := list.FindEqual(scratch); !ok {
		return nil
	}

	a.log.Info("Deleting auto-select mode group", "id", scratch.ID)
	return a.driver.DeleteMetaMode(scratch.EntriesString())
}

func (a *Associator) pop(restore bool) error {
	if len(a.stack) == 0 {
		return fmt.Errorf("association stack is empty")
	}
	f := a.stack[len(a.stack)-1]
	a.stack = a.stack[:len(a.stack)-1]

	var deleteErr, restoreErr error
	if f.scratch != nil {
		deleteErr = a.deleteScratch(*f.scratch)
	}

	// The previous association is restored even when the scratch mode group is stuck.
	if restore && f.changed {
		a.log.Info("Restoring associated displays", "displays", f.previous)
		restoreErr = a.driver.SetAssociatedDisplays(f.previous)
	}
	return errors.Join(deleteErr, restoreErr)
}

// Guard releases one Push. Pop it explicitly on success and defer Rollback for every other path.
type Guard struct {
	a     *Associator
	depth int
	done  bool
}

// Pop removes the scratch mode group and, when restore is set, re-associates the previous displays.
func (g *Guard) Pop(restore bool) error {
	if g.done {
		return nil
	}
	if g.depth != len(g.a.stack) {
		return fmt.Errorf("association popped out of order: depth %d, stack %d", g.depth, len(g.a.stack))
	}
	g.done = true
	return g.a.pop(restore)
}

// Rollback restores the previous association if the guard was not popped. Failures are only logged
// so that the error that caused the rollback is the one reported.
func (g *Guard) Rollback() {
	if g.done {
		return
	}
	if err := g.Pop(true); err != nil {
		g.a.log.Warn("Failed to restore associated displays", "error", err)
	}
}
