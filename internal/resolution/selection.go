package resolution

import (
	"strings"

	"github.com/ItsNotGoodName/x-disper/internal/core"
)

// Selection is the resolution chosen for each display.
type Selection map[string]Resolution

// ParseSelection parses either one resolution that applies to every display or exactly one
// resolution per display, in display order. "off" is accepted for any item.
func ParseSelection(s string, displays []string) (Selection, error) {
	items := core.SplitList(s)
	if len(items) == 0 {
		return nil, core.NewInputError("empty resolution")
	}
	if len(items) != 1 && len(items) != len(displays) {
		return nil, core.NewInputError("got %d resolutions for %d displays", len(items), len(displays))
	}

	sel := make(Selection, len(displays))
	for i, display := range displays {
		item := items[0]
		if len(items) > 1 {
			item = items[i]
		}

		if strings.EqualFold(item, "off") {
			sel[display] = Off
			continue
		}

		r, err := Parse(item)
		if err != nil {
			return nil, err
		}
		sel[display] = r
	}

	return sel, nil
}

// Broadcast selects r for every display.
func Broadcast(r Resolution, displays []string) Selection {
	sel := make(Selection, len(displays))
	for _, display := range displays {
		sel[display] = r
	}
	return sel
}

// Enabled returns the displays, in order, that are not switched off.
func (s Selection) Enabled(displays []string) []string {
	var enabled []string
	for _, display := range displays {
		if r, ok := s[display]; ok && !r.IsOff() {
			enabled = append(enabled, display)
		}
	}
	return enabled
}

// Format returns the selection as a comma separated list in display order.
func (s Selection) Format(displays []string) string {
	items := make([]string, 0, len(displays))
	for _, display := range displays {
		items = append(items, s[display].String())
	}
	return strings.Join(items, ", ")
}
