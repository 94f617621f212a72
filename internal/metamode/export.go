package metamode

import (
	"strings"

	"github.com/ItsNotGoodName/x-disper/internal/core"
)

const (
	keyDisplays = "associated displays"
	keyMetaMode = "metamode"
)

// Export is a saved configuration: the displays in use and the mode group they show.
type Export struct {
	Displays  []string
	ModeGroup ModeGroup
}

// String renders the two line export format. Options are never written.
func (e Export) String() string {
	return keyDisplays + ": " + strings.Join(e.Displays, ", ") + "\n" +
		keyMetaMode + ": " + e.ModeGroup.EntriesString() + "\n"
}

// ParseExport parses text written by Export.String. Unknown keys and blank lines are ignored.
func ParseExport(s string) (Export, error) {
	var (
		e           Export
		hasDisplays bool
		hasMetaMode bool
	)

	for _, line := range strings.Split(s, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(key)) {
		case keyDisplays:
			e.Displays = core.SplitList(value)
			hasDisplays = true
		case keyMetaMode:
			mg, err := Parse(value)
			if err != nil {
				return Export{}, err
			}
			e.ModeGroup = mg
			hasMetaMode = true
		}
	}

	if !hasDisplays || len(e.Displays) == 0 {
		return Export{}, core.NewInputError("missing %q line", keyDisplays)
	}
	if !hasMetaMode {
		return Export{}, core.NewInputError("missing %q line", keyMetaMode)
	}

	return e, nil
}
