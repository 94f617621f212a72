package metamode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/resolution"
)

const (
	null       = "NULL"
	AutoSelect = "nvidia-auto-select"
)

type Position struct {
	X int
	Y int
}

func (p Position) String() string {
	return fmt.Sprintf("%+d%+d", p.X, p.Y)
}

// Entry is one display's part of a mode group. An entry with neither Physical nor Mode is disabled.
type Entry struct {
	Display  string
	Mode     string
	Physical *resolution.Resolution
	Virtual  *resolution.Resolution
	Position *Position
	// Attributes holds a raw "{...}" block as reported by the driver.
	Attributes string
}

func Disabled(display string) Entry {
	return Entry{Display: display}
}

func (e Entry) Enabled() bool {
	return e.Physical != nil || e.Mode != ""
}

// Size returns the area the entry covers on the screen.
func (e Entry) Size() (resolution.Resolution, bool) {
	if e.Virtual != nil {
		return *e.Virtual, true
	}
	if e.Physical != nil {
		return *e.Physical, true
	}
	return resolution.Resolution{}, false
}

func (e Entry) position() Position {
	if e.Position == nil {
		return Position{}
	}
	return *e.Position
}

// Equal compares entries structurally: the virtual size defaults to the physical size and
// a missing position is the origin.
func (e Entry) Equal(o Entry) bool {
	if e.Display != o.Display || e.Enabled() != o.Enabled() {
		return false
	}
	if !e.Enabled() {
		return true
	}
	if e.Mode != o.Mode {
		return false
	}
	if (e.Physical == nil) != (o.Physical == nil) {
		return false
	}
	if e.Physical != nil && !e.Physical.Equal(*o.Physical) {
		return false
	}
	esize, eok := e.Size()
	osize, ook := o.Size()
	if eok != ook || !esize.Equal(osize) {
		return false
	}
	return e.position() == o.position()
}

func (e Entry) String() string {
	if !e.Enabled() {
		return e.Display + ": " + null
	}

	var b strings.Builder
	b.WriteString(e.Display)
	b.WriteString(": ")
	if e.Physical != nil {
		b.WriteString(e.Physical.String())
	} else {
		b.WriteString(e.Mode)
	}
	if e.Virtual != nil {
		b.WriteString(" @")
		b.WriteString(e.Virtual.String())
	}
	if e.Position != nil {
		b.WriteString(" ")
		b.WriteString(e.Position.String())
	}
	if e.Attributes != "" {
		b.WriteString(" ")
		b.WriteString(e.Attributes)
	}
	return b.String()
}

// ParseEntry parses "DISPLAY: NULL" or "DISPLAY: MODE [@WxH] [+X+Y] [{...}]".
func ParseEntry(s string) (Entry, error) {
	display, body, ok := strings.Cut(s, ":")
	display = strings.TrimSpace(display)
	if !ok || display == "" {
		return Entry{}, core.NewInputError("invalid mode group entry %q", s)
	}
	entry := Entry{Display: display}

	body = strings.TrimSpace(body)
	if i := strings.Index(body, "{"); i != -1 {
		entry.Attributes = strings.TrimSpace(body[i:])
		body = body[:i]
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return Entry{}, core.NewInputError("missing mode in entry %q", s)
	}

	mode := fields[0]
	switch {
	case mode == null:
		if len(fields) != 1 {
			return Entry{}, core.NewInputError("disabled entry has geometry %q", s)
		}
		return entry, nil
	case isSize(mode):
		r, err := resolution.Parse(mode)
		if err != nil {
			return Entry{}, err
		}
		entry.Physical = &r
	default:
		entry.Mode = mode
	}

	for i := 1; i < len(fields); i++ {
		field := fields[i]
		switch {
		case strings.HasPrefix(field, "@"):
			size := strings.TrimPrefix(field, "@")
			if size == "" && i+1 < len(fields) {
				i++
				size = fields[i]
			}
			r, err := resolution.Parse(size)
			if err != nil {
				return Entry{}, core.NewInputError("invalid virtual size in entry %q", s)
			}
			entry.Virtual = &r
		case strings.HasPrefix(field, "+") || strings.HasPrefix(field, "-"):
			p, err := parsePosition(field)
			if err != nil {
				return Entry{}, core.NewInputError("invalid position in entry %q", s)
			}
			entry.Position = &p
		default:
			return Entry{}, core.NewInputError("unexpected %q in entry %q", field, s)
		}
	}

	return entry, nil
}

func isSize(s string) bool {
	w, h, ok := strings.Cut(s, "x")
	return ok && isDigits(w) && isDigits(h)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func parsePosition(s string) (Position, error) {
	i := strings.IndexAny(s[1:], "+-")
	if i == -1 {
		return Position{}, fmt.Errorf("missing y offset")
	}
	x, err := strconv.Atoi(s[:i+1])
	if err != nil {
		return Position{}, err
	}
	y, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return Position{}, err
	}
	return Position{X: x, Y: y}, nil
}
