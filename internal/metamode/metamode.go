// Package metamode parses and builds NVIDIA mode groups (metamodes), the text form
// "[options ::] DISPLAY: MODE [@WxH] [+X+Y], ..." that describes what each display shows.
package metamode

import (
	"strconv"
	"strings"

	"github.com/ItsNotGoodName/x-disper/internal/core"
	"github.com/ItsNotGoodName/x-disper/internal/layout"
	"github.com/ItsNotGoodName/x-disper/internal/resolution"
)

// NoID is the id of a mode group the driver has not numbered.
const NoID = -1

type Option struct {
	Key   string
	Value string
}

type ModeGroup struct {
	ID      int
	Options []Option
	Entries []Entry
	// Source is the text the mode group was parsed from.
	Source string
}

// Parse parses a mode group. The id comes from the "id" option when present.
func Parse(s string) (ModeGroup, error) {
	mg := ModeGroup{ID: NoID, Source: s}

	body := s
	if opts, rest, ok := strings.Cut(s, "::"); ok {
		body = rest
		for _, opt := range core.SplitList(opts) {
			key, value, _ := strings.Cut(opt, "=")
			mg.Options = append(mg.Options, Option{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
		}
	}

	if value, ok := mg.Option("id"); ok {
		id, err := strconv.Atoi(value)
		if err != nil {
			return ModeGroup{}, core.NewInputError("invalid mode group id %q", value)
		}
		mg.ID = id
	}

	for _, item := range splitEntries(body) {
		if strings.TrimSpace(item) == "" {
			continue
		}
		entry, err := ParseEntry(item)
		if err != nil {
			return ModeGroup{}, err
		}
		mg.Entries = append(mg.Entries, entry)
	}
	if len(mg.Entries) == 0 {
		return ModeGroup{}, core.NewInputError("mode group %q has no entries", s)
	}

	return mg, nil
}

// splitEntries splits on commas that are not inside a "{...}" block.
func splitEntries(s string) []string {
	var items []string
	depth, start := 0, 0
	for i, c := range s {
		switch c {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				items = append(items, s[start:i])
				start = i + 1
			}
		}
	}
	return append(items, s[start:])
}

func New(entries ...Entry) ModeGroup {
	return ModeGroup{ID: NoID, Entries: entries}
}

// NewClone shows r at the origin of every display.
func NewClone(displays []string, r resolution.Resolution) ModeGroup {
	return FromTiles(layout.Clone{}.Tiles(displays, resolution.Broadcast(r, displays)))
}

// NewAutoSelect lets the driver pick a mode for every display.
func NewAutoSelect(displays []string) ModeGroup {
	mg := New()
	for _, display := range displays {
		mg.Entries = append(mg.Entries, Entry{Display: display, Mode: AutoSelect})
	}
	return mg
}

func FromTiles(tiles []layout.Tile) ModeGroup {
	mg := New()
	for _, tile := range tiles {
		r := resolution.New(tile.Width, tile.Height)
		mg.Entries = append(mg.Entries, Entry{
			Display:  tile.Display,
			Physical: &r,
			Position: &Position{X: tile.X, Y: tile.Y},
		})
	}
	return mg
}

// Tiles returns the screen area of every enabled entry with a known size.
func (m ModeGroup) Tiles() []layout.Tile {
	var tiles []layout.Tile
	for _, e := range m.Entries {
		size, ok := e.Size()
		if !e.Enabled() || !ok {
			continue
		}
		p := e.position()
		tiles = append(tiles, layout.Tile{Display: e.Display, X: p.X, Y: p.Y, Width: size.Width, Height: size.Height})
	}
	return tiles
}

func (m ModeGroup) Bounds() (width, height uint) {
	return layout.Bounds(m.Tiles())
}

func (m ModeGroup) Option(key string) (string, bool) {
	for _, opt := range m.Options {
		if opt.Key == key {
			return opt.Value, true
		}
	}
	return "", false
}

func (m ModeGroup) Entry(display string) (Entry, bool) {
	for _, e := range m.Entries {
		if e.Display == display {
			return e, true
		}
	}
	return Entry{}, false
}

// Displays returns the displays with an enabled entry.
func (m ModeGroup) Displays() []string {
	var displays []string
	for _, e := range m.Entries {
		if e.Enabled() {
			displays = append(displays, e.Display)
		}
	}
	return displays
}

// Equal holds when both have the same number of entries and each entry has an equal
// counterpart, in any order. Options are ignored.
func (m ModeGroup) Equal(o ModeGroup) bool {
	if len(m.Entries) != len(o.Entries) {
		return false
	}
	for _, e := range m.Entries {
		if !o.has(e) {
			return false
		}
	}
	return true
}

func (m ModeGroup) has(e Entry) bool {
	for _, candidate := range m.Entries {
		if candidate.Equal(e) {
			return true
		}
	}
	return false
}

// Satisfies holds when every enabled entry of want is present and every other entry is disabled or missing.
func (m ModeGroup) Satisfies(want ModeGroup) bool {
	for _, e := range want.Entries {
		if e.Enabled() && !m.has(e) {
			return false
		}
	}
	for _, e := range m.Entries {
		if w, ok := want.Entry(e.Display); (!ok || !w.Enabled()) && e.Enabled() {
			return false
		}
	}
	return true
}

// IsClone holds when every display shows r at the origin and all other displays are disabled.
func (m ModeGroup) IsClone(r resolution.Resolution, displays []string) bool {
	return m.Satisfies(NewClone(displays, r))
}

func (m ModeGroup) MatchesID(id int) bool {
	return id != NoID && m.ID == id
}

// MatchesText parses s and compares it structurally.
func (m ModeGroup) MatchesText(s string) bool {
	o, err := Parse(s)
	if err != nil {
		return false
	}
	return m.Equal(o)
}

// Dangling holds when the mode group shows something on a display outside displays.
func (m ModeGroup) Dangling(displays []string) bool {
	for _, display := range m.Displays() {
		if !core.Contains(displays, display) {
			return true
		}
	}
	return false
}

// EntriesString serializes the entries without options.
func (m ModeGroup) EntriesString() string {
	items := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		items = append(items, e.String())
	}
	return strings.Join(items, ", ")
}

func (m ModeGroup) String() string {
	if len(m.Options) == 0 {
		return m.EntriesString()
	}
	opts := make([]string, 0, len(m.Options))
	for _, opt := range m.Options {
		opts = append(opts, opt.Key+"="+opt.Value)
	}
	return strings.Join(opts, ", ") + " :: " + m.EntriesString()
}

type List []ModeGroup

// ParseList parses mode groups, one per item. Empty items are skipped.
func ParseList(items []string) (List, error) {
	var list List
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		mg, err := Parse(item)
		if err != nil {
			return nil, err
		}
		list = append(list, mg)
	}
	return list, nil
}

func (l List) Find(fn func(ModeGroup) bool) (ModeGroup, bool) {
	for _, mg := range l {
		if fn(mg) {
			return mg, true
		}
	}
	return ModeGroup{}, false
}

func (l List) FindID(id int) (ModeGroup, bool) {
	return l.Find(func(mg ModeGroup) bool { return mg.MatchesID(id) })
}

func (l List) FindEqual(want ModeGroup) (ModeGroup, bool) {
	return l.Find(func(mg ModeGroup) bool { return mg.Equal(want) })
}

func (l List) FindSatisfying(want ModeGroup) (ModeGroup, bool) {
	return l.Find(func(mg ModeGroup) bool { return mg.Satisfies(want) })
}

func (l List) FindClone(r resolution.Resolution, displays []string) (ModeGroup, bool) {
	return l.Find(func(mg ModeGroup) bool { return mg.IsClone(r, displays) })
}

// Dangling returns the mode groups showing something outside displays.
func (l List) Dangling(displays []string) List {
	var dangling List
	for _, mg := range l {
		if mg.Dangling(displays) {
			dangling = append(dangling, mg)
		}
	}
	return dangling
}
