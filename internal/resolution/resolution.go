// Package resolution holds display sizes and the policies used to pick one per display.
package resolution

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ItsNotGoodName/x-disper/internal/core"
)

// Resolution is a display size. Weight ranks resolutions of equal interest, higher is better.
// Weight never takes part in equality.
type Resolution struct {
	Width  uint
	Height uint
	Weight int
}

// Off marks a display that should be left out of a layout.
var Off = Resolution{}

func New(width, height uint) Resolution {
	return Resolution{Width: width, Height: height}
}

// Parse parses "WxH", ignoring whitespace around the numbers.
func Parse(s string) (Resolution, error) {
	w, h, ok := strings.Cut(strings.TrimSpace(s), "x")
	if !ok {
		return Resolution{}, core.NewInputError("invalid resolution %q", s)
	}
	width, err := strconv.ParseUint(strings.TrimSpace(w), 10, 32)
	if err != nil {
		return Resolution{}, core.NewInputError("invalid resolution width %q", s)
	}
	height, err := strconv.ParseUint(strings.TrimSpace(h), 10, 32)
	if err != nil {
		return Resolution{}, core.NewInputError("invalid resolution height %q", s)
	}
	if width == 0 || height == 0 {
		return Resolution{}, core.NewInputError("invalid resolution %q", s)
	}
	return New(uint(width), uint(height)), nil
}

// ParseModeline extracts the size from a modeline such as
// `source=edid :: "1920x1080_60" 148.500 1920 2008 ...`.
func ParseModeline(line string) (Resolution, bool) {
	_, rest, ok := strings.Cut(line, "::")
	if !ok {
		return Resolution{}, false
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, `"`) {
		return Resolution{}, false
	}
	rest = rest[1:]

	width, rest, ok := leadingNumber(rest)
	if !ok || !strings.HasPrefix(rest, "x") {
		return Resolution{}, false
	}
	height, _, ok := leadingNumber(rest[1:])
	if !ok {
		return Resolution{}, false
	}
	return New(width, height), true
}

func leadingNumber(s string) (uint, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, false
	}
	n, err := strconv.ParseUint(s[:i], 10, 32)
	if err != nil {
		return 0, s, false
	}
	return uint(n), s[i:], true
}

func (r Resolution) String() string {
	if r.IsOff() {
		return "off"
	}
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

func (r Resolution) IsOff() bool {
	return r.Width == 0 && r.Height == 0
}

func (r Resolution) Equal(o Resolution) bool {
	return r.Width == o.Width && r.Height == o.Height
}

func (r Resolution) Area() uint {
	return r.Width * r.Height
}

// Less orders by weight, then by area.
func (r Resolution) Less(o Resolution) bool {
	if r.Weight != o.Weight {
		return r.Weight < o.Weight
	}
	return r.Area() < o.Area()
}

// Fallback is used for displays that report no usable modes.
func Fallback() List {
	return List{New(800, 600), New(640, 480)}
}

// List is an ordered list of resolutions.
type List []Resolution

// ParseList parses a comma separated list of resolutions.
func ParseList(s string) (List, error) {
	var list List
	for _, item := range core.SplitList(s) {
		r, err := Parse(item)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, nil
}

// ParseModelines collects the distinct sizes of modelines, in order of appearance.
func ParseModelines(lines []string) List {
	var list List
	for _, line := range lines {
		r, ok := ParseModeline(line)
		if !ok || list.Contains(r) {
			continue
		}
		list = append(list, r)
	}
	return list
}

func (l List) Index(r Resolution) int {
	for i := range l {
		if l[i].Equal(r) {
			return i
		}
	}
	return -1
}

func (l List) Contains(r Resolution) bool {
	return l.Index(r) != -1
}

// Sorted returns a copy ordered from lowest to highest.
func (l List) Sorted() List {
	sorted := append(List{}, l...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	return sorted
}

// Max returns the highest sorted resolution.
func (l List) Max() (Resolution, bool) {
	if len(l) == 0 {
		return Resolution{}, false
	}
	sorted := l.Sorted()
	return sorted[len(sorted)-1], true
}

// Weighted returns a copy with the weight of r set to weight.
func (l List) Weighted(r Resolution, weight int) List {
	weighted := append(List{}, l...)
	for i := range weighted {
		if weighted[i].Equal(r) {
			weighted[i].Weight = weight
		}
	}
	return weighted
}

// Unweighted returns a copy with every weight zeroed.
func (l List) Unweighted() List {
	unweighted := append(List{}, l...)
	for i := range unweighted {
		unweighted[i].Weight = 0
	}
	return unweighted
}

func (l List) String() string {
	items := make([]string, 0, len(l))
	for _, r := range l {
		items = append(items, r.String())
	}
	return strings.Join(items, ", ")
}
