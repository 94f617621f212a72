package resolution

// Chooser picks one resolution out of a display's list.
type Chooser func(display string, list List) (Resolution, bool)

// Highest chooses the highest sorted resolution.
func Highest(display string, list List) (Resolution, bool) {
	return list.Max()
}

// Collection maps displays to their supported resolutions, remembering display order.
type Collection struct {
	displays []string
	lists    map[string]List
}

func NewCollection() *Collection {
	return &Collection{lists: make(map[string]List)}
}

func (c *Collection) Set(display string, list List) {
	if _, ok := c.lists[display]; !ok {
		c.displays = append(c.displays, display)
	}
	c.lists[display] = list
}

func (c *Collection) Get(display string) List {
	return c.lists[display]
}

func (c *Collection) Displays() []string {
	return append([]string{}, c.displays...)
}

// Common returns the resolutions every display supports, with weights summed over all displays.
func (c *Collection) Common() List {
	if len(c.displays) == 0 {
		return nil
	}

	var common List
	for _, r := range c.lists[c.displays[0]] {
		weight := 0
		shared := true
		for _, display := range c.displays {
			list := c.lists[display]
			i := list.Index(r)
			if i == -1 {
				shared = false
				break
			}
			weight += list[i].Weight
		}
		if shared && !common.Contains(r) {
			r.Weight = weight
			common = append(common, r)
		}
	}

	return common
}

// Select chooses one resolution per display, skipping displays the chooser declines.
func (c *Collection) Select(choose Chooser) Selection {
	if choose == nil {
		choose = Highest
	}

	sel := make(Selection, len(c.displays))
	for _, display := range c.displays {
		if r, ok := choose(display, c.lists[display]); ok {
			sel[display] = r
		}
	}
	return sel
}

// Unweighted returns a copy with every weight zeroed, so that choosing prefers area alone.
func (c *Collection) Unweighted() *Collection {
	unweighted := NewCollection()
	for _, display := range c.displays {
		unweighted.Set(display, c.lists[display].Unweighted())
	}
	return unweighted
}
