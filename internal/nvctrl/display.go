package nvctrl

import (
	"fmt"
	"strconv"
	"strings"
)

// Display mask bits: CRT-0..7 are bits 0..7, TV-0..7 bits 8..15 and DFP-0..7 bits 16..23.
var displayClasses = []struct {
	prefix string
	shift  uint
}{
	{"CRT", 0},
	{"TV", 8},
	{"DFP", 16},
}

// MaskNames returns the names of the displays set in mask, in bit order.
func MaskNames(mask uint32) []string {
	var names []string
	for _, class := range displayClasses {
		for i := uint(0); i < 8; i++ {
			if mask&(1<<(class.shift+i)) != 0 {
				names = append(names, fmt.Sprintf("%s-%d", class.prefix, i))
			}
		}
	}
	return names
}

func DisplayMask(name string) (uint32, error) {
	prefix, num, ok := strings.Cut(strings.TrimSpace(name), "-")
	if ok {
		i, err := strconv.Atoi(num)
		if err == nil && i >= 0 && i < 8 {
			for _, class := range displayClasses {
				if strings.EqualFold(class.prefix, prefix) {
					return 1 << (class.shift + uint(i)), nil
				}
			}
		}
	}
	return 0, fmt.Errorf("invalid display name %q", name)
}

func DisplaysMask(names []string) (uint32, error) {
	var mask uint32
	for _, name := range names {
		m, err := DisplayMask(name)
		if err != nil {
			return 0, err
		}
		mask |= m
	}
	return mask, nil
}
