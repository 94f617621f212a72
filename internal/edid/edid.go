// Package edid reads the monitor identity out of an EDID block.
package edid

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

var header = []byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}

// Identity is the PNP manufacturer id, model and serial of a monitor.
// TODO: decode with gitlab.com/lehn/edid once the module proxy serves it.
type Identity struct {
	PNPID  [3]byte
	Model  uint16
	Serial uint32
}

func (i Identity) String() string {
	return fmt.Sprintf("%s-%d-%d", string(i.PNPID[:]), i.Model, i.Serial)
}

// Parse reads the vendor block of a base EDID.
func Parse(data []byte) (Identity, error) {
	if len(data) < 128 {
		return Identity{}, fmt.Errorf("edid too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:8], header) {
		return Identity{}, fmt.Errorf("invalid edid header")
	}

	// Three letters of five bits each, 1 is 'A'.
	id := binary.BigEndian.Uint16(data[8:])
	return Identity{
		PNPID: [3]byte{
			byte(id>>10&0x1f) + 'A' - 1,
			byte(id>>5&0x1f) + 'A' - 1,
			byte(id&0x1f) + 'A' - 1,
		},
		Model:  binary.LittleEndian.Uint16(data[10:]),
		Serial: binary.LittleEndian.Uint32(data[12:]),
	}, nil
}

// PreferredSize returns the active size of the first detailed timing descriptor, which
// EDID 1.3 and later define as the preferred mode.
func PreferredSize(data []byte) (width, height uint, ok bool) {
	if len(data) < 128 || !bytes.Equal(data[:8], header) {
		return 0, 0, false
	}
	d := data[54:72]
	// A zero pixel clock marks a display descriptor instead of a timing.
	if d[0] == 0 && d[1] == 0 {
		return 0, 0, false
	}
	width = uint(d[2]) | uint(d[4]&0xf0)<<4
	height = uint(d[5]) | uint(d[7]&0xf0)<<4
	return width, height, width > 0 && height > 0
}
