package nvctrl

import (
	"encoding/binary"
	"fmt"
)

const replyHeaderSize = 32

// Codec encodes requests and decodes replies for one byte order.
type Codec struct {
	Order binary.ByteOrder
	// Major is the extension's major opcode.
	Major byte
}

func (c Codec) header(buf []byte, reqType byte, words uint16) {
	buf[0] = c.Major
	buf[1] = reqType
	c.Order.PutUint16(buf[2:], words)
}

func (c Codec) QueryExtension() []byte {
	buf := make([]byte, 4)
	c.header(buf, reqQueryExtension, 1)
	return buf
}

func (c Codec) QueryTargetCount(targetType TargetType) []byte {
	buf := make([]byte, 8)
	c.header(buf, reqQueryTargetCount, 2)
	c.Order.PutUint32(buf[4:], uint32(targetType))
	return buf
}

// Query encodes the requests that share the target/mask/attribute layout.
func (c Codec) Query(reqType byte, target Target, mask, attr uint32) []byte {
	buf := make([]byte, 16)
	c.header(buf, reqType, 4)
	c.Order.PutUint16(buf[4:], target.ID)
	c.Order.PutUint16(buf[6:], uint16(target.Type))
	c.Order.PutUint32(buf[8:], mask)
	c.Order.PutUint32(buf[12:], attr)
	return buf
}

func (c Codec) SetAttributeAndGetStatus(screen, mask, attr uint32, value int32) []byte {
	buf := make([]byte, 20)
	c.header(buf, reqSetAttributeAndGetStatus, 5)
	c.Order.PutUint32(buf[4:], screen)
	c.Order.PutUint32(buf[8:], mask)
	c.Order.PutUint32(buf[12:], attr)
	c.Order.PutUint32(buf[16:], uint32(value))
	return buf
}

func (c Codec) SetStringAttribute(screen, mask, attr uint32, data string) []byte {
	buf := c.stringRequest(reqSetStringAttribute, data, true)
	c.Order.PutUint32(buf[4:], screen)
	c.Order.PutUint32(buf[8:], mask)
	c.Order.PutUint32(buf[12:], attr)
	return buf
}

// StringOperation encodes a string operation. An empty data string sends no payload.
func (c Codec) StringOperation(target Target, mask, op uint32, data string) []byte {
	buf := c.stringRequest(reqStringOperation, data, data != "")
	c.Order.PutUint16(buf[4:], target.ID)
	c.Order.PutUint16(buf[6:], uint16(target.Type))
	c.Order.PutUint32(buf[8:], mask)
	c.Order.PutUint32(buf[12:], op)
	return buf
}

// stringRequest lays out a 20 byte request followed by a NUL terminated, padded string.
func (c Codec) stringRequest(reqType byte, data string, withData bool) []byte {
	dlen := 0
	if withData {
		dlen = len(data) + 1
	}
	padded := (dlen + 3) &^ 3

	buf := make([]byte, 20+padded)
	c.header(buf, reqType, uint16(5+padded>>2))
	c.Order.PutUint32(buf[16:], uint32(dlen))
	copy(buf[20:], data)
	return buf
}

// Reply is a decoded reply header with the raw reply.
type Reply struct {
	Sequence uint16
	Length   uint32
	buf      []byte
}

func (c Codec) reply(reqType byte, attr uint32, buf []byte) (Reply, error) {
	op := requestNames[reqType]
	if len(buf) < replyHeaderSize {
		return Reply{}, &ProtocolError{Op: op, Attribute: attributeName(reqType, attr), Detail: fmt.Sprintf("short reply of %d bytes", len(buf))}
	}
	if buf[0] == 0 {
		return Reply{}, &ProtocolError{Op: op, Attribute: attributeName(reqType, attr), Code: buf[1]}
	}
	return Reply{
		Sequence: c.Order.Uint16(buf[2:]),
		Length:   c.Order.Uint32(buf[4:]),
		buf:      buf,
	}, nil
}

func (c Codec) DecodeVersion(buf []byte) (major, minor uint16, err error) {
	r, err := c.reply(reqQueryExtension, 0, buf)
	if err != nil {
		return 0, 0, err
	}
	return c.Order.Uint16(r.buf[8:]), c.Order.Uint16(r.buf[10:]), nil
}

func (c Codec) DecodeAttribute(buf []byte, attr uint32) (flags uint32, value int32, err error) {
	r, err := c.reply(reqQueryAttribute, attr, buf)
	if err != nil {
		return 0, 0, err
	}
	return c.Order.Uint32(r.buf[8:]), int32(c.Order.Uint32(r.buf[12:])), nil
}

// DecodeStatus decodes replies that only carry flags. Non-zero flags mean success.
func (c Codec) DecodeStatus(buf []byte, reqType byte, attr uint32) (uint32, error) {
	r, err := c.reply(reqType, attr, buf)
	if err != nil {
		return 0, err
	}
	return c.Order.Uint32(r.buf[8:]), nil
}

// DecodeData decodes replies carrying a byte count and that many bytes after the header.
func (c Codec) DecodeData(buf []byte, reqType byte, attr uint32) (flags uint32, data []byte, err error) {
	r, err := c.reply(reqType, attr, buf)
	if err != nil {
		return 0, nil, err
	}
	flags = c.Order.Uint32(r.buf[8:])
	n := c.Order.Uint32(r.buf[12:])
	if replyHeaderSize+int(n) > len(r.buf) {
		return 0, nil, &ProtocolError{
			Op:        requestNames[reqType],
			Attribute: attributeName(reqType, attr),
			Detail:    fmt.Sprintf("reply announces %d bytes but carries %d", n, len(r.buf)-replyHeaderSize),
		}
	}
	return flags, r.buf[replyHeaderSize : replyHeaderSize+int(n)], nil
}

type ValidValues struct {
	Flags       uint32
	Type        int32
	Min         int32
	Max         int32
	Bits        uint32
	Permissions uint32
}

func (v ValidValues) Writable() bool {
	return v.Permissions&PermWrite != 0
}

func (c Codec) DecodeValidValues(buf []byte, attr uint32) (ValidValues, error) {
	r, err := c.reply(reqQueryValidAttributeValues, attr, buf)
	if err != nil {
		return ValidValues{}, err
	}
	return ValidValues{
		Flags:       c.Order.Uint32(r.buf[8:]),
		Type:        int32(c.Order.Uint32(r.buf[12:])),
		Min:         int32(c.Order.Uint32(r.buf[16:])),
		Max:         int32(c.Order.Uint32(r.buf[20:])),
		Bits:        c.Order.Uint32(r.buf[24:]),
		Permissions: c.Order.Uint32(r.buf[28:]),
	}, nil
}

func (c Codec) DecodeCount(buf []byte) (uint32, error) {
	r, err := c.reply(reqQueryTargetCount, 0, buf)
	if err != nil {
		return 0, err
	}
	return c.Order.Uint32(r.buf[8:]), nil
}
