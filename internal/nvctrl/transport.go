package nvctrl

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

// Transport carries encoded requests to the X server and returns the raw reply.
type Transport interface {
	// Major returns the extension's major opcode.
	Major() byte
	Order() binary.ByteOrder
	RoundTrip(req []byte) ([]byte, error)
}

const (
	xQueryExtension = 98

	xError = 0
	xReply = 1
)

// SocketTransport talks to the X server over an already established connection that it owns exclusively.
type SocketTransport struct {
	mu    sync.Mutex
	rw    io.ReadWriter
	order binary.ByteOrder
	seq   uint16
	major byte
}

// NewSocketTransport looks up the extension on rw. The connection setup must have used order.
func NewSocketTransport(rw io.ReadWriter, order binary.ByteOrder) (*SocketTransport, error) {
	t := &SocketTransport{rw: rw, order: order}

	reply, err := t.RoundTrip(t.queryExtension(ExtensionName))
	if err != nil {
		return nil, err
	}
	if reply[0] == xError {
		return nil, &ProtocolError{Op: "QueryExtension", Code: reply[1]}
	}
	if reply[8] == 0 {
		return nil, ErrNotPresent
	}
	t.major = reply[9]

	return t, nil
}

func (t *SocketTransport) queryExtension(name string) []byte {
	padded := (len(name) + 3) &^ 3
	buf := make([]byte, 8+padded)
	buf[0] = xQueryExtension
	t.order.PutUint16(buf[2:], uint16(2+padded/4))
	t.order.PutUint16(buf[4:], uint16(len(name)))
	copy(buf[8:], name)
	return buf
}

func (t *SocketTransport) Major() byte {
	return t.major
}

func (t *SocketTransport) Order() binary.ByteOrder {
	return t.order
}

// RoundTrip writes req and reads until the reply or error for it arrives. Events are dropped.
// Error packets are returned as replies.
func (t *SocketTransport) RoundTrip(req []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.rw.Write(req); err != nil {
		return nil, err
	}
	t.seq++

	for {
		buf := make([]byte, replyHeaderSize)
		if _, err := io.ReadFull(t.rw, buf); err != nil {
			return nil, err
		}

		switch buf[0] {
		case xError:
		case xReply:
			length := t.order.Uint32(buf[4:])
			if length > 0 {
				buf = append(buf, make([]byte, 4*int(length))...)
				if _, err := io.ReadFull(t.rw, buf[replyHeaderSize:]); err != nil {
					return nil, err
				}
			}
		default:
			continue
		}

		if seq := t.order.Uint16(buf[2:]); seq != t.seq {
			return nil, fmt.Errorf("got reply for sequence %d, want %d", seq, t.seq)
		}
		return buf, nil
	}
}
