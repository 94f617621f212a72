package nvctrl

import (
	"encoding/binary"
	"errors"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// XGBTransport sends requests through an xgb connection, which is always little endian.
type XGBTransport struct {
	conn  *xgb.Conn
	major byte
}

func NewXGBTransport(conn *xgb.Conn) (*XGBTransport, error) {
	reply, err := xproto.QueryExtension(conn, uint16(len(ExtensionName)), ExtensionName).Reply()
	if err != nil {
		return nil, err
	}
	if !reply.Present {
		return nil, ErrNotPresent
	}

	return &XGBTransport{
		conn:  conn,
		major: reply.MajorOpcode,
	}, nil
}

func (t *XGBTransport) Major() byte {
	return t.major
}

func (t *XGBTransport) Order() binary.ByteOrder {
	return binary.LittleEndian
}

func (t *XGBTransport) RoundTrip(req []byte) ([]byte, error) {
	cookie := t.conn.NewCookie(true, true)
	t.conn.NewRequest(req, cookie)

	reply, err := cookie.Reply()
	if err != nil {
		var xerr xgb.Error
		if errors.As(err, &xerr) {
			return nil, &ProtocolError{Op: requestNames[req[1]], Detail: xerr.Error()}
		}
		return nil, err
	}
	return reply, nil
}
