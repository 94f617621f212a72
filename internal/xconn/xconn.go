// Package xconn holds the X connection shared by every display operation of one invocation.
package xconn

import (
	"log/slog"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/randr"
	"github.com/jezek/xgb/xproto"
)

type Session struct {
	Conn   *xgb.Conn
	Screen int
	Root   xproto.Window
	Info   *xproto.ScreenInfo
	// RandR is false when the server lacks the RandR extension.
	RandR bool
}

// Open connects to display, or $DISPLAY when display is empty.
func Open(display string) (*Session, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	info := xproto.Setup(conn).DefaultScreen(conn)

	hasRandR := true
	if err := randr.Init(conn); err != nil {
		slog.Debug("RandR unavailable", "package", "xconn", "error", err)
		hasRandR = false
	}

	return &Session{
		Conn:   conn,
		Screen: conn.DefaultScreen,
		Root:   info.Root,
		Info:   info,
		RandR:  hasRandR,
	}, nil
}

func (s *Session) Close() {
	s.Conn.Close()
}

// InternAtom returns the atom for name, creating it if needed.
func (s *Session) InternAtom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(s.Conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Atom, nil
}
