package core

import (
	"errors"
	"fmt"
)

var (
	ErrNoCommonResolution  = errors.New("no common resolution")
	ErrDisplayNotConnected = errors.New("display not connected")
	ErrUnsupported         = errors.New("not supported by backend")
	ErrNoBackend           = errors.New("no usable backend")
)

// InputError is a problem with what the user asked for, reported before anything is changed.
type InputError struct {
	Msg string
}

func (e InputError) Error() string {
	return e.Msg
}

func NewInputError(format string, a ...any) error {
	return InputError{Msg: fmt.Sprintf(format, a...)}
}

func IsInputError(err error) bool {
	var inputErr InputError
	return errors.As(err, &inputErr)
}

// PresentationError means the display server could not present a configuration the driver accepted.
type PresentationError struct {
	Width  uint
	Height uint
	Msg    string
}

func (e PresentationError) Error() string {
	return fmt.Sprintf("cannot present %dx%d: %s", e.Width, e.Height, e.Msg)
}
