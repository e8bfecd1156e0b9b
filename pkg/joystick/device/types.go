package device

import (
	"errors"
	"io"
)

// ErrUnsupported is returned by Open on systems without joystick support.
var ErrUnsupported = errors.New("joystick: unsupported on this system")

// Event is a change reported by the device.
type Event interface {
	// IsInit marks the synthetic events reporting the initial state.
	IsInit() bool
	// Index is the axis or button number.
	Index() int
}

// ButtonEvent is a button press or release.
type ButtonEvent interface {
	Event
	Pressed() bool
}

// Device is an opened joystick.
type Device interface {
	io.Closer
	Index() int
	Name() string
	ButtonCount() int
	// ReadEvent blocks until the next event.
	ReadEvent() (Event, error)
}
