//go:build linux

package device

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

const (
	iocGBUTTONS uint = 0x80016a12
	iocGNAME    uint = 0x80ff6a13

	evINIT uint8 = 0x80
	evBTN  uint8 = 0x01
	evAXIS uint8 = 0x02

	eventSize = 8
)

type device struct {
	file        *os.File
	index       int
	name        string
	buttonCount uint8
}

// js_event from linux/joystick.h
type rawEvent struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

func (e *rawEvent) IsInit() bool { return e.Type&evINIT != 0 }
func (e *rawEvent) Index() int   { return int(e.Number) }

type buttonEvent struct {
	rawEvent
}

func (e *buttonEvent) Pressed() bool { return e.Value != 0 }

// Open opens /dev/input/js<index>.
func Open(index int) (Device, error) {
	f, err := os.OpenFile(fmt.Sprintf("/dev/input/js%d", index), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	d := &device{file: f, index: index}
	var name [256]byte
	errno := d.ioctl(iocGBUTTONS, unsafe.Pointer(&d.buttonCount))
	if errno == 0 {
		errno = d.ioctl(iocGNAME, unsafe.Pointer(&name))
	}
	if errno != 0 {
		f.Close()
		return nil, errno
	}
	if pos := bytes.IndexByte(name[:], 0); pos >= 0 {
		d.name = string(name[:pos])
	} else {
		d.name = string(name[:])
	}
	return d, nil
}

// Detect opens the first available device, or returns nil if none.
func Detect() (Device, error) {
	for index := 0; index < 32; index++ {
		d, err := Open(index)
		if os.IsNotExist(err) {
			continue
		}
		return d, err
	}
	return nil, nil
}

func (d *device) Close() error     { return d.file.Close() }
func (d *device) Index() int       { return d.index }
func (d *device) Name() string     { return d.name }
func (d *device) ButtonCount() int { return int(d.buttonCount) }

func (d *device) ReadEvent() (Event, error) {
	buf := make([]byte, eventSize)
	if _, err := d.file.Read(buf); err != nil {
		return nil, err
	}
	var ev rawEvent
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &ev); err != nil {
		return nil, err
	}
	if ev.Type&(evBTN|evAXIS) == evBTN {
		return &buttonEvent{rawEvent: ev}, nil
	}
	return &ev, nil
}

func (d *device) ioctl(cmd uint, ptr unsafe.Pointer) syscall.Errno {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, d.file.Fd(), uintptr(cmd), uintptr(ptr))
	return errno
}
