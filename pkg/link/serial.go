// Package link opens the byte links a wifi.Driver talks over.
package link

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"
)

// PollTimeout is how long a Read waits for data before returning (0, nil).
const PollTimeout = 10 * time.Millisecond

// Serial is a local UART.
type Serial struct {
	serial.Port
	name string
}

func serialMode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial opens a UART at baud.
func OpenSerial(name string, baud int) (*Serial, error) {
	port, err := serial.Open(name, serialMode(baud))
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %v", name, err)
	}
	if err := port.SetReadTimeout(PollTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("serial port %s: %v", name, err)
	}
	glog.Infof("link: opened %s at %d baud", name, baud)
	return &Serial{Port: port, name: name}, nil
}

// SetBaudRate implements wifi.BaudRateSetter.
func (s *Serial) SetBaudRate(baud int) error {
	glog.Infof("link: %s switched to %d baud", s.name, baud)
	return s.Port.SetMode(serialMode(baud))
}

// Ports lists the serial ports found on the host.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
