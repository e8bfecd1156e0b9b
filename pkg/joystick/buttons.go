// Package joystick turns joystick buttons into application button
// presses.
package joystick

import (
	"context"
	"flag"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/microctl/pkg/joystick/device"
)

// Config defines the joystick options.
type Config struct {
	Enabled bool
	// DeviceIndex selects /dev/input/js<index>, -1 for auto detection.
	DeviceIndex int
}

var defaultConfig = Config{
	DeviceIndex: -1,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&defaultConfig.Enabled, "joystick", defaultConfig.Enabled, "Use joystick buttons as button A/B.")
	flag.IntVar(&defaultConfig.DeviceIndex, "joystick-device", defaultConfig.DeviceIndex, "Joystick device index, -1 for auto detection.")
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// DefaultButtons maps the first two joystick buttons.
var DefaultButtons = []string{"a", "b"}

// RetryInterval is the pause between attempts to open a device.
const RetryInterval = time.Second

// Buttons reports presses of mapped joystick buttons.
type Buttons struct {
	DeviceIndex int
	// Names maps button indices to button names.
	Names []string
	// Press receives the name of each pressed button.
	Press func(name string)

	open func() (device.Device, error)
}

// NewButtons creates Buttons from the config.
func (c *Config) NewButtons(press func(string)) *Buttons {
	return &Buttons{DeviceIndex: c.DeviceIndex, Names: DefaultButtons, Press: press}
}

// Name implements framework.Named.
func (b *Buttons) Name() string {
	return "joystick"
}

func (b *Buttons) openDevice() (device.Device, error) {
	if b.open != nil {
		return b.open()
	}
	if b.DeviceIndex >= 0 {
		return device.Open(b.DeviceIndex)
	}
	return device.Detect()
}

// Run implements framework.Runnable. The device is reopened whenever it
// goes away.
func (b *Buttons) Run(ctx context.Context) error {
	for {
		js, err := b.openDevice()
		switch {
		case err == device.ErrUnsupported:
			return err
		case err != nil:
			glog.Warningf("joystick: open: %v", err)
		case js != nil:
			glog.Infof("joystick: %d %q opened", js.Index(), js.Name())
			b.serve(ctx, js)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(RetryInterval):
		}
	}
}

func (b *Buttons) serve(ctx context.Context, js device.Device) {
	eventCh := make(chan device.Event)
	go func() {
		defer close(eventCh)
		for {
			ev, err := js.ReadEvent()
			if err != nil {
				glog.Warningf("joystick: read: %v", err)
				return
			}
			select {
			case eventCh <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	defer js.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-eventCh:
			if !ok {
				return
			}
			b.handle(ev)
		}
	}
}

func (b *Buttons) handle(ev device.Event) {
	btn, ok := ev.(device.ButtonEvent)
	if !ok || btn.IsInit() || !btn.Pressed() {
		return
	}
	if index := btn.Index(); index < len(b.Names) && b.Press != nil {
		b.Press(b.Names[index])
	}
}
