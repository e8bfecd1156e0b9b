package joystick

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/microctl/pkg/joystick/device"
)

type testButton struct {
	index   int
	init    bool
	pressed bool
}

func (e *testButton) IsInit() bool  { return e.init }
func (e *testButton) Index() int    { return e.index }
func (e *testButton) Pressed() bool { return e.pressed }

type testAxis struct{}

func (testAxis) IsInit() bool { return false }
func (testAxis) Index() int   { return 0 }

type testDevice struct {
	events []device.Event
	closed bool
}

func (d *testDevice) Close() error     { d.closed = true; return nil }
func (d *testDevice) Index() int       { return 0 }
func (d *testDevice) Name() string     { return "test" }
func (d *testDevice) ButtonCount() int { return 4 }
func (d *testDevice) ReadEvent() (device.Event, error) {
	if len(d.events) == 0 {
		return nil, io.EOF
	}
	ev := d.events[0]
	d.events = d.events[1:]
	return ev, nil
}

func TestButtonsPress(t *testing.T) {
	dev := &testDevice{events: []device.Event{
		&testButton{index: 0, init: true, pressed: true},
		&testButton{index: 0, pressed: true},
		&testButton{index: 0, pressed: false},
		testAxis{},
		&testButton{index: 1, pressed: true},
		&testButton{index: 3, pressed: true},
	}}
	var lock sync.Mutex
	var pressed []string
	doneCh := make(chan struct{})
	b := NewConfig().NewButtons(func(name string) {
		lock.Lock()
		defer lock.Unlock()
		pressed = append(pressed, name)
		if len(pressed) == 2 {
			close(doneCh)
		}
	})
	opened := false
	b.open = func() (device.Device, error) {
		if opened {
			return nil, nil
		}
		opened = true
		return dev, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- b.Run(ctx) }()
	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("no presses")
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	require.Equal(t, []string{"a", "b"}, pressed)
	require.True(t, dev.closed)
}

func TestButtonsUnsupported(t *testing.T) {
	b := NewConfig().NewButtons(nil)
	b.open = func() (device.Device, error) { return nil, device.ErrUnsupported }
	require.Equal(t, device.ErrUnsupported, b.Run(context.Background()))
}
