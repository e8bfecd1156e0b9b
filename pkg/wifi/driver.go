package wifi

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/microctl/pkg/codec"
)

// Port is the serial link to the module. Read must return promptly,
// with (0, nil) when no data is available.
type Port interface {
	io.Reader
	io.Writer
}

// BaudRateSetter is implemented by ports able to change the line rate.
type BaudRateSetter interface {
	SetBaudRate(baud int) error
}

// ErrLinkClosed is returned by Run when the port reports end of stream.
var ErrLinkClosed = errors.New("wifi: link closed")

// Default tunables.
const (
	DefaultFrameTimeout  = 100 * time.Millisecond
	DefaultPollInterval  = 20 * time.Millisecond
	DefaultCycleInterval = 5 * time.Millisecond
	DefaultResetDrain    = 100 * time.Millisecond
)

// Driver is the AT-command transport.
type Driver struct {
	Port Port
	// BaudRate is requested from the module by Config.
	BaudRate int
	// FrameTimeout bounds the reception of a whole inbound frame.
	FrameTimeout time.Duration
	// PollInterval is the longest sleep between reads while waiting.
	PollInterval time.Duration
	// CycleInterval is the pause between cycles of Run.
	CycleInterval time.Duration
	// SendTimeout bounds each step of a message transmission.
	SendTimeout time.Duration
	// ResetDrain is how long input is discarded after a Reset.
	ResetDrain time.Duration

	lock      sync.Mutex
	cmds      []Command
	txs       []string
	resetReq  bool
	onConnect func()
	onError   func(*Error)
	onFrame   func([]byte)
	onMessage func([]string)

	// owned by the task goroutine
	rx       []byte
	readBuf  []byte
	lines    codec.Assembler
	rxErr    *Error
	degraded bool
	linkErr  error
}

// New creates a Driver on port.
func New(port Port) *Driver {
	return &Driver{
		Port:          port,
		BaudRate:      DefaultBaudRate,
		FrameTimeout:  DefaultFrameTimeout,
		PollInterval:  DefaultPollInterval,
		CycleInterval: DefaultCycleInterval,
		SendTimeout:   SendTimeout,
		ResetDrain:    DefaultResetDrain,
	}
}

// Name implements framework.Named.
func (d *Driver) Name() string {
	return "wifi"
}

// OnConnect sets the handler run when the TCP session is established.
func (d *Driver) OnConnect(fn func()) {
	d.lock.Lock()
	d.onConnect = fn
	d.lock.Unlock()
}

// OnError sets the handler receiving one categorized error per failed cycle.
func (d *Driver) OnError(fn func(*Error)) {
	d.lock.Lock()
	d.onError = fn
	d.lock.Unlock()
}

// OnFrame sets the handler receiving the raw payload of each inbound frame.
func (d *Driver) OnFrame(fn func([]byte)) {
	d.lock.Lock()
	d.onFrame = fn
	d.lock.Unlock()
}

// OnMessage sets the handler receiving each decoded inbound message.
func (d *Driver) OnMessage(fn func([]string)) {
	d.lock.Lock()
	d.onMessage = fn
	d.lock.Unlock()
}

// Enqueue appends commands to the setup queue.
func (d *Driver) Enqueue(cmds ...Command) {
	d.lock.Lock()
	d.cmds = append(d.cmds, cmds...)
	d.lock.Unlock()
}

// Config enqueues the module setup sequence.
func (d *Driver) Config() {
	baud := d.BaudRate
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	d.Enqueue(SetupCommands(baud, func() error {
		if setter, ok := d.Port.(BaudRateSetter); ok {
			glog.Infof("wifi: switching link to %d baud", baud)
			return setter.SetBaudRate(baud)
		}
		return nil
	})...)
}

// Join enqueues joining an access point.
func (d *Driver) Join(ssid, password string) {
	d.Enqueue(JoinCommand(ssid, password))
}

// Connect enqueues opening the TCP session; the connect handler runs
// once the module confirms it.
func (d *Driver) Connect(host string, port int) {
	d.Enqueue(ConnectCommand(host, port, func() error {
		if fn := d.connectHandler(); fn != nil {
			fn()
		}
		return nil
	}))
}

// Send enqueues an outbound message.
func (d *Driver) Send(tokens ...string) {
	line := codec.Encode(tokens...)
	d.lock.Lock()
	d.txs = append(d.txs, line)
	d.lock.Unlock()
}

// Reset discards queued commands and messages. Before the next command or
// transmission, including ones enqueued right after Reset, the task pings
// the module and flushes pending input, which also clears a previous
// receive error.
func (d *Driver) Reset() {
	d.lock.Lock()
	d.cmds, d.txs, d.resetReq = nil, nil, true
	d.lock.Unlock()
}

// Pending returns the number of queued commands and messages.
func (d *Driver) Pending() (cmds, msgs int) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return len(d.cmds), len(d.txs)
}

// Run implements framework.Runnable. It cycles until ctx is done or the
// port fails.
func (d *Driver) Run(ctx context.Context) error {
	glog.Infof("wifi: transport started")
	defer glog.Infof("wifi: transport stopped")
	interval := d.CycleInterval
	if interval <= 0 {
		interval = DefaultCycleInterval
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		d.Cycle()
		if d.linkErr != nil {
			return d.linkErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Cycle runs one iteration of the task: commands, transmission, then
// polling. On failure the error handler is invoked once and the error is
// returned. Cycle must only be called from a single goroutine.
func (d *Driver) Cycle() *Error {
	d.rxErr = nil
	failure := d.runCommands()
	if failure == nil {
		failure = d.transmit()
	}
	if failure == nil {
		failure = d.poll()
	}
	if failure == nil {
		return nil
	}
	if d.rxErr != nil {
		failure = d.rxErr
	}
	glog.Warningf("%v", failure)
	if fn := d.errorHandler(); fn != nil {
		fn(failure)
	}
	return failure
}

func (d *Driver) applyReset() {
	d.lock.Lock()
	req := d.resetReq
	d.resetReq = false
	d.lock.Unlock()
	if !req {
		return
	}
	glog.V(1).Info("wifi: reset")
	d.rx, d.degraded = nil, false
	d.lines.Reset()
	d.writeLine("AT")
	drain := d.ResetDrain
	for start := time.Now(); time.Since(start) < drain && d.linkErr == nil; {
		d.fill()
		time.Sleep(d.pollInterval(drain))
	}
	d.rx = nil
}

func (d *Driver) nextCommand() (cmd Command, ok bool) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if len(d.cmds) == 0 {
		return
	}
	cmd, d.cmds = d.cmds[0], d.cmds[1:]
	return cmd, true
}

func (d *Driver) runCommands() *Error {
	for {
		// a Reset requested while a command ran must precede the
		// commands enqueued after it
		d.applyReset()
		cmd, ok := d.nextCommand()
		if !ok {
			return nil
		}
		if err := d.execute(cmd); err != nil {
			// the whole queue goes, including commands enqueued meanwhile;
			// the owner re-enqueues its sequence when handling the error
			d.lock.Lock()
			d.cmds = nil
			d.lock.Unlock()
			kind := CommandError
			if cmd.Handshake {
				kind = InitError
			}
			return &Error{Kind: kind, Command: cmd.Line, Err: err}
		}
	}
}

func (d *Driver) execute(cmd Command) error {
	if err := d.writeLine(cmd.Line); err != nil {
		return err
	}
	if err := d.waitResponse(cmd.Timeout); err != nil {
		return err
	}
	if cmd.OnSuccess != nil {
		return cmd.OnSuccess()
	}
	return nil
}

func (d *Driver) nextTransmit() (line string, ok bool) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if len(d.txs) == 0 {
		return
	}
	line, d.txs = d.txs[0], d.txs[1:]
	return line, true
}

func (d *Driver) transmit() *Error {
	if d.degraded {
		d.lock.Lock()
		dropped := len(d.txs)
		d.txs = nil
		d.lock.Unlock()
		if dropped > 0 {
			return &Error{Kind: ReceiveError, Err: ErrDegraded}
		}
		return nil
	}
	for {
		d.applyReset()
		line, ok := d.nextTransmit()
		if !ok {
			return nil
		}
		if err := d.transmitLine(line); err != nil {
			return &Error{Kind: TransmitError, Command: sendCommand(len(line)), Err: err}
		}
	}
}

func (d *Driver) transmitLine(line string) error {
	if err := d.writeLine(sendCommand(len(line))); err != nil {
		return err
	}
	if err := d.waitResponse(d.SendTimeout); err != nil {
		return err
	}
	if _, ok := d.readUntil(sendPrompt, d.SendTimeout); !ok {
		if d.linkErr != nil {
			return d.linkErr
		}
		return ErrNoPrompt
	}
	glog.V(2).Infof("TX %q", line)
	if err := d.write([]byte(line)); err != nil {
		return err
	}
	return d.waitResponse(d.SendTimeout)
}

// poll discards unsolicited lines while processing inbound frames.
func (d *Driver) poll() *Error {
	for {
		line, ok := d.readUntil(lineEnd, 0)
		if !ok {
			break
		}
		if line != "" {
			glog.V(3).Infof("wifi: discard %q", line)
		}
	}
	return d.rxErr
}

func (d *Driver) write(p []byte) error {
	if d.linkErr != nil {
		return d.linkErr
	}
	if _, err := d.Port.Write(p); err != nil {
		d.linkErr = err
		return err
	}
	return nil
}

func (d *Driver) writeLine(line string) error {
	glog.V(2).Infof("TX %q", line)
	return d.write([]byte(line + lineEnd))
}

func (d *Driver) connectHandler() func() {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.onConnect
}

func (d *Driver) errorHandler() func(*Error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.onError
}

func (d *Driver) dataHandlers() (func([]byte), func([]string)) {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.onFrame, d.onMessage
}

func (d *Driver) pollInterval(wait time.Duration) time.Duration {
	interval := d.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if wait < interval {
		interval = wait
	}
	if interval <= 0 {
		interval = time.Millisecond
	}
	return interval
}
