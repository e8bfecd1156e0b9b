package ticker

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/microctl/pkg/event"
	"github.com/robotalks/microctl/pkg/sink"
	"github.com/robotalks/microctl/pkg/state"
	"github.com/robotalks/microctl/pkg/timer"
	"github.com/robotalks/microctl/pkg/wifi"
)

type fakeTransport struct {
	calls []string
	sent  [][]string
}

func (t *fakeTransport) Reset()  { t.calls = append(t.calls, "reset") }
func (t *fakeTransport) Config() { t.calls = append(t.calls, "config") }
func (t *fakeTransport) Join(ssid, password string) {
	t.calls = append(t.calls, "join "+ssid+" "+password)
}
func (t *fakeTransport) Connect(host string, port int) {
	t.calls = append(t.calls, "connect "+host)
}
func (t *fakeTransport) Send(tokens ...string) {
	t.sent = append(t.sent, tokens)
}

type fakeDisplay struct {
	printed []string
}

func (d *fakeDisplay) FillRect(x, y, w, h int, color sink.Color) error { return nil }
func (d *fakeDisplay) Print(x, y int, text string, fg, bg sink.Color, scale int) error {
	d.printed = append(d.printed, text)
	return nil
}

type appTestEnv struct {
	events    *event.Kernel
	timers    *timer.Service
	transport *fakeTransport
	display   *fakeDisplay
	strip     sink.Pixels
	app       *App
}

func newAppTestEnv() *appTestEnv {
	env := &appTestEnv{
		events:    event.New(),
		transport: &fakeTransport{},
		display:   &fakeDisplay{},
		strip:     make(sink.Pixels, 12),
	}
	env.timers = timer.New(env.events)
	env.app = New(Config{
		SSID: "home", Password: "secret",
		Host: "10.0.0.1", Port: 60004,
		User: "user", Secret: "pwd", Device: "dev1",
	}, env.transport, env.display, env.strip)
	env.app.Attach(env.events, env.timers, state.New(env.events))
	env.app.Start()
	return env
}

func (e *appTestEnv) message(tokens ...string) {
	e.events.Send(MessageEvent{Tokens: tokens})
}

func (e *appTestEnv) fail(kind wifi.ErrorKind) {
	e.events.Send(ErrorEvent{Err: &wifi.Error{Kind: kind, Err: wifi.ErrNoResponse}})
}

func (e *appTestEnv) advance(d time.Duration) {
	for n := time.Duration(0); n < d; n += e.timers.Quantum {
		e.timers.Tick()
	}
}

func (e *appTestEnv) online() {
	e.events.Send(event.Signal(EvWifiConnect))
	e.message(SrvAuthCfmMsg)
	e.transport.sent = nil
	e.transport.calls = nil
}

func tickerRequest(text, flag string) []string {
	return []string{DispTickerReqMsg, "server", "dev1", "42", text, "x", "y", flag}
}

func TestStartConnects(t *testing.T) {
	env := newAppTestEnv()
	require.Equal(t, "connecting", env.app.LinkState())
	require.Equal(t, []string{"reset", "config", "join home secret", "connect 10.0.0.1"}, env.transport.calls)
	require.Equal(t, uint32(0xFF0000), env.strip[0])
	require.Equal(t, uint32(0xFFFF00), env.strip[1])
}

func TestAuthenticateAndPing(t *testing.T) {
	env := newAppTestEnv()
	env.events.Send(event.Signal(EvWifiConnect))
	require.Equal(t, "authenticating", env.app.LinkState())
	require.Equal(t, [][]string{{SrvAuthReqMsg, "srv", "UNDEF", "1", "user", "pwd", "dev1"}}, env.transport.sent)

	env.message(SrvAuthCfmMsg)
	require.Equal(t, "online", env.app.LinkState())
	require.True(t, env.timers.Active(EvPingTimer))

	env.advance(PingInterval)
	require.Len(t, env.transport.sent, 2)
	require.Equal(t, []string{SrvPingReqMsg, "Srv", "dev1", "2"}, env.transport.sent[1])
	require.False(t, env.timers.Active(EvPingTimer))

	env.advance(PingInterval)
	require.Len(t, env.transport.sent, 2)
	env.message(SrvPingCfmMsg)
	env.advance(PingInterval)
	require.Len(t, env.transport.sent, 3)
}

func TestTickerRequest(t *testing.T) {
	env := newAppTestEnv()
	env.online()
	env.message(tickerRequest("g", "0")...)
	require.Equal(t, [][]string{{DispTickerCfmMsg, "Srv", "server", "42", "SUCCESS", "dev1", "UNSPEC"}}, env.transport.sent)
	require.Equal(t, "g", env.display.printed[len(env.display.printed)-1])
	expected := make(sink.Pixels, 12)
	for _, n := range []int{2, 5, 8, 11} {
		expected[n] = 0x00FF00
	}
	require.Equal(t, expected, env.strip)

	// confirmed but not shown
	printed := len(env.display.printed)
	env.message(tickerRequest("hidden", "1")...)
	require.Len(t, env.transport.sent, 2)
	require.Len(t, env.display.printed, printed)

	// too short
	env.message(DispTickerReqMsg, "server")
	require.Len(t, env.transport.sent, 2)
}

func TestTickerDeferredUntilOnline(t *testing.T) {
	env := newAppTestEnv()
	env.message(tickerRequest("first", "0")...)
	env.message(tickerRequest("second", "0")...)
	require.Empty(t, env.transport.sent)
	require.Equal(t, 2, env.events.Deferred())

	env.events.Send(event.Signal(EvWifiConnect))
	env.message(SrvAuthCfmMsg)
	require.Zero(t, env.events.Deferred())
	require.Len(t, env.transport.sent, 3)
	require.Equal(t, SrvAuthReqMsg, env.transport.sent[0][0])
	require.Equal(t, DispTickerCfmMsg, env.transport.sent[1][0])
	printed := env.display.printed
	require.Equal(t, []string{"first", "second"}, printed[len(printed)-2:])
}

func TestTickerDeferredLimit(t *testing.T) {
	env := newAppTestEnv()
	for n := 0; n < MaxDeferred+3; n++ {
		env.message(tickerRequest("t", "0")...)
	}
	require.Equal(t, MaxDeferred, env.events.Deferred())
}

func TestRecoveryPolicy(t *testing.T) {
	cases := []struct {
		kind    wifi.ErrorKind
		state   string
		retried bool
	}{
		{wifi.CommandError, "connecting", true},
		{wifi.TransmitError, "connecting", true},
		{wifi.InitError, "recovering", false},
		{wifi.ReceiveError, "recovering", false},
	}
	for _, c := range cases {
		t.Run(c.kind.String(), func(t *testing.T) {
			env := newAppTestEnv()
			env.online()
			env.fail(c.kind)
			require.Equal(t, c.state, env.app.LinkState())
			require.False(t, env.timers.Active(EvPingTimer))
			if c.retried {
				require.Equal(t, []string{"reset", "config", "join home secret", "connect 10.0.0.1"}, env.transport.calls)
				return
			}
			require.Equal(t, []string{"reset"}, env.transport.calls)
			require.True(t, env.timers.Active(EvRetryTimer))

			// further errors while recovering are ignored
			env.fail(wifi.ReceiveError)
			require.Equal(t, []string{"reset"}, env.transport.calls)

			env.advance(RetryDelay)
			require.Equal(t, "connecting", env.app.LinkState())
			require.Equal(t, "reset config", strings.Join(env.transport.calls[1:3], " "))
		})
	}
}

func TestButtons(t *testing.T) {
	env := newAppTestEnv()
	env.online()
	env.events.Send(event.Signal(EvButtonB))
	require.Equal(t, "online", env.display.printed[len(env.display.printed)-1])
	env.events.Send(event.Signal(EvButtonA))
	require.Equal(t, "connecting", env.app.LinkState())
	require.Len(t, env.transport.calls, 4)
}

func TestIgnoredMessages(t *testing.T) {
	env := newAppTestEnv()
	env.message(SrvAuthCfmMsg)
	require.Equal(t, "connecting", env.app.LinkState())
	env.message()
	env.message("Unknown", "x")
	require.Empty(t, env.transport.sent)
}
