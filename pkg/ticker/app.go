// Package ticker is a display ticker client: it connects to a ticker
// server over the wifi link, keeps the session alive and shows the text
// the server pushes.
package ticker

import (
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/microctl/pkg/event"
	"github.com/robotalks/microctl/pkg/framework"
	"github.com/robotalks/microctl/pkg/sink"
	"github.com/robotalks/microctl/pkg/state"
	"github.com/robotalks/microctl/pkg/timer"
	"github.com/robotalks/microctl/pkg/wifi"
)

// Regions.
const (
	RegionMain state.Region = iota
	RegionLink
)

// States of RegionMain.
const (
	MainRoot state.ID = iota
)

// States of RegionLink.
const (
	LinkConnecting state.ID = iota
	LinkAuthenticating
	LinkOnline
	LinkRecovering
)

var linkStateNames = map[state.ID]string{
	state.None:         "idle",
	LinkConnecting:     "connecting",
	LinkAuthenticating: "authenticating",
	LinkOnline:         "online",
	LinkRecovering:     "recovering",
}

// Defaults.
const (
	PingInterval = 500 * time.Millisecond
	RetryDelay   = 2 * time.Second
	// MaxDeferred bounds ticker requests kept while offline.
	MaxDeferred = 8
)

// Transport is the part of wifi.Driver used to talk to the server.
type Transport interface {
	Reset()
	Config()
	Join(ssid, password string)
	Connect(host string, port int)
	Send(tokens ...string)
}

// Config provides the session parameters.
type Config struct {
	SSID     string
	Password string
	Host     string
	Port     int
	User     string
	Secret   string
	Device   string

	PingInterval time.Duration
	RetryDelay   time.Duration
}

// App is the ticker client. All methods except Name must run on the
// loop goroutine.
type App struct {
	Config

	Transport Transport
	Display   sink.Display
	Strip     sink.Strip

	events *event.Kernel
	timers *timer.Service
	states *state.Machine

	seq int
}

// New creates an App.
func New(conf Config, transport Transport, display sink.Display, strip sink.Strip) *App {
	if conf.PingInterval <= 0 {
		conf.PingInterval = PingInterval
	}
	if conf.RetryDelay <= 0 {
		conf.RetryDelay = RetryDelay
	}
	return &App{Config: conf, Transport: transport, Display: display, Strip: strip}
}

// Name implements framework.Named.
func (a *App) Name() string {
	return "ticker"
}

// AddToLoop implements framework.LoopAdder. The app starts with the loop.
func (a *App) AddToLoop(l *framework.Loop) {
	a.Attach(l.Events, l.Timers, l.States)
	l.Do(a.Start)
}

// Attach registers the event handlers and state actions.
func (a *App) Attach(events *event.Kernel, timers *timer.Service, states *state.Machine) {
	a.events, a.timers, a.states = events, timers, states

	events.OnFunc(EvWifiConnect, a.handleConnect)
	events.OnFunc(EvWifiError, a.handleError)
	events.OnFunc(EvWifiMessage, a.handleMessage)
	events.OnFunc(EvPingTimer, a.handlePing)
	events.OnFunc(EvRetryTimer, a.handleRetry)
	events.OnFunc(EvButtonA, a.handleButtonA)
	events.OnFunc(EvButtonB, a.handleButtonB)

	states.OnEntry(RegionMain, MainRoot, a.enterRoot)
	states.OnEntry(RegionLink, LinkConnecting, a.enterConnecting)
	states.OnEntry(RegionLink, LinkAuthenticating, a.enterAuthenticating)
	states.OnEntry(RegionLink, LinkOnline, a.enterOnline)
	states.OnExit(RegionLink, LinkOnline, a.exitOnline)
	states.OnEntry(RegionLink, LinkRecovering, a.enterRecovering)
}

// Start activates the root state, which starts connecting.
func (a *App) Start() {
	a.states.Start(RegionMain, MainRoot)
}

// LinkState returns the name of the active link state.
func (a *App) LinkState() string {
	return linkStateNames[a.states.Current(RegionLink)]
}

func (a *App) nextSeq() string {
	a.seq++
	return strconv.Itoa(a.seq)
}

func (a *App) enterRoot() {
	a.show(a.Display.FillRect(0, 0, 320, 240, sink.Cyan))
	a.show(a.Display.Print(0, 0, a.Device, sink.Red, sink.Cyan, 4))
	a.show(a.Display.Print(0, 64, "connecting", sink.Green, sink.Navy, 3))
	a.show(sink.ShowAll(a.Strip))
	a.states.Initial(RegionLink, LinkConnecting)
}

func (a *App) enterConnecting() {
	glog.Infof("ticker: connecting to %s:%d via %q", a.Host, a.Port, a.SSID)
	a.timers.Stop(EvPingTimer)
	a.timers.Stop(EvRetryTimer)
	a.Transport.Reset()
	a.Transport.Config()
	a.Transport.Join(a.SSID, a.Password)
	a.Transport.Connect(a.Host, a.Port)
}

func (a *App) enterAuthenticating() {
	a.Transport.Send(authRequest(a.nextSeq(), a.User, a.Secret, a.Device)...)
}

func (a *App) enterOnline() {
	glog.Infof("ticker: online")
	a.timers.Start(EvPingTimer, a.PingInterval, false)
	a.events.Recall()
}

func (a *App) exitOnline() {
	a.timers.Stop(EvPingTimer)
}

func (a *App) enterRecovering() {
	glog.Warningf("ticker: resetting module, retry in %v", a.RetryDelay)
	a.timers.Stop(EvPingTimer)
	a.Transport.Reset()
	a.timers.Start(EvRetryTimer, a.RetryDelay, false)
}

func (a *App) handleConnect(event.Event) {
	if a.states.IsIn(RegionLink, LinkConnecting) {
		a.states.Transit(RegionLink, LinkAuthenticating)
	}
}

func (a *App) handleError(ev event.Event) {
	err := ev.(ErrorEvent).Err
	glog.Warningf("ticker: %v", err)
	a.timers.Stop(EvPingTimer)
	if a.states.IsIn(RegionLink, LinkRecovering) {
		return
	}
	switch err.Kind {
	case wifi.InitError, wifi.ReceiveError:
		a.states.Transit(RegionLink, LinkRecovering)
	default:
		a.states.Transit(RegionLink, LinkConnecting)
	}
}

func (a *App) handleRetry(event.Event) {
	if a.states.IsIn(RegionLink, LinkRecovering) {
		a.states.Transit(RegionLink, LinkConnecting)
	}
}

func (a *App) handlePing(event.Event) {
	if a.states.IsIn(RegionLink, LinkOnline) {
		a.Transport.Send(pingRequest(a.Device, a.nextSeq())...)
	}
}

func (a *App) handleMessage(ev event.Event) {
	msg := ev.(MessageEvent)
	switch msg.Type() {
	case SrvAuthCfmMsg:
		if a.states.IsIn(RegionLink, LinkAuthenticating) {
			a.states.Transit(RegionLink, LinkOnline)
		}
	case SrvPingCfmMsg:
		if a.states.IsIn(RegionLink, LinkOnline) {
			a.timers.Start(EvPingTimer, a.PingInterval, false)
		}
	case DispTickerReqMsg:
		a.handleTicker(msg)
	case "":
	default:
		glog.V(1).Infof("ticker: ignored %v", msg.Tokens)
	}
}

func (a *App) handleTicker(msg MessageEvent) {
	if !a.states.IsIn(RegionLink, LinkOnline) {
		if a.events.Deferred() >= MaxDeferred {
			glog.Warningf("ticker: dropped request while offline: %v", msg.Tokens)
			return
		}
		a.events.Defer(msg)
		return
	}
	req := msg.Tokens
	if len(req) < tickerFields {
		glog.Warningf("ticker: malformed request: %v", req)
		return
	}
	a.Transport.Send(tickerConfirm(req, a.Device)...)
	if req[tickerFlag] != "0" {
		return
	}
	text := req[tickerText]
	a.show(a.Display.Print(0, 96, text, sink.White, sink.Navy, 4))
	if light, ok := sink.ParseLight(text); ok {
		a.show(sink.ShowLight(a.Strip, light))
	}
}

// handleButtonA forces a reconnect.
func (a *App) handleButtonA(event.Event) {
	glog.Info("ticker: reconnect requested")
	a.states.Transit(RegionLink, LinkConnecting)
}

// handleButtonB shows the link state.
func (a *App) handleButtonB(event.Event) {
	a.show(a.Display.Print(0, 64, a.LinkState(), sink.Green, sink.Navy, 3))
}

func (a *App) show(err error) {
	if err != nil {
		glog.Errorf("ticker: output: %v", err)
	}
}
