package ticker

import (
	"github.com/robotalks/microctl/pkg/event"
	"github.com/robotalks/microctl/pkg/framework"
	"github.com/robotalks/microctl/pkg/wifi"
)

// Event kinds handled by the App. Timer kinds double as event kinds.
const (
	EvWifiConnect event.Kind = iota
	EvWifiError
	EvWifiMessage
	EvPingTimer
	EvRetryTimer
	EvButtonA
	EvButtonB
)

// ErrorEvent carries a transport failure.
type ErrorEvent struct {
	Err *wifi.Error
}

// Kind implements event.Event.
func (ErrorEvent) Kind() event.Kind { return EvWifiError }

// MessageEvent carries a decoded inbound message.
type MessageEvent struct {
	Tokens []string
}

// Kind implements event.Event.
func (MessageEvent) Kind() event.Kind { return EvWifiMessage }

// Type returns the message type token.
func (m MessageEvent) Type() string {
	if len(m.Tokens) == 0 {
		return ""
	}
	return m.Tokens[0]
}

// Driver is the part of wifi.Driver producing events.
type Driver interface {
	OnConnect(func())
	OnError(func(*wifi.Error))
	OnMessage(func([]string))
}

// Bind routes the driver callbacks, which run on the transport goroutine,
// onto the loop.
func Bind(d Driver, ctl framework.LoopControl) {
	d.OnConnect(func() { ctl.Post(event.Signal(EvWifiConnect)) })
	d.OnError(func(err *wifi.Error) { ctl.Post(ErrorEvent{Err: err}) })
	d.OnMessage(func(tokens []string) { ctl.Post(MessageEvent{Tokens: tokens}) })
}

// Press posts a button press by name ("a" or "b"). Unknown names are
// ignored and reported false.
func Press(ctl framework.LoopControl, button string) bool {
	switch button {
	case "a":
		ctl.Post(event.Signal(EvButtonA))
	case "b":
		ctl.Post(event.Signal(EvButtonB))
	default:
		return false
	}
	return true
}
