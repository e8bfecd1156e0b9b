package wifi

import (
	"fmt"
	"strings"
	"time"
)

// Command is a queued AT command.
type Command struct {
	// Line is sent followed by CRLF.
	Line string
	// Timeout bounds the wait for a success or fail token.
	Timeout time.Duration
	// Handshake marks the first command of the setup sequence; its failure
	// is an InitError.
	Handshake bool
	// OnSuccess runs after the success token, before the next command.
	// An error fails the command.
	OnSuccess func() error
}

// Command timeouts.
const (
	SetupTimeout   = 200 * time.Millisecond
	JoinTimeout    = 15 * time.Second
	ConnectTimeout = 5 * time.Second
	SendTimeout    = 10 * time.Second
)

// DefaultBaudRate is the link rate the module is switched to by Config.
const DefaultBaudRate = 38400

var (
	// SuccessTokens complete a command successfully.
	SuccessTokens = []string{"OK", "SEND OK"}
	// FailTokens complete a command with failure.
	FailTokens = []string{"ERROR", "FAIL", "SEND FAIL", "ALREADY CONNECTED"}
)

// Classify matches a response line against the token sets. Tokens match
// as substrings and success is checked first.
func Classify(line string) (matched, success bool) {
	if containsAny(line, SuccessTokens) {
		return true, true
	}
	if containsAny(line, FailTokens) {
		return true, false
	}
	return false, false
}

func containsAny(line string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(line, token) {
			return true
		}
	}
	return false
}

// SetupCommands returns the module configuration sequence: echo off,
// station mode, no auto-join, and a switch to baud. setBaud, if not nil,
// runs when the module accepted the new rate.
func SetupCommands(baud int, setBaud func() error) []Command {
	return []Command{
		{Line: "ATE0", Timeout: SetupTimeout, Handshake: true},
		{Line: "AT+CWMODE=1", Timeout: SetupTimeout},
		{Line: "AT+CWAUTOCONN=0", Timeout: SetupTimeout},
		{Line: fmt.Sprintf("AT+UART_CUR=%d,8,1,0,0", baud), Timeout: SetupTimeout, OnSuccess: setBaud},
	}
}

// JoinCommand joins an access point.
func JoinCommand(ssid, password string) Command {
	return Command{
		Line:    "AT+CWJAP=" + quote(ssid) + "," + quote(password),
		Timeout: JoinTimeout,
	}
}

// ConnectCommand opens the TCP session. onConnected runs on success.
func ConnectCommand(host string, port int, onConnected func() error) Command {
	return Command{
		Line:      fmt.Sprintf("AT+CIPSTART=\"TCP\",%s,%d", quote(host), port),
		Timeout:   ConnectTimeout,
		OnSuccess: onConnected,
	}
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `,`, `\,`)

// quote renders an AT string parameter; backslash, quote and comma are
// backslash-escaped.
func quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

func sendCommand(n int) string {
	return fmt.Sprintf("AT+CIPSEND=%d", n)
}
