package wifi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		line             string
		matched, success bool
	}{
		{"OK", true, true},
		{"SEND OK", true, true},
		{"ERROR", true, false},
		{"FAIL", true, false},
		{"SEND FAIL", true, false},
		{"ALREADY CONNECTED", true, false},
		{"busy p...", false, false},
		{"", false, false},
		{"WIFI GOT IP", false, false},
		// success wins when both appear
		{"OK ERROR", true, true},
	}
	for _, c := range cases {
		matched, success := Classify(c.line)
		require.Equal(t, c.matched, matched, c.line)
		require.Equal(t, c.success, success, c.line)
	}
}

func TestSetupCommands(t *testing.T) {
	called := false
	cmds := SetupCommands(115200, func() error { called = true; return nil })
	require.Len(t, cmds, 4)
	require.True(t, cmds[0].Handshake)
	for _, cmd := range cmds[1:] {
		require.False(t, cmd.Handshake)
	}
	require.Equal(t, "AT+UART_CUR=115200,8,1,0,0", cmds[3].Line)
	require.NoError(t, cmds[3].OnSuccess())
	require.True(t, called)
}

func TestCommandLines(t *testing.T) {
	require.Equal(t, `AT+CWJAP="home","secret"`, JoinCommand("home", "secret").Line)
	require.Equal(t, `AT+CWJAP="a\\b","c\,d"`, JoinCommand(`a\b`, "c,d").Line)
	require.Equal(t, JoinTimeout, JoinCommand("a", "b").Timeout)
	cmd := ConnectCommand("10.0.0.1", 9000, nil)
	require.Equal(t, `AT+CIPSTART="TCP","10.0.0.1",9000`, cmd.Line)
	require.Equal(t, ConnectTimeout, cmd.Timeout)
	require.Equal(t, "AT+CIPSEND=42", sendCommand(42))
}

func TestErrorFormat(t *testing.T) {
	err := &Error{Kind: TransmitError, Command: "AT+CIPSEND=3", Err: ErrNoPrompt}
	require.Equal(t, `wifi transmit error: "AT+CIPSEND=3": no send prompt`, err.Error())
	require.True(t, errors.Is(err, ErrNoPrompt))
	require.Equal(t, "wifi receive error: frame timeout", (&Error{Kind: ReceiveError, Err: ErrFrameTimeout}).Error())
	require.Equal(t, "ErrorKind(9)", ErrorKind(9).String())
	require.True(t, ReceiveError > TransmitError && TransmitError > InitError && InitError > CommandError)
}
