package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	saved := defaultConfig
	defer func() { defaultConfig = saved }()

	vars := map[string]string{
		"MICROCTL_PORT":   "/dev/ttyS1",
		"MICROCTL_SSID":   "home",
		"MICROCTL_SERVER": "10.0.0.2:7000",
		"MICROCTL_BAUD":   "9600",
	}
	loadEnv(func(name string) string { return vars[name] })
	conf := NewConfig()
	require.Equal(t, "/dev/ttyS1", conf.Port)
	require.Equal(t, "home", conf.SSID)
	require.Equal(t, 9600, conf.Baud)
	host, port, err := conf.ServerAddr()
	require.NoError(t, err)
	require.Equal(t, "10.0.0.2", host)
	require.Equal(t, 7000, port)
	require.NoError(t, conf.Validate())

	conf.Port = "/dev/other"
	require.Equal(t, "/dev/ttyS1", Default().Port)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		conf Config
		ok   bool
	}{
		{"complete", Config{Port: "/dev/ttyUSB0", SSID: "s", Server: "h:1"}, true},
		{"bridge", Config{BridgeURL: "ws://h/serial", SSID: "s", Server: "h:1"}, true},
		{"no link", Config{SSID: "s", Server: "h:1"}, false},
		{"no ssid", Config{Port: "p", Server: "h:1"}, false},
		{"no port", Config{Port: "p", SSID: "s", Server: "h"}, false},
		{"bad port", Config{Port: "p", SSID: "s", Server: "h:x"}, false},
		{"port range", Config{Port: "p", SSID: "s", Server: "h:70000"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.conf.Validate()
			if c.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestDevice(t *testing.T) {
	require.Equal(t, "dev1", (&Config{DeviceID: "dev1"}).Device())
	require.NotEmpty(t, (&Config{}).Device())
}
