// Package env collects the program configuration from flags and the
// environment.
package env

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
)

// Config provides the options to set up the controller.
type Config struct {
	// Port is the serial device of the wifi module.
	Port string
	// Baud is the initial rate of Port.
	Baud int
	// BridgeURL, if set, replaces Port with a WebSocket serial bridge,
	// e.g. ws://host:8080/serial
	BridgeURL string

	SSID     string
	Password string

	// Server is the host:port of the ticker server.
	Server string
	// User and Secret authenticate with the server.
	User   string
	Secret string

	// DeviceID identifies this controller to the server and the broker.
	DeviceID string

	// MQTTBrokerURL, if set, sends display and strip output to the
	// broker, e.g. mqtt://host:1883/microctl/
	MQTTBrokerURL string

	// Console enables the interactive console.
	Console bool
}

var defaultConfig = Config{
	Port:   "/dev/ttyUSB0",
	Baud:   115200,
	Server: "192.168.1.81:60004",
	User:   "user",
	Secret: "pwd",
}

var envVars = []struct {
	name string
	val  *string
}{
	{"MICROCTL_PORT", &defaultConfig.Port},
	{"MICROCTL_BRIDGE_URL", &defaultConfig.BridgeURL},
	{"MICROCTL_SSID", &defaultConfig.SSID},
	{"MICROCTL_PASSWORD", &defaultConfig.Password},
	{"MICROCTL_SERVER", &defaultConfig.Server},
	{"MICROCTL_USER", &defaultConfig.User},
	{"MICROCTL_SECRET", &defaultConfig.Secret},
	{"MICROCTL_DEVICE_ID", &defaultConfig.DeviceID},
	{"MICROCTL_MQTT_URL", &defaultConfig.MQTTBrokerURL},
}

func init() {
	loadEnv(os.Getenv)
}

func loadEnv(getenv func(string) string) {
	for _, v := range envVars {
		if val := getenv(v.name); val != "" {
			*v.val = val
		}
	}
	if val := getenv("MICROCTL_BAUD"); val != "" {
		if baud, err := strconv.Atoi(val); err == nil {
			defaultConfig.Baud = baud
		}
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port of the wifi module.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Initial baud rate of the serial port.")
	flag.StringVar(&defaultConfig.BridgeURL, "bridge", defaultConfig.BridgeURL, "WebSocket serial bridge URL, overrides -port.")
	flag.StringVar(&defaultConfig.SSID, "ssid", defaultConfig.SSID, "Wifi access point.")
	flag.StringVar(&defaultConfig.Password, "password", defaultConfig.Password, "Wifi password.")
	flag.StringVar(&defaultConfig.Server, "server", defaultConfig.Server, "Ticker server host:port.")
	flag.StringVar(&defaultConfig.User, "user", defaultConfig.User, "Server user.")
	flag.StringVar(&defaultConfig.Secret, "secret", defaultConfig.Secret, "Server password.")
	flag.StringVar(&defaultConfig.DeviceID, "device-id", defaultConfig.DeviceID, "Device ID, defaults to one derived from the machine ID.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL for display output.")
	flag.BoolVar(&defaultConfig.Console, "console", defaultConfig.Console, "Run the interactive console.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// ServerAddr splits Server into host and port.
func (c *Config) ServerAddr() (string, int, error) {
	host, portStr, err := net.SplitHostPort(c.Server)
	if err != nil {
		return "", 0, fmt.Errorf("invalid server address %q: %v", c.Server, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid server port %q", portStr)
	}
	return host, port, nil
}

// Validate checks the options required to run.
func (c *Config) Validate() error {
	if c.Port == "" && c.BridgeURL == "" {
		return fmt.Errorf("serial port or bridge URL must be specified")
	}
	if c.SSID == "" {
		return fmt.Errorf("wifi SSID must be specified")
	}
	if _, _, err := c.ServerAddr(); err != nil {
		return err
	}
	return nil
}

// Device returns DeviceID, or the machine derived one when unset.
func (c *Config) Device() string {
	if c.DeviceID != "" {
		return c.DeviceID
	}
	return DeviceID()
}
