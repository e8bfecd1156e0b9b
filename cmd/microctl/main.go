package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/microctl/pkg/console"
	"github.com/robotalks/microctl/pkg/env"
	"github.com/robotalks/microctl/pkg/framework"
	"github.com/robotalks/microctl/pkg/joystick"
	"github.com/robotalks/microctl/pkg/link"
	"github.com/robotalks/microctl/pkg/sink"
	"github.com/robotalks/microctl/pkg/sink/logsink"
	"github.com/robotalks/microctl/pkg/sink/mqtt"
	"github.com/robotalks/microctl/pkg/ticker"
	"github.com/robotalks/microctl/pkg/wifi"
)

// stripLen is the pixel count of the traffic light strip.
const stripLen = 12

func init() {
	env.SetupFlags()
	joystick.SetupFlags()
}

type port interface {
	wifi.Port
	io.Closer
}

func openLink(conf *env.Config) (port, error) {
	if conf.BridgeURL != "" {
		return link.DialBridge(conf.BridgeURL, "http://localhost/")
	}
	return link.OpenSerial(conf.Port, conf.Baud)
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.NewConfig()
	if err := conf.Validate(); err != nil {
		glog.Exit(err)
	}
	host, serverPort, _ := conf.ServerAddr()
	device := conf.Device()

	p, err := openLink(conf)
	if err != nil {
		glog.Exit(err)
	}
	defer p.Close()

	loop := framework.NewLoop()
	driver := wifi.New(p)
	ticker.Bind(driver, loop)

	var (
		display sink.Display = logsink.Display{}
		strip   sink.Strip   = logsink.NewStrip(stripLen)
	)
	if conf.MQTTBrokerURL != "" {
		q, err := mqtt.NewQueueFromURL(conf.MQTTBrokerURL, device)
		if err != nil {
			glog.Exit(err)
		}
		prefix := device + "/"
		display = &mqtt.Display{Pub: q, Prefix: prefix}
		strip = mqtt.NewStrip(q, prefix, stripLen)
		q.OnButton(prefix, func(button string) {
			if !ticker.Press(loop, button) {
				glog.Warningf("unknown button %q", button)
			}
		})
		loop.AddRunnable(q)
	}

	app := ticker.New(ticker.Config{
		SSID:     conf.SSID,
		Password: conf.Password,
		Host:     host,
		Port:     serverPort,
		User:     conf.User,
		Secret:   conf.Secret,
		Device:   device,
	}, driver, display, strip)
	loop.Add(app).AddRunnable(driver)
	if js := joystick.NewConfig(); js.Enabled {
		loop.AddRunnable(js.NewButtons(func(button string) { ticker.Press(loop, button) }))
	}
	if conf.Console {
		loop.AddRunnable(&console.Console{Ctl: loop, App: app, Sender: driver})
	}

	glog.Infof("microctl %s starting", device)
	runner := framework.NewRunner().HandleSignals()
	runner.Go(framework.NamedRun("loop", loop))
	if err := runner.Wait(); err != nil {
		glog.Exitf("stopped: %v", err)
	}
}
