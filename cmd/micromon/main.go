package main

import (
	"encoding/json"
	"flag"
	"os"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/microctl/pkg/framework"
	"github.com/robotalks/microctl/pkg/sink"
	"github.com/robotalks/microctl/pkg/sink/logsink"
	"github.com/robotalks/microctl/pkg/sink/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/microctl/"
)

func init() {
	if val := os.Getenv("MICROCTL_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	q, err := mqtt.NewQueueFromURL(mqttURL, "")
	if err != nil {
		glog.Exit(err)
	}

	q.Sub("+/"+mqtt.TopicDisplay, func(topic string, payload []byte) {
		var cmd mqtt.DisplayCommand
		if err := json.Unmarshal(payload, &cmd); err != nil {
			glog.Warningf("%s: bad payload: %v", topic, err)
			return
		}
		device := strings.SplitN(topic, "/", 2)[0]
		switch cmd.Op {
		case "print":
			glog.Infof("%s: print (%d,%d) %q", device, cmd.X, cmd.Y, cmd.Text)
		default:
			glog.Infof("%s: %s (%d,%d) %dx%d", device, cmd.Op, cmd.X, cmd.Y, cmd.W, cmd.H)
		}
	})
	q.Sub("+/"+mqtt.TopicStrip, func(topic string, payload []byte) {
		var state mqtt.StripState
		if err := json.Unmarshal(payload, &state); err != nil {
			glog.Warningf("%s: bad payload: %v", topic, err)
			return
		}
		glog.Infof("%s: %s", strings.SplitN(topic, "/", 2)[0], logsink.Format(sink.Pixels(state.Pixels)))
	})

	runner := framework.NewRunner().HandleSignals()
	runner.Go(q)
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}
