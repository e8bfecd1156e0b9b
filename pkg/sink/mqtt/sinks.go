package mqtt

import (
	"encoding/json"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/microctl/pkg/sink"
)

// Topics relative to a device prefix.
const (
	TopicDisplay = "display"
	TopicStrip   = "strip"
	TopicButton  = "input/button"
)

// Publisher publishes payloads to topics. Queue implements it.
type Publisher interface {
	Pub(topic string, payload []byte) paho.Token
}

// DisplayCommand is the payload published for each drawing operation.
type DisplayCommand struct {
	Op    string `json:"op"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	W     int    `json:"w,omitempty"`
	H     int    `json:"h,omitempty"`
	Text  string `json:"text,omitempty"`
	FG    uint16 `json:"fg"`
	BG    uint16 `json:"bg,omitempty"`
	Scale int    `json:"scale,omitempty"`
}

// StripState is the payload published on every Strip.Show.
type StripState struct {
	Pixels []uint32 `json:"pixels"`
}

// ButtonPress is the payload expected on the button topic.
type ButtonPress struct {
	Button string `json:"button"`
}

func publish(pub Publisher, topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	pub.Pub(topic, payload)
	return nil
}

// Display implements sink.Display by publishing DisplayCommands.
type Display struct {
	Pub    Publisher
	Prefix string
}

// FillRect implements sink.Display.
func (d *Display) FillRect(x, y, w, h int, color sink.Color) error {
	return publish(d.Pub, d.Prefix+TopicDisplay, &DisplayCommand{
		Op: "fill", X: x, Y: y, W: w, H: h, FG: uint16(color),
	})
}

// Print implements sink.Display.
func (d *Display) Print(x, y int, text string, fg, bg sink.Color, scale int) error {
	return publish(d.Pub, d.Prefix+TopicDisplay, &DisplayCommand{
		Op: "print", X: x, Y: y, Text: text, FG: uint16(fg), BG: uint16(bg), Scale: scale,
	})
}

// Strip implements sink.Strip, publishing the pixels on Show.
type Strip struct {
	Pub    Publisher
	Prefix string

	pixels sink.Pixels
}

// NewStrip creates a Strip of n pixels.
func NewStrip(pub Publisher, prefix string, n int) *Strip {
	return &Strip{Pub: pub, Prefix: prefix, pixels: make(sink.Pixels, n)}
}

// Len implements sink.Strip.
func (s *Strip) Len() int {
	return s.pixels.Len()
}

// SetPixel implements sink.Strip.
func (s *Strip) SetPixel(index int, rgb uint32) {
	s.pixels.SetPixel(index, rgb)
}

// Show implements sink.Strip.
func (s *Strip) Show() error {
	return publish(s.Pub, s.Prefix+TopicStrip, &StripState{Pixels: append([]uint32(nil), s.pixels...)})
}

// OnButton subscribes to remote button presses under prefix. The
// payload is either a ButtonPress or the plain button name.
func (q *Queue) OnButton(prefix string, fn func(button string)) *Subscription {
	return q.Sub(prefix+TopicButton, func(topic string, payload []byte) {
		if button := ParseButton(payload); button != "" {
			fn(button)
		} else {
			glog.Warningf("mqtt: bad button payload on %s: %q", topic, payload)
		}
	})
}

// ParseButton extracts the lower-cased button name from payload.
func ParseButton(payload []byte) string {
	var press ButtonPress
	if err := json.Unmarshal(payload, &press); err == nil {
		return strings.ToLower(strings.TrimSpace(press.Button))
	}
	return strings.ToLower(strings.TrimSpace(string(payload)))
}
