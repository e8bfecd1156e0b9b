// Package logsink implements sinks which only log what they are asked to
// show.
package logsink

import (
	"fmt"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/microctl/pkg/sink"
)

// Display logs drawing commands.
type Display struct{}

// FillRect implements sink.Display.
func (Display) FillRect(x, y, w, h int, color sink.Color) error {
	glog.Infof("display: fill (%d,%d) %dx%d #%04x", x, y, w, h, uint16(color))
	return nil
}

// Print implements sink.Display.
func (Display) Print(x, y int, text string, fg, bg sink.Color, scale int) error {
	glog.Infof("display: print (%d,%d) x%d #%04x/#%04x %q", x, y, scale, uint16(fg), uint16(bg), text)
	return nil
}

// Strip logs the pixels on every Show.
type Strip struct {
	pixels sink.Pixels
}

// NewStrip creates a Strip of n pixels.
func NewStrip(n int) *Strip {
	return &Strip{pixels: make(sink.Pixels, n)}
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
	glog.Infof("strip: %s", Format(s.pixels))
	return nil
}

// Format renders pixels as r/y/g/. characters for known colors and hex
// otherwise.
func Format(pixels sink.Pixels) string {
	parts := make([]string, len(pixels))
	for n, rgb := range pixels {
		switch rgb {
		case 0:
			parts[n] = "."
		case 0xFF0000:
			parts[n] = "r"
		case 0xFFFF00:
			parts[n] = "y"
		case 0x00FF00:
			parts[n] = "g"
		default:
			parts[n] = fmt.Sprintf("#%06x", rgb)
		}
	}
	return strings.Join(parts, "")
}
