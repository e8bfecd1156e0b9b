// Package sink defines the output devices driven by the application.
package sink

// Color is an RGB565 color.
type Color uint16

// Common RGB565 colors.
const (
	Black Color = 0x0000
	Navy  Color = 0x000F
	Red   Color = 0xF800
	Green Color = 0x07E0
	Cyan  Color = 0x07FF
	White Color = 0xFFFF
)

// RGB returns the 24-bit RGB approximation of c.
func (c Color) RGB() uint32 {
	r := uint32(c>>11) & 0x1f
	g := uint32(c>>5) & 0x3f
	b := uint32(c) & 0x1f
	return (r*255/31)<<16 | (g*255/63)<<8 | b*255/31
}

// Display is a character-capable screen.
type Display interface {
	FillRect(x, y, w, h int, color Color) error
	Print(x, y int, text string, fg, bg Color, scale int) error
}

// Strip is a chain of RGB pixels. Changes are buffered until Show.
type Strip interface {
	Len() int
	SetPixel(index int, rgb uint32)
	Show() error
}

// Light is a phase of the traffic light shown on a Strip.
type Light int

// Lights in strip order.
const (
	LightOff Light = iota - 1
	LightRed
	LightYellow
	LightGreen
)

var lightColors = [...]uint32{0xFF0000, 0xFFFF00, 0x00FF00}

// ParseLight maps "r", "y" and "g" to a Light.
func ParseLight(s string) (Light, bool) {
	switch s {
	case "r":
		return LightRed, true
	case "y":
		return LightYellow, true
	case "g":
		return LightGreen, true
	}
	return LightOff, false
}

// ShowLight lights every third pixel of the strip in the color of l,
// starting at the pixel matching its position, and clears the others.
// LightOff clears the strip.
func ShowLight(s Strip, l Light) error {
	for n := 0; n < s.Len(); n++ {
		var rgb uint32
		if l >= 0 && n%len(lightColors) == int(l) {
			rgb = lightColors[l]
		}
		s.SetPixel(n, rgb)
	}
	return s.Show()
}

// ShowAll lights pixels in repeating red, yellow, green order.
func ShowAll(s Strip) error {
	for n := 0; n < s.Len(); n++ {
		s.SetPixel(n, lightColors[n%len(lightColors)])
	}
	return s.Show()
}

// Pixels is a Strip kept in memory; Show is a no-op.
type Pixels []uint32

// Len implements Strip.
func (p Pixels) Len() int { return len(p) }

// SetPixel implements Strip.
func (p Pixels) SetPixel(index int, rgb uint32) {
	if index >= 0 && index < len(p) {
		p[index] = rgb
	}
}

// Show implements Strip.
func (p Pixels) Show() error { return nil }
