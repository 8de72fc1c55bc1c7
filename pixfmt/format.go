// Package pixfmt describes the raw pixel layouts frames arrive in and
// converts between them.
package pixfmt

import (
	"fmt"
	"strings"
)

// Format is a packed pixel layout. All multi-byte formats are little-endian
// and rows are tightly packed.
type Format int

const (
	None Format = iota
	// RGB555 is 0RGB1555, two bytes per pixel.
	RGB555
	// RGB565 is RGB565, two bytes per pixel.
	RGB565
	// BGR0 is B, G, R, unused. This is XRGB8888 read as little-endian words.
	BGR0
	// BGRA is B, G, R, A.
	BGRA
	// RGBA is R, G, B, A.
	RGBA
	// RGB24 is R, G, B.
	RGB24
)

var formatNames = map[Format]string{
	None:   "none",
	RGB555: "rgb555le",
	RGB565: "rgb565le",
	BGR0:   "bgr0",
	BGRA:   "bgra",
	RGBA:   "rgba",
	RGB24:  "rgb24",
}

// String returns the telemetry name of the format.
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat parses a name produced by String.
func ParseFormat(s string) (Format, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for f, name := range formatNames {
		if name == lower && f != None {
			return f, nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnsupported, s)
}

// BytesPerPixel returns the packed pixel size, or 0 for None and unknown
// formats.
func (f Format) BytesPerPixel() int {
	switch f {
	case RGB555, RGB565:
		return 2
	case RGB24:
		return 3
	case BGR0, BGRA, RGBA:
		return 4
	}
	return 0
}

// Valid reports whether frames can be decoded from this format.
func (f Format) Valid() bool {
	return f.BytesPerPixel() > 0
}

// FrameSize returns the size in bytes of a tightly packed width x height
// frame.
func (f Format) FrameSize(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	return f.BytesPerPixel() * width * height
}
