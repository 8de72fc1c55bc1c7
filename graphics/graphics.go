// Package graphics defines the contracts between the video renderers and
// the windowing layer: the drawing device, textures, the graphics context
// and its message queue.
package graphics

import (
	"image/color"
	"sync"

	"github.com/user-none/retrovideo/geometry"
	"github.com/user-none/retrovideo/pixfmt"
)

// Filter selects texture sampling.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
	// FilterCubic is Catmull-Rom bicubic sampling. Devices without it fall
	// back to FilterLinear.
	FilterCubic
)

func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	case FilterCubic:
		return "cubic"
	}
	return "linear"
}

// DrawOptions controls a single quad draw.
type DrawOptions struct {
	Filter Filter

	// Alpha is the opacity of the quad in [0, 1].
	Alpha float64
}

// Texture is a device-side image the size of one video frame.
type Texture interface {
	// Upload replaces the texture contents with pix, which is a tightly
	// packed frame in the device's texture format.
	Upload(pix []byte) error
	Size() (width, height int)
	Release()
}

// Device issues draw calls on the render target.
type Device interface {
	// TextureFormat is the pixel layout Upload expects.
	TextureFormat() pixfmt.Format
	NewTexture(width, height int) (Texture, error)

	// Size is the render target size in pixels.
	Size() (width, height int)

	Clear(c color.Color)
	FillRects(c color.Color, rects []geometry.Rect)
	SetBlend(enabled bool)

	// DrawQuad draws the src region of tex (in texels) onto the four
	// destination corners, given in top-left, top-right, bottom-right,
	// bottom-left order before rotation.
	DrawQuad(tex Texture, src geometry.Rect, dst [4]geometry.Point, opts DrawOptions)

	// Finish blocks until submitted work has completed.
	Finish()
}

// Context is the windowing layer as seen by the renderers. The embedded
// Locker serialises rendering with other users of the device.
type Context interface {
	sync.Locker

	Device() Device
	ViewWindow() geometry.Rect
	Screen() geometry.Screen
	VideoResolution() Resolution

	IsFullScreenVideo() bool
	IsFullScreenRoot() bool
	IsCalibrating() bool
	UseLimitedColor() bool

	// ChooseBestResolution picks the output mode for a frame rate.
	ChooseBestResolution(fps float64) Resolution
	SetVideoResolution(res Resolution, fps float64)
}

// LimitedBlack is black in limited-range (16-235) video levels.
var LimitedBlack = color.RGBA{R: 16, G: 16, B: 16, A: 0xFF}

// Black is full-range black.
var Black = color.RGBA{A: 0xFF}
