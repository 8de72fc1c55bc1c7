package geometry

// Screen describes the calibrated full-screen resolution the view modes are
// derived from.
type Screen struct {
	// Overscan is the calibrated visible area in GUI coordinates.
	Overscan Rect

	// Width and Height are the GUI resolution.
	Width, Height int

	// ScreenWidth and ScreenHeight are the physical output resolution. They
	// differ from Width/Height in split-resolution setups.
	ScreenWidth, ScreenHeight int

	// PixelRatio is the output pixel aspect ratio (1 for square pixels).
	PixelRatio float64

	// TV4x3 is set when the video resolution is one of the 4:3 TV modes
	// (PAL, PAL60, NTSC, 480p 4:3).
	TV4x3 bool
}

// NewScreen returns a square-pixel screen of the given size with no overscan.
func NewScreen(width, height int) Screen {
	return Screen{
		Overscan:     NewRect(0, 0, float64(width), float64(height)),
		Width:        width,
		Height:       height,
		ScreenWidth:  width,
		ScreenHeight: height,
		PixelRatio:   1,
	}
}

// pixelRatio returns PixelRatio, treating unset values as square pixels.
func (s Screen) pixelRatio() float64 {
	if s.PixelRatio <= 0 {
		return 1
	}
	return s.PixelRatio
}

// size returns the overscan area scaled by the split-resolution factor.
func (s Screen) size() (width, height float64) {
	width = s.Overscan.Width()
	height = s.Overscan.Height()
	if s.Width > 0 && s.ScreenWidth > 0 {
		width *= float64(s.ScreenWidth) / float64(s.Width)
	}
	if s.Height > 0 && s.ScreenHeight > 0 {
		height *= float64(s.ScreenHeight) / float64(s.Height)
	}
	return width, height
}
