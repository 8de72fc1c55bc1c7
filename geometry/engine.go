package geometry

import (
	"math"
)

// Pixel ratios of PAL and NTSC broadcast pixels. These are the values that
// produce an exact 4:3 (or 16:9) output frame, not the BT.601 figures.
const (
	PALPixelRatio  = 16.0 / 15.0
	NTSCPixelRatio = 8.0 / 9.0
)

// Display holds the render-area inputs that come from the graphics context.
type Display struct {
	// View is the window the video is rendered into.
	View Rect

	// Screen is the calibrated full-screen resolution.
	Screen Screen

	// Clip restricts the destination rect to View. It is false while
	// full-screen video or calibration is active.
	Clip bool
}

// RenderGeometry is a snapshot of the computed render geometry.
type RenderGeometry struct {
	SourceRect        Rect
	DestRect          Rect
	ViewRect          Rect
	ZoomAmount        float64
	PixelRatio        float64
	NonLinearStretch  bool
	RotatedDestCoords [4]Point
}

// Engine derives the on-screen placement of a video frame. It is not safe
// for concurrent use; each renderer owns one.
type Engine struct {
	// AllowedErrorInAspect is the fraction (0.1 = 10%) the output aspect
	// may deviate from the source to maximise the render area.
	AllowedErrorInAspect float64

	// VerticalShift moves the image vertically. -1..1 shifts within the
	// black bars, beyond that the image moves off screen. Clamped to [-2, 2].
	VerticalShift float64

	// RotationSupported disables orientation handling when false.
	RotationSupported bool

	sourceWidth      int
	sourceHeight     int
	orientation      int
	sourceFrameRatio float64

	viewMode         ViewMode
	pixelRatio       float64
	zoomAmount       float64
	nonLinearStretch bool

	display Display

	sourceRect Rect
	destRect   Rect
	viewRect   Rect

	oldDestRect    Rect
	oldOrientation int
	rotated        [4]Point
	reorders       int
}

// NewEngine returns an engine in Normal view mode with no source.
func NewEngine() *Engine {
	return &Engine{
		sourceFrameRatio: 1,
		pixelRatio:       1,
		zoomAmount:       1,
	}
}

// SetSource sets the source frame size and orientation (degrees, one of
// 0, 90, 180, 270) and recalculates the frame aspect ratio.
func (e *Engine) SetSource(width, height, orientation int) {
	e.sourceWidth = width
	e.sourceHeight = height
	e.orientation = normalizeOrientation(orientation)
	e.CalculateFrameAspectRatio(width, height)
}

// Source returns the configured source size and orientation.
func (e *Engine) Source() (width, height, orientation int) {
	return e.sourceWidth, e.sourceHeight, e.orientation
}

func normalizeOrientation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	switch deg {
	case 90, 180, 270:
		return deg
	}
	return 0
}

// CalculateFrameAspectRatio sets the frame ratio from the given size and
// corrects it for VCD, SVCD and DVD frame sizes, which were mastered for
// non-square TV pixels.
func (e *Engine) CalculateFrameAspectRatio(width, height int) {
	if width <= 0 || height <= 0 {
		e.sourceFrameRatio = 1
		return
	}
	e.sourceFrameRatio = float64(width) / float64(height)

	if e.sourceWidth <= 0 || e.sourceHeight <= 0 {
		return
	}
	imageFrameRatio := float64(e.sourceWidth) / float64(e.sourceHeight)

	// Anamorphic sources
	non4x3Correction := e.sourceFrameRatio / (4.0 / 3.0)

	switch e.sourceWidth {
	case 352: // VCD
		switch e.sourceHeight {
		case 240:
			e.sourceFrameRatio = imageFrameRatio * NTSCPixelRatio
		case 288:
			e.sourceFrameRatio = imageFrameRatio * PALPixelRatio
		}
	case 480: // SVCD, 2/3 of the horizontal resolution
		switch e.sourceHeight {
		case 480:
			e.sourceFrameRatio = imageFrameRatio * 3.0 / 2.0 * NTSCPixelRatio * non4x3Correction
		case 576:
			e.sourceFrameRatio = imageFrameRatio * 3.0 / 2.0 * PALPixelRatio * non4x3Correction
		}
	case 720: // DVD
		switch e.sourceHeight {
		case 480:
			e.sourceFrameRatio = imageFrameRatio * NTSCPixelRatio * non4x3Correction
		case 576:
			e.sourceFrameRatio = imageFrameRatio * PALPixelRatio * non4x3Correction
		}
	}
}

// AspectRatio returns the source frame ratio.
func (e *Engine) AspectRatio() float64 {
	if e.sourceFrameRatio <= 0 || math.IsNaN(e.sourceFrameRatio) || math.IsInf(e.sourceFrameRatio, 0) {
		return 1
	}
	return e.sourceFrameRatio
}

// SetDisplay updates the view window, screen and clipping inputs.
func (e *Engine) SetDisplay(d Display) {
	e.display = d
}

// ViewMode returns the active view mode.
func (e *Engine) ViewMode() ViewMode { return e.viewMode }

// PixelRatio returns the pixel ratio derived from the view mode.
func (e *Engine) PixelRatio() float64 { return e.pixelRatio }

// ZoomAmount returns the zoom derived from the view mode.
func (e *Engine) ZoomAmount() float64 { return e.zoomAmount }

// NonLinearStretch reports whether the view mode asks for a non-linear
// horizontal stretch.
func (e *Engine) NonLinearStretch() bool { return e.nonLinearStretch }

// SetViewMode derives pixel ratio, zoom and the non-linear stretch flag for
// mode using the current display's screen.
func (e *Engine) SetViewMode(mode ViewMode) {
	e.viewMode = mode

	screen := e.display.Screen
	screenWidth, screenHeight := screen.size()
	outputPixelRatio := screen.pixelRatio()
	sourceFrameRatio := e.AspectRatio()

	e.nonLinearStretch = false

	switch mode {
	case ViewModeZoom:
		// No black bars
		e.pixelRatio = 1
		e.zoomAmount = 1
		if screenWidth <= 0 || screenHeight <= 0 {
			break
		}
		outputFrameRatio := sourceFrameRatio * e.pixelRatio / outputPixelRatio

		newHeight := screenHeight
		newWidth := newHeight * outputFrameRatio
		e.zoomAmount = newWidth / screenWidth
		if newWidth < screenWidth {
			newWidth = screenWidth
			newHeight = newWidth / outputFrameRatio
			e.zoomAmount = newHeight / screenHeight
		}

	case ViewModeStretch4x3:
		e.zoomAmount = 1
		if screen.TV4x3 && screenHeight > 0 {
			// Fill the 4:3 screen
			e.pixelRatio = (screenWidth / screenHeight) * outputPixelRatio / sourceFrameRatio
		} else {
			e.pixelRatio = (4.0 / 3.0) / sourceFrameRatio
		}

	case ViewModeWideZoom:
		e.pixelRatio = 1
		e.zoomAmount = 1
		if screenHeight > 0 && screenWidth > 0 {
			stretch := (screenWidth / screenHeight) * outputPixelRatio / sourceFrameRatio
			e.pixelRatio = math.Pow(stretch, 2.0/3.0)
			exp := 1.0 / 3.0
			if stretch < 1 {
				exp = -1.0 / 3.0
			}
			e.zoomAmount = math.Pow(stretch, exp)
		}
		e.nonLinearStretch = true

	case ViewModeStretch16x9, ViewModeStretch16x9Nonlinear:
		e.zoomAmount = 1
		if screen.TV4x3 || screenHeight <= 0 {
			e.pixelRatio = (16.0 / 9.0) / sourceFrameRatio
		} else {
			// Fill the widescreen
			e.pixelRatio = (screenWidth / screenHeight) * outputPixelRatio / sourceFrameRatio
		}
		e.nonLinearStretch = mode == ViewModeStretch16x9Nonlinear

	case ViewModeOriginal:
		// Source pixels map 1:1 to screen height
		e.pixelRatio = 1
		e.zoomAmount = 1
		outputFrameRatio := sourceFrameRatio * e.pixelRatio / outputPixelRatio
		newHeight := screenWidth / outputFrameRatio
		if newHeight > screenHeight {
			newHeight = screenHeight
		}
		if newHeight > 0 && e.sourceHeight > 0 {
			e.zoomAmount = float64(e.sourceHeight) / newHeight
		}

	default:
		e.viewMode = ViewModeNormal
		e.pixelRatio = 1
		e.zoomAmount = 1
	}

	if !(e.pixelRatio > 0) || math.IsInf(e.pixelRatio, 0) {
		e.pixelRatio = 1
	}
	if !(e.zoomAmount > 0) || math.IsInf(e.zoomAmount, 0) {
		e.zoomAmount = 1
	}
}

// ManageRenderArea resets the source rect to the full frame and recomputes
// the destination rect inside the display's view window.
func (e *Engine) ManageRenderArea() {
	e.viewRect = e.display.View
	e.sourceRect = NewRect(0, 0, float64(e.sourceWidth), float64(e.sourceHeight))

	e.CalcNormalRenderRect(e.viewRect.X1, e.viewRect.Y1, e.viewRect.Width(), e.viewRect.Height(),
		e.AspectRatio()*e.pixelRatio, e.zoomAmount)
}

// CalcNormalRenderRect fits the frame into the width x height area at
// (offsetX, offsetY) keeping inputFrameRatio within the allowed error, then
// applies zoom, centering, vertical shift, rounding and clipping.
func (e *Engine) CalcNormalRenderRect(offsetX, offsetY, width, height, inputFrameRatio, zoomAmount float64) {
	if width == 0 || height == 0 {
		e.destRect = Rect{}
		return
	}

	outputFrameRatio := inputFrameRatio / e.display.Screen.pixelRatio()

	allowed := e.AllowedErrorInAspect
	correction := width/height/outputFrameRatio - 1
	if correction > allowed {
		correction = allowed
	}
	if correction < -allowed {
		correction = -allowed
	}
	outputFrameRatio *= 1 + correction

	newWidth := width
	newHeight := newWidth / outputFrameRatio
	if newHeight > height {
		newHeight = height
		newWidth = newHeight * outputFrameRatio
	}

	newWidth *= zoomAmount
	newHeight *= zoomAmount

	// Less than a pixel off, use the whole area
	if math.Abs(newWidth-width) < 1 {
		newWidth = width
	}
	if math.Abs(newHeight-height) < 1 {
		newHeight = height
	}

	posY := (height - newHeight) / 2
	posX := (width - newWidth) / 2

	shift := clamp(e.VerticalShift, -2, 2)

	blackBarSize := math.Max((height-newHeight)/2, 0)
	posY += blackBarSize * clamp(shift, -1, 1)

	shiftRange := math.Min(newHeight, newHeight-(newHeight-height)/2)
	if shift > 1 {
		posY += shiftRange * (shift - 1)
	} else if shift < -1 {
		posY += shiftRange * (shift + 1)
	}

	e.destRect.X1 = roundInt(posX + offsetX)
	e.destRect.X2 = e.destRect.X1 + roundInt(newWidth)
	e.destRect.Y1 = roundInt(posY + offsetY)
	e.destRect.Y2 = e.destRect.Y1 + roundInt(newHeight)

	if e.display.Clip {
		original := e.destRect
		e.destRect = e.destRect.Intersect(NewRect(offsetX, offsetY, width, height))
		if e.destRect != original && original.Width() > 0 && original.Height() > 0 {
			scaleX := e.sourceRect.Width() / original.Width()
			scaleY := e.sourceRect.Height() / original.Height()
			e.sourceRect.X1 += (e.destRect.X1 - original.X1) * scaleX
			e.sourceRect.Y1 += (e.destRect.Y1 - original.Y1) * scaleY
			e.sourceRect.X2 += (e.destRect.X2 - original.X2) * scaleX
			e.sourceRect.Y2 += (e.destRect.Y2 - original.Y2) * scaleY
		}
	}

	if e.oldDestRect != e.destRect || e.oldOrientation != e.orientation {
		e.ReorderDrawPoints()
		e.oldDestRect = e.destRect
		e.oldOrientation = e.orientation
	}
}

// ReorderDrawPoints rotates the destination corners by the source
// orientation. For 90 and 270 degrees the quad is resized around the view
// center so the rotated image keeps its aspect ratio.
func (e *Engine) ReorderDrawPoints() {
	e.reorders++

	corners := e.destRect.Corners()

	changeAspect := false
	pointOffset := 0
	if e.RotationSupported {
		switch e.orientation {
		case 90:
			pointOffset = 1
			changeAspect = true
		case 180:
			pointOffset = 2
		case 270:
			pointOffset = 3
			changeAspect = true
		}
	}

	var diffX, diffY, centerX, centerY float64

	if changeAspect {
		newWidth := e.destRect.Height()
		newHeight := e.destRect.Width()
		diffWidth := newWidth - e.destRect.Width()
		diffHeight := newHeight - e.destRect.Height()

		if diffWidth > 0 || diffHeight > 0 {
			aspect := e.AspectRatio()
			if diffWidth > diffHeight {
				newWidth = e.destRect.Width()
				newHeight *= aspect
			} else {
				newHeight = e.destRect.Height()
				newWidth /= aspect
			}
		}

		centerX = e.viewRect.X1 + e.viewRect.Width()/2
		centerY = e.viewRect.Y1 + e.viewRect.Height()/2
		diffX = newWidth / 2
		diffY = newHeight / 2
	}

	for dst, src := 0, pointOffset; dst < 4; dst, src = dst+1, (src+1)%4 {
		if !changeAspect {
			e.rotated[dst] = corners[src]
			continue
		}
		switch src {
		case 0:
			e.rotated[dst] = Point{centerX - diffX, centerY - diffY}
		case 1:
			e.rotated[dst] = Point{centerX + diffX, centerY - diffY}
		case 2:
			e.rotated[dst] = Point{centerX + diffX, centerY + diffY}
		case 3:
			e.rotated[dst] = Point{centerX - diffX, centerY + diffY}
		}
	}
}

// SourceRect returns the region of the source frame to sample.
func (e *Engine) SourceRect() Rect { return e.sourceRect }

// DestRect returns the on-screen rectangle of the frame.
func (e *Engine) DestRect() Rect { return e.destRect }

// ViewRect returns the view window used by the last ManageRenderArea.
func (e *Engine) ViewRect() Rect { return e.viewRect }

// RotatedDestCoords returns the destination corners in draw order.
func (e *Engine) RotatedDestCoords() [4]Point { return e.rotated }

// ReorderCount returns how many times the corners have been recomputed.
func (e *Engine) ReorderCount() int { return e.reorders }

// Geometry returns a snapshot of the current geometry.
func (e *Engine) Geometry() RenderGeometry {
	return RenderGeometry{
		SourceRect:        e.sourceRect,
		DestRect:          e.destRect,
		ViewRect:          e.viewRect,
		ZoomAmount:        e.zoomAmount,
		PixelRatio:        e.pixelRatio,
		NonLinearStretch:  e.nonLinearStretch,
		RotatedDestCoords: e.rotated,
	}
}
