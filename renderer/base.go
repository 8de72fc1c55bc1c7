package renderer

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/user-none/retrovideo/capture"
	"github.com/user-none/retrovideo/geometry"
	"github.com/user-none/retrovideo/graphics"
	"github.com/user-none/retrovideo/pixfmt"
)

// base holds what every backend shares: stream format, geometry, settings,
// the queued-frame flag and frame statistics.
//
// mu guards the stream configuration. renderMu guards the render-side state
// (geometry, scaling, texture). Lock order is mu then renderMu.
type base struct {
	info     Info
	ctx      graphics.Context
	settings Settings
	log      *slog.Logger

	mu         sync.RWMutex
	configured bool
	format     pixfmt.Format
	width      int
	height     int

	renderMu   sync.Mutex
	engine     *geometry.Engine
	scaling    ScalingMethod
	lastScreen geometry.Screen
	texture    graphics.Texture
	// presented is set once a frame has reached the texture.
	presented bool

	// queued hands one frame from the producer to the render goroutine.
	queued atomic.Bool

	queuedFrames   atomic.Uint64
	droppedFrames  atomic.Uint64
	renderedFrames atomic.Uint64
	uploadErrors   atomic.Uint64
}

func newBase(info Info, env Environment) base {
	settings := env.Settings
	if settings == nil {
		settings = defaultSettings{}
	}
	return base{
		info:     info,
		ctx:      env.Context,
		settings: settings,
		log:      env.logger().With("renderer", info.Name),
		engine:   geometry.NewEngine(),
		scaling:  info.DefaultScaling,
	}
}

func (b *base) Name() string { return b.info.Name }
func (b *base) API() API     { return b.info.API }

func (b *base) IsConfigured() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.configured
}

func (b *base) SupportsFeature(f Feature) bool {
	return HasFeature(b.info.Name, f)
}

func (b *base) SupportsScalingMethod(m ScalingMethod) bool {
	return HasScalingMethod(b.info.Name, m)
}

func (b *base) ScalingMethod() ScalingMethod {
	b.renderMu.Lock()
	defer b.renderMu.Unlock()
	return b.scaling
}

// SetScalingMethod ignores methods the backend does not support.
func (b *base) SetScalingMethod(m ScalingMethod) {
	b.renderMu.Lock()
	defer b.renderMu.Unlock()
	b.setScalingLocked(m)
}

func (b *base) setScalingLocked(m ScalingMethod) {
	if b.SupportsScalingMethod(m) {
		b.scaling = m
	}
}

func (b *base) ViewMode() geometry.ViewMode {
	b.renderMu.Lock()
	defer b.renderMu.Unlock()
	return b.engine.ViewMode()
}

// SetViewMode ignores the non-linear 16:9 stretch when it is unsupported.
func (b *base) SetViewMode(mode geometry.ViewMode) {
	b.renderMu.Lock()
	defer b.renderMu.Unlock()
	b.setViewModeLocked(mode)
}

func (b *base) setViewModeLocked(mode geometry.ViewMode) {
	if mode == geometry.ViewModeStretch16x9Nonlinear && !b.SupportsFeature(FeatureNonLinearStretch) {
		return
	}
	display := b.display()
	b.engine.SetDisplay(display)
	b.lastScreen = display.Screen
	b.engine.SetViewMode(mode)
}

// display reads the render area inputs from the graphics context.
func (b *base) display() geometry.Display {
	if b.ctx == nil {
		return geometry.Display{}
	}
	screen := b.ctx.Screen()
	screen.TV4x3 = b.ctx.VideoResolution().Is4x3TV()
	return geometry.Display{
		View:   b.ctx.ViewWindow(),
		Screen: screen,
		Clip:   !(b.ctx.IsFullScreenVideo() || b.ctx.IsCalibrating()),
	}
}

// loadSettingsLocked applies the game settings. Caller holds renderMu.
func (b *base) loadSettingsLocked() {
	b.setScalingLocked(b.settings.ScalingMethod())
	b.setViewModeLocked(b.settings.ViewMode())

	b.engine.AllowedErrorInAspect = float64(b.settings.ErrorInAspect()) * 0.01
	if b.SupportsFeature(FeatureVerticalShift) {
		b.engine.VerticalShift = b.settings.VerticalShift()
	}
}

// configureGeometryLocked resets the geometry for a new stream. Caller holds
// renderMu.
func (b *base) configureGeometryLocked(width, height, orientation int) {
	b.engine.RotationSupported = b.SupportsFeature(FeatureRotation)
	b.engine.SetSource(width, height, orientation)
	b.loadSettingsLocked()
	b.manageRenderAreaLocked()
}

// manageRenderAreaLocked recomputes the destination for the current view.
// The view mode is re-derived when the screen changed since it was set.
// Caller holds renderMu.
func (b *base) manageRenderAreaLocked() {
	display := b.display()
	b.engine.SetDisplay(display)
	if display.Screen != b.lastScreen {
		b.lastScreen = display.Screen
		b.engine.SetViewMode(b.engine.ViewMode())
	}
	b.engine.ManageRenderArea()
}

// validateStream checks Configure arguments.
func validateStream(format pixfmt.Format, width, height int) error {
	if !format.Valid() {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return nil
}

// newTexture allocates a frame-sized texture on the context's device.
func (b *base) newTexture(width, height int) (graphics.Texture, error) {
	if b.ctx == nil {
		return nil, ErrNoContext
	}
	tex, err := b.ctx.Device().NewTexture(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %dx%d: %v", ErrTextureCreate, width, height, err)
	}
	return tex, nil
}

// releaseTextureLocked frees the texture. Caller holds renderMu.
func (b *base) releaseTextureLocked() {
	if b.texture != nil {
		b.texture.Release()
		b.texture = nil
	}
}

// canQueue reports whether the queued slot is free. A frame arriving while
// one is already waiting is counted as dropped.
func (b *base) canQueue() bool {
	if b.queued.Load() {
		b.droppedFrames.Add(1)
		return false
	}
	return true
}

// markQueued publishes the frame written to the back buffer.
func (b *base) markQueued() {
	b.queuedFrames.Add(1)
	b.queued.Store(true)
}

func (b *base) Stats() Stats {
	return Stats{
		Queued:       b.queuedFrames.Load(),
		Dropped:      b.droppedFrames.Load(),
		Rendered:     b.renderedFrames.Load(),
		UploadErrors: b.uploadErrors.Load(),
	}
}

func (b *base) Geometry() Geometry {
	b.renderMu.Lock()
	defer b.renderMu.Unlock()
	return Geometry{
		RenderGeometry: b.engine.Geometry(),
		ScalingMethod:  b.scaling,
	}
}

// filterLocked maps the scaling method to a texture filter.
func (b *base) filterLocked() graphics.Filter {
	switch b.scaling {
	case ScalingNearest:
		return graphics.FilterNearest
	case ScalingCubic:
		return graphics.FilterCubic
	}
	return graphics.FilterLinear
}

// clearColour returns black, or limited-range black when the context asks
// for limited colour.
func (b *base) clearColour() color.Color {
	if b.ctx != nil && b.ctx.UseLimitedColor() {
		return graphics.LimitedBlack
	}
	return graphics.Black
}

// blackBars returns the regions of the render target outside the rotated
// destination quad.
func blackBars(coords [4]geometry.Point, width, height float64) []geometry.Rect {
	minX, maxX := coords[0].X, coords[0].X
	minY, maxY := coords[0].Y, coords[0].Y
	for _, p := range coords[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	var bars []geometry.Rect
	if minY > 0 {
		bars = append(bars, geometry.Rect{X1: 0, Y1: 0, X2: width, Y2: minY})
	}
	if maxY < height {
		bars = append(bars, geometry.Rect{X1: 0, Y1: maxY, X2: width, Y2: height})
	}
	if minX > 0 {
		bars = append(bars, geometry.Rect{X1: 0, Y1: minY, X2: minX, Y2: maxY})
	}
	if maxX < width {
		bars = append(bars, geometry.Rect{X1: maxX, Y1: minY, X2: width, Y2: maxY})
	}
	return bars
}

// drawFrameLocked draws the texture with the current geometry. Caller holds
// renderMu.
func (b *base) drawFrameLocked(dev graphics.Device, alpha uint8) {
	if b.texture == nil {
		return
	}
	dev.DrawQuad(b.texture, b.engine.SourceRect(), b.engine.RotatedDestCoords(), graphics.DrawOptions{
		Filter: b.filterLocked(),
		Alpha:  float64(alpha) / 255,
	})
	b.renderedFrames.Add(1)
}

// captureLocked delivers the frame in buf (format f) to c. Caller holds
// renderMu.
func (b *base) captureLocked(c *capture.Capture, buf []byte, f pixfmt.Format) {
	if !b.presented {
		c.Fail(capture.ErrNoFrame)
		return
	}
	c.Begin()
	img, err := pixfmt.DecodeImage(buf, f, b.width, b.height)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Deliver(img)
}
