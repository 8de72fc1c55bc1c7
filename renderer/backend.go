// Package renderer implements the video backends that upload decoded frames
// and draw them with the geometry computed for the current view.
package renderer

import (
	"errors"
	"log/slog"

	"github.com/user-none/retrovideo/capture"
	"github.com/user-none/retrovideo/geometry"
	"github.com/user-none/retrovideo/graphics"
	"github.com/user-none/retrovideo/logging"
	"github.com/user-none/retrovideo/pixfmt"
)

var (
	ErrTextureCreate     = errors.New("texture creation failed")
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
	ErrInvalidSize       = errors.New("invalid frame size")
	ErrNotConfigured     = errors.New("renderer not configured")
	ErrNoContext         = errors.New("no graphics context")
	ErrNoBackend         = errors.New("no render backend available")
)

// Backend uploads frames and draws them through one graphics API.
//
// Configure, AddFrame and Flush are called from the producer goroutine.
// RenderUpdate and Capture must be called from a single render goroutine.
// The remaining methods are safe from any goroutine.
type Backend interface {
	Name() string
	API() API

	// Configure allocates buffers and the texture for a stream. On error
	// the backend is left unconfigured.
	Configure(format pixfmt.Format, width, height, orientation int) error
	IsConfigured() bool

	// AddFrame queues a frame. It is dropped when the backend is not
	// configured, data is empty, or a frame is already queued.
	AddFrame(data []byte)

	// Flush discards the queued frame.
	Flush()

	// RenderUpdate draws the latest frame. alpha is the frame opacity.
	RenderUpdate(clear bool, alpha uint8)

	// Deinitialize releases device resources. It is idempotent.
	Deinitialize()

	SupportsFeature(f Feature) bool
	SupportsScalingMethod(m ScalingMethod) bool

	ScalingMethod() ScalingMethod
	SetScalingMethod(m ScalingMethod)
	ViewMode() geometry.ViewMode
	SetViewMode(mode geometry.ViewMode)

	Geometry() Geometry
	Capture(c *capture.Capture)
	Stats() Stats
}

// Settings supplies the per-game video settings.
type Settings interface {
	ViewMode() geometry.ViewMode
	ScalingMethod() ScalingMethod

	// ErrorInAspect is the allowed aspect error in percent.
	ErrorInAspect() int
	VerticalShift() float64
}

// Environment holds the collaborators a backend is built with.
type Environment struct {
	Context  graphics.Context
	Settings Settings
	Logger   *slog.Logger
}

func (e Environment) logger() *slog.Logger {
	return logging.Or(e.Logger)
}

// Geometry is the render geometry together with the scaling method.
type Geometry struct {
	geometry.RenderGeometry
	ScalingMethod ScalingMethod
}

// Stats counts frames through a backend.
type Stats struct {
	Queued       uint64 // frames accepted by AddFrame
	Dropped      uint64 // frames discarded because one was already queued
	Rendered     uint64 // RenderUpdate passes that drew a frame
	UploadErrors uint64 // failed texture uploads
}

// defaultSettings is used when the environment has no settings.
type defaultSettings struct{}

func (defaultSettings) ViewMode() geometry.ViewMode  { return geometry.ViewModeNormal }
func (defaultSettings) ScalingMethod() ScalingMethod { return ScalingNearest }
func (defaultSettings) ErrorInAspect() int           { return 0 }
func (defaultSettings) VerticalShift() float64       { return 0 }
