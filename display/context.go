package display

import (
	"log/slog"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/user-none/retrovideo/geometry"
	"github.com/user-none/retrovideo/graphics"
	"github.com/user-none/retrovideo/logging"
)

// Options configures a Context.
type Options struct {
	// Window defaults to the ebiten window.
	Window Window
	// LimitedColor requests 16-235 output levels.
	LimitedColor bool
	// TVOutput lets ChooseBestResolution pick the 4:3 TV modes.
	TVOutput bool
	// FullscreenOnPlay switches the window to full screen when the video
	// asks for it.
	FullscreenOnPlay bool
	// QueueSize bounds the pending window messages.
	QueueSize int
	Logger    *slog.Logger
}

// Context is a graphics.Context and graphics.Messenger for an ebiten
// game. The embedded mutex is the render lock; the other fields have
// their own lock so they can be read while rendering.
type Context struct {
	sync.Mutex

	dev   *Device
	win   Window
	queue *graphics.Queue
	log   *slog.Logger

	tvOutput         bool
	fullscreenOnPlay bool

	stateMu         sync.RWMutex
	view            geometry.Rect
	screen          geometry.Screen
	resolution      graphics.Resolution
	fullScreenVideo bool
	calibrating     bool
	limitedColor    bool
}

var (
	_ graphics.Context   = (*Context)(nil)
	_ graphics.Messenger = (*Context)(nil)
)

// NewContext returns a context with an empty view. Call Layout before the
// first frame.
func NewContext(opts Options) *Context {
	win := opts.Window
	if win == nil {
		win = EbitenWindow()
	}
	size := opts.QueueSize
	if size <= 0 {
		size = 8
	}
	dev := NewDevice()
	dev.log = logging.Or(opts.Logger)
	return &Context{
		dev:              dev,
		win:              win,
		queue:            graphics.NewQueue(size),
		log:              logging.Or(opts.Logger),
		tvOutput:         opts.TVOutput,
		fullscreenOnPlay: opts.FullscreenOnPlay,
		screen:           geometry.NewScreen(0, 0),
		resolution:       graphics.ResolutionDesktop,
		limitedColor:     opts.LimitedColor,
	}
}

// Layout updates the view window to the game screen size.
func (c *Context) Layout(width, height int) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.view = geometry.NewRect(0, 0, float64(width), float64(height))
	ratio := c.screen.PixelRatio
	c.screen = geometry.NewScreen(width, height)
	c.screen.PixelRatio = ratio
}

// BeginFrame points the device at the screen image for this Draw.
func (c *Context) BeginFrame(screen *ebiten.Image) {
	c.dev.BeginFrame(screen)
}

// Post queues a window message. It never blocks.
func (c *Context) Post(msg graphics.Message) {
	c.queue.Post(msg)
}

// ProcessMessages handles the queued window messages. Call it from the
// game's Update.
func (c *Context) ProcessMessages() int {
	return c.queue.Drain(c.handle)
}

func (c *Context) handle(msg graphics.Message) {
	switch msg {
	case graphics.MsgSwitchToFullScreen:
		c.stateMu.Lock()
		c.fullScreenVideo = true
		c.stateMu.Unlock()
		if c.fullscreenOnPlay && !c.win.IsFullscreen() {
			c.win.SetFullscreen(true)
		}
		c.log.Debug("switched to full-screen video")
	case graphics.MsgVideoParamsChanged:
		c.log.Info("video parameters changed", "resolution", c.VideoResolution())
	default:
		c.log.Warn("unknown window message", "message", msg)
	}
}

// LeaveFullScreenVideo returns to the windowed GUI state.
func (c *Context) LeaveFullScreenVideo() {
	c.stateMu.Lock()
	c.fullScreenVideo = false
	c.stateMu.Unlock()
}

// ToggleFullscreen switches the window between full screen and windowed.
func (c *Context) ToggleFullscreen() {
	c.win.SetFullscreen(!c.win.IsFullscreen())
}

// SetCalibrating toggles overscan calibration, which disables clipping.
func (c *Context) SetCalibrating(calibrating bool) {
	c.stateMu.Lock()
	c.calibrating = calibrating
	c.stateMu.Unlock()
}

func (c *Context) SetLimitedColor(limited bool) {
	c.stateMu.Lock()
	c.limitedColor = limited
	c.stateMu.Unlock()
}

// Dropped returns the number of window messages lost to a full queue.
func (c *Context) Dropped() uint64 { return c.queue.Dropped() }

func (c *Context) Device() graphics.Device { return c.dev }

func (c *Context) ViewWindow() geometry.Rect {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.view
}

func (c *Context) Screen() geometry.Screen {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.screen
}

func (c *Context) VideoResolution() graphics.Resolution {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.resolution
}

func (c *Context) IsFullScreenVideo() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.fullScreenVideo
}

// IsFullScreenRoot reports whether the window itself is full screen.
func (c *Context) IsFullScreenRoot() bool { return c.win.IsFullscreen() }

func (c *Context) IsCalibrating() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.calibrating
}

func (c *Context) UseLimitedColor() bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.limitedColor
}

// ChooseBestResolution returns a 4:3 TV mode for the frame rate when TV
// output is enabled, and the desktop mode otherwise.
func (c *Context) ChooseBestResolution(fps float64) graphics.Resolution {
	if !c.tvOutput || fps <= 0 {
		return graphics.ResolutionDesktop
	}
	if math.Abs(fps-50) < 1 {
		return graphics.ResolutionPAL4x3
	}
	return graphics.ResolutionNTSC4x3
}

// SetVideoResolution switches the output mode. The game tick rate follows
// fps and the screen pixel ratio follows the mode.
func (c *Context) SetVideoResolution(res graphics.Resolution, fps float64) {
	c.stateMu.Lock()
	c.resolution = res
	c.screen.PixelRatio = resolutionPixelRatio(res)
	c.stateMu.Unlock()

	if fps > 0 {
		c.win.SetTPS(int(math.Round(fps)))
	}
}

// resolutionPixelRatio is the pixel aspect of a 720 pixel wide 4:3 mode.
func resolutionPixelRatio(res graphics.Resolution) float64 {
	switch res {
	case graphics.ResolutionPAL4x3:
		return geometry.PALPixelRatio
	case graphics.ResolutionPAL60, graphics.ResolutionNTSC4x3, graphics.ResolutionHDTV480p4x3:
		return geometry.NTSCPixelRatio
	}
	return 1
}
