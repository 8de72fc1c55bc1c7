// Package rendermanager coordinates stream configuration from the producer
// goroutine with frame presentation on the render goroutine.
package rendermanager

import (
	"log/slog"
	"sync"

	"github.com/user-none/retrovideo/capture"
	"github.com/user-none/retrovideo/geometry"
	"github.com/user-none/retrovideo/graphics"
	"github.com/user-none/retrovideo/logging"
	"github.com/user-none/retrovideo/pixfmt"
	"github.com/user-none/retrovideo/renderer"
	"github.com/user-none/retrovideo/storage"
)

// State is the configuration state of the manager.
type State int

const (
	StateUnconfigured State = iota
	// StateConfiguring means a backend accepted the stream and the
	// full-screen request has not been posted yet.
	StateConfiguring
	StateConfigured
)

func (s State) String() string {
	switch s {
	case StateConfiguring:
		return "configuring"
	case StateConfigured:
		return "configured"
	}
	return "unconfigured"
}

// Settings is the renderer settings plus the values only the manager uses.
type Settings interface {
	renderer.Settings
	RefreshPolicy() storage.RefreshPolicy
	// Backend is the preferred backend name, empty for the default.
	Backend() string
}

// Options holds the collaborators of a Manager.
type Options struct {
	Context   graphics.Context
	Messenger graphics.Messenger
	Settings  Settings
	Logger    *slog.Logger
}

// Manager owns the active backend and its configuration state.
//
// Configure, AddFrame and Flush are called from the producer goroutine.
// FrameMove, Render and IsConfigured are called from the render goroutine.
type Manager struct {
	ctx       graphics.Context
	messenger graphics.Messenger
	settings  Settings
	log       *slog.Logger

	mu                      sync.Mutex
	state                   State
	backend                 renderer.Backend
	format                  pixfmt.Format
	width, height           int
	orientation             int
	fps                     float64
	triggerUpdateResolution bool
	streamStart             bool
}

// New creates a manager. A nil Settings uses the default configuration.
func New(opts Options) *Manager {
	settings := opts.Settings
	if settings == nil {
		settings = storage.NewGameSettings(storage.DefaultConfig().Video)
	}
	return &Manager{
		ctx:       opts.Context,
		messenger: opts.Messenger,
		settings:  settings,
		log:       logging.Or(opts.Logger),
	}
}

func (m *Manager) environment() renderer.Environment {
	return renderer.Environment{Context: m.ctx, Settings: m.settings, Logger: m.log}
}

// createBackend builds the preferred backend, falling back to the first
// registered one.
func (m *Manager) createBackend() renderer.Backend {
	env := m.environment()
	if name := m.settings.Backend(); name != "" {
		b, err := renderer.Create(name, env)
		if err == nil {
			return b
		}
		m.log.Warn("preferred render backend unavailable", "backend", name, "error", err)
	}
	return renderer.Default(env)
}

// Initialize creates the backend. It is safe to call more than once.
func (m *Manager) Initialize() {
	m.mu.Lock()
	if m.backend != nil {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	b := m.createBackend()
	if b == nil {
		m.log.Error("no render backend registered")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.backend != nil {
		b.Deinitialize()
		return
	}
	m.backend = b
	m.log.Info("render backend created", "backend", b.Name(), "api", b.API())
}

// Deinitialize releases the backend and returns to the unconfigured state.
func (m *Manager) Deinitialize() {
	m.mu.Lock()
	b := m.backend
	m.backend = nil
	m.state = StateUnconfigured
	m.mu.Unlock()

	if b != nil {
		b.Deinitialize()
	}
}

// Configure prepares the backend for a new stream. It returns false when
// there is no backend or the backend failed to allocate its resources.
func (m *Manager) Configure(format pixfmt.Format, width, height, orientation int) bool {
	m.mu.Lock()
	m.state = StateUnconfigured
	b := m.backend
	m.mu.Unlock()

	if b == nil {
		return false
	}

	if err := b.Configure(format, width, height, orientation); err != nil {
		m.log.Error("failed to configure renderer", "backend", b.Name(),
			"format", format, "width", width, "height", height, "error", err)
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.backend != b {
		// Deinitialized while configuring.
		return false
	}
	m.format = format
	m.width = width
	m.height = height
	m.orientation = orientation
	m.triggerUpdateResolution = true
	m.streamStart = true
	m.state = StateConfiguring
	return true
}

// AddFrame hands a frame to the backend. It returns false when there is
// no backend.
func (m *Manager) AddFrame(data []byte) bool {
	b := m.currentBackend()
	if b == nil {
		return false
	}
	b.AddFrame(data)
	return true
}

// IsConfigured reports whether the full-screen handshake has completed.
func (m *Manager) IsConfigured() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConfigured
}

// State returns the current configuration state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// FrameMove advances the state machine once per render tick.
func (m *Manager) FrameMove() {
	m.UpdateResolution()

	m.mu.Lock()
	post := m.state == StateConfiguring
	if post {
		m.state = StateConfigured
	}
	m.mu.Unlock()

	if post {
		m.post(graphics.MsgSwitchToFullScreen)
	}
}

// Render draws the latest frame while holding the graphics context lock.
func (m *Manager) Render(clear bool, alpha uint8) {
	b := m.currentBackend()
	if b == nil {
		return
	}

	if m.ctx != nil {
		m.ctx.Lock()
		defer m.ctx.Unlock()
	}

	b.RenderUpdate(clear, alpha)
}

// Flush discards the queued frame.
func (m *Manager) Flush() {
	if b := m.currentBackend(); b != nil {
		b.Flush()
	}
}

// TriggerUpdateResolution requests a resolution update on the next
// FrameMove.
func (m *Manager) TriggerUpdateResolution() {
	m.mu.Lock()
	m.triggerUpdateResolution = true
	m.mu.Unlock()
}

// SetFrameRate records the stream frame rate used to pick the output mode.
func (m *Manager) SetFrameRate(fps float64) {
	m.mu.Lock()
	m.fps = fps
	m.mu.Unlock()
}

// UpdateResolution applies a pending resolution update. The update waits
// until the video is shown full screen. The refresh policy decides whether
// the output mode follows the frame rate: RefreshAlways on every update,
// RefreshOnStart only for the first update of a stream.
func (m *Manager) UpdateResolution() {
	m.mu.Lock()
	if !m.triggerUpdateResolution || m.ctx == nil {
		m.mu.Unlock()
		return
	}
	fps := m.fps
	start := m.streamStart
	m.mu.Unlock()

	if !m.ctx.IsFullScreenVideo() || !m.ctx.IsFullScreenRoot() {
		return
	}

	policy := m.settings.RefreshPolicy()
	adjust := policy == storage.RefreshAlways || (policy == storage.RefreshOnStart && start)
	if adjust && fps > 0 {
		res := m.ctx.ChooseBestResolution(fps)
		m.log.Info("switching video resolution", "resolution", res, "fps", fps)
		m.ctx.SetVideoResolution(res, fps)
	}

	m.mu.Lock()
	m.triggerUpdateResolution = false
	m.streamStart = false
	m.mu.Unlock()

	m.post(graphics.MsgVideoParamsChanged)
}

func (m *Manager) post(msg graphics.Message) {
	if m.messenger != nil {
		m.messenger.Post(msg)
	}
}

func (m *Manager) currentBackend() renderer.Backend {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend
}

// Backend returns the active backend, or nil.
func (m *Manager) Backend() renderer.Backend {
	return m.currentBackend()
}

// SupportsRenderFeature reports whether the active backend supports f.
func (m *Manager) SupportsRenderFeature(f renderer.Feature) bool {
	if b := m.currentBackend(); b != nil {
		return b.SupportsFeature(f)
	}
	return false
}

// SupportsScalingMethod reports whether the active backend supports sm.
func (m *Manager) SupportsScalingMethod(sm renderer.ScalingMethod) bool {
	if b := m.currentBackend(); b != nil {
		return b.SupportsScalingMethod(sm)
	}
	return false
}

// ScalingMethod returns the backend's scaling method, or the stored
// setting when there is no backend.
func (m *Manager) ScalingMethod() renderer.ScalingMethod {
	if b := m.currentBackend(); b != nil {
		return b.ScalingMethod()
	}
	return m.settings.ScalingMethod()
}

func (m *Manager) SetScalingMethod(sm renderer.ScalingMethod) {
	if b := m.currentBackend(); b != nil {
		b.SetScalingMethod(sm)
	}
}

// RenderViewMode returns the backend's view mode, or the stored setting
// when there is no backend.
func (m *Manager) RenderViewMode() geometry.ViewMode {
	if b := m.currentBackend(); b != nil {
		return b.ViewMode()
	}
	return m.settings.ViewMode()
}

func (m *Manager) SetRenderViewMode(mode geometry.ViewMode) {
	if b := m.currentBackend(); b != nil {
		b.SetViewMode(mode)
	}
}

// Capture delivers the displayed frame into c. c fails with
// capture.ErrNoFrame when there is no backend.
func (m *Manager) Capture(c *capture.Capture) {
	b := m.currentBackend()
	if b == nil {
		c.Fail(capture.ErrNoFrame)
		return
	}
	b.Capture(c)
}

// Stats returns the active backend's frame counters.
func (m *Manager) Stats() renderer.Stats {
	if b := m.currentBackend(); b != nil {
		return b.Stats()
	}
	return renderer.Stats{}
}
