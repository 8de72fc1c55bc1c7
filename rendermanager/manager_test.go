package rendermanager

import (
	"bytes"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/user-none/retrovideo/capture"
	"github.com/user-none/retrovideo/geometry"
	"github.com/user-none/retrovideo/graphics"
	"github.com/user-none/retrovideo/graphics/graphicstest"
	"github.com/user-none/retrovideo/pixfmt"
	"github.com/user-none/retrovideo/processinfo"
	"github.com/user-none/retrovideo/renderer"
	"github.com/user-none/retrovideo/storage"
)

var errAlloc = errors.New("allocation failed")

// fakeBackend records the calls made by the manager.
type fakeBackend struct {
	ctx          *graphicstest.Context
	configureErr error

	mu              sync.Mutex
	configured      bool
	configures      int
	frames          [][]byte
	renders         int
	flushes         int
	deinits         int
	lockedOnRender  bool
	scaling         renderer.ScalingMethod
	viewMode        geometry.ViewMode
	captureRequests int
}

func (f *fakeBackend) Name() string         { return "fake" }
func (f *fakeBackend) API() renderer.API     { return renderer.APIOpenGL }
func (f *fakeBackend) IsConfigured() bool    { f.mu.Lock(); defer f.mu.Unlock(); return f.configured }
func (f *fakeBackend) Stats() renderer.Stats { return renderer.Stats{} }

func (f *fakeBackend) Configure(format pixfmt.Format, width, height, orientation int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configures++
	if f.configureErr != nil {
		f.configured = false
		return f.configureErr
	}
	f.configured = true
	return nil
}

func (f *fakeBackend) AddFrame(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, data)
}

func (f *fakeBackend) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
}

func (f *fakeBackend) RenderUpdate(clear bool, alpha uint8) {
	locked := false
	if f.ctx != nil && f.ctx.TryLock() {
		f.ctx.Unlock()
	} else if f.ctx != nil {
		locked = true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders++
	f.lockedOnRender = locked
}

func (f *fakeBackend) Deinitialize() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deinits++
	f.configured = false
}

func (f *fakeBackend) SupportsFeature(ft renderer.Feature) bool {
	return ft == renderer.FeatureZoom
}

func (f *fakeBackend) SupportsScalingMethod(m renderer.ScalingMethod) bool {
	return m == renderer.ScalingLinear
}

func (f *fakeBackend) ScalingMethod() renderer.ScalingMethod {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scaling
}

func (f *fakeBackend) SetScalingMethod(m renderer.ScalingMethod) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scaling = m
}

func (f *fakeBackend) ViewMode() geometry.ViewMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewMode
}

func (f *fakeBackend) SetViewMode(mode geometry.ViewMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewMode = mode
}

func (f *fakeBackend) Geometry() renderer.Geometry { return renderer.Geometry{} }

func (f *fakeBackend) Capture(c *capture.Capture) {
	f.mu.Lock()
	f.captureRequests++
	f.mu.Unlock()
	c.Fail(capture.ErrNoFrame)
}

// registerBackend registers factory under name for the duration of the test.
func registerBackend(t *testing.T, name string, factory renderer.Factory) {
	t.Helper()
	renderer.Register(name, factory)
	t.Cleanup(func() { renderer.Unregister(name) })
}

type harness struct {
	m        *Manager
	ctx      *graphicstest.Context
	msgs     *graphicstest.Messenger
	settings *storage.GameSettings
	fake     *fakeBackend
}

func newHarness(t *testing.T, policy string, configureErr error) *harness {
	t.Helper()
	h := &harness{
		ctx:  graphicstest.NewContext(1920, 1080),
		msgs: &graphicstest.Messenger{},
	}
	h.fake = &fakeBackend{ctx: h.ctx, configureErr: configureErr}
	registerBackend(t, "fake", func(renderer.Environment) renderer.Backend { return h.fake })

	h.settings = storage.NewGameSettings(storage.VideoConfig{
		ViewMode:          "stretch4x3",
		ScalingMethod:     "cubic",
		AdjustRefreshRate: policy,
		Backend:           "fake",
	})
	h.m = New(Options{Context: h.ctx, Messenger: h.msgs, Settings: h.settings})
	return h
}

func TestManager_ConfigureHandshake(t *testing.T) {
	h := newHarness(t, "off", nil)
	h.m.Initialize()

	if h.m.Backend() != h.fake {
		t.Fatal("expected the preferred backend")
	}
	if h.m.IsConfigured() {
		t.Fatal("configured before Configure")
	}

	if !h.m.Configure(pixfmt.RGB565, 256, 224, 0) {
		t.Fatal("Configure returned false")
	}
	if h.m.State() != StateConfiguring {
		t.Fatalf("state = %v, want configuring", h.m.State())
	}
	if h.m.IsConfigured() {
		t.Fatal("IsConfigured must wait for FrameMove")
	}
	if len(h.msgs.Messages()) != 0 {
		t.Fatalf("messages posted before FrameMove: %v", h.msgs.Messages())
	}

	h.m.FrameMove()
	if !h.m.IsConfigured() {
		t.Fatal("expected configured after FrameMove")
	}
	want := []graphics.Message{graphics.MsgVideoParamsChanged, graphics.MsgSwitchToFullScreen}
	if got := h.msgs.Messages(); !slices.Equal(got, want) {
		t.Fatalf("messages = %v, want %v", got, want)
	}

	h.m.FrameMove()
	if got := h.msgs.Messages(); len(got) != len(want) {
		t.Fatalf("second FrameMove posted again: %v", got)
	}

	// Reconfigure restarts the handshake
	if !h.m.Configure(pixfmt.RGB565, 320, 240, 0) {
		t.Fatal("reconfigure failed")
	}
	if h.m.IsConfigured() {
		t.Fatal("reconfigure must reset the state")
	}
	h.m.FrameMove()
	if !h.m.IsConfigured() {
		t.Fatal("expected configured after second handshake")
	}
}

func TestManager_ConfigureFailure(t *testing.T) {
	h := newHarness(t, "always", errAlloc)
	h.m.Initialize()
	h.m.SetFrameRate(60)

	if h.m.Configure(pixfmt.BGRA, 320, 240, 0) {
		t.Fatal("Configure should fail")
	}
	if h.m.State() != StateUnconfigured {
		t.Fatalf("state = %v, want unconfigured", h.m.State())
	}

	h.m.FrameMove()
	if h.m.IsConfigured() {
		t.Fatal("failed configure must not complete the handshake")
	}
	if len(h.msgs.Messages()) != 0 {
		t.Fatalf("unexpected messages: %v", h.msgs.Messages())
	}
	if len(h.ctx.Resolutions()) != 0 {
		t.Fatalf("unexpected resolution change: %v", h.ctx.Resolutions())
	}

	// A later Configure may succeed
	h.fake.configureErr = nil
	if !h.m.Configure(pixfmt.BGRA, 320, 240, 0) {
		t.Fatal("retry should succeed")
	}
}

func TestManager_NoBackend(t *testing.T) {
	settings := storage.NewGameSettings(storage.VideoConfig{ViewMode: "zoom", ScalingMethod: "linear"})
	m := New(Options{Settings: settings})

	if m.Configure(pixfmt.BGRA, 4, 3, 0) {
		t.Fatal("Configure without backend should fail")
	}
	if m.AddFrame([]byte{1, 2, 3, 4}) {
		t.Fatal("AddFrame without backend should fail")
	}
	m.Render(true, 255)
	m.Flush()
	m.FrameMove()

	if m.ScalingMethod() != renderer.ScalingLinear {
		t.Errorf("ScalingMethod = %v, want stored linear", m.ScalingMethod())
	}
	if m.RenderViewMode() != geometry.ViewModeZoom {
		t.Errorf("RenderViewMode = %v, want stored zoom", m.RenderViewMode())
	}
	if m.SupportsRenderFeature(renderer.FeatureZoom) {
		t.Error("no backend supports nothing")
	}
	if m.SupportsScalingMethod(renderer.ScalingNearest) {
		t.Error("no backend supports nothing")
	}

	c := capture.New(0, 0)
	m.Capture(c)
	if c.State() != capture.StateFailed {
		t.Errorf("capture state = %v, want failed", c.State())
	}
}

func TestManager_SettingsCallbacks(t *testing.T) {
	h := newHarness(t, "off", nil)
	h.m.Initialize()

	if !h.m.SupportsRenderFeature(renderer.FeatureZoom) || h.m.SupportsRenderFeature(renderer.FeatureRotation) {
		t.Error("feature support not delegated")
	}
	if !h.m.SupportsScalingMethod(renderer.ScalingLinear) {
		t.Error("scaling support not delegated")
	}

	h.m.SetScalingMethod(renderer.ScalingLinear)
	if h.fake.ScalingMethod() != renderer.ScalingLinear || h.m.ScalingMethod() != renderer.ScalingLinear {
		t.Error("SetScalingMethod not delegated")
	}
	h.m.SetRenderViewMode(geometry.ViewModeOriginal)
	if h.m.RenderViewMode() != geometry.ViewModeOriginal {
		t.Error("SetRenderViewMode not delegated")
	}

	h.m.Capture(capture.New(0, 0))
	if h.fake.captureRequests != 1 {
		t.Errorf("capture requests = %d, want 1", h.fake.captureRequests)
	}
}

func TestManager_RenderHoldsContextLock(t *testing.T) {
	h := newHarness(t, "off", nil)
	h.m.Initialize()
	h.m.Configure(pixfmt.BGRA, 4, 3, 0)

	h.m.Render(true, 255)

	if h.fake.renders != 1 {
		t.Fatalf("renders = %d, want 1", h.fake.renders)
	}
	if !h.fake.lockedOnRender {
		t.Error("graphics context was not locked during RenderUpdate")
	}
	if !h.ctx.TryLock() {
		t.Fatal("graphics context left locked")
	}
	h.ctx.Unlock()
}

func TestManager_AddFrameAndFlush(t *testing.T) {
	h := newHarness(t, "off", nil)
	h.m.Initialize()
	h.m.Configure(pixfmt.BGRA, 4, 3, 0)

	if !h.m.AddFrame([]byte{1}) {
		t.Fatal("AddFrame returned false")
	}
	h.m.Flush()
	if len(h.fake.frames) != 1 || h.fake.flushes != 1 {
		t.Fatalf("frames %d flushes %d", len(h.fake.frames), h.fake.flushes)
	}

	h.m.Deinitialize()
	if h.fake.deinits != 1 {
		t.Fatalf("deinits = %d, want 1", h.fake.deinits)
	}
	if h.m.AddFrame([]byte{1}) {
		t.Fatal("AddFrame after Deinitialize should fail")
	}
	h.m.Deinitialize()
	if h.fake.deinits != 1 {
		t.Fatal("second Deinitialize reached the backend")
	}
}

func TestManager_UpdateResolution(t *testing.T) {
	tests := []struct {
		name       string
		policy     string
		fps        float64
		firstPass  int
		afterRetry int
	}{
		{"off", "off", 60, 0, 0},
		{"always", "always", 60, 1, 2},
		{"onstart", "onstart", 50, 1, 1},
		{"always without fps", "always", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.policy, nil)
			h.ctx.BestResolution = graphics.ResolutionPAL4x3
			h.m.Initialize()
			h.m.SetFrameRate(tt.fps)
			h.m.Configure(pixfmt.RGB565, 256, 224, 0)

			h.m.FrameMove()
			if got := len(h.ctx.Resolutions()); got != tt.firstPass {
				t.Fatalf("resolution changes = %d, want %d", got, tt.firstPass)
			}

			h.m.TriggerUpdateResolution()
			h.m.FrameMove()
			if got := len(h.ctx.Resolutions()); got != tt.afterRetry {
				t.Fatalf("resolution changes after trigger = %d, want %d", got, tt.afterRetry)
			}
			if tt.afterRetry > 0 && h.ctx.Resolutions()[0] != graphics.ResolutionPAL4x3 {
				t.Fatalf("resolution = %v, want PAL", h.ctx.Resolutions()[0])
			}
		})
	}
}

func TestManager_UpdateResolutionWaitsForFullScreen(t *testing.T) {
	h := newHarness(t, "always", nil)
	h.ctx.FullScreenVideo = false
	h.m.Initialize()
	h.m.SetFrameRate(60)
	h.m.Configure(pixfmt.RGB565, 256, 224, 0)

	h.m.FrameMove()
	if got := h.msgs.Messages(); !slices.Equal(got, []graphics.Message{graphics.MsgSwitchToFullScreen}) {
		t.Fatalf("messages = %v, want only the full-screen request", got)
	}
	if len(h.ctx.Resolutions()) != 0 {
		t.Fatal("resolution changed while windowed")
	}

	h.ctx.FullScreenVideo = true
	h.m.FrameMove()
	if len(h.ctx.Resolutions()) != 1 {
		t.Fatalf("resolution changes = %d, want 1", len(h.ctx.Resolutions()))
	}
	if got := h.msgs.Messages(); got[len(got)-1] != graphics.MsgVideoParamsChanged {
		t.Fatalf("last message = %v, want video params changed", got[len(got)-1])
	}
}

func TestManager_PreferredBackendFallback(t *testing.T) {
	if len(renderer.Available()) == 0 {
		t.Skip("no backends registered on this platform")
	}
	settings := storage.NewGameSettings(storage.VideoConfig{Backend: "does-not-exist"})
	m := New(Options{Context: graphicstest.NewContext(640, 480), Settings: settings})
	m.Initialize()
	defer m.Deinitialize()

	b := m.Backend()
	if b == nil {
		t.Fatal("expected fallback backend")
	}
	if b.Name() != renderer.Available()[0] {
		t.Errorf("backend = %q, want %q", b.Name(), renderer.Available()[0])
	}
}

func TestVideo_Stream(t *testing.T) {
	ctx := graphicstest.NewContext(1920, 1080)
	msgs := &graphicstest.Messenger{}
	registerBackend(t, "test-gles", renderer.NewGLES)

	settings := storage.NewGameSettings(storage.VideoConfig{Backend: "test-gles"})
	m := New(Options{Context: ctx, Messenger: msgs, Settings: settings})
	cache := processinfo.NewCache()
	v := NewVideo(m, processinfo.New(cache), nil)

	if m.Backend() == nil || m.Backend().Name() != renderer.NameOpenGLES {
		t.Fatalf("backend = %v, want opengles", m.Backend())
	}

	if !v.OpenPixelStream(pixfmt.BGRA, 4, 3, 0) {
		t.Fatal("OpenPixelStream failed")
	}
	v.SetFrameRate(59.94)

	info := cache.Snapshot()
	if info.PixelFormat != "bgra" || info.Width != 4 || info.Height != 3 {
		t.Fatalf("telemetry = %+v", info)
	}
	if info.Fps != 59.94 {
		t.Errorf("fps = %v", info.Fps)
	}
	if d := info.DAR - 4.0/3.0; d > 1e-9 || d < -1e-9 {
		t.Errorf("DAR = %v, want 4/3", info.DAR)
	}

	v.AddData(bytes.Repeat([]byte{0x40}, pixfmt.BGRA.FrameSize(4, 3)))
	m.FrameMove()
	m.Render(true, 255)

	if !m.IsConfigured() {
		t.Fatal("expected configured")
	}
	if len(ctx.Dev.Draws()) != 1 {
		t.Fatalf("draws = %d, want 1", len(ctx.Dev.Draws()))
	}
	if s := m.Stats(); s.Queued != 1 || s.Rendered != 1 {
		t.Errorf("stats = %+v", s)
	}

	v.CloseStream()
	info = cache.Snapshot()
	if info.PixelFormat != "" || info.Width != 0 || info.DAR != 1 {
		t.Fatalf("telemetry not reset: %+v", info)
	}

	v.Close()
	if m.Backend() != nil {
		t.Fatal("backend kept after Close")
	}
}

func TestVideo_EncodedStreamUnsupported(t *testing.T) {
	v := NewVideo(New(Options{}), nil, nil)
	if v.OpenEncodedStream("h264") {
		t.Fatal("encoded streams should be rejected")
	}
	v.CloseStream()
	v.Close()
}

func TestDisplayAspect(t *testing.T) {
	tests := []struct {
		w, h, o int
		want    float64
	}{
		{320, 240, 0, 4.0 / 3.0},
		{320, 240, 90, 3.0 / 4.0},
		{720, 480, 0, 720.0 / 480.0 * 8.0 / 9.0 * (720.0 / 480.0) / (4.0 / 3.0)},
		{0, 0, 0, 1},
	}
	for _, tt := range tests {
		got := displayAspect(tt.w, tt.h, tt.o)
		if d := got - tt.want; d > 1e-9 || d < -1e-9 {
			t.Errorf("displayAspect(%d, %d, %d) = %v, want %v", tt.w, tt.h, tt.o, got, tt.want)
		}
	}
}
