//go:build !ios && !android

package viewer

import (
	"context"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/user-none/retrovideo/capture"
	"github.com/user-none/retrovideo/display"
	"github.com/user-none/retrovideo/geometry"
	"github.com/user-none/retrovideo/logging"
	"github.com/user-none/retrovideo/player"
	"github.com/user-none/retrovideo/processinfo"
	"github.com/user-none/retrovideo/renderer"
	"github.com/user-none/retrovideo/rendermanager"
	"github.com/user-none/retrovideo/storage"
)

// action is a user command bound to a key.
type action int

const (
	actionNone action = iota
	actionNextViewMode
	actionNextScaling
	actionToggleFullscreen
	actionLeaveFullscreen
	actionTogglePause
	actionScreenshot
	actionCopyFrame
	actionLogStats
)

const captureTimeout = 2 * time.Second

// game implements ebiten.Game around the render manager.
type game struct {
	ctx      *display.Context
	rm       *rendermanager.Manager
	player   *player.Player
	settings *storage.GameSettings
	stats    *processinfo.Cache
	cfg      *storage.Config
	log      *slog.Logger

	// Replaced in tests.
	saveScreenshot func(img *capture.Capture) (string, error)
	copyFrame      func(img *capture.Capture) error
	saveConfig     func(cfg *storage.Config) error
}

func newGame(ctx *display.Context, rm *rendermanager.Manager, p *player.Player, settings *storage.GameSettings, stats *processinfo.Cache, log *slog.Logger) *game {
	return &game{
		ctx:            ctx,
		rm:             rm,
		player:         p,
		settings:       settings,
		stats:          stats,
		log:            logging.Or(log),
		saveScreenshot: writeScreenshot,
		copyFrame:      copyToClipboard,
		saveConfig:     storage.SaveConfig,
	}
}

func writeScreenshot(c *capture.Capture) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
	defer cancel()
	img, err := c.Wait(ctx)
	if err != nil {
		return "", err
	}
	dir, err := storage.GetScreenshotDir()
	if err != nil {
		return "", err
	}
	return capture.SaveScreenshot(img, dir)
}

func copyToClipboard(c *capture.Capture) error {
	ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
	defer cancel()
	img, err := c.Wait(ctx)
	if err != nil {
		return err
	}
	return capture.CopyToClipboard(img)
}

// pollAction maps this tick's key presses to an action.
func pollAction() action {
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		return actionNextViewMode
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		return actionNextScaling
	case inpututil.IsKeyJustPressed(ebiten.KeyF11):
		return actionToggleFullscreen
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return actionLeaveFullscreen
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		return actionTogglePause
	case inpututil.IsKeyJustPressed(ebiten.KeyF12) && shift:
		return actionCopyFrame
	case inpututil.IsKeyJustPressed(ebiten.KeyF12):
		return actionScreenshot
	case inpututil.IsKeyJustPressed(ebiten.KeyI):
		return actionLogStats
	}
	return actionNone
}

// Update implements ebiten.Game.
func (g *game) Update() error {
	g.ctx.ProcessMessages()
	g.handle(pollAction())

	select {
	case <-g.player.Done():
		if err := g.player.Err(); err != nil {
			return err
		}
	default:
	}
	return nil
}

func (g *game) handle(a action) {
	switch a {
	case actionNextViewMode:
		mode := nextViewMode(g.rm.RenderViewMode(), g.viewModeSupported)
		g.rm.SetRenderViewMode(mode)
		// Store what the backend applied, not what was asked for.
		if g.rm.Backend() != nil {
			mode = g.rm.RenderViewMode()
		}
		g.settings.SetViewMode(mode)
		g.persist()
		g.log.Info("view mode changed", "mode", mode.String())
	case actionNextScaling:
		sm := nextScaling(g.rm.ScalingMethod(), g.rm.SupportsScalingMethod)
		g.rm.SetScalingMethod(sm)
		g.settings.SetScalingMethod(sm)
		g.persist()
		g.log.Info("scaling method changed", "method", sm.String())
	case actionToggleFullscreen:
		g.ctx.ToggleFullscreen()
	case actionLeaveFullscreen:
		g.ctx.LeaveFullScreenVideo()
	case actionTogglePause:
		if g.player.Paused() {
			g.player.Resume()
		} else {
			g.player.Pause()
		}
	case actionScreenshot:
		c := g.capture()
		go func() {
			path, err := g.saveScreenshot(c)
			if err != nil {
				g.log.Error("screenshot failed", "error", err)
				return
			}
			g.log.Info("screenshot saved", "path", path)
		}()
	case actionCopyFrame:
		c := g.capture()
		go func() {
			if err := g.copyFrame(c); err != nil {
				g.log.Error("copy to clipboard failed", "error", err)
				return
			}
			g.log.Info("frame copied to clipboard")
		}()
	case actionLogStats:
		info := g.stats.Snapshot()
		st := g.rm.Stats()
		g.log.Info("video stats",
			"state", g.rm.State().String(),
			"format", info.PixelFormat,
			"width", info.Width,
			"height", info.Height,
			"fps", info.Fps,
			"dar", info.DAR,
			"queued", st.Queued,
			"dropped", st.Dropped,
			"rendered", st.Rendered,
			"uploadErrors", st.UploadErrors,
			"droppedMessages", g.ctx.Dropped(),
		)
	}
}

// capture grabs the displayed frame at its source size.
func (g *game) capture() *capture.Capture {
	c := capture.New(0, 0)
	g.rm.Capture(c)
	return c
}

// persist writes the current video settings back to the config file.
func (g *game) persist() {
	if g.cfg == nil {
		return
	}
	g.cfg.Video = g.settings.VideoConfig()
	if err := g.saveConfig(g.cfg); err != nil {
		g.log.Warn("failed to save config", "error", err)
	}
}

// nextScaling returns the scaling method after cur that the backend
// supports, wrapping around. cur is returned when nothing else is
// supported.
func (g *game) viewModeSupported(m geometry.ViewMode) bool {
	return m != geometry.ViewModeStretch16x9Nonlinear || g.rm.SupportsRenderFeature(renderer.FeatureNonLinearStretch)
}

// nextViewMode returns the view mode after cur that supported accepts.
func nextViewMode(cur geometry.ViewMode, supported func(geometry.ViewMode) bool) geometry.ViewMode {
	m := cur
	for range geometry.ViewModes {
		m = m.Next()
		if supported(m) {
			return m
		}
	}
	return cur
}

func nextScaling(cur renderer.ScalingMethod, supported func(renderer.ScalingMethod) bool) renderer.ScalingMethod {
	idx := -1
	for i, m := range renderer.ScalingMethods {
		if m == cur {
			idx = i
			break
		}
	}
	n := len(renderer.ScalingMethods)
	for step := 1; step <= n; step++ {
		m := renderer.ScalingMethods[(idx+step+n)%n]
		if supported(m) {
			return m
		}
	}
	return cur
}

// Draw implements ebiten.Game.
func (g *game) Draw(screen *ebiten.Image) {
	g.ctx.BeginFrame(screen)
	g.rm.FrameMove()
	g.rm.Render(true, 255)
}

// Layout implements ebiten.Game.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := 1.0
	if m := ebiten.Monitor(); m != nil {
		s = m.DeviceScaleFactor()
	}
	w, h := int(float64(outsideWidth)*s), int(float64(outsideHeight)*s)
	g.ctx.Layout(w, h)
	return w, h
}
