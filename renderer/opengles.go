package renderer

import (
	"image/color"

	"github.com/user-none/retrovideo/capture"
	"github.com/user-none/retrovideo/graphics"
	"github.com/user-none/retrovideo/pixfmt"
)

// GLES converts each frame to the texture format as it arrives and swaps
// the converted buffer in on the next render pass.
type GLES struct {
	base

	target pixfmt.Format
	conv   *pixfmt.Converter

	// back is written by AddFrame while no frame is queued. front is owned
	// by the render goroutine and guarded by renderMu.
	back  []byte
	front []byte
	dirty bool

	// limitedClear clears with limited-range black when the context asks
	// for limited colour.
	limitedClear bool
}

// NewGLES creates an OpenGL ES backend.
func NewGLES(env Environment) Backend {
	return newGLES(NameOpenGLES, env)
}

func newGLES(name string, env Environment) *GLES {
	info, _ := InfoFor(name)
	return &GLES{
		base: newBase(info, env),
		conv: pixfmt.NewConverter(),
	}
}

func (r *GLES) Configure(format pixfmt.Format, width, height, orientation int) error {
	if err := validateStream(format, width, height); err != nil {
		r.log.Error("configure failed", "error", err)
		r.Deinitialize()
		return err
	}

	tex, err := r.newTexture(width, height)
	if err != nil {
		r.log.Error("configure failed", "error", err)
		r.Deinitialize()
		return err
	}
	target := r.ctx.Device().TextureFormat()
	size := target.FrameSize(width, height)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	r.releaseTextureLocked()
	r.texture = tex
	r.format = format
	r.width = width
	r.height = height
	r.target = target
	r.back = make([]byte, size)
	r.front = make([]byte, size)
	r.dirty = true
	r.presented = false
	r.queued.Store(false)

	r.configureGeometryLocked(width, height, orientation)
	r.configured = true

	r.log.Info("configured",
		"format", format,
		"width", width,
		"height", height,
		"orientation", orientation,
		"target", target,
		"viewMode", r.engine.ViewMode(),
		"scaling", r.scaling)
	return nil
}

func (r *GLES) AddFrame(data []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.configured || len(data) == 0 {
		return
	}
	if !r.canQueue() {
		return
	}
	if !r.conv.Convert(r.back, data, r.format, r.target, r.width, r.height) {
		r.log.Debug("dropping malformed frame", "size", len(data))
		return
	}
	r.markQueued()
}

// Flush waits for the device and discards the queued frame.
func (r *GLES) Flush() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.configured {
		return
	}
	r.ctx.Device().Finish()

	r.renderMu.Lock()
	defer r.renderMu.Unlock()
	r.queued.Store(false)
}

func (r *GLES) RenderUpdate(clear bool, alpha uint8) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.configured {
		return
	}

	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	dev := r.ctx.Device()
	r.manageRenderAreaLocked()

	if clear {
		if alpha == 255 {
			w, h := dev.Size()
			dev.FillRects(r.clearColourGL(), blackBars(r.engine.RotatedDestCoords(), float64(w), float64(h)))
		} else {
			dev.Clear(r.clearColourGL())
		}
	}

	dev.SetBlend(alpha < 255)

	if r.queued.Load() {
		r.front, r.back = r.back, r.front
		r.dirty = true
		r.presented = true
		r.queued.Store(false)
	}

	r.renderLocked(dev, alpha)

	dev.SetBlend(true)
}

// renderLocked uploads the front buffer if it changed and draws it.
func (r *GLES) renderLocked(dev graphics.Device, alpha uint8) {
	if r.texture == nil {
		tex, err := r.newTexture(r.width, r.height)
		if err != nil {
			r.log.Error("texture recreate failed", "error", err)
			return
		}
		r.texture = tex
		r.dirty = true
	}

	if r.dirty {
		if err := r.texture.Upload(r.front); err != nil {
			r.uploadErrors.Add(1)
			r.log.Warn("texture upload failed", "error", err)
		} else {
			r.dirty = false
		}
	}

	r.drawFrameLocked(dev, alpha)
}

func (r *GLES) clearColourGL() color.Color {
	if r.limitedClear {
		return r.clearColour()
	}
	return graphics.Black
}

func (r *GLES) Deinitialize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	r.releaseTextureLocked()
	r.conv.Close()
	r.back = nil
	r.front = nil
	r.presented = false
	r.queued.Store(false)
	r.configured = false
}

// Capture delivers the frame currently on screen.
func (r *GLES) Capture(c *capture.Capture) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.configured {
		c.Fail(ErrNotConfigured)
		return
	}

	r.renderMu.Lock()
	defer r.renderMu.Unlock()
	r.captureLocked(c, r.front, r.target)
}
