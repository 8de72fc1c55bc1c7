package renderer

import (
	"github.com/user-none/retrovideo/capture"
	"github.com/user-none/retrovideo/pixfmt"
)

// Direct3D keeps the raw source frame and converts it while uploading on
// the render goroutine. A queued frame stays queued until an upload
// succeeds.
type Direct3D struct {
	base

	target pixfmt.Format

	// conv and staging are used on the render goroutine only.
	conv    *pixfmt.Converter
	staging []byte

	// raw is written by AddFrame while no frame is queued and read by the
	// render goroutine while one is.
	raw []byte
}

// NewDirect3D creates a Direct3D backend.
func NewDirect3D(env Environment) Backend {
	info, _ := InfoFor(NameDirect3D)
	return &Direct3D{
		base: newBase(info, env),
		conv: pixfmt.NewConverter(),
	}
}

func (r *Direct3D) Configure(format pixfmt.Format, width, height, orientation int) error {
	if err := validateStream(format, width, height); err != nil {
		r.log.Error("configure failed", "error", err)
		r.Deinitialize()
		return err
	}

	tex, err := r.newTexture(width, height)
	if err != nil {
		r.log.Error("intermediate target creation failed", "error", err)
		r.Deinitialize()
		return err
	}
	target := r.ctx.Device().TextureFormat()

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
	r.raw = make([]byte, format.FrameSize(width, height))
	r.staging = make([]byte, target.FrameSize(width, height))
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

func (r *Direct3D) AddFrame(data []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.configured || len(data) == 0 {
		return
	}
	if !r.canQueue() {
		return
	}
	if len(r.raw) != len(data) {
		r.raw = make([]byte, len(data))
	}
	copy(r.raw, data)
	r.markQueued()
}

// Flush discards the queued frame.
func (r *Direct3D) Flush() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.configured {
		return
	}

	r.renderMu.Lock()
	defer r.renderMu.Unlock()
	r.queued.Store(false)
}

func (r *Direct3D) RenderUpdate(clear bool, alpha uint8) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.ctx == nil {
		return
	}
	dev := r.ctx.Device()

	if clear {
		dev.Clear(r.clearColour())
	}

	if !r.configured {
		return
	}

	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	dev.SetBlend(alpha < 255)

	r.manageRenderAreaLocked()

	if r.queued.Load() && r.uploadLocked() {
		r.queued.Store(false)
	}

	r.drawFrameLocked(dev, alpha)

	dev.SetBlend(true)
}

// uploadLocked converts the queued frame into the texture. It reports
// whether the frame was consumed. Malformed frames are consumed and
// discarded; a failed upload leaves the frame queued.
func (r *Direct3D) uploadLocked() bool {
	if r.texture == nil {
		tex, err := r.newTexture(r.width, r.height)
		if err != nil {
			r.uploadErrors.Add(1)
			r.log.Error("intermediate target recreate failed", "error", err)
			return false
		}
		r.texture = tex
	}

	if !r.conv.Convert(r.staging, r.raw, r.format, r.target, r.width, r.height) {
		r.log.Debug("dropping malformed frame", "size", len(r.raw))
		return true
	}

	if err := r.texture.Upload(r.staging); err != nil {
		r.uploadErrors.Add(1)
		r.log.Error("failed to upload frame", "error", err)
		return false
	}
	r.presented = true
	return true
}

func (r *Direct3D) Deinitialize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderMu.Lock()
	defer r.renderMu.Unlock()

	r.releaseTextureLocked()
	r.conv.Close()
	r.raw = nil
	r.staging = nil
	r.presented = false
	r.queued.Store(false)
	r.configured = false
}

// Capture delivers the last uploaded frame.
func (r *Direct3D) Capture(c *capture.Capture) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.configured {
		c.Fail(ErrNotConfigured)
		return
	}

	r.renderMu.Lock()
	defer r.renderMu.Unlock()
	r.captureLocked(c, r.staging, r.target)
}
