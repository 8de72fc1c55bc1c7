// Package graphicstest provides recording fakes of the graphics contracts
// for tests.
package graphicstest

import (
	"errors"
	"image/color"
	"sync"

	"github.com/user-none/retrovideo/geometry"
	"github.com/user-none/retrovideo/graphics"
	"github.com/user-none/retrovideo/pixfmt"
)

// ErrFake is returned by fakes configured to fail.
var ErrFake = errors.New("fake failure")

// Texture records uploads.
type Texture struct {
	mu        sync.Mutex
	width     int
	height    int
	uploads   [][]byte
	released  bool
	UploadErr error
}

func (t *Texture) Upload(pix []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.UploadErr != nil {
		return t.UploadErr
	}
	t.uploads = append(t.uploads, append([]byte(nil), pix...))
	return nil
}

func (t *Texture) Size() (int, int) { return t.width, t.height }

func (t *Texture) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.released = true
}

// Uploads returns copies of every uploaded frame.
func (t *Texture) Uploads() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([][]byte(nil), t.uploads...)
}

// LastUpload returns the most recent upload or nil.
func (t *Texture) LastUpload() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.uploads) == 0 {
		return nil
	}
	return t.uploads[len(t.uploads)-1]
}

// Released reports whether Release was called.
func (t *Texture) Released() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.released
}

// Draw is one recorded DrawQuad call.
type Draw struct {
	Texture *Texture
	Src     geometry.Rect
	Dst     [4]geometry.Point
	Opts    graphics.DrawOptions
}

// Device records draw calls.
type Device struct {
	mu       sync.Mutex
	Format   pixfmt.Format
	Width    int
	Height   int
	textures []*Texture
	clears   []color.Color
	fills    [][]geometry.Rect
	draws    []Draw
	blend    []bool
	finishes int

	// TextureErr fails NewTexture when set.
	TextureErr error
}

// NewDevice returns a device of the given size with BGRA textures.
func NewDevice(width, height int) *Device {
	return &Device{Format: pixfmt.BGRA, Width: width, Height: height}
}

func (d *Device) TextureFormat() pixfmt.Format { return d.Format }

func (d *Device) NewTexture(width, height int) (graphics.Texture, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.TextureErr != nil {
		return nil, d.TextureErr
	}
	t := &Texture{width: width, height: height}
	d.textures = append(d.textures, t)
	return t, nil
}

func (d *Device) Size() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Width, d.Height
}

func (d *Device) Clear(c color.Color) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clears = append(d.clears, c)
}

func (d *Device) FillRects(c color.Color, rects []geometry.Rect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fills = append(d.fills, append([]geometry.Rect(nil), rects...))
}

func (d *Device) SetBlend(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blend = append(d.blend, enabled)
}

func (d *Device) DrawQuad(tex graphics.Texture, src geometry.Rect, dst [4]geometry.Point, opts graphics.DrawOptions) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, _ := tex.(*Texture)
	d.draws = append(d.draws, Draw{Texture: t, Src: src, Dst: dst, Opts: opts})
}

func (d *Device) Finish() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finishes++
}

// Textures returns every texture created.
func (d *Device) Textures() []*Texture {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Texture(nil), d.textures...)
}

// Clears returns the colours passed to Clear.
func (d *Device) Clears() []color.Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]color.Color(nil), d.clears...)
}

// Fills returns the rect sets passed to FillRects.
func (d *Device) Fills() [][]geometry.Rect {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]geometry.Rect(nil), d.fills...)
}

// Draws returns the recorded DrawQuad calls.
func (d *Device) Draws() []Draw {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Draw(nil), d.draws...)
}

// Blend returns the SetBlend history.
func (d *Device) Blend() []bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]bool(nil), d.blend...)
}

// Finishes returns how many times Finish was called.
func (d *Device) Finishes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.finishes
}

// Reset forgets recorded calls.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clears = nil
	d.fills = nil
	d.draws = nil
	d.blend = nil
	d.finishes = 0
}

// Context is a configurable graphics context backed by a Device.
type Context struct {
	sync.Mutex

	Dev             *Device
	View            geometry.Rect
	ScreenInfo      geometry.Screen
	Resolution      graphics.Resolution
	FullScreenVideo bool
	FullScreenRoot  bool
	Calibrating     bool
	LimitedColor    bool

	// BestResolution is returned by ChooseBestResolution.
	BestResolution graphics.Resolution

	stateMu     sync.Mutex
	chosenFPS   []float64
	resolutions []graphics.Resolution
}

// NewContext returns a full-screen context of the given size.
func NewContext(width, height int) *Context {
	return &Context{
		Dev:             NewDevice(width, height),
		View:            geometry.NewRect(0, 0, float64(width), float64(height)),
		ScreenInfo:      geometry.NewScreen(width, height),
		Resolution:      graphics.ResolutionDesktop,
		FullScreenVideo: true,
		FullScreenRoot:  true,
		BestResolution:  graphics.ResolutionDesktop,
	}
}

func (c *Context) Device() graphics.Device             { return c.Dev }
func (c *Context) ViewWindow() geometry.Rect           { return c.View }
func (c *Context) Screen() geometry.Screen             { return c.ScreenInfo }
func (c *Context) VideoResolution() graphics.Resolution { return c.Resolution }
func (c *Context) IsFullScreenVideo() bool             { return c.FullScreenVideo }
func (c *Context) IsFullScreenRoot() bool              { return c.FullScreenRoot }
func (c *Context) IsCalibrating() bool                 { return c.Calibrating }
func (c *Context) UseLimitedColor() bool               { return c.LimitedColor }

func (c *Context) ChooseBestResolution(fps float64) graphics.Resolution {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.chosenFPS = append(c.chosenFPS, fps)
	return c.BestResolution
}

func (c *Context) SetVideoResolution(res graphics.Resolution, fps float64) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	c.resolutions = append(c.resolutions, res)
}

// Resolutions returns the resolutions passed to SetVideoResolution.
func (c *Context) Resolutions() []graphics.Resolution {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return append([]graphics.Resolution(nil), c.resolutions...)
}

// Messenger records posted messages.
type Messenger struct {
	mu   sync.Mutex
	msgs []graphics.Message
}

func (m *Messenger) Post(msg graphics.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
}

// Messages returns the posted messages.
func (m *Messenger) Messages() []graphics.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]graphics.Message(nil), m.msgs...)
}
