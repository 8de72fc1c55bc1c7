// Package capture grabs the frame a renderer is presenting and hands it to
// screenshot and clipboard consumers.
package capture

import (
	"context"
	"errors"
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// State is the progress of a capture request.
type State int

const (
	StateNew State = iota
	StateWorking
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateWorking:
		return "working"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ErrNoFrame is reported when there is no displayed frame to capture.
var ErrNoFrame = errors.New("no frame to capture")

// Capture is a one-shot request for the displayed frame. The renderer fills
// it on the render thread; the requester waits for it on any goroutine.
type Capture struct {
	mu     sync.Mutex
	width  int
	height int
	state  State
	img    *image.RGBA
	err    error
	done   chan struct{}
}

// New returns a capture request. A zero width or height keeps the source
// frame size.
func New(width, height int) *Capture {
	return &Capture{
		width:  width,
		height: height,
		done:   make(chan struct{}),
	}
}

// Size returns the requested output size.
func (c *Capture) Size() (width, height int) {
	return c.width, c.height
}

// Begin marks the capture as in progress.
func (c *Capture) Begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateNew {
		c.state = StateWorking
	}
}

// Deliver completes the capture with img, scaled to the requested size.
// Calls after completion are ignored.
func (c *Capture) Deliver(img *image.RGBA) {
	if img == nil {
		c.Fail(ErrNoFrame)
		return
	}

	out := img
	b := img.Bounds()
	if c.width > 0 && c.height > 0 && (b.Dx() != c.width || b.Dy() != c.height) {
		out = image.NewRGBA(image.Rect(0, 0, c.width, c.height))
		draw.CatmullRom.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDone || c.state == StateFailed {
		return
	}
	c.img = out
	c.state = StateDone
	close(c.done)
}

// Fail completes the capture with an error.
func (c *Capture) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDone || c.state == StateFailed {
		return
	}
	c.err = err
	c.state = StateFailed
	close(c.done)
}

// State returns the current progress.
func (c *Capture) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Image returns the captured image once the state is StateDone.
func (c *Capture) Image() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.img
}

// Wait blocks until the capture completes or ctx is done.
func (c *Capture) Wait(ctx context.Context) (*image.RGBA, error) {
	select {
	case <-c.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.img, c.err
}
