package player

import "sync"

// Control coordinates pause, resume and stop between the UI goroutine
// and the producer goroutine.
type Control struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pauseReq bool
	paused   bool
	stopReq  bool
}

// NewControl returns a control in the running state.
func NewControl() *Control {
	c := &Control{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// RequestPause asks the producer to pause and blocks until it has
// stopped between frames. It returns immediately when the producer has
// already exited.
func (c *Control) RequestPause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopReq {
		return
	}
	c.pauseReq = true
	for !c.paused && !c.stopReq {
		c.cond.Wait()
	}
}

// RequestResume lets a paused producer continue.
func (c *Control) RequestResume() {
	c.mu.Lock()
	c.pauseReq = false
	c.mu.Unlock()
	c.cond.Broadcast()
}

// CheckPause is called by the producer between frames. It blocks while a
// pause is requested and returns false when the producer should exit.
func (c *Control) CheckPause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.pauseReq && !c.stopReq {
		if !c.paused {
			c.paused = true
			c.cond.Broadcast()
		}
		c.cond.Wait()
	}
	c.paused = false
	return !c.stopReq
}

// Stop signals the producer to exit and releases any pause.
func (c *Control) Stop() {
	c.mu.Lock()
	c.stopReq = true
	c.pauseReq = false
	c.mu.Unlock()
	c.cond.Broadcast()
}

// ShouldRun reports whether the producer should keep running.
func (c *Control) ShouldRun() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.stopReq
}

// IsPaused reports whether the producer is parked in CheckPause.
func (c *Control) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}
