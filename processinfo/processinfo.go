// Package processinfo reports video stream details to the player's data
// cache for on-screen statistics.
package processinfo

import (
	"sync"
	"time"
)

// DataCache receives player telemetry.
type DataCache interface {
	SetVideoDecoderName(name string, hw bool)
	SetVideoDeintMethod(method string)
	SetVideoPixelFormat(format string)
	SetVideoDimensions(width, height int)
	SetVideoFps(fps float64)
	SetVideoDAR(dar float64)
	SetRenderClockSync(enabled bool)
	SetStateSeeking(seeking bool)
	SetSpeed(tempo, speed float64)
	SetGuiRender(enabled bool)
	SetVideoRender(enabled bool)
	SetPlayTimes(start time.Time, current, min, max time.Duration)
}

// ProcessInfo pushes video telemetry to a DataCache. All methods are no-ops
// without a cache.
type ProcessInfo struct {
	mu    sync.Mutex
	cache DataCache
}

// New returns a ProcessInfo writing to cache, which may be nil.
func New(cache DataCache) *ProcessInfo {
	return &ProcessInfo{cache: cache}
}

// SetDataCache replaces the cache.
func (p *ProcessInfo) SetDataCache(cache DataCache) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = cache
}

func (p *ProcessInfo) with(fn func(DataCache)) {
	p.mu.Lock()
	cache := p.cache
	p.mu.Unlock()
	if cache != nil {
		fn(cache)
	}
}

// ResetInfo restores every field to its idle value.
func (p *ProcessInfo) ResetInfo() {
	p.with(func(c DataCache) {
		c.SetVideoDecoderName("", false)
		c.SetVideoDeintMethod("")
		c.SetVideoPixelFormat("")
		c.SetVideoDimensions(0, 0)
		c.SetVideoFps(0)
		c.SetVideoDAR(1)
		c.SetRenderClockSync(false)
		c.SetStateSeeking(false)
		c.SetSpeed(1, 1)
		c.SetGuiRender(true)
		c.SetVideoRender(true)
		c.SetPlayTimes(time.Time{}, 0, 0, 0)
	})
}

// SetVideoPixelFormat reports the stream pixel format name.
func (p *ProcessInfo) SetVideoPixelFormat(name string) {
	p.with(func(c DataCache) { c.SetVideoPixelFormat(name) })
}

func (p *ProcessInfo) SetVideoDimensions(width, height int) {
	p.with(func(c DataCache) { c.SetVideoDimensions(width, height) })
}

func (p *ProcessInfo) SetVideoFps(fps float64) {
	p.with(func(c DataCache) { c.SetVideoFps(fps) })
}

// SetVideoDAR reports the display aspect ratio.
func (p *ProcessInfo) SetVideoDAR(dar float64) {
	p.with(func(c DataCache) { c.SetVideoDAR(dar) })
}

// SetSpeed reports the playback speed at normal tempo.
func (p *ProcessInfo) SetSpeed(speed float64) {
	p.with(func(c DataCache) { c.SetSpeed(1, speed) })
}

func (p *ProcessInfo) SetPlayTimes(start time.Time, current, min, max time.Duration) {
	p.with(func(c DataCache) { c.SetPlayTimes(start, current, min, max) })
}
