package processinfo

import (
	"sync"
	"time"
)

// Info is a snapshot of the cached telemetry.
type Info struct {
	DecoderName     string
	DecoderHW       bool
	DeintMethod     string
	PixelFormat     string
	Width           int
	Height          int
	Fps             float64
	DAR             float64
	RenderClockSync bool
	Seeking         bool
	Tempo           float64
	Speed           float64
	GuiRender       bool
	VideoRender     bool
	Start           time.Time
	Current         time.Duration
	Min             time.Duration
	Max             time.Duration
}

// Cache is an in-memory DataCache.
type Cache struct {
	mu   sync.RWMutex
	info Info
}

// NewCache returns a cache holding idle values.
func NewCache() *Cache {
	return &Cache{info: Info{DAR: 1, Tempo: 1, Speed: 1, GuiRender: true, VideoRender: true}}
}

// Snapshot returns a copy of the cached values.
func (c *Cache) Snapshot() Info {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info
}

func (c *Cache) update(fn func(*Info)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.info)
}

func (c *Cache) SetVideoDecoderName(name string, hw bool) {
	c.update(func(i *Info) { i.DecoderName, i.DecoderHW = name, hw })
}

func (c *Cache) SetVideoDeintMethod(method string) {
	c.update(func(i *Info) { i.DeintMethod = method })
}

func (c *Cache) SetVideoPixelFormat(format string) {
	c.update(func(i *Info) { i.PixelFormat = format })
}

func (c *Cache) SetVideoDimensions(width, height int) {
	c.update(func(i *Info) { i.Width, i.Height = width, height })
}

func (c *Cache) SetVideoFps(fps float64) {
	c.update(func(i *Info) { i.Fps = fps })
}

func (c *Cache) SetVideoDAR(dar float64) {
	c.update(func(i *Info) { i.DAR = dar })
}

func (c *Cache) SetRenderClockSync(enabled bool) {
	c.update(func(i *Info) { i.RenderClockSync = enabled })
}

func (c *Cache) SetStateSeeking(seeking bool) {
	c.update(func(i *Info) { i.Seeking = seeking })
}

func (c *Cache) SetSpeed(tempo, speed float64) {
	c.update(func(i *Info) { i.Tempo, i.Speed = tempo, speed })
}

func (c *Cache) SetGuiRender(enabled bool) {
	c.update(func(i *Info) { i.GuiRender = enabled })
}

func (c *Cache) SetVideoRender(enabled bool) {
	c.update(func(i *Info) { i.VideoRender = enabled })
}

func (c *Cache) SetPlayTimes(start time.Time, current, min, max time.Duration) {
	c.update(func(i *Info) { i.Start, i.Current, i.Min, i.Max = start, current, min, max })
}
