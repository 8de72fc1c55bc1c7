package player

import (
	"errors"
	"io"

	emucore "github.com/user-none/eblitui/api"
	"github.com/user-none/retrovideo/framedump"
	"github.com/user-none/retrovideo/pixfmt"
)

// Stream describes the pixel stream a Source produces.
type Stream struct {
	Format      pixfmt.Format
	Width       int
	Height      int
	Orientation int
	FPS         float64
}

// Source produces tightly packed frames for a single stream. Stream may
// change between frames; the player reopens the stream when it does.
type Source interface {
	Stream() Stream
	// NextFrame returns the next frame. io.EOF ends the stream.
	NextFrame() ([]byte, error)
	Close() error
}

// Rewinder is implemented by sources that can restart from their first
// frame.
type Rewinder interface {
	Rewind()
}

// ErrEmptySource is returned when a source has nothing to play.
var ErrEmptySource = errors.New("source has no frames")

// EmulatorSource runs an emulator core one frame per call.
type EmulatorSource struct {
	emu    emucore.Emulator
	width  int
	height int
	buf    []byte
}

// NewEmulatorSource wraps emu. The width comes from the core's system
// info; the height follows the core's active display height.
func NewEmulatorSource(emu emucore.Emulator, info emucore.SystemInfo) *EmulatorSource {
	height := emu.GetActiveHeight()
	if height <= 0 {
		height = info.MaxScreenHeight
	}
	return &EmulatorSource{
		emu:    emu,
		width:  info.ScreenWidth,
		height: height,
	}
}

func (s *EmulatorSource) Stream() Stream {
	return Stream{
		Format: pixfmt.RGBA,
		Width:  s.width,
		Height: s.height,
		FPS:    float64(s.emu.GetTiming().FPS),
	}
}

// NextFrame runs one frame and repacks the framebuffer rows, dropping any
// stride padding.
func (s *EmulatorSource) NextFrame() ([]byte, error) {
	s.emu.RunFrame()

	if h := s.emu.GetActiveHeight(); h > 0 {
		s.height = h
	}

	fb := s.emu.GetFramebuffer()
	stride := s.emu.GetFramebufferStride()
	rowBytes := s.width * 4
	if stride < rowBytes {
		stride = rowBytes
	}
	if len(fb) < stride*(s.height-1)+rowBytes {
		return nil, io.ErrUnexpectedEOF
	}

	size := rowBytes * s.height
	if cap(s.buf) < size {
		s.buf = make([]byte, size)
	}
	// Reused across frames; AddFrame copies the data.
	s.buf = s.buf[:size]
	for y := 0; y < s.height; y++ {
		copy(s.buf[y*rowBytes:(y+1)*rowBytes], fb[y*stride:y*stride+rowBytes])
	}
	return s.buf, nil
}

// Close releases the emulator.
func (s *EmulatorSource) Close() error {
	s.emu.Close()
	return nil
}

// DumpSource plays back a loaded frame dump.
type DumpSource struct {
	dump *framedump.Dump
	next int
}

// NewDumpSource returns a source over d.
func NewDumpSource(d *framedump.Dump) (*DumpSource, error) {
	if d == nil || len(d.Frames) == 0 {
		return nil, ErrEmptySource
	}
	return &DumpSource{dump: d}, nil
}

func (s *DumpSource) Stream() Stream {
	return Stream{
		Format:      s.dump.Format,
		Width:       s.dump.Width,
		Height:      s.dump.Height,
		Orientation: s.dump.Orientation,
		FPS:         s.dump.FPS,
	}
}

func (s *DumpSource) NextFrame() ([]byte, error) {
	if s.next >= len(s.dump.Frames) {
		return nil, io.EOF
	}
	f := s.dump.Frames[s.next]
	s.next++
	return f, nil
}

// Rewind restarts playback at the first frame.
func (s *DumpSource) Rewind() { s.next = 0 }

func (s *DumpSource) Close() error { return nil }

// SMPTE-style bars in RGB565.
var patternBars = []uint16{
	0xFFFF, // white
	0xFFE0, // yellow
	0x07FF, // cyan
	0x07E0, // green
	0xF81F, // magenta
	0xF800, // red
	0x001F, // blue
	0x0000, // black
}

// PatternSource generates RGB565 color bars with a white line sweeping
// down the picture. Frames are produced forever.
type PatternSource struct {
	width  int
	height int
	fps    float64
	frame  int
	buf    []byte
}

// NewPatternSource returns a pattern generator. Non-positive dimensions
// fall back to 320x240 and a non-positive rate to 60 fps.
func NewPatternSource(width, height int, fps float64) *PatternSource {
	if width <= 0 || height <= 0 {
		width, height = 320, 240
	}
	if fps <= 0 {
		fps = 60
	}
	return &PatternSource{width: width, height: height, fps: fps}
}

func (s *PatternSource) Stream() Stream {
	return Stream{Format: pixfmt.RGB565, Width: s.width, Height: s.height, FPS: s.fps}
}

func (s *PatternSource) NextFrame() ([]byte, error) {
	size := pixfmt.RGB565.FrameSize(s.width, s.height)
	if len(s.buf) != size {
		s.buf = make([]byte, size)
	}
	sweep := s.frame % s.height
	for y := 0; y < s.height; y++ {
		row := s.buf[y*s.width*2 : (y+1)*s.width*2]
		for x := 0; x < s.width; x++ {
			c := patternBars[x*len(patternBars)/s.width]
			if y == sweep {
				c = 0xFFFF
			}
			row[x*2] = byte(c)
			row[x*2+1] = byte(c >> 8)
		}
	}
	s.frame++
	return s.buf, nil
}

// Rewind restarts the sweep.
func (s *PatternSource) Rewind() { s.frame = 0 }

func (s *PatternSource) Close() error { return nil }
