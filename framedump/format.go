// Package framedump records raw video frames to a file and replays them.
//
// A dump is a 28-byte little-endian header followed by length-prefixed
// frames:
//
//	magic       [4]byte  "RPFD"
//	version     uint16
//	format      uint8    pixfmt.Format
//	reserved    uint8
//	width       uint32
//	height      uint32
//	orientation uint16   degrees
//	reserved    uint16
//	fps         uint32   frames per 1000 seconds
//	frames      uint32   0 when the count is unknown
//
// Each frame is a uint32 byte length followed by the tightly packed pixels.
package framedump

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/user-none/retrovideo/pixfmt"
)

const (
	// Version is the dump format version written by Writer.
	Version    = 1
	headerSize = 28
)

var magic = [4]byte{'R', 'P', 'F', 'D'}

var (
	// ErrBadMagic is returned for files that are not frame dumps.
	ErrBadMagic = errors.New("not a frame dump")
	// ErrCorrupt is returned for malformed headers and frames.
	ErrCorrupt = errors.New("corrupt frame dump")
)

// Header describes the stream stored in a dump.
type Header struct {
	Format      pixfmt.Format
	Width       int
	Height      int
	Orientation int
	FPS         float64
	FrameCount  int
}

// FrameSize is the byte length of every frame in the stream.
func (h Header) FrameSize() int {
	return h.Format.FrameSize(h.Width, h.Height)
}

func (h Header) validate() error {
	if !h.Format.Valid() {
		return fmt.Errorf("%w: pixel format %d", ErrCorrupt, h.Format)
	}
	if h.Width <= 0 || h.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrCorrupt, h.Width, h.Height)
	}
	switch h.Orientation {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("%w: orientation %d", ErrCorrupt, h.Orientation)
	}
	if h.FPS < 0 || math.IsNaN(h.FPS) {
		return fmt.Errorf("%w: fps %v", ErrCorrupt, h.FPS)
	}
	return nil
}

func (h Header) marshal() []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:4], magic[:])
	binary.LittleEndian.PutUint16(buf[4:], Version)
	buf[6] = byte(h.Format)
	binary.LittleEndian.PutUint32(buf[8:], uint32(h.Width))
	binary.LittleEndian.PutUint32(buf[12:], uint32(h.Height))
	binary.LittleEndian.PutUint16(buf[16:], uint16(h.Orientation))
	binary.LittleEndian.PutUint32(buf[20:], uint32(math.Round(h.FPS*1000)))
	binary.LittleEndian.PutUint32(buf[24:], uint32(h.FrameCount))
	return buf
}

func unmarshalHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, fmt.Errorf("%w: short header", ErrCorrupt)
	}
	if !bytes.Equal(buf[0:4], magic[:]) {
		return Header{}, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(buf[4:]); v != Version {
		return Header{}, fmt.Errorf("%w: version %d", ErrCorrupt, v)
	}
	h := Header{
		Format:      pixfmt.Format(buf[6]),
		Width:       int(binary.LittleEndian.Uint32(buf[8:])),
		Height:      int(binary.LittleEndian.Uint32(buf[12:])),
		Orientation: int(binary.LittleEndian.Uint16(buf[16:])),
		FPS:         float64(binary.LittleEndian.Uint32(buf[20:])) / 1000,
		FrameCount:  int(binary.LittleEndian.Uint32(buf[24:])),
	}
	if err := h.validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// Writer appends frames to a dump.
type Writer struct {
	w      io.Writer
	header Header
	frames int
}

// NewWriter writes the header to w. The frame count in the header is
// filled in by Close when w is an io.WriteSeeker.
func NewWriter(w io.Writer, h Header) (*Writer, error) {
	h.FrameCount = 0
	if err := h.validate(); err != nil {
		return nil, err
	}
	if _, err := w.Write(h.marshal()); err != nil {
		return nil, fmt.Errorf("failed to write dump header: %w", err)
	}
	return &Writer{w: w, header: h}, nil
}

// WriteFrame appends one frame. Its length must match the header.
func (w *Writer) WriteFrame(data []byte) error {
	if len(data) != w.header.FrameSize() {
		return fmt.Errorf("frame size %d, want %d", len(data), w.header.FrameSize())
	}
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(data)))
	if _, err := w.w.Write(prefix[:]); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	w.frames++
	return nil
}

// Frames returns the number of frames written.
func (w *Writer) Frames() int { return w.frames }

// Close records the frame count when the destination can seek. It does
// not close the underlying writer.
func (w *Writer) Close() error {
	ws, ok := w.w.(io.WriteSeeker)
	if !ok {
		return nil
	}
	end, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("failed to seek dump: %w", err)
	}
	if _, err := ws.Seek(24, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek dump: %w", err)
	}
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(w.frames))
	if _, err := ws.Write(count[:]); err != nil {
		return fmt.Errorf("failed to write frame count: %w", err)
	}
	if _, err := ws.Seek(end, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek dump: %w", err)
	}
	return nil
}

// Reader reads frames from a dump.
type Reader struct {
	r      io.Reader
	header Header
}

// NewReader reads and validates the header.
func NewReader(r io.Reader) (*Reader, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: short header", ErrCorrupt)
		}
		return nil, fmt.Errorf("failed to read dump header: %w", err)
	}
	h, err := unmarshalHeader(buf)
	if err != nil {
		return nil, err
	}
	return &Reader{r: r, header: h}, nil
}

func (r *Reader) Header() Header { return r.header }

// Next returns the next frame, or io.EOF after the last one.
func (r *Reader) Next() ([]byte, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r.r, prefix[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: truncated frame length", ErrCorrupt)
	}
	n := int(binary.LittleEndian.Uint32(prefix[:]))
	if n != r.header.FrameSize() {
		return nil, fmt.Errorf("%w: frame size %d, want %d", ErrCorrupt, n, r.header.FrameSize())
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, fmt.Errorf("%w: truncated frame", ErrCorrupt)
	}
	return data, nil
}

// Dump is a fully loaded frame dump.
type Dump struct {
	Header
	Frames [][]byte
}

// Decode parses a complete dump held in memory.
func Decode(data []byte) (*Dump, error) {
	r, err := NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	d := &Dump{Header: r.Header()}
	for {
		frame, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		d.Frames = append(d.Frames, frame)
	}
	if len(d.Frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrCorrupt)
	}
	d.FrameCount = len(d.Frames)
	return d, nil
}
