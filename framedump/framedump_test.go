package framedump

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/user-none/retrovideo/pixfmt"
)

var testHeader = Header{
	Format:      pixfmt.RGB565,
	Width:       4,
	Height:      2,
	Orientation: 90,
	FPS:         59.94,
}

// encodeDump returns a dump with n frames, frame i filled with byte i+1.
func encodeDump(t *testing.T, n int) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(&buf, testHeader)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for i := range n {
		if err := w.WriteFrame(bytes.Repeat([]byte{byte(i + 1)}, testHeader.FrameSize())); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestWriterReader(t *testing.T) {
	data := encodeDump(t, 3)

	r, err := NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	h := r.Header()
	if h.Format != pixfmt.RGB565 || h.Width != 4 || h.Height != 2 || h.Orientation != 90 {
		t.Fatalf("header = %+v", h)
	}
	if h.FPS != 59.94 {
		t.Errorf("fps = %v, want 59.94", h.FPS)
	}

	for i := range 3 {
		frame, err := r.Next()
		if err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
		if len(frame) != 16 || frame[0] != byte(i+1) {
			t.Fatalf("frame %d = %v", i, frame)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestWriterFrameCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count.rpfd")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w, err := NewWriter(f, testHeader)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for range 5 {
		if err := w.WriteFrame(make([]byte, testHeader.FrameSize())); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	f.Close()

	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.FrameCount != 5 || len(d.Frames) != 5 {
		t.Fatalf("frame count %d, frames %d, want 5", d.FrameCount, len(d.Frames))
	}

	raw, _ := os.ReadFile(path)
	r, err := NewReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if r.Header().FrameCount != 5 {
		t.Fatalf("stored frame count = %d, want 5", r.Header().FrameCount)
	}
}

func TestWriterRejects(t *testing.T) {
	tests := []struct {
		name string
		h    Header
	}{
		{"no format", Header{Width: 4, Height: 2}},
		{"zero width", Header{Format: pixfmt.BGRA, Height: 2}},
		{"bad orientation", Header{Format: pixfmt.BGRA, Width: 4, Height: 2, Orientation: 45}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWriter(io.Discard, tt.h); !errors.Is(err, ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt, got %v", err)
			}
		})
	}

	w, err := NewWriter(io.Discard, testHeader)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFrame(make([]byte, 3)); err == nil {
		t.Fatal("expected error for short frame")
	}
	if w.Frames() != 0 {
		t.Fatalf("Frames = %d, want 0", w.Frames())
	}
}

func TestDecodeErrors(t *testing.T) {
	good := encodeDump(t, 2)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrCorrupt},
		{"bad magic", append([]byte("XXXX"), good[4:]...), ErrBadMagic},
		{"truncated frame", good[:len(good)-3], ErrCorrupt},
		{"no frames", good[:headerSize], ErrCorrupt},
		{"wrong frame length", func() []byte {
			b := bytes.Clone(good)
			b[headerSize] = 0xFF
			return b
		}(), ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); !errors.Is(err, tt.want) {
				t.Fatalf("Decode error = %v, want %v", err, tt.want)
			}
		})
	}
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func zipBytes(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	w.Write(data)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func tarBytes(t *testing.T, name string, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := tar.NewWriter(&buf)
	if err := w.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(data)), Typeflag: tar.TypeReg}); err != nil {
		t.Fatal(err)
	}
	w.Write(data)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadContainers(t *testing.T) {
	dump := encodeDump(t, 2)

	tests := []struct {
		name     string
		file     string
		data     []byte
		wantName string
	}{
		{"raw", "game.rpfd", dump, "game.rpfd"},
		{"raw without extension", "game.bin", dump, "game.bin"},
		{"zip", "game.zip", zipBytes(t, map[string][]byte{"readme.txt": []byte("hi"), "dir/game.rpfd": dump}), "game.rpfd"},
		{"gzip", "game.rpfd.gz", gzipBytes(t, dump), "game.rpfd"},
		{"tar.gz", "game.tar.gz", gzipBytes(t, tarBytes(t, "sub/game.rpfd", dump)), "game.rpfd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.data)
			data, name, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if !bytes.Equal(data, dump) {
				t.Error("extracted data differs")
			}

			d, err := Open(path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			if len(d.Frames) != 2 {
				t.Errorf("frames = %d, want 2", len(d.Frames))
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, _, err := Load("/nonexistent/path/game.rpfd"); err == nil {
			t.Fatal("expected error")
		}
	})
	t.Run("unsupported", func(t *testing.T) {
		path := writeFile(t, "notes.txt", []byte("plain text"))
		if _, _, err := Load(path); !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
		}
	})
	t.Run("zip without dump", func(t *testing.T) {
		path := writeFile(t, "empty.zip", zipBytes(t, map[string][]byte{"a.txt": []byte("x")}))
		if _, _, err := Load(path); !errors.Is(err, ErrNoDumpFile) {
			t.Fatalf("expected ErrNoDumpFile, got %v", err)
		}
	})
	t.Run("invalid 7z", func(t *testing.T) {
		path := writeFile(t, "fake.7z", []byte("not a 7z file"))
		if _, _, err := Load(path); err == nil {
			t.Fatal("expected error for invalid 7z")
		}
	})
	t.Run("invalid rar", func(t *testing.T) {
		path := writeFile(t, "fake.rar", []byte("not a rar file"))
		if _, _, err := Load(path); err == nil {
			t.Fatal("expected error for invalid rar")
		}
	})
	t.Run("too large", func(t *testing.T) {
		old := maxDumpSize
		maxDumpSize = 16
		defer func() { maxDumpSize = old }()

		path := writeFile(t, "big.rpfd", encodeDump(t, 2))
		if _, _, err := Load(path); !errors.Is(err, ErrFileTooLarge) {
			t.Fatalf("expected ErrFileTooLarge, got %v", err)
		}
	})
}

func TestDetectContainer(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		path   string
		want   containerType
	}{
		{"dump magic", []byte("RPFD\x01\x00"), "x.bin", containerRaw},
		{"zip magic", magicZIP, "x.bin", containerZIP},
		{"7z magic", magic7z, "x.bin", container7z},
		{"rar magic", magicRAR, "x.bin", containerRAR},
		{"gzip magic", magicGzip, "x.bin", containerGzip},
		{"7z extension", nil, "x.7z", container7z},
		{"tgz extension", nil, "x.TGZ", containerGzip},
		{"dump extension", nil, "x.RPFD", containerRaw},
		{"unknown", []byte("abcd"), "x.bin", containerUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectContainer(tt.header, tt.path); got != tt.want {
				t.Errorf("detectContainer = %v, want %v", got, tt.want)
			}
		})
	}
}
