package framedump

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extension is the file extension of a raw dump.
const Extension = ".rpfd"

// Magic bytes for archive detection
var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06}
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// maxDumpSize limits the extracted size of a dump.
var maxDumpSize int64 = 512 * 1024 * 1024

var (
	// ErrNoDumpFile is returned when an archive holds no dump.
	ErrNoDumpFile = errors.New("no frame dump found in archive")
	// ErrUnsupportedFormat is returned for unrecognized files.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrFileTooLarge is returned when a dump exceeds the size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")
)

type containerType int

const (
	containerUnknown containerType = iota
	containerRaw
	containerZIP
	container7z
	containerGzip
	containerRAR
)

// Open loads and decodes the dump at path. The file may be a raw dump or
// a ZIP, 7z, RAR, gzip or tar.gz archive holding one.
func Open(path string) (*Dump, error) {
	data, name, err := Load(path)
	if err != nil {
		return nil, err
	}
	d, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

// Load returns the raw bytes of the dump at path and its file name. For
// archives the first entry with the dump extension is extracted.
func Load(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", fmt.Errorf("failed to seek file: %w", err)
	}

	switch detectContainer(header, path) {
	case containerRaw:
		data, err := limitedRead(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read dump: %w", err)
		}
		return data, filepath.Base(path), nil
	case containerZIP:
		return extractFromZIP(path)
	case container7z:
		return extractFrom7z(path)
	case containerGzip:
		return extractFromGzip(path)
	case containerRAR:
		return extractFromRAR(path)
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// detectContainer picks the container from magic bytes, then the
// extension.
func detectContainer(header []byte, path string) containerType {
	switch {
	case bytes.HasPrefix(header, magic[:]):
		return containerRaw
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return containerZIP
	case bytes.HasPrefix(header, magicRAR):
		return containerRAR
	case bytes.HasPrefix(header, magic7z):
		return container7z
	case bytes.HasPrefix(header, magicGzip):
		return containerGzip
	}

	lower := strings.ToLower(path)
	switch filepath.Ext(lower) {
	case ".zip":
		return containerZIP
	case ".7z":
		return container7z
	case ".gz", ".tgz":
		return containerGzip
	case ".rar":
		return containerRAR
	case Extension:
		return containerRaw
	}
	return containerUnknown
}

func isDumpFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), Extension)
}

// limitedRead reads r up to maxDumpSize bytes.
func limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDumpSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxDumpSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
