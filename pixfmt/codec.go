package pixfmt

import (
	"errors"
	"fmt"
	"image"
)

// ErrUnsupported is returned for formats that cannot be decoded or encoded.
var ErrUnsupported = errors.New("unsupported pixel format")

// ErrShortBuffer is returned when a buffer is too small for its frame.
var ErrShortBuffer = errors.New("pixel buffer too short")

// expand5 and expand6 widen 5 and 6 bit channels to 8 bits.
func expand5(v uint16) uint8 { return uint8(v<<3 | v>>2) }
func expand6(v uint16) uint8 { return uint8(v<<2 | v>>4) }

// decodeRows unpacks src (rows of stride bytes) into img, which must be
// width x height.
func decodeRows(img *image.RGBA, src []byte, f Format, stride int) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	bpp := f.BytesPerPixel()

	for y := 0; y < height; y++ {
		row := src[y*stride : y*stride+width*bpp]
		out := img.Pix[y*img.Stride : y*img.Stride+width*4]

		for x := 0; x < width; x++ {
			p := row[x*bpp : x*bpp+bpp]
			o := out[x*4 : x*4+4]
			switch f {
			case RGB555:
				v := uint16(p[0]) | uint16(p[1])<<8
				o[0] = expand5((v >> 10) & 0x1F)
				o[1] = expand5((v >> 5) & 0x1F)
				o[2] = expand5(v & 0x1F)
				o[3] = 0xFF
			case RGB565:
				v := uint16(p[0]) | uint16(p[1])<<8
				o[0] = expand5((v >> 11) & 0x1F)
				o[1] = expand6((v >> 5) & 0x3F)
				o[2] = expand5(v & 0x1F)
				o[3] = 0xFF
			case BGR0:
				o[0], o[1], o[2], o[3] = p[2], p[1], p[0], 0xFF
			case BGRA:
				o[0], o[1], o[2], o[3] = p[2], p[1], p[0], p[3]
			case RGBA:
				copy(o, p)
			case RGB24:
				o[0], o[1], o[2], o[3] = p[0], p[1], p[2], 0xFF
			}
		}
	}
}

// encodeRows packs img into dst using f with tightly packed rows.
func encodeRows(dst []byte, img *image.RGBA, f Format) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	bpp := f.BytesPerPixel()
	stride := width * bpp

	for y := 0; y < height; y++ {
		in := img.Pix[y*img.Stride : y*img.Stride+width*4]
		row := dst[y*stride : y*stride+stride]

		for x := 0; x < width; x++ {
			c := in[x*4 : x*4+4]
			p := row[x*bpp : x*bpp+bpp]
			switch f {
			case RGB555:
				v := uint16(c[0]>>3)<<10 | uint16(c[1]>>3)<<5 | uint16(c[2]>>3)
				p[0], p[1] = uint8(v), uint8(v>>8)
			case RGB565:
				v := uint16(c[0]>>3)<<11 | uint16(c[1]>>2)<<5 | uint16(c[2]>>3)
				p[0], p[1] = uint8(v), uint8(v>>8)
			case BGR0:
				p[0], p[1], p[2], p[3] = c[2], c[1], c[0], 0
			case BGRA:
				p[0], p[1], p[2], p[3] = c[2], c[1], c[0], c[3]
			case RGBA:
				copy(p, c)
			case RGB24:
				p[0], p[1], p[2] = c[0], c[1], c[2]
			}
		}
	}
}

// DecodeImage unpacks a tightly packed frame into a new RGBA image. The row
// stride is derived from len(data) / height.
func DecodeImage(data []byte, f Format, width, height int) (*image.RGBA, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, f)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	stride := len(data) / height
	if stride < width*f.BytesPerPixel() {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d %v", ErrShortBuffer, len(data), width, height, f)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	decodeRows(img, data, f, stride)
	return img, nil
}

// EncodeImage packs img into a new buffer in format f.
func EncodeImage(img *image.RGBA, f Format) ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, f)
	}
	b := img.Bounds()
	if b.Min != (image.Point{}) {
		sub := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			copy(sub.Pix[y*sub.Stride:y*sub.Stride+b.Dx()*4], img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		img = sub
	}
	out := make([]byte, f.FrameSize(b.Dx(), b.Dy()))
	encodeRows(out, img, f)
	return out, nil
}
