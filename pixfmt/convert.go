package pixfmt

import (
	"image"

	"golang.org/x/image/draw"
)

type contextKey struct {
	src, dst      Format
	width, height int
}

// convertContext holds the intermediate images for one conversion key.
type convertContext struct {
	key contextKey
	in  *image.RGBA
	out *image.RGBA
}

// Converter normalises frames to a target format. The conversion context is
// cached across calls and rebuilt only when the formats or frame size
// change. A Converter is not safe for concurrent use.
type Converter struct {
	ctx      *convertContext
	rebuilds int
}

// NewConverter returns a Converter with no cached context.
func NewConverter() *Converter {
	return &Converter{}
}

// Convert writes the width x height frame in src (format srcFormat) into dst
// as dstFormat. When the formats match and the buffers are the same size the
// bytes are copied as-is. Otherwise the source stride is len(src)/height and
// the frame is resampled with a fast bilinear filter.
//
// Convert reports false and leaves dst untouched for malformed input.
func (c *Converter) Convert(dst, src []byte, srcFormat, dstFormat Format, width, height int) bool {
	if len(src) == 0 || len(dst) == 0 {
		return false
	}

	if srcFormat == dstFormat && len(src) == len(dst) {
		copy(dst, src)
		return true
	}

	if !srcFormat.Valid() || !dstFormat.Valid() || width <= 0 || height <= 0 {
		return false
	}
	stride := len(src) / height
	if stride < width*srcFormat.BytesPerPixel() {
		return false
	}
	if len(dst) < dstFormat.FrameSize(width, height) {
		return false
	}

	ctx := c.context(contextKey{src: srcFormat, dst: dstFormat, width: width, height: height})

	decodeRows(ctx.in, src, srcFormat, stride)
	draw.ApproxBiLinear.Scale(ctx.out, ctx.out.Bounds(), ctx.in, ctx.in.Bounds(), draw.Src, nil)
	encodeRows(dst, ctx.out, dstFormat)

	return true
}

// context returns the cached context for key, replacing it if the key
// changed.
func (c *Converter) context(key contextKey) *convertContext {
	if c.ctx != nil && c.ctx.key == key {
		return c.ctx
	}

	bounds := image.Rect(0, 0, key.width, key.height)
	c.ctx = &convertContext{
		key: key,
		in:  image.NewRGBA(bounds),
		out: image.NewRGBA(bounds),
	}
	c.rebuilds++
	return c.ctx
}

// Rebuilds returns how many conversion contexts have been created.
func (c *Converter) Rebuilds() int {
	return c.rebuilds
}

// Close releases the cached context. It is safe to call more than once.
func (c *Converter) Close() {
	c.ctx = nil
}
