// Package display implements the graphics context and device on top of
// Ebitengine.
package display

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/user-none/retrovideo/geometry"
	"github.com/user-none/retrovideo/graphics"
	"github.com/user-none/retrovideo/logging"
	"github.com/user-none/retrovideo/pixfmt"
)

// quadIndices splits a TL, TR, BR, BL quad into two triangles.
var quadIndices = []uint16{0, 1, 2, 0, 2, 3}

// Texture is an ebiten image holding one RGBA video frame.
type Texture struct {
	img           *ebiten.Image
	width, height int
}

func (t *Texture) Upload(pix []byte) error {
	if t.img == nil {
		return fmt.Errorf("upload to released texture")
	}
	if want := pixfmt.RGBA.FrameSize(t.width, t.height); len(pix) != want {
		return fmt.Errorf("upload size %d, want %d", len(pix), want)
	}
	t.img.WritePixels(pix)
	return nil
}

func (t *Texture) Size() (int, int) { return t.width, t.height }

func (t *Texture) Release() {
	if t.img != nil {
		t.img.Deallocate()
		t.img = nil
	}
}

// Device draws onto the ebiten screen image of the current frame.
type Device struct {
	target  *ebiten.Image
	blend   bool
	vs      []ebiten.Vertex
	bicubic *shaderCache
	log     *slog.Logger
}

// NewDevice returns a device without a render target. Draw calls are
// ignored until BeginFrame is called.
func NewDevice() *Device {
	return &Device{
		blend:   true,
		vs:      make([]ebiten.Vertex, 4),
		bicubic: newShaderCache("bicubic", bicubicShaderSrc),
		log:     logging.Logger(),
	}
}

// BeginFrame sets the image drawn to until the next BeginFrame.
func (d *Device) BeginFrame(screen *ebiten.Image) {
	d.target = screen
}

// TextureFormat is RGBA, the layout ebiten's WritePixels takes.
func (d *Device) TextureFormat() pixfmt.Format { return pixfmt.RGBA }

func (d *Device) NewTexture(width, height int) (graphics.Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid texture size %dx%d", width, height)
	}
	return &Texture{img: ebiten.NewImage(width, height), width: width, height: height}, nil
}

func (d *Device) Size() (int, int) {
	if d.target == nil {
		return 0, 0
	}
	b := d.target.Bounds()
	return b.Dx(), b.Dy()
}

func (d *Device) Clear(c color.Color) {
	if d.target != nil {
		d.target.Fill(c)
	}
}

func (d *Device) FillRects(c color.Color, rects []geometry.Rect) {
	if d.target == nil {
		return
	}
	for _, r := range rects {
		ir := pixelRect(r)
		if ir.Empty() {
			continue
		}
		d.target.SubImage(ir).(*ebiten.Image).Fill(c)
	}
}

func (d *Device) SetBlend(enabled bool) { d.blend = enabled }

func (d *Device) DrawQuad(tex graphics.Texture, src geometry.Rect, dst [4]geometry.Point, opts graphics.DrawOptions) {
	t, ok := tex.(*Texture)
	if !ok || t.img == nil || d.target == nil {
		return
	}

	quadVertices(d.vs, src, dst, float32(opts.Alpha))

	if opts.Filter == graphics.FilterCubic {
		if s := d.bicubic.get(d.log); s != nil {
			sop := &ebiten.DrawTrianglesShaderOptions{}
			sop.Images[0] = t.img
			if !d.blend {
				sop.Blend = ebiten.BlendCopy
			}
			d.target.DrawTrianglesShader(d.vs, quadIndices, s, sop)
			return
		}
	}

	op := &ebiten.DrawTrianglesOptions{}
	if opts.Filter != graphics.FilterNearest {
		op.Filter = ebiten.FilterLinear
	}
	if !d.blend {
		op.Blend = ebiten.BlendCopy
	}
	op.Address = ebiten.AddressClampToZero
	d.target.DrawTriangles(d.vs, quadIndices, t.img, op)
}

// Finish is a no-op: ebiten submits the command queue at the end of Draw.
func (d *Device) Finish() {}

// quadVertices fills vs with the four corners of dst mapped to the
// matching corners of src.
func quadVertices(vs []ebiten.Vertex, src geometry.Rect, dst [4]geometry.Point, alpha float32) {
	srcPts := [4]geometry.Point{
		{X: src.X1, Y: src.Y1},
		{X: src.X2, Y: src.Y1},
		{X: src.X2, Y: src.Y2},
		{X: src.X1, Y: src.Y2},
	}
	for i := range 4 {
		vs[i] = ebiten.Vertex{
			DstX:   float32(dst[i].X),
			DstY:   float32(dst[i].Y),
			SrcX:   float32(srcPts[i].X),
			SrcY:   float32(srcPts[i].Y),
			ColorR: 1,
			ColorG: 1,
			ColorB: 1,
			ColorA: alpha,
		}
	}
}

// pixelRect converts r to whole pixels, rounding outward.
func pixelRect(r geometry.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X1)), int(math.Floor(r.Y1)),
		int(math.Ceil(r.X2)), int(math.Ceil(r.Y2)),
	)
}
