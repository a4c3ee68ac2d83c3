// Package framebuffer keeps an RGB565 copy of the display in memory and tracks
// which regions changed since the last flush. Panel hosts push only those regions.
package framebuffer

import (
	"image/color"

	"tinygo.org/x/tinyfont"

	"snake-console/game/types"
)

const BytesPerPixel = 2

// maxDirty bounds the dirty list. Past it, the new region is folded into the
// entry that grows the least.
const maxDirty = 8

// Framebuffer is a display.Sink. Pixels are big-endian RGB565, the byte order
// SPI panels expect on the wire.
type Framebuffer struct {
	width  int
	height int
	pix    []byte
	dirty  []types.Rect

	font       tinyfont.Fonter
	fontHeight int
}

func New() *Framebuffer {
	return NewSize(types.DisplayWidth, types.DisplayHeight)
}

func NewSize(width, height int) *Framebuffer {
	return &Framebuffer{
		width:      width,
		height:     height,
		pix:        make([]byte, width*height*BytesPerPixel),
		dirty:      make([]types.Rect, 0, maxDirty),
		font:       &tinyfont.TomThumb,
		fontHeight: 6,
	}
}

func (fb *Framebuffer) bounds() types.Rect {
	return types.Rect{W: fb.width, H: fb.height}
}

// FillRect paints r clipped to the buffer
func (fb *Framebuffer) FillRect(r types.Rect, c types.Color) error {
	r = r.Intersect(fb.bounds())
	if r.Empty() {
		return nil
	}
	v := c.RGB565()
	hi, lo := byte(v>>8), byte(v)
	for y := r.Y; y < r.Y+r.H; y++ {
		off := (y*fb.width + r.X) * BytesPerPixel
		for x := 0; x < r.W; x++ {
			fb.pix[off] = hi
			fb.pix[off+1] = lo
			off += BytesPerPixel
		}
	}
	fb.markDirty(r)
	return nil
}

// DrawText renders text with its top-left corner at (x, y)
func (fb *Framebuffer) DrawText(text string, x, y int, c types.Color) error {
	tinyfont.WriteLine(fb, fb.font, int16(x), int16(y+fb.fontHeight), text, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	_, w := tinyfont.LineWidth(fb.font, text)
	// Descenders reach a couple of pixels below the baseline
	box := types.Rect{X: x, Y: y, W: int(w), H: fb.fontHeight + 2}
	fb.markDirty(box.Intersect(fb.bounds()))
	return nil
}

// Size, SetPixel and Display make the buffer a tinyfont.Displayer

func (fb *Framebuffer) Size() (x, y int16) {
	return int16(fb.width), int16(fb.height)
}

func (fb *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= fb.width || iy < 0 || iy >= fb.height {
		return
	}
	v := types.Color{R: c.R, G: c.G, B: c.B}.RGB565()
	off := (iy*fb.width + ix) * BytesPerPixel
	fb.pix[off] = byte(v >> 8)
	fb.pix[off+1] = byte(v)
}

func (fb *Framebuffer) Display() error {
	return nil
}

// Pixel returns the RGB565 value at (x, y)
func (fb *Framebuffer) Pixel(x, y int) uint16 {
	off := (y*fb.width + x) * BytesPerPixel
	return uint16(fb.pix[off])<<8 | uint16(fb.pix[off+1])
}

// markDirty records r, merging it with every entry it overlaps or touches
func (fb *Framebuffer) markDirty(r types.Rect) {
	if r.Empty() {
		return
	}
	for i := 0; i < len(fb.dirty); {
		if touches(fb.dirty[i], r) {
			r = r.Union(fb.dirty[i])
			fb.dirty = append(fb.dirty[:i], fb.dirty[i+1:]...)
			i = 0 // The grown rect may now reach earlier entries
			continue
		}
		i++
	}
	if len(fb.dirty) < maxDirty {
		fb.dirty = append(fb.dirty, r)
		return
	}

	best, bestArea := 0, -1
	for i, d := range fb.dirty {
		if a := area(d.Union(r)); bestArea < 0 || a < bestArea {
			best, bestArea = i, a
		}
	}
	merged := fb.dirty[best].Union(r)
	fb.dirty = append(fb.dirty[:best], fb.dirty[best+1:]...)
	fb.markDirty(merged)
}

// touches reports whether a and b overlap or share an edge or corner
func touches(a, b types.Rect) bool {
	grown := types.Rect{X: a.X - 1, Y: a.Y - 1, W: a.W + 2, H: a.H + 2}
	return !grown.Intersect(b).Empty()
}

func area(r types.Rect) int {
	return r.W * r.H
}

// Dirty returns the disjoint regions drawn since ClearDirty. The slice is
// reused; callers must not keep it past the next draw.
func (fb *Framebuffer) Dirty() []types.Rect {
	return fb.dirty
}

func (fb *Framebuffer) ClearDirty() {
	fb.dirty = fb.dirty[:0]
}

// Region copies the pixels of r row by row, ready for a panel RAM write
func (fb *Framebuffer) Region(r types.Rect) []byte {
	r = r.Intersect(fb.bounds())
	if r.Empty() {
		return nil
	}
	out := make([]byte, 0, r.W*r.H*BytesPerPixel)
	for y := r.Y; y < r.Y+r.H; y++ {
		off := (y*fb.width + r.X) * BytesPerPixel
		out = append(out, fb.pix[off:off+r.W*BytesPerPixel]...)
	}
	return out
}
