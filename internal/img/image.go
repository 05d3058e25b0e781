// img package holds the in-memory pixel buffer shared by the codec and the tools
package img

import (
	"image"
	"image/color"
)

// Color is a single 24 bit pixel, stored in R, G, B order.
type Color struct {
	R, G, B byte
}

var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
	Red   = Color{255, 0, 0}
	Green = Color{0, 255, 0}
	Blue  = Color{0, 0, 255}
)

// RGBA implements color.Color
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{c.R, c.G, c.B, 0xff}.RGBA()
}

// Image is a rectangular grid of pixels, rows top-to-bottom.
// The zero value is an empty (0x0) image.
type Image struct {
	width  int
	height int
	pixels [][]Color
}

// Creates an image of the given size with every pixel set to fill.
// Negative dimensions are treated as zero.
func New(width, height int, fill Color) *Image {
	width, height = max(width, 0), max(height, 0)

	// One backing array for all rows. A zero width still gets height empty rows.
	backing := make([]Color, width*height)
	for i := range backing {
		backing[i] = fill
	}

	pixels := make([][]Color, height)
	for y := range height {
		pixels[y] = backing[y*width : (y+1)*width : (y+1)*width]
	}

	return &Image{width: width, height: height, pixels: pixels}
}

func (m *Image) Width() int {
	if m == nil {
		return 0
	}
	return m.width
}

func (m *Image) Height() int {
	if m == nil {
		return 0
	}
	return m.height
}

// Reports whether the image has no pixels at all
func (m *Image) Empty() bool {
	return m.Width() == 0 || m.Height() == 0
}

// Returns row y. The slice aliases the image, writes to it change the image.
func (m *Image) Row(y int) []Color {
	return m.pixels[y]
}

func (m *Image) At(x, y int) Color {
	return m.pixels[y][x]
}

func (m *Image) Set(x, y int, c Color) {
	m.pixels[y][x] = c
}

// Returns a deep copy of the image
func (m *Image) Clone() *Image {
	dup := New(m.Width(), m.Height(), Black)
	for y := range dup.height {
		copy(dup.pixels[y], m.pixels[y])
	}
	return dup
}

// Converts the image to an *image.RGBA (fully opaque)
func (m *Image) ToRGBA() *image.RGBA {
	rgba := image.NewRGBA(image.Rect(0, 0, m.Width(), m.Height()))
	for y := range m.Height() {
		p := rgba.Pix[y*rgba.Stride : y*rgba.Stride+m.width*4]
		for x, c := range m.pixels[y] {
			p[x*4+0] = c.R
			p[x*4+1] = c.G
			p[x*4+2] = c.B
			p[x*4+3] = 0xff
		}
	}
	return rgba
}

// Copies any image.Image into a new Image. Alpha is dropped.
func FromImage(src image.Image) *Image {
	bounds := src.Bounds()
	m := New(bounds.Dx(), bounds.Dy(), Black)

	// Fast path for the layout produced by ToRGBA and most decoders
	if rgba, ok := src.(*image.RGBA); ok {
		for y := range m.height {
			off := rgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			p := rgba.Pix[off : off+m.width*4]
			for x := range m.width {
				m.pixels[y][x] = Color{p[x*4+0], p[x*4+1], p[x*4+2]}
			}
		}
		return m
	}

	for y := range m.height {
		for x := range m.width {
			c := color.RGBAModel.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.RGBA)
			m.pixels[y][x] = Color{c.R, c.G, c.B}
		}
	}
	return m
}
