package render

import (
	"image"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/taigrr/facet/pkg/scene"
)

// Interpolation selects the filter used when a PixelBuffer is drawn
// at a resolution other than its own.
type Interpolation int

const (
	InterpNearest Interpolation = iota
	InterpBilinear
	InterpBicubic
)

// PixelBuffer is a contiguous RGBA image the raster renderers draw
// into. Pixel data is non-premultiplied, row-major, four bytes per
// pixel.
type PixelBuffer struct {
	Width  int
	Height int
	Stride int // bytes per row
	Pix    []uint8

	// HasAlpha records whether the buffer carries meaningful alpha.
	// Rendering over an opaque background clears it.
	HasAlpha bool

	// Interpolation is a hint consumed when the buffer is blitted or
	// scaled to a different resolution.
	Interpolation Interpolation
}

// NewPixelBuffer creates a transparent buffer of the given size.
func NewPixelBuffer(width, height int) *PixelBuffer {
	return &PixelBuffer{
		Width:    width,
		Height:   height,
		Stride:   width * 4,
		Pix:      make([]uint8, width*height*4),
		HasAlpha: true,
	}
}

// At returns the colour at (x, y), or transparent black when out of
// bounds.
func (b *PixelBuffer) At(x, y int) scene.Color {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return scene.Color{}
	}
	i := y*b.Stride + x*4
	return scene.Color{
		R: float64(b.Pix[i]) / 255,
		G: float64(b.Pix[i+1]) / 255,
		B: float64(b.Pix[i+2]) / 255,
		A: float64(b.Pix[i+3]) / 255,
	}
}

// Set writes the colour at (x, y), quantizing to 8 bits per channel.
// Out-of-bounds writes are dropped.
func (b *PixelBuffer) Set(x, y int, c scene.Color) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	n := c.NRGBA()
	i := y*b.Stride + x*4
	b.Pix[i] = n.R
	b.Pix[i+1] = n.G
	b.Pix[i+2] = n.B
	b.Pix[i+3] = n.A
}

// Clear fills the whole buffer with a single colour.
func (b *PixelBuffer) Clear(c scene.Color) {
	n := c.NRGBA()
	for i := 0; i < len(b.Pix); i += 4 {
		b.Pix[i] = n.R
		b.Pix[i+1] = n.G
		b.Pix[i+2] = n.B
		b.Pix[i+3] = n.A
	}
	b.HasAlpha = n.A < 255
}

// ToImage converts the buffer to a standard Go image. The pixel data
// is copied.
func (b *PixelBuffer) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+b.Width*4], b.Pix[y*b.Stride:])
	}
	return img
}

// FromImage copies an image into a new PixelBuffer.
func FromImage(img image.Image) *PixelBuffer {
	bounds := img.Bounds()
	buf := NewPixelBuffer(bounds.Dx(), bounds.Dy())
	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		xdraw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, xdraw.Src)
	}
	for y := 0; y < buf.Height; y++ {
		copy(buf.Pix[y*buf.Stride:], nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+buf.Width*4])
	}
	return buf
}

// SavePNG saves the buffer as a PNG file.
func (b *PixelBuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, b.ToImage())
}

// Scale resamples the buffer to a new size using the filter selected
// by the Interpolation hint.
func (b *PixelBuffer) Scale(width, height int) *PixelBuffer {
	if width == b.Width && height == b.Height {
		return b
	}

	var scaler xdraw.Scaler
	switch b.Interpolation {
	case InterpBilinear:
		scaler = xdraw.BiLinear
	case InterpBicubic:
		scaler = xdraw.CatmullRom
	default:
		scaler = xdraw.NearestNeighbor
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	scaler.Scale(dst, dst.Bounds(), b.ToImage(), image.Rect(0, 0, b.Width, b.Height), xdraw.Src, nil)

	out := FromImage(dst)
	out.HasAlpha = b.HasAlpha
	out.Interpolation = b.Interpolation
	return out
}
