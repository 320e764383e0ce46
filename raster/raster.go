// Package raster converts a finalized DecodedImage into a standard
// image.Image, the only place in this module that touches image.Image: it
// performs no file I/O and selects no output format.
package raster

import (
	"image"
	"image/color"

	"github.com/mechiko/pdfimg/builder"
	"github.com/mechiko/pdfimg/colorspace"
	"github.com/mechiko/pdfimg/pdfimgerr"
)

// CMYK is a row-major CMYK pixel buffer implementing image.Image, mirroring
// the convention of handling CMYK pixel access directly rather than
// through an RGB-shaped color model.
type CMYK struct {
	Pix    []byte // 4 bytes per pixel: C, M, Y, K
	Stride int
	Rect   image.Rectangle
}

// NewCMYK returns a zeroed CMYK buffer (all components 0, i.e. paper
// white) sized w x h.
func NewCMYK(w, h int) *CMYK {
	return &CMYK{Pix: make([]byte, w*h*4), Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
}

func (c *CMYK) ColorModel() color.Model { return color.CMYKModel }
func (c *CMYK) Bounds() image.Rectangle { return c.Rect }

func (c *CMYK) At(x, y int) color.Color { return c.CMYKAt(x, y) }

func (c *CMYK) CMYKAt(x, y int) color.CMYK {
	if !(image.Point{X: x, Y: y}.In(c.Rect)) {
		return color.CMYK{}
	}
	i := c.PixOffset(x, y)
	return color.CMYK{C: c.Pix[i], M: c.Pix[i+1], Y: c.Pix[i+2], K: c.Pix[i+3]}
}

// PixOffset returns the index of the first component for the pixel at (x,y).
func (c *CMYK) PixOffset(x, y int) int {
	return (y-c.Rect.Min.Y)*c.Stride + (x-c.Rect.Min.X)*4
}

// ToImage maps img's Family + pixels (+ optional alpha) onto the closest
// standard image.Image concrete type: *image.Gray for an unmasked Gray
// image, *image.NRGBA for Gray-with-alpha or any RGB image, and this
// package's own CMYK for CMYK. That CMYK type carries no alpha channel, so
// any Alpha the builders attached to a masked CMYK image is dropped.
func ToImage(img *builder.DecodedImage) (image.Image, error) {
	switch img.Family {
	case colorspace.Gray:
		return toGray(img), nil
	case colorspace.RGB:
		return toNRGBA(img), nil
	case colorspace.CMYK:
		return toCMYK(img), nil
	default:
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "raster: no image.Image mapping for family %d", img.Family)
	}
}

func toGray(img *builder.DecodedImage) image.Image {
	if img.Alpha == nil {
		g := image.NewGray(image.Rect(0, 0, img.Width, img.Height))
		copy(g.Pix, img.Pixels)
		return g
	}

	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	n := img.Width * img.Height
	for i := 0; i < n; i++ {
		v := img.Pixels[i]
		off := i * 4
		out.Pix[off], out.Pix[off+1], out.Pix[off+2], out.Pix[off+3] = v, v, v, img.Alpha[i]
	}
	return out
}

func toNRGBA(img *builder.DecodedImage) image.Image {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	n := img.Width * img.Height
	for i := 0; i < n; i++ {
		srcOff := i * 3
		dstOff := i * 4
		out.Pix[dstOff] = img.Pixels[srcOff]
		out.Pix[dstOff+1] = img.Pixels[srcOff+1]
		out.Pix[dstOff+2] = img.Pixels[srcOff+2]
		if img.Alpha != nil {
			out.Pix[dstOff+3] = img.Alpha[i]
		} else {
			out.Pix[dstOff+3] = 255
		}
	}
	return out
}

func toCMYK(img *builder.DecodedImage) *CMYK {
	out := NewCMYK(img.Width, img.Height)
	copy(out.Pix, img.Pixels)
	return out
}
