package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/mechiko/pdfimg/builder"
	"github.com/mechiko/pdfimg/colorspace"
)

func TestToImageGrayWithoutAlpha(t *testing.T) {
	img, err := ToImage(&builder.DecodedImage{
		Family: colorspace.Gray,
		Width:  2, Height: 1,
		Pixels: []byte{10, 200},
	})
	if err != nil {
		t.Fatalf("ToImage: %v", err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray, got %T", img)
	}
	if g.GrayAt(0, 0).Y != 10 || g.GrayAt(1, 0).Y != 200 {
		t.Fatalf("unexpected gray samples: %v", g.Pix)
	}
}

func TestToImageGrayWithAlphaBecomesNRGBA(t *testing.T) {
	img, err := ToImage(&builder.DecodedImage{
		Family: colorspace.Gray,
		Width:  1, Height: 1,
		Pixels: []byte{128},
		Alpha:  []byte{64},
	})
	if err != nil {
		t.Fatalf("ToImage: %v", err)
	}
	n, ok := img.(*image.NRGBA)
	if !ok {
		t.Fatalf("expected *image.NRGBA, got %T", img)
	}
	c := n.NRGBAAt(0, 0)
	if c.R != 128 || c.G != 128 || c.B != 128 || c.A != 64 {
		t.Fatalf("expected gray replicated across RGB with alpha preserved, got %+v", c)
	}
}

func TestToImageRGBDefaultsOpaqueAlpha(t *testing.T) {
	img, err := ToImage(&builder.DecodedImage{
		Family: colorspace.RGB,
		Width:  1, Height: 1,
		Pixels: []byte{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("ToImage: %v", err)
	}
	c := img.(*image.NRGBA).NRGBAAt(0, 0)
	if c != (color.NRGBA{R: 1, G: 2, B: 3, A: 255}) {
		t.Fatalf("expected opaque alpha when none is attached, got %+v", c)
	}
}

func TestToImageCMYKRoundTripsComponents(t *testing.T) {
	img, err := ToImage(&builder.DecodedImage{
		Family: colorspace.CMYK,
		Width:  1, Height: 1,
		Pixels: []byte{10, 20, 30, 40},
	})
	if err != nil {
		t.Fatalf("ToImage: %v", err)
	}
	cmyk, ok := img.(*CMYK)
	if !ok {
		t.Fatalf("expected *raster.CMYK, got %T", img)
	}
	c := cmyk.CMYKAt(0, 0)
	if c.C != 10 || c.M != 20 || c.Y != 30 || c.K != 40 {
		t.Fatalf("unexpected CMYK components: %+v", c)
	}
}

func TestToImageUnsupportedFamilyErrors(t *testing.T) {
	_, err := ToImage(&builder.DecodedImage{Family: colorspace.Family(99), Width: 1, Height: 1})
	if err == nil {
		t.Fatal("expected an error for an unrecognized family")
	}
}
