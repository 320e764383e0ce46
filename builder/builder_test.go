package builder

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"

	"github.com/mechiko/pdfimg/colorspace"
	"github.com/mechiko/pdfimg/decode"
	"github.com/mechiko/pdfimg/mask"
)

func grayConfig(w, h int) Config {
	return Config{
		Width:            w,
		Height:           h,
		ColorSpace:       &colorspace.Descriptor{Family: colorspace.Gray, Components: 1},
		BitsPerComponent: 8,
	}
}

func TestLiteBuilderCanReadCapabilityMatrix(t *testing.T) {
	b := New(Config{Width: 1, Height: 1, ColorSpace: &colorspace.Descriptor{Family: colorspace.RGB, Components: 3}})
	if !b.CanRead("DCTDecode", colorspace.RGB, 3) {
		t.Fatal("expected lite builder to accept DCT for a 3-component space")
	}
	if b.CanRead("DCTDecode", colorspace.CMYK, 4) {
		t.Fatal("expected lite builder to reject DCT for a 4-component space")
	}
	if b.CanRead("CCITTFaxDecode", colorspace.Gray, 1) {
		t.Fatal("expected lite builder to reject CCITTFax entirely")
	}
}

func TestProBuilderCanReadCapabilityMatrix(t *testing.T) {
	cfg := grayConfig(1, 1)
	cfg.Pro = true
	b := New(cfg)
	for _, f := range []string{"DCTDecode", "JPXDecode", "CCITTFaxDecode"} {
		if !b.CanRead(f, colorspace.CMYK, 4) {
			t.Fatalf("expected pro builder to accept %s for CMYK", f)
		}
	}
	if b.CanRead("RunLengthDecode", colorspace.Gray, 1) {
		t.Fatal("expected pro builder to reject a filter it has no native-container decoder for")
	}
}

func TestLiteBuilderWritePixelAppliesDecodeArray(t *testing.T) {
	b := New(grayConfig(2, 1))
	entries := decode.BuildArray([]float64{1, 0}, 8)
	base := b.(*liteBuilder).base
	base.decodeEntries = entries

	if err := b.WritePixel([]byte{0}); err != nil {
		t.Fatalf("WritePixel: %v", err)
	}
	if err := b.WritePixel([]byte{255}); err != nil {
		t.Fatalf("WritePixel: %v", err)
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	img, err := b.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	// Apply computes Min + sample*Step*255 clamped to [1,255]; the [1 0]
	// array has Min 1, so sample 0 maps to 1 and sample 255 to the floor 1.
	if img.Pixels[0] != 1 {
		t.Fatalf("expected inverted decode array to map sample 0 to 1, got %d", img.Pixels[0])
	}
}

func TestLiteBuilderWritePixelOverflow(t *testing.T) {
	b := New(grayConfig(1, 1))
	if err := b.WritePixel([]byte{1}); err != nil {
		t.Fatalf("WritePixel: %v", err)
	}
	if err := b.WritePixel([]byte{1}); err == nil {
		t.Fatal("expected overflow error on the second WritePixel of a 1x1 image")
	}
}

func TestLiteBuilderBakesSoftMaskAlphaPerPixel(t *testing.T) {
	cfg := grayConfig(2, 1)
	cfg.Mask = mask.Model{Soft: &mask.SoftMask{Samples: []byte{10, 200}, Width: 2, Height: 1}}
	b := New(cfg)
	if err := b.WritePixel([]byte{1}); err != nil {
		t.Fatalf("WritePixel: %v", err)
	}
	if err := b.WritePixel([]byte{2}); err != nil {
		t.Fatalf("WritePixel: %v", err)
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	img, err := b.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if img.Alpha[0] != 10 || img.Alpha[1] != 200 {
		t.Fatalf("expected per-pixel baked alpha [10 200], got %v", img.Alpha)
	}
}

func TestProBuilderComposesMaskAtFinalize(t *testing.T) {
	cfg := grayConfig(2, 1)
	cfg.Pro = true
	cfg.Mask = mask.Model{Stencil: &mask.StencilMask{Samples: []byte{0, 1}, Width: 2, Height: 1}}
	b := New(cfg)
	if err := b.WritePixel([]byte{9}); err != nil {
		t.Fatalf("WritePixel: %v", err)
	}
	if err := b.WritePixel([]byte{9}); err != nil {
		t.Fatalf("WritePixel: %v", err)
	}
	img, err := b.Result()
	if err != nil {
		t.Fatalf("Result before Finalize: %v", err)
	}
	if img.Alpha[0] != 255 || img.Alpha[1] != 255 {
		t.Fatal("expected alpha to remain at its opaque default before Finalize composes the mask")
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	img, err = b.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if img.Alpha[0] != 255 || img.Alpha[1] != 0 {
		t.Fatalf("expected stencil composition [255 0] at Finalize, got %v", img.Alpha)
	}
}

func indexedConfig(w, h int) Config {
	return Config{
		Width:            w,
		Height:           h,
		ColorSpace:       &colorspace.Descriptor{Family: colorspace.RGB, Components: 3, Indexed: &colorspace.IndexedInfo{Base: &colorspace.Descriptor{Family: colorspace.RGB, Components: 3}}},
		BitsPerComponent: 8,
	}
}

func TestLiteBuilderColorKeyMatchesRawIndexNotResolvedColor(t *testing.T) {
	cfg := indexedConfig(2, 1)
	cfg.Mask = mask.Model{ColorKey: &mask.ColorKey{Ranges: []mask.ColorKeyRange{{Min: 4, Max: 4}}}}
	b := New(cfg)
	b.AddIndexedColor(4, []byte{1, 2, 3})
	b.AddIndexedColor(5, []byte{9, 9, 9})

	if err := b.WritePixel([]byte{4}); err != nil {
		t.Fatalf("WritePixel: %v", err)
	}
	if err := b.WritePixel([]byte{5}); err != nil {
		t.Fatalf("WritePixel: %v", err)
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	img, err := b.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	// Min==Max==4 matches the preserved Min>=c && Max<=c comparison only
	// for index 4 (the raw sample), never for its resolved RGB color
	// [1 2 3], which would never fall in a single-component range.
	if img.Alpha[0] != 0 {
		t.Fatalf("expected palette index 4 to match its color-key range and mask out (alpha 0), got %d", img.Alpha[0])
	}
	if img.Alpha[1] != 255 {
		t.Fatalf("expected palette index 5 to stay unmasked, got %d", img.Alpha[1])
	}
}

func TestProBuilderColorKeyMatchesRawIndexAtFinalize(t *testing.T) {
	cfg := indexedConfig(2, 1)
	cfg.Pro = true
	cfg.Mask = mask.Model{ColorKey: &mask.ColorKey{Ranges: []mask.ColorKeyRange{{Min: 4, Max: 4}}}}
	b := New(cfg)
	b.AddIndexedColor(4, []byte{1, 2, 3})
	b.AddIndexedColor(5, []byte{9, 9, 9})

	if err := b.WritePixel([]byte{4}); err != nil {
		t.Fatalf("WritePixel: %v", err)
	}
	if err := b.WritePixel([]byte{5}); err != nil {
		t.Fatalf("WritePixel: %v", err)
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	img, err := b.Result()
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if img.Alpha[0] != 0 || img.Alpha[1] != 255 {
		t.Fatalf("expected [0 255] composed from raw palette indices at Finalize, got %v", img.Alpha)
	}
}

func TestProBuilderFlipsNegationForCMYKOverDCT(t *testing.T) {
	cfg := Config{
		Width:      1,
		Height:     1,
		ColorSpace: &colorspace.Descriptor{Family: colorspace.CMYK, Components: 4},
		Pro:        true,
	}
	b := New(cfg).(*proBuilder)
	// A 1x1 JPEG produced by the standard library encoder drives ReadBlob;
	// the flip depends only on the DCT filter name and the builder's 4
	// components, not on the JPEG's own color model.
	var jpg bytes.Buffer
	if err := jpeg.Encode(&jpg, image.NewGray(image.Rect(0, 0, 1, 1)), nil); err != nil {
		t.Fatalf("encoding test JPEG: %v", err)
	}
	if b.negated {
		t.Fatal("sanity: negated should start false")
	}
	if err := b.ReadBlob(jpg.Bytes(), "DCTDecode"); err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	if !b.negated {
		t.Fatal("expected ReadBlob of a DCT blob into a CMYK builder to set negated")
	}
}

func TestNewSelectsLiteOrProByConfig(t *testing.T) {
	if _, ok := New(grayConfig(1, 1)).(*liteBuilder); !ok {
		t.Fatal("expected Config{Pro: false} to construct a liteBuilder")
	}
	proCfg := grayConfig(1, 1)
	proCfg.Pro = true
	if _, ok := New(proCfg).(*proBuilder); !ok {
		t.Fatal("expected Config{Pro: true} to construct a proBuilder")
	}
}
