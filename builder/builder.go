// Package builder implements the ImageBuilder facade: the target for a
// decoded image's pixels, whether they arrive sample-by-sample from the
// filter chain's output or as a single native-container blob (DCT/JPX/
// CCITT). Two instantiations ship, matching two different mask-
// application policies; callers pick one by capability, not preference.
package builder

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/hhrutter/tiff"

	"github.com/mechiko/pdfimg/colorspace"
	"github.com/mechiko/pdfimg/decode"
	"github.com/mechiko/pdfimg/mask"
	"github.com/mechiko/pdfimg/pdfimgerr"
)

// DecodedImage is the pipeline's final output: a pixel buffer in a named
// device space and optional alpha. ICCProfile is never populated by the
// builders: it is nil even when the source color space was ICCBased.
type DecodedImage struct {
	Family     colorspace.Family
	Width      int
	Height     int
	Pixels     []byte // row-major, Family.Components() bytes per pixel
	Alpha      []byte // one byte per pixel, nil if no mask
	ICCProfile []byte
}

// Builder is the capability set an ImageDecoder drives.
type Builder interface {
	// CanRead reports whether this builder accepts payload already
	// compressed in nativeFilter (one of filter.DCT/JPX/CCITTFax) for the
	// given color family and component count.
	CanRead(nativeFilter string, family colorspace.Family, components int) bool

	// WritePixel consumes one pixel's raw (pre-decode) component bytes,
	// in row-major scan order.
	WritePixel(raw []byte) error

	// AddIndexedColor registers palette entry i (raw base-space bytes)
	// for an Indexed color space.
	AddIndexedColor(i int, raw []byte)

	// ReadBlob hands the builder a native-container payload instead of
	// per-pixel samples.
	ReadBlob(data []byte, nativeFilter string) error

	// SetNegated records that color channels (not alpha) should be
	// negated at Finalize, without running per-sample decode math.
	SetNegated(negated bool)

	// Finalize flushes buffered state, applies negation, and — for
	// batch-alpha builders — composes the mask.
	Finalize() error

	// Result returns the finalized image. Valid only after Finalize.
	Result() (*DecodedImage, error)
}

// Config is the shared construction input for both builder variants.
type Config struct {
	Width, Height    int
	ColorSpace       *colorspace.Descriptor
	BitsPerComponent int
	Decode           []decode.Entry
	Mask             mask.Model
	Pro              bool // selects the batch-alpha (Pro) builder when true
}

// New selects and constructs the builder instance named by cfg.Pro.
func New(cfg Config) Builder {
	base := newBase(cfg)
	if cfg.Pro {
		return &proBuilder{base: base}
	}
	return &liteBuilder{base: base}
}

type base struct {
	width, height int
	cs            *colorspace.Descriptor
	bpc           int
	decodeEntries []decode.Entry
	maskModel     mask.Model
	negated       bool

	components int
	pixels     []byte
	alpha      []byte
	cursor     int // pixel index, advances with each WritePixel

	palette [][]byte

	// colorKeySamples holds each pixel's raw (pre-resolve) sample byte,
	// needed by a batch-alpha builder that composes ColorKey alpha at
	// Finalize, once the per-pixel raw value is no longer otherwise
	// available. Only allocated when the mask is a ColorKey.
	colorKeySamples []byte
}

func newBase(cfg Config) *base {
	comps := cfg.ColorSpace.Family.Components()
	b := &base{
		width:         cfg.Width,
		height:        cfg.Height,
		cs:            cfg.ColorSpace,
		bpc:           cfg.BitsPerComponent,
		decodeEntries: cfg.Decode,
		maskModel:     cfg.Mask,
		components:    comps,
		pixels:        make([]byte, cfg.Width*cfg.Height*comps),
	}
	if !cfg.Mask.None() {
		b.alpha = make([]byte, cfg.Width*cfg.Height)
		for i := range b.alpha {
			b.alpha[i] = 255
		}
	}
	if cfg.Mask.ColorKey != nil {
		b.colorKeySamples = make([]byte, cfg.Width*cfg.Height)
	}
	return b
}

// recordColorKeySample stashes pixel i's raw sample byte for later
// ColorKey composition. A no-op unless the mask is a ColorKey mask.
func (b *base) recordColorKeySample(i int, raw []byte) {
	if b.colorKeySamples == nil || len(raw) == 0 {
		return
	}
	b.colorKeySamples[i] = raw[0]
}

// errPixelOverflow is returned by WritePixel once width*height pixels have
// already been written; a well-formed filter chain never triggers it.
var errPixelOverflow = pdfimgerr.New(pdfimgerr.KindTruncatedImage, "WritePixel called beyond width*height samples")

// alphaFor computes one pixel's alpha from whichever mask variant m
// carries. raw holds the pixel's own pre-resolve sample bytes exactly as
// WritePixel received them: for the only color space ColorKey is valid
// against (Indexed, enforced by the orchestrator), that is the palette
// index itself, not the resolved base-space color — ColorKey.AlphaAt is
// defined over raw, pre-Decode-array component values.
func alphaFor(m mask.Model, pixelIndex int, raw []byte) byte {
	switch {
	case m.Soft != nil:
		return m.Soft.AlphaAt(pixelIndex)
	case m.Stencil != nil:
		return m.Stencil.AlphaAt(pixelIndex)
	case m.ColorKey != nil:
		components := make([]int, len(raw))
		for i, v := range raw {
			components[i] = int(v)
		}
		return m.ColorKey.AlphaAt(components)
	default:
		return 255
	}
}

func (b *base) AddIndexedColor(i int, raw []byte) {
	for len(b.palette) <= i {
		b.palette = append(b.palette, nil)
	}
	b.palette[i] = raw
}

func (b *base) SetNegated(negated bool) { b.negated = negated }

// resolveColor applies Indexed palette lookup and/or decode-array
// remapping to one pixel's raw samples, per §4.6's writePixel procedure.
func (b *base) resolveColor(raw []byte) []byte {
	if b.cs.Indexed != nil {
		idx := 0
		if len(raw) > 0 {
			idx = int(raw[0])
		}
		if len(b.decodeEntries) == 1 {
			idx = int(decode.Apply(b.decodeEntries[0], idx))
		}
		if idx >= 0 && idx < len(b.palette) && b.palette[idx] != nil {
			return b.palette[idx]
		}
		return make([]byte, b.cs.Indexed.Base.Components)
	}

	if len(b.decodeEntries) == len(raw) && len(b.decodeEntries) > 0 {
		out := make([]byte, len(raw))
		for i, e := range b.decodeEntries {
			out[i] = decode.Apply(e, int(raw[i]))
		}
		return out
	}

	if b.bpc != 8 {
		out := make([]byte, len(raw))
		for i, v := range raw {
			out[i] = decode.ScaleToByte(int(v), b.bpc)
		}
		return out
	}

	return raw
}

func (b *base) writeResolvedPixel(color []byte) {
	n := len(color)
	if n > b.components {
		n = b.components
	}
	off := b.cursor * b.components
	copy(b.pixels[off:off+n], color[:n])
	b.cursor++
}

func (b *base) applyNegation() {
	if !b.negated {
		return
	}
	for i := range b.pixels {
		b.pixels[i] = 255 - b.pixels[i]
	}
}

func (b *base) decodeBlob(data []byte, nativeFilter string) error {
	switch nativeFilter {
	case "DCTDecode":
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return pdfimgerr.Wrap(pdfimgerr.KindTruncatedImage, err, "decoding DCT blob")
		}
		return b.fillFromImage(img)
	case "CCITTFaxDecode":
		img, err := tiff.Decode(bytes.NewReader(data))
		if err != nil {
			return pdfimgerr.Wrap(pdfimgerr.KindTruncatedImage, err, "decoding wrapped CCITTFax/TIFF blob")
		}
		return b.fillFromImage(img)
	case "JPXDecode":
		// No JPEG2000 decoder is available: the blob is rejected with
		// KindUnsupportedByRenderer and nothing of it is kept.
		return pdfimgerr.New(pdfimgerr.KindUnsupportedByRenderer, "JPXDecode has no pixel-level decoder")
	default:
		return pdfimgerr.New(pdfimgerr.KindUnsupportedByRenderer, "unsupported native filter %q", nativeFilter)
	}
}

func (b *base) fillFromImage(img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() != b.width || bounds.Dy() != b.height {
		return pdfimgerr.New(pdfimgerr.KindTruncatedImage, "blob dimensions %dx%d do not match declared %dx%d", bounds.Dx(), bounds.Dy(), b.width, b.height)
	}
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			r, g, bl, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			off := (y*b.width + x) * b.components
			switch b.components {
			case 1:
				b.pixels[off] = byte(r >> 8)
			case 3:
				b.pixels[off] = byte(r >> 8)
				b.pixels[off+1] = byte(g >> 8)
				b.pixels[off+2] = byte(bl >> 8)
			case 4:
				// image.Image's RGBA() never reports CMYK directly;
				// DCT/TIFF decoders expose image.CMYK for 4-component
				// sources, handled by a type assertion below.
			}
		}
	}
	if cmyk, ok := img.(*image.CMYK); ok && b.components == 4 {
		for y := 0; y < b.height; y++ {
			for x := 0; x < b.width; x++ {
				px := cmyk.CMYKAt(bounds.Min.X+x, bounds.Min.Y+y)
				off := (y*b.width + x) * 4
				b.pixels[off], b.pixels[off+1], b.pixels[off+2], b.pixels[off+3] = px.C, px.M, px.Y, px.K
			}
		}
	}
	return nil
}

func (b *base) result() (*DecodedImage, error) {
	return &DecodedImage{
		Family: b.cs.Family,
		Width:  b.width,
		Height: b.height,
		Pixels: b.pixels,
		Alpha:  b.alpha,
	}, nil
}
