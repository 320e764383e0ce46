// Package mask implements the three alpha-channel variants a PDF image
// can carry: a soft mask (continuous-tone grayscale alpha), a stencil
// mask (1-bit alpha), and a color-key mask (alpha derived from comparing
// the image's own color components against ranges, with no separate mask
// image at all).
package mask

// SoftMask is a continuous-tone alpha channel decoded from an /SMask
// image. Samples holds one already-normalized (0-255) alpha byte per
// pixel, row-major; it is populated by decoding the SMask's own image
// stream through the same pipeline used for the host image.
type SoftMask struct {
	Samples       []byte
	Width, Height int
}

// AlphaAt returns the alpha value at pixel index i (y*Width+x).
func (s SoftMask) AlphaAt(i int) byte {
	if i < 0 || i >= len(s.Samples) {
		return 255
	}
	return s.Samples[i]
}

// StencilMask is a 1-bit alpha channel decoded from an /Mask image
// (ImageMask true). Samples holds one bit per pixel packed as a whole
// byte (0 or 1) for addressing simplicity; Inverted reflects whether the
// mask's own /Decode array reverses the default polarity (unset sample
// paints, set sample hides).
type StencilMask struct {
	Samples       []byte
	Width, Height int
	Inverted      bool
}

// AlphaAt returns 255 (paint) or 0 (hide) for pixel index i.
func (s StencilMask) AlphaAt(i int) byte {
	if i < 0 || i >= len(s.Samples) {
		return 255
	}
	paint := s.Samples[i] == 0
	if s.Inverted {
		paint = !paint
	}
	if paint {
		return 255
	}
	return 0
}

// ColorKeyRange is one component's [min,max] match range from a /Mask
// array.
type ColorKeyRange struct {
	Min, Max int
}

// ColorKey derives alpha directly from the host image's own raw
// (pre-Decode-array) color components, with no separate mask image: pixels whose every
// component falls inside its range are masked out.
type ColorKey struct {
	Ranges []ColorKeyRange
}

// AlphaAt returns 0 (masked out) or 255 (opaque) for one pixel's raw
// (pre-Decode-array, pre-scale) component values.
//
// The per-component test is preserved exactly as it is in the system
// this module reimplements: `Min >= component && Max <= component`,
// rather than the conventional `component >= Min && component <= Max`.
// For any range with Min < Max (the overwhelmingly common case) this
// condition can only hold when Min >= Max, i.e. it almost never matches,
// making ColorKey masking effectively inverted in practice. No corrected
// variant is offered.
func (c ColorKey) AlphaAt(components []int) byte {
	if len(c.Ranges) != len(components) {
		return 255
	}
	within := true
	for i, r := range c.Ranges {
		component := components[i]
		if !(r.Min >= component && r.Max <= component) {
			within = false
			break
		}
	}
	if within {
		return 0
	}
	return 255
}

// Model is the tagged union of the three mask variants an ImageBuilder
// can apply; exactly one field is non-nil.
type Model struct {
	Soft     *SoftMask
	Stencil  *StencilMask
	ColorKey *ColorKey
}

// None reports whether m carries no mask at all.
func (m Model) None() bool {
	return m.Soft == nil && m.Stencil == nil && m.ColorKey == nil
}
