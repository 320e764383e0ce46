// Package decode implements the per-sample stages of the image pipeline
// that run after the filter chain has produced raw bytes: unpacking
// sub-byte samples out of packed rows, and remapping samples through a
// PDF /Decode array.
package decode

import (
	"github.com/mechiko/pdfimg/pdfimgerr"
)

// MaxValForBits returns the maximum unsigned value representable in bpc
// bits, i.e. 2^bpc - 1.
func MaxValForBits(bpc int) int { return 1<<uint(bpc) - 1 }

// Unpacker reads fixed-width samples from packed image rows.
type Unpacker struct {
	BitsPerComponent int
	Width            int // samples per row (= width * numComponents)
}

// Row extracts Width samples from one packed row of data, discarding any
// trailing pad bits to the next byte boundary (7.4.9: each row begins on
// a byte boundary). BitsPerComponent of 8 is a byte-for-byte copy;
// 1/2/4-bit depths are unpacked most-significant-bit first.
func (u Unpacker) Row(data []byte) ([]int, error) {
	switch u.BitsPerComponent {
	case 8:
		if len(data) < u.Width {
			return nil, pdfimgerr.New(pdfimgerr.KindTruncatedImage, "row has %d bytes, need %d samples", len(data), u.Width)
		}
		out := make([]int, u.Width)
		for i := 0; i < u.Width; i++ {
			out[i] = int(data[i])
		}
		return out, nil
	case 1, 2, 4:
		rowBytes := (u.Width*u.BitsPerComponent + 7) / 8
		if len(data) < rowBytes {
			return nil, pdfimgerr.New(pdfimgerr.KindTruncatedImage, "row has %d bytes, need %d for %d samples at %d bpc", len(data), rowBytes, u.Width, u.BitsPerComponent)
		}
		out := make([]int, u.Width)
		perByte := 8 / u.BitsPerComponent
		mask := (1 << uint(u.BitsPerComponent)) - 1
		for i := 0; i < u.Width; i++ {
			byteIdx := i / perByte
			shift := uint(8 - u.BitsPerComponent*(i%perByte+1))
			out[i] = int(data[byteIdx]>>shift) & mask
		}
		return out, nil
	default:
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedBitDepth, "unsupported bits per component: %d", u.BitsPerComponent)
	}
}

// RowBytes is the number of packed bytes one row of Width samples occupies.
func (u Unpacker) RowBytes() int {
	return (u.Width*u.BitsPerComponent + 7) / 8
}

// Entry is one component's linear remap range from a PDF /Decode array.
type Entry struct {
	Min, Max float64
	Step     float64 // (Max - Min) / (2^bitsPerComponent - 1)
}

// BuildArray constructs one Entry per component-pair in a /Decode array.
func BuildArray(pairs []float64, bitsPerComponent int) []Entry {
	if len(pairs) == 0 {
		return nil
	}
	q := float64(MaxValForBits(bitsPerComponent))
	entries := make([]Entry, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		min, max := pairs[i], pairs[i+1]
		entries = append(entries, Entry{Min: min, Max: max, Step: (max - min) / q})
	}
	return entries
}

// IsPureNegation reports whether entries describe a plain 1-0 inversion
// per component (the common "invert this channel" usage of /Decode),
// which some renderers special-case as a negation flag rather than a
// full per-sample remap.
func IsPureNegation(entries []Entry) bool {
	if len(entries) == 0 {
		return false
	}
	for _, e := range entries {
		if e.Min != 1 || e.Max != 0 {
			return false
		}
	}
	return true
}

// Apply remaps one packed sample through e, producing an 8-bit value.
// The lower clamp bound is 1, not 0: a zero-valued decoded sample is
// folded up to 1, carried over from the system this module reimplements.
func Apply(e Entry, sample int) uint8 {
	f := e.Min + float64(sample)*e.Step*255
	v := int(f + 0.5) // round half away from zero for non-negative f
	if v < 1 {
		v = 1
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// ApplyCorrected is the same remap with the clamp bound fixed to the
// conventional [0,255] range. The builders do not call it (they always use
// Apply), whatever Configuration.CorrectedDecode says.
func ApplyCorrected(e Entry, sample int) uint8 {
	f := e.Min + float64(sample)*e.Step*255
	v := int(f + 0.5)
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// ScaleToByte scales a packed sample to an 8-bit value using the ratio
// 255/bitsPerComponent. This is the formula this module's source system
// actually uses for non-indexed, non-8-bpc samples with no /Decode array;
// it is not dimensionally sound (2-bit samples only ever reach values
// 0..3, yet are divided by 2 rather than by 3) but is preserved as the
// default to match observed behavior. See ScaleToByteCorrected.
func ScaleToByte(sample, bitsPerComponent int) uint8 {
	v := sample * 255 / bitsPerComponent
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// ScaleToByteCorrected scales sample to 8 bits using the dimensionally
// correct divisor 2^bitsPerComponent - 1. The builders do not call it
// (they always use ScaleToByte), whatever
// Configuration.CorrectedSubByteScale says.
func ScaleToByteCorrected(sample, bitsPerComponent int) uint8 {
	max := MaxValForBits(bitsPerComponent)
	if max == 0 {
		return 0
	}
	return uint8(sample * 255 / max)
}
