// Package filter implements the PDF filter chain: a sequence of named
// filters applied to an image (or other stream's) raw payload. Standard
// decoders (Flate, LZW, ASCII85, ASCIIHex, RunLength) are fully decoded
// here; native-container decoders (DCT, JPX, CCITTFax) are not decoded —
// CCITTFax is rewrapped as a TIFF container (see package ccittfax) and
// handed, along with DCT/JPX, to the image renderer as an opaque blob.
package filter

import (
	"bytes"
	"io"

	"github.com/mechiko/pdfimg/ccittfax"
	"github.com/mechiko/pdfimg/log"
	"github.com/mechiko/pdfimg/pdfimgerr"
)

// PDF filter names, as they appear in a stream dictionary's /Filter entry.
const (
	ASCII85   = "ASCII85Decode"
	ASCIIHex  = "ASCIIHexDecode"
	RunLength = "RunLengthDecode"
	LZW       = "LZWDecode"
	Flate     = "FlateDecode"
	CCITTFax  = "CCITTFaxDecode"
	JBIG2     = "JBIG2Decode"
	DCT       = "DCTDecode"
	JPX       = "JPXDecode"
)

// Params carries the subset of /DecodeParms entries the filters below
// understand. The zero value means "not present"; Predictor defaults to 1
// and Columns to 1 per the PDF spec when omitted.
type Params struct {
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int

	// EarlyChange is LZW-only; HasEarlyChange distinguishes "absent"
	// (defaults to 1) from an explicit 0, since the zero value of
	// EarlyChange itself is ambiguous.
	EarlyChange    int
	HasEarlyChange bool

	// CCITT-specific parameters, forwarded to ccittfax.Wrap.
	K                  int
	Columns1728Default bool
	Rows               int
	BlackIs1           bool
	EncodedByteAlign   bool
}

// Filter decodes a fully-reducible filter's payload.
type Filter interface {
	Decode(r io.Reader) (*bytes.Buffer, error)
}

// NewFilter returns a Filter for the fully-decoding filter names. CCITTFax,
// DCT, JPX and JBIG2 are not constructible here. The first three are
// native-container filters handled by Chain, never decoded to samples by
// this package; JBIG2 is not a native container and is rejected as
// unsupported.
func NewFilter(name string, parms Params) (Filter, error) {
	switch name {
	case ASCII85:
		return ascii85Filter{}, nil
	case ASCIIHex:
		return asciiHexFilter{}, nil
	case RunLength:
		return runLengthFilter{}, nil
	case LZW:
		return lzwFilter{parms}, nil
	case Flate:
		return flateFilter{parms}, nil
	default:
		log.Info.Printf("filter not supported: <%s>\n", name)
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedFilter, "filter not supported: %s", name)
	}
}

// List returns the names of the fully-supported (sample-producing)
// filters. CCITTFax/DCT/JBIG2/JPX are excluded since they only make sense
// in the context of image processing.
func List() []string {
	return []string{ASCII85, ASCIIHex, RunLength, LZW, Flate}
}

// IsNativeContainer reports whether name is a filter this package never
// decodes to samples — it only ever appears as the final filter and its
// payload is passed through to the image renderer.
func IsNativeContainer(name string) bool {
	switch name {
	case DCT, JPX, CCITTFax:
		return true
	default:
		return false
	}
}

// Entry is one element of a stream's filter pipeline: a filter name plus
// its decode parameters.
type Entry struct {
	Name   string
	Params Params
}

// Result is the outcome of running Chain over a payload.
type Result struct {
	// Data is the decoded sample bytes when RemainingNativeFilter == "",
	// or the native-container blob (for CCITTFax, the synthesized TIFF;
	// for DCT/JPX, the original compressed bytes) otherwise.
	Data []byte

	// RemainingNativeFilter is "" when Data is fully-decoded samples, or
	// one of DCT/JPX/CCITTFax when Data is a native-container blob.
	RemainingNativeFilter string
}

// Chain applies pipeline to raw in order, classifying the final filter.
// height is the image dictionary's /Height, used as the CCITTFax /Rows
// fallback when /DecodeParms omits it.
func Chain(raw []byte, pipeline []Entry, height int) (Result, error) {
	data := raw

	for i, ent := range pipeline {
		last := i == len(pipeline)-1

		if IsNativeContainer(ent.Name) {
			if !last {
				return Result{}, pdfimgerr.New(pdfimgerr.KindUnsupportedFilter,
					"native-container filter %s must be the final filter", ent.Name)
			}
			if ent.Name == CCITTFax {
				rows := ent.Params.Rows
				if rows == 0 {
					rows = height
				}
				columns := ent.Params.Columns
				if ent.Params.Columns1728Default || columns == 0 {
					columns = 1728
				}
				wrapped, err := ccittfax.Wrap(data, ccittfax.Params{
					K:                ent.Params.K,
					Columns:          columns,
					Rows:             rows,
					BlackIs1:         ent.Params.BlackIs1,
					EncodedByteAlign: ent.Params.EncodedByteAlign,
				})
				if err != nil {
					return Result{}, pdfimgerr.Wrap(pdfimgerr.KindUnsupportedFilter, err, "wrapping CCITTFax payload as TIFF")
				}
				return Result{Data: wrapped, RemainingNativeFilter: CCITTFax}, nil
			}
			return Result{Data: data, RemainingNativeFilter: ent.Name}, nil
		}

		f, err := NewFilter(ent.Name, ent.Params)
		if err != nil {
			return Result{}, err
		}
		buf, err := f.Decode(bytes.NewReader(data))
		if err != nil {
			return Result{}, pdfimgerr.Wrap(pdfimgerr.KindUnsupportedFilter, err, "decoding filter %s", ent.Name)
		}
		data = buf.Bytes()
	}

	return Result{Data: data}, nil
}
