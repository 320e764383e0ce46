// Package ccittfax wraps a raw CCITT Group 3/4 fax payload, as it appears
// inside a PDF CCITTFaxDecode stream, inside a minimal single-strip TIFF
// container. pdfimg never decodes CCITT bits itself: the wrapped container
// is handed to github.com/hhrutter/tiff by the image renderer's native-blob
// path, which already knows how to decode Compression tags 3 and 4.
package ccittfax

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Params mirrors the subset of a CCITTFaxDecode stream's /DecodeParms that
// the synthesized TIFF header needs. Columns/Rows default (1728, the image
// dictionary's /Height) are resolved by the caller before Wrap is invoked.
type Params struct {
	K                int
	Columns          int
	Rows             int
	BlackIs1         bool
	EncodedByteAlign bool
}

// TIFF tag ids used by the synthesized header.
const (
	tagImageWidth               = 256
	tagImageLength              = 257
	tagBitsPerSample            = 258
	tagCompression              = 259
	tagPhotometricInterpretation = 262
	tagStripOffsets             = 273
	tagSamplesPerPixel          = 277
	tagRowsPerStrip             = 278
	tagStripByteCounts          = 279
	tagT4Options                = 292
)

// TIFF field types.
const (
	typeShort = 3
	typeLong  = 4
)

const numTags = 10

// Wrap synthesizes a minimal little-endian TIFF container around raw,
// describing it as a single-strip Group 3 or Group 4 fax image, and returns
// the resulting byte string. raw is embedded verbatim; this never inspects
// or decodes the fax bitstream.
func Wrap(raw []byte, p Params) ([]byte, error) {
	if p.Columns <= 0 {
		return nil, errors.New("ccittfax: Columns must be positive")
	}
	if p.Rows <= 0 {
		return nil, errors.New("ccittfax: Rows must be positive")
	}

	const headerLen = 8               // byte-order mark + magic + first-IFD offset
	const ifdLen = 2 + numTags*12 + 4 // entry count + entries + next-IFD offset
	stripOffset := uint32(headerLen + ifdLen)

	var buf bytes.Buffer
	buf.Grow(int(stripOffset) + len(raw))

	// Header: "II" (little-endian), magic 42, offset of the (only) IFD.
	buf.WriteString("II")
	binary.Write(&buf, binary.LittleEndian, uint16(42))
	binary.Write(&buf, binary.LittleEndian, uint32(headerLen))

	compression := uint16(4)
	if p.K >= 0 {
		compression = 3
	}

	var t4Options uint32
	if p.K > 0 {
		t4Options |= 0x01
	}
	if p.EncodedByteAlign {
		t4Options |= 0x04
	}

	photometric := uint16(0) // WhiteIsZero
	if p.BlackIs1 {
		photometric = 1 // BlackIsZero
	}

	entries := []ifdEntry{
		{tagImageWidth, typeLong, 1, uint32(p.Columns)},
		{tagImageLength, typeLong, 1, uint32(p.Rows)},
		{tagBitsPerSample, typeShort, 1, 1},
		{tagCompression, typeShort, 1, uint32(compression)},
		{tagPhotometricInterpretation, typeShort, 1, uint32(photometric)},
		{tagStripOffsets, typeLong, 1, stripOffset},
		{tagSamplesPerPixel, typeShort, 1, 1},
		{tagRowsPerStrip, typeLong, 1, uint32(p.Rows)},
		{tagStripByteCounts, typeLong, 1, uint32(len(raw))},
		{tagT4Options, typeLong, 1, t4Options},
	}
	if len(entries) != numTags {
		return nil, errors.Errorf("ccittfax: internal error: expected %d IFD entries, built %d", numTags, len(entries))
	}

	binary.Write(&buf, binary.LittleEndian, uint16(len(entries)))
	for _, e := range entries {
		e.writeTo(&buf)
	}
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // no next IFD

	if uint32(buf.Len()) != stripOffset {
		return nil, errors.Errorf("ccittfax: internal error: header length %d does not match computed strip offset %d", buf.Len(), stripOffset)
	}

	buf.Write(raw)
	return buf.Bytes(), nil
}

type ifdEntry struct {
	tag           uint16
	typ           uint16
	count         uint32
	valueOrOffset uint32
}

// writeTo emits a 12-byte IFD entry. Every value used here fits in the
// 4-byte value/offset slot (SHORT values are left-justified per the TIFF
// spec for little-endian files), so no entry ever points outside itself.
func (e ifdEntry) writeTo(buf *bytes.Buffer) {
	binary.Write(buf, binary.LittleEndian, e.tag)
	binary.Write(buf, binary.LittleEndian, e.typ)
	binary.Write(buf, binary.LittleEndian, e.count)
	switch e.typ {
	case typeShort:
		binary.Write(buf, binary.LittleEndian, uint16(e.valueOrOffset))
		binary.Write(buf, binary.LittleEndian, uint16(0))
	default:
		binary.Write(buf, binary.LittleEndian, e.valueOrOffset)
	}
}
