package filter

import (
	"bytes"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
)

type asciiHexFilter struct{}

// eodHex is the ASCIIHexDecode end-of-data marker.
const eodHex = '>'

// Decode implements decoding for an ASCIIHexDecode filter.
func (f asciiHexFilter) Decode(r io.Reader) (*bytes.Buffer, error) {
	p, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p = bytes.TrimSpace(p)

	if i := bytes.IndexByte(p, eodHex); i >= 0 {
		p = p[:i]
	}

	// Whitespace inside the hex stream is legal and must be dropped before
	// decoding, not just at the ends.
	p = bytes.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\f', 0x00:
			return -1
		}
		return r
	}, p)

	if len(p)%2 == 1 {
		p = append(p, '0')
	}

	dst := make([]byte, hex.DecodedLen(len(p)))
	if _, err := hex.Decode(dst, p); err != nil {
		return nil, errors.Wrap(err, "asciiHexDecode")
	}

	return bytes.NewBuffer(dst), nil
}
