package filter

import (
	"bytes"
	"io"

	"github.com/hhrutter/lzw"
)

type lzwFilter struct {
	parms Params
}

// Decode implements decoding for an LZWDecode filter. PDF's LZWDecode
// defaults EarlyChange to 1 when /DecodeParms omits it.
func (f lzwFilter) Decode(r io.Reader) (*bytes.Buffer, error) {
	earlyChange := true
	if f.parms.HasEarlyChange {
		earlyChange = f.parms.EarlyChange != 0
	}

	rc := lzw.NewReader(r, earlyChange)
	defer rc.Close()

	var b bytes.Buffer
	if _, err := io.Copy(&b, rc); err != nil {
		return nil, err
	}

	return &b, nil
}
