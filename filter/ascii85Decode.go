package filter

import (
	"bytes"
	"encoding/ascii85"
	"io"

	"github.com/pkg/errors"
)

type ascii85Filter struct{}

const eodASCII85 = "~>"

// Decode implements decoding for an ASCII85Decode filter.
func (f ascii85Filter) Decode(r io.Reader) (*bytes.Buffer, error) {
	p, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	// The eod marker is optional on truncated/embedded payloads; strip it
	// when present rather than requiring it.
	p = bytes.TrimSpace(p)
	if bytes.HasSuffix(p, []byte(eodASCII85)) {
		p = p[:len(p)-2]
	}

	decoder := ascii85.NewDecoder(bytes.NewReader(p))
	buf, err := io.ReadAll(decoder)
	if err != nil {
		return nil, errors.Wrap(err, "ascii85Decode")
	}

	return bytes.NewBuffer(buf), nil
}
