package filter

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

type runLengthFilter struct{}

const eodRunLength = 0x80

func unexpectedEOFRunLength(err error) error {
	if err == io.EOF {
		return errors.New("runLengthDecode: missing EOD marker in encoded stream")
	}
	return err
}

// Decode implements decoding for a RunLengthDecode filter.
func (f runLengthFilter) Decode(r io.Reader) (*bytes.Buffer, error) {
	src := bufio.NewReader(r)
	var w bytes.Buffer

	for {
		b, err := src.ReadByte()
		if err != nil {
			return nil, unexpectedEOFRunLength(err)
		}
		if b == eodRunLength {
			return &w, nil
		}
		if b < 0x80 {
			count := int(b) + 1
			for j := 0; j < count; j++ {
				nextByte, err := src.ReadByte()
				if err != nil {
					return nil, unexpectedEOFRunLength(err)
				}
				w.WriteByte(nextByte)
			}
			continue
		}
		count := 257 - int(b)
		nextByte, err := src.ReadByte()
		if err != nil {
			return nil, unexpectedEOFRunLength(err)
		}
		for j := 0; j < count; j++ {
			w.WriteByte(nextByte)
		}
	}
}
