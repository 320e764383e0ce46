package model

import (
	"bytes"
	"io"

	"github.com/mechiko/pdfimg/filter"
	"github.com/mechiko/pdfimg/pdfimgerr"
)

// PDFFilter is one element of a stream dictionary's /Filter (+ /DecodeParms)
// entry, in pipeline order.
type PDFFilter struct {
	Name        string
	DecodeParms Dict
}

// StreamDict is a PDF stream object: its dictionary plus the raw (encoded)
// and, once Decode has run, fully decoded bytes. Unlike the image decode
// path (which runs filter.Chain directly so it can stop at a native
// container), Decode is for non-image streams — content streams, ICC
// profiles, object streams — where every filter is expected to fully
// reduce to samples.
type StreamDict struct {
	Dict
	Raw            []byte
	Content        []byte
	FilterPipeline []PDFFilter
}

// Decode runs sd's filter pipeline over Raw, leaving the result in Content.
// It fails with KindUnsupportedFilter if the pipeline contains a
// native-container filter (DCT/JPX/CCITTFax), which only makes sense for
// image streams going through filter.Chain, or JBIG2, which no filter in
// this module decodes.
func (sd *StreamDict) Decode() error {
	if sd.FilterPipeline == nil {
		sd.Content = sd.Raw
		return nil
	}

	var r io.Reader = bytes.NewReader(sd.Raw)

	for _, f := range sd.FilterPipeline {
		if filter.IsNativeContainer(f.Name) {
			return pdfimgerr.New(pdfimgerr.KindUnsupportedFilter,
				"stream filter %s is a native-container filter, not valid outside an image stream", f.Name)
		}

		fi, err := filter.NewFilter(f.Name, ParmsFor(f.DecodeParms))
		if err != nil {
			return err
		}
		buf, err := fi.Decode(r)
		if err != nil {
			return pdfimgerr.Wrap(pdfimgerr.KindUnsupportedFilter, err, "decoding stream filter %s", f.Name)
		}
		r = buf
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	sd.Content = buf.Bytes()
	return nil
}

// FilterEntries converts sd's FilterPipeline into the filter.Entry form
// filter.Chain expects. Unlike Decode, Chain is valid to call on a pipeline
// ending in a native-container filter (DCT/JPX/CCITTFax) — that is what an
// image stream's pipeline typically does.
func (sd *StreamDict) FilterEntries() []filter.Entry {
	if sd.FilterPipeline == nil {
		return nil
	}
	entries := make([]filter.Entry, len(sd.FilterPipeline))
	for i, f := range sd.FilterPipeline {
		entries[i] = filter.Entry{Name: f.Name, Params: ParmsFor(f.DecodeParms)}
	}
	return entries
}

// BuildFilterPipeline reads d's /Filter (+ /DecodeParms) entry, in either
// its single-name or array form, into pipeline order. Used for indirect
// stream objects and for inline images, which carry the same two entries
// without ever being wrapped in a StreamDict by the parser.
func BuildFilterPipeline(d Dict) []PDFFilter {
	if flt := d.NameEntry("Filter"); flt != "" {
		return []PDFFilter{{Name: flt, DecodeParms: d.DictEntry("DecodeParms")}}
	}
	arr := d.ArrayEntry("Filter")
	if arr == nil {
		return nil
	}
	dp := d.ArrayEntry("DecodeParms")
	pipeline := make([]PDFFilter, 0, len(arr))
	for i, f := range arr {
		name, _ := f.(Name)
		var parms Dict
		if i < len(dp) {
			parms, _ = dp[i].(Dict)
		}
		pipeline = append(pipeline, PDFFilter{Name: name.Value(), DecodeParms: parms})
	}
	return pipeline
}

// ParmsFor translates a /DecodeParms dictionary into filter.Params.
func ParmsFor(d Dict) filter.Params {
	var p filter.Params
	if d == nil {
		return p
	}
	if v := d.IntEntry("Predictor"); v != nil {
		p.Predictor = *v
	}
	if v := d.IntEntry("Colors"); v != nil {
		p.Colors = *v
	}
	if v := d.IntEntry("BitsPerComponent"); v != nil {
		p.BitsPerComponent = *v
	}
	if v := d.IntEntry("Columns"); v != nil {
		p.Columns = *v
	}
	if v := d.IntEntry("EarlyChange"); v != nil {
		p.EarlyChange = *v
		p.HasEarlyChange = true
	}
	if v := d.IntEntry("K"); v != nil {
		p.K = *v
	}
	if v := d.IntEntry("Rows"); v != nil {
		p.Rows = *v
	}
	if v := d.BooleanEntry("BlackIs1"); v != nil {
		p.BlackIs1 = *v
	}
	if v := d.BooleanEntry("EncodedByteAlign"); v != nil {
		p.EncodedByteAlign = *v
	}
	return p
}
