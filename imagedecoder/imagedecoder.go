// Package imagedecoder orchestrates one image stream dictionary's full
// decode: resolving its color space, masks, and decode array, running the
// filter chain, and driving an ImageBuilder to a finalized result.
package imagedecoder

import (
	"github.com/mechiko/pdfimg/builder"
	"github.com/mechiko/pdfimg/colorspace"
	"github.com/mechiko/pdfimg/config"
	"github.com/mechiko/pdfimg/decode"
	"github.com/mechiko/pdfimg/filter"
	"github.com/mechiko/pdfimg/mask"
	"github.com/mechiko/pdfimg/model"
	"github.com/mechiko/pdfimg/pdfimgerr"
)

// Decode runs sd's full image pipeline and returns its finalized pixel
// buffer. doc resolves indirect references encountered along the way
// (color space, SMask/Mask); it may be nil when sd's own entries are
// already direct objects, matching model.Document.Resolve's pass-through
// behavior for non-reference objects.
func Decode(doc *model.Document, sd *model.StreamDict, cfg *config.Configuration) (*builder.DecodedImage, error) {
	width, height, bpc, err := readDims(sd.Dict)
	if err != nil {
		return nil, err
	}

	cs, err := resolveColorSpace(doc, sd.Dict)
	if err != nil {
		return nil, err
	}

	maskModel, err := resolveMask(doc, sd, cs, cfg)
	if err != nil {
		return nil, err
	}

	entries := buildDecodeEntries(sd.Dict, cs, bpc)
	negated := decode.IsPureNegation(entries)
	if negated {
		// A pure channel-negation decode array runs as a flag at Finalize,
		// not as per-sample decode math (4.6's negation policy) — the
		// builder would otherwise negate twice.
		entries = nil
	}

	result, err := filter.Chain(sd.Raw, sd.FilterEntries(), height)
	if err != nil {
		return nil, err
	}

	b := builder.New(builder.Config{
		Width:            width,
		Height:           height,
		ColorSpace:       cs,
		BitsPerComponent: bpc,
		Decode:           entries,
		Mask:             maskModel,
		Pro:              cfg != nil && cfg.DefaultRenderer == config.RendererPro,
	})
	b.SetNegated(negated)

	if result.RemainingNativeFilter != "" {
		if !b.CanRead(result.RemainingNativeFilter, cs.Family, cs.Components) {
			return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedByRenderer,
				"builder cannot read %s for %d-component images", result.RemainingNativeFilter, cs.Components)
		}
		if entries != nil {
			// A native container (JPEG/JPX/CCITT) hands the builder fully
			// decoded samples with no per-sample pass in between — a
			// non-negation /Decode array has nowhere left to apply.
			return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedDecodeArray,
				"non-negation /Decode array cannot be applied to a %s native-container image", result.RemainingNativeFilter)
		}
		if err := b.ReadBlob(result.Data, result.RemainingNativeFilter); err != nil {
			return nil, err
		}
	} else {
		if cs.Indexed != nil {
			for i, raw := range cs.Indexed.Palette {
				b.AddIndexedColor(i, raw)
			}
		}
		if err := writeSamples(b, result.Data, width, height, bpc, sampleComponents(cs)); err != nil {
			return nil, err
		}
	}

	if err := b.Finalize(); err != nil {
		return nil, err
	}
	return b.Result()
}

func readDims(d model.Dict) (width, height, bpc int, err error) {
	w := d.IntEntry("Width")
	h := d.IntEntry("Height")
	if w == nil || h == nil {
		return 0, 0, 0, pdfimgerr.New(pdfimgerr.KindTruncatedImage, "image stream missing /Width or /Height")
	}
	width, height = *w, *h

	bpc = 1
	if v := d.IntEntry("BitsPerComponent"); v != nil {
		bpc = *v
	}
	return width, height, bpc, nil
}

func resolveColorSpace(doc *model.Document, d model.Dict) (*colorspace.Descriptor, error) {
	csObj, ok := d.Find("ColorSpace")
	if !ok {
		return &colorspace.Descriptor{Family: colorspace.Gray, Components: 1}, nil
	}
	return colorspace.Resolve(doc, csObj)
}

// sampleComponents is the number of raw bytes writeSamples reads per pixel:
// 1 for an Indexed source (a palette index, regardless of the palette's
// own base-space component count), else the color space's own count.
func sampleComponents(cs *colorspace.Descriptor) int {
	if cs.Indexed != nil {
		return 1
	}
	return cs.Components
}

// buildDecodeEntries builds the DecodeEntry table only when a /Decode
// array is present and differs from the color space's own default decode
// array, per the orchestrator's step 3.
func buildDecodeEntries(d model.Dict, cs *colorspace.Descriptor, bpc int) []decode.Entry {
	arr := d.ArrayEntry("Decode")
	if arr == nil {
		return nil
	}
	pairs := arr.Floats()
	if isDefaultDecodePairs(pairs, cs, bpc) {
		return nil
	}
	return decode.BuildArray(pairs, bpc)
}

func isDefaultDecodePairs(pairs []float64, cs *colorspace.Descriptor, bpc int) bool {
	want := defaultDecodePairs(cs, bpc)
	if len(pairs) != len(want) {
		return false
	}
	for i := range pairs {
		if pairs[i] != want[i] {
			return false
		}
	}
	return true
}

// defaultDecodePairs is the PDF spec's own default /Decode array for a
// resolved color space: [0 1] per color component, or [0, 2^bpc-1] for an
// Indexed source's single index component.
func defaultDecodePairs(cs *colorspace.Descriptor, bpc int) []float64 {
	if cs.Indexed != nil {
		return []float64{0, float64(decode.MaxValForBits(bpc))}
	}
	pairs := make([]float64, 0, cs.Components*2)
	for i := 0; i < cs.Components; i++ {
		pairs = append(pairs, 0, 1)
	}
	return pairs
}

// writeSamples traverses the fully-decoded sample payload row by row,
// unpacking sub-byte depths and discarding row padding, per step 7.
func writeSamples(b builder.Builder, data []byte, width, height, bpc, components int) error {
	if bpc != 1 && bpc != 2 && bpc != 4 && bpc != 8 {
		return pdfimgerr.New(pdfimgerr.KindUnsupportedBitDepth, "unsupported bits per component: %d", bpc)
	}

	unpacker := decode.Unpacker{BitsPerComponent: bpc, Width: width * components}
	rowBytes := unpacker.RowBytes()
	raw := make([]byte, components)

	for y := 0; y < height; y++ {
		start := y * rowBytes
		end := start + rowBytes
		if end > len(data) {
			return pdfimgerr.New(pdfimgerr.KindTruncatedImage, "image data has %d bytes, row %d needs bytes up to %d", len(data), y, end)
		}
		row, err := unpacker.Row(data[start:end])
		if err != nil {
			return err
		}
		for x := 0; x < width; x++ {
			off := x * components
			for c := 0; c < components; c++ {
				raw[c] = byte(row[off+c])
			}
			if err := b.WritePixel(raw); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveMask implements step 2: SMask takes priority over Mask; Mask is
// either a stencil image stream or a color-key range array. A color-key
// array is only meaningful against an Indexed source's palette indices
// (7.6.5.2); any other color space fails with UnsupportedMaskColorSpace.
func resolveMask(doc *model.Document, sd *model.StreamDict, cs *colorspace.Descriptor, cfg *config.Configuration) (mask.Model, error) {
	if smObj, ok := sd.Find("SMask"); ok {
		smStream, err := asImageStream(doc, smObj)
		if err != nil {
			return mask.Model{}, err
		}
		smImg, err := Decode(doc, smStream, cfg)
		if err != nil {
			return mask.Model{}, err
		}
		return mask.Model{Soft: &mask.SoftMask{Samples: smImg.Pixels, Width: smImg.Width, Height: smImg.Height}}, nil
	}

	mObj, ok := sd.Find("Mask")
	if !ok {
		return mask.Model{}, nil
	}
	resolved, err := doc.Resolve(mObj)
	if err != nil {
		return mask.Model{}, err
	}

	switch v := resolved.(type) {
	case model.Array:
		if cs.Indexed == nil {
			return mask.Model{}, pdfimgerr.New(pdfimgerr.KindUnsupportedMaskColorSpace,
				"color-key /Mask array requires an Indexed color space, got family %d", cs.Family)
		}
		return mask.Model{ColorKey: &mask.ColorKey{Ranges: colorKeyRanges(v)}}, nil
	case *model.StreamDict:
		stencil, err := decodeStencilMask(v)
		if err != nil {
			return mask.Model{}, err
		}
		return mask.Model{Stencil: stencil}, nil
	default:
		return mask.Model{}, nil
	}
}

func asImageStream(doc *model.Document, obj model.Object) (*model.StreamDict, error) {
	resolved, err := doc.Resolve(obj)
	if err != nil {
		return nil, err
	}
	sd, ok := resolved.(*model.StreamDict)
	if !ok {
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedByRenderer, "mask entry is not a stream (%T)", resolved)
	}
	return sd, nil
}

func colorKeyRanges(arr model.Array) []mask.ColorKeyRange {
	floats := arr.Floats()
	ranges := make([]mask.ColorKeyRange, 0, len(floats)/2)
	for i := 0; i+1 < len(floats); i += 2 {
		ranges = append(ranges, mask.ColorKeyRange{Min: int(floats[i]), Max: int(floats[i+1])})
	}
	return ranges
}

// decodeStencilMask decodes a /Mask image stream (ImageMask true) directly
// to 0/1 samples, bypassing the color-space machinery a stencil mask never
// needs.
func decodeStencilMask(sd *model.StreamDict) (*mask.StencilMask, error) {
	width, height, _, err := readDims(sd.Dict)
	if err != nil {
		return nil, err
	}

	result, err := filter.Chain(sd.Raw, sd.FilterEntries(), height)
	if err != nil {
		return nil, err
	}

	inverted := isInvertedDecode(sd.Dict)

	if result.RemainingNativeFilter != "" {
		cs := &colorspace.Descriptor{Family: colorspace.Gray, Components: 1}
		b := builder.New(builder.Config{Width: width, Height: height, ColorSpace: cs})
		if !b.CanRead(result.RemainingNativeFilter, cs.Family, cs.Components) {
			return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedByRenderer, "stencil mask native filter %s not supported", result.RemainingNativeFilter)
		}
		if err := b.ReadBlob(result.Data, result.RemainingNativeFilter); err != nil {
			return nil, err
		}
		if err := b.Finalize(); err != nil {
			return nil, err
		}
		img, err := b.Result()
		if err != nil {
			return nil, err
		}
		samples := make([]byte, len(img.Pixels))
		for i, v := range img.Pixels {
			if v >= 128 {
				samples[i] = 1
			}
		}
		return &mask.StencilMask{Samples: samples, Width: width, Height: height, Inverted: inverted}, nil
	}

	unpacker := decode.Unpacker{BitsPerComponent: 1, Width: width}
	rowBytes := unpacker.RowBytes()
	samples := make([]byte, 0, width*height)
	for y := 0; y < height; y++ {
		start := y * rowBytes
		end := start + rowBytes
		if end > len(result.Data) {
			return nil, pdfimgerr.New(pdfimgerr.KindTruncatedImage, "stencil mask data truncated at row %d", y)
		}
		row, err := unpacker.Row(result.Data[start:end])
		if err != nil {
			return nil, err
		}
		for _, v := range row {
			samples = append(samples, byte(v))
		}
	}
	return &mask.StencilMask{Samples: samples, Width: width, Height: height, Inverted: inverted}, nil
}

func isInvertedDecode(d model.Dict) bool {
	arr := d.ArrayEntry("Decode")
	if arr == nil {
		return false
	}
	f := arr.Floats()
	return len(f) == 2 && f[0] == 1 && f[1] == 0
}
