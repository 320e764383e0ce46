package imagedecoder

import (
	"testing"

	"github.com/mechiko/pdfimg/config"
	"github.com/mechiko/pdfimg/model"
	"github.com/mechiko/pdfimg/pdfimgerr"
)

func streamWithDict(d model.Dict, raw []byte) *model.StreamDict {
	return &model.StreamDict{Dict: d, Raw: raw}
}

func TestDecodeGray8BPCNoColorSpaceEntryDefaultsToDeviceGray(t *testing.T) {
	sd := streamWithDict(model.Dict{
		"Width":            model.Integer(2),
		"Height":           model.Integer(1),
		"BitsPerComponent": model.Integer(8),
	}, []byte{10, 200})

	img, err := Decode(nil, sd, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Width != 2 || img.Height != 1 {
		t.Fatalf("expected 2x1, got %dx%d", img.Width, img.Height)
	}
	if string(img.Pixels) != string([]byte{10, 200}) {
		t.Fatalf("expected raw 8bpc passthrough, got %v", img.Pixels)
	}
}

func TestDecodeUnpacks1BPCRowsWithPadding(t *testing.T) {
	// 3-pixel-wide, 1bpc row: bits 1,0,1 then 5 padding bits -> one byte.
	sd := streamWithDict(model.Dict{
		"Width":            model.Integer(3),
		"Height":           model.Integer(1),
		"BitsPerComponent": model.Integer(1),
		"ColorSpace":       model.Name("DeviceGray"),
	}, []byte{0b10100000})

	img, err := Decode(nil, sd, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(img.Pixels) != 3 || img.Pixels[0] != 255 || img.Pixels[1] != 0 || img.Pixels[2] != 255 {
		t.Fatalf("expected unpacked samples [1 0 1] scaled to [255 0 255], got %v", img.Pixels)
	}
}

func TestDecodePureNegationDecodeArraySetsNegatedInsteadOfPerSampleMath(t *testing.T) {
	sd := streamWithDict(model.Dict{
		"Width":            model.Integer(1),
		"Height":           model.Integer(1),
		"BitsPerComponent": model.Integer(8),
		"ColorSpace":       model.Name("DeviceGray"),
		"Decode":           model.Array{model.Integer(1), model.Integer(0)},
	}, []byte{40})

	img, err := Decode(nil, sd, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	// Negated at Finalize: 255-40 = 215, not decode.Apply's own [1,0] remap
	// (which would produce a different value through the per-sample path).
	if img.Pixels[0] != 215 {
		t.Fatalf("expected pure negation to run as a single Finalize negation (215), got %d", img.Pixels[0])
	}
}

func TestDecodeDefaultDecodeArrayIsIgnored(t *testing.T) {
	sd := streamWithDict(model.Dict{
		"Width":            model.Integer(1),
		"Height":           model.Integer(1),
		"BitsPerComponent": model.Integer(8),
		"ColorSpace":       model.Name("DeviceGray"),
		"Decode":           model.Array{model.Integer(0), model.Integer(1)},
	}, []byte{77})

	img, err := Decode(nil, sd, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Pixels[0] != 77 {
		t.Fatalf("expected the color-space default decode array to be a no-op, got %d", img.Pixels[0])
	}
}

func TestDecodeIndexedColorSpaceLooksUpPalette(t *testing.T) {
	sd := streamWithDict(model.Dict{
		"Width":            model.Integer(2),
		"Height":           model.Integer(1),
		"BitsPerComponent": model.Integer(8),
		"ColorSpace": model.Array{
			model.Name("Indexed"),
			model.Name("DeviceRGB"),
			model.Integer(1),
			model.StringLiteral("\x00\x00\x00\xff\xff\xff"),
		},
	}, []byte{0, 1})

	img, err := Decode(nil, sd, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(img.Pixels) != 6 {
		t.Fatalf("expected 2 RGB pixels (6 bytes), got %d", len(img.Pixels))
	}
	if img.Pixels[0] != 0 || img.Pixels[1] != 0 || img.Pixels[2] != 0 {
		t.Fatalf("expected index 0 to resolve to black, got %v", img.Pixels[0:3])
	}
	if img.Pixels[3] != 255 || img.Pixels[4] != 255 || img.Pixels[5] != 255 {
		t.Fatalf("expected index 1 to resolve to white, got %v", img.Pixels[3:6])
	}
}

func TestDecodeWithStencilMaskComposesAlphaFromSiblingStream(t *testing.T) {
	maskStream := streamWithDict(model.Dict{
		"Width":     model.Integer(2),
		"Height":    model.Integer(1),
		"ImageMask": model.Boolean(true),
	}, []byte{0b00000000}) // both samples 0 -> paint (unmasked) by default polarity

	sd := streamWithDict(model.Dict{
		"Width":            model.Integer(2),
		"Height":           model.Integer(1),
		"BitsPerComponent": model.Integer(8),
		"ColorSpace":       model.Name("DeviceGray"),
		"Mask":             maskStream,
	}, []byte{5, 6})

	img, err := Decode(nil, sd, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Alpha == nil || img.Alpha[0] != 255 || img.Alpha[1] != 255 {
		t.Fatalf("expected both pixels painted (alpha 255), got %v", img.Alpha)
	}
}

func TestDecodeWithSoftMaskRecursesIntoSMaskStream(t *testing.T) {
	smask := streamWithDict(model.Dict{
		"Width":            model.Integer(2),
		"Height":           model.Integer(1),
		"BitsPerComponent": model.Integer(8),
		"ColorSpace":       model.Name("DeviceGray"),
	}, []byte{10, 250})

	sd := streamWithDict(model.Dict{
		"Width":            model.Integer(2),
		"Height":           model.Integer(1),
		"BitsPerComponent": model.Integer(8),
		"ColorSpace":       model.Name("DeviceGray"),
		"SMask":            smask,
	}, []byte{1, 2})

	img, err := Decode(nil, sd, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Alpha[0] != 10 || img.Alpha[1] != 250 {
		t.Fatalf("expected soft mask alpha taken from the decoded SMask stream's own samples, got %v", img.Alpha)
	}
}

func TestDecodeWithColorKeyMaskArray(t *testing.T) {
	sd := streamWithDict(model.Dict{
		"Width":            model.Integer(1),
		"Height":           model.Integer(1),
		"BitsPerComponent": model.Integer(8),
		"ColorSpace": model.Array{
			model.Name("Indexed"),
			model.Name("DeviceRGB"),
			model.Integer(1),
			model.StringLiteral("\x00\x00\x00\xff\xff\xff"),
		},
		"Mask": model.Array{model.Integer(4), model.Integer(4)},
	}, []byte{0})

	img, err := Decode(nil, sd, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if img.Alpha == nil {
		t.Fatal("expected a color-key mask to attach an alpha channel")
	}
}

func TestDecodeColorKeyMaskOnNonIndexedColorSpaceErrors(t *testing.T) {
	sd := streamWithDict(model.Dict{
		"Width":            model.Integer(1),
		"Height":           model.Integer(1),
		"BitsPerComponent": model.Integer(8),
		"ColorSpace":       model.Name("DeviceGray"),
		"Mask":             model.Array{model.Integer(0), model.Integer(255)},
	}, []byte{5})

	_, err := Decode(nil, sd, nil)
	if err == nil {
		t.Fatal("expected an error for a color-key mask on a non-Indexed color space")
	}
	if kind, ok := pdfimgerr.As(err); !ok || kind != pdfimgerr.KindUnsupportedMaskColorSpace {
		t.Fatalf("expected KindUnsupportedMaskColorSpace, got %v", err)
	}
}

func TestDecodeNonNegationDecodeArrayOnNativeContainerErrors(t *testing.T) {
	sd := &model.StreamDict{
		Dict: model.Dict{
			"Width":            model.Integer(1),
			"Height":           model.Integer(1),
			"BitsPerComponent": model.Integer(8),
			"ColorSpace":       model.Name("DeviceGray"),
			// A non-default, non-pure-negation remap: neither [0 1]
			// (the color space's own default) nor [1 0] (pure negation).
			"Decode": model.Array{model.Float(0.5), model.Integer(1)},
		},
		FilterPipeline: []model.PDFFilter{{Name: "DCTDecode"}},
		Raw:            []byte("not actually a jpeg, never reached"),
	}

	_, err := Decode(nil, sd, nil)
	if err == nil {
		t.Fatal("expected an error for a non-negation decode array on a native-container image")
	}
	if kind, ok := pdfimgerr.As(err); !ok || kind != pdfimgerr.KindUnsupportedDecodeArray {
		t.Fatalf("expected KindUnsupportedDecodeArray, got %v", err)
	}
}

func TestDecodeMissingDimensionsIsTruncatedImageError(t *testing.T) {
	sd := streamWithDict(model.Dict{"BitsPerComponent": model.Integer(8)}, nil)
	if _, err := Decode(nil, sd, nil); err == nil {
		t.Fatal("expected an error for a stream missing Width/Height")
	}
}

func TestDecodeUnsupportedBitDepthFails(t *testing.T) {
	sd := streamWithDict(model.Dict{
		"Width":            model.Integer(1),
		"Height":           model.Integer(1),
		"BitsPerComponent": model.Integer(3),
		"ColorSpace":       model.Name("DeviceGray"),
	}, []byte{0})
	if _, err := Decode(nil, sd, nil); err == nil {
		t.Fatal("expected an error for an unsupported bits-per-component value")
	}
}

func TestDecodeHonorsProRendererFromConfig(t *testing.T) {
	sd := streamWithDict(model.Dict{
		"Width":            model.Integer(1),
		"Height":           model.Integer(1),
		"BitsPerComponent": model.Integer(8),
		"ColorSpace": model.Array{
			model.Name("Indexed"),
			model.Name("DeviceRGB"),
			model.Integer(1),
			model.StringLiteral("\x00\x00\x00\xff\xff\xff"),
		},
		"Mask": model.Array{model.Integer(4), model.Integer(4)},
	}, []byte{0})

	cfg := &config.Configuration{DefaultRenderer: config.RendererPro}
	img, err := Decode(nil, sd, cfg)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	// The Pro builder composes a color-key mask at Finalize; a Lite
	// builder would already have baked it in per pixel. Either way the
	// observable alpha is the same here, but Decode must not error when
	// cfg selects Pro for a color-key source.
	if img.Alpha[0] != 255 {
		t.Fatalf("expected an unmasked pixel to stay opaque, got %d", img.Alpha[0])
	}
}
