package pdfimg

import (
	"image"
	"testing"

	"github.com/mechiko/pdfimg/content"
	"github.com/mechiko/pdfimg/model"
)

func grayImageXObject(width, height int, pixels []byte) *model.StreamDict {
	return &model.StreamDict{
		Dict: model.Dict{
			"Subtype":          model.Name("Image"),
			"Width":            model.Integer(width),
			"Height":           model.Integer(height),
			"BitsPerComponent": model.Integer(8),
			"ColorSpace":       model.Name("DeviceGray"),
		},
		Raw: pixels,
	}
}

func xobjectResources(entries map[string]model.Object) model.Dict {
	xo := model.NewDict()
	for k, v := range entries {
		xo[k] = v
	}
	return model.Dict{"XObject": xo}
}

func TestDecodeExternalImageRecordProducesGrayImage(t *testing.T) {
	resources := xobjectResources(map[string]model.Object{"Im1": grayImageXObject(2, 1, []byte{10, 200})})
	records, err := content.Walk(nil, []byte("/Im1 Do"), resources, false)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	img, err := Decode(nil, records[0], nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray, got %T", img)
	}
	if g.GrayAt(0, 0).Y != 10 || g.GrayAt(1, 0).Y != 200 {
		t.Fatalf("unexpected gray samples: %v", g.Pix)
	}
}

func TestDecodeRawReturnsPixelBufferWithoutImageConversion(t *testing.T) {
	resources := xobjectResources(map[string]model.Object{"Im1": grayImageXObject(1, 1, []byte{42})})
	records, err := content.Walk(nil, []byte("/Im1 Do"), resources, false)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	decoded, err := DecodeRaw(nil, records[0], nil)
	if err != nil {
		t.Fatalf("DecodeRaw: %v", err)
	}
	if len(decoded.Pixels) != 1 || decoded.Pixels[0] != 42 {
		t.Fatalf("unexpected decoded pixels: %v", decoded.Pixels)
	}
}

func TestDecodeInlineImageRecordWrapsPayloadAsStreamDict(t *testing.T) {
	// 2x1, 8bpc, DeviceGray inline image. The payload's own trailing byte
	// is the whitespace byte the whitespace-preceded-EI heuristic needs.
	payload := []byte{0x7b, 0x0a}
	stream := append([]byte("BI /W 2 /H 1 /BPC 8 /CS /G ID "), append(payload, []byte("EI")...)...)
	records, err := content.Walk(nil, stream, model.NewDict(), false)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(records) != 1 || records[0].Kind != "inline" {
		t.Fatalf("expected 1 inline record, got %+v", records)
	}

	img, err := Decode(nil, records[0], nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray, got %T", img)
	}
	if g.GrayAt(0, 0).Y != 0x7b {
		t.Fatalf("unexpected inline sample: %v", g.Pix)
	}
}

func TestStreamForUnrecognizedKindErrors(t *testing.T) {
	if _, err := streamFor(content.ImageRecord{Kind: "bogus"}); err == nil {
		t.Fatal("expected an error for an unrecognized image record kind")
	}
}

func TestStreamForMissingPayloadErrors(t *testing.T) {
	if _, err := streamFor(content.ImageRecord{Kind: "external"}); err == nil {
		t.Fatal("expected an error for an external record with no XObject")
	}
	if _, err := streamFor(content.ImageRecord{Kind: "inline"}); err == nil {
		t.Fatal("expected an error for an inline record with no payload")
	}
}
