// Package pdfimg finds and decodes the raster images placed on a PDF
// page: Image XObjects reached through content-stream Do operators (and
// any Form XObjects they're nested in) plus inline BI…ID…EI images, each
// returned as a fully decoded pixel buffer or a standard image.Image.
//
// A typical caller opens a document, walks a page for its image records,
// and decodes the ones it wants:
//
//	doc, err := model.Open("scan.pdf")
//	recs, err := pdfimg.ImagesByPage(doc, 1)
//	for _, rec := range recs {
//		img, err := pdfimg.Decode(doc, rec, nil)
//		png.Encode(w, img)
//	}
package pdfimg

import (
	"image"

	"github.com/pkg/errors"

	"github.com/mechiko/pdfimg/builder"
	"github.com/mechiko/pdfimg/config"
	"github.com/mechiko/pdfimg/content"
	"github.com/mechiko/pdfimg/imagedecoder"
	"github.com/mechiko/pdfimg/model"
	"github.com/mechiko/pdfimg/raster"
)

// ImagesByPage walks page n (1-based) of doc and returns every image it
// places, in content-stream encounter order, each with its placement
// geometry already computed.
func ImagesByPage(doc *model.Document, n int) ([]content.ImageRecord, error) {
	page, err := doc.Page(n)
	if err != nil {
		return nil, errors.Wrapf(err, "pdfimg: page %d", n)
	}
	return content.WalkPage(doc, page)
}

// DecodeRaw runs rec's full decode pipeline (color space, masks, filters)
// and returns the result as this module's own pixel buffer, the same
// value imagedecoder.Decode would hand back for the record's underlying
// stream. cfg may be nil to use default tunables.
func DecodeRaw(doc *model.Document, rec content.ImageRecord, cfg *config.Configuration) (*builder.DecodedImage, error) {
	sd, err := streamFor(rec)
	if err != nil {
		return nil, err
	}
	return imagedecoder.Decode(doc, sd, cfg)
}

// Decode runs rec's full decode pipeline and converts the result to a
// standard image.Image (*image.Gray, *image.NRGBA, or this module's own
// raster.CMYK, depending on the image's resolved color space).
func Decode(doc *model.Document, rec content.ImageRecord, cfg *config.Configuration) (image.Image, error) {
	decoded, err := DecodeRaw(doc, rec, cfg)
	if err != nil {
		return nil, err
	}
	return raster.ToImage(decoded)
}

// streamFor returns the StreamDict backing rec, wrapping an inline
// image's owned dictionary+payload into one since inline images are
// never indirect objects and so never come with a StreamDict of their
// own from the parser.
func streamFor(rec content.ImageRecord) (*model.StreamDict, error) {
	switch rec.Kind {
	case "external":
		if rec.External == nil {
			return nil, errors.New("pdfimg: external image record has no XObject")
		}
		return rec.External.Stream, nil
	case "inline":
		if rec.Inline == nil {
			return nil, errors.New("pdfimg: inline image record has no payload")
		}
		return &model.StreamDict{
			Dict:           rec.Inline.Dict,
			Raw:            rec.Inline.Data,
			FilterPipeline: model.BuildFilterPipeline(rec.Inline.Dict),
		}, nil
	default:
		return nil, errors.Errorf("pdfimg: unrecognized image record kind %q", rec.Kind)
	}
}
