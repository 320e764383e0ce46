package builder

import "github.com/mechiko/pdfimg/colorspace"

// proBuilder is the batch-alpha renderer: it ignores the mask during
// per-pixel writes and composes it in one pass at Finalize by sampling the
// mask's alpha across the full image. It accepts DCT/JPX/CCITTFax for any
// color family and component count.
type proBuilder struct {
	*base
}

func (p *proBuilder) CanRead(nativeFilter string, family colorspace.Family, components int) bool {
	switch nativeFilter {
	case "DCTDecode":
		return true
	case "JPXDecode", "CCITTFaxDecode":
		return true
	default:
		return false
	}
}

func (p *proBuilder) WritePixel(raw []byte) error {
	if p.cursor >= p.width*p.height {
		return errPixelOverflow
	}
	i := p.cursor
	color := p.resolveColor(raw)
	p.writeResolvedPixel(color)
	p.recordColorKeySample(i, raw)
	return nil
}

func (p *proBuilder) ReadBlob(data []byte, nativeFilter string) error {
	if err := p.decodeBlob(data, nativeFilter); err != nil {
		return err
	}
	// CMYK data read out of a DCT (JFIF/Adobe) container is conventionally
	// inverted; the negated flag is set here rather than at the call site
	// so Finalize's single negation pass also covers this case.
	if nativeFilter == "DCTDecode" && p.components == 4 {
		p.negated = true
	}
	return nil
}

func (p *proBuilder) Finalize() error {
	p.applyNegation()
	if p.maskModel.None() || p.alpha == nil {
		return nil
	}
	for i := 0; i < len(p.alpha); i++ {
		if p.maskModel.ColorKey != nil {
			p.alpha[i] = alphaFor(p.maskModel, i, p.colorKeySamples[i:i+1])
			continue
		}
		off := i * p.components
		end := off + p.components
		if end > len(p.pixels) {
			break
		}
		p.alpha[i] = alphaFor(p.maskModel, i, p.pixels[off:end])
	}
	return nil
}

func (p *proBuilder) Result() (*DecodedImage, error) {
	return p.result()
}
