package builder

import "github.com/mechiko/pdfimg/colorspace"

// liteBuilder is the per-pixel-alpha renderer: it bakes mask alpha into
// each pixel as it is written, and only accepts DCT for Gray/RGB/ICC with
// at most 3 components.
type liteBuilder struct {
	*base
}

func (l *liteBuilder) CanRead(nativeFilter string, family colorspace.Family, components int) bool {
	return nativeFilter == "DCTDecode" && components <= 3
}

func (l *liteBuilder) WritePixel(raw []byte) error {
	if l.cursor >= l.width*l.height {
		return errPixelOverflow
	}
	color := l.resolveColor(raw)
	l.writeResolvedPixel(color)

	if !l.maskModel.None() && l.alpha != nil {
		i := l.cursor - 1
		l.alpha[i] = alphaFor(l.maskModel, i, raw)
	}
	return nil
}

func (l *liteBuilder) ReadBlob(data []byte, nativeFilter string) error {
	return l.decodeBlob(data, nativeFilter)
}

func (l *liteBuilder) Finalize() error {
	l.applyNegation()
	return nil
}

func (l *liteBuilder) Result() (*DecodedImage, error) {
	return l.result()
}
