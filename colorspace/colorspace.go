// Package colorspace resolves a PDF color space object to one of the
// terminal device spaces (Gray, RGB, CMYK) an ImageBuilder knows how to
// consume, following the PDF spec's chain of Indexed/ICCBased/CalGray/
// CalRGB/Lab/Separation/DeviceN indirection. Resolution is iterative: the
// result of reducing one space (e.g. ICCBased's Alternate) may itself need
// reducing again (e.g. if Alternate is Indexed).
package colorspace

import (
	"github.com/mechiko/pdfimg/model"
	"github.com/mechiko/pdfimg/pdfimgerr"
)

// Family is a terminal device color space.
type Family int

const (
	Gray Family = iota
	RGB
	CMYK
)

func (f Family) Components() int {
	switch f {
	case Gray:
		return 1
	case RGB:
		return 3
	case CMYK:
		return 4
	default:
		return 0
	}
}

// Lab carries the reference white point and component ranges needed to
// convert raw Lab samples to device RGB; it is attached to a Descriptor
// whose Family is RGB (Lab's natural rendering target) when the original
// space was /Lab, so downstream code that only cares about Family/
// Components works unchanged while decode/mask/builder that need exact
// per-pixel reconstruction can check Lab != nil.
type Lab struct {
	WhitePoint [3]float64 // CIE XYZ, typically D50: {0.9642, 1.0, 0.8249}
	Range      [4]float64 // amin, amax, bmin, bmax (L ranges 0..100 always)
}

// Descriptor is the outcome of resolving a PDF color space object.
type Descriptor struct {
	Family     Family
	Components int
	Lab        *Lab

	// Indexed is non-nil when the original (unreduced) space was
	// /Indexed; Base describes the palette's own color space (itself
	// fully resolved) and Palette holds one raw-component-bytes entry per
	// index.
	Indexed *IndexedInfo
}

// IndexedInfo is the remembered outer wrapping for an Indexed color space,
// needed by the image decoder's palette-lookup step.
type IndexedInfo struct {
	Base    *Descriptor
	Palette [][]byte
}

var (
	defaultD50 = [3]float64{0.9642, 1.0, 0.8249}
)

// Resolve reduces csObj (a Name or Array color-space object, typically a
// stream dictionary's /ColorSpace entry) to a terminal Descriptor.
func Resolve(doc *model.Document, csObj model.Object) (*Descriptor, error) {
	resolved, err := doc.Resolve(csObj)
	if err != nil {
		return nil, err
	}

	switch cs := resolved.(type) {
	case model.Name:
		return resolveNamed(cs.Value())
	case model.Array:
		return resolveArray(doc, cs)
	default:
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "color space object has unexpected type %T", resolved)
	}
}

func resolveNamed(name string) (*Descriptor, error) {
	switch name {
	case "DeviceGray", "CalGray", "G":
		return &Descriptor{Family: Gray, Components: 1}, nil
	case "DeviceRGB", "CalRGB", "RGB":
		return &Descriptor{Family: RGB, Components: 3}, nil
	case "DeviceCMYK", "CMYK":
		return &Descriptor{Family: CMYK, Components: 4}, nil
	default:
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "unsupported color space name %q", name)
	}
}

func resolveArray(doc *model.Document, arr model.Array) (*Descriptor, error) {
	if len(arr) == 0 {
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "empty color space array")
	}
	familyName, ok := arr[0].(model.Name)
	if !ok {
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "color space array's first element is not a name")
	}

	switch familyName.Value() {
	case "ICCBased":
		return resolveICCBased(doc, arr)
	case "Indexed":
		return resolveIndexed(doc, arr)
	case "CalGray":
		return &Descriptor{Family: Gray, Components: 1}, nil
	case "CalRGB":
		return &Descriptor{Family: RGB, Components: 3}, nil
	case "Lab":
		return resolveLab(doc, arr)
	case "Separation":
		// A single named colorant; rendered directly as a 1-component
		// tint without evaluating the (PostScript-calculator) tint
		// transform function, matching the terminal-family requirement.
		return &Descriptor{Family: Gray, Components: 1}, nil
	case "DeviceN":
		return resolveDeviceN(doc, arr)
	default:
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "unsupported color space family %q", familyName.Value())
	}
}

func resolveICCBased(doc *model.Document, arr model.Array) (*Descriptor, error) {
	if len(arr) < 2 {
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "ICCBased array missing stream reference")
	}
	resolved, err := doc.Resolve(arr[1])
	if err != nil {
		return nil, err
	}
	sd, ok := resolved.(*model.StreamDict)
	if !ok {
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "ICCBased array's second element is not a stream")
	}

	if alt, ok := sd.Find("Alternate"); ok {
		return Resolve(doc, alt)
	}

	n := sd.IntEntry("N")
	if n == nil {
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "ICCBased stream has neither /Alternate nor /N")
	}
	switch *n {
	case 1:
		return &Descriptor{Family: Gray, Components: 1}, nil
	case 3:
		return &Descriptor{Family: RGB, Components: 3}, nil
	case 4:
		return &Descriptor{Family: CMYK, Components: 4}, nil
	default:
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "ICCBased stream has unsupported /N %d", *n)
	}
}

func resolveIndexed(doc *model.Document, arr model.Array) (*Descriptor, error) {
	if len(arr) < 4 {
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "Indexed array requires 4 elements")
	}
	base, err := Resolve(doc, arr[1])
	if err != nil {
		return nil, err
	}

	hival, ok := arr[2].(model.Integer)
	if !ok {
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "Indexed array's hival is not an integer")
	}

	lookup, err := doc.Resolve(arr[3])
	if err != nil {
		return nil, err
	}
	var raw []byte
	switch v := lookup.(type) {
	case *model.StreamDict:
		if err := v.Decode(); err != nil {
			return nil, err
		}
		raw = v.Content
	case model.StringLiteral:
		raw = []byte(v)
	case model.HexLiteral:
		raw = []byte(v)
	default:
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "Indexed array's lookup table has unexpected type %T", lookup)
	}

	n := base.Components
	count := int(hival) + 1
	palette := make([][]byte, count)
	for i := 0; i < count; i++ {
		start := i * n
		end := start + n
		if end > len(raw) {
			break
		}
		entry := make([]byte, n)
		copy(entry, raw[start:end])
		palette[i] = entry
	}

	return &Descriptor{
		Family:     base.Family,
		Components: 1, // Indexed samples are single-component palette indices
		Indexed:    &IndexedInfo{Base: base, Palette: palette},
	}, nil
}

func resolveLab(doc *model.Document, arr model.Array) (*Descriptor, error) {
	lab := &Lab{WhitePoint: defaultD50, Range: [4]float64{-100, 100, -100, 100}}
	if len(arr) >= 2 {
		if params, err := doc.ResolveDict(arr[1]); err == nil {
			if wp := params.ArrayEntry("WhitePoint"); wp != nil {
				f := wp.Floats()
				if len(f) == 3 {
					lab.WhitePoint = [3]float64{f[0], f[1], f[2]}
				}
			}
			if rng := params.ArrayEntry("Range"); rng != nil {
				f := rng.Floats()
				if len(f) == 4 {
					lab.Range = [4]float64{f[0], f[1], f[2], f[3]}
				}
			}
		}
	}
	return &Descriptor{Family: RGB, Components: 3, Lab: lab}, nil
}

func resolveDeviceN(doc *model.Document, arr model.Array) (*Descriptor, error) {
	if len(arr) < 2 {
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "DeviceN array requires a names array")
	}
	names, ok := arr[1].(model.Array)
	if !ok {
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "DeviceN array's names entry is not an array")
	}
	switch len(names) {
	case 1:
		return &Descriptor{Family: Gray, Components: 1}, nil
	case 3:
		return &Descriptor{Family: RGB, Components: 3}, nil
	case 4:
		return &Descriptor{Family: CMYK, Components: 4}, nil
	default:
		return nil, pdfimgerr.New(pdfimgerr.KindUnsupportedColorSpace, "DeviceN with %d colorants has no terminal device space", len(names))
	}
}
