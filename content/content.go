// Package content implements a small interpreter for a PDF page's content
// stream: it tracks the graphic-state stack and current transformation
// matrix, recognizes image operators (Do for XObject, BI…ID…EI for
// inline), recurses into Form XObjects, and emits image records with
// placement data. It does not interpret painting, text, or path
// operators beyond skipping their operands.
package content

import (
	"github.com/mechiko/pdfimg/matrix"
	"github.com/mechiko/pdfimg/model"
)

// GraphicState is the current transformation matrix plus a stack of saved
// matrices. The current matrix is always present: Restore with no saved
// matrix is a no-op, matching an unmatched `Q` being ignored rather than
// erroring.
type GraphicState struct {
	ctm   matrix.Matrix
	stack []matrix.Matrix
}

// NewGraphicState returns a GraphicState seeded with the identity matrix.
func NewGraphicState() *GraphicState {
	return &GraphicState{ctm: matrix.Identity}
}

// Save pushes a copy of the current matrix (the `q` operator).
func (g *GraphicState) Save() {
	g.stack = append(g.stack, g.ctm)
}

// Restore pops to the most recently saved matrix (the `Q` operator). An
// unmatched Q (empty stack) is ignored.
func (g *GraphicState) Restore() {
	if len(g.stack) == 0 {
		return
	}
	g.ctm = g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
}

// Concat right-multiplies the CTM by the matrix named by a `cm` operator's
// six operands.
func (g *GraphicState) Concat(a, b, c, d, e, f float64) {
	g.ctm = matrix.FromOperands(a, b, c, d, e, f).Multiply(g.ctm)
}

// CTM returns the current transformation matrix.
func (g *GraphicState) CTM() matrix.Matrix { return g.ctm }

// ToUserSpace applies the current matrix to a point.
func (g *GraphicState) ToUserSpace(x, y float64) matrix.Point {
	return g.ctm.Transform(matrix.Point{X: x, Y: y})
}

// Placement is the geometric placement of one image, derived from the
// current matrix at the time its Do/BI operator was encountered.
type Placement struct {
	LL, UL, UR, LR           matrix.Point
	UserWidth, UserHeight    float64
	PixelWidth, PixelHeight  int
	ResolutionX, ResolutionY float64
}

// InlineImage is an owned dictionary+payload pair for an inline image; it
// has no backing PDF stream object, since inline images are never
// indirect.
type InlineImage struct {
	Dict model.Dict
	Data []byte
}

// ImageRecord is one discovered image: either an external Image XObject
// or an inline image, plus its placement.
type ImageRecord struct {
	Kind      string // "external" or "inline"
	External  *model.XObject
	Inline    *InlineImage
	Placement Placement
	IsMask    bool
}

// computePlacement transforms the unit square through gs's current matrix
// and derives user-space dimensions and DPI for a pixelWidth x pixelHeight
// image, per 4.1's placement computation.
func computePlacement(gs *GraphicState, pixelWidth, pixelHeight int, switchWH bool) Placement {
	ll := gs.ToUserSpace(0, 0)
	ul := gs.ToUserSpace(0, 1)
	ur := gs.ToUserSpace(1, 1)
	lr := gs.ToUserSpace(1, 0)

	uw := absf(ur.X - ll.X)
	uh := absf(ur.Y - ll.Y)
	if switchWH {
		uw, uh = uh, uw
	}

	var resX, resY float64
	if uw != 0 {
		resX = float64(pixelWidth) / uw * 72
	}
	if uh != 0 {
		resY = float64(pixelHeight) / uh * 72
	}

	return Placement{
		LL: ll, UL: ul, UR: ur, LR: lr,
		UserWidth: uw, UserHeight: uh,
		PixelWidth: pixelWidth, PixelHeight: pixelHeight,
		ResolutionX: resX, ResolutionY: resY,
	}
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func imageDims(d model.Dict) (int, int) {
	w, h := 0, 0
	if v := d.IntEntry("Width"); v != nil {
		w = *v
	}
	if v := d.IntEntry("Height"); v != nil {
		h = *v
	}
	return w, h
}

// SwitchWH reports whether pixel width/height should be swapped when
// computing placement, per (rotation/90) mod 2 != 0.
func SwitchWH(rotationDegrees int) bool {
	return (rotationDegrees/90)%2 != 0
}

// WalkPage runs Walk over a page's own content stream, resources, and
// rotation-derived switchWH flag.
func WalkPage(doc *model.Document, page *model.Page) ([]ImageRecord, error) {
	cs, err := page.ContentStream()
	if err != nil {
		return nil, err
	}
	return Walk(doc, cs, page.Resources, SwitchWH(page.Rotate))
}
