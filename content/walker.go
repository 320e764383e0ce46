package content

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mechiko/pdfimg/log"
	"github.com/mechiko/pdfimg/model"
	"github.com/mechiko/pdfimg/pdfimgerr"
)

// maxFormRecursionDepth bounds Form XObject recursion; a cycle in /XObject
// resources would otherwise recurse forever.
const maxFormRecursionDepth = 32

type operand struct {
	isName bool
	name   string
	num    float64
}

type walker struct {
	doc      *model.Document
	switchWH bool
	depth    int
	records  []ImageRecord
}

// Walk interprets content (a page or Form XObject's content stream bytes)
// against resources, starting from the identity graphic state, and
// returns every image it discovers in stream order.
func Walk(doc *model.Document, content []byte, resources model.Dict, switchWH bool) ([]ImageRecord, error) {
	w := &walker{doc: doc, switchWH: switchWH}
	gs := NewGraphicState()
	if err := w.run(content, resources, gs); err != nil {
		return nil, err
	}
	return w.records, nil
}

func isWhitespace(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	default:
		return false
	}
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	default:
		return false
	}
}

// run tokenizes content and dispatches recognized operators; everything
// else is scanned past without interpretation.
func (w *walker) run(content []byte, resources model.Dict, gs *GraphicState) error {
	s := string(content)
	n := len(s)
	var operands []operand

	pos := 0
	for pos < n {
		c := s[pos]

		if isWhitespace(c) {
			pos++
			continue
		}
		if c == '%' {
			for pos < n && s[pos] != '\n' && s[pos] != '\r' {
				pos++
			}
			continue
		}

		switch {
		case c == '/':
			start := pos + 1
			pos++
			for pos < n && !isDelim(s[pos]) && !isWhitespace(s[pos]) {
				pos++
			}
			operands = append(operands, operand{isName: true, name: s[start:pos]})

		case c == '(':
			np, err := skipStringLiteral(s, pos)
			if err != nil {
				return pdfimgerr.Wrap(pdfimgerr.KindMalformedContentStream, err, "content stream")
			}
			pos = np

		case c == '<':
			if pos+1 < n && s[pos+1] == '<' {
				np, err := skipDict(s, pos)
				if err != nil {
					return pdfimgerr.Wrap(pdfimgerr.KindMalformedContentStream, err, "content stream")
				}
				pos = np
			} else {
				np, err := skipHexString(s, pos)
				if err != nil {
					return pdfimgerr.Wrap(pdfimgerr.KindMalformedContentStream, err, "content stream")
				}
				pos = np
			}

		case c == '[':
			np, err := skipArray(s, pos)
			if err != nil {
				return pdfimgerr.Wrap(pdfimgerr.KindMalformedContentStream, err, "content stream")
			}
			pos = np

		case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
			start := pos
			pos++
			for pos < n && (s[pos] == '.' || s[pos] == '-' || s[pos] == '+' || (s[pos] >= '0' && s[pos] <= '9')) {
				pos++
			}
			f, err := strconv.ParseFloat(s[start:pos], 64)
			if err == nil {
				operands = append(operands, operand{num: f})
			}

		case c == ']' || c == ')' || c == '>' || c == '}':
			// Stray closing delimiter outside any of the skip* helpers
			// above; ignore and move on rather than abort the walk.
			pos++

		default:
			start := pos
			for pos < n && !isDelim(s[pos]) && !isWhitespace(s[pos]) {
				pos++
			}
			if pos == start {
				// A lone delimiter not handled above (such as '{'): step over it.
				pos++
				continue
			}
			op := s[start:pos]

			switch op {
			case "q":
				gs.Save()
			case "Q":
				gs.Restore()
			case "cm":
				if vals, ok := lastNumbers(operands, 6); ok {
					gs.Concat(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5])
				}
			case "Do":
				if name, ok := lastName(operands); ok {
					if err := w.handleDo(name, resources, gs); err != nil {
						log.Debug.Printf("content: skipping /Do %s: %v\n", name, err)
					}
				}
			case "BI":
				np, err := w.handleInlineImage(s, pos, gs)
				if err != nil {
					return pdfimgerr.Wrap(pdfimgerr.KindMalformedContentStream, err, "parsing inline image")
				}
				pos = np
			}
			operands = operands[:0]
		}
	}
	return nil
}

func lastNumbers(operands []operand, k int) ([]float64, bool) {
	if len(operands) < k {
		return nil, false
	}
	tail := operands[len(operands)-k:]
	out := make([]float64, k)
	for i, o := range tail {
		if o.isName {
			return nil, false
		}
		out[i] = o.num
	}
	return out, true
}

func lastName(operands []operand) (string, bool) {
	if len(operands) == 0 {
		return "", false
	}
	last := operands[len(operands)-1]
	if !last.isName {
		return "", false
	}
	return last.name, true
}

func resolveXObject(doc *model.Document, resources model.Dict, name string) (model.Object, error) {
	if resources == nil {
		return nil, errors.New("content: no resources in scope")
	}
	cat := resources.DictEntry("XObject")
	if cat == nil {
		return nil, errors.New("content: resources have no /XObject category")
	}
	ref, ok := cat.Find(name)
	if !ok {
		return nil, errors.Errorf("content: XObject /%s not found", name)
	}
	return doc.Resolve(ref)
}

// handleDo resolves name as either a Form XObject (recurse) or an Image
// XObject (emit an ImageRecord). Errors here are non-fatal to the caller:
// per 4.1 a missing or unresolvable /Do target silently skips the
// operator rather than aborting the walk.
func (w *walker) handleDo(name string, resources model.Dict, gs *GraphicState) error {
	obj, err := resolveXObject(w.doc, resources, name)
	if err != nil {
		return err
	}
	xo, err := model.AsXObject(obj)
	if err != nil {
		return err
	}
	if xo.Subtype == "Form" {
		return w.walkForm(xo, resources, gs)
	}

	pw, ph := imageDims(xo.Stream.Dict)
	isMask := false
	if b := xo.Stream.BooleanEntry("ImageMask"); b != nil {
		isMask = *b
	}
	w.records = append(w.records, ImageRecord{
		Kind:      "external",
		External:  xo,
		Placement: computePlacement(gs, pw, ph, w.switchWH),
		IsMask:    isMask,
	})
	return nil
}

// walkForm saves gstate, concatenates the Form's /Matrix, recurses into
// its content stream, and restores gstate on every exit path (including
// error), per the concurrency model's scoped save/restore requirement.
func (w *walker) walkForm(xo *model.XObject, parentResources model.Dict, gs *GraphicState) error {
	if w.depth >= maxFormRecursionDepth {
		log.Debug.Printf("content: form recursion depth %d exceeded, skipping form\n", maxFormRecursionDepth)
		return nil
	}

	content, err := xo.FormContent()
	if err != nil {
		return err
	}
	formResources := xo.FormResources(parentResources)
	m := xo.FormMatrix()

	gs.Save()
	defer gs.Restore()
	gs.Concat(m[0], m[1], m[2], m[3], m[4], m[5])

	w.depth++
	err = w.run(content, formResources, gs)
	w.depth--
	return err
}

// skipStringLiteral advances past a balanced `(...)` literal starting at
// s[pos], honoring backslash escapes, mirroring the teacher's own
// paren-depth counting for TJ/Tj string operands.
func skipStringLiteral(s string, pos int) (int, error) {
	depth := 1
	i := pos + 1
	for i < len(s) {
		switch s[i] {
		case '\\':
			i += 2
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, nil
			}
		}
		i++
	}
	return len(s), errors.New("unterminated string literal")
}

func skipHexString(s string, pos int) (int, error) {
	i := strings.IndexByte(s[pos+1:], '>')
	if i < 0 {
		return len(s), errors.New("unterminated hex string")
	}
	return pos + 1 + i + 1, nil
}

// skipDict advances past a balanced `<<...>>` dictionary, counting nested
// `<`/`>` pairs exactly as the teacher's own content-stream skipDict does.
func skipDict(s string, pos int) (int, error) {
	rest := s[pos+2:]
	depth := 0
	consumed := pos + 2
	for {
		i := strings.IndexAny(rest, "<>")
		if i < 0 {
			return len(s), errors.New("unterminated dictionary")
		}
		consumed += i
		if rest[i] == '<' {
			depth++
			rest = rest[i+1:]
			consumed++
			continue
		}
		if depth > 0 {
			depth--
			rest = rest[i+1:]
			consumed++
			continue
		}
		if !strings.HasPrefix(rest[i:], ">>") {
			return len(s), errors.New("unterminated dictionary")
		}
		return consumed + 2, nil
	}
}

// skipArray advances past a balanced `[...]` array, recursing into any
// nested strings, hex strings, dicts, or arrays so a `)`/`>`/`]` inside one
// of those doesn't miscount as the array's own close.
func skipArray(s string, pos int) (int, error) {
	i := pos + 1
	for i < len(s) {
		switch s[i] {
		case ']':
			return i + 1, nil
		case '(':
			np, err := skipStringLiteral(s, i)
			if err != nil {
				return len(s), err
			}
			i = np
		case '<':
			var np int
			var err error
			if i+1 < len(s) && s[i+1] == '<' {
				np, err = skipDict(s, i)
			} else {
				np, err = skipHexString(s, i)
			}
			if err != nil {
				return len(s), err
			}
			i = np
		case '[':
			np, err := skipArray(s, i)
			if err != nil {
				return len(s), err
			}
			i = np
		default:
			i++
		}
	}
	return len(s), errors.New("unterminated array")
}
