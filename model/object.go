// Package model implements a minimal PDF object-access facade: just enough
// object model, lexer and cross-reference handling to open a PDF file,
// walk its page tree, and hand image streams to the decoding pipeline.
// It is deliberately not a full PDF engine (no incremental-update merging,
// no encryption, no writing) — that is out of scope for an image decoder.
package model

import (
	"fmt"
	"strconv"
)

// Object is any PDF primitive value.
type Object interface {
	fmt.Stringer
	PDFString() string
}

// Boolean is a PDF boolean object.
type Boolean bool

func (b Boolean) String() string    { return strconv.FormatBool(bool(b)) }
func (b Boolean) PDFString() string { return b.String() }

// Integer is a PDF integer object.
type Integer int

func (i Integer) String() string    { return strconv.Itoa(int(i)) }
func (i Integer) PDFString() string { return i.String() }
func (i Integer) Value() int        { return int(i) }

// Float is a PDF real number object.
type Float float64

func (f Float) String() string    { return strconv.FormatFloat(float64(f), 'f', -1, 64) }
func (f Float) PDFString() string { return f.String() }
func (f Float) Value() float64    { return float64(f) }

// Name is a PDF name object (without the leading slash).
type Name string

func (n Name) String() string    { return string(n) }
func (n Name) PDFString() string { return "/" + string(n) }
func (n Name) Value() string     { return string(n) }

// StringLiteral is a PDF `(...)` string object, already unescaped.
type StringLiteral string

func (s StringLiteral) String() string    { return string(s) }
func (s StringLiteral) PDFString() string { return "(" + string(s) + ")" }

// HexLiteral is a PDF `<...>` hex string object, already decoded.
type HexLiteral string

func (h HexLiteral) String() string    { return string(h) }
func (h HexLiteral) PDFString() string { return "<" + string(h) + ">" }

// IndirectRef is a PDF `n g R` indirect reference.
type IndirectRef struct {
	ObjectNumber     int
	GenerationNumber int
}

func (r IndirectRef) String() string {
	return fmt.Sprintf("(%d %d R)", r.ObjectNumber, r.GenerationNumber)
}
func (r IndirectRef) PDFString() string {
	return fmt.Sprintf("%d %d R", r.ObjectNumber, r.GenerationNumber)
}

// Null is the PDF null object.
type Null struct{}

func (Null) String() string    { return "null" }
func (Null) PDFString() string { return "null" }
