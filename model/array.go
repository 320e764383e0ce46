package model

import "strings"

// Array is a PDF array object.
type Array []Object

func (a Array) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, o := range a {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if o == nil {
			sb.WriteString("null")
			continue
		}
		sb.WriteString(o.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a Array) PDFString() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, o := range a {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if o == nil {
			sb.WriteString("null")
			continue
		}
		sb.WriteString(o.PDFString())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Floats converts a numeric array (Integer or Float entries) to []float64.
func (a Array) Floats() []float64 {
	out := make([]float64, 0, len(a))
	for _, o := range a {
		switch v := o.(type) {
		case Integer:
			out = append(out, float64(v))
		case Float:
			out = append(out, float64(v))
		}
	}
	return out
}
