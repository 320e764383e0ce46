package model

import "strings"

// Dict is a PDF dictionary object. Values are the raw parsed objects;
// indirect references are resolved lazily by Document.Resolve, never
// by Dict itself, since a bare Dict has no access to the cross-reference
// table.
type Dict map[string]Object

// NewDict returns an empty Dict.
func NewDict() Dict { return Dict{} }

// Find returns the object for key, unresolved.
func (d Dict) Find(key string) (Object, bool) {
	v, ok := d[key]
	return v, ok
}

// NameEntry returns the Name value for key, or "" if absent or of a
// different type.
func (d Dict) NameEntry(key string) string {
	if v, ok := d[key]; ok {
		if n, ok := v.(Name); ok {
			return string(n)
		}
	}
	return ""
}

// IntEntry returns the Integer value for key, or nil if absent or of a
// different type.
func (d Dict) IntEntry(key string) *int {
	if v, ok := d[key]; ok {
		if i, ok := v.(Integer); ok {
			n := int(i)
			return &n
		}
	}
	return nil
}

// FloatEntry returns key as a float64, accepting either Integer or Float.
func (d Dict) FloatEntry(key string) *float64 {
	if v, ok := d[key]; ok {
		switch n := v.(type) {
		case Float:
			f := float64(n)
			return &f
		case Integer:
			f := float64(n)
			return &f
		}
	}
	return nil
}

// BooleanEntry returns the Boolean value for key, or nil if absent.
func (d Dict) BooleanEntry(key string) *bool {
	if v, ok := d[key]; ok {
		if b, ok := v.(Boolean); ok {
			bb := bool(b)
			return &bb
		}
	}
	return nil
}

// ArrayEntry returns the Array value for key, or nil if absent or of a
// different type.
func (d Dict) ArrayEntry(key string) Array {
	if v, ok := d[key]; ok {
		if a, ok := v.(Array); ok {
			return a
		}
	}
	return nil
}

// DictEntry returns the Dict value for key, or nil if absent.
func (d Dict) DictEntry(key string) Dict {
	if v, ok := d[key]; ok {
		if dd, ok := v.(Dict); ok {
			return dd
		}
	}
	return nil
}

// Type returns the /Type name entry, if any.
func (d Dict) Type() string { return d.NameEntry("Type") }

// Subtype returns the /Subtype name entry, if any.
func (d Dict) Subtype() string { return d.NameEntry("Subtype") }

func (d Dict) String() string {
	var sb strings.Builder
	sb.WriteString("<<")
	for k, v := range d {
		sb.WriteString("/" + k + " ")
		if v == nil {
			sb.WriteString("null")
		} else {
			sb.WriteString(v.String())
		}
		sb.WriteByte(' ')
	}
	sb.WriteString(">>")
	return sb.String()
}

func (d Dict) PDFString() string { return d.String() }
