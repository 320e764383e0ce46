package model

import "github.com/pkg/errors"

// XObject is a Form or Image XObject, as found under a resource
// dictionary's /XObject category.
type XObject struct {
	Stream  *StreamDict
	Subtype string // "Form" or "Image"
}

// AsXObject resolves obj (typically the result of Page.Resource) into an
// XObject, failing if it is not a stream or its /Subtype is neither Form
// nor Image.
func AsXObject(obj Object) (*XObject, error) {
	sd, ok := obj.(*StreamDict)
	if !ok {
		return nil, errors.Errorf("model: XObject is not a stream (%T)", obj)
	}
	sub := sd.Subtype()
	if sub != "Form" && sub != "Image" {
		return nil, errors.Errorf("model: unsupported XObject /Subtype %q", sub)
	}
	return &XObject{Stream: sd, Subtype: sub}, nil
}

// FormContent returns a Form XObject's fully decoded content stream.
func (x *XObject) FormContent() ([]byte, error) {
	if x.Subtype != "Form" {
		return nil, errors.Errorf("model: FormContent called on a %s XObject", x.Subtype)
	}
	if x.Stream.Content == nil {
		if err := x.Stream.Decode(); err != nil {
			return nil, err
		}
	}
	return x.Stream.Content, nil
}

// FormMatrix returns a Form XObject's /Matrix entry, or the identity
// operand tuple [1 0 0 1 0 0] if absent.
func (x *XObject) FormMatrix() [6]float64 {
	if arr := x.Stream.ArrayEntry("Matrix"); arr != nil {
		floats := arr.Floats()
		if len(floats) == 6 {
			return [6]float64{floats[0], floats[1], floats[2], floats[3], floats[4], floats[5]}
		}
	}
	return [6]float64{1, 0, 0, 1, 0, 0}
}

// FormResources returns a Form XObject's own /Resources, falling back to
// the parent page's resources when absent (7.8.3: inheritance applies to
// forms exactly as it does to pages).
func (x *XObject) FormResources(parent Dict) Dict {
	if r := x.Stream.DictEntry("Resources"); r != nil {
		return r
	}
	return parent
}
