package model

import (
	"bytes"

	"github.com/pkg/errors"
)

// Page is one page of the document, with inherited attributes (/Resources,
// /Rotate) resolved from ancestor page-tree nodes per 7.7.3.4. /MediaBox is
// not read.
type Page struct {
	doc       *Document
	dict      Dict
	Rotate    int
	Resources Dict
}

// Page returns the n'th page (1-based) of the document's page tree.
func (d *Document) Page(n int) (*Page, error) {
	root, err := d.Root()
	if err != nil {
		return nil, err
	}
	pagesRef, ok := root.Find("Pages")
	if !ok {
		return nil, errors.New("model: catalog has no /Pages")
	}
	pagesDict, err := d.ResolveDict(pagesRef)
	if err != nil {
		return nil, err
	}

	count := 0
	leaf, resources, rotate, err := d.findPage(pagesDict, n, &count, NewDict(), 0)
	if err != nil {
		return nil, err
	}
	if leaf == nil {
		return nil, errors.Errorf("model: page %d not found (document has %d pages)", n, count)
	}
	return &Page{doc: d, dict: leaf, Rotate: rotate, Resources: resources}, nil
}

// findPage walks the page tree in document order, inheriting /Resources
// and /Rotate down each branch, until the n'th (1-based) leaf /Page is
// reached.
func (d *Document) findPage(node Dict, n int, count *int, inheritedResources Dict, inheritedRotate int) (Dict, Dict, int, error) {
	resources := inheritedResources
	if r := node.DictEntry("Resources"); r != nil {
		resources = r
	}
	rotate := inheritedRotate
	if r := node.IntEntry("Rotate"); r != nil {
		rotate = ((*r % 360) + 360) % 360
	}

	if node.Type() == "Page" {
		*count++
		if *count == n {
			return node, resources, rotate, nil
		}
		return nil, nil, 0, nil
	}

	kidsArr := node.ArrayEntry("Kids")
	for _, kidRef := range kidsArr {
		kid, err := d.ResolveDict(kidRef)
		if err != nil {
			return nil, nil, 0, err
		}
		leaf, res, rot, err := d.findPage(kid, n, count, resources, rotate)
		if err != nil {
			return nil, nil, 0, err
		}
		if leaf != nil {
			return leaf, res, rot, nil
		}
	}
	return nil, nil, 0, nil
}

// ContentStream returns the page's fully decoded content stream bytes.
// When /Contents is an array of streams, per 7.8.2 they are concatenated
// with an interleaving whitespace byte (never merged without a separator,
// since a token could otherwise span two streams).
func (p *Page) ContentStream() ([]byte, error) {
	contentsRef, ok := p.dict.Find("Contents")
	if !ok {
		return nil, nil
	}
	resolved, err := p.doc.Resolve(contentsRef)
	if err != nil {
		return nil, err
	}

	switch v := resolved.(type) {
	case *StreamDict:
		if err := v.Decode(); err != nil {
			return nil, err
		}
		return v.Content, nil
	case Array:
		var buf bytes.Buffer
		for i, ref := range v {
			obj, err := p.doc.Resolve(ref)
			if err != nil {
				return nil, err
			}
			sd, ok := obj.(*StreamDict)
			if !ok {
				return nil, errors.New("model: /Contents array entry is not a stream")
			}
			if err := sd.Decode(); err != nil {
				return nil, err
			}
			if i > 0 {
				buf.WriteByte('\n')
			}
			buf.Write(sd.Content)
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.Errorf("model: unexpected /Contents type %T", resolved)
	}
}

// Resource resolves a named entry of the page's resource dictionary's
// given category (e.g. "XObject", "Font").
func (p *Page) Resource(category, name string) (Object, error) {
	cat := p.Resources.DictEntry(category)
	if cat == nil {
		return nil, errors.Errorf("model: page resources have no /%s category", category)
	}
	ref, ok := cat.Find(name)
	if !ok {
		return nil, errors.Errorf("model: resource /%s/%s not found", category, name)
	}
	return p.doc.Resolve(ref)
}
