package model

import "testing"

func TestParseObjectName(t *testing.T) {
	p := newParser("/DeviceRGB")
	obj, err := p.ParseObject()
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := obj.(Name); !ok || n.Value() != "DeviceRGB" {
		t.Fatalf("expected Name DeviceRGB, got %#v", obj)
	}
}

func TestParseNameHexEscape(t *testing.T) {
	p := newParser("/A#42C")
	obj, err := p.ParseObject()
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := obj.(Name); !ok || n.Value() != "ABC" {
		t.Fatalf("expected Name ABC, got %#v", obj)
	}
}

func TestParseIndirectReference(t *testing.T) {
	p := newParser("12 0 R")
	obj, err := p.ParseObject()
	if err != nil {
		t.Fatal(err)
	}
	ref, ok := obj.(IndirectRef)
	if !ok || ref.ObjectNumber != 12 || ref.GenerationNumber != 0 {
		t.Fatalf("expected IndirectRef{12 0}, got %#v", obj)
	}
}

func TestParsePlainInteger(t *testing.T) {
	p := newParser("42 /Next")
	obj, err := p.ParseObject()
	if err != nil {
		t.Fatal(err)
	}
	if i, ok := obj.(Integer); !ok || i.Value() != 42 {
		t.Fatalf("expected Integer 42, got %#v", obj)
	}
}

func TestParseFloat(t *testing.T) {
	p := newParser("3.14")
	obj, err := p.ParseObject()
	if err != nil {
		t.Fatal(err)
	}
	if f, ok := obj.(Float); !ok || f.Value() != 3.14 {
		t.Fatalf("expected Float 3.14, got %#v", obj)
	}
}

func TestParseArray(t *testing.T) {
	p := newParser("[1 2.5 /Foo (bar) true null]")
	obj, err := p.ParseObject()
	if err != nil {
		t.Fatal(err)
	}
	arr, ok := obj.(Array)
	if !ok || len(arr) != 6 {
		t.Fatalf("expected 6-element array, got %#v", obj)
	}
	if _, ok := arr[0].(Integer); !ok {
		t.Fatalf("expected arr[0] to be Integer, got %T", arr[0])
	}
	if s, ok := arr[3].(StringLiteral); !ok || string(s) != "bar" {
		t.Fatalf("expected arr[3] to be StringLiteral(bar), got %#v", arr[3])
	}
}

func TestParseDict(t *testing.T) {
	p := newParser("<< /Type /Page /Rotate 90 /Kids [1 0 R 2 0 R] >>")
	obj, err := p.ParseObject()
	if err != nil {
		t.Fatal(err)
	}
	d, ok := obj.(Dict)
	if !ok {
		t.Fatalf("expected Dict, got %#v", obj)
	}
	if d.Type() != "Page" {
		t.Fatalf("expected /Type Page, got %q", d.Type())
	}
	if r := d.IntEntry("Rotate"); r == nil || *r != 90 {
		t.Fatalf("expected /Rotate 90, got %v", r)
	}
	if kids := d.ArrayEntry("Kids"); len(kids) != 2 {
		t.Fatalf("expected 2 kids, got %d", len(kids))
	}
}

func TestParseStringLiteralEscapes(t *testing.T) {
	p := newParser(`(line1\nline2\\)`)
	obj, err := p.ParseObject()
	if err != nil {
		t.Fatal(err)
	}
	s, ok := obj.(StringLiteral)
	if !ok || string(s) != "line1\nline2\\" {
		t.Fatalf("expected unescaped literal, got %#v", obj)
	}
}

func TestParseHexLiteral(t *testing.T) {
	p := newParser("<48656C6C6F>")
	obj, err := p.ParseObject()
	if err != nil {
		t.Fatal(err)
	}
	if h, ok := obj.(HexLiteral); !ok || string(h) != "Hello" {
		t.Fatalf("expected HexLiteral Hello, got %#v", obj)
	}
}
