package pdfimgerr

import (
	"errors"
	"testing"
)

func TestNewCarriesKind(t *testing.T) {
	err := New(KindTruncatedImage, "expected %d bytes, got %d", 10, 4)
	k, ok := As(err)
	if !ok {
		t.Fatal("expected As to recognize *Error")
	}
	if k != KindTruncatedImage {
		t.Fatalf("expected KindTruncatedImage, got %v", k)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(KindUnsupportedFilter, cause, "filter %s", "JBIG2Decode")
	if !errors.Is(err, cause) {
		t.Fatal("expected wrapped error chain to include cause")
	}
	k, ok := As(err)
	if !ok || k != KindUnsupportedFilter {
		t.Fatalf("expected KindUnsupportedFilter, got %v ok=%v", k, ok)
	}
}

func TestAsRejectsPlainError(t *testing.T) {
	if _, ok := As(errors.New("plain")); ok {
		t.Fatal("expected As to reject a plain error")
	}
}
