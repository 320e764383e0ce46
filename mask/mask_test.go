package mask

import "testing"

func TestSoftMaskAlphaAt(t *testing.T) {
	m := SoftMask{Samples: []byte{0, 128, 255}, Width: 3, Height: 1}
	if m.AlphaAt(1) != 128 {
		t.Fatalf("expected 128, got %d", m.AlphaAt(1))
	}
	if m.AlphaAt(99) != 255 {
		t.Fatal("expected out-of-range index to default to fully opaque")
	}
}

func TestStencilMaskDefaultPolarity(t *testing.T) {
	m := StencilMask{Samples: []byte{0, 1}, Width: 2, Height: 1}
	if m.AlphaAt(0) != 255 {
		t.Fatal("expected unset sample bit to paint (alpha 255)")
	}
	if m.AlphaAt(1) != 0 {
		t.Fatal("expected set sample bit to hide (alpha 0)")
	}
}

func TestStencilMaskInvertedPolarity(t *testing.T) {
	m := StencilMask{Samples: []byte{0, 1}, Width: 2, Height: 1, Inverted: true}
	if m.AlphaAt(0) != 0 {
		t.Fatal("expected inverted polarity to hide an unset bit")
	}
	if m.AlphaAt(1) != 255 {
		t.Fatal("expected inverted polarity to paint a set bit")
	}
}

func TestColorKeyInvertedComparisonNeverMatchesAscendingRange(t *testing.T) {
	ck := ColorKey{Ranges: []ColorKeyRange{{Min: 10, Max: 20}}}
	// A component value inside [10,20] would be masked out (alpha 0)
	// under the conventional reading, but the preserved condition
	// Min >= component && Max <= component can't hold for Min < Max, so
	// this is opaque (255) instead.
	if got := ck.AlphaAt([]int{15}); got != 255 {
		t.Fatalf("expected preserved inverted comparison to leave an in-range value opaque, got %d", got)
	}
}

func TestColorKeyMismatchedComponentCountDefaultsOpaque(t *testing.T) {
	ck := ColorKey{Ranges: []ColorKeyRange{{Min: 0, Max: 10}, {Min: 0, Max: 10}}}
	if got := ck.AlphaAt([]int{5}); got != 255 {
		t.Fatalf("expected mismatched component count to default to opaque, got %d", got)
	}
}

func TestModelNone(t *testing.T) {
	var m Model
	if !m.None() {
		t.Fatal("expected zero-value Model to report None")
	}
	m.Soft = &SoftMask{}
	if m.None() {
		t.Fatal("expected Model with a soft mask set to not report None")
	}
}
