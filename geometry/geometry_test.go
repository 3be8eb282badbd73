package geometry

import (
	"math"
	"testing"
)

const tolerance = 0.0001

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestNewScale(t *testing.T) {
	tests := []struct {
		name       string
		renderedPx float64
		pageWidth  float64
		valid      bool
		factor     float64
	}{
		{"full width", 612, 612, true, 1},
		{"half width", 306, 612, true, 0.5},
		{"zoomed in", 1224, 612, true, 2},
		{"zero rendered width", 0, 612, false, 0},
		{"zero page width", 612, 0, false, 0},
		{"negative", -100, 612, false, 0},
		{"nan", math.NaN(), 612, false, 0},
		{"inf", math.Inf(1), 612, false, 0},
	}

	for _, tt := range tests {
		s := NewScale(tt.renderedPx, tt.pageWidth)
		if s.Valid() != tt.valid {
			t.Errorf("%s: Valid() = %v, want %v", tt.name, s.Valid(), tt.valid)
		}
		if !floatEqual(s.Factor(), tt.factor) {
			t.Errorf("%s: Factor() = %v, want %v", tt.name, s.Factor(), tt.factor)
		}
	}
}

func TestScaleRoundTrip(t *testing.T) {
	s := NewScale(918, Letter.Width) // factor 1.5
	points := []Point{
		{0, 0},
		{72, 72},
		{611.5, 791.25},
		{12.345, 678.9},
	}

	for _, p := range points {
		px := s.ToScreen(p)
		back, ok := s.ToDocument(px)
		if !ok {
			t.Fatalf("ToDocument failed for %v", px)
		}
		if !floatEqual(back.X, p.X) || !floatEqual(back.Y, p.Y) {
			t.Errorf("round trip %v -> %v -> %v", p, px, back)
		}
	}
}

func TestToDocumentInvalidScale(t *testing.T) {
	var s Scale
	if _, ok := s.ToDocument(PixelPoint{100, 100}); ok {
		t.Error("expected ToDocument to fail on invalid scale")
	}
}

func TestToDocumentNonFiniteInput(t *testing.T) {
	s := ScaleOf(1)
	inputs := []PixelPoint{
		{math.NaN(), 10},
		{10, math.NaN()},
		{math.Inf(1), 10},
		{10, math.Inf(-1)},
	}
	for _, in := range inputs {
		if _, ok := s.ToDocument(in); ok {
			t.Errorf("expected ToDocument(%v) to fail", in)
		}
	}
}

func TestRectEdges(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	if !floatEqual(r.Right(), 110) {
		t.Errorf("Right() = %v, want 110", r.Right())
	}
	if !floatEqual(r.Bottom(), 70) {
		t.Errorf("Bottom() = %v, want 70", r.Bottom())
	}
}

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"overlapping", Rect{0, 0, 100, 100}, Rect{50, 50, 100, 100}, true},
		{"disjoint", Rect{0, 0, 50, 50}, Rect{100, 100, 50, 50}, false},
		{"touching edges", Rect{0, 0, 50, 50}, Rect{50, 0, 50, 50}, false},
		{"contained", Rect{0, 0, 100, 100}, Rect{25, 25, 10, 10}, true},
	}

	for _, tt := range tests {
		if got := tt.a.Intersects(tt.b); got != tt.want {
			t.Errorf("%s: Intersects = %v, want %v", tt.name, got, tt.want)
		}
		if got := tt.b.Intersects(tt.a); got != tt.want {
			t.Errorf("%s (swapped): Intersects = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRectClampInto(t *testing.T) {
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"inside stays", Rect{100, 100, 50, 50}, Rect{100, 100, 50, 50}},
		{"negative x", Rect{-50, 100, 50, 50}, Rect{0, 100, 50, 50}},
		{"negative y", Rect{100, -10, 50, 50}, Rect{100, 0, 50, 50}},
		{"past right edge", Rect{600, 100, 50, 50}, Rect{562, 100, 50, 50}},
		{"past bottom edge", Rect{100, 780, 50, 50}, Rect{100, 742, 50, 50}},
		{"both corners out", Rect{-5, 900, 50, 50}, Rect{0, 742, 50, 50}},
	}

	for _, tt := range tests {
		got := tt.in.ClampInto(Letter)
		if got != tt.want {
			t.Errorf("%s: ClampInto = %+v, want %+v", tt.name, got, tt.want)
		}
		if !Letter.Contains(got) {
			t.Errorf("%s: clamped rect %+v escapes the page", tt.name, got)
		}
	}
}

func TestPageContains(t *testing.T) {
	if !Letter.Contains(Rect{0, 0, 612, 792}) {
		t.Error("full-page rect should be contained")
	}
	if Letter.Contains(Rect{0, 0, 613, 792}) {
		t.Error("oversize rect should not be contained")
	}
	if Letter.Contains(Rect{-1, 0, 10, 10}) {
		t.Error("negative origin should not be contained")
	}
}

func TestRectIsFinite(t *testing.T) {
	if !(Rect{1, 2, 3, 4}).IsFinite() {
		t.Error("finite rect reported non-finite")
	}
	bad := []Rect{
		{math.NaN(), 0, 10, 10},
		{0, math.Inf(1), 10, 10},
		{0, 0, math.NaN(), 10},
		{0, 0, 10, math.Inf(-1)},
	}
	for _, r := range bad {
		if r.IsFinite() {
			t.Errorf("rect %+v reported finite", r)
		}
	}
}
