package curve

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-6
}

// =============================================================================
// Curve Tests
// =============================================================================

func TestCurve_Evaluate(t *testing.T) {
	c := Curve{Points: []Point{{0, 0}, {0.5, 0.25}, {1, 1}}}

	tests := []struct {
		in, want float32
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.125},
		{0.5, 0.25},
		{0.75, 0.625},
		{1, 1},
		{2, 1},
	}
	for _, tt := range tests {
		if got := c.Evaluate(tt.in); !approx(got, tt.want) {
			t.Errorf("Evaluate(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestCurve_Extrapolate(t *testing.T) {
	c := Identity()
	c.Extrapolate = true
	if got := c.Evaluate(2); !approx(got, 2) {
		t.Errorf("Evaluate(2) = %f, want 2", got)
	}
	if got := c.Evaluate(-1); !approx(got, -1) {
		t.Errorf("Evaluate(-1) = %f, want -1", got)
	}
}

func TestCurve_Degenerate(t *testing.T) {
	var empty Curve
	if got := empty.Evaluate(0.3); got != 0.3 {
		t.Errorf("empty curve Evaluate = %f, want 0.3", got)
	}
	single := Curve{Points: []Point{{0.5, 0.7}}}
	if got := single.Evaluate(0.1); got != 0.7 {
		t.Errorf("single point Evaluate = %f, want 0.7", got)
	}
}

// =============================================================================
// Mapping Tests
// =============================================================================

func TestMapping_IdentityIsNoop(t *testing.T) {
	m := NewMapping()
	px := []float32{0.1, 0.5, 0.9, 1}
	m.ApplyPixel(px, 4)
	want := []float32{0.1, 0.5, 0.9, 1}
	for i := range want {
		if !approx(px[i], want[i]) {
			t.Errorf("px[%d] = %f, want %f", i, px[i], want[i])
		}
	}
}

func TestMapping_RevisionAndCopy(t *testing.T) {
	m := NewMapping()
	if m.Revision() != 0 {
		t.Fatalf("new mapping revision = %d, want 0", m.Revision())
	}

	m.Curves[Combined].Points = []Point{{1, 0}, {0, 1}}
	m.Changed()
	if m.Revision() != 1 {
		t.Fatalf("revision after Changed = %d, want 1", m.Revision())
	}
	if m.Curves[Combined].Points[0].X != 0 {
		t.Error("Changed should sort control points")
	}

	c := m.Copy()
	if c == m {
		t.Fatal("Copy returned the same pointer")
	}
	if c.Revision() != m.Revision() {
		t.Errorf("copy revision = %d, want %d", c.Revision(), m.Revision())
	}

	c.Curves[Combined].Points[0].Y = 0.5
	if m.Curves[Combined].Points[0].Y != 1 {
		t.Error("editing the copy changed the original")
	}

	px := []float32{0.25, 0.25, 0.25}
	m.EvaluatePremulRGB(px, px)
	if !approx(px[0], 0.75) {
		t.Errorf("inverted curve at 0.25 = %f, want 0.75", px[0])
	}
}

func TestMapping_BlackWhite(t *testing.T) {
	m := NewMapping()
	m.Black = [3]float32{0.2, 0.2, 0.2}
	m.White = [3]float32{0.6, 0.6, 0.6}
	m.Changed()

	px := []float32{0.4, 0.2, 0.6}
	m.EvaluatePremulRGB(px, px)
	want := []float32{0.5, 0, 1}
	for i := range want {
		if !approx(px[i], want[i]) {
			t.Errorf("px[%d] = %f, want %f", i, px[i], want[i])
		}
	}
}

func TestMapping_SingleChannel(t *testing.T) {
	m := NewMapping()
	m.Curves[0].Points = []Point{{0, 1}, {1, 0}}
	m.Changed()

	px := []float32{0.25}
	m.ApplyPixel(px, 1)
	if !approx(px[0], 0.75) {
		t.Errorf("single channel = %f, want 0.75", px[0])
	}
}
