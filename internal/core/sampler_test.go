package core

import (
	"math"
	"testing"
)

func TestSamplePoint_WithinUnitSquare(t *testing.T) {
	rng := NewSource()
	for i := 0; i < 10000; i++ {
		p := SamplePoint(rng)
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			t.Fatalf("point out of unit square: %+v", p)
		}
		d := p.Distance()
		if d < 0 || d > math.Sqrt2 {
			t.Fatalf("distance out of range: %v", d)
		}
	}
}

func TestPoint_Distance(t *testing.T) {
	if d := (Point{X: 0.6, Y: 0.8}).Distance(); math.Abs(d-1.0) > 1e-12 {
		t.Fatalf("expected 1.0, got %v", d)
	}
	if d := (Point{}).Distance(); d != 0 {
		t.Fatalf("expected 0, got %v", d)
	}
}

func TestPoint_Short(t *testing.T) {
	got := Point{X: 0.12345, Y: 1}.Short()
	if got != "Point{x: 0.123, y: 1.000}" {
		t.Fatalf("unexpected rendering: %q", got)
	}
}

func TestDraw_LengthAndOrder(t *testing.T) {
	rng := NewSource()
	for _, n := range []int{0, 1, 7, 1000} {
		b := Draw(rng, n)
		if len(b) != n {
			t.Fatalf("Draw(%d) returned %d distances", n, len(b))
		}
	}
	if b := Draw(rng, -3); b != nil {
		t.Fatalf("expected nil batch for negative n, got %v", b)
	}
}

func TestNewSource_IndependentStreams(t *testing.T) {
	a := NewSource()
	b := NewSource()
	same := 0
	for i := 0; i < 16; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	if same == 16 {
		t.Fatalf("two sources produced identical streams")
	}
}

func TestEstimate_Converges(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical convergence test skipped in -short mode")
	}
	const n = 1_000_000
	got, err := Estimate(Draw(NewSource(), n))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-math.Pi) >= 0.01 {
		t.Fatalf("estimate %v too far from pi", got)
	}
}
