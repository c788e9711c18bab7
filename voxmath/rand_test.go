package voxmath

import "testing"

func TestRandDeterministic(t *testing.T) {
	a := NewRand(42)
	b := NewRand(42)
	for i := 0; i < 100; i++ {
		va := a.Uint64()
		vb := b.Uint64()
		if va != vb {
			t.Fatalf("stream diverged at %d: %d != %d", i, va, vb)
		}
	}
}

func TestRandDifferentSeeds(t *testing.T) {
	a := NewRand(1)
	b := NewRand(2)
	same := true
	for i := 0; i < 8; i++ {
		if a.Uint64() != b.Uint64() {
			same = false
		}
	}
	if same {
		t.Fatal("expected different seeds to diverge")
	}
}

func TestFloat32RangeBounds(t *testing.T) {
	r := NewRand(7)
	for i := 0; i < 1000; i++ {
		v := r.Float32Range(-2, 3)
		if v < -2 || v >= 3 {
			t.Fatalf("value %f out of range", v)
		}
	}
}

func TestFloorDivNegative(t *testing.T) {
	cases := []struct{ a, b, want int }{
		{-1, 32, -1},
		{-32, 32, -1},
		{-33, 32, -2},
		{31, 32, 0},
		{32, 32, 1},
		{0, 32, 0},
	}
	for _, c := range cases {
		if got := FloorDiv(c.a, c.b); got != c.want {
			t.Errorf("FloorDiv(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestFloorModAlwaysPositive(t *testing.T) {
	for a := -40; a <= 40; a++ {
		m := FloorMod(a, 32)
		if m < 0 || m >= 32 {
			t.Fatalf("FloorMod(%d,32) = %d out of range", a, m)
		}
	}
}
