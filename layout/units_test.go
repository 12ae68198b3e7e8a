package layout

import (
	"math"
	"testing"
)

// TestPtMmRoundTrip 验证 pt↔mm 换算的往返精度。
func TestPtMmRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.001, 1, 12, 14.4, 72, 1000} {
		if diff := math.Abs(v*PtToMm*MmToPt - v); diff > 1e-9 {
			t.Fatalf("pt→mm→pt 往返误差过大: in=%g diff=%g", v, diff)
		}
	}
	if diff := math.Abs(72*PtToMm - 25.4); diff > 1e-9 {
		t.Fatalf("72pt 应等于 25.4mm, diff=%g", diff)
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		in     string
		wantMM float64
		wantPT float64
	}{
		{"25mm", 25, 25 * MmToPt},
		{"2.5cm", 25, 25 * MmToPt},
		{"1in", 25.4, 72},
		{"18pt", 18 * PtToMm, 18},
		{"10", 10, 10},
	}
	for _, tc := range cases {
		l, ok := ParseLength(tc.in)
		if !ok {
			t.Fatalf("ParseLength(%q) failed", tc.in)
		}
		if diff := math.Abs(l.ToMM() - tc.wantMM); diff > 1e-9 {
			t.Fatalf("%q ToMM = %g, want %g", tc.in, l.ToMM(), tc.wantMM)
		}
		if diff := math.Abs(l.ToPT() - tc.wantPT); diff > 1e-9 {
			t.Fatalf("%q ToPT = %g, want %g", tc.in, l.ToPT(), tc.wantPT)
		}
	}
	for _, bad := range []string{"", "mm", "abc", "1.2.3pt"} {
		if _, ok := ParseLength(bad); ok {
			t.Fatalf("ParseLength(%q) should fail", bad)
		}
	}
}
