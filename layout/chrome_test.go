package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestChromeOpsGeometry(t *testing.T) {
	accent := DefaultAccent
	ops := chromeOps(210, 297, ChromeStyle{Accent: accent}, TextLine{Content: "Apex Focus Group - Confidential", Width: 50})

	var lines, rects, polys, texts int
	for _, op := range ops {
		if op.Layer != LayerChrome {
			t.Fatalf("chrome op on layer %q", op.Layer)
		}
		switch {
		case op.Line != nil:
			lines++
		case op.Rect != nil:
			rects++
		case op.Polygon != nil:
			polys++
		case op.Text != nil:
			texts++
		}
	}
	// 三角图案 y=252,240,...,60 每侧 17 个。
	if lines != 1 || rects != 2 || polys != 34 || texts != 1 {
		t.Fatalf("lines=%d rects=%d polys=%d texts=%d", lines, rects, polys, texts)
	}

	if diff := cmp.Diff(&Line{X1: 0, Y1: 282, X2: 210, Y2: 282, Color: accent, Width: 1}, ops[0].Line); diff != "" {
		t.Fatalf("divider mismatch (-want +got):\n%s", diff)
	}
	if r := ops[2].Rect; r.X != 190 || r.Y != 262 || r.Width != 20 || r.Opacity != 0.1 {
		t.Fatalf("right corner = %+v", r)
	}

	left := ops[3].Polygon
	wantLeft := []Point{{X: 0, Y: 252}, {X: 8, Y: 248}, {X: 0, Y: 244}}
	if diff := cmp.Diff(wantLeft, left.Points); diff != "" || left.Opacity != 0.15 {
		t.Fatalf("first left triangle mismatch (-want +got):\n%s", diff)
	}
	right := ops[3+17].Polygon
	wantRight := []Point{{X: 210, Y: 252}, {X: 202, Y: 248}, {X: 210, Y: 244}}
	if diff := cmp.Diff(wantRight, right.Points); diff != "" {
		t.Fatalf("first right triangle mismatch (-want +got):\n%s", diff)
	}
	for _, op := range ops {
		if op.Polygon != nil && op.Polygon.Points[0].Y <= 50 {
			t.Fatalf("triangle below lower bound: %+v", op.Polygon.Points)
		}
	}

	caption := ops[len(ops)-1].Text
	if caption.X != 80 || caption.Y != 292 || caption.Font.Size != 8 || caption.Role != RoleCaption {
		t.Fatalf("caption = %+v", caption)
	}
}

func TestChromeOpsWithoutCaption(t *testing.T) {
	for _, op := range chromeOps(210, 297, ChromeStyle{Accent: DefaultAccent}, TextLine{}) {
		if op.Text != nil {
			t.Fatalf("empty caption should not emit text")
		}
	}
}
