package canvasrenderer

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/apexfocus/letterpress/layout"
	"github.com/apexfocus/letterpress/record"
	"github.com/apexfocus/letterpress/templates"
)

func TestLayoutLinesGreedyWrapsText(t *testing.T) {
	r := NewRenderer()
	lines, err := r.LayoutLines("hello world again", 10, layout.Font{Size: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(lines))
	}
	for _, ln := range lines {
		if strings.Contains(ln.Content, " ") && ln.Width > 10 {
			t.Fatalf("line %q exceeds width: %.2fmm", ln.Content, ln.Width)
		}
	}
}

func TestLayoutLinesWithoutLimitKeepsSingleLine(t *testing.T) {
	r := NewRenderer()
	lines, err := r.LayoutLines("Apex Focus Group - Confidential", 0, layout.Font{Size: 8})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Width <= 0 {
		t.Fatalf("expected positive width, got %.2f", lines[0].Width)
	}
}

func TestBoldMeasuresWiderThanRegular(t *testing.T) {
	r := NewRenderer()
	regular, err := r.LayoutLines("Employment Confirmation", 0, layout.Font{Size: 12})
	if err != nil {
		t.Fatalf("regular: %v", err)
	}
	bold, err := r.LayoutLines("Employment Confirmation", 0, layout.Font{Size: 12, Bold: true})
	if err != nil {
		t.Fatalf("bold: %v", err)
	}
	if bold[0].Width <= regular[0].Width {
		t.Fatalf("expected bold (%.2f) wider than regular (%.2f)", bold[0].Width, regular[0].Width)
	}
}

func TestMeasurementScalesWithSize(t *testing.T) {
	r := NewRenderer()
	small, _ := r.LayoutLines("Signature", 0, layout.Font{Size: 10})
	large, _ := r.LayoutLines("Signature", 0, layout.Font{Size: 20})
	ratio := large[0].Width / small[0].Width
	if ratio < 1.9 || ratio > 2.1 {
		t.Fatalf("expected width to double with size, ratio=%.3f", ratio)
	}
}

func TestRenderRejectsEmptyResult(t *testing.T) {
	r := NewRenderer()
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
	if _, err := r.Render(&layout.Result{}); err == nil {
		t.Fatalf("expected error for result without pages")
	}
}

func TestRenderDrawsEveryOpKind(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		for y := 0; y < 2; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	page := layout.Page{Width: 210, Height: 297, Ops: []layout.Op{
		{Layer: layout.LayerChrome, Rect: &layout.Rect{X: 0, Y: 262, Width: 20, Height: 20, Fill: layout.DefaultAccent, Opacity: 0.1}},
		{Layer: layout.LayerChrome, Polygon: &layout.Polygon{Points: []layout.Point{{X: 0, Y: 252}, {X: 6, Y: 258}, {X: 0, Y: 264}}, Fill: layout.DefaultAccent, Opacity: 0.15}},
		{Layer: layout.LayerChrome, Line: &layout.Line{X1: 0, Y1: 282, X2: 210, Y2: 282, Color: layout.DefaultAccent, Width: 1}},
		{Text: &layout.TextBox{Content: "Employment Confirmation", X: 25, Y: 25, Font: layout.Font{Bold: true, Size: 16}}},
		{Image: &layout.ImageBox{Source: "inline", X: 87.5, Y: 10, Width: 35, Height: 17.5, Image: img}},
	}}
	res := &layout.Result{
		Pages: []layout.Page{page, {Width: 210, Height: 297}},
		Meta:  layout.DocumentMeta{Title: "Employment Confirmation", Keywords: []string{"letter"}},
	}
	out, err := NewRenderer().Render(res)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", out[:min(8, len(out))])
	}
}

func TestRenderBuiltinLetters(t *testing.T) {
	rec := record.Record{
		EmployeeName:   "Jane Q Doe",
		Position:       "Data Analyst",
		HourlyRate:     "32.50",
		Salary:         "67,600",
		Date:           "2024-03-05",
		TrainingDate:   "March 11, 2024",
		EffectiveDate:  "2024-03-18",
		SupervisorName: "Avery Stone",
		Address:        "12 Elm Street, Springfield",
	}
	data := rec.Fields()
	data["company"] = "Apex Focus Group"
	data["hrName"] = "Caleb Oneal"
	data["hrTitle"] = "Head of HR"

	r := NewRenderer()
	for _, kind := range templates.Kinds() {
		t.Run(kind, func(t *testing.T) {
			tpl, err := templates.Get(kind)
			if err != nil {
				t.Fatalf("template: %v", err)
			}
			res, err := layout.Build(tpl, data, layout.BuildOptions{
				Typesetter: r,
				Chrome:     layout.ChromeStyle{Caption: "${company} - Confidential"},
			})
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			out, err := r.Render(res)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if !bytes.HasPrefix(out, []byte("%PDF")) {
				t.Fatalf("expected PDF output")
			}
		})
	}
}
