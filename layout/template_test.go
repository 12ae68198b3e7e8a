package layout

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/apexfocus/letterpress/dsl"
)

func TestCompileReadsPageAndMeta(t *testing.T) {
	tpl := compileSource(t, `letter appointment v2 {
  meta {
    title: "Letter of Appointment"
    author: "${company}"
    keywords: "appointment, hr"
    file: "appointment-letter"
  }
  page letter margin 1in start 30mm
}
`)
	if tpl.Kind != "appointment" || tpl.Version != "v2" {
		t.Fatalf("header = %s %s", tpl.Kind, tpl.Version)
	}
	wantGeo := Geometry{Width: 215.9, Height: 279.4, Margin: 25.4, Start: 30, Resume: 20, Bottom: 40}
	if diff := cmp.Diff(wantGeo, tpl.Page); diff != "" {
		t.Fatalf("geometry mismatch (-want +got):\n%s", diff)
	}
	wantMeta := MetaBlock{
		Title:    "Letter of Appointment",
		Author:   "${company}",
		Creator:  "letterpress",
		Keywords: []string{"appointment", "hr"},
		File:     "appointment-letter",
	}
	if diff := cmp.Diff(wantMeta, tpl.Meta); diff != "" {
		t.Fatalf("meta mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileBlocks(t *testing.T) {
	tpl := compileSource(t, `letter blocks v1 {
  logo src "builtin:logo" width 70mm height 15mm after 35mm missing 10mm
  text bold size 16pt align center leading 14mm { "TITLE" }
  section "Benefits" bullets marker "*" after 3mm {
    "* one"
  }
  space 10mm
  signature reserve 50mm before 20mm {
    text { "Sincerely," }
  }
}
`)
	var kinds []string
	for _, b := range tpl.Blocks {
		kinds = append(kinds, string(b.Kind))
	}
	if got := strings.Join(kinds, " "); got != "logo text section space signature" {
		t.Fatalf("kinds = %q", got)
	}
	logo := tpl.Blocks[0]
	if logo.Src != "builtin:logo" || logo.Width != 70 || logo.Height != 15 || logo.After != 35 || logo.Missing != 10 {
		t.Fatalf("logo = %+v", logo)
	}
	text := tpl.Blocks[1]
	if !text.Font.Bold || text.Font.Size != 16 || text.Align != "center" || text.Leading != 14 {
		t.Fatalf("text = %+v", text)
	}
	section := tpl.Blocks[2]
	if section.Title != "Benefits" || section.Mode != ModeBullets || section.Marker != "*" || section.After != 3 {
		t.Fatalf("section = %+v", section)
	}
	if tpl.Blocks[3].Amount != 10 {
		t.Fatalf("space = %+v", tpl.Blocks[3])
	}
	sig := tpl.Blocks[4]
	if sig.Amount != 50 || sig.Before != 20 || len(sig.Children) != 1 || sig.Children[0].Kind != BlockText {
		t.Fatalf("signature = %+v", sig)
	}
	if tpl.Meta.File != "blocks" {
		t.Fatalf("file prefix should default to kind, got %q", tpl.Meta.File)
	}
}

func TestCompileRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"unknown command": `letter bad v1 {
  table { "x" }
}
`,
		"bad length": `letter bad v1 {
  space wide
}
`,
		"bad page": `letter bad v1 {
  page A0
}
`,
		"nested signature": `letter bad v1 {
  signature {
    signature { }
  }
}
`,
	}
	for name, src := range cases {
		doc, err := dsl.ParseString(src)
		if err != nil {
			t.Fatalf("%s: parse failed: %v", name, err)
		}
		if _, err := Compile(doc); err == nil {
			t.Fatalf("%s: expected compile error", name)
		}
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#4F46E5": {R: 79, G: 70, B: 229},
		"#fff":    {R: 255, G: 255, B: 255},
		"000000":  {},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Fatalf("ParseColor(%q) = %+v, %v", in, got, err)
		}
	}
	if _, err := ParseColor("#12"); err == nil {
		t.Fatalf("expected error for short colour")
	}
}
