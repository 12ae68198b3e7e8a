package letter

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/apexfocus/letterpress/config"
	"github.com/apexfocus/letterpress/layout"
	"github.com/apexfocus/letterpress/logging"
	"github.com/apexfocus/letterpress/record"
	"github.com/apexfocus/letterpress/renderer"
	"github.com/apexfocus/letterpress/templates"
)

// stubBackend 以固定字宽测量，Render 只返回占位字节。
type stubBackend struct{}

func (stubBackend) LayoutLines(content string, width float64, font layout.Font) ([]layout.TextLine, error) {
	return layout.WrapWords(content, width, func(s string) float64 {
		return float64(utf8.RuneCountInString(s)) * font.Size * 0.2
	}), nil
}

func (stubBackend) Render(res *layout.Result) ([]byte, error) {
	return []byte("%PDF-stub"), nil
}

func sampleRecord() record.Record {
	return record.Record{
		EmployeeName:   "  Jane Q. Public ",
		Position:       "Data Analyst",
		HourlyRate:     "32.50",
		Salary:         "67,600",
		Date:           "2024-12-25",
		TrainingDate:   "January 6, 2025",
		EffectiveDate:  "2025-01-06",
		SupervisorName: "Avery Stone",
		Address:        "12 Elm Street, Springfield",
	}
}

func newStubGenerator(t *testing.T, cfg *config.Config, opts ...Option) *Generator {
	t.Helper()
	g, err := New(cfg, append([]Option{WithBackend(stubBackend{})}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func texts(res *layout.Result) []string {
	var out []string
	for _, p := range res.Pages {
		for _, op := range p.Ops {
			if op.Text != nil && op.Layer == layout.LayerContent {
				out = append(out, op.Text.Content)
			}
		}
	}
	return out
}

func containsText(res *layout.Result, want string) bool {
	for _, s := range texts(res) {
		if strings.Contains(s, want) {
			return true
		}
	}
	return false
}

func TestGenerateFormatsDate(t *testing.T) {
	g := newStubGenerator(t, nil)
	doc, err := g.Generate("confirmation", sampleRecord())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !containsText(doc.Layout, "December 25, 2024") {
		t.Fatalf("formatted date not found in %q", texts(doc.Layout))
	}
}

func TestGenerateInvalidDate(t *testing.T) {
	g := newStubGenerator(t, nil)
	rec := sampleRecord()
	rec.Date = "2024-3-5"
	doc, err := g.Generate("confirmation", rec)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !containsText(doc.Layout, record.InvalidDate) {
		t.Fatalf("expected %q in %q", record.InvalidDate, texts(doc.Layout))
	}
}

func TestGenerateFileName(t *testing.T) {
	g := newStubGenerator(t, nil)
	cases := map[string]string{
		"confirmation": "job-confirmation-Jane-Q.-Public.pdf",
		"appointment":  "appointment-letter-Jane-Q.-Public.pdf",
	}
	for kind, want := range cases {
		doc, err := g.Generate(kind, sampleRecord())
		if err != nil {
			t.Fatalf("Generate(%s): %v", kind, err)
		}
		if doc.FileName != want {
			t.Fatalf("Generate(%s) file name = %q, want %q", kind, doc.FileName, want)
		}
		if doc.Kind != kind {
			t.Fatalf("unexpected kind %q", doc.Kind)
		}
	}
}

func TestGenerateUsesConfigCompany(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Company = "Northwind Traders"
	cfg.HRName = "Morgan Lee"
	g := newStubGenerator(t, cfg)
	doc, err := g.Generate("appointment", sampleRecord())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if doc.Layout.Meta.Author != "Northwind Traders" {
		t.Fatalf("unexpected author %q", doc.Layout.Meta.Author)
	}
	if !containsText(doc.Layout, "Morgan Lee") {
		t.Fatalf("HR name missing from %q", texts(doc.Layout))
	}
}

func TestGenerateWithoutLogoSucceeds(t *testing.T) {
	buf := logging.NewBufferedLogHandler(nil)
	g := newStubGenerator(t, nil, WithLogger(slog.New(buf)))
	doc, err := g.Generate("confirmation", sampleRecord())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(doc.Bytes) == 0 {
		t.Fatalf("expected PDF bytes")
	}
	if len(doc.Warnings) != 0 {
		t.Fatalf("missing logo should not warn: %v", doc.Warnings)
	}
	if !buf.Contains("document generated") {
		t.Fatalf("expected info log, got:\n%s", buf.String())
	}
}

func TestGenerateLogoFailureIsWarning(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logo = "missing-logo.png"
	cfg.AssetDir = t.TempDir()
	g := newStubGenerator(t, cfg)
	doc, err := g.Generate("confirmation", sampleRecord())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(doc.Warnings) != 1 || !strings.HasPrefix(doc.Warnings[0], "logo:") {
		t.Fatalf("expected one logo warning, got %v", doc.Warnings)
	}
}

func TestGenerateRemoteLogoNotFoundIsWarning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Logo = srv.URL + "/logo.png"
	g := newStubGenerator(t, cfg)
	doc, err := g.Generate("confirmation", sampleRecord())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(doc.Warnings) != 1 || !strings.Contains(doc.Warnings[0], "HTTP 404") {
		t.Fatalf("expected one HTTP 404 logo warning, got %v", doc.Warnings)
	}
}

func TestGenerateRecordLogoOverridesConfig(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 140, 30))
	for x := 0; x < 140; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.RGBA{B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Logo = "missing-logo.png"
	g := newStubGenerator(t, cfg)

	rec := sampleRecord()
	rec.LogoURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	doc, err := g.Generate("confirmation", rec)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(doc.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", doc.Warnings)
	}
	var found bool
	for _, op := range doc.Layout.Pages[0].Ops {
		if op.Image != nil {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an image op on the first page")
	}
}

func TestGenerateUnknownKind(t *testing.T) {
	g := newStubGenerator(t, nil)
	if _, err := g.Generate("resignation", sampleRecord()); !errors.Is(err, templates.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := g.GenerateAll("resignation", []record.Record{sampleRecord()}); !errors.Is(err, templates.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind from GenerateAll, got %v", err)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = "skia"
	if _, err := New(cfg); !errors.Is(err, renderer.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
	cfg = config.DefaultConfig()
	cfg.Accent = "not-a-colour"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected accent error")
	}
}

func TestGenerateAllAndSave(t *testing.T) {
	g := newStubGenerator(t, nil)
	second := sampleRecord()
	second.EmployeeName = "John Smith"
	docs, err := g.GenerateAll("appointment", []record.Record{sampleRecord(), second})
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	dir := filepath.Join(t.TempDir(), "out")
	for _, doc := range docs {
		path, err := Save(doc, dir)
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read back: %v", err)
		}
		if !bytes.Equal(data, doc.Bytes) {
			t.Fatalf("saved bytes differ for %s", path)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "appointment-letter-John-Smith.pdf")); err != nil {
		t.Fatalf("expected saved file: %v", err)
	}
}

func TestSaveRejectsPathInFileName(t *testing.T) {
	doc := &Document{FileName: "../escape.pdf", Bytes: []byte("x")}
	if _, err := Save(doc, t.TempDir()); err == nil {
		t.Fatalf("expected error for file name with path")
	}
}

func TestGenerateWithRealBackends(t *testing.T) {
	for _, name := range renderer.Names() {
		t.Run(name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Backend = name
			g, err := New(cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			for _, kind := range templates.Kinds() {
				doc, err := g.Generate(kind, sampleRecord())
				if err != nil {
					t.Fatalf("Generate(%s): %v", kind, err)
				}
				if !bytes.HasPrefix(doc.Bytes, []byte("%PDF")) {
					t.Fatalf("Generate(%s) did not produce a PDF", kind)
				}
				if doc.Pages < 1 {
					t.Fatalf("Generate(%s) produced no pages", kind)
				}
			}
		})
	}
}
