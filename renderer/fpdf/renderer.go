// Package fpdfrenderer 基于 codeberg.org/go-pdf/fpdf 输出 PDF，使用 PDF 内置的 Helvetica 字体。
package fpdfrenderer

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"
	"sync"

	"codeberg.org/go-pdf/fpdf"

	"github.com/apexfocus/letterpress/layout"
)

const (
	fontFamily         = "Helvetica"
	defaultStrokeWidth = 0.2
)

// Renderer 输出 PDF 并提供 Helvetica 度量。内置字体只覆盖 cp1252 字符集。
type Renderer struct {
	translate func(string) string

	// measure 仅用于测量字符串宽度，fpdf 实例不是并发安全的。
	mu      sync.Mutex
	measure *fpdf.Fpdf
}

var _ layout.Typesetter = (*Renderer)(nil)

// NewRenderer 创建 fpdf 后端。
func NewRenderer() *Renderer {
	m := newDocument(layout.A4.Width, layout.A4.Height)
	return &Renderer{
		translate: m.UnicodeTranslatorFromDescriptor(""),
		measure:   m,
	}
}

func newDocument(width, height float64) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	return pdf
}

// LayoutLines 实现 layout.Typesetter。
func (r *Renderer) LayoutLines(content string, width float64, font layout.Font) ([]layout.TextLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.measure.SetFont(fontFamily, fontStyle(font), fontSize(font))
	lines := layout.WrapWords(content, width, func(s string) float64 {
		return r.measure.GetStringWidth(r.translate(s))
	})
	if err := r.measure.Error(); err != nil {
		// fpdf 的错误状态会一直保留，清除后后续测量才能继续。
		r.measure.ClearError()
		return nil, fmt.Errorf("测量文本失败: %w", err)
	}
	return lines, nil
}

// Render 将布局结果写为 PDF。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	first := result.Pages[0]
	pdf := newDocument(first.Width, first.Height)
	r.applyMeta(pdf, result.Meta)

	images := 0
	for i, page := range result.Pages {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: page.Width, Ht: page.Height})
		for _, op := range page.Ops {
			switch {
			case op.Line != nil:
				drawLine(pdf, *op.Line)
			case op.Rect != nil:
				drawRect(pdf, *op.Rect)
			case op.Polygon != nil:
				drawPolygon(pdf, *op.Polygon)
			case op.Text != nil:
				r.drawText(pdf, *op.Text)
			case op.Image != nil:
				images++
				if err := drawImage(pdf, *op.Image, fmt.Sprintf("img%d", images)); err != nil {
					return nil, fmt.Errorf("绘制第 %d 页图片失败: %w", i+1, err)
				}
			}
		}
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("绘制第 %d 页失败: %w", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(pdf *fpdf.Fpdf, meta layout.DocumentMeta) {
	pdf.SetTitle(meta.Title, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetCreator(meta.Creator, true)
	if len(meta.Keywords) > 0 {
		pdf.SetKeywords(strings.Join(meta.Keywords, ", "), true)
	}
}

func (r *Renderer) drawText(pdf *fpdf.Fpdf, tb layout.TextBox) {
	pdf.SetFont(fontFamily, fontStyle(tb.Font), fontSize(tb.Font))
	pdf.SetTextColor(tb.Color.R, tb.Color.G, tb.Color.B)
	pdf.Text(tb.X, tb.Y, r.translate(tb.Content))
}

func drawLine(pdf *fpdf.Fpdf, ln layout.Line) {
	w := ln.Width
	if w <= 0 {
		w = defaultStrokeWidth
	}
	pdf.SetDrawColor(ln.Color.R, ln.Color.G, ln.Color.B)
	pdf.SetLineWidth(w)
	pdf.Line(ln.X1, ln.Y1, ln.X2, ln.Y2)
}

func drawRect(pdf *fpdf.Fpdf, rc layout.Rect) {
	pdf.SetFillColor(rc.Fill.R, rc.Fill.G, rc.Fill.B)
	pdf.SetAlpha(layout.Alpha(rc.Opacity), "Normal")
	pdf.Rect(rc.X, rc.Y, rc.Width, rc.Height, "F")
	pdf.SetAlpha(1, "Normal")
}

func drawPolygon(pdf *fpdf.Fpdf, pg layout.Polygon) {
	if len(pg.Points) < 3 {
		return
	}
	pts := make([]fpdf.PointType, len(pg.Points))
	for i, p := range pg.Points {
		pts[i] = fpdf.PointType{X: p.X, Y: p.Y}
	}
	pdf.SetFillColor(pg.Fill.R, pg.Fill.G, pg.Fill.B)
	pdf.SetAlpha(layout.Alpha(pg.Opacity), "Normal")
	pdf.Polygon(pts, "F")
	pdf.SetAlpha(1, "Normal")
}

// drawImage 统一转码为 PNG 后注册，fpdf 只接受编码后的图片流。
func drawImage(pdf *fpdf.Fpdf, img layout.ImageBox, name string) error {
	if img.Image == nil || img.Width <= 0 || img.Height <= 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.Image); err != nil {
		return fmt.Errorf("编码图片 %s 失败: %w", img.Source, err)
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, &buf)
	pdf.ImageOptions(name, img.X, img.Y, img.Width, img.Height, false, opts, 0, "")
	return nil
}

func fontStyle(f layout.Font) string {
	if f.Bold {
		return "B"
	}
	return ""
}

func fontSize(f layout.Font) float64 {
	if f.Size <= 0 {
		return layout.BodySize
	}
	return f.Size
}
