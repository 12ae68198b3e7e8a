package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/apexfocus/letterpress/fonts"
	"github.com/apexfocus/letterpress/layout"
)

const defaultStrokeWidth = 0.2

// Renderer draws layout results via github.com/tdewolff/canvas.
type Renderer struct {
	regular []byte
	bold    []byte

	fontMu sync.Mutex
	family *canvas.FontFamily
}

var _ layout.Typesetter = (*Renderer)(nil)

// Options configures the canvas renderer. Empty fields fall back to the embedded Go fonts.
type Options struct {
	Regular []byte
	Bold    []byte
}

// NewRenderer creates a renderer using the embedded fonts.
func NewRenderer() *Renderer { return NewRendererWithOptions(Options{}) }

// NewRendererWithOptions creates a renderer with injected font data.
func NewRendererWithOptions(opts Options) *Renderer {
	return &Renderer{regular: opts.Regular, bold: opts.Bold}
}

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	if _, err := r.fontFamily(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	keywords := strings.Join(result.Meta.Keywords, ", ")
	writer.SetInfo(result.Meta.Title, result.Meta.Subject, keywords, result.Meta.Author, result.Meta.Creator)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("绘制第 %d 页失败: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// LayoutLines 实现 layout.Typesetter：用 canvas 字体度量（mm）做贪心折行。
func (r *Renderer) LayoutLines(content string, width float64, font layout.Font) ([]layout.TextLine, error) {
	face, err := r.fontFace(font, layout.Color{})
	if err != nil {
		return nil, err
	}
	return layout.WrapWords(content, width, face.TextWidth), nil
}

// drawPage 按顺序执行绘制操作；装饰层排在最前，因此总在正文之下。
func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page) error {
	for _, op := range page.Ops {
		switch {
		case op.Line != nil:
			drawLine(ctx, *op.Line)
		case op.Rect != nil:
			drawRect(ctx, *op.Rect)
		case op.Polygon != nil:
			drawPolygon(ctx, *op.Polygon)
		case op.Text != nil:
			if err := r.drawText(ctx, *op.Text); err != nil {
				return err
			}
		case op.Image != nil:
			drawImage(ctx, *op.Image)
		}
	}
	return nil
}

func (r *Renderer) drawText(ctx *canvas.Context, tb layout.TextBox) error {
	face, err := r.fontFace(tb.Font, tb.Color)
	if err != nil {
		return err
	}
	// 布局已把 X 换算为左端、Y 为基线。
	ctx.DrawText(tb.X, tb.Y, canvas.NewTextLine(face, tb.Content, canvas.Left))
	return nil
}

func drawImage(ctx *canvas.Context, img layout.ImageBox) {
	if img.Image == nil || img.Width <= 0 {
		return
	}
	dpmm := float64(img.Image.Bounds().Dx()) / img.Width
	if dpmm <= 0 {
		dpmm = 1
	}
	ctx.DrawImage(img.X, img.Y, img.Image, canvas.DPMM(dpmm))
}

// drawLine 绘制直线（毫米单位）
func drawLine(ctx *canvas.Context, ln layout.Line) {
	w := ln.Width
	if w <= 0 {
		w = defaultStrokeWidth
	}
	ctx.SetFillColor(color.RGBA{})
	ctx.SetStrokeColor(colorFromLayout(ln.Color, 1))
	ctx.SetStrokeWidth(w)
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
	ctx.DrawPath(ln.X1, ln.Y1, p)
}

// drawRect 绘制填充矩形
func drawRect(ctx *canvas.Context, rc layout.Rect) {
	ctx.SetStrokeColor(color.RGBA{})
	ctx.SetFillColor(colorFromLayout(rc.Fill, rc.Opacity))
	ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
}

// drawPolygon 绘制填充多边形，点坐标为页面绝对坐标。
func drawPolygon(ctx *canvas.Context, pg layout.Polygon) {
	if len(pg.Points) < 3 {
		return
	}
	p := &canvas.Path{}
	p.MoveTo(pg.Points[0].X, pg.Points[0].Y)
	for _, pt := range pg.Points[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	p.Close()
	ctx.SetStrokeColor(color.RGBA{})
	ctx.SetFillColor(colorFromLayout(pg.Fill, pg.Opacity))
	ctx.DrawPath(0, 0, p)
}

// fontFace 的字号单位为 pt，与 canvas.FontFamily.Face 一致。
func (r *Renderer) fontFace(font layout.Font, col layout.Color) (*canvas.FontFace, error) {
	family, err := r.fontFamily()
	if err != nil {
		return nil, err
	}
	style := canvas.FontRegular
	if font.Bold {
		style = canvas.FontBold
	}
	size := font.Size
	if size <= 0 {
		size = layout.BodySize
	}
	return family.Face(size, colorFromLayout(col, 1), style, canvas.FontNormal), nil
}

func (r *Renderer) fontFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if r.family != nil {
		return r.family, nil
	}
	family := canvas.NewFontFamily("letterpress")
	for _, f := range []struct {
		data  []byte
		name  string
		style canvas.FontStyle
	}{
		{r.regular, fonts.Regular, canvas.FontRegular},
		{r.bold, fonts.Bold, canvas.FontBold},
	} {
		data := f.data
		if len(data) == 0 {
			var err error
			if data, err = fonts.Load(f.name); err != nil {
				return nil, err
			}
		}
		if err := family.LoadFont(data, 0, f.style); err != nil {
			return nil, fmt.Errorf("加载字体 %s 失败: %w", f.name, err)
		}
	}
	r.family = family
	return family, nil
}

func colorFromLayout(c layout.Color, opacity float64) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, layout.Alpha(opacity))
}
