package layout

import (
	"fmt"
	"log/slog"
	"strings"
)

// pageCollector 持有一次排版的全部页面。每个新页面在写入正文前先追加装饰层。
type pageCollector struct {
	geo    Geometry
	chrome []Op
	pages  []*Page
}

func newPageCollector(geo Geometry, chrome []Op) *pageCollector {
	pc := &pageCollector{geo: geo, chrome: chrome}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *Page {
	p := &Page{Width: pc.geo.Width, Height: pc.geo.Height}
	p.Ops = append(p.Ops, pc.chrome...)
	pc.pages = append(pc.pages, p)
	return p
}

func (pc *pageCollector) curr() *Page {
	if len(pc.pages) == 0 {
		return pc.newPage()
	}
	return pc.pages[len(pc.pages)-1]
}

func (pc *pageCollector) allPages() []Page {
	out := make([]Page, len(pc.pages))
	for i, p := range pc.pages {
		out[i] = *p
	}
	return out
}

// flowContext 是单次排版独占的游标：当前页、纵向位置与页面几何。
// cursorY 是下一行文本的基线位置（mm，自页面顶部起算）。
type flowContext struct {
	collector  *pageCollector
	geo        Geometry
	cursorY    float64
	data       map[string]any
	typesetter Typesetter
	accent     Color
	log        *slog.Logger
}

// ensureSpace 在推进 advance 之后会越过安全区时先分页，返回是否分页。
func (ctx *flowContext) ensureSpace(advance float64) bool {
	if ctx.cursorY+advance <= ctx.geo.Limit() {
		return false
	}
	ctx.pageBreak()
	return true
}

// ensureRemaining 在页面剩余高度不足 amount 时分页。
func (ctx *flowContext) ensureRemaining(amount float64) bool {
	if ctx.geo.Height-ctx.cursorY >= amount {
		return false
	}
	ctx.pageBreak()
	return true
}

func (ctx *flowContext) pageBreak() {
	ctx.collector.newPage()
	ctx.cursorY = ctx.geo.Resume
	ctx.log.Debug("page break", "page", len(ctx.collector.pages))
}

func (ctx *flowContext) advance(dy float64) { ctx.cursorY += dy }

func (ctx *flowContext) emit(op Op) {
	if op.Layer == "" {
		op.Layer = LayerContent
	}
	p := ctx.collector.curr()
	p.Ops = append(p.Ops, op)
}

// typeset 调用排版后端折行，失败属于核心错误。
func (ctx *flowContext) typeset(content string, width float64, font Font) ([]TextLine, error) {
	lines, err := ctx.typesetter.LayoutLines(content, width, font)
	if err != nil {
		return nil, fmt.Errorf("排版文本 %q 失败: %w", abbreviate(content), err)
	}
	return lines, nil
}

// placeLine 按对齐方式在 [left, left+width] 内放置一行文本，基线为当前游标。
func (ctx *flowContext) placeLine(line TextLine, left, width, advance float64, font Font, col Color, align string, role Role) {
	x := left + alignOffset(width, line.Width, align)
	ctx.emit(Op{Text: &TextBox{
		Content: line.Content,
		X:       x,
		Y:       ctx.cursorY,
		Width:   line.Width,
		Height:  advance,
		Font:    font,
		Color:   col,
		Align:   align,
		Role:    role,
	}})
}

func alignOffset(container, width float64, align string) float64 {
	if container <= width {
		return 0
	}
	switch strings.ToLower(align) {
	case "center", "middle":
		return (container - width) / 2
	case "right", "end":
		return container - width
	default:
		return 0
	}
}

func abbreviate(s string) string {
	const max = 32
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
