package layout

import (
	"strings"

	"github.com/apexfocus/letterpress/binding"
)

var (
	sectionTitleFont = Font{Bold: true, Size: TitleSize}
	sectionBodyFont  = Font{Size: BodySize}
	bodyColor        = Color{}
)

// renderSection 排版一个章节：可选标题，随后逐条内容。每一行输出前都检查分页。
func (ctx *flowContext) renderSection(b Block) error {
	left := ctx.geo.Margin
	width := ctx.geo.ContentWidth()

	if title := binding.Interpolate(b.Title, ctx.data); title != "" {
		lines, err := ctx.typeset(title, width, sectionTitleFont)
		if err != nil {
			return err
		}
		for i, ln := range lines {
			// 标题与第一行内容保持在同一页。
			need := TitleAdvance
			if i == len(lines)-1 {
				need += LineAdvance
			}
			ctx.ensureSpace(need)
			ctx.placeLine(ln, left, width, TitleAdvance, sectionTitleFont, bodyColor, "", RoleSectionTitle)
			ctx.advance(TitleAdvance)
		}
	}

	marker := b.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	for _, raw := range b.Lines {
		content := strings.TrimSpace(binding.Interpolate(raw, ctx.data))
		if content == "" {
			ctx.advance(BlankAdvance)
			continue
		}
		var err error
		if b.Mode == ModeBullets && strings.HasPrefix(content, marker) {
			err = ctx.renderBullet(strings.TrimSpace(strings.TrimPrefix(content, marker)))
		} else {
			err = ctx.renderParagraph(content, left, width, LineAdvance, sectionBodyFont, bodyColor, "", RoleParagraph)
		}
		if err != nil {
			return err
		}
		ctx.advance(ItemGap)
	}
	ctx.advance(SectionGap)
	return nil
}

// renderBullet 只在第一行前绘制圆点，续行与正文对齐且不带圆点。
func (ctx *flowContext) renderBullet(item string) error {
	left := ctx.geo.Margin
	lines, err := ctx.typeset(item, ctx.geo.ContentWidth()-BulletNarrow, sectionBodyFont)
	if err != nil {
		return err
	}
	for i, ln := range lines {
		ctx.ensureSpace(LineAdvance)
		role := RoleContinuation
		if i == 0 {
			ctx.placeLine(TextLine{Content: BulletGlyph}, left, 0, LineAdvance, sectionBodyFont, bodyColor, "", RoleBulletGlyph)
			role = RoleBullet
		}
		ctx.placeLine(ln, left+BulletIndent, 0, LineAdvance, sectionBodyFont, bodyColor, "", role)
		ctx.advance(LineAdvance)
	}
	return nil
}

// renderParagraph 将文本折行到 width 内，每行推进 advance。
func (ctx *flowContext) renderParagraph(content string, left, width, advance float64, font Font, col Color, align string, role Role) error {
	lines, err := ctx.typeset(content, width, font)
	if err != nil {
		return err
	}
	for _, ln := range lines {
		ctx.ensureSpace(advance)
		ctx.placeLine(ln, left, width, advance, font, col, align, role)
		ctx.advance(advance)
	}
	return nil
}
