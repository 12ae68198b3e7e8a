package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/apexfocus/letterpress/binding"
	"github.com/apexfocus/letterpress/logging"
	"github.com/apexfocus/letterpress/record"
)

// StepOutcome 表示可选步骤的结果。
type StepOutcome int

const (
	StepApplied StepOutcome = iota
	StepSkipped
)

func (o StepOutcome) String() string {
	if o == StepSkipped {
		return "skipped"
	}
	return "applied"
}

// StepResult 是可选步骤（如 logo）的返回值。Skipped 且 Err 非空时记录为警告，排版继续。
type StepResult struct {
	Step    string
	Outcome StepOutcome
	Err     error
}

var errNoTypesetter = errors.New("缺少排版后端 Typesetter")

// Build 按模板为一份数据排版。每次调用独占自己的游标与页面集合，可并发调用。
// 可选步骤失败只会写入 Result.Warnings；排版后端失败直接返回错误。
func Build(tpl *Template, data map[string]any, opts BuildOptions) (*Result, error) {
	if tpl == nil {
		return nil, fmt.Errorf("模板为空")
	}
	if opts.Typesetter == nil {
		return nil, errNoTypesetter
	}
	log := logging.Or(opts.Logger).With("kind", tpl.Kind)

	style := opts.Chrome
	if style.Accent == (Color{}) {
		style.Accent = DefaultAccent
	}
	caption, err := measureCaption(opts.Typesetter, binding.Interpolate(style.Caption, data))
	if err != nil {
		return nil, err
	}

	geo := tpl.Page
	ctx := &flowContext{
		collector:  newPageCollector(geo, chromeOps(geo.Width, geo.Height, style, caption)),
		geo:        geo,
		cursorY:    geo.Start,
		data:       data,
		typesetter: opts.Typesetter,
		accent:     style.Accent,
		log:        log,
	}

	res := &Result{Kind: tpl.Kind}
	for _, b := range tpl.Blocks {
		if b.Kind == BlockLogo {
			step := ctx.renderLogo(b, opts.Assets)
			if step.Outcome == StepSkipped && step.Err != nil {
				log.Warn("optional step skipped", "step", step.Step, "err", step.Err)
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", step.Step, step.Err))
			} else {
				log.Debug("optional step", "step", step.Step, "outcome", step.Outcome.String())
			}
			continue
		}
		if err := ctx.renderBlock(b); err != nil {
			return nil, err
		}
	}

	res.Pages = ctx.collector.allPages()
	res.Meta = DocumentMeta{
		Title:   binding.Interpolate(tpl.Meta.Title, data),
		Subject: binding.Interpolate(tpl.Meta.Subject, data),
		Author:  binding.Interpolate(tpl.Meta.Author, data),
		Creator: binding.Interpolate(tpl.Meta.Creator, data),
	}
	for _, k := range tpl.Meta.Keywords {
		res.Meta.Keywords = append(res.Meta.Keywords, binding.Interpolate(k, data))
	}
	res.FileName = record.FileName(tpl.Meta.File, binding.Interpolate(tpl.Meta.Recipient, data))
	log.Debug("layout done", "pages", len(res.Pages), "file", res.FileName)
	return res, nil
}

func measureCaption(ts Typesetter, caption string) (TextLine, error) {
	if strings.TrimSpace(caption) == "" {
		return TextLine{}, nil
	}
	lines, err := ts.LayoutLines(caption, 0, Font{Size: captionSize})
	if err != nil {
		return TextLine{}, fmt.Errorf("排版页脚文字失败: %w", err)
	}
	if len(lines) == 0 {
		return TextLine{}, nil
	}
	return lines[0], nil
}

func (ctx *flowContext) renderBlock(b Block) error {
	switch b.Kind {
	case BlockText:
		return ctx.renderText(b)
	case BlockRule:
		ctx.advance(b.Before)
		col, err := ctx.resolveColor(b.Color)
		if err != nil {
			return fmt.Errorf("%s: %w", b.Pos, err)
		}
		ctx.ensureSpace(b.Width)
		ctx.emit(Op{Line: &Line{
			X1: ctx.geo.Margin, Y1: ctx.cursorY,
			X2: ctx.geo.Width - ctx.geo.Margin, Y2: ctx.cursorY,
			Color: col, Width: b.Width,
		}})
		ctx.advance(b.After)
	case BlockSpace:
		ctx.advance(b.Amount)
	case BlockReserve:
		ctx.ensureRemaining(b.Amount)
	case BlockBreak:
		ctx.pageBreak()
		ctx.advance(b.After)
	case BlockSection:
		ctx.advance(b.Before)
		if err := ctx.renderSection(b); err != nil {
			return err
		}
		ctx.advance(b.After)
	case BlockSignature:
		ctx.ensureRemaining(b.Amount)
		ctx.advance(b.Before)
		for _, child := range b.Children {
			if err := ctx.renderBlock(child); err != nil {
				return err
			}
		}
		ctx.advance(b.After)
	default:
		return fmt.Errorf("%s: 无法排版的块 %s", b.Pos, b.Kind)
	}
	return nil
}

func (ctx *flowContext) renderText(b Block) error {
	col, err := ctx.resolveColor(b.Color)
	if err != nil {
		return fmt.Errorf("%s: %w", b.Pos, err)
	}
	role := RoleBody
	if b.Font.Size > TitleSize {
		role = RoleHeading
	}
	ctx.advance(b.Before)
	for _, raw := range b.Lines {
		content := binding.Interpolate(raw, ctx.data)
		if strings.TrimSpace(content) == "" {
			ctx.advance(BlankAdvance)
			continue
		}
		if err := ctx.renderParagraph(content, ctx.geo.Margin, ctx.geo.ContentWidth(), b.Leading, b.Font, col, b.Align, role); err != nil {
			return err
		}
	}
	ctx.advance(b.After)
	return nil
}

// renderLogo 尽力绘制页眉图片：缺少引用时静默跳过，加载或解码失败时跳过并返回原因。
func (ctx *flowContext) renderLogo(b Block, assets AssetLoader) StepResult {
	step := StepResult{Step: "logo"}
	src := strings.TrimSpace(binding.Interpolate(b.Src, ctx.data))
	skip := func(err error) StepResult {
		ctx.advance(b.Missing)
		step.Outcome, step.Err = StepSkipped, err
		return step
	}
	if src == "" || binding.Unresolved(src) {
		return skip(nil)
	}
	if assets == nil {
		return skip(errors.New("未配置图片加载器"))
	}
	img, err := assets.Load(src)
	if err != nil {
		return skip(fmt.Errorf("加载 %s 失败: %w", abbreviate(src), err))
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return skip(fmt.Errorf("图片 %s 尺寸为空", abbreviate(src)))
	}
	w, h := fitBox(float64(bounds.Dx()), float64(bounds.Dy()), b.Width, b.Height)
	ctx.ensureSpace(h)
	ctx.emit(Op{Image: &ImageBox{
		Source: abbreviate(src),
		X:      (ctx.geo.Width - w) / 2,
		Y:      ctx.cursorY,
		Width:  w,
		Height: h,
		Image:  img,
	}})
	ctx.advance(b.After)
	step.Outcome = StepApplied
	return step
}

// fitBox 在保持宽高比的前提下把图片缩放进 maxW×maxH（任一为 0 表示不限）。
func fitBox(imgW, imgH, maxW, maxH float64) (float64, float64) {
	switch {
	case maxW <= 0 && maxH <= 0:
		return imgW / 4, imgH / 4
	case maxH <= 0:
		return maxW, imgH * maxW / imgW
	case maxW <= 0:
		return imgW * maxH / imgH, maxH
	}
	scale := maxW / imgW
	if s := maxH / imgH; s < scale {
		scale = s
	}
	return imgW * scale, imgH * scale
}

func (ctx *flowContext) resolveColor(value string) (Color, error) {
	switch strings.ToLower(value) {
	case "":
		return bodyColor, nil
	case "accent":
		return ctx.accent, nil
	}
	return parseColor(value)
}
