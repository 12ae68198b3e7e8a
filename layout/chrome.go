package layout

// 装饰层几何常量（mm）。
const (
	dividerOffset     = 15.0 // 分隔线距页面底部
	dividerWidth      = 1.0
	cornerSize        = 20.0
	cornerOpacity     = 0.1
	patternDepth      = 8.0
	patternStep       = 12.0
	patternTopOffset  = 30.0 // 图案自分隔线向上的起点
	patternLowerBound = 50.0
	patternOpacity    = 0.15
	captionSize       = 8.0
	captionBaseline   = 5.0 // 页脚文字基线距页面底部
)

// chromeOps 生成每页相同的装饰层：底部分隔线、两角半透明方块、两侧三角图案与居中页脚文字。
// 结果只依赖页面尺寸与样式，由 pageCollector 在每个新页面的最前面追加。
func chromeOps(width, height float64, style ChromeStyle, caption TextLine) []Op {
	accent := style.Accent
	divider := height - dividerOffset
	ops := []Op{
		{Layer: LayerChrome, Line: &Line{X1: 0, Y1: divider, X2: width, Y2: divider, Color: accent, Width: dividerWidth}},
		{Layer: LayerChrome, Rect: &Rect{X: 0, Y: divider - cornerSize, Width: cornerSize, Height: cornerSize, Fill: accent, Opacity: cornerOpacity}},
		{Layer: LayerChrome, Rect: &Rect{X: width - cornerSize, Y: divider - cornerSize, Width: cornerSize, Height: cornerSize, Fill: accent, Opacity: cornerOpacity}},
	}
	for _, edge := range []struct{ x, dir float64 }{{0, 1}, {width, -1}} {
		for y := divider - patternTopOffset; y > patternLowerBound; y -= patternStep {
			ops = append(ops, Op{Layer: LayerChrome, Polygon: &Polygon{
				Points: []Point{
					{X: edge.x, Y: y},
					{X: edge.x + edge.dir*patternDepth, Y: y - 4},
					{X: edge.x, Y: y - 8},
				},
				Fill:    accent,
				Opacity: patternOpacity,
			}})
		}
	}
	if caption.Content != "" {
		ops = append(ops, Op{Layer: LayerChrome, Text: &TextBox{
			Content: caption.Content,
			X:       (width - caption.Width) / 2,
			Y:       height - captionBaseline,
			Width:   caption.Width,
			Height:  captionBaseline,
			Font:    Font{Size: captionSize},
			Color:   accent,
			Align:   "center",
			Role:    RoleCaption,
		}})
	}
	return ops
}
