package layout

import "strings"

// MeasureFunc 返回文本在当前字体下的宽度（mm）。
type MeasureFunc func(s string) float64

// WrapWords 以贪心方式在空白处折行。单词永远不会被拆开：宽于 width 的单词独占一行并允许溢出。
// 连续空白在输出中折叠为单个空格；非空白字符按原顺序恰好出现一次。width<=0 表示不限宽。
func WrapWords(content string, width float64, measure MeasureFunc) []TextLine {
	words := strings.Fields(content)
	if len(words) == 0 {
		return nil
	}
	var (
		lines   []TextLine
		current = words[0]
		curW    = measure(current)
	)
	for _, w := range words[1:] {
		candidate := current + " " + w
		cw := measure(candidate)
		if width > 0 && cw > width {
			lines = append(lines, TextLine{Content: current, Width: curW})
			current, curW = w, measure(w)
			continue
		}
		current, curW = candidate, cw
	}
	return append(lines, TextLine{Content: current, Width: curW})
}
