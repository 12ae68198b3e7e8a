package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/apexfocus/letterpress/record"
)

var (
	exprPattern    = regexp.MustCompile(`\$\{([^}]+)\}`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Filter 对插值结果做二次加工，例如 ${date|date}。
type Filter func(string) string

var filters = map[string]Filter{
	"date":      record.FormatDate,
	"upper":     strings.ToUpper,
	"lower":     strings.ToLower,
	"title":     titleCase,
	"hyphenate": func(s string) string { return whitespaceRuns.ReplaceAllString(s, "-") },
	"trim":      strings.TrimSpace,
}

// Interpolate 将文本中的 ${path.to.value|filter} 替换为 data 中的值。
// 路径不存在或使用了未知过滤器时，保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		segments := strings.Split(groups[1], "|")
		path := strings.TrimSpace(segments[0])
		if path == "" {
			return match
		}
		val, ok := resolvePath(data, path)
		if !ok {
			return match
		}
		out := fmt.Sprint(val)
		for _, name := range segments[1:] {
			fn, ok := filters[strings.TrimSpace(name)]
			if !ok {
				return match
			}
			out = fn(out)
		}
		return out
	})
}

// Unresolved 报告文本中是否仍含有未替换的占位符。
func Unresolved(text string) bool {
	return exprPattern.MatchString(text)
}

func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	if current == nil {
		return nil, false
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	i := strings.Index(segment, "[")
	if i == -1 {
		return segment, nil
	}
	var indexes []string
	rest := segment[i:]
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			break
		}
		indexes = append(indexes, rest[1:end])
		rest = rest[end+1:]
	}
	return segment[:i], indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
