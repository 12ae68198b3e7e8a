// Package fonts 提供内置字体。默认使用 Go 字体（golang.org/x/image/font/gofont），无需额外文件。
package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	Regular = "Go-Regular"
	Bold    = "Go-Bold"
)

var builtin = map[string][]byte{
	Regular: goregular.TTF,
	Bold:    gobold.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:Go-Bold" 或 "Go-Bold"。
func Load(name string) ([]byte, error) {
	key := strings.TrimPrefix(name, "embed:")
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败：可选 %s", key, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 列出内置字体名。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for k := range builtin {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
