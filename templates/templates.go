// Package templates 内置各文档类型的排版模板，并缓存编译结果。
package templates

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/apexfocus/letterpress/dsl"
	"github.com/apexfocus/letterpress/layout"
)

//go:embed *.letter
var sources embed.FS

// ErrUnknownKind 表示没有对应的内置模板。
var ErrUnknownKind = errors.New("未知的文档类型")

type entry struct {
	once sync.Once
	file string
	tpl  *layout.Template
	err  error
}

var registry = func() map[string]*entry {
	files, err := fs.Glob(sources, "*.letter")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*entry, len(files))
	for _, f := range files {
		out[strings.TrimSuffix(f, path.Ext(f))] = &entry{file: f}
	}
	return out
}()

// Kinds 返回所有内置文档类型，按名称排序。
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Get 返回编译好的内置模板。同一类型只编译一次，返回值在调用方之间共享，不得修改。
func Get(kind string) (*layout.Template, error) {
	e, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q（可选 %s）", ErrUnknownKind, kind, strings.Join(Kinds(), ", "))
	}
	e.once.Do(func() {
		f, err := sources.Open(e.file)
		if err != nil {
			e.err = err
			return
		}
		defer f.Close()
		e.tpl, e.err = Load(e.file, f)
		if e.err == nil && e.tpl.Kind != kind {
			e.err = fmt.Errorf("模板 %s 声明的类型为 %s", e.file, e.tpl.Kind)
		}
	})
	return e.tpl, e.err
}

// MustGet 与 Get 相同，但在内置模板损坏时 panic。
func MustGet(kind string) *layout.Template {
	tpl, err := Get(kind)
	if err != nil {
		panic(err)
	}
	return tpl
}

// Source 返回内置模板的源码。
func Source(kind string) ([]byte, error) {
	e, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return sources.ReadFile(e.file)
}

// Load 解析并编译外部模板，name 用于错误定位。
func Load(name string, r io.Reader) (*layout.Template, error) {
	doc, err := dsl.ParseNamed(name, r)
	if err != nil {
		return nil, fmt.Errorf("解析模板 %s 失败: %w", name, err)
	}
	tpl, err := layout.Compile(doc)
	if err != nil {
		return nil, fmt.Errorf("编译模板 %s 失败: %w", name, err)
	}
	return tpl, nil
}
