// Package renderer 定义渲染后端接口，并按名称创建 renderer/canvas 或 renderer/fpdf 的实现。
package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/apexfocus/letterpress/layout"
	canvasrenderer "github.com/apexfocus/letterpress/renderer/canvas"
	fpdfrenderer "github.com/apexfocus/letterpress/renderer/fpdf"
)

// Renderer 将布局结果输出为最终文件，Render 返回 PDF 字节。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时负责排版测量与输出，保证折行所用的字体度量与最终绘制一致。
type Backend interface {
	Renderer
	layout.Typesetter
}

// ErrUnknownBackend 表示没有对应名称的后端。
var ErrUnknownBackend = errors.New("未知的渲染后端")

const (
	Canvas = "canvas"
	FPDF   = "fpdf"
)

var (
	_ Backend = (*canvasrenderer.Renderer)(nil)
	_ Backend = (*fpdfrenderer.Renderer)(nil)
)

// New 按名称创建后端，空名称使用 canvas。
func New(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Canvas:
		return canvasrenderer.NewRenderer(), nil
	case FPDF:
		return fpdfrenderer.NewRenderer(), nil
	}
	return nil, fmt.Errorf("%w: %q（可选 %s, %s）", ErrUnknownBackend, name, Canvas, FPDF)
}

// Names 列出可用后端。
func Names() []string { return []string{Canvas, FPDF} }
