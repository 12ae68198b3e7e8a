package layout

import (
	"image"
	"log/slog"
)

// BuildOptions 配置布局阶段所需的依赖，例如排版后端与图片加载器。
type BuildOptions struct {
	Typesetter Typesetter
	// Assets 为 nil 时 logo 步骤直接跳过。
	Assets AssetLoader
	Chrome ChromeStyle
	// Logger 为 nil 时使用 logging.Logger()。
	Logger *slog.Logger
}

// ChromeStyle 是每页装饰层的参数。
type ChromeStyle struct {
	Accent  Color
	Caption string
}

// DefaultAccent 是装饰层与标题使用的主色 #4F46E5。
var DefaultAccent = Color{R: 79, G: 70, B: 229}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。width 单位为 mm。
type Typesetter interface {
	LayoutLines(content string, width float64, font Font) ([]TextLine, error)
}

// TextLine 是排版后的单行文本及其测量宽度（mm）。
type TextLine struct {
	Content string  `json:"content"`
	Width   float64 `json:"width"`
}

// AssetLoader 解析模板中的图片引用。
type AssetLoader interface {
	Load(src string) (image.Image, error)
}
