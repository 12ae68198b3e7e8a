package layout

import "image"

// 该文件定义布局结果，供布局计算、渲染后端与调试 JSON 共用。所有坐标与长度单位均为毫米，
// 原点在页面左上角，字号单位为 pt。

// Result 保存一次排版得到的页面与文档信息。
type Result struct {
	Kind     string       `json:"kind"`
	FileName string       `json:"fileName"`
	Pages    []Page       `json:"pages"`
	Meta     DocumentMeta `json:"meta"`
	// Warnings 记录被跳过的可选步骤（例如无法加载的 logo）。
	Warnings []string `json:"warnings,omitempty"`
}

// Page 是固定尺寸页面上按顺序追加的绘制操作。
type Page struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Ops    []Op    `json:"ops"`
}

// Layer 区分装饰层与正文层。
type Layer string

const (
	LayerChrome  Layer = "chrome"
	LayerContent Layer = "content"
)

// Op 是一条绘制操作，仅有一个非空字段。
type Op struct {
	Layer   Layer     `json:"layer"`
	Text    *TextBox  `json:"text,omitempty"`
	Line    *Line     `json:"line,omitempty"`
	Rect    *Rect     `json:"rect,omitempty"`
	Polygon *Polygon  `json:"polygon,omitempty"`
	Image   *ImageBox `json:"image,omitempty"`
}

// Role 标注文本在文档中的作用，渲染时不使用，方便调试与测试。
type Role string

const (
	RoleHeading      Role = "heading"
	RoleBody         Role = "body"
	RoleSectionTitle Role = "section-title"
	RoleParagraph    Role = "paragraph"
	RoleBulletGlyph  Role = "bullet-glyph"
	RoleBullet       Role = "bullet"
	RoleContinuation Role = "bullet-continuation"
	RoleCaption      Role = "caption"
)

// Font 描述文本使用的字重与字号（pt）。
type Font struct {
	Bold bool    `json:"bold,omitempty"`
	Size float64 `json:"size"`
}

// TextBox 表示一行已经定位好的文本。X 已按对齐方式换算为左端，Y 为基线，
// Width 为排版后端测得的宽度。
type TextBox struct {
	Content string  `json:"content"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	// Height 是该行占用的纵向步进。
	Height float64 `json:"height"`
	Font   Font    `json:"font"`
	Color  Color   `json:"color"`
	Align  string  `json:"align,omitempty"` // left（默认）/center/right
	Role   Role    `json:"role,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // <=0 时由渲染器给默认值
}

// Rect 表示一个填充矩形。
type Rect struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Fill    Color   `json:"fill"`
	Opacity float64 `json:"opacity"`
}

// Point 是页面坐标中的一个点。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon 表示一个闭合的填充多边形。
type Polygon struct {
	Points  []Point `json:"points"`
	Fill    Color   `json:"fill"`
	Opacity float64 `json:"opacity"`
}

// ImageBox 描述已经解码的图片及其位置。
type ImageBox struct {
	Source string      `json:"source"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Image  image.Image `json:"-"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// Alpha 把不透明度规范到 (0,1]，零值视为完全不透明。
func Alpha(opacity float64) float64 {
	if opacity <= 0 || opacity > 1 {
		return 1
	}
	return opacity
}
