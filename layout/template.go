package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apexfocus/letterpress/dsl"
)

// Template 是编译后的文档模板：与具体文档类型无关的块序列，由 Build 逐块排版。
type Template struct {
	Kind    string    `json:"kind"`
	Version string    `json:"version"`
	Meta    MetaBlock `json:"meta"`
	Page    Geometry  `json:"page"`
	Blocks  []Block   `json:"blocks"`
}

// MetaBlock 保存尚未插值的元信息。
type MetaBlock struct {
	Title    string   `json:"title"`
	Subject  string   `json:"subject"`
	Author   string   `json:"author"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
	// File 是输出文件名前缀，如 job-confirmation；Recipient 插值后拼接在前缀之后。
	File      string `json:"file"`
	Recipient string `json:"recipient"`
}

// Geometry 描述页面尺寸与分页常量（mm）。
type Geometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin float64 `json:"margin"`
	// Start 是第一页正文起点，Resume 是分页后的起点。
	Start  float64 `json:"start"`
	Resume float64 `json:"resume"`
	// Bottom 是底部安全区高度，游标越过 Height-Bottom 前必须分页。
	Bottom float64 `json:"bottom"`
}

// ContentWidth 返回左右边距之间的宽度。
func (g Geometry) ContentWidth() float64 { return g.Width - 2*g.Margin }

// Limit 返回正文允许到达的最低位置。
func (g Geometry) Limit() float64 { return g.Height - g.Bottom }

// A4 是默认页面。
var A4 = Geometry{Width: 210, Height: 297, Margin: 25, Start: 25, Resume: 20, Bottom: 40}

var pageSizes = map[string][2]float64{
	"a4":     {210, 297},
	"a5":     {148, 210},
	"letter": {215.9, 279.4},
}

// BlockKind 标识块类型。
type BlockKind string

const (
	BlockLogo      BlockKind = "logo"
	BlockText      BlockKind = "text"
	BlockRule      BlockKind = "rule"
	BlockSpace     BlockKind = "space"
	BlockReserve   BlockKind = "reserve"
	BlockBreak     BlockKind = "break"
	BlockSection   BlockKind = "section"
	BlockSignature BlockKind = "signature"
)

// SectionMode 决定章节内容按段落还是列表排版。
type SectionMode string

const (
	ModeParagraph SectionMode = "paragraph"
	ModeBullets   SectionMode = "bullets"
)

// Block 是模板中的一个排版单元。各字段按 Kind 取用，未用字段保持零值。
type Block struct {
	Kind  BlockKind `json:"kind"`
	Lines []string  `json:"lines,omitempty"`

	// text
	Font    Font    `json:"font"`
	Align   string  `json:"align,omitempty"`
	Color   string  `json:"color,omitempty"`
	Leading float64 `json:"leading,omitempty"`

	// logo
	Src     string  `json:"src,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Missing float64 `json:"missing,omitempty"`

	// section
	Title  string      `json:"title,omitempty"`
	Mode   SectionMode `json:"mode,omitempty"`
	Marker string      `json:"marker,omitempty"`

	// 通用间距：Before 在块前推进，After 在块后推进；reserve/signature 的 Amount 是所需剩余高度。
	Before float64 `json:"before,omitempty"`
	After  float64 `json:"after,omitempty"`
	Amount float64 `json:"amount,omitempty"`

	Children []Block `json:"children,omitempty"`
	Pos      string  `json:"-"`
}

// 排版常量（mm / pt）。
const (
	LineAdvance   = 5.0
	TitleAdvance  = 8.0
	BlankAdvance  = 3.0
	ItemGap       = 2.0
	SectionGap    = 5.0
	BulletIndent  = 5.0
	BulletNarrow  = 10.0
	BulletGlyph   = "•"
	DefaultMarker = "-"
	BodySize      = 10.0
	TitleSize     = 12.0
)

// Compile 将解析后的模板文档转换为 Template。
func Compile(doc *dsl.Document) (*Template, error) {
	if doc == nil || doc.Body == nil {
		return nil, fmt.Errorf("模板内容为空")
	}
	tpl := &Template{
		Kind:    doc.Kind,
		Version: doc.Version,
		Page:    A4,
		Meta:    MetaBlock{Creator: "letterpress"},
	}
	for _, st := range doc.Body.Statements {
		cmd := st.Command
		if cmd == nil {
			if st.Line != nil {
				return nil, fmt.Errorf("模板顶层不允许直接书写文本 %q", string(st.Line.Text))
			}
			continue
		}
		switch cmd.Name {
		case "meta":
			tpl.Meta = compileMeta(cmd, tpl.Meta)
		case "page":
			geo, err := compilePage(cmd)
			if err != nil {
				return nil, err
			}
			tpl.Page = geo
		default:
			b, err := compileBlock(cmd)
			if err != nil {
				return nil, err
			}
			tpl.Blocks = append(tpl.Blocks, b)
		}
	}
	if tpl.Meta.File == "" {
		tpl.Meta.File = tpl.Kind
	}
	return tpl, nil
}

func compileMeta(cmd *dsl.Command, meta MetaBlock) MetaBlock {
	if cmd.Block == nil {
		return meta
	}
	for _, st := range cmd.Block.Statements {
		if st.Field == nil {
			continue
		}
		val := st.Field.Value.Text()
		switch strings.ToLower(st.Field.Key) {
		case "title":
			meta.Title = val
		case "subject":
			meta.Subject = val
		case "author":
			meta.Author = val
		case "creator":
			meta.Creator = val
		case "file":
			meta.File = val
		case "recipient":
			meta.Recipient = val
		case "keywords":
			meta.Keywords = nil
			for _, k := range strings.Split(val, ",") {
				if k = strings.TrimSpace(k); k != "" {
					meta.Keywords = append(meta.Keywords, k)
				}
			}
		}
	}
	return meta
}

func compilePage(cmd *dsl.Command) (Geometry, error) {
	geo := A4
	pos, attrs := parseArgs(cmd.Args)
	if len(pos) > 0 {
		size, ok := pageSizes[strings.ToLower(pos[0])]
		if !ok {
			return geo, fmt.Errorf("%s: 不支持的页面尺寸 %s", cmd.Pos, pos[0])
		}
		geo.Width, geo.Height = size[0], size[1]
	}
	fields := map[string]*float64{
		"margin": &geo.Margin,
		"start":  &geo.Start,
		"resume": &geo.Resume,
		"bottom": &geo.Bottom,
	}
	for key, v := range attrs {
		dst, ok := fields[key]
		if !ok {
			return geo, fmt.Errorf("%s: page 不支持参数 %s", cmd.Pos, key)
		}
		mm, err := lengthMM(v)
		if err != nil {
			return geo, fmt.Errorf("%s: page %s: %w", cmd.Pos, key, err)
		}
		*dst = mm
	}
	return geo, nil
}

func compileBlock(cmd *dsl.Command) (Block, error) {
	pos, attrs := parseArgs(cmd.Args)
	b := Block{Kind: BlockKind(cmd.Name), Pos: cmd.Pos.String()}
	var err error
	set := func(key string, dst *float64) {
		if err != nil {
			return
		}
		if v, ok := attrs[key]; ok {
			var mm float64
			if mm, err = lengthMM(v); err != nil {
				err = fmt.Errorf("%s: %s %s: %w", cmd.Pos, cmd.Name, key, err)
				return
			}
			*dst = mm
		}
	}
	set("before", &b.Before)
	set("after", &b.After)
	if err != nil {
		return b, err
	}

	switch b.Kind {
	case BlockLogo:
		b.Src = attrs["src"]
		set("width", &b.Width)
		set("height", &b.Height)
		set("missing", &b.Missing)
	case BlockText:
		b.Font = Font{Bold: attrs["bold"] == "true", Size: BodySize}
		if v, ok := attrs["size"]; ok {
			l, ok := ParseLength(v)
			if !ok {
				return b, fmt.Errorf("%s: text size %q 无法解析", cmd.Pos, v)
			}
			b.Font.Size = l.ToPT()
		}
		b.Align = strings.ToLower(attrs["align"])
		b.Color = attrs["color"]
		b.Leading = LineAdvance
		set("leading", &b.Leading)
		b.Lines = literals(cmd.Block)
	case BlockRule:
		b.Color = attrs["color"]
		b.Width = 0.5
		set("width", &b.Width)
	case BlockSpace, BlockReserve:
		if len(pos) == 0 {
			return b, fmt.Errorf("%s: %s 需要长度参数", cmd.Pos, cmd.Name)
		}
		if b.Amount, err = lengthMM(pos[0]); err != nil {
			return b, fmt.Errorf("%s: %s: %w", cmd.Pos, cmd.Name, err)
		}
	case BlockBreak:
	case BlockSection:
		if len(pos) > 0 {
			b.Title = pos[0]
		}
		b.Mode = ModeParagraph
		if attrs["bullets"] == "true" {
			b.Mode = ModeBullets
		}
		b.Marker = DefaultMarker
		if m, ok := attrs["marker"]; ok && m != "" {
			b.Marker = m
		}
		b.Lines = literals(cmd.Block)
	case BlockSignature:
		set("reserve", &b.Amount)
		if cmd.Block != nil {
			for _, st := range cmd.Block.Statements {
				if st.Command == nil {
					continue
				}
				child, cerr := compileBlock(st.Command)
				if cerr != nil {
					return b, cerr
				}
				if child.Kind == BlockSignature {
					return b, fmt.Errorf("%s: signature 不能嵌套", st.Command.Pos)
				}
				b.Children = append(b.Children, child)
			}
		}
	default:
		return b, fmt.Errorf("%s: 未知指令 %s", cmd.Pos, cmd.Name)
	}
	return b, err
}

// 无值标志参数。
var flagArgs = map[string]bool{"bold": true, "bullets": true, "paragraph": true}

// parseArgs 把参数拆为位置参数与 key value 对；位置参数只能出现在最前面。
func parseArgs(args []*dsl.Arg) ([]string, map[string]string) {
	attrs := map[string]string{}
	var pos []string
	i := 0
	for ; i < len(args); i++ {
		a := args[i]
		if a.Quoted() || a.Kind == dsl.KindLength || (a.Kind == dsl.KindWord && isPageName(a.Value)) {
			pos = append(pos, a.Value)
			continue
		}
		break
	}
	for i < len(args) {
		key := args[i].Value
		if flagArgs[key] {
			attrs[key] = "true"
			i++
			continue
		}
		if i+1 < len(args) {
			attrs[key] = args[i+1].Value
		} else {
			attrs[key] = ""
		}
		i += 2
	}
	return pos, attrs
}

func isPageName(s string) bool {
	_, ok := pageSizes[strings.ToLower(s)]
	return ok
}

func literals(block *dsl.Block) []string {
	if block == nil {
		return nil
	}
	var out []string
	for _, st := range block.Statements {
		if st.Line != nil {
			out = append(out, string(st.Line.Text))
		}
	}
	return out
}

func lengthMM(v string) (float64, error) {
	l, ok := ParseLength(v)
	if !ok {
		return 0, fmt.Errorf("长度 %q 无法解析", v)
	}
	return l.ToMM(), nil
}

// parseColor 解析 #RGB / #RRGGBB。
func parseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(value, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return Color{R: int(n >> 16 & 0xff), G: int(n >> 8 & 0xff), B: int(n & 0xff)}, nil
}

// ParseColor 是 parseColor 的导出版本，供配置层解析主色。
func ParseColor(value string) (Color, error) { return parseColor(value) }
