// Package dsl 解析 .letter 模板文件。语法由 participle 描述：
//
//	letter confirmation v1 {
//	  meta { title: "Job Confirmation Letter" }
//	  text bold size 18pt { "JOB CONFIRMATION LETTER" }
//	  section "Benefits" bullets {
//	    "- Health insurance"
//	  }
//	}
//
// "section 'Benefits' bullets" 这一类命令行由命令名与若干参数组成，附带的块必须在同一行打开。
package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// 词法单元名称，同时作为 Arg.Kind 的取值。
const (
	KindString = "String"
	KindLength = "Length"
	KindColour = "Colour"
	KindWord   = "Word"
)

var (
	letterLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Space", Pattern: `[ \t\r]+`},
		{Name: "EOL", Pattern: `\n+`},
		{Name: "Comment", Pattern: `//[^\n]*`},
		{Name: KindColour, Pattern: `#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: KindLength, Pattern: `\d+(?:\.\d+)?(?:pt|mm|cm|in)?`},
		{Name: KindString, Pattern: `"(?:\\.|[^"\\])*"`},
		{Name: KindWord, Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[:;,]`},
		{Name: "Open", Pattern: `{`},
		{Name: "Close", Pattern: `}`},
	})

	kindOf = map[lexer.TokenType]string{}
	// argStop 中的词法单元结束命令参数列表。
	argStop = map[lexer.TokenType]bool{}

	letterParser = participle.MustBuild[Document](
		participle.Lexer(letterLexer),
		participle.Elide("Space", "Comment"),
	)
)

func init() {
	symbols := letterLexer.Symbols()
	for name, tt := range symbols {
		kindOf[tt] = name
	}
	for _, name := range []string{"EOL", "Open", "Close"} {
		tt, ok := symbols[name]
		if !ok {
			panic("dsl: 缺少词法单元 " + name)
		}
		argStop[tt] = true
	}
}

// Document 是一个模板文件：letter <kind> <version> { ... }。
type Document struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Kind    string         `parser:"EOL* 'letter' @Word"`
	Version string         `parser:"@Word"`
	Body    *Block         `parser:"@@ EOL*"`
}

// Block 是花括号内以换行或分号分隔的语句序列。
type Block struct {
	Statements []*Statement `parser:"'{' EOL* ( @@ ( ';' | EOL )* )* '}'"`
}

// Statement 是字段、命令或一行文本三者之一。
type Statement struct {
	Field   *Field   `parser:"  @@"`
	Command *Command `parser:"| @@"`
	Line    *Line    `parser:"| @@"`
}

// Field 只出现在 meta 块中：key: value。
type Field struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Word"`
	Value *Value         `parser:"':' EOL* @@"`
}

// Command 是一条排版指令，例如 text、section、rule、signature。
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Word"`
	Args  []*Arg         `parser:"@@*"`
	Block *Block         `parser:"@@?"`
}

// Line 是块内的一行字面文本。
type Line struct {
	Text Quoted `parser:"@String"`
}

// Value 是字段的取值。
type Value struct {
	String *Quoted `parser:"  @String"`
	Length *string `parser:"| @Length"`
	Colour *string `parser:"| @Colour"`
	Word   *string `parser:"| @Word"`
}

// Text returns the value as plain text.
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Length != nil:
		return *v.Length
	case v.Colour != nil:
		return *v.Colour
	case v.Word != nil:
		return *v.Word
	}
	return ""
}

// Arg 是命令的一个参数，字符串参数已去掉引号。
type Arg struct {
	Kind  string         `json:"kind"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse 实现 participle.Parseable：在换行、花括号或分号处结束参数列表。
func (a *Arg) Parse(lex *lexer.PeekingLexer) error {
	tok := lex.Peek()
	if tok.EOF() || argStop[tok.Type] || (kindOf[tok.Type] == "Punct" && tok.Value == ";") {
		return participle.NextMatch
	}
	tok = lex.Next()
	arg := Arg{Kind: kindOf[tok.Type], Value: tok.Value, Raw: tok.Value, Pos: tok.Pos}
	if arg.Kind == "" {
		arg.Kind = fmt.Sprintf("#%d", tok.Type)
	}
	if arg.Kind == KindString {
		s, err := strconv.Unquote(tok.Value)
		if err != nil {
			return fmt.Errorf("%s: 字符串 %s 无法解析: %w", tok.Pos, tok.Value, err)
		}
		arg.Value = s
	}
	*a = arg
	return nil
}

// Quoted reports whether the argument was a string literal.
func (a *Arg) Quoted() bool { return a != nil && a.Kind == KindString }

// Quoted 是捕获时去掉引号的字符串。
type Quoted string

// Capture implements participle.Capture.
func (q *Quoted) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("字符串缺少内容")
	}
	s, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*q = Quoted(s)
	return nil
}

// Parse parses a template from r.
func Parse(r io.Reader) (*Document, error) {
	return letterParser.Parse("", r)
}

// ParseString parses a template held in memory.
func ParseString(input string) (*Document, error) {
	return letterParser.ParseString("", input)
}

// ParseNamed 与 Parse 相同，错误位置带上 filename。
func ParseNamed(filename string, r io.Reader) (*Document, error) {
	return letterParser.Parse(filename, r)
}
