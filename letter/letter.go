// Package letter 串联模板、布局与渲染，根据员工记录生成录用确认函与聘用协议 PDF。
package letter

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/apexfocus/letterpress/assets"
	"github.com/apexfocus/letterpress/config"
	"github.com/apexfocus/letterpress/layout"
	"github.com/apexfocus/letterpress/logging"
	"github.com/apexfocus/letterpress/record"
	"github.com/apexfocus/letterpress/renderer"
	"github.com/apexfocus/letterpress/templates"
)

// Document 是一次生成的结果。
type Document struct {
	Kind     string
	FileName string
	Bytes    []byte
	Pages    int
	// Warnings 记录被跳过的可选步骤，例如 logo 加载失败。
	Warnings []string
	// Layout 保留布局结果，供调试输出使用。
	Layout *layout.Result
}

// Generator 持有不可变的配置与后端，可被多个 goroutine 同时使用。
type Generator struct {
	cfg     config.Config
	backend renderer.Backend
	assets  layout.AssetLoader
	accent  layout.Color
	log     *slog.Logger
}

// Option 调整 Generator。
type Option func(*Generator)

// WithBackend 指定渲染后端，覆盖配置中的 backend。
func WithBackend(b renderer.Backend) Option {
	return func(g *Generator) { g.backend = b }
}

// WithAssets 指定图片加载器，覆盖配置中的 asset_dir。
func WithAssets(a layout.AssetLoader) Option {
	return func(g *Generator) { g.assets = a }
}

// WithLogger 指定 logger，默认使用 logging.Logger()。
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// New 校验配置并创建 Generator。cfg 为 nil 时使用默认配置。
func New(cfg *config.Config, opts ...Option) (*Generator, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	accent, err := cfg.AccentColor()
	if err != nil {
		return nil, err
	}
	g := &Generator{cfg: *cfg, accent: accent}
	for _, opt := range opts {
		opt(g)
	}
	if g.backend == nil {
		if g.backend, err = renderer.New(cfg.Backend); err != nil {
			return nil, err
		}
	}
	if g.assets == nil {
		g.assets = assets.NewLoader(cfg.AssetDir, nil)
	}
	g.log = logging.Or(g.log)
	return g, nil
}

// Generate 使用内置模板生成文书。
func (g *Generator) Generate(kind string, rec record.Record) (*Document, error) {
	tpl, err := templates.Get(kind)
	if err != nil {
		return nil, err
	}
	return g.GenerateTemplate(tpl, rec)
}

// GenerateTemplate 使用调用方提供的模板生成文书。
func (g *Generator) GenerateTemplate(tpl *layout.Template, rec record.Record) (*Document, error) {
	if tpl == nil {
		return nil, fmt.Errorf("模板为空")
	}
	rec.Normalize()
	data := g.data(rec)

	res, err := layout.Build(tpl, data, layout.BuildOptions{
		Typesetter: g.backend,
		Assets:     g.assets,
		Chrome:     layout.ChromeStyle{Accent: g.accent, Caption: g.cfg.Caption},
		Logger:     g.log,
	})
	if err != nil {
		return nil, fmt.Errorf("布局 %s 失败: %w", tpl.Kind, err)
	}
	out, err := g.backend.Render(res)
	if err != nil {
		return nil, fmt.Errorf("渲染 %s 失败: %w", tpl.Kind, err)
	}
	g.log.Info("document generated", "kind", tpl.Kind, "file", res.FileName, "pages", len(res.Pages), "bytes", len(out))
	return &Document{
		Kind:     tpl.Kind,
		FileName: res.FileName,
		Bytes:    out,
		Pages:    len(res.Pages),
		Warnings: res.Warnings,
		Layout:   res,
	}, nil
}

// GenerateAll 依次生成每条记录。单条失败不会中断批次，错误合并后返回。
func (g *Generator) GenerateAll(kind string, recs []record.Record) ([]*Document, error) {
	tpl, err := templates.Get(kind)
	if err != nil {
		return nil, err
	}
	var (
		docs []*Document
		errs []error
	)
	for i, rec := range recs {
		doc, err := g.GenerateTemplate(tpl, rec)
		if err != nil {
			errs = append(errs, fmt.Errorf("第 %d 条记录（%s）: %w", i+1, rec.EmployeeName, err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, errors.Join(errs...)
}

// Save 将文书写入 dir，返回完整路径。
func Save(doc *Document, dir string) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("文书为空")
	}
	if doc.FileName == "" || filepath.Base(doc.FileName) != doc.FileName {
		return "", fmt.Errorf("非法的文件名 %q", doc.FileName)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}
	path := filepath.Join(dir, doc.FileName)
	if err := os.WriteFile(path, doc.Bytes, 0o644); err != nil {
		return "", fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return path, nil
}

// data 合并记录字段与配置中的公司信息。记录未提供 logo 时回退到配置。
func (g *Generator) data(rec record.Record) map[string]any {
	data := rec.Fields()
	data["company"] = g.cfg.Company
	data["hrName"] = g.cfg.HRName
	data["hrTitle"] = g.cfg.HRTitle
	if rec.LogoURL == "" {
		data["logoUrl"] = g.cfg.Logo
	}
	return data
}
