package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/apexfocus/letterpress/config"
	"github.com/apexfocus/letterpress/layout"
	"github.com/apexfocus/letterpress/letter"
	"github.com/apexfocus/letterpress/logging"
	"github.com/apexfocus/letterpress/record"
	"github.com/apexfocus/letterpress/templates"
)

func main() {
	kind := flag.String("kind", "confirmation", "文书类型："+strings.Join(templates.Kinds(), ", "))
	recordPath := flag.String("record", "", "员工记录 JSON 文件（单个对象或数组）")
	rosterPath := flag.String("roster", "", "员工名册 xlsx 文件，每行生成一份文书")
	templatePath := flag.String("template", "", "自定义 .letter 模板，覆盖 -kind")
	output := flag.String("out", "", "PDF 输出目录，默认取配置中的 output_dir")
	configPath := flag.String("config", "letterpress.json", "配置文件路径，不存在时使用默认配置")
	backend := flag.String("backend", "", "渲染后端：canvas 或 fpdf，默认取配置")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dump := flag.Bool("dump", false, "打印 -kind 对应的内置模板源码后退出")
	verbose := flag.Bool("v", false, "输出 debug 级别日志")
	flag.Parse()

	logging.SetLogger(logging.NewText(os.Stderr, *verbose))

	if *dump {
		src, err := templates.Source(*kind)
		if err != nil {
			log.Fatalf("读取模板失败: %v", err)
		}
		os.Stdout.Write(src)
		return
	}

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *output != "" {
		cfg.OutputDir = *output
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置无效: %v", err)
	}

	recs, err := loadRecords(*recordPath, *rosterPath)
	if err != nil {
		log.Fatalf("读取员工记录失败: %v", err)
	}
	tpl, err := loadTemplate(*kind, *templatePath)
	if err != nil {
		log.Fatalf("加载模板失败: %v", err)
	}

	gen, err := letter.New(cfg)
	if err != nil {
		log.Fatalf("初始化生成器失败: %v", err)
	}
	if err := run(gen, tpl, recs, cfg.OutputDir, *debug); err != nil {
		log.Fatalf("生成 PDF 失败: %v", err)
	}
}

// run 依次生成并保存每条记录，单条失败不影响其余记录。
func run(gen *letter.Generator, tpl *layout.Template, recs []record.Record, outDir, debugPath string) error {
	var failed int
	for i, rec := range recs {
		doc, err := gen.GenerateTemplate(tpl, rec)
		if err != nil {
			logging.Logger().Error("generate failed", "index", i+1, "employee", rec.EmployeeName, "err", err)
			failed++
			continue
		}
		for _, w := range doc.Warnings {
			fmt.Fprintf(os.Stderr, "警告：%s\n", w)
		}
		if debugPath != "" {
			if err := writeDebug(doc.Layout, debugName(debugPath, i, len(recs))); err != nil {
				return err
			}
		}
		path, err := letter.Save(doc, outDir)
		if err != nil {
			return err
		}
		fmt.Printf("已生成 PDF：%s\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d/%d 条记录生成失败", failed, len(recs))
	}
	return nil
}

func loadTemplate(kind, path string) (*layout.Template, error) {
	if path == "" {
		return templates.Get(kind)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开模板文件 %s: %w", path, err)
	}
	defer file.Close()
	return templates.Load(path, file)
}

// loadRecords 读取 JSON 记录或 xlsx 名册，两者同时给出时合并。
func loadRecords(recordPath, rosterPath string) ([]record.Record, error) {
	if recordPath == "" && rosterPath == "" {
		return nil, fmt.Errorf("需要 -record 或 -roster")
	}
	var recs []record.Record
	if recordPath != "" {
		data, err := os.ReadFile(recordPath)
		if err != nil {
			return nil, fmt.Errorf("读取 %s 失败: %w", recordPath, err)
		}
		parsed, err := decodeRecords(data)
		if err != nil {
			return nil, fmt.Errorf("解析 %s 失败: %w", recordPath, err)
		}
		recs = append(recs, parsed...)
	}
	if rosterPath != "" {
		roster, err := record.LoadRosterFile(rosterPath)
		if err != nil {
			return nil, err
		}
		recs = append(recs, roster...)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("没有可生成的记录")
	}
	return recs, nil
}

func decodeRecords(data []byte) ([]record.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var recs []record.Record
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, err
		}
		return recs, nil
	}
	var rec record.Record
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return nil, err
	}
	return []record.Record{rec}, nil
}

// debugName 在批量生成时为每份文书加序号：layout.json → layout-2.json。
func debugName(path string, index, total int) string {
	if total <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), index+1, ext)
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
