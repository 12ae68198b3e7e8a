// Package config 读取 letterpress 的 JSON 配置：公司信息、签署人、主色与渲染后端。
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apexfocus/letterpress/layout"
	"github.com/apexfocus/letterpress/renderer"
)

// Config holds generator configuration.
type Config struct {
	Company string `json:"company"`
	// Caption 是页脚说明文字，可引用 ${company} 等变量。
	Caption string `json:"caption"`
	Accent  string `json:"accent"`
	HRName  string `json:"hr_name"`
	HRTitle string `json:"hr_title"`
	Backend string `json:"backend"`
	// Logo 在记录未提供 logoUrl 时使用。
	Logo      string `json:"logo"`
	AssetDir  string `json:"asset_dir"`
	OutputDir string `json:"output_dir"`
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		Company:   "Apex Focus Group",
		Caption:   "${company} - Confidential",
		Accent:    "#4F46E5",
		HRName:    "Caleb Oneal",
		HRTitle:   "Head of HR",
		Backend:   renderer.Canvas,
		OutputDir: "output",
	}
}

// LoadFrom 读取指定路径的配置；文件不存在时返回默认值。
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return cfg, nil
}

// SaveTo 将配置写入指定路径。
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Company == "" {
		return fmt.Errorf("company 不能为空")
	}
	if _, err := c.AccentColor(); err != nil {
		return err
	}
	if _, err := renderer.New(c.Backend); err != nil {
		return err
	}
	if c.AssetDir != "" {
		info, err := os.Stat(c.AssetDir)
		if err != nil {
			return fmt.Errorf("资源目录不可用: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("asset_dir %s 不是目录", c.AssetDir)
		}
	}
	return nil
}

// AccentColor 解析主色，空值使用默认主色。
func (c *Config) AccentColor() (layout.Color, error) {
	if c.Accent == "" {
		return layout.DefaultAccent, nil
	}
	col, err := layout.ParseColor(c.Accent)
	if err != nil {
		return layout.Color{}, fmt.Errorf("accent: %w", err)
	}
	return col, nil
}
