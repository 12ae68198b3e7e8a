// Package assets 解析模板与记录中的图片引用，例如页眉 logo。
package assets

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedSource 表示无法识别的引用形式，例如空引用或非 base64 的 data URL。
var ErrUnsupportedSource = errors.New("不支持的图片来源")

// maxRemoteSize 是远程图片的最大字节数。
const maxRemoteSize = 10 << 20

var defaultClient = &http.Client{Timeout: 15 * time.Second}

// Loader 按以下顺序解析引用：
//
//	builtin:<name>            注入的内置资源
//	data:image/png;base64,... 内联图片
//	http(s)://...             通过 Client 下载
//	其他                      文件路径，相对路径基于 BaseDir
type Loader struct {
	BaseDir string
	// Client 为 nil 时使用带 15 秒超时的默认 client。
	Client  *http.Client
	builtin map[string][]byte
}

// NewLoader 创建加载器，builtin 可为 nil。
func NewLoader(baseDir string, builtin map[string][]byte) *Loader {
	l := &Loader{BaseDir: baseDir, builtin: map[string][]byte{}}
	for name, blob := range builtin {
		if name != "" && len(blob) > 0 {
			l.builtin[name] = blob
		}
	}
	return l
}

// Load 读取并解码图片。
func (l *Loader) Load(src string) (image.Image, error) {
	data, err := l.read(strings.TrimSpace(src))
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}
	return img, nil
}

func (l *Loader) read(src string) ([]byte, error) {
	lower := strings.ToLower(src)
	switch {
	case src == "":
		return nil, fmt.Errorf("%w: 空引用", ErrUnsupportedSource)
	case strings.HasPrefix(lower, "builtin:"), strings.HasPrefix(lower, "built-in:"):
		_, name, _ := strings.Cut(src, ":")
		blob, ok := l.builtin[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置图片资源 builtin:%s", name)
		}
		return blob, nil
	case strings.HasPrefix(lower, "data:"):
		return decodeDataURL(src)
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return l.fetch(src)
	}

	path := strings.TrimPrefix(src, "file://")
	if !filepath.IsAbs(path) {
		if l.BaseDir == "" {
			return nil, fmt.Errorf("未指定资源目录时不允许使用相对路径：%s（请改用 builtin: 或绝对路径）", src)
		}
		path = filepath.Join(l.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
	}
	return data, nil
}

// fetch 下载远程图片，非 2xx 响应视为失败。
func (l *Loader) fetch(url string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = defaultClient
	}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("下载图片 %s 失败: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("下载图片 %s 失败: HTTP %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize+1))
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", url, err)
	}
	if len(data) > maxRemoteSize {
		return nil, fmt.Errorf("图片 %s 超过 %d 字节", url, maxRemoteSize)
	}
	return data, nil
}

// decodeDataURL 只接受 base64 编码的 data URL。
func decodeDataURL(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(src[len("data:"):], ",")
	if !ok {
		return nil, fmt.Errorf("data URL 缺少逗号分隔")
	}
	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return nil, fmt.Errorf("%w: data URL 必须使用 base64 编码", ErrUnsupportedSource)
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("data URL base64 解码失败: %w", err)
	}
	return data, nil
}
