// Package logging 为 letterpress 提供包级 *slog.Logger。
package logging

import (
	"io"
	"log/slog"
	"sync/atomic"
)

// 默认丢弃全部输出，直到调用方通过 SetLogger 安装自己的 logger。
var logger atomic.Pointer[slog.Logger]

// SetLogger 安装包级 logger，传 nil 恢复为丢弃输出。可并发调用。
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		sl = slog.New(slog.DiscardHandler)
	}
	logger.Store(sl)
}

// Logger 返回包级 logger，从不返回 nil。
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	l := slog.New(slog.DiscardHandler)
	logger.CompareAndSwap(nil, l)
	return logger.Load()
}

// NewText 创建命令行使用的文本 logger；verbose 打开 debug 级别。
func NewText(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Or 在 l 为 nil 时回退到包级 logger。
func Or(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return Logger()
}
