package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Entry 是 BufferedLogHandler 捕获的一条日志。
type Entry struct {
	Level   slog.Level
	Message string
	// Attrs 形如 key=value，分组前缀以点号连接。
	Attrs []string
}

// Attr 返回名为 key 的属性值。
func (e Entry) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if k, v, ok := strings.Cut(a, "="); ok && k == key {
			return v, true
		}
	}
	return "", false
}

// BufferedLogHandler 把日志记录保存在内存中，测试里用来断言排版过程输出了哪些诊断。
//
//	h := logging.NewBufferedLogHandler(nil)
//	opts := layout.BuildOptions{Logger: slog.New(h)}
//	// ...
//	h.Contains("logo")
type BufferedLogHandler struct {
	level  slog.Leveler
	store  *entryStore
	attrs  []string // 已带分组前缀
	groups []string
}

type entryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewBufferedLogHandler 创建空的处理器；opts 为 nil 时捕获所有级别。
func NewBufferedLogHandler(opts *slog.HandlerOptions) *BufferedLogHandler {
	h := &BufferedLogHandler{store: &entryStore{}}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

// Enabled implements slog.Handler.
func (h *BufferedLogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.level == nil || level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *BufferedLogHandler) Handle(_ context.Context, r slog.Record) error {
	e := Entry{Level: r.Level, Message: r.Message}
	e.Attrs = append(e.Attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		e.Attrs = append(e.Attrs, h.prefixed(a))
		return true
	})
	h.store.mu.Lock()
	h.store.entries = append(h.store.entries, e)
	h.store.mu.Unlock()
	return nil
}

func (h *BufferedLogHandler) prefixed(a slog.Attr) string {
	if len(h.groups) == 0 {
		return a.String()
	}
	return strings.Join(h.groups, ".") + "." + a.String()
}

// WithAttrs implements slog.Handler. 派生处理器与原处理器共享存储。
func (h *BufferedLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]string(nil), h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, h.prefixed(a))
	}
	return &next
}

// WithGroup implements slog.Handler.
func (h *BufferedLogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

// Entries 返回已捕获日志的副本。
func (h *BufferedLogHandler) Entries() []Entry {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return append([]Entry(nil), h.store.entries...)
}

// Contains 报告是否有日志消息或属性包含 s。
func (h *BufferedLogHandler) Contains(s string) bool {
	for _, e := range h.Entries() {
		if strings.Contains(e.Message, s) {
			return true
		}
		for _, a := range e.Attrs {
			if strings.Contains(a, s) {
				return true
			}
		}
	}
	return false
}

// Reset 清空已捕获的日志。
func (h *BufferedLogHandler) Reset() {
	h.store.mu.Lock()
	h.store.entries = nil
	h.store.mu.Unlock()
}

// String 以每行一条的形式返回全部日志，便于失败时打印。
func (h *BufferedLogHandler) String() string {
	var b strings.Builder
	for _, e := range h.Entries() {
		b.WriteString(e.Level.String())
		b.WriteByte(' ')
		b.WriteString(e.Message)
		for _, a := range e.Attrs {
			b.WriteByte(' ')
			b.WriteString(a)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
