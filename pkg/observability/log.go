package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level; failures are
// logged at warn level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l}
}

func (h *LogHooks) OnQuantizeStart(_ context.Context, pixels, colors int) {
	h.Logger.Debug("quantize start", "pixels", pixels, "colors", colors)
}

func (h *LogHooks) OnQuantizeComplete(_ context.Context, used int, d time.Duration, err error) {
	h.done("quantize", err, "used", used, "duration", d)
}

func (h *LogHooks) OnMapComplete(_ context.Context, colors, threads int, d time.Duration, err error) {
	h.done("map threads", err, "colors", colors, "threads", threads, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("render", err, "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) done(stage string, err error, kv ...any) {
	if err != nil {
		h.Logger.Warn(stage+" failed", append(kv, "error", err)...)
		return
	}
	h.Logger.Debug(stage+" done", kv...)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ ServerHooks   = (*LogHooks)(nil)
)
