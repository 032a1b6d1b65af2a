package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// logger. The CLI registers it with --verbose.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log through l under the "hooks" prefix.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) OnPassStart(_ context.Context, edges int) {
	h.logger.Debug("pass start", "edges", edges)
}

func (h *LogHooks) OnGroupRouted(_ context.Context, kind string, targets int, reachable bool, d time.Duration) {
	h.logger.Debug("group routed", "kind", kind, "targets", targets, "reachable", reachable, "duration", d)
}

func (h *LogHooks) OnPassComplete(_ context.Context, groups, unreachable int, d time.Duration) {
	h.logger.Debug("pass complete", "groups", groups, "unreachable", unreachable, "duration", d)
}

func (h *LogHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load start", "source", source)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source string, nodes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "source", source, "err", err)
		return
	}
	h.logger.Debug("load complete", "source", source, "nodes", nodes, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render complete", "formats", formats, "duration", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.logger.Debug("request failed", "method", method, "path", path, "err", err)
}
