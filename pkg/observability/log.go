package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug entries to a
// logger. Install it with SetPipelineHooks, SetSessionHooks and SetHTTPHooks.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

// Install registers h for every event category.
func (h *LogHooks) Install() {
	SetPipelineHooks(h)
	SetSessionHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, nodeCount, linkCount int) {
	h.Logger.Debug("layout started", "nodes", nodeCount, "links", linkCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, ticks int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("layout failed", "ticks", ticks, "elapsed", d, "err", err)
		return
	}
	h.Logger.Debug("layout complete", "ticks", ticks, "elapsed", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render started", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("render failed", "formats", formats, "elapsed", d, "err", err)
		return
	}
	h.Logger.Debug("render complete", "formats", formats, "elapsed", d)
}

func (h *LogHooks) OnPin(_ context.Context, session, nodeID string) {
	h.Logger.Debug("node pinned", "session", session, "node", nodeID)
}

func (h *LogHooks) OnUnpin(_ context.Context, session, nodeID string) {
	h.Logger.Debug("node released", "session", session, "node", nodeID)
}

func (h *LogHooks) OnSettled(_ context.Context, session string, ticks int) {
	h.Logger.Debug("simulation settled", "session", session, "ticks", ticks)
}

func (h *LogHooks) OnTickError(_ context.Context, session string, err error) {
	h.Logger.Debug("tick rejected", "session", session, "err", err)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.Logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "route", route, "status", status, "elapsed", d)
}
