package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glitchgen/pkg/observability"
)

// logHooks forwards engine events to the debug log.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l.WithPrefix("hooks")}
}

func (h *logHooks) OnRunStart(ctx context.Context, requested int) {
	h.logger.Debug("run start", "requested", requested)
}

func (h *logHooks) OnEffectApplied(ctx context.Context, effect string, d time.Duration) {
	h.logger.Debug("effect", "name", effect, "duration", d.Round(time.Microsecond))
}

func (h *logHooks) OnRunComplete(ctx context.Context, applied, rejected int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("run failed", "applied", applied, "rejected", rejected, "error", err)
		return
	}
	h.logger.Debug("run complete", "applied", applied, "rejected", rejected, "duration", d.Round(time.Millisecond))
}

func (h *logHooks) OnPush(ctx context.Context, id string, depth int) {
	h.logger.Debug("snapshot push", "id", id, "depth", depth)
}

func (h *logHooks) OnUndo(ctx context.Context, id string, depth int) {
	h.logger.Debug("snapshot undo", "id", id, "depth", depth)
}

func (h *logHooks) OnEvict(ctx context.Context, id string) {
	h.logger.Debug("snapshot evict", "id", id)
}

func (h *logHooks) OnItemComplete(ctx context.Context, kind string, index, total int, err error) {
	h.logger.Debug("batch item", "kind", kind, "item", index+1, "total", total, "failed", err != nil)
}

func (h *logHooks) OnBatchComplete(ctx context.Context, kind string, succeeded, failed int, d time.Duration) {
	h.logger.Debug("batch complete", "kind", kind, "succeeded", succeeded, "failed", failed, "duration", d.Round(time.Millisecond))
}

var (
	_ observability.PipelineHooks = (*logHooks)(nil)
	_ observability.HistoryHooks  = (*logHooks)(nil)
	_ observability.BatchHooks    = (*logHooks)(nil)
)
