// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about glitch runs, history snapshots, and batch jobs.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the engine packages
// never import a logging or metrics backend directly.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetHistoryHooks(&myHistoryHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnRunStart(ctx, count)
//	// ... apply effects ...
//	observability.Pipeline().OnRunComplete(ctx, applied, rejected, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the glitch pipeline.
type PipelineHooks interface {
	// OnRunStart is called before a random run draws its first effect.
	OnRunStart(ctx context.Context, requested int)

	// OnEffectApplied is called after each effect transform returns.
	OnEffectApplied(ctx context.Context, effect string, duration time.Duration)

	// OnRunComplete is called when a random run ends, successfully or not.
	OnRunComplete(ctx context.Context, applied, rejected int, duration time.Duration, err error)
}

// =============================================================================
// History Hooks
// =============================================================================

// HistoryHooks receives events from the undo history.
type HistoryHooks interface {
	// OnPush records a snapshot being persisted.
	OnPush(ctx context.Context, id string, depth int)

	// OnUndo records the top snapshot being discarded.
	OnUndo(ctx context.Context, id string, depth int)

	// OnEvict records a snapshot dropped by the retention limit.
	OnEvict(ctx context.Context, id string)
}

// =============================================================================
// Batch Hooks
// =============================================================================

// BatchHooks receives events from variation and folder batches.
type BatchHooks interface {
	// OnItemComplete records one batch item; index is zero-based.
	OnItemComplete(ctx context.Context, kind string, index, total int, err error)

	// OnBatchComplete records the end of a batch.
	OnBatchComplete(ctx context.Context, kind string, succeeded, failed int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRunStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnEffectApplied(context.Context, string, time.Duration)        {}
func (NoopPipelineHooks) OnRunComplete(context.Context, int, int, time.Duration, error) {}

// NoopHistoryHooks is a no-op implementation of HistoryHooks.
type NoopHistoryHooks struct{}

func (NoopHistoryHooks) OnPush(context.Context, string, int) {}
func (NoopHistoryHooks) OnUndo(context.Context, string, int) {}
func (NoopHistoryHooks) OnEvict(context.Context, string)     {}

// NoopBatchHooks is a no-op implementation of BatchHooks.
type NoopBatchHooks struct{}

func (NoopBatchHooks) OnItemComplete(context.Context, string, int, int, error)          {}
func (NoopBatchHooks) OnBatchComplete(context.Context, string, int, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	historyHooks  HistoryHooks  = NoopHistoryHooks{}
	batchHooks    BatchHooks    = NoopBatchHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetHistoryHooks registers custom history hooks.
func SetHistoryHooks(h HistoryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		historyHooks = h
	}
}

// SetBatchHooks registers custom batch hooks.
func SetBatchHooks(h BatchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		batchHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// History returns the registered history hooks.
func History() HistoryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return historyHooks
}

// Batch returns the registered batch hooks.
func Batch() BatchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return batchHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	historyHooks = NoopHistoryHooks{}
	batchHooks = NoopBatchHooks{}
}
