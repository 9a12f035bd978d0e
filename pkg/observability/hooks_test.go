package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnRunStart(ctx, 3)
	p.OnEffectApplied(ctx, "Color/Invert", time.Millisecond)
	p.OnRunComplete(ctx, 3, 1, time.Second, nil)

	h := NoopHistoryHooks{}
	h.OnPush(ctx, "id", 2)
	h.OnUndo(ctx, "id", 1)
	h.OnEvict(ctx, "id")

	b := NoopBatchHooks{}
	b.OnItemComplete(ctx, "variations", 0, 10, errors.New("boom"))
	b.OnBatchComplete(ctx, "variations", 9, 1, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := History().(NoopHistoryHooks); !ok {
		t.Error("History() should return NoopHistoryHooks by default")
	}
	if _, ok := Batch().(NoopBatchHooks); !ok {
		t.Error("Batch() should return NoopBatchHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customHistory := &testHistoryHooks{}
	SetHistoryHooks(customHistory)
	if History() != customHistory {
		t.Error("SetHistoryHooks should set custom hooks")
	}

	customBatch := &testBatchHooks{}
	SetBatchHooks(customBatch)
	if Batch() != customBatch {
		t.Error("SetBatchHooks should set custom hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := History().(NoopHistoryHooks); !ok {
		t.Error("Reset() should restore NoopHistoryHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testHistoryHooks{}
	SetHistoryHooks(custom)
	SetHistoryHooks(nil)

	if History() != custom {
		t.Error("SetHistoryHooks(nil) should be ignored")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	h := &testHistoryHooks{}
	SetHistoryHooks(h)
	History().OnPush(context.Background(), "a", 1)
	History().OnPush(context.Background(), "b", 2)

	if h.pushes != 2 {
		t.Errorf("pushes = %d, want 2", h.pushes)
	}
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testBatchHooks struct{ NoopBatchHooks }

type testHistoryHooks struct {
	NoopHistoryHooks
	pushes int
}

func (h *testHistoryHooks) OnPush(context.Context, string, int) { h.pushes++ }
