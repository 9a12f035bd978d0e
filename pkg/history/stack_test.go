package history

import (
	"context"
	"image/color"
	"io"
	"os"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/imagebuf"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

type storeFactory struct {
	name string
	new  func(t *testing.T) Store
}

func stores() []storeFactory {
	return []storeFactory{
		{"file", func(t *testing.T) Store {
			s, err := NewFileStore(t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			return s
		}},
		{"memory", func(t *testing.T) Store {
			s, err := NewMemoryStore()
			if err != nil {
				t.Fatal(err)
			}
			return s
		}},
	}
}

func shade(v uint8) *imagebuf.Buffer {
	b := imagebuf.Filled(20, 10, color.NRGBA{R: v, G: 255 - v, B: v / 2, A: 255})
	b.Image().SetNRGBA(int(v)%20, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 128})
	return b
}

func TestPushUndoRoundTrip(t *testing.T) {
	for _, sf := range stores() {
		t.Run(sf.name, func(t *testing.T) {
			ctx := context.Background()
			h := New(sf.new(t), WithLogger(quietLogger()))
			defer h.Close(ctx)

			states := []*imagebuf.Buffer{shade(10), shade(80), shade(160), shade(240)}
			if _, err := h.Reset(ctx, states[0], "open"); err != nil {
				t.Fatal(err)
			}
			for _, s := range states[1:] {
				if _, err := h.Push(ctx, s, "apply"); err != nil {
					t.Fatal(err)
				}
			}
			if h.Depth() != 4 {
				t.Fatalf("Depth() = %d, want 4", h.Depth())
			}

			for i := len(states) - 2; i >= 0; i-- {
				got, err := h.Undo(ctx)
				if err != nil {
					t.Fatalf("Undo() error: %v", err)
				}
				if !got.Equal(states[i]) {
					t.Errorf("undo to state %d: pixels differ", i)
				}
			}
			if h.CanUndo() {
				t.Error("CanUndo() = true at base")
			}
		})
	}
}

func TestPushStoresCopy(t *testing.T) {
	for _, sf := range stores() {
		t.Run(sf.name, func(t *testing.T) {
			ctx := context.Background()
			h := New(sf.new(t), WithLogger(quietLogger()))
			defer h.Close(ctx)

			live := shade(50)
			want := live.Clone()
			h.Reset(ctx, live, "open")
			h.Push(ctx, live, "same")

			// Mutate the live buffer after pushing.
			for i := range live.Image().Pix {
				live.Image().Pix[i] = 0
			}

			got, err := h.Undo(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(want) {
				t.Error("snapshot aliases the live buffer")
			}
		})
	}
}

func TestUndoAtBaseFails(t *testing.T) {
	ctx := context.Background()
	store, _ := NewMemoryStore()
	h := New(store, WithLogger(quietLogger()))
	defer h.Close(ctx)

	if _, err := h.Undo(ctx); !errors.Is(err, errors.ErrCodeEmptyHistory) {
		t.Errorf("Undo() on empty stack error = %v, want EMPTY_HISTORY", err)
	}

	base, _ := h.Reset(ctx, shade(1), "open")
	_, err := h.Undo(ctx)
	if !errors.Is(err, errors.ErrCodeEmptyHistory) {
		t.Fatalf("Undo() at base error = %v, want EMPTY_HISTORY", err)
	}
	if h.Depth() != 1 {
		t.Errorf("Depth() = %d after failed undo, want 1", h.Depth())
	}
	if top, _ := h.Top(); top.ID != base.ID {
		t.Error("failed undo changed the top entry")
	}
	if store.Len() != 1 {
		t.Errorf("store holds %d snapshots, want 1", store.Len())
	}
}

func TestResetDiscardsHistory(t *testing.T) {
	ctx := context.Background()
	store, _ := NewMemoryStore()
	h := New(store, WithLogger(quietLogger()))
	defer h.Close(ctx)

	h.Reset(ctx, shade(1), "first")
	h.Push(ctx, shade(2), "a")
	h.Push(ctx, shade(3), "b")

	e, err := h.Reset(ctx, shade(4), "second")
	if err != nil {
		t.Fatal(err)
	}
	if h.Depth() != 1 || h.CanUndo() {
		t.Errorf("after Reset: Depth() = %d, CanUndo() = %v", h.Depth(), h.CanUndo())
	}
	if store.Len() != 1 {
		t.Errorf("store holds %d snapshots after reset, want 1", store.Len())
	}
	if e.Label != "second" || e.Width != 20 || e.Height != 10 {
		t.Errorf("base entry = %+v", e)
	}
}

func TestMaxEntriesKeepsBase(t *testing.T) {
	ctx := context.Background()
	store, _ := NewMemoryStore()
	h := New(store, WithMaxEntries(3), WithLogger(quietLogger()))
	defer h.Close(ctx)

	base := shade(0)
	baseCopy := base.Clone()
	h.Reset(ctx, base, "open")
	for v := uint8(1); v <= 5; v++ {
		h.Push(ctx, shade(v*10), "apply")
	}
	if h.Depth() != 3 {
		t.Fatalf("Depth() = %d, want 3", h.Depth())
	}
	if store.Len() != 3 {
		t.Errorf("store holds %d snapshots, want 3", store.Len())
	}
	entries := h.Entries()
	if entries[0].Label != "open" {
		t.Errorf("base entry evicted: %+v", entries[0])
	}

	// Undo twice walks back to the base, skipping evicted states.
	got, _ := h.Undo(ctx)
	if !got.Equal(shade(40)) {
		t.Error("first undo should land on the second-newest push")
	}
	got, _ = h.Undo(ctx)
	if !got.Equal(baseCopy) {
		t.Error("second undo should land on the base")
	}
}

func TestWithMaxEntriesBelowTwoIsUnlimited(t *testing.T) {
	ctx := context.Background()
	store, _ := NewMemoryStore()
	h := New(store, WithMaxEntries(1), WithLogger(quietLogger()))
	defer h.Close(ctx)

	h.Reset(ctx, shade(0), "open")
	for i := 0; i < 5; i++ {
		h.Push(ctx, shade(uint8(i)), "apply")
	}
	if h.Depth() != 6 {
		t.Errorf("Depth() = %d, want 6", h.Depth())
	}
}

func TestFileStoreCloseRemovesDir(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	h := New(store, WithLogger(quietLogger()))
	e, _ := h.Reset(ctx, shade(9), "open")

	if _, err := os.Stat(store.Path(e.ID)); err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}
	if err := h.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(store.Dir()); !os.IsNotExist(err) {
		t.Error("session directory should be removed on Close")
	}
}

func TestStoreLoadMissing(t *testing.T) {
	for _, sf := range stores() {
		t.Run(sf.name, func(t *testing.T) {
			s := sf.new(t)
			defer s.Close()
			if _, err := s.Load(context.Background(), "missing"); err == nil {
				t.Error("Load(missing) should fail")
			}
			if err := s.Delete(context.Background(), "missing"); err != nil {
				t.Errorf("Delete(missing) error: %v", err)
			}
		})
	}
}

func TestUndoRestoresFormat(t *testing.T) {
	for _, sf := range stores() {
		t.Run(sf.name, func(t *testing.T) {
			ctx := context.Background()
			h := New(sf.new(t), WithLogger(quietLogger()))
			defer h.Close(ctx)

			base := shade(3)
			base.SetFormat(imagebuf.JPEG)
			if _, err := h.Reset(ctx, base, "open"); err != nil {
				t.Fatal(err)
			}
			if _, err := h.Push(ctx, shade(9), "edit"); err != nil {
				t.Fatal(err)
			}

			got, err := h.Undo(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if got.Format() != imagebuf.JPEG {
				t.Errorf("Format() after undo = %q, want jpeg", got.Format())
			}
		})
	}
}

func TestMemoryStoreSize(t *testing.T) {
	s, _ := NewMemoryStore()
	defer s.Close()

	if err := s.Save(context.Background(), "x", shade(3)); err != nil {
		t.Fatal(err)
	}
	if s.Size() == 0 {
		t.Error("Size() = 0 with one snapshot")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("GLITCHGEN_REDIS_ADDR")
	if addr == "" {
		t.Skip("GLITCHGEN_REDIS_ADDR not set")
	}
	ctx := context.Background()
	store, err := NewRedisStore(ctx, RedisConfig{Addr: addr})
	if err != nil {
		t.Fatal(err)
	}
	h := New(store, WithLogger(quietLogger()))
	defer h.Close(ctx)

	a, b := shade(10), shade(200)
	h.Reset(ctx, a, "open")
	h.Push(ctx, b, "apply")
	got, err := h.Undo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(shade(10)) {
		t.Error("redis round trip changed pixels")
	}
}
