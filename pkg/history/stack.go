// Package history implements the undo stack of persisted image snapshots.
//
// A [Stack] is an ordered list of [Entry] handles whose pixels live in a
// [Store]. The bottom entry is the image as it was loaded or generated and
// is never popped or evicted; [Stack.Undo] drops the top entry and reloads
// the new top from the store. Only the caller's live buffer is resident
// unless the store itself keeps data in memory.
//
// # Stores
//
//   - [FileStore]: PNG files in a per-session temp directory (default)
//   - [MemoryStore]: zstd-compressed pixels in memory
//   - [RedisStore]: PNG blobs in Redis with a TTL
//
// # Usage
//
//	store, _ := history.NewFileStore("")
//	h := history.New(store, history.WithMaxEntries(50))
//	defer h.Close(ctx)
//
//	h.Reset(ctx, buf, "open photo.png")
//	// ... glitch buf ...
//	h.Push(ctx, buf, "Random")
//	prev, err := h.Undo(ctx)
package history

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/observability"
)

// Entry is an immutable handle to one persisted image state.
type Entry struct {
	ID        string
	Label     string
	Width     int
	Height    int
	Format    imagebuf.Format // restored on undo
	CreatedAt time.Time
}

// Stack is the undo history. It is not safe for concurrent use.
type Stack struct {
	store      Store
	entries    []Entry
	maxEntries int
	logger     *log.Logger
}

// Option configures a Stack.
type Option func(*Stack)

// WithMaxEntries caps the depth of the stack. When a push exceeds n, the
// oldest entry above the base is evicted. Values below 2 mean unlimited.
func WithMaxEntries(n int) Option {
	return func(s *Stack) {
		if n >= 2 {
			s.maxEntries = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Stack) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty stack over store.
func New(store Store, opts ...Option) *Stack {
	s := &Stack{store: store, logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the backing store.
func (s *Stack) Store() Store { return s.store }

// Push persists a copy of buf and appends it.
func (s *Stack) Push(ctx context.Context, buf *imagebuf.Buffer, label string) (Entry, error) {
	if buf == nil {
		return Entry{}, errors.New(errors.ErrCodeNoImage, "nothing to push")
	}
	e := Entry{
		ID:        uuid.NewString(),
		Label:     label,
		Width:     buf.Width(),
		Height:    buf.Height(),
		Format:    buf.Format(),
		CreatedAt: time.Now(),
	}
	if err := s.store.Save(ctx, e.ID, buf); err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeSourceSave, err, "save snapshot")
	}
	s.entries = append(s.entries, e)
	s.logger.Debug("pushed snapshot", "id", e.ID, "label", label, "depth", len(s.entries))
	observability.History().OnPush(ctx, e.ID, len(s.entries))

	s.evict(ctx)
	return e, nil
}

func (s *Stack) evict(ctx context.Context) {
	for s.maxEntries > 0 && len(s.entries) > s.maxEntries {
		old := s.entries[1]
		s.entries = append(s.entries[:1], s.entries[2:]...)
		if err := s.store.Delete(ctx, old.ID); err != nil {
			s.logger.Warn("evict snapshot", "id", old.ID, "error", err)
		}
		s.logger.Debug("evicted snapshot", "id", old.ID, "label", old.Label)
		observability.History().OnEvict(ctx, old.ID)
	}
}

// Undo discards the top entry and returns a fresh buffer holding the state
// below it. With only the base entry left it fails with EMPTY_HISTORY and
// changes nothing. If the snapshot cannot be loaded the stack is also left
// unchanged.
func (s *Stack) Undo(ctx context.Context) (*imagebuf.Buffer, error) {
	if len(s.entries) <= 1 {
		return nil, errors.New(errors.ErrCodeEmptyHistory, "nothing to undo")
	}

	top := s.entries[len(s.entries)-1]
	prev := s.entries[len(s.entries)-2]
	buf, err := s.store.Load(ctx, prev.ID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceLoad, err, "load snapshot %q", prev.Label)
	}
	buf.SetFormat(prev.Format)

	s.entries = s.entries[:len(s.entries)-1]
	if err := s.store.Delete(ctx, top.ID); err != nil {
		s.logger.Warn("delete snapshot", "id", top.ID, "error", err)
	}
	s.logger.Debug("undo", "dropped", top.Label, "depth", len(s.entries))
	observability.History().OnUndo(ctx, top.ID, len(s.entries))
	return buf, nil
}

// Clear deletes every snapshot, including the base.
func (s *Stack) Clear(ctx context.Context) error {
	var firstErr error
	for _, e := range s.entries {
		if err := s.store.Delete(ctx, e.ID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.entries = nil
	if firstErr != nil {
		return errors.Wrap(errors.ErrCodeInternal, firstErr, "clear history")
	}
	return nil
}

// Reset clears the stack and pushes buf as the new base entry.
func (s *Stack) Reset(ctx context.Context, buf *imagebuf.Buffer, label string) (Entry, error) {
	if err := s.Clear(ctx); err != nil {
		s.logger.Warn("clear history", "error", err)
	}
	return s.Push(ctx, buf, label)
}

// CanUndo reports whether more than the base entry remains.
func (s *Stack) CanUndo() bool { return len(s.entries) > 1 }

// Depth returns the number of entries, base included.
func (s *Stack) Depth() int { return len(s.entries) }

// Top returns the most recent entry.
func (s *Stack) Top() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Entries returns all entries, base first.
func (s *Stack) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Close clears the stack and closes the store.
func (s *Stack) Close(ctx context.Context) error {
	clearErr := s.Clear(ctx)
	if err := s.store.Close(); err != nil {
		return err
	}
	return clearErr
}
