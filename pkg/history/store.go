package history

import (
	"context"
	"errors"

	"github.com/matzehuels/glitchgen/pkg/imagebuf"
)

// ErrNotFound is returned by a Store when no snapshot exists for an ID.
var ErrNotFound = errors.New("snapshot not found")

// Store persists image snapshots by entry ID.
//
// Save must persist a copy: the caller keeps mutating buf afterwards, and
// the snapshot must not change with it. Load returns a fresh buffer owned by
// the caller.
type Store interface {
	Save(ctx context.Context, id string, buf *imagebuf.Buffer) error
	Load(ctx context.Context, id string) (*imagebuf.Buffer, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
