package history

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/glitchgen/pkg/imagebuf"
)

// MemoryStore keeps snapshots in memory as zstd-compressed NRGBA pixels.
type MemoryStore struct {
	mu    sync.Mutex
	enc   *zstd.Encoder
	dec   *zstd.Decoder
	snaps map[string]memSnapshot
}

type memSnapshot struct {
	width, height int
	data          []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() (*MemoryStore, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &MemoryStore{enc: enc, dec: dec, snaps: make(map[string]memSnapshot)}, nil
}

// Save compresses a copy of buf's pixels.
func (s *MemoryStore) Save(ctx context.Context, id string, buf *imagebuf.Buffer) error {
	img := buf.Image()
	w, h := img.Rect.Dx(), img.Rect.Dy()

	raw := img.Pix
	if img.Stride != 4*w {
		raw = make([]byte, 0, 4*w*h)
		for y := 0; y < h; y++ {
			raw = append(raw, img.Pix[y*img.Stride:y*img.Stride+4*w]...)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[id] = memSnapshot{
		width:  w,
		height: h,
		data:   s.enc.EncodeAll(raw[:4*w*h], nil),
	}
	return nil
}

// Load decompresses the snapshot for id into a new buffer.
func (s *MemoryStore) Load(ctx context.Context, id string) (*imagebuf.Buffer, error) {
	s.mu.Lock()
	snap, ok := s.snaps[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	pix, err := s.dec.DecodeAll(snap.data, make([]byte, 0, 4*snap.width*snap.height))
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot %s: %w", id, err)
	}
	if len(pix) != 4*snap.width*snap.height {
		return nil, fmt.Errorf("snapshot %s: got %d bytes, want %d", id, len(pix), 4*snap.width*snap.height)
	}
	buf := imagebuf.Wrap(&image.NRGBA{
		Pix:    pix,
		Stride: 4 * snap.width,
		Rect:   image.Rect(0, 0, snap.width, snap.height),
	})
	return buf, nil
}

// Delete drops the snapshot for id.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, id)
	return nil
}

// Len returns the number of stored snapshots.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snaps)
}

// Size returns the total compressed size of all snapshots in bytes.
func (s *MemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, snap := range s.snaps {
		n += len(snap.data)
	}
	return n
}

// Close releases the codecs and drops all snapshots.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = make(map[string]memSnapshot)
	s.dec.Close()
	return s.enc.Close()
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
