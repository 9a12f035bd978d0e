package engine

import (
	"context"

	"github.com/matzehuels/glitchgen/pkg/config"
	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/history"
)

// OpenStore creates the snapshot store selected by hc.
func OpenStore(ctx context.Context, hc config.HistoryConfig) (history.Store, error) {
	switch hc.Backend {
	case config.BackendFile, "":
		s, err := history.NewFileStore(hc.Dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeSourceSave, err, "open file history")
		}
		return s, nil
	case config.BackendMemory:
		s, err := history.NewMemoryStore()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "open memory history")
		}
		return s, nil
	case config.BackendRedis:
		s, err := history.NewRedisStore(ctx, history.RedisConfig{
			Addr:     hc.RedisAddr,
			Password: hc.RedisPassword,
			DB:       hc.RedisDB,
			TTL:      hc.RedisTTL.Duration,
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeSourceSave, err, "connect redis history at %s", hc.RedisAddr)
		}
		return s, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown history backend %q", hc.Backend)
	}
}

// Location describes where the snapshot for entry lives: a file path, a
// redis key or an in-memory handle.
func Location(store history.Store, entry history.Entry) string {
	switch s := store.(type) {
	case *history.FileStore:
		return s.Path(entry.ID)
	case *history.RedisStore:
		return s.Key(entry.ID)
	default:
		return "mem:" + entry.ID
	}
}
