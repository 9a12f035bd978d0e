package history

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/glitchgen/pkg/imagebuf"
)

// DefaultRedisTTL bounds how long an abandoned session's snapshots live.
const DefaultRedisTTL = 24 * time.Hour

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // per-snapshot expiry; DefaultRedisTTL if zero
	Session  string        // key namespace; a random UUID if empty
}

// RedisStore keeps PNG snapshots in Redis under
// "glitchgen:snap:<session>:<id>" with a TTL.
type RedisStore struct {
	client  *redis.Client
	owned   bool
	session string
	ttl     time.Duration

	mu   sync.Mutex
	keys map[string]struct{}
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}
	s := NewRedisStoreWithClient(client, cfg.Session, cfg.TTL)
	s.owned = true
	return s, nil
}

// NewRedisStoreWithClient uses an existing client. The client is not closed
// by Close.
func NewRedisStoreWithClient(client *redis.Client, session string, ttl time.Duration) *RedisStore {
	if session == "" {
		session = uuid.NewString()
	}
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisStore{
		client:  client,
		session: session,
		ttl:     ttl,
		keys:    make(map[string]struct{}),
	}
}

// Session returns the key namespace of this store.
func (s *RedisStore) Session() string { return s.session }

// Key returns the Redis key for id.
func (s *RedisStore) Key(id string) string {
	return "glitchgen:snap:" + s.session + ":" + id
}

// Save stores buf as PNG bytes.
func (s *RedisStore) Save(ctx context.Context, id string, buf *imagebuf.Buffer) error {
	data, err := buf.PNG()
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.Key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	s.mu.Lock()
	s.keys[id] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Load fetches and decodes the snapshot for id.
func (s *RedisStore) Load(ctx context.Context, id string) (*imagebuf.Buffer, error) {
	data, err := s.client.Get(ctx, s.Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return imagebuf.Decode(bytes.NewReader(data))
}

// Delete removes the snapshot for id.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.Key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	s.mu.Lock()
	delete(s.keys, id)
	s.mu.Unlock()
	return nil
}

// Close deletes every snapshot this store wrote and closes the client if
// the store created it.
func (s *RedisStore) Close() error {
	s.mu.Lock()
	keys := make([]string, 0, len(s.keys))
	for id := range s.keys {
		keys = append(keys, s.Key(id))
	}
	s.keys = make(map[string]struct{})
	s.mu.Unlock()

	var err error
	if len(keys) > 0 {
		err = s.client.Del(context.Background(), keys...).Err()
	}
	if s.owned {
		if cerr := s.client.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
