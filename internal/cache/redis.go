package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/go-redis/redis/v8"
)

const pingTimeout = 5 * time.Second

// RedisStore keeps vectors as little-endian float32 strings.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to url (redis://[:password@]host:port/db) and pings it.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) GetMany(ctx context.Context, keys []string) ([][]float32, error) {
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(keys))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		// a corrupt entry is a miss
		out[i], _ = decodeVector([]byte(raw))
	}
	return out, nil
}

func (s *RedisStore) SetMany(ctx context.Context, entries map[string][]float32, ttl time.Duration) error {
	if len(entries) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for key, vector := range entries {
		pipe.Set(ctx, key, encodeVector(vector), ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid vector encoding of %d bytes", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}
