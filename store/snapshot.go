package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/eiiot/amtraker-v3/amtraker"
)

// Sink receives the full train set after each successful commit. Sinks are
// opaque to the store: a failed write is logged and dropped, never retried
// and never surfaced to the committer.
type Sink interface {
	Write(ctx context.Context, trains map[int][]amtraker.Train) error
}

// FileSink persists the snapshot as a JSON document on disk. The format is
// the direct serialization of the trains map, so a restart can round-trip it.
type FileSink struct {
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (f *FileSink) Write(_ context.Context, trains map[int][]amtraker.Train) error {
	data, err := json.Marshal(trains)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	// Write-then-rename so a crash mid-write never leaves a truncated
	// snapshot behind.
	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// RedisSink persists the snapshot as a JSON string under a single key.
type RedisSink struct {
	client *redis.Client
	key    string
}

func NewRedisSink(address, key string) *RedisSink {
	return &RedisSink{
		client: redis.NewClient(&redis.Options{Addr: address}),
		key:    key,
	}
}

func (r *RedisSink) Write(ctx context.Context, trains map[int][]amtraker.Train) error {
	data, err := json.Marshal(trains)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return r.client.Set(ctx, r.key, data, 0).Err()
}
