package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
)

// Bucket is the JetStream KV bucket holding shared inference results.
const Bucket = "LABSENTINEL_INFERENCE"

// NATSStore backs the cache with a NATS JetStream KV bucket so multiple
// auditors share one content-addressed cache. The store keeps the same
// failure policy as every other backend: errors degrade to a miss or an
// ignored write, never to a failed audit.
type NATSStore struct {
	kv     jetstream.KeyValue
	logger *slog.Logger
}

// NewNATSStore binds to the cache bucket, creating it if needed.
func NewNATSStore(ctx context.Context, js jetstream.JetStream, logger *slog.Logger) (*NATSStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kv, err := js.KeyValue(ctx, Bucket)
	if err != nil {
		// Bucket doesn't exist, create it. History 1: values for a key
		// never change once computed, only the latest matters.
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      Bucket,
			Description: "LabSentinel content-addressed inference cache",
			History:     1,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache bucket: %w", err)
		}
	}

	return &NATSStore{kv: kv, logger: logger}, nil
}

// Get implements Store. Missing keys and transport failures are misses.
func (s *NATSStore) Get(ctx context.Context, key string) (string, bool) {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, jetstream.ErrKeyNotFound) {
			s.logger.Warn("Cache read failed, treating as miss", "key", key, "error", err)
		}
		return "", false
	}
	return string(entry.Value()), true
}

// Put implements Store. Last write wins; failures are ignored.
func (s *NATSStore) Put(ctx context.Context, key, value string) {
	if _, err := s.kv.Put(ctx, key, []byte(value)); err != nil {
		s.logger.Warn("Cache write failed, write ignored", "key", key, "error", err)
	}
}

// Len returns the number of cached entries in the bucket.
func (s *NATSStore) Len(ctx context.Context) (int, error) {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("list cache keys: %w", err)
	}
	count := 0
	for range lister.Keys() {
		count++
	}
	return count, nil
}

// Clear purges every cached entry from the bucket.
func (s *NATSStore) Clear(ctx context.Context) error {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("list cache keys: %w", err)
	}
	for key := range lister.Keys() {
		if err := s.kv.Purge(ctx, key); err != nil {
			return fmt.Errorf("purge cache key %s: %w", key, err)
		}
	}
	return nil
}
