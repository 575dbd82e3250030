package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// redisEnvelope wraps a document body with the metadata the SQL backend
// keeps in table columns.
type redisEnvelope struct {
	Body      json.RawMessage `json:"body"`
	Version   int64           `json:"version"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// RedisStore implements DocumentStore on a Redis key-value namespace.
// Compare-and-swap uses WATCH/MULTI: a concurrent write between read and
// commit aborts the transaction and surfaces ErrConflict.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed document store and verifies connectivity
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func docKey(kind, id string) string {
	return "pp:" + kind + ":" + id
}

// Get retrieves a document body and its current version
func (s *RedisStore) Get(ctx context.Context, kind, id string) (json.RawMessage, int64, error) {
	raw, err := s.client.Get(ctx, docKey(kind, id)).Result()
	if err == redis.Nil {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	var env redisEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, 0, fmt.Errorf("corrupt document %s/%s: %w", kind, id, err)
	}

	return env.Body, env.Version, nil
}

// Put writes a document, enforcing the version precondition
func (s *RedisStore) Put(ctx context.Context, kind, id string, body json.RawMessage, expectedVersion int64) (int64, error) {
	key := docKey(kind, id)
	newVersion := expectedVersion + 1

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Result()
		switch {
		case err == redis.Nil:
			if expectedVersion != 0 {
				return ErrNotFound
			}
		case err != nil:
			return err
		default:
			var env redisEnvelope
			if err := json.Unmarshal([]byte(raw), &env); err != nil {
				return fmt.Errorf("corrupt document %s/%s: %w", kind, id, err)
			}
			if env.Version != expectedVersion {
				return ErrConflict
			}
		}

		encoded, err := json.Marshal(redisEnvelope{
			Body:      body,
			Version:   newVersion,
			UpdatedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txn, key)
	if errors.Is(err, redis.TxFailedErr) {
		// Key changed between read and commit
		return 0, ErrConflict
	}
	if err != nil {
		return 0, err
	}

	return newVersion, nil
}

// Delete removes a document
func (s *RedisStore) Delete(ctx context.Context, kind, id string) error {
	deleted, err := s.client.Del(ctx, docKey(kind, id)).Result()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves all documents of a kind via SCAN
func (s *RedisStore) List(ctx context.Context, kind string) ([]Document, error) {
	var docs []Document

	iter := s.client.Scan(ctx, 0, docKey(kind, "*"), 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		raw, err := s.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}

		var env redisEnvelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			continue
		}

		docs = append(docs, Document{
			Kind:      kind,
			ID:        key[len(docKey(kind, "")):],
			Body:      env.Body,
			Version:   env.Version,
			UpdatedAt: env.UpdatedAt,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

// PruneOlderThan deletes documents of a kind not updated within age
func (s *RedisStore) PruneOlderThan(ctx context.Context, kind string, age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age)

	docs, err := s.List(ctx, kind)
	if err != nil {
		return 0, err
	}

	var pruned int64
	for _, doc := range docs {
		if doc.UpdatedAt.Before(cutoff) {
			if err := s.Delete(ctx, kind, doc.ID); err != nil && err != ErrNotFound {
				return pruned, err
			}
			pruned++
		}
	}

	return pruned, nil
}
