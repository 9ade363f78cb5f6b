// Package redis implements the persistent city lookup tier on Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"peoplenet/application/ports"
)

const (
	defaultKeyPrefix = "peoplenet:cities:"
	clearBatchSize   = 100
)

// CityStore implements ports.CityCacheStore with one JSON value per query
type CityStore struct {
	client    *redis.Client
	keyPrefix string
}

// Option configures a CityStore
type Option func(*CityStore)

// WithKeyPrefix sets a custom prefix for Redis keys
func WithKeyPrefix(prefix string) Option {
	return func(s *CityStore) {
		s.keyPrefix = prefix
	}
}

// NewCityStore creates a store on an existing client
func NewCityStore(client *redis.Client, opts ...Option) *CityStore {
	s := &CityStore{client: client, keyPrefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect parses a redis:// URL, checks the connection and returns a store
func Connect(ctx context.Context, url string, opts ...Option) (*CityStore, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewCityStore(client, opts...), nil
}

func (s *CityStore) key(query string) string {
	return s.keyPrefix + query
}

// Get returns the cached results for a normalized query
func (s *CityStore) Get(ctx context.Context, query string) ([]ports.CityResult, bool, error) {
	raw, err := s.client.Get(ctx, s.key(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var results []ports.CityResult
	if err := json.Unmarshal(raw, &results); err != nil {
		// a corrupt entry is a miss; the next lookup overwrites it
		return nil, false, nil
	}
	return results, true, nil
}

// Set stores results with the given time to live
func (s *CityStore) Set(ctx context.Context, query string, results []ports.CityResult, ttl time.Duration) error {
	if results == nil {
		results = []ports.CityResult{}
	}
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal city results: %w", err)
	}
	if err := s.client.Set(ctx, s.key(query), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear deletes every key under the store's prefix. Keys are collected
// before any DEL so the scan cursor never runs over a shrinking keyspace.
func (s *CityStore) Clear(ctx context.Context) error {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.keyPrefix+"*", clearBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}

	for start := 0; start < len(keys); start += clearBatchSize {
		end := start + clearBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		if err := s.client.Del(ctx, keys[start:end]...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return nil
}

// Ping reports whether Redis is reachable
func (s *CityStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *CityStore) Close() error {
	return s.client.Close()
}
