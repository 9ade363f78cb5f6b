// Package citysearch looks up cities by name through a remote provider,
// fronted by an in-memory LRU tier and an optional persistent tier.
package citysearch

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"peoplenet/application/ports"
	"peoplenet/pkg/auth"
	pkgerrors "peoplenet/pkg/errors"
)

// Lookup sources reported to the metrics recorder
const (
	SourceMemory      = "memory"
	SourcePersistent  = "persistent"
	SourceProvider    = "provider"
	SourceRateLimited = "rate_limited"
	SourceError       = "error"
)

// providerKey is the limiter key; the quota belongs to the API key, not a user
const providerKey = "city-provider"

// LookupRecorder counts lookups by how they were served
type LookupRecorder interface {
	CityLookup(source string)
}

// BreakerConfig holds circuit breaker settings for the provider
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// Config holds the service settings
type Config struct {
	MinQueryLength int
	MemorySize     int
	TTL            time.Duration
	Breaker        BreakerConfig
}

// DefaultConfig returns the default service settings
func DefaultConfig() Config {
	return Config{
		MinQueryLength: 2,
		MemorySize:     500,
		TTL:            7 * 24 * time.Hour,
		Breaker: BreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 0.6,
			MinRequests:      5,
		},
	}
}

// Usage reports what the service has done since it was created
type Usage struct {
	Requests       int64  `json:"requests"`
	MemoryHits     int64  `json:"memoryHits"`
	PersistentHits int64  `json:"persistentHits"`
	RateLimited    int64  `json:"rateLimited"`
	ProviderErrors int64  `json:"providerErrors"`
	Remaining      int    `json:"remaining"`
	Limit          int    `json:"limit"`
	Window         string `json:"window"`
	BreakerState   string `json:"breakerState"`
}

type memoryEntry struct {
	results   []ports.CityResult
	expiresAt time.Time
}

// Service is the city lookup collaborator
type Service struct {
	provider ports.CityProvider
	store    ports.CityCacheStore
	memory   *lru.Cache[string, memoryEntry]
	limiter  *auth.SlidingWindowLimiter
	breaker  *gobreaker.CircuitBreaker
	metrics  LookupRecorder
	logger   *zap.Logger
	cfg      Config
	now      func() time.Time

	requests       atomic.Int64
	memoryHits     atomic.Int64
	persistentHits atomic.Int64
	rateLimited    atomic.Int64
	providerErrors atomic.Int64
}

// Option customizes a Service
type Option func(*Service)

// WithClock replaces the clock used for memory tier expiry
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a city lookup service. store may be nil, in which
// case only the memory tier is used.
func NewService(
	provider ports.CityProvider,
	store ports.CityCacheStore,
	limiter *auth.SlidingWindowLimiter,
	metrics LookupRecorder,
	logger *zap.Logger,
	cfg Config,
	opts ...Option,
) (*Service, error) {
	if provider == nil {
		return nil, errors.New("city provider is required")
	}
	if limiter == nil {
		return nil, errors.New("rate limiter is required")
	}
	if cfg.MemorySize <= 0 {
		cfg.MemorySize = DefaultConfig().MemorySize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}

	memory, err := lru.New[string, memoryEntry](cfg.MemorySize)
	if err != nil {
		return nil, err
	}

	s := &Service{
		provider: provider,
		store:    store,
		memory:   memory,
		limiter:  limiter,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.breaker = s.newBreaker()
	return s, nil
}

func (s *Service) newBreaker() *gobreaker.CircuitBreaker {
	bc := s.cfg.Breaker
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "city-provider",
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			s.logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up says nothing about provider health
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

// Normalize trims and lowercases a query so equivalent queries share a cache entry
func Normalize(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// SearchCities returns cities matching query. Queries shorter than the
// minimum length return no results without touching any tier.
func (s *Service) SearchCities(ctx context.Context, query string) ([]ports.CityResult, error) {
	q := Normalize(query)
	if len([]rune(q)) < s.cfg.MinQueryLength {
		return []ports.CityResult{}, nil
	}

	if results, ok := s.fromMemory(q); ok {
		s.memoryHits.Add(1)
		s.record(SourceMemory)
		return results, nil
	}

	if s.store != nil {
		results, ok, err := s.store.Get(ctx, q)
		switch {
		case err != nil:
			s.logger.Warn("City cache read failed", zap.String("query", q), zap.Error(err))
		case ok:
			s.remember(q, results)
			s.persistentHits.Add(1)
			s.record(SourcePersistent)
			return cloneResults(results), nil
		}
	}

	allowed, err := s.limiter.Allow(ctx, providerKey)
	if err != nil {
		return nil, pkgerrors.NewInternalError("rate limiter failed").WithCause(err)
	}
	if !allowed {
		s.rateLimited.Add(1)
		s.record(SourceRateLimited)
		return nil, pkgerrors.NewRateLimitError(s.limiter.Limit(), s.limiter.Window(), s.limiter.RetryAfter(providerKey)).
			WithCode("CITY_LOOKUP_RATE_LIMITED")
	}

	s.requests.Add(1)
	out, err := s.breaker.Execute(func() (any, error) {
		return s.provider.Search(ctx, q)
	})
	if err != nil {
		s.providerErrors.Add(1)
		s.record(SourceError)
		return nil, s.providerError(err)
	}

	results, _ := out.([]ports.CityResult)
	if results == nil {
		results = []ports.CityResult{}
	}
	s.remember(q, results)
	if s.store != nil {
		if err := s.store.Set(ctx, q, results, s.cfg.TTL); err != nil {
			s.logger.Warn("City cache write failed", zap.String("query", q), zap.Error(err))
		}
	}
	s.record(SourceProvider)
	s.logger.Debug("City lookup served by provider",
		zap.String("query", q),
		zap.Int("results", len(results)),
	)
	return cloneResults(results), nil
}

// GetCachedResults returns memory-tier results without any I/O
func (s *Service) GetCachedResults(query string) ([]ports.CityResult, bool) {
	return s.fromMemory(Normalize(query))
}

// Usage returns the request counters and limiter state
func (s *Service) Usage() Usage {
	return Usage{
		Requests:       s.requests.Load(),
		MemoryHits:     s.memoryHits.Load(),
		PersistentHits: s.persistentHits.Load(),
		RateLimited:    s.rateLimited.Load(),
		ProviderErrors: s.providerErrors.Load(),
		Remaining:      s.limiter.Remaining(providerKey),
		Limit:          s.limiter.Limit(),
		Window:         s.limiter.Window().String(),
		BreakerState:   s.breaker.State().String(),
	}
}

// ClearCache empties both tiers
func (s *Service) ClearCache(ctx context.Context) error {
	s.memory.Purge()
	if s.store == nil {
		return nil
	}
	if err := s.store.Clear(ctx); err != nil {
		return pkgerrors.Wrap(err, "clear city cache")
	}
	return nil
}

func (s *Service) fromMemory(q string) ([]ports.CityResult, bool) {
	entry, ok := s.memory.Get(q)
	if !ok {
		return nil, false
	}
	if !s.now().Before(entry.expiresAt) {
		s.memory.Remove(q)
		return nil, false
	}
	return cloneResults(entry.results), true
}

func (s *Service) remember(q string, results []ports.CityResult) {
	s.memory.Add(q, memoryEntry{
		results:   cloneResults(results),
		expiresAt: s.now().Add(s.cfg.TTL),
	})
}

func (s *Service) record(source string) {
	if s.metrics != nil {
		s.metrics.CityLookup(source)
	}
}

func (s *Service) providerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.NewUnavailableError("city lookup").WithCause(err)
	}
	if pkgerrors.GetAppError(err) != nil {
		return err
	}
	return pkgerrors.NewExternalError("city provider", err)
}

func cloneResults(in []ports.CityResult) []ports.CityResult {
	out := make([]ports.CityResult, len(in))
	copy(out, in)
	return out
}
