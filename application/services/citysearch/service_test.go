package citysearch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"peoplenet/application/ports"
	"peoplenet/pkg/auth"
	pkgerrors "peoplenet/pkg/errors"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Search(ctx context.Context, query string) ([]ports.CityResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.CityResult), args.Error(1)
}

// fakeStore is an in-memory persistent tier
type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]ports.CityResult
	getErr  error
	cleared bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]ports.CityResult)}
}

func (f *fakeStore) Get(_ context.Context, query string) ([]ports.CityResult, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	r, ok := f.data[query]
	return r, ok, nil
}

func (f *fakeStore) Set(_ context.Context, query string, results []ports.CityResult, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[query] = results
	return nil
}

func (f *fakeStore) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data = make(map[string][]ports.CityResult)
	f.cleared = true
	return nil
}

type countingRecorder struct {
	sources []string
}

func (c *countingRecorder) CityLookup(source string) { c.sources = append(c.sources, source) }

type fixture struct {
	svc      *Service
	provider *MockProvider
	store    *fakeStore
	metrics  *countingRecorder
	now      time.Time
}

func newFixture(t *testing.T, limit int) *fixture {
	t.Helper()
	f := &fixture{
		provider: new(MockProvider),
		store:    newFakeStore(),
		metrics:  &countingRecorder{},
		now:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	limiter := auth.NewSlidingWindowLimiterWithClock(limit, time.Minute, clock)

	cfg := DefaultConfig()
	cfg.TTL = time.Hour
	svc, err := NewService(f.provider, f.store, limiter, f.metrics, zap.NewNop(), cfg, WithClock(clock))
	require.NoError(t, err)
	f.svc = svc
	return f
}

var paris = []ports.CityResult{{ID: "1", Name: "Paris", Country: "France", CountryCode: "FR", Latitude: 48.85, Longitude: 2.35, Timezone: "Europe/Paris"}}

func TestSearchCities_ShortQueryReturnsEmpty(t *testing.T) {
	f := newFixture(t, 10)

	results, err := f.svc.SearchCities(context.Background(), " p ")

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
	f.provider.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearchCities_ProviderThenMemoryHit(t *testing.T) {
	// Arrange
	f := newFixture(t, 10)
	f.provider.On("Search", mock.Anything, "paris").Return(paris, nil).Once()

	// Act
	first, err := f.svc.SearchCities(context.Background(), "  Paris ")
	require.NoError(t, err)
	second, err := f.svc.SearchCities(context.Background(), "PARIS")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, paris, first)
	assert.Equal(t, paris, second)
	f.provider.AssertNumberOfCalls(t, "Search", 1)
	assert.Equal(t, paris, f.store.data["paris"])
	assert.Equal(t, []string{SourceProvider, SourceMemory}, f.metrics.sources)

	usage := f.svc.Usage()
	assert.Equal(t, int64(1), usage.Requests)
	assert.Equal(t, int64(1), usage.MemoryHits)
	assert.Equal(t, 9, usage.Remaining)
}

func TestSearchCities_PersistentHitPromotesToMemory(t *testing.T) {
	f := newFixture(t, 10)
	f.store.data["paris"] = paris

	_, cached := f.svc.GetCachedResults("paris")
	assert.False(t, cached)

	results, err := f.svc.SearchCities(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, paris, results)

	promoted, cached := f.svc.GetCachedResults("paris")
	assert.True(t, cached)
	assert.Equal(t, paris, promoted)
	assert.Equal(t, int64(1), f.svc.Usage().PersistentHits)
	f.provider.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestSearchCities_MemoryEntryExpires(t *testing.T) {
	f := newFixture(t, 10)
	f.provider.On("Search", mock.Anything, "paris").Return(paris, nil)

	_, err := f.svc.SearchCities(context.Background(), "paris")
	require.NoError(t, err)

	f.now = f.now.Add(2 * time.Hour)
	_, cached := f.svc.GetCachedResults("paris")
	assert.False(t, cached)
}

func TestSearchCities_StoreErrorFallsThroughToProvider(t *testing.T) {
	f := newFixture(t, 10)
	f.store.getErr = errors.New("connection refused")
	f.provider.On("Search", mock.Anything, "paris").Return(paris, nil).Once()

	results, err := f.svc.SearchCities(context.Background(), "paris")

	require.NoError(t, err)
	assert.Equal(t, paris, results)
}

func TestSearchCities_RateLimitRefusalIsCounted(t *testing.T) {
	// Arrange
	f := newFixture(t, 1)
	f.provider.On("Search", mock.Anything, "paris").Return(paris, nil).Once()
	_, err := f.svc.SearchCities(context.Background(), "paris")
	require.NoError(t, err)

	// Act
	_, err = f.svc.SearchCities(context.Background(), "berlin")

	// Assert
	require.Error(t, err)
	assert.True(t, pkgerrors.IsRateLimit(err))
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, time.Minute, appErr.RetryAfter)
	assert.Equal(t, int64(1), f.svc.Usage().RateLimited)
	assert.Equal(t, int64(1), f.svc.Usage().Requests)
	assert.Contains(t, f.metrics.sources, SourceRateLimited)

	// cached queries are still served while limited
	results, err := f.svc.SearchCities(context.Background(), "paris")
	require.NoError(t, err)
	assert.Equal(t, paris, results)
}

func TestSearchCities_ProviderErrorIsExternal(t *testing.T) {
	f := newFixture(t, 10)
	f.provider.On("Search", mock.Anything, "paris").Return(nil, errors.New("boom"))

	_, err := f.svc.SearchCities(context.Background(), "paris")

	require.Error(t, err)
	assert.True(t, pkgerrors.IsExternal(err))
	assert.Equal(t, int64(1), f.svc.Usage().ProviderErrors)
	_, cached := f.svc.GetCachedResults("paris")
	assert.False(t, cached)
}

func TestSearchCities_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	f := newFixture(t, 100)
	f.provider.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	queries := []string{"aa", "bb", "cc", "dd", "ee"}
	for _, q := range queries {
		_, err := f.svc.SearchCities(context.Background(), q)
		require.True(t, pkgerrors.IsExternal(err))
	}

	_, err := f.svc.SearchCities(context.Background(), "ff")

	assert.True(t, pkgerrors.IsUnavailable(err))
	f.provider.AssertNumberOfCalls(t, "Search", len(queries))
	assert.Equal(t, "open", f.svc.Usage().BreakerState)
}

func TestClearCache(t *testing.T) {
	f := newFixture(t, 10)
	f.provider.On("Search", mock.Anything, "paris").Return(paris, nil)
	_, err := f.svc.SearchCities(context.Background(), "paris")
	require.NoError(t, err)

	require.NoError(t, f.svc.ClearCache(context.Background()))

	_, cached := f.svc.GetCachedResults("paris")
	assert.False(t, cached)
	assert.True(t, f.store.cleared)
	assert.Empty(t, f.store.data)
}

func TestResultsAreCopies(t *testing.T) {
	f := newFixture(t, 10)
	f.provider.On("Search", mock.Anything, "paris").Return(paris, nil)
	results, err := f.svc.SearchCities(context.Background(), "paris")
	require.NoError(t, err)

	results[0].Name = "changed"

	cached, _ := f.svc.GetCachedResults("paris")
	assert.Equal(t, "Paris", cached[0].Name)
}

func TestNewService_RequiresProviderAndLimiter(t *testing.T) {
	_, err := NewService(nil, nil, auth.NewSlidingWindowLimiter(1, time.Second), nil, zap.NewNop(), DefaultConfig())
	assert.Error(t, err)

	_, err = NewService(new(MockProvider), nil, nil, nil, zap.NewNop(), DefaultConfig())
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "new york", Normalize("  New   York "))
	assert.Equal(t, "", Normalize("   "))
}
