package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgerrors "peoplenet/pkg/errors"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *GeoDBProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGeoDBProvider(Config{
		BaseURL: srv.URL + "/v1/geo/cities",
		APIKey:  "key",
		APIHost: "geo.example",
		Timeout: time.Second,
	}, zap.NewNop())
}

func TestSearch_MapsResults(t *testing.T) {
	// Arrange
	var got *http.Request
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":3350606,"name":"Paris","city":"Paris","region":"Ile-de-France",
			"country":"France","countryCode":"FR","latitude":48.8566,"longitude":2.3522,"population":2148000}]}`))
	})

	// Act
	results, err := p.Search(context.Background(), "par")

	// Assert
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "3350606", results[0].ID)
	assert.Equal(t, "Paris", results[0].Name)
	assert.Equal(t, "FR", results[0].CountryCode)
	assert.Equal(t, 2148000, results[0].Population)

	assert.Equal(t, "par", got.URL.Query().Get("namePrefix"))
	assert.Equal(t, "10", got.URL.Query().Get("limit"))
	assert.Equal(t, "key", got.Header.Get("X-RapidAPI-Key"))
	assert.Equal(t, "geo.example", got.Header.Get("X-RapidAPI-Host"))
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "quota exhausted",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Retry-After", "3")
				w.WriteHeader(http.StatusTooManyRequests)
			},
			check: func(t *testing.T, err error) {
				require.True(t, pkgerrors.IsRateLimit(err))
				assert.Equal(t, 3*time.Second, pkgerrors.GetAppError(err).RetryAfter)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "500")
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "decode")
			},
		},
		{
			name: "api error payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"errors":[{"code":"PARAM_INVALID","message":"bad prefix"}]}`))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorContains(t, err, "PARAM_INVALID")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, tt.handler)

			_, err := p.Search(context.Background(), "par")

			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestSearch_EmptyDataIsEmptySlice(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	results, err := p.Search(context.Background(), "qqq")

	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearch_HonoursContext(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Search(ctx, "par")

	assert.ErrorIs(t, err, context.Canceled)
}
