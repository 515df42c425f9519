package location

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/observability"
)

func newTestNominatim(t *testing.T, handler http.HandlerFunc) (*NominatimClient, *observability.Metrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	metrics := observability.NewMetricsForTesting()
	client := NewNominatimClient(NominatimConfig{
		BaseURL:   srv.URL,
		UserAgent: "carbonfootprint-test",
		RateLimit: 1000,
		Burst:     100,
	}, zerolog.Nop(), metrics)
	return client, metrics
}

func TestNominatimClient_Search(t *testing.T) {
	client, _ := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "London", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "carbonfootprint-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"place_id": 1, "lat": "51.5073219", "lon": "-0.1276474", "display_name": "London, Greater London, England, United Kingdom"},
			{"place_id": 2, "lat": "42.9836747", "lon": "-81.2496068", "display_name": "London, Ontario, Canada"}
		]`))
	})

	got, err := client.Search(context.Background(), "  London ")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "London, Greater London, England, United Kingdom", got[0].Label)
	assert.InDelta(t, 51.5073219, got[0].Latitude, 1e-9)
	assert.InDelta(t, -0.1276474, got[0].Longitude, 1e-9)
	assert.Equal(t, "London, Ontario, Canada", got[1].Label)
}

func TestNominatimClient_SkipsBadCoordinates(t *testing.T) {
	client, _ := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"place_id": 1, "lat": "not-a-number", "lon": "2", "display_name": "Broken"},
			{"place_id": 2, "lat": "95", "lon": "2", "display_name": "Too far north"},
			{"place_id": 3, "lat": "48.8566", "lon": "2.3522", "display_name": "Paris"}
		]`))
	})

	got, err := client.Search(context.Background(), "Paris")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Paris", got[0].Label)
}

func TestNominatimClient_TruncatesToMaxResults(t *testing.T) {
	client, _ := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"lat": "1", "lon": "1", "display_name": "a"},
			{"lat": "2", "lon": "2", "display_name": "b"},
			{"lat": "3", "lon": "3", "display_name": "c"},
			{"lat": "4", "lon": "4", "display_name": "d"},
			{"lat": "5", "lon": "5", "display_name": "e"},
			{"lat": "6", "lon": "6", "display_name": "f"}
		]`))
	})

	got, err := client.Search(context.Background(), "many places")
	require.NoError(t, err)
	assert.Len(t, got, DefaultMaxResults)
}

func TestNominatimClient_EmptyResult(t *testing.T) {
	client, metrics := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	got, err := client.Search(context.Background(), "nowhere at all")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1.0, counterValue(t, metrics, "nominatim", observability.OutcomeEmpty))
}

func TestNominatimClient_HTTPError(t *testing.T) {
	client, metrics := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), "London")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Equal(t, 1.0, counterValue(t, metrics, "nominatim", observability.OutcomeError))
}

func TestNominatimClient_InvalidJSON(t *testing.T) {
	client, _ := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := client.Search(context.Background(), "London")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestNominatimClient_ShortQueryNeverCallsServer(t *testing.T) {
	called := false
	client, _ := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Search(context.Background(), " ab ")
	assert.ErrorIs(t, err, ErrQueryTooShort)
	assert.False(t, called)
}

func TestNominatimClient_ContextCanceled(t *testing.T) {
	client, _ := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Search(ctx, "London")
	assert.Error(t, err)
}
