package maps

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go-quickstart/config"
	"go-quickstart/internal/geocache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, h http.HandlerFunc, cache geocache.Cache) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(config.MapsConfig{APIKey: "test-key", BaseURL: srv.URL + "/"}, cache, zaptest.NewLogger(t))
	c.backoff = time.Millisecond
	return c
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func geocodeOK(address string, lat, lng float64) map[string]interface{} {
	return map[string]interface{}{
		"status": "OK",
		"results": []interface{}{map[string]interface{}{
			"formatted_address": address,
			"place_id":          "place-" + address,
			"geometry":          map[string]interface{}{"location": map[string]float64{"lat": lat, "lng": lng}},
		}},
	}
}

func TestGeocode(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "MG Road", r.URL.Query().Get("address"))
		writeJSON(w, geocodeOK("MG Road, Bengaluru", 12.97, 77.6))
	}, nil)

	g, err := c.Geocode(context.Background(), "MG Road")
	require.NoError(t, err)
	assert.Equal(t, []float64{77.6, 12.97}, g.Coordinates)
	assert.Equal(t, "MG Road, Bengaluru", g.FormattedAddress)
	assert.Equal(t, "place-MG Road, Bengaluru", g.PlaceID)
	assert.Equal(t, "12.97,77.6", g.LatLng())
	assert.EqualValues(t, 1, hits)
}

func TestGeocodeUsesCache(t *testing.T) {
	cache, err := geocache.Open(context.Background(), config.GeocacheConfig{Driver: "sqlite", DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		writeJSON(w, geocodeOK("Park Street, Kolkata", 22.55, 88.35))
	}, cache)

	first, err := c.Geocode(context.Background(), "Park Street")
	require.NoError(t, err)
	second, err := c.Geocode(context.Background(), "  park   STREET ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, hits)
}

func TestGeocodeNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"status": "ZERO_RESULTS", "results": []interface{}{}})
	}, nil)

	_, err := c.Geocode(context.Background(), "nowhere at all")
	assert.ErrorIs(t, err, ErrAddressNotFound)

	_, err = c.Geocode(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrAddressNotFound)

	_, err = c.ReverseGeocode(context.Background(), 0, 0)
	assert.ErrorIs(t, err, ErrLocationNotFound)
}

func TestGeocodeManyKeepsOrder(t *testing.T) {
	coords := map[string][2]float64{"A": {1, 10}, "B": {2, 20}, "C": {3, 30}}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		a := r.URL.Query().Get("address")
		writeJSON(w, geocodeOK(a, coords[a][0], coords[a][1]))
	}, nil)

	got, err := c.GeocodeMany(context.Background(), []string{"C", "A", "B"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "C", got[0].FormattedAddress)
	assert.Equal(t, "A", got[1].FormattedAddress)
	assert.Equal(t, []float64{20, 2}, got[2].Coordinates)
}

func TestRetryOnTransientStatus(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, geocodeOK("Retried", 1, 2))
	}, nil)

	g, err := c.Geocode(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "Retried", g.FormattedAddress)
	assert.EqualValues(t, 3, hits)
}

func TestRetryGivesUp(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, nil)

	_, err := c.Geocode(context.Background(), "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.EqualValues(t, maxAttempts, hits)
}

func TestNoRetryOnClientError(t *testing.T) {
	var hits int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusForbidden)
		writeJSON(w, map[string]string{"error_message": "The provided API key is invalid."})
	}, nil)

	_, err := c.Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, "Google Maps API error: The provided API key is invalid.", err.Error())
	assert.EqualValues(t, 1, hits)
}

func TestCallHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, nil)
	c.backoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out GeocodeResponse
	err := c.Call(ctx, "geocode/json", nil, &out)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestDirectionsParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/directions/json", r.URL.Path)
		assert.Equal(t, "1,2", q.Get("origin"))
		assert.Equal(t, "5,6", q.Get("destination"))
		assert.Equal(t, "optimize:true|3,4", q.Get("waypoints"))
		writeJSON(w, map[string]interface{}{
			"status": "OK",
			"routes": []interface{}{map[string]interface{}{
				"waypoint_order":    []int{0},
				"overview_polyline": map[string]string{"points": "abc"},
				"legs": []interface{}{
					map[string]interface{}{"distance": map[string]interface{}{"text": "1.5 km", "value": 1500}, "duration": map[string]interface{}{"text": "5 mins", "value": 300}},
					map[string]interface{}{"distance": map[string]interface{}{"text": "2.0 km", "value": 2000}, "duration": map[string]interface{}{"text": "6 mins", "value": 360}},
				},
			}},
		})
	}, nil)

	d, err := c.Directions(context.Background(), DirectionsRequest{Origin: "1,2", Destination: "5,6", Waypoints: []string{"3,4"}, Optimize: true})
	require.NoError(t, err)

	route, leg, ok := d.FirstLeg()
	require.True(t, ok)
	assert.Equal(t, "abc", route.OverviewPolyline.Points)
	assert.Equal(t, "1.5 km", leg.Distance.Text)

	m, s := route.Totals()
	assert.Equal(t, 3500, m)
	assert.Equal(t, 660, s)
}

func TestNearbySearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "12.9,77.5", q.Get("location"))
		assert.Equal(t, "1500", q.Get("radius"))
		assert.Equal(t, "cafe", q.Get("type"))
		assert.Empty(t, q.Get("keyword"))
		writeJSON(w, map[string]interface{}{"status": "ZERO_RESULTS"})
	}, nil)

	res, err := c.NearbySearch(context.Background(), NearbyRequest{Lat: 12.9, Lng: 77.5, Radius: 1500, Type: "cafe"})
	require.NoError(t, err)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "850 m", FormatDistance(850))
	assert.Equal(t, "1 km", FormatDistance(1000))
	assert.Equal(t, "12.3 km", FormatDistance(12340))
}

func TestFormatDuration(t *testing.T) {
	tests := map[int]string{
		10:     "1 min",
		60:     "1 min",
		2700:   "45 mins",
		3600:   "1 hour",
		3900:   "1 hour 5 mins",
		7500:   "2 hours 5 mins",
		86400:  "1 day",
		183600: "2 days 3 hours",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatDuration(in), in)
	}
}
