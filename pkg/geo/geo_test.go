package geo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeZones map[[2]float64]string

func (f fakeZones) GetTimezoneName(lng, lat float64) string {
	return f[[2]float64{lat, lng}]
}

var testZones = fakeZones{
	{37.5667, 126.9783}: "Asia/Seoul",
	{35.1028, 129.0403}: "Asia/Seoul",
	{40.7128, -74.006}:  "America/New_York",
	{10, 10}:            "Not/AZone",
}

const cityBody = `{"type":"FeatureCollection","features":[
 {"type":"Feature","geometry":{"type":"Point","coordinates":[126.9783,37.5667]},
  "properties":{"osm_type":"R","osm_id":2297418,"name":"Seoul","country":"South Korea","countrycode":"KR"}},
 {"type":"Feature","geometry":{"type":"Point","coordinates":[129.0403,35.1028]},
  "properties":{"osm_type":"R","osm_id":1,"name":"Busan","state":"Busan","country":"South Korea"}},
 {"type":"Feature","geometry":{"type":"Point","coordinates":[]},
  "properties":{"osm_type":"N","osm_id":9,"name":"Broken"}}
]}`

const townBody = `{"type":"FeatureCollection","features":[
 {"type":"Feature","geometry":{"type":"Point","coordinates":[126.9783,37.5667]},
  "properties":{"osm_type":"R","osm_id":2297418,"name":"Seoul","country":"South Korea"}},
 {"type":"Feature","geometry":{"type":"Point","coordinates":[-74.006,40.7128]},
  "properties":{"osm_type":"N","osm_id":77,"name":"Seoul Town"}}
]}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func photonServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		switch r.URL.Query().Get("osm_tag") {
		case "place:city":
			_, _ = io.WriteString(w, cityBody)
		case "place:town":
			_, _ = io.WriteString(w, townBody)
		default:
			http.Error(w, "bad tag", http.StatusBadRequest)
		}
	}))
}

func TestSearchPlacesMergesAndDeduplicates(t *testing.T) {
	var calls atomic.Int32
	srv := photonServer(t, &calls)
	defer srv.Close()

	r := NewResolver(quietLogger(), WithEndpoint(srv.URL), WithHTTPClient(srv.Client()), WithZoneFinder(testZones))
	got := r.SearchPlaces(context.Background(), "Seoul", 10)

	require.Len(t, got, 3)
	assert.Equal(t, int32(2), calls.Load(), "city and town queries")

	assert.Equal(t, "R2297418", got[0].ID)
	assert.Equal(t, "Seoul, South Korea", got[0].Label)
	assert.Equal(t, "Asia/Seoul", got[0].Timezone)
	assert.InDelta(t, 37.5667, got[0].Latitude, 1e-9)
	assert.InDelta(t, 126.9783, got[0].Longitude, 1e-9)

	// state equal to name is not repeated in the label
	assert.Equal(t, "Busan, South Korea", got[1].Label)

	assert.Equal(t, "Seoul Town", got[2].Label, "missing country is tolerated")
	assert.Equal(t, "America/New_York", got[2].Timezone)
}

func TestSearchPlacesLimit(t *testing.T) {
	var calls atomic.Int32
	srv := photonServer(t, &calls)
	defer srv.Close()

	r := NewResolver(quietLogger(), WithEndpoint(srv.URL), WithHTTPClient(srv.Client()), WithZoneFinder(testZones))
	assert.Len(t, r.SearchPlaces(context.Background(), "Seoul", 2), 2)
}

func TestSearchPlacesShortQuery(t *testing.T) {
	var calls atomic.Int32
	srv := photonServer(t, &calls)
	defer srv.Close()

	r := NewResolver(quietLogger(), WithEndpoint(srv.URL), WithHTTPClient(srv.Client()), WithZoneFinder(testZones))
	for _, q := range []string{"", " ", "S", " 서 "} {
		got := r.SearchPlaces(context.Background(), q, 5)
		assert.NotNil(t, got)
		assert.Empty(t, got, "query %q", q)
	}
	assert.Zero(t, calls.Load())
}

type recordingObserver struct {
	failures atomic.Int32
	total    atomic.Int32
}

func (o *recordingObserver) RecordUpstream(_ string, err error) {
	o.total.Add(1)
	if err != nil {
		o.failures.Add(1)
	}
}

func TestSearchPlacesDegradesOnUpstreamFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "down", http.StatusInternalServerError)
		}},
		{"invalid json", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "<html>")
		}},
		{"slow upstream", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			obs := &recordingObserver{}
			r := NewResolver(quietLogger(),
				WithEndpoint(srv.URL),
				WithHTTPClient(srv.Client()),
				WithZoneFinder(testZones),
				WithTimeout(100*time.Millisecond),
				WithObserver(obs))
			got := r.SearchPlaces(context.Background(), "Seoul", 5)
			assert.NotNil(t, got)
			assert.Empty(t, got)
			assert.Equal(t, int32(2), obs.total.Load())
		})
	}
}

func TestSearchPlacesUnreachableUpstream(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	obs := &recordingObserver{}
	r := NewResolver(quietLogger(), WithEndpoint(endpoint), WithZoneFinder(testZones), WithObserver(obs))
	got := r.SearchPlaces(context.Background(), "Seoul", 5)
	assert.Equal(t, []Place{}, got)
	assert.Equal(t, int32(2), obs.failures.Load())
}

func TestResolveTimezone(t *testing.T) {
	r := NewResolver(quietLogger(), WithZoneFinder(testZones))

	tests := []struct {
		name     string
		lat, lon float64
		want     string
	}{
		{"seoul", 37.5667, 126.9783, "Asia/Seoul"},
		{"new york", 40.7128, -74.006, "America/New_York"},
		{"open ocean", 0, -140, "UTC"},
		{"unloadable zone name", 10, 10, "UTC"},
		{"latitude out of range", 95, 0, "UTC"},
		{"longitude out of range", 0, 200, "UTC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ResolveTimezone(tt.lat, tt.lon))
		})
	}
}

func TestResolveTimezoneWithoutFinder(t *testing.T) {
	r := &Resolver{logger: quietLogger()}
	assert.Equal(t, FallbackZone, r.ResolveTimezone(37.5667, 126.9783))
}
