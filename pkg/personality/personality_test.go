package personality

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeGROOVE-dev/fourpillars/pkg/httpcache"
)

const profileBody = `{
 "type": "Manifesting Generator",
 "authority": "Emotional",
 "profile": "3/5",
 "not_self_theme": "frustration",
 "motivation": "Desire",
 "motivation_shadow": "Need",
 "perspective": "Possibility",
 "perspective_shadow": "Probability",
 "defined_centers": ["Sacral", "Solar Plexus", "throat", "sacral", "Moon"],
 "channels": [
  {"name": "34-20", "description": "<p>Energy to <strong>sustain</strong> work.</p>"},
  {"name": "59-6", "description": "plain text"}
 ]
}`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var request = Request{
	BirthUTC: time.Date(1996, 9, 18, 2, 56, 0, 0, time.UTC),
	Lat:      37.5665,
	Lon:      126.978,
}

type recordingObserver struct {
	calls, failures atomic.Int32
}

func (o *recordingObserver) RecordUpstream(_ string, err error) {
	o.calls.Add(1)
	if err != nil {
		o.failures.Add(1)
	}
}

func TestProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		var got Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.True(t, request.BirthUTC.Equal(got.BirthUTC))
		_, _ = io.WriteString(w, profileBody)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := New(srv.URL, quietLogger(), WithAPIKey("secret"), WithObserver(obs))
	p, err := c.Profile(context.Background(), request)
	require.NoError(t, err)

	assert.Equal(t, ManifestingGenerator, p.Type)
	assert.Equal(t, AuthorityEmotional, p.Authority)
	assert.Equal(t, "3/5", p.Line)
	assert.Equal(t, []Center{Sacral, SolarPlexus, Throat}, p.DefinedCenters)
	assert.Equal(t, []Center{Head, Ajna, G, Heart, Spleen, Root}, p.OpenCenters)
	assert.True(t, p.GeneratorFamily())
	assert.True(t, p.Defined(SolarPlexus))
	assert.True(t, p.Open(Root))

	require.Len(t, p.Channels, 2)
	assert.Contains(t, p.Channels[0].Description, "**sustain**")
	assert.NotContains(t, p.Channels[0].Description, "<p>")
	assert.Equal(t, "plain text", p.Channels[1].Description)
	assert.Equal(t, int32(1), obs.calls.Load())
}

func TestProfileRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, profileBody)
	}))
	defer srv.Close()

	c := New(srv.URL, quietLogger(), WithRetryDelay(time.Millisecond))
	p, err := c.Profile(context.Background(), request)
	require.NoError(t, err)
	assert.Equal(t, ManifestingGenerator, p.Type)
	assert.Equal(t, int32(3), calls.Load())
}

func TestProfileGivesUp(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
	}{
		{"client error is not retried", http.StatusUnauthorized, 1},
		{"server error exhausts attempts", http.StatusServiceUnavailable, defaultAttempts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				http.Error(w, "no", tt.status)
			}))
			defer srv.Close()

			obs := &recordingObserver{}
			c := New(srv.URL, quietLogger(), WithRetryDelay(time.Millisecond), WithObserver(obs))
			_, err := c.Profile(context.Background(), request)
			assert.Error(t, err)
			assert.Equal(t, tt.wantCalls, calls.Load())
			assert.Equal(t, int32(1), obs.failures.Load())
		})
	}
}

func TestProfileNotConfigured(t *testing.T) {
	_, err := New("", quietLogger()).Profile(context.Background(), request)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestProfileCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, profileBody)
	}))
	defer srv.Close()

	store, err := httpcache.New(context.Background(), httpcache.Options{TTL: time.Hour}, quietLogger())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	c := New(srv.URL, quietLogger(), WithHTTPClient(httpcache.NewClient(store, srv.Client(), quietLogger())))
	for range 3 {
		_, err := c.Profile(context.Background(), request)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())

	other := request
	other.Lat = 35.1
	_, err = c.Profile(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestOpenCenters(t *testing.T) {
	assert.Len(t, OpenCenters(nil), 9)
	assert.Empty(t, OpenCenters(AllCenters[:]))

	c, ok := ParseCenter("Solar_Plexus")
	assert.True(t, ok)
	assert.Equal(t, SolarPlexus, c)
	_, ok = ParseCenter("moon")
	assert.False(t, ok)
}

func TestNilProfile(t *testing.T) {
	var p *Profile
	assert.False(t, p.Defined(Sacral))
	assert.False(t, p.Open(Sacral))
	assert.False(t, p.GeneratorFamily())
}
