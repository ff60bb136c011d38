// Package geo resolves free-text birthplaces to coordinates and IANA
// timezones. Place search calls the Photon geocoder; timezone lookup is an
// offline point-in-polygon query.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// DefaultEndpoint is the public Photon search API.
const DefaultEndpoint = "https://photon.komoot.io/api/"

const (
	defaultLimit   = 5
	maxLimit       = 10
	defaultTimeout = 5 * time.Second
	minQueryLength = 2
)

// placeTags are queried concurrently and merged in this order.
var placeTags = []string{"place:city", "place:town"}

// HTTPClient interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives one call per upstream request.
type Observer interface {
	RecordUpstream(upstream string, err error)
}

// Place is a candidate birthplace.
type Place struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	State     string  `json:"state,omitempty"`
	Country   string  `json:"country,omitempty"`
	Label     string  `json:"label"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Resolver searches places and maps coordinates to timezones.
type Resolver struct {
	httpClient HTTPClient
	zones      ZoneFinder
	observer   Observer
	logger     *slog.Logger
	endpoint   string
	language   string
	timeout    time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEndpoint overrides the Photon endpoint.
func WithEndpoint(endpoint string) Option {
	return func(r *Resolver) {
		if endpoint != "" {
			r.endpoint = endpoint
		}
	}
}

// WithLanguage sets the result language ("en", "de", "fr", or "default").
func WithLanguage(lang string) Option {
	return func(r *Resolver) {
		if lang != "" {
			r.language = lang
		}
	}
}

// WithTimeout bounds each upstream request.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithHTTPClient sets the client used for place searches.
func WithHTTPClient(c HTTPClient) Option {
	return func(r *Resolver) {
		if c != nil {
			r.httpClient = c
		}
	}
}

// WithZoneFinder replaces the offline timezone finder.
func WithZoneFinder(f ZoneFinder) Option {
	return func(r *Resolver) {
		if f != nil {
			r.zones = f
		}
	}
}

// WithObserver reports upstream outcomes.
func WithObserver(o Observer) Option {
	return func(r *Resolver) {
		r.observer = o
	}
}

// NewResolver creates a Resolver.
func NewResolver(logger *slog.Logger, opts ...Option) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{
		httpClient: http.DefaultClient,
		logger:     logger,
		endpoint:   DefaultEndpoint,
		language:   "en",
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.zones == nil {
		r.zones = defaultFinder(logger)
	}
	return r
}

// SearchPlaces returns up to limit candidate places for query. Upstream
// failures are logged and yield an empty result; it never returns an error.
func (r *Resolver) SearchPlaces(ctx context.Context, query string, limit int) []Place {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLength {
		return []Place{}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	results := make([][]Place, len(placeTags))
	g, gctx := errgroup.WithContext(ctx)
	for i, tag := range placeTags {
		g.Go(func() error {
			results[i] = r.search(gctx, query, tag, limit)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // search never returns an error

	seen := make(map[string]bool)
	places := make([]Place, 0, limit)
	for _, batch := range results {
		for _, p := range batch {
			if len(places) == limit {
				return places
			}
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			places = append(places, p)
		}
	}
	return places
}

type photonResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			OSMType     string `json:"osm_type"`
			Name        string `json:"name"`
			State       string `json:"state"`
			Country     string `json:"country"`
			CountryCode string `json:"countrycode"`
			OSMID       int64  `json:"osm_id"`
		} `json:"properties"`
	} `json:"features"`
}

func (r *Resolver) search(ctx context.Context, query, tag string, limit int) []Place {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("lang", r.language)
	params.Set("osm_tag", tag)
	apiURL := r.endpoint + "?" + params.Encode()

	body, err := r.fetch(ctx, apiURL)
	if r.observer != nil {
		r.observer.RecordUpstream("geocode", err)
	}
	if err != nil {
		r.logger.Warn("place search failed", "query", query, "tag", tag, "error", err)
		return nil
	}

	var result photonResponse
	if err := json.Unmarshal(body, &result); err != nil {
		r.logger.Warn("place search returned invalid JSON", "query", query, "tag", tag, "error", err)
		return nil
	}

	places := make([]Place, 0, len(result.Features))
	for _, f := range result.Features {
		props := f.Properties
		if props.Name == "" || len(f.Geometry.Coordinates) < 2 {
			continue
		}
		lon, lat := f.Geometry.Coordinates[0], f.Geometry.Coordinates[1]
		p := Place{
			ID:        fmt.Sprintf("%s%d", props.OSMType, props.OSMID),
			Name:      props.Name,
			State:     props.State,
			Country:   props.Country,
			Latitude:  lat,
			Longitude: lon,
			Timezone:  r.ResolveTimezone(lat, lon),
		}
		p.Label = label(p)
		places = append(places, p)
	}
	r.logger.Debug("place search", "query", query, "tag", tag, "results", len(places))
	return places
}

func (r *Resolver) fetch(ctx context.Context, apiURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			r.logger.Debug("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

func label(p Place) string {
	parts := []string{p.Name}
	if p.State != "" && p.State != p.Name {
		parts = append(parts, p.State)
	}
	if p.Country != "" {
		parts = append(parts, p.Country)
	}
	return strings.Join(parts, ", ")
}
