// Package personality fetches a personality profile (type, authority,
// defined centers) for a birth instant from an external HTTP API.
package personality

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/codeGROOVE-dev/retry"
)

// ErrNotConfigured is returned when no endpoint is set.
var ErrNotConfigured = errors.New("personality API not configured")

const (
	defaultTimeout  = 10 * time.Second
	defaultAttempts = 3
	maxBodyBytes    = 1 << 20
	upstreamName    = "personality"
)

// Types.
const (
	Generator            = "generator"
	ManifestingGenerator = "manifesting-generator"
	Projector            = "projector"
	Manifestor           = "manifestor"
	Reflector            = "reflector"
)

// Authorities.
const (
	AuthorityEmotional     = "emotional"
	AuthoritySacral        = "sacral"
	AuthoritySplenic       = "splenic"
	AuthorityEgo           = "ego"
	AuthoritySelfProjected = "self-projected"
	AuthorityMental        = "mental"
	AuthorityLunar         = "lunar"
)

// Doer is satisfied by *http.Client and *httpcache.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer records upstream outcomes.
type Observer interface {
	RecordUpstream(upstream string, err error)
}

// Request identifies the birth instant.
type Request struct {
	BirthUTC time.Time `json:"birth_utc"`
	Lat      float64   `json:"lat"`
	Lon      float64   `json:"lon"`
}

// Channel is a defined channel with its description rendered as Markdown.
type Channel struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Profile is the normalized API result.
type Profile struct {
	Type              string    `json:"type"`
	Authority         string    `json:"authority"`
	Line              string    `json:"profile"`
	NotSelfTheme      string    `json:"not_self_theme"`
	Motivation        string    `json:"motivation"`
	MotivationShadow  string    `json:"motivation_shadow"`
	Perspective       string    `json:"perspective"`
	PerspectiveShadow string    `json:"perspective_shadow"`
	DefinedCenters    []Center  `json:"defined_centers"`
	OpenCenters       []Center  `json:"open_centers"`
	Channels          []Channel `json:"channels"`
}

// Defined reports whether c is a defined center.
func (p *Profile) Defined(c Center) bool {
	return p != nil && slices.Contains(p.DefinedCenters, c)
}

// Open reports whether c is an open center.
func (p *Profile) Open(c Center) bool {
	return p != nil && slices.Contains(p.OpenCenters, c)
}

// GeneratorFamily reports whether the type is a generator or manifesting
// generator.
func (p *Profile) GeneratorFamily() bool {
	return p != nil && (p.Type == Generator || p.Type == ManifestingGenerator)
}

type apiChannel struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type apiResponse struct {
	Type              string       `json:"type"`
	Authority         string       `json:"authority"`
	Profile           string       `json:"profile"`
	NotSelfTheme      string       `json:"not_self_theme"`
	Motivation        string       `json:"motivation"`
	MotivationShadow  string       `json:"motivation_shadow"`
	Perspective       string       `json:"perspective"`
	PerspectiveShadow string       `json:"perspective_shadow"`
	DefinedCenters    []string     `json:"defined_centers"`
	Channels          []apiChannel `json:"channels"`
}

// Client calls the personality API.
type Client struct {
	http     Doer
	observer Observer
	logger   *slog.Logger
	endpoint string
	apiKey   string
	timeout  time.Duration
	delay    time.Duration
	attempts uint
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport, typically an *httpcache.Client.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.http = d
		}
	}
}

// WithAPIKey sets the X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithObserver records upstream outcomes.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithRetryDelay sets the initial backoff between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.delay = d }
}

// New returns a Client for endpoint.
func New(endpoint string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		http:     &http.Client{},
		logger:   logger,
		endpoint: endpoint,
		timeout:  defaultTimeout,
		delay:    time.Second,
		attempts: defaultAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Profile fetches the profile for req. Server errors and transport failures
// are retried with backoff; client errors are not.
func (c *Client) Profile(ctx context.Context, req Request) (*Profile, error) {
	if c.endpoint == "" {
		return nil, ErrNotConfigured
	}
	req.BirthUTC = req.BirthUTC.UTC()
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	start := time.Now()
	var data []byte
	err = retry.Do(
		func() error {
			var err error
			data, err = c.post(ctx, body)
			return err
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("retrying personality request", "attempt", n+1, "error", err)
		}),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if c.observer != nil {
		c.observer.RecordUpstream(upstreamName, err)
	}
	if err != nil {
		c.logger.Warn("personality request failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	var raw apiResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding personality response: %w", err)
	}
	return c.normalize(raw), nil
}

func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("personality request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug("failed to close response body", "error", err)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("personality API server error: %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		c.logger.Debug("personality API rejected request", "status", resp.StatusCode, "body", string(data))
		return nil, retry.Unrecoverable(fmt.Errorf("personality API status %d", resp.StatusCode))
	}
	c.logger.Debug("personality response", "bytes", len(data), "cached", resp.Header.Get("X-From-Cache") != "")
	return data, nil
}

func (c *Client) normalize(raw apiResponse) *Profile {
	p := &Profile{
		Type:              slug(raw.Type),
		Authority:         slug(raw.Authority),
		Line:              strings.TrimSpace(raw.Profile),
		NotSelfTheme:      slug(raw.NotSelfTheme),
		Motivation:        strings.TrimSpace(raw.Motivation),
		MotivationShadow:  strings.TrimSpace(raw.MotivationShadow),
		Perspective:       strings.TrimSpace(raw.Perspective),
		PerspectiveShadow: strings.TrimSpace(raw.PerspectiveShadow),
		DefinedCenters:    []Center{},
		Channels:          []Channel{},
	}
	for _, name := range raw.DefinedCenters {
		center, ok := ParseCenter(name)
		if !ok {
			c.logger.Warn("unknown center in personality response", "center", name)
			continue
		}
		if !slices.Contains(p.DefinedCenters, center) {
			p.DefinedCenters = append(p.DefinedCenters, center)
		}
	}
	p.OpenCenters = OpenCenters(p.DefinedCenters)

	for _, ch := range raw.Channels {
		p.Channels = append(p.Channels, Channel{Name: ch.Name, Description: c.markdown(ch.Description)})
	}
	return p
}

// markdown converts an HTML channel description to Markdown, keeping the
// input when conversion fails.
func (c *Client) markdown(html string) string {
	if !strings.Contains(html, "<") {
		return strings.TrimSpace(html)
	}
	out, err := md.ConvertString(html)
	if err != nil {
		c.logger.Debug("html to markdown failed", "error", err)
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(out)
}

// slug lowercases s and joins words with dashes: "Manifesting Generator"
// becomes "manifesting-generator".
func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(s))), "-")
}
