package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maypok86/otter/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codeGROOVE-dev/fourpillars/pkg/geo"
	"github.com/codeGROOVE-dev/fourpillars/pkg/httpcache"
	"github.com/codeGROOVE-dev/fourpillars/pkg/metrics"
	"github.com/codeGROOVE-dev/fourpillars/pkg/report"
	"github.com/codeGROOVE-dev/fourpillars/pkg/solartime"
)

const (
	maxBodyBytes     = 64 << 10
	analysisTimeout  = 30 * time.Second
	responseCacheTTL = time.Hour
	defaultRateLimit = 15
)

type rateLimiter struct {
	requests map[string][]time.Time
	now      func() time.Time
	limit    int
	mu       sync.Mutex
}

func newRateLimiter(limit int) *rateLimiter {
	if limit <= 0 {
		limit = defaultRateLimit
	}
	return &rateLimiter{
		requests: make(map[string][]time.Time),
		now:      time.Now,
		limit:    limit,
	}
}

// allow admits at most limit requests per IP in any one-minute window.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-time.Minute)

	var valid []time.Time
	for _, t := range rl.requests[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[ip] = valid
		return false
	}

	rl.requests[ip] = append(valid, now)
	return true
}

type serverDeps struct {
	analyzer  *report.Analyzer
	resolver  *geo.Resolver
	observer  metrics.Observer
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
	rateLimit int
	geoLimit  int
}

type server struct {
	analyzer *report.Analyzer
	resolver *geo.Resolver
	observer metrics.Observer
	gatherer prometheus.Gatherer
	cache    *otter.Cache[string, []byte]
	limiter  *rateLimiter
	logger   *slog.Logger
	geoLimit int
}

func newServer(d serverDeps) *server {
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return &server{
		analyzer: d.analyzer,
		resolver: d.resolver,
		observer: d.observer,
		gatherer: d.gatherer,
		cache: otter.Must(&otter.Options[string, []byte]{
			MaximumSize:      10_000,
			ExpiryCalculator: otter.ExpiryWriting[string, []byte](responseCacheTTL),
		}),
		limiter:  newRateLimiter(d.rateLimit),
		logger:   d.logger,
		geoLimit: d.geoLimit,
	}
}

// close stops the response cache's background goroutines.
func (s *server) close() {
	s.cache.StopAllGoroutines()
}

func (s *server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/report", s.handleReport)
	mux.HandleFunc("GET /api/v1/places", s.handlePlaces)
	mux.HandleFunc("GET /api/v1/timezone", s.handleTimezone)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return s.wrap(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *server) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if err := recover(); err != nil {
				const size = 64 << 10
				buf := make([]byte, size)
				buf = buf[:runtime.Stack(buf, false)]

				s.logger.Error("PANIC: Request handler crashed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestID,
					"client_ip", clientIP(r),
					"user_agent", r.Header.Get("User-Agent"),
					"stack", string(buf))
				http.Error(rec, "Internal server error", http.StatusInternalServerError)
			}
			if s.observer != nil {
				route := r.Pattern
				if route == "" {
					route = "unmatched"
				}
				s.observer.RecordRequest(route, rec.status)
			}
		}()

		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Cache-Control", "no-store")

		handler.ServeHTTP(rec, r)
	})
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("JSON encoding failed", "error", err)
		http.Error(w, "Encoding failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("Failed to write response", "error", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, code, msg, details string) {
	s.writeJSON(w, status, errorResponse{Error: msg, Details: details, Code: code})
}

func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ip := clientIP(r)
	requestID := w.Header().Get("X-Request-ID")

	if !s.limiter.allow(ip) {
		s.logger.Warn("Rate limit exceeded", "request_id", requestID, "client_ip", ip)
		s.writeError(w, http.StatusTooManyRequests, "RATE_LIMIT", "Rate limit exceeded", "Please wait a minute and try again.")
		return
	}

	var req report.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.logger.Info("Invalid request body", "request_id", requestID, "error", err, "client_ip", ip)
		s.writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request", err.Error())
		return
	}
	in, err := report.ParseRequest(req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid input", err.Error())
		return
	}

	// Parsed requests are re-encoded so equivalent spellings share a key.
	canonical, err := json.Marshal(req)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Encoding failed", "")
		return
	}
	cacheKey := httpcache.Key("report", canonical)
	if data, found := s.cache.GetIfPresent(cacheKey); found {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "memory-hit")
		if _, err := w.Write(data); err != nil {
			s.logger.Debug("Failed to write cached response", "request_id", requestID, "error", err)
		}
		s.logger.Info("Report request completed (memory cache)",
			"request_id", requestID, "duration_ms", time.Since(start).Milliseconds())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), analysisTimeout)
	defer cancel()
	bundle, err := s.analyzer.Analyze(ctx, in)
	if err != nil {
		switch {
		case errors.Is(err, solartime.ErrUnknownZone):
			s.writeError(w, http.StatusBadRequest, "UNKNOWN_TIMEZONE", "Unknown timezone", err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			s.writeError(w, http.StatusGatewayTimeout, "TIMEOUT", "Analysis took too long", "Please try again.")
		default:
			s.logger.Error("Analysis failed", "request_id", requestID, "error", err,
				"duration_ms", time.Since(start).Milliseconds())
			s.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Analysis failed", "")
		}
		return
	}

	data, err := json.Marshal(bundle)
	if err != nil {
		s.logger.Error("JSON encoding failed", "request_id", requestID, "error", err)
		http.Error(w, "Encoding failed", http.StatusInternalServerError)
		return
	}
	s.cache.Set(cacheKey, data)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("Failed to write response", "request_id", requestID, "error", err)
		return
	}
	s.logger.Info("Report request completed",
		"request_id", requestID,
		"id", bundle.ID,
		"limited", bundle.LimitedAnalysis,
		"cache", "miss",
		"duration_ms", time.Since(start).Milliseconds())
}

func (s *server) handlePlaces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		s.writeError(w, http.StatusBadRequest, "MISSING_QUERY", "Missing query", "Pass the place name as ?q=")
		return
	}
	limit := s.geoLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "Invalid limit", err.Error())
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), analysisTimeout)
	defer cancel()
	places := s.resolver.SearchPlaces(ctx, q, limit)
	s.writeJSON(w, http.StatusOK, map[string]any{"places": places})
}

func (s *server) handleTimezone(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err := errors.Join(errLat, errLon); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_COORDINATES", "Invalid coordinates", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"timezone": s.resolver.ResolveTimezone(lat, lon),
		"lat":      lat,
		"lon":      lon,
	})
}

func (*server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck // best effort
}
