// Package metrics exports pipeline and upstream counters to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric.
const DefaultNamespace = "fourpillars"

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Observer receives pipeline events. A nil *PrometheusObserver is a valid
// no-op Observer.
type Observer interface {
	RecordUpstream(upstream string, err error)
	RecordAnalysis(duration time.Duration, err error)
	RecordReport(osMode string, level int)
	RecordRequest(route string, status int)
}

// PrometheusObserver implements Observer with client_golang collectors.
type PrometheusObserver struct {
	upstream *promclient.CounterVec
	analysis *promclient.HistogramVec
	reports  *promclient.CounterVec
	requests *promclient.CounterVec
}

// NewPrometheusObserver registers the collectors with reg, reusing any that
// are already registered.
func NewPrometheusObserver(namespace string, reg promclient.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = promclient.DefaultRegisterer
	}
	o := &PrometheusObserver{
		upstream: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Calls to external services by upstream and outcome.",
		}, []string{"upstream", "outcome"}),
		analysis: promclient.NewHistogramVec(promclient.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Latency of a full chart analysis.",
			Buckets:   promclient.DefBuckets,
		}, []string{"outcome"}),
		reports: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Reports produced by OS mode and operating level.",
		}, []string{"os_mode", "level"}),
		requests: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP API requests by route and status code.",
		}, []string{"route", "code"}),
	}

	var err error
	if o.upstream, err = register(reg, o.upstream); err != nil {
		return nil, fmt.Errorf("register upstream counter: %w", err)
	}
	if o.analysis, err = register(reg, o.analysis); err != nil {
		return nil, fmt.Errorf("register analysis histogram: %w", err)
	}
	if o.reports, err = register(reg, o.reports); err != nil {
		return nil, fmt.Errorf("register reports counter: %w", err)
	}
	if o.requests, err = register(reg, o.requests); err != nil {
		return nil, fmt.Errorf("register requests counter: %w", err)
	}
	return o, nil
}

func register[C promclient.Collector](reg promclient.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are promclient.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// RecordUpstream counts one upstream call.
func (o *PrometheusObserver) RecordUpstream(upstream string, err error) {
	if o == nil {
		return
	}
	o.upstream.WithLabelValues(upstream, outcome(err)).Inc()
}

// RecordAnalysis observes one pipeline run.
func (o *PrometheusObserver) RecordAnalysis(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.analysis.WithLabelValues(outcome(err)).Observe(duration.Seconds())
}

// RecordReport counts a produced report.
func (o *PrometheusObserver) RecordReport(osMode string, level int) {
	if o == nil {
		return
	}
	o.reports.WithLabelValues(osMode, strconv.Itoa(level)).Inc()
}

// RecordRequest counts an API request.
func (o *PrometheusObserver) RecordRequest(route string, status int) {
	if o == nil {
		return
	}
	o.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

var _ Observer = (*PrometheusObserver)(nil)
