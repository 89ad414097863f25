// Package metrics records resolution pipeline metrics through OpenTelemetry
// and exposes them in Prometheus format.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/koltyakov/aocd/internal/domain"
)

const meterName = "github.com/koltyakov/aocd"

// Recorder receives pipeline events.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Recorder interface {
	CacheLookup(ctx context.Context, hit bool)
	Fetch(ctx context.Context, err error)
	CacheWrite(ctx context.Context, err error)
	Resolve(ctx context.Context, key domain.PuzzleKey, duration time.Duration, err error)
}

// Provider owns the meter provider and the Prometheus registry backing it.
type Provider struct {
	mp       *sdkmetric.MeterProvider
	registry *prometheus.Registry
	recorder *recorder
}

// New creates a provider with its own Prometheus registry so several
// providers can coexist in one process.
func New() (*Provider, error) {
	reg := prometheus.NewRegistry()
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp))
	rec, err := newRecorder(mp.Meter(meterName))
	if err != nil {
		_ = mp.Shutdown(context.Background())
		return nil, err
	}
	return &Provider{mp: mp, registry: reg, recorder: rec}, nil
}

// Recorder returns the recorder bound to this provider.
func (p *Provider) Recorder() Recorder {
	return p.recorder
}

// Handler serves the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}

type recorder struct {
	cacheLookups metric.Int64Counter
	fetches      metric.Int64Counter
	cacheWrites  metric.Int64Counter
	resolves     metric.Int64Counter
	resolveHist  metric.Float64Histogram
}

func newRecorder(meter metric.Meter) (*recorder, error) {
	cacheLookups, err := meter.Int64Counter(
		"aocd.cache.lookups",
		metric.WithDescription("Input cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}
	fetches, err := meter.Int64Counter(
		"aocd.upstream.fetches",
		metric.WithDescription("Upstream input fetches by outcome"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}
	cacheWrites, err := meter.Int64Counter(
		"aocd.cache.writes",
		metric.WithDescription("Input cache writes by outcome"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, err
	}
	resolves, err := meter.Int64Counter(
		"aocd.resolve.total",
		metric.WithDescription("Resolved puzzle requests by error kind"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}
	resolveHist, err := meter.Float64Histogram(
		"aocd.resolve.duration",
		metric.WithDescription("Puzzle resolution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	return &recorder{
		cacheLookups: cacheLookups,
		fetches:      fetches,
		cacheWrites:  cacheWrites,
		resolves:     resolves,
		resolveHist:  resolveHist,
	}, nil
}

func (r *recorder) CacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (r *recorder) Fetch(ctx context.Context, err error) {
	r.fetches.Add(ctx, 1, metric.WithAttributes(outcome(err)))
}

func (r *recorder) CacheWrite(ctx context.Context, err error) {
	r.cacheWrites.Add(ctx, 1, metric.WithAttributes(outcome(err)))
}

func (r *recorder) Resolve(ctx context.Context, key domain.PuzzleKey, duration time.Duration, err error) {
	kind := "none"
	if err != nil {
		kind = domain.KindOf(err).String()
	}
	attrs := []attribute.KeyValue{attribute.String("error_kind", kind)}
	// Unsupported keys come straight from clients; labelling them by year
	// would let callers mint series at will.
	if domain.KindOf(err) != domain.KindUnsupported {
		attrs = append(attrs, attribute.Int("year", int(key.Year)))
	}
	opt := metric.WithAttributes(attrs...)
	r.resolves.Add(ctx, 1, opt)
	r.resolveHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func outcome(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("outcome", "error")
	}
	return attribute.String("outcome", "ok")
}

// Noop returns a recorder that discards every event.
func Noop() Recorder {
	return noopRecorder{}
}

type noopRecorder struct{}

func (noopRecorder) CacheLookup(context.Context, bool)                               {}
func (noopRecorder) Fetch(context.Context, error)                                    {}
func (noopRecorder) CacheWrite(context.Context, error)                               {}
func (noopRecorder) Resolve(context.Context, domain.PuzzleKey, time.Duration, error) {}
