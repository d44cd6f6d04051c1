// Package observe provides observability primitives for the assistant:
// OpenTelemetry metrics with a Prometheus exporter bridge, plus the HTTP
// endpoints that expose them alongside liveness and readiness probes.
//
// A package-level default [Metrics] instance ([DefaultMetrics]) is provided
// for convenience; tests should use [NewMetrics] with a custom
// [metric.MeterProvider] to avoid cross-test pollution.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/orin-ai/orin"

// Metrics holds all OpenTelemetry metric instruments for the assistant.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// WakeEvents counts asleep→awake transitions.
	WakeEvents metric.Int64Counter

	// ConversationCycles counts listen cycles. Use with attribute:
	//   attribute.String("stage", "command"|"idle")
	ConversationCycles metric.Int64Counter

	// RecognitionFailures counts failed speech recognition attempts.
	RecognitionFailures metric.Int64Counter

	// BackendDuration tracks generative backend latency.
	BackendDuration metric.Float64Histogram

	// BackendErrors counts failed generative backend requests.
	BackendErrors metric.Int64Counter

	// SpeakDuration tracks speech synthesis latency.
	SpeakDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for voice-pipeline latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.WakeEvents, err = m.Int64Counter("orin.wake.events",
		metric.WithDescription("Total wake word activations."),
	); err != nil {
		return nil, err
	}
	if met.ConversationCycles, err = m.Int64Counter("orin.conversation.cycles",
		metric.WithDescription("Total listen cycles by stage."),
	); err != nil {
		return nil, err
	}
	if met.RecognitionFailures, err = m.Int64Counter("orin.recognition.failures",
		metric.WithDescription("Total failed speech recognition attempts."),
	); err != nil {
		return nil, err
	}
	if met.BackendDuration, err = m.Float64Histogram("orin.backend.duration",
		metric.WithDescription("Latency of generative backend requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.BackendErrors, err = m.Int64Counter("orin.backend.errors",
		metric.WithDescription("Total failed generative backend requests."),
	); err != nil {
		return nil, err
	}
	if met.SpeakDuration, err = m.Float64Histogram("orin.speak.duration",
		metric.WithDescription("Latency of speech synthesis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordWake records one wake word activation.
func (m *Metrics) RecordWake(ctx context.Context) {
	m.WakeEvents.Add(ctx, 1)
}

// RecordCycle records one listen cycle with its stage attribute.
func (m *Metrics) RecordCycle(ctx context.Context, stage string) {
	m.ConversationCycles.Add(ctx, 1,
		metric.WithAttributes(attribute.String("stage", stage)),
	)
}

// RecordRecognitionFailure records one failed recognition attempt.
func (m *Metrics) RecordRecognitionFailure(ctx context.Context) {
	m.RecognitionFailures.Add(ctx, 1)
}

// RecordBackendRequest records the latency of one generative backend
// request and counts it as an error when err is non-nil.
func (m *Metrics) RecordBackendRequest(ctx context.Context, d time.Duration, err error) {
	m.BackendDuration.Record(ctx, d.Seconds())
	if err != nil {
		m.BackendErrors.Add(ctx, 1)
	}
}

// RecordSpeak records the latency of one synthesis call.
func (m *Metrics) RecordSpeak(ctx context.Context, d time.Duration) {
	m.SpeakDuration.Record(ctx, d.Seconds())
}
