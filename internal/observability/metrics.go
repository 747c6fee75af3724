package observability

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/osisteam/catalogue-backend"

// Metrics holds the RED instruments of the HTTP surface, aggregate writes and
// notification delivery. It satisfies the aggregate Hooks interface.
type Metrics struct {
	apiRequests   metric.Int64Counter
	apiLatency    metric.Float64Histogram
	apiInflight   metric.Int64UpDownCounter
	aggOps        metric.Int64Counter
	aggLatency    metric.Float64Histogram
	aggConcurrent metric.Int64Counter
	notifications metric.Int64Counter
}

// NewMetrics registers the instruments on meter, or on the global meter provider when nil.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	m := &Metrics{}
	var err error
	if m.apiRequests, err = meter.Int64Counter("catalogue.api.requests",
		metric.WithDescription("API requests by method/route/status.")); err != nil {
		return nil, err
	}
	if m.apiLatency, err = meter.Float64Histogram("catalogue.api.duration",
		metric.WithDescription("API request latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10)); err != nil {
		return nil, err
	}
	if m.apiInflight, err = meter.Int64UpDownCounter("catalogue.api.inflight",
		metric.WithDescription("In-flight API requests.")); err != nil {
		return nil, err
	}
	if m.aggOps, err = meter.Int64Counter("catalogue.aggregate.operations",
		metric.WithDescription("Aggregate writes by operation/status.")); err != nil {
		return nil, err
	}
	if m.aggLatency, err = meter.Float64Histogram("catalogue.aggregate.duration",
		metric.WithDescription("Aggregate write latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5)); err != nil {
		return nil, err
	}
	if m.aggConcurrent, err = meter.Int64Counter("catalogue.aggregate.concurrent",
		metric.WithDescription("Aggregate writes that lost a row lock.")); err != nil {
		return nil, err
	}
	if m.notifications, err = meter.Int64Counter("catalogue.notifications",
		metric.WithDescription("Notification events by kind/status.")); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status", strconv.Itoa(status)),
	)
	ctx := context.Background()
	m.apiRequests.Add(ctx, 1, attrs)
	m.apiLatency.Record(ctx, dur.Seconds(), attrs)
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Add(context.Background(), 1)
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Add(context.Background(), -1)
	}
}

func (m *Metrics) ObserveOperation(name, status string, dur time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("op", name), attribute.String("status", status))
	ctx := context.Background()
	m.aggOps.Add(ctx, 1, attrs)
	m.aggLatency.Record(ctx, dur.Seconds(), attrs)
}

func (m *Metrics) IncConcurrent(name string) {
	if m != nil {
		m.aggConcurrent.Add(context.Background(), 1, metric.WithAttributes(attribute.String("op", name)))
	}
}

// ObserveNotification counts an event as queued, dropped, sent or failed.
func (m *Metrics) ObserveNotification(kind, status string) {
	if m != nil {
		m.notifications.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("status", status),
		))
	}
}
