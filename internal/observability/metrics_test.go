package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumWhere(t *testing.T, data metricdata.Aggregation, key, value string) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected aggregation %T", data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestMetricsRecordsAggregateAndAPI(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	m.ObserveOperation("Proposal.Cancel", "success", 10*time.Millisecond)
	m.ObserveOperation("Proposal.Cancel", "in_use", 5*time.Millisecond)
	m.IncConcurrent("Proposal.Consolidate")
	m.ObserveAPI("POST", "/api/proposals/:id/cancel", 409, 20*time.Millisecond)
	m.ApiInflightInc()
	m.ObserveNotification("single_transition", "dropped")

	got := collect(t, reader)
	if n := sumWhere(t, got["catalogue.aggregate.operations"], "op", "Proposal.Cancel"); n != 2 {
		t.Fatalf("aggregate operations=%d", n)
	}
	if n := sumWhere(t, got["catalogue.aggregate.concurrent"], "op", "Proposal.Consolidate"); n != 1 {
		t.Fatalf("concurrent=%d", n)
	}
	if n := sumWhere(t, got["catalogue.api.requests"], "status", "409"); n != 1 {
		t.Fatalf("api requests=%d", n)
	}
	if n := sumWhere(t, got["catalogue.notifications"], "status", "dropped"); n != 1 {
		t.Fatalf("notifications=%d", n)
	}
	if _, ok := got["catalogue.aggregate.duration"].(metricdata.Histogram[float64]); !ok {
		t.Fatalf("missing aggregate latency histogram")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveOperation("x", "success", time.Millisecond)
	m.IncConcurrent("x")
	m.ObserveAPI("GET", "/", 200, time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.ObserveNotification("k", "sent")
}

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" a=1, b = 2 ,bad, =x ")
	if len(got) != 2 || got["a"] != "1" || got["b"] != "2" {
		t.Fatalf("headers=%v", got)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}
