package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry_ImplementsGatherer(t *testing.T) {
	var _ prometheus.Gatherer = NewRegistry()
}

func TestNewRegistry_RegistersRuntimeCollectors(t *testing.T) {
	mfs, err := NewRegistry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	if !names["go_goroutines"] {
		t.Error("expected go runtime metrics")
	}
}

func TestRegistry_RecordRequest_StatusClasses(t *testing.T) {
	tests := []struct {
		status int
		class  string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{304, "3xx"},
		{400, "4xx"},
		{401, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			reg := NewRegistry()
			reg.RecordRequest("GET", "GET /projects/{id}", tt.status, 0.01)

			if got := testutil.ToFloat64(reg.httpRequestsTotal.WithLabelValues("GET", "GET /projects/{id}", tt.class)); got != 1 {
				t.Errorf("status %d: expected one request in class %s, got %v", tt.status, tt.class, got)
			}
		})
	}
}

func TestRegistry_InFlight(t *testing.T) {
	reg := NewRegistry()

	reg.InFlightInc()
	reg.InFlightInc()
	reg.InFlightDec()

	if got := testutil.ToFloat64(reg.httpRequestsInFlight); got != 1 {
		t.Errorf("expected in-flight gauge to be 1, got %v", got)
	}
}

func TestRegistry_DurationHistogram(t *testing.T) {
	reg := NewRegistry()

	reg.RecordRequest("POST", "POST /bookings", 201, 0.123)
	reg.RecordRequest("POST", "POST /bookings", 400, 0.002)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "http_request_duration_seconds" {
			continue
		}
		hist := mf.GetMetric()[0].GetHistogram()
		if hist.GetSampleCount() != 2 {
			t.Errorf("expected 2 samples for the booking route, got %d", hist.GetSampleCount())
		}
		if sum := hist.GetSampleSum(); sum < 0.124 || sum > 0.126 {
			t.Errorf("expected sample sum ~0.125, got %v", sum)
		}
		return
	}
	t.Error("expected http_request_duration_seconds metric")
}
