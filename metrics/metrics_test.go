package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	collector.IncSubframe(1)
	collector.IncSubframe(1)
	collector.IncSubframe(4)
	collector.IncParityErrors()
	collector.IncRecord(KindEphemeris)
	collector.AddFrameCRCErrors(3)
	collector.AddFrameCRCErrors(0)
	collector.SetTrackedSatellites(7)

	if got := testutil.ToFloat64(collector.Subframes.WithLabelValues("1")); got != 2 {
		t.Errorf("gpsnav_subframes_total{subframe=1} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.Subframes.WithLabelValues("4")); got != 1 {
		t.Errorf("gpsnav_subframes_total{subframe=4} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.ParityErrors); got != 1 {
		t.Errorf("gpsnav_parity_errors_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.Records.WithLabelValues(KindEphemeris)); got != 1 {
		t.Errorf("gpsnav_records_total{kind=ephemeris} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.FrameCRCErrors); got != 3 {
		t.Errorf("gpsnav_frame_crc_errors_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(collector.TrackedSatellites); got != 7 {
		t.Errorf("gpsnav_tracked_satellites = %v, want 7", got)
	}
}

// TestRegisterTwice checks that a second collector on the same registry
// shares the existing metrics.
func TestRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	second, err := New(reg)
	if err != nil {
		t.Fatalf("second New: %v", err)
	}

	first.IncParityErrors()
	second.IncParityErrors()

	if got := testutil.ToFloat64(first.ParityErrors); got != 2 {
		t.Errorf("gpsnav_parity_errors_total = %v, want 2", got)
	}
}

func TestNilCollector(t *testing.T) {
	var collector *Collector
	// None of these should panic.
	collector.IncSubframe(1)
	collector.IncParityErrors()
	collector.IncRecord(KindAlmanac)
	collector.AddFrameCRCErrors(1)
	collector.SetTrackedSatellites(1)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	collector.IncRecord(KindUTC)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), `gpsnav_records_total{kind="utc"} 1`) {
		t.Errorf("metrics output missing record count:\n%s", body)
	}
}
