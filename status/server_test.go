package status

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goblimey/go-gpsnav/clock"
	"github.com/goblimey/go-gpsnav/metrics"
	circularQueue "github.com/goblimey/go-gpsnav/status/circular_queue"
	"github.com/goblimey/go-gpsnav/status/reportfeed"
)

type event string

func (e event) String() string { return string(e) }

func newServer(t *testing.T) (*Server, *reportfeed.ReportFeed, *metrics.Collector) {
	t.Helper()
	collector, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("metrics.New: %v", err)
	}
	clk := clock.NewStoppedClock(time.Date(2022, time.May, 8, 0, 0, 0, 0, time.UTC))
	feed := reportfeed.New(clk, circularQueue.NewCircularQueue(5))
	return New(feed, collector, nil), feed, collector
}

func get(t *testing.T, h http.Handler, method, path string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	body, _ := io.ReadAll(rr.Body)
	return rr.Code, string(body)
}

func TestReport(t *testing.T) {
	server, feed, _ := newServer(t)
	feed.AddEvent(event("PRN 7 ephemeris"))

	code, body := get(t, server.Handler(), http.MethodGet, "/status/report")

	if code != http.StatusOK {
		t.Fatalf("want status 200 got %d", code)
	}
	if !strings.Contains(body, "<title>gpsnav status</title>") {
		t.Errorf("missing page header: %s", body)
	}
	if !strings.Contains(body, "PRN 7 ephemeris") {
		t.Errorf("missing event: %s", body)
	}

	code, _ = get(t, server.Handler(), http.MethodPost, "/status/report")
	if code != http.StatusMethodNotAllowed {
		t.Errorf("want status 405 got %d", code)
	}
}

func TestMetrics(t *testing.T) {
	server, _, collector := newServer(t)
	collector.IncSubframe(3)

	code, body := get(t, server.Handler(), http.MethodGet, "/metrics")

	if code != http.StatusOK {
		t.Fatalf("want status 200 got %d", code)
	}
	if !strings.Contains(body, `gpsnav_subframes_total{subframe="3"} 1`) {
		t.Errorf("missing subframe count: %s", body)
	}
}

// TestServe checks that the server answers requests and stops when the
// context is cancelled.
func TestServe(t *testing.T) {
	server, _, _ := newServer(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Serve(ctx, listener)
	}()

	resp, err := http.Get("http://" + listener.Addr().String() + "/status/report")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("want status 200 got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-errChan:
		if err != nil {
			t.Errorf("want nil error got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
