// The status package serves the status page and the Prometheus metrics
// over HTTP.
//
// The /status/report request displays the last periodic summary and the
// most recent decode events.  The /metrics request returns the metrics.
package status

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/goblimey/go-gpsnav/metrics"
	"github.com/goblimey/go-gpsnav/nav/utils"
	"github.com/goblimey/go-gpsnav/status/reportfeed"
)

const pageHeader = `<html>
<head>
<title>gpsnav status</title>
<meta http-equiv="refresh" content="10">
</head>
<body>
`

const pageFooter = `</body>
</html>
`

// shutdownTimeout is the time allowed for requests in flight when the
// server is stopped.
const shutdownTimeout = 5 * time.Second

// Server serves the status page.
type Server struct {
	feed    *reportfeed.ReportFeed
	metrics *metrics.Collector
	logger  *slog.Logger
}

// New creates a server.  The collector may be nil, in which case the
// default Prometheus registry is served.
func New(feed *reportfeed.ReportFeed, collector *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	return &Server{feed: feed, metrics: collector, logger: logger}
}

// Handler returns the HTTP handler for the status requests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status/report", s.report)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(pageHeader))
	w.Write(s.feed.Status())
	w.Write([]byte(pageFooter))
}

// ListenAndServe serves the status requests on the given address until the
// context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve serves the status requests on the listener until the context is
// cancelled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("status server listening", "address", listener.Addr().String())
		errChan <- server.Serve(listener)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errChan; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
