// The metrics package holds the Prometheus collectors for the navigation
// message decoder.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Record kinds used as the "kind" label of gpsnav_records_total.
const (
	KindEphemeris = "ephemeris"
	KindAlmanac   = "almanac"
	KindIono      = "iono"
	KindUTC       = "utc"
)

// Collector exposes the decoder metrics.  A nil *Collector is valid and
// records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Subframes         *prometheus.CounterVec
	ParityErrors      prometheus.Counter
	Records           *prometheus.CounterVec
	FrameCRCErrors    prometheus.Counter
	TrackedSatellites prometheus.Gauge
}

// New registers the decoder metrics against the given registerer,
// defaulting to the global Prometheus registry when nil.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	subframes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gpsnav_subframes_total",
		Help: "Number of subframes decoded, labeled by subframe ID.",
	}, []string{"subframe"})
	subframes, err := registerCounterVec(reg, subframes, "gpsnav_subframes_total")
	if err != nil {
		return nil, err
	}

	parity := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gpsnav_parity_errors_total",
		Help: "Number of subframes rejected by the word parity check.",
	})
	parity, err = registerCounter(reg, parity, "gpsnav_parity_errors_total")
	if err != nil {
		return nil, err
	}

	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gpsnav_records_total",
		Help: "Number of validated records delivered, labeled by kind.",
	}, []string{"kind"})
	records, err = registerCounterVec(reg, records, "gpsnav_records_total")
	if err != nil {
		return nil, err
	}

	crc := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gpsnav_frame_crc_errors_total",
		Help: "Number of frame log records rejected by the CRC check.",
	})
	crc, err = registerCounter(reg, crc, "gpsnav_frame_crc_errors_total")
	if err != nil {
		return nil, err
	}

	tracked := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gpsnav_tracked_satellites",
		Help: "Number of satellites with a running decoder.",
	})
	tracked, err = registerGauge(reg, tracked, "gpsnav_tracked_satellites")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:          gatherer,
		Subframes:         subframes,
		ParityErrors:      parity,
		Records:           records,
		FrameCRCErrors:    crc,
		TrackedSatellites: tracked,
	}, nil
}

// Handler exposes a /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// IncSubframe counts a decoded subframe.
func (c *Collector) IncSubframe(subframeID int) {
	if c == nil || c.Subframes == nil {
		return
	}
	c.Subframes.WithLabelValues(strconv.Itoa(subframeID)).Inc()
}

// IncParityErrors counts a subframe that failed the parity check.
func (c *Collector) IncParityErrors() {
	if c == nil || c.ParityErrors == nil {
		return
	}
	c.ParityErrors.Inc()
}

// IncRecord counts a validated record of the given kind.
func (c *Collector) IncRecord(kind string) {
	if c == nil || c.Records == nil {
		return
	}
	c.Records.WithLabelValues(kind).Inc()
}

// AddFrameCRCErrors adds n to the frame log CRC error count.
func (c *Collector) AddFrameCRCErrors(n int) {
	if c == nil || c.FrameCRCErrors == nil || n <= 0 {
		return
	}
	c.FrameCRCErrors.Add(float64(n))
}

// SetTrackedSatellites sets the number of satellites being decoded.
func (c *Collector) SetTrackedSatellites(n int) {
	if c == nil || c.TrackedSatellites == nil {
		return
	}
	c.TrackedSatellites.Set(float64(n))
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
