// The receiver package runs one navigation message decoder per satellite.
// Frame log records arrive on a single channel and are handed to a worker
// goroutine for the record's PRN, created the first time that PRN is seen.
// Each worker owns its decoder, so no decoder state is shared between
// goroutines.  After every subframe the worker publishes an Event carrying
// any record that has just become ready.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/goblimey/go-gpsnav/clock"
	"github.com/goblimey/go-gpsnav/metrics"
	"github.com/goblimey/go-gpsnav/nav/almanac"
	"github.com/goblimey/go-gpsnav/nav/decoder"
	"github.com/goblimey/go-gpsnav/nav/ephemeris"
	"github.com/goblimey/go-gpsnav/nav/frame"
	"github.com/goblimey/go-gpsnav/nav/framelog"
	"github.com/goblimey/go-gpsnav/nav/gpstime"
	"github.com/goblimey/go-gpsnav/nav/iono"
	"github.com/goblimey/go-gpsnav/nav/satellite"
	"github.com/goblimey/go-gpsnav/nav/utcmodel"
	"github.com/goblimey/go-gpsnav/nav/utils"
)

// defaultWorkerBuffer is the capacity of each worker's input channel.  A
// satellite produces a subframe every six seconds so a small buffer is
// plenty.
const defaultWorkerBuffer = 16

// Event describes the result of decoding one subframe.
type Event struct {
	PRN   int
	Block string

	// Subframe is the subframe ID, zero if the subframe was rejected.
	Subframe int

	// Err is set if the subframe was rejected.
	Err error

	// TOW is the time of week from the HOW word, seconds.
	TOW float64

	// Time is TOW as a UTC time.  It's zero until subframe 1 has given
	// the week number.
	Time time.Time

	// UTCTOW is TOW converted by the broadcast UTC model.  It's only set
	// once a UTC model has been received.
	UTCTOW     float64
	HaveUTCTOW bool

	// Records that became ready with this subframe.
	Ephemeris *ephemeris.Ephemeris
	Almanac   *almanac.Almanac
	Iono      *iono.Iono
	UTCModel  *utcmodel.Model
}

// String returns a readable one-line version of the event.
func (e Event) String() string {
	if e.Err != nil {
		return fmt.Sprintf("PRN %d: subframe rejected: %v", e.PRN, e.Err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "PRN %d subframe %d tow %.0f", e.PRN, e.Subframe, e.TOW)
	if !e.Time.IsZero() {
		fmt.Fprintf(&sb, " time %s", e.Time.Format(utils.DateLayout))
	}
	var records []string
	if e.Ephemeris != nil {
		records = append(records, "ephemeris")
	}
	if e.Almanac != nil {
		records = append(records, fmt.Sprintf("almanac PRN %d", e.Almanac.PRN))
	}
	if e.Iono != nil {
		records = append(records, "iono")
	}
	if e.UTCModel != nil {
		records = append(records, "UTC model")
	}
	if len(records) > 0 {
		fmt.Fprintf(&sb, " ready: %s", strings.Join(records, ", "))
	}
	return sb.String()
}

// Receiver distributes frame log records to per-satellite decoders.
type Receiver struct {
	lookup       satellite.BlockLookup
	logger       *slog.Logger
	metrics      *metrics.Collector
	clock        clock.Clock
	filter       func(prn int) bool
	decoderOpts  []decoder.Option
	workerBuffer int
}

// Option configures a Receiver.
type Option func(*Receiver)

// WithClock sets the clock used to resolve the broadcast week number.
func WithClock(clk clock.Clock) Option {
	return func(r *Receiver) {
		r.clock = clk
	}
}

// WithPRNFilter sets a function that chooses which satellites to decode.
func WithPRNFilter(filter func(prn int) bool) Option {
	return func(r *Receiver) {
		r.filter = filter
	}
}

// WithDecoderOptions sets the options given to each decoder.
func WithDecoderOptions(opts ...decoder.Option) Option {
	return func(r *Receiver) {
		r.decoderOpts = opts
	}
}

// New creates a Receiver.  The lookup, logger and metrics may all be nil.
func New(lookup satellite.BlockLookup, logger *slog.Logger, collector *metrics.Collector, opts ...Option) *Receiver {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	r := Receiver{
		lookup:       lookup,
		logger:       logger,
		metrics:      collector,
		clock:        clock.NewSystemClock(),
		workerBuffer: defaultWorkerBuffer,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return &r
}

// Run reads records from the input channel until it's closed or the
// context is cancelled, and sends an event on the output channel for each
// subframe.  It returns when all the workers have finished.  The output
// channel is not closed.
func (r *Receiver) Run(ctx context.Context, in <-chan framelog.Record, out chan<- Event) error {
	workers := make(map[int]chan []byte)
	var wg sync.WaitGroup

	defer func() {
		for _, ch := range workers {
			close(ch)
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case record, ok := <-in:
			if !ok {
				return nil
			}

			if record.PRN < 1 || record.PRN > utils.MaxPRN {
				r.logger.Warn("record ignored", "prn", record.PRN)
				continue
			}
			if r.filter != nil && !r.filter(record.PRN) {
				continue
			}

			ch, found := workers[record.PRN]
			if !found {
				ch = make(chan []byte, r.workerBuffer)
				workers[record.PRN] = ch
				wg.Add(1)
				go r.work(ctx, &wg, record.PRN, ch, out)
				r.metrics.SetTrackedSatellites(len(workers))
				r.logger.Info("tracking satellite", "prn", record.PRN)
			}

			select {
			case ch <- record.Raw:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// work decodes the subframes for one satellite.
func (r *Receiver) work(ctx context.Context, wg *sync.WaitGroup, prn int, in <-chan []byte, out chan<- Event) {
	defer wg.Done()

	w := newWorker(r, prn)
	for raw := range in {
		event := w.decode(raw)
		select {
		case out <- event:
		case <-ctx.Done():
			return
		}
	}
}

// worker holds the state of one satellite.
type worker struct {
	receiver *Receiver
	decoder  *decoder.Decoder

	// utcModel is the most recent UTC model, kept for the leap seconds.
	utcModel *utcmodel.Model
}

func newWorker(r *Receiver, prn int) *worker {
	logger := r.logger.With("component", "decoder")
	return &worker{
		receiver: r,
		decoder:  decoder.New(prn, r.lookup, logger, r.decoderOpts...),
	}
}

// decode decodes one subframe and collects the records it made ready.
func (w *worker) decode(raw []byte) Event {
	d := w.decoder
	collector := w.receiver.metrics
	event := Event{PRN: d.PRN(), Block: d.Block()}

	subframeID, err := d.Decode(raw)
	if err != nil {
		if errors.Is(err, frame.ErrBadParity) {
			collector.IncParityErrors()
		}
		event.Err = err
		return event
	}

	collector.IncSubframe(subframeID)
	event.Subframe = subframeID
	event.TOW = d.TOW()

	if eph := d.Ephemeris(); eph.Valid {
		event.Ephemeris = &eph
		collector.IncRecord(metrics.KindEphemeris)
	}
	// An almanac isn't usable until the reference week has arrived, so
	// leave it in the decoder until then.
	if d.IsAlmanacValid() {
		alm := d.Almanac()
		event.Almanac = &alm
		collector.IncRecord(metrics.KindAlmanac)
	}
	if i := d.Iono(); i.Valid {
		event.Iono = &i
		collector.IncRecord(metrics.KindIono)
	}
	if m := d.UTCModel(); m.Valid {
		event.UTCModel = &m
		w.utcModel = &m
		collector.IncRecord(metrics.KindUTC)
	}

	leapSeconds := 0
	if w.utcModel != nil {
		leapSeconds = w.utcModel.DeltaTLS
		event.UTCTOW = d.UTCTime(event.TOW)
		event.HaveUTCTOW = true
	}

	// The week number is only known once subframe 1 has arrived.
	if d.SubframeTOW(1) != 0 {
		week := gpstime.ResolveWeek(d.WeekNumber(), w.receiver.clock.Now())
		event.Time = gpstime.TimeOf(week, event.TOW, leapSeconds)
	}

	return event
}
