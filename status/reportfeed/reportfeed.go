// The reportfeed package produces the body of the status page: the last
// periodic summary and the most recent decode events.
package reportfeed

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goblimey/go-gpsnav/clock"
	circularQueue "github.com/goblimey/go-gpsnav/status/circular_queue"
)

// timestampLayout is the layout of the summary timestamp.
const timestampLayout = "Mon Jan _2 15:04:05 2006"

// ReportFeed holds the material for the status report.
type ReportFeed struct {
	clock       clock.Clock
	summary     string
	summaryTime *time.Time

	// RecentEvents contains the events recently seen.
	RecentEvents *circularQueue.CircularQueue

	*sync.Mutex
}

// New creates and returns a new ReportFeed object.  The ReportFeed object
// contains a pointer to a mutex so always use this method to create one.
// If the clock is nil the system clock is used.
func New(clk clock.Clock, queue *circularQueue.CircularQueue) *ReportFeed {
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	var mu sync.Mutex
	reportFeed := ReportFeed{clock: clk, RecentEvents: queue, Mutex: &mu}

	return &reportFeed
}

// AddEvent adds an event to the recent events queue.
func (rf *ReportFeed) AddEvent(event fmt.Stringer) {
	rf.RecentEvents.Add(event)
}

// RecordSummary takes a timestamped copy of a summary.
func (rf *ReportFeed) RecordSummary(summary string) {
	t := rf.clock.Now()
	rf.Lock()
	defer rf.Unlock()
	rf.summary = summary
	rf.summaryTime = &t
}

// Status returns the HTML status report.
func (rf *ReportFeed) Status() []byte {
	summaryLeader := "no summary yet"
	summary := ""

	rf.Lock()
	if rf.summaryTime != nil {
		summaryLeader = rf.summaryTime.Format(timestampLayout)
		summary = Sanitise(rf.summary)
	}
	rf.Unlock()

	var events strings.Builder
	for _, event := range rf.RecentEvents.GetItems() {
		events.WriteString(Sanitise(event.String()))
		events.WriteString("\n")
	}

	reportBody := fmt.Sprintf(reportFormat, summaryLeader, summary, events.String())

	return []byte(reportBody)
}

// Sanitise edits a string, replacing some dangerous HTML characters.
func Sanitise(s string) string {
	s = strings.Replace(s, "&", "&amp;", -1)
	s = strings.Replace(s, "<", "&lt;", -1)
	s = strings.Replace(s, ">", "&gt;", -1)
	return s
}
