package main

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goblimey/go-gpsnav/receiver"
)

// satelliteSummary holds the counts for one satellite.
type satelliteSummary struct {
	subframes   int
	rejected    int
	ephemerides int
	almanacs    int
	lastTOW     float64
}

// summary counts the decode events for the periodic report.  It's updated
// by the display goroutine and read by the cron job.
type summary struct {
	mutex      sync.Mutex
	satellites map[int]*satelliteSummary
}

func newSummary() *summary {
	return &summary{satellites: make(map[int]*satelliteSummary)}
}

// Add counts an event.
func (s *summary) Add(event receiver.Event) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sat, ok := s.satellites[event.PRN]
	if !ok {
		sat = &satelliteSummary{}
		s.satellites[event.PRN] = sat
	}

	if event.Err != nil {
		sat.rejected++
		return
	}
	sat.subframes++
	sat.lastTOW = event.TOW
	if event.Ephemeris != nil {
		sat.ephemerides++
	}
	if event.Almanac != nil {
		sat.almanacs++
	}
}

// Satellites returns the number of satellites seen.
func (s *summary) Satellites() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.satellites)
}

// Subframes returns the number of subframes decoded.
func (s *summary) Subframes() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	total := 0
	for _, sat := range s.satellites {
		total += sat.subframes
	}
	return total
}

// String returns a table of the counts, one line per satellite.
func (s *summary) String() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	prns := make([]int, 0, len(s.satellites))
	for prn := range s.satellites {
		prns = append(prns, prn)
	}
	sort.Ints(prns)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d satellites\n", len(prns))
	sb.WriteString("PRN subframes rejected ephemerides almanacs last TOW\n")
	for _, prn := range prns {
		sat := s.satellites[prn]
		fmt.Fprintf(&sb, "%3d %9d %8d %11d %8d %8.0f\n",
			prn, sat.subframes, sat.rejected, sat.ephemerides, sat.almanacs, sat.lastTOW)
	}
	return sb.String()
}
