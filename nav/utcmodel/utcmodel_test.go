package utcmodel

import (
	"math"
	"testing"

	"github.com/goblimey/go-gpsnav/nav/utils"
)

const week = 2209

// TestUTCTimeEventInFuture checks the conversion when the leap second
// event is weeks away.  The current leap second count is used.
func TestUTCTimeEventInFuture(t *testing.T) {
	m := Model{A0: 1e-8, A1: 2e-14, TOT: 61440, WNT: week % 256,
		DeltaTLS: 18, WNLSF: (week + 2) % 256, DN: 7, DeltaTLSF: 19, Valid: true}

	var testData = []float64{0, 1, 43199, 43200, 100000.5, 345600, 604799}

	for _, gpsTime := range testData {
		offset := 18 + m.A0 + m.A1*(gpsTime-m.TOT)
		dayTime := math.Mod(gpsTime-offset, 86400)
		want := 43200*math.Floor(gpsTime/43200) + dayTime

		got := m.UTCTime(gpsTime, week)
		if !utils.EqualWithin(6, want, got) {
			t.Errorf("t %f: want %f got %f", gpsTime, want, got)
		}
	}
}

// TestUTCTimeEventInPast checks that once the event has passed the new
// leap second count is used.
func TestUTCTimeEventInPast(t *testing.T) {
	m := Model{A0: 0, A1: 0, TOT: 0, WNT: week % 256,
		DeltaTLS: 17, WNLSF: (week - 1) % 256, DN: 3, DeltaTLSF: 18, Valid: true}

	var testData = []struct {
		gpsTime float64
		want    float64
	}{
		{100000, 43200*2 + math.Mod(100000-18, 86400)},
		{518400 + 30000, 518400 + 30000 - 18},
	}

	for _, td := range testData {
		got := m.UTCTime(td.gpsTime, week)
		if !utils.EqualWithin(6, td.want, got) {
			t.Errorf("t %f: want %f got %f", td.gpsTime, td.want, got)
		}
	}
}

// TestUTCTimeEventThisWeek checks the three cases that apply in the week
// of the event.
func TestUTCTimeEventThisWeek(t *testing.T) {
	// The event is at the end of day 6, second 518400 of the week.
	m := Model{WNT: week % 256, DeltaTLS: 18, WNLSF: week % 256, DN: 6,
		DeltaTLSF: 19, Valid: true}

	var testData = []struct {
		description string
		gpsTime     float64
		want        float64
	}{
		// More than six hours before the event - old count.
		{"before", 400000, 43200*9 + math.Mod(400000-18, 86400)},
		// One hour before the event - the day is one second longer.
		// W = int(fmod(514800-18-43200, 86400)) + 43200 = 82782.
		{"within", 514800, 43200*11 + 82782},
		// More than six hours after the event - new count.
		{"after", 548400, 548400 - 19},
	}

	for _, td := range testData {
		got := m.UTCTime(td.gpsTime, week)
		if !utils.EqualWithin(6, td.want, got) {
			t.Errorf("%s: want %f got %f", td.description, td.want, got)
		}
	}
}

// TestUTCTimeWeekRollover checks that the modulo 256 week numbers are
// compared correctly across a rollover.
func TestUTCTimeWeekRollover(t *testing.T) {
	// Week 1023 is 255 modulo 256, so week 1 modulo 256 is two weeks ahead.
	future := Model{WNT: 255, DeltaTLS: 18, WNLSF: 1, DN: 1, DeltaTLSF: 19}
	got := future.UTCTime(1000, 1023)
	want := math.Mod(1000.0-18, 86400)
	if !utils.EqualWithin(6, want, got) {
		t.Errorf("future: want %f got %f", want, got)
	}

	// Week 2 is 2 modulo 256, so week 255 is three weeks behind.
	past := Model{WNT: 2, DeltaTLS: 18, WNLSF: 255, DN: 1, DeltaTLSF: 19}
	got = past.UTCTime(1000, 2)
	want = math.Mod(1000.0-19, 86400)
	if !utils.EqualWithin(6, want, got) {
		t.Errorf("past: want %f got %f", want, got)
	}
}

// TestUTCTimeEightBitWeek checks that WNLSF is taken as the bottom 8 bits
// of the week.  Week 300 is 44 modulo 256, so WNLSF 100 is 56 weeks in
// the future and the current leap seconds apply, not the new value.
func TestUTCTimeEightBitWeek(t *testing.T) {
	m := Model{WNLSF: 100, DeltaTLS: 17, DeltaTLSF: 18}
	got := m.UTCTime(200000, 300)
	const want = 199983.0
	if !utils.EqualWithin(6, want, got) {
		t.Errorf("want %f got %f", want, got)
	}
}

func TestWeekDiff(t *testing.T) {
	var testData = []struct {
		a, b int
		want int
	}{
		{10, 8, 2},
		{8, 10, -2},
		{1, 255, 2},
		{255, 1, -2},
		{1025, 1, 0},
		{2209 % 256, 2209, 0},
	}

	for _, td := range testData {
		got := weekDiff(td.a, td.b)
		if got != td.want {
			t.Errorf("%d - %d: want %d got %d", td.a, td.b, td.want, got)
		}
	}
}
