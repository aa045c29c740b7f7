package gpstime

import (
	"testing"
	"time"
)

func TestStartOfWeek(t *testing.T) {
	var testData = []struct {
		week int
		want time.Time
	}{
		{0, time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)},
		{2048, time.Date(2019, time.April, 7, 0, 0, 0, 0, time.UTC)},
		{2209, time.Date(2022, time.May, 8, 0, 0, 0, 0, time.UTC)},
	}

	for _, td := range testData {
		got := StartOfWeek(td.week)
		if !td.want.Equal(got) {
			t.Errorf("week %d: want %v got %v", td.week, td.want, got)
		}
	}
}

// TestTimeOfAndWeekOf checks the conversion to UTC and back.
func TestTimeOfAndWeekOf(t *testing.T) {
	// Four days into week 2209, with 18 leap seconds, is 18 seconds before
	// midnight UTC.
	got := TimeOf(2209, 345600, 18)
	want := time.Date(2022, time.May, 11, 23, 59, 42, 0, time.UTC)
	if !want.Equal(got) {
		t.Errorf("want %v got %v", want, got)
	}

	gotHalf := TimeOf(2209, 0.5, 0)
	wantHalf := time.Date(2022, time.May, 8, 0, 0, 0, 500000000, time.UTC)
	if !wantHalf.Equal(gotHalf) {
		t.Errorf("want %v got %v", wantHalf, gotHalf)
	}

	week, tow := WeekOf(want, 18)
	if week != 2209 {
		t.Errorf("want week 2209 got %d", week)
	}
	if tow != 345600 {
		t.Errorf("want tow 345600 got %f", tow)
	}
}

func TestResolveWeek(t *testing.T) {
	var testData = []struct {
		description string
		week10      int
		now         time.Time
		want        int
	}{
		{"same week", 2209 % 1024, time.Date(2022, time.May, 10, 0, 0, 0, 0, time.UTC), 2209},
		{"last week", 2208 % 1024, time.Date(2022, time.May, 10, 0, 0, 0, 0, time.UTC), 2208},
		// The clock has just passed the rollover but the data is from
		// before it.
		{"before rollover", 1023, time.Date(2019, time.April, 8, 0, 0, 0, 0, time.UTC), 2047},
		// The clock is slow.
		{"after rollover", 1, time.Date(2019, time.April, 1, 0, 0, 0, 0, time.UTC), 2049},
		{"full week given", 2209, time.Date(2022, time.May, 10, 0, 0, 0, 0, time.UTC), 2209},
	}

	for _, td := range testData {
		got := ResolveWeek(td.week10, td.now)
		if td.want != got {
			t.Errorf("%s: want %d got %d", td.description, td.want, got)
		}
	}
}
