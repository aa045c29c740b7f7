package clock

import (
	"testing"
	"time"
)

func TestSteppingClock(t *testing.T) {
	t1 := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)

	var testData = []struct {
		clock *SteppingClock
		want  []time.Time
	}{
		{NewSteppingClock(t1, t2), []time.Time{t1, t2, t2}},
		{NewSteppingClock(), []time.Time{time.Unix(0, 0).UTC(), time.Unix(0, 0).UTC()}},
	}

	for i, td := range testData {
		for j, want := range td.want {
			got := td.clock.Now()
			if !want.Equal(got) {
				t.Errorf("%d %d: want %v got %v", i, j, want, got)
			}
		}
	}
}

func TestStoppedClock(t *testing.T) {
	start := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	c := NewStoppedClock(start)

	if !c.Now().Equal(start) {
		t.Errorf("want %v got %v", start, c.Now())
	}

	c.Advance(time.Minute)
	want := start.Add(time.Minute)
	if !c.Now().Equal(want) {
		t.Errorf("want %v got %v", want, c.Now())
	}

	c.SetTime(start)
	if !c.Now().Equal(start) {
		t.Errorf("want %v got %v", start, c.Now())
	}
}
