package subframe5

import (
	"log/slog"
	"testing"

	"github.com/goblimey/go-gpsnav/nav/almanacpage"
	"github.com/goblimey/go-gpsnav/nav/fields"
	"github.com/goblimey/go-gpsnav/nav/frame"
	"github.com/goblimey/go-gpsnav/nav/header"

	"github.com/google/go-cmp/cmp"
)

var cmpOpts = cmp.AllowUnexported(Message{}, almanacpage.Message{}, header.Header{})

func newHeader() *header.Header {
	return header.New(0x8b, 0, false, 1001, false, false, 5, slog.LevelInfo)
}

// TestReferenceTime checks that page 25 is decoded.  The reference time
// is sent in units of 4096 seconds.
func TestReferenceTime(t *testing.T) {
	var health [24]int
	for i := range health {
		health[i] = (i * 7) & 0x3f
	}
	page := ReferenceTime{TOA: 147 * 4096, WNA: 209, SVHealth: health}
	want := New(newHeader(), 1, SVIDHealth, &page, slog.LevelInfo)

	var fr frame.Frame
	want.Write(&fr)

	got, err := GetMessage(&fr, slog.LevelInfo)
	if err != nil {
		t.Fatal(err)
	}

	if !cmp.Equal(want, got, cmpOpts) {
		t.Error(cmp.Diff(want, got, cmpOpts))
	}

	if fr.ReadUnsigned(fields.TOA) != 147 {
		t.Errorf("want raw toa 147 got %d", fr.ReadUnsigned(fields.TOA))
	}
}

func TestAlmanac(t *testing.T) {
	almanac := almanacpage.New(newHeader(), 1, 3, 0, 0, 0, 0, 0x3f,
		10000000*fields.AlmanacSqrtALSB, 0, 0, 0, 0, 0, slog.LevelInfo)
	want := New(newHeader(), 1, 3, almanac, slog.LevelInfo)

	var fr frame.Frame
	want.Write(&fr)

	got, err := GetMessage(&fr, slog.LevelInfo)
	if err != nil {
		t.Fatal(err)
	}

	if !cmp.Equal(want, got, cmpOpts) {
		t.Error(cmp.Diff(want, got, cmpOpts))
	}
}

func TestPagesNotDecoded(t *testing.T) {
	var testData = []struct {
		dataID int
		svID   int
	}{
		{0, 1}, {0, 24}, {1, 0}, {1, 25}, {1, 50}, {1, 63},
	}

	for _, td := range testData {
		var fr frame.Frame
		New(newHeader(), td.dataID, td.svID, nil, slog.LevelInfo).Write(&fr)

		got, err := GetMessage(&fr, slog.LevelInfo)
		if err != nil {
			t.Errorf("SV ID %d: %v", td.svID, err)
			continue
		}
		if got.Page != nil {
			t.Errorf("SV ID %d data ID %d: want no page got %T", td.svID, td.dataID, got.Page)
		}
	}
}

func TestGetMessageWrongSubframe(t *testing.T) {
	var fr frame.Frame
	fr.WriteUnsigned(fields.SubframeID, 4)

	const wantError = "expected subframe 5 got 4"
	_, err := GetMessage(&fr, slog.LevelInfo)
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Error() != wantError {
		t.Errorf("want %s got %s", wantError, err.Error())
	}
}
