package header

import (
	"log/slog"
	"testing"

	"github.com/goblimey/go-gpsnav/nav/frame"

	"github.com/kylelemons/godebug/diff"
)

func TestNew(t *testing.T) {
	want := Header{
		Preamble:   0x8b,
		TLMMessage: 0x1234,
		Integrity:  true,
		TOWCount:   100,
		TOW:        600,
		Alert:      false,
		AntiSpoof:  true,
		SubframeID: 3,
		logLevel:   slog.LevelInfo,
	}

	got := New(0x8b, 0x1234, true, 100, false, true, 3, slog.LevelInfo)

	if want != *got {
		t.Errorf("want: %v\n got: %v\n", want, *got)
	}
}

// TestGetHeader checks that a header written to a frame is read back.
func TestGetHeader(t *testing.T) {
	var testData = []struct {
		description string
		header      *Header
	}{
		{"subframe 1", New(0x8b, 0, false, 1, false, false, 1, slog.LevelInfo)},
		{"max TOW", New(0x8b, 0x3fff, true, 100799, true, true, 5, slog.LevelInfo)},
		{"bad preamble", New(0x74, 0, false, 0, false, true, 7, slog.LevelInfo)},
	}

	for _, td := range testData {
		var fr frame.Frame
		td.header.Write(&fr)

		got := GetHeader(&fr, slog.LevelInfo)

		if *td.header != *got {
			t.Errorf("%s: want %v got %v", td.description, *td.header, *got)
		}
		if GetSubframeID(&fr) != td.header.SubframeID {
			t.Errorf("%s: want subframe ID %d got %d",
				td.description, td.header.SubframeID, GetSubframeID(&fr))
		}
	}
}

func TestString(t *testing.T) {
	var testData = []struct {
		description string
		header      *Header
		want        string
	}{
		{
			"info",
			New(0x8b, 0x1234, false, 10, true, false, 2, slog.LevelInfo),
			"subframe 2, TOW 60, integrity false, alert true, anti-spoof false\n",
		},
		{
			"debug",
			New(0x8b, 0x1234, false, 10, true, false, 2, slog.LevelDebug),
			"subframe 2, TOW 60 (count 10), preamble 0x8b, TLM message 0x1234, integrity false, alert true, anti-spoof false\n",
		},
		{
			"bad preamble",
			New(0x74, 0, true, 0, false, true, 4, slog.LevelInfo),
			"subframe 4, TOW 0, integrity true, alert false, anti-spoof true\n" +
				"warning: preamble is 0x74, expected 0x8b\n",
		},
	}

	for _, td := range testData {
		got := td.header.String()
		if td.want != got {
			t.Errorf("%s: %s", td.description, diff.Diff(td.want, got))
		}
	}
}
