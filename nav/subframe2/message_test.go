package subframe2

import (
	"log/slog"
	"math"
	"testing"

	"github.com/goblimey/go-gpsnav/nav/fields"
	"github.com/goblimey/go-gpsnav/nav/frame"
	"github.com/goblimey/go-gpsnav/nav/header"
	"github.com/goblimey/go-gpsnav/nav/utils"

	"github.com/google/go-cmp/cmp"
)

// TestGetMessage checks the scaling of the subframe 2 fields, including the
// ones split across two words.
func TestGetMessage(t *testing.T) {
	var fr frame.Frame
	header.New(0x8b, 0, false, 1001, false, false, 2, slog.LevelInfo).Write(&fr)
	fr.WriteUnsigned(fields.IODESubframe2, 0xa5)
	fr.WriteSigned(fields.CRS, -1000)
	fr.WriteSigned(fields.M0, -2000000000)
	fr.WriteUnsigned(fields.Eccentricity, 0xfedcba98)
	fr.WriteUnsigned(fields.SqrtA, 0xa10d1234)
	fr.WriteUnsigned(fields.TOE, 0xffff)
	fr.WriteBool(fields.FitInterval, true)
	fr.WriteUnsigned(fields.AODO, 31)

	got, err := GetMessage(&fr, slog.LevelInfo)
	if err != nil {
		t.Fatal(err)
	}

	var testData = []struct {
		description string
		got         float64
		want        float64
	}{
		{"Crs", got.CRS, -1000 * math.Pow(2, -5)},
		{"M0", got.M0, -2000000000 * math.Pow(2, -31) * utils.GPSPi},
		{"e", got.Eccentricity, float64(0xfedcba98) * math.Pow(2, -33)},
		{"sqrt A", got.SqrtA, float64(0xa10d1234) * math.Pow(2, -19)},
		{"toe", got.TOE, 0xffff * 16},
		{"AODO", float64(got.AODO), 31 * 900},
		{"IODE", float64(got.IODE), 0xa5},
	}

	for _, td := range testData {
		if !utils.EqualRelative(1e-12, td.want, td.got) {
			t.Errorf("%s: want %g got %g", td.description, td.want, td.got)
		}
	}

	if !got.FitInterval {
		t.Error("expected the fit interval flag to be set")
	}
}

func TestGetMessageWrongSubframe(t *testing.T) {
	var fr frame.Frame
	header.New(0x8b, 0, false, 0, false, false, 3, slog.LevelInfo).Write(&fr)

	_, err := GetMessage(&fr, slog.LevelInfo)

	if err == nil {
		t.Fatal("expected an error")
	}
	const want = "expected subframe 2 got 3"
	if err.Error() != want {
		t.Errorf("want error %s got %s", want, err.Error())
	}
}

func TestWriteThenGet(t *testing.T) {
	hdr := header.New(0x8b, 0, false, 1001, false, false, 2, slog.LevelInfo)
	want := New(hdr, 17, 3*fields.CRSLSB, -5*fields.DeltaNLSB, 123456789*fields.M0LSB,
		-7*fields.CUCLSB, 4567*fields.EccentricityLSB, 9*fields.CUSLSB,
		2702000000*fields.SqrtALSB, 7200, false, 1800, slog.LevelInfo)

	var fr frame.Frame
	want.Write(&fr)

	got, err := GetMessage(&fr, slog.LevelInfo)
	if err != nil {
		t.Fatal(err)
	}
	opts := cmp.AllowUnexported(Message{}, header.Header{})
	if !cmp.Equal(want, got, opts) {
		t.Error(cmp.Diff(want, got, opts))
	}
}
