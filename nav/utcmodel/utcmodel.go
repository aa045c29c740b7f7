// The utcmodel package defines the UTC model record and converts GPS time
// to UTC using it, including the handling of a scheduled leap second as
// described in IS-GPS-200 section 20.3.3.5.2.4.
package utcmodel

import (
	"fmt"
	"math"

	"github.com/goblimey/go-gpsnav/nav/utils"
)

// Model holds the UTC parameters from subframe 4 page 18.
type Model struct {
	// A0 - the offset of GPS time from UTC, seconds.
	A0 float64

	// A1 - the drift of GPS time relative to UTC, seconds/second.
	A1 float64

	// TOT - the reference time of the model, seconds into week WNT.
	TOT float64

	// WNT - the reference week, modulo 256.
	WNT int

	// DeltaTLS - leap seconds before the next scheduled event.
	DeltaTLS int

	// WNLSF - the week of the next leap second event, modulo 256.
	WNLSF int

	// DN - the day of week WNLSF at the end of which the event happens.
	DN int

	// DeltaTLSF - leap seconds after the event.
	DeltaTLSF int

	Valid bool
}

// String returns a readable version of the model.
func (m *Model) String() string {
	return fmt.Sprintf("UTC A0 %g A1 %g tot %.0f WNt %d leap seconds %d, %d from week %d day %d valid %v\n",
		m.A0, m.A1, m.TOT, m.WNT, m.DeltaTLS, m.DeltaTLSF, m.WNLSF, m.DN, m.Valid)
}

// weekDiff returns a - b for two week numbers of which at least one is
// only known modulo 256.  WNLSF and WNt are the 8 least significant bits
// of the full week, so the difference is taken modulo 256.  The result is
// in the range -128 to 127.
func weekDiff(a, b int) int {
	return int(int8(a - b))
}

// offset returns the difference between GPS time and UTC at time t in
// week, given the number of leap seconds.
func (m *Model) offset(t float64, week, leapSeconds int) float64 {
	return float64(leapSeconds) + m.A0 +
		m.A1*(t-m.TOT+utils.SecondsInWeek*float64(weekDiff(week, m.WNT)))
}

// UTCTime converts t, a GPS time in seconds since the start of the given
// week, to UTC.  The week may be the 10-bit broadcast week or the full
// week.  The result is the UTC time of day added to the start of the
// current half day, in seconds.  It's only meaningful if the model is
// valid.
func (m *Model) UTCTime(t float64, week int) float64 {
	deltaTUTC := m.offset(t, week, m.DeltaTLS)

	var dayTime float64
	weeksToEvent := weekDiff(m.WNLSF, week)
	switch {
	case weeksToEvent > 0:
		dayTime = math.Mod(t-deltaTUTC, utils.SecondsInDay)

	case weeksToEvent == 0:
		event := float64(m.DN * utils.SecondsInDay)
		if math.Abs(t-event) > utils.SixHours {
			dayTime = math.Mod(t-deltaTUTC, utils.SecondsInDay)
		} else {
			// Within six hours of the event the day that contains it has
			// 86400 + DeltaTLSF - DeltaTLS seconds.
			w := float64(int32(math.Mod(t-deltaTUTC-utils.SecondsInHalfDay, utils.SecondsInDay))) +
				utils.SecondsInHalfDay
			dayTime = math.Mod(w, float64(utils.SecondsInDay+m.DeltaTLSF-m.DeltaTLS))
		}
		if t-event > utils.SixHours {
			deltaTUTC = m.offset(t, week, m.DeltaTLSF)
			dayTime = math.Mod(t-deltaTUTC, utils.SecondsInDay)
		}

	default:
		// The event is in the past.
		deltaTUTC = m.offset(t, week, m.DeltaTLSF)
		dayTime = math.Mod(t-deltaTUTC, utils.SecondsInDay)
	}

	return utils.SecondsInHalfDay*math.Floor(t/utils.SecondsInHalfDay) + dayTime
}
