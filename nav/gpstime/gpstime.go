// The gpstime package converts between GPS week and time of week and UTC.
// GPS time started at midnight at the start of the 6th January 1980 and
// doesn't have leap seconds, so it's ahead of UTC by the number of leap
// seconds added since then (18 in 2024).
package gpstime

import (
	"math"
	"time"

	"github.com/goblimey/go-gpsnav/nav/utils"
)

const week = 7 * 24 * time.Hour

// StartOfWeek returns the start of the given full GPS week as a time in
// the GPS time scale, that is, without any leap second correction.
func StartOfWeek(fullWeek int) time.Time {
	return utils.GPSEpoch.AddDate(0, 0, 7*fullWeek)
}

// TimeOf returns the UTC time given a full GPS week, a time of week in
// seconds and the number of leap seconds.
func TimeOf(fullWeek int, tow float64, leapSeconds int) time.Time {
	whole, frac := math.Modf(tow)
	d := time.Duration(whole)*time.Second + time.Duration(frac*float64(time.Second))
	return StartOfWeek(fullWeek).Add(d - time.Duration(leapSeconds)*time.Second)
}

// WeekOf returns the full GPS week and the time of week in seconds of a
// UTC time, given the number of leap seconds.
func WeekOf(t time.Time, leapSeconds int) (int, float64) {
	sinceEpoch := t.Add(time.Duration(leapSeconds) * time.Second).Sub(utils.GPSEpoch)
	fullWeek := int(sinceEpoch / week)
	tow := (sinceEpoch - time.Duration(fullWeek)*week).Seconds()
	return fullWeek, tow
}

// ResolveWeek converts the week number broadcast in subframe 1, which is
// the full week modulo 1024, to a full week, choosing the one nearest to
// the given time.
func ResolveWeek(week10 int, now time.Time) int {
	nowWeek, _ := WeekOf(now, 0)
	week10 %= utils.WeekRollover

	candidate := nowWeek - nowWeek%utils.WeekRollover + week10
	switch {
	case candidate-nowWeek > utils.WeekRollover/2:
		candidate -= utils.WeekRollover
	case nowWeek-candidate > utils.WeekRollover/2:
		candidate += utils.WeekRollover
	}
	return candidate
}
