package decoder

import (
	"github.com/goblimey/go-gpsnav/nav/almanac"
	"github.com/goblimey/go-gpsnav/nav/ephemeris"
	"github.com/goblimey/go-gpsnav/nav/iono"
	"github.com/goblimey/go-gpsnav/nav/utcmodel"
	"github.com/goblimey/go-gpsnav/nav/utils"
)

// IsEphemerisConsistent returns true if subframes 1, 2 and 3 have all
// been seen and their issue of data values agree: the two copies of the
// IODE are equal to each other and to the bottom 8 bits of the IODC.  A
// mismatch means the satellite changed its data part way through.  It
// has no side effects.
func (d *Decoder) IsEphemerisConsistent() bool {
	if d.towBySubframe[0] == 0 || d.towBySubframe[1] == 0 || d.towBySubframe[2] == 0 {
		return false
	}

	iode := d.eph.IODESubframe2
	return iode == d.eph.IODESubframe3 &&
		d.eph.IODC&0xff == iode &&
		iode != utils.InvalidIOD
}

// IsAlmanacValid returns true if an almanac page has been decoded and not
// yet delivered and the almanac reference week has been received.  It
// has no side effects.
func (d *Decoder) IsAlmanacValid() bool {
	return d.almanacValid && d.wna > 0
}

// IsIonoValid returns true if the ionospheric model is ready for delivery.
func (d *Decoder) IsIonoValid() bool {
	return d.ionoValid
}

// IsUTCModelValid returns true if the UTC model is ready for delivery.
func (d *Decoder) IsUTCModelValid() bool {
	return d.utcModelValid
}

// IsAlmanacWeekValid returns true if subframe 5 page 25 has been received.
func (d *Decoder) IsAlmanacWeekValid() bool {
	return d.almanacWeekValid
}

// Ephemeris returns a copy of the ephemeris and clears its ready flag.
// The copy's Valid field is true if the ephemeris was ready.
func (d *Decoder) Ephemeris() ephemeris.Ephemeris {
	e := d.eph
	e.TOW = d.tow
	e.Integrity = d.integrity
	e.Alert = d.alert
	e.AntiSpoof = d.antiSpoof
	e.Valid = d.ephemerisReady
	d.ephemerisReady = false
	return e
}

// Almanac returns a copy of the most recently completed almanac and clears
// the almanac ready flag.  The copy's Valid field is true if the almanac
// was ready.
func (d *Decoder) Almanac() almanac.Almanac {
	var a almanac.Almanac
	if d.lastAlmanac > 0 {
		a = d.almanacs[d.lastAlmanac-1]
	}
	a.WNA = d.wna
	a.Valid = d.almanacValid
	d.almanacValid = false
	return a
}

// AlmanacFor returns the most recent almanac for the given satellite.  The
// result's Valid field is true if an almanac page for that satellite has
// been received.  It doesn't affect the ready flag.
func (d *Decoder) AlmanacFor(prn int) almanac.Almanac {
	if prn < 1 || prn > utils.MaxPRN {
		return almanac.Almanac{PRN: prn}
	}
	a := d.almanacs[prn-1]
	a.Valid = a.PRN == prn
	a.PRN = prn
	a.WNA = d.wna
	return a
}

// Health returns the 6-bit health of the given satellite from the almanac.
// Zero means all signals are OK.  The result for a PRN outside 1 to 32 is
// -1.
func (d *Decoder) Health(prn int) int {
	if prn < 1 || prn > utils.MaxPRN {
		return -1
	}
	return d.health[prn-1]
}

// Iono returns a copy of the ionospheric model and clears its ready flag.
func (d *Decoder) Iono() iono.Iono {
	i := d.iono
	i.Valid = d.ionoValid
	d.ionoValid = false
	return i
}

// UTCModel returns a copy of the UTC model and clears its ready flag.
func (d *Decoder) UTCModel() utcmodel.Model {
	m := d.utcModel
	m.Valid = d.utcModelValid
	d.utcModelValid = false
	return m
}

// UTCTime converts t, the GPS time in seconds into the current week, to
// UTC using the most recent UTC model and the week number from subframe 1.
// The result is only meaningful once a UTC model has been received.
func (d *Decoder) UTCTime(t float64) float64 {
	return d.utcModel.UTCTime(t, d.eph.WeekNumber)
}

// TOW returns the time of week of the most recent subframe.
func (d *Decoder) TOW() float64 {
	return d.tow
}

// PreviousTOW returns the time of week of the subframe before the most
// recent one.
func (d *Decoder) PreviousTOW() float64 {
	return d.previousTOW
}

// SubframeTOW returns the time of week of the most recent subframe with
// the given ID, or 0 if there hasn't been one.
func (d *Decoder) SubframeTOW(subframeID int) float64 {
	if subframeID < 1 || subframeID > len(d.towBySubframe) {
		return 0
	}
	return d.towBySubframe[subframeID-1]
}

// WeekNumber returns the 10-bit week number from subframe 1.
func (d *Decoder) WeekNumber() int {
	return d.eph.WeekNumber
}
