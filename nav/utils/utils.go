// the utils package contains general-purpose functions and constants for the
// GPS navigation message software.
package utils

import (
	"io"
	"log/slog"
	"math"
	"time"
)

// Geometry of a GPS L1 C/A subframe.  A subframe is ten 30-bit words, 300
// bits in all.  The receiver hands each word over as a 32-bit value, four
// bytes, so a raw subframe is 40 bytes.
const WordsPerSubframe = 10
const DataBitsPerWord = 30
const BitsPerSubframe = WordsPerSubframe * DataBitsPerWord
const BytesPerWireWord = 4
const BytesPerRawSubframe = WordsPerSubframe * BytesPerWireWord

// BytesPerFrame is the number of bytes needed to hold the 300 bits of a
// subframe, packed.
const BytesPerFrame = (BitsPerSubframe + 7) / 8

// Preamble is the 8-bit pattern that starts the TLM word of every subframe.
const Preamble = 0x8b

// MaxPRN is the highest GPS satellite number.  Satellite numbers run from 1.
const MaxPRN = 32

// GPSPi is the value of pi used by the GPS interface control document.  It
// must be used when converting semicircles to radians.
const GPSPi = 3.1415926535898

// Seconds in various periods.
const SecondsInHalfDay = 43200
const SecondsInDay = 86400
const SecondsInWeek = 604800

// SixHours is the window either side of a leap second event in which the
// day length is stretched.
const SixHours = 21600

// TOWScale is the size of the time of week count in the HOW word.  The
// count is in units of six seconds.
const TOWScale = 6

// WeekRollover is the number of weeks covered by the 10-bit week number.
const WeekRollover = 1024

// InvalidIOD is the issue of data value stored before any subframe carrying
// one has been seen.
const InvalidIOD = -1

// DateLayout defines the layout of dates when they are displayed.  It
// produces "yyyy-mm-dd hh:mm:ss.ms timeshift timezone", for example
// "2023-05-12 00:00:05 +0000 UTC"
const DateLayout = "2006-01-02 15:04:05.999 -0700 MST"

// LocationUTC is the UTC timezone - set up by the init function.
var LocationUTC *time.Location

// GPSEpoch is the start of GPS week zero, midnight at the start of
// Sunday 6th January 1980, UTC.
var GPSEpoch time.Time

func init() {
	LocationUTC, _ = time.LoadLocation("UTC")
	GPSEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, LocationUTC)
}

// GetBitsAsUint64 extracts len bits from a slice of bytes, starting
// at bit position pos and returns them as a uint.  See RTKLIB's getbitu.
//
// Note that pos is zero based.  Bit 0 is the top bit of the first byte.
func GetBitsAsUint64(buff []byte, pos uint, len uint) uint64 {
	// The C version in RTKLIB is:
	//
	// extern unsigned int getbitu(const unsigned char *buff, int pos, int len)
	// {
	//     unsigned int bits=0;
	//     int i;
	//     for (i=pos;i<pos+len;i++) bits=(bits<<1)+((buff[i/8]>>(7-i%8))&1u);
	//     return bits;
	// }
	//
	var result uint64 = 0
	for i := pos; i < pos+len; i++ {
		bit := uint64(buff[i/8]>>(7-i%8)) & 1
		// Shift the result up one bit and glue in the extracted bit.
		result = (result << 1) | bit
	}
	return result
}

// GetBitsAsInt64 extracts len bits from a slice of bytes, starting at bit
// position pos, interprets the bits as a twos-complement integer and returns
// the result as a 64-bit signed int.  See RTKLIB's getbits() function.
func GetBitsAsInt64(buff []byte, pos uint, len uint) int64 {
	uval := GetBitsAsUint64(buff, pos, len)
	if len == 0 || len >= 64 {
		return int64(uval)
	}
	// If the first bit is a 1, the result is negative.  Fill the bits
	// above the field with ones.
	if uval>>(len-1) == 1 {
		return int64(uval | (^uint64(0) << len))
	}

	return int64(uval)
}

// SetBitsFromUint64 is the inverse of GetBitsAsUint64.  It writes the bottom
// len bits of value into buff starting at bit position pos.
func SetBitsFromUint64(buff []byte, pos uint, len uint, value uint64) {
	for i := uint(0); i < len; i++ {
		bit := (value >> (len - 1 - i)) & 1
		bytePos := (pos + i) / 8
		mask := byte(1) << (7 - (pos+i)%8)
		if bit == 1 {
			buff[bytePos] |= mask
		} else {
			buff[bytePos] &^= mask
		}
	}
}

// EqualWithin returns true if two float values are equal within
// the given number of decimal places.
func EqualWithin(precision uint, f1, f2 float64) bool {

	// see http://docs.oracle.com/cd/E19957-01/806-3568/ncg_goldberg.html

	var scaleFactor float64 = math.Pow(10, float64(precision))

	f1 = math.Round(f1 * scaleFactor)
	f2 = math.Round(f2 * scaleFactor)

	return math.Abs(f1-f2) <= 0.1
}

// EqualRelative returns true if two float values agree to within the given
// fraction of the larger.  Scaled navigation values span many orders of
// magnitude (2 to the -55 up to 2 to the 16) so a fixed number of decimal
// places doesn't work for them.
func EqualRelative(tolerance, f1, f2 float64) bool {
	if f1 == f2 {
		return true
	}
	largest := math.Max(math.Abs(f1), math.Abs(f2))
	return math.Abs(f1-f2) <= tolerance*largest
}

// DiscardLogger returns a logger that writes nothing.  It's used when a
// caller supplies a nil logger.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
