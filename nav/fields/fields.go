// The fields package defines the position of every field in the GPS L1 C/A
// navigation message and the scale factor of its least significant bit.
// The positions are the 1-based bit numbers of IS-GPS-200 figures 20-1 and
// 20-2, counting from the start of the subframe, parity bits included.
//
// Every field is checked against the 300-bit frame when the package is
// loaded, so a bad position is found before any data is decoded.
package fields

import (
	"fmt"
	"math"

	"github.com/goblimey/go-gpsnav/nav/frame"
	"github.com/goblimey/go-gpsnav/nav/utils"
)

// The TLM and HOW words, common to all subframes.
var (
	Preamble   = frame.Field{{Pos: 1, Len: 8}}
	TLMMessage = frame.Field{{Pos: 9, Len: 14}}
	Integrity  = frame.Field{{Pos: 23, Len: 1}}
	TOW        = frame.Field{{Pos: 31, Len: 17}}
	Alert      = frame.Field{{Pos: 48, Len: 1}}
	AntiSpoof  = frame.Field{{Pos: 49, Len: 1}}
	SubframeID = frame.Field{{Pos: 50, Len: 3}}
)

// Subframe 1 - clock and health.
var (
	WeekNumber  = frame.Field{{Pos: 61, Len: 10}}
	CodeOnL2    = frame.Field{{Pos: 71, Len: 2}}
	URAIndex    = frame.Field{{Pos: 73, Len: 4}}
	SVHealth    = frame.Field{{Pos: 77, Len: 6}}
	IODC        = frame.Field{{Pos: 83, Len: 2}, {Pos: 211, Len: 8}}
	L2PDataFlag = frame.Field{{Pos: 91, Len: 1}}
	TGD         = frame.Field{{Pos: 197, Len: 8}}
	TOC         = frame.Field{{Pos: 219, Len: 16}}
	AF2         = frame.Field{{Pos: 241, Len: 8}}
	AF1         = frame.Field{{Pos: 249, Len: 16}}
	AF0         = frame.Field{{Pos: 271, Len: 22}}
)

// Subframe 2 - ephemeris part 1.
var (
	IODESubframe2 = frame.Field{{Pos: 61, Len: 8}}
	CRS           = frame.Field{{Pos: 69, Len: 16}}
	DeltaN        = frame.Field{{Pos: 91, Len: 16}}
	M0            = frame.Field{{Pos: 107, Len: 8}, {Pos: 121, Len: 24}}
	CUC           = frame.Field{{Pos: 151, Len: 16}}
	Eccentricity  = frame.Field{{Pos: 167, Len: 8}, {Pos: 181, Len: 24}}
	CUS           = frame.Field{{Pos: 211, Len: 16}}
	SqrtA         = frame.Field{{Pos: 227, Len: 8}, {Pos: 241, Len: 24}}
	TOE           = frame.Field{{Pos: 271, Len: 16}}
	FitInterval   = frame.Field{{Pos: 287, Len: 1}}
	AODO          = frame.Field{{Pos: 288, Len: 5}}
)

// Subframe 3 - ephemeris part 2.
var (
	CIC           = frame.Field{{Pos: 61, Len: 16}}
	Omega0        = frame.Field{{Pos: 77, Len: 8}, {Pos: 91, Len: 24}}
	CIS           = frame.Field{{Pos: 121, Len: 16}}
	I0            = frame.Field{{Pos: 137, Len: 8}, {Pos: 151, Len: 24}}
	CRC           = frame.Field{{Pos: 181, Len: 16}}
	Omega         = frame.Field{{Pos: 197, Len: 8}, {Pos: 211, Len: 24}}
	OmegaDot      = frame.Field{{Pos: 241, Len: 24}}
	IODESubframe3 = frame.Field{{Pos: 271, Len: 8}}
	IDOT          = frame.Field{{Pos: 279, Len: 14}}
)

// Subframes 4 and 5 - the page selector.
var (
	DataID = frame.Field{{Pos: 61, Len: 2}}
	SVID   = frame.Field{{Pos: 63, Len: 6}}
)

// The almanac page, the same in both subframes 4 and 5.
var (
	AlmanacEccentricity = frame.Field{{Pos: 69, Len: 16}}
	AlmanacTOA          = frame.Field{{Pos: 91, Len: 8}}
	AlmanacDeltaI       = frame.Field{{Pos: 99, Len: 16}}
	AlmanacOmegaDot     = frame.Field{{Pos: 121, Len: 16}}
	AlmanacSVHealth     = frame.Field{{Pos: 137, Len: 8}}
	AlmanacSqrtA        = frame.Field{{Pos: 151, Len: 24}}
	AlmanacOmega0       = frame.Field{{Pos: 181, Len: 24}}
	AlmanacOmega        = frame.Field{{Pos: 211, Len: 24}}
	AlmanacM0           = frame.Field{{Pos: 241, Len: 24}}
	AlmanacAF0          = frame.Field{{Pos: 271, Len: 8}, {Pos: 290, Len: 3}}
	AlmanacAF1          = frame.Field{{Pos: 279, Len: 11}}
)

// Subframe 4 page 18 - ionospheric and UTC parameters.
var (
	Alpha0    = frame.Field{{Pos: 69, Len: 8}}
	Alpha1    = frame.Field{{Pos: 77, Len: 8}}
	Alpha2    = frame.Field{{Pos: 91, Len: 8}}
	Alpha3    = frame.Field{{Pos: 99, Len: 8}}
	Beta0     = frame.Field{{Pos: 107, Len: 8}}
	Beta1     = frame.Field{{Pos: 121, Len: 8}}
	Beta2     = frame.Field{{Pos: 129, Len: 8}}
	Beta3     = frame.Field{{Pos: 137, Len: 8}}
	A1        = frame.Field{{Pos: 151, Len: 24}}
	A0        = frame.Field{{Pos: 181, Len: 24}, {Pos: 211, Len: 8}}
	TOT       = frame.Field{{Pos: 219, Len: 8}}
	WNT       = frame.Field{{Pos: 227, Len: 8}}
	DeltaTLS  = frame.Field{{Pos: 241, Len: 8}}
	WNLSF     = frame.Field{{Pos: 249, Len: 8}}
	DN        = frame.Field{{Pos: 257, Len: 8}}
	DeltaTLSF = frame.Field{{Pos: 271, Len: 8}}
)

// HealthSV25To32 holds the positions of the 6-bit health values of
// satellites 25 to 32 in subframe 4 page 25, in satellite order.
var HealthSV25To32 = [8]frame.Field{
	{{Pos: 229, Len: 6}}, {{Pos: 241, Len: 6}}, {{Pos: 247, Len: 6}}, {{Pos: 253, Len: 6}},
	{{Pos: 259, Len: 6}}, {{Pos: 271, Len: 6}}, {{Pos: 277, Len: 6}}, {{Pos: 283, Len: 6}},
}

// Subframe 5 page 25 - almanac reference time and week and the health of
// satellites 1 to 24.
var (
	TOA = frame.Field{{Pos: 69, Len: 8}}
	WNA = frame.Field{{Pos: 77, Len: 8}}
)

// HealthSV1To24 holds the positions of the 6-bit health values of
// satellites 1 to 24 in subframe 5 page 25, in satellite order.  There are
// four to a word, starting with word 4.
var HealthSV1To24 [24]frame.Field

// Scale factors.  Multiply the raw value by the scale factor to get the
// value in seconds, metres, radians, semicircles or whatever.
var (
	TOWLSB = float64(utils.TOWScale)

	TGDLSB = math.Ldexp(1, -31)
	TOCLSB = 16.0
	AF2LSB = math.Ldexp(1, -55)
	AF1LSB = math.Ldexp(1, -43)
	AF0LSB = math.Ldexp(1, -31)

	CRSLSB          = math.Ldexp(1, -5)
	DeltaNLSB       = math.Ldexp(1, -43) * utils.GPSPi
	M0LSB           = math.Ldexp(1, -31) * utils.GPSPi
	CUCLSB          = math.Ldexp(1, -29)
	EccentricityLSB = math.Ldexp(1, -33)
	CUSLSB          = math.Ldexp(1, -29)
	SqrtALSB        = math.Ldexp(1, -19)
	TOELSB          = 16.0
	AODOLSB         = 900.0

	CICLSB      = math.Ldexp(1, -29)
	Omega0LSB   = math.Ldexp(1, -31) * utils.GPSPi
	CISLSB      = math.Ldexp(1, -29)
	I0LSB       = math.Ldexp(1, -31) * utils.GPSPi
	CRCLSB      = math.Ldexp(1, -5)
	OmegaLSB    = math.Ldexp(1, -31) * utils.GPSPi
	OmegaDotLSB = math.Ldexp(1, -43) * utils.GPSPi
	IDOTLSB     = math.Ldexp(1, -43) * utils.GPSPi

	AlmanacEccentricityLSB = math.Ldexp(1, -21)
	AlmanacTOALSB          = math.Ldexp(1, 12)
	AlmanacDeltaILSB       = math.Ldexp(1, -19) * utils.GPSPi
	AlmanacOmegaDotLSB     = math.Ldexp(1, -38) * utils.GPSPi
	AlmanacSqrtALSB        = math.Ldexp(1, -11)
	AlmanacOmega0LSB       = math.Ldexp(1, -23) * utils.GPSPi
	AlmanacOmegaLSB        = math.Ldexp(1, -23) * utils.GPSPi
	AlmanacM0LSB           = math.Ldexp(1, -23) * utils.GPSPi
	AlmanacAF0LSB          = math.Ldexp(1, -20)
	AlmanacAF1LSB          = math.Ldexp(1, -38)

	// The ionospheric coefficients are per semicircle to the power n.
	Alpha0LSB = math.Ldexp(1, -30)
	Alpha1LSB = math.Ldexp(1, -27)
	Alpha2LSB = math.Ldexp(1, -24)
	Alpha3LSB = math.Ldexp(1, -24)
	Beta0LSB  = math.Ldexp(1, 11)
	Beta1LSB  = math.Ldexp(1, 14)
	Beta2LSB  = math.Ldexp(1, 16)
	Beta3LSB  = math.Ldexp(1, 16)

	A1LSB  = math.Ldexp(1, -50)
	A0LSB  = math.Ldexp(1, -30)
	TOTLSB = math.Ldexp(1, 12)

	TOALSB = math.Ldexp(1, 12)
)

// All maps a name to each field so that the fields can be checked in one
// place.  Set up by init.
var All map[string]frame.Field

func init() {
	// Satellites 1-24 in subframe 5 page 25: four 6-bit values in each of
	// words 4 to 9, starting at bit 1 of the word.
	for sv := 0; sv < 24; sv++ {
		word := uint(4 + sv/4)
		pos := (word-1)*utils.DataBitsPerWord + 1 + uint(sv%4)*6
		HealthSV1To24[sv] = frame.Field{{Pos: pos, Len: 6}}
	}

	All = map[string]frame.Field{
		"preamble": Preamble, "tlm message": TLMMessage, "integrity": Integrity,
		"tow": TOW, "alert": Alert, "anti-spoof": AntiSpoof, "subframe id": SubframeID,

		"week number": WeekNumber, "code on L2": CodeOnL2, "URA index": URAIndex,
		"SV health": SVHealth, "IODC": IODC, "L2 P data flag": L2PDataFlag,
		"TGD": TGD, "toc": TOC, "af2": AF2, "af1": AF1, "af0": AF0,

		"IODE subframe 2": IODESubframe2, "Crs": CRS, "delta n": DeltaN, "M0": M0,
		"Cuc": CUC, "e": Eccentricity, "Cus": CUS, "sqrt A": SqrtA, "toe": TOE,
		"fit interval": FitInterval, "AODO": AODO,

		"Cic": CIC, "Omega0": Omega0, "Cis": CIS, "i0": I0, "Crc": CRC,
		"omega": Omega, "OmegaDot": OmegaDot, "IODE subframe 3": IODESubframe3,
		"IDOT": IDOT,

		"data id": DataID, "sv id": SVID,

		"almanac e": AlmanacEccentricity, "almanac toa": AlmanacTOA,
		"almanac delta i": AlmanacDeltaI, "almanac OmegaDot": AlmanacOmegaDot,
		"almanac SV health": AlmanacSVHealth, "almanac sqrt A": AlmanacSqrtA,
		"almanac Omega0": AlmanacOmega0, "almanac omega": AlmanacOmega,
		"almanac M0": AlmanacM0, "almanac af0": AlmanacAF0, "almanac af1": AlmanacAF1,

		"alpha0": Alpha0, "alpha1": Alpha1, "alpha2": Alpha2, "alpha3": Alpha3,
		"beta0": Beta0, "beta1": Beta1, "beta2": Beta2, "beta3": Beta3,
		"A1": A1, "A0": A0, "tot": TOT, "WNt": WNT, "delta tLS": DeltaTLS,
		"WNLSF": WNLSF, "DN": DN, "delta tLSF": DeltaTLSF,

		"toa": TOA, "WNa": WNA,
	}
	for i, field := range HealthSV25To32 {
		All[fmt.Sprintf("health SV%d", i+25)] = field
	}
	for i, field := range HealthSV1To24 {
		All[fmt.Sprintf("health SV%d", i+1)] = field
	}

	for name, field := range All {
		if err := field.Validate(); err != nil {
			panic(fmt.Sprintf("field %s: %v", name, err))
		}
	}
}

// Unscale converts a scaled value back to the integer that was broadcast.
// It's the inverse of multiplying by the scale factor.
func Unscale(scaled, lsb float64) int64 {
	return int64(math.Round(scaled / lsb))
}
