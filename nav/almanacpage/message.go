// The almanacpage package handles an almanac page.  Subframe 4 pages 2-5
// and 7-10 carry the almanacs of satellites 25 to 32 and subframe 5 pages
// 1 to 24 carry the almanacs of satellites 1 to 24.  The layout is the same
// in both.  The SV ID in word 3 gives the satellite that the almanac
// describes.
package almanacpage

import (
	"fmt"
	"log/slog"

	"github.com/goblimey/go-gpsnav/nav/fields"
	"github.com/goblimey/go-gpsnav/nav/frame"
	"github.com/goblimey/go-gpsnav/nav/header"
)

// Message contains an almanac page.
type Message struct {
	Header *header.Header

	// DataID - uint2 - the data ID.  Zero means the page carries no data.
	DataID int

	// SVID - uint6 - the number of the satellite that the almanac describes.
	SVID int

	// Eccentricity - uint16.
	Eccentricity float64

	// TOA - uint8 - reference time of the almanac, seconds.
	TOA float64

	// DeltaI - int16 - inclination relative to 0.3 semicircles, radians.
	DeltaI float64

	// OmegaDot - int16 - rate of right ascension, radians/second.
	OmegaDot float64

	// SVHealth - uint8 - the satellite's health.
	SVHealth int

	// SqrtA - uint24 - square root of the semi-major axis.
	SqrtA float64

	// Omega0 - int24 - longitude of the ascending node, radians.
	Omega0 float64

	// Omega - int24 - argument of perigee, radians.
	Omega float64

	// M0 - int24 - mean anomaly at the reference time, radians.
	M0 float64

	// AF0 - int11 - clock bias, seconds.  Split into 8 and 3 bits.
	AF0 float64

	// AF1 - int11 - clock drift, seconds/second.
	AF1 float64

	logLevel slog.Level
}

// New creates an almanac page.
func New(hdr *header.Header, dataID, svID int, eccentricity, toa, deltaI, omegaDot float64,
	svHealth int, sqrtA, omega0, omega, m0, af0, af1 float64, logLevel slog.Level) *Message {

	message := Message{
		Header:       hdr,
		DataID:       dataID,
		SVID:         svID,
		Eccentricity: eccentricity,
		TOA:          toa,
		DeltaI:       deltaI,
		OmegaDot:     omegaDot,
		SVHealth:     svHealth,
		SqrtA:        sqrtA,
		Omega0:       omega0,
		Omega:        omega,
		M0:           m0,
		AF0:          af0,
		AF1:          af1,
		logLevel:     logLevel,
	}

	return &message
}

// String returns a readable version of the almanac page.
func (message *Message) String() string {
	display := ""
	if message.Header != nil {
		display += message.Header.String()
	}
	display += fmt.Sprintf("almanac for SV %d, data ID %d, health %d, toa %.0f\n",
		message.SVID, message.DataID, message.SVHealth, message.TOA)
	display += fmt.Sprintf("e %g, delta i %g, OmegaDot %g, sqrt A %.4f\n",
		message.Eccentricity, message.DeltaI, message.OmegaDot, message.SqrtA)
	display += fmt.Sprintf("Omega0 %g, omega %g, M0 %g, af0 %g, af1 %g\n",
		message.Omega0, message.Omega, message.M0, message.AF0, message.AF1)
	return display
}

// GetMessage extracts an almanac page from a frame.  The caller is expected
// to have checked the subframe ID and the SV ID.
func GetMessage(fr *frame.Frame, logLevel slog.Level) *Message {
	return New(
		header.GetHeader(fr, logLevel),
		int(fr.ReadUnsigned(fields.DataID)),
		int(fr.ReadUnsigned(fields.SVID)),
		float64(fr.ReadUnsigned(fields.AlmanacEccentricity))*fields.AlmanacEccentricityLSB,
		float64(fr.ReadUnsigned(fields.AlmanacTOA))*fields.AlmanacTOALSB,
		float64(fr.ReadSigned(fields.AlmanacDeltaI))*fields.AlmanacDeltaILSB,
		float64(fr.ReadSigned(fields.AlmanacOmegaDot))*fields.AlmanacOmegaDotLSB,
		int(fr.ReadUnsigned(fields.AlmanacSVHealth)),
		float64(fr.ReadUnsigned(fields.AlmanacSqrtA))*fields.AlmanacSqrtALSB,
		float64(fr.ReadSigned(fields.AlmanacOmega0))*fields.AlmanacOmega0LSB,
		float64(fr.ReadSigned(fields.AlmanacOmega))*fields.AlmanacOmegaLSB,
		float64(fr.ReadSigned(fields.AlmanacM0))*fields.AlmanacM0LSB,
		float64(fr.ReadSigned(fields.AlmanacAF0))*fields.AlmanacAF0LSB,
		float64(fr.ReadSigned(fields.AlmanacAF1))*fields.AlmanacAF1LSB,
		logLevel,
	)
}

// Write stores the almanac page in a frame.  The subframe ID is taken from
// the header, so set it to 4 or 5.
func (message *Message) Write(fr *frame.Frame) {
	if message.Header != nil {
		message.Header.Write(fr)
	}
	fr.WriteUnsigned(fields.DataID, uint64(message.DataID))
	fr.WriteUnsigned(fields.SVID, uint64(message.SVID))
	fr.WriteUnsigned(fields.AlmanacEccentricity,
		uint64(fields.Unscale(message.Eccentricity, fields.AlmanacEccentricityLSB)))
	fr.WriteUnsigned(fields.AlmanacTOA, uint64(fields.Unscale(message.TOA, fields.AlmanacTOALSB)))
	fr.WriteSigned(fields.AlmanacDeltaI, fields.Unscale(message.DeltaI, fields.AlmanacDeltaILSB))
	fr.WriteSigned(fields.AlmanacOmegaDot, fields.Unscale(message.OmegaDot, fields.AlmanacOmegaDotLSB))
	fr.WriteUnsigned(fields.AlmanacSVHealth, uint64(message.SVHealth))
	fr.WriteUnsigned(fields.AlmanacSqrtA, uint64(fields.Unscale(message.SqrtA, fields.AlmanacSqrtALSB)))
	fr.WriteSigned(fields.AlmanacOmega0, fields.Unscale(message.Omega0, fields.AlmanacOmega0LSB))
	fr.WriteSigned(fields.AlmanacOmega, fields.Unscale(message.Omega, fields.AlmanacOmegaLSB))
	fr.WriteSigned(fields.AlmanacM0, fields.Unscale(message.M0, fields.AlmanacM0LSB))
	fr.WriteSigned(fields.AlmanacAF0, fields.Unscale(message.AF0, fields.AlmanacAF0LSB))
	fr.WriteSigned(fields.AlmanacAF1, fields.Unscale(message.AF1, fields.AlmanacAF1LSB))
}
