// The subframe2 package handles subframe 2 of the GPS L1 C/A navigation
// message, the first half of the ephemeris.
package subframe2

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goblimey/go-gpsnav/nav/fields"
	"github.com/goblimey/go-gpsnav/nav/frame"
	"github.com/goblimey/go-gpsnav/nav/header"
)

const expectedSubframeID = 2

// Message contains the decoded contents of a subframe 2.  Angles are in
// radians, distances in metres and times in seconds.
type Message struct {
	Header *header.Header

	// IODE - uint8 - issue of data, ephemeris.  The same value is sent in
	// subframe 3.  If the two differ, the satellite changed its data set
	// between sending them.
	IODE int

	// CRS - int16 - amplitude of the sine harmonic correction term to the
	// orbit radius, metres.
	CRS float64

	// DeltaN - int16 - mean motion difference from the computed value,
	// radians/second.
	DeltaN float64

	// M0 - int32 - mean anomaly at the reference time, radians.
	M0 float64

	// CUC - int16 - amplitude of the cosine harmonic correction term to
	// the argument of latitude, radians.
	CUC float64

	// Eccentricity - uint32 - dimensionless.
	Eccentricity float64

	// CUS - int16 - amplitude of the sine harmonic correction term to
	// the argument of latitude, radians.
	CUS float64

	// SqrtA - uint32 - square root of the semi-major axis, square root
	// of metres.
	SqrtA float64

	// TOE - uint16 - the reference time of the ephemeris, seconds.
	TOE float64

	// FitInterval - bit(1) - false means a fit interval of four hours,
	// true means longer.
	FitInterval bool

	// AODO - uint5 - age of data offset for the navigation message
	// correction table, seconds.
	AODO int

	logLevel slog.Level
}

// New creates a subframe 2 message.
func New(hdr *header.Header, iode int, crs, deltaN, m0, cuc, eccentricity,
	cus, sqrtA, toe float64, fitInterval bool, aodo int, logLevel slog.Level) *Message {

	message := Message{
		Header:       hdr,
		IODE:         iode,
		CRS:          crs,
		DeltaN:       deltaN,
		M0:           m0,
		CUC:          cuc,
		Eccentricity: eccentricity,
		CUS:          cus,
		SqrtA:        sqrtA,
		TOE:          toe,
		FitInterval:  fitInterval,
		AODO:         aodo,
		logLevel:     logLevel,
	}

	return &message
}

// String returns a readable version of a subframe 2.
func (message *Message) String() string {
	display := ""
	if message.Header != nil {
		display += message.Header.String()
	}
	display += fmt.Sprintf("IODE %d, toe %.0f, fit interval %v, AODO %d\n",
		message.IODE, message.TOE, message.FitInterval, message.AODO)
	display += fmt.Sprintf("Crs %g, delta n %g, M0 %g, Cuc %g\n",
		message.CRS, message.DeltaN, message.M0, message.CUC)
	display += fmt.Sprintf("e %g, Cus %g, sqrt A %.6f\n",
		message.Eccentricity, message.CUS, message.SqrtA)
	if message.logLevel == slog.LevelDebug {
		display += fmt.Sprintf("raw: e %d, sqrt A %d, M0 %d\n",
			fields.Unscale(message.Eccentricity, fields.EccentricityLSB),
			fields.Unscale(message.SqrtA, fields.SqrtALSB),
			fields.Unscale(message.M0, fields.M0LSB))
	}
	return display
}

// GetMessage extracts a subframe 2 from a frame.
func GetMessage(fr *frame.Frame, logLevel slog.Level) (*Message, error) {

	hdr := header.GetHeader(fr, logLevel)
	if hdr.SubframeID != expectedSubframeID {
		em := fmt.Sprintf("expected subframe %d got %d", expectedSubframeID, hdr.SubframeID)
		return nil, errors.New(em)
	}

	message := New(
		hdr,
		int(fr.ReadUnsigned(fields.IODESubframe2)),
		float64(fr.ReadSigned(fields.CRS))*fields.CRSLSB,
		float64(fr.ReadSigned(fields.DeltaN))*fields.DeltaNLSB,
		float64(fr.ReadSigned(fields.M0))*fields.M0LSB,
		float64(fr.ReadSigned(fields.CUC))*fields.CUCLSB,
		float64(fr.ReadUnsigned(fields.Eccentricity))*fields.EccentricityLSB,
		float64(fr.ReadSigned(fields.CUS))*fields.CUSLSB,
		float64(fr.ReadUnsigned(fields.SqrtA))*fields.SqrtALSB,
		float64(fr.ReadUnsigned(fields.TOE))*fields.TOELSB,
		fr.ReadBool(fields.FitInterval),
		int(fr.ReadUnsigned(fields.AODO))*int(fields.AODOLSB),
		logLevel,
	)

	return message, nil
}

// Write stores the message in a frame.  The header's subframe ID is forced
// to 2.
func (message *Message) Write(fr *frame.Frame) {
	if message.Header != nil {
		message.Header.Write(fr)
	}
	fr.WriteUnsigned(fields.SubframeID, expectedSubframeID)
	fr.WriteUnsigned(fields.IODESubframe2, uint64(message.IODE))
	fr.WriteSigned(fields.CRS, fields.Unscale(message.CRS, fields.CRSLSB))
	fr.WriteSigned(fields.DeltaN, fields.Unscale(message.DeltaN, fields.DeltaNLSB))
	fr.WriteSigned(fields.M0, fields.Unscale(message.M0, fields.M0LSB))
	fr.WriteSigned(fields.CUC, fields.Unscale(message.CUC, fields.CUCLSB))
	fr.WriteUnsigned(fields.Eccentricity, uint64(fields.Unscale(message.Eccentricity, fields.EccentricityLSB)))
	fr.WriteSigned(fields.CUS, fields.Unscale(message.CUS, fields.CUSLSB))
	fr.WriteUnsigned(fields.SqrtA, uint64(fields.Unscale(message.SqrtA, fields.SqrtALSB)))
	fr.WriteUnsigned(fields.TOE, uint64(fields.Unscale(message.TOE, fields.TOELSB)))
	fr.WriteBool(fields.FitInterval, message.FitInterval)
	fr.WriteUnsigned(fields.AODO, uint64(message.AODO/int(fields.AODOLSB)))
}
