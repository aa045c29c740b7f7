// The subframe3 package handles subframe 3 of the GPS L1 C/A navigation
// message, the second half of the ephemeris.
package subframe3

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goblimey/go-gpsnav/nav/fields"
	"github.com/goblimey/go-gpsnav/nav/frame"
	"github.com/goblimey/go-gpsnav/nav/header"
)

const expectedSubframeID = 3

// Message contains the decoded contents of a subframe 3.
type Message struct {
	Header *header.Header

	// CIC - int16 - cosine harmonic correction to the angle of inclination,
	// radians.
	CIC float64

	// Omega0 - int32 - longitude of the ascending node at the start of the
	// week, radians.
	Omega0 float64

	// CIS - int16 - sine harmonic correction to the angle of inclination,
	// radians.
	CIS float64

	// I0 - int32 - inclination angle at the reference time, radians.
	I0 float64

	// CRC - int16 - cosine harmonic correction to the orbit radius, metres.
	// (Nothing to do with a cyclic redundancy check.)
	CRC float64

	// Omega - int32 - argument of perigee, radians.
	Omega float64

	// OmegaDot - int24 - rate of right ascension, radians/second.
	OmegaDot float64

	// IODE - uint8 - the second copy of the issue of data, ephemeris.
	IODE int

	// IDOT - int14 - rate of inclination angle, radians/second.
	IDOT float64

	logLevel slog.Level
}

// New creates a subframe 3 message.
func New(hdr *header.Header, cic, omega0, cis, i0, crc, omega, omegaDot float64,
	iode int, idot float64, logLevel slog.Level) *Message {

	message := Message{
		Header:   hdr,
		CIC:      cic,
		Omega0:   omega0,
		CIS:      cis,
		I0:       i0,
		CRC:      crc,
		Omega:    omega,
		OmegaDot: omegaDot,
		IODE:     iode,
		IDOT:     idot,
		logLevel: logLevel,
	}

	return &message
}

// String returns a readable version of a subframe 3.
func (message *Message) String() string {
	display := ""
	if message.Header != nil {
		display += message.Header.String()
	}
	display += fmt.Sprintf("IODE %d, Cic %g, Omega0 %g, Cis %g, i0 %g\n",
		message.IODE, message.CIC, message.Omega0, message.CIS, message.I0)
	display += fmt.Sprintf("Crc %g, omega %g, OmegaDot %g, IDOT %g\n",
		message.CRC, message.Omega, message.OmegaDot, message.IDOT)
	return display
}

// GetMessage extracts a subframe 3 from a frame.
func GetMessage(fr *frame.Frame, logLevel slog.Level) (*Message, error) {

	hdr := header.GetHeader(fr, logLevel)
	if hdr.SubframeID != expectedSubframeID {
		em := fmt.Sprintf("expected subframe %d got %d", expectedSubframeID, hdr.SubframeID)
		return nil, errors.New(em)
	}

	message := New(
		hdr,
		float64(fr.ReadSigned(fields.CIC))*fields.CICLSB,
		float64(fr.ReadSigned(fields.Omega0))*fields.Omega0LSB,
		float64(fr.ReadSigned(fields.CIS))*fields.CISLSB,
		float64(fr.ReadSigned(fields.I0))*fields.I0LSB,
		float64(fr.ReadSigned(fields.CRC))*fields.CRCLSB,
		float64(fr.ReadSigned(fields.Omega))*fields.OmegaLSB,
		float64(fr.ReadSigned(fields.OmegaDot))*fields.OmegaDotLSB,
		int(fr.ReadUnsigned(fields.IODESubframe3)),
		float64(fr.ReadSigned(fields.IDOT))*fields.IDOTLSB,
		logLevel,
	)

	return message, nil
}

// Write stores the message in a frame.  The header's subframe ID is forced
// to 3.
func (message *Message) Write(fr *frame.Frame) {
	if message.Header != nil {
		message.Header.Write(fr)
	}
	fr.WriteUnsigned(fields.SubframeID, expectedSubframeID)
	fr.WriteSigned(fields.CIC, fields.Unscale(message.CIC, fields.CICLSB))
	fr.WriteSigned(fields.Omega0, fields.Unscale(message.Omega0, fields.Omega0LSB))
	fr.WriteSigned(fields.CIS, fields.Unscale(message.CIS, fields.CISLSB))
	fr.WriteSigned(fields.I0, fields.Unscale(message.I0, fields.I0LSB))
	fr.WriteSigned(fields.CRC, fields.Unscale(message.CRC, fields.CRCLSB))
	fr.WriteSigned(fields.Omega, fields.Unscale(message.Omega, fields.OmegaLSB))
	fr.WriteSigned(fields.OmegaDot, fields.Unscale(message.OmegaDot, fields.OmegaDotLSB))
	fr.WriteUnsigned(fields.IODESubframe3, uint64(message.IODE))
	fr.WriteSigned(fields.IDOT, fields.Unscale(message.IDOT, fields.IDOTLSB))
}
