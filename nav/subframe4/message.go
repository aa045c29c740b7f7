// The subframe4 package handles subframe 4 of the GPS L1 C/A navigation
// message.  Subframe 4 is sent in 25 pages, one page per 30-second frame,
// so the whole set takes 12.5 minutes to arrive.  The SV ID in word 3
// identifies the page contents.  (The SV ID is not the page number - see
// IS-GPS-200 table 20-V.)
//
// The pages handled are:
//
//	SV ID 25-32  almanac for satellites 25 to 32 (pages 2-5 and 7-10)
//	SV ID 56     ionospheric and UTC parameters (page 18)
//	SV ID 63     health of satellites 25 to 32 (page 25)
//
// Other pages, for example the navigation message correction table (SV ID
// 52) and the reserved pages (SV ID 57 and others), are recognised but not
// decoded.
package subframe4

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goblimey/go-gpsnav/nav/almanacpage"
	"github.com/goblimey/go-gpsnav/nav/fields"
	"github.com/goblimey/go-gpsnav/nav/frame"
	"github.com/goblimey/go-gpsnav/nav/header"
)

const expectedSubframeID = 4

// SV IDs of the pages in subframe 4.
const (
	FirstAlmanacSVID = 25
	LastAlmanacSVID  = 32
	SVIDNMCT         = 52
	SVIDIonoUTC      = 56
	SVIDReserved     = 57
	SVIDHealth       = 63
)

// Message contains a subframe 4 page.
type Message struct {
	Header *header.Header

	// DataID - uint2.
	DataID int

	// SVID - uint6 - identifies the contents of the page.
	SVID int

	// Page is the decoded page - *almanacpage.Message, *IonoUTC or
	// *Health.  It's nil if the page is one that isn't decoded.
	Page interface{}

	logLevel slog.Level
}

// IonoUTC contains the ionospheric and UTC parameters from page 18.
type IonoUTC struct {
	// Alpha0 to Alpha3 - int8 - coefficients of the cubic equation giving
	// the amplitude of the vertical delay, seconds, seconds per semicircle
	// and so on.
	Alpha0, Alpha1, Alpha2, Alpha3 float64

	// Beta0 to Beta3 - int8 - coefficients of the cubic equation giving the
	// period of the model, seconds, seconds per semicircle and so on.
	Beta0, Beta1, Beta2, Beta3 float64

	// A1 - int24 - drift of GPS time relative to UTC, seconds/second.
	A1 float64

	// A0 - int32 - offset of GPS time relative to UTC, seconds.
	A0 float64

	// TOT - uint8 - reference time for the UTC data, seconds.
	TOT float64

	// WNT - uint8 - UTC reference week number, modulo 256.
	WNT int

	// DeltaTLS - int8 - the current number of leap seconds.
	DeltaTLS int

	// WNLSF - uint8 - the week number at the end of which the next leap
	// second takes effect, modulo 256.
	WNLSF int

	// DN - uint8 - the day number (1 to 7) at the end of which the leap
	// second takes effect.
	DN int

	// DeltaTLSF - int8 - the number of leap seconds after the event.
	DeltaTLSF int
}

// Health contains the 6-bit health values of satellites 25 to 32 from page 25.
type Health struct {
	SVHealth [8]int
}

// New creates a subframe 4 message.
func New(hdr *header.Header, dataID, svID int, page interface{}, logLevel slog.Level) *Message {
	message := Message{
		Header:   hdr,
		DataID:   dataID,
		SVID:     svID,
		Page:     page,
		logLevel: logLevel,
	}
	return &message
}

// String returns a readable version of the page.
func (message *Message) String() string {
	display := ""
	if message.Header != nil {
		display += message.Header.String()
	}

	switch page := message.Page.(type) {
	case *almanacpage.Message:
		// The almanac page has its own copy of the header.
		p := *page
		p.Header = nil
		display += p.String()
	case *IonoUTC:
		display += page.String()
	case *Health:
		display += page.String()
	default:
		display += fmt.Sprintf("page with SV ID %d, data ID %d - not decoded\n",
			message.SVID, message.DataID)
	}

	return display
}

// String returns a readable version of the ionospheric and UTC parameters.
func (page *IonoUTC) String() string {
	display := fmt.Sprintf("iono alpha %g %g %g %g, beta %g %g %g %g\n",
		page.Alpha0, page.Alpha1, page.Alpha2, page.Alpha3,
		page.Beta0, page.Beta1, page.Beta2, page.Beta3)
	display += fmt.Sprintf("UTC A0 %g, A1 %g, tot %.0f, WNt %d\n",
		page.A0, page.A1, page.TOT, page.WNT)
	display += fmt.Sprintf("leap seconds %d, future leap seconds %d from week %d day %d\n",
		page.DeltaTLS, page.DeltaTLSF, page.WNLSF, page.DN)
	return display
}

// String returns a readable version of the health page.
func (page *Health) String() string {
	display := "health:"
	for i, h := range page.SVHealth {
		display += fmt.Sprintf(" %d:%d", i+FirstAlmanacSVID, h)
	}
	return display + "\n"
}

// GetMessage extracts a subframe 4 page from a frame.
func GetMessage(fr *frame.Frame, logLevel slog.Level) (*Message, error) {
	hdr := header.GetHeader(fr, logLevel)
	if hdr.SubframeID != expectedSubframeID {
		em := fmt.Sprintf("expected subframe %d got %d", expectedSubframeID, hdr.SubframeID)
		return nil, errors.New(em)
	}

	dataID := int(fr.ReadUnsigned(fields.DataID))
	svID := int(fr.ReadUnsigned(fields.SVID))

	var page interface{}
	switch {
	case svID >= FirstAlmanacSVID && svID <= LastAlmanacSVID:
		// A data ID of zero means that the page carries no almanac.
		if dataID != 0 {
			page = almanacpage.GetMessage(fr, logLevel)
		}
	case svID == SVIDIonoUTC:
		page = getIonoUTC(fr)
	case svID == SVIDHealth:
		page = getHealth(fr)
	}

	return New(hdr, dataID, svID, page, logLevel), nil
}

func getIonoUTC(fr *frame.Frame) *IonoUTC {
	return &IonoUTC{
		Alpha0:    float64(fr.ReadSigned(fields.Alpha0)) * fields.Alpha0LSB,
		Alpha1:    float64(fr.ReadSigned(fields.Alpha1)) * fields.Alpha1LSB,
		Alpha2:    float64(fr.ReadSigned(fields.Alpha2)) * fields.Alpha2LSB,
		Alpha3:    float64(fr.ReadSigned(fields.Alpha3)) * fields.Alpha3LSB,
		Beta0:     float64(fr.ReadSigned(fields.Beta0)) * fields.Beta0LSB,
		Beta1:     float64(fr.ReadSigned(fields.Beta1)) * fields.Beta1LSB,
		Beta2:     float64(fr.ReadSigned(fields.Beta2)) * fields.Beta2LSB,
		Beta3:     float64(fr.ReadSigned(fields.Beta3)) * fields.Beta3LSB,
		A1:        float64(fr.ReadSigned(fields.A1)) * fields.A1LSB,
		A0:        float64(fr.ReadSigned(fields.A0)) * fields.A0LSB,
		TOT:       float64(fr.ReadUnsigned(fields.TOT)) * fields.TOTLSB,
		WNT:       int(fr.ReadUnsigned(fields.WNT)),
		DeltaTLS:  int(fr.ReadSigned(fields.DeltaTLS)),
		WNLSF:     int(fr.ReadUnsigned(fields.WNLSF)),
		DN:        int(fr.ReadUnsigned(fields.DN)),
		DeltaTLSF: int(fr.ReadSigned(fields.DeltaTLSF)),
	}
}

func getHealth(fr *frame.Frame) *Health {
	var health Health
	for i, field := range fields.HealthSV25To32 {
		health.SVHealth[i] = int(fr.ReadUnsigned(field))
	}
	return &health
}

// Write stores the page in a frame.  The header's subframe ID is forced
// to 4.
func (message *Message) Write(fr *frame.Frame) {
	if message.Header != nil {
		message.Header.Write(fr)
	}
	if page, ok := message.Page.(*almanacpage.Message); ok {
		page.Write(fr)
	}
	fr.WriteUnsigned(fields.SubframeID, expectedSubframeID)
	fr.WriteUnsigned(fields.DataID, uint64(message.DataID))
	fr.WriteUnsigned(fields.SVID, uint64(message.SVID))

	switch page := message.Page.(type) {
	case *IonoUTC:
		page.write(fr)
	case *Health:
		for i, field := range fields.HealthSV25To32 {
			fr.WriteUnsigned(field, uint64(page.SVHealth[i]))
		}
	}
}

func (page *IonoUTC) write(fr *frame.Frame) {
	fr.WriteSigned(fields.Alpha0, fields.Unscale(page.Alpha0, fields.Alpha0LSB))
	fr.WriteSigned(fields.Alpha1, fields.Unscale(page.Alpha1, fields.Alpha1LSB))
	fr.WriteSigned(fields.Alpha2, fields.Unscale(page.Alpha2, fields.Alpha2LSB))
	fr.WriteSigned(fields.Alpha3, fields.Unscale(page.Alpha3, fields.Alpha3LSB))
	fr.WriteSigned(fields.Beta0, fields.Unscale(page.Beta0, fields.Beta0LSB))
	fr.WriteSigned(fields.Beta1, fields.Unscale(page.Beta1, fields.Beta1LSB))
	fr.WriteSigned(fields.Beta2, fields.Unscale(page.Beta2, fields.Beta2LSB))
	fr.WriteSigned(fields.Beta3, fields.Unscale(page.Beta3, fields.Beta3LSB))
	fr.WriteSigned(fields.A1, fields.Unscale(page.A1, fields.A1LSB))
	fr.WriteSigned(fields.A0, fields.Unscale(page.A0, fields.A0LSB))
	fr.WriteUnsigned(fields.TOT, uint64(fields.Unscale(page.TOT, fields.TOTLSB)))
	fr.WriteUnsigned(fields.WNT, uint64(page.WNT))
	fr.WriteSigned(fields.DeltaTLS, int64(page.DeltaTLS))
	fr.WriteUnsigned(fields.WNLSF, uint64(page.WNLSF))
	fr.WriteUnsigned(fields.DN, uint64(page.DN))
	fr.WriteSigned(fields.DeltaTLSF, int64(page.DeltaTLSF))
}
