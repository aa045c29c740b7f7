// The subframe5 package handles subframe 5 of the GPS L1 C/A navigation
// message.  Like subframe 4 it's sent in 25 pages.  Pages 1 to 24 carry
// the almanacs of satellites 1 to 24 and page 25 (SV ID 51) carries the
// almanac reference time and week and the health of satellites 1 to 24.
package subframe5

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goblimey/go-gpsnav/nav/almanacpage"
	"github.com/goblimey/go-gpsnav/nav/fields"
	"github.com/goblimey/go-gpsnav/nav/frame"
	"github.com/goblimey/go-gpsnav/nav/header"
)

const expectedSubframeID = 5

// SV IDs of the pages in subframe 5.
const (
	FirstAlmanacSVID = 1
	LastAlmanacSVID  = 24
	SVIDHealth       = 51
)

// Message contains a subframe 5 page.
type Message struct {
	Header *header.Header

	// DataID - uint2.
	DataID int

	// SVID - uint6 - identifies the contents of the page.
	SVID int

	// Page is the decoded page - *almanacpage.Message or *ReferenceTime.
	// It's nil if the page is not decoded.
	Page interface{}

	logLevel slog.Level
}

// ReferenceTime contains page 25 of subframe 5.
type ReferenceTime struct {
	// TOA - uint8 - the almanac reference time, seconds.
	TOA float64

	// WNA - uint8 - the almanac reference week, modulo 256.
	WNA int

	// SVHealth holds the 6-bit health values of satellites 1 to 24.
	SVHealth [24]int
}

// New creates a subframe 5 message.
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
		p := *page
		p.Header = nil
		display += p.String()
	case *ReferenceTime:
		display += page.String()
	default:
		display += fmt.Sprintf("page with SV ID %d, data ID %d - not decoded\n",
			message.SVID, message.DataID)
	}

	return display
}

// String returns a readable version of the reference time page.
func (page *ReferenceTime) String() string {
	display := fmt.Sprintf("almanac toa %.0f, WNa %d\nhealth:", page.TOA, page.WNA)
	for i, h := range page.SVHealth {
		display += fmt.Sprintf(" %d:%d", i+FirstAlmanacSVID, h)
	}
	return display + "\n"
}

// GetMessage extracts a subframe 5 page from a frame.
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
		if dataID != 0 {
			page = almanacpage.GetMessage(fr, logLevel)
		}
	case svID == SVIDHealth:
		rt := ReferenceTime{
			TOA: float64(fr.ReadUnsigned(fields.TOA)) * fields.TOALSB,
			WNA: int(fr.ReadUnsigned(fields.WNA)),
		}
		for i, field := range fields.HealthSV1To24 {
			rt.SVHealth[i] = int(fr.ReadUnsigned(field))
		}
		page = &rt
	}

	return New(hdr, dataID, svID, page, logLevel), nil
}

// Write stores the page in a frame.  The header's subframe ID is forced
// to 5.
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

	if page, ok := message.Page.(*ReferenceTime); ok {
		fr.WriteUnsigned(fields.TOA, uint64(fields.Unscale(page.TOA, fields.TOALSB)))
		fr.WriteUnsigned(fields.WNA, uint64(page.WNA))
		for i, field := range fields.HealthSV1To24 {
			fr.WriteUnsigned(field, uint64(page.SVHealth[i]))
		}
	}
}
