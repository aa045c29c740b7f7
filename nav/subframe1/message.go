// The subframe1 package handles subframe 1 of the GPS L1 C/A navigation
// message - the week number, satellite health and accuracy and the clock
// correction parameters.
package subframe1

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goblimey/go-gpsnav/nav/fields"
	"github.com/goblimey/go-gpsnav/nav/frame"
	"github.com/goblimey/go-gpsnav/nav/header"
)

// This package handles subframes with ID 1.
const expectedSubframeID = 1

// Message contains the decoded contents of a subframe 1.  The values are
// scaled to seconds, seconds/second and so on as they are extracted.
type Message struct {
	// Header holds the TLM and HOW words.
	Header *header.Header

	// WeekNumber - uint10 - the GPS week number modulo 1024.
	WeekNumber int

	// CodeOnL2 - uint2 - which codes are on L2: 1 P code, 2 C/A code.
	CodeOnL2 int

	// URAIndex - uint4 - the user range accuracy index.
	URAIndex int

	// SVHealth - uint6 - zero means all signals healthy.
	SVHealth int

	// IODC - uint10 - issue of data, clock.  The bottom eight bits match
	// the IODE in subframes 2 and 3 when the data set is consistent.
	IODC int

	// L2PDataFlag - bit(1) - the navigation data is not on the L2 P code.
	L2PDataFlag bool

	// TGD - int8 - the group delay differential in seconds.
	TGD float64

	// TOC - uint16 - the clock data reference time in seconds.
	TOC float64

	// AF2 - int8 - clock drift rate, seconds/second squared.
	AF2 float64

	// AF1 - int16 - clock drift, seconds/second.
	AF1 float64

	// AF0 - int22 - clock bias, seconds.
	AF0 float64

	// logLevel is s slog-style logging level.
	logLevel slog.Level
}

// New creates a subframe 1 message.
func New(hdr *header.Header, weekNumber, codeOnL2, uraIndex, svHealth, iodc int,
	l2PDataFlag bool, tgd, toc, af2, af1, af0 float64, logLevel slog.Level) *Message {

	message := Message{
		Header:      hdr,
		WeekNumber:  weekNumber,
		CodeOnL2:    codeOnL2,
		URAIndex:    uraIndex,
		SVHealth:    svHealth,
		IODC:        iodc,
		L2PDataFlag: l2PDataFlag,
		TGD:         tgd,
		TOC:         toc,
		AF2:         af2,
		AF1:         af1,
		AF0:         af0,
		logLevel:    logLevel,
	}

	return &message
}

// String returns a readable version of a subframe 1.
func (message *Message) String() string {
	display := ""
	if message.Header != nil {
		display += message.Header.String()
	}
	display += fmt.Sprintf("week %d, code on L2 %d, URA index %d, SV health %d, IODC %d, L2 P data flag %v\n",
		message.WeekNumber, message.CodeOnL2, message.URAIndex, message.SVHealth,
		message.IODC, message.L2PDataFlag)
	display += fmt.Sprintf("TGD %g, toc %.0f, af2 %g, af1 %g, af0 %g\n",
		message.TGD, message.TOC, message.AF2, message.AF1, message.AF0)

	if message.logLevel == slog.LevelDebug {
		display += fmt.Sprintf("raw: TGD %d, toc %d, af2 %d, af1 %d, af0 %d\n",
			fields.Unscale(message.TGD, fields.TGDLSB), fields.Unscale(message.TOC, fields.TOCLSB),
			fields.Unscale(message.AF2, fields.AF2LSB), fields.Unscale(message.AF1, fields.AF1LSB),
			fields.Unscale(message.AF0, fields.AF0LSB))
	}

	return display
}

// GetMessage extracts a subframe 1 from a frame.  It returns an error if the
// frame holds some other subframe.
func GetMessage(fr *frame.Frame, logLevel slog.Level) (*Message, error) {

	hdr := header.GetHeader(fr, logLevel)
	if hdr.SubframeID != expectedSubframeID {
		em := fmt.Sprintf("expected subframe %d got %d", expectedSubframeID, hdr.SubframeID)
		return nil, errors.New(em)
	}

	message := New(
		hdr,
		int(fr.ReadUnsigned(fields.WeekNumber)),
		int(fr.ReadUnsigned(fields.CodeOnL2)),
		int(fr.ReadUnsigned(fields.URAIndex)),
		int(fr.ReadUnsigned(fields.SVHealth)),
		int(fr.ReadUnsigned(fields.IODC)),
		fr.ReadBool(fields.L2PDataFlag),
		float64(fr.ReadSigned(fields.TGD))*fields.TGDLSB,
		float64(fr.ReadUnsigned(fields.TOC))*fields.TOCLSB,
		float64(fr.ReadSigned(fields.AF2))*fields.AF2LSB,
		float64(fr.ReadSigned(fields.AF1))*fields.AF1LSB,
		float64(fr.ReadSigned(fields.AF0))*fields.AF0LSB,
		logLevel,
	)

	return message, nil
}

// Write stores the message in a frame, converting the scaled values back
// to raw integers.  The header's subframe ID is forced to 1.
func (message *Message) Write(fr *frame.Frame) {
	if message.Header != nil {
		message.Header.Write(fr)
	}
	fr.WriteUnsigned(fields.SubframeID, expectedSubframeID)
	fr.WriteUnsigned(fields.WeekNumber, uint64(message.WeekNumber))
	fr.WriteUnsigned(fields.CodeOnL2, uint64(message.CodeOnL2))
	fr.WriteUnsigned(fields.URAIndex, uint64(message.URAIndex))
	fr.WriteUnsigned(fields.SVHealth, uint64(message.SVHealth))
	fr.WriteUnsigned(fields.IODC, uint64(message.IODC))
	fr.WriteBool(fields.L2PDataFlag, message.L2PDataFlag)
	fr.WriteSigned(fields.TGD, fields.Unscale(message.TGD, fields.TGDLSB))
	fr.WriteUnsigned(fields.TOC, uint64(fields.Unscale(message.TOC, fields.TOCLSB)))
	fr.WriteSigned(fields.AF2, fields.Unscale(message.AF2, fields.AF2LSB))
	fr.WriteSigned(fields.AF1, fields.Unscale(message.AF1, fields.AF1LSB))
	fr.WriteSigned(fields.AF0, fields.Unscale(message.AF0, fields.AF0LSB))
}
