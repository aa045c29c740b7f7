// The header package handles the first two words of every subframe, the
// telemetry (TLM) word and the handover word (HOW).
package header

import (
	"fmt"
	"log/slog"

	"github.com/goblimey/go-gpsnav/nav/fields"
	"github.com/goblimey/go-gpsnav/nav/frame"
	"github.com/goblimey/go-gpsnav/nav/utils"
)

// Header holds the contents of the TLM and HOW words.
type Header struct {
	// Preamble - uint8 - should always be 0x8b.  Anything else suggests
	// that the receiver has lost bit synchronisation.
	Preamble uint

	// TLMMessage - uint14 - used by the control segment.  Not interpreted.
	TLMMessage uint

	// Integrity - bit(1) - the integrity status flag.  When set the
	// satellite is giving enhanced accuracy guarantees.
	Integrity bool

	// TOWCount - uint17 - the truncated time of week count.  This is the
	// time at the start of the NEXT subframe in units of six seconds.
	TOWCount uint

	// TOW is the TOW count converted to seconds.
	TOW float64

	// Alert - bit(1).  When set the user range accuracy may be worse than
	// the subframe 1 value suggests.
	Alert bool

	// AntiSpoof - bit(1) - the anti-spoof (A-S) mode is on.
	AntiSpoof bool

	// SubframeID - uint3 - 1 to 5.  Values 0, 6 and 7 should not occur.
	SubframeID int

	// logLevel is s slog-style logging level.
	logLevel slog.Level
}

// New creates a Header.
func New(preamble, tlmMessage uint, integrity bool, towCount uint,
	alert, antiSpoof bool, subframeID int, logLevel slog.Level) *Header {

	header := Header{
		Preamble:   preamble,
		TLMMessage: tlmMessage,
		Integrity:  integrity,
		TOWCount:   towCount,
		TOW:        float64(towCount) * fields.TOWLSB,
		Alert:      alert,
		AntiSpoof:  antiSpoof,
		SubframeID: subframeID,
		logLevel:   logLevel,
	}

	return &header
}

// String returns a readable version of the header.
func (header *Header) String() string {
	line := fmt.Sprintf("subframe %d, TOW %.0f", header.SubframeID, header.TOW)
	if header.logLevel == slog.LevelDebug {
		line += fmt.Sprintf(" (count %d), preamble 0x%02x, TLM message 0x%04x",
			header.TOWCount, header.Preamble, header.TLMMessage)
	}
	line += fmt.Sprintf(", integrity %v, alert %v, anti-spoof %v\n",
		header.Integrity, header.Alert, header.AntiSpoof)

	if header.Preamble != utils.Preamble {
		line += fmt.Sprintf("warning: preamble is 0x%02x, expected 0x%02x\n",
			header.Preamble, utils.Preamble)
	}
	return line
}

// GetSubframeID returns the subframe ID from the HOW word of a frame.
func GetSubframeID(fr *frame.Frame) int {
	return int(fr.ReadUnsigned(fields.SubframeID))
}

// GetHeader extracts the TLM and HOW words from a frame.
func GetHeader(fr *frame.Frame, logLevel slog.Level) *Header {
	return New(
		uint(fr.ReadUnsigned(fields.Preamble)),
		uint(fr.ReadUnsigned(fields.TLMMessage)),
		fr.ReadBool(fields.Integrity),
		uint(fr.ReadUnsigned(fields.TOW)),
		fr.ReadBool(fields.Alert),
		fr.ReadBool(fields.AntiSpoof),
		GetSubframeID(fr),
		logLevel,
	)
}

// Write stores the header in a frame.  It's the inverse of GetHeader and is
// used to build test data and simulated subframes.
func (header *Header) Write(fr *frame.Frame) {
	fr.WriteUnsigned(fields.Preamble, uint64(header.Preamble))
	fr.WriteUnsigned(fields.TLMMessage, uint64(header.TLMMessage))
	fr.WriteBool(fields.Integrity, header.Integrity)
	fr.WriteUnsigned(fields.TOW, uint64(header.TOWCount))
	fr.WriteBool(fields.Alert, header.Alert)
	fr.WriteBool(fields.AntiSpoof, header.AntiSpoof)
	fr.WriteUnsigned(fields.SubframeID, uint64(header.SubframeID))
}
