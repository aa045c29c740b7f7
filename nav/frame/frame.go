// The frame package holds a GPS L1 C/A subframe as a dense 300-bit
// container and provides the field reader used by all of the subframe
// decoders.
//
// The receiver delivers a subframe as ten 32-bit words, least significant
// byte first.  The bottom 30 bits of each word are the data bits D1 to D30
// of that word, D1 in bit 29.  The top two bits are D29 and D30 of the
// previous word, which the receiver carries along for the parity check.
// Unpack discards them and packs the 30-bit words into the frame in
// transmission order, so bit 1 of the frame (in the numbering used by the
// interface control document IS-GPS-200) is the top bit of the first byte
// and word n occupies bits 30(n-1)+1 to 30n.
//
// A field is described by one or more spans.  Most fields are a single
// run of bits but some, for example the 32-bit eccentricity, are split
// across two words and so across two runs of bits, the most significant
// part first.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/goblimey/go-gpsnav/nav/utils"
)

// dataMask selects the 30 data bits of a wire word.
const dataMask = 0x3fffffff

// Frame holds the 300 bits of a subframe, packed, in transmission order.
type Frame [utils.BytesPerFrame]byte

// Span is a run of bits within a frame.  Pos is the 1-based bit number used
// by the ICD tables.
type Span struct {
	Pos uint
	Len uint
}

// Field describes a value held in one or more spans, the most significant
// bits first.
type Field []Span

// Len returns the total number of bits in the field.
func (field Field) Len() uint {
	var total uint
	for _, span := range field {
		total += span.Len
	}
	return total
}

// Validate checks that the field describes between 1 and 64 bits, all of
// them inside a 300-bit frame.
func (field Field) Validate() error {
	if len(field) == 0 {
		return errors.New("field has no spans")
	}
	for i, span := range field {
		if span.Len == 0 {
			return fmt.Errorf("span %d is empty", i)
		}
		if span.Pos < 1 {
			return fmt.Errorf("span %d starts at bit %d - bits are numbered from 1", i, span.Pos)
		}
		end := span.Pos + span.Len - 1
		if end > utils.BitsPerSubframe {
			em := fmt.Sprintf("overrun - span %d ends at bit %d, the frame has %d bits",
				i, end, utils.BitsPerSubframe)
			return errors.New(em)
		}
	}
	if field.Len() > 64 {
		return fmt.Errorf("field is %d bits long - the maximum is 64", field.Len())
	}
	return nil
}

// ReadBool returns the first bit of the field as a boolean.
func (frame *Frame) ReadBool(field Field) bool {
	return utils.GetBitsAsUint64(frame[:], field[0].Pos-1, 1) == 1
}

// ReadUnsigned returns the bits of the field as an unsigned integer.
func (frame *Frame) ReadUnsigned(field Field) uint64 {
	var value uint64
	for _, span := range field {
		value = value<<span.Len | utils.GetBitsAsUint64(frame[:], span.Pos-1, span.Len)
	}
	return value
}

// ReadSigned returns the bits of the field as a two's complement signed
// integer.
func (frame *Frame) ReadSigned(field Field) int64 {
	if len(field) == 1 {
		return utils.GetBitsAsInt64(frame[:], field[0].Pos-1, field[0].Len)
	}

	// Split fields are sign extended from the top bit of the first span.
	n := field.Len()
	value := frame.ReadUnsigned(field)
	if n < 64 && value>>(n-1) == 1 {
		value |= ^uint64(0) << n
	}
	return int64(value)
}

// WriteUnsigned stores the bottom bits of value in the field.
func (frame *Frame) WriteUnsigned(field Field, value uint64) {
	remaining := field.Len()
	for _, span := range field {
		remaining -= span.Len
		utils.SetBitsFromUint64(frame[:], span.Pos-1, span.Len, value>>remaining)
	}
}

// WriteSigned stores value in the field as a two's complement integer.
func (frame *Frame) WriteSigned(field Field, value int64) {
	frame.WriteUnsigned(field, uint64(value))
}

// WriteBool sets the first bit of the field.
func (frame *Frame) WriteBool(field Field, value bool) {
	var v uint64
	if value {
		v = 1
	}
	utils.SetBitsFromUint64(frame[:], field[0].Pos-1, 1, v)
}

// Word returns the 30 data bits of word n, where n runs from 1 to 10.
func (frame *Frame) Word(n int) uint32 {
	return uint32(frame.ReadUnsigned(wordField(n)))
}

// SetWord stores the 30 data bits of word n, where n runs from 1 to 10.
func (frame *Frame) SetWord(n int, data uint32) {
	frame.WriteUnsigned(wordField(n), uint64(data&dataMask))
}

func wordField(n int) Field {
	return Field{{Pos: uint(n-1)*utils.DataBitsPerWord + 1, Len: utils.DataBitsPerWord}}
}

// Unpack converts a raw subframe, ten little-endian 32-bit words, to a
// Frame.  The top two bits of each word are dropped.
func Unpack(raw []byte) (Frame, error) {
	var frame Frame
	if len(raw) != utils.BytesPerRawSubframe {
		em := fmt.Sprintf("overrun - expected %d bytes in a subframe, got %d",
			utils.BytesPerRawSubframe, len(raw))
		return frame, errors.New(em)
	}

	for n := 1; n <= utils.WordsPerSubframe; n++ {
		start := (n - 1) * utils.BytesPerWireWord
		word := binary.LittleEndian.Uint32(raw[start : start+utils.BytesPerWireWord])
		frame.SetWord(n, word&dataMask)
	}

	return frame, nil
}

// Pack is the inverse of Unpack.  The top two bits of each word are set to
// D29 and D30 of the previous word, as they are on the wire (zero for the
// first word).  If withParity is true, the parity bits D25 to D30 of each
// word are recomputed so that the result passes CheckParity.
func Pack(frame Frame, withParity bool) []byte {
	raw := make([]byte, utils.BytesPerRawSubframe)
	var previous uint32
	for n := 1; n <= utils.WordsPerSubframe; n++ {
		word := (previous&3)<<30 | frame.Word(n)
		if withParity {
			word = word&^0x3f | WordParity(word)
		}
		start := (n - 1) * utils.BytesPerWireWord
		binary.LittleEndian.PutUint32(raw[start:start+utils.BytesPerWireWord], word)
		previous = word
	}
	return raw
}
