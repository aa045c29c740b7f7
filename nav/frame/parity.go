package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"github.com/goblimey/go-gpsnav/nav/utils"
)

// ErrBadParity is returned (wrapped) when a word fails the parity check.
var ErrBadParity = errors.New("parity check failed")

// The six parity bits of a word are each the exclusive OR of one of the
// last two parity bits of the previous word (D29* or D30*) and a selection
// of the 24 source data bits d1 to d24 of this word.  See IS-GPS-200 table
// 20-XIV.  In a wire word D29* is bit 31, D30* bit 30, d1 bit 29 and d24
// bit 6.
var parityEquations = [6]struct {
	previous uint   // 29 or 30
	data     []uint // data bit numbers
}{
	{29, []uint{1, 2, 3, 5, 6, 10, 11, 12, 13, 14, 17, 18, 20, 23}},
	{30, []uint{2, 3, 4, 6, 7, 11, 12, 13, 14, 15, 18, 19, 21, 24}},
	{29, []uint{1, 3, 4, 5, 7, 8, 12, 13, 14, 15, 16, 19, 20, 22}},
	{30, []uint{2, 4, 5, 6, 8, 9, 13, 14, 15, 16, 17, 20, 21, 23}},
	{30, []uint{1, 3, 5, 6, 7, 9, 10, 14, 15, 16, 17, 18, 21, 22, 24}},
	{29, []uint{3, 5, 6, 8, 9, 10, 11, 13, 15, 19, 22, 23, 24}},
}

// parityMasks holds the equations as bit masks over a wire word.  Set up
// by init.
var parityMasks [6]uint32

func init() {
	for i, eq := range parityEquations {
		var mask uint32
		if eq.previous == 29 {
			mask |= 1 << 31
		} else {
			mask |= 1 << 30
		}
		for _, d := range eq.data {
			mask |= 1 << (30 - d)
		}
		parityMasks[i] = mask
	}
}

// WordParity computes D25 to D30 of a wire word from its data bits and
// D29*/D30*.  The result is in the bottom six bits, D30 in bit 0.
func WordParity(word uint32) uint32 {
	var parity uint32
	for _, mask := range parityMasks {
		parity = parity<<1 | uint32(bits.OnesCount32(word&mask)&1)
	}
	return parity
}

// CheckParity checks the parity of every word in a raw subframe.  It
// returns an error wrapping ErrBadParity naming the first word that fails.
func CheckParity(raw []byte) error {
	if len(raw) != utils.BytesPerRawSubframe {
		em := fmt.Sprintf("overrun - expected %d bytes in a subframe, got %d",
			utils.BytesPerRawSubframe, len(raw))
		return errors.New(em)
	}
	for n := 1; n <= utils.WordsPerSubframe; n++ {
		start := (n - 1) * utils.BytesPerWireWord
		word := binary.LittleEndian.Uint32(raw[start : start+utils.BytesPerWireWord])
		if WordParity(word) != word&0x3f {
			return fmt.Errorf("%w on word %d", ErrBadParity, n)
		}
	}
	return nil
}
