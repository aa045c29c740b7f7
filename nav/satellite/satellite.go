// The satellite package provides metadata about the satellites of the GPS
// constellation.
package satellite

// Unknown is the block returned for a PRN that isn't in the table.
const Unknown = "Unknown"

// BlockLookup maps a satellite number to its block (its generation).
type BlockLookup interface {
	Block(prn int) string
}

// blocks gives the block of each satellite, indexed by PRN - 1.  This is
// the constellation as of 2024.
var blocks = [32]string{
	"IIF",   // 1
	"IIR",   // 2
	"IIF",   // 3
	"III",   // 4
	"IIR-M", // 5
	"IIF",   // 6
	"IIR-M", // 7
	"IIF",   // 8
	"IIF",   // 9
	"IIF",   // 10
	"III",   // 11
	"IIR-M", // 12
	"IIR",   // 13
	"III",   // 14
	"IIR-M", // 15
	"IIR",   // 16
	"IIR-M", // 17
	"III",   // 18
	"IIR",   // 19
	"IIR",   // 20
	"IIR",   // 21
	"IIR",   // 22
	"III",   // 23
	"IIF",   // 24
	"IIF",   // 25
	"IIF",   // 26
	"IIF",   // 27
	"III",   // 28
	"IIR-M", // 29
	"IIF",   // 30
	"IIR-M", // 31
	"IIF",   // 32
}

// Table is a BlockLookup backed by a fixed table.  Entries in Override
// replace the built-in values.
type Table struct {
	Override map[int]string
}

// Block returns the block of the satellite, or "Unknown".
func (t Table) Block(prn int) string {
	if block, ok := t.Override[prn]; ok {
		return block
	}
	if prn < 1 || prn > len(blocks) {
		return Unknown
	}
	return blocks[prn-1]
}
