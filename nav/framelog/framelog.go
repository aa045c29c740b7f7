// The framelog package reads and writes a simple framed log of raw
// subframes.  Each record is
//
//	sync byte 0x8b
//	PRN       one byte, 1 to 32
//	subframe  40 bytes, ten little-endian 32-bit words
//	CRC       three bytes, CRC-24Q of the first 42 bytes, big-endian
//
// 45 bytes in all.  The CRC is the one used by RTCM3.  The sync byte is
// the same as the GPS preamble, so it's not unique, which is why the
// reader resynchronises when a CRC check fails.
package framelog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/goblimey/go-gpsnav/nav/pushback"
	"github.com/goblimey/go-gpsnav/nav/utils"

	"github.com/goblimey/go-crc24q/crc24q"
)

// SyncByte starts each record.
const SyncByte = 0x8b

// CRCLengthBytes is the length of the CRC.
const CRCLengthBytes = 3

// RecordLengthBytes is the length of a record.
const RecordLengthBytes = 2 + utils.BytesPerRawSubframe + CRCLengthBytes

// ErrBadCRC is wrapped by the error returned when a record fails its CRC
// check.
var ErrBadCRC = errors.New("CRC check failed")

// Record is one subframe from the log.
type Record struct {
	// PRN is the satellite that sent the subframe.
	PRN int

	// Raw is the subframe in wire format.
	Raw []byte
}

// Encode returns the record in log format.
func (r Record) Encode() []byte {
	buf := make([]byte, 0, RecordLengthBytes)
	buf = append(buf, SyncByte, byte(r.PRN))
	buf = append(buf, r.Raw...)
	crc := crc24q.Hash(buf)
	return append(buf, crc24q.HiByte(crc), crc24q.MiByte(crc), crc24q.LoByte(crc))
}

// CheckCRC checks the CRC of a record in log format.
func CheckCRC(record []byte) error {
	if len(record) != RecordLengthBytes {
		em := fmt.Sprintf("overrun - expected %d bytes in a frame record, got %d",
			RecordLengthBytes, len(record))
		return errors.New(em)
	}

	startOfCRC := len(record) - CRCLengthBytes
	crcHiByte := record[startOfCRC]
	crcMiByte := record[startOfCRC+1]
	crcLoByte := record[startOfCRC+2]

	newCRC := crc24q.Hash(record[:startOfCRC])

	if crc24q.HiByte(newCRC) != crcHiByte ||
		crc24q.MiByte(newCRC) != crcMiByte ||
		crc24q.LoByte(newCRC) != crcLoByte {

		return fmt.Errorf("%w on frame record for PRN %d - given %02x %02x %02x, calculated %02x %02x %02x",
			ErrBadCRC, record[1],
			crcHiByte, crcMiByte, crcLoByte,
			crc24q.HiByte(newCRC), crc24q.MiByte(newCRC), crc24q.LoByte(newCRC))
	}

	return nil
}

// Writer writes records to an io.Writer.
type Writer struct {
	w io.Writer
}

// NewWriter creates a Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write writes a subframe from the given satellite as one record.
func (w *Writer) Write(prn int, raw []byte) error {
	if len(raw) != utils.BytesPerRawSubframe {
		em := fmt.Sprintf("overrun - expected %d bytes in a subframe, got %d",
			utils.BytesPerRawSubframe, len(raw))
		return errors.New(em)
	}
	if prn < 1 || prn > utils.MaxPRN {
		return fmt.Errorf("PRN %d out of range", prn)
	}

	_, err := w.w.Write(Record{PRN: prn, Raw: raw}.Encode())
	return err
}

// Reader reads records from a byte channel, skipping junk and damaged
// records.
type Reader struct {
	bc *pushback.ByteChannel

	logger *slog.Logger

	// onBadCRC, if set, is called for each record that fails the CRC check.
	onBadCRC func(err error)

	junkBytes int
	crcErrors int
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithBadCRCHandler sets a function to be called for each record that
// fails its CRC check.
func WithBadCRCHandler(f func(err error)) ReaderOption {
	return func(r *Reader) {
		r.onBadCRC = f
	}
}

// NewReader creates a Reader.  If the logger is nil, nothing is logged.
func NewReader(bc *pushback.ByteChannel, logger *slog.Logger, opts ...ReaderOption) *Reader {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	r := Reader{bc: bc, logger: logger}
	for _, opt := range opts {
		opt(&r)
	}
	return &r
}

// Next returns the next good record.  It returns io.EOF when the channel
// is closed.  Bytes that don't form part of a good record are counted and
// skipped.
func (r *Reader) Next() (Record, error) {
	for {
		b, err := r.bc.GetNextByte()
		if err != nil {
			return Record{}, io.EOF
		}
		if b != SyncByte {
			r.junkBytes++
			continue
		}

		buf := make([]byte, RecordLengthBytes)
		buf[0] = b
		n := 1
		for ; n < RecordLengthBytes; n++ {
			buf[n], err = r.bc.GetNextByte()
			if err != nil {
				break
			}
		}
		if n < RecordLengthBytes {
			// The input ended part way through a record.  The sync byte
			// may have been data, so scan the rest.
			r.junkBytes++
			r.bc.PushBack(buf[1:n]...)
			continue
		}

		if err := CheckCRC(buf); err != nil {
			// The sync byte may have been a byte of data.  Push back
			// everything after it and scan again.
			r.crcErrors++
			r.junkBytes++
			r.logger.Debug("bad frame record", "error", err)
			if r.onBadCRC != nil {
				r.onBadCRC(err)
			}
			r.bc.PushBack(buf[1:]...)
			continue
		}

		prn := int(buf[1])
		if prn < 1 || prn > utils.MaxPRN {
			r.logger.Warn("frame record with bad PRN", "prn", prn)
			r.junkBytes += RecordLengthBytes
			continue
		}

		return Record{PRN: prn, Raw: buf[2 : 2+utils.BytesPerRawSubframe]}, nil
	}
}

// JunkBytes returns the number of bytes skipped so far.
func (r *Reader) JunkBytes() int {
	return r.junkBytes
}

// CRCErrors returns the number of CRC failures so far.
func (r *Reader) CRCErrors() int {
	return r.crcErrors
}
