// The pushback package provides a channel of bytes with pushback.  A
// scanner that reads a few bytes too many, for example because a record
// turns out to be damaged, can push them back and read them again.
package pushback

import (
	"errors"
)

// ErrDone is returned when the channel has been closed and all the bytes,
// including any pushed back, have been read.
var ErrDone = errors.New("done")

// ErrNilChannel is returned by a ByteChannel with no channel.
var ErrNilChannel = errors.New("channel is nil")

// ByteChannel is a channel of bytes with pushback.
type ByteChannel struct {
	// pushBackBuffer contains any bytes that have been pushed back, in the
	// order in which they will be read.
	pushBackBuffer []byte

	// ch is the source of the bytes.
	ch chan byte
}

// New creates a ByteChannel reading from the given channel, which should be
// buffered.
func New(ch chan byte) *ByteChannel {
	bc := ByteChannel{ch: ch}
	return &bc
}

// Close closes the underlying channel.
func (bc *ByteChannel) Close() {
	close(bc.ch)
}

// GetNextByte returns the first pushed back byte if there is one, otherwise
// the next byte from the channel.  It blocks until a byte is available.
func (bc *ByteChannel) GetNextByte() (byte, error) {
	if len(bc.pushBackBuffer) > 0 {
		b := bc.pushBackBuffer[0]
		bc.pushBackBuffer = bc.pushBackBuffer[1:]
		return b, nil
	}

	if bc.ch == nil {
		return 0, ErrNilChannel
	}
	b, more := <-bc.ch
	if !more {
		return 0, ErrDone
	}
	return b, nil
}

// PushBack pushes back the given bytes.  They will be read again, in the
// same order, before any bytes that were pushed back earlier.
func (bc *ByteChannel) PushBack(b ...byte) {
	buf := make([]byte, 0, len(b)+len(bc.pushBackBuffer))
	buf = append(buf, b...)
	bc.pushBackBuffer = append(buf, bc.pushBackBuffer...)
}

// Pending returns the number of pushed back bytes waiting to be read.
func (bc *ByteChannel) Pending() int {
	return len(bc.pushBackBuffer)
}
