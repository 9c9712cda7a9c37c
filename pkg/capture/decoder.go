package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// Reader reads capture records from an io.Reader.
type Reader struct {
	r   io.Reader
	buf []byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Read returns the next frame, or io.EOF when the stream ends cleanly
// between records.
func (r *Reader) Read() (Frame, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r.r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, ErrTruncated
		}
		return Frame{}, err
	}
	if hdr[0] != magic[0] || hdr[1] != magic[1] {
		return Frame{}, ErrBadMagic
	}
	if hdr[2] != Version {
		return Frame{}, fmt.Errorf("%w: %d", ErrBadVersion, hdr[2])
	}
	length := binary.LittleEndian.Uint32(hdr[3:])
	if length > MaxFrameSize {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}
	need := int(length) + crcSize
	if cap(r.buf) < need {
		r.buf = make([]byte, need)
	}
	r.buf = r.buf[:need]
	if _, err := io.ReadFull(r.r, r.buf); err != nil {
		return Frame{}, ErrTruncated
	}
	body := r.buf[:length]
	want := binary.LittleEndian.Uint32(r.buf[length:])
	if crc32.ChecksumIEEE(body) != want {
		return Frame{}, ErrCRCMismatch
	}
	var f Frame
	if err := decMode.Unmarshal(body, &f); err != nil {
		return Frame{}, fmt.Errorf("capture: decode frame: %w", err)
	}
	return f, nil
}
