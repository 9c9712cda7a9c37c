package capture

import (
	"encoding/binary"
	"hash/crc32"
	"io"
)

// Writer appends capture records to an io.Writer.
type Writer struct {
	w   io.Writer
	buf []byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes f as one record.
func (w *Writer) Write(f Frame) error {
	body, err := encMode.Marshal(f)
	if err != nil {
		return err
	}
	w.buf = encodeRecord(w.buf[:0], body)
	_, err = w.w.Write(w.buf)
	return err
}

func encodeRecord(dst, body []byte) []byte {
	dst = append(dst, magic[0], magic[1], Version)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(body)))
	dst = append(dst, body...)
	return binary.LittleEndian.AppendUint32(dst, crc32.ChecksumIEEE(body))
}
