// Package capture persists message buffers so they can be replayed into
// another marshaller, typically in another process.
//
// A capture stream is a sequence of records:
//
//	magic "SM" (2B) | version (1B) | length (4B, little endian) | CBOR frame | CRC32 (4B)
//
// The CRC covers the CBOR bytes only.
package capture

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/rawbytedev/simmsg"
)

const (
	Version    = 1
	headerSize = 7
	crcSize    = 4
	// MaxFrameSize bounds the CBOR frame length accepted by a Reader.
	MaxFrameSize = 16 << 20
)

var magic = [2]byte{'S', 'M'}

var (
	ErrBadMagic       = errors.New("capture: bad magic")
	ErrBadVersion     = errors.New("capture: unsupported version")
	ErrCRCMismatch    = errors.New("capture: crc mismatch")
	ErrFrameTooLarge  = errors.New("capture: frame too large")
	ErrTruncated      = errors.New("capture: truncated record")
	ErrBadFrameFields = errors.New("capture: invalid frame fields")
)

// Frame is one captured buffer with the settings it was built under.
type Frame struct {
	Direction string `cbor:"direction"`
	Mode      string `cbor:"mode"`
	Profile   string `cbor:"profile"`
	IntWidth  int    `cbor:"int_width"`
	LongWidth int    `cbor:"long_width"`
	ByteOrder string `cbor:"byte_order"`
	Schema    string `cbor:"schema,omitempty"`
	Payload   []byte `cbor:"payload"`
}

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("capture: CBOR encoder initialization failed: " + err.Error())
	}
	// Reader bounds the frame length before decoding.
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic("capture: CBOR decoder initialization failed: " + err.Error())
	}
}

// FromMarshaller captures the buffer of dir together with that direction's
// data model and byte order. schema is stored as a note for the reader.
func FromMarshaller(m *simmsg.Marshaller, dir simmsg.Direction, mode simmsg.Mode, schema string) Frame {
	p := m.Profile(dir)
	payload := m.ReadOutgoing()
	if dir == simmsg.Incoming {
		payload = m.ReadIncoming()
	}
	return Frame{
		Direction: dir.String(),
		Mode:      mode.String(),
		Profile:   p.Name,
		IntWidth:  p.Int,
		LongWidth: p.Long,
		ByteOrder: m.ByteOrder(dir).String(),
		Schema:    schema,
		Payload:   payload,
	}
}

// Settings decodes the mode, data model and byte order recorded in f.
func (f Frame) Settings() (simmsg.Mode, simmsg.Profile, simmsg.ByteOrder, error) {
	var mode simmsg.Mode
	switch f.Mode {
	case "binary":
		mode = simmsg.Binary
	case "character":
		mode = simmsg.Character
	default:
		return 0, simmsg.Profile{}, 0, fmt.Errorf("%w: mode %q", ErrBadFrameFields, f.Mode)
	}
	if f.IntWidth <= 0 || f.LongWidth <= 0 {
		return 0, simmsg.Profile{}, 0, fmt.Errorf("%w: widths %d/%d", ErrBadFrameFields, f.IntWidth, f.LongWidth)
	}
	order, err := simmsg.ParseByteOrder(f.ByteOrder)
	if err != nil {
		return 0, simmsg.Profile{}, 0, fmt.Errorf("%w: %v", ErrBadFrameFields, err)
	}
	p := simmsg.Profile{Name: f.Profile, Int: f.IntWidth, Long: f.LongWidth}
	return mode, p, order, nil
}

// Replay loads f into the incoming side of m: the payload becomes the
// incoming buffer and the recorded data model and byte order apply to it.
// It returns the mode the frame was packed in.
func Replay(m *simmsg.Marshaller, f Frame) (simmsg.Mode, error) {
	mode, p, order, err := f.Settings()
	if err != nil {
		return 0, err
	}
	m.SetProfile(simmsg.Incoming, p)
	m.SetByteOrder(simmsg.Incoming, order)
	m.ResetIncoming(len(f.Payload))
	copy(m.IncomingBuffer(), f.Payload)
	return mode, nil
}
