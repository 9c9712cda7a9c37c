package simmsg

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/rawbytedev/simmsg/internal/common"
)

// Pack appends values to the outgoing buffer as laid out by schema. The
// schema must hold exactly one letter per value.
//
// Fields are built past the end of the buffer and only committed once every
// field has been encoded, so a failed Pack leaves the buffer as it was.
func (m *Marshaller) Pack(mode Mode, schema string, values ...any) error {
	fields, err := ParsePackSchema(schema, len(values))
	if err != nil {
		m.log.Warn().Err(err).Str("schema", schema).Msg("pack rejected")
		return err
	}
	table := &m.tables[Outgoing]
	order := m.out.order.binary()
	start := len(m.out.data)
	buf := m.out.data

	for i, f := range fields {
		c, err := table.resolve(f.Kind)
		if err != nil {
			return m.packFailed(schema, f, err)
		}
		v := values[i]
		switch f.Arity {
		case String:
			b, err := stringBytes(v)
			if err != nil {
				return m.packFailed(schema, f, err)
			}
			buf = align(buf, mode, c.width)
			buf = append(buf, b...)
		case Array:
			elems, err := arrayWires(f.Kind, v, c)
			if err != nil {
				return m.packFailed(schema, f, err)
			}
			buf = align(buf, mode, c.width)
			for _, w := range elems {
				buf = appendWire(buf, order, c, w)
			}
		default:
			w, err := toWire(f.Kind, v, c)
			if err != nil {
				return m.packFailed(schema, f, err)
			}
			buf = align(buf, mode, c.width)
			buf = appendWire(buf, order, c, w)
		}
	}

	m.out.data = buf
	m.log.Debug().
		Str("schema", schema).
		Stringer("mode", mode).
		Int("bytes", len(buf)-start).
		Int("cursor", len(buf)).
		Msg("packed")
	return nil
}

func (m *Marshaller) packFailed(schema string, f Field, err error) error {
	err = fieldErr(schema, f.Pos, err)
	m.log.Warn().Err(err).Str("schema", schema).Msg("pack failed")
	return err
}

// align pads buf with zeros up to a multiple of width in binary mode.
func align(buf []byte, mode Mode, width int) []byte {
	if mode != Binary {
		return buf
	}
	for n := padding(len(buf), width); n > 0; n-- {
		buf = append(buf, 0)
	}
	return buf
}

// stringBytes returns the bytes of a string field, which must be UTF-8
// whether given as a string or a byte slice.
func stringBytes(v any) ([]byte, error) {
	b, ok := common.Bytes(v)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a string", ErrInvalidValue, v)
	}
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("%w: invalid UTF-8 in %q", ErrEncoding, b)
	}
	return b, nil
}

// toWire converts one scalar argument for a field of kind k encoded
// through c.
func toWire(k Kind, v any, c codec) (wire, error) {
	switch k {
	case KindBool:
		b, ok := common.Bool(v)
		if !ok {
			return wire{}, fmt.Errorf("%w: %T is not a bool", ErrInvalidValue, v)
		}
		if b {
			return intWire(1), nil
		}
		return intWire(0), nil
	case KindChar:
		return charWire(v)
	case KindFloat, KindDouble:
		f, ok := common.Float(v)
		if !ok {
			return wire{}, fmt.Errorf("%w: %T is not a number", ErrInvalidValue, v)
		}
		if c.width == 4 && !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
			return wire{}, fmt.Errorf("%w: %g overflows float", ErrInvalidValue, f)
		}
		return floatWire(f), nil
	default:
		i, ok := common.Int(v)
		if !ok {
			return wire{}, fmt.Errorf("%w: %T is not an integer", ErrInvalidValue, v)
		}
		if !fitsSigned(i, c.width) {
			return wire{}, fmt.Errorf("%w: %d does not fit %d-byte %s", ErrInvalidValue, i, c.width, k)
		}
		if !exactInCodec(i, c.kind) {
			return wire{}, fmt.Errorf("%w: %d is not exact as %s-encoded %s", ErrInvalidValue, i, c.kind, k)
		}
		return intWire(i), nil
	}
}

// charWire accepts a one-byte string or an integer in byte range.
func charWire(v any) (wire, error) {
	switch x := v.(type) {
	case string:
		if !utf8.ValidString(x) {
			return wire{}, fmt.Errorf("%w: invalid UTF-8 in %q", ErrEncoding, x)
		}
		if len(x) != 1 {
			return wire{}, fmt.Errorf("%w: char %q is %d bytes", ErrEncoding, x, len(x))
		}
		return intWire(int64(x[0])), nil
	case []byte:
		if len(x) != 1 {
			return wire{}, fmt.Errorf("%w: char is %d bytes", ErrEncoding, len(x))
		}
		return intWire(int64(x[0])), nil
	}
	i, ok := common.Int(v)
	if !ok {
		return wire{}, fmt.Errorf("%w: %T is not a char", ErrInvalidValue, v)
	}
	if i < 0 || i > math.MaxUint8 {
		return wire{}, fmt.Errorf("%w: char %d out of range", ErrEncoding, i)
	}
	return intWire(i), nil
}

// arrayWires converts every element of an array argument.
func arrayWires(k Kind, v any, c codec) ([]wire, error) {
	// char arrays are raw bytes, like their unpacked form
	if b, ok := common.Bytes(v); ok && k == KindChar {
		out := make([]wire, len(b))
		for i, ch := range b {
			out[i] = intWire(int64(ch))
		}
		return out, nil
	}
	seq, ok := common.Sequence(v)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not an array", ErrInvalidValue, v)
	}
	out := make([]wire, seq.Len())
	for i := range out {
		w, err := toWire(k, seq.Index(i).Interface(), c)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = w
	}
	return out, nil
}
