package simmsg

import (
	"fmt"
	"unicode/utf8"
)

// Unpack reads the fields described by schema from the incoming buffer.
// A schema with a single field yields that value directly; longer schemas
// yield a []any with one entry per field. Use UnpackAll for a result whose
// shape does not depend on the field count.
//
// Value types: b bool; c, s, C and S string; h, i and l int64; f float32;
// d float64; B []bool; H, I and L []int64; F []float32; D []float64.
func (m *Marshaller) Unpack(mode Mode, schema string) (any, error) {
	vals, err := m.UnpackAll(mode, schema)
	if err != nil {
		return nil, err
	}
	if len(vals) == 1 {
		return vals[0], nil
	}
	return vals, nil
}

// UnpackAll reads the fields described by schema from the incoming buffer
// and returns one value per field. The read cursor only advances when every
// field was decoded.
func (m *Marshaller) UnpackAll(mode Mode, schema string) ([]any, error) {
	fields, err := ParseUnpackSchema(schema)
	if err != nil {
		m.log.Warn().Err(err).Str("schema", schema).Msg("unpack rejected")
		return nil, err
	}
	table := &m.tables[Incoming]
	order := m.in.order.binary()
	data := m.in.data
	cur := m.in.cursor
	vals := make([]any, 0, len(fields))

	for _, f := range fields {
		c, err := table.resolve(f.Kind)
		if err != nil {
			return nil, m.unpackFailed(schema, f, err)
		}
		if mode == Binary {
			cur += padding(cur, c.width)
		}
		n := f.Count
		if cur > len(data) || n > (len(data)-cur)/c.width {
			err := fmt.Errorf("%w: %s needs %d bytes at offset %d of %d",
				ErrBufferUnderrun, string(f.Letter), n*c.width, cur, len(data))
			return nil, m.unpackFailed(schema, f, err)
		}
		size := n * c.width
		chunk := data[cur : cur+size]
		cur += size

		switch {
		case f.Arity == String:
			if !utf8.Valid(chunk) {
				return nil, m.unpackFailed(schema, f,
					fmt.Errorf("%w: %d bytes are not valid UTF-8", ErrEncoding, len(chunk)))
			}
			vals = append(vals, string(chunk))
		case f.Arity == Array && f.Kind == KindChar:
			vals = append(vals, string(chunk))
		case f.Arity == Array:
			vals = append(vals, decodeArray(f.Kind, chunk, n, order, c))
		default:
			vals = append(vals, fromWire(f.Kind, readWire(chunk, order, c)))
		}
	}

	m.log.Debug().
		Str("schema", schema).
		Stringer("mode", mode).
		Int("bytes", cur-m.in.cursor).
		Int("cursor", cur).
		Msg("unpacked")
	m.in.cursor = cur
	return vals, nil
}

func (m *Marshaller) unpackFailed(schema string, f Field, err error) error {
	err = fieldErr(schema, f.Pos, err)
	m.log.Warn().Err(err).Str("schema", schema).Msg("unpack failed")
	return err
}

// fromWire converts a decoded element into the Go type of kind k.
func fromWire(k Kind, w wire) any {
	switch k {
	case KindBool:
		return w.int() != 0 || (w.float && w.f != 0)
	case KindChar:
		return string([]byte{byte(w.int())})
	case KindFloat:
		return float32(w.float64())
	case KindDouble:
		return w.float64()
	default:
		return w.int()
	}
}

func decodeArray(k Kind, chunk []byte, n int, order byteOrder, c codec) any {
	w := c.width
	switch k {
	case KindBool:
		out := make([]bool, n)
		for i := range out {
			out[i] = fromWire(k, readWire(chunk[i*w:], order, c)).(bool)
		}
		return out
	case KindFloat:
		out := make([]float32, n)
		for i := range out {
			out[i] = fromWire(k, readWire(chunk[i*w:], order, c)).(float32)
		}
		return out
	case KindDouble:
		out := make([]float64, n)
		for i := range out {
			out[i] = fromWire(k, readWire(chunk[i*w:], order, c)).(float64)
		}
		return out
	default:
		out := make([]int64, n)
		for i := range out {
			out[i] = readWire(chunk[i*w:], order, c).int()
		}
		return out
	}
}
