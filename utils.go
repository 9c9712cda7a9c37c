package simmsg

import (
	"math"
)

// wire is one element on its way to or from the buffer. Integers, chars and
// bools travel in i; floats in f.
type wire struct {
	i     int64
	f     float64
	float bool
}

func intWire(i int64) wire     { return wire{i: i} }
func floatWire(f float64) wire { return wire{f: f, float: true} }

func (w wire) int() int64 {
	if w.float {
		return int64(w.f)
	}
	return w.i
}

func (w wire) float64() float64 {
	if w.float {
		return w.f
	}
	return float64(w.i)
}

// appendWire encodes v with the native representation of c.kind into
// c.width bytes. Bool and char share the one-byte integer encoding, so an
// integer field borrowing either keeps its value.
func appendWire(dst []byte, order byteOrder, c codec, v wire) []byte {
	switch c.kind {
	case KindFloat:
		return order.AppendUint32(dst, math.Float32bits(float32(v.float64())))
	case KindDouble:
		return order.AppendUint64(dst, math.Float64bits(v.float64()))
	default:
		return appendUint(dst, order, c.width, uint64(v.int()))
	}
}

func appendUint(dst []byte, order byteOrder, width int, u uint64) []byte {
	switch width {
	case 1:
		return append(dst, byte(u))
	case 2:
		return order.AppendUint16(dst, uint16(u))
	case 4:
		return order.AppendUint32(dst, uint32(u))
	default:
		return order.AppendUint64(dst, u)
	}
}

// readWire decodes one element of c.width bytes from b.
func readWire(b []byte, order byteOrder, c codec) wire {
	switch c.kind {
	case KindFloat:
		return floatWire(float64(math.Float32frombits(order.Uint32(b))))
	case KindDouble:
		return floatWire(math.Float64frombits(order.Uint64(b)))
	}
	switch c.width {
	case 1:
		return intWire(int64(int8(b[0])))
	case 2:
		return intWire(int64(int16(order.Uint16(b))))
	case 4:
		return intWire(int64(int32(order.Uint32(b))))
	default:
		return intWire(int64(order.Uint64(b)))
	}
}

// fitsSigned reports whether i is representable in width bytes of two's
// complement.
func fitsSigned(i int64, width int) bool {
	if width >= 8 {
		return true
	}
	bits := uint(width * 8)
	lo := -(int64(1) << (bits - 1))
	hi := int64(1)<<(bits-1) - 1
	return i >= lo && i <= hi
}

// exactInCodec reports whether integer i survives a round trip through the
// float representation of kind. Integer kinds always do.
func exactInCodec(i int64, kind Kind) bool {
	var mantissa uint
	switch kind {
	case KindFloat:
		mantissa = 24
	case KindDouble:
		mantissa = 53
	default:
		return true
	}
	limit := int64(1) << mantissa
	return i >= -limit && i <= limit
}

// padding returns the zero bytes needed to bring offset to a multiple of
// width.
func padding(offset, width int) int {
	if width <= 1 {
		return 0
	}
	return (width - offset%width) % width
}
