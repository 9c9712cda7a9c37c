package simmsg

import (
	"fmt"
	"strconv"
)

// The helpers below pack or unpack a single field. A message can be built
// with one Pack call or with a run of these, and the bytes are the same.

func (m *Marshaller) PackBool(mode Mode, v bool) error {
	return m.Pack(mode, "b", v)
}

func (m *Marshaller) PackChar(mode Mode, v byte) error {
	return m.Pack(mode, "c", v)
}

func (m *Marshaller) PackShort(mode Mode, v int16) error {
	return m.Pack(mode, "h", v)
}

func (m *Marshaller) PackInt(mode Mode, v int64) error {
	return m.Pack(mode, "i", v)
}

func (m *Marshaller) PackLong(mode Mode, v int64) error {
	return m.Pack(mode, "l", v)
}

func (m *Marshaller) PackFloat(mode Mode, v float32) error {
	return m.Pack(mode, "f", v)
}

func (m *Marshaller) PackDouble(mode Mode, v float64) error {
	return m.Pack(mode, "d", v)
}

func (m *Marshaller) PackString(mode Mode, v string) error {
	return m.Pack(mode, "s", v)
}

func (m *Marshaller) PackBoolArray(mode Mode, v []bool) error {
	return m.Pack(mode, "B", v)
}

func (m *Marshaller) PackShortArray(mode Mode, v []int16) error {
	return m.Pack(mode, "H", v)
}

func (m *Marshaller) PackIntArray(mode Mode, v []int64) error {
	return m.Pack(mode, "I", v)
}

func (m *Marshaller) PackLongArray(mode Mode, v []int64) error {
	return m.Pack(mode, "L", v)
}

func (m *Marshaller) PackFloatArray(mode Mode, v []float32) error {
	return m.Pack(mode, "F", v)
}

func (m *Marshaller) PackDoubleArray(mode Mode, v []float64) error {
	return m.Pack(mode, "D", v)
}

func (m *Marshaller) UnpackBool(mode Mode) (bool, error) {
	return unpackOne[bool](m, mode, "b")
}

func (m *Marshaller) UnpackChar(mode Mode) (byte, error) {
	s, err := unpackOne[string](m, mode, "c")
	if err != nil {
		return 0, err
	}
	return s[0], nil
}

func (m *Marshaller) UnpackShort(mode Mode) (int16, error) {
	v, err := unpackOne[int64](m, mode, "h")
	return int16(v), err
}

func (m *Marshaller) UnpackInt(mode Mode) (int64, error) {
	return unpackOne[int64](m, mode, "i")
}

func (m *Marshaller) UnpackLong(mode Mode) (int64, error) {
	return unpackOne[int64](m, mode, "l")
}

func (m *Marshaller) UnpackFloat(mode Mode) (float32, error) {
	return unpackOne[float32](m, mode, "f")
}

func (m *Marshaller) UnpackDouble(mode Mode) (float64, error) {
	return unpackOne[float64](m, mode, "d")
}

// UnpackString reads a string of n bytes.
func (m *Marshaller) UnpackString(mode Mode, n int) (string, error) {
	return unpackOne[string](m, mode, counted(n, 's'))
}

func (m *Marshaller) UnpackBoolArray(mode Mode, n int) ([]bool, error) {
	return unpackOne[[]bool](m, mode, counted(n, 'B'))
}

func (m *Marshaller) UnpackShortArray(mode Mode, n int) ([]int16, error) {
	v, err := unpackOne[[]int64](m, mode, counted(n, 'H'))
	if err != nil {
		return nil, err
	}
	out := make([]int16, len(v))
	for i, x := range v {
		out[i] = int16(x)
	}
	return out, nil
}

func (m *Marshaller) UnpackIntArray(mode Mode, n int) ([]int64, error) {
	return unpackOne[[]int64](m, mode, counted(n, 'I'))
}

func (m *Marshaller) UnpackLongArray(mode Mode, n int) ([]int64, error) {
	return unpackOne[[]int64](m, mode, counted(n, 'L'))
}

func (m *Marshaller) UnpackFloatArray(mode Mode, n int) ([]float32, error) {
	return unpackOne[[]float32](m, mode, counted(n, 'F'))
}

func (m *Marshaller) UnpackDoubleArray(mode Mode, n int) ([]float64, error) {
	return unpackOne[[]float64](m, mode, counted(n, 'D'))
}

func counted(n int, letter byte) string {
	if n < 0 {
		n = 0
	}
	return strconv.Itoa(n) + string(letter)
}

func unpackOne[T any](m *Marshaller, mode Mode, schema string) (T, error) {
	var zero T
	vals, err := m.UnpackAll(mode, schema)
	if err != nil {
		return zero, err
	}
	v, ok := vals[0].(T)
	if !ok {
		return zero, fmt.Errorf("simmsg: %s decoded as %T", schema, vals[0])
	}
	return v, nil
}
