package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type celsius int16

func TestInt(t *testing.T) {
	cases := []struct {
		in   any
		want int64
		ok   bool
	}{
		{int8(-3), -3, true},
		{uint16(65535), 65535, true},
		{celsius(-40), -40, true},
		{uint64(math.MaxUint64), 0, false},
		{1.5, 0, false},
		{"7", 0, false},
	}
	for _, c := range cases {
		got, ok := Int(c.in)
		assert.Equal(t, c.ok, ok, "%T", c.in)
		assert.Equal(t, c.want, got, "%T", c.in)
	}
}

func TestFloatBoolBytes(t *testing.T) {
	f, ok := Float(float32(0.5))
	assert.True(t, ok)
	assert.Equal(t, 0.5, f)
	f, ok = Float(3)
	assert.True(t, ok)
	assert.Equal(t, 3.0, f)
	_, ok = Float(true)
	assert.False(t, ok)

	b, ok := Bool(2)
	assert.True(t, ok)
	assert.True(t, b)
	_, ok = Bool("yes")
	assert.False(t, ok)

	raw, ok := Bytes("hi")
	assert.True(t, ok)
	assert.Equal(t, []byte("hi"), raw)
	_, ok = Bytes(12)
	assert.False(t, ok)

	seq, ok := Sequence([3]int{1, 2, 3})
	assert.True(t, ok)
	assert.Equal(t, 3, seq.Len())
	_, ok = Sequence("abc")
	assert.False(t, ok)
}
