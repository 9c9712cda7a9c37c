package simmsg

import (
	"testing"
)

func BenchmarkPackScalars(b *testing.B) {
	m := New(Options{})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m.ResetOutgoing()
		_ = m.Pack(Binary, "hbcilfd", 1, true, "A", 2, 3, float32(4), 5.0)
	}
}

func BenchmarkPackCanned(b *testing.B) {
	schema, _, values := canned()
	m := New(Options{})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m.ResetOutgoing()
		_ = m.Pack(Binary, schema, values...)
	}
}

func BenchmarkUnpackCanned(b *testing.B) {
	schema, unpackSchema, values := canned()
	m := New(Options{})
	if err := m.Pack(Binary, schema, values...); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m.CrossCopy()
		_, _ = m.UnpackAll(Binary, unpackSchema)
	}
}

func BenchmarkPackSurrogate(b *testing.B) {
	m := newMarshaller(Options{OutgoingProfile: ILP64}, ilp32Host)
	longs := []int64{1, 2, 3, 4, 5, 6, 7, 8}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		m.ResetOutgoing()
		_ = m.Pack(Binary, "iL", 42, longs)
	}
}
