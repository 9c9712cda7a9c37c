// Package simmsg packs and unpacks fixed-schema C messages so that two
// processes built for different data models (LP64, ILP32, ...) can exchange
// them over a point-to-point transport.
//
// A schema is a short format string. Packing schemas hold one letter per
// argument: b bool, c char, s string, h short, i int, l long, f float,
// d double, and the uppercase letters B C H I L F D for arrays (S is
// another name for C). Unpacking
// schemas put the element count (or string length) in front of array and
// string letters, e.g. "hbc32s8I".
//
// Binary mode pads each field to a multiple of its width the way a C
// compiler lays out a struct; character mode packs fields back to back.
//
// A Marshaller is owned by one conversation at a time and is not safe for
// concurrent use.
package simmsg

import (
	"github.com/rs/zerolog"
)

// Mode selects binary (C-aligned) or character (unpadded) layout.
type Mode int

const (
	Binary Mode = iota
	Character
)

func (m Mode) String() string {
	if m == Character {
		return "character"
	}
	return "binary"
}

// Options configures a new Marshaller. Zero profiles select the host's
// native data model.
type Options struct {
	OutgoingProfile Profile
	IncomingProfile Profile
	OutgoingOrder   ByteOrder
	IncomingOrder   ByteOrder
	// Capacity is the initial size of the incoming buffer.
	Capacity int
	Logger   *zerolog.Logger
}

// Marshaller holds the outgoing and incoming message buffers together with
// the data model and byte order that apply to each.
type Marshaller struct {
	log    zerolog.Logger
	host   Widths
	tables [2]codecTable
	out    outBuffer
	in     inBuffer
}

// New returns a Marshaller with empty buffers.
func New(opts Options) *Marshaller {
	return newMarshaller(opts, hostWidths)
}

func newMarshaller(opts Options, host Widths) *Marshaller {
	m := &Marshaller{host: host, log: zerolog.Nop()}
	if opts.Logger != nil {
		m.log = opts.Logger.With().Str("component", "simmsg").Logger()
	}
	m.SetProfile(Outgoing, opts.OutgoingProfile)
	m.SetProfile(Incoming, opts.IncomingProfile)
	m.out.order = opts.OutgoingOrder
	m.in.order = opts.IncomingOrder
	m.ResetOutgoing()
	m.ResetIncoming(opts.Capacity)
	return m
}

// SetProfile replaces the data model of one direction. The other
// direction and any bytes already in the buffers are untouched. A zero
// Profile selects the native model.
func (m *Marshaller) SetProfile(dir Direction, p Profile) {
	if p == (Profile{}) {
		p = Profile{Name: "native", Int: m.host[KindInt], Long: m.host[KindLong]}
	}
	m.tables[dir] = buildCodecTable(p, m.host)
	m.log.Debug().Stringer("direction", dir).Stringer("profile", p).Msg("data model set")
}

// Profile returns the data model in effect for dir.
func (m *Marshaller) Profile(dir Direction) Profile {
	return m.tables[dir].profile
}

// SetByteOrder sets the byte order used for numeric values in dir.
func (m *Marshaller) SetByteOrder(dir Direction, o ByteOrder) {
	if dir == Incoming {
		m.in.order = o
	} else {
		m.out.order = o
	}
}

// ByteOrder returns the byte order in effect for dir.
func (m *Marshaller) ByteOrder(dir Direction) ByteOrder {
	if dir == Incoming {
		return m.in.order
	}
	return m.out.order
}

// ResolveCodec reports the configured width of kind in dir and the kind
// whose native representation is used to encode it.
func (m *Marshaller) ResolveCodec(dir Direction, kind Kind) (int, Kind, error) {
	if kind < 0 || kind >= numKinds {
		return 0, 0, ErrUnsupportedPrimitiveType
	}
	c, err := m.tables[dir].resolve(kind)
	if err != nil {
		return 0, 0, err
	}
	return c.width, c.kind, nil
}
