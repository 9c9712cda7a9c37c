package simmsg

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Widths assigns a byte width to every Kind.
type Widths [numKinds]int

// Profile is a C data model. Only int and long differ between profiles;
// bool, char, short, float and double are always 1, 1, 2, 4 and 8 bytes.
type Profile struct {
	Name string
	Int  int
	Long int
}

var (
	LP64  = Profile{Name: "LP64", Int: 4, Long: 8}
	ILP64 = Profile{Name: "ILP64", Int: 8, Long: 8}
	LLP64 = Profile{Name: "LLP64", Int: 4, Long: 4}
	ILP32 = Profile{Name: "ILP32", Int: 4, Long: 4}
	LP32  = Profile{Name: "LP32", Int: 2, Long: 4}
)

// Profiles lists the named data models.
func Profiles() []Profile { return []Profile{LP64, ILP64, LLP64, ILP32, LP32} }

// ProfileByName looks up a named data model, ignoring case. "native"
// returns the host's own model.
func ProfileByName(name string) (Profile, error) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "native") {
		return NativeProfile(), nil
	}
	for _, p := range Profiles() {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// CustomProfile builds an unnamed model with arbitrary int and long widths.
// Widths no native type can represent fail at resolution time.
func CustomProfile(intWidth, longWidth int) Profile {
	return Profile{Name: "custom", Int: intWidth, Long: longWidth}
}

// NativeProfile is the data model of the host this process runs on.
func NativeProfile() Profile {
	return Profile{Name: "native", Int: hostWidths[KindInt], Long: hostWidths[KindLong]}
}

// Widths expands the profile into a full width table.
func (p Profile) Widths() Widths {
	return Widths{1, 1, 2, p.Int, p.Long, 4, 8}
}

func (p Profile) String() string {
	return p.Name + "(int=" + strconv.Itoa(p.Int) + ",long=" + strconv.Itoa(p.Long) + ")"
}

// hostWidths are the widths of the C types on the host. Go has no C long,
// so it follows the platform ABI: 4 bytes on Windows and 32-bit targets.
var hostWidths = nativeWidths(strconv.IntSize, runtime.GOOS)

func nativeWidths(intSize int, goos string) Widths {
	long := intSize / 8
	if goos == "windows" {
		long = 4
	}
	return Widths{1, 1, 2, 4, long, 4, 8}
}

// ByteOrder selects the byte order of numeric values in one direction.
type ByteOrder int

const (
	NativeOrder ByteOrder = iota
	LittleEndian
	BigEndian
	NetworkOrder
)

// ParseByteOrder accepts the names native, little, big and network as
// well as the struct-style markers @ = < > !.
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native", "@", "=":
		return NativeOrder, nil
	case "little", "little-endian", "le", "<":
		return LittleEndian, nil
	case "big", "big-endian", "be", ">":
		return BigEndian, nil
	case "network", "!":
		return NetworkOrder, nil
	}
	return 0, fmt.Errorf("simmsg: unknown byte order %q", s)
}

func (o ByteOrder) String() string {
	switch o {
	case NativeOrder:
		return "native"
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	case NetworkOrder:
		return "network"
	}
	return "ByteOrder(" + strconv.Itoa(int(o)) + ")"
}

// byteOrder is what the codecs need from an order: fixed-width reads and
// appends.
type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

func (o ByteOrder) binary() byteOrder {
	switch o {
	case LittleEndian:
		return binary.LittleEndian
	case BigEndian, NetworkOrder:
		return binary.BigEndian
	default:
		return binary.NativeEndian
	}
}

// Direction picks the outgoing or incoming half of a Marshaller.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
)

func (d Direction) String() string {
	if d == Incoming {
		return "incoming"
	}
	return "outgoing"
}

// codec is the resolved encoding of one kind: its configured width and
// the kind whose native representation produces bytes of that width.
type codec struct {
	width int
	kind  Kind
	err   error
}

// codecTable is built once per profile change so that every field of a
// message resolves against the same table.
type codecTable struct {
	profile Profile
	entries [numKinds]codec
}

func buildCodecTable(p Profile, host Widths) codecTable {
	t := codecTable{profile: p}
	widths := p.Widths()
	for k := Kind(0); k < numKinds; k++ {
		sur, err := surrogate(k, widths[k], host)
		t.entries[k] = codec{width: widths[k], kind: sur, err: err}
	}
	return t
}

func (t *codecTable) resolve(k Kind) (codec, error) {
	c := t.entries[k]
	if c.err != nil {
		return codec{}, c.err
	}
	return c, nil
}

// kindClass groups kinds whose values convert without changing meaning.
func kindClass(k Kind) []Kind {
	switch k {
	case KindShort, KindInt, KindLong:
		return []Kind{KindShort, KindInt, KindLong}
	case KindFloat, KindDouble:
		return []Kind{KindFloat, KindDouble}
	default:
		return []Kind{k}
	}
}

// surrogate finds a kind whose native width equals width. The kind itself
// wins, then its own class, then any kind in table order.
func surrogate(k Kind, width int, host Widths) (Kind, error) {
	if host[k] == width {
		return k, nil
	}
	for _, c := range kindClass(k) {
		if host[c] == width {
			return c, nil
		}
	}
	for c := Kind(0); c < numKinds; c++ {
		if host[c] == width {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %s needs %d bytes", ErrUnsupportedDataModelWidth, k, width)
}
