package simmsg

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Kind is one of the seven C primitive types a message may carry.
type Kind int

const (
	KindBool Kind = iota
	KindChar
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble

	numKinds = 7
)

var kindNames = [numKinds]string{"bool", "char", "short", "int", "long", "float", "double"}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Arity says how many units of a kind a field holds.
type Arity int

const (
	Scalar Arity = iota
	Array
	String
)

func (a Arity) String() string {
	switch a {
	case Scalar:
		return "scalar"
	case Array:
		return "array"
	case String:
		return "string"
	default:
		return "Arity(" + strconv.Itoa(int(a)) + ")"
	}
}

// Field describes one entry of a schema. Count is the element count for
// arrays and the byte length for strings; packing schemas leave it at -1
// for those and take the length from the argument instead.
type Field struct {
	Letter byte
	Pos    int
	Kind   Kind
	Arity  Arity
	Count  int
}

// lookupLetter maps a schema letter to its kind and arity.
func lookupLetter(ch byte) (Kind, Arity, bool) {
	switch ch {
	case 'b':
		return KindBool, Scalar, true
	case 'c':
		return KindChar, Scalar, true
	case 's':
		return KindChar, String, true
	case 'h':
		return KindShort, Scalar, true
	case 'i':
		return KindInt, Scalar, true
	case 'l':
		return KindLong, Scalar, true
	case 'f':
		return KindFloat, Scalar, true
	case 'd':
		return KindDouble, Scalar, true
	case 'B':
		return KindBool, Array, true
	case 'C', 'S':
		return KindChar, Array, true
	case 'H':
		return KindShort, Array, true
	case 'I':
		return KindInt, Array, true
	case 'L':
		return KindLong, Array, true
	case 'F':
		return KindFloat, Array, true
	case 'D':
		return KindDouble, Array, true
	}
	return 0, 0, false
}

func isLetter(ch byte) bool { return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' }
func isDigit(ch byte) bool  { return ch >= '0' && ch <= '9' }

// ParsePackSchema parses a packing schema: letters only, one per argument.
// Array and string counts are left at -1. Arity counts characters, so a
// non-ASCII letter is reported as an unsupported type.
func ParsePackSchema(schema string, nargs int) ([]Field, error) {
	if utf8.RuneCountInString(schema) != nargs {
		return nil, fieldErr(schema, -1, ErrArityMismatch)
	}
	if schema == "" {
		return nil, fieldErr(schema, -1, ErrInvalidFormat)
	}
	for i, r := range schema {
		if !unicode.IsLetter(r) {
			return nil, fieldErr(schema, i, ErrInvalidFormat)
		}
	}
	fields := make([]Field, 0, len(schema))
	for i, r := range schema {
		if r >= utf8.RuneSelf {
			return nil, fieldErr(schema, i, ErrUnsupportedPrimitiveType)
		}
		kind, arity, ok := lookupLetter(schema[i])
		if !ok {
			return nil, fieldErr(schema, i, ErrUnsupportedPrimitiveType)
		}
		count := 1
		if arity != Scalar {
			count = -1
		}
		fields = append(fields, Field{Letter: schema[i], Pos: i, Kind: kind, Arity: arity, Count: count})
	}
	return fields, nil
}

// ParseUnpackSchema parses an unpacking schema made of [0-9]*[A-Za-z]
// tokens. Leading digits give the count of an array or string field and
// default to 1; digits in front of a scalar letter are ignored.
func ParseUnpackSchema(schema string) ([]Field, error) {
	if schema == "" {
		return nil, fieldErr(schema, -1, ErrInvalidFormat)
	}
	for i := 0; i < len(schema); i++ {
		if !isLetter(schema[i]) && !isDigit(schema[i]) {
			return nil, fieldErr(schema, i, ErrInvalidFormat)
		}
	}
	var fields []Field
	digits := -1
	for i := 0; i < len(schema); i++ {
		ch := schema[i]
		if isDigit(ch) {
			if digits < 0 {
				digits = i
			}
			continue
		}
		kind, arity, ok := lookupLetter(ch)
		if !ok {
			return nil, fieldErr(schema, i, ErrUnsupportedPrimitiveType)
		}
		count := 1
		if arity != Scalar && digits >= 0 {
			n, err := strconv.Atoi(schema[digits:i])
			if err != nil {
				return nil, fieldErr(schema, digits, ErrInvalidFormat)
			}
			count = n
		}
		digits = -1
		fields = append(fields, Field{Letter: ch, Pos: i, Kind: kind, Arity: arity, Count: count})
	}
	// a trailing count names no field
	if digits >= 0 {
		return nil, fieldErr(schema, digits, ErrInvalidFormat)
	}
	return fields, nil
}
