package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseValues turns one command line argument per schema letter into the
// Go values Pack expects.
func parseValues(schema string, raw []string) ([]any, error) {
	if len(schema) != len(raw) {
		return nil, fmt.Errorf("schema %q wants %d values, got %d", schema, len(schema), len(raw))
	}
	values := make([]any, len(raw))
	for i, arg := range raw {
		v, err := parseValue(schema[i], arg)
		if err != nil {
			return nil, fmt.Errorf("value %d (%c): %w", i, schema[i], err)
		}
		values[i] = v
	}
	return values, nil
}

func parseValue(letter byte, arg string) (any, error) {
	switch letter {
	case 'c', 's', 'C', 'S':
		return arg, nil
	case 'b':
		return strconv.ParseBool(arg)
	case 'h', 'i', 'l':
		return strconv.ParseInt(arg, 0, 64)
	case 'f', 'd':
		return strconv.ParseFloat(arg, 64)
	case 'B', 'H', 'I', 'L', 'F', 'D':
		return parseList(letter, arg)
	}
	return nil, fmt.Errorf("unknown letter %q", letter)
}

func parseList(letter byte, arg string) (any, error) {
	var parts []string
	if arg != "" {
		parts = strings.Split(arg, ",")
	}
	switch letter {
	case 'B':
		out := make([]bool, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseBool(strings.TrimSpace(p))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case 'F', 'D':
		out := make([]float64, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		out := make([]int64, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseInt(strings.TrimSpace(p), 0, 64)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
}

// unpackSchema derives the unpacking schema for values packed with schema
// by prefixing each array and string letter with its length.
func unpackSchema(schema string, values []any) string {
	var b strings.Builder
	for i := 0; i < len(schema); i++ {
		switch v := values[i].(type) {
		case string:
			if schema[i] != 'c' {
				b.WriteString(strconv.Itoa(len(v)))
			}
		case []bool:
			b.WriteString(strconv.Itoa(len(v)))
		case []int64:
			b.WriteString(strconv.Itoa(len(v)))
		case []float64:
			b.WriteString(strconv.Itoa(len(v)))
		}
		b.WriteByte(schema[i])
	}
	return b.String()
}
