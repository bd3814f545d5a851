package bframe

import (
	"bytes"
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
)

// Value constrains the types a field value can be extracted as.
type Value interface {
	string | int | int64 | uint64 | float64
}

// GetValue finds the first occurrence of field followed by '=' in the message and
// converts the text up to the next '&' (or the end of the message) into T.
//
// Conversion reads like stream extraction: leading whitespace is skipped and reading
// stops at the first byte that does not fit T, so "21abc" yields 21 for integers and
// "Cosby HTTP/1.1" yields "Cosby" for strings. A numeric value without any usable
// prefix returns [ErrMalformedValue] instead of zero. No percent-decoding is done.
func GetValue[T Value](msg []byte, field string) (T, error) {
	var v T

	raw, err := rawValue(msg, field)
	if err != nil {
		return v, err
	}

	raw = bytes.TrimLeft(raw, whitespace)

	switch p := any(&v).(type) {
	case *string:
		*p = string(word(raw))
	case *int:
		n, err := parseSigned(raw, strconv.IntSize)
		if err != nil {
			return v, errors.Wrapf(err, "field %q", field)
		}
		*p = int(n)
	case *int64:
		n, err := parseSigned(raw, 64)
		if err != nil {
			return v, errors.Wrapf(err, "field %q", field)
		}
		*p = n
	case *uint64:
		n, err := parseUnsigned(raw)
		if err != nil {
			return v, errors.Wrapf(err, "field %q", field)
		}
		*p = n
	case *float64:
		f, err := parseFloat(raw)
		if err != nil {
			return v, errors.Wrapf(err, "field %q", field)
		}
		*p = f
	}

	return v, nil
}

// GetString returns the string value of field, see [GetValue].
func GetString(msg []byte, field string) (string, error) {
	return GetValue[string](msg, field)
}

// GetInt returns the integer value of field, see [GetValue].
func GetInt(msg []byte, field string) (int, error) {
	return GetValue[int](msg, field)
}

const whitespace = " \t\r\n\v\f"

func rawValue(msg []byte, field string) ([]byte, error) {
	key := []byte(field + "=")

	idx := bytes.Index(msg, key)
	if idx < 0 {
		return nil, errors.Wrapf(ErrNotFound, "field %q", field)
	}

	raw := msg[idx+len(key):]
	if end := bytes.IndexByte(raw, '&'); end >= 0 {
		raw = raw[:end]
	}

	return raw, nil
}

// word returns the leading run of non-whitespace bytes.
func word(b []byte) []byte {
	if end := bytes.IndexAny(b, whitespace); end >= 0 {
		return b[:end]
	}

	return b
}

// numericPrefix returns the longest prefix made of an optional sign followed by digits.
func numericPrefix(b []byte) []byte {
	i := 0
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}

	start := i
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}

	if i == start {
		return nil
	}

	return b[:i]
}

func parseSigned(b []byte, bitSize int) (int64, error) {
	prefix := numericPrefix(b)
	if prefix == nil {
		return 0, ErrMalformedValue
	}

	n, err := strconv.ParseInt(string(prefix), 10, bitSize)
	if err != nil {
		return 0, errors.Mark(errors.Wrap(err, "parse integer"), ErrMalformedValue)
	}

	return n, nil
}

func parseUnsigned(b []byte) (uint64, error) {
	prefix := numericPrefix(b)
	if prefix == nil || prefix[0] == '-' {
		return 0, ErrMalformedValue
	}

	n, err := strconv.ParseUint(string(bytes.TrimPrefix(prefix, []byte("+"))), 10, 64)
	if err != nil {
		return 0, errors.Mark(errors.Wrap(err, "parse unsigned integer"), ErrMalformedValue)
	}

	return n, nil
}

// parseFloat converts the longest prefix of the form [+-]digits[.digits][(e|E)[+-]digits].
func parseFloat(b []byte) (float64, error) {
	i := 0
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		i++
	}

	digits := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
		digits++
	}

	if i < len(b) && b[i] == '.' {
		i++
		for i < len(b) && b[i] >= '0' && b[i] <= '9' {
			i++
			digits++
		}
	}

	if digits == 0 {
		return 0, ErrMalformedValue
	}

	// an exponent only counts when it has at least one digit
	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		j := i + 1
		if j < len(b) && (b[j] == '+' || b[j] == '-') {
			j++
		}

		if j < len(b) && b[j] >= '0' && b[j] <= '9' {
			for j < len(b) && b[j] >= '0' && b[j] <= '9' {
				j++
			}
			i = j
		}
	}

	f, err := strconv.ParseFloat(string(b[:i]), 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, errors.Mark(errors.Newf("parse float %q", b[:i]), ErrMalformedValue)
	}

	return f, nil
}
