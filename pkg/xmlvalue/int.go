package xmlvalue

import (
	"errors"
	"strconv"
)

// maxFastIntDigits bounds the fast path so accumulation cannot overflow int64.
const (
	maxFastIntDigits  = 18
	maxFastUintDigits = 19
)

// FormatInt returns the canonical text of a signed integer.
func FormatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// FormatUint returns the canonical text of an unsigned integer.
func FormatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// ParseInt parses signed integer text for the requested bit size.
func ParseInt(s string, bits int) (int64, error) {
	name := signedTypeName(bits)
	trimmed := TrimXMLWhitespaceString(s)
	if trimmed == "" {
		return 0, conversion(s, name, errEmpty)
	}
	v, err := strconv.ParseInt(trimmed, 10, bits)
	if err != nil {
		return 0, conversion(s, name, numErrorCause(err))
	}
	return v, nil
}

// ParseUint parses unsigned integer text for the requested bit size.
func ParseUint(s string, bits int) (uint64, error) {
	name := unsignedTypeName(bits)
	trimmed := TrimXMLWhitespaceString(s)
	if trimmed == "" {
		return 0, conversion(s, name, errEmpty)
	}
	if trimmed[0] == '+' {
		trimmed = trimmed[1:]
	}
	v, err := strconv.ParseUint(trimmed, 10, bits)
	if err != nil {
		return 0, conversion(s, name, numErrorCause(err))
	}
	return v, nil
}

// ParseIntBytes parses signed integer text from a buffer. Plain ASCII
// digits with an optional leading minus sign are decoded in place.
func ParseIntBytes(b []byte, bits int) (int64, error) {
	if v, ok := fastInt(b); ok {
		if bits < 64 {
			limit := int64(1) << (bits - 1)
			if v < -limit || v >= limit {
				return 0, conversion(string(b), signedTypeName(bits), errOverflow)
			}
		}
		return v, nil
	}
	return ParseInt(string(b), bits)
}

// ParseUintBytes parses unsigned integer text from a buffer. Plain ASCII
// digits are decoded in place.
func ParseUintBytes(b []byte, bits int) (uint64, error) {
	if v, ok := fastUint(b); ok {
		if bits < 64 && v >= uint64(1)<<bits {
			return 0, conversion(string(b), unsignedTypeName(bits), errOverflow)
		}
		return v, nil
	}
	return ParseUint(string(b), bits)
}

func fastInt(b []byte) (int64, bool) {
	neg := false
	digits := b
	if len(digits) > 0 && digits[0] == '-' {
		neg = true
		digits = digits[1:]
	}
	if len(digits) == 0 || len(digits) > maxFastIntDigits {
		return 0, false
	}
	var v int64
	for _, c := range digits {
		if !isDigit(c) {
			return 0, false
		}
		v = v*10 + int64(c-'0')
	}
	if neg {
		v = -v
	}
	return v, true
}

func fastUint(b []byte) (uint64, bool) {
	if len(b) == 0 || len(b) > maxFastUintDigits {
		return 0, false
	}
	var v uint64
	for _, c := range b {
		if !isDigit(c) {
			return 0, false
		}
		v = v*10 + uint64(c-'0')
	}
	return v, true
}

func numErrorCause(err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return errOverflow
	}
	return errBadChar
}

func signedTypeName(bits int) string {
	switch bits {
	case 8:
		return "byte"
	case 16:
		return "short"
	case 32:
		return "int"
	default:
		return "long"
	}
}

func unsignedTypeName(bits int) string {
	switch bits {
	case 8:
		return "unsignedByte"
	case 16:
		return "unsignedShort"
	case 32:
		return "unsignedInt"
	default:
		return "unsignedLong"
	}
}
