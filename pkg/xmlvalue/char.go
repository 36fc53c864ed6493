package xmlvalue

import (
	"strconv"
	"unicode/utf8"
)

// Char is a single UTF-16 code unit carried as its numeric value.
type Char uint16

// FormatChar writes the code unit as a decimal integer.
func FormatChar(c Char) string {
	return strconv.FormatUint(uint64(c), 10)
}

// ParseChar reads a decimal code unit.
func ParseChar(s string) (Char, error) {
	t := TrimXMLWhitespaceString(s)
	if t == "" {
		return 0, conversion(s, "char", errEmpty)
	}
	v, err := strconv.ParseUint(t, 10, 16)
	if err != nil {
		return 0, conversion(s, "char", numErrorCause(err))
	}
	return Char(v), nil
}

// String returns the character itself, or U+FFFD for lone surrogates.
func (c Char) String() string {
	r := rune(c)
	if !utf8.ValidRune(r) {
		r = utf8.RuneError
	}
	return string(r)
}
