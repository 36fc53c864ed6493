package xmlvalue

import "iter"

// TrimXMLWhitespace removes leading and trailing XML whitespace without allocation.
func TrimXMLWhitespace(in []byte) []byte {
	start := 0
	end := len(in)
	for start < end && IsXMLWhitespaceByte(in[start]) {
		start++
	}
	for end > start && IsXMLWhitespaceByte(in[end-1]) {
		end--
	}
	return in[start:end]
}

// TrimXMLWhitespaceString removes leading and trailing XML whitespace.
// It returns the original string when no trimming is needed.
func TrimXMLWhitespaceString(in string) string {
	start := 0
	end := len(in)
	for start < end && IsXMLWhitespaceByte(in[start]) {
		start++
	}
	for end > start && IsXMLWhitespaceByte(in[end-1]) {
		end--
	}
	if start == 0 && end == len(in) {
		return in
	}
	return in[start:end]
}

// FieldsXMLWhitespace yields XML whitespace-separated fields without allocation.
func FieldsXMLWhitespace(in string) iter.Seq[string] {
	return func(yield func(string) bool) {
		i := 0
		for i < len(in) {
			for i < len(in) && IsXMLWhitespaceByte(in[i]) {
				i++
			}
			if i >= len(in) {
				return
			}
			start := i
			for i < len(in) && !IsXMLWhitespaceByte(in[i]) {
				i++
			}
			if !yield(in[start:i]) {
				return
			}
		}
	}
}

// IsXMLWhitespaceByte reports whether the byte is XML whitespace.
func IsXMLWhitespaceByte(b byte) bool {
	if b > ' ' {
		return false
	}
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func trimLeadingZeros(s string) string {
	i := 0
	for i < len(s) && s[i] == '0' {
		i++
	}
	return s[i:]
}
