package xmlvalue

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Decimal exponent ranges rendered in fixed notation; everything else uses
// scientific notation with at least two exponent digits.
const (
	doubleFixedLimit = 15
	floatFixedLimit  = 7
	fixedLowerLimit  = -5

	maxFastDoubleDigits = 15
	maxFastFloatDigits  = 7
)

var pow10 = [...]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11,
	1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19, 1e20, 1e21, 1e22,
}

var pow10f = [...]float32{1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10}

// FormatDouble returns the shortest text that reads back as exactly f.
func FormatDouble(f float64) string {
	return formatFloat(f, 64, doubleFixedLimit)
}

// FormatFloat returns the shortest text that reads back as exactly f.
func FormatFloat(f float32) string {
	return formatFloat(float64(f), 32, floatFixedLimit)
}

// ParseDouble parses xs:double text.
func ParseDouble(s string) (float64, error) {
	f, err := parseFloat(s, 64)
	if err != nil {
		return 0, conversion(s, "double", err)
	}
	return f, nil
}

// ParseFloat parses xs:float text.
func ParseFloat(s string) (float32, error) {
	f, err := parseFloat(s, 32)
	if err != nil {
		return 0, conversion(s, "float", err)
	}
	return float32(f), nil
}

// ParseDoubleBytes parses xs:double text from a buffer. Plain fixed-point
// input with at most 15 significant digits is decoded without a string
// round trip.
func ParseDoubleBytes(b []byte) (float64, error) {
	if mant, scale, neg, ok := fastDecimal(b, maxFastDoubleDigits); ok && scale < len(pow10) {
		f := float64(mant) / pow10[scale]
		if neg {
			f = -f
		}
		return f, nil
	}
	return ParseDouble(string(b))
}

// ParseFloatBytes parses xs:float text from a buffer. Plain fixed-point
// input with at most 7 significant digits is decoded without a string
// round trip.
func ParseFloatBytes(b []byte) (float32, error) {
	if mant, scale, neg, ok := fastDecimal(b, maxFastFloatDigits); ok && scale < len(pow10f) {
		f := float32(mant) / pow10f[scale]
		if neg {
			f = -f
		}
		return f, nil
	}
	return ParseFloat(string(b))
}

// fastDecimal accepts [-]digits[.digits] with a bounded digit count so the
// mantissa and the power of ten are both exact in the target precision.
func fastDecimal(b []byte, maxDigits int) (uint64, int, bool, bool) {
	i := 0
	neg := false
	if len(b) > 0 && b[0] == '-' {
		neg = true
		i++
	}
	var mant uint64
	digits := 0
	scale := 0
	seenDot := false
	seenDigit := false
	for ; i < len(b); i++ {
		c := b[i]
		switch {
		case isDigit(c):
			seenDigit = true
			if mant == 0 && c == '0' && !seenDot {
				continue
			}
			digits++
			if digits > maxDigits {
				return 0, 0, false, false
			}
			mant = mant*10 + uint64(c-'0')
			if seenDot {
				scale++
			}
		case c == '.' && !seenDot:
			seenDot = true
		default:
			return 0, 0, false, false
		}
	}
	if !seenDigit || (seenDot && b[len(b)-1] == '.') {
		return 0, 0, false, false
	}
	return mant, scale, neg, true
}

func parseFloat(s string, bits int) (float64, error) {
	trimmed := TrimXMLWhitespaceString(s)
	switch trimmed {
	case "":
		return 0, errEmpty
	case "INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	}
	if !isFloatLexical(trimmed) {
		return 0, errBadChar
	}
	f, err := strconv.ParseFloat(trimmed, bits)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f, nil
		}
		return 0, errBadChar
	}
	return f, nil
}

func formatFloat(f float64, bits, fixedLimit int) string {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NaN"
	case f == 0:
		if math.Signbit(f) {
			return "-0"
		}
		return "0"
	}
	sci := strconv.FormatFloat(f, 'e', -1, bits)
	mantissa, expText, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expText)
	neg := mantissa[0] == '-'
	if neg {
		mantissa = mantissa[1:]
	}
	digits := strings.Replace(mantissa, ".", "", 1)

	var b strings.Builder
	b.Grow(len(digits) + 8)
	if neg {
		b.WriteByte('-')
	}
	if exp <= fixedLowerLimit || exp >= fixedLimit {
		b.WriteByte(digits[0])
		if len(digits) > 1 {
			b.WriteByte('.')
			b.WriteString(digits[1:])
		}
		b.WriteByte('E')
		if exp < 0 {
			b.WriteByte('-')
			exp = -exp
		} else {
			b.WriteByte('+')
		}
		if exp < 10 {
			b.WriteByte('0')
		}
		b.WriteString(strconv.Itoa(exp))
		return b.String()
	}
	if exp < 0 {
		b.WriteString("0.")
		for i := -1; i > exp; i-- {
			b.WriteByte('0')
		}
		b.WriteString(digits)
		return b.String()
	}
	intLen := exp + 1
	if len(digits) <= intLen {
		b.WriteString(digits)
		for i := len(digits); i < intLen; i++ {
			b.WriteByte('0')
		}
		return b.String()
	}
	b.WriteString(digits[:intLen])
	b.WriteByte('.')
	b.WriteString(digits[intLen:])
	return b.String()
}

func isFloatLexical(value string) bool {
	if len(value) == 0 {
		return false
	}
	i := 0
	if value[i] == '+' || value[i] == '-' {
		i++
		if i == len(value) {
			return false
		}
	}
	startDigits := 0
	for i < len(value) && isDigit(value[i]) {
		i++
		startDigits++
	}
	if i < len(value) && value[i] == '.' {
		i++
		fracDigits := 0
		for i < len(value) && isDigit(value[i]) {
			i++
			fracDigits++
		}
		if startDigits == 0 && fracDigits == 0 {
			return false
		}
	} else if startDigits == 0 {
		return false
	}
	if i < len(value) && (value[i] == 'e' || value[i] == 'E') {
		i++
		if i == len(value) {
			return false
		}
		if value[i] == '+' || value[i] == '-' {
			i++
			if i == len(value) {
				return false
			}
		}
		expDigits := 0
		for i < len(value) && isDigit(value[i]) {
			i++
			expDigits++
		}
		if expDigits == 0 {
			return false
		}
	}
	return i == len(value)
}
