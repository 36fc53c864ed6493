package xmlvalue

import (
	"strconv"
	"strings"
)

const (
	// MaxDecimalScale is the largest number of fractional digits a Decimal holds.
	MaxDecimalScale = 28
	// maxDecimalCoef is the largest 96-bit coefficient.
	maxDecimalCoef = "79228162514264337593543950335"
)

// Decimal is a fixed-point decimal with a 96-bit coefficient and an
// explicit scale. The scale is preserved, so 1.50 and 1.5 are distinct
// values that format differently. Zero is never negative.
type Decimal struct {
	coef  string
	scale uint8
	neg   bool
}

// NewDecimal returns unscaled * 10^-scale.
func NewDecimal(unscaled int64, scale int) Decimal {
	if scale < 0 || scale > MaxDecimalScale {
		panic("xmlvalue: decimal scale out of range")
	}
	neg := unscaled < 0
	var digits string
	if neg {
		digits = strconv.FormatUint(uint64(-(unscaled+1))+1, 10)
	} else {
		digits = strconv.FormatUint(uint64(unscaled), 10)
	}
	if digits == "0" {
		neg = false
	}
	return Decimal{coef: digits, scale: uint8(scale), neg: neg}
}

// Sign returns -1, 0 or 1.
func (d Decimal) Sign() int {
	switch {
	case d.IsZero():
		return 0
	case d.neg:
		return -1
	default:
		return 1
	}
}

// IsZero reports whether the value is zero at any scale.
func (d Decimal) IsZero() bool {
	return d.coef == "" || d.coef == "0"
}

// Scale returns the number of fractional digits.
func (d Decimal) Scale() int {
	return int(d.scale)
}

// Coefficient returns the unscaled magnitude digits.
func (d Decimal) Coefficient() string {
	if d.coef == "" {
		return "0"
	}
	return d.coef
}

// String returns the canonical text, keeping the scale.
func (d Decimal) String() string {
	return FormatDecimal(d)
}

// FormatDecimal returns the text of d with exactly Scale fractional digits.
func FormatDecimal(d Decimal) string {
	coef := d.Coefficient()
	scale := int(d.scale)
	var b strings.Builder
	b.Grow(len(coef) + scale + 3)
	if d.neg && !d.IsZero() {
		b.WriteByte('-')
	}
	if scale == 0 {
		b.WriteString(coef)
		return b.String()
	}
	if len(coef) <= scale {
		b.WriteString("0.")
		for i := len(coef); i < scale; i++ {
			b.WriteByte('0')
		}
		b.WriteString(coef)
		return b.String()
	}
	b.WriteString(coef[:len(coef)-scale])
	b.WriteByte('.')
	b.WriteString(coef[len(coef)-scale:])
	return b.String()
}

// ParseDecimal parses xs:decimal text: an optional sign, digits and an
// optional fraction. Exponents are not accepted.
func ParseDecimal(s string) (Decimal, error) {
	d, err := parseDecimal(TrimXMLWhitespaceString(s))
	if err != nil {
		return Decimal{}, conversion(s, "decimal", err)
	}
	return d, nil
}

// MustParseDecimal is like ParseDecimal but panics on malformed text.
func MustParseDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

func parseDecimal(s string) (Decimal, error) {
	if s == "" {
		return Decimal{}, errEmpty
	}
	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return Decimal{}, errNoDigits
	}
	if hasDot && strings.IndexByte(fracPart, '.') >= 0 {
		return Decimal{}, errBadChar
	}
	for i := 0; i < len(intPart); i++ {
		if !isDigit(intPart[i]) {
			return Decimal{}, errBadChar
		}
	}
	for i := 0; i < len(fracPart); i++ {
		if !isDigit(fracPart[i]) {
			return Decimal{}, errBadChar
		}
	}
	if len(fracPart) > MaxDecimalScale {
		return Decimal{}, errPrecision
	}
	coef := trimLeadingZeros(intPart + fracPart)
	if coef == "" {
		coef = "0"
	}
	if len(coef) > len(maxDecimalCoef) || (len(coef) == len(maxDecimalCoef) && coef > maxDecimalCoef) {
		return Decimal{}, errOverflow
	}
	if coef == "0" {
		neg = false
	}
	return Decimal{coef: coef, scale: uint8(len(fracPart)), neg: neg}, nil
}
