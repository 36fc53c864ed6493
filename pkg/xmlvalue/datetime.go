package xmlvalue

import (
	"strconv"
	"time"
)

// DateTimeKind records how a DateTime relates to UTC.
type DateTimeKind uint8

const (
	// Unspecified carries wall-clock fields with no offset on the wire.
	Unspecified DateTimeKind = iota
	// UTC is written with a Z suffix.
	UTC
	// Local is written with a ±hh:mm offset suffix.
	Local
)

// String returns the kind label.
func (k DateTimeKind) String() string {
	switch k {
	case UTC:
		return "utc"
	case Local:
		return "local"
	default:
		return "unspecified"
	}
}

// ticksPerSecond bounds the fractional precision kept on the wire.
const ticksPerSecond = 10_000_000

// DateTime is a calendar instant with an explicit offset kind.
// For Unspecified values only the wall-clock fields of Time are meaningful.
type DateTime struct {
	Time time.Time
	Kind DateTimeKind
}

// NewDateTime classifies t by its location: time.UTC becomes UTC, any other
// location becomes Local with the offset in effect at t.
func NewDateTime(t time.Time) DateTime {
	if t.Location() == time.UTC {
		return DateTime{Time: t, Kind: UTC}
	}
	return DateTime{Time: t, Kind: Local}
}

// UnspecifiedDateTime builds a DateTime without offset information.
func UnspecifiedDateTime(year int, month time.Month, day, hour, minute, second, nsec int) DateTime {
	return DateTime{Time: time.Date(year, month, day, hour, minute, second, nsec, time.UTC), Kind: Unspecified}
}

// Equal reports whether both values have the same kind and denote the same
// instant (or the same wall clock for Unspecified values).
func (d DateTime) Equal(o DateTime) bool {
	if d.Kind != o.Kind {
		return false
	}
	if d.Kind == Unspecified {
		return wallClock(d.Time).Equal(wallClock(o.Time))
	}
	return d.Time.Equal(o.Time)
}

// IsZero reports whether d is the zero DateTime.
func (d DateTime) IsZero() bool {
	return d.Kind == Unspecified && d.Time.IsZero()
}

// String returns the wire form.
func (d DateTime) String() string {
	return FormatDateTime(d)
}

func wallClock(t time.Time) time.Time {
	y, m, day := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, m, day, h, mi, s, t.Nanosecond(), time.UTC)
}

// FormatDateTime writes yyyy-MM-ddTHH:mm:ss with up to seven fractional
// digits (trailing zeros trimmed) and a suffix chosen by Kind.
func FormatDateTime(d DateTime) string {
	t := d.Time
	if d.Kind == UTC {
		t = t.UTC()
	}
	buf := make([]byte, 0, 33)
	buf = appendPadded(buf, t.Year(), 4)
	buf = append(buf, '-')
	buf = appendPadded(buf, int(t.Month()), 2)
	buf = append(buf, '-')
	buf = appendPadded(buf, t.Day(), 2)
	buf = append(buf, 'T')
	buf = appendPadded(buf, t.Hour(), 2)
	buf = append(buf, ':')
	buf = appendPadded(buf, t.Minute(), 2)
	buf = append(buf, ':')
	buf = appendPadded(buf, t.Second(), 2)
	buf = appendTicks(buf, t.Nanosecond()/100)
	switch d.Kind {
	case UTC:
		buf = append(buf, 'Z')
	case Local:
		_, offset := t.Zone()
		buf = appendOffset(buf, offset)
	}
	return string(buf)
}

func appendPadded(buf []byte, v, width int) []byte {
	var tmp [20]byte
	s := strconv.AppendInt(tmp[:0], int64(v), 10)
	for i := len(s); i < width; i++ {
		buf = append(buf, '0')
	}
	return append(buf, s...)
}

// appendTicks writes a seven-digit fraction with trailing zeros removed.
func appendTicks(buf []byte, ticks int) []byte {
	if ticks == 0 {
		return buf
	}
	var digits [7]byte
	for i := 6; i >= 0; i-- {
		digits[i] = byte('0' + ticks%10)
		ticks /= 10
	}
	n := 7
	for n > 0 && digits[n-1] == '0' {
		n--
	}
	buf = append(buf, '.')
	return append(buf, digits[:n]...)
}

func appendOffset(buf []byte, offset int) []byte {
	sign := byte('+')
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	minutes := offset / 60
	buf = append(buf, sign)
	buf = appendPadded(buf, minutes/60, 2)
	buf = append(buf, ':')
	return appendPadded(buf, minutes%60, 2)
}

// ParseDateTime parses xs:dateTime text. A date without a time part is
// accepted as midnight. Fractions beyond seven digits are truncated.
func ParseDateTime(s string) (DateTime, error) {
	d, err := parseDateTime(TrimXMLWhitespaceString(s))
	if err != nil {
		return DateTime{}, conversion(s, "dateTime", err)
	}
	return d, nil
}

func parseDateTime(s string) (DateTime, error) {
	if s == "" {
		return DateTime{}, errEmpty
	}
	main, tz := splitTimezone(s)
	datePart, timePart := main, ""
	if len(main) > 10 {
		if main[10] != 'T' {
			return DateTime{}, errBadChar
		}
		datePart, timePart = main[:10], main[11:]
	}
	year, month, day, ok := parseDateParts(datePart)
	if !ok {
		return DateTime{}, errInvalid
	}
	if year < 1 || year > 9999 || month < 1 || month > 12 || !isValidDate(year, month, day) {
		return DateTime{}, errOverflow
	}
	var hour, minute, second, nsec int
	if timePart != "" {
		var frac string
		hour, minute, second, frac, ok = parseTimeParts(timePart)
		if !ok {
			return DateTime{}, errInvalid
		}
		if hour > 23 || minute > 59 || second > 59 {
			return DateTime{}, errOverflow
		}
		nsec = fractionNanos(frac)
	} else if tz != "" {
		return DateTime{}, errInvalid
	}
	switch tz {
	case "":
		return UnspecifiedDateTime(year, time.Month(month), day, hour, minute, second, nsec), nil
	case "Z":
		return DateTime{Time: time.Date(year, time.Month(month), day, hour, minute, second, nsec, time.UTC), Kind: UTC}, nil
	default:
		offset, err := parseTimezoneOffset(tz)
		if err != nil {
			return DateTime{}, err
		}
		loc := time.FixedZone("", offset)
		return DateTime{Time: time.Date(year, time.Month(month), day, hour, minute, second, nsec, loc), Kind: Local}, nil
	}
}

// fractionNanos keeps at most seven digits, so the result is a whole number of ticks.
func fractionNanos(frac string) int {
	n := 0
	for i := 0; i < 9; i++ {
		n *= 10
		if i < 7 && i < len(frac) {
			n += int(frac[i] - '0')
		}
	}
	return n
}

func splitTimezone(value string) (string, string) {
	if value == "" {
		return value, ""
	}
	if value[len(value)-1] == 'Z' {
		return value[:len(value)-1], "Z"
	}
	if len(value) >= 16 {
		tz := value[len(value)-6:]
		if (tz[0] == '+' || tz[0] == '-') && tz[3] == ':' {
			return value[:len(value)-6], tz
		}
	}
	return value, ""
}

func parseDateParts(value string) (int, int, int, bool) {
	if len(value) != 10 || value[4] != '-' || value[7] != '-' {
		return 0, 0, 0, false
	}
	year, ok := parseFixedDigits(value, 0, 4)
	if !ok {
		return 0, 0, 0, false
	}
	month, ok := parseFixedDigits(value, 5, 2)
	if !ok {
		return 0, 0, 0, false
	}
	day, ok := parseFixedDigits(value, 8, 2)
	if !ok {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

func parseTimeParts(value string) (int, int, int, string, bool) {
	if len(value) < 8 || value[2] != ':' || value[5] != ':' {
		return 0, 0, 0, "", false
	}
	hour, ok := parseFixedDigits(value, 0, 2)
	if !ok {
		return 0, 0, 0, "", false
	}
	minute, ok := parseFixedDigits(value, 3, 2)
	if !ok {
		return 0, 0, 0, "", false
	}
	second, ok := parseFixedDigits(value, 6, 2)
	if !ok {
		return 0, 0, 0, "", false
	}
	if len(value) == 8 {
		return hour, minute, second, "", true
	}
	if value[8] != '.' || len(value) == 9 {
		return 0, 0, 0, "", false
	}
	for i := 9; i < len(value); i++ {
		if !isDigit(value[i]) {
			return 0, 0, 0, "", false
		}
	}
	return hour, minute, second, value[9:], true
}

func parseFixedDigits(value string, start, length int) (int, bool) {
	if start < 0 || length <= 0 || start+length > len(value) {
		return 0, false
	}
	n := 0
	for i := range length {
		ch := value[start+i]
		if !isDigit(ch) {
			return 0, false
		}
		n = n*10 + int(ch-'0')
	}
	return n, true
}

// parseTimezoneOffset returns the offset in seconds east of UTC.
func parseTimezoneOffset(tz string) (int, error) {
	if len(tz) != 6 || (tz[0] != '+' && tz[0] != '-') || tz[3] != ':' {
		return 0, errInvalid
	}
	hour, ok := parseFixedDigits(tz, 1, 2)
	if !ok {
		return 0, errBadChar
	}
	minute, ok := parseFixedDigits(tz, 4, 2)
	if !ok {
		return 0, errBadChar
	}
	if hour > 14 || minute > 59 || (hour == 14 && minute != 0) {
		return 0, errOverflow
	}
	offset := (hour*60 + minute) * 60
	if tz[0] == '-' {
		offset = -offset
	}
	return offset, nil
}

func isValidDate(year, month, day int) bool {
	if day < 1 || day > 31 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}
