package xmlvalue

import (
	"math"
	"strconv"
	"time"
)

const (
	durationDay   = 24 * time.Hour
	durationYear  = 365 * durationDay
	durationMonth = 30 * durationDay
)

// FormatDuration writes d as xs:duration using days, hours, minutes and
// seconds with up to seven fractional digits. Zero is PT0S.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	buf := make([]byte, 0, 32)
	// math.MinInt64 has no positive counterpart; work in unsigned magnitude.
	mag := uint64(d)
	if d < 0 {
		buf = append(buf, '-')
		mag = uint64(-(d + 1)) + 1
	}
	buf = append(buf, 'P')
	days := mag / uint64(durationDay)
	rest := mag % uint64(durationDay)
	if days > 0 {
		buf = strconv.AppendUint(buf, days, 10)
		buf = append(buf, 'D')
	}
	if rest == 0 {
		return string(buf)
	}
	buf = append(buf, 'T')
	hours := rest / uint64(time.Hour)
	rest %= uint64(time.Hour)
	minutes := rest / uint64(time.Minute)
	rest %= uint64(time.Minute)
	seconds := rest / uint64(time.Second)
	ticks := (rest % uint64(time.Second)) / 100
	if hours > 0 {
		buf = strconv.AppendUint(buf, hours, 10)
		buf = append(buf, 'H')
	}
	if minutes > 0 {
		buf = strconv.AppendUint(buf, minutes, 10)
		buf = append(buf, 'M')
	}
	if seconds > 0 || ticks > 0 {
		buf = strconv.AppendUint(buf, seconds, 10)
		buf = appendTicks(buf, int(ticks))
		buf = append(buf, 'S')
	}
	if buf[len(buf)-1] == 'T' {
		// sub-tick remainder only
		buf = append(buf, "0S"...)
	}
	return string(buf)
}

// ParseDuration parses xs:duration text. Years count as 365 days and months
// as 30 days. Values beyond the time.Duration range fail.
func ParseDuration(s string) (time.Duration, error) {
	d, err := parseDuration(TrimXMLWhitespaceString(s))
	if err != nil {
		return 0, conversion(s, "duration", err)
	}
	return d, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, errEmpty
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if s == "" || s[0] != 'P' {
		return 0, errInvalid
	}
	s = s[1:]
	if s == "" {
		return 0, errNoDigits
	}
	var total uint64
	inTime := false
	seen := 0
	components := 0
	// designator order: Y M D T H M S
	for len(s) > 0 {
		if s[0] == 'T' {
			if inTime {
				return 0, errBadChar
			}
			inTime = true
			s = s[1:]
			if s == "" {
				return 0, errNoDigits
			}
			continue
		}
		i := 0
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == 0 {
			return 0, errBadChar
		}
		whole, err := strconv.ParseUint(s[:i], 10, 63)
		if err != nil {
			return 0, errOverflow
		}
		frac := ""
		if i < len(s) && s[i] == '.' {
			j := i + 1
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			if j == i+1 {
				return 0, errNoDigits
			}
			frac = s[i+1 : j]
			i = j
		}
		if i >= len(s) {
			return 0, errInvalid
		}
		designator := s[i]
		s = s[i+1:]
		var unit time.Duration
		var rank int
		switch {
		case !inTime && designator == 'Y':
			unit, rank = durationYear, 1
		case !inTime && designator == 'M':
			unit, rank = durationMonth, 2
		case !inTime && designator == 'D':
			unit, rank = durationDay, 3
		case inTime && designator == 'H':
			unit, rank = time.Hour, 4
		case inTime && designator == 'M':
			unit, rank = time.Minute, 5
		case inTime && designator == 'S':
			unit, rank = time.Second, 6
		default:
			return 0, errBadChar
		}
		if rank <= seen || (frac != "" && rank != 6) {
			return 0, errInvalid
		}
		seen = rank
		components++
		part, ok := mulUnit(whole, uint64(unit))
		if !ok {
			return 0, errOverflow
		}
		if frac != "" {
			part += uint64(fractionNanos(frac))
		}
		total += part
		if total > math.MaxInt64 {
			return 0, errOverflow
		}
	}
	if components == 0 {
		return 0, errNoDigits
	}
	if neg {
		return -time.Duration(total), nil
	}
	return time.Duration(total), nil
}

func mulUnit(v, unit uint64) (uint64, bool) {
	if v == 0 {
		return 0, true
	}
	if v > math.MaxInt64/unit {
		return 0, false
	}
	return v * unit, true
}
