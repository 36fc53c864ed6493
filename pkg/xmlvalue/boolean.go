package xmlvalue

// FormatBool writes true or false.
func FormatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// ParseBool accepts true, false, 1 and 0.
func ParseBool(s string) (bool, error) {
	v, err := parseBool(TrimXMLWhitespaceString(s))
	if err != nil {
		return false, conversion(s, "boolean", err)
	}
	return v, nil
}

// ParseBoolBytes is ParseBool without the string conversion on the common path.
func ParseBoolBytes(b []byte) (bool, error) {
	t := TrimXMLWhitespace(b)
	switch string(t) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return ParseBool(string(b))
}

func parseBool(s string) (bool, error) {
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	case "":
		return false, errEmpty
	default:
		return false, errInvalid
	}
}
