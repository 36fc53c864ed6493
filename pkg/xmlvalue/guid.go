package xmlvalue

import "github.com/google/uuid"

// FormatGUID writes the lowercase 8-4-4-4-12 form.
func FormatGUID(g uuid.UUID) string {
	return g.String()
}

// ParseGUID accepts only the hyphenated 36-character form.
func ParseGUID(s string) (uuid.UUID, error) {
	t := TrimXMLWhitespaceString(s)
	if len(t) != 36 {
		return uuid.Nil, conversion(s, "guid", errInvalid)
	}
	g, err := uuid.Parse(t)
	if err != nil {
		return uuid.Nil, conversion(s, "guid", err)
	}
	return g, nil
}
