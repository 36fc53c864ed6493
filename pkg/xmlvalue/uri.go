package xmlvalue

import "net/url"

// FormatURI writes the URI reference as given.
func FormatURI(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}

// ParseURI parses an absolute or relative URI reference.
func ParseURI(s string) (*url.URL, error) {
	u, err := url.Parse(TrimXMLWhitespaceString(s))
	if err != nil {
		return nil, conversion(s, "anyURI", err)
	}
	return u, nil
}
