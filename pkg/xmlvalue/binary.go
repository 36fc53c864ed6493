package xmlvalue

import "encoding/base64"

// FormatBase64 writes standard padded Base64.
func FormatBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// AppendBase64 appends the Base64 form of b to dst.
func AppendBase64(dst, b []byte) []byte {
	n := base64.StdEncoding.EncodedLen(len(b))
	start := len(dst)
	dst = append(dst, make([]byte, n)...)
	base64.StdEncoding.Encode(dst[start:], b)
	return dst
}

// ParseBase64 decodes standard Base64, ignoring embedded XML whitespace.
// Empty text yields an empty, non-nil slice.
func ParseBase64(text []byte) ([]byte, error) {
	compact := stripXMLWhitespace(text)
	out := make([]byte, base64.StdEncoding.DecodedLen(len(compact)))
	n, err := base64.StdEncoding.Decode(out, compact)
	if err != nil {
		return nil, conversion(string(text), "base64Binary", err)
	}
	return out[:n], nil
}

func stripXMLWhitespace(in []byte) []byte {
	clean := true
	for _, b := range in {
		if IsXMLWhitespaceByte(b) {
			clean = false
			break
		}
	}
	if clean {
		return in
	}
	out := make([]byte, 0, len(in))
	for _, b := range in {
		if !IsXMLWhitespaceByte(b) {
			out = append(out, b)
		}
	}
	return out
}
