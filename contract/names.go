package contract

import (
	"fmt"
	"strings"
)

// Namespaces used on the wire.
const (
	SchemaNamespace         = "http://www.w3.org/2001/XMLSchema"
	SchemaInstanceNamespace = "http://www.w3.org/2001/XMLSchema-instance"
	SerializationNamespace  = "http://schemas.microsoft.com/2003/10/Serialization/"
	ArraysNamespace         = SerializationNamespace + "Arrays"
	DefaultNamespacePrefix  = "http://schemas.datacontract.org/2004/07/"
)

// QName is the wire identity of a contract or element.
type QName struct {
	Local string
	Space string
}

// NewQName builds a QName.
func NewQName(space, local string) QName {
	return QName{Local: local, Space: space}
}

// IsZero reports whether the name is unset.
func (q QName) IsZero() bool {
	return q.Local == "" && q.Space == ""
}

// String renders the name in {namespace}local form.
func (q QName) String() string {
	if q.Space == "" {
		return q.Local
	}
	return "{" + q.Space + "}" + q.Local
}

// ParseQName parses the {namespace}local form produced by String.
func ParseQName(s string) (QName, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return QName{}, fmt.Errorf("empty qualified name")
	}
	if s[0] != '{' {
		return QName{Local: s}, nil
	}
	end := strings.IndexByte(s, '}')
	if end < 0 || end == len(s)-1 {
		return QName{}, fmt.Errorf("malformed qualified name %q", s)
	}
	return QName{Space: s[1:end], Local: s[end+1:]}, nil
}

// AnyTypeName is the name of the contract for untyped values.
var AnyTypeName = QName{Local: "anyType", Space: SchemaNamespace}
