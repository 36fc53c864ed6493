package xmlio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// Writer emits XML one element at a time.
type Writer interface {
	// WriteStartElement opens prefix:local, declaring ns for prefix when it
	// is not already bound in scope.
	WriteStartElement(prefix, local, ns string) error
	// WriteEndElement closes the innermost open element.
	WriteEndElement() error
	// WriteAttribute adds an attribute to the open start tag.
	WriteAttribute(prefix, local, ns, value string) error
	// WriteNamespace declares prefix on the open start tag unless it is
	// already bound to ns.
	WriteNamespace(prefix, ns string) error
	// WriteString writes escaped character data.
	WriteString(text string) error
	// LookupPrefix returns a non-empty prefix bound to ns in scope.
	LookupPrefix(ns string) (string, bool)
	// LookupNamespace returns the namespace bound to prefix in scope. The
	// empty prefix reports the default namespace.
	LookupNamespace(prefix string) (string, bool)
	// Depth reports the number of open elements.
	Depth() int
	Flush() error
}

var (
	errNoStartTag   = errors.New("xmlio: attribute written outside a start tag")
	errNoOpenElem   = errors.New("xmlio: end element without open element")
	errEmptyLocal   = errors.New("xmlio: empty local name")
	errPrefixNeeded = errors.New("xmlio: namespaced attribute requires a prefix")
)

// StreamWriter writes XML to a buffered io.Writer. Empty elements are
// written in self-closing form.
type StreamWriter struct {
	w         *bufio.Writer
	err       error
	open      []string
	ns        nsStack
	startOpen bool
}

// NewWriter returns a Writer over w. Call Flush when done.
func NewWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: bufio.NewWriter(w)}
}

// WriteStartElement implements Writer.
func (s *StreamWriter) WriteStartElement(prefix, local, ns string) error {
	if s.err != nil {
		return s.err
	}
	if local == "" {
		return s.fail(errEmptyLocal)
	}
	s.closeStart()
	s.ns.push(nsScope{})
	qname := qualify(prefix, local)
	s.open = append(s.open, qname)
	s.w.WriteByte('<')
	s.w.WriteString(qname)
	s.startOpen = true
	if bound, ok := s.ns.lookup(prefix); !ok || bound != ns {
		s.declare(prefix, ns)
	}
	return s.err
}

// WriteEndElement implements Writer.
func (s *StreamWriter) WriteEndElement() error {
	if s.err != nil {
		return s.err
	}
	if len(s.open) == 0 {
		return s.fail(errNoOpenElem)
	}
	qname := s.open[len(s.open)-1]
	s.open = s.open[:len(s.open)-1]
	if s.startOpen {
		s.w.WriteString("/>")
		s.startOpen = false
	} else {
		s.w.WriteString("</")
		s.w.WriteString(qname)
		s.w.WriteByte('>')
	}
	s.ns.pop()
	return s.err
}

// WriteAttribute implements Writer.
func (s *StreamWriter) WriteAttribute(prefix, local, ns, value string) error {
	if s.err != nil {
		return s.err
	}
	if !s.startOpen {
		return s.fail(errNoStartTag)
	}
	if local == "" {
		return s.fail(errEmptyLocal)
	}
	if ns != "" {
		if prefix == "" {
			p, ok := s.ns.lookupPrefix(ns)
			if !ok {
				return s.fail(fmt.Errorf("%w: %s", errPrefixNeeded, ns))
			}
			prefix = p
		}
		if bound, ok := s.ns.lookup(prefix); !ok || bound != ns {
			s.declare(prefix, ns)
		}
	}
	s.w.WriteByte(' ')
	s.w.WriteString(qualify(prefix, local))
	s.w.WriteString(`="`)
	s.escape(value, true)
	s.w.WriteByte('"')
	return s.err
}

// WriteNamespace implements Writer.
func (s *StreamWriter) WriteNamespace(prefix, ns string) error {
	if s.err != nil {
		return s.err
	}
	if !s.startOpen {
		return s.fail(errNoStartTag)
	}
	if prefix == "xml" || prefix == "xmlns" {
		return nil
	}
	if bound, ok := s.ns.lookup(prefix); ok && bound == ns {
		return nil
	}
	s.declare(prefix, ns)
	return s.err
}

// WriteString implements Writer.
func (s *StreamWriter) WriteString(text string) error {
	if s.err != nil {
		return s.err
	}
	s.closeStart()
	s.escape(text, false)
	return s.err
}

// LookupPrefix implements Writer.
func (s *StreamWriter) LookupPrefix(ns string) (string, bool) {
	return s.ns.lookupPrefix(ns)
}

// LookupNamespace implements Writer.
func (s *StreamWriter) LookupNamespace(prefix string) (string, bool) {
	return s.ns.lookup(prefix)
}

// Depth implements Writer.
func (s *StreamWriter) Depth() int {
	return len(s.open)
}

// Flush writes buffered output and reports the first error seen.
func (s *StreamWriter) Flush() error {
	if s.err != nil {
		return s.err
	}
	s.closeStart()
	if err := s.w.Flush(); err != nil {
		s.err = err
	}
	return s.err
}

func (s *StreamWriter) declare(prefix, ns string) {
	if prefix == "xml" {
		return
	}
	s.ns.top().declare(prefix, ns)
	if prefix == "" {
		s.w.WriteString(` xmlns="`)
	} else {
		s.w.WriteString(` xmlns:`)
		s.w.WriteString(prefix)
		s.w.WriteString(`="`)
	}
	s.escape(ns, true)
	s.w.WriteByte('"')
}

func (s *StreamWriter) closeStart() {
	if s.startOpen {
		s.w.WriteByte('>')
		s.startOpen = false
	}
}

func (s *StreamWriter) fail(err error) error {
	if s.err == nil {
		s.err = err
	}
	return s.err
}

// escape writes text with markup characters replaced. Characters outside
// the XML character range become U+FFFD.
func (s *StreamWriter) escape(text string, attr bool) {
	last := 0
	for i := 0; i < len(text); {
		r, width := utf8.DecodeRuneInString(text[i:])
		var esc string
		switch r {
		case '&':
			esc = "&amp;"
		case '<':
			esc = "&lt;"
		case '>':
			esc = "&gt;"
		case '\r':
			esc = "&#xD;"
		case '"':
			if attr {
				esc = "&quot;"
			}
		case '\n':
			if attr {
				esc = "&#xA;"
			}
		case '\t':
			if attr {
				esc = "&#x9;"
			}
		default:
			if !isXMLChar(r) || (r == utf8.RuneError && width == 1) {
				esc = "\uFFFD"
			}
		}
		if esc != "" {
			s.w.WriteString(text[last:i])
			s.w.WriteString(esc)
			last = i + width
		}
		i += width
	}
	s.w.WriteString(text[last:])
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

func qualify(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
