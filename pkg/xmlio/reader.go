package xmlio

import (
	"encoding/xml"
	"errors"
	"io"

	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
)

// Reader walks an XML document node by node.
type Reader interface {
	// MoveToContent skips whitespace-only text and returns the current
	// node kind.
	MoveToContent() (NodeKind, error)
	IsStartElement() (bool, error)
	IsStartElementNamed(local, ns string) (bool, error)
	// NodeKind reports the current node without moving.
	NodeKind() NodeKind
	// Name is the expanded name of the current element or end element.
	Name() Name
	Prefix() string
	// Value is the content of the current text node.
	Value() string
	Attr(local, ns string) (string, bool)
	Attrs() []Attr
	NamespaceDecls() []NamespaceDecl
	// ReadStartElement consumes the current start element.
	ReadStartElement() error
	// ReadEndElement consumes the current end element.
	ReadEndElement() error
	// ReadElementContentString consumes a text-only element and returns
	// its content.
	ReadElementContentString() (string, error)
	ReadElementContentBytes() ([]byte, error)
	// Skip consumes the current node, including the subtree of an element.
	Skip() error
	LookupNamespace(prefix string) (string, bool)
	// Depth reports the number of consumed, unclosed start elements.
	Depth() int
	Position() (line, column int)
}

// StreamReader is a Reader over encoding/xml raw tokens with its own
// namespace resolution.
type StreamReader struct {
	dec    *xml.Decoder
	err    error
	peeked xml.Token
	open   []xml.Name
	ns     nsStack
	attrs  []Attr
	text   []byte
	name   Name
	prefix string
	raw    xml.Name
	line   int
	column int
	node   NodeKind
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *StreamReader {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	return &StreamReader{dec: dec}
}

// MoveToContent implements Reader.
func (r *StreamReader) MoveToContent() (NodeKind, error) {
	for {
		switch r.node {
		case NodeNone:
		case NodeText:
			if !isWhitespace(r.text) {
				return r.node, nil
			}
		default:
			return r.node, nil
		}
		if err := r.advance(); err != nil {
			return NodeNone, err
		}
	}
}

// IsStartElement implements Reader.
func (r *StreamReader) IsStartElement() (bool, error) {
	kind, err := r.MoveToContent()
	if err != nil {
		return false, err
	}
	return kind == NodeElement, nil
}

// IsStartElementNamed implements Reader.
func (r *StreamReader) IsStartElementNamed(local, ns string) (bool, error) {
	ok, err := r.IsStartElement()
	if err != nil || !ok {
		return false, err
	}
	return r.name.Local == local && r.name.Space == ns, nil
}

// NodeKind implements Reader.
func (r *StreamReader) NodeKind() NodeKind { return r.node }

// Name implements Reader.
func (r *StreamReader) Name() Name { return r.name }

// Prefix implements Reader.
func (r *StreamReader) Prefix() string { return r.prefix }

// Value implements Reader.
func (r *StreamReader) Value() string {
	if r.node != NodeText {
		return ""
	}
	return string(r.text)
}

// Attr implements Reader.
func (r *StreamReader) Attr(local, ns string) (string, bool) {
	if r.node != NodeElement {
		return "", false
	}
	for i := range r.attrs {
		if r.attrs[i].Local == local && r.attrs[i].Space == ns {
			return r.attrs[i].Value, true
		}
	}
	return "", false
}

// Attrs implements Reader. Namespace declarations are not included.
func (r *StreamReader) Attrs() []Attr {
	if r.node != NodeElement {
		return nil
	}
	return r.attrs
}

// NamespaceDecls implements Reader.
func (r *StreamReader) NamespaceDecls() []NamespaceDecl {
	if r.node != NodeElement {
		return nil
	}
	if top := r.ns.top(); top != nil {
		return top.decls
	}
	return nil
}

// ReadStartElement implements Reader.
func (r *StreamReader) ReadStartElement() error {
	if _, err := r.MoveToContent(); err != nil {
		return err
	}
	if r.node != NodeElement {
		return r.unexpected(NodeElement)
	}
	r.open = append(r.open, r.raw)
	return r.advance()
}

// ReadEndElement implements Reader.
func (r *StreamReader) ReadEndElement() error {
	if _, err := r.MoveToContent(); err != nil {
		return err
	}
	if r.node != NodeEndElement {
		return r.unexpected(NodeEndElement)
	}
	r.open = r.open[:len(r.open)-1]
	r.ns.pop()
	return r.advance()
}

// ReadElementContentString implements Reader.
func (r *StreamReader) ReadElementContentString() (string, error) {
	b, err := r.readElementContent(nil)
	return string(b), err
}

// ReadElementContentBytes implements Reader. The result is a fresh slice.
func (r *StreamReader) ReadElementContentBytes() ([]byte, error) {
	return r.readElementContent(make([]byte, 0, 16))
}

func (r *StreamReader) readElementContent(buf []byte) ([]byte, error) {
	if err := r.ReadStartElement(); err != nil {
		return nil, err
	}
	for {
		switch r.node {
		case NodeText:
			buf = append(buf, r.text...)
			if err := r.advance(); err != nil {
				return nil, err
			}
		case NodeEndElement:
			if err := r.ReadEndElement(); err != nil {
				return nil, err
			}
			if buf == nil {
				buf = []byte{}
			}
			return buf, nil
		default:
			return nil, r.unexpected(NodeText)
		}
	}
}

// Skip implements Reader.
func (r *StreamReader) Skip() error {
	switch r.node {
	case NodeElement:
		depth := len(r.open)
		if err := r.ReadStartElement(); err != nil {
			return err
		}
		for len(r.open) > depth {
			var err error
			switch r.node {
			case NodeElement:
				err = r.ReadStartElement()
			case NodeEndElement:
				err = r.ReadEndElement()
			case NodeEOF:
				err = r.unexpected(NodeEndElement)
			default:
				err = r.advance()
			}
			if err != nil {
				return err
			}
		}
		return nil
	case NodeEndElement:
		return r.ReadEndElement()
	case NodeEOF:
		return nil
	default:
		return r.advance()
	}
}

// LookupNamespace implements Reader.
func (r *StreamReader) LookupNamespace(prefix string) (string, bool) {
	return r.ns.lookup(prefix)
}

// Depth implements Reader.
func (r *StreamReader) Depth() int { return len(r.open) }

// Position implements Reader.
func (r *StreamReader) Position() (line, column int) { return r.line, r.column }

func (r *StreamReader) advance() error {
	if r.err != nil {
		return r.err
	}
	r.line, r.column = r.dec.InputPos()
	r.text = r.text[:0]
	r.attrs = r.attrs[:0]
	textSeen := false
	for {
		tok, err := r.nextToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if textSeen {
					r.node = NodeText
					return nil
				}
				if len(r.open) > 0 {
					return r.syntax(io.ErrUnexpectedEOF)
				}
				r.node = NodeEOF
				return nil
			}
			return r.syntax(err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			r.text = append(r.text, t...)
			textSeen = true
		case xml.StartElement:
			if textSeen {
				r.peeked = t.Copy()
				r.node = NodeText
				return nil
			}
			return r.startElement(t)
		case xml.EndElement:
			if textSeen {
				r.peeked = t
				r.node = NodeText
				return nil
			}
			return r.endElement(t)
		}
		// comments, processing instructions and directives are dropped
	}
}

func (r *StreamReader) nextToken() (xml.Token, error) {
	if r.peeked != nil {
		tok := r.peeked
		r.peeked = nil
		return tok, nil
	}
	return r.dec.RawToken()
}

func (r *StreamReader) startElement(t xml.StartElement) error {
	scope := nsScope{}
	for _, a := range t.Attr {
		switch {
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			scope.declare("", a.Value)
		case a.Name.Space == "xmlns":
			if a.Name.Local != "xml" && a.Name.Local != "xmlns" {
				scope.declare(a.Name.Local, a.Value)
			}
		}
	}
	r.ns.push(scope)
	for _, a := range t.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		space := ""
		if a.Name.Space != "" {
			ns, ok := r.ns.lookup(a.Name.Space)
			if !ok {
				r.ns.pop()
				return r.syntax(unboundPrefix(a.Name.Space))
			}
			space = ns
		}
		r.attrs = append(r.attrs, Attr{Prefix: a.Name.Space, Local: a.Name.Local, Space: space, Value: a.Value})
	}
	ns, ok := r.ns.lookup(t.Name.Space)
	if !ok {
		r.ns.pop()
		return r.syntax(unboundPrefix(t.Name.Space))
	}
	r.raw = t.Name
	r.prefix = t.Name.Space
	r.name = Name{Space: ns, Local: t.Name.Local}
	r.node = NodeElement
	return nil
}

func (r *StreamReader) endElement(t xml.EndElement) error {
	if len(r.open) == 0 {
		return r.syntax(errors.New("unexpected end element </" + qualify(t.Name.Space, t.Name.Local) + ">"))
	}
	if top := r.open[len(r.open)-1]; top != t.Name {
		return r.syntax(errors.New("element <" + qualify(top.Space, top.Local) + "> closed by </" + qualify(t.Name.Space, t.Name.Local) + ">"))
	}
	ns, _ := r.ns.lookup(t.Name.Space)
	r.raw = t.Name
	r.prefix = t.Name.Space
	r.name = Name{Space: ns, Local: t.Name.Local}
	r.node = NodeEndElement
	return nil
}

func (r *StreamReader) unexpected(want NodeKind) error {
	found := r.node.String()
	if r.node == NodeElement || r.node == NodeEndElement {
		found += " " + r.name.String()
	}
	return dcerrors.Newf(dcerrors.ErrUnexpectedNode, "expected %s, found %s", want, found).
		WithPosition(r.line, r.column)
}

func (r *StreamReader) syntax(err error) error {
	line, column := r.dec.InputPos()
	r.err = dcerrors.Wrap(dcerrors.ErrXMLSyntax, err, "malformed XML").WithPosition(line, column)
	return r.err
}

func unboundPrefix(prefix string) error {
	return errors.New("unbound namespace prefix " + prefix)
}

func isWhitespace(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return false
		}
	}
	return true
}
