package xmlio

import dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"

// Node is a buffered piece of element content: *Element or Text.
type Node interface {
	writeTo(w Writer) error
}

// Text is buffered character data.
type Text string

func (t Text) writeTo(w Writer) error {
	return w.WriteString(string(t))
}

// Element is a buffered element subtree. It keeps the namespace
// declarations found on the element so that prefixed names inside
// attribute values and text stay resolvable when written back.
type Element struct {
	Name     Name
	Prefix   string
	Decls    []NamespaceDecl
	Attrs    []Attr
	Children []Node
}

// ReadElement buffers the element the reader is positioned on, consuming
// it together with its end tag.
func ReadElement(r Reader) (*Element, error) {
	ok, err := r.IsStartElement()
	if err != nil {
		return nil, err
	}
	if !ok {
		line, column := r.Position()
		return nil, dcerrors.Newf(dcerrors.ErrUnexpectedNode, "expected element, found %s", r.NodeKind()).
			WithPosition(line, column)
	}
	el := &Element{Name: r.Name(), Prefix: r.Prefix()}
	if decls := r.NamespaceDecls(); len(decls) > 0 {
		el.Decls = append([]NamespaceDecl(nil), decls...)
	}
	if attrs := r.Attrs(); len(attrs) > 0 {
		el.Attrs = append([]Attr(nil), attrs...)
	}
	if err := r.ReadStartElement(); err != nil {
		return nil, err
	}
	if el.Children, err = ReadContent(r); err != nil {
		return nil, err
	}
	if err := r.ReadEndElement(); err != nil {
		return nil, err
	}
	return el, nil
}

// WriteTo writes the element and its subtree.
func (e *Element) WriteTo(w Writer) error {
	return e.writeTo(w)
}

func (e *Element) writeTo(w Writer) error {
	if err := w.WriteStartElement(e.Prefix, e.Name.Local, e.Name.Space); err != nil {
		return err
	}
	for _, d := range e.Decls {
		if err := w.WriteNamespace(d.Prefix, d.URI); err != nil {
			return err
		}
	}
	for _, a := range e.Attrs {
		if err := w.WriteAttribute(a.Prefix, a.Local, a.Space, a.Value); err != nil {
			return err
		}
	}
	if err := WriteContent(w, e.Children); err != nil {
		return err
	}
	return w.WriteEndElement()
}

// WriteContent writes buffered nodes in order.
func WriteContent(w Writer, nodes []Node) error {
	for _, n := range nodes {
		if err := n.writeTo(w); err != nil {
			return err
		}
	}
	return nil
}

// ReadContent buffers the content of the current element up to, but not
// including, its end tag. The reader must be positioned just after a start
// element.
func ReadContent(r Reader) ([]Node, error) {
	var nodes []Node
	for {
		switch r.NodeKind() {
		case NodeElement:
			child, err := ReadElement(r)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, child)
		case NodeText:
			nodes = append(nodes, Text(r.Value()))
			if err := r.Skip(); err != nil {
				return nil, err
			}
		default:
			return nodes, nil
		}
	}
}
