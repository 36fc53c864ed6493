package xmlio

// Well-known namespaces.
const (
	XMLNamespace   = "http://www.w3.org/XML/1998/namespace"
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

// Name is an expanded XML name.
type Name struct {
	Space string
	Local string
}

// String renders the name in {namespace}local form.
func (n Name) String() string {
	if n.Space == "" {
		return n.Local
	}
	return "{" + n.Space + "}" + n.Local
}

// Attr is a resolved attribute. Prefix is the lexical prefix as written.
type Attr struct {
	Prefix string
	Local  string
	Space  string
	Value  string
}

// NamespaceDecl reports a namespace declaration on an element.
type NamespaceDecl struct {
	Prefix string
	URI    string
}

// NodeKind identifies the node a Reader is positioned on.
type NodeKind uint8

const (
	NodeNone NodeKind = iota
	NodeElement
	NodeEndElement
	NodeText
	NodeEOF
)

// String returns a label for diagnostics.
func (k NodeKind) String() string {
	switch k {
	case NodeElement:
		return "element"
	case NodeEndElement:
		return "end element"
	case NodeText:
		return "text"
	case NodeEOF:
		return "end of document"
	default:
		return "none"
	}
}
