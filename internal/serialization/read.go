package serialization

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
	"github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlio"
	"github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlvalue"
)

// forwardRef stands for a z:Ref whose target has not been read yet.
type forwardRef struct {
	id string
}

// ReadContext reads one object graph.
type ReadContext struct {
	state
	r       xmlio.Reader
	objects map[string]any
	pending map[string][]func(any) error
}

// NewReadContext returns a context reading from r.
func NewReadContext(r xmlio.Reader, resolver contract.Resolver, cfg *Config) *ReadContext {
	return &ReadContext{
		state:   newState(resolver, cfg),
		r:       r,
		objects: make(map[string]any),
	}
}

// IsRootElement reports whether r is positioned on an element that may hold
// a value declared as c: the configured root name, the root name of c or of
// one of its base contracts, or anyType.
func IsRootElement(r xmlio.Reader, c *contract.DataContract, cfg *Config) (bool, error) {
	ok, err := r.IsStartElement()
	if err != nil || !ok {
		return false, err
	}
	n := r.Name()
	name := contract.NewQName(n.Space, n.Local)
	if cfg != nil && !cfg.RootName.IsZero() {
		return name == cfg.RootName, nil
	}
	if c == nil {
		return name == contract.AnyTypeName, nil
	}
	if name == c.RootName() {
		return true, nil
	}
	for _, base := range c.BaseChain()[1:] {
		if name == base.Name {
			return true, nil
		}
	}
	return name == contract.AnyTypeName, nil
}

// ReadRoot reads the document element as a value declared as declared.
// References still unresolved at the end fail the call.
func (c *ReadContext) ReadRoot(declared *contract.DataContract, verifyName bool) (any, error) {
	if declared == nil {
		declared = contract.AnyType()
	}
	ok, err := c.r.IsStartElement()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, c.at(dcerrors.Newf(dcerrors.ErrUnexpectedNode, "expecting document element, found %s", c.r.NodeKind()))
	}
	if verifyName {
		match, err := IsRootElement(c.r, declared, c.cfg)
		if err != nil {
			return nil, err
		}
		if !match {
			want := RootName(declared, c.cfg)
			return nil, c.at(dcerrors.Newf(dcerrors.ErrRootName, "expecting element %s, found %s", want, c.r.Name()).
				WithType(typeName(declared)))
		}
	}
	v, err := c.readValue(declared, nil)
	if err != nil {
		return nil, err
	}
	if ref, ok := v.(forwardRef); ok {
		return nil, dcerrors.Newf(dcerrors.ErrUnresolvedReference, "reference to undefined id %s", ref.id)
	}
	if err := c.finish(); err != nil {
		return nil, err
	}
	return adapt(v, declared.Type), nil
}

func (c *ReadContext) finish() error {
	if len(c.pending) == 0 {
		return nil
	}
	ids := make([]string, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return dcerrors.Newf(dcerrors.ErrUnresolvedReference, "reference to undefined id %s", ids[0])
}

// readValue reads the element the reader is positioned on. It returns a
// forwardRef when the element refers to an object not read yet. A non-nil
// into receives the items of a get-only collection.
func (c *ReadContext) readValue(declared *contract.DataContract, into any) (any, error) {
	if _, err := c.r.MoveToContent(); err != nil {
		return nil, err
	}
	if p := c.cfg.Surrogate; p != nil {
		return c.readWithSurrogate(p, declared, into)
	}
	return c.readResolved(declared, into)
}

func (c *ReadContext) readWithSurrogate(p SurrogateProvider, declared *contract.DataContract, into any) (any, error) {
	target := declared.Type
	if st := p.SurrogateType(target); st != target {
		var err error
		if declared, err = c.contractForType(st); err != nil {
			return nil, err
		}
	}
	id, _ := c.r.Attr(idLocal, contract.SerializationNamespace)
	v, err := c.readResolved(declared, into)
	if err != nil || v == nil {
		return v, err
	}
	if _, ok := v.(forwardRef); ok {
		return v, nil
	}
	out, err := p.FromSurrogate(v, target)
	if err != nil {
		return nil, c.at(dcerrors.Wrap(dcerrors.ErrConversion, err, "surrogate conversion failed").WithType(typeName(declared)))
	}
	if id != "" {
		c.objects[id] = out
	}
	return out, nil
}

func (c *ReadContext) readResolved(declared *contract.DataContract, into any) (any, error) {
	if ref, ok := c.r.Attr(refLocal, contract.SerializationNamespace); ok {
		if into != nil {
			return nil, c.at(dcerrors.New(dcerrors.ErrGetOnlyCollection,
				"a get-only collection cannot be read from a reference").WithType(typeName(declared)))
		}
		if err := c.r.Skip(); err != nil {
			return nil, err
		}
		ref = xmlvalue.TrimXMLWhitespaceString(ref)
		if obj, ok := c.objects[ref]; ok {
			return obj, nil
		}
		return forwardRef{id: ref}, nil
	}
	if c.isNilElement() {
		return nil, c.r.Skip()
	}
	id, _ := c.r.Attr(idLocal, contract.SerializationNamespace)
	id = xmlvalue.TrimXMLWhitespaceString(id)

	if c.scope.PushIfAny(declared.Known) {
		defer c.scope.Pop()
	}
	actual, err := c.readTypeMarker(declared)
	if err != nil {
		return nil, err
	}
	if actual != declared && c.scope.PushIfAny(actual.Known) {
		defer c.scope.Pop()
	}
	return c.readContent(actual, id, into)
}

// readTypeMarker resolves xsi:type against the declared contract, the
// known types in scope, the configured known types and the primitives.
func (c *ReadContext) readTypeMarker(declared *contract.DataContract) (*contract.DataContract, error) {
	text, ok := c.r.Attr(typeLocal, contract.SchemaInstanceNamespace)
	if !ok {
		return declared, nil
	}
	name, err := c.parseQName(text, c.r.LookupNamespace)
	if err != nil {
		return nil, c.at(err)
	}
	if name == declared.Name {
		return declared, nil
	}
	if actual, ok := c.resolveKnown(name); ok {
		return actual, nil
	}
	return nil, c.at(dcerrors.Newf(dcerrors.ErrUnknownTypeDeserialize,
		"element %s has type %s which is not expected in place of %s; add it to the known types",
		c.r.Name(), name, declared.Name).WithType(name.String()))
}

func (c *ReadContext) parseQName(text string, lookup func(string) (string, bool)) (contract.QName, error) {
	text = xmlvalue.TrimXMLWhitespaceString(text)
	prefix, local := "", text
	if i := strings.IndexByte(text, ':'); i >= 0 {
		prefix, local = text[:i], text[i+1:]
	}
	if local == "" {
		return contract.QName{}, dcerrors.Newf(dcerrors.ErrUnknownTypeDeserialize, "invalid qualified name %q", text)
	}
	ns, ok := lookup(prefix)
	if !ok {
		return contract.QName{}, dcerrors.Newf(dcerrors.ErrUnknownTypeDeserialize, "unbound prefix in qualified name %q", text)
	}
	return contract.NewQName(ns, local), nil
}

func (c *ReadContext) isNilElement() bool {
	text, ok := c.r.Attr(nilLocal, contract.SchemaInstanceNamespace)
	if !ok {
		return false
	}
	v, err := xmlvalue.ParseBool(text)
	return err == nil && v
}

// register binds id to v and resolves the references waiting for it.
func (c *ReadContext) register(id string, v any) error {
	if id == "" {
		return nil
	}
	if _, dup := c.objects[id]; dup {
		return c.at(dcerrors.Newf(dcerrors.ErrDuplicateID, "id %s is defined more than once", id))
	}
	c.objects[id] = v
	fixups := c.pending[id]
	delete(c.pending, id)
	for _, fix := range fixups {
		if err := fix(v); err != nil {
			return err
		}
	}
	return nil
}

// whenResolved runs fix once id is registered.
func (c *ReadContext) whenResolved(id string, fix func(any) error) {
	if c.pending == nil {
		c.pending = make(map[string][]func(any) error)
	}
	c.pending[id] = append(c.pending[id], fix)
}

// nextItem moves to the next child element and reports whether it is
// local in ns. It returns false on the parent's end tag.
func (c *ReadContext) nextItem(local, ns string) (bool, error) {
	kind, err := c.r.MoveToContent()
	if err != nil {
		return false, err
	}
	switch kind {
	case xmlio.NodeEndElement:
		return false, nil
	case xmlio.NodeElement:
		if n := c.r.Name(); n.Local == local && n.Space == ns {
			return true, nil
		}
		return false, c.at(dcerrors.Newf(dcerrors.ErrUnexpectedNode, "expecting element %s, found %s",
			xmlio.Name{Space: ns, Local: local}, c.r.Name()))
	default:
		return false, c.at(dcerrors.Newf(dcerrors.ErrUnexpectedNode, "expecting element %s, found %s",
			xmlio.Name{Space: ns, Local: local}, kind))
	}
}

// at annotates err with the reader position.
func (c *ReadContext) at(err error) error {
	s, ok := err.(*dcerrors.Serialization)
	if !ok || s.Line > 0 {
		return err
	}
	line, column := c.r.Position()
	return s.WithPosition(line, column)
}

func (c *ReadContext) readContent(actual *contract.DataContract, id string, into any) (any, error) {
	if into != nil && actual.Kind != contract.KindCollection {
		return nil, c.at(dcerrors.Newf(dcerrors.ErrGetOnlyCollection, "get-only member holds non-collection %s", actual.Name).
			WithType(typeName(actual)))
	}
	var (
		v   any
		err error
	)
	switch actual.Kind {
	case contract.KindPrimitive:
		v, err = c.readPrimitive(actual)
	case contract.KindEnum:
		v, err = c.readEnum(actual)
	case contract.KindClass:
		// class contracts register their own ids
		return c.readClass(actual, id)
	case contract.KindCollection:
		return c.readCollection(actual, id, into)
	case contract.KindXML:
		v, err = c.readXML(actual)
	default:
		err = dcerrors.Newf(dcerrors.ErrInvalidContract, "contract kind %s cannot be read", actual.Kind).
			WithType(typeName(actual))
	}
	if err != nil {
		return nil, err
	}
	return v, c.register(id, v)
}

func (c *ReadContext) readPrimitive(actual *contract.DataContract) (any, error) {
	text, err := c.r.ReadElementContentBytes()
	if err != nil {
		return nil, err
	}
	v, err := actual.Primitive.Decode(text)
	if err != nil {
		return nil, c.at(conversionFailure(actual, err))
	}
	return v, nil
}

func (c *ReadContext) readEnum(actual *contract.DataContract) (any, error) {
	text, err := c.r.ReadElementContentString()
	if err != nil {
		return nil, err
	}
	n, err := actual.Enum.Parse(text)
	if err != nil {
		return nil, c.at(dcerrors.Wrap(dcerrors.ErrInvalidEnumValue, err, "invalid enum value").WithType(typeName(actual)))
	}
	v, err := actual.Enum.FromInt64(n)
	if err != nil {
		return nil, c.at(dcerrors.Wrap(dcerrors.ErrInvalidEnumValue, err, "invalid enum value").WithType(typeName(actual)))
	}
	return v, nil
}

func (c *ReadContext) readXML(actual *contract.DataContract) (any, error) {
	xs := actual.XML.New()
	if err := xs.ReadXML(c.r); err != nil {
		if _, ok := dcerrors.As(err); ok {
			return nil, err
		}
		return nil, c.at(dcerrors.Wrap(dcerrors.ErrMemberAccess, err, "ReadXML failed").WithType(typeName(actual)))
	}
	var v any = xs
	if rv := reflect.ValueOf(xs); rv.Kind() == reflect.Pointer && actual.Type.Kind() != reflect.Pointer {
		v = rv.Elem().Interface()
	}
	return v, nil
}

func unexpectedContent(kind xmlio.NodeKind, where string) error {
	return dcerrors.New(dcerrors.ErrUnexpectedNode, fmt.Sprintf("unexpected %s in %s", kind, where))
}
