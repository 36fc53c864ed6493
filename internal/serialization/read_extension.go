package serialization

import (
	"strconv"
	"strings"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
	"github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlio"
	"github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlvalue"
)

type prefixLookup func(prefix string) (string, bool)

// readExtensionMember buffers an unknown member element and keeps it as a
// data node. index is the position of the next known member.
func (c *ReadContext) readExtensionMember(index int) (*contract.ExtensionDataMember, error) {
	if err := c.incrementItems(1); err != nil {
		return nil, c.at(err)
	}
	el, err := xmlio.ReadElement(c.r)
	if err != nil {
		return nil, err
	}
	m := &contract.ExtensionDataMember{Name: el.Name.Local, Namespace: el.Name.Space, MemberIndex: index}
	if err := c.buildNode(el, c.r.LookupNamespace, func(n contract.DataNode) { m.Value = n }); err != nil {
		return nil, err
	}
	return m, nil
}

// nodeAttrs is the serializer markup found on a buffered element.
type nodeAttrs struct {
	typ, id, ref, size, factory string
	hasRef, hasSize, hasFactory bool
	isNil                       bool
	foreign                     bool
}

func scanNodeAttrs(el *xmlio.Element) nodeAttrs {
	var a nodeAttrs
	for _, attr := range el.Attrs {
		switch {
		case attr.Space == contract.SchemaInstanceNamespace && attr.Local == typeLocal:
			a.typ = attr.Value
		case attr.Space == contract.SchemaInstanceNamespace && attr.Local == nilLocal:
			v, err := xmlvalue.ParseBool(attr.Value)
			a.isNil = err == nil && v
		case attr.Space == contract.SerializationNamespace && attr.Local == idLocal:
			a.id = xmlvalue.TrimXMLWhitespaceString(attr.Value)
		case attr.Space == contract.SerializationNamespace && attr.Local == refLocal:
			a.ref, a.hasRef = xmlvalue.TrimXMLWhitespaceString(attr.Value), true
		case attr.Space == contract.SerializationNamespace && attr.Local == sizeLocal:
			a.size, a.hasSize = attr.Value, true
		case attr.Space == contract.SerializationNamespace && attr.Local == factoryTypeLocal:
			a.factory, a.hasFactory = attr.Value, true
		default:
			a.foreign = true
		}
	}
	return a
}

// buildNode classifies el and hands the resulting node to assign, possibly
// later when el refers to a node defined further on.
func (c *ReadContext) buildNode(el *xmlio.Element, parent prefixLookup, assign func(contract.DataNode)) error {
	lookup := scopeOf(el, parent)
	attrs := scanNodeAttrs(el)

	if attrs.hasRef {
		return c.bindNodeRef(attrs.ref, assign)
	}
	if attrs.isNil {
		assign(nil)
		return nil
	}

	info := contract.DataNodeInfo{ID: attrs.id}
	if attrs.typ != "" {
		name, err := c.parseQName(attrs.typ, lookup)
		if err != nil {
			return c.at(err)
		}
		info.DataType = name
	}

	elements, text, significant := splitContent(el.Children)
	var node contract.DataNode
	switch {
	case attrs.foreign || (len(elements) > 0 && significant):
		node = &contract.XMLDataNode{
			DataNodeInfo: info,
			Attrs:        foreignAttrs(el.Attrs),
			Decls:        el.Decls,
			Content:      el.Children,
		}
	case attrs.hasSize:
		size, err := strconv.Atoi(xmlvalue.TrimXMLWhitespaceString(attrs.size))
		if err != nil || size < 0 {
			return c.at(dcerrors.Wrap(dcerrors.ErrConversion, dcerrors.NewConversion(attrs.size, "int", err), "invalid array size"))
		}
		coll := &contract.CollectionDataNode{DataNodeInfo: info, Size: size}
		if len(elements) > 0 {
			coll.ItemName, coll.ItemNamespace = elements[0].Name.Local, elements[0].Name.Space
		}
		if err := c.register(attrs.id, coll); err != nil {
			return err
		}
		assign(coll)
		coll.Items = make([]contract.DataNode, len(elements))
		for i, item := range elements {
			if err := c.incrementItems(1); err != nil {
				return c.at(err)
			}
			if err := c.buildNode(item, lookup, func(n contract.DataNode) { coll.Items[i] = n }); err != nil {
				return err
			}
		}
		return nil
	case attrs.hasFactory:
		factory, err := c.parseQName(attrs.factory, lookup)
		if err != nil {
			return c.at(err)
		}
		ser := &contract.SerializableDataNode{DataNodeInfo: info, FactoryType: factory}
		if err := c.register(attrs.id, ser); err != nil {
			return err
		}
		assign(ser)
		ser.Members, err = c.buildNodeMembers(elements, lookup)
		return err
	case len(elements) > 0:
		class := &contract.ClassDataNode{DataNodeInfo: info}
		if err := c.register(attrs.id, class); err != nil {
			return err
		}
		assign(class)
		var err error
		class.Members, err = c.buildNodeMembers(elements, lookup)
		return err
	case text == "" && !isPrimitiveName(info.DataType):
		node = &contract.ClassDataNode{DataNodeInfo: info}
	default:
		node = &contract.PrimitiveDataNode{DataNodeInfo: info, Value: text}
	}
	if err := c.register(attrs.id, node); err != nil {
		return err
	}
	assign(node)
	return nil
}

func (c *ReadContext) buildNodeMembers(elements []*xmlio.Element, lookup prefixLookup) ([]*contract.ExtensionDataMember, error) {
	members := make([]*contract.ExtensionDataMember, len(elements))
	for i, el := range elements {
		if err := c.incrementItems(1); err != nil {
			return nil, c.at(err)
		}
		m := &contract.ExtensionDataMember{Name: el.Name.Local, Namespace: el.Name.Space, MemberIndex: i}
		members[i] = m
		if err := c.buildNode(el, lookup, func(n contract.DataNode) { m.Value = n }); err != nil {
			return nil, err
		}
	}
	return members, nil
}

func (c *ReadContext) bindNodeRef(id string, assign func(contract.DataNode)) error {
	bind := func(obj any) error {
		node, ok := obj.(contract.DataNode)
		if !ok {
			return dcerrors.Newf(dcerrors.ErrUnresolvedReference,
				"unknown member refers to id %s which holds %T, not retained data", id, obj)
		}
		assign(node)
		return nil
	}
	if obj, ok := c.objects[id]; ok {
		return c.at(bind(obj))
	}
	c.whenResolved(id, bind)
	return nil
}

func scopeOf(el *xmlio.Element, parent prefixLookup) prefixLookup {
	if len(el.Decls) == 0 {
		return parent
	}
	return func(prefix string) (string, bool) {
		for _, d := range el.Decls {
			if d.Prefix == prefix {
				return d.URI, true
			}
		}
		return parent(prefix)
	}
}

// splitContent separates child elements from text. significant reports
// text other than whitespace.
func splitContent(nodes []xmlio.Node) (elements []*xmlio.Element, text string, significant bool) {
	var b strings.Builder
	for _, n := range nodes {
		switch n := n.(type) {
		case *xmlio.Element:
			elements = append(elements, n)
		case xmlio.Text:
			b.WriteString(string(n))
		}
	}
	text = b.String()
	return elements, text, xmlvalue.TrimXMLWhitespaceString(text) != ""
}

func foreignAttrs(attrs []xmlio.Attr) []xmlio.Attr {
	var out []xmlio.Attr
	for _, a := range attrs {
		if a.Space == contract.SchemaInstanceNamespace && a.Local == typeLocal {
			continue
		}
		if a.Space == contract.SerializationNamespace && a.Local == idLocal {
			continue
		}
		out = append(out, a)
	}
	return out
}

func isPrimitiveName(name contract.QName) bool {
	if name.IsZero() {
		return false
	}
	c, ok := contract.Builtin(name)
	return ok && c.Kind == contract.KindPrimitive && !c.IsAnyType()
}
