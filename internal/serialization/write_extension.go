package serialization

import (
	"strconv"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
	"github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlio"
)

// writeExtensionData writes the extension members recorded before member
// index. With rest set it writes every member at or beyond index.
func (c *WriteContext) writeExtensionData(ext *contract.ExtensionDataObject, index int, rest bool) error {
	if ext.Len() == 0 || c.cfg.IgnoreExtensionData {
		return nil
	}
	for _, m := range ext.Members {
		if m == nil {
			continue
		}
		at := m.MemberIndex == index ||
			(index == 0 && m.MemberIndex < 0) ||
			(rest && m.MemberIndex > index)
		if !at {
			continue
		}
		if err := c.writeExtensionMember(m); err != nil {
			return err
		}
	}
	return nil
}

func (c *WriteContext) writeExtensionMember(m *contract.ExtensionDataMember) error {
	if err := c.incrementItems(1); err != nil {
		return err
	}
	if err := c.startElement(m.Name, m.Namespace); err != nil {
		return err
	}
	if err := c.writeDataNode(m.Value); err != nil {
		return err
	}
	return c.w.WriteEndElement()
}

func (c *WriteContext) writeDataNode(node contract.DataNode) error {
	if isNil(node) {
		return c.writeNil()
	}
	info := node.Info()
	if info.ID != "" {
		if done, err := c.writeReference(node); err != nil || done {
			return err
		}
	}
	if !info.DataType.IsZero() {
		if err := c.writeTypeMarker(info.DataType); err != nil {
			return err
		}
	}
	switch n := node.(type) {
	case *contract.PrimitiveDataNode:
		return c.w.WriteString(n.Value)
	case *contract.ClassDataNode:
		return c.writeNodeMembers(n.Members)
	case *contract.SerializableDataNode:
		if !n.FactoryType.IsZero() {
			prefix, err := c.prefixFor(n.FactoryType.Space)
			if err != nil {
				return err
			}
			value := n.FactoryType.Local
			if prefix != "" {
				value = prefix + ":" + value
			}
			if err := c.w.WriteAttribute(serPrefix, factoryTypeLocal, contract.SerializationNamespace, value); err != nil {
				return err
			}
		}
		return c.writeNodeMembers(n.Members)
	case *contract.CollectionDataNode:
		return c.writeCollectionNode(n)
	case *contract.XMLDataNode:
		for _, d := range n.Decls {
			if d.Prefix == "" {
				// the element name owns the default namespace
				continue
			}
			if err := c.w.WriteNamespace(d.Prefix, d.URI); err != nil {
				return err
			}
		}
		for _, a := range n.Attrs {
			if err := c.w.WriteAttribute(a.Prefix, a.Local, a.Space, a.Value); err != nil {
				return err
			}
		}
		return xmlio.WriteContent(c.w, n.Content)
	default:
		return dcerrors.Newf(dcerrors.ErrInvalidContract, "unsupported extension data node %T", node)
	}
}

func (c *WriteContext) writeNodeMembers(members []*contract.ExtensionDataMember) error {
	for _, m := range members {
		if m == nil {
			continue
		}
		if err := c.writeExtensionMember(m); err != nil {
			return err
		}
	}
	return nil
}

func (c *WriteContext) writeCollectionNode(n *contract.CollectionDataNode) error {
	if n.Size >= 0 {
		if err := c.w.WriteAttribute(serPrefix, sizeLocal, contract.SerializationNamespace, strconv.Itoa(n.Size)); err != nil {
			return err
		}
	}
	for _, item := range n.Items {
		if err := c.incrementItems(1); err != nil {
			return err
		}
		if err := c.startElement(n.ItemName, n.ItemNamespace); err != nil {
			return err
		}
		if err := c.writeDataNode(item); err != nil {
			return err
		}
		if err := c.w.WriteEndElement(); err != nil {
			return err
		}
	}
	return nil
}
