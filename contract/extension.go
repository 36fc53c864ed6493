package contract

import "github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlio"

// ExtensibleDataObject is implemented by objects that keep members unknown
// to their contract so that a read followed by a write preserves them.
type ExtensibleDataObject interface {
	ExtensionData() *ExtensionDataObject
	SetExtensionData(ext *ExtensionDataObject)
}

// ExtensionDataObject holds the unknown members of one object.
type ExtensionDataObject struct {
	Members []*ExtensionDataMember
}

// Len returns the number of members.
func (e *ExtensionDataObject) Len() int {
	if e == nil {
		return 0
	}
	return len(e.Members)
}

// ExtensionDataMember is one unknown member element. MemberIndex is the
// number of known members that preceded it in the document; it is written
// back at the same position.
type ExtensionDataMember struct {
	// Value is nil for members written as nil.
	Value       DataNode
	Name        string
	Namespace   string
	MemberIndex int
}

// DataNode is the retained content of an unknown member.
type DataNode interface {
	Info() *DataNodeInfo
	dataNode()
}

// DataNodeInfo is shared by all data nodes. ID is the document id the node
// carried, empty when it had none.
type DataNodeInfo struct {
	DataType QName
	ID       string
}

// Info returns the node metadata.
func (i *DataNodeInfo) Info() *DataNodeInfo { return i }

func (*DataNodeInfo) dataNode() {}

// ClassDataNode retains an element whose children are members.
type ClassDataNode struct {
	DataNodeInfo
	Members []*ExtensionDataMember
}

// CollectionDataNode retains an element whose children are items. Size is
// the declared item count, or -1 when none was given.
type CollectionDataNode struct {
	DataNodeInfo
	ItemName      string
	ItemNamespace string
	Items         []DataNode
	Size          int
}

// XMLDataNode retains an element whose content could not be classified.
type XMLDataNode struct {
	DataNodeInfo
	Attrs   []xmlio.Attr
	Decls   []xmlio.NamespaceDecl
	Content []xmlio.Node
}

// SerializableDataNode retains an element written from object data
// entries. FactoryType is the factory type name, if present.
type SerializableDataNode struct {
	DataNodeInfo
	FactoryType QName
	Members     []*ExtensionDataMember
}

// PrimitiveDataNode retains text content.
type PrimitiveDataNode struct {
	DataNodeInfo
	Value string
}
