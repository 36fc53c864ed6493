package contract

import (
	"fmt"
	"reflect"
)

// Kind selects the DataContract payload.
type Kind uint8

const (
	KindClass Kind = iota + 1
	KindCollection
	KindEnum
	KindPrimitive
	KindXML
)

// String returns the kind label.
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindCollection:
		return "collection"
	case KindEnum:
		return "enum"
	case KindPrimitive:
		return "primitive"
	case KindXML:
		return "xml"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// DataContract is the wire description of one Go type. Exactly one of the
// payload pointers is set, matching Kind. A contract must not be modified
// once registered.
type DataContract struct {
	// Type is the Go type values of this contract have.
	Type reflect.Type
	// Known lists the contracts that may appear polymorphically wherever
	// this contract is declared.
	Known      KnownTypes
	Class      *ClassContract
	Collection *CollectionContract
	Enum       *EnumContract
	Primitive  *PrimitiveContract
	XML        *XMLContract
	Name       QName
	// TopLevel is the document root name; Name is used when zero.
	TopLevel QName
	ID       int
	Kind     Kind

	IsPrimitive          bool
	IsReference          bool
	HasRoot              bool
	CanContainReferences bool
	IsValueType          bool
	IsBuiltIn            bool
}

// RootName returns the element name used when the contract is a document root.
func (c *DataContract) RootName() QName {
	if c.TopLevel.IsZero() {
		return c.Name
	}
	return c.TopLevel
}

// String returns the wire name of the contract.
func (c *DataContract) String() string {
	if c == nil {
		return "<nil contract>"
	}
	return c.Name.String()
}

// IsAnyType reports whether the contract stands for untyped values.
func (c *DataContract) IsAnyType() bool {
	return c != nil && c.Name == AnyTypeName
}

// BaseChain returns the contract followed by its base contracts, leaf first.
func (c *DataContract) BaseChain() []*DataContract {
	var chain []*DataContract
	for cur := c; cur != nil; {
		chain = append(chain, cur)
		if cur.Kind != KindClass || cur.Class == nil {
			break
		}
		cur = cur.Class.Base
	}
	return chain
}

// Validate checks that the payload matches Kind and that required bound
// functions are present.
func (c *DataContract) Validate() error {
	if c == nil {
		return fmt.Errorf("nil contract")
	}
	if c.Name.Local == "" {
		return fmt.Errorf("contract for %v has no name", c.Type)
	}
	if c.Type == nil {
		return fmt.Errorf("contract %s has no Go type", c.Name)
	}
	set := 0
	for _, p := range []bool{c.Class != nil, c.Collection != nil, c.Enum != nil, c.Primitive != nil, c.XML != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("contract %s must carry exactly one payload, has %d", c.Name, set)
	}
	switch c.Kind {
	case KindClass:
		if c.Class == nil {
			return c.payloadMismatch()
		}
		return c.Class.validate(c)
	case KindCollection:
		if c.Collection == nil {
			return c.payloadMismatch()
		}
		return c.Collection.validate(c)
	case KindEnum:
		if c.Enum == nil {
			return c.payloadMismatch()
		}
		return c.Enum.validate(c)
	case KindPrimitive:
		if c.Primitive == nil {
			return c.payloadMismatch()
		}
		if c.Primitive.Encode == nil || c.Primitive.Decode == nil {
			return fmt.Errorf("primitive contract %s lacks Encode or Decode", c.Name)
		}
	case KindXML:
		if c.XML == nil {
			return c.payloadMismatch()
		}
		if c.XML.New == nil {
			return fmt.Errorf("xml contract %s lacks New", c.Name)
		}
	default:
		return fmt.Errorf("contract %s has unknown kind %s", c.Name, c.Kind)
	}
	return nil
}

func (c *DataContract) payloadMismatch() error {
	return fmt.Errorf("contract %s payload does not match kind %s", c.Name, c.Kind)
}
