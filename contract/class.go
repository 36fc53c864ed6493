package contract

import (
	"fmt"
	"reflect"
	"sync"
)

// SerializationEntry is one name/value pair of an object that serializes
// itself through GetObjectData.
type SerializationEntry struct {
	Value any
	Name  string
}

// ClassContract is the payload of a class contract: an ordered member list
// for one level of an inheritance chain.
type ClassContract struct {
	// Base is the contract of the parent level, or nil.
	Base *DataContract
	// New returns a pointer to a fresh instance.
	New     func() any
	Members []DataMember

	// GetObjectData and FromEntries replace member-wise serialization when
	// IsISerializable is set.
	GetObjectData func(obj any) ([]SerializationEntry, error)
	FromEntries   func(entries []SerializationEntry) (any, error)

	flat     []FlatMember
	flatOnce sync.Once

	HasExtensionData bool
	IsISerializable  bool
}

// FlattenedMembers returns the members of the whole chain, base level
// first. The list is computed once and shared.
func (c *DataContract) FlattenedMembers() []FlatMember {
	if c == nil || c.Class == nil {
		return nil
	}
	c.Class.flatOnce.Do(func() {
		chain := c.BaseChain()
		n := 0
		for _, level := range chain {
			n += len(level.Class.Members)
		}
		flat := make([]FlatMember, 0, n)
		leaf := structType(c.Type)
		for i := len(chain) - 1; i >= 0; i-- {
			level := chain[i]
			var embed []int
			if target := structType(level.Type); i > 0 && leaf != nil && target != nil && target != leaf {
				embed = embedPath(leaf, target)
			}
			for j := range level.Class.Members {
				m := &level.Class.Members[j]
				ns := m.Namespace
				if ns == "" {
					ns = level.Name.Space
				}
				flat = append(flat, FlatMember{DataMember: m, Declaring: level, Namespace: ns, embed: embed})
			}
		}
		c.Class.flat = flat
	})
	return c.Class.flat
}

// IsDerivedFrom reports whether base appears in the chain above c.
func (c *DataContract) IsDerivedFrom(base *DataContract) bool {
	for _, level := range c.BaseChain()[1:] {
		if level == base {
			return true
		}
	}
	return false
}

func (c *ClassContract) validate(owner *DataContract) error {
	if c.IsISerializable {
		if c.GetObjectData == nil || c.FromEntries == nil {
			return fmt.Errorf("class contract %s is ISerializable but lacks GetObjectData or FromEntries", owner.Name)
		}
		return nil
	}
	if c.New == nil {
		return fmt.Errorf("class contract %s lacks New", owner.Name)
	}
	seen := make(map[QName]struct{}, len(c.Members))
	for i := range c.Members {
		m := &c.Members[i]
		if m.Name == "" {
			return fmt.Errorf("class contract %s member %d has no name", owner.Name, i)
		}
		if m.Get == nil {
			return fmt.Errorf("class contract %s member %s lacks Get", owner.Name, m.Name)
		}
		if m.Set == nil && !m.IsGetOnlyCollection {
			return fmt.Errorf("class contract %s member %s lacks Set", owner.Name, m.Name)
		}
		if m.Type == nil && m.Contract == nil {
			return fmt.Errorf("class contract %s member %s has neither Type nor Contract", owner.Name, m.Name)
		}
		key := QName{Local: m.Name, Space: m.Namespace}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("class contract %s declares member %s twice", owner.Name, m.Name)
		}
		seen[key] = struct{}{}
	}
	for level := c.Base; level != nil; {
		if level == owner {
			return fmt.Errorf("class contract %s inherits from itself", owner.Name)
		}
		if level.Kind != KindClass || level.Class == nil {
			return fmt.Errorf("class contract %s has non-class base %s", owner.Name, level.Name)
		}
		level = level.Class.Base
	}
	return nil
}

// NewClass builds a class contract for T whose instances are created by
// new(T) and passed as *T to member accessors. The contract's Type is *T.
func NewClass[T any](name QName, base *DataContract, members ...DataMember) *DataContract {
	return &DataContract{
		Kind: KindClass,
		Type: reflect.TypeFor[*T](),
		Name: name,
		Class: &ClassContract{
			Base:    base,
			Members: members,
			New:     func() any { return new(T) },
		},
		CanContainReferences: true,
	}
}

// NewValueClass is NewClass for types handled by value. The contract's
// Type is T; accessors still receive *T.
func NewValueClass[T any](name QName, members ...DataMember) *DataContract {
	c := NewClass[T](name, nil, members...)
	c.Type = reflect.TypeFor[T]()
	c.IsValueType = true
	return c
}
