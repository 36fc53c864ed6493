package contract

import (
	"fmt"
	"reflect"
)

// CollectionKind is the shape of a collection contract.
type CollectionKind uint8

const (
	CollectionArray CollectionKind = iota + 1
	CollectionList
	CollectionDictionary
	CollectionGenericDictionary
	CollectionCollection
	CollectionEnumerable
	CollectionSet
)

// String returns the kind label.
func (k CollectionKind) String() string {
	switch k {
	case CollectionArray:
		return "array"
	case CollectionList:
		return "list"
	case CollectionDictionary:
		return "dictionary"
	case CollectionGenericDictionary:
		return "generic-dictionary"
	case CollectionCollection:
		return "collection"
	case CollectionEnumerable:
		return "enumerable"
	case CollectionSet:
		return "set"
	default:
		return fmt.Sprintf("collection-kind(%d)", uint8(k))
	}
}

// IsDictionary reports whether items are key/value pairs.
func (k CollectionKind) IsDictionary() bool {
	return k == CollectionDictionary || k == CollectionGenericDictionary
}

// KeyValue is the item of a dictionary collection.
type KeyValue struct {
	Key   any
	Value any
}

// CollectionContract is the payload of a collection contract. Items are
// written as one element per item, named ItemName in the collection's
// namespace.
type CollectionContract struct {
	ItemType     reflect.Type
	ItemContract *DataContract
	KeyType      reflect.Type
	ValueType    reflect.Type
	// KeyContract and ValueContract are the declared contracts of
	// dictionary keys and values; nil means resolve from the Go type.
	KeyContract   *DataContract
	ValueContract *DataContract

	Len   func(coll any) int
	Range func(coll any, yield func(item any) error) error
	// New returns an empty collection with room for capacity items.
	New func(capacity int) any
	// Add appends item and returns the collection, which may be a new
	// value for slices.
	Add func(coll, item any) (any, error)
	// Replace overwrites the item at index. Optional.
	Replace func(coll any, index int, item any) error

	ItemName  string
	KeyName   string
	ValueName string
	Kind      CollectionKind
}

func (c *CollectionContract) validate(owner *DataContract) error {
	if c.Len == nil || c.Range == nil || c.New == nil || c.Add == nil {
		return fmt.Errorf("collection contract %s lacks Len, Range, New or Add", owner.Name)
	}
	if c.ItemName == "" {
		return fmt.Errorf("collection contract %s has no item name", owner.Name)
	}
	if c.Kind.IsDictionary() {
		if c.KeyName == "" || c.ValueName == "" {
			return fmt.Errorf("dictionary contract %s needs key and value names", owner.Name)
		}
		if (c.KeyType == nil && c.KeyContract == nil) || (c.ValueType == nil && c.ValueContract == nil) {
			return fmt.Errorf("dictionary contract %s needs key and value types", owner.Name)
		}
		return nil
	}
	if c.ItemType == nil && c.ItemContract == nil {
		return fmt.Errorf("collection contract %s has neither ItemType nor ItemContract", owner.Name)
	}
	return nil
}

// NewSlice builds an array contract for []E. Items are named itemName; a
// nil item contract is resolved from E.
func NewSlice[E any](name QName, itemName string, item *DataContract) *DataContract {
	return newSliceContract[E](name, itemName, item, CollectionArray)
}

// NewList is NewSlice with list semantics.
func NewList[E any](name QName, itemName string, item *DataContract) *DataContract {
	return newSliceContract[E](name, itemName, item, CollectionList)
}

func newSliceContract[E any](name QName, itemName string, item *DataContract, kind CollectionKind) *DataContract {
	return &DataContract{
		Kind:                 KindCollection,
		Type:                 reflect.TypeFor[[]E](),
		Name:                 name,
		CanContainReferences: true,
		Collection: &CollectionContract{
			Kind:         kind,
			ItemType:     reflect.TypeFor[E](),
			ItemContract: item,
			ItemName:     itemName,
			Len: func(coll any) int {
				s, _ := coll.([]E)
				return len(s)
			},
			Range: func(coll any, yield func(any) error) error {
				s, _ := coll.([]E)
				for _, v := range s {
					if err := yield(v); err != nil {
						return err
					}
				}
				return nil
			},
			New: func(capacity int) any {
				return make([]E, 0, capacity)
			},
			Add: func(coll, item any) (any, error) {
				s, _ := coll.([]E)
				if item == nil {
					var zero E
					return append(s, zero), nil
				}
				v, ok := item.(E)
				if !ok {
					return coll, fmt.Errorf("collection %s: cannot add %T", name, item)
				}
				return append(s, v), nil
			},
			Replace: func(coll any, index int, item any) error {
				s, _ := coll.([]E)
				if index < 0 || index >= len(s) {
					return fmt.Errorf("collection %s: index %d out of range", name, index)
				}
				v, ok := item.(E)
				if !ok {
					return fmt.Errorf("collection %s: cannot store %T", name, item)
				}
				s[index] = v
				return nil
			},
		},
	}
}

// NewMap builds a generic dictionary contract for map[K]V with the
// conventional KeyValueOf item layout.
func NewMap[K comparable, V any](name QName, itemName string, key, value *DataContract) *DataContract {
	return &DataContract{
		Kind:                 KindCollection,
		Type:                 reflect.TypeFor[map[K]V](),
		Name:                 name,
		CanContainReferences: true,
		Collection: &CollectionContract{
			Kind:          CollectionGenericDictionary,
			ItemType:      reflect.TypeFor[KeyValue](),
			KeyType:       reflect.TypeFor[K](),
			ValueType:     reflect.TypeFor[V](),
			KeyContract:   key,
			ValueContract: value,
			ItemName:      itemName,
			KeyName:       "Key",
			ValueName:     "Value",
			Len: func(coll any) int {
				m, _ := coll.(map[K]V)
				return len(m)
			},
			Range: func(coll any, yield func(any) error) error {
				m, _ := coll.(map[K]V)
				for k, v := range m {
					if err := yield(KeyValue{Key: k, Value: v}); err != nil {
						return err
					}
				}
				return nil
			},
			New: func(capacity int) any {
				return make(map[K]V, capacity)
			},
			Add: func(coll, item any) (any, error) {
				m, _ := coll.(map[K]V)
				if m == nil {
					return coll, fmt.Errorf("dictionary %s: nil map", name)
				}
				kv, ok := item.(KeyValue)
				if !ok {
					return coll, fmt.Errorf("dictionary %s: cannot add %T", name, item)
				}
				k, ok := kv.Key.(K)
				if !ok {
					return coll, fmt.Errorf("dictionary %s: bad key %T", name, kv.Key)
				}
				var v V
				if kv.Value != nil {
					if v, ok = kv.Value.(V); !ok {
						return coll, fmt.Errorf("dictionary %s: bad value %T", name, kv.Value)
					}
				}
				m[k] = v
				return m, nil
			},
		},
	}
}
