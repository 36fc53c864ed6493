package contract

import (
	"iter"
	"maps"
	"slices"
)

// KnownTypes is an immutable wire-name to contract mapping. The zero value
// is empty and ready to use.
type KnownTypes struct {
	byName map[QName]*DataContract
}

// NewKnownTypes builds a closure from contracts. Later contracts with a
// name already present are ignored.
func NewKnownTypes(contracts ...*DataContract) KnownTypes {
	if len(contracts) == 0 {
		return KnownTypes{}
	}
	m := make(map[QName]*DataContract, len(contracts))
	for _, c := range contracts {
		if c == nil {
			continue
		}
		if _, ok := m[c.Name]; !ok {
			m[c.Name] = c
		}
	}
	return KnownTypes{byName: m}
}

// Lookup returns the contract registered under name.
func (k KnownTypes) Lookup(name QName) (*DataContract, bool) {
	c, ok := k.byName[name]
	return c, ok
}

// Len returns the number of contracts.
func (k KnownTypes) Len() int {
	return len(k.byName)
}

// All yields the contracts in name order.
func (k KnownTypes) All() iter.Seq2[QName, *DataContract] {
	return func(yield func(QName, *DataContract) bool) {
		names := slices.SortedFunc(maps.Keys(k.byName), func(a, b QName) int {
			if a.Space != b.Space {
				if a.Space < b.Space {
					return -1
				}
				return 1
			}
			switch {
			case a.Local < b.Local:
				return -1
			case a.Local > b.Local:
				return 1
			}
			return 0
		})
		for _, n := range names {
			if !yield(n, k.byName[n]) {
				return
			}
		}
	}
}

// With returns a new closure holding k and the given contracts.
func (k KnownTypes) With(contracts ...*DataContract) KnownTypes {
	all := make([]*DataContract, 0, len(k.byName)+len(contracts))
	for _, c := range k.All() {
		all = append(all, c)
	}
	all = append(all, contracts...)
	return NewKnownTypes(all...)
}
