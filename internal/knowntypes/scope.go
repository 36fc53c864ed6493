// Package knowntypes resolves polymorphic wire names against nested
// known-type closures.
package knowntypes

import "github.com/marius-klimantavicius/data-contracts-sub001/contract"

// Scope is a stack of known-type closures. Lookups search from the
// innermost closure outward. The zero value is an empty scope.
type Scope struct {
	frames []contract.KnownTypes
}

// Push enters a closure.
func (s *Scope) Push(k contract.KnownTypes) {
	s.frames = append(s.frames, k)
}

// PushIfAny pushes k when it is non-empty and reports whether it did. The
// caller pops only when it returns true.
func (s *Scope) PushIfAny(k contract.KnownTypes) bool {
	if k.Len() == 0 {
		return false
	}
	s.Push(k)
	return true
}

// Pop leaves the innermost closure.
func (s *Scope) Pop() {
	if len(s.frames) == 0 {
		return
	}
	s.frames[len(s.frames)-1] = contract.KnownTypes{}
	s.frames = s.frames[:len(s.frames)-1]
}

// Lookup returns the contract bound to name by the innermost closure that
// knows it.
func (s *Scope) Lookup(name contract.QName) (*contract.DataContract, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if c, ok := s.frames[i].Lookup(name); ok {
			return c, true
		}
	}
	return nil, false
}

// Depth returns the number of pushed closures.
func (s *Scope) Depth() int {
	return len(s.frames)
}
