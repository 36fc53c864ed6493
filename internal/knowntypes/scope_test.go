package knowntypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
)

type shape struct{}

type circle struct{}

func TestScopeInnermostWins(t *testing.T) {
	name := contract.NewQName("urn:shapes", "Shape")
	outer := contract.NewClass[shape](name, nil)
	inner := contract.NewClass[circle](name, nil)
	other := contract.NewClass[circle](contract.NewQName("urn:shapes", "Circle"), nil)

	var s Scope
	_, ok := s.Lookup(name)
	assert.False(t, ok)

	s.Push(contract.NewKnownTypes(outer, other))
	require.True(t, s.PushIfAny(contract.NewKnownTypes(inner)))
	assert.Equal(t, 2, s.Depth())

	got, ok := s.Lookup(name)
	require.True(t, ok)
	assert.Same(t, inner, got)
	got, ok = s.Lookup(other.Name)
	require.True(t, ok)
	assert.Same(t, other, got)

	s.Pop()
	got, ok = s.Lookup(name)
	require.True(t, ok)
	assert.Same(t, outer, got)

	s.Pop()
	s.Pop()
	assert.Zero(t, s.Depth())
}

func TestPushIfAnySkipsEmpty(t *testing.T) {
	var s Scope
	assert.False(t, s.PushIfAny(contract.KnownTypes{}))
	assert.Zero(t, s.Depth())
}
