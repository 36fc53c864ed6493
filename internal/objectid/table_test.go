package objectid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	next *node
	n    int
}

func TestGetIDStable(t *testing.T) {
	tbl := New()
	a, b := &node{n: 1}, &node{n: 1}

	id, isNew := tbl.GetID(a, true)
	require.True(t, isNew)
	assert.Equal(t, 1, id)

	id, isNew = tbl.GetID(a, true)
	assert.False(t, isNew)
	assert.Equal(t, 1, id)

	id, isNew = tbl.GetID(b, false)
	assert.False(t, isNew)
	assert.Zero(t, id)

	id, isNew = tbl.GetID(b, true)
	assert.True(t, isNew)
	assert.Equal(t, 2, id)
	assert.Equal(t, 2, tbl.Len())
}

func TestIdentityIncludesType(t *testing.T) {
	tbl := New()
	n := &node{}
	// a pointer to the first field shares the address of the struct
	first := &n.next
	idNode, _ := tbl.GetID(n, true)
	idField, isNew := tbl.GetID(first, true)
	assert.True(t, isNew)
	assert.NotEqual(t, idNode, idField)
}

func TestValuesHaveNoIdentity(t *testing.T) {
	tbl := New()
	for _, v := range []any{nil, 5, "s", node{}, []int(nil), []int{}, make([]struct{}, 3), (*node)(nil), map[string]int(nil)} {
		id, isNew := tbl.GetID(v, true)
		assert.Zero(t, id)
		assert.False(t, isNew)
	}
	assert.True(t, HasIdentity(map[string]int{}))
	assert.True(t, HasIdentity([]int{1}))
}

func TestSliceIdentity(t *testing.T) {
	tbl := New()
	backing := []any{1, 2, 3}
	alias := backing

	id, isNew := tbl.GetID(backing, true)
	require.True(t, isNew)
	again, isNew := tbl.GetID(alias, true)
	assert.False(t, isNew)
	assert.Equal(t, id, again)

	// same array, other length
	prefix, isNew := tbl.GetID(backing[:2], true)
	assert.True(t, isNew)
	assert.NotEqual(t, id, prefix)

	other, isNew := tbl.GetID([]any{1, 2, 3}, true)
	assert.True(t, isNew)
	assert.NotEqual(t, id, other)
}

func TestReassignMovesID(t *testing.T) {
	tbl := New()
	obj, surrogate := &node{n: 1}, &node{n: 2}
	id, _ := tbl.GetID(obj, true)

	prev := tbl.Reassign(0, obj, surrogate)
	assert.Zero(t, prev)
	got, isNew := tbl.GetID(surrogate, false)
	assert.False(t, isNew)
	assert.Equal(t, id, got)
	got, _ = tbl.GetID(obj, false)
	assert.Zero(t, got, "old object is removed")

	// restore: obj gets the id back, surrogate keeps its own id
	const surrogateID = 7
	prev = tbl.Reassign(surrogateID, surrogate, obj)
	assert.Zero(t, prev)
	got, _ = tbl.GetID(obj, false)
	assert.Equal(t, id, got)
	got, _ = tbl.GetID(surrogate, false)
	assert.Equal(t, surrogateID, got)
}

func TestReassignReturnsPreviousID(t *testing.T) {
	tbl := New()
	a, b := &node{}, &node{}
	idA, _ := tbl.GetID(a, true)
	idB, _ := tbl.GetID(b, true)
	prev := tbl.Reassign(0, a, b)
	assert.Equal(t, idB, prev)
	got, _ := tbl.GetID(b, false)
	assert.Equal(t, idA, got)

	assert.Zero(t, tbl.Reassign(0, &node{}, a), "untracked old object")
}

func TestGrowthAndRemovalKeepLookups(t *testing.T) {
	tbl := New()
	nodes := make([]*node, 2000)
	ids := make(map[*node]int, len(nodes))
	for i := range nodes {
		nodes[i] = &node{n: i}
		id, isNew := tbl.GetID(nodes[i], true)
		require.True(t, isNew)
		ids[nodes[i]] = id
	}
	assert.Greater(t, len(tbl.keys), 2000)
	checkProbeRuns(t, tbl)

	for i := 0; i < len(nodes); i += 2 {
		replacement := &node{n: -i}
		tbl.Reassign(0, nodes[i], replacement)
		ids[replacement] = ids[nodes[i]]
		delete(ids, nodes[i])
	}
	checkProbeRuns(t, tbl)
	for obj, want := range ids {
		got, isNew := tbl.GetID(obj, false)
		require.False(t, isNew)
		require.Equal(t, want, got)
	}
	assert.Equal(t, len(ids), tbl.Len())
}

// checkProbeRuns verifies that no empty slot separates an entry from its
// home slot.
func checkProbeRuns(t *testing.T, tbl *Table) {
	t.Helper()
	n := len(tbl.keys)
	empty := 0
	for i, k := range tbl.keys {
		if k == (key{}) {
			empty++
			continue
		}
		for j := tbl.slot(k); j != i; j = (j + 1) % n {
			require.NotEqual(t, key{}, tbl.keys[j], "gap between home %d and slot %d", tbl.slot(k), i)
		}
	}
	require.Positive(t, empty)
}

func TestNextPrime(t *testing.T) {
	assert.Equal(t, 67, nextPrime(62))
	assert.Equal(t, 2, nextPrime(1))
	assert.Equal(t, 11, nextPrime(11))
}
