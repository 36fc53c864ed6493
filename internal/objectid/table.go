// Package objectid assigns small integer ids to object references for
// reference-preserving serialization.
package objectid

import (
	"encoding/binary"
	"reflect"
	"unsafe"

	"github.com/cespare/xxhash/v2"

	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
)

const initialSize = 31

type key struct {
	ptr unsafe.Pointer
	typ reflect.Type
	n   int
}

// Key is the reference identity of an object. It is comparable.
type Key = key

// KeyOf returns the identity of obj.
func KeyOf(obj any) (Key, bool) {
	return identity(obj)
}

// identity returns the reference identity of obj. Non-nil pointers and
// maps have one; two values are the same object when both the address and
// the dynamic type match. Slices are identified by backing array, length
// and type; slices without storage have no identity.
func identity(obj any) (key, bool) {
	if obj == nil {
		return key{}, false
	}
	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map:
		if v.IsNil() {
			return key{}, false
		}
		return key{ptr: v.UnsafePointer(), typ: v.Type()}, true
	case reflect.Slice:
		if v.Cap() == 0 || v.Type().Elem().Size() == 0 {
			return key{}, false
		}
		return key{ptr: v.UnsafePointer(), typ: v.Type(), n: v.Len()}, true
	default:
		return key{}, false
	}
}

// HasIdentity reports whether obj can be tracked by a Table.
func HasIdentity(obj any) bool {
	_, ok := identity(obj)
	return ok
}

// Table maps object references to ids using open addressing with linear
// probing. At least one slot is always empty. Ids start at 1 and are never
// reused within a table.
//
// A Table is not safe for concurrent use.
type Table struct {
	keys  []key
	ids   []int
	count int
	last  int
}

// New returns an empty table.
func New() *Table {
	return &Table{
		keys: make([]key, initialSize),
		ids:  make([]int, initialSize),
	}
}

// Len returns the number of tracked objects.
func (t *Table) Len() int {
	return t.count
}

// GetID returns the id of obj. When obj is unknown and allowInsert is set a
// new id is assigned and isNew is true; otherwise the id is 0. Objects
// without identity always report 0.
func (t *Table) GetID(obj any, allowInsert bool) (id int, isNew bool) {
	k, ok := identity(obj)
	if !ok {
		return 0, false
	}
	i, found := t.find(k)
	if found {
		return t.ids[i], false
	}
	if !allowInsert {
		return 0, false
	}
	t.last++
	t.put(i, k, t.last)
	return t.last, true
}

// Reassign moves the id of oldObj to newObj. When oldID is positive oldObj
// keeps oldID afterwards; otherwise oldObj is removed. It returns the id
// newObj had before the call, or 0. Nothing changes when oldObj is not
// tracked.
func (t *Table) Reassign(oldID int, oldObj, newObj any) int {
	oldKey, ok := identity(oldObj)
	if !ok {
		return 0
	}
	i, found := t.find(oldKey)
	if !found {
		return 0
	}
	id := t.ids[i]
	if oldID > 0 {
		t.ids[i] = oldID
	} else {
		t.removeAt(i)
	}
	newKey, ok := identity(newObj)
	if !ok {
		return 0
	}
	j, found := t.find(newKey)
	if found {
		prev := t.ids[j]
		t.ids[j] = id
		return prev
	}
	t.put(j, newKey, id)
	return 0
}

func (t *Table) slot(k key) int {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(uintptr(k.ptr)))
	return int(xxhash.Sum64(buf[:]) % uint64(len(t.keys)))
}

// find returns the slot holding k or the empty slot where k belongs.
func (t *Table) find(k key) (int, bool) {
	start := t.slot(k)
	i := start
	for {
		switch t.keys[i] {
		case key{}:
			return i, false
		case k:
			return i, true
		}
		i++
		if i == len(t.keys) {
			i = 0
		}
		if i == start {
			panic(dcerrors.New(dcerrors.ErrIdentityTable, "object identity table has no free slot"))
		}
	}
}

func (t *Table) put(i int, k key, id int) {
	t.keys[i] = k
	t.ids[i] = id
	t.count++
	if t.count*4 > len(t.keys)*3 {
		t.grow()
	}
}

// removeAt empties slot hole and moves later entries of the same probe run
// back so that every remaining key is reachable from its home slot.
func (t *Table) removeAt(hole int) {
	n := len(t.keys)
	t.keys[hole] = key{}
	t.ids[hole] = 0
	t.count--
	for j := (hole + 1) % n; t.keys[j] != (key{}); j = (j + 1) % n {
		if between(hole, t.slot(t.keys[j]), j) {
			continue
		}
		t.keys[hole], t.ids[hole] = t.keys[j], t.ids[j]
		t.keys[j] = key{}
		t.ids[j] = 0
		hole = j
	}
}

// between reports whether x lies in the cyclic interval (lo, hi].
func between(lo, x, hi int) bool {
	if lo <= hi {
		return lo < x && x <= hi
	}
	return lo < x || x <= hi
}

func (t *Table) grow() {
	oldKeys, oldIDs := t.keys, t.ids
	size := nextPrime(2 * len(oldKeys))
	t.keys = make([]key, size)
	t.ids = make([]int, size)
	for i, k := range oldKeys {
		if k == (key{}) {
			continue
		}
		j, _ := t.find(k)
		t.keys[j] = k
		t.ids[j] = oldIDs[i]
	}
}

func nextPrime(n int) int {
	if n <= 2 {
		return 2
	}
	if n%2 == 0 {
		n++
	}
	for !isPrime(n) {
		n += 2
	}
	return n
}

func isPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := 3; d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}
