package serialization

import (
	"fmt"
	"reflect"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
	"github.com/marius-klimantavicius/data-contracts-sub001/internal/knowntypes"
)

// state is shared by the write and read contexts.
type state struct {
	resolver contract.Resolver
	cfg      *Config
	scope    knowntypes.Scope
	items    int
}

func newState(resolver contract.Resolver, cfg *Config) state {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return state{resolver: resolver, cfg: cfg}
}

// Items returns the number of items counted against the quota so far.
func (s *state) Items() int {
	return s.items
}

// incrementItems counts n items and fails once the quota would be exceeded.
func (s *state) incrementItems(n int) error {
	if n > s.cfg.MaxItems-s.items {
		return dcerrors.Newf(dcerrors.ErrQuotaExceeded,
			"exceeded maximum items in object graph (%d)", s.cfg.MaxItems)
	}
	s.items += n
	return nil
}

func (s *state) remainingItems() int {
	return s.cfg.MaxItems - s.items
}

func (s *state) contractForType(t reflect.Type) (*contract.DataContract, error) {
	c, err := s.resolver.DataContract(t)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, dcerrors.Newf(dcerrors.ErrContractMissing, "no data contract for type %v", t)
	}
	return c, nil
}

// contractOf returns the contract of the dynamic type of v.
func (s *state) contractOf(v any, declared *contract.DataContract) (*contract.DataContract, error) {
	t := reflect.TypeOf(v)
	if declared != nil && declared.Type == t {
		return declared, nil
	}
	return s.contractForType(t)
}

func (s *state) memberContract(m *contract.FlatMember) (*contract.DataContract, error) {
	if m.Contract != nil {
		return m.Contract, nil
	}
	return s.contractForType(m.Type)
}

func (s *state) itemContract(coll *contract.CollectionContract) (*contract.DataContract, error) {
	if coll.ItemContract != nil {
		return coll.ItemContract, nil
	}
	return s.contractForType(coll.ItemType)
}

func (s *state) keyValueContracts(coll *contract.CollectionContract) (key, value *contract.DataContract, err error) {
	key = coll.KeyContract
	if key == nil {
		if key, err = s.contractForType(coll.KeyType); err != nil {
			return nil, nil, err
		}
	}
	value = coll.ValueContract
	if value == nil {
		if value, err = s.contractForType(coll.ValueType); err != nil {
			return nil, nil, err
		}
	}
	return key, value, nil
}

// resolveKnown finds the contract bound to a polymorphic wire name: the
// scoped known types first, then the configured ones, then the built-in
// primitives.
func (s *state) resolveKnown(name contract.QName) (*contract.DataContract, bool) {
	if c, ok := s.scope.Lookup(name); ok {
		return c, true
	}
	if c, ok := s.cfg.Known.Lookup(name); ok {
		return c, true
	}
	return s.resolver.PrimitiveDataContractByName(name)
}

// pushKnown enters the known types of declared and, when it differs, of
// actual. The returned function leaves them again.
func (s *state) pushKnown(declared, actual *contract.DataContract) func() {
	n := 0
	if declared != nil && s.scope.PushIfAny(declared.Known) {
		n++
	}
	if actual != declared && actual != nil && s.scope.PushIfAny(actual.Known) {
		n++
	}
	return func() {
		for range n {
			s.scope.Pop()
		}
	}
}

func sameContract(a, b *contract.DataContract) bool {
	return a == b || (a != nil && b != nil && a.Name == b.Name && a.Type == b.Type)
}

// isNil reports whether v is nil or a nil reference.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// valueOf dereferences pointers to values of a non-pointer contract type.
func valueOf(v any, c *contract.DataContract) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && rv.Type() != c.Type && !rv.IsNil() && c.Type.Kind() != reflect.Interface {
		rv = rv.Elem()
	}
	return rv.Interface()
}

// pointerTo returns v as the pointer handed to class accessors. Values of
// value-type contracts are copied.
func pointerTo(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return v
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return p.Interface()
}

// adapt converts a read value to want when want is a pointer to its type.
func adapt(v any, want reflect.Type) any {
	if v == nil || want == nil {
		return v
	}
	t := reflect.TypeOf(v)
	if t == want || want.Kind() != reflect.Pointer || want.Elem() != t {
		return v
	}
	p := reflect.New(t)
	p.Elem().Set(reflect.ValueOf(v))
	return p.Interface()
}

func typeName(c *contract.DataContract) string {
	if c == nil {
		return ""
	}
	return c.Name.String()
}

func memberError(c *contract.DataContract, member string, err error) error {
	return dcerrors.Wrap(dcerrors.ErrMemberAccess, err, fmt.Sprintf("member %s", member)).WithType(typeName(c))
}

func idText(id int) string {
	return fmt.Sprintf("i%d", id)
}
