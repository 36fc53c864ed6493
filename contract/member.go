package contract

import (
	"fmt"
	"reflect"
	"unsafe"
)

// DataMember describes one serialized member of a class contract.
//
// Get receives a pointer to the owning object and returns the member value.
// Set receives the same pointer and the decoded value; a nil value means
// the member was written as nil.
type DataMember struct {
	Type reflect.Type
	// Contract is the declared contract of the member. When nil it is
	// resolved from Type at serialization time.
	Contract *DataContract
	Get      func(obj any) (any, error)
	Set      func(obj, value any) error
	Name     string
	// Namespace overrides the namespace of the declaring class.
	Namespace string
	Order     int

	IsRequired          bool
	EmitDefaultValue    bool
	IsNullable          bool
	IsGetOnlyCollection bool
}

// Field builds a member bound to typed accessors on *T. EmitDefaultValue
// is on; adjust the returned value for other policies.
func Field[T, V any](name string, get func(*T) V, set func(*T, V)) DataMember {
	m := DataMember{
		Name:             name,
		Type:             reflect.TypeFor[V](),
		EmitDefaultValue: true,
		Get: func(obj any) (any, error) {
			p, ok := obj.(*T)
			if !ok || p == nil {
				return nil, accessorTypeError(name, reflect.TypeFor[*T](), obj)
			}
			return get(p), nil
		},
	}
	k := m.Type.Kind()
	m.IsNullable = k == reflect.Pointer || k == reflect.Interface || k == reflect.Map || k == reflect.Slice
	if set != nil {
		m.Set = func(obj, value any) error {
			p, ok := obj.(*T)
			if !ok || p == nil {
				return accessorTypeError(name, reflect.TypeFor[*T](), obj)
			}
			if value == nil {
				var zero V
				set(p, zero)
				return nil
			}
			v, ok := value.(V)
			if !ok {
				return accessorTypeError(name, reflect.TypeFor[V](), value)
			}
			set(p, v)
			return nil
		}
	}
	return m
}

// GetOnlyCollection builds a member whose collection is owned by the object
// and populated in place on read.
func GetOnlyCollection[T, V any](name string, get func(*T) V) DataMember {
	m := Field[T, V](name, get, nil)
	m.IsGetOnlyCollection = true
	return m
}

// WithContract returns a copy of m declaring c as its contract.
func (m DataMember) WithContract(c *DataContract) DataMember {
	m.Contract = c
	return m
}

// Required returns a copy of m that must be present on the wire.
func (m DataMember) Required() DataMember {
	m.IsRequired = true
	return m
}

// OmitDefault returns a copy of m that is not written when it holds its
// type's default value.
func (m DataMember) OmitDefault() DataMember {
	m.EmitDefaultValue = false
	return m
}

// InNamespace returns a copy of m with a namespace override.
func (m DataMember) InNamespace(ns string) DataMember {
	m.Namespace = ns
	return m
}

func accessorTypeError(member string, want reflect.Type, got any) error {
	return fmt.Errorf("member %s: expected %v, got %T", member, want, got)
}

// FlatMember is a member of a flattened class hierarchy together with the
// namespace its element is written in.
type FlatMember struct {
	*DataMember
	Declaring *DataContract
	Namespace string
	// embed is the field path from the flattened class to the embedded
	// struct of the declaring level. Empty when accessors take the object.
	embed []int
}

// Receiver returns the value handed to the member accessors for obj: obj
// itself for members of the flattened class, or a pointer to the embedded
// struct of the declaring base level. A nil embedded pointer is allocated
// when alloc is set and is an error otherwise.
func (m *FlatMember) Receiver(obj any, alloc bool) (any, error) {
	if len(m.embed) == 0 {
		return obj, nil
	}
	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return nil, fmt.Errorf("member %s: expected a non-nil pointer, got %T", m.Name, obj)
	}
	rv = rv.Elem()
	for _, i := range m.embed {
		if rv.Kind() == reflect.Pointer {
			rv = rv.Elem()
		}
		f := rv.Field(i)
		// unexported embedded structs are reached through their address
		f = reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
		if f.Kind() == reflect.Pointer && f.IsNil() {
			if !alloc {
				return nil, fmt.Errorf("member %s: embedded %v is nil", m.Name, f.Type())
			}
			f.Set(reflect.New(f.Type().Elem()))
		}
		rv = f
	}
	if rv.Kind() == reflect.Pointer {
		return rv.Interface(), nil
	}
	return rv.Addr().Interface(), nil
}

// embedPath finds the anonymous field path from struct type from to an
// embedded target, by value or by pointer. Shallower embeddings win.
func embedPath(from, target reflect.Type) []int {
	type step struct {
		t    reflect.Type
		path []int
	}
	queue := []step{{t: from}}
	seen := map[reflect.Type]bool{from: true}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for i := 0; i < cur.t.NumField(); i++ {
			f := cur.t.Field(i)
			if !f.Anonymous {
				continue
			}
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() != reflect.Struct || seen[ft] {
				continue
			}
			path := append(append([]int(nil), cur.path...), i)
			if ft == target {
				return path
			}
			seen[ft] = true
			queue = append(queue, step{t: ft, path: path})
		}
	}
	return nil
}

func structType(t reflect.Type) reflect.Type {
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// IsDefault reports whether v equals the default of its type. Values that
// define IsZero decide for themselves.
func IsDefault(v any) bool {
	if v == nil {
		return true
	}
	if z, ok := v.(interface{ IsZero() bool }); ok {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return true
		}
		return z.IsZero()
	}
	return reflect.ValueOf(v).IsZero()
}
