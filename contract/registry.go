package contract

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
)

// Registry is a Resolver over explicitly registered contracts. Built-in
// primitive contracts are always available. Lookups are lock-free;
// registration may run concurrently with lookups of other types.
type Registry struct {
	byType *xsync.MapOf[reflect.Type, *DataContract]
	byName *xsync.MapOf[QName, *DataContract]
	nextID atomic.Int64
}

// NewRegistry returns a registry holding only the built-in contracts.
func NewRegistry() *Registry {
	r := &Registry{
		byType: xsync.NewMapOf[reflect.Type, *DataContract](),
		byName: xsync.NewMapOf[QName, *DataContract](),
	}
	r.nextID.Store(int64(len(defaultBuiltins.ordered)))
	return r
}

// Register validates and adds contracts together with the contracts they
// reference (base levels, declared member and item contracts, known types).
// Registering the same contract twice is a no-op.
func (r *Registry) Register(contracts ...*DataContract) error {
	visited := make(map[*DataContract]struct{})
	for _, c := range contracts {
		if err := r.register(c, visited); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(contracts ...*DataContract) *Registry {
	if err := r.Register(contracts...); err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) register(c *DataContract, visited map[*DataContract]struct{}) error {
	if c == nil {
		return nil
	}
	if _, ok := visited[c]; ok {
		return nil
	}
	visited[c] = struct{}{}
	if c.IsBuiltIn {
		return nil
	}
	if err := c.Validate(); err != nil {
		return dcerrors.Wrap(dcerrors.ErrInvalidContract, err, "invalid data contract").WithType(c.Name.String())
	}
	if existing, ok := r.byType.Load(c.Type); ok && existing != c {
		return dcerrors.Newf(dcerrors.ErrInvalidContract, "type %v is already registered as %s", c.Type, existing.Name).
			WithType(c.Name.String())
	}
	if existing, ok := r.byName.Load(c.Name); ok && existing != c {
		return dcerrors.Newf(dcerrors.ErrInvalidContract, "name %s is already registered for %v", c.Name, existing.Type).
			WithType(c.Name.String())
	}
	if c.ID == 0 {
		c.ID = int(r.nextID.Add(1))
	}
	r.byType.Store(c.Type, c)
	r.byName.Store(c.Name, c)
	for _, ref := range references(c) {
		if err := r.register(ref, visited); err != nil {
			return err
		}
	}
	return nil
}

func references(c *DataContract) []*DataContract {
	var refs []*DataContract
	switch c.Kind {
	case KindClass:
		refs = append(refs, c.Class.Base)
		for i := range c.Class.Members {
			refs = append(refs, c.Class.Members[i].Contract)
		}
	case KindCollection:
		refs = append(refs, c.Collection.ItemContract, c.Collection.KeyContract, c.Collection.ValueContract)
	}
	for _, known := range c.Known.All() {
		refs = append(refs, known)
	}
	return refs
}

// DataContract implements Resolver. Pointer types fall back to the
// contract of their element type; unregistered interface types resolve to
// anyType.
func (r *Registry) DataContract(t reflect.Type) (*DataContract, error) {
	if t == nil {
		return AnyType(), nil
	}
	if c, ok := r.lookupType(t); ok {
		return c, nil
	}
	if t.Kind() == reflect.Pointer {
		if c, ok := r.lookupType(t.Elem()); ok {
			return c, nil
		}
	}
	if t.Kind() == reflect.Interface {
		return AnyType(), nil
	}
	return nil, dcerrors.New(dcerrors.ErrContractMissing, fmt.Sprintf("no data contract for type %v", t)).
		WithType(t.String())
}

func (r *Registry) lookupType(t reflect.Type) (*DataContract, bool) {
	if c, ok := r.byType.Load(t); ok {
		return c, true
	}
	return BuiltinForType(t)
}

// PrimitiveDataContract implements Resolver.
func (r *Registry) PrimitiveDataContract(t reflect.Type) (*DataContract, bool) {
	return BuiltinForType(t)
}

// PrimitiveDataContractByName implements Resolver.
func (r *Registry) PrimitiveDataContractByName(name QName) (*DataContract, bool) {
	return Builtin(name)
}

// DataContractByName implements Resolver.
func (r *Registry) DataContractByName(name QName) (*DataContract, bool) {
	if c, ok := r.byName.Load(name); ok {
		return c, true
	}
	return Builtin(name)
}

// Len returns the number of registered, non built-in contracts.
func (r *Registry) Len() int {
	return r.byType.Size()
}
