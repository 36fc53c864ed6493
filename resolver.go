package datacontract

import (
	"reflect"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
)

// resolverCacheSize bounds the per-serializer contract caches.
const resolverCacheSize = 1024

// cachedResolver memoizes successful lookups of an underlying resolver.
// Failed lookups are not cached so that later registrations become
// visible.
type cachedResolver struct {
	next   contract.Resolver
	byType *lru.Cache[reflect.Type, *contract.DataContract]
	byName *lru.Cache[contract.QName, *contract.DataContract]
}

func newCachedResolver(next contract.Resolver) (*cachedResolver, error) {
	byType, err := lru.New[reflect.Type, *contract.DataContract](resolverCacheSize)
	if err != nil {
		return nil, err
	}
	byName, err := lru.New[contract.QName, *contract.DataContract](resolverCacheSize)
	if err != nil {
		return nil, err
	}
	return &cachedResolver{next: next, byType: byType, byName: byName}, nil
}

func (r *cachedResolver) DataContract(t reflect.Type) (*contract.DataContract, error) {
	if c, ok := r.byType.Get(t); ok {
		return c, nil
	}
	c, err := r.next.DataContract(t)
	if err != nil {
		return nil, err
	}
	if c != nil {
		r.byType.Add(t, c)
	}
	return c, nil
}

func (r *cachedResolver) PrimitiveDataContract(t reflect.Type) (*contract.DataContract, bool) {
	return r.next.PrimitiveDataContract(t)
}

func (r *cachedResolver) PrimitiveDataContractByName(name contract.QName) (*contract.DataContract, bool) {
	return r.next.PrimitiveDataContractByName(name)
}

func (r *cachedResolver) DataContractByName(name contract.QName) (*contract.DataContract, bool) {
	if c, ok := r.byName.Get(name); ok {
		return c, true
	}
	c, ok := r.next.DataContractByName(name)
	if ok && c != nil {
		r.byName.Add(name, c)
	}
	return c, ok
}
