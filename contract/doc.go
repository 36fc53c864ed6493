// Package contract describes the wire shape of Go types as data contracts.
//
// A DataContract is a tagged union over class, collection, enum, primitive
// and XML pass-through shapes. Contracts are built once (by hand or by a
// generator), registered in a Registry and then shared read-only between
// any number of concurrent serialization calls. The serializer never
// inspects Go types to discover members; it dispatches through the bound
// accessor functions each contract carries.
package contract
