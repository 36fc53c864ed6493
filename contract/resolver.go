package contract

import "reflect"

// Resolver maps Go types and wire names to contracts. Implementations must
// be safe for concurrent use.
type Resolver interface {
	DataContract(t reflect.Type) (*DataContract, error)
	PrimitiveDataContract(t reflect.Type) (*DataContract, bool)
	PrimitiveDataContractByName(name QName) (*DataContract, bool)
	DataContractByName(name QName) (*DataContract, bool)
}
