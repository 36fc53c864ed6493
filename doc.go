// Package datacontract writes Go object graphs to XML and reads them back
// under explicit data contracts.
//
// A contract names a type on the wire and lists its members in order.
// Contracts are registered with a contract.Registry; a Serializer binds a
// registry to a root contract and a Settings value:
//
//	reg := contract.NewRegistry().MustRegister(personContract)
//	s, err := datacontract.New(reg, personContract, datacontract.NewSettings())
//	if err != nil {
//		return err
//	}
//	if err := s.WriteObject(w, p); err != nil {
//		return err
//	}
//
// Serializers are safe for concurrent use. Each call owns its own
// serialization context; contracts and registries are shared read-only.
package datacontract
