// Package serialization writes and reads object graphs against data
// contracts. A context serves exactly one top-level call.
package serialization

import (
	"math"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
)

// Attribute names and prefixes of the wire format.
const (
	xsiPrefix = "i"
	serPrefix = "z"

	nilLocal         = "nil"
	typeLocal        = "type"
	idLocal          = "Id"
	refLocal         = "Ref"
	sizeLocal        = "Size"
	factoryTypeLocal = "FactoryType"

	// cycleCheckDepth is the writer depth from which by-value objects are
	// tracked for cycles.
	cycleCheckDepth = 512
)

// SurrogateProvider substitutes objects before contract resolution.
type SurrogateProvider interface {
	// SurrogateType returns the type written in place of t, or t itself.
	SurrogateType(t reflect.Type) reflect.Type
	// ToSurrogate converts obj to a value of target.
	ToSurrogate(obj any, target reflect.Type) (any, error)
	// FromSurrogate converts a read surrogate back to target.
	FromSurrogate(obj any, target reflect.Type) (any, error)
}

// Config holds the per-serializer options consulted by a context.
type Config struct {
	Logger    zerolog.Logger
	Surrogate SurrogateProvider
	// Known is consulted after the scoped known types.
	Known contract.KnownTypes
	// RootName overrides the document root name when set.
	RootName contract.QName
	// MaxItems bounds the item count of one document.
	MaxItems int

	IgnoreExtensionData      bool
	PreserveObjectReferences bool
	SerializeReadOnlyTypes   bool
}

// DefaultConfig returns a config with an unbounded quota and a disabled
// logger.
func DefaultConfig() *Config {
	return &Config{
		Logger:   zerolog.Nop(),
		MaxItems: math.MaxInt32,
	}
}
