package datacontract

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
	"github.com/marius-klimantavicius/data-contracts-sub001/internal/serialization"
)

// SurrogateProvider substitutes objects before contract resolution.
type SurrogateProvider = serialization.SurrogateProvider

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolved(def int) int {
	if !o.set {
		return def
	}
	return o.value
}

// Settings configures a Serializer.
type Settings struct {
	logger                   *zerolog.Logger
	surrogate                SurrogateProvider
	known                    []*contract.DataContract
	rootName                 contract.QName
	maxItems                 intOption
	ignoreExtensionData      bool
	preserveObjectReferences bool
	serializeReadOnlyTypes   bool
}

// NewSettings returns default, valid settings: no known types, an item
// quota of math.MaxInt32 and a disabled logger.
func NewSettings() Settings {
	return Settings{}
}

// Validate validates settings values.
func (o Settings) Validate() error {
	_, err := o.withDefaults()
	return err
}

// WithRootName sets the document element name (zero uses the root contract's name).
func (o Settings) WithRootName(name contract.QName) Settings {
	o.rootName = name
	return o
}

// WithKnownTypes adds contracts accepted polymorphically anywhere in the graph.
func (o Settings) WithKnownTypes(contracts ...*contract.DataContract) Settings {
	o.known = append(o.known[:len(o.known):len(o.known)], contracts...)
	return o
}

// WithMaxItems sets the item quota of one document.
func (o Settings) WithMaxItems(value int) Settings {
	o.maxItems = intOption{value: value, set: true}
	return o
}

// WithIgnoreExtensionData controls whether unknown members are dropped.
func (o Settings) WithIgnoreExtensionData(value bool) Settings {
	o.ignoreExtensionData = value
	return o
}

// WithPreserveObjectReferences controls whether shared objects are written once and referenced.
func (o Settings) WithPreserveObjectReferences(value bool) Settings {
	o.preserveObjectReferences = value
	return o
}

// WithSerializeReadOnlyTypes controls whether get-only collection members are written.
func (o Settings) WithSerializeReadOnlyTypes(value bool) Settings {
	o.serializeReadOnlyTypes = value
	return o
}

// WithSurrogateProvider sets the provider consulted before contract resolution.
func (o Settings) WithSurrogateProvider(p SurrogateProvider) Settings {
	o.surrogate = p
	return o
}

// WithLogger sets the logger for debug events.
func (o Settings) WithLogger(l zerolog.Logger) Settings {
	o.logger = &l
	return o
}

// MaxItems returns the effective item quota.
func (o Settings) MaxItems() int {
	return o.maxItems.resolved(math.MaxInt32)
}

// KnownTypes returns the configured known types.
func (o Settings) KnownTypes() []*contract.DataContract {
	return append([]*contract.DataContract(nil), o.known...)
}

func (o Settings) withDefaults() (*serialization.Config, error) {
	cfg := serialization.DefaultConfig()
	if o.logger != nil {
		cfg.Logger = *o.logger
	}
	cfg.MaxItems = o.MaxItems()
	if cfg.MaxItems < 0 {
		return nil, fmt.Errorf("max items must be non-negative, got %d", cfg.MaxItems)
	}
	for i, c := range o.known {
		if c == nil {
			return nil, fmt.Errorf("known type %d is nil", i)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("known type %s: %w", c.Name, err)
		}
	}
	if o.rootName.Local == "" && o.rootName.Space != "" {
		return nil, fmt.Errorf("root name in namespace %q has no local name", o.rootName.Space)
	}
	cfg.Known = contract.NewKnownTypes(o.known...)
	cfg.RootName = o.rootName
	cfg.Surrogate = o.surrogate
	cfg.IgnoreExtensionData = o.ignoreExtensionData
	cfg.PreserveObjectReferences = o.preserveObjectReferences
	cfg.SerializeReadOnlyTypes = o.serializeReadOnlyTypes
	return cfg, nil
}
