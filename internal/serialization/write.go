package serialization

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
	"github.com/marius-klimantavicius/data-contracts-sub001/internal/objectid"
	"github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlio"
)

// WriteContext writes one object graph.
type WriteContext struct {
	state
	w        xmlio.Writer
	ids      *objectid.Table
	inFlight map[objectid.Key]struct{}
	prefixes int
}

// NewWriteContext returns a context writing to w.
func NewWriteContext(w xmlio.Writer, resolver contract.Resolver, cfg *Config) *WriteContext {
	return &WriteContext{state: newState(resolver, cfg), w: w}
}

// WriteRootStart opens the document element and declares the instance
// namespace prefix on it.
func WriteRootStart(w xmlio.Writer, name contract.QName) error {
	if err := w.WriteStartElement("", name.Local, name.Space); err != nil {
		return err
	}
	return w.WriteNamespace(xsiPrefix, contract.SchemaInstanceNamespace)
}

// RootName returns the element name a value declared as c is written
// under.
func RootName(c *contract.DataContract, cfg *Config) contract.QName {
	if cfg != nil && !cfg.RootName.IsZero() {
		return cfg.RootName
	}
	return c.RootName()
}

// WriteRoot writes v as the content of the open document element.
func (c *WriteContext) WriteRoot(v any, declared *contract.DataContract) error {
	if declared == nil {
		declared = contract.AnyType()
	}
	return c.writeValue(v, declared, false)
}

// writeValue writes the markers and content of v on the open element.
func (c *WriteContext) writeValue(v any, declared *contract.DataContract, getOnly bool) error {
	if isNil(v) {
		return c.writeNil()
	}
	if p := c.cfg.Surrogate; p != nil {
		return c.writeWithSurrogate(p, v, declared, getOnly)
	}
	return c.writeResolved(v, declared, getOnly, false)
}

func (c *WriteContext) writeWithSurrogate(p SurrogateProvider, v any, declared *contract.DataContract, getOnly bool) error {
	if st := p.SurrogateType(declared.Type); st != declared.Type {
		var err error
		if declared, err = c.contractForType(st); err != nil {
			return err
		}
	}
	objType := reflect.TypeOf(v)
	st := p.SurrogateType(objType)
	if st == objType {
		return c.writeResolved(v, declared, getOnly, false)
	}
	// the id belongs to the original object
	if c.cfg.PreserveObjectReferences && !getOnly {
		if done, err := c.writeReference(v); err != nil || done {
			return err
		}
	}
	surrogate, err := p.ToSurrogate(v, st)
	if err != nil {
		return dcerrors.Wrap(dcerrors.ErrConversion, err, "surrogate conversion failed").WithType(objType.String())
	}
	if isNil(surrogate) {
		return c.writeNil()
	}
	oldKey, okOld := objectid.KeyOf(v)
	newKey, okNew := objectid.KeyOf(surrogate)
	moved := c.ids != nil && okOld && okNew && oldKey != newKey
	previous := 0
	if moved {
		previous = c.ids.Reassign(0, v, surrogate)
	}
	err = c.writeResolved(surrogate, declared, getOnly, c.cfg.PreserveObjectReferences)
	if moved {
		c.ids.Reassign(previous, surrogate, v)
	}
	return err
}

func (c *WriteContext) writeResolved(v any, declared *contract.DataContract, getOnly, referenced bool) error {
	actual, err := c.contractOf(v, declared)
	if err != nil {
		return err
	}
	if !referenced && !getOnly && c.preservesReferences(actual) {
		if done, err := c.writeReference(v); err != nil || done {
			return err
		}
	}
	tracked, err := c.enterCycleScope(v, actual)
	if err != nil {
		return err
	}
	if tracked {
		defer c.leaveCycleScope(v)
	}

	pop := c.pushKnown(declared, actual)
	defer pop()
	if !sameContract(actual, declared) {
		if err := c.verifyKnown(actual, declared); err != nil {
			return err
		}
		if err := c.writeTypeMarker(actual.Name); err != nil {
			return err
		}
	}
	return c.writeContent(valueOf(v, actual), actual)
}

func (c *WriteContext) preservesReferences(actual *contract.DataContract) bool {
	return c.cfg.PreserveObjectReferences || actual.IsReference
}

// writeReference writes z:Id for the first occurrence of an object with
// identity and z:Ref for repeats. It reports whether content must be
// skipped.
func (c *WriteContext) writeReference(v any) (bool, error) {
	if !objectid.HasIdentity(v) {
		return false, nil
	}
	if c.ids == nil {
		c.ids = objectid.New()
	}
	id, isNew := c.ids.GetID(v, true)
	if isNew {
		return false, c.w.WriteAttribute(serPrefix, idLocal, contract.SerializationNamespace, idText(id))
	}
	if err := c.w.WriteAttribute(serPrefix, refLocal, contract.SerializationNamespace, idText(id)); err != nil {
		return true, err
	}
	return true, c.writeNil()
}

// enterCycleScope tracks by-value objects once the writer is deep enough.
func (c *WriteContext) enterCycleScope(v any, actual *contract.DataContract) (bool, error) {
	if c.preservesReferences(actual) || c.w.Depth() < cycleCheckDepth {
		return false, nil
	}
	key, ok := objectid.KeyOf(v)
	if !ok {
		return false, nil
	}
	if c.inFlight == nil {
		c.inFlight = make(map[objectid.Key]struct{})
	}
	if _, seen := c.inFlight[key]; seen {
		return false, dcerrors.New(dcerrors.ErrCycle,
			"cannot serialize object with cycles without preserving object references").WithType(typeName(actual))
	}
	c.inFlight[key] = struct{}{}
	return true, nil
}

func (c *WriteContext) leaveCycleScope(v any) {
	if key, ok := objectid.KeyOf(v); ok {
		delete(c.inFlight, key)
	}
}

// verifyKnown checks that actual may stand in for declared.
func (c *WriteContext) verifyKnown(actual, declared *contract.DataContract) error {
	if known, ok := c.resolveKnown(actual.Name); ok && (known == actual || known.Type == actual.Type) {
		return nil
	}
	if actual.IsBuiltIn {
		return nil
	}
	return dcerrors.Newf(dcerrors.ErrUnknownTypeSerialize,
		"type %s is not expected in place of %s; add it to the known types", actual.Name, declared.Name).
		WithType(typeName(actual))
}

func (c *WriteContext) writeTypeMarker(name contract.QName) error {
	prefix, err := c.prefixFor(name.Space)
	if err != nil {
		return err
	}
	value := name.Local
	if prefix != "" {
		value = prefix + ":" + name.Local
	}
	return c.w.WriteAttribute(xsiPrefix, typeLocal, contract.SchemaInstanceNamespace, value)
}

// prefixFor returns the prefix that names ns on the open element, declaring
// a fresh one when none is in scope. The empty prefix means ns is the
// default namespace.
func (c *WriteContext) prefixFor(ns string) (string, error) {
	if def, _ := c.w.LookupNamespace(""); def == ns {
		return "", nil
	}
	if ns == "" {
		return "", dcerrors.New(dcerrors.ErrUnknownTypeSerialize,
			"a name in no namespace cannot be referenced under a default namespace")
	}
	if p, ok := c.w.LookupPrefix(ns); ok {
		return p, nil
	}
	return c.declarePrefix(ns)
}

func (c *WriteContext) declarePrefix(ns string) (string, error) {
	c.prefixes++
	prefix := "d" + strconv.Itoa(c.w.Depth()) + "p" + strconv.Itoa(c.prefixes)
	return prefix, c.w.WriteNamespace(prefix, ns)
}

func (c *WriteContext) writeNil() error {
	return c.w.WriteAttribute(xsiPrefix, nilLocal, contract.SchemaInstanceNamespace, "true")
}

// startElement opens local in ns, reusing the default namespace or a bound
// prefix when possible. Prefix numbering restarts on every element.
func (c *WriteContext) startElement(local, ns string) error {
	c.prefixes = 0
	if def, _ := c.w.LookupNamespace(""); def == ns {
		return c.w.WriteStartElement("", local, ns)
	}
	if p, ok := c.w.LookupPrefix(ns); ok {
		return c.w.WriteStartElement(p, local, ns)
	}
	return c.w.WriteStartElement("", local, ns)
}

func (c *WriteContext) writeContent(v any, actual *contract.DataContract) error {
	switch actual.Kind {
	case contract.KindPrimitive:
		return c.writePrimitive(v, actual)
	case contract.KindEnum:
		return c.writeEnum(v, actual)
	case contract.KindClass:
		return c.writeClass(v, actual)
	case contract.KindCollection:
		return c.writeCollection(v, actual)
	case contract.KindXML:
		return c.writeXML(v, actual)
	default:
		return dcerrors.Newf(dcerrors.ErrInvalidContract, "contract kind %s cannot be written", actual.Kind).
			WithType(typeName(actual))
	}
}

func conversionFailure(c *contract.DataContract, err error) error {
	return dcerrors.Wrap(dcerrors.ErrConversion, err, fmt.Sprintf("cannot convert value of %s", c.Name)).
		WithType(typeName(c))
}
