package contract

import (
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/google/uuid"

	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
	"github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlvalue"
)

type builtinRegistry struct {
	byName  map[QName]*DataContract
	byType  map[reflect.Type]*DataContract
	ordered []*DataContract
}

// defaultBuiltins is built once and never modified afterwards.
var defaultBuiltins = newBuiltinRegistry(builtinContracts())

func newBuiltinRegistry(items []*DataContract) builtinRegistry {
	reg := builtinRegistry{
		byName: make(map[QName]*DataContract, len(items)),
		byType: make(map[reflect.Type]*DataContract, len(items)),
	}
	for _, item := range items {
		if _, exists := reg.byType[item.Type]; exists {
			continue
		}
		reg.byType[item.Type] = item
		// the first contract per name is canonical
		if _, exists := reg.byName[item.Name]; !exists {
			reg.byName[item.Name] = item
		}
		reg.ordered = append(reg.ordered, item)
		item.ID = len(reg.ordered)
	}
	return reg
}

// Builtin returns the canonical built-in contract for a wire name.
func Builtin(name QName) (*DataContract, bool) {
	c, ok := defaultBuiltins.byName[name]
	return c, ok
}

// BuiltinForType returns the built-in contract for a Go type.
func BuiltinForType(t reflect.Type) (*DataContract, bool) {
	c, ok := defaultBuiltins.byType[t]
	return c, ok
}

// MustBuiltin returns the built-in contract and panics when unknown.
func MustBuiltin(name QName) *DataContract {
	if c, ok := Builtin(name); ok {
		return c
	}
	panic("contract: unknown built-in " + name.String())
}

// Builtins returns the built-in contracts in deterministic order.
func Builtins() []*DataContract {
	items := make([]*DataContract, len(defaultBuiltins.ordered))
	copy(items, defaultBuiltins.ordered)
	return items
}

// AnyType returns the contract for untyped values.
func AnyType() *DataContract {
	return MustBuiltin(AnyTypeName)
}

func builtinContracts() []*DataContract {
	xsd := func(local string) QName { return QName{Local: local, Space: SchemaNamespace} }
	ser := func(local string) QName { return QName{Local: local, Space: SerializationNamespace} }
	return []*DataContract{
		primitive[bool](xsd("boolean"), xmlvalue.FormatBool, xmlvalue.ParseBoolBytes),
		primitive[int8](xsd("byte"), formatSigned[int8], parseSigned[int8](8)),
		primitive[uint8](xsd("unsignedByte"), formatUnsigned[uint8], parseUnsigned[uint8](8)),
		primitive[int16](xsd("short"), formatSigned[int16], parseSigned[int16](16)),
		primitive[uint16](xsd("unsignedShort"), formatUnsigned[uint16], parseUnsigned[uint16](16)),
		primitive[int32](xsd("int"), formatSigned[int32], parseSigned[int32](32)),
		primitive[uint32](xsd("unsignedInt"), formatUnsigned[uint32], parseUnsigned[uint32](32)),
		primitive[int64](xsd("long"), formatSigned[int64], parseSigned[int64](64)),
		primitive[int](xsd("long"), formatSigned[int], parseSigned[int](64)),
		primitive[uint64](xsd("unsignedLong"), formatUnsigned[uint64], parseUnsigned[uint64](64)),
		primitive[uint](xsd("unsignedLong"), formatUnsigned[uint], parseUnsigned[uint](64)),
		primitive[float32](xsd("float"), xmlvalue.FormatFloat, xmlvalue.ParseFloatBytes),
		primitive[float64](xsd("double"), xmlvalue.FormatDouble, xmlvalue.ParseDoubleBytes),
		primitive[xmlvalue.Decimal](xsd("decimal"), xmlvalue.FormatDecimal, fromString(xmlvalue.ParseDecimal)),
		primitive[xmlvalue.DateTime](xsd("dateTime"), xmlvalue.FormatDateTime, fromString(xmlvalue.ParseDateTime)),
		primitive[time.Time](xsd("dateTime"), formatTime, parseTime),
		stringContract(xsd("string")),
		primitive[[]byte](xsd("base64Binary"), xmlvalue.FormatBase64, xmlvalue.ParseBase64),
		primitive[*url.URL](xsd("anyURI"), xmlvalue.FormatURI, fromString(xmlvalue.ParseURI)),
		anyTypeContract(),
		primitive[uuid.UUID](ser("guid"), xmlvalue.FormatGUID, fromString(xmlvalue.ParseGUID)),
		primitive[time.Duration](ser("duration"), xmlvalue.FormatDuration, fromString(xmlvalue.ParseDuration)),
		primitive[xmlvalue.Char](ser("char"), xmlvalue.FormatChar, fromString(xmlvalue.ParseChar)),
	}
}

func primitive[T any](name QName, encode func(T) string, decode func([]byte) (T, error)) *DataContract {
	t := reflect.TypeFor[T]()
	k := t.Kind()
	return &DataContract{
		Kind:        KindPrimitive,
		Type:        t,
		Name:        name,
		IsPrimitive: true,
		IsBuiltIn:   true,
		IsValueType: k != reflect.Pointer && k != reflect.Slice,
		Primitive: &PrimitiveContract{
			Encode: func(v any) (string, error) {
				tv, ok := v.(T)
				if !ok {
					return "", dcerrors.NewConversion(fmt.Sprintf("%v", v), name.Local, fmt.Errorf("value of type %T", v))
				}
				return encode(tv), nil
			},
			Decode: func(text []byte) (any, error) {
				v, err := decode(text)
				if err != nil {
					return nil, err
				}
				return v, nil
			},
		},
	}
}

func stringContract(name QName) *DataContract {
	return primitive[string](name, func(v string) string { return v }, func(b []byte) (string, error) {
		return string(b), nil
	})
}

// anyTypeContract stands for untyped values. Its codec only handles text;
// typed values always carry a type marker.
func anyTypeContract() *DataContract {
	c := stringContract(AnyTypeName)
	c.Type = reflect.TypeFor[any]()
	c.IsValueType = false
	c.CanContainReferences = true
	c.Primitive.Encode = func(v any) (string, error) {
		if s, ok := v.(string); ok {
			return s, nil
		}
		return "", dcerrors.NewConversion(fmt.Sprintf("%v", v), "anyType", fmt.Errorf("value of type %T", v))
	}
	return c
}

func fromString[T any](parse func(string) (T, error)) func([]byte) (T, error) {
	return func(b []byte) (T, error) {
		return parse(string(b))
	}
}

type signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func formatSigned[T signed](v T) string {
	return xmlvalue.FormatInt(int64(v))
}

func formatUnsigned[T unsigned](v T) string {
	return xmlvalue.FormatUint(uint64(v))
}

func parseSigned[T signed](bits int) func([]byte) (T, error) {
	return func(b []byte) (T, error) {
		v, err := xmlvalue.ParseIntBytes(b, bits)
		return T(v), err
	}
}

func parseUnsigned[T unsigned](bits int) func([]byte) (T, error) {
	return func(b []byte) (T, error) {
		v, err := xmlvalue.ParseUintBytes(b, bits)
		return T(v), err
	}
}

func formatTime(t time.Time) string {
	return xmlvalue.FormatDateTime(xmlvalue.NewDateTime(t))
}

func parseTime(b []byte) (time.Time, error) {
	d, err := xmlvalue.ParseDateTime(string(b))
	if err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}
