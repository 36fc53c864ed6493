package contract

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlvalue"
)

// EnumContract is the payload of an enum contract. Names and Values are
// parallel; values of unsigned 64-bit enums are stored as their bit pattern.
type EnumContract struct {
	ToInt64   func(v any) (int64, error)
	FromInt64 func(v int64) (any, error)
	Names     []string
	Values    []int64

	IsFlags      bool
	IsUnsigned64 bool
}

// ErrInvalidEnumValue is wrapped by Format and Parse failures.
var ErrInvalidEnumValue = errors.New("invalid enum value")

// Format returns the wire text of v.
func (e *EnumContract) Format(v int64) (string, error) {
	for i, value := range e.Values {
		if value == v {
			return e.Names[i], nil
		}
	}
	if !e.IsFlags {
		return "", fmt.Errorf("%w: %s", ErrInvalidEnumValue, e.valueString(v))
	}
	if v == 0 {
		// zero without a declared zero member
		return "", fmt.Errorf("%w: %s", ErrInvalidEnumValue, e.valueString(v))
	}
	var b strings.Builder
	rest := uint64(v)
	for i, value := range e.Values {
		bits := uint64(value)
		if bits == 0 || bits&rest != bits {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(e.Names[i])
		rest &^= bits
		if rest == 0 {
			break
		}
	}
	if rest != 0 {
		return "", fmt.Errorf("%w: %s", ErrInvalidEnumValue, e.valueString(v))
	}
	return b.String(), nil
}

// Parse returns the value of wire text. Flags enums accept a whitespace
// separated list of names; an empty list is zero.
func (e *EnumContract) Parse(text string) (int64, error) {
	if !e.IsFlags {
		name := xmlvalue.TrimXMLWhitespaceString(text)
		if i := e.index(name); i >= 0 {
			return e.Values[i], nil
		}
		return 0, fmt.Errorf("%w: %q", ErrInvalidEnumValue, text)
	}
	var v int64
	for token := range xmlvalue.FieldsXMLWhitespace(text) {
		i := e.index(token)
		if i < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidEnumValue, token)
		}
		v |= e.Values[i]
	}
	return v, nil
}

func (e *EnumContract) index(name string) int {
	for i, n := range e.Names {
		if len(n) == len(name) && n == name {
			return i
		}
	}
	return -1
}

func (e *EnumContract) valueString(v int64) string {
	if e.IsUnsigned64 {
		return xmlvalue.FormatUint(uint64(v))
	}
	return xmlvalue.FormatInt(v)
}

func (e *EnumContract) validate(owner *DataContract) error {
	if len(e.Names) != len(e.Values) {
		return fmt.Errorf("enum contract %s has %d names and %d values", owner.Name, len(e.Names), len(e.Values))
	}
	if e.ToInt64 == nil || e.FromInt64 == nil {
		return fmt.Errorf("enum contract %s lacks ToInt64 or FromInt64", owner.Name)
	}
	for i, n := range e.Names {
		if n == "" {
			return fmt.Errorf("enum contract %s member %d has no name", owner.Name, i)
		}
		if e.IsFlags && strings.ContainsAny(n, " \t\r\n") {
			return fmt.Errorf("flags enum contract %s member %q contains whitespace", owner.Name, n)
		}
	}
	return nil
}

// Integer is the set of underlying types an enum may have.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// EnumMember pairs a wire name with its value.
type EnumMember[E Integer] struct {
	Name  string
	Value E
}

// NewEnum builds an enum contract for E.
func NewEnum[E Integer](name QName, flags bool, members ...EnumMember[E]) *DataContract {
	t := reflect.TypeFor[E]()
	ec := &EnumContract{
		IsFlags:      flags,
		IsUnsigned64: t.Kind() == reflect.Uint64 || t.Kind() == reflect.Uint,
		Names:        make([]string, len(members)),
		Values:       make([]int64, len(members)),
		ToInt64: func(v any) (int64, error) {
			e, ok := v.(E)
			if !ok {
				return 0, fmt.Errorf("enum %s: expected %v, got %T", name, t, v)
			}
			return int64(e), nil
		},
		FromInt64: func(v int64) (any, error) {
			return E(v), nil
		},
	}
	for i, m := range members {
		ec.Names[i] = m.Name
		ec.Values[i] = int64(m.Value)
	}
	return &DataContract{
		Kind:        KindEnum,
		Type:        t,
		Name:        name,
		Enum:        ec,
		IsValueType: true,
	}
}
