package serialization

import (
	"reflect"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
	"github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlvalue"
)

// writeFastSlice writes slices of a few primitive element types without
// per-item contract dispatch. It reports whether v was handled.
func (c *WriteContext) writeFastSlice(v any, item *contract.DataContract, local, ns string) (bool, error) {
	if t := reflect.TypeOf(v); !item.IsBuiltIn || t.Kind() != reflect.Slice || t.Elem() != item.Type {
		return false, nil
	}
	switch s := v.(type) {
	case []bool:
		return true, writeSlice(c, s, local, ns, xmlvalue.FormatBool)
	case []int32:
		return true, writeSlice(c, s, local, ns, func(n int32) string { return xmlvalue.FormatInt(int64(n)) })
	case []int64:
		return true, writeSlice(c, s, local, ns, xmlvalue.FormatInt)
	case []float32:
		return true, writeSlice(c, s, local, ns, xmlvalue.FormatFloat)
	case []float64:
		return true, writeSlice(c, s, local, ns, xmlvalue.FormatDouble)
	case []string:
		return true, writeSlice(c, s, local, ns, func(s string) string { return s })
	case []xmlvalue.Decimal:
		return true, writeSlice(c, s, local, ns, xmlvalue.FormatDecimal)
	default:
		return false, nil
	}
}

func writeSlice[E any](c *WriteContext, items []E, local, ns string, format func(E) string) error {
	if err := c.incrementItems(len(items)); err != nil {
		return err
	}
	for _, item := range items {
		if err := c.startElement(local, ns); err != nil {
			return err
		}
		if err := c.w.WriteString(format(item)); err != nil {
			return err
		}
		if err := c.w.WriteEndElement(); err != nil {
			return err
		}
	}
	return nil
}

func (c *ReadContext) readFastSlice(actual, item *contract.DataContract, size int) (any, bool, error) {
	if !item.IsBuiltIn || actual.Type.Kind() != reflect.Slice || actual.Type.Elem() != item.Type {
		return nil, false, nil
	}
	coll := actual.Collection
	ns := actual.Name.Space
	switch actual.Type {
	case reflect.TypeFor[[]bool]():
		s, err := readSlice(c, coll.ItemName, ns, size, item, xmlvalue.ParseBoolBytes)
		return s, true, err
	case reflect.TypeFor[[]int32]():
		s, err := readSlice(c, coll.ItemName, ns, size, item, func(b []byte) (int32, error) {
			n, err := xmlvalue.ParseIntBytes(b, 32)
			return int32(n), err
		})
		return s, true, err
	case reflect.TypeFor[[]int64]():
		s, err := readSlice(c, coll.ItemName, ns, size, item, func(b []byte) (int64, error) {
			return xmlvalue.ParseIntBytes(b, 64)
		})
		return s, true, err
	case reflect.TypeFor[[]float32]():
		s, err := readSlice(c, coll.ItemName, ns, size, item, xmlvalue.ParseFloatBytes)
		return s, true, err
	case reflect.TypeFor[[]float64]():
		s, err := readSlice(c, coll.ItemName, ns, size, item, xmlvalue.ParseDoubleBytes)
		return s, true, err
	case reflect.TypeFor[[]string]():
		s, err := readSlice(c, coll.ItemName, ns, size, item, func(b []byte) (string, error) {
			return string(b), nil
		})
		return s, true, err
	case reflect.TypeFor[[]xmlvalue.Decimal]():
		s, err := readSlice(c, coll.ItemName, ns, size, item, func(b []byte) (xmlvalue.Decimal, error) {
			return xmlvalue.ParseDecimal(string(b))
		})
		return s, true, err
	default:
		return nil, false, nil
	}
}

// readSlice reads items up to the end of the open collection element. Nil
// items decode to the zero value.
func readSlice[E any](c *ReadContext, local, ns string, size int, item *contract.DataContract, parse func([]byte) (E, error)) ([]E, error) {
	out := make([]E, 0, initialCapacity(size))
	for {
		ok, err := c.nextItem(local, ns)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		if err := c.incrementItems(1); err != nil {
			return nil, c.at(err)
		}
		if c.isNilElement() {
			if err := c.r.Skip(); err != nil {
				return nil, err
			}
			var zero E
			out = append(out, zero)
			continue
		}
		text, err := c.r.ReadElementContentBytes()
		if err != nil {
			return nil, err
		}
		v, err := parse(text)
		if err != nil {
			return nil, c.at(dcerrors.Wrap(dcerrors.ErrConversion, err, "cannot read collection item").WithType(typeName(item)))
		}
		out = append(out, v)
	}
}
