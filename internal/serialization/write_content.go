package serialization

import (
	"strconv"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
)

func (c *WriteContext) writePrimitive(v any, actual *contract.DataContract) error {
	text, err := actual.Primitive.Encode(v)
	if err != nil {
		return conversionFailure(actual, err)
	}
	return c.w.WriteString(text)
}

func (c *WriteContext) writeEnum(v any, actual *contract.DataContract) error {
	n, err := actual.Enum.ToInt64(v)
	if err != nil {
		return dcerrors.Wrap(dcerrors.ErrInvalidEnumValue, err, "invalid enum value").WithType(typeName(actual))
	}
	text, err := actual.Enum.Format(n)
	if err != nil {
		return dcerrors.Wrap(dcerrors.ErrInvalidEnumValue, err, "invalid enum value").WithType(typeName(actual))
	}
	return c.w.WriteString(text)
}

func (c *WriteContext) writeXML(v any, actual *contract.DataContract) error {
	xs, ok := v.(contract.XMLSerializable)
	if !ok {
		xs, ok = pointerTo(v).(contract.XMLSerializable)
	}
	if !ok {
		return dcerrors.Newf(dcerrors.ErrInvalidContract, "%T does not implement XMLSerializable", v).
			WithType(typeName(actual))
	}
	if err := xs.WriteXML(c.w); err != nil {
		return dcerrors.Wrap(dcerrors.ErrMemberAccess, err, "WriteXML failed").WithType(typeName(actual))
	}
	return nil
}

func (c *WriteContext) writeClass(v any, actual *contract.DataContract) error {
	obj := pointerTo(v)
	if actual.Class.IsISerializable {
		return c.writeSerializable(obj, actual)
	}
	members := actual.FlattenedMembers()
	if err := c.incrementItems(len(members)); err != nil {
		return err
	}
	var ext *contract.ExtensionDataObject
	if actual.Class.HasExtensionData {
		if holder, ok := obj.(contract.ExtensibleDataObject); ok {
			ext = holder.ExtensionData()
		}
	}
	for i := range members {
		if err := c.writeExtensionData(ext, i, false); err != nil {
			return err
		}
		if err := c.writeMember(obj, actual, &members[i]); err != nil {
			return err
		}
	}
	return c.writeExtensionData(ext, len(members), true)
}

func (c *WriteContext) writeMember(obj any, owner *contract.DataContract, m *contract.FlatMember) error {
	recv, err := m.Receiver(obj, false)
	if err != nil {
		return memberError(owner, m.Name, err)
	}
	value, err := m.Get(recv)
	if err != nil {
		return memberError(owner, m.Name, err)
	}
	if !m.EmitDefaultValue && contract.IsDefault(value) {
		if m.IsRequired {
			return dcerrors.Newf(dcerrors.ErrRequiredMemberEmit,
				"required member %s must be emitted but holds its default value", m.Name).WithType(typeName(owner))
		}
		return nil
	}
	if m.IsGetOnlyCollection && !c.cfg.SerializeReadOnlyTypes {
		return dcerrors.Newf(dcerrors.ErrGetOnlyCollection,
			"get-only collection member %s requires serializing read-only types", m.Name).WithType(typeName(owner))
	}
	declared, err := c.memberContract(m)
	if err != nil {
		return err
	}
	if err := c.startElement(m.Name, m.Namespace); err != nil {
		return err
	}
	if err := c.writeValue(value, declared, m.IsGetOnlyCollection); err != nil {
		return err
	}
	return c.w.WriteEndElement()
}

func (c *WriteContext) writeSerializable(obj any, actual *contract.DataContract) error {
	entries, err := actual.Class.GetObjectData(obj)
	if err != nil {
		return memberError(actual, "GetObjectData", err)
	}
	if err := c.incrementItems(len(entries)); err != nil {
		return err
	}
	anyType := contract.AnyType()
	for _, e := range entries {
		if err := c.startElement(e.Name, ""); err != nil {
			return err
		}
		if err := c.writeValue(e.Value, anyType, false); err != nil {
			return err
		}
		if err := c.w.WriteEndElement(); err != nil {
			return err
		}
	}
	return nil
}

func (c *WriteContext) writeCollection(v any, actual *contract.DataContract) error {
	coll := actual.Collection
	if coll.Kind == contract.CollectionArray && c.cfg.PreserveObjectReferences {
		size := strconv.Itoa(coll.Len(v))
		if err := c.w.WriteAttribute(serPrefix, sizeLocal, contract.SerializationNamespace, size); err != nil {
			return err
		}
	}
	ns := actual.Name.Space
	if def, _ := c.w.LookupNamespace(""); def != ns {
		if _, ok := c.w.LookupPrefix(ns); !ok && ns != "" {
			if _, err := c.declarePrefix(ns); err != nil {
				return err
			}
		}
	}
	if coll.Kind.IsDictionary() {
		return c.writeDictionary(v, actual)
	}
	item, err := c.itemContract(coll)
	if err != nil {
		return err
	}
	if done, err := c.writeFastSlice(v, item, coll.ItemName, ns); done || err != nil {
		return err
	}
	err = coll.Range(v, func(value any) error {
		if err := c.incrementItems(1); err != nil {
			return err
		}
		if err := c.startElement(coll.ItemName, ns); err != nil {
			return err
		}
		if err := c.writeValue(value, item, false); err != nil {
			return err
		}
		return c.w.WriteEndElement()
	})
	return c.collectionError(actual, err)
}

func (c *WriteContext) writeDictionary(v any, actual *contract.DataContract) error {
	coll := actual.Collection
	ns := actual.Name.Space
	key, value, err := c.keyValueContracts(coll)
	if err != nil {
		return err
	}
	err = coll.Range(v, func(item any) error {
		kv, ok := item.(contract.KeyValue)
		if !ok {
			return dcerrors.Newf(dcerrors.ErrMemberAccess, "dictionary item %T is not a key/value pair", item).
				WithType(typeName(actual))
		}
		if err := c.incrementItems(1); err != nil {
			return err
		}
		if err := c.startElement(coll.ItemName, ns); err != nil {
			return err
		}
		if err := c.writeElement(coll.KeyName, ns, kv.Key, key); err != nil {
			return err
		}
		if err := c.writeElement(coll.ValueName, ns, kv.Value, value); err != nil {
			return err
		}
		return c.w.WriteEndElement()
	})
	return c.collectionError(actual, err)
}

func (c *WriteContext) writeElement(local, ns string, v any, declared *contract.DataContract) error {
	if err := c.startElement(local, ns); err != nil {
		return err
	}
	if err := c.writeValue(v, declared, false); err != nil {
		return err
	}
	return c.w.WriteEndElement()
}

// collectionError passes serialization failures through and wraps errors
// raised by the collection's own functions.
func (c *WriteContext) collectionError(actual *contract.DataContract, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := dcerrors.As(err); ok {
		return err
	}
	return memberError(actual, "items", err)
}
