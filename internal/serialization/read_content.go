package serialization

import (
	"reflect"
	"strconv"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
	"github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlio"
	"github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlvalue"
)

// maxPreallocItems caps capacity taken from z:Size hints.
const maxPreallocItems = 1 << 12

func initialCapacity(size int) int {
	return min(max(size, 0), maxPreallocItems)
}

func (c *ReadContext) readClass(actual *contract.DataContract, id string) (any, error) {
	if actual.Class.IsISerializable {
		return c.readSerializable(actual, id)
	}
	obj := actual.Class.New()
	byRef := actual.Type.Kind() == reflect.Pointer
	if byRef {
		// registered before its members so that cycles resolve
		if err := c.register(id, obj); err != nil {
			return nil, err
		}
	}
	members := actual.FlattenedMembers()
	if err := c.incrementItems(len(members)); err != nil {
		return nil, c.at(err)
	}
	var holder contract.ExtensibleDataObject
	if actual.Class.HasExtensionData && !c.cfg.IgnoreExtensionData {
		holder, _ = obj.(contract.ExtensibleDataObject)
	}
	var ext *contract.ExtensionDataObject

	if err := c.r.ReadStartElement(); err != nil {
		return nil, err
	}
	found := make([]bool, len(members))
	next := 0
	for {
		kind, err := c.r.MoveToContent()
		if err != nil {
			return nil, err
		}
		if kind == xmlio.NodeEndElement {
			break
		}
		if kind != xmlio.NodeElement {
			return nil, c.at(unexpectedContent(kind, actual.Name.String()))
		}
		name := c.r.Name()
		j := -1
		for k := next; k < len(members); k++ {
			if members[k].Name == name.Local && members[k].Namespace == name.Space {
				j = k
				break
			}
		}
		if j < 0 {
			if holder == nil {
				c.cfg.Logger.Debug().
					Str("element", name.String()).
					Str("contract", actual.Name.String()).
					Msg("skipping unknown member")
				if err := c.r.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			m, err := c.readExtensionMember(next)
			if err != nil {
				return nil, err
			}
			if ext == nil {
				ext = &contract.ExtensionDataObject{}
			}
			ext.Members = append(ext.Members, m)
			continue
		}
		found[j] = true
		next = j + 1
		if err := c.readMember(obj, actual, &members[j]); err != nil {
			return nil, err
		}
	}
	for j := range members {
		if members[j].IsRequired && !found[j] {
			return nil, c.at(dcerrors.Newf(dcerrors.ErrRequiredMemberMissing, "required member %s not found",
				xmlio.Name{Space: members[j].Namespace, Local: members[j].Name}).WithType(typeName(actual)))
		}
	}
	if err := c.r.ReadEndElement(); err != nil {
		return nil, err
	}
	if holder != nil && ext != nil {
		holder.SetExtensionData(ext)
	}
	if byRef {
		return obj, nil
	}
	v := reflect.ValueOf(obj).Elem().Interface()
	return v, c.register(id, v)
}

func (c *ReadContext) readMember(obj any, owner *contract.DataContract, m *contract.FlatMember) error {
	declared, err := c.memberContract(m)
	if err != nil {
		return c.at(err)
	}
	recv, err := m.Receiver(obj, true)
	if err != nil {
		return c.at(memberError(owner, m.Name, err))
	}
	if m.IsGetOnlyCollection {
		existing, err := m.Get(recv)
		if err != nil {
			return c.at(memberError(owner, m.Name, err))
		}
		if isNil(existing) {
			return c.at(dcerrors.Newf(dcerrors.ErrGetOnlyCollection,
				"get-only collection member %s is nil and cannot be populated", m.Name).WithType(typeName(owner)))
		}
		_, err = c.readValue(declared, existing)
		return err
	}
	v, err := c.readValue(declared, nil)
	if err != nil {
		return err
	}
	set := func(v any) error {
		if err := m.Set(recv, adapt(v, m.Type)); err != nil {
			return memberError(owner, m.Name, err)
		}
		return nil
	}
	if ref, ok := v.(forwardRef); ok {
		c.whenResolved(ref.id, set)
		return nil
	}
	return c.at(set(v))
}

func (c *ReadContext) readSize() (int, error) {
	text, ok := c.r.Attr(sizeLocal, contract.SerializationNamespace)
	if !ok {
		return -1, nil
	}
	size, err := strconv.Atoi(xmlvalue.TrimXMLWhitespaceString(text))
	if err != nil || size < 0 {
		return 0, c.at(dcerrors.Wrap(dcerrors.ErrConversion, dcerrors.NewConversion(text, "int", err), "invalid array size"))
	}
	if size > c.remainingItems() {
		return 0, c.at(dcerrors.Newf(dcerrors.ErrQuotaExceeded,
			"exceeded maximum items in object graph (%d): array declares %d items", c.cfg.MaxItems, size))
	}
	return size, nil
}

type pendingItem struct {
	id    string
	index int
}

func (c *ReadContext) readCollection(actual *contract.DataContract, id string, into any) (any, error) {
	coll := actual.Collection
	size, err := c.readSize()
	if err != nil {
		return nil, err
	}
	if into != nil && actual.Type.Kind() == reflect.Slice {
		return nil, c.at(dcerrors.New(dcerrors.ErrGetOnlyCollection,
			"slices cannot be populated in place").WithType(typeName(actual)))
	}
	if err := c.r.ReadStartElement(); err != nil {
		return nil, err
	}

	var (
		result  any
		count   int
		waiting []pendingItem
	)
	if coll.Kind.IsDictionary() {
		result, count, err = c.readDictionaryItems(actual, into, size)
	} else {
		var item *contract.DataContract
		if item, err = c.itemContract(coll); err != nil {
			return nil, c.at(err)
		}
		fast := false
		if into == nil {
			result, fast, err = c.readFastSlice(actual, item, size)
			if fast && err == nil {
				count = coll.Len(result)
			}
		}
		if !fast && err == nil {
			result, count, waiting, err = c.readItems(actual, item, into, size)
		}
	}
	if err != nil {
		return nil, err
	}
	if size >= 0 && count != size {
		return nil, c.at(dcerrors.Newf(dcerrors.ErrArraySizeMismatch,
			"array declares %d items but contains %d", size, count).WithType(typeName(actual)))
	}
	if err := c.r.ReadEndElement(); err != nil {
		return nil, err
	}
	if len(waiting) > 0 {
		if coll.Replace == nil {
			return nil, c.at(dcerrors.Newf(dcerrors.ErrUnresolvedReference,
				"collection %s cannot hold a reference to an object read later", actual.Name).WithType(typeName(actual)))
		}
		final := result
		for _, w := range waiting {
			index := w.index
			c.whenResolved(w.id, func(v any) error {
				if err := coll.Replace(final, index, adapt(v, coll.ItemType)); err != nil {
					return memberError(actual, "items", err)
				}
				return nil
			})
		}
	}
	return result, c.register(id, result)
}

func (c *ReadContext) readItems(actual, item *contract.DataContract, into any, size int) (any, int, []pendingItem, error) {
	coll := actual.Collection
	result := into
	if result == nil {
		result = coll.New(initialCapacity(size))
	}
	var waiting []pendingItem
	count := 0
	for {
		ok, err := c.nextItem(coll.ItemName, actual.Name.Space)
		if err != nil {
			return nil, 0, nil, err
		}
		if !ok {
			return result, count, waiting, nil
		}
		if err := c.incrementItems(1); err != nil {
			return nil, 0, nil, c.at(err)
		}
		v, err := c.readValue(item, nil)
		if err != nil {
			return nil, 0, nil, err
		}
		if ref, ok := v.(forwardRef); ok {
			waiting = append(waiting, pendingItem{id: ref.id, index: count})
			v = nil
		}
		next, err := coll.Add(result, adapt(v, coll.ItemType))
		if err != nil {
			return nil, 0, nil, c.at(memberError(actual, "items", err))
		}
		if into == nil {
			result = next
		}
		count++
	}
}

func (c *ReadContext) readDictionaryItems(actual *contract.DataContract, into any, size int) (any, int, error) {
	coll := actual.Collection
	ns := actual.Name.Space
	key, value, err := c.keyValueContracts(coll)
	if err != nil {
		return nil, 0, c.at(err)
	}
	result := into
	if result == nil {
		result = coll.New(initialCapacity(size))
	}
	count := 0
	for {
		ok, err := c.nextItem(coll.ItemName, ns)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			return result, count, nil
		}
		if err := c.incrementItems(1); err != nil {
			return nil, 0, c.at(err)
		}
		if err := c.r.ReadStartElement(); err != nil {
			return nil, 0, err
		}
		k, err := c.readChild(coll.KeyName, ns, key)
		if err != nil {
			return nil, 0, err
		}
		v, err := c.readChild(coll.ValueName, ns, value)
		if err != nil {
			return nil, 0, err
		}
		if _, err := c.r.MoveToContent(); err != nil {
			return nil, 0, err
		}
		if err := c.r.ReadEndElement(); err != nil {
			return nil, 0, err
		}
		if result, err = c.addEntry(actual, result, into != nil, k, v); err != nil {
			return nil, 0, err
		}
		count++
	}
}

func (c *ReadContext) readChild(local, ns string, declared *contract.DataContract) (any, error) {
	ok, err := c.nextItem(local, ns)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, c.at(dcerrors.Newf(dcerrors.ErrUnexpectedNode, "expecting element %s, found end element",
			xmlio.Name{Space: ns, Local: local}))
	}
	return c.readValue(declared, nil)
}

// addEntry adds a dictionary entry, waiting for forward references in the
// key or value first.
func (c *ReadContext) addEntry(actual *contract.DataContract, result any, inPlace bool, k, v any) (any, error) {
	coll := actual.Collection
	add := func(target, k, v any) (any, error) {
		next, err := coll.Add(target, contract.KeyValue{Key: adapt(k, coll.KeyType), Value: adapt(v, coll.ValueType)})
		if err != nil {
			return nil, memberError(actual, "items", err)
		}
		return next, nil
	}
	kRef, kWaits := k.(forwardRef)
	vRef, vWaits := v.(forwardRef)
	if !kWaits && !vWaits {
		next, err := add(result, k, v)
		if err != nil {
			return nil, c.at(err)
		}
		if inPlace {
			return result, nil
		}
		return next, nil
	}
	// entries completed later are added to the collection value as read;
	// dictionaries must therefore add in place.
	target := result
	waits := 0
	if kWaits {
		waits++
	}
	if vWaits {
		waits++
	}
	resolve := func(assign func(any)) func(any) error {
		return func(obj any) error {
			assign(obj)
			waits--
			if waits > 0 {
				return nil
			}
			_, err := add(target, k, v)
			return err
		}
	}
	if kWaits {
		c.whenResolved(kRef.id, resolve(func(obj any) { k = obj }))
	}
	if vWaits {
		c.whenResolved(vRef.id, resolve(func(obj any) { v = obj }))
	}
	return result, nil
}

func (c *ReadContext) readSerializable(actual *contract.DataContract, id string) (any, error) {
	if err := c.r.ReadStartElement(); err != nil {
		return nil, err
	}
	anyType := contract.AnyType()
	var entries []contract.SerializationEntry
	for {
		kind, err := c.r.MoveToContent()
		if err != nil {
			return nil, err
		}
		if kind == xmlio.NodeEndElement {
			break
		}
		if kind != xmlio.NodeElement {
			return nil, c.at(unexpectedContent(kind, actual.Name.String()))
		}
		name := c.r.Name().Local
		if err := c.incrementItems(1); err != nil {
			return nil, c.at(err)
		}
		v, err := c.readValue(anyType, nil)
		if err != nil {
			return nil, err
		}
		if ref, ok := v.(forwardRef); ok {
			return nil, c.at(dcerrors.Newf(dcerrors.ErrUnresolvedReference,
				"object data entry %s refers to id %s which is defined later", name, ref.id).WithType(typeName(actual)))
		}
		entries = append(entries, contract.SerializationEntry{Name: name, Value: v})
	}
	if err := c.r.ReadEndElement(); err != nil {
		return nil, err
	}
	obj, err := actual.Class.FromEntries(entries)
	if err != nil {
		return nil, c.at(memberError(actual, "FromEntries", err))
	}
	return obj, c.register(id, obj)
}
