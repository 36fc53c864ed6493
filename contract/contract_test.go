package contract

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
	"github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlvalue"
)

type animal struct {
	Name string
}

type dog struct {
	animal
	Breed string
	Tags  []string
}

func animalContracts() (base, derived *DataContract) {
	base = NewClass[animal](NewQName("urn:zoo", "Animal"), nil,
		Field("Name", func(a *animal) string { return a.Name }, func(a *animal, v string) { a.Name = v }),
	)
	derived = NewClass[dog](NewQName("urn:zoo:dogs", "Dog"), base,
		Field("Breed", func(d *dog) string { return d.Breed }, func(d *dog, v string) { d.Breed = v }),
		GetOnlyCollection("Tags", func(d *dog) []string { return d.Tags }).InNamespace("urn:tags"),
	)
	return base, derived
}

func TestFlattenedMembersBaseFirst(t *testing.T) {
	base, derived := animalContracts()
	members := derived.FlattenedMembers()
	require.Len(t, members, 3)

	assert.Equal(t, "Name", members[0].Name)
	assert.Equal(t, "urn:zoo", members[0].Namespace)
	assert.Same(t, base, members[0].Declaring)
	assert.Equal(t, "Breed", members[1].Name)
	assert.Equal(t, "urn:zoo:dogs", members[1].Namespace)
	assert.Equal(t, "urn:tags", members[2].Namespace)
	assert.True(t, members[2].IsGetOnlyCollection)

	// computed once
	assert.Same(t, members[0].DataMember, derived.FlattenedMembers()[0].DataMember)
	assert.True(t, derived.IsDerivedFrom(base))
	assert.False(t, base.IsDerivedFrom(derived))
}

func TestFieldAccessors(t *testing.T) {
	_, derived := animalContracts()
	d := &dog{}
	members := derived.FlattenedMembers()
	require.NoError(t, members[1].Set(d, "collie"))
	got, err := members[1].Get(d)
	require.NoError(t, err)
	assert.Equal(t, "collie", got)

	require.NoError(t, members[1].Set(d, nil))
	assert.Equal(t, "", d.Breed)
	require.Error(t, members[1].Set(d, 5))
	_, err = members[1].Get(animal{})
	require.Error(t, err)
}

func TestFlatMemberReceiver(t *testing.T) {
	_, derived := animalContracts()
	d := &dog{animal: animal{Name: "Rex"}}
	members := derived.FlattenedMembers()

	recv, err := members[0].Receiver(d, false)
	require.NoError(t, err)
	assert.Same(t, &d.animal, recv)
	name, err := members[0].Get(recv)
	require.NoError(t, err)
	assert.Equal(t, "Rex", name)
	require.NoError(t, members[0].Set(recv, "Max"))
	assert.Equal(t, "Max", d.Name)

	// own members take the object itself
	recv, err = members[1].Receiver(d, false)
	require.NoError(t, err)
	assert.Same(t, d, recv)
}

type puppy struct {
	*animal
	Age int32
}

func TestFlatMemberReceiverEmbeddedPointer(t *testing.T) {
	base, _ := animalContracts()
	derived := NewClass[puppy](NewQName("urn:zoo:dogs", "Puppy"), base,
		Field("Age", func(p *puppy) int32 { return p.Age }, func(p *puppy, v int32) { p.Age = v }),
	)
	member := derived.FlattenedMembers()[0]

	p := &puppy{}
	_, err := member.Receiver(p, false)
	require.Error(t, err)

	recv, err := member.Receiver(p, true)
	require.NoError(t, err)
	require.NotNil(t, p.animal)
	assert.Same(t, p.animal, recv)
}

func TestValidateRejectsBrokenContracts(t *testing.T) {
	missingName := NewClass[animal](QName{}, nil)
	require.Error(t, missingName.Validate())

	twoPayloads := NewClass[animal](NewQName("", "A"), nil)
	twoPayloads.Primitive = &PrimitiveContract{}
	require.Error(t, twoPayloads.Validate())

	noSetter := NewClass[animal](NewQName("", "A"), nil,
		Field[animal, string]("Name", func(a *animal) string { return a.Name }, nil))
	require.Error(t, noSetter.Validate())

	dup := NewClass[animal](NewQName("", "A"), nil,
		Field("Name", func(a *animal) string { return a.Name }, func(a *animal, v string) { a.Name = v }),
		Field("Name", func(a *animal) string { return a.Name }, func(a *animal, v string) { a.Name = v }),
	)
	require.Error(t, dup.Validate())
}

func TestRegistryResolution(t *testing.T) {
	base, derived := animalContracts()
	base.Known = NewKnownTypes(derived)
	reg := NewRegistry()
	require.NoError(t, reg.Register(base))
	assert.Equal(t, 2, reg.Len())
	assert.NotZero(t, derived.ID)
	assert.NotEqual(t, base.ID, derived.ID)

	got, err := reg.DataContract(reflect.TypeFor[*dog]())
	require.NoError(t, err)
	assert.Same(t, derived, got)

	byName, ok := reg.DataContractByName(NewQName("urn:zoo", "Animal"))
	require.True(t, ok)
	assert.Same(t, base, byName)

	anyC, err := reg.DataContract(reflect.TypeFor[interface{ Speak() }]())
	require.NoError(t, err)
	assert.True(t, anyC.IsAnyType())

	_, err = reg.DataContract(reflect.TypeFor[struct{ X int }]())
	code, ok := dcerrors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, dcerrors.ErrContractMissing, code)
}

func TestRegistryPointerFallback(t *testing.T) {
	point := NewValueClass[animal](NewQName("urn:zoo", "Point"))
	reg := NewRegistry().MustRegister(point)
	got, err := reg.DataContract(reflect.TypeFor[*animal]())
	require.NoError(t, err)
	assert.Same(t, point, got)

	prim, err := reg.DataContract(reflect.TypeFor[*int32]())
	require.NoError(t, err)
	assert.Equal(t, "int", prim.Name.Local)
}

func TestRegistryRejectsConflicts(t *testing.T) {
	reg := NewRegistry()
	first := NewClass[animal](NewQName("urn:zoo", "Animal"), nil)
	second := NewClass[dog](NewQName("urn:zoo", "Animal"), nil)
	require.NoError(t, reg.Register(first))
	require.NoError(t, reg.Register(first))
	err := reg.Register(second)
	code, ok := dcerrors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, dcerrors.ErrInvalidContract, code)
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		value any
		name  string
		text  string
	}{
		{value: true, name: "boolean", text: "true"},
		{value: int8(-5), name: "byte", text: "-5"},
		{value: uint16(65535), name: "unsignedShort", text: "65535"},
		{value: int64(-9), name: "long", text: "-9"},
		{value: 42, name: "long", text: "42"},
		{value: float32(1.5), name: "float", text: "1.5"},
		{value: xmlvalue.MustParseDecimal("-1.50"), name: "decimal", text: "-1.50"},
		{value: "hi", name: "string", text: "hi"},
		{value: []byte("hi"), name: "base64Binary", text: "aGk="},
		{value: uuid.MustParse("00000000-0000-0000-0000-000000000001"), name: "guid", text: "00000000-0000-0000-0000-000000000001"},
		{value: 90 * time.Second, name: "duration", text: "PT1M30S"},
		{value: xmlvalue.Char('x'), name: "char", text: "120"},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.text, func(t *testing.T) {
			c, ok := BuiltinForType(reflect.TypeOf(tt.value))
			require.True(t, ok)
			assert.Equal(t, tt.name, c.Name.Local)
			assert.True(t, c.IsBuiltIn)
			text, err := c.Primitive.Encode(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.text, text)
			back, err := c.Primitive.Decode([]byte(text))
			require.NoError(t, err)
			assert.Equal(t, tt.value, back)
		})
	}

	long, ok := Builtin(NewQName(SchemaNamespace, "long"))
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[int64](), long.Type)
	assert.Len(t, Builtins(), 23)
}

func TestKnownTypes(t *testing.T) {
	base, derived := animalContracts()
	k := NewKnownTypes(base, derived, base)
	assert.Equal(t, 2, k.Len())
	got, ok := k.Lookup(NewQName("urn:zoo:dogs", "Dog"))
	require.True(t, ok)
	assert.Same(t, derived, got)

	var empty KnownTypes
	_, ok = empty.Lookup(base.Name)
	assert.False(t, ok)
	assert.Equal(t, 1, empty.With(base).Len())

	var names []string
	for name := range k.All() {
		names = append(names, name.Local)
	}
	assert.Equal(t, []string{"Animal", "Dog"}, names)
}

func TestParseQName(t *testing.T) {
	q, err := ParseQName("{urn:a}Thing")
	require.NoError(t, err)
	assert.Equal(t, NewQName("urn:a", "Thing"), q)
	assert.Equal(t, "{urn:a}Thing", q.String())
	_, err = ParseQName("{urn:a}")
	require.Error(t, err)
}
