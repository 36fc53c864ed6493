package serialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
)

const (
	personOpen = `<Person xmlns="urn:people" ` + xsiDecl + `>`
	pairOpen   = `<Pair xmlns="urn:people" ` + xsiDecl + ` ` + serDecl + `>`
)

func TestRoundTripClass(t *testing.T) {
	f := newFixture(t, true)
	p := &person{Name: "Ann", Age: 30, Pet: &dog{Breed: "collie"}, Friend: &person{Name: "Bob", Pet: "cat"}}
	got := roundTrip(t, f.reg, p, f.person, nil)
	assert.Equal(t, p, got)
}

func TestRoundTripPrimitiveInAnyType(t *testing.T) {
	f := newFixture(t, false)
	got := roundTrip(t, f.reg, &person{Pet: int32(7)}, f.person, nil).(*person)
	assert.Equal(t, int32(7), got.Pet)
}

func TestReadSharedIdentity(t *testing.T) {
	f := newFixture(t, false)
	cfg := defaultConfig(func(c *Config) { c.PreserveObjectReferences = true })
	shared := &person{Name: "c"}
	got := roundTrip(t, f.reg, &pair{Left: shared, Right: shared}, f.pair, cfg).(*pair)
	require.NotNil(t, got.Left)
	assert.Same(t, got.Left, got.Right)
	assert.Equal(t, "c", got.Left.Name)

	// without preservation each occurrence is a copy
	got = roundTrip(t, f.reg, &pair{Left: shared, Right: shared}, f.pair, nil).(*pair)
	assert.NotSame(t, got.Left, got.Right)
	assert.Equal(t, got.Left, got.Right)
}

func TestReadCycle(t *testing.T) {
	f := newFixture(t, false)
	cfg := defaultConfig(func(c *Config) { c.PreserveObjectReferences = true })
	p := &person{Name: "loop"}
	p.Friend = p
	got := roundTrip(t, f.reg, p, f.person, cfg).(*person)
	assert.Same(t, got, got.Friend)
}

func TestReadForwardReference(t *testing.T) {
	f := newFixture(t, false)
	doc := pairOpen +
		`<Left z:Ref="i1" i:nil="true"/>` +
		`<Right z:Id="i1"><Name>c</Name><Age>1</Age><Friend i:nil="true"/><Pet i:nil="true"/></Right>` +
		`</Pair>`
	v, err := readDoc(f.reg, doc, f.pair, nil)
	require.NoError(t, err)
	got := v.(*pair)
	require.NotNil(t, got.Left)
	assert.Same(t, got.Left, got.Right)
	assert.Equal(t, int32(1), got.Left.Age)
}

func TestReadReferenceErrors(t *testing.T) {
	f := newFixture(t, false)
	body := `<Name>c</Name><Age>1</Age><Friend i:nil="true"/><Pet i:nil="true"/>`

	_, err := readDoc(f.reg, pairOpen+`<Left z:Ref="i9" i:nil="true"/><Right i:nil="true"/></Pair>`, f.pair, nil)
	requireCode(t, err, dcerrors.ErrUnresolvedReference)

	_, err = readDoc(f.reg, pairOpen+`<Left z:Id="i1">`+body+`</Left><Right z:Id="i1">`+body+`</Right></Pair>`, f.pair, nil)
	requireCode(t, err, dcerrors.ErrDuplicateID)
}

func TestReadRequiredMemberMissing(t *testing.T) {
	type token struct{ Value string }
	c := contract.NewClass[token](contract.NewQName(peopleNS, "Token"), nil,
		contract.Field("Value", func(tk *token) string { return tk.Value }, func(tk *token, v string) { tk.Value = v }).Required(),
	)
	reg := contract.NewRegistry().MustRegister(c)

	_, err := readDoc(reg, `<Token xmlns="urn:people"/>`, c, nil)
	requireCode(t, err, dcerrors.ErrRequiredMemberMissing)

	v, err := readDoc(reg, `<Token xmlns="urn:people"><Value>x</Value></Token>`, c, nil)
	require.NoError(t, err)
	assert.Equal(t, &token{Value: "x"}, v)
}

func TestReadUnknownType(t *testing.T) {
	doc := personOpen + `<Name>Ann</Name><Age>1</Age><Friend i:nil="true"/>` +
		`<Pet xmlns:d2p1="urn:pets" i:type="d2p1:Dog"><d2p1:Breed>collie</d2p1:Breed></Pet></Person>`

	f := newFixture(t, false)
	_, err := readDoc(f.reg, doc, f.person, nil)
	requireCode(t, err, dcerrors.ErrUnknownTypeDeserialize)
	s, ok := dcerrors.As(err)
	require.True(t, ok)
	assert.Positive(t, s.Line)

	f = newFixture(t, true)
	v, err := readDoc(f.reg, doc, f.person, nil)
	require.NoError(t, err)
	assert.Equal(t, &dog{Breed: "collie"}, v.(*person).Pet)
}

func TestReadQuota(t *testing.T) {
	f := newFixture(t, false)
	doc := personOpen + `<Name>Ann</Name><Age>1</Age><Friend i:nil="true"/><Pet i:nil="true"/></Person>`

	_, err := readDoc(f.reg, doc, f.person, defaultConfig(func(c *Config) { c.MaxItems = 4 }))
	require.NoError(t, err)

	_, err = readDoc(f.reg, doc, f.person, defaultConfig(func(c *Config) { c.MaxItems = 3 }))
	requireCode(t, err, dcerrors.ErrQuotaExceeded)
}

func TestReadArraySize(t *testing.T) {
	f := newFixture(t, false)
	open := `<ArrayOfint xmlns="http://schemas.microsoft.com/2003/10/Serialization/Arrays" ` + serDecl

	v, err := readDoc(f.reg, open+` z:Size="2"><int>1</int><int>2</int></ArrayOfint>`, f.ints, nil)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2}, v)

	_, err = readDoc(f.reg, open+` z:Size="3"><int>1</int><int>2</int></ArrayOfint>`, f.ints, nil)
	requireCode(t, err, dcerrors.ErrArraySizeMismatch)

	_, err = readDoc(f.reg, open+` z:Size="3"><int>1</int></ArrayOfint>`, f.ints,
		defaultConfig(func(c *Config) { c.MaxItems = 2 }))
	requireCode(t, err, dcerrors.ErrQuotaExceeded)

	_, err = readDoc(f.reg, open+`><int>x</int></ArrayOfint>`, f.ints, nil)
	requireCode(t, err, dcerrors.ErrConversion)
}

func TestReadRootName(t *testing.T) {
	f := newFixture(t, false)
	_, err := readDoc(f.reg, `<Other xmlns="urn:people"/>`, f.person, nil)
	requireCode(t, err, dcerrors.ErrRootName)

	_, err = readDoc(f.reg, `<Person xmlns="urn:elsewhere"/>`, f.person, nil)
	requireCode(t, err, dcerrors.ErrRootName)
}

func TestReadGetOnlyDictionary(t *testing.T) {
	f := newFixture(t, false)
	cfg := defaultConfig(func(c *Config) { c.SerializeReadOnlyTypes = true })
	a := &account{Owner: "ann", Perm: permRead | permWrite, Labels: map[string]int32{"a": 1, "b": 2}}
	got := roundTrip(t, f.reg, a, f.account, cfg)
	assert.Equal(t, a, got)
}

func TestReadSkipsUnknownMembers(t *testing.T) {
	f := newFixture(t, false)
	doc := personOpen + `<Name>Ann</Name><Nickname><Deep>x</Deep></Nickname><Age>4</Age></Person>`
	v, err := readDoc(f.reg, doc, f.person, defaultConfig(func(c *Config) { c.IgnoreExtensionData = true }))
	require.NoError(t, err)
	got := v.(*person)
	assert.Equal(t, "Ann", got.Name)
	assert.Equal(t, int32(4), got.Age)
	assert.Nil(t, got.ExtensionData())
}

func TestReadMembersOutOfOrderAreUnknown(t *testing.T) {
	f := newFixture(t, false)
	doc := personOpen + `<Age>4</Age><Name>Ann</Name></Person>`
	v, err := readDoc(f.reg, doc, f.person, nil)
	require.NoError(t, err)
	got := v.(*person)
	assert.Equal(t, int32(4), got.Age)
	assert.Empty(t, got.Name)
	require.Equal(t, 1, got.ExtensionData().Len())
	assert.Equal(t, "Name", got.ExtensionData().Members[0].Name)
}

func TestRoundTripSurrogate(t *testing.T) {
	tempC := contract.NewValueClass[temperature](contract.NewQName(peopleNS, "Temperature"),
		contract.Field("Degrees", func(tv *temperature) float64 { return tv.Degrees },
			func(tv *temperature, v float64) { tv.Degrees = v }),
	)
	dtoC := contract.NewClass[temperatureDTO](contract.NewQName(peopleNS, "TemperatureDTO"), nil,
		contract.Field("Text", func(d *temperatureDTO) string { return d.Text }, func(d *temperatureDTO, v string) { d.Text = v }),
	)
	reg := contract.NewRegistry().MustRegister(tempC, dtoC)
	cfg := defaultConfig(func(c *Config) { c.Surrogate = temperatureSurrogates{} })

	doc, err := writeDoc(reg, temperature{Degrees: 21.5}, tempC, cfg)
	require.NoError(t, err)
	assert.Equal(t, `<Temperature xmlns="urn:people" `+xsiDecl+`><Text>21.5C</Text></Temperature>`, doc)

	v, err := readDoc(reg, doc, tempC, cfg)
	require.NoError(t, err)
	assert.Equal(t, temperature{Degrees: 21.5}, v)
}

func TestRoundTripObjectData(t *testing.T) {
	type bag struct {
		Label string
		Count int32
	}
	c := contract.NewClass[bag](contract.NewQName(peopleNS, "Bag"), nil)
	c.Class.IsISerializable = true
	c.Class.GetObjectData = func(obj any) ([]contract.SerializationEntry, error) {
		b := obj.(*bag)
		return []contract.SerializationEntry{{Name: "Count", Value: b.Count}, {Name: "Label", Value: b.Label}}, nil
	}
	c.Class.FromEntries = func(entries []contract.SerializationEntry) (any, error) {
		b := &bag{}
		for _, e := range entries {
			switch e.Name {
			case "Count":
				b.Count = e.Value.(int32)
			case "Label":
				b.Label = e.Value.(string)
			}
		}
		return b, nil
	}
	reg := contract.NewRegistry().MustRegister(c)

	doc, err := writeDoc(reg, &bag{Label: "x", Count: 2}, c, nil)
	require.NoError(t, err)
	assert.Contains(t, doc, `<Count xmlns="" xmlns:d2p1="http://www.w3.org/2001/XMLSchema" i:type="d2p1:int">2</Count>`)

	v, err := readDoc(reg, doc, c, nil)
	require.NoError(t, err)
	assert.Equal(t, &bag{Label: "x", Count: 2}, v)
}

func TestReadAnyTypeWithoutMarkerIsText(t *testing.T) {
	f := newFixture(t, false)
	doc := personOpen + `<Name>Ann</Name><Age>1</Age><Friend i:nil="true"/><Pet>plain</Pet></Person>`
	v, err := readDoc(f.reg, doc, f.person, nil)
	require.NoError(t, err)
	assert.Equal(t, "plain", v.(*person).Pet)
}
