package serialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
)

func TestExtensionDataRoundTrip(t *testing.T) {
	f := newFixture(t, false)
	doc := personOpen +
		`<Name>Ann</Name><Nickname>Annie</Nickname><Age>30</Age><Friend i:nil="true"/><Pet i:nil="true"/>` +
		`<Address><Street>Main</Street><Number i:nil="true"/></Address>` +
		`<Note lang="en">hi <b>there</b></Note>` +
		`</Person>`
	v, err := readDoc(f.reg, doc, f.person, nil)
	require.NoError(t, err)
	p := v.(*person)
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, int32(30), p.Age)

	ext := p.ExtensionData()
	require.Equal(t, 3, ext.Len())

	nick := ext.Members[0]
	assert.Equal(t, "Nickname", nick.Name)
	assert.Equal(t, peopleNS, nick.Namespace)
	assert.Equal(t, 1, nick.MemberIndex)
	assert.Equal(t, &contract.PrimitiveDataNode{Value: "Annie"}, nick.Value)

	addr := ext.Members[1]
	assert.Equal(t, 4, addr.MemberIndex)
	class, ok := addr.Value.(*contract.ClassDataNode)
	require.True(t, ok)
	require.Len(t, class.Members, 2)
	assert.Equal(t, "Street", class.Members[0].Name)
	assert.Nil(t, class.Members[1].Value)

	_, ok = ext.Members[2].Value.(*contract.XMLDataNode)
	assert.True(t, ok)

	out, err := writeDoc(f.reg, p, f.person, nil)
	require.NoError(t, err)
	assert.Equal(t, doc, out)

	out, err = writeDoc(f.reg, p, f.person, defaultConfig(func(c *Config) { c.IgnoreExtensionData = true }))
	require.NoError(t, err)
	assert.NotContains(t, out, "Nickname")
}

func TestExtensionDataReferencesAndCollections(t *testing.T) {
	f := newFixture(t, false)
	doc := `<Person xmlns="urn:people" ` + xsiDecl + ` ` + serDecl + `>` +
		`<Name>Ann</Name><Age>1</Age><Friend i:nil="true"/><Pet i:nil="true"/>` +
		`<Again z:Ref="i1" i:nil="true"/>` +
		`<Extra z:Id="i1"><Street>Main</Street></Extra>` +
		`<Items z:Size="2"><Item>1</Item><Item>2</Item></Items>` +
		`<Typed xmlns:t="urn:things" i:type="t:Thing"><V>1</V></Typed>` +
		`</Person>`
	v, err := readDoc(f.reg, doc, f.person, nil)
	require.NoError(t, err)
	ext := v.(*person).ExtensionData()
	require.Equal(t, 4, ext.Len())

	extra, ok := ext.Members[1].Value.(*contract.ClassDataNode)
	require.True(t, ok)
	assert.Equal(t, "i1", extra.ID)
	assert.Same(t, extra, ext.Members[0].Value)

	items, ok := ext.Members[2].Value.(*contract.CollectionDataNode)
	require.True(t, ok)
	assert.Equal(t, 2, items.Size)
	assert.Equal(t, "Item", items.ItemName)
	assert.Equal(t, peopleNS, items.ItemNamespace)
	require.Len(t, items.Items, 2)
	assert.Equal(t, "2", items.Items[1].(*contract.PrimitiveDataNode).Value)

	typed := ext.Members[3].Value.Info()
	assert.Equal(t, contract.NewQName("urn:things", "Thing"), typed.DataType)

	out, err := writeDoc(f.reg, v, f.person, nil)
	require.NoError(t, err)
	z := `xmlns:z="http://schemas.microsoft.com/2003/10/Serialization/"`
	assert.Contains(t, out, `<Again `+z+` z:Id="i1"><Street>Main</Street></Again>`)
	assert.Contains(t, out, `<Extra `+z+` z:Ref="i1" i:nil="true"/>`)
	assert.Contains(t, out, `<Items `+z+` z:Size="2"><Item>1</Item><Item>2</Item></Items>`)
	assert.Contains(t, out, `<Typed xmlns:d2p1="urn:things" i:type="d2p1:Thing"><V>1</V></Typed>`)
}

func TestExtensionDataQuota(t *testing.T) {
	f := newFixture(t, false)
	doc := personOpen + `<Name>Ann</Name><Extra><A>1</A><B>2</B></Extra></Person>`

	// four members, the unknown member and its two children
	_, err := readDoc(f.reg, doc, f.person, defaultConfig(func(c *Config) { c.MaxItems = 7 }))
	require.NoError(t, err)

	_, err = readDoc(f.reg, doc, f.person, defaultConfig(func(c *Config) { c.MaxItems = 6 }))
	requireCode(t, err, dcerrors.ErrQuotaExceeded)
}

func TestExtensionDataReferenceToKnownObject(t *testing.T) {
	f := newFixture(t, false)
	doc := `<Person xmlns="urn:people" ` + xsiDecl + ` ` + serDecl + ` z:Id="i1">` +
		`<Name>Ann</Name><Self z:Ref="i1" i:nil="true"/></Person>`
	_, err := readDoc(f.reg, doc, f.person, nil)
	requireCode(t, err, dcerrors.ErrUnresolvedReference)
}
