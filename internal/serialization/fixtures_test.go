package serialization

import (
	"bytes"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marius-klimantavicius/data-contracts-sub001/contract"
	"github.com/marius-klimantavicius/data-contracts-sub001/pkg/xmlio"
)

const (
	peopleNS = "urn:people"
	petsNS   = "urn:pets"
	xsiDecl  = `xmlns:i="http://www.w3.org/2001/XMLSchema-instance"`
	serDecl  = `xmlns:z="http://schemas.microsoft.com/2003/10/Serialization/"`
)

type person struct {
	Pet    any
	Friend *person
	ext    *contract.ExtensionDataObject
	Name   string
	Age    int32
}

func (p *person) ExtensionData() *contract.ExtensionDataObject     { return p.ext }
func (p *person) SetExtensionData(e *contract.ExtensionDataObject) { p.ext = e }

type dog struct {
	Breed string
}

type pair struct {
	Left, Right *person
}

type permission uint8

const (
	permRead permission = 1 << iota
	permWrite
)

type account struct {
	Labels map[string]int32
	Owner  string
	Perm   permission
}

type temperature struct {
	Degrees float64
}

type temperatureDTO struct {
	Text string
}

type fixture struct {
	reg     *contract.Registry
	person  *contract.DataContract
	dog     *contract.DataContract
	pair    *contract.DataContract
	account *contract.DataContract
	ints    *contract.DataContract
	objects *contract.DataContract
}

func newFixture(t *testing.T, knowsDog bool) *fixture {
	t.Helper()
	f := &fixture{}
	f.dog = contract.NewClass[dog](contract.NewQName(petsNS, "Dog"), nil,
		contract.Field("Breed", func(d *dog) string { return d.Breed }, func(d *dog, v string) { d.Breed = v }),
	)
	f.person = contract.NewClass[person](contract.NewQName(peopleNS, "Person"), nil,
		contract.Field("Name", func(p *person) string { return p.Name }, func(p *person, v string) { p.Name = v }),
		contract.Field("Age", func(p *person) int32 { return p.Age }, func(p *person, v int32) { p.Age = v }),
		contract.Field("Friend", func(p *person) *person { return p.Friend }, func(p *person, v *person) { p.Friend = v }),
		contract.Field("Pet", func(p *person) any { return p.Pet }, func(p *person, v any) { p.Pet = v }),
	)
	f.person.Class.HasExtensionData = true
	if knowsDog {
		f.person.Known = contract.NewKnownTypes(f.dog)
	}
	f.pair = contract.NewClass[pair](contract.NewQName(peopleNS, "Pair"), nil,
		contract.Field("Left", func(p *pair) *person { return p.Left }, func(p *pair, v *person) { p.Left = v }),
		contract.Field("Right", func(p *pair) *person { return p.Right }, func(p *pair, v *person) { p.Right = v }),
	)
	perm := contract.NewEnum(contract.NewQName(peopleNS, "Permission"), true,
		contract.EnumMember[permission]{Name: "Read", Value: permRead},
		contract.EnumMember[permission]{Name: "Write", Value: permWrite},
	)
	labels := contract.NewMap[string, int32](contract.NewQName(contract.ArraysNamespace, "ArrayOfKeyValueOfstringint"),
		"KeyValueOfstringint", nil, nil)
	f.account = contract.NewClass[account](contract.NewQName(peopleNS, "Account"), nil,
		contract.Field("Owner", func(a *account) string { return a.Owner }, func(a *account, v string) { a.Owner = v }),
		contract.Field("Perm", func(a *account) permission { return a.Perm }, func(a *account, v permission) { a.Perm = v }).
			WithContract(perm),
		contract.GetOnlyCollection("Labels", func(a *account) map[string]int32 { return a.Labels }).
			WithContract(labels),
	)
	f.account.Class.New = func() any { return &account{Labels: map[string]int32{}} }
	f.ints = contract.NewSlice[int32](contract.NewQName(contract.ArraysNamespace, "ArrayOfint"), "int", nil)
	f.objects = contract.NewSlice[any](contract.NewQName(contract.ArraysNamespace, "ArrayOfanyType"), "anyType", nil)

	f.reg = contract.NewRegistry()
	require.NoError(t, f.reg.Register(f.dog, f.person, f.pair, perm, labels, f.account, f.ints, f.objects))
	return f
}

func defaultConfig(edit func(*Config)) *Config {
	cfg := DefaultConfig()
	if edit != nil {
		edit(cfg)
	}
	return cfg
}

func writeDoc(reg contract.Resolver, v any, declared *contract.DataContract, cfg *Config) (string, error) {
	var buf bytes.Buffer
	w := xmlio.NewWriter(&buf)
	if err := WriteRootStart(w, RootName(declared, cfg)); err != nil {
		return "", err
	}
	if err := NewWriteContext(w, reg, cfg).WriteRoot(v, declared); err != nil {
		return "", err
	}
	if err := w.WriteEndElement(); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func readDoc(reg contract.Resolver, doc string, declared *contract.DataContract, cfg *Config) (any, error) {
	r := xmlio.NewReader(strings.NewReader(doc))
	return NewReadContext(r, reg, cfg).ReadRoot(declared, true)
}

func roundTrip(t *testing.T, reg contract.Resolver, v any, declared *contract.DataContract, cfg *Config) any {
	t.Helper()
	doc, err := writeDoc(reg, v, declared, cfg)
	require.NoError(t, err)
	got, err := readDoc(reg, doc, declared, cfg)
	require.NoError(t, err, doc)
	require.Equal(t, reflect.TypeOf(v), reflect.TypeOf(got))
	return got
}

// temperatureSurrogates writes temperatures as temperatureDTO values.
type temperatureSurrogates struct{}

func (temperatureSurrogates) SurrogateType(t reflect.Type) reflect.Type {
	if t == reflect.TypeFor[temperature]() {
		return reflect.TypeFor[*temperatureDTO]()
	}
	return t
}

func (temperatureSurrogates) ToSurrogate(obj any, _ reflect.Type) (any, error) {
	tv := obj.(temperature)
	return &temperatureDTO{Text: strconv.FormatFloat(tv.Degrees, 'g', -1, 64) + "C"}, nil
}

func (temperatureSurrogates) FromSurrogate(obj any, _ reflect.Type) (any, error) {
	dto := obj.(*temperatureDTO)
	f, err := strconv.ParseFloat(strings.TrimSuffix(dto.Text, "C"), 64)
	if err != nil {
		return nil, err
	}
	return temperature{Degrees: f}, nil
}
