package xmlio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
)

const sampleDoc = `<?xml version="1.0" encoding="utf-8"?>
<!-- leading comment -->
<p:Person xmlns:p="urn:a" xmlns="urn:d" xmlns:i="http://www.w3.org/2001/XMLSchema-instance" id="7">
  <Name> Ann </Name>
  <Empty/>
  <Missing i:nil="true"/>
  <Nested><Deep>x</Deep></Nested>
</p:Person>`

func TestReaderWalk(t *testing.T) {
	r := NewReader(strings.NewReader(sampleDoc))

	ok, err := r.IsStartElementNamed("Person", "urn:a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "p", r.Prefix())
	v, ok := r.Attr("id", "")
	require.True(t, ok)
	assert.Equal(t, "7", v)
	assert.Len(t, r.NamespaceDecls(), 3)
	require.NoError(t, r.ReadStartElement())
	assert.Equal(t, 1, r.Depth())

	ok, err = r.IsStartElementNamed("Name", "urn:d")
	require.NoError(t, err)
	require.True(t, ok)
	text, err := r.ReadElementContentString()
	require.NoError(t, err)
	assert.Equal(t, " Ann ", text)

	ok, err = r.IsStartElementNamed("Empty", "urn:d")
	require.NoError(t, err)
	require.True(t, ok)
	text, err = r.ReadElementContentString()
	require.NoError(t, err)
	assert.Equal(t, "", text)

	_, err = r.MoveToContent()
	require.NoError(t, err)
	nilValue, ok := r.Attr("nil", "http://www.w3.org/2001/XMLSchema-instance")
	require.True(t, ok)
	assert.Equal(t, "true", nilValue)
	require.NoError(t, r.Skip())

	_, err = r.MoveToContent()
	require.NoError(t, err)
	assert.Equal(t, "Nested", r.Name().Local)
	require.NoError(t, r.Skip())

	kind, err := r.MoveToContent()
	require.NoError(t, err)
	assert.Equal(t, NodeEndElement, kind)
	require.NoError(t, r.ReadEndElement())

	kind, err = r.MoveToContent()
	require.NoError(t, err)
	assert.Equal(t, NodeEOF, kind)
}

func TestReaderContentRejectsChildElement(t *testing.T) {
	r := NewReader(strings.NewReader(`<a>text<b/></a>`))
	_, err := r.ReadElementContentString()
	code, ok := dcerrors.CodeOf(err)
	require.True(t, ok)
	assert.Equal(t, dcerrors.ErrUnexpectedNode, code)
}

func TestReaderSyntaxErrors(t *testing.T) {
	tests := map[string]string{
		"mismatched":     `<a></b>`,
		"unbound prefix": `<x:a/>`,
		"truncated":      `<a><b>`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewReader(strings.NewReader(doc))
			var err error
			for err == nil {
				var kind NodeKind
				kind, err = r.MoveToContent()
				if err != nil || kind == NodeEOF {
					break
				}
				err = r.Skip()
			}
			require.Error(t, err)
			code, ok := dcerrors.CodeOf(err)
			require.True(t, ok)
			assert.Equal(t, dcerrors.ErrXMLSyntax, code)
		})
	}
}

func TestElementRoundTrip(t *testing.T) {
	doc := `<e:Ext xmlns:e="urn:e" xmlns:q="urn:q" e:kind="q:Thing">a<e:child>b</e:child>c</e:Ext>`
	r := NewReader(strings.NewReader(doc))
	el, err := ReadElement(r)
	require.NoError(t, err)
	assert.Equal(t, Name{Space: "urn:e", Local: "Ext"}, el.Name)
	require.Len(t, el.Children, 3)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, el.WriteTo(w))
	require.NoError(t, w.Flush())
	assert.Equal(t, doc, buf.String())
}
