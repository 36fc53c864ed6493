package xmlvalue

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dcerrors "github.com/marius-klimantavicius/data-contracts-sub001/errors"
)

func TestGUID(t *testing.T) {
	g := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	text := FormatGUID(g)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", text)
	got, err := ParseGUID(" " + text + " ")
	require.NoError(t, err)
	assert.Equal(t, g, got)

	_, err = ParseGUID("{6ba7b810-9dad-11d1-80b4-00c04fd430c8}")
	var conv *dcerrors.ConversionError
	require.ErrorAs(t, err, &conv)
	assert.Equal(t, "guid", conv.Type)
}

func TestBase64(t *testing.T) {
	data := []byte{0, 1, 2, 250, 251, 252}
	text := FormatBase64(data)
	got, err := ParseBase64([]byte(text[:4] + "\n  " + text[4:]))
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, text, string(AppendBase64(nil, data)))

	empty, err := ParseBase64(nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = ParseBase64([]byte("!!!"))
	require.Error(t, err)
}

func TestBool(t *testing.T) {
	for in, want := range map[string]bool{"true": true, "1": true, " false ": false, "0": false} {
		got, err := ParseBoolBytes([]byte(in))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseBool("True")
	require.Error(t, err)
	assert.Equal(t, "true", FormatBool(true))
}

func TestCharAndURI(t *testing.T) {
	assert.Equal(t, "65", FormatChar('A'))
	c, err := ParseChar("955")
	require.NoError(t, err)
	assert.Equal(t, "λ", c.String())
	_, err = ParseChar("65536")
	require.Error(t, err)

	u, err := ParseURI("http://example.com/a?b=c")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/a?b=c", FormatURI(u))
	assert.Equal(t, "", FormatURI(nil))
}
