package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type permission uint8

func flagsContract(withZero bool) *EnumContract {
	members := []EnumMember[permission]{
		{Name: "A", Value: 0b001},
		{Name: "B", Value: 0b010},
		{Name: "C", Value: 0b100},
	}
	if withZero {
		members = append([]EnumMember[permission]{{Name: "None", Value: 0}}, members...)
	}
	return NewEnum(NewQName("urn:test", "Permission"), true, members...).Enum
}

func TestFlagsEnumFormat(t *testing.T) {
	e := flagsContract(true)
	tests := []struct {
		in   int64
		want string
	}{
		{in: 0b101, want: "A C"},
		{in: 0b010, want: "B"},
		{in: 0b111, want: "A B C"},
		{in: 0, want: "None"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := e.Format(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			back, err := e.Parse(got)
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestFlagsEnumExactMatchWins(t *testing.T) {
	e := NewEnum(NewQName("urn:test", "Mode"), true,
		EnumMember[int32]{Name: "Read", Value: 1},
		EnumMember[int32]{Name: "Write", Value: 2},
		EnumMember[int32]{Name: "ReadWrite", Value: 3},
	).Enum
	got, err := e.Format(3)
	require.NoError(t, err)
	assert.Equal(t, "ReadWrite", got)
}

func TestFlagsEnumSkipsConsumedBits(t *testing.T) {
	e := NewEnum(NewQName("urn:test", "Mask"), true,
		EnumMember[int32]{Name: "Low", Value: 0b011},
		EnumMember[int32]{Name: "Mid", Value: 0b110},
		EnumMember[int32]{Name: "High", Value: 0b100},
	).Enum
	got, err := e.Format(0b111)
	require.NoError(t, err)
	assert.Equal(t, "Low High", got)
}

func TestFlagsEnumErrors(t *testing.T) {
	e := flagsContract(false)
	_, err := e.Format(0)
	require.ErrorIs(t, err, ErrInvalidEnumValue)
	_, err = e.Format(0b1000)
	require.ErrorIs(t, err, ErrInvalidEnumValue)
	_, err = e.Parse("A D")
	require.ErrorIs(t, err, ErrInvalidEnumValue)
	_, err = e.Parse("a")
	require.ErrorIs(t, err, ErrInvalidEnumValue)

	v, err := e.Parse("  A\tC\n")
	require.NoError(t, err)
	assert.Equal(t, int64(0b101), v)
}

func TestPlainEnum(t *testing.T) {
	c := NewEnum(NewQName("urn:test", "Color"), false,
		EnumMember[int]{Name: "Red", Value: 1},
		EnumMember[int]{Name: "Green", Value: 2},
	)
	require.NoError(t, c.Validate())
	got, err := c.Enum.Format(2)
	require.NoError(t, err)
	assert.Equal(t, "Green", got)

	_, err = c.Enum.Format(3)
	require.ErrorIs(t, err, ErrInvalidEnumValue)
	_, err = c.Enum.Parse("Red Green")
	require.ErrorIs(t, err, ErrInvalidEnumValue)

	v, err := c.Enum.Parse(" Red ")
	require.NoError(t, err)
	typed, err := c.Enum.FromInt64(v)
	require.NoError(t, err)
	assert.Equal(t, 1, typed)
}

func TestUnsigned64Enum(t *testing.T) {
	c := NewEnum(NewQName("urn:test", "Big"), true,
		EnumMember[uint64]{Name: "Top", Value: 1 << 63},
		EnumMember[uint64]{Name: "Bottom", Value: 1},
	)
	assert.True(t, c.Enum.IsUnsigned64)
	raw, err := c.Enum.ToInt64(uint64(1<<63 | 1))
	require.NoError(t, err)
	got, err := c.Enum.Format(raw)
	require.NoError(t, err)
	assert.Equal(t, "Top Bottom", got)
}
