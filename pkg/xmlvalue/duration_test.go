package xmlvalue

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "PT0S"},
		{time.Second, "PT1S"},
		{-90 * time.Minute, "-PT1H30M"},
		{26*time.Hour + 3*time.Second + 500*time.Millisecond, "P1DT2H3.5S"},
		{48 * time.Hour, "P2D"},
		{100 * time.Nanosecond, "PT0.0000001S"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
			got, err := ParseDuration(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.in, got)
		})
	}
}

func TestParseDuration(t *testing.T) {
	got, err := ParseDuration("P1Y2M3DT4H5M6.7S")
	require.NoError(t, err)
	want := 365*24*time.Hour + 60*24*time.Hour + 3*24*time.Hour + 4*time.Hour + 5*time.Minute + 6700*time.Millisecond
	assert.Equal(t, want, got)

	got, err = ParseDuration(FormatDuration(math.MinInt64 + 1))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(math.MinInt64+1)/100*100, got)

	for _, bad := range []string{"", "P", "PT", "1D", "P1H", "PT1D", "P1S", "P1.5D", "PT1M1H", "P999999999D"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}
}
