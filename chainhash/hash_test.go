package chainhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHash160RoundTrip(t *testing.T) {
	want := Hash160{0x01, 0x02, 0x03, 0xff}
	h, err := NewHash160FromStr(want.String())
	require.NoError(t, err)
	require.True(t, h.IsEqual(&want))
}

func TestHash160BadLength(t *testing.T) {
	_, err := NewHash160([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestDoubleHashH(t *testing.T) {
	h1 := DoubleHashH([]byte("bitspv"))
	h2 := DoubleHashH([]byte("bitspv"))
	require.Equal(t, h1, h2)

	h3 := DoubleHashH([]byte("not bitspv"))
	require.NotEqual(t, h1, h3)
}
