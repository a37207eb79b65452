package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestVarIntCanonicalRanges(t *testing.T) {
	cases := []struct {
		v    uint64
		want int
	}{
		{0, 1},
		{0xfc, 1},
		{0xfd, 3},
		{0xffff, 3},
		{0x10000, 5},
		{0xffffffff, 5},
		{0x100000000, 9},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		require.NoError(t, WriteVarInt(&buf, c.v))
		require.Equal(t, c.want, buf.Len())

		got, err := ReadVarInt(&buf)
		require.NoError(t, err)
		require.Equal(t, c.v, got)
	}
}

func TestReadVarIntRejectsNonCanonical(t *testing.T) {
	// 0xfd tag with a payload that fits in one byte.
	buf := bytes.NewReader([]byte{0xfd, 0x0a, 0x00})
	_, err := ReadVarInt(buf)
	require.ErrorIs(t, err, ErrNonCanonicalVarInt)
}

func TestVarBytesRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		data := rapid.SliceOfN(rapid.Byte(), 0, 512).Draw(t, "data")

		var buf bytes.Buffer
		require.NoError(t, WriteVarBytes(&buf, data))

		got, err := ReadVarBytes(&buf, 0)
		require.NoError(t, err)
		require.Equal(t, data, got)
	})
}

func TestReadVarBytesTooLong(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVarBytes(&buf, make([]byte, 100)))
	_, err := ReadVarBytes(&buf, 10)
	require.ErrorIs(t, err, ErrTooLong)
}

func TestFixedWidthRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		u8 := rapid.Uint8().Draw(t, "u8")
		u16 := rapid.Uint16().Draw(t, "u16")
		u32 := rapid.Uint32().Draw(t, "u32")
		u64 := rapid.Uint64().Draw(t, "u64")
		i32 := rapid.Int32().Draw(t, "i32")
		i64 := rapid.Int64().Draw(t, "i64")

		var buf bytes.Buffer
		require.NoError(t, WriteUint8(&buf, u8))
		require.NoError(t, WriteUint16LE(&buf, u16))
		require.NoError(t, WriteUint32LE(&buf, u32))
		require.NoError(t, WriteUint64LE(&buf, u64))
		require.NoError(t, WriteInt32LE(&buf, i32))
		require.NoError(t, WriteInt64LE(&buf, i64))

		gotU8, err := ReadUint8(&buf)
		require.NoError(t, err)
		require.Equal(t, u8, gotU8)

		gotU16, err := ReadUint16LE(&buf)
		require.NoError(t, err)
		require.Equal(t, u16, gotU16)

		gotU32, err := ReadUint32LE(&buf)
		require.NoError(t, err)
		require.Equal(t, u32, gotU32)

		gotU64, err := ReadUint64LE(&buf)
		require.NoError(t, err)
		require.Equal(t, u64, gotU64)

		gotI32, err := ReadInt32LE(&buf)
		require.NoError(t, err)
		require.Equal(t, i32, gotI32)

		gotI64, err := ReadInt64LE(&buf)
		require.NoError(t, err)
		require.Equal(t, i64, gotI64)
	})
}

func TestReadTruncated(t *testing.T) {
	_, err := ReadUint32LE(bytes.NewReader([]byte{0x01, 0x02}))
	require.ErrorIs(t, err, ErrTruncated)
}
