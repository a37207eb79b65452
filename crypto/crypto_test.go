package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	msg := Sha256([]byte("the quick brown fox"))
	sig, err := Sign(priv, msg[:])
	require.NoError(t, err)

	require.True(t, Verify(priv.PubKey(), msg[:], sig))

	// Flip a byte of the signature; it must stop verifying.
	sig[len(sig)-1] ^= 0xff
	require.False(t, Verify(priv.PubKey(), msg[:], sig))
}

func TestHash160(t *testing.T) {
	h := Hash160([]byte("pubkey bytes"))
	require.Len(t, h[:], 20)
}

func TestAESRoundTrip(t *testing.T) {
	key, err := DeriveAESKey("correct horse battery staple", DefaultScryptParams([]byte("salt")))
	require.NoError(t, err)
	require.Len(t, key, 32)

	iv, ct, err := EncryptAES(key, []byte("secret seed bytes"))
	require.NoError(t, err)

	pt, err := DecryptAES(key, iv, ct)
	require.NoError(t, err)
	require.Equal(t, []byte("secret seed bytes"), pt)

	// Wrong key must not silently "succeed" with garbage that happens to
	// look padded; it should fail padding validation with overwhelming
	// probability.
	wrongKey, err := DeriveAESKey("wrong passphrase", DefaultScryptParams([]byte("salt")))
	require.NoError(t, err)
	_, err = DecryptAES(wrongKey, iv, ct)
	require.Error(t, err)
}

func TestMnemonicToSeedDeterministic(t *testing.T) {
	s1 := MnemonicToSeed("abandon abandon ability", "")
	s2 := MnemonicToSeed("abandon abandon ability", "")
	require.Equal(t, s1, s2)
	require.Len(t, s1, Bip39SeedLen)

	s3 := MnemonicToSeed("abandon abandon ability", "TREZOR")
	require.NotEqual(t, s1, s3)
}
