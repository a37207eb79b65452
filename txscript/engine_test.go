package txscript

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvidlabs/bitspv/crypto"
	"github.com/corvidlabs/bitspv/wire"
)

func buildSpendTx(prevScript []byte, value int64) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 0},
		Sequence:         wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(&wire.TxOut{Value: 100, PkScript: prevScript})
	return tx
}

func signP2PKH(t *testing.T, priv *crypto.PrivateKey, pkScript []byte, tx *wire.MsgTx, idx int) []byte {
	t.Helper()
	hash, err := CalcSignatureHash(pkScript, SigHashAll, tx, idx)
	require.NoError(t, err)

	der, err := crypto.Sign(priv, hash[:])
	require.NoError(t, err)

	sig := append(der, byte(SigHashAll))
	pub := priv.PubKey().SerializeCompressed()

	var buf bytes.Buffer
	buf.WriteByte(byte(len(sig)))
	buf.Write(sig)
	buf.WriteByte(byte(len(pub)))
	buf.Write(pub)
	return buf.Bytes()
}

func TestP2PKHVerifySucceeds(t *testing.T) {
	priv, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)

	pkHash := crypto.Hash160(priv.PubKey().SerializeCompressed())
	pkScript := PayToPubKeyHashScript(pkHash)

	spendingTx := buildSpendTx(pkScript, 100)
	sigScript := signP2PKH(t, priv, pkScript, spendingTx, 0)
	spendingTx.TxIn[0].SignatureScript = sigScript

	err = Verify(sigScript, pkScript, spendingTx, 0, StandardVerifyFlags)
	require.NoError(t, err)
}

func TestP2PKHVerifyFailsOnMutatedSignature(t *testing.T) {
	priv, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)

	pkHash := crypto.Hash160(priv.PubKey().SerializeCompressed())
	pkScript := PayToPubKeyHashScript(pkHash)

	spendingTx := buildSpendTx(pkScript, 100)
	sigScript := signP2PKH(t, priv, pkScript, spendingTx, 0)

	// Flip a byte inside the DER signature portion.
	sigScript[4] ^= 0xff
	spendingTx.TxIn[0].SignatureScript = sigScript

	err = Verify(sigScript, pkScript, spendingTx, 0, StandardVerifyFlags)
	require.Error(t, err)
}

func TestClassifyScript(t *testing.T) {
	priv, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	pkHash := crypto.Hash160(priv.PubKey().SerializeCompressed())

	require.Equal(t, PubKeyHashTy, ClassifyScript(PayToPubKeyHashScript(pkHash)))
	require.Equal(t, ScriptHashTy, ClassifyScript(PayToScriptHashScript(pkHash)))
	require.Equal(t, PubKeyTy, ClassifyScript(PayToPubKeyScript(priv.PubKey().SerializeCompressed())))

	ms, err := MultiSigScript(2, [][]byte{
		priv.PubKey().SerializeCompressed(),
		priv.PubKey().SerializeCompressed(),
	})
	require.NoError(t, err)
	require.Equal(t, MultiSigTy, ClassifyScript(ms))
}

func TestStackMaxOpsExceeded(t *testing.T) {
	var script []byte
	for i := 0; i < MaxOpsPerScript+1; i++ {
		script = append(script, OP_NOP)
	}
	_, err := parseScript(script)
	require.NoError(t, err) // parsing never rejects this; execution does

	ops, _ := parseScript(script)
	require.Greater(t, countNonPushOps(ops), MaxOpsPerScript)
}

func TestScriptNumMinimalEncoding(t *testing.T) {
	_, err := makeScriptNum([]byte{0x00}, true, 4)
	require.Error(t, err)

	n, err := makeScriptNum([]byte{0x01}, true, 4)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = makeScriptNum([]byte{0x81}, true, 4)
	require.NoError(t, err)
	require.EqualValues(t, -1, n)
}
