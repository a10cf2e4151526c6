package wallet

import (
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Base58(t *testing.T) {
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	w, err := New(priv.String())
	require.NoError(t, err)
	assert.Equal(t, priv.PublicKey(), w.PublicKey())
	assert.Equal(t, priv.PublicKey().String(), w.Address())
}

func TestNew_KeygenJSONArray(t *testing.T) {
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	// solana-keygen writes the key as a JSON array of byte values
	ints := make([]int, len(priv))
	for i, b := range priv {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	require.NoError(t, err)

	w, err := New(string(raw))
	require.NoError(t, err)
	assert.Equal(t, priv.PublicKey(), w.PublicKey())
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)

	_, err = New("   ")
	assert.Error(t, err)

	_, err = New("not-base58-!!!")
	assert.Error(t, err)

	// Wrong length
	_, err = New("[1,2,3]")
	assert.Error(t, err)

	// Byte out of range
	_, err = New("[300]")
	assert.Error(t, err)
}

func TestSign(t *testing.T) {
	priv, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	w, err := New(priv.String())
	require.NoError(t, err)

	ix := solana.NewInstruction(
		solana.PublicKey{1},
		solana.AccountMetaSlice{solana.Meta(w.PublicKey()).SIGNER().WRITE()},
		[]byte{0},
	)
	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		solana.Hash{2},
		solana.TransactionPayer(w.PublicKey()),
	)
	require.NoError(t, err)

	require.NoError(t, w.Sign(tx))
	require.Len(t, tx.Signatures, 1)
	assert.NoError(t, tx.VerifySignatures())
}
