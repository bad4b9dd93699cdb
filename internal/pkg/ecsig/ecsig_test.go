package ecsig

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) (*secp256k1.PrivateKey, PublicKey) {
	t.Helper()

	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	raw := priv.PubKey().SerializeUncompressed()
	return priv, PublicKey{
		X: hex.EncodeToString(raw[1:33]),
		Y: hex.EncodeToString(raw[33:65]),
	}
}

func sign(priv *secp256k1.PrivateKey, message []byte) Signature {
	compact := ecdsa.SignCompact(priv, Keccak256(message), false)
	return Signature{
		R: hex.EncodeToString(compact[1:33]),
		S: hex.EncodeToString(compact[33:65]),
		V: hex.EncodeToString([]byte{compact[0] - 27}),
	}
}

func TestKeccak256(t *testing.T) {
	assert.Equal(t,
		"c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(Keccak256(nil)),
	)
}

func TestSecp256k1_Verify(t *testing.T) {
	priv, pub := newKey(t)
	msg := []byte("+15551234567")
	sig := sign(priv, msg)

	v := NewSecp256k1()
	require.NoError(t, v.Verify(pub, sig, msg))

	t.Run("prefixed and upper-case hex", func(t *testing.T) {
		upper := PublicKey{X: "0x" + strings.ToUpper(pub.X), Y: strings.ToUpper(pub.Y)}
		assert.NoError(t, v.Verify(upper, sig, msg))
	})

	t.Run("other message", func(t *testing.T) {
		assert.ErrorIs(t, v.Verify(pub, sig, []byte("+15551234568")), ErrInvalidSignature)
	})

	t.Run("other key", func(t *testing.T) {
		_, other := newKey(t)
		assert.ErrorIs(t, v.Verify(other, sig, msg), ErrInvalidSignature)
	})

	t.Run("tampered s", func(t *testing.T) {
		bad := sig
		bad.S = strings.Repeat("1", 64)
		assert.ErrorIs(t, v.Verify(pub, bad, msg), ErrInvalidSignature)
	})

	t.Run("zero r", func(t *testing.T) {
		bad := sig
		bad.R = "00"
		assert.ErrorIs(t, v.Verify(pub, bad, msg), ErrInvalidSignature)
	})

	t.Run("r above curve order", func(t *testing.T) {
		bad := sig
		bad.R = strings.Repeat("f", 64)
		assert.ErrorIs(t, v.Verify(pub, bad, msg), ErrInvalidSignature)
	})

	t.Run("not hex", func(t *testing.T) {
		bad := sig
		bad.R = "zz"
		assert.ErrorIs(t, v.Verify(pub, bad, msg), ErrInvalidSignature)
	})

	t.Run("point off the curve", func(t *testing.T) {
		off := PublicKey{X: pub.X, Y: strings.Repeat("1", 64)}
		assert.ErrorIs(t, v.Verify(off, sig, msg), ErrInvalidPublicKey)
	})
}

func TestAddress(t *testing.T) {
	addr, err := Address(PublicKey{X: "0xAB", Y: "cd"})
	require.NoError(t, err)
	assert.Len(t, addr, 128)
	assert.Equal(t, strings.Repeat("0", 62)+"ab"+strings.Repeat("0", 62)+"cd", addr)

	_, pub := newKey(t)
	addr, err = Address(pub)
	require.NoError(t, err)
	assert.Equal(t, pub.X+pub.Y, addr)

	_, err = Address(PublicKey{X: strings.Repeat("a", 65), Y: "01"})
	assert.ErrorIs(t, err, ErrInvalidPublicKey)

	_, err = Address(PublicKey{X: "", Y: "01"})
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}
