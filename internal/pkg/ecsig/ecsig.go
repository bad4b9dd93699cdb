package ecsig

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

// CoordLen is the hex width of one public key coordinate or signature scalar.
const CoordLen = 64

var (
	// ErrInvalidPublicKey is returned when the coordinates are not a point on secp256k1.
	ErrInvalidPublicKey = errors.New("ecsig: invalid public key")
	// ErrInvalidSignature is returned when the signature is malformed or does not verify.
	ErrInvalidSignature = errors.New("ecsig: invalid signature")
)

// PublicKey holds the affine coordinates of a secp256k1 point as hex.
type PublicKey struct {
	X string
	Y string
}

// Signature holds r, s and the recovery parity v as hex.
// v is carried for wire compatibility and is not needed to verify.
type Signature struct {
	R string
	S string
	V string
}

// Verifier checks a signature over a message for a public key.
type Verifier interface {
	Verify(pub PublicKey, sig Signature, message []byte) error
}

// Secp256k1 implements Verifier.
type Secp256k1 struct{}

// NewSecp256k1 returns the secp256k1 verifier.
func NewSecp256k1() *Secp256k1 {
	return &Secp256k1{}
}

// Verify hashes message with keccak256 and checks sig against pub.
func (Secp256k1) Verify(pub PublicKey, sig Signature, message []byte) error {
	key, err := parsePublicKey(pub)
	if err != nil {
		return err
	}

	r, err := parseScalar(sig.R)
	if err != nil {
		return err
	}
	s, err := parseScalar(sig.S)
	if err != nil {
		return err
	}

	if !ecdsa.NewSignature(r, s).Verify(Keccak256(message), key) {
		return ErrInvalidSignature
	}

	return nil
}

// Address derives the address of pub: both coordinates normalized to 64
// lower-case hex characters and concatenated.
func Address(pub PublicKey) (string, error) {
	x, err := NormalizeHex(pub.X)
	if err != nil {
		return "", ErrInvalidPublicKey
	}
	y, err := NormalizeHex(pub.Y)
	if err != nil {
		return "", ErrInvalidPublicKey
	}

	return x + y, nil
}

// Keccak256 returns the legacy (pre-FIPS) Keccak-256 digest of data.
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// NormalizeHex strips an optional 0x prefix, lower-cases and left-pads v to CoordLen.
func NormalizeHex(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.TrimPrefix(v, "0x")
	if v == "" || len(v) > CoordLen {
		return "", hex.ErrLength
	}

	v = strings.Repeat("0", CoordLen-len(v)) + v
	if _, err := hex.DecodeString(v); err != nil {
		return "", err
	}

	return v, nil
}

func parsePublicKey(pub PublicKey) (*secp256k1.PublicKey, error) {
	addr, err := Address(pub)
	if err != nil {
		return nil, err
	}

	raw, err := hex.DecodeString("04" + addr)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}

	key, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}

	return key, nil
}

func parseScalar(v string) (*secp256k1.ModNScalar, error) {
	norm, err := NormalizeHex(v)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	raw, err := hex.DecodeString(norm)
	if err != nil {
		return nil, ErrInvalidSignature
	}

	var sc secp256k1.ModNScalar
	if overflow := sc.SetByteSlice(raw); overflow || sc.IsZero() {
		return nil, ErrInvalidSignature
	}

	return &sc, nil
}
