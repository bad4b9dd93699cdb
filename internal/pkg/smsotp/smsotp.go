// Package smsotp issues and checks 6 digit numeric codes sent to phone numbers.
//
// Issuing only generates and stores the code; delivering it is the caller's
// job. A successful check does not consume the code: it stays valid until the
// next Initiate for the same number or until it expires.
package smsotp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/shandysiswandi/gofactor/internal/pkg/codestore"
	"github.com/shandysiswandi/gofactor/internal/pkg/hash"
)

const (
	keyPrefix = "mfa:"
	minCode   = 100000
	maxCode   = 999999
)

// ErrInvalidCode is returned when no code is stored or the candidate does not match.
var ErrInvalidCode = errors.New("smsotp: invalid code")

// Issuer generates, stores and verifies SMS codes.
type Issuer struct {
	store  codestore.Store
	hasher hash.Hash
	ttl    time.Duration
	rand   io.Reader
}

// New returns an Issuer storing digests of codes in store for ttl.
func New(store codestore.Store, hasher hash.Hash, ttl time.Duration) *Issuer {
	return &Issuer{store: store, hasher: hasher, ttl: ttl, rand: rand.Reader}
}

// Key is the store key for a phone number.
func Key(phone string) string {
	return keyPrefix + phone
}

// Initiate creates a new code for phone, replacing any previous one, and returns it.
func (i *Issuer) Initiate(ctx context.Context, phone string) (string, error) {
	n, err := rand.Int(i.rand, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", fmt.Errorf("smsotp: generate code: %w", err)
	}
	code := fmt.Sprintf("%d", n.Int64()+minCode)

	digest, err := i.hasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("smsotp: hash code: %w", err)
	}

	if err := i.store.Set(ctx, Key(phone), string(digest), i.ttl); err != nil {
		return "", err
	}

	return code, nil
}

// Verify checks candidate against the code last issued for phone.
// Store failures other than a missing key are returned as is.
func (i *Issuer) Verify(ctx context.Context, phone, candidate string) error {
	digest, err := i.store.Get(ctx, Key(phone))
	if errors.Is(err, codestore.ErrNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return err
	}

	if !i.hasher.Verify(digest, candidate) {
		return ErrInvalidCode
	}

	return nil
}
