package smsotp

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/shandysiswandi/gofactor/internal/pkg/clock"
	"github.com/shandysiswandi/gofactor/internal/pkg/codestore"
	"github.com/shandysiswandi/gofactor/internal/pkg/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const phone = "+15551234567"

func newIssuer(c clock.Clocker) (*Issuer, *codestore.Memory) {
	store := codestore.NewMemory(c)
	return New(store, hash.NewHMACSHA256("pepper"), 10*time.Minute), store
}

func TestIssuer_InitiateVerify(t *testing.T) {
	ctx := context.Background()
	iss, store := newIssuer(clock.New())

	code, err := iss.Initiate(ctx, phone)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	stored, err := store.Get(ctx, "mfa:"+phone)
	require.NoError(t, err)
	assert.NotEqual(t, code, stored)

	require.NoError(t, iss.Verify(ctx, phone, code))
	require.NoError(t, iss.Verify(ctx, phone, code), "a verified code stays valid")

	n, _ := strconv.Atoi(code)
	other := strconv.Itoa(100000 + (n-100000+1)%900000)
	assert.ErrorIs(t, iss.Verify(ctx, phone, other), ErrInvalidCode)
	assert.ErrorIs(t, iss.Verify(ctx, phone, " "+code), ErrInvalidCode)
	assert.ErrorIs(t, iss.Verify(ctx, "+15550000000", code), ErrInvalidCode)
}

func TestIssuer_ReissueInvalidatesPrevious(t *testing.T) {
	ctx := context.Background()
	iss, _ := newIssuer(clock.New())

	var first, second string
	var err error
	for first == second {
		first, err = iss.Initiate(ctx, phone)
		require.NoError(t, err)
		second, err = iss.Initiate(ctx, phone)
		require.NoError(t, err)
	}

	assert.ErrorIs(t, iss.Verify(ctx, phone, first), ErrInvalidCode)
	assert.NoError(t, iss.Verify(ctx, phone, second))
}

func TestIssuer_CodeRange(t *testing.T) {
	ctx := context.Background()
	iss, _ := newIssuer(clock.New())

	for range 200 {
		code, err := iss.Initiate(ctx, phone)
		require.NoError(t, err)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestIssuer_Expiry(t *testing.T) {
	ctx := context.Background()
	c := clock.NewFixed(time.Unix(1_700_000_000, 0))
	iss, _ := newIssuer(c)

	code, err := iss.Initiate(ctx, phone)
	require.NoError(t, err)

	c.Advance(10 * time.Minute)
	assert.ErrorIs(t, iss.Verify(ctx, phone, code), ErrInvalidCode)
}

type brokenStore struct{ codestore.Store }

var errDown = errors.New("redis down")

func (brokenStore) Get(context.Context, string) (string, error) { return "", errDown }

func (brokenStore) Set(context.Context, string, string, time.Duration) error { return errDown }

func TestIssuer_StoreFailure(t *testing.T) {
	ctx := context.Background()
	iss := New(brokenStore{}, hash.NewHMACSHA256("pepper"), time.Minute)

	_, err := iss.Initiate(ctx, phone)
	assert.ErrorIs(t, err, errDown)

	err = iss.Verify(ctx, phone, "123456")
	assert.ErrorIs(t, err, errDown)
	assert.NotErrorIs(t, err, ErrInvalidCode)
}
