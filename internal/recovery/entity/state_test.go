package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gofactor/internal/pkg/goerror"
)

func TestStateFromColumns(t *testing.T) {
	tests := []struct {
		status, deleted string
		want            State
	}{
		{StatusPending, DeletedFalse, StatePending},
		{StatusSuccess, DeletedFalse, StateVerified},
		{StatusSuccess, DeletedTrue, StateSoftDeleted},
		{StatusPending, "", StatePending},
		{"bogus", "", StateUnregistered},
	}
	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.deleted, func(t *testing.T) {
			got := StateFromColumns(tt.status, tt.deleted)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, StatusPending, StatePending.Status())
	assert.Equal(t, StatusSuccess, StateVerified.Status())
}

func TestState_Register(t *testing.T) {
	assert.Equal(t, RegisterInsert, StateUnregistered.Register())
	assert.Equal(t, RegisterInsert, StateSoftDeleted.Register())
	assert.Equal(t, RegisterOverwrite, StatePending.Register())
	assert.Equal(t, RegisterNoop, StateVerified.Register())
}

func TestState_Verify(t *testing.T) {
	next, changed, err := StatePending.Verify()
	require.NoError(t, err)
	assert.Equal(t, StateVerified, next)
	assert.True(t, changed)

	next, changed, err = StateVerified.Verify()
	require.NoError(t, err)
	assert.Equal(t, StateVerified, next)
	assert.False(t, changed)

	for _, s := range []State{StateUnregistered, StateSoftDeleted} {
		_, _, err = s.Verify()
		assert.ErrorIs(t, err, ErrIllegalTransition, s.String())
	}
}

func TestState_Delete(t *testing.T) {
	next, err := StateVerified.Delete(ChannelAuthenticator)
	require.NoError(t, err)
	assert.Equal(t, StateSoftDeleted, next)

	_, err = StatePending.Delete(ChannelAuthenticator)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = StateVerified.Delete(ChannelPhone)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestErrors_Kinds(t *testing.T) {
	var gerr *goerror.Error
	require.ErrorAs(t, ErrInvalidCode, &gerr)
	assert.Equal(t, 403, gerr.StatusCode())

	require.ErrorAs(t, NewStorageFailure(assert.AnError), &gerr)
	assert.Equal(t, KindStorageFailure, gerr.Kind())
	assert.Equal(t, 500, gerr.StatusCode())
	assert.ErrorIs(t, gerr, assert.AnError)
}
