package goerror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "server", err: NewServer(errors.New("boom")), want: http.StatusInternalServerError},
		{name: "invalid format", err: NewInvalidFormat(), want: http.StatusBadRequest},
		{name: "invalid input", err: NewInvalidInput(nil, "code", "required"), want: http.StatusUnprocessableEntity},
		{name: "forbidden kind", err: NewKind("InvalidCode", "Invalid code", CodeForbidden), want: http.StatusForbidden},
		{name: "too many", err: NewBusiness("slow down", CodeTooManyRequest), want: http.StatusTooManyRequests},
		{name: "conflict", err: NewBusiness("conflict", CodeConflict), want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			require.ErrorAs(t, tt.err, &gerr)
			assert.Equal(t, tt.want, gerr.StatusCode())
		})
	}
}

func TestError_KindMatching(t *testing.T) {
	sentinel := NewKind("InvalidAddress", "Invalid address", CodeInvalidFormat)
	wrapped := fmt.Errorf("resolve: %w", NewKind("InvalidAddress", "Invalid address", CodeInvalidFormat))

	assert.ErrorIs(t, wrapped, sentinel)
	assert.NotErrorIs(t, wrapped, NewKind("InvalidCode", "Invalid code", CodeForbidden))
	assert.NotErrorIs(t, NewBusiness("no kind", CodeConflict), NewBusiness("no kind", CodeConflict))
}

func TestError_ServerKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewServerKind("StorageFailure", cause)

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "StorageFailure", gerr.Kind())
	assert.Equal(t, "Internal server error", gerr.Msg())
	assert.Equal(t, TypeServer, gerr.Type())
}

func TestNewInvalidInput_Fields(t *testing.T) {
	err := NewInvalidInput(nil, "address", "address is required", "code")

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, CodeInvalidFormat, gerr.Code())

	err = NewInvalidInput(nil, "address", "address is required")
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, map[string]string{"address": "address is required"}, gerr.Fields())
	assert.Equal(t, KindInvalidInput, gerr.Kind())
}
