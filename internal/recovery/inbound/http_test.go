package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gofactor/internal/pkg/config"
	"github.com/shandysiswandi/gofactor/internal/pkg/router"
	"github.com/shandysiswandi/gofactor/internal/pkg/uid"
	"github.com/shandysiswandi/gofactor/internal/pkg/valueobject"
	"github.com/shandysiswandi/gofactor/internal/recovery/entity"
	"github.com/shandysiswandi/gofactor/internal/recovery/usecase"
)

type stubUsecase struct {
	register    usecase.RegisterInput
	verify      usecase.VerifyInput
	verifyErr   error
	registerOut *usecase.RegisterOutput
}

func (s *stubUsecase) Register(_ context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	s.register = in
	return s.registerOut, nil
}

func (s *stubUsecase) StartVerification(_ context.Context, in usecase.StartVerificationInput) (*usecase.StartVerificationOutput, error) {
	return &usecase.StartVerificationOutput{Success: true}, nil
}

func (s *stubUsecase) Verify(_ context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error) {
	s.verify = in
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return &usecase.VerifyOutput{Data: valueobject.JSONMap(in.Data).Merge(nil)}, nil
}

func (s *stubUsecase) RegisterAuthenticator(_ context.Context, _ usecase.RegisterAuthenticatorInput) (*usecase.RegisterAuthenticatorOutput, error) {
	return &usecase.RegisterAuthenticatorOutput{Success: true, Secret: "JBSWY3DPEHPK3PXP", QRData: "otpauth://totp/x"}, nil
}

func (s *stubUsecase) VerifyAuthenticator(_ context.Context, _ usecase.VerifyAuthenticatorInput) (*usecase.VerifyOutput, error) {
	return nil, entity.ErrInvalidAddress
}

func (s *stubUsecase) DeleteAuthenticator(_ context.Context, _ usecase.DeleteAuthenticatorInput) (*usecase.DeleteAuthenticatorOutput, error) {
	return nil, entity.ErrIllegalTransition
}

func newServer(t *testing.T, stub *stubUsecase) http.Handler {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  name: test\n"))
	require.NoError(t, err)

	r := router.NewRouter(router.Config{Config: cfg, UUID: uid.NewUUID()})
	RegisterHTTPEndpoint(r, stub)
	return r
}

func call(t *testing.T, h http.Handler, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestHTTPEndpoint_Register(t *testing.T) {
	stub := &stubUsecase{registerOut: &usecase.RegisterOutput{Registered: true}}
	h := newServer(t, stub)

	code, out := call(t, h, "/api/v1/register",
		`{"pubKey":{"x":"0a","y":"0b"},"sig":{"r":"01","s":"02","v":"00"},"number":"+15551234567"}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Address is already registered.", out["message"])
	assert.Equal(t, map[string]any{"registered": true}, out["data"])
	assert.Equal(t, usecase.PublicKey{X: "0a", Y: "0b"}, stub.register.PubKey)
	assert.Equal(t, "+15551234567", stub.register.Number)
}

func TestHTTPEndpoint_Verify(t *testing.T) {
	stub := &stubUsecase{}
	h := newServer(t, stub)

	code, out := call(t, h, "/api/v1/verify", `{"address":"ab","code":"482913","data":{"factorKey":"k"}}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"data": map[string]any{"factorKey": "k"}}, out["data"])

	stub.verifyErr = entity.ErrInvalidCode
	code, out = call(t, h, "/api/v1/verify", `{"address":"ab","code":"000000"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, entity.KindInvalidCode, out["code"])
}

func TestHTTPEndpoint_Errors(t *testing.T) {
	h := newServer(t, &stubUsecase{})

	tests := []struct {
		name string
		path string
		body string
		code int
		kind string
	}{
		{name: "unknown field", path: "/api/v1/start", body: `{"address":"ab","phone":"1"}`, code: http.StatusBadRequest, kind: "InvalidBody"},
		{name: "deleted authenticator", path: "/api/v1/authenticator/verify", body: `{"address":"ab","code":"123456"}`, code: http.StatusBadRequest, kind: entity.KindInvalidAddress},
		{name: "pending delete", path: "/api/v1/authenticator/delete", body: `{"pubKey":{"x":"1","y":"2"},"sig":{"r":"1","s":"2"}}`, code: http.StatusConflict, kind: entity.KindIllegalTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := call(t, h, tt.path, tt.body)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.kind, out["code"])
		})
	}
}

func TestHTTPEndpoint_RegisterAuthenticator(t *testing.T) {
	h := newServer(t, &stubUsecase{})

	code, out := call(t, h, "/api/v1/authenticator/register", `{"pubKey":{"x":"1","y":"2"},"sig":{"r":"1","s":"2"}}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{
		"success": true,
		"secret":  "JBSWY3DPEHPK3PXP",
		"qrData":  "otpauth://totp/x",
	}, out["data"])
}
