package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/gofactor/internal/pkg/config"
	"github.com/shandysiswandi/gofactor/internal/pkg/goerror"
	"github.com/shandysiswandi/gofactor/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type okResponse struct {
	Success bool `json:"success"`
}

func (okResponse) Message() string { return "Registered" }

func newTestRouter(t *testing.T, yaml string) *Router {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)
	return NewRouter(Config{Config: cfg, UUID: fixedID("cid-test")})
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestRouter_Envelopes(t *testing.T) {
	r := newTestRouter(t, "app:\n  name: test\n")

	r.POST("/ok", func(req *Request) (any, error) {
		var body struct {
			Address string `json:"address"`
		}
		if err := req.DecodeBody(&body); err != nil {
			return nil, err
		}
		return okResponse{Success: body.Address != ""}, nil
	})
	r.POST("/kind", func(*Request) (any, error) {
		return nil, goerror.NewKind("InvalidSignature", "Invalid sig", goerror.CodeInvalidFormat)
	})
	r.POST("/validation", func(*Request) (any, error) {
		return nil, goerror.NewInvalidInput(validator.V10ValidationError{"code": "code must be 6 characters in length"})
	})
	r.POST("/raw", func(*Request) (any, error) {
		return nil, errors.New("leaky detail")
	})
	r.GET("/panic", func(*Request) (any, error) {
		panic("boom")
	})

	rec, out := do(t, r, http.MethodPost, "/ok", `{"address":"ab"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Registered", out["message"])
	assert.Equal(t, map[string]any{"success": true}, out["data"])
	assert.Equal(t, "cid-test", rec.Header().Get(HeaderCorrelationID))

	rec, out = do(t, r, http.MethodPost, "/ok", `{"address":"ab","extra":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, goerror.KindInvalidBody, out["code"])

	rec, _ = do(t, r, http.MethodPost, "/ok", `{"address":"ab"}{"address":"cd"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, out = do(t, r, http.MethodPost, "/kind", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidSignature", out["code"])
	assert.Equal(t, "Invalid sig", out["message"])

	rec, out = do(t, r, http.MethodPost, "/validation", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, map[string]any{"code": "code must be 6 characters in length"}, out["error"])

	rec, out = do(t, r, http.MethodPost, "/raw", `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", out["message"])

	rec, out = do(t, r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", out["message"])

	rec, _ = do(t, r, http.MethodGet, "/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, r, http.MethodGet, "/ok", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_Maintenance(t *testing.T) {
	r := newTestRouter(t, "app:\n  maintenance:\n    endpoints: /api/v1/start\n")
	r.POST("/api/v1/start", func(*Request) (any, error) { return okResponse{}, nil })
	r.POST("/api/v1/verify", func(*Request) (any, error) { return okResponse{}, nil })

	rec, _ := do(t, r, http.MethodPost, "/api/v1/start", `{}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = do(t, r, http.MethodPost, "/api/v1/verify", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_CorrelationIDFromHeader(t *testing.T) {
	r := newTestRouter(t, "")
	r.GET("/health", func(*Request) (any, error) { return okResponse{Success: true}, nil })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, " upstream-id ")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-id", rec.Header().Get(HeaderCorrelationID))
}

func TestRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", realIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", realIP(req))

	req.Header.Set("X-Real-IP", "not-an-ip")
	assert.Equal(t, "203.0.113.7", realIP(req))
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "h") }), mw("a"), mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "h"}, order)
}
