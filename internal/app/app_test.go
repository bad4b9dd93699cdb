package app

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/shandysiswandi/gofactor/internal/pkg/clock"
	"github.com/shandysiswandi/gofactor/internal/pkg/config"
	"github.com/shandysiswandi/gofactor/internal/pkg/ecsig"
	"github.com/shandysiswandi/gofactor/internal/pkg/otp"
)

const testConfig = `
app:
  name: gofactor
  version: test
  node_id: 7
  server:
    max_goroutine: 16
    http:
      read_timeout: 5s
      write_timeout: 5s
database:
  url: %s
  migrate: true
cache:
  url: %s
  code_store: redis
messaging:
  driver: memory
secret:
  hmac: test-hmac
  aes_key: MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=
modules:
  recovery:
    enabled: true
    sms:
      code_ttl: 10m
      resend_cooldown: 2s
      expose_code: true
  notification:
    enabled: true
    consumer_names:
      - recovery_sms_code_requested_notification
      - recovery_binding_verified_notification
    sms:
      driver: log
`

var baseURL string

type successEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Error   map[string]string `json:"error"`
}

func TestMain(m *testing.M) {
	if os.Getenv("GOFACTOR_E2E") != "true" {
		fmt.Fprintln(os.Stderr, "skipping e2e tests, set GOFACTOR_E2E=true to run them")
		os.Exit(0)
	}

	os.Exit(run(m))
}

func run(m *testing.M) int {
	ctx := context.Background()

	pg, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("gofactor"),
		postgres.WithUsername("gofactor"),
		postgres.WithPassword("gofactor"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start postgres: %v\n", err)
		return 1
	}
	defer pg.Terminate(context.Background()) //nolint:errcheck // best effort

	rd, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		fmt.Fprintf(os.Stderr, "start redis: %v\n", err)
		return 1
	}
	defer rd.Terminate(context.Background()) //nolint:errcheck // best effort

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres dsn: %v\n", err)
		return 1
	}

	host, err := rd.Host(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis host: %v\n", err)
		return 1
	}
	port, err := rd.MappedPort(ctx, nat.Port("6379/tcp"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis port: %v\n", err)
		return 1
	}

	cfg, err := config.NewViperFromBytes("yaml", fmt.Appendf(nil, testConfig, dsn, "redis://"+net.JoinHostPort(host, port.Port())+"/0"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	application := NewWithConfig(cfg)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		fmt.Fprintf(os.Stderr, "listen: %v\n", err)
		return 1
	}
	application.Serve(l)
	baseURL = "http://" + l.Addr().String()

	code := m.Run()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Stop(stopCtx)

	return code
}

var httpClient = &http.Client{Timeout: 5 * time.Second}

func doJSON(t *testing.T, method, path string, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		require.NoError(t, json.NewEncoder(buf).Encode(payload))
		body = buf
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBody
}

func decodeSuccess(t *testing.T, body []byte, out any) successEnvelope {
	t.Helper()

	var env successEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}

	return env
}

func decodeError(t *testing.T, body []byte) errorEnvelope {
	t.Helper()

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(body, &env))

	return env
}

type wallet struct {
	priv *secp256k1.PrivateKey
	x, y string
}

func newWallet(t *testing.T) wallet {
	t.Helper()

	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)

	raw := priv.PubKey().SerializeUncompressed()
	return wallet{priv: priv, x: hex.EncodeToString(raw[1:33]), y: hex.EncodeToString(raw[33:65])}
}

func (w wallet) address() string {
	return w.x + w.y
}

func (w wallet) pubKey() map[string]string {
	return map[string]string{"x": w.x, "y": w.y}
}

func (w wallet) sign(message string) map[string]string {
	compact := ecdsa.SignCompact(w.priv, ecsig.Keccak256([]byte(message)), false)
	return map[string]string{
		"r": hex.EncodeToString(compact[1:33]),
		"s": hex.EncodeToString(compact[33:65]),
		"v": hex.EncodeToString([]byte{compact[0] - 27}),
	}
}

func TestHealth(t *testing.T) {
	// Act
	status, body := doJSON(t, http.MethodGet, "/health", nil)

	// Assert
	require.Equal(t, http.StatusOK, status)

	var data struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	decodeSuccess(t, body, &data)
	assert.Equal(t, "gofactor", data.Name)
	assert.Equal(t, "test", data.Version)
}

func TestPhoneRecovery(t *testing.T) {
	// Arrange
	w := newWallet(t)
	number := "+15551234567"

	// Act
	status, body := doJSON(t, http.MethodPost, "/api/v1/register", map[string]any{
		"pubKey": w.pubKey(),
		"sig":    w.sign(number),
		"number": number,
	})

	// Assert
	require.Equal(t, http.StatusOK, status, string(body))

	t.Run("StartVerification", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, "/api/v1/start", map[string]string{"address": w.address()})
		require.Equal(t, http.StatusOK, status, string(body))

		var started struct {
			Success bool   `json:"success"`
			Code    string `json:"code"`
		}
		decodeSuccess(t, body, &started)
		require.True(t, started.Success)
		require.Len(t, started.Code, 6)

		status, body = doJSON(t, http.MethodPost, "/api/v1/start", map[string]string{"address": w.address()})
		assert.Equal(t, http.StatusTooManyRequests, status)
		assert.Equal(t, "TooManyRequests", decodeError(t, body).Code)

		status, body = doJSON(t, http.MethodPost, "/api/v1/verify", map[string]any{
			"address": w.address(),
			"code":    "000000",
		})
		if started.Code != "000000" {
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, "InvalidCode", decodeError(t, body).Code)
		}

		status, body = doJSON(t, http.MethodPost, "/api/v1/verify", map[string]any{
			"address": w.address(),
			"code":    started.Code,
			"data":    map[string]any{"factorKey": "share-1"},
		})
		require.Equal(t, http.StatusOK, status, string(body))

		var verified struct {
			Data map[string]any `json:"data"`
		}
		decodeSuccess(t, body, &verified)
		assert.Equal(t, "share-1", verified.Data["factorKey"])

		status, body = doJSON(t, http.MethodPost, "/api/v1/register", map[string]any{
			"pubKey": w.pubKey(),
			"sig":    w.sign(number),
			"number": number,
		})
		require.Equal(t, http.StatusOK, status)

		var again struct {
			Registered bool `json:"registered"`
		}
		decodeSuccess(t, body, &again)
		assert.True(t, again.Registered)
	})

	t.Run("UnknownAddress", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, "/api/v1/start", map[string]string{"address": newWallet(t).address()})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "InvalidAddress", decodeError(t, body).Code)
	})

	t.Run("ForgedSignature", func(t *testing.T) {
		status, body := doJSON(t, http.MethodPost, "/api/v1/register", map[string]any{
			"pubKey": w.pubKey(),
			"sig":    newWallet(t).sign(number),
			"number": number,
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "InvalidSignature", decodeError(t, body).Code)
	})
}

func TestAuthenticatorRecovery(t *testing.T) {
	// Arrange
	w := newWallet(t)

	// Act
	status, body := doJSON(t, http.MethodPost, "/api/v1/authenticator/register", map[string]any{
		"pubKey": w.pubKey(),
		"sig":    w.sign(w.address()),
	})

	// Assert
	require.Equal(t, http.StatusOK, status, string(body))

	var registered struct {
		Secret string `json:"secret"`
		QRData string `json:"qrData"`
	}
	decodeSuccess(t, body, &registered)
	require.NotEmpty(t, registered.Secret)
	assert.Contains(t, registered.QRData, "otpauth://totp/")

	code, err := otp.NewTOTP(clock.New()).Generate(registered.Secret, 0)
	require.NoError(t, err)

	status, body = doJSON(t, http.MethodPost, "/api/v1/authenticator/verify", map[string]any{
		"address": w.address(),
		"code":    code,
		"data":    map[string]any{"factorKey": "share-2"},
	})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = doJSON(t, http.MethodPost, "/api/v1/authenticator/delete", map[string]any{
		"pubKey": w.pubKey(),
		"sig":    w.sign("delete:" + w.address()),
	})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = doJSON(t, http.MethodPost, "/api/v1/authenticator/verify", map[string]any{
		"address": w.address(),
		"code":    code,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "InvalidAddress", decodeError(t, body).Code)

	status, body = doJSON(t, http.MethodPost, "/api/v1/authenticator/register", map[string]any{
		"pubKey": w.pubKey(),
		"sig":    w.sign(w.address()),
	})
	require.Equal(t, http.StatusOK, status, string(body))
	var again struct {
		Registered bool   `json:"registered"`
		Secret     string `json:"secret"`
	}
	decodeSuccess(t, body, &again)
	assert.False(t, again.Registered)
	assert.NotEqual(t, registered.Secret, again.Secret)
}
