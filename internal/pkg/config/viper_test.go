package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  name: gofactor
  maintenance:
    endpoints: "/api/v1/start, /api/v1/verify,"
modules:
  recovery:
    enabled: true
    sms:
      code_ttl: 10m
      resend_cooldown: 30
instrument:
  mask_fields:
    - phone
    - code
secret:
  aes: AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8=
messaging:
  topics: "a:b, c:d"
`

func TestViper_Getters(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cfg.Close() })

	assert.Equal(t, "gofactor", cfg.GetString("app.name"))
	assert.True(t, cfg.GetBool("modules.recovery.enabled"))
	assert.Equal(t, 10*time.Minute, cfg.GetDuration("modules.recovery.sms.code_ttl"))
	assert.Equal(t, 30*time.Second, cfg.GetDuration("modules.recovery.sms.resend_cooldown"))
	assert.Zero(t, cfg.GetDuration("modules.recovery.sms.missing"))
	assert.Equal(t, []string{"/api/v1/start", "/api/v1/verify"}, cfg.GetArray("app.maintenance.endpoints"))
	assert.Equal(t, []string{"phone", "code"}, cfg.GetArray("instrument.mask_fields"))
	assert.Empty(t, cfg.GetArray("app.none"))
	assert.Len(t, cfg.GetBinary("secret.aes"), 32)
	assert.Nil(t, cfg.GetBinary("app.name"))
	assert.Equal(t, map[string]string{"a": "b", "c": "d"}, cfg.GetMap("messaging.topics"))
}

func TestViper_EnvOverride(t *testing.T) {
	t.Setenv("APP_NAME", "from-env")

	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GetString("app.name"))
}

func TestNewViper_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sample), 0o600))

	cfg, err := NewViper(file)
	require.NoError(t, err)
	assert.Equal(t, "gofactor", cfg.GetString("app.name"))

	_, err = NewViper(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = NewViperFromBytes(" ", nil)
	assert.ErrorIs(t, err, ErrConfigTypeRequired)
}
