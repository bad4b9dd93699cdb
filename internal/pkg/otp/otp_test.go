package otp

import (
	"strings"
	"testing"
	"time"

	pqotp "github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/shandysiswandi/gofactor/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// base32 of the ASCII key "12345678901234567890" from RFC 6238 appendix B.
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestTOTP_GenerateAt_RFC6238(t *testing.T) {
	tests := []struct {
		unix int64
		want string
	}{
		{unix: 59, want: "287082"},
		{unix: 1111111109, want: "081804"},
		{unix: 1111111111, want: "050471"},
		{unix: 1234567890, want: "005924"},
		{unix: 2000000000, want: "279037"},
		{unix: 20000000000, want: "353130"},
	}

	engine := NewTOTP(clock.New())
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := engine.GenerateAt(rfcSecret, time.Unix(tt.unix, 0), 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTOTP_Generate_WindowOffset(t *testing.T) {
	c := clock.NewFixed(time.Unix(89, 0))
	engine := NewTOTP(c)

	prev, err := engine.Generate(rfcSecret, -1)
	require.NoError(t, err)
	assert.Equal(t, "287082", prev)

	again, err := engine.Generate(rfcSecret, -1)
	require.NoError(t, err)
	assert.Equal(t, prev, again)
}

func TestTOTP_MatchesReferenceImplementation(t *testing.T) {
	engine := NewTOTP(clock.New())
	secrets := []string{rfcSecret, "JBSWY3DPEHPK3PXP", "jbswy3dpehpk3pxp", "MFRGGZDFMZTWQ2LK"}
	instants := []int64{0, 29, 30, 1700000000, 1893456000}

	for _, s := range secrets {
		for _, at := range instants {
			want, err := totp.GenerateCodeCustom(strings.ToUpper(s), time.Unix(at, 0), totp.ValidateOpts{
				Period:    30,
				Digits:    pqotp.DigitsSix,
				Algorithm: pqotp.AlgorithmSHA1,
			})
			require.NoError(t, err)

			got, err := engine.GenerateAt(s, time.Unix(at, 0), 0)
			require.NoError(t, err)
			assert.Equal(t, want, got, "secret=%s at=%d", s, at)
		}
	}
}

func TestTOTP_Validate_ToleranceBand(t *testing.T) {
	c := clock.NewFixed(time.Unix(59, 0))
	engine := NewTOTP(c)

	code, err := engine.Generate(rfcSecret, 0)
	require.NoError(t, err)
	assert.True(t, engine.Validate(rfcSecret, code), "same window")

	c.Set(time.Unix(30, 0))
	assert.True(t, engine.Validate(rfcSecret, code), "start of the window")

	c.Set(time.Unix(89, 0))
	assert.True(t, engine.Validate(rfcSecret, code), "one window later")

	c.Set(time.Unix(0, 0))
	assert.True(t, engine.Validate(rfcSecret, code), "one window earlier")

	c.Set(time.Unix(119, 0))
	assert.False(t, engine.Validate(rfcSecret, code), "two windows later")
}

func TestTOTP_Validate_Rejects(t *testing.T) {
	engine := NewTOTP(clock.NewFixed(time.Unix(59, 0)))

	tests := []struct {
		name      string
		secret    string
		candidate string
	}{
		{name: "wrong code", secret: rfcSecret, candidate: "287083"},
		{name: "short code", secret: rfcSecret, candidate: "28708"},
		{name: "long code", secret: rfcSecret, candidate: "2870820"},
		{name: "non digit", secret: rfcSecret, candidate: "28708a"},
		{name: "empty code", secret: rfcSecret, candidate: ""},
		{name: "bad secret", secret: "not base32!", candidate: "287082"},
		{name: "empty secret", secret: "", candidate: "287082"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, engine.Validate(tt.secret, tt.candidate))
		})
	}
}

func TestTOTP_GenerateAt_DeterministicAndPadded(t *testing.T) {
	engine := NewTOTP(clock.New())

	padded := 0
	for i := int64(0); i < 200; i++ {
		at := time.Unix(i*30, 0)
		a, err := engine.GenerateAt(rfcSecret, at, 0)
		require.NoError(t, err)
		assert.Len(t, a, Digits)

		b, err := engine.GenerateAt(rfcSecret, at, 0)
		require.NoError(t, err)
		assert.Equal(t, a, b)

		if strings.HasPrefix(a, "0") {
			padded++
		}
	}
	assert.Positive(t, padded, "leading zeros must be kept")
}

func TestTOTP_Validate_OffsetAcrossWindows(t *testing.T) {
	engine := NewTOTP(clock.New())

	for i := int64(2); i < 60; i++ {
		at := time.Unix(1700000000+i*7, 0)
		for off := -3; off <= 3; off++ {
			code, err := engine.GenerateAt(rfcSecret, at, off)
			require.NoError(t, err)

			want, err := totp.GenerateCodeCustom(rfcSecret, at.Add(time.Duration(off)*DefaultStep), totp.ValidateOpts{
				Period:    30,
				Digits:    pqotp.DigitsSix,
				Algorithm: pqotp.AlgorithmSHA1,
			})
			require.NoError(t, err)
			assert.Equal(t, want, code)

			accepted := engine.ValidateAt(rfcSecret, code, at)
			if off >= -1 && off <= 1 {
				assert.True(t, accepted, "offset %d at %d", off, at.Unix())
			} else if accepted {
				// distinct windows may collide on a 6 digit code
				near := false
				for w := -1; w <= 1; w++ {
					c, _ := engine.GenerateAt(rfcSecret, at, w)
					near = near || c == code
				}
				assert.True(t, near, "offset %d at %d", off, at.Unix())
			}
		}
	}
}

func TestTOTP_Validate_KeepsCandidateExact(t *testing.T) {
	engine := NewTOTP(clock.NewFixed(time.Unix(59, 0)))

	assert.True(t, engine.Validate(rfcSecret, "287082"))
	assert.False(t, engine.Validate(rfcSecret, " 287082"))
	assert.False(t, engine.Validate(rfcSecret, "287082 "))
}

func TestNormalizeSecret(t *testing.T) {
	s, err := NormalizeSecret("gezd gnbv gy3t qojq gezd gnbv gy3t qojq")
	require.NoError(t, err)
	assert.Equal(t, rfcSecret, s)

	s, err = NormalizeSecret("JBSWY3DPEHPK3PXP====")
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", s)

	_, err = NormalizeSecret("01890")
	assert.ErrorIs(t, err, ErrInvalidSecret)

	_, err = NormalizeSecret("  ")
	assert.ErrorIs(t, err, ErrInvalidSecret)
}

func TestProvisioner_Generate(t *testing.T) {
	p := NewProvisioner("GoFactor")

	secret, uri, err := p.Generate("abc123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "otpauth://totp/GoFactor:abc123?"))
	assert.Contains(t, uri, "secret="+secret)

	// 20 random bytes encode to 32 base32 characters
	norm, err := NormalizeSecret(secret)
	require.NoError(t, err)
	assert.Len(t, norm, 32)

	engine := NewTOTP(clock.New())
	code, err := engine.Generate(secret, 0)
	require.NoError(t, err)
	assert.True(t, engine.Validate(secret, code))
}
