package otp

import (
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/shandysiswandi/gofactor/internal/pkg/clock"
)

const (
	// DefaultStep is the length of one TOTP time window.
	DefaultStep = 30 * time.Second
	// Digits is the length of every generated code.
	Digits = 6
	// DefaultSkew is the number of windows accepted on each side of the current one.
	DefaultSkew = 1
)

// ErrInvalidSecret is returned when a secret is not valid base32.
var ErrInvalidSecret = errors.New("otp: secret is not valid base32")

// TOTP generates and validates time-based codes against a clock.
type TOTP struct {
	clock clock.Clocker
	step  time.Duration
	skew  uint
}

// NewTOTP returns an engine with a 30 second step and a skew of one window.
func NewTOTP(c clock.Clocker) *TOTP {
	return &TOTP{clock: c, step: DefaultStep, skew: DefaultSkew}
}

func (o *TOTP) opts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(o.step / time.Second),
		Skew:      o.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Generate returns the code for the current window shifted by windowOffset.
func (o *TOTP) Generate(secret string, windowOffset int) (string, error) {
	return o.GenerateAt(secret, o.clock.Now(), windowOffset)
}

// GenerateAt returns the code for the window containing at, shifted by windowOffset.
func (o *TOTP) GenerateAt(secret string, at time.Time, windowOffset int) (string, error) {
	s, err := NormalizeSecret(secret)
	if err != nil {
		return "", err
	}

	return totp.GenerateCodeCustom(s, at.Add(time.Duration(windowOffset)*o.step), o.opts())
}

// Validate reports whether candidate matches the previous, current or next window.
// Malformed secrets and candidates simply fail.
func (o *TOTP) Validate(secret, candidate string) bool {
	return o.ValidateAt(secret, candidate, o.clock.Now())
}

// ValidateAt is Validate evaluated at the given instant.
func (o *TOTP) ValidateAt(secret, candidate string, at time.Time) bool {
	// exact length only, the library would trim surrounding spaces
	if len(candidate) != Digits {
		return false
	}

	s, err := NormalizeSecret(secret)
	if err != nil {
		return false
	}

	ok, err := totp.ValidateCustom(candidate, s, at, o.opts())
	return ok && err == nil
}

// NormalizeSecret upper-cases a base32 secret and drops spaces and padding.
// It fails when the result does not decode.
func NormalizeSecret(secret string) (string, error) {
	s := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(secret), " ", ""))
	s = strings.TrimRight(s, "=")
	if s == "" {
		return "", ErrInvalidSecret
	}

	if _, err := totp.GenerateCodeCustom(s, time.Unix(0, 0), totp.ValidateOpts{
		Period:    uint(DefaultStep / time.Second),
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}); err != nil {
		return "", ErrInvalidSecret
	}

	return s, nil
}
