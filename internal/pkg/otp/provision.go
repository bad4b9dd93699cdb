package otp

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Provisioner creates authenticator secrets and their otpauth:// URIs.
type Provisioner struct {
	issuer string
}

// NewProvisioner returns a Provisioner labelling keys with issuer.
func NewProvisioner(issuer string) *Provisioner {
	return &Provisioner{issuer: issuer}
}

// Generate creates a random base32 secret for accountName along with its provisioning URI.
func (p *Provisioner) Generate(accountName string) (secret string, uri string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.issuer,
		AccountName: accountName,
		Period:      uint(DefaultStep.Seconds()),
		SecretSize:  20, // RFC 4226 recommendation
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}

	return key.Secret(), key.URL(), nil
}
