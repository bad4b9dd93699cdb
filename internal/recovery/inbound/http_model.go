package inbound

import (
	"github.com/shandysiswandi/gofactor/internal/pkg/valueobject"
	"github.com/shandysiswandi/gofactor/internal/recovery/usecase"
)

type PublicKey struct {
	X string `json:"x" example:"3b1f...e9"`
	Y string `json:"y" example:"c07a...14"`
}

func (p PublicKey) input() usecase.PublicKey {
	return usecase.PublicKey{X: p.X, Y: p.Y}
}

type Signature struct {
	R string `json:"r"`
	S string `json:"s"`
	V string `json:"v"`
}

func (s Signature) input() usecase.Signature {
	return usecase.Signature{R: s.R, S: s.S, V: s.V}
}

type RegisterRequest struct {
	PubKey PublicKey `json:"pubKey"`
	Sig    Signature `json:"sig"`
	Number string    `json:"number" example:"+15551234567"`
}

type RegisterResponse struct {
	Success    bool `json:"success,omitempty"`
	Registered bool `json:"registered,omitempty"`
}

func (r RegisterResponse) Message() string {
	if r.Registered {
		return "Address is already registered."
	}
	return "Registration received. Start a verification to confirm it."
}

type StartVerificationRequest struct {
	Address string `json:"address"`
}

type StartVerificationResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
}

func (StartVerificationResponse) Message() string {
	return "A verification code has been sent."
}

type VerifyRequest struct {
	Address string         `json:"address"`
	Code    string         `json:"code" example:"482913"`
	Data    map[string]any `json:"data,omitempty" swaggertype:"object"`
}

type VerifyResponse struct {
	Data valueobject.JSONMap `json:"data" swaggertype:"object"`
}

func (VerifyResponse) Message() string {
	return "Verification successful."
}

type RegisterAuthenticatorRequest struct {
	PubKey    PublicKey `json:"pubKey"`
	Sig       Signature `json:"sig"`
	SecretKey string    `json:"secretKey,omitempty" example:"JBSWY3DPEHPK3PXP"`
}

type RegisterAuthenticatorResponse struct {
	Success    bool   `json:"success,omitempty"`
	Registered bool   `json:"registered,omitempty"`
	Secret     string `json:"secret,omitempty"`
	QRData     string `json:"qrData,omitempty"`
}

func (r RegisterAuthenticatorResponse) Message() string {
	if r.Registered {
		return "Authenticator is already registered."
	}
	return "Authenticator registered. Verify a code to confirm it."
}

type DeleteAuthenticatorRequest struct {
	PubKey PublicKey `json:"pubKey"`
	Sig    Signature `json:"sig"`
}

type DeleteAuthenticatorResponse struct {
	Success bool `json:"success"`
}

func (DeleteAuthenticatorResponse) Message() string {
	return "Authenticator deleted."
}
