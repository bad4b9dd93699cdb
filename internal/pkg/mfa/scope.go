package mfa

// Purpose names what a ciphertext protects, so one cannot be decrypted as another.
type Purpose string

const (
	// PurposeTOTPSecret scopes encryption to authenticator secrets.
	PurposeTOTPSecret Purpose = "totp_secret"
)

// Scope is bound into every ciphertext as AES-GCM associated data.
type Scope struct {
	// Subject is the owner of the secret, the binding address.
	Subject string
	Purpose Purpose
}
