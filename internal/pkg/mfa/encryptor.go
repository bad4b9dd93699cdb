package mfa

// Encryptor seals and opens factor secrets for a scope.
type Encryptor interface {
	Encrypt(plaintext []byte, scope Scope) ([]byte, error)
	Decrypt(ciphertext []byte, scope Scope) ([]byte, error)

	// EncryptString and DecryptString carry ciphertexts as base64 text.
	EncryptString(plaintext string, scope Scope) (string, error)
	DecryptString(ciphertext string, scope Scope) (string, error)
}

// KeyProvider returns the AES-256 key to use for a scope.
type KeyProvider interface {
	Key(scope Scope) ([]byte, error)
}
