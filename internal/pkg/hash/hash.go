package hash

// Hash turns a plaintext into a digest and checks plaintexts against digests.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}
