package repository

// PasswordHasher is the opaque credential-hashing capability the orchestrator
// depends on. Implementations must be one-way; Verify must not leak whether a
// failure came from a malformed encoding or a mismatch.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}
