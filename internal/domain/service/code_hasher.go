package service

// CodeHasher hashes short-lived one-time codes before they touch storage, so
// a database leak never exposes a usable code.
type CodeHasher interface {
	// Hash returns the salted hash of a plaintext code.
	Hash(code string) (string, error)

	// Check reports whether the plaintext code matches the stored hash.
	Check(code, hash string) bool
}
