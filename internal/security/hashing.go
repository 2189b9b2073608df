package security

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords using bcrypt. Callers must not log or
// persist plaintext passwords.
type Hasher struct {
	Cost int

	// dummy is a hash of a fixed placeholder at Cost, compared against when
	// the account does not exist.
	dummy []byte
}

// NewHasher returns a Hasher with the given bcrypt cost (4–31).
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("medsupply-no-such-account"), cost)
	if err != nil {
		// Only fails for out-of-range cost, which is clamped above.
		panic(err)
	}
	return &Hasher{Cost: cost, dummy: dummy}
}

// Hash produces a bcrypt hash of password. Returns the hash as a string suitable for storage.
func (h *Hasher) Hash(password []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare verifies password against the stored hash. Returns nil if they match;
// returns an error (including bcrypt.ErrMismatchedHashAndPassword) if they do not or on invalid hash.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}

// CompareMissing spends one bcrypt comparison against a fixed hash and always
// reports a mismatch. Login calls it for unknown addresses so both failure
// paths cost the same.
func (h *Hasher) CompareMissing(password []byte) error {
	if err := bcrypt.CompareHashAndPassword(h.dummy, password); err != nil {
		return err
	}
	return bcrypt.ErrMismatchedHashAndPassword
}
