package utils

import (
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"

	// DefaultBcryptCost is the number of bcrypt rounds used for new hashes
	DefaultBcryptCost = 10

	// MaxPasswordBytes is the longest password bcrypt accepts
	MaxPasswordBytes = 72
)

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type passwordHasher struct {
	algorithm  string
	bcryptCost int
	argon      *argon2id.Params
}

// NewPasswordHasher returns a hasher producing algorithm digests. Verify
// accepts digests of every supported algorithm.
func NewPasswordHasher(algorithm string, bcryptCost int) (PasswordHasher, error) {
	switch algorithm {
	case "", HasherBcrypt:
		algorithm = HasherBcrypt
	case HasherArgon2id:
	default:
		return nil, fmt.Errorf("unsupported password hasher %q", algorithm)
	}
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &passwordHasher{algorithm: algorithm, bcryptCost: bcryptCost, argon: argon2id.DefaultParams}, nil
}

func (h *passwordHasher) Hash(password string) (string, error) {
	if h.algorithm == HasherArgon2id {
		hash, err := argon2id.CreateHash(password, h.argon)
		if err != nil {
			return "", fmt.Errorf("failed to hash password: %w", err)
		}
		return hash, nil
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// Verify fails closed: malformed or unknown digests never match
func (h *passwordHasher) Verify(password, hash string) bool {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		match, err := argon2id.ComparePasswordAndHash(password, hash)
		return err == nil && match
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	default:
		return false
	}
}

var defaultHasher = &passwordHasher{algorithm: HasherBcrypt, bcryptCost: DefaultBcryptCost, argon: argon2id.DefaultParams}

// HashPassword hashes a password with bcrypt at the default cost
func HashPassword(password string) (string, error) {
	return defaultHasher.Hash(password)
}

// CheckPasswordHash checks a password against any supported hash
func CheckPasswordHash(password, hash string) bool {
	return defaultHasher.Verify(password, hash)
}
