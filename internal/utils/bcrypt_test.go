package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	password := "password123"
	hashedPassword, err := HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hashedPassword)
	assert.NotEqual(t, password, hashedPassword)

	cost, err := bcrypt.Cost([]byte(hashedPassword))
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, cost)
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("password123")
	require.NoError(t, err)
	second, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestCheckPasswordHash(t *testing.T) {
	password := "password123"
	hashedPassword, _ := HashPassword(password)

	assert.True(t, CheckPasswordHash(password, hashedPassword))
	assert.False(t, CheckPasswordHash("wrongpassword", hashedPassword))
}

func TestCheckPasswordHash_InvalidHash(t *testing.T) {
	assert.False(t, CheckPasswordHash("password123", "invalidhash"))
	assert.False(t, CheckPasswordHash("password123", ""))
	assert.False(t, CheckPasswordHash("password123", "$2a$10$truncated"))
	assert.False(t, CheckPasswordHash("password123", "$argon2id$v=19$garbage"))
}

func TestCheckPasswordHash_PlaintextNeverMatches(t *testing.T) {
	// a stored plaintext must not authenticate
	assert.False(t, CheckPasswordHash("password123", "password123"))
}

func TestNewPasswordHasher_Argon2id(t *testing.T) {
	hasher, err := NewPasswordHasher(HasherArgon2id, 0)
	require.NoError(t, err)

	hash, err := hasher.Hash("password123")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.True(t, hasher.Verify("password123", hash))
	assert.False(t, hasher.Verify("wrongpassword", hash))
}

func TestNewPasswordHasher_VerifiesEveryAlgorithm(t *testing.T) {
	bcryptHasher, err := NewPasswordHasher(HasherBcrypt, bcrypt.MinCost)
	require.NoError(t, err)
	argonHasher, err := NewPasswordHasher(HasherArgon2id, 0)
	require.NoError(t, err)

	legacy, err := bcryptHasher.Hash("secret1")
	require.NoError(t, err)
	assert.True(t, argonHasher.Verify("secret1", legacy))

	modern, err := argonHasher.Hash("secret1")
	require.NoError(t, err)
	assert.True(t, bcryptHasher.Verify("secret1", modern))
}

func TestNewPasswordHasher_Errors(t *testing.T) {
	_, err := NewPasswordHasher("md5", 0)
	assert.Error(t, err)

	_, err = NewPasswordHasher(HasherBcrypt, 99)
	assert.Error(t, err)
}
