package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHashService_HashAndVerify(t *testing.T) {
	svc := NewBcryptHashService(bcrypt.MinCost)

	hash, err := svc.Hash("secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"), "hash should be a bcrypt encoding")

	assert.True(t, svc.Verify("secret", hash))
	assert.False(t, svc.Verify("wrong", hash))
}

func TestBcryptHashService_UniqueSalts(t *testing.T) {
	svc := NewBcryptHashService(bcrypt.MinCost)

	hash1, err := svc.Hash("same-password")
	require.NoError(t, err)
	hash2, err := svc.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}

func TestBcryptHashService_CostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHashService(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHashService(99).cost)
	assert.Equal(t, 5, NewBcryptHashService(5).cost)
}

func TestBcryptHashService_MalformedHash(t *testing.T) {
	svc := NewBcryptHashService(bcrypt.MinCost)

	for _, hash := range []string{"", "not-a-hash", "$2a$04$short"} {
		assert.False(t, svc.Verify("secret", hash), "hash %q", hash)
	}
}

func TestArgon2HashService_HashAndVerify(t *testing.T) {
	svc := NewArgon2HashService()

	password := "SecureP@ssw0rd!"
	hash, err := svc.Hash(password)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v="), "hash should start with $argon2id$v=")
	assert.True(t, svc.Verify(password, hash))
	assert.False(t, svc.Verify("wrong-password", hash))
}

func TestArgon2HashService_UniqueSalts(t *testing.T) {
	svc := NewArgon2HashService()

	hash1, err := svc.Hash("same-password")
	require.NoError(t, err)
	hash2, err := svc.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "same password should produce different hashes (different salts)")
}

func TestArgon2HashService_MalformedHash(t *testing.T) {
	svc := NewArgon2HashService()

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"wrong part count", "$argon2id$v=19$m=65536"},
		{"wrong algorithm", "$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"bad version", "$argon2id$v=x$m=65536,t=1,p=4$c2FsdA$aGFzaA"},
		{"bad params", "$argon2id$v=19$m=a,t=b,p=c$c2FsdA$aGFzaA"},
		{"zero time", "$argon2id$v=19$m=65536,t=0,p=4$c2FsdA$aGFzaA"},
		{"bad salt", "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"},
		{"bad hash", "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, svc.Verify("password", tt.hash))
		})
	}
}

func TestNewHashService(t *testing.T) {
	t.Run("bcrypt primary", func(t *testing.T) {
		svc, err := NewHashService(HashAlgorithmBcrypt, bcrypt.MinCost)
		require.NoError(t, err)

		hash, err := svc.Hash("pw")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$2a$"))
		assert.True(t, svc.Verify("pw", hash))
	})

	t.Run("argon2id primary", func(t *testing.T) {
		svc, err := NewHashService(HashAlgorithmArgon2id, bcrypt.MinCost)
		require.NoError(t, err)

		hash, err := svc.Hash("pw")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
		assert.True(t, svc.Verify("pw", hash))
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := NewHashService("md5", bcrypt.MinCost)
		assert.Error(t, err)
	})
}

func TestMultiHashService_VerifiesEitherEncoding(t *testing.T) {
	svc, err := NewHashService(HashAlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)

	argonHash, err := NewArgon2HashService().Hash("pw")
	require.NoError(t, err)
	bcryptHash, err := NewBcryptHashService(bcrypt.MinCost).Hash("pw")
	require.NoError(t, err)

	assert.True(t, svc.Verify("pw", argonHash))
	assert.True(t, svc.Verify("pw", bcryptHash))
	assert.False(t, svc.Verify("pw", "plaintext-pw"))
}
