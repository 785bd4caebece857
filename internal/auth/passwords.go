package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Password hashing uses argon2id. The parameters are encoded into the hash
// string, so they can be raised later without invalidating stored hashes.
const (
	argonMemory      = 64 * 1024
	argonIterations  = 3
	argonParallelism = 2
	argonSaltLen     = 16
	argonKeyLen      = 32
)

func HashPassword(plaintext string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, argonIterations, argonMemory, argonParallelism, argonKeyLen)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonIterations,
		argonParallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

func VerifyPassword(hash, plaintext string) (bool, error) {
	var (
		version            int
		memory, iterations uint32
		parallelism        uint8
		rest               string
	)
	n, err := fmt.Sscanf(hash, "$argon2id$v=%d$m=%d,t=%d,p=%d$%s", &version, &memory, &iterations, &parallelism, &rest)
	if err != nil || n != 5 {
		return false, errors.New("invalid argon2id hash format")
	}
	if version != argon2.Version {
		return false, errors.New("unsupported argon2 version")
	}

	saltB64, keyB64, ok := strings.Cut(rest, "$")
	if !ok {
		return false, errors.New("invalid argon2id hash format")
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(saltB64)
	if err != nil || len(salt) == 0 {
		return false, errors.New("invalid argon2 salt")
	}
	key, err := b64.DecodeString(keyB64)
	if err != nil || len(key) == 0 {
		return false, errors.New("invalid argon2 key")
	}

	otherKey := argon2.IDKey([]byte(plaintext), salt, iterations, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, otherKey) == 1, nil
}
