package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Stored format: pbkdf2$iterations$saltBase64$hashBase64
const (
	hashAlgorithm     = "pbkdf2"
	defaultIterations = 210_000
	saltLength        = 16
	keyLength         = 32
)

var errMalformedHash = errors.New("malformed password hash")

// HashPassword derives a PBKDF2-SHA256 digest from the password and a
// fresh random salt, and encodes algorithm, iterations, salt, and hash
// into a single delimited string.
func HashPassword(password string) (string, error) {
	return hashPassword(password, defaultIterations)
}

func hashPassword(password string, iterations int) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)

	return fmt.Sprintf(
		"%s$%d$%s$%s",
		hashAlgorithm,
		iterations,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword re-derives the digest with the stored salt and iteration
// count and compares it in constant time. It returns false for any
// malformed stored value rather than an error, so callers can treat every
// failure as invalid credentials.
func VerifyPassword(password, stored string) bool {
	iterations, salt, expected, err := parseHash(stored)
	if err != nil {
		return false
	}

	actual := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(actual, expected) == 1
}

func parseHash(stored string) (int, []byte, []byte, error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 4 || parts[0] != hashAlgorithm {
		return 0, nil, nil, errMalformedHash
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations < 1 {
		return 0, nil, nil, errMalformedHash
	}

	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return 0, nil, nil, errMalformedHash
	}

	hash, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil || len(hash) == 0 {
		return 0, nil, nil, errMalformedHash
	}

	return iterations, salt, hash, nil
}
