// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	saltLength          = 16

	refreshTokenBytes = 32
)

var errMalformedHash = errors.New("malformed password hash")

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

func (p argonParams) current() bool {
	return p.memory == argonMemory &&
		p.time == argonTime &&
		p.threads == argonThreads
}

// HashPassword encodes password as a PHC-style argon2id string.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(password), salt,
		argonTime, argonMemory, argonThreads, argonKeyLen,
	)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword checks password against encoded. When the hash was made
// with outdated parameters and the password matches, a fresh hash is
// returned as rehash.
func VerifyPassword(password, encoded string) (ok bool, rehash string, err error) {
	params, salt, want, err := parseHash(encoded)
	if err != nil {
		return false, "", err
	}

	//nolint:gosec // G115: key length is bounded by parseHash
	got := argon2.IDKey(
		[]byte(password), salt,
		params.time, params.memory, params.threads, uint32(len(want)),
	)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return false, "", nil
	}

	if params.current() && len(want) == int(argonKeyLen) {
		return true, "", nil
	}

	fresh, hashErr := HashPassword(password)
	if hashErr != nil {
		//nolint:nilerr // verification succeeded; rehash is opportunistic
		return true, "", nil
	}
	return true, fresh, nil
}

var timingDummy = mustHash("timing-equaliser")

func mustHash(s string) string {
	h, err := HashPassword(s)
	if err != nil {
		panic(fmt.Sprintf("security: hash dummy password: %v", err))
	}
	return h
}

// VerifyPasswordTimingSafe does the same amount of work whether or not
// the account exists, so sign-in cannot be used to enumerate emails.
func VerifyPasswordTimingSafe(
	password string,
	encoded *string,
) (bool, string, error) {
	if encoded == nil || *encoded == "" {
		_, _, _ = VerifyPassword(password, timingDummy) //nolint:errcheck // timing only
		return false, "", nil
	}
	return VerifyPassword(password, *encoded)
}

func parseHash(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: %w", errMalformedHash, err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("incompatible argon2 version %d", version)
	}

	if _, err := fmt.Sscanf(
		parts[3], "m=%d,t=%d,p=%d",
		&p.memory, &p.time, &p.threads,
	); err != nil {
		return p, nil, nil, fmt.Errorf("%w: %w", errMalformedHash, err)
	}
	if p.time == 0 || p.memory == 0 || p.threads == 0 {
		return p, nil, nil, errMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) == 0 || len(key) > 128 {
		return p, nil, nil, errMalformedHash
	}

	return p, salt, key, nil
}

// GenerateRefreshToken returns an opaque url-safe token. Only its
// HashToken digest is persisted.
func GenerateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func CompareTokenHash(token, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(hash)) == 1
}
