package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrHashingFailed = errors.New("password hashing failed")
)

// Hasher names accepted by NewHasher.
const (
	HasherSHA256 = "sha256"
	HasherBcrypt = "bcrypt"
)

// Hasher turns secrets (passwords, security answers) into one-way digests.
type Hasher interface {
	Hash(input string) (string, error)
	Verify(input, digest string) bool
}

// NewHasher builds the hasher named in configuration.
func NewHasher(name string, bcryptCost int) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", HasherSHA256:
		return NewSHA256Hasher(), nil
	case HasherBcrypt:
		return NewBcryptHasher(bcryptCost), nil
	default:
		return nil, fmt.Errorf("unknown hasher %q", name)
	}
}

// NormalizeAnswer makes security answers compare case-insensitively.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(answer)
}

type sha256Hasher struct{}

// NewSHA256Hasher returns the deterministic hasher. Digests are lowercase hex
// SHA-256 of the UTF-8 input.
func NewSHA256Hasher() Hasher {
	return sha256Hasher{}
}

func (sha256Hasher) Hash(input string) (string, error) {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:]), nil
}

func (h sha256Hasher) Verify(input, digest string) bool {
	computed, _ := h.Hash(input)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a new password hasher using bcrypt
func NewBcryptHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(input string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(input), b.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailed, err)
	}
	return string(bytes), nil
}

func (b *bcryptHasher) Verify(input, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(input)) == nil
}
