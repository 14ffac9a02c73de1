// Package crypto seals small secrets, such as API keys, for storage at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	// Prefix marks a sealed value.
	Prefix = "vcs1:"

	// Argon2id parameters (RFC 9106 second recommended option)
	Argon2Time    = 3
	Argon2Memory  = 64 * 1024 // 64 MB
	Argon2Threads = 4
	Argon2KeyLen  = 32 // AES-256

	SaltSize  = 16
	NonceSize = 12 // GCM standard nonce size
)

var (
	ErrNotSealed     = errors.New("value is not sealed")
	ErrMalformed     = errors.New("sealed value is malformed")
	ErrDecryptFailed = errors.New("decryption failed: wrong secret or corrupted data")
	ErrEmptySecret   = errors.New("sealing secret is empty")
)

// Sealer encrypts values with AES-256-GCM under a key derived from a
// passphrase with Argon2id. Each sealed value carries its own salt.
type Sealer struct {
	secret string
}

// NewSealer creates a sealer for the given passphrase.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Sealer{secret: secret}, nil
}

// DeriveKey derives an AES-256 key from a passphrase using Argon2id.
func DeriveKey(secret string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(secret),
		salt,
		Argon2Time,
		Argon2Memory,
		Argon2Threads,
		Argon2KeyLen,
	)
}

// Seal encrypts plaintext and returns Prefix + base64(salt | nonce | ciphertext).
func (s *Sealer) Seal(plaintext string) (string, error) {
	buf := make([]byte, SaltSize+NonceSize)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("generate salt and nonce: %w", err)
	}
	salt, nonce := buf[:SaltSize], buf[SaltSize:]

	gcm, err := newGCM(DeriveKey(s.secret, salt))
	if err != nil {
		return "", err
	}

	out := gcm.Seal(buf, nonce, []byte(plaintext), nil)
	return Prefix + base64.RawStdEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	if !IsSealed(sealed) {
		return "", ErrNotSealed
	}

	data, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(sealed, Prefix))
	if err != nil || len(data) < SaltSize+NonceSize {
		return "", ErrMalformed
	}
	salt := data[:SaltSize]
	nonce := data[SaltSize : SaltSize+NonceSize]
	ciphertext := data[SaltSize+NonceSize:]

	gcm, err := newGCM(DeriveKey(s.secret, salt))
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

// IsSealed reports whether v looks like a sealed value.
func IsSealed(v string) bool {
	return strings.HasPrefix(v, Prefix)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return gcm, nil
}
