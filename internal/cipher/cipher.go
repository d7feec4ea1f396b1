// Package cipher encrypts and decrypts message text with a process-wide
// shared secret. Anything persisted by the store goes through Encrypt first;
// anything leaving the server goes through Decrypt.
package cipher

import (
	"crypto/aes"
	gocipher "crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize  = 16
	keySize   = 32
	kdfRounds = 4096
)

var ErrMalformed = errors.New("cipher: malformed ciphertext")

// Cipher derives an AES-256 key from a shared passphrase and produces
// salted, nonce-varying ciphertext: encrypting the same plaintext twice
// yields different outputs.
type Cipher struct {
	secret []byte
}

// New creates a Cipher from the shared secret. An empty secret is an error:
// callers must not fall back to storing plaintext.
func New(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("cipher: secret key is empty")
	}
	return &Cipher{secret: []byte(secret)}, nil
}

func (c *Cipher) aead(salt []byte) (gocipher.AEAD, error) {
	key := pbkdf2.Key(c.secret, salt, kdfRounds, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return gocipher.NewGCM(block)
}

// Encrypt returns base64(salt || nonce || sealed) for non-empty plaintext.
// Empty input passes through unchanged so optional fields stay optional.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cipher: salt generation failed: %w", err)
	}

	aead, err := c.aead(salt)
	if err != nil {
		return "", fmt.Errorf("cipher: key setup failed: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("cipher: nonce generation failed: %w", err)
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)

	raw := make([]byte, 0, saltSize+len(nonce)+len(sealed))
	raw = append(raw, salt...)
	raw = append(raw, nonce...)
	raw = append(raw, sealed...)
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decrypt inverts Encrypt. Empty input passes through unchanged. Malformed
// or tampered ciphertext returns "" with ErrMalformed; callers treat this as
// a recoverable per-field condition, not a fatal one.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(raw) < saltSize {
		return "", ErrMalformed
	}

	salt, rest := raw[:saltSize], raw[saltSize:]
	aead, err := c.aead(salt)
	if err != nil {
		return "", fmt.Errorf("cipher: key setup failed: %w", err)
	}
	if len(rest) < aead.NonceSize() {
		return "", ErrMalformed
	}

	nonce, sealed := rest[:aead.NonceSize()], rest[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return string(plaintext), nil
}
