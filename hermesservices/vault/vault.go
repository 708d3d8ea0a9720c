package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

var ErrCipherTextTooShort = errors.New("cipher text too short")

// New expects a 16, 24 or 32 byte AES key.
func New(key []byte) (Vault, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return Vault{}, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return Vault{}, err
	}

	return Vault{
		aead: aead,
	}, nil
}

// NewFromPassphrase derives a 32 byte key from an arbitrary secret such as
// APP_KEY.
func NewFromPassphrase(passphrase string) (Vault, error) {
	key := sha256.Sum256([]byte(passphrase))

	return New(key[:])
}

// Vault seals payloads with AES-GCM. The output is URL safe base64 of the
// nonce followed by the sealed bytes.
type Vault struct {
	aead cipher.AEAD
}

func (v Vault) Encrypt(text []byte) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	sealed := v.aead.Seal(nonce, nonce, text, nil)

	return []byte(base64.URLEncoding.EncodeToString(sealed)), nil
}

func (v Vault) Decrypt(raw []byte) ([]byte, error) {
	sealed, err := base64.URLEncoding.DecodeString(string(raw))
	if err != nil {
		return nil, err
	}

	if len(sealed) < v.aead.NonceSize() {
		return nil, ErrCipherTextTooShort
	}

	nonce, sealed := sealed[:v.aead.NonceSize()], sealed[v.aead.NonceSize():]

	text, err := v.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}

	return text, nil
}
