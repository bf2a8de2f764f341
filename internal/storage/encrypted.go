package storage

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

var ErrDecrypt = errors.New("stored value could not be decrypted")

// Encrypted seals every value with XChaCha20-Poly1305 before handing it to the
// wrapped backend. The key name is bound as additional data so a value copied
// under another key fails to open.
type Encrypted struct {
	inner Storage
	aead  cipher.AEAD
}

func NewEncrypted(inner Storage, key []byte) (*Encrypted, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher failed: %w", err)
	}
	return &Encrypted{inner: inner, aead: aead}, nil
}

// NewEncryptedWithPassphrase derives the key with argon2id from passphrase and
// a per-install salt kept in the inner backend.
func NewEncryptedWithPassphrase(ctx context.Context, inner Storage, passphrase string) (*Encrypted, error) {
	salt, err := loadOrCreateSalt(ctx, inner)
	if err != nil {
		return nil, err
	}
	return NewEncrypted(inner, DeriveKey(passphrase, salt))
}

func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, chacha20poly1305.KeySize)
}

func loadOrCreateSalt(ctx context.Context, inner Storage) ([]byte, error) {
	salt, err := inner.Get(ctx, saltKey)
	if err == nil && len(salt) == 16 {
		return salt, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("read salt failed: %w", err)
	}

	salt = make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt failed: %w", err)
	}
	if err := inner.Set(ctx, saltKey, salt); err != nil {
		return nil, fmt.Errorf("store salt failed: %w", err)
	}
	return salt, nil
}

func (e *Encrypted) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := e.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	ns := e.aead.NonceSize()
	if len(sealed) < ns+e.aead.Overhead() {
		return nil, ErrDecrypt
	}
	plain, err := e.aead.Open(nil, sealed[:ns], sealed[ns:], []byte(key))
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

func (e *Encrypted) Set(ctx context.Context, key string, value []byte) error {
	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(value)+e.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce failed: %w", err)
	}
	return e.inner.Set(ctx, key, e.aead.Seal(nonce, nonce, value, []byte(key)))
}

func (e *Encrypted) Delete(ctx context.Context, key string) error {
	return e.inner.Delete(ctx, key)
}
