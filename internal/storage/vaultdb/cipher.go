package vaultdb

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
)

// cipher seals and opens sensitive strings with nacl/secretbox. The
// 24-byte random nonce is prepended to the ciphertext and the whole blob
// stored base64-encoded.
type cipher struct {
	key [32]byte
}

// loadOrCreateCipher reads the secret key file, generating one on first
// use. The key file is created 0600; parent directories are created as
// needed.
func loadOrCreateCipher(keyPath string) (*cipher, error) {
	c := &cipher{}

	data, err := os.ReadFile(keyPath)
	if err == nil {
		raw, err := base64.StdEncoding.DecodeString(string(data))
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("key file %s is corrupt", keyPath)
		}
		copy(c.key[:], raw)
		return c, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read key file %s: %w", keyPath, err)
	}

	if _, err := rand.Read(c.key[:]); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(keyPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(c.key[:])
	if err := os.WriteFile(keyPath, []byte(encoded), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write key file %s: %w", keyPath, err)
	}

	return c, nil
}

// seal encrypts a plaintext string. Empty input stays empty.
func (c *cipher) seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// open decrypts a sealed string. Empty input stays empty.
func (c *cipher) open(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(raw) < 24 {
		return "", fmt.Errorf("ciphertext too short")
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])

	plaintext, ok := secretbox.Open(nil, raw[24:], &nonce, &c.key)
	if !ok {
		return "", fmt.Errorf("decryption failed: wrong key or corrupt data")
	}
	return string(plaintext), nil
}
