// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 OTPGate

// Package secret encrypts TOTP seeds at rest.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	logger "log/slog"

	"github.com/otpgate/otpgate-api/internal/config"
)

// EncryptionError represents an error during encryption/decryption
type EncryptionError struct {
	Operation string
	Err       error
}

func (e *EncryptionError) Error() string {
	return fmt.Sprintf("encryption %s error: %v", e.Operation, e.Err)
}

func (e *EncryptionError) Unwrap() error {
	return e.Err
}

// Encryption handles encryption and decryption of TOTP seeds with
// AES-256-GCM.
type Encryption struct {
	key []byte
}

// NewEncryption builds an Encryption from the configured base64 key.
func NewEncryption() (*Encryption, error) {
	keyString := config.ServiceSeedEncryptionKey.GetString()
	if keyString == "" {
		return nil, &EncryptionError{
			Operation: "initialization",
			Err:       errors.New("seed encryption key not configured"),
		}
	}

	key, err := base64.StdEncoding.DecodeString(keyString)
	if err != nil {
		return nil, &EncryptionError{
			Operation: "key_decode",
			Err:       fmt.Errorf("failed to decode encryption key: %w", err),
		}
	}

	if len(key) != 32 {
		return nil, &EncryptionError{
			Operation: "key_validation",
			Err:       fmt.Errorf("encryption key must be 32 bytes for AES-256, got %d bytes", len(key)),
		}
	}

	return &Encryption{key: key}, nil
}

// Encrypt encrypts the given plaintext using AES-256-GCM. The nonce is
// prepended to the ciphertext and the result is base64 encoded for storage.
func (e *Encryption) Encrypt(plaintext []byte) (string, error) {
	if len(plaintext) == 0 {
		return "", &EncryptionError{
			Operation: "encrypt",
			Err:       errors.New("plaintext cannot be empty"),
		}
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return "", &EncryptionError{
			Operation: "encrypt",
			Err:       fmt.Errorf("failed to create AES cipher: %w", err),
		}
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", &EncryptionError{
			Operation: "encrypt",
			Err:       fmt.Errorf("failed to create GCM: %w", err),
		}
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", &EncryptionError{
			Operation: "encrypt",
			Err:       fmt.Errorf("failed to generate nonce: %w", err),
		}
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	encoded := base64.StdEncoding.EncodeToString(ciphertext)

	logger.Debug("Successfully encrypted seed",
		"plaintext_length", len(plaintext),
		"ciphertext_length", len(ciphertext),
	)
	return encoded, nil
}

// Decrypt decrypts a base64-encoded, nonce-prefixed AES-256-GCM ciphertext.
func (e *Encryption) Decrypt(encodedCiphertext string) ([]byte, error) {
	if encodedCiphertext == "" {
		return nil, &EncryptionError{
			Operation: "decrypt",
			Err:       errors.New("ciphertext cannot be empty"),
		}
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encodedCiphertext)
	if err != nil {
		return nil, &EncryptionError{
			Operation: "decrypt",
			Err:       fmt.Errorf("failed to decode base64 ciphertext: %w", err),
		}
	}

	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, &EncryptionError{
			Operation: "decrypt",
			Err:       fmt.Errorf("failed to create AES cipher: %w", err),
		}
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, &EncryptionError{
			Operation: "decrypt",
			Err:       fmt.Errorf("failed to create GCM: %w", err),
		}
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, &EncryptionError{
			Operation: "decrypt",
			Err:       errors.New("ciphertext too short"),
		}
	}

	nonce, sealed := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, &EncryptionError{
			Operation: "decrypt",
			Err:       fmt.Errorf("failed to decrypt: %w", err),
		}
	}

	return plaintext, nil
}

// GenerateEncryptionKey returns a fresh base64-encoded 32-byte key, for
// provisioning new deployments.
func GenerateEncryptionKey() (string, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", &EncryptionError{
			Operation: "key_generation",
			Err:       fmt.Errorf("failed to generate key: %w", err),
		}
	}
	return base64.StdEncoding.EncodeToString(key), nil
}
