// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

// Package password provides password hashing and validation.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// Sha256Config contains the settings specific for salted SHA-256 hashing.
type Sha256Config struct {
	SaltLength int
}

// Sha256Hasher is the salted SHA-256 implementation of the Hasher interface.
type Sha256Hasher struct {
	*Sha256Config
}

const saltLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultSha256Config is the default configuration for salted SHA-256 hashing.
var DefaultSha256Config = &Sha256Config{SaltLength: 16}

// sha256HashLength is salt plus hex digest, the stored width of a legacy hash.
const sha256HashLength = 16 + sha256.Size*2

// NewSha256Hasher returns a new salted SHA-256 hasher with the default configuration.
func NewSha256Hasher() *Sha256Hasher {
	return &Sha256Hasher{Sha256Config: DefaultSha256Config}
}

// Hash returns the SHA-256 byte digest of the given password and salt.
func (h *Sha256Hasher) Hash(password string, salt []byte) []byte {
	m := sha256.New()
	m.Write(salt)
	m.Write([]byte(password))
	return m.Sum(nil)
}

// GenerateHash generates a salted SHA-256 hash of the given password.
func (h *Sha256Hasher) GenerateHash(password string) (string, error) {
	salt, err := h.generateSalt()
	if err != nil {
		return "", err
	}
	key := h.Hash(password, []byte(salt))
	return fmt.Sprintf("%s%s", salt, hex.EncodeToString(key)), nil
}

// generateSalt generates a random salt compatible with the legacy datastore format.
func (h *Sha256Hasher) generateSalt() (string, error) {
	salt := make([]byte, h.SaltLength)

	_, err := rand.Read(salt)
	if err != nil {
		return "", err
	}

	for i := range salt {
		salt[i] = saltLetters[salt[i]%byte(len(saltLetters))]
	}

	return string(salt), nil
}

// Sha256Validator is the salted SHA-256 implementation of the Validator interface.
type Sha256Validator struct {
	*Sha256Config
}

// ValidateHash validates the given password hash against the given password.
// It returns an error if the password is invalid.
func (v Sha256Validator) ValidateHash(passwordHash string, password string) error {
	if len(passwordHash) != sha256HashLength {
		return ErrUnknownHashAlgorithm
	}
	salt := passwordHash[0:v.SaltLength]
	hash := passwordHash[v.SaltLength:]

	key := NewSha256Hasher().Hash(password, []byte(salt))

	bytesHash, err := hex.DecodeString(hash)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare(key, bytesHash) == 1 {
		return nil
	}
	return ErrMismatchedHashAndPassword
}
