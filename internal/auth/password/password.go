// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

// Package password provides password hashing and validation.
package password

import (
	"errors"
	"strings"
)

// Hasher is the interface that wraps the GenerateHash method.
type Hasher interface {
	GenerateHash(password string) (string, error)
}

// Validator is the interface that wraps the ValidateHash method.
type Validator interface {
	ValidateHash(passwordHash string, password string) error
}

var (
	// Bcrypt is the bcrypt implementation of the Hasher interface.
	Bcrypt = NewBcryptHasher(nil)
	// BcryptVal is the bcrypt implementation of the Validator interface.
	BcryptVal = BcryptValidator{}
	// Sha256 is the salted SHA-256 implementation of the Hasher interface,
	// kept for rows imported from the legacy datastore.
	Sha256 = NewSha256Hasher()
	// Sha256Val is the salted SHA-256 implementation of the Validator interface.
	Sha256Val = Sha256Validator{DefaultSha256Config}
	// DefaultHasher is the hasher used for new and updated passwords.
	DefaultHasher = NewBcryptHasher(nil)
)

// GenerateHash generates a hash of the given password using the provided hasher algorithm.
func GenerateHash(h Hasher, password string) (string, error) {
	if h == nil {
		return "", errors.New("missing hasher")
	}
	return h.GenerateHash(password)
}

// DetermineValidatorAlgorithm determines the validator algorithm based on the given hash.
func DetermineValidatorAlgorithm(hash string) Validator {
	switch {
	case strings.HasPrefix(hash, "$2a") || strings.HasPrefix(hash, "$2b"):
		return BcryptVal
	case len(hash) == sha256HashLength:
		return Sha256Val
	default:
		return nil
	}
}

// ValidatorFunction is a function type that validates a password hash against a password.
type ValidatorFunction func(password string) error

// GetValidatorFunc determines the validator function based on the given hash.
func GetValidatorFunc(hash string) ValidatorFunction {
	fn := DetermineValidatorAlgorithm(hash)

	f := func(password string) error {
		if fn == nil {
			return ErrUnknownHashAlgorithm
		}

		return fn.ValidateHash(hash, password)
	}
	return f
}

// ValidateHash validates the given password hash against the given password using the provided validator algorithm.
func ValidateHash(v Validator, hash string, password string) error {
	if v == nil {
		return errors.New("missing validator")
	}
	return v.ValidateHash(hash, password)
}
