// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

package helper

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const tokenLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateSecureToken returns an alphanumeric token of the given length
// drawn from crypto/rand, or the empty string if the entropy source fails.
func GenerateSecureToken(length int) string {
	token, err := CryptoRandomString(int64(length))
	if err != nil {
		return ""
	}
	return token
}

// CryptoRandomInt returns a uniform random value in [0, limit) from
// crypto/rand.
func CryptoRandomInt(limit int64) (int64, error) {
	if limit <= 0 {
		return 0, fmt.Errorf("limit must be positive, got %d", limit)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(limit))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// CryptoRandomString returns a random alphanumeric string of the given
// length.
func CryptoRandomString(length int64) (string, error) {
	if length < 0 {
		return "", fmt.Errorf("length must not be negative, got %d", length)
	}
	buf := make([]byte, length)
	for i := range buf {
		idx, err := CryptoRandomInt(int64(len(tokenLetters)))
		if err != nil {
			return "", err
		}
		buf[i] = tokenLetters[idx]
	}
	return string(buf), nil
}
