// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

package password

import "errors"

var (
	// ErrMismatchedHashAndPassword is returned when a password does not match its stored hash.
	ErrMismatchedHashAndPassword = errors.New("mismatched password hash and password")
	// ErrUnknownHashAlgorithm is returned when a stored hash matches no known format.
	ErrUnknownHashAlgorithm = errors.New("unknown password hash algorithm")
)
