// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

// Package password is the database column type for stored password hashes.
package password

import (
	pass "github.com/otpgate/otpgate-api/internal/auth/password"
)

// Password is a stored password hash. The hash format determines which
// validator checks submissions against it.
type Password string

// Validate checks a cleartext password against the stored hash.
func (p *Password) Validate(password string) error {
	v := pass.GetValidatorFunc(string(*p))
	return v(password)
}

// Set replaces the stored hash with a fresh one computed by the default
// hasher.
func (p *Password) Set(password string) error {
	hash, err := pass.GenerateHash(pass.DefaultHasher, password)
	if err != nil {
		return err
	}
	*p = Password(hash)
	return nil
}
