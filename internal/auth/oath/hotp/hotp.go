// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 OTPGate

package hotp

import (
	"crypto/subtle"

	"github.com/otpgate/otpgate-api/internal/auth/oath"
)

type HOTP struct {
	oath.OTP
}

func New(seed string, digits int) (*HOTP, error) {
	otp, err := oath.New(seed, digits)
	if err != nil {
		return nil, err
	}
	return &HOTP{OTP: otp}, nil
}

func (h *HOTP) Generate(counter uint64) (string, error) {
	return h.GenerateOTP(counter)
}

// Validate compares code against the expected value for counter in constant
// time.
func (h *HOTP) Validate(code string, counter uint64) bool {
	expected, err := h.Generate(counter)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(expected)) == 1
}
