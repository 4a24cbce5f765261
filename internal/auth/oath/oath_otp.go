// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 OTPGate

// Package oath implements the RFC 4226 one-time password primitive shared by
// the HOTP and TOTP wrappers.
package oath

import (
	"crypto/hmac"
	"crypto/rand"

	// SHA1 is required by RFC 4226 (HOTP) and RFC 6238 (TOTP)
	// nolint:gosec // SHA1 is used as part of HMAC-SHA1 which is still secure for this use case
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Truncation widths supported by RFC 4226 §5.3.
const (
	MinDigits = 6
	MaxDigits = 8
)

// SeedBytes is the entropy used for generated seeds; 20 bytes encode to a
// 32-character unpadded base32 string.
const SeedBytes = 20

// ErrInvalidParameters is returned when a generator is constructed with a
// digit count or seed outside the supported range.
var ErrInvalidParameters = errors.New("invalid otp parameters")

type OTP struct {
	seed      string
	otpLength int
}

// New creates a generator producing codes of otpLength digits. An empty seed
// is replaced with a fresh random one, base32 encoded without padding.
func New(seed string, otpLength int) (OTP, error) {
	if otpLength < MinDigits || otpLength > MaxDigits {
		return OTP{}, fmt.Errorf("%w: otp length %d outside %d-%d", ErrInvalidParameters, otpLength, MinDigits, MaxDigits)
	}
	if seed == "" {
		secret := make([]byte, SeedBytes)
		if _, err := rand.Reader.Read(secret); err != nil {
			return OTP{}, fmt.Errorf("failed to generate seed: %w", err)
		}
		seed = base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret)
	}
	return OTP{
		seed:      seed,
		otpLength: otpLength,
	}, nil
}

// GenerateOTP computes the code for a counter value: HMAC-SHA1 over the
// big-endian 8-byte counter, dynamic truncation, reduction modulo 10^digits
// and zero-padding to the configured width.
func (otp *OTP) GenerateOTP(input uint64) (string, error) {
	key, err := otp.decodeSeed()
	if err != nil {
		return "", err
	}
	h := hmac.New(sha1.New, key)
	h.Write(otp.itob(input))
	s := h.Sum(nil)
	o := s[len(s)-1] & 0xf
	v := binary.BigEndian.Uint32(s[o : o+4])
	v &= 0x7fffffff

	modulus := uint32(math.Pow10(otp.otpLength))
	code := v % modulus

	return fmt.Sprintf(fmt.Sprintf("%%0%dd", otp.otpLength), code), nil
}

func (otp *OTP) GetSeed() string {
	return otp.seed
}

// Digits returns the configured code width.
func (otp *OTP) Digits() int {
	return otp.otpLength
}

func (otp *OTP) decodeSeed() ([]byte, error) {
	s := strings.TrimSpace(otp.seed)
	if n := len(s) % 8; n != 0 {
		s = s + strings.Repeat("=", 8-n)
	}
	s = strings.ToUpper(s)
	seed, err := base32.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: seed is not base32", ErrInvalidParameters)
	}
	return seed, nil
}

func (otp *OTP) itob(input uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, input)
	return buf
}
