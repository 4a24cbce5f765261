// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 OTPGate

// Package totp provides a time-based one-time password (TOTP) implementation.
package totp

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/otpgate/otpgate-api/internal/auth/oath"
)

// DefaultPeriod is the RFC 6238 recommended time step in seconds.
const DefaultPeriod = 30

// ErrInvalidTimestamp is returned when a timestamp precedes the Unix epoch
// and no counter can be derived from it.
var ErrInvalidTimestamp = errors.New("timestamp precedes the unix epoch")

// TOTP represents a Time-based One-Time Password
type TOTP struct {
	oath.OTP
	period uint64
	skew   uint8
}

// New creates a new TOTP instance. period is the step length in seconds and
// skew the number of adjacent steps accepted on each side of the current one.
func New(seed string, digits int, period uint64, skew uint8) (*TOTP, error) {
	if period == 0 {
		return nil, fmt.Errorf("%w: period must be positive", oath.ErrInvalidParameters)
	}
	otp, err := oath.New(seed, digits)
	if err != nil {
		return nil, err
	}
	return &TOTP{OTP: otp, period: period, skew: skew}, nil
}

// Period returns the step length in seconds.
func (totp *TOTP) Period() uint64 {
	return totp.period
}

// Skew returns the tolerance in steps on each side of the current one.
func (totp *TOTP) Skew() uint8 {
	return totp.skew
}

// Generate generates a new TOTP.
func (totp *TOTP) Generate() (string, error) {
	return totp.GenerateCustom(time.Now().UTC())
}

// GenerateCustom generates a new TOTP with a custom time.
func (totp *TOTP) GenerateCustom(t time.Time) (string, error) {
	if t.Unix() < 0 {
		return "", ErrInvalidTimestamp
	}
	return totp.GenerateOTP(uint64(t.Unix()) / totp.period)
}

// Steps maps a timestamp to the ordered counter window accepted around it.
// Counters run ascending from base-skew through base+skew, inclusive on both
// ends; values that would fall below counter zero or wrap past the uint64
// range are dropped rather than wrapped.
func (totp *TOTP) Steps(now int64) ([]uint64, error) {
	if now < 0 {
		return nil, ErrInvalidTimestamp
	}
	base := uint64(now) / totp.period
	delta := uint64(totp.skew)

	lo := uint64(0)
	if base >= delta {
		lo = base - delta
	}
	hi := base + delta
	if hi < base { // overflow
		hi = math.MaxUint64
	}

	steps := make([]uint64, 0, hi-lo+1)
	for c := lo; ; c++ {
		steps = append(steps, c)
		if c == hi {
			break
		}
	}
	return steps, nil
}

func (totp *TOTP) Validate(otp string) bool {
	return totp.ValidateCustom(otp, time.Now().UTC())
}

// ValidateCustom checks if the provided OTP is valid at the given time,
// trying every counter in the tolerance window. Comparisons are constant
// time per candidate.
func (totp *TOTP) ValidateCustom(otp string, t time.Time) bool {
	steps, err := totp.Steps(t.Unix())
	if err != nil {
		return false
	}
	for _, c := range steps {
		expected, err := totp.GenerateOTP(c)
		if err != nil {
			return false
		}
		if subtle.ConstantTimeCompare([]byte(otp), []byte(expected)) == 1 {
			return true
		}
	}
	return false
}
