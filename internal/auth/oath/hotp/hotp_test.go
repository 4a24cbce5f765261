// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 OTPGate

package hotp

import (
	"encoding/base32"
	"testing"

	"gopkg.in/go-playground/assert.v1"
)

// Interop tests taken from http://tools.ietf.org/html/rfc4226#appendix-D

func newTestHotp(t *testing.T) *HOTP {
	t.Helper()
	h, err := New(base32.StdEncoding.EncodeToString([]byte("12345678901234567890")), 6)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestGenerateHotp(t *testing.T) {
	hotp := newTestHotp(t)
	expected := []string{
		"755224", "287082", "359152", "969429", "338314",
		"254676", "287922", "162583", "399871", "520489",
	}
	for counter, want := range expected {
		code, err := hotp.Generate(uint64(counter))
		assert.Equal(t, err, nil)
		assert.Equal(t, code, want)
	}
}

func TestValidateHotp(t *testing.T) {
	hotp := newTestHotp(t)
	assert.Equal(t, hotp.Validate("755224", 0), true)
	assert.Equal(t, hotp.Validate("287082", 1), true)
	assert.Equal(t, hotp.Validate("287082", 2), false)
	assert.Equal(t, hotp.Validate("75522", 0), false)
}

func TestHotpRejectsBadDigits(t *testing.T) {
	_, err := New("", 4)
	assert.NotEqual(t, err, nil)
}
