// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

package scratch

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
)

// Generate returns n fresh unconsumed codes drawn from crypto/rand. Codes
// keep leading zeros, so every code is exactly CodeLength digits wide.
func Generate(n int) ([]Code, error) {
	return generate(rand.Reader, n)
}

func generate(r io.Reader, n int) ([]Code, error) {
	codes := make([]Code, 0, n)
	seen := make(map[string]bool, n)
	for len(codes) < n {
		code, err := readCode(r)
		if err != nil {
			return nil, fmt.Errorf("failed to generate scratch code: %w", err)
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, Code{Code: code})
	}
	return codes, nil
}

func readCode(r io.Reader) (string, error) {
	buf := make([]byte, 4)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	v := binary.BigEndian.Uint32(buf) & 0x7fffffff
	return fmt.Sprintf("%0*d", CodeLength, v%100000000), nil
}
