// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

// Package scratch manages the pool of single-use emergency codes accepted in
// place of a TOTP code when the authenticator device is unavailable.
package scratch

import (
	"crypto/subtle"
)

// CodeLength is the width of every scratch code in digits.
const CodeLength = 8

// DefaultPoolSize is the number of codes issued per pool.
const DefaultPoolSize = 8

// Code is a single scratch code and its consumption flag.
type Code struct {
	Code     string `json:"code"`
	Consumed bool   `json:"consumed"`
}

// Store holds an ordered pool of scratch codes. Order is only significant for
// stable serialization; matching is by value. Store is not safe for
// concurrent use.
type Store struct {
	codes []Code
}

// NewStore copies codes into a new store.
func NewStore(codes []Code) *Store {
	s := &Store{codes: make([]Code, len(codes))}
	copy(s.codes, codes)
	return s
}

// ContainsUnconsumed reports whether candidate matches a code that has not
// been consumed yet. Every entry is compared in constant time and the scan
// never exits early, so the call does not leak which position matched.
// Consumed entries never match again.
func (s *Store) ContainsUnconsumed(candidate string) bool {
	found := false
	for i := range s.codes {
		match := subtle.ConstantTimeCompare([]byte(s.codes[i].Code), []byte(candidate)) == 1
		if match && !s.codes[i].Consumed {
			found = true
		}
	}
	return found
}

// Consume marks the unconsumed entry matching candidate as consumed and
// reports whether one existed. A consumed entry never reverts.
func (s *Store) Consume(candidate string) bool {
	consumed := false
	for i := range s.codes {
		match := subtle.ConstantTimeCompare([]byte(s.codes[i].Code), []byte(candidate)) == 1
		if match && !s.codes[i].Consumed && !consumed {
			s.codes[i].Consumed = true
			consumed = true
		}
	}
	return consumed
}

// Codes returns a copy of the pool in serialization order.
func (s *Store) Codes() []Code {
	out := make([]Code, len(s.codes))
	copy(out, s.codes)
	return out
}

// Remaining counts the codes still available for use.
func (s *Store) Remaining() int {
	n := 0
	for i := range s.codes {
		if !s.codes[i].Consumed {
			n++
		}
	}
	return n
}
