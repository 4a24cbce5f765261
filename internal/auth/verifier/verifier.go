// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

// Package verifier decides whether a submitted one-time code is valid right
// now: it resolves the clock-drift window, matches scratch codes, and
// enforces replay protection over a persisted high-water mark.
package verifier

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/otpgate/otpgate-api/internal/auth/oath"
	"github.com/otpgate/otpgate-api/internal/auth/oath/totp"
	"github.com/otpgate/otpgate-api/internal/auth/scratch"
)

var (
	// ErrInvalidParameters is returned when a Verifier is constructed with
	// an unsupported digit count, period or state.
	ErrInvalidParameters = oath.ErrInvalidParameters
	// ErrInvalidTimestamp is returned when the verification time precedes
	// the Unix epoch.
	ErrInvalidTimestamp = totp.ErrInvalidTimestamp
	// ErrMalformedCode is returned when a submission fails shape validation.
	// Callers should present it exactly like ErrNoMatch.
	ErrMalformedCode = errors.New("malformed code")
	// ErrNoMatch is returned when a well-formed code matches neither a
	// scratch code nor any fresh counter in the window.
	ErrNoMatch = errors.New("no matching code")
	// ErrUnknownStateVersion is returned when a persisted state carries a
	// version this build does not understand.
	ErrUnknownStateVersion = errors.New("unsupported state version")
)

// Method distinguishes how a submission was accepted.
type Method uint8

const (
	// MethodRegular is a time-based code matched inside the tolerance window.
	MethodRegular Method = iota
	// MethodScratch is a single-use emergency code.
	MethodScratch
)

func (m Method) String() string {
	switch m {
	case MethodRegular:
		return "regular"
	case MethodScratch:
		return "scratch"
	}
	return "unknown"
}

// Result describes an accepted verification. Counter is the matched
// time-step counter for MethodRegular and zero for MethodScratch.
type Result struct {
	Method  Method
	Counter uint64
}

// Verifier aggregates the TOTP generator, the scratch pool and the replay
// guard for one secret. Instances are not safe for concurrent use: callers
// own an exclusive load-verify-save cycle per secret and must persist
// State() after every accepted verification before processing another.
type Verifier struct {
	totp    *totp.TOTP
	scratch *scratch.Store
	guard   ReplayGuard
}

// New builds a Verifier from a seed, the code parameters and a persisted
// state.
func New(seed string, digits int, period uint64, skew uint8, state State) (*Verifier, error) {
	if state.Version != StateVersion {
		return nil, ErrUnknownStateVersion
	}
	t, err := totp.New(seed, digits, period, skew)
	if err != nil {
		return nil, err
	}
	return &Verifier{
		totp:    t,
		scratch: scratch.NewStore(state.ScratchCodes),
		guard:   NewReplayGuard(state.LastAcceptedCounter),
	}, nil
}

// Verify checks code against the wall clock.
func (v *Verifier) Verify(code string) (Result, error) {
	return v.VerifyAt(code, time.Now().UTC())
}

// VerifyAt checks code at the given time as one atomic transition. Scratch
// codes are tried first and bypass the replay guard entirely; regular
// candidates are tried oldest first, stale counters are skipped, and the
// first match raises the high-water mark so every counter at or below it is
// rejected from then on.
func (v *Verifier) VerifyAt(code string, t time.Time) (Result, error) {
	normalized, err := v.normalize(code)
	if err != nil {
		return Result{}, err
	}

	if v.scratch.ContainsUnconsumed(normalized) {
		v.scratch.Consume(normalized)
		return Result{Method: MethodScratch}, nil
	}

	steps, err := v.totp.Steps(t.Unix())
	if err != nil {
		return Result{}, err
	}
	for _, c := range steps {
		if !v.guard.IsFresh(c) {
			continue
		}
		expected, err := v.totp.GenerateOTP(c)
		if err != nil {
			return Result{}, err
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(normalized)) == 1 {
			v.guard.Advance(c)
			return Result{Method: MethodRegular, Counter: c}, nil
		}
	}
	return Result{}, ErrNoMatch
}

// State snapshots the persisted form, reflecting every consumption and
// advance performed through this instance.
func (v *Verifier) State() State {
	return State{
		Version:             StateVersion,
		LastAcceptedCounter: v.guard.LastAccepted(),
		ScratchCodes:        v.scratch.Codes(),
	}
}

// ScratchRemaining counts the scratch codes still available.
func (v *Verifier) ScratchRemaining() int {
	return v.scratch.Remaining()
}

// normalize strips the separators users paste in and enforces digits-only
// submissions of either the TOTP width or the scratch code width.
func (v *Verifier) normalize(code string) (string, error) {
	var b strings.Builder
	for _, r := range code {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
		default:
			return "", ErrMalformedCode
		}
	}
	n := b.String()
	if len(n) != v.totp.Digits() && len(n) != scratch.CodeLength {
		return "", ErrMalformedCode
	}
	return n, nil
}
