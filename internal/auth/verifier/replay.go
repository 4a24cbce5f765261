// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

package verifier

import "math"

// NoCounterAccepted is the high-water mark before any regular code has been
// accepted; every counter is fresh against it.
const NoCounterAccepted int64 = -1

// ReplayGuard tracks the highest counter at which a regular code was
// accepted. Once a counter is accepted, every counter at or below it is
// permanently rejected, closing the whole window rather than only the exact
// repeat.
type ReplayGuard struct {
	lastAccepted int64
}

// NewReplayGuard restores a guard from a persisted high-water mark. Marks
// below the sentinel collapse to it.
func NewReplayGuard(lastAccepted int64) ReplayGuard {
	if lastAccepted < NoCounterAccepted {
		lastAccepted = NoCounterAccepted
	}
	return ReplayGuard{lastAccepted: lastAccepted}
}

// IsFresh reports whether counter is strictly above the high-water mark.
func (g *ReplayGuard) IsFresh(counter uint64) bool {
	return g.lastAccepted < 0 || counter > uint64(g.lastAccepted)
}

// Advance raises the high-water mark to counter. The mark never moves
// backward, regardless of call order. Counters beyond the persistable range
// clamp to MaxInt64, which closes the window for good.
func (g *ReplayGuard) Advance(counter uint64) {
	if counter > math.MaxInt64 {
		g.lastAccepted = math.MaxInt64
		return
	}
	if c := int64(counter); c > g.lastAccepted {
		g.lastAccepted = c
	}
}

// LastAccepted returns the high-water mark, or NoCounterAccepted when no
// regular code has been accepted yet.
func (g *ReplayGuard) LastAccepted() int64 {
	return g.lastAccepted
}
