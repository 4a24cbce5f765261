// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

package verifier

import (
	"encoding/json"
	"fmt"

	"github.com/otpgate/otpgate-api/internal/auth/scratch"
)

// StateVersion is the current serialization format version.
const StateVersion = 1

// State is the persisted form of a Verifier: the replay high-water mark and
// the scratch pool with consumption flags. The field list is explicit and
// versioned so the stored form can evolve without breaking old rows. Secret
// material is never part of it.
type State struct {
	Version             int            `json:"version"`
	LastAcceptedCounter int64          `json:"last_accepted_counter"`
	ScratchCodes        []scratch.Code `json:"scratch_codes"`
}

// NewState returns a fresh state with no accepted counter and the given
// scratch pool.
func NewState(codes []scratch.Code) State {
	return State{
		Version:             StateVersion,
		LastAcceptedCounter: NoCounterAccepted,
		ScratchCodes:        codes,
	}
}

// Marshal encodes the state for persistence.
func (s State) Marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode verifier state: %w", err)
	}
	return data, nil
}

// UnmarshalState decodes a persisted state, rejecting unknown format
// versions.
func UnmarshalState(data []byte) (State, error) {
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("failed to decode verifier state: %w", err)
	}
	if s.Version != StateVersion {
		return State{}, fmt.Errorf("%w: %d", ErrUnknownStateVersion, s.Version)
	}
	return s, nil
}
