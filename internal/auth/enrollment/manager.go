// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

// Package enrollment manages pending TOTP setups: a user who starts MFA
// enrollment gets a fresh seed that must be activated with a valid code
// before it expires, proving the authenticator actually holds the seed.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/otpgate/otpgate-api/internal/auth/oath"
	"github.com/otpgate/otpgate-api/internal/auth/secret"
	"github.com/otpgate/otpgate-api/models"
)

// ErrEnrollmentExpired is returned when a pending enrollment exists but its
// activation window has passed.
var ErrEnrollmentExpired = errors.New("enrollment has expired")

// Manager handles pending TOTP enrollment operations. Seeds are encrypted
// at rest; only Begin and Get ever see them in cleartext.
type Manager struct {
	queries models.Querier
	enc     *secret.Encryption
	config  Config
	clock   func() time.Time
}

// NewManager creates a new enrollment manager
func NewManager(queries models.Querier, enc *secret.Encryption, config *Config) *Manager {
	if config == nil {
		defaultConfig := DefaultConfig()
		config = &defaultConfig
	}

	return &Manager{
		queries: queries,
		enc:     enc,
		config:  *config,
		clock:   time.Now,
	}
}

// WithClock pins the manager's clock, for tests.
func (m *Manager) WithClock(clock func() time.Time) *Manager {
	m.clock = clock
	return m
}

// Begin starts an enrollment for the given user: it generates a fresh seed,
// stores it encrypted with the activation deadline, and returns the
// cleartext seed for provisioning. A prior pending enrollment for the same
// user is replaced.
func (m *Manager) Begin(ctx context.Context, userID int32) (string, time.Time, error) {
	otp, err := oath.New("", oath.MinDigits)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate seed: %w", err)
	}
	seed := otp.GetSeed()

	encrypted, err := m.enc.Encrypt([]byte(seed))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to encrypt seed: %w", err)
	}

	now := m.clock()
	expiresAt := now.Add(m.config.Lifetime)

	_, err = m.queries.CreatePendingEnrollment(ctx, models.CreatePendingEnrollmentParams{
		UserID:    userID,
		Seed:      encrypted,
		CreatedAt: int32(now.Unix()),
		ExpiresAt: int32(expiresAt.Unix()),
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store enrollment: %w", err)
	}

	return seed, expiresAt, nil
}

// Seed returns the cleartext seed of the user's pending enrollment, or
// ErrEnrollmentExpired if its activation window has passed.
func (m *Manager) Seed(ctx context.Context, userID int32) (string, error) {
	pending, err := m.queries.GetPendingEnrollmentByUserID(ctx, userID)
	if err != nil {
		return "", err
	}

	if int64(pending.ExpiresAt) < m.clock().Unix() {
		return "", ErrEnrollmentExpired
	}

	seed, err := m.enc.Decrypt(pending.Seed)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt seed: %w", err)
	}
	return string(seed), nil
}

// Complete removes the user's pending enrollment after activation.
func (m *Manager) Complete(ctx context.Context, userID int32) error {
	return m.queries.DeletePendingEnrollmentByUserID(ctx, userID)
}

// Abandon removes the user's pending enrollment without activating it.
func (m *Manager) Abandon(ctx context.Context, userID int32) error {
	return m.queries.DeletePendingEnrollmentByUserID(ctx, userID)
}

// CleanupExpired deletes enrollments whose activation window has passed and
// returns how many were removed.
func (m *Manager) CleanupExpired(ctx context.Context) (int64, error) {
	deleted, err := m.queries.DeleteExpiredPendingEnrollments(ctx, int32(m.clock().Unix()))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired enrollments: %w", err)
	}
	return deleted, nil
}

// Stats reports the number of pending enrollments, for health reporting.
func (m *Manager) Stats(ctx context.Context) (int64, error) {
	return m.queries.CountPendingEnrollments(ctx)
}
