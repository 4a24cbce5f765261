//go:build integration

// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 OTPGate

package integration

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otpgate/otpgate-api/db/types/password"
	"github.com/otpgate/otpgate-api/internal/auth/scratch"
	"github.com/otpgate/otpgate-api/internal/auth/verifier"
	"github.com/otpgate/otpgate-api/models"
)

// TestDatabaseIntegration exercises the generated queries against a real
// postgres instance.
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	t.Run("User Operations", func(t *testing.T) {
		testUserOperations(t)
	})

	t.Run("MFA State Operations", func(t *testing.T) {
		testMFAStateOperations(t)
	})

	t.Run("Pending Enrollment Operations", func(t *testing.T) {
		testPendingEnrollmentOperations(t)
	})
}

func newDBTestUser(t *testing.T) models.User {
	t.Helper()

	pwd := password.Password("")
	require.NoError(t, pwd.Set("integration-pass-123"))

	user, err := db.CreateUser(ctx, models.CreateUserParams{
		Username:  fmt.Sprintf("db%d", time.Now().UnixNano()%1000000000),
		Password:  pwd,
		Email:     pgtype.Text{String: "dbtest@example.com", Valid: true},
		CreatedAt: int32(time.Now().Unix()),
	})
	require.NoError(t, err)
	return user
}

func testUserOperations(t *testing.T) {
	user := newDBTestUser(t)
	assert.NotZero(t, user.ID)
	assert.False(t, user.TotpEnabled)

	retrieved, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, retrieved.Username)

	byUsername, err := db.GetUserByUsername(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	// Username lookups are case-insensitive
	count, err := db.CheckUsernameExists(ctx, user.Username)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	emailCount, err := db.CheckEmailExists(ctx, pgtype.Text{String: "DBTEST@example.com", Valid: true})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, emailCount, int64(1))

	// Password update round-trips through the custom type
	newPwd := password.Password("")
	require.NoError(t, newPwd.Set("another-pass-456"))
	err = db.UpdateUserPassword(ctx, models.UpdateUserPasswordParams{
		ID:          user.ID,
		Password:    newPwd,
		LastUpdated: int32(time.Now().Unix()),
	})
	require.NoError(t, err)

	updated, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NoError(t, updated.Password.Validate("another-pass-456"))
	assert.Error(t, updated.Password.Validate("integration-pass-123"))
}

func testMFAStateOperations(t *testing.T) {
	user := newDBTestUser(t)

	codes, err := scratch.Generate(scratch.DefaultPoolSize)
	require.NoError(t, err)
	state := verifier.NewState(codes)
	raw, err := state.Marshal()
	require.NoError(t, err)

	err = db.EnableUserTotp(ctx, models.EnableUserTotpParams{
		ID:          user.ID,
		TotpSeed:    pgtype.Text{String: "encrypted-seed-blob", Valid: true},
		MfaState:    raw,
		LastUpdated: int32(time.Now().Unix()),
	})
	require.NoError(t, err)

	row, err := db.GetUserMFAStateForUpdate(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, row.TotpEnabled)
	assert.Equal(t, "encrypted-seed-blob", row.TotpSeed.String)

	restored, err := verifier.UnmarshalState(row.MfaState)
	require.NoError(t, err)
	assert.Len(t, restored.ScratchCodes, scratch.DefaultPoolSize)

	// Persist a consumed code and an advanced replay mark
	restored.ScratchCodes[0].Consumed = true
	restored.LastAcceptedCounter = 1234567
	raw, err = restored.Marshal()
	require.NoError(t, err)
	err = db.UpdateUserMFAState(ctx, models.UpdateUserMFAStateParams{
		ID:          user.ID,
		MfaState:    raw,
		LastUpdated: int32(time.Now().Unix()),
	})
	require.NoError(t, err)

	row, err = db.GetUserMFAStateForUpdate(ctx, user.ID)
	require.NoError(t, err)
	restored, err = verifier.UnmarshalState(row.MfaState)
	require.NoError(t, err)
	assert.True(t, restored.ScratchCodes[0].Consumed)
	assert.Equal(t, int64(1234567), restored.LastAcceptedCounter)

	// Disabling clears the seed and the state
	err = db.DisableUserTotp(ctx, models.DisableUserTotpParams{
		ID:          user.ID,
		LastUpdated: int32(time.Now().Unix()),
	})
	require.NoError(t, err)

	row, err = db.GetUserMFAStateForUpdate(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, row.TotpEnabled)
	assert.False(t, row.TotpSeed.Valid)
	assert.Nil(t, row.MfaState)
}

func testPendingEnrollmentOperations(t *testing.T) {
	user := newDBTestUser(t)
	now := int32(time.Now().Unix())

	created, err := db.CreatePendingEnrollment(ctx, models.CreatePendingEnrollmentParams{
		UserID:    user.ID,
		Seed:      "first-seed",
		CreatedAt: now,
		ExpiresAt: now + 600,
	})
	require.NoError(t, err)
	assert.Equal(t, "first-seed", created.Seed)

	// A second enrollment for the same user replaces the first
	replaced, err := db.CreatePendingEnrollment(ctx, models.CreatePendingEnrollmentParams{
		UserID:    user.ID,
		Seed:      "second-seed",
		CreatedAt: now,
		ExpiresAt: now + 600,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, replaced.ID)
	assert.Equal(t, "second-seed", replaced.Seed)

	fetched, err := db.GetPendingEnrollmentByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "second-seed", fetched.Seed)

	// Expired rows are swept, live ones survive
	expiredUser := newDBTestUser(t)
	_, err = db.CreatePendingEnrollment(ctx, models.CreatePendingEnrollmentParams{
		UserID:    expiredUser.ID,
		Seed:      "expired-seed",
		CreatedAt: now - 1200,
		ExpiresAt: now - 600,
	})
	require.NoError(t, err)

	swept, err := db.DeleteExpiredPendingEnrollments(ctx, now)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, swept, int64(1))

	_, err = db.GetPendingEnrollmentByUserID(ctx, expiredUser.ID)
	assert.Error(t, err)

	_, err = db.GetPendingEnrollmentByUserID(ctx, user.ID)
	assert.NoError(t, err)

	require.NoError(t, db.DeletePendingEnrollmentByUserID(ctx, user.ID))
	_, err = db.GetPendingEnrollmentByUserID(ctx, user.ID)
	assert.Error(t, err)
}

// TestTransactionIntegrity verifies that the row lock serializes concurrent
// verification attempts and that rollbacks leave no partial state behind.
func TestTransactionIntegrity(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping transaction integration tests in short mode")
	}

	user := newDBTestUser(t)

	codes, err := scratch.Generate(2)
	require.NoError(t, err)
	state := verifier.NewState(codes)
	raw, err := state.Marshal()
	require.NoError(t, err)
	require.NoError(t, db.EnableUserTotp(ctx, models.EnableUserTotpParams{
		ID:          user.ID,
		TotpSeed:    pgtype.Text{String: "blob", Valid: true},
		MfaState:    raw,
		LastUpdated: int32(time.Now().Unix()),
	}))

	t.Run("rollback leaves state untouched", func(t *testing.T) {
		tx, err := dbPool.Begin(ctx)
		require.NoError(t, err)
		qtx := db.WithTx(tx)

		row, err := qtx.GetUserMFAStateForUpdate(ctx, user.ID)
		require.NoError(t, err)
		st, err := verifier.UnmarshalState(row.MfaState)
		require.NoError(t, err)
		st.ScratchCodes[0].Consumed = true
		raw, err := st.Marshal()
		require.NoError(t, err)
		require.NoError(t, qtx.UpdateUserMFAState(ctx, models.UpdateUserMFAStateParams{
			ID:          user.ID,
			MfaState:    raw,
			LastUpdated: int32(time.Now().Unix()),
		}))
		require.NoError(t, tx.Rollback(ctx))

		row2, err := db.GetUserMFAStateForUpdate(ctx, user.ID)
		require.NoError(t, err)
		st2, err := verifier.UnmarshalState(row2.MfaState)
		require.NoError(t, err)
		assert.False(t, st2.ScratchCodes[0].Consumed)
	})

	t.Run("concurrent updates serialize on the row lock", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tx, err := dbPool.Begin(ctx)
				if err != nil {
					t.Error(err)
					return
				}
				defer tx.Rollback(ctx) //nolint:errcheck

				qtx := db.WithTx(tx)
				row, err := qtx.GetUserMFAStateForUpdate(ctx, user.ID)
				if err != nil {
					t.Error(err)
					return
				}
				st, err := verifier.UnmarshalState(row.MfaState)
				if err != nil {
					t.Error(err)
					return
				}
				st.LastAcceptedCounter++
				raw, err := st.Marshal()
				if err != nil {
					t.Error(err)
					return
				}
				if err := qtx.UpdateUserMFAState(ctx, models.UpdateUserMFAStateParams{
					ID:          user.ID,
					MfaState:    raw,
					LastUpdated: int32(time.Now().Unix()),
				}); err != nil {
					t.Error(err)
					return
				}
				if err := tx.Commit(ctx); err != nil {
					t.Error(err)
				}
			}()
		}
		wg.Wait()

		// Every increment must land; lost updates mean the lock failed
		row, err := db.GetUserMFAStateForUpdate(ctx, user.ID)
		require.NoError(t, err)
		st, err := verifier.UnmarshalState(row.MfaState)
		require.NoError(t, err)
		assert.Equal(t, state.LastAcceptedCounter+4, st.LastAcceptedCounter)
	})
}
