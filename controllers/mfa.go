// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2024 OTPGate

package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	"github.com/otpgate/otpgate-api/internal/auth/enrollment"
	"github.com/otpgate/otpgate-api/internal/auth/scratch"
	"github.com/otpgate/otpgate-api/internal/auth/secret"
	"github.com/otpgate/otpgate-api/internal/auth/verifier"
	"github.com/otpgate/otpgate-api/internal/config"
	"github.com/otpgate/otpgate-api/internal/helper"
	"github.com/otpgate/otpgate-api/internal/mail"
	"github.com/otpgate/otpgate-api/models"
)

// MFAController drives the TOTP lifecycle for the authenticated user:
// enrollment, activation, disabling and scratch pool regeneration.
type MFAController struct {
	s       models.ServiceInterface
	pool    PoolInterface
	enc     *secret.Encryption
	manager *enrollment.Manager
	clock   func() time.Time
}

// NewMFAController returns a new MFAController
func NewMFAController(
	s models.ServiceInterface,
	pool PoolInterface,
	manager *enrollment.Manager,
	t func() time.Time,
) *MFAController {
	enc, err := secret.NewEncryption()
	if err != nil {
		enc = nil
	}
	return &MFAController{s: s, pool: pool, enc: enc, manager: manager, clock: t}
}

func (ctr *MFAController) now() time.Time {
	if ctr.clock == nil {
		return time.Now()
	}
	return ctr.clock()
}

// MFAStatusResponse describes the authenticated user's second-factor setup
type MFAStatusResponse struct {
	TotpEnabled      bool `json:"totp_enabled"      extensions:"x-order=0"`
	ScratchRemaining int  `json:"scratch_remaining" extensions:"x-order=1"`
}

// GetStatus godoc
// @Summary MFA status
// @Description Returns whether TOTP is enabled for the authenticated user and how many scratch codes remain unused.
// @Tags mfa
// @Produce json
// @Success 200 {object} MFAStatusResponse
// @Failure 401 {object} customError "Unauthorized"
// @Security JWTBearerToken
// @Router /me/mfa [get]
func (ctr *MFAController) GetStatus(c echo.Context) error {
	claims := helper.GetClaimsFromContext(c)

	user, err := ctr.s.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	resp := &MFAStatusResponse{TotpEnabled: user.TotpEnabled}
	if user.TotpEnabled && len(user.MfaState) > 0 {
		state, err := verifier.UnmarshalState(user.MfaState)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, customError{
				Code:    http.StatusInternalServerError,
				Message: "Internal server error",
			})
		}
		for _, code := range state.ScratchCodes {
			if !code.Consumed {
				resp.ScratchRemaining++
			}
		}
	}

	return c.JSON(http.StatusOK, resp)
}

// EnrollResponse carries the provisioning material for a started enrollment.
// The seed is only ever returned here; once activated it is stored encrypted.
type EnrollResponse struct {
	Seed      string    `json:"seed"       extensions:"x-order=0"`
	URI       string    `json:"uri"        extensions:"x-order=1"`
	QRCode    string    `json:"qr_code"    extensions:"x-order=2"`
	ExpiresAt time.Time `json:"expires_at" extensions:"x-order=3"`
}

// EnrollTOTP godoc
// @Summary Begin TOTP enrollment
// @Description Starts TOTP enrollment for the authenticated user: generates a fresh seed and returns it together with
// @Description the otpauth URI and a base64-encoded QR code. The enrollment must be activated with a valid code before
// @Description it expires. Starting a new enrollment replaces any pending one.
// @Tags mfa
// @Produce json
// @Success 200 {object} EnrollResponse
// @Failure 400 {object} customError "TOTP already enabled"
// @Failure 401 {object} customError "Unauthorized"
// @Security JWTBearerToken
// @Router /me/mfa/totp/enroll [post]
func (ctr *MFAController) EnrollTOTP(c echo.Context) error {
	ctx := c.Request().Context()
	claims := helper.GetClaimsFromContext(c)

	user, err := ctr.s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	if user.TotpEnabled {
		return c.JSON(http.StatusBadRequest, customError{
			Code:    http.StatusBadRequest,
			Message: "TOTP is already enabled",
		})
	}

	seed, expiresAt, err := ctr.manager.Begin(ctx, user.ID)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	qr, err := helper.GenerateTOTPQRCode(user.Username, seed)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, &EnrollResponse{
		Seed:      seed,
		URI:       helper.GenerateTOTPURI(user.Username, seed),
		QRCode:    qr,
		ExpiresAt: expiresAt,
	})
}

type activateRequest struct {
	OTP string `json:"otp" validate:"required,min=6,max=16"`
}

// ScratchCodesResponse returns a freshly issued scratch pool in cleartext.
// This is the only time the codes are shown.
type ScratchCodesResponse struct {
	ScratchCodes []string `json:"scratch_codes"`
}

// ActivateTOTP godoc
// @Summary Activate TOTP enrollment
// @Description Completes a pending enrollment by proving the authenticator holds the seed: the submitted code is
// @Description verified against the pending seed, and on success TOTP is enabled with a fresh pool of single-use
// @Description scratch codes, returned in cleartext exactly once.
// @Tags mfa
// @Accept json
// @Produce json
// @Param data body activateRequest true "Activation code"
// @Success 200 {object} ScratchCodesResponse
// @Failure 400 {object} customError "No pending enrollment, or it has expired"
// @Failure 401 {object} customError "Invalid code"
// @Security JWTBearerToken
// @Router /me/mfa/totp/activate [post]
func (ctr *MFAController) ActivateTOTP(c echo.Context) error {
	ctx := c.Request().Context()
	claims := helper.GetClaimsFromContext(c)

	req := new(activateRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, customError{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}
	if err := c.Validate(req); err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusBadRequest, customError{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if ctr.enc == nil {
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	user, err := ctr.s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
	if user.TotpEnabled {
		return c.JSON(http.StatusBadRequest, customError{
			Code:    http.StatusBadRequest,
			Message: "TOTP is already enabled",
		})
	}

	seed, err := ctr.manager.Seed(ctx, user.ID)
	if err != nil {
		if errors.Is(err, enrollment.ErrEnrollmentExpired) {
			return c.JSON(http.StatusBadRequest, customError{
				Code:    http.StatusBadRequest,
				Message: "Cannot activate an enrollment that has expired",
			})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusBadRequest, customError{
			Code:    http.StatusBadRequest,
			Message: "No pending enrollment",
		})
	}

	// The activation code is checked against an empty state: no scratch
	// codes exist yet and no counter has been accepted.
	v, err := newVerifier(seed, verifier.NewState(nil))
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}
	result, err := v.VerifyAt(req.OTP, ctr.now().UTC())
	if err != nil {
		return c.JSON(http.StatusUnauthorized, customError{
			Code:    http.StatusUnauthorized,
			Message: "invalid OTP",
		})
	}

	codes, err := scratch.Generate(scratch.DefaultPoolSize)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	// Record the counter that proved the enrollment so the same code
	// cannot be replayed as the first login.
	state := verifier.NewState(codes)
	state.LastAcceptedCounter = int64(result.Counter)
	mfaState, err := state.Marshal()
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	encryptedSeed, err := ctr.enc.Encrypt([]byte(seed))
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	err = ctr.s.EnableUserTotp(ctx, models.EnableUserTotpParams{
		ID:          user.ID,
		TotpSeed:    pgtype.Text{String: encryptedSeed, Valid: true},
		MfaState:    mfaState,
		LastUpdated: int32(ctr.now().Unix()),
	})
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	if err := ctr.manager.Complete(ctx, user.ID); err != nil {
		c.Logger().Error(err)
	}

	ctr.notify(c, &user, "Two-factor authentication enabled", "mfa_enabled", map[string]any{
		"Username":         user.Username,
		"When":             ctr.now().UTC().Format(time.RFC1123),
		"ScratchCodeCount": len(codes),
		"Year":             time.Now().Year(),
	})

	resp := &ScratchCodesResponse{ScratchCodes: make([]string, 0, len(codes))}
	for _, code := range codes {
		resp.ScratchCodes = append(resp.ScratchCodes, code.Code)
	}
	return c.JSON(http.StatusOK, resp)
}

type disableRequest struct {
	OTP string `json:"otp" validate:"required,min=6,max=16"`
}

// DisableTOTP godoc
// @Summary Disable TOTP
// @Description Disables TOTP for the authenticated user. A currently valid code (TOTP or scratch) must be presented;
// @Description the seed, replay state and scratch pool are discarded.
// @Tags mfa
// @Accept json
// @Produce json
// @Param data body disableRequest true "Current code"
// @Success 200 {string} string "TOTP disabled"
// @Failure 400 {object} customError "TOTP not enabled"
// @Failure 401 {object} customError "Invalid code"
// @Security JWTBearerToken
// @Router /me/mfa/totp/disable [post]
func (ctr *MFAController) DisableTOTP(c echo.Context) error {
	ctx := c.Request().Context()
	claims := helper.GetClaimsFromContext(c)

	req := new(disableRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, customError{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}
	if err := c.Validate(req); err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusBadRequest, customError{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	err := ctr.withLockedState(ctx, claims.UserID, req.OTP, func(qtx models.Querier, _ *verifier.Verifier) error {
		return qtx.DisableUserTotp(ctx, models.DisableUserTotpParams{
			ID:          claims.UserID,
			LastUpdated: int32(ctr.now().Unix()),
		})
	})
	if err != nil {
		return ctr.verifyFailure(c, err)
	}

	user, err := ctr.s.GetUserByID(ctx, claims.UserID)
	if err == nil {
		ctr.notify(c, &user, "Two-factor authentication disabled", "mfa_disabled", map[string]any{
			"Username": user.Username,
			"When":     ctr.now().UTC().Format(time.RFC1123),
			"Year":     time.Now().Year(),
		})
	}

	return c.JSON(http.StatusOK, "TOTP disabled")
}

type regenerateRequest struct {
	OTP string `json:"otp" validate:"required,min=6,max=16"`
}

// RegenerateScratchCodes godoc
// @Summary Regenerate scratch codes
// @Description Replaces the authenticated user's scratch pool with a fresh one. A currently valid code must be
// @Description presented. All previous scratch codes, consumed or not, stop working; the replay high-water mark
// @Description is preserved. The new codes are returned in cleartext exactly once.
// @Tags mfa
// @Accept json
// @Produce json
// @Param data body regenerateRequest true "Current code"
// @Success 200 {object} ScratchCodesResponse
// @Failure 400 {object} customError "TOTP not enabled"
// @Failure 401 {object} customError "Invalid code"
// @Security JWTBearerToken
// @Router /me/mfa/scratch/regenerate [post]
func (ctr *MFAController) RegenerateScratchCodes(c echo.Context) error {
	ctx := c.Request().Context()
	claims := helper.GetClaimsFromContext(c)

	req := new(regenerateRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, customError{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}
	if err := c.Validate(req); err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusBadRequest, customError{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	codes, err := scratch.Generate(scratch.DefaultPoolSize)
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	}

	err = ctr.withLockedState(ctx, claims.UserID, req.OTP, func(qtx models.Querier, v *verifier.Verifier) error {
		// Swap the pool but keep the replay mark the proof just advanced.
		state := v.State()
		state.ScratchCodes = codes
		mfaState, err := state.Marshal()
		if err != nil {
			return err
		}
		return qtx.UpdateUserMFAState(ctx, models.UpdateUserMFAStateParams{
			ID:          claims.UserID,
			MfaState:    mfaState,
			LastUpdated: int32(ctr.now().Unix()),
		})
	})
	if err != nil {
		return ctr.verifyFailure(c, err)
	}

	resp := &ScratchCodesResponse{ScratchCodes: make([]string, 0, len(codes))}
	for _, code := range codes {
		resp.ScratchCodes = append(resp.ScratchCodes, code.Code)
	}
	return c.JSON(http.StatusOK, resp)
}

// errTotpNotEnabled marks requests against an account without TOTP.
var errTotpNotEnabled = errors.New("TOTP is not enabled")

// withLockedState verifies code against the user's MFA state under a row
// lock and, still inside the transaction, hands the verified state to apply.
// apply is responsible for persisting whatever replaces the old state; the
// row stays locked until commit so a concurrent factor_verify cannot
// interleave with the change.
func (ctr *MFAController) withLockedState(
	ctx context.Context,
	userID int32,
	code string,
	apply func(qtx models.Querier, v *verifier.Verifier) error,
) error {
	if ctr.enc == nil {
		return errors.New("seed encryption is not configured")
	}

	tx, err := ctr.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	qtx := ctr.s.WithTx(tx)

	row, err := qtx.GetUserMFAStateForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load MFA state: %w", err)
	}
	if !row.TotpEnabled || !row.TotpSeed.Valid {
		return errTotpNotEnabled
	}

	seed, err := ctr.enc.Decrypt(row.TotpSeed.String)
	if err != nil {
		return fmt.Errorf("failed to decrypt seed: %w", err)
	}

	state := verifier.NewState(nil)
	if len(row.MfaState) > 0 {
		state, err = verifier.UnmarshalState(row.MfaState)
		if err != nil {
			return err
		}
	}

	v, err := newVerifier(string(seed), state)
	if err != nil {
		return err
	}
	if _, err := v.VerifyAt(code, ctr.now().UTC()); err != nil {
		return err
	}

	if err := apply(qtx, v); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// newVerifier builds a Verifier with the service-wide code parameters.
func newVerifier(seed string, state verifier.State) (*verifier.Verifier, error) {
	return verifier.New(
		seed,
		config.ServiceTotpDigits.GetInt(),
		uint64(config.ServiceTotpPeriod.GetInt()),
		config.ServiceTotpSkew.GetUint8(),
		state,
	)
}

// verifyFailure maps withLockedState errors onto responses.
func (ctr *MFAController) verifyFailure(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errTotpNotEnabled):
		return c.JSON(http.StatusBadRequest, customError{
			Code:    http.StatusBadRequest,
			Message: "TOTP is not enabled",
		})
	case errors.Is(err, verifier.ErrMalformedCode), errors.Is(err, verifier.ErrNoMatch):
		return c.JSON(http.StatusUnauthorized, customError{
			Code:    http.StatusUnauthorized,
			Message: "invalid OTP",
		})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, customError{
		Code:    http.StatusInternalServerError,
		Message: "Internal server error",
	})
}

// notify sends a lifecycle email when the mail service is enabled.
func (ctr *MFAController) notify(c echo.Context, user *models.User, subject, template string, data map[string]any) {
	if !config.ServiceMailEnabled.GetBool() || !user.Email.Valid {
		return
	}
	m := mail.NewMail(user.Email.String, subject, template, data)
	if err := m.Send(); err != nil {
		c.Logger().Error(err)
	}
}
