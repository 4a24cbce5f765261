// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 OTPGate

package routes

import (
	"github.com/labstack/gommon/log"

	"github.com/otpgate/otpgate-api/controllers"
	"github.com/otpgate/otpgate-api/internal/auth/enrollment"
	"github.com/otpgate/otpgate-api/internal/auth/secret"
	"github.com/otpgate/otpgate-api/middlewares"
)

// MFARoutes defines the routes for managing the authenticated user's
// second factor (enrollment, activation, disabling and scratch codes)
func (r *RouteService) MFARoutes() {
	log.Info("Loading MFA routes")

	enc, err := secret.NewEncryption()
	if err != nil {
		log.Warnf("seed encryption unavailable, MFA enrollment disabled: %s", err)
	}
	cfg, err := enrollment.LoadConfigFromViper()
	if err != nil {
		log.Warnf("invalid enrollment config, using defaults: %s", err)
		def := enrollment.DefaultConfig()
		cfg = &def
	}
	manager := enrollment.NewManager(r.service, enc, cfg)
	c := controllers.NewMFAController(r.service, r.pool, manager, nil)

	router := r.routerGroup.Group("/me/mfa", middlewares.JWTIsAuthenticated)
	router.GET("", c.GetStatus)
	router.POST("/totp/enroll", c.EnrollTOTP)
	router.POST("/totp/activate", c.ActivateTOTP)
	router.POST("/totp/disable", c.DisableTOTP)
	router.POST("/scratch/regenerate", c.RegenerateScratchCodes)
}
