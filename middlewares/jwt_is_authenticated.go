// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023 OTPGate

package middlewares

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/otpgate/otpgate-api/internal/helper"
)

// JWTIsAuthenticated rejects tokens issued before the second factor was
// verified. Login hands out such a token solely for the factor_verify step.
func JWTIsAuthenticated(next echo.HandlerFunc) echo.HandlerFunc {
	return echo.HandlerFunc(func(c echo.Context) error {
		token := c.Get("user").(*jwt.Token)
		claims := token.Claims.(*helper.JwtClaims)
		if claims.Authenticated {
			return next(c)
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "OTP authentication required")
	})
}
