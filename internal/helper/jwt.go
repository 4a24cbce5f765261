// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

package helper

import (
	"fmt"
	"os"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/twinj/uuid"

	"github.com/otpgate/otpgate-api/internal/config"
	"github.com/otpgate/otpgate-api/internal/globals"
)

// JwtClaims are the claims carried by an access token. Authenticated stays
// false between a successful password check and factor verification when the
// account has TOTP enabled.
type JwtClaims struct {
	UserID        int32  `json:"user_id"`
	Username      string `json:"username"`
	Authenticated bool   `json:"authenticated"`
	RefreshUUID   string `json:"refresh_uuid"`
	jwt.RegisteredClaims
}

// TokenDetails holds a generated token pair and its expiry metadata.
type TokenDetails struct {
	AccessToken  string
	RefreshToken string
	RefreshUUID  string
	AtExpires    *jwt.NumericDate
	RtExpires    *jwt.NumericDate
}

// GenerateToken generates an access token for the claims, and a refresh
// token when the claims are fully authenticated. The time parameter anchors
// the expirations so tests can pin the clock.
func GenerateToken(claims *JwtClaims, t time.Time) (*TokenDetails, error) {
	td := &TokenDetails{}
	td.AtExpires = jwt.NewNumericDate(t.Add(time.Minute * 5))
	td.RtExpires = jwt.NewNumericDate(t.Add(time.Hour * 24 * 7))
	td.RefreshUUID = uuid.NewV4().String()

	claims.RefreshUUID = td.RefreshUUID
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(t),
		ExpiresAt: td.AtExpires,
	}

	accessToken := jwt.NewWithClaims(jwt.GetSigningMethod(config.ServiceJWTSigningMethod.GetString()), claims)
	accessToken.Header["kid"] = "at"
	at, err := accessToken.SignedString(GetJWTSigningKey())
	if err != nil {
		return nil, err
	}
	td.AccessToken = at

	// Only authenticated sessions get a refresh token; a pending MFA login
	// must not be able to mint new access tokens.
	if claims.Authenticated {
		refreshToken := jwt.New(jwt.GetSigningMethod(config.ServiceJWTSigningMethod.GetString()))
		refreshToken.Header["kid"] = "rt"
		rtClaims := refreshToken.Claims.(jwt.MapClaims)
		rtClaims["refresh_uuid"] = td.RefreshUUID
		rtClaims["user_id"] = claims.UserID
		rtClaims["sub"] = 1
		rtClaims["exp"] = td.RtExpires.Unix()
		rt, err := refreshToken.SignedString(GetJWTRefreshSigningKey())
		if err != nil {
			return nil, err
		}
		td.RefreshToken = rt
	}

	return td, nil
}

// GetClaimsFromContext returns the JwtClaims stored by the echo-jwt middleware.
func GetClaimsFromContext(c echo.Context) *JwtClaims {
	token := c.Get("user").(*jwt.Token)
	claims := token.Claims.(*JwtClaims)
	return claims
}

// GetClaimsFromRefreshToken parses and validates a refresh token and returns
// its claims.
func GetClaimsFromRefreshToken(refreshToken string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != config.ServiceJWTSigningMethod.GetString() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return GetJWTRefreshPublicKey(), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid refresh token")
}

// GetEchoJWTConfig returns the echo-jwt middleware configuration used for
// the protected route group.
func GetEchoJWTConfig() echojwt.Config {
	return echojwt.Config{
		SigningMethod: config.ServiceJWTSigningMethod.GetString(),
		SigningKey:    GetJWTPublicKey(),
		NewClaimsFunc: func(_ echo.Context) jwt.Claims {
			return new(JwtClaims)
		},
	}
}

// GetJWTSigningKey returns the key used to sign access tokens. For HMAC
// methods this is the shared secret, otherwise the RSA private key read
// from disk.
func GetJWTSigningKey() interface{} {
	if config.ServiceJWTSigningMethod.GetString() == "HS256" {
		return []byte(config.ServiceJWTSigningSecret.GetString())
	}
	return mustReadRSAPrivateKey(config.ServiceJWTSigningKey.GetString())
}

// GetJWTPublicKey returns the key used to verify access tokens.
func GetJWTPublicKey() interface{} {
	if config.ServiceJWTSigningMethod.GetString() == "HS256" {
		return []byte(config.ServiceJWTSigningSecret.GetString())
	}
	return mustReadRSAPublicKey(config.ServiceJWTPublicKey.GetString())
}

// GetJWTRefreshSigningKey returns the key used to sign refresh tokens.
func GetJWTRefreshSigningKey() interface{} {
	if config.ServiceJWTSigningMethod.GetString() == "HS256" {
		return []byte(config.ServiceJWTRefreshSigningSecret.GetString())
	}
	return mustReadRSAPrivateKey(config.ServiceJWTRefreshSigningKey.GetString())
}

// GetJWTRefreshPublicKey returns the key used to verify refresh tokens.
func GetJWTRefreshPublicKey() interface{} {
	if config.ServiceJWTSigningMethod.GetString() == "HS256" {
		return []byte(config.ServiceJWTRefreshSigningSecret.GetString())
	}
	return mustReadRSAPublicKey(config.ServiceJWTRefreshPublicKey.GetString())
}

func mustReadRSAPrivateKey(path string) interface{} {
	data, err := os.ReadFile(path)
	if err != nil {
		globals.LogAndExit(fmt.Sprintf("failed to read JWT signing key %s: %s", path, err), 1)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(data)
	if err != nil {
		globals.LogAndExit(fmt.Sprintf("failed to parse JWT signing key %s: %s", path, err), 1)
	}
	return key
}

func mustReadRSAPublicKey(path string) interface{} {
	data, err := os.ReadFile(path)
	if err != nil {
		globals.LogAndExit(fmt.Sprintf("failed to read JWT public key %s: %s", path, err), 1)
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		globals.LogAndExit(fmt.Sprintf("failed to parse JWT public key %s: %s", path, err), 1)
	}
	return key
}
