// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023 OTPGate

// Package jwks provides functions for generating a JWKS
package jwks

import (
	"encoding/json"
	"encoding/pem"
	"os"

	jose "github.com/go-jose/go-jose/v3"

	"github.com/otpgate/otpgate-api/internal/config"
)

// GenerateJWKS generates a JWKS
func GenerateJWKS() ([]byte, error) {
	signingMethod := config.ServiceJWTSigningMethod.GetString()

	atKey, _ := os.ReadFile(config.ServiceJWTPublicKey.GetString())
	atPem, _ := pem.Decode(atKey)
	atJWK := jose.JSONWebKey{Key: atPem.Bytes, Algorithm: signingMethod, Use: "sig", KeyID: "at"}
	rtKey, _ := os.ReadFile(config.ServiceJWTRefreshPublicKey.GetString())
	rtPem, _ := pem.Decode(rtKey)
	rtJWK := jose.JSONWebKey{Key: rtPem.Bytes, Algorithm: signingMethod, Use: "sig", KeyID: "rt"}
	pubJWKS := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{atJWK, rtJWK}}

	pubJSJWKS, err := json.Marshal(pubJWKS)
	if err != nil {
		return nil, err
	}

	return pubJSJWKS, nil
}
