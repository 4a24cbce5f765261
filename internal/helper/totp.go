// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

package helper

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"

	"github.com/skip2/go-qrcode"

	"github.com/otpgate/otpgate-api/internal/config"
)

// GenerateTOTPURI builds the otpauth:// provisioning URI for an account
// using the deployment's issuer and code parameters.
func GenerateTOTPURI(username, seed string) string {
	issuer := config.ServiceTotpIssuer.GetString()

	u := url.URL{
		Scheme: "otpauth",
		Host:   "totp",
		Path:   fmt.Sprintf("/%s:%s", issuer, username),
	}

	q := u.Query()
	q.Set("secret", seed)
	q.Set("issuer", issuer)
	q.Set("algorithm", "SHA1")
	q.Set("digits", strconv.Itoa(config.ServiceTotpDigits.GetInt()))
	q.Set("period", strconv.FormatUint(config.ServiceTotpPeriod.GetUint64(), 10))
	u.RawQuery = q.Encode()

	return u.String()
}

// GenerateTOTPQRCode renders the provisioning URI as a base64-encoded PNG
// for authenticator app enrollment.
func GenerateTOTPQRCode(username, seed string) (string, error) {
	qrBytes, err := qrcode.Encode(GenerateTOTPURI(username, seed), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	return base64.StdEncoding.EncodeToString(qrBytes), nil
}
