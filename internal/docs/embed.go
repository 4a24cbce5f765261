// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024 OTPGate

package docs

import "embed"

// SwaggerFS embeds the generated OpenAPI specification so the redoc
// middleware can serve it without shipping extra files.
//
//go:embed swagger.json
var SwaggerFS embed.FS
