// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2025 OTPGate

package mail

import "embed"

//go:embed templates
var templatesFS embed.FS
