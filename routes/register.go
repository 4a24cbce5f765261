// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 OTPGate

// Package routes defines the routes for the echo server.
package routes

import (
	"fmt"
	"strings"

	"github.com/labstack/gommon/log"

	"github.com/otpgate/otpgate-api/controllers"
	"github.com/otpgate/otpgate-api/internal/config"
)

// UserRegisterRoutes defines the routes for the registration endpoint
func (r *RouteService) UserRegisterRoutes() {
	log.Info("Loading UserRegister routes")
	c := controllers.NewUserRegisterController(r.service)

	prefixV1 := strings.Join([]string{config.ServiceAPIPrefix.GetString(), "v1"}, "/")

	r.e.POST(fmt.Sprintf("/%s/register", prefixV1), c.UserRegister)
}
