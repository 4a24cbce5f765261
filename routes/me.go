// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023 OTPGate

package routes

import (
	"github.com/labstack/gommon/log"

	"github.com/otpgate/otpgate-api/controllers"
	"github.com/otpgate/otpgate-api/middlewares"
)

// MeRoutes defines the routes for the me endpoints
func (r *RouteService) MeRoutes() {
	log.Info("Loading me routes")
	c := controllers.NewMeController(r.service)

	router := r.routerGroup.Group("/me", middlewares.JWTIsAuthenticated)
	router.GET("", c.GetMe)
}
