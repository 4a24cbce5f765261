// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023 OTPGate

package controllers

import (
	"fmt"
	"net/http"

	"github.com/jinzhu/copier"
	"github.com/labstack/echo/v4"

	"github.com/otpgate/otpgate-api/internal/helper"
	"github.com/otpgate/otpgate-api/models"
)

type MeController struct {
	s models.Querier
}

func NewMeController(s models.Querier) *MeController {
	return &MeController{s: s}
}

type MeResponse struct {
	ID          int32  `json:"id"              extensions:"x-order=0"`
	Username    string `json:"username"        extensions:"x-order=1"`
	Email       string `json:"email,omitempty" extensions:"x-order=2"`
	TotpEnabled bool   `json:"totp_enabled"    extensions:"x-order=3"`
	CreatedAt   int32  `json:"created_at"      extensions:"x-order=4"`
}

// GetMe godoc
// @Summary Get detailed information about the current user
// @Tags accounts
// @Accept json
// @Produce json
// @Success 200 {object} MeResponse
// @Failure 401 "Authorization information is missing or invalid."
// @Security JWTBearerToken
// @Router /me [get]
func (ctr *MeController) GetMe(c echo.Context) error {
	claims := helper.GetClaimsFromContext(c)

	user, err := ctr.s.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		return c.JSON(http.StatusNotFound, fmt.Sprintf("User by id %d not found", claims.UserID))
	}

	response := &MeResponse{}
	if err := copier.Copy(&response, &user); err != nil {
		c.Logger().Errorf("Failed to copy user to response DTO: %s", err.Error())
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	if user.Email.Valid {
		response.Email = user.Email.String
	}

	return c.JSON(http.StatusOK, response)
}
