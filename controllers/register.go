// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2023-2024 OTPGate

package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	"github.com/otpgate/otpgate-api/internal/checks"
	"github.com/otpgate/otpgate-api/internal/config"
	"github.com/otpgate/otpgate-api/internal/mail"
	"github.com/otpgate/otpgate-api/models"
)

// UserRegisterController is the controller for the account registration route
type UserRegisterController struct {
	s models.ServiceInterface
}

// NewUserRegisterController returns a new UserRegisterController
func NewUserRegisterController(s models.ServiceInterface) *UserRegisterController {
	return &UserRegisterController{s: s}
}

// UserRegisterRequest is the request body for the register route
type UserRegisterRequest struct {
	Username        string `json:"username"         validate:"required,min=2,max=12"     extensions:"x-order=0"`
	Password        string `json:"password"         validate:"required,min=10,max=72"    extensions:"x-order=1"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password" extensions:"x-order=2"`
	Email           string `json:"email"            validate:"required,email"            extensions:"x-order=3"`
}

// UserRegister example
// @Summary Register
// @Description Creates a new user account. The account starts without any
// @Description additional authentication factor; TOTP is enabled later through
// @Description the MFA enrollment endpoints.
// @Tags auth
// @Accept json
// @Produce json
// @Param data body UserRegisterRequest true "Register request"
// @Success 201 "User created"
// @Failure 400 {object} customError "Bad request"
// @Failure 409 {object} customError "Username or email already registered"
// @Failure 500 {object} customError "Internal server error"
// @Router /register [post]
func (ctr *UserRegisterController) UserRegister(c echo.Context) error {
	req := new(UserRegisterRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, err.Error())
	}

	if err := c.Validate(req); err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusBadRequest, customError{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	// Check if the username or email is already taken
	err := checks.User.IsRegistered(req.Username, req.Email)
	if err != nil && !errors.Is(err, checks.ErrUsernameExists) &&
		!errors.Is(err, checks.ErrEmailExists) {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: "Internal server error",
		})
	} else if err != nil {
		return c.JSON(http.StatusConflict, customError{
			Code:    http.StatusConflict,
			Message: err.Error(),
		})
	}

	user := new(models.CreateUserParams)
	user.Username = req.Username
	user.Email = pgtype.Text{String: req.Email, Valid: true}
	user.CreatedAt = int32(time.Now().Unix())

	if err := user.Password.Set(req.Password); err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		})
	}

	if _, err = ctr.s.CreateUser(c.Request().Context(), *user); err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, customError{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		})
	}

	// Only send email if mail service is enabled
	if config.ServiceMailEnabled.GetBool() {
		templateData := map[string]any{
			"Username": req.Username,
			"Year":     time.Now().Year(),
		}
		m := mail.NewMail(req.Email, "Welcome to OTPGate", "registration", templateData)

		if err := m.Send(); err != nil {
			c.Logger().Error(err)
		}
	} else {
		c.Logger().Info("Mail service disabled, skipping registration email")
	}

	return c.NoContent(http.StatusCreated)
}
