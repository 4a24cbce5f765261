// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

// Package helper provides helper functions
package helper

import (
	"fmt"
	"log"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en_US"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslation "github.com/go-playground/validator/v10/translations/en"
)

// Validator is a wrapper around the validator package
type Validator struct {
	validator *validator.Validate
	transEN   ut.Translator
}

// NewValidator returns a new Validator
func NewValidator() *Validator {
	english := en_US.New()
	uni := ut.New(english, english)
	transEN, found := uni.GetTranslator("en_US")
	if !found {
		log.Fatal("translator not found")
	}
	validate := validator.New()

	// Override the default tag name by using the json tag
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("json")
	})

	// Register default translations
	if err := enTranslation.RegisterDefaultTranslations(validate, transEN); err != nil {
		log.Fatal(err)
	}

	// Register custom validators
	registerCustomValidators(validate, transEN)

	return &Validator{
		validator: validate,
		transEN:   transEN,
	}
}

// Validate validates a struct based on the tags
func (v *Validator) Validate(i interface{}) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		// Handle non-ValidationErrors (like InvalidValidationError)
		return fmt.Errorf("validation error: %s", err.Error())
	}
	var errs []string
	for _, e := range validationErrors {
		errs = append(errs, e.Translate(v.transEN))
	}
	return fmt.Errorf("%s", strings.Join(errs, ", "))
}

// registerCustomValidators registers custom validation rules
func registerCustomValidators(validate *validator.Validate, trans ut.Translator) {
	if err := validate.RegisterValidation("username", validateUsername); err != nil {
		log.Fatal(err)
	}
	if err := validate.RegisterTranslation("username", trans, func(ut ut.Translator) error {
		return ut.Add("username", "{0} must be a valid username (2-32 chars, alphanumeric only)", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("username", fe.Field())
		return t
	}); err != nil {
		log.Fatal(err)
	}

	if err := validate.RegisterValidation("otpcode", validateOTPCode); err != nil {
		log.Fatal(err)
	}
	if err := validate.RegisterTranslation("otpcode", trans, func(ut ut.Translator) error {
		return ut.Add("otpcode", "{0} must be a one-time code (digits, spaces and dashes only)", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("otpcode", fe.Field())
		return t
	}); err != nil {
		log.Fatal(err)
	}

	if err := validate.RegisterValidation("nocontrolchars", validateNoControlChars); err != nil {
		log.Fatal(err)
	}
	if err := validate.RegisterTranslation("nocontrolchars", trans, func(ut ut.Translator) error {
		return ut.Add("nocontrolchars", "{0} cannot contain control characters", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("nocontrolchars", fe.Field())
		return t
	}); err != nil {
		log.Fatal(err)
	}

	if err := validate.RegisterValidation("alphanumtoken", validateAlphanumToken); err != nil {
		log.Fatal(err)
	}
	if err := validate.RegisterTranslation("alphanumtoken", trans, func(ut ut.Translator) error {
		return ut.Add("alphanumtoken", "{0} must be alphanumeric", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("alphanumtoken", fe.Field())
		return t
	}); err != nil {
		log.Fatal(err)
	}
}

// validateUsername validates account username format
func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()

	// Let required validator handle empty strings
	if username == "" {
		return true
	}

	if len(username) < 2 || len(username) > 32 {
		return false
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	return usernameRegex.MatchString(username)
}

// validateOTPCode accepts the characters a user might paste from an
// authenticator app or a printed scratch code sheet. Width and digit checks
// happen in the verifier after normalization.
func validateOTPCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if code == "" {
		return true
	}
	if len(code) > 32 {
		return false
	}
	for _, r := range code {
		if (r < '0' || r > '9') && r != ' ' && r != '-' {
			return false
		}
	}
	return true
}

// validateNoControlChars ensures string contains no control characters
func validateNoControlChars(fl validator.FieldLevel) bool {
	str := fl.Field().String()

	for _, r := range str {
		// Allow common whitespace characters but reject other control chars
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return false
		}
	}

	return true
}

// validateAlphanumToken validates that string is alphanumeric (for tokens)
func validateAlphanumToken(fl validator.FieldLevel) bool {
	str := fl.Field().String()
	if str == "" {
		return true // Let required validation handle empty strings
	}

	alphanumRegex := regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	return alphanumRegex.MatchString(str)
}
