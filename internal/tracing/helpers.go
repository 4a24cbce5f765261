// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 OTPGate

package tracing

import (
	"go.opentelemetry.io/otel/attribute"
)

// AuthenticationAttrs creates attributes for authentication operations
func AuthenticationAttrs(username string, authType string, success bool) map[string]interface{} {
	attrs := map[string]interface{}{
		"auth.type":    authType,
		"auth.success": success,
	}

	if username != "" {
		attrs["auth.username"] = username
	}

	return attrs
}

// AddAuthenticationAttrs adds authentication attributes to a traced context
func AddAuthenticationAttrs(tc *TracedContext, username string, authType string, success bool) {
	tc.AddAttrs(AuthenticationAttrs(username, authType, success))
}

// MFAOperationAttrs creates attributes for second-factor operations
func MFAOperationAttrs(method string, operation string) map[string]interface{} {
	return map[string]interface{}{
		"mfa.method":    method,
		"mfa.operation": operation,
	}
}

// AddMFAOperationAttrs adds second-factor operation attributes to a traced context
func AddMFAOperationAttrs(tc *TracedContext, method string, operation string) {
	tc.AddAttrs(MFAOperationAttrs(method, operation))
}

// UserActivityAttrs creates attributes for user activity tracking
func UserActivityAttrs(userID int64, username string, activity string) map[string]interface{} {
	return map[string]interface{}{
		"user.id":       userID,
		"user.username": username,
		"user.activity": activity,
	}
}

// AddUserActivityAttrs adds user activity attributes to a traced context
func AddUserActivityAttrs(tc *TracedContext, userID int64, username string, activity string) {
	tc.AddAttrs(UserActivityAttrs(userID, username, activity))
}

// AddStructuredEvent adds a span event with structured attributes
func (tc *TracedContext) AddStructuredEvent(eventName string, attrs map[string]interface{}) {
	if tc.span == nil || !tc.span.IsRecording() {
		return
	}

	kvAttrs := make([]attribute.KeyValue, 0, len(attrs))
	for key, value := range attrs {
		kvAttrs = append(kvAttrs, convertToAttribute(key, value))
	}

	tc.AddEvent(eventName, kvAttrs...)
}
