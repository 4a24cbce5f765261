// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 OTPGate

// Package metrics provides authentication-specific metrics collection
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AuthMetrics holds the authentication-related metric instruments
type AuthMetrics struct {
	// Login metrics
	loginAttempts  metric.Int64Counter
	loginDuration  metric.Float64Histogram
	loginSuccesses metric.Int64Counter
	loginFailures  metric.Int64Counter

	// Second-factor metrics
	mfaAttempts     metric.Int64Counter
	mfaSuccesses    metric.Int64Counter
	mfaFailures     metric.Int64Counter
	mfaDuration     metric.Float64Histogram
	scratchConsumed metric.Int64Counter

	// Token metrics
	tokenGenerated metric.Int64Counter
	tokenRefreshed metric.Int64Counter
	tokenRevoked   metric.Int64Counter

	// Session metrics
	activeSessions metric.Int64UpDownCounter
}

// AuthMetricsConfig holds configuration for authentication metrics
type AuthMetricsConfig struct {
	Meter       metric.Meter
	ServiceName string
}

// NewAuthMetrics creates a new authentication metrics collector
func NewAuthMetrics(config AuthMetricsConfig) (*AuthMetrics, error) {
	if config.Meter == nil {
		return nil, fmt.Errorf("meter cannot be nil")
	}

	metrics := &AuthMetrics{}

	var err error
	metrics.loginAttempts, err = config.Meter.Int64Counter(
		"auth_login_attempts_total",
		metric.WithDescription("Total number of login attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login attempts counter: %w", err)
	}

	metrics.loginDuration, err = config.Meter.Float64Histogram(
		"auth_login_duration_ms",
		metric.WithDescription("Login request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login duration histogram: %w", err)
	}

	metrics.loginSuccesses, err = config.Meter.Int64Counter(
		"auth_login_successes_total",
		metric.WithDescription("Total number of successful logins"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login successes counter: %w", err)
	}

	metrics.loginFailures, err = config.Meter.Int64Counter(
		"auth_login_failures_total",
		metric.WithDescription("Total number of failed logins"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create login failures counter: %w", err)
	}

	metrics.mfaAttempts, err = config.Meter.Int64Counter(
		"auth_mfa_attempts_total",
		metric.WithDescription("Total number of second-factor attempts"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create MFA attempts counter: %w", err)
	}

	metrics.mfaSuccesses, err = config.Meter.Int64Counter(
		"auth_mfa_successes_total",
		metric.WithDescription("Total number of successful second-factor verifications"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create MFA successes counter: %w", err)
	}

	metrics.mfaFailures, err = config.Meter.Int64Counter(
		"auth_mfa_failures_total",
		metric.WithDescription("Total number of failed second-factor verifications"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create MFA failures counter: %w", err)
	}

	metrics.mfaDuration, err = config.Meter.Float64Histogram(
		"auth_mfa_duration_ms",
		metric.WithDescription("Second-factor verification duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create MFA duration histogram: %w", err)
	}

	metrics.scratchConsumed, err = config.Meter.Int64Counter(
		"auth_scratch_codes_consumed_total",
		metric.WithDescription("Total number of scratch codes consumed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch consumed counter: %w", err)
	}

	metrics.tokenGenerated, err = config.Meter.Int64Counter(
		"auth_tokens_generated_total",
		metric.WithDescription("Total number of tokens generated"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token generated counter: %w", err)
	}

	metrics.tokenRefreshed, err = config.Meter.Int64Counter(
		"auth_tokens_refreshed_total",
		metric.WithDescription("Total number of tokens refreshed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token refreshed counter: %w", err)
	}

	metrics.tokenRevoked, err = config.Meter.Int64Counter(
		"auth_tokens_revoked_total",
		metric.WithDescription("Total number of tokens revoked"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token revoked counter: %w", err)
	}

	metrics.activeSessions, err = config.Meter.Int64UpDownCounter(
		"auth_active_sessions",
		metric.WithDescription("Number of active user sessions"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active sessions gauge: %w", err)
	}

	return metrics, nil
}

// RecordLoginAttempt records a password check with the given result
func (m *AuthMetrics) RecordLoginAttempt(ctx context.Context, username string, success bool, duration time.Duration, reason string) {
	attrs := []attribute.KeyValue{
		attribute.String("username", username),
		attribute.String("result", getResultString(success)),
	}

	if !success && reason != "" {
		attrs = append(attrs, attribute.String("failure_reason", reason))
	}

	m.loginAttempts.Add(ctx, 1, metric.WithAttributes(attrs...))

	durationMs := float64(duration.Nanoseconds()) / 1e6
	m.loginDuration.Record(ctx, durationMs, metric.WithAttributes(attrs...))

	if success {
		m.loginSuccesses.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		m.loginFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordMFAAttempt records a second-factor verification attempt
func (m *AuthMetrics) RecordMFAAttempt(ctx context.Context, userID int32, success bool, duration time.Duration, method string) {
	attrs := []attribute.KeyValue{
		attribute.Int64("user_id", int64(userID)),
		attribute.String("result", getResultString(success)),
		attribute.String("method", method),
	}

	m.mfaAttempts.Add(ctx, 1, metric.WithAttributes(attrs...))

	durationMs := float64(duration.Nanoseconds()) / 1e6
	m.mfaDuration.Record(ctx, durationMs, metric.WithAttributes(attrs...))

	if success {
		m.mfaSuccesses.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		m.mfaFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordScratchConsumed records a scratch code being used up, tagged with
// how many remain so exhaustion is visible on a dashboard
func (m *AuthMetrics) RecordScratchConsumed(ctx context.Context, userID int32, remaining int) {
	attrs := []attribute.KeyValue{
		attribute.Int64("user_id", int64(userID)),
		attribute.Int("remaining", remaining),
	}

	m.scratchConsumed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTokenGenerated records when a new token is generated
func (m *AuthMetrics) RecordTokenGenerated(ctx context.Context, userID int32, tokenType string) {
	attrs := []attribute.KeyValue{
		attribute.Int64("user_id", int64(userID)),
		attribute.String("token_type", tokenType),
	}

	m.tokenGenerated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTokenRefreshed records when a token is refreshed
func (m *AuthMetrics) RecordTokenRefreshed(ctx context.Context, userID int32, success bool) {
	attrs := []attribute.KeyValue{
		attribute.Int64("user_id", int64(userID)),
		attribute.String("result", getResultString(success)),
	}

	m.tokenRefreshed.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordTokenRevoked records when a token is revoked
func (m *AuthMetrics) RecordTokenRevoked(ctx context.Context, userID int32, reason string) {
	attrs := []attribute.KeyValue{
		attribute.Int64("user_id", int64(userID)),
		attribute.String("reason", reason),
	}

	m.tokenRevoked.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordSessionStart records when a user session starts
func (m *AuthMetrics) RecordSessionStart(ctx context.Context, userID int32) {
	m.activeSessions.Add(ctx, 1, metric.WithAttributes(
		attribute.Int64("user_id", int64(userID)),
	))
}

// RecordSessionEnd records when a user session ends
func (m *AuthMetrics) RecordSessionEnd(ctx context.Context, userID int32, reason string) {
	m.activeSessions.Add(ctx, -1, metric.WithAttributes(
		attribute.Int64("user_id", int64(userID)),
		attribute.String("end_reason", reason),
	))
}

// getResultString converts a boolean result to a string
func getResultString(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
