// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 OTPGate

// Package tracing provides span helpers and multi-stage operation tracing
// on top of OpenTelemetry for the service's business logic.
package tracing

import (
	"errors"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/otpgate/otpgate-api/internal/auth/verifier"
)

const instrumentationName = "github.com/otpgate/otpgate-api/internal/tracing"

// Error categories attached to spans when an error is recorded
const (
	ErrorCategoryValidation     = "validation"
	ErrorCategoryDatabase       = "database"
	ErrorCategoryAuthentication = "authentication"
	ErrorCategoryVerification   = "verification"
	ErrorCategoryExternal       = "external_service"
	ErrorCategoryInternal       = "internal"
)

// Error severity levels
const (
	ErrorSeverityLow      = "low"
	ErrorSeverityMedium   = "medium"
	ErrorSeverityHigh     = "high"
	ErrorSeverityCritical = "critical"
)

var (
	mu          sync.RWMutex
	tracer      trace.Tracer
	serviceName = "otpgate-api"
)

// Init configures the package tracer from the given provider.
// A nil provider falls back to the global OpenTelemetry provider,
// which is a no-op unless telemetry has been set up.
func Init(tp trace.TracerProvider, service string) {
	mu.Lock()
	defer mu.Unlock()
	if service != "" {
		serviceName = service
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer = tp.Tracer(instrumentationName)
}

func activeTracer() trace.Tracer {
	mu.RLock()
	defer mu.RUnlock()
	if tracer == nil {
		return otel.Tracer(instrumentationName)
	}
	return tracer
}

func activeServiceName() string {
	mu.RLock()
	defer mu.RUnlock()
	return serviceName
}

// categorizeError maps an error to a coarse category for span attributes.
// Domain sentinels are matched first; everything else falls back to
// message inspection.
func categorizeError(err error) string {
	if err == nil {
		return ErrorCategoryInternal
	}

	switch {
	case errors.Is(err, verifier.ErrNoMatch),
		errors.Is(err, verifier.ErrMalformedCode):
		return ErrorCategoryVerification
	case errors.Is(err, verifier.ErrUnknownStateVersion):
		return ErrorCategoryInternal
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "pgx") || strings.Contains(errMsg, "sql") ||
		strings.Contains(errMsg, "database") || strings.Contains(errMsg, "no rows"):
		return ErrorCategoryDatabase
	case strings.Contains(errMsg, "unauthorized") || strings.Contains(errMsg, "password") ||
		strings.Contains(errMsg, "token") || strings.Contains(errMsg, "login"):
		return ErrorCategoryAuthentication
	case strings.Contains(errMsg, "validation") || strings.Contains(errMsg, "invalid") ||
		strings.Contains(errMsg, "required"):
		return ErrorCategoryValidation
	case strings.Contains(errMsg, "smtp") || strings.Contains(errMsg, "redis") ||
		strings.Contains(errMsg, "connection"):
		return ErrorCategoryExternal
	default:
		return ErrorCategoryInternal
	}
}

// determineSeverity assigns a severity level based on the error's category
func determineSeverity(err error, category string) string {
	if err == nil {
		return ErrorSeverityLow
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "panic") || strings.Contains(errMsg, "fatal") {
		return ErrorSeverityCritical
	}

	switch category {
	case ErrorCategoryDatabase, ErrorCategoryExternal:
		return ErrorSeverityHigh
	case ErrorCategoryAuthentication, ErrorCategoryInternal:
		return ErrorSeverityMedium
	default:
		// verification misses and validation noise are expected traffic
		return ErrorSeverityLow
	}
}
