// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 OTPGate

package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func TestHTTPTracing(t *testing.T) {
	res := resource.NewWithAttributes("test")
	tracerProvider := trace.NewTracerProvider(
		trace.WithResource(res),
	)

	e := echo.New()
	e.Use(HTTPTracing(tracerProvider))

	e.GET("/test", func(c echo.Context) error {
		span := oteltrace.SpanFromContext(c.Request().Context())
		assert.True(t, span.IsRecording(), "Expected an active span")

		return c.String(http.StatusOK, "test response")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test response", rec.Body.String())
}

func TestHTTPTracingWithConfig(t *testing.T) {
	res := resource.NewWithAttributes("test")
	tracerProvider := trace.NewTracerProvider(
		trace.WithResource(res),
	)

	e := echo.New()

	config := HTTPTracingConfig{
		TracerProvider: tracerProvider,
		ServiceName:    "test-service",
		Propagator:     propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}),
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
	}
	e.Use(HTTPTracingWithConfig(config))

	e.GET("/test", func(c echo.Context) error {
		span := oteltrace.SpanFromContext(c.Request().Context())
		assert.True(t, span.IsRecording(), "Expected an active span")
		return c.String(http.StatusOK, "test response")
	})

	e.GET("/health", func(c echo.Context) error {
		span := oteltrace.SpanFromContext(c.Request().Context())
		assert.False(t, span.IsRecording(), "Expected no active span for skipped route")
		return c.String(http.StatusOK, "healthy")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPTracingEnhanced(t *testing.T) {
	spanRecorder := tracetest.NewSpanRecorder()
	tracerProvider := trace.NewTracerProvider(
		trace.WithSpanProcessor(spanRecorder),
	)

	e := echo.New()
	e.Use(HTTPTracingEnhanced(tracerProvider, "test-service"))

	e.POST("/api/test", func(c echo.Context) error {
		// trace information must be available for log correlation
		traceID, ok := c.Get("trace.id").(string)
		assert.True(t, ok)
		assert.NotEmpty(t, traceID, "Expected trace ID to be available")

		assert.NotEmpty(t, c.Response().Header().Get("X-Trace-Id"), "Expected X-Trace-Id header")

		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/test", nil)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-client/1.0")
	req.Header.Set("Authorization", "Bearer dummy")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))

	spans := spanRecorder.Ended()
	assert.Len(t, spans, 1)
	assert.Equal(t, "HTTP POST /api/test", spans[0].Name())

	attrs := make(map[string]interface{}, len(spans[0].Attributes()))
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "test-service", attrs["http.server.name"])
	assert.Equal(t, "test-client/1.0", attrs["http.user_agent"])
	assert.Equal(t, "Bearer", attrs["http.request.auth_type"])
	assert.Equal(t, int64(http.StatusOK), attrs["http.response.status_code"])
}

func TestHTTPTracingEnhancedRecordsErrors(t *testing.T) {
	spanRecorder := tracetest.NewSpanRecorder()
	tracerProvider := trace.NewTracerProvider(
		trace.WithSpanProcessor(spanRecorder),
	)

	e := echo.New()
	e.Use(HTTPTracingEnhanced(tracerProvider, "test-service"))

	e.GET("/boom", func(c echo.Context) error {
		return errors.New("handler exploded")
	})
	e.GET("/teapot", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/teapot", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	spans := spanRecorder.Ended()
	assert.Len(t, spans, 2)

	// plain handler errors mark the span, 4xx HTTP errors do not
	assert.NotEmpty(t, spans[0].Events())
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
	assert.NotEmpty(t, spans[1].Events())
}

func TestHTTPTracingWithNilProvider(t *testing.T) {
	e := echo.New()

	// nil provider falls back to the global one
	e.Use(HTTPTracingWithConfig(HTTPTracingConfig{}))

	e.GET("/test", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetupGlobalPropagator(t *testing.T) {
	SetupGlobalPropagator()

	propagator := otel.GetTextMapPropagator()
	assert.NotNil(t, propagator)

	fields := propagator.Fields()
	assert.Contains(t, fields, "traceparent")
	assert.Contains(t, fields, "baggage")
}
