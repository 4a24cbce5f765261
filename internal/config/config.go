// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

// Package config exposes all configuration keys as typed constants backed by
// viper. Values resolve from defaults, the otpgate-api.yml config file and
// OTPGATE_* environment variables, in ascending precedence.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// K is a configuration key.
type K string

// Service keys.
const (
	ServiceHost               K = "service.host"
	ServicePort               K = "service.port"
	ServiceAPIPrefix          K = "service.api_prefix"
	ServiceBaseURL            K = "service.base_url"
	ServiceDevMode            K = "service.dev_mode"
	ServiceCookieSameSiteNone K = "service.cookie_same_site_none"

	ServiceJWTSigningMethod        K = "service.jwt.signing_method"
	ServiceJWTSigningSecret        K = "service.jwt.signing_secret"
	ServiceJWTSigningKey           K = "service.jwt.signing_key"
	ServiceJWTPublicKey            K = "service.jwt.public_key"
	ServiceJWTRefreshSigningSecret K = "service.jwt.refresh_signing_secret"
	ServiceJWTRefreshSigningKey    K = "service.jwt.refresh_signing_key"
	ServiceJWTRefreshPublicKey     K = "service.jwt.refresh_public_key"

	ServiceCorsAllowOrigins     K = "service.cors.allowed_origins"
	ServiceCorsAllowMethods     K = "service.cors.allowed_methods"
	ServiceCorsAllowCredentials K = "service.cors.allow_credentials"
	ServiceCorsMaxAge           K = "service.cors.max_age"

	ServiceTotpDigits K = "service.totp.digits"
	ServiceTotpPeriod K = "service.totp.period"
	ServiceTotpSkew   K = "service.totp.skew"
	ServiceTotpIssuer K = "service.totp.issuer"

	ServiceScratchPoolSize      K = "service.scratch.pool_size"
	ServiceScratchWarnThreshold K = "service.scratch.warn_threshold"

	ServiceSeedEncryptionKey K = "service.seed_encryption_key"

	ServiceEnrollmentLifetimeMinutes K = "service.enrollment.lifetime_minutes"
	ServiceEnrollmentCleanupSchedule K = "service.enrollment.cleanup_schedule"

	ServiceRateLimitEnabled           K = "service.rate_limit.enabled"
	ServiceRateLimitMode              K = "service.rate_limit.mode"
	ServiceRateLimitRequestsPerMinute K = "service.rate_limit.requests_per_minute"
	ServiceRateLimitWindowMinutes     K = "service.rate_limit.window_minutes"
	ServiceRateLimitEndpoints         K = "service.rate_limit.endpoints"

	ServiceMailEnabled   K = "service.mail.enabled"
	ServiceMailWorkers   K = "service.mail.workers"
	ServiceMailQueueSize K = "service.mail.queue_size"

	ServiceCronEnabled  K = "service.cron.enabled"
	ServiceCronTimeZone K = "service.cron.timezone"
)

// Database keys.
const (
	DatabaseHost          K = "database.host"
	DatabasePort          K = "database.port"
	DatabaseUsername      K = "database.username"
	DatabasePassword      K = "database.password"
	DatabaseName          K = "database.name"
	DatabaseAutoMigration K = "database.auto_migration"
)

// Redis keys.
const (
	RedisHost     K = "redis.host"
	RedisPort     K = "redis.port"
	RedisPassword K = "redis.password"
	RedisDatabase K = "redis.database"
)

// SMTP keys.
const (
	SMTPHost      K = "smtp.host"
	SMTPPort      K = "smtp.port"
	SMTPUsername  K = "smtp.username"
	SMTPPassword  K = "smtp.password"
	SMTPUseTLS    K = "smtp.use_tls"
	SMTPFromEmail K = "smtp.from_email"
	SMTPFromName  K = "smtp.from_name"
)

// Telemetry keys.
const (
	TelemetryEnabled            K = "telemetry.enabled"
	TelemetryServiceName        K = "telemetry.service_name"
	TelemetryServiceVersion     K = "telemetry.service_version"
	TelemetryOTLPEndpoint       K = "telemetry.otlp.endpoint"
	TelemetryOTLPHeaders        K = "telemetry.otlp.headers"
	TelemetryOTLPInsecure       K = "telemetry.otlp.insecure"
	TelemetryPrometheusEnabled  K = "telemetry.prometheus.enabled"
	TelemetryPrometheusEndpoint K = "telemetry.prometheus.endpoint"
	TelemetryJaegerEnabled      K = "telemetry.jaeger.enabled"
	TelemetryJaegerEndpoint     K = "telemetry.jaeger.endpoint"
	TelemetryTracingEnabled     K = "telemetry.tracing.enabled"
	TelemetryTracingSampleRate  K = "telemetry.tracing.sample_rate"
	TelemetryMetricsEnabled     K = "telemetry.metrics.enabled"
	TelemetryMetricsInterval    K = "telemetry.metrics.interval"
	TelemetryResourceAttributes K = "telemetry.resource_attributes"
)

// Set sets the value for the key, overriding defaults and config file.
func (k K) Set(value interface{}) {
	viper.Set(string(k), value)
}

// SetDefault sets the fallback value for the key.
func (k K) SetDefault(value interface{}) {
	viper.SetDefault(string(k), value)
}

func (k K) Get() interface{} {
	return viper.Get(string(k))
}

func (k K) GetString() string {
	return viper.GetString(string(k))
}

func (k K) GetStringSlice() []string {
	return viper.GetStringSlice(string(k))
}

func (k K) GetBool() bool {
	return viper.GetBool(string(k))
}

func (k K) GetInt() int {
	return viper.GetInt(string(k))
}

func (k K) GetUint() uint {
	return viper.GetUint(string(k))
}

func (k K) GetUint8() uint8 {
	return uint8(viper.GetUint(string(k)))
}

func (k K) GetUint64() uint64 {
	return viper.GetUint64(string(k))
}

func (k K) GetFloat64() float64 {
	return viper.GetFloat64(string(k))
}

// DefaultConfig seeds viper with the default value for every key.
func DefaultConfig() {
	ServiceHost.SetDefault("*")
	ServicePort.SetDefault(8080)
	ServiceAPIPrefix.SetDefault("api")
	ServiceBaseURL.SetDefault("http://localhost:8080")
	ServiceDevMode.SetDefault(false)
	ServiceCookieSameSiteNone.SetDefault(false)

	ServiceJWTSigningMethod.SetDefault("HS256")
	ServiceJWTSigningSecret.SetDefault("")
	ServiceJWTSigningKey.SetDefault("")
	ServiceJWTPublicKey.SetDefault("")
	ServiceJWTRefreshSigningSecret.SetDefault("")
	ServiceJWTRefreshSigningKey.SetDefault("")
	ServiceJWTRefreshPublicKey.SetDefault("")

	ServiceCorsAllowOrigins.SetDefault([]string{"*"})
	ServiceCorsAllowMethods.SetDefault([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	ServiceCorsAllowCredentials.SetDefault(true)
	ServiceCorsMaxAge.SetDefault(0)

	ServiceTotpDigits.SetDefault(6)
	ServiceTotpPeriod.SetDefault(30)
	ServiceTotpSkew.SetDefault(uint8(1))
	ServiceTotpIssuer.SetDefault("OTPGate")

	ServiceScratchPoolSize.SetDefault(8)
	ServiceScratchWarnThreshold.SetDefault(2)

	ServiceSeedEncryptionKey.SetDefault("")

	ServiceEnrollmentLifetimeMinutes.SetDefault(10)
	ServiceEnrollmentCleanupSchedule.SetDefault("@hourly")

	ServiceRateLimitEnabled.SetDefault(false)
	ServiceRateLimitMode.SetDefault("endpoints")
	ServiceRateLimitRequestsPerMinute.SetDefault(10)
	ServiceRateLimitWindowMinutes.SetDefault(1)
	ServiceRateLimitEndpoints.SetDefault([]string{
		"POST:/api/v1/login",
		"POST:/api/v1/authn/factor_verify",
	})

	ServiceMailEnabled.SetDefault(true)
	ServiceMailWorkers.SetDefault(5)
	ServiceMailQueueSize.SetDefault(100)

	ServiceCronEnabled.SetDefault(true)
	ServiceCronTimeZone.SetDefault("UTC")

	DatabaseHost.SetDefault("localhost")
	DatabasePort.SetDefault(5432)
	DatabaseUsername.SetDefault("otpgate")
	DatabasePassword.SetDefault("otpgate")
	DatabaseName.SetDefault("otpgate")
	DatabaseAutoMigration.SetDefault(true)

	RedisHost.SetDefault("localhost")
	RedisPort.SetDefault(6379)
	RedisPassword.SetDefault("")
	RedisDatabase.SetDefault(0)

	SMTPHost.SetDefault("localhost")
	SMTPPort.SetDefault(1025)
	SMTPUsername.SetDefault("")
	SMTPPassword.SetDefault("")
	SMTPUseTLS.SetDefault(false)
	SMTPFromEmail.SetDefault("noreply@otpgate.dev")
	SMTPFromName.SetDefault("OTPGate")

	TelemetryEnabled.SetDefault(false)
	TelemetryServiceName.SetDefault("otpgate-api")
	TelemetryServiceVersion.SetDefault("dev")
	TelemetryOTLPEndpoint.SetDefault("")
	TelemetryOTLPHeaders.SetDefault(map[string]string{})
	TelemetryOTLPInsecure.SetDefault(true)
	TelemetryPrometheusEnabled.SetDefault(true)
	TelemetryPrometheusEndpoint.SetDefault("/metrics")
	TelemetryJaegerEnabled.SetDefault(false)
	TelemetryJaegerEndpoint.SetDefault("")
	TelemetryTracingEnabled.SetDefault(true)
	TelemetryTracingSampleRate.SetDefault(1.0)
	TelemetryMetricsEnabled.SetDefault(true)
	TelemetryMetricsInterval.SetDefault(30)
	TelemetryResourceAttributes.SetDefault(map[string]string{})
}

// InitConfig loads defaults, the config file (explicit path or the standard
// search locations) and OTPGATE_* environment variables.
func InitConfig(configFile string) {
	DefaultConfig()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("otpgate-api")
		viper.SetConfigType("yml")
		viper.AddConfigPath("/etc/otpgate-api/")
		viper.AddConfigPath("$HOME/.otpgate-api")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("OTPGATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Missing config files are fine, the environment can carry everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configFile != "" {
			fmt.Printf("error reading config file: %s\n", err)
		}
	}
}

// GetDbURI assembles the postgres connection URI.
func GetDbURI() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		DatabaseUsername.GetString(),
		DatabasePassword.GetString(),
		DatabaseHost.GetString(),
		DatabasePort.GetString(),
		DatabaseName.GetString(),
	)
}

// GetServerAddress assembles the host:port the echo server binds to.
func GetServerAddress() string {
	return fmt.Sprintf("%s:%s", ServiceHost.GetString(), ServicePort.GetString())
}

// Random returns a hex-encoded random string of length*2 characters.
func Random(length int) (string, error) {
	if length < 1 {
		return "", fmt.Errorf("random length must be positive, got %d", length)
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
