// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

package enrollment

import (
	"fmt"
	"time"

	"github.com/otpgate/otpgate-api/internal/config"
)

// Config contains configuration for pending TOTP enrollments
type Config struct {
	Lifetime        time.Duration // How long a started enrollment stays activatable (default: 10 minutes)
	CleanupSchedule string        // Cron schedule for expired enrollment cleanup (default: @hourly)
}

// DefaultConfig returns the default configuration for pending enrollments
func DefaultConfig() Config {
	return Config{
		Lifetime:        10 * time.Minute,
		CleanupSchedule: "@hourly",
	}
}

// LoadConfigFromViper loads enrollment configuration from viper settings
func LoadConfigFromViper() (*Config, error) {
	lifetimeMinutes := config.ServiceEnrollmentLifetimeMinutes.GetInt()
	schedule := config.ServiceEnrollmentCleanupSchedule.GetString()

	cfg := &Config{
		Lifetime:        time.Duration(lifetimeMinutes) * time.Minute,
		CleanupSchedule: schedule,
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateConfig validates an enrollment configuration
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if cfg.Lifetime < time.Minute {
		return fmt.Errorf("enrollment lifetime must be at least 1 minute, got %v", cfg.Lifetime)
	}
	if cfg.Lifetime > 24*time.Hour {
		return fmt.Errorf("enrollment lifetime must be at most 24 hours, got %v", cfg.Lifetime)
	}

	if cfg.CleanupSchedule == "" {
		return fmt.Errorf("cleanup schedule cannot be empty")
	}

	return nil
}
