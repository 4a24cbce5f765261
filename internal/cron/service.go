// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 OTPGate

// Package cron provides service integration for cron scheduling
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/otpgate/otpgate-api/internal/auth/enrollment"
	"github.com/otpgate/otpgate-api/internal/config"
)

// Service manages cron jobs for the application
type Service struct {
	scheduler *Scheduler
	logger    *slog.Logger
}

// ServiceConfig holds configuration for the cron service
type ServiceConfig struct {
	// EnrollmentCleanupCron is the cron expression for expired enrollment cleanup
	// Default: "@hourly"
	EnrollmentCleanupCron string
	// TimeZone for cron jobs (default: UTC)
	TimeZone string
	// Enabled determines if cron jobs should run
	Enabled bool
}

// NewService creates a new cron service
func NewService(config ServiceConfig, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if !config.Enabled {
		logger.Info("Cron service is disabled")
		return &Service{
			scheduler: nil,
			logger:    logger,
		}, nil
	}

	schedulerConfig := Config{
		EnrollmentCleanupCron: config.EnrollmentCleanupCron,
		TimeZone:              config.TimeZone,
	}

	scheduler, err := NewScheduler(schedulerConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cron scheduler: %w", err)
	}

	return &Service{
		scheduler: scheduler,
		logger:    logger,
	}, nil
}

// Start starts the cron service and all scheduled jobs
func (s *Service) Start() error {
	if s.scheduler == nil {
		s.logger.Info("Cron service not started (disabled)")
		return nil
	}

	s.scheduler.Start()
	s.logger.Info("Cron service started")
	return nil
}

// Stop stops the cron service and all scheduled jobs
func (s *Service) Stop() {
	if s.scheduler == nil {
		return
	}

	s.scheduler.Stop()
	s.logger.Info("Cron service stopped")
}

// SetupEnrollmentCleanup schedules expired enrollment cleanup using the
// given manager.
func (s *Service) SetupEnrollmentCleanup(manager *enrollment.Manager, config ServiceConfig) error {
	if s.scheduler == nil {
		s.logger.Info("Skipping enrollment cleanup setup (cron service disabled)")
		return nil
	}

	cleanupService := enrollment.NewCleanupService(manager, time.Hour, s.logger)

	err := s.scheduler.AddEnrollmentCleanupJobWithService(config.EnrollmentCleanupCron, cleanupService)
	if err != nil {
		return fmt.Errorf("failed to schedule enrollment cleanup job: %w", err)
	}

	s.logger.Info("Enrollment cleanup job scheduled",
		"cron", config.EnrollmentCleanupCron)

	return nil
}

// AddCustomJob adds a custom cron job
func (s *Service) AddCustomJob(cronExpr string, jobName string, job func()) error {
	if s.scheduler == nil {
		return fmt.Errorf("cron service is disabled")
	}

	return s.scheduler.AddJob(cronExpr, jobName, job)
}

// GetJobEntries returns information about scheduled jobs
func (s *Service) GetJobEntries() []JobInfo {
	if s.scheduler == nil {
		return nil
	}

	entries := s.scheduler.GetEntries()
	jobInfos := make([]JobInfo, len(entries))

	for i, entry := range entries {
		jobInfos[i] = JobInfo{
			ID:       entry.ID,
			Next:     entry.Next,
			Prev:     entry.Prev,
			Valid:    entry.Valid(),
			Schedule: fmt.Sprintf("%v", entry.Schedule),
		}
	}

	return jobInfos
}

// JobInfo represents information about a scheduled job
type JobInfo struct {
	ID       cron.EntryID
	Next     time.Time
	Prev     time.Time
	Valid    bool
	Schedule string
}

// IsEnabled returns whether the cron service is enabled
func (s *Service) IsEnabled() bool {
	return s.scheduler != nil
}

// LoadServiceConfigFromViper loads cron service configuration from viper
func LoadServiceConfigFromViper() ServiceConfig {
	return ServiceConfig{
		EnrollmentCleanupCron: config.ServiceEnrollmentCleanupSchedule.GetString(),
		TimeZone:              config.ServiceCronTimeZone.GetString(),
		Enabled:               config.ServiceCronEnabled.GetBool(),
	}
}

// RunEnrollmentCleanupOnce runs the enrollment cleanup job once (useful for testing)
func (s *Service) RunEnrollmentCleanupOnce(ctx context.Context, manager *enrollment.Manager) error {
	if s.scheduler == nil {
		return fmt.Errorf("cron service is disabled")
	}

	_, err := manager.CleanupExpired(ctx)
	return err
}
