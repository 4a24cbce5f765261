// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 OTPGate

// Package cron provides cron job scheduling using the robfig/cron library
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/otpgate/otpgate-api/internal/auth/enrollment"
)

// CleanupServiceInterface defines the interface for cleanup services
type CleanupServiceInterface interface {
	RunOnce(ctx context.Context) error
}

// Scheduler manages cron jobs using the robfig/cron library
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// Config holds configuration for the cron scheduler
type Config struct {
	// EnrollmentCleanupCron is the cron expression for expired enrollment cleanup
	// Default: "@hourly"
	EnrollmentCleanupCron string
	// TimeZone for cron jobs (default: UTC)
	TimeZone string
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		EnrollmentCleanupCron: "@hourly",
		TimeZone:              "UTC",
	}
}

// NewScheduler creates a new cron scheduler
func NewScheduler(config Config, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Parse timezone
	location, err := time.LoadLocation(config.TimeZone)
	if err != nil {
		return nil, err
	}

	// Create cron with timezone and logger
	c := cron.New(
		cron.WithLocation(location),
		cron.WithLogger(&cronLogger{logger}),
		cron.WithChain(
			cron.Recover(&cronLogger{logger}),             // Recover from panics
			cron.DelayIfStillRunning(&cronLogger{logger}), // Don't run if previous job is still running
		),
	)

	return &Scheduler{
		cron:   c,
		logger: logger,
	}, nil
}

// AddEnrollmentCleanupJob adds a job to clean up expired pending enrollments
func (s *Scheduler) AddEnrollmentCleanupJob(cronExpr string, cleanupService CleanupServiceInterface) error {
	_, err := s.cron.AddFunc(cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		s.logger.Info("Starting enrollment cleanup job")
		start := time.Now()

		err := cleanupService.RunOnce(ctx)
		duration := time.Since(start)

		if err != nil {
			s.logger.Error("Enrollment cleanup job failed",
				"error", err,
				"duration", duration)
		} else {
			s.logger.Info("Enrollment cleanup job completed successfully",
				"duration", duration)
		}
	})

	if err != nil {
		return err
	}

	s.logger.Info("Added enrollment cleanup job", "cron", cronExpr)
	return nil
}

// AddEnrollmentCleanupJobWithService is a convenience method that accepts *enrollment.CleanupService directly
func (s *Scheduler) AddEnrollmentCleanupJobWithService(cronExpr string, cleanupService *enrollment.CleanupService) error {
	return s.AddEnrollmentCleanupJob(cronExpr, cleanupService)
}

// AddJob adds a generic cron job
func (s *Scheduler) AddJob(cronExpr string, jobName string, job func()) error {
	_, err := s.cron.AddFunc(cronExpr, func() {
		s.logger.Info("Starting cron job", "job", jobName)
		start := time.Now()

		job()

		duration := time.Since(start)
		s.logger.Info("Cron job completed", "job", jobName, "duration", duration)
	})

	if err != nil {
		return err
	}

	s.logger.Info("Added cron job", "job", jobName, "cron", cronExpr)
	return nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Cron scheduler started")
}

// Stop stops the cron scheduler gracefully
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Cron scheduler stopped")
}

// GetEntries returns information about scheduled jobs
func (s *Scheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

// cronLogger adapts slog.Logger to work with robfig/cron
type cronLogger struct {
	logger *slog.Logger
}

// Info logs an info message
func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

// Error logs an error message
func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	attrs := []interface{}{"error", err}
	attrs = append(attrs, keysAndValues...)
	l.logger.Error(msg, attrs...)
}
