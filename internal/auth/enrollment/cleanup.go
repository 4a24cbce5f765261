// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

package enrollment

import (
	"context"
	"log/slog"
	"time"
)

// CleanupService handles periodic cleanup of expired pending enrollments
type CleanupService struct {
	manager  *Manager
	interval time.Duration
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(manager *Manager, interval time.Duration, logger *slog.Logger) *CleanupService {
	if logger == nil {
		logger = slog.Default()
	}

	return &CleanupService{
		manager:  manager,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the cleanup service in a background goroutine
func (cs *CleanupService) Start(ctx context.Context) {
	go cs.run(ctx)
}

// Stop gracefully stops the cleanup service
func (cs *CleanupService) Stop() {
	close(cs.stopCh)
	<-cs.doneCh
}

func (cs *CleanupService) run(ctx context.Context) {
	defer close(cs.doneCh)

	ticker := time.NewTicker(cs.interval)
	defer ticker.Stop()

	cs.logger.Info("Enrollment cleanup service started",
		"interval", cs.interval)

	// Run initial cleanup
	cs.performCleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			cs.logger.Info("Enrollment cleanup service stopped due to context cancellation")
			return
		case <-cs.stopCh:
			cs.logger.Info("Enrollment cleanup service stopped")
			return
		case <-ticker.C:
			cs.performCleanup(ctx)
		}
	}
}

// RunOnce performs a single cleanup pass, for cron-driven scheduling.
func (cs *CleanupService) RunOnce(ctx context.Context) error {
	_, err := cs.manager.CleanupExpired(ctx)
	return err
}

func (cs *CleanupService) performCleanup(ctx context.Context) {
	start := time.Now()

	deleted, err := cs.manager.CleanupExpired(ctx)
	if err != nil {
		cs.logger.Error("Enrollment cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		cs.logger.Info("Expired enrollments removed",
			"deleted", deleted,
			"duration", time.Since(start))
	}
}
