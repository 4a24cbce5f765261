// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2024-2025 OTPGate

// Package models contains the database models
package models

import (
	"github.com/jackc/pgx/v5"
)

// ServiceInterface is what the controllers depend on: the full query surface
// plus the ability to rebind it to a transaction for the exclusive
// load-verify-save cycle around MFA state.
type ServiceInterface interface {
	Querier
	WithTx(tx pgx.Tx) ServiceInterface
}

// Service is a wrapper around the database queries
type Service struct {
	*Queries
}

// NewService creates a new Service
func NewService(db *Queries) *Service {
	return &Service{Queries: db}
}

// WithTx returns a Service bound to the given transaction. Queries issued
// through it see and hold the transaction's row locks.
func (s *Service) WithTx(tx pgx.Tx) ServiceInterface {
	return &Service{Queries: s.Queries.WithTx(tx)}
}
