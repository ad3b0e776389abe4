// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

// Package mocks provides testify mocks for auth collaborator contracts.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mindsentry/identity/internal/auth"
)

// MockAccountRepository is a mock implementation of auth.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a mock with cleanup and expectation
// assertion registered on the test.
func NewMockAccountRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Create mocks auth.AccountRepository.Create.
func (m *MockAccountRepository) Create(ctx context.Context, account *auth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// GetByEmail mocks auth.AccountRepository.GetByEmail.
func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	args := m.Called(ctx, email)
	if acc, ok := args.Get(0).(*auth.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ auth.AccountRepository = (*MockAccountRepository)(nil)
