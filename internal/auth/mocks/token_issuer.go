// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/mindsentry/identity/internal/auth"
)

// MockTokenIssuer is a mock implementation of auth.TokenIssuer.
type MockTokenIssuer struct {
	mock.Mock
}

// NewMockTokenIssuer creates a mock with cleanup and expectation assertion
// registered on the test.
func NewMockTokenIssuer(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTokenIssuer {
	m := &MockTokenIssuer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Issue mocks auth.TokenIssuer.Issue.
func (m *MockTokenIssuer) Issue(email string) (string, error) {
	args := m.Called(email)
	return args.String(0), args.Error(1)
}

// Verify mocks auth.TokenIssuer.Verify.
func (m *MockTokenIssuer) Verify(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

var _ auth.TokenIssuer = (*MockTokenIssuer)(nil)
