// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// Service provides signup, login, and bearer-token resolution.
type Service struct {
	accounts AccountRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	logger   *slog.Logger
}

// NewService creates a new Service.
func NewService(accounts AccountRepository, hasher PasswordHasher, tokens TokenIssuer) (*Service, error) {
	return NewServiceWithLogger(accounts, hasher, tokens, slog.Default())
}

// NewServiceWithLogger creates a new Service with an explicit logger.
// The logger never receives passwords, hashes, or raw tokens.
func NewServiceWithLogger(accounts AccountRepository, hasher PasswordHasher, tokens TokenIssuer, logger *slog.Logger) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("accounts repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("token issuer is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("logger is required")
	}
	return &Service{accounts: accounts, hasher: hasher, tokens: tokens, logger: logger}, nil
}

// dummyPasswordHash is verified when a login names an unknown email, so the
// request costs the same as a real verification and response time does not
// leak which emails are registered. It is not a credential and matches no
// password.
//
//nolint:gosec // G101: intentionally fake hash for timing equalization, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Signup registers a new account and returns its summary plus a bearer token.
// The password/confirmation check runs before the store is touched; a
// duplicate email surfaces as ErrEmailTaken from the insert conflict.
func (s *Service) Signup(ctx context.Context, email, password, passwordConfirmation string) (AccountSummary, string, error) {
	if err := ValidateEmail(email); err != nil {
		return AccountSummary{}, "", err
	}
	if password != passwordConfirmation {
		return AccountSummary{}, "", oops.Code("AUTH_PASSWORD_MISMATCH").Wrap(ErrPasswordMismatch)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return AccountSummary{}, "", oops.Code("AUTH_HASH_FAILED").Wrap(err)
	}

	account, err := NewAccount(email, hash)
	if err != nil {
		return AccountSummary{}, "", err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return AccountSummary{}, "", oops.Code("AUTH_EMAIL_TAKEN").Wrap(ErrEmailTaken)
		}
		return AccountSummary{}, "", oops.Code("AUTH_STORE_UNAVAILABLE").
			With("operation", "create account").
			Wrap(err)
	}

	token, err := s.tokens.Issue(account.Email)
	if err != nil {
		return AccountSummary{}, "", oops.Code("AUTH_TOKEN_ISSUE_FAILED").Wrap(err)
	}

	s.logger.InfoContext(ctx, "account created", "account_id", account.ID.String())
	return account.Summary(), token, nil
}

// Login authenticates an email/password pair and returns the account summary
// plus a fresh bearer token. An unknown email and a wrong password both yield
// ErrInvalidCredentials; the dummy-hash verification keeps the two paths
// indistinguishable by timing as well.
func (s *Service) Login(ctx context.Context, email, password string) (AccountSummary, string, error) {
	account, lookupErr := s.accounts.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	if lookupErr == nil {
		targetHash = account.PasswordHash
	} else if !errors.Is(lookupErr, ErrNotFound) {
		return AccountSummary{}, "", oops.Code("AUTH_STORE_UNAVAILABLE").
			With("operation", "get account by email").
			Wrap(lookupErr)
	}

	valid := s.hasher.Verify(password, targetHash)
	if lookupErr != nil || !valid {
		return AccountSummary{}, "", oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(account.Email)
	if err != nil {
		return AccountSummary{}, "", oops.Code("AUTH_TOKEN_ISSUE_FAILED").Wrap(err)
	}

	s.logger.InfoContext(ctx, "login succeeded", "account_id", account.ID.String())
	return account.Summary(), token, nil
}

// ResolveCurrentUser verifies a bearer token and returns the summary of the
// account it names. A token naming a since-removed account yields
// ErrUnknownSubject; no delete path exists in this service, but the store is
// an external collaborator and the case is handled anyway.
func (s *Service) ResolveCurrentUser(ctx context.Context, token string) (AccountSummary, error) {
	email, err := s.tokens.Verify(token)
	if err != nil {
		return AccountSummary{}, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AccountSummary{}, oops.Code("AUTH_UNKNOWN_SUBJECT").Wrap(ErrUnknownSubject)
		}
		return AccountSummary{}, oops.Code("AUTH_STORE_UNAVAILABLE").
			With("operation", "get account by email").
			Wrap(err)
	}

	return account.Summary(), nil
}
