// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MaxEmailLength bounds stored emails; matches the column width in the
// accounts migration.
const MaxEmailLength = 254

// Account is the persisted credential record. The password hash is an opaque
// PHC string produced by a PasswordHasher; the plaintext password never
// reaches this type.
type Account struct {
	ID           ulid.ULID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// AccountSummary is the caller-facing projection of an Account. It carries
// only the identifier and email; the password hash and creation timestamp
// stay server-side.
type AccountSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Summary returns the caller-facing projection of the account.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{ID: a.ID.String(), Email: a.Email}
}

// NewAccount creates a validated Account with a fresh identifier and
// creation timestamp. The email must already be validated and the hash
// produced by a PasswordHasher.
func NewAccount(email, passwordHash string) (*Account, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	return &Account{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ValidateEmail performs structural validation of an email address.
// Emails are case-sensitive and act as the natural key for lookup; full
// RFC 5322 parsing is left to the transport layer's schema validation.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return oops.Code("AUTH_INVALID_EMAIL").
			With("max", MaxEmailLength).
			Errorf("email must be at most %d characters", MaxEmailLength)
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email must contain a local part and a domain")
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot contain whitespace")
	}
	return nil
}

// AccountRepository manages account persistence.
type AccountRepository interface {
	// Create stores a new account. Returns ErrDuplicateEmail if the email
	// is already registered (unique constraint violation).
	Create(ctx context.Context, account *Account) error

	// GetByEmail retrieves an account by email (case-sensitive exact match).
	// Returns ErrNotFound if no account has the given email.
	GetByEmail(ctx context.Context, email string) (*Account, error)
}
