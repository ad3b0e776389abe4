// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

// Package auth implements the MindSentry credential subsystem.
//
// # Domain Types
//
// Account is the persisted credential record. Accounts should be created
// through NewAccount, which assigns the identifier and creation timestamp;
// direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated accounts.
//
// # Services
//
// Service orchestrates signup, login, and bearer-token resolution on top of
// three collaborator contracts:
//   - AccountRepository - persistence (lookup by email, insert)
//   - PasswordHasher - one-way password hashing and verification
//   - TokenIssuer - signed, expiring bearer tokens
//
// The service holds no mutable in-process state; uniqueness of emails is
// delegated to the store's constraint and surfaced as ErrDuplicateEmail.
package auth
