// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

package auth

import "errors"

// Sentinel errors for the credential subsystem. Services wrap these with
// oops codes; callers branch with errors.Is.
var (
	// ErrNotFound is returned when a requested account does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned by AccountRepository.Create when the
	// email is already registered. Detection happens at insert time via the
	// store's uniqueness constraint, so concurrent signups cannot race.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrPasswordMismatch is returned when password and confirmation differ.
	ErrPasswordMismatch = errors.New("password confirmation does not match")

	// ErrEmailTaken is returned by Signup when the email is already in use.
	ErrEmailTaken = errors.New("email already taken")

	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password. The two cases are deliberately indistinguishable so
	// that login cannot be used to probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken covers every token verification failure: bad
	// signature, malformed payload, missing subject, expiry. Collapsing
	// them into one category avoids oracle behavior.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrUnknownSubject is returned when a valid token names an account
	// that no longer exists in the store.
	ErrUnknownSubject = errors.New("token subject unknown")
)
