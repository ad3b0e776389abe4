// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// Token configuration constraints.
const (
	// MinSigningSecretBytes is the minimum secret length: 128 bits of
	// entropy. There is deliberately no default secret; deployments must
	// supply their own.
	MinSigningSecretBytes = 16

	// DefaultTokenTTL is the default bearer lifetime: 43200 minutes
	// (30 days). Unusually long; kept configurable.
	DefaultTokenTTL = 43200 * time.Minute
)

// TokenIssuer mints and verifies signed bearer tokens carrying an identity
// claim. Tokens are compact JWS (HS256) with the account email as subject.
type TokenIssuer interface {
	// Issue creates a signed token binding the email with expiry now+TTL.
	Issue(email string) (string, error)

	// Verify checks the token's signature and expiry and returns the
	// embedded email claim. Every failure mode (bad signature, malformed
	// payload, missing subject, expired) yields ErrInvalidToken.
	Verify(token string) (string, error)
}

// JWTIssuer implements TokenIssuer using golang-jwt with a symmetric key.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIssuer creates a JWTIssuer. The secret must carry at least
// MinSigningSecretBytes and the TTL must be positive; both are checked once
// here so Issue cannot fail on configuration later.
func NewJWTIssuer(secret []byte, ttl time.Duration) (*JWTIssuer, error) {
	if len(secret) < MinSigningSecretBytes {
		return nil, oops.Code("AUTH_WEAK_SECRET").
			With("min_bytes", MinSigningSecretBytes).
			Errorf("signing secret must be at least %d bytes", MinSigningSecretBytes)
	}
	if ttl <= 0 {
		return nil, oops.Code("AUTH_INVALID_TTL").Errorf("token TTL must be positive")
	}
	return &JWTIssuer{secret: secret, ttl: ttl, now: time.Now}, nil
}

// WithClock returns a copy of the issuer using the given time source.
// Used by tests to pin issuance and verification instants.
func (i *JWTIssuer) WithClock(now func() time.Time) *JWTIssuer {
	return &JWTIssuer{secret: i.secret, ttl: i.ttl, now: now}
}

// Issue creates a signed token for the email.
func (i *JWTIssuer) Issue(email string) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify checks signature and expiry and extracts the email subject.
func (i *JWTIssuer) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	// One category for every failure so callers cannot probe which check
	// rejected the token.
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", oops.Code("AUTH_INVALID_TOKEN").Wrap(ErrInvalidToken)
	}

	return claims.Subject, nil
}

// Compile-time interface check.
var _ TokenIssuer = (*JWTIssuer)(nil)
