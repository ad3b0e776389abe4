// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

package httpapi

import (
	"github.com/samber/oops"

	"github.com/mindsentry/identity/internal/auth"
)

// Request and response bodies. Field names match the JSON contract the
// mobile client already speaks: camelCase confirmPassword on signup,
// snake_case access_token on responses.

type signupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (r *signupRequest) validate() error {
	if err := auth.ValidateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return oops.Code("API_INVALID_REQUEST").Errorf("password is required")
	}
	if r.ConfirmPassword == "" {
		return oops.Code("API_INVALID_REQUEST").Errorf("confirmPassword is required")
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) validate() error {
	if err := auth.ValidateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return oops.Code("API_INVALID_REQUEST").Errorf("password is required")
	}
	return nil
}

type tokenResponse struct {
	User        auth.AccountSummary `json:"user"`
	AccessToken string              `json:"access_token"`
	TokenType   string              `json:"token_type"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
