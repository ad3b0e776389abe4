// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

// Package errutil provides structured logging and test helpers for oops
// errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// Code returns the oops code attached to err, or "" for plain errors.
func Code(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code := oopsErr.Code(); code != nil {
			if s, ok := code.(string); ok {
				return s
			}
		}
	}
	return ""
}

// LogError logs an error with structured context if it's an oops error.
// For oops errors it extracts the message, code, and context; for standard
// errors it logs the error string. Context values are attached by the code
// that built the error, which never includes credentials or tokens.
func LogError(logger *slog.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{
			"error", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
	} else {
		logger.Error(msg, "error", err)
	}
}
