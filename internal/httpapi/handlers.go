// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

// Package httpapi exposes the auth service over HTTP. It owns request
// decoding, schema validation, bearer extraction, and the mapping from
// error categories to status codes; the auth service only ever sees
// well-typed strings.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mindsentry/identity/internal/auth"
	"github.com/mindsentry/identity/internal/observability"
	"github.com/mindsentry/identity/pkg/errutil"
)

// maxBodyBytes bounds request bodies; auth payloads are tiny.
const maxBodyBytes = 1 << 16

// Handler serves the auth endpoints.
type Handler struct {
	svc     *auth.Service
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewHandler creates a Handler. metrics may be nil (e.g. in tests).
func NewHandler(svc *auth.Service, logger *slog.Logger, metrics *observability.Metrics) *Handler {
	return &Handler{svc: svc, logger: logger, metrics: metrics}
}

// Routes returns the HTTP mux for the auth API.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/signup", h.handleSignup)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("GET /auth/me", h.handleMe)
	mux.HandleFunc("GET /health", h.handleHealth)
	return mux
}

// handleHealth is a shallow check for the API listener itself; deep
// readiness (database reachability) lives on the metrics listener.
func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		h.record("signup", "invalid_request")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	summary, token, err := h.svc.Signup(r.Context(), req.Email, req.Password, req.ConfirmPassword)
	h.observe("signup", time.Since(start))
	if err != nil {
		h.writeServiceError(w, "signup", err)
		return
	}

	h.record("signup", "ok")
	writeJSON(w, http.StatusCreated, tokenResponse{
		User:        summary,
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		h.record("login", "invalid_request")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	summary, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	h.observe("login", time.Since(start))
	if err != nil {
		h.writeServiceError(w, "login", err)
		return
	}

	h.record("login", "ok")
	writeJSON(w, http.StatusOK, tokenResponse{
		User:        summary,
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		h.record("me", "missing_token")
		writeUnauthorized(w, "missing or malformed Authorization header")
		return
	}

	start := time.Now()
	summary, err := h.svc.ResolveCurrentUser(r.Context(), token)
	h.observe("me", time.Since(start))
	if err != nil {
		h.writeServiceError(w, "me", err)
		return
	}

	h.record("me", "ok")
	writeJSON(w, http.StatusOK, summary)
}

// writeServiceError maps the auth error taxonomy to transport responses.
// Unknown email and wrong password share one category and therefore one
// status and body.
func (h *Handler) writeServiceError(w http.ResponseWriter, operation string, err error) {
	switch {
	case errors.Is(err, auth.ErrPasswordMismatch):
		h.record(operation, "password_mismatch")
		writeError(w, http.StatusBadRequest, "passwords do not match")
	case errors.Is(err, auth.ErrEmailTaken):
		h.record(operation, "email_taken")
		writeError(w, http.StatusBadRequest, "email already registered")
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.record(operation, "invalid_credentials")
		writeUnauthorized(w, "incorrect email or password")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUnknownSubject):
		h.record(operation, "invalid_token")
		writeUnauthorized(w, "could not validate credentials")
	default:
		h.record(operation, "store_unavailable")
		errutil.LogError(h.logger, "auth operation failed", err)
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	}
}

// decode reads and validates the JSON body shape. Returns false if a
// response was already written.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) record(operation, result string) {
	if h.metrics != nil {
		h.metrics.AuthRequestsTotal.WithLabelValues(operation, result).Inc()
	}
}

// observe records the latency of one service call, successful or not.
func (h *Handler) observe(operation string, elapsed time.Duration) {
	if h.metrics != nil {
		h.metrics.AuthRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error means the client went away
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, detail)
}
