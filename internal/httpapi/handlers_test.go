// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindsentry/identity/internal/auth"
	"github.com/mindsentry/identity/internal/httpapi"
	"github.com/mindsentry/identity/internal/observability"
)

// memoryAccounts is an in-memory AccountRepository with the same uniqueness
// semantics as the postgres implementation.
type memoryAccounts struct {
	mu       sync.Mutex
	accounts map[string]*auth.Account
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{accounts: make(map[string]*auth.Account)}
}

func (m *memoryAccounts) Create(_ context.Context, account *auth.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[account.Email]; exists {
		return auth.ErrDuplicateEmail
	}
	copied := *account
	m.accounts[account.Email] = &copied
	return nil
}

func (m *memoryAccounts) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[email]
	if !ok {
		return nil, auth.ErrNotFound
	}
	copied := *account
	return &copied, nil
}

func (m *memoryAccounts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts)
}

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestAPI(t *testing.T) (*httptest.Server, *memoryAccounts) {
	t.Helper()

	issuer, err := auth.NewJWTIssuer([]byte(testSecret), time.Hour)
	require.NoError(t, err)

	accounts := newMemoryAccounts()
	svc, err := auth.NewServiceWithLogger(accounts, auth.NewArgon2idHasher(), issuer, slog.Default())
	require.NoError(t, err)

	handler := httpapi.NewHandler(svc, slog.Default(), nil)
	ts := httptest.NewServer(handler.Routes())
	t.Cleanup(ts.Close)
	return ts, accounts
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(raw)) //nolint:gosec // loopback test server
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func getMe(t *testing.T, baseURL, token string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, baseURL+"/auth/me", nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func signupBody(email string) map[string]string {
	return map[string]string{
		"email":           email,
		"password":        "Pw123!",
		"confirmPassword": "Pw123!",
	}
}

func TestSignup(t *testing.T) {
	t.Run("creates account and returns token", func(t *testing.T) {
		ts, accounts := newTestAPI(t)

		resp, body := postJSON(t, ts.URL+"/auth/signup", signupBody("a@x.com"))
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		user, ok := body["user"].(map[string]any)
		require.True(t, ok, "response must carry a user object")
		assert.Equal(t, "a@x.com", user["email"])
		assert.NotEmpty(t, user["id"])
		assert.NotEmpty(t, body["access_token"])
		assert.Equal(t, "bearer", body["token_type"])

		// password hash and creation time never leave the server
		assert.NotContains(t, user, "password_hash")
		assert.NotContains(t, user, "created_at")
		assert.Equal(t, 1, accounts.count())
	})

	t.Run("password mismatch is a 400 and writes nothing", func(t *testing.T) {
		ts, accounts := newTestAPI(t)

		resp, body := postJSON(t, ts.URL+"/auth/signup", map[string]string{
			"email":           "a@x.com",
			"password":        "Pw123!",
			"confirmPassword": "other",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body["detail"], "match")
		assert.Equal(t, 0, accounts.count())
	})

	t.Run("duplicate email is a 400 and keeps one account", func(t *testing.T) {
		ts, accounts := newTestAPI(t)

		resp, _ := postJSON(t, ts.URL+"/auth/signup", signupBody("a@x.com"))
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp, body := postJSON(t, ts.URL+"/auth/signup", signupBody("a@x.com"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body["detail"], "already registered")
		assert.Equal(t, 1, accounts.count())
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		ts, _ := newTestAPI(t)

		resp, err := http.Post(ts.URL+"/auth/signup", "application/json", bytes.NewReader([]byte("{not json"))) //nolint:gosec // loopback test server
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials return a fresh token", func(t *testing.T) {
		ts, _ := newTestAPI(t)
		postJSON(t, ts.URL+"/auth/signup", signupBody("a@x.com"))

		resp, body := postJSON(t, ts.URL+"/auth/login", map[string]string{
			"email":    "a@x.com",
			"password": "Pw123!",
		})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, body["access_token"])
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		ts, _ := newTestAPI(t)
		postJSON(t, ts.URL+"/auth/signup", signupBody("a@x.com"))

		respWrong, bodyWrong := postJSON(t, ts.URL+"/auth/login", map[string]string{
			"email":    "a@x.com",
			"password": "bad-password",
		})
		respUnknown, bodyUnknown := postJSON(t, ts.URL+"/auth/login", map[string]string{
			"email":    "nobody@x.com",
			"password": "Pw123!",
		})

		assert.Equal(t, http.StatusUnauthorized, respWrong.StatusCode)
		assert.Equal(t, respWrong.StatusCode, respUnknown.StatusCode)
		assert.Equal(t, bodyWrong["detail"], bodyUnknown["detail"])
		assert.Equal(t, "Bearer", respWrong.Header.Get("WWW-Authenticate"))
	})
}

func TestMe(t *testing.T) {
	t.Run("valid token resolves the account", func(t *testing.T) {
		ts, _ := newTestAPI(t)
		_, signup := postJSON(t, ts.URL+"/auth/signup", signupBody("a@x.com"))
		token := signup["access_token"].(string)

		resp, body := getMe(t, ts.URL, token)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "a@x.com", body["email"])
	})

	t.Run("missing header is a 401", func(t *testing.T) {
		ts, _ := newTestAPI(t)

		resp, _ := getMe(t, ts.URL, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	})

	t.Run("garbage token is a 401", func(t *testing.T) {
		ts, _ := newTestAPI(t)

		resp, _ := getMe(t, ts.URL, "not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token signed with a different secret is a 401", func(t *testing.T) {
		ts, _ := newTestAPI(t)
		postJSON(t, ts.URL+"/auth/signup", signupBody("a@x.com"))

		other, err := auth.NewJWTIssuer([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
		require.NoError(t, err)
		forged, err := other.Issue("a@x.com")
		require.NoError(t, err)

		resp, _ := getMe(t, ts.URL, forged)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

// TestSignupLoginMeFlow exercises the full bearer-token lifecycle across
// endpoints.
func TestSignupLoginMeFlow(t *testing.T) {
	ts, _ := newTestAPI(t)

	_, signup := postJSON(t, ts.URL+"/auth/signup", signupBody("a@x.com"))
	first := signup["access_token"].(string)

	resp, me := getMe(t, ts.URL, first)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a@x.com", me["email"])

	_, login := postJSON(t, ts.URL+"/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "Pw123!",
	})
	second := login["access_token"].(string)

	resp, me = getMe(t, ts.URL, second)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a@x.com", me["email"])
}

func TestConcurrentSignups_SameEmail(t *testing.T) {
	ts, accounts := newTestAPI(t)

	const attempts = 4
	statuses := make(chan int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			raw, _ := json.Marshal(signupBody("race@x.com"))
			resp, err := http.Post(ts.URL+"/auth/signup", "application/json", bytes.NewReader(raw)) //nolint:gosec // loopback test server
			if err != nil {
				statuses <- 0
				return
			}
			defer resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	created := 0
	for status := range statuses {
		if status == http.StatusCreated {
			created++
		}
	}
	assert.Equal(t, 1, created, "exactly one signup may win")
	assert.Equal(t, 1, accounts.count())
}

func TestHealth(t *testing.T) {
	ts, _ := newTestAPI(t)

	resp, err := http.Get(ts.URL + "/health") //nolint:gosec // loopback test server
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsRecorded(t *testing.T) {
	issuer, err := auth.NewJWTIssuer([]byte(testSecret), time.Hour)
	require.NoError(t, err)
	svc, err := auth.NewServiceWithLogger(newMemoryAccounts(), auth.NewArgon2idHasher(), issuer, slog.Default())
	require.NoError(t, err)

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	handler := httpapi.NewHandler(svc, slog.Default(), metrics)
	ts := httptest.NewServer(handler.Routes())
	t.Cleanup(ts.Close)

	resp, _ := postJSON(t, ts.URL+"/auth/signup", signupBody("a@x.com"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.AuthRequestsTotal.WithLabelValues("signup", "ok")))
	// The latency series only exists once the handler observed a sample.
	assert.Equal(t, 1,
		testutil.CollectAndCount(metrics.AuthRequestDuration, "identity_auth_request_duration_seconds"))

	resp, _ = postJSON(t, ts.URL+"/auth/login", map[string]string{
		"email":    "a@x.com",
		"password": "Pw123!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, float64(1),
		testutil.ToFloat64(metrics.AuthRequestsTotal.WithLabelValues("login", "ok")))
	assert.Equal(t, 2,
		testutil.CollectAndCount(metrics.AuthRequestDuration, "identity_auth_request_duration_seconds"))
}
