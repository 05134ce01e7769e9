package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	httpapi "github.com/quollsoft/passgate/internal/server/http"
	"github.com/quollsoft/passgate/internal/server/service"
	"github.com/quollsoft/passgate/internal/server/store/drivers/sqlite"
	"github.com/quollsoft/passgate/pkg/authgw"
)

type captureSender struct {
	codes []string
}

func (s *captureSender) SendCode(_ context.Context, _, _, code string) error {
	s.codes = append(s.codes, code)
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *captureSender) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(t.TempDir(), "test.db"))
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	sender := &captureSender{}
	auth := &service.AuthService{Store: st, Mailer: sender}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := httpapi.NewRouter(st, logger)
	router.AuthService = auth
	router.PasswordService = &service.PasswordService{Store: st, Mailer: sender, Auth: auth}
	router.AccountService = &service.AccountService{Store: st, Issuer: "passgate-test"}
	router.SessionService = &service.SessionService{Secret: []byte("test-secret"), Issuer: "passgate-test"}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, sender
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, body)
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	require.NoError(t, err)

	data := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &data)
	}
	return resp, data
}

func signup(t *testing.T, client *http.Client, baseURL, email string, requires2FA bool) {
	t.Helper()
	resp, _ := postJSON(t, client, baseURL+"/signup", map[string]any{
		"email":       email,
		"password":    "password123",
		"requires2FA": requires2FA,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestSignupEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	client := newClient(t)

	signup(t, client, srv.URL, "a@b.com", false)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		resp, data := postJSON(t, client, srv.URL+"/signup", map[string]any{
			"email":    "a@b.com",
			"password": "password123",
		})
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		require.Equal(t, "Email already exists", data["error"])
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		resp, _ := postJSON(t, client, srv.URL+"/signup", map[string]any{
			"email":    "not-an-email",
			"password": "password123",
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("short password rejected", func(t *testing.T) {
		resp, _ := postJSON(t, client, srv.URL+"/signup", map[string]any{
			"email":    "b@b.com",
			"password": "short",
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestLoginAndSettings(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	client := newClient(t)
	signup(t, client, srv.URL, "a@b.com", false)

	resp, _ := postJSON(t, client, srv.URL+"/login", map[string]any{
		"email":    "a@b.com",
		"password": "wrongpassword",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = postJSON(t, client, srv.URL+"/login", map[string]any{
		"email":    "a@b.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The session cookie now unlocks the account endpoints.
	resp, data := doJSON(t, client, http.MethodGet, srv.URL+"/account/settings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, false, data["requires2FA"])
	require.Equal(t, "Email", data["twoFAMethod"])

	// Without the cookie the same endpoint is a 401.
	bare := newClient(t)
	resp, data = doJSON(t, bare, http.MethodGet, srv.URL+"/account/settings", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Authentication required", data["error"])
}

func TestSteppedUpLoginOverHTTP(t *testing.T) {
	t.Parallel()

	srv, sender := newTestServer(t)
	client := newClient(t)
	signup(t, client, srv.URL, "a@b.com", true)

	resp, data := postJSON(t, client, srv.URL+"/login", map[string]any{
		"email":    "a@b.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusPartialContent, resp.StatusCode)
	attemptID, _ := data["loginAttemptId"].(string)
	require.NotEmpty(t, attemptID)
	require.NotEmpty(t, sender.codes)

	t.Run("wrong code rejected", func(t *testing.T) {
		resp, data := postJSON(t, client, srv.URL+"/verify-2fa", map[string]any{
			"email":          "a@b.com",
			"loginAttemptId": attemptID,
			"2FACode":        "000000",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "Invalid code", data["error"])
	})

	t.Run("right code signs in", func(t *testing.T) {
		resp, _ := postJSON(t, client, srv.URL+"/verify-2fa", map[string]any{
			"email":          "a@b.com",
			"loginAttemptId": attemptID,
			"2FACode":        sender.codes[len(sender.codes)-1],
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp, data := doJSON(t, client, http.MethodGet, srv.URL+"/account/settings", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, true, data["requires2FA"])
	})
}

func TestUpdateSettingsOverHTTP(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	client := newClient(t)
	signup(t, client, srv.URL, "a@b.com", false)

	resp, _ := postJSON(t, client, srv.URL+"/login", map[string]any{
		"email":    "a@b.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := doJSON(t, client, http.MethodPatch, srv.URL+"/account/settings", map[string]any{
		"requires2FA": true,
		"twoFAMethod": "AuthenticatorApp",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, data["requires2FA"])
	require.Equal(t, "AuthenticatorApp", data["twoFAMethod"])
	require.Contains(t, data["provisioningUrl"], "otpauth://totp/")

	resp, _ = doJSON(t, client, http.MethodPatch, srv.URL+"/account/settings", map[string]any{
		"requires2FA": true,
		"twoFAMethod": "Telegraph",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPasswordResetOverHTTP(t *testing.T) {
	t.Parallel()

	srv, sender := newTestServer(t)
	client := newClient(t)
	signup(t, client, srv.URL, "a@b.com", false)

	resp, data := postJSON(t, client, srv.URL+"/forgot-password", map[string]any{
		"email": "a@b.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	attemptID, _ := data["loginAttemptId"].(string)
	require.NotEmpty(t, attemptID)

	resp, _ = postJSON(t, client, srv.URL+"/reset-password", map[string]any{
		"email":          "a@b.com",
		"loginAttemptId": attemptID,
		"code":           sender.codes[len(sender.codes)-1],
		"new_password":   "brandnewpass1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = postJSON(t, client, srv.URL+"/login", map[string]any{
		"email":    "a@b.com",
		"password": "brandnewpass1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Unknown emails get the same 200 shape.
	resp, data = postJSON(t, client, srv.URL+"/forgot-password", map[string]any{
		"email": "nobody@b.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, data["loginAttemptId"])
}

func TestDeleteAccountOverHTTP(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	client := newClient(t)
	signup(t, client, srv.URL, "a@b.com", false)

	resp, _ := postJSON(t, client, srv.URL+"/login", map[string]any{
		"email":    "a@b.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, client, http.MethodDelete, srv.URL+"/delete-account", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The cookie was cleared and the account is gone.
	resp, _ = doJSON(t, client, http.MethodGet, srv.URL+"/account/settings", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = postJSON(t, client, srv.URL+"/login", map[string]any{
		"email":    "a@b.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIdentityHeaderMismatch(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	client := newClient(t)
	signup(t, client, srv.URL, "a@b.com", false)

	resp, _ := postJSON(t, client, srv.URL+"/login", map[string]any{
		"email":    "a@b.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/account/settings", nil)
	require.NoError(t, err)
	req.Header.Set(authgw.IdentityHeader, "somebody@else.com")

	resp2, err := client.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestLogoutClearsCookie(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	client := newClient(t)
	signup(t, client, srv.URL, "a@b.com", false)

	resp, _ := postJSON(t, client, srv.URL+"/login", map[string]any{
		"email":    "a@b.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = postJSON(t, client, srv.URL+"/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, client, http.MethodGet, srv.URL+"/account/settings", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
