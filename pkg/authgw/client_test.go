package authgw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeIdentity struct {
	email string
	ok    bool
}

func (f *fakeIdentity) AuthenticatedEmail() (string, bool) { return f.email, f.ok }

func TestSendClassification(t *testing.T) {
	t.Parallel()

	t.Run("2xx returns payload", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"requires2FA": true, "twoFAMethod": "SMS"}`))
		}))
		defer srv.Close()

		resp, err := NewClient(srv.URL).Send(context.Background(), http.MethodGet, "/account/settings", nil, nil)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.Status)
		require.True(t, resp.Bool("requires2FA"))
		require.Equal(t, "SMS", resp.String("twoFAMethod"))
		require.False(t, resp.StepUpRequired())
	})

	t.Run("206 is a success carrying the step-up branch", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write([]byte(`{"loginAttemptId": "abc"}`))
		}))
		defer srv.Close()

		resp, err := NewClient(srv.URL).Send(context.Background(), http.MethodPost, "/login", map[string]string{"email": "a@b.com"}, nil)
		require.NoError(t, err)
		require.True(t, resp.StepUpRequired())
		require.Equal(t, "abc", resp.String("loginAttemptId"))
	})

	t.Run("empty or non-JSON bodies decode to an empty payload", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		resp, err := NewClient(srv.URL).Send(context.Background(), http.MethodPost, "/logout", nil, nil)
		require.NoError(t, err)
		require.Empty(t, resp.Data)
	})

	t.Run("error message precedence error then message then generic", func(t *testing.T) {
		t.Parallel()

		bodies := map[string]string{
			`{"error": "boom"}`:      "boom",
			`{"message": "notice"}`:  "notice",
			`{"unrelated": "field"}`: "HTTP 409",
		}

		for body, want := range bodies {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(body))
			}))

			_, err := NewClient(srv.URL).Send(context.Background(), http.MethodPost, "/signup", nil, nil)
			require.Error(t, err)
			require.EqualError(t, err, want)
			require.True(t, IsConflict(err))
			srv.Close()
		}
	})

	t.Run("transport failure is a NetworkError", func(t *testing.T) {
		t.Parallel()

		c := NewClient("http://127.0.0.1:1") // nothing listens here
		_, err := c.Send(context.Background(), http.MethodPost, "/login", nil, nil)
		require.Error(t, err)
		require.True(t, IsNetworkError(err))
		require.EqualError(t, err, "Network error occurred")
	})
}

func TestSendIdentityHeader(t *testing.T) {
	t.Parallel()

	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get(IdentityHeader)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.Identity = &fakeIdentity{email: "a@b.com", ok: true}
	_, err := c.Send(context.Background(), http.MethodGet, "/account/settings", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "a@b.com", gotHeader)

	c.Identity = &fakeIdentity{ok: false}
	_, err = c.Send(context.Background(), http.MethodGet, "/", nil, nil)
	require.NoError(t, err)
	require.Empty(t, gotHeader)
}

func TestSendCookieRoundTrip(t *testing.T) {
	t.Parallel()

	var sawCookie bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "tok"})
		default:
			_, err := r.Cookie("session")
			sawCookie = err == nil
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Send(context.Background(), http.MethodPost, "/login", nil, nil)
	require.NoError(t, err)
	_, err = c.Send(context.Background(), http.MethodGet, "/account/settings", nil, nil)
	require.NoError(t, err)
	require.True(t, sawCookie)
}

func TestSend401Handling(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	t.Run("authenticated identity triggers the hook", func(t *testing.T) {
		c := NewClient(srv.URL)
		c.Identity = &fakeIdentity{email: "a@b.com", ok: true}
		hookCalled := false
		c.OnAuthRequired = func() { hookCalled = true }

		_, err := c.Send(context.Background(), http.MethodGet, "/account/settings", nil, nil)
		require.ErrorIs(t, err, ErrAuthRequired)
		require.True(t, hookCalled)
	})

	t.Run("unauthenticated identity does not trigger the hook", func(t *testing.T) {
		c := NewClient(srv.URL)
		c.Identity = &fakeIdentity{ok: false}
		c.OnAuthRequired = func() { t.Fatal("hook must not fire before authentication") }

		_, err := c.Send(context.Background(), http.MethodPost, "/login", nil, nil)
		require.ErrorIs(t, err, ErrAuthRequired)

		var he *HTTPError
		require.True(t, errors.As(err, &he))
		require.Equal(t, http.StatusUnauthorized, he.Status)
		require.True(t, he.Generic)
		require.EqualError(t, err, "Authentication required")
	})

	t.Run("body message is carried through", func(t *testing.T) {
		srvMsg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "Token expired"}`))
		}))
		defer srvMsg.Close()

		_, err := NewClient(srvMsg.URL).Send(context.Background(), http.MethodPost, "/login", nil, nil)
		require.ErrorIs(t, err, ErrAuthRequired)
		require.EqualError(t, err, "Token expired")

		var he *HTTPError
		require.True(t, errors.As(err, &he))
		require.False(t, he.Generic)
	})
}
