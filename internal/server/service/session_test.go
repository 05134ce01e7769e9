package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quollsoft/passgate/internal/server/domain"
	"github.com/quollsoft/passgate/internal/server/service"
)

func TestSessionIssueAndVerify(t *testing.T) {
	t.Parallel()

	sessions := &service.SessionService{
		Secret: []byte("test-secret"),
		Issuer: "passgate-test",
	}

	u := domain.User{ID: "user-1", Email: "a@b.com"}
	token, err := sessions.Issue(u)
	require.NoError(t, err)

	userID, email, err := sessions.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)
	require.Equal(t, "a@b.com", email)
}

func TestSessionVerifyRejections(t *testing.T) {
	t.Parallel()

	sessions := &service.SessionService{
		Secret: []byte("test-secret"),
		Issuer: "passgate-test",
	}

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()
		_, _, err := sessions.Verify("not.a.token")
		require.ErrorIs(t, err, service.ErrInvalidSession)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		other := &service.SessionService{Secret: []byte("other-secret"), Issuer: "passgate-test"}
		token, err := other.Issue(domain.User{ID: "user-1", Email: "a@b.com"})
		require.NoError(t, err)

		_, _, err = sessions.Verify(token)
		require.ErrorIs(t, err, service.ErrInvalidSession)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		t.Parallel()
		other := &service.SessionService{Secret: []byte("test-secret"), Issuer: "someone-else"}
		token, err := other.Issue(domain.User{ID: "user-1", Email: "a@b.com"})
		require.NoError(t, err)

		_, _, err = sessions.Verify(token)
		require.ErrorIs(t, err, service.ErrInvalidSession)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		expired := &service.SessionService{
			Secret: []byte("test-secret"),
			Issuer: "passgate-test",
			TTL:    time.Millisecond,
		}
		token, err := expired.Issue(domain.User{ID: "user-1", Email: "a@b.com"})
		require.NoError(t, err)

		time.Sleep(20 * time.Millisecond)
		_, _, err = sessions.Verify(token)
		require.ErrorIs(t, err, service.ErrInvalidSession)
	})
}
