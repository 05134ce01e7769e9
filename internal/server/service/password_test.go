package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quollsoft/passgate/internal/server/service"
)

func newPasswordService(t *testing.T) (*service.PasswordService, *service.AuthService, *captureSender) {
	t.Helper()
	st := newTestStore(t)
	sender := &captureSender{}
	auth := &service.AuthService{Store: st, Mailer: sender}
	return &service.PasswordService{Store: st, Mailer: sender, Auth: auth}, auth, sender
}

func TestPasswordResetRoundTrip(t *testing.T) {
	t.Parallel()

	pw, auth, sender := newPasswordService(t)
	ctx := context.Background()

	_, err := auth.SignUp(ctx, "a@b.com", "oldpassword1", false)
	require.NoError(t, err)

	attemptID, err := pw.StartReset(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotEmpty(t, attemptID)
	require.Equal(t, []string{"reset"}, sender.purposes)

	err = pw.CompleteReset(ctx, "a@b.com", attemptID, sender.lastCode(t), "newpassword1")
	require.NoError(t, err)

	// Old password is dead, new one works.
	_, err = auth.StartLogin(ctx, "a@b.com", "oldpassword1")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)

	result, err := auth.StartLogin(ctx, "a@b.com", "newpassword1")
	require.NoError(t, err)
	require.False(t, result.StepUp)
}

func TestStartResetUnknownEmail(t *testing.T) {
	t.Parallel()

	pw, _, sender := newPasswordService(t)
	ctx := context.Background()

	// Unknown emails still get a plausible attempt id and no error, so
	// the endpoint cannot be used to probe for accounts.
	attemptID, err := pw.StartReset(ctx, "nobody@b.com")
	require.NoError(t, err)
	_, err = uuid.Parse(attemptID)
	require.NoError(t, err)
	require.Empty(t, sender.codes, "no code is sent for unknown emails")

	// The decoy attempt cannot complete a reset.
	err = pw.CompleteReset(ctx, "nobody@b.com", attemptID, "123456", "newpassword1")
	require.ErrorIs(t, err, service.ErrInvalidCode)
}

func TestCompleteResetWrongCode(t *testing.T) {
	t.Parallel()

	pw, auth, sender := newPasswordService(t)
	ctx := context.Background()

	_, err := auth.SignUp(ctx, "a@b.com", "oldpassword1", false)
	require.NoError(t, err)

	attemptID, err := pw.StartReset(ctx, "a@b.com")
	require.NoError(t, err)

	err = pw.CompleteReset(ctx, "a@b.com", attemptID, "000000", "newpassword1")
	require.ErrorIs(t, err, service.ErrInvalidCode)

	// A login attempt id cannot be spent on a reset.
	_, err = auth.SignUp(ctx, "c@d.com", "password123", true)
	require.NoError(t, err)
	login, err := auth.StartLogin(ctx, "c@d.com", "password123")
	require.NoError(t, err)
	err = pw.CompleteReset(ctx, "c@d.com", login.AttemptID, sender.lastCode(t), "newpassword1")
	require.ErrorIs(t, err, service.ErrInvalidCode)
}
