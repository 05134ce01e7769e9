package forms

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetValueClearsError(t *testing.T) {
	t.Parallel()

	f := NewField("email", KindEmail)
	f.SetError("Please enter a valid email address")
	require.Equal(t, "Please enter a valid email address", f.Error())

	f.SetValue("a@b.com")
	require.Empty(t, f.Error())
	require.Equal(t, "a@b.com", f.Value())
}

func TestDisplayLabel(t *testing.T) {
	t.Parallel()

	f := NewField("email", KindEmail)
	require.Equal(t, "Email", f.DisplayLabel())

	f.Label = "Verification code"
	require.Equal(t, "Verification code", f.DisplayLabel())
}

func TestFormAccessors(t *testing.T) {
	t.Parallel()

	email := NewField("email", KindEmail)
	password := NewField("password", KindPassword)
	fm := New("login", email, password)

	require.Same(t, email, fm.Field("email"))
	require.Nil(t, fm.Field("missing"))
	require.Equal(t, []*Field{email, password}, fm.Fields())

	fm.Set("email", "a@b.com")
	fm.Set("missing", "dropped")
	require.Equal(t, "a@b.com", fm.Get("email"))
	require.Empty(t, fm.Get("missing"))

	email.SetError("bad")
	fm.Reset()
	require.Empty(t, fm.Get("email"))
	require.Empty(t, email.Error())
}

func TestInFlightGuard(t *testing.T) {
	t.Parallel()

	fm := New("login")
	require.False(t, fm.InFlight())

	require.True(t, fm.Begin())
	require.True(t, fm.InFlight())
	require.False(t, fm.Begin(), "second submission must be rejected while pending")

	fm.End()
	require.True(t, fm.Begin())
	fm.End()
}
