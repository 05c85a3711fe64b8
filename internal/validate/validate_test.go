package validate

import (
	"testing"

	apierrors "github.com/pribylovaa/go-expense-tracker/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		in   string
		want string
	}{
		{"", MsgEmailRequired},
		{"a@b.com", ""},
		{"first.last+tag@mail.example.co", ""},
		{"user@sub.domain.example.org", ""},
		{"no-at-sign.com", MsgEmailIncorrect},
		{"a@b.c", MsgEmailIncorrect},
		{"a@b", MsgEmailIncorrect},
		{"a b@c.com", MsgEmailIncorrect},
		{"a@a.b.c.d.com", MsgEmailIncorrect},
	}

	for _, tc := range tcs {
		require.Equal(t, tc.want, Email(tc.in), tc.in)
	}
}

func TestPassword(t *testing.T) {
	t.Parallel()

	require.Equal(t, MsgPasswordRequired, Password(""))
	require.Equal(t, MsgPasswordShort, Password("12345"))
	require.Equal(t, "", Password("secret1"))
	require.Equal(t, "", Password("пароль"))
}

func TestRegistration(t *testing.T) {
	t.Parallel()

	require.NoError(t, Registration("bob", "a@b.com", "secret1"))

	err := Registration(" ", "bad", "123")
	ae, ok := apierrors.As(err)
	require.True(t, ok)
	require.Equal(t, MsgValidation, ae.Message)
	require.Equal(t, MsgUsernameRequired, ae.Field("username"))
	require.Equal(t, MsgEmailIncorrect, ae.Field("email"))
	require.Equal(t, MsgPasswordShort, ae.Field("password"))
}

func TestLogin(t *testing.T) {
	t.Parallel()

	require.NoError(t, Login("a@b.com", "123"))

	ae, ok := apierrors.As(Login("", ""))
	require.True(t, ok)
	require.Equal(t, MsgEmailRequired, ae.Field("email"))
	require.Equal(t, MsgPasswordRequired, ae.Field("password"))
}
