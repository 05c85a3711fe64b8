package shell

import (
	"bytes"
	"testing"

	apierrors "github.com/pribylovaa/go-expense-tracker/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestPrintAuthError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   *apierrors.AuthError
		want string
	}{
		{
			name: "message_and_fields_sorted",
			in: &apierrors.AuthError{
				Message: "Validation error",
				Errors:  map[string]string{"password": "Too short", "email": "Email is incorrect"},
			},
			want: "Error: Validation error\n  email: Email is incorrect\n  password: Too short\n",
		},
		{
			name: "fields_only",
			in:   &apierrors.AuthError{Errors: map[string]string{"title": "Title is required"}},
			want: "  title: Title is required\n",
		},
		{
			name: "message_only",
			in:   apierrors.New("Wrong password"),
			want: "Error: Wrong password\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			printAuthError(&buf, tt.in)
			require.Equal(t, tt.want, buf.String())
		})
	}
}
