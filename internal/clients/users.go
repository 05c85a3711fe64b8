package clients

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pribylovaa/go-expense-tracker/internal/clients/httpclient"
	"github.com/pribylovaa/go-expense-tracker/internal/models"
)

// UsersClient — профиль пользователя поверх ResourceClient.
type UsersClient struct {
	rc *ResourceClient
}

func NewUsersClient(rc *ResourceClient) *UsersClient {
	return &UsersClient{rc: rc}
}

func userPath(id int64) string {
	return "/auth/user/" + strconv.FormatInt(id, 10)
}

// Patch — PATCH /auth/user/:id. Успех: {user}.
func (u *UsersClient) Patch(ctx context.Context, userID int64, in models.UpdateUserRequest) (*models.AuthResponse, error) {
	const op = "clients.UsersClient.Patch"

	return call[models.AuthResponse](ctx, u.rc, op, &httpclient.Request{
		Method: http.MethodPatch,
		Path:   userPath(userID),
		Body:   in,
	})
}

// Delete — POST /auth/user/:id/delete с подтверждением паролем. Успех: {user: null}.
func (u *UsersClient) Delete(ctx context.Context, userID int64, password string) (*models.AuthResponse, error) {
	const op = "clients.UsersClient.Delete"

	return call[models.AuthResponse](ctx, u.rc, op, &httpclient.Request{
		Method: http.MethodPost,
		Path:   userPath(userID) + "/delete",
		Body:   models.DeleteUserRequest{Password: password},
	})
}
