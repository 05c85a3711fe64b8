package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pribylovaa/go-expense-tracker/internal/clients/httpclient"
	apierrors "github.com/pribylovaa/go-expense-tracker/internal/errors"
	"github.com/pribylovaa/go-expense-tracker/internal/models"
)

// AuthClient — клиент /auth/*. Подставляет Bearer, сохраняет выданные токены,
// на 401 не повторяет: он сам и есть механизм refresh.
type AuthClient struct {
	c     *httpclient.Client
	store TokenStore
}

func NewAuthClient(c *httpclient.Client, store TokenStore) *AuthClient {
	return &AuthClient{c: c, store: store}
}

// Do прогоняет произвольный запрос через конвейер auth-клиента.
func (a *AuthClient) Do(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
	return a.c.Do(ctx, req)
}

// Register — POST /auth/registration. Успех: {user}; сессия не начинается до активации.
func (a *AuthClient) Register(ctx context.Context, in models.RegisterRequest) (*models.AuthResponse, error) {
	const op = "clients.AuthClient.Register"

	return call[models.AuthResponse](ctx, a, op, &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/registration",
		Body:   in,
	})
}

// Login — POST /auth/login. Успех: {user, accessToken}.
func (a *AuthClient) Login(ctx context.Context, in models.LoginRequest) (*models.AuthResponse, error) {
	const op = "clients.AuthClient.Login"

	return call[models.AuthResponse](ctx, a, op, &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   in,
	})
}

// Logout — POST /auth/logout. Токен удаляется после ответа при любом исходе.
func (a *AuthClient) Logout(ctx context.Context) error {
	const op = "clients.AuthClient.Logout"

	defer a.store.Remove()

	_, err := send(ctx, a, op, &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/logout",
	})

	return err
}

// Activate — GET /auth/activation/:token. Успех: {user, accessToken}.
func (a *AuthClient) Activate(ctx context.Context, activationToken string) (*models.AuthResponse, error) {
	const op = "clients.AuthClient.Activate"

	if activationToken == "" {
		return nil, apierrors.WithFields("Activation token is required", map[string]string{
			"activationToken": "Activation token is required",
		})
	}

	return call[models.AuthResponse](ctx, a, op, &httpclient.Request{
		Method: http.MethodGet,
		Path:   "/auth/activation/" + url.PathEscape(activationToken),
	})
}

// Refresh — GET /auth/refresh; опирается только на refresh-cookie.
func (a *AuthClient) Refresh(ctx context.Context) (*models.AuthResponse, error) {
	const op = "clients.AuthClient.Refresh"

	return call[models.AuthResponse](ctx, a, op, &httpclient.Request{
		Method: http.MethodGet,
		Path:   "/auth/refresh",
	})
}

// Reset — POST /auth/reset. Успех — тело без message.
func (a *AuthClient) Reset(ctx context.Context, email string) error {
	const op = "clients.AuthClient.Reset"

	resp, err := send(ctx, a, op, &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/reset",
		Body:   models.ResetRequest{Email: email},
	})
	if err != nil {
		return err
	}

	if ae := apierrors.FromBody(resp.Body); ae != nil && ae.Message != "" {
		return ae
	}

	return nil
}

// SetPassword — POST /auth/set-password. Успех: {user, accessToken}, как у Login.
func (a *AuthClient) SetPassword(ctx context.Context, password, resetToken string) (*models.AuthResponse, error) {
	const op = "clients.AuthClient.SetPassword"

	return call[models.AuthResponse](ctx, a, op, &httpclient.Request{
		Method: http.MethodPost,
		Path:   "/auth/set-password",
		Body:   models.SetPasswordRequest{Password: password, ResetToken: resetToken},
	})
}
