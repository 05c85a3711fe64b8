// session — состояние сессии пользователя поверх AuthClient:
// тихое восстановление при старте (CheckAuth), вход, регистрация, активация,
// выход, сброс пароля, правка и удаление профиля.
//
// Сессия существует, пока в хранилище есть токен И последний успешный
// auth-вызов вернул пользователя.
package session

import (
	"context"
	"log/slog"
	"sync"

	apierrors "github.com/pribylovaa/go-expense-tracker/internal/errors"
	"github.com/pribylovaa/go-expense-tracker/internal/models"
	"github.com/pribylovaa/go-expense-tracker/pkg/redact"
)

// AuthAPI — операции /auth/*.
type AuthAPI interface {
	Register(ctx context.Context, in models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, in models.LoginRequest) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	Activate(ctx context.Context, activationToken string) (*models.AuthResponse, error)
	Refresh(ctx context.Context) (*models.AuthResponse, error)
	Reset(ctx context.Context, email string) error
	SetPassword(ctx context.Context, password, resetToken string) (*models.AuthResponse, error)
}

// UsersAPI — операции над профилем.
type UsersAPI interface {
	Patch(ctx context.Context, userID int64, in models.UpdateUserRequest) (*models.AuthResponse, error)
	Delete(ctx context.Context, userID int64, password string) (*models.AuthResponse, error)
}

// TokenStore — хранилище access-токена.
type TokenStore interface {
	Get() (string, bool)
	Save(token string)
	Remove()
}

// Status — состояние последнего пользовательского сценария.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// MsgNotAuthenticated — операция требует открытой сессии.
const MsgNotAuthenticated = "You are not logged in"

type Session struct {
	auth  AuthAPI
	users UsersAPI
	store TokenStore
	log   *slog.Logger

	mu      sync.RWMutex
	user    *models.User
	checked bool
	status  Status
	lastErr error
}

func New(auth AuthAPI, users UsersAPI, store TokenStore, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}

	return &Session{
		auth:   auth,
		users:  users,
		store:  store,
		log:    log,
		status: StatusIdle,
	}
}

// CheckAuth — тихий refresh при старте. Успех восстанавливает пользователя,
// неудача оставляет сессию анонимной. В обоих случаях сессия помечается проверенной.
// Status и LastError не меняются.
func (s *Session) CheckAuth(ctx context.Context) error {
	res, err := s.auth.Refresh(ctx)
	if err == nil {
		err = requireSession(res, true)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.checked = true
	if err != nil {
		s.user = nil
		s.log.Info("session_anonymous", slog.String("reason", err.Error()))
		return err
	}

	s.store.Save(res.AccessToken)
	s.user = cloneUser(res.User)
	s.log.Info("session_restored", slog.Int64("user_id", s.user.ID))

	return nil
}

// Login — вход по email и паролю.
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	s.begin()

	res, err := s.auth.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err == nil {
		err = requireSession(res, true)
	}
	if err != nil {
		s.fail(err, true)
		s.log.Info("login_failed", slog.String("email", redact.Email(email)), slog.String("reason", err.Error()))
		return nil, err
	}

	u := s.start(res)
	s.log.Info("login_ok", slog.Int64("user_id", u.ID), slog.String("email", redact.Email(email)))

	return u, nil
}

// Register — регистрация. Сессия не начинается: нужен переход по ссылке активации.
func (s *Session) Register(ctx context.Context, in models.RegisterRequest) (*models.User, error) {
	s.begin()

	res, err := s.auth.Register(ctx, in)
	if err == nil {
		err = requireSession(res, false)
	}
	if err != nil {
		s.fail(err, false)
		return nil, err
	}

	s.succeed()
	s.log.Info("registered", slog.Int64("user_id", res.User.ID), slog.String("email", redact.Email(in.Email)))

	return cloneUser(res.User), nil
}

// Activate — подтверждение email; открывает сессию.
func (s *Session) Activate(ctx context.Context, activationToken string) (*models.User, error) {
	s.begin()

	res, err := s.auth.Activate(ctx, activationToken)
	if err == nil {
		err = requireSession(res, true)
	}
	if err != nil {
		s.fail(err, true)
		return nil, err
	}

	u := s.start(res)
	s.log.Info("activated", slog.Int64("user_id", u.ID))

	return u, nil
}

// SetPassword — завершение сброса пароля; открывает сессию, как Login.
func (s *Session) SetPassword(ctx context.Context, password, resetToken string) (*models.User, error) {
	s.begin()

	res, err := s.auth.SetPassword(ctx, password, resetToken)
	if err == nil {
		err = requireSession(res, true)
	}
	if err != nil {
		s.fail(err, true)
		return nil, err
	}

	u := s.start(res)
	s.log.Info("password_set", slog.Int64("user_id", u.ID))

	return u, nil
}

// Reset — запрос письма для сброса пароля.
func (s *Session) Reset(ctx context.Context, email string) error {
	s.begin()

	if err := s.auth.Reset(ctx, email); err != nil {
		s.fail(err, false)
		return err
	}

	s.succeed()
	s.log.Info("reset_requested", slog.String("email", redact.Email(email)))

	return nil
}

// Logout — выход. Токен и пользователь сбрасываются при любом исходе вызова.
func (s *Session) Logout(ctx context.Context) error {
	err := s.auth.Logout(ctx)

	s.store.Remove()

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err != nil {
		s.log.Info("logout_failed", slog.String("reason", err.Error()))
		return err
	}
	s.log.Info("logout")

	return nil
}

// PatchProfile — правка профиля текущего пользователя.
func (s *Session) PatchProfile(ctx context.Context, in models.UpdateUserRequest) (*models.User, error) {
	cur := s.User()
	if cur == nil {
		return nil, apierrors.New(MsgNotAuthenticated)
	}

	s.begin()

	res, err := s.users.Patch(ctx, cur.ID, in)
	if err == nil {
		err = requireSession(res, false)
	}
	if err != nil {
		s.fail(err, false)
		return nil, err
	}

	s.mu.Lock()
	s.user = cloneUser(res.User)
	s.status = StatusSuccess
	s.lastErr = nil
	u := cloneUser(s.user)
	s.mu.Unlock()

	s.log.Info("profile_updated", slog.Int64("user_id", u.ID))

	return u, nil
}

// DeleteAccount — удаление аккаунта с подтверждением паролем; завершает сессию.
func (s *Session) DeleteAccount(ctx context.Context, password string) error {
	cur := s.User()
	if cur == nil {
		return apierrors.New(MsgNotAuthenticated)
	}

	s.begin()

	if _, err := s.users.Delete(ctx, cur.ID, password); err != nil {
		s.fail(err, false)
		return err
	}

	s.succeed()
	s.EndSession()
	s.log.Info("account_deleted", slog.Int64("user_id", cur.ID))

	return nil
}

// EndSession сбрасывает токен и пользователя. Вызывается, когда защищённый
// запрос завершился ошибкой apierrors.ErrSessionEnded.
func (s *Session) EndSession() {
	s.store.Remove()

	s.mu.Lock()
	had := s.user != nil
	s.user = nil
	s.mu.Unlock()

	if had {
		s.log.Info("session_ended")
	}
}

// User — копия текущего пользователя или nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneUser(s.user)
}

// Checked — CheckAuth уже выполнялся.
func (s *Session) Checked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.checked
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

// LastError — ошибка последнего сценария (nil после успеха).
func (s *Session) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastErr
}

// Authenticated — есть и пользователь, и токен.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	hasUser := s.user != nil
	s.mu.RUnlock()

	_, hasToken := s.store.Get()

	return hasUser && hasToken
}

func (s *Session) begin() {
	s.mu.Lock()
	s.status = StatusPending
	s.lastErr = nil
	s.mu.Unlock()
}

func (s *Session) succeed() {
	s.mu.Lock()
	s.status = StatusSuccess
	s.lastErr = nil
	s.mu.Unlock()
}

// fail фиксирует ошибку; dropUser — сценарий входа, неудача которого сбрасывает пользователя.
func (s *Session) fail(err error, dropUser bool) {
	s.mu.Lock()
	s.status = StatusError
	s.lastErr = err
	if dropUser {
		s.user = nil
	}
	s.mu.Unlock()
}

// start открывает сессию по ответу с user и accessToken.
func (s *Session) start(res *models.AuthResponse) *models.User {
	s.store.Save(res.AccessToken)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = cloneUser(res.User)
	s.status = StatusSuccess
	s.lastErr = nil

	return cloneUser(s.user)
}

// requireSession проверяет, что ответ содержит user (и accessToken, если withToken).
// Иначе возвращает AuthError из message/errors ответа.
func requireSession(res *models.AuthResponse, withToken bool) error {
	if res == nil {
		return apierrors.New(apierrors.MsgErrorInResponse)
	}
	if res.User == nil || (withToken && res.AccessToken == "") {
		return apierrors.FromPayload(res.Message, res.Errors)
	}

	return nil
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u

	return &c
}
