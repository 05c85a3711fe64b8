// Модели REST API сервиса учёта расходов: тела запросов и ответов /auth/* и /expenses.
package models

import "encoding/json"

// User — владелец сессии.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResponse — общий ответ /auth/*: {user?, accessToken?, message?, errors?}.
// На успехе заполнены User и (кроме регистрации) AccessToken;
// Message/Errors сервер иногда присылает и с 2xx — их разбирает вызывающий.
type AuthResponse struct {
	User        *User           `json:"user,omitempty"`
	AccessToken string          `json:"accessToken,omitempty"`
	Message     string          `json:"message,omitempty"`
	Errors      json.RawMessage `json:"errors,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetRequest struct {
	Email string `json:"email"`
}

type SetPasswordRequest struct {
	Password   string `json:"password"`
	ResetToken string `json:"resetToken"`
}

// UpdateUserRequest — PATCH /auth/user/:id. Password — текущий пароль (подтверждение),
// PasswordNew — новый; пустые поля не отправляются.
type UpdateUserRequest struct {
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password"`
	PasswordNew string `json:"passwordNew,omitempty"`
}

// DeleteUserRequest — POST /auth/user/:id/delete.
type DeleteUserRequest struct {
	Password string `json:"password"`
}

// TokenEnvelope — минимальный вид любого тела, в котором сервер может выдать токен.
type TokenEnvelope struct {
	AccessToken string `json:"accessToken"`
}
