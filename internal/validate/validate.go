// validate — проверки полей форм до отправки на сервер.
// Ошибки возвращаются в том же формате, что и серверные: *apierrors.AuthError
// с сообщениями по полям.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	apierrors "github.com/pribylovaa/go-expense-tracker/internal/errors"
)

// MinPasswordLen — минимальная длина пароля.
const MinPasswordLen = 6

const (
	MsgUsernameRequired = "Username is required"
	MsgEmailRequired    = "Email is required"
	MsgEmailIncorrect   = "Email is incorrect"
	MsgPasswordRequired = "Password is required"
	MsgPasswordShort    = "Minimal password length is 6 chars"
	MsgValidation       = "Validation error"
)

var emailRe = regexp.MustCompile(`^[\w.+-]+@([\w-]+\.){1,3}[\w-]{2,}$`)

// Email возвращает текст ошибки или "" для корректного адреса.
func Email(s string) string {
	switch {
	case s == "":
		return MsgEmailRequired
	case !emailRe.MatchString(s):
		return MsgEmailIncorrect
	default:
		return ""
	}
}

// Password возвращает текст ошибки или "" для допустимого пароля.
func Password(s string) string {
	switch {
	case s == "":
		return MsgPasswordRequired
	case utf8.RuneCountInString(s) < MinPasswordLen:
		return MsgPasswordShort
	default:
		return ""
	}
}

// Username возвращает текст ошибки или "" для непустого имени.
func Username(s string) string {
	if strings.TrimSpace(s) == "" {
		return MsgUsernameRequired
	}

	return ""
}

// Fields собирает ошибки полей: имя -> текст. Пустые тексты пропускаются.
// Возвращает nil, если ошибок нет.
func Fields(pairs map[string]string) error {
	var out map[string]string
	for k, v := range pairs {
		if v == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string, len(pairs))
		}
		out[k] = v
	}

	if out == nil {
		return nil
	}

	return apierrors.WithFields(MsgValidation, out)
}

// Registration — проверка формы регистрации.
func Registration(username, email, password string) error {
	return Fields(map[string]string{
		"username": Username(username),
		"email":    Email(email),
		"password": Password(password),
	})
}

// Login — проверка формы входа; длина пароля здесь не проверяется.
func Login(email, password string) error {
	msg := ""
	if password == "" {
		msg = MsgPasswordRequired
	}

	return Fields(map[string]string{
		"email":    Email(email),
		"password": msg,
	})
}
