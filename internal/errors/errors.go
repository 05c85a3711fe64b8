// errors приводит любые неуспешные исходы HTTP-вызовов к единому значению AuthError.
//
// Ожидаемые ошибки (валидация, истёкшая сессия, сеть) не паникуют и не
// "пробрасываются" как исключения: вызывающий код получает (payload, error),
// где error — *AuthError, и разбирает его через errors.As.
//
// Правило нормализации ответа:
//   - тело сервера декодируется в непустой {message?, errors?} — возвращаем его;
//   - ответ есть, но тело пустое/неразборчивое — "<status>: <statusText>";
//   - ответа нет (сеть, таймаут, отмена, пустой запрос) — "Network Error".
package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pribylovaa/go-expense-tracker/internal/clients/httpclient"
)

const (
	// MsgNetworkError — ответ не получен.
	MsgNetworkError = "Network Error"
	// MsgErrorInResponse — refresh не выдал токен и не объяснил почему.
	MsgErrorInResponse = "Error in response"
)

// ErrSessionEnded — refresh после 401 не удался: сессию нужно завершить
// и попросить пользователя войти заново.
var ErrSessionEnded = stderrors.New("session ended")

// AuthError — ошибка, которую сервер (или клиент) вернул в формате {message?, errors?}.
// Errors — ошибки по полям формы: "email" -> "Email is already taken".
type AuthError struct {
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`

	cause error
}

// Error — текст для пользователя: message, иначе ошибки полей.
func (e *AuthError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if len(e.Errors) == 0 {
		return "unknown error"
	}

	keys := make([]string, 0, len(e.Errors))
	for k := range e.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Errors[k])
	}

	return strings.Join(parts, "; ")
}

func (e *AuthError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// Empty — нечего показывать пользователю.
func (e *AuthError) Empty() bool {
	return e == nil || (e.Message == "" && len(e.Errors) == 0)
}

// Field — ошибка конкретного поля формы.
func (e *AuthError) Field(name string) string {
	if e == nil {
		return ""
	}

	return e.Errors[name]
}

// New — AuthError с сообщением.
func New(msg string) *AuthError {
	return &AuthError{Message: msg}
}

// WithFields — AuthError с ошибками полей (клиентская валидация).
func WithFields(msg string, fields map[string]string) *AuthError {
	return &AuthError{Message: msg, Errors: fields}
}

// Wrap — AuthError с сообщением и исходной причиной для errors.Is/As.
func Wrap(msg string, cause error) *AuthError {
	return &AuthError{Message: msg, cause: cause}
}

// SessionEnded — ошибка неудачного refresh: msg или "Error in response".
func SessionEnded(msg string) *AuthError {
	if msg == "" {
		msg = MsgErrorInResponse
	}

	return &AuthError{Message: msg, cause: ErrSessionEnded}
}

// IsSessionEnded — err означает завершённую сессию.
func IsSessionEnded(err error) bool {
	return stderrors.Is(err, ErrSessionEnded)
}

// As — удобная обёртка над errors.As для *AuthError.
func As(err error) (*AuthError, bool) {
	var ae *AuthError
	if stderrors.As(err, &ae) {
		return ae, true
	}

	return nil, false
}

// wireError — тело ошибки как его присылает сервер. Errors декодируется лениво:
// значения полей бывают не только строками.
type wireError struct {
	Message json.RawMessage            `json:"message"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

// FromBody декодирует тело ответа в AuthError. Возвращает nil, если тело
// не JSON-объект или не содержит ни message, ни errors.
func FromBody(body []byte) *AuthError {
	if len(body) == 0 {
		return nil
	}

	var w wireError
	if err := json.Unmarshal(body, &w); err != nil {
		return nil
	}

	ae := &AuthError{Message: rawText(w.Message), Errors: fieldErrors(w.Errors)}
	if ae.Empty() {
		return nil
	}

	return ae
}

// FromPayload — AuthError из message/errors ответа, который не содержит
// ожидаемых данных (например, 2xx без user). Пустой результат получает
// сообщение "Error in response".
func FromPayload(message string, rawErrors json.RawMessage) *AuthError {
	var raw map[string]json.RawMessage
	if len(rawErrors) > 0 {
		_ = json.Unmarshal(rawErrors, &raw)
	}

	ae := &AuthError{Message: message, Errors: fieldErrors(raw)}
	if ae.Empty() {
		ae.Message = MsgErrorInResponse
	}

	return ae
}

func fieldErrors(raw map[string]json.RawMessage) map[string]string {
	var out map[string]string
	for k, v := range raw {
		if s := rawText(v); s != "" {
			if out == nil {
				out = make(map[string]string, len(raw))
			}
			out[k] = s
		}
	}

	return out
}

// Normalize приводит результат попытки к ошибке для вызывающего кода.
// Возвращает nil для успешного (2xx) ответа.
//
// Уже нормализованный *AuthError и ошибка сериализации запроса (ошибка программиста)
// возвращаются как есть; прочие ошибки без ответа становятся "Network Error".
func Normalize(resp *httpclient.Response, err error) error {
	if err != nil {
		if _, ok := As(err); ok {
			return err
		}
		if stderrors.Is(err, httpclient.ErrEncode) {
			return err
		}

		return Wrap(MsgNetworkError, err)
	}

	if resp == nil {
		return New(MsgNetworkError)
	}
	if resp.OK() {
		return nil
	}

	if ae := FromBody(resp.Body); ae != nil {
		return ae
	}

	return New(fmt.Sprintf("%d: %s", resp.Status, resp.StatusText))
}

// rawText — строковое представление произвольного JSON-значения.
// null и пустая строка дают "".
func rawText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return ""
	}

	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, it := range x {
			parts = append(parts, fmt.Sprint(it))
		}
		return strings.Join(parts, ", ")
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
