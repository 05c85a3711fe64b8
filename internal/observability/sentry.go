// observability — отчёты о неожиданных ошибках в Sentry.
// Ожидаемые ошибки API (*apierrors.AuthError) и отмена контекста не отправляются.
package observability

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	apierrors "github.com/pribylovaa/go-expense-tracker/internal/errors"
)

const flushTimeout = 2 * time.Second

// InitSentry инициализирует SDK. Пустой dsn — Sentry выключен, не ошибка.
func InitSentry(dsn, environment, release string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
	})
}

func FlushSentry() {
	sentry.Flush(flushTimeout)
}

// Reportable — стоит ли отправлять err в Sentry.
func Reportable(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := apierrors.As(err); ok {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	return true
}

// Report отправляет err с тегом команды. Возвращает true, если ошибка ушла в Sentry
// (или ушла бы при инициализированном SDK).
func Report(ctx context.Context, command string, err error) bool {
	if !Reportable(err) {
		return false
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("command", command)
		hub.CaptureException(err)
	})

	return true
}

// Recover перехватывает панику команды, отправляет её и возвращает как ошибку.
// Используется в defer: defer observability.Recover(ctx, name, &err).
func Recover(ctx context.Context, command string, errp *error) {
	r := recover()
	if r == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("command", command)
		hub.Recover(r)
	})

	if errp != nil {
		*errp = panicError{value: r}
	}
}

type panicError struct{ value any }

func (p panicError) Error() string { return "internal error" }

// PanicValue — исходное значение паники, если err получена из Recover.
func PanicValue(err error) (any, bool) {
	var p panicError
	if errors.As(err, &p) {
		return p.value, true
	}

	return nil, false
}
