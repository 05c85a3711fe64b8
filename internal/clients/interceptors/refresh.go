package interceptors

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/go-expense-tracker/internal/clients/httpclient"
	apierrors "github.com/pribylovaa/go-expense-tracker/internal/errors"
	"github.com/pribylovaa/go-expense-tracker/internal/models"
	"github.com/pribylovaa/go-expense-tracker/pkg/log"
	"golang.org/x/sync/singleflight"
)

// Refresher обновляет сессию по refresh-cookie (GET /auth/refresh).
// Ожидаемые неудачи возвращаются как *apierrors.AuthError.
type Refresher interface {
	Refresh(ctx context.Context) (*models.AuthResponse, error)
}

// RefreshObserver получает исходы refresh и факт повтора (метрики).
type RefreshObserver interface {
	ObserveRefresh(outcome string)
	ObserveRetry()
}

// Исходы refresh для RefreshObserver.
const (
	RefreshOK     = "ok"
	RefreshFailed = "failed"
)

// RefreshOn401 — ядро ResourceClient.
//
// Контракт:
//  1. ошибка без ответа или статус != 401 — возвращается как есть, refresh не вызывается;
//  2. 401 — вызывается refresher.Refresh:
//     a. токена нет — возвращается apierrors.SessionEnded(<сообщение refresh>),
//     хранилище токена этим шагом не меняется;
//     b. токен есть — сохраняется в sink, исходный запрос повторяется ровно один раз
//     через внутреннюю часть конвейера; результат повтора (включая второй 401)
//     возвращается как есть.
//
// Повтор идёт в next, минуя этот middleware, поэтому цикл refresh+retry не более одного.
func RefreshOn401(refresher Refresher, sink TokenSink, obs RefreshObserver) httpclient.Middleware {
	return func(next httpclient.Doer) httpclient.Doer {
		return func(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
			resp, err := next(ctx, req)
			if err != nil || resp == nil || resp.Status != http.StatusUnauthorized {
				return resp, err
			}

			l := log.From(ctx)

			data, rerr := refresher.Refresh(ctx)
			if rerr != nil || data == nil || data.AccessToken == "" {
				msg := refreshMessage(data, rerr)
				if obs != nil {
					obs.ObserveRefresh(RefreshFailed)
				}
				l.Info("refresh_failed", slog.String("reason", msg))

				return nil, apierrors.SessionEnded(msg)
			}

			sink.Save(data.AccessToken)
			if obs != nil {
				obs.ObserveRefresh(RefreshOK)
				obs.ObserveRetry()
			}
			l.Debug("refresh_ok_retrying")

			return next(ctx, req)
		}
	}
}

// refreshMessage — сообщение неудачного refresh; "" превращается
// в "Error in response" внутри SessionEnded.
func refreshMessage(data *models.AuthResponse, err error) string {
	if ae, ok := apierrors.As(err); ok {
		return ae.Message
	}
	if data != nil {
		return data.Message
	}

	return ""
}

type coalesced struct {
	next Refresher
	g    singleflight.Group
}

// Coalesce оборачивает refresher так, что одновременные refresh разделяют
// один запрос к серверу: все ожидающие получают один и тот же результат.
//
// Общий запрос не привязан к отмене ни одного из вызывающих: его ограничивает
// таймаут попытки клиента. Каждый вызывающий ждёт результат до отмены своего ctx.
func Coalesce(r Refresher) Refresher {
	return &coalesced{next: r}
}

func (c *coalesced) Refresh(ctx context.Context) (*models.AuthResponse, error) {
	ch := c.g.DoChan("refresh", func() (any, error) {
		return c.next.Refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		data, _ := r.Val.(*models.AuthResponse)
		return data, r.Err
	}
}
