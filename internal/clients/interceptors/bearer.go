package interceptors

import (
	"context"
	"log/slog"

	"github.com/pribylovaa/go-expense-tracker/internal/clients/httpclient"
	"github.com/pribylovaa/go-expense-tracker/pkg/log"
	"github.com/pribylovaa/go-expense-tracker/pkg/redact"
)

// TokenSource — откуда берётся текущий access-токен.
type TokenSource interface {
	Get() (string, bool)
}

// TokenSink — куда сохраняется выданный сервером access-токен.
type TokenSink interface {
	Save(token string)
}

// Bearer подставляет Authorization: Bearer <token>, если токен есть.
// Без токена заголовок не добавляется. Пустой запрос не отправляется.
//
// Токен читается на каждой попытке, поэтому повтор после refresh уходит уже с новым.
func Bearer(src TokenSource) httpclient.Middleware {
	return func(next httpclient.Doer) httpclient.Doer {
		return func(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
			if req == nil {
				return nil, httpclient.ErrNilRequest
			}

			tok, ok := src.Get()
			if !ok {
				return next(ctx, req)
			}

			r := req.Clone()
			r.Header.Set("Authorization", "Bearer "+tok)
			log.From(ctx).Debug("bearer_attached",
				slog.String("authorization", redact.Authorization(r.Header.Get("Authorization"))))

			return next(ctx, r)
		}
	}
}
