// interceptors — middleware конвейера HTTP-клиента (httpclient.Middleware):
// метаданные запроса, логирование, Bearer-токен, захват выданного токена,
// refresh по 401 с однократным повтором.
package interceptors

import (
	"context"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-expense-tracker/internal/clients/httpclient"
)

type CtxKey string

const (
	CtxRequestID CtxKey = "request_id"
)

// HeaderRequestID — заголовок корреляции запросов.
const HeaderRequestID = "X-Request-Id"

// WithRequestID кладёт request_id в контекст: все попытки и refresh,
// порождённые этим вызовом, уйдут с ним.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, CtxRequestID, rid)
}

// RequestID достаёт request_id из контекста.
func RequestID(ctx context.Context) string {
	rid, _ := ctx.Value(CtxRequestID).(string)
	return rid
}

// RequestMetadata — добавляет в исходящий запрос заголовки:
//   - X-Request-Id (из контекста, из запроса или новый uuid);
//   - User-Agent (если передан параметром).
//
// request_id прокладывается в контекст, поэтому refresh и повтор,
// выполненные внутри конвейера, получают тот же идентификатор.
func RequestMetadata(userAgent string) httpclient.Middleware {
	return func(next httpclient.Doer) httpclient.Doer {
		return func(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error) {
			if req == nil {
				return nil, httpclient.ErrNilRequest
			}

			r := req.Clone()

			rid := RequestID(ctx)
			if rid == "" {
				rid = r.Header.Get(HeaderRequestID)
			}
			if rid == "" {
				rid = uuid.NewString()
			}
			ctx = WithRequestID(ctx, rid)
			r.Header.Set(HeaderRequestID, rid)

			if userAgent != "" && r.Header.Get("User-Agent") == "" {
				r.Header.Set("User-Agent", userAgent)
			}

			return next(ctx, r)
		}
	}
}
