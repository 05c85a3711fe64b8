package httpclient

import (
	"context"
	"time"
)

// WithTimeout навешивает таймаут d на каждую попытку запроса.
//
// Контракт:
//  1. d <= 0 — контекст не меняется;
//  2. иначе — context.WithTimeout(ctx, d) на время попытки. Более ранний дедлайн
//     вызывающего кода остаётся в силе, более поздний не отменяет таймаут попытки.
//
// Повтор после refresh проходит через этот middleware заново и получает свой таймаут.
// Истечение таймаута возвращается как ошибка без ответа ("Network Error" для вызывающего).
func WithTimeout(d time.Duration) Middleware {
	return func(next Doer) Doer {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if d <= 0 {
				return next(ctx, req)
			}

			cctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			return next(cctx, req)
		}
	}
}
